package aggregation

// overallBuilder scans days in date order. Only valid days contribute to any
// global figure; invalid days are only counted in TotalRecordedDays.
type overallBuilder struct {
	fullHourSamples int
	summary         OverallSummary

	hourAvgSum   [HoursPerDay]float64
	hourAvgCount [HoursPerDay]int
	reprSum      [HoursPerDay]float64
	reprCount    [HoursPerDay]int

	avgTemps  []float64
	avgHumids []float64
	peakLow   peakLowSeries
}

func newOverallBuilder(fullHourSamples int) *overallBuilder {
	return &overallBuilder{fullHourSamples: fullHourSamples}
}

func (b *overallBuilder) addDay(d *DayBucket, hours *[HoursPerDay]*hourStat) {
	b.summary.TotalRecordedDays++
	if !d.IsValid {
		return
	}

	s := &b.summary
	s.TotalValidDays++
	s.TotalValidDataPoints += d.DataPointCount
	s.TotalValidTemp += d.TotalTemp
	s.TotalValidHumidity += d.TotalHumidity

	if s.PeakTemperature == nil || d.PeakTemp > s.PeakTemperature.Value {
		s.PeakTemperature = &Record{Value: d.PeakTemp, Date: d.Date, Time: d.PeakTime}
	}
	if s.LowTemperature == nil || d.LowestTemp < s.LowTemperature.Value {
		s.LowTemperature = &Record{Value: d.LowestTemp, Date: d.Date, Time: d.LowestTime}
	}

	b.avgTemps = append(b.avgTemps, d.AverageTemp())
	b.avgHumids = append(b.avgHumids, d.AverageHumidity())

	for h, st := range hours {
		if st == nil {
			continue
		}
		if st.count == b.fullHourSamples {
			b.hourAvgSum[h] += st.average
			b.hourAvgCount[h]++
		}
		b.reprSum[h] += st.reprTemp
		b.reprCount[h]++
	}
}

// addPeakLow records a valid day's pair and returns the running correlation.
func (b *overallBuilder) addPeakLow(d *DayBucket) *float64 {
	return b.peakLow.add(d.PeakTemp, d.LowestTemp)
}

func (b *overallBuilder) build() OverallSummary {
	s := b.summary

	if s.TotalValidDataPoints > 0 {
		s.AvgTemp = s.TotalValidTemp / float64(s.TotalValidDataPoints)
		s.AvgHumidity = s.TotalValidHumidity / float64(s.TotalValidDataPoints)
	}

	s.AvgTempsEachHour = make(HourValues)
	s.AvgRepresentativeTempsEachHour = make(HourValues)
	for h := 0; h < HoursPerDay; h++ {
		if b.hourAvgCount[h] > 0 {
			s.AvgTempsEachHour[h] = b.hourAvgSum[h] / float64(b.hourAvgCount[h])
		}
		if b.reprCount[h] > 0 {
			s.AvgRepresentativeTempsEachHour[h] = b.reprSum[h] / float64(b.reprCount[h])
		}
	}

	s.CorrelationPeakLow = b.peakLow.correlation()
	s.CorrelationTempHumidity = Correlation(b.avgTemps, b.avgHumids)

	return s
}
