package aggregation

import "math"

// Entries are the per-reading lists of a day, in arrival order.
type Entries struct {
	Time      []string  `json:"time"`
	Temp      []float64 `json:"temp"`
	Humid     []float64 `json:"humid"`
	HeatIndex []float64 `json:"heat_index"`
}

// DayBucket accumulates one local calendar day in a single pass.
type DayBucket struct {
	Date           string
	PeakTemp       float64
	PeakTime       string
	LowestTemp     float64
	LowestTime     string
	DataPointCount int
	TotalTemp      float64
	TotalHumidity  float64
	Entries        Entries
	IsValid        bool

	threshold int
}

func newDayBucket(date string, threshold int) *DayBucket {
	return &DayBucket{
		Date:       date,
		PeakTemp:   math.Inf(-1),
		LowestTemp: math.Inf(1),
		Entries: Entries{
			Time:      []string{},
			Temp:      []float64{},
			Humid:     []float64{},
			HeatIndex: []float64{},
		},
		threshold: threshold,
	}
}

// Add folds one localized reading into the day. Peaks and lows only move on
// a strictly greater or smaller value, so the first occurrence of a tie keeps
// its time. Readings rounded onto midnight are counted but left out of the
// entry lists.
func (d *DayBucket) Add(lr Localized, heatIndex float64) {
	d.TotalTemp += lr.Temperature
	d.TotalHumidity += lr.Humidity

	if lr.Temperature > d.PeakTemp {
		d.PeakTemp = lr.Temperature
		d.PeakTime = lr.Clock
	}
	if lr.Temperature < d.LowestTemp {
		d.LowestTemp = lr.Temperature
		d.LowestTime = lr.Clock
	}

	d.DataPointCount++
	d.IsValid = d.DataPointCount >= d.threshold

	if lr.Rounded == midnight {
		return
	}
	d.Entries.Time = append(d.Entries.Time, lr.Rounded)
	d.Entries.Temp = append(d.Entries.Temp, lr.Temperature)
	d.Entries.Humid = append(d.Entries.Humid, lr.Humidity)
	d.Entries.HeatIndex = append(d.Entries.HeatIndex, heatIndex)
}

// AverageTemp returns TotalTemp / DataPointCount, with the count floored at one.
func (d *DayBucket) AverageTemp() float64 {
	return d.TotalTemp / float64(max(d.DataPointCount, 1))
}

// AverageHumidity returns TotalHumidity / DataPointCount, with the count floored at one.
func (d *DayBucket) AverageHumidity() float64 {
	return d.TotalHumidity / float64(max(d.DataPointCount, 1))
}

// dayRecord is the two-level table row for one date: the day bucket plus a
// fixed 24-slot array of hour buckets.
type dayRecord struct {
	day   *DayBucket
	hours [HoursPerDay]HourBucket
}
