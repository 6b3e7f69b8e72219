// Package aggregation turns one batch of readings into per-day and overall
// summaries: peaks and lows, heat index, slope-selected hourly values,
// correlations and deviations.
package aggregation

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/smukkama/weather-summary/internal/reading"
)

// Engine runs the aggregation. It keeps no state between runs.
type Engine struct {
	cfg       Config
	localizer *Localizer
	logger    *slog.Logger
}

// NewEngine validates cfg and creates an engine.
func NewEngine(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid aggregation config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		cfg:       cfg,
		localizer: NewLocalizer(cfg.Location, cfg.RoundTo),
		logger:    logger,
	}, nil
}

// Run aggregates readings in one pass. The slice is not modified and the
// result depends only on its contents and order.
func (e *Engine) Run(readings []reading.Reading) (*Result, error) {
	days := make(map[string]*dayRecord)

	for i, rd := range readings {
		lr, err := e.localizer.Localize(rd)
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", i, err)
		}

		rec, ok := days[lr.Date]
		if !ok {
			rec = &dayRecord{day: newDayBucket(lr.Date, e.cfg.ValidityThreshold)}
			days[lr.Date] = rec
		}

		rec.day.Add(lr, HeatIndex(e.cfg.HeatIndex, lr.Temperature, lr.Humidity))
		rec.hours[lr.Hour].add(lr.Temperature, lr.Humidity)
	}

	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	overall := newOverallBuilder(e.cfg.FullHourSamples)
	summaries := make([]DailySummary, 0, len(dates))

	for _, date := range dates {
		rec := days[date]

		summary, hours, err := summarizeDay(rec)
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", date, err)
		}

		if rec.day.IsValid {
			summary.Statistics.TempDeviation = PopulationStdDev(rec.day.Entries.Temp)
			summary.Statistics.HumidDeviation = PopulationStdDev(rec.day.Entries.Humid)
			summary.Statistics.CorrelationPeakLow = overall.addPeakLow(rec.day)
		}

		overall.addDay(rec.day, hours)
		summaries = append(summaries, summary)
	}

	result := &Result{
		Days:    summaries,
		Overall: overall.build(),
		Index:   make(DailyIndex, len(summaries)),
	}

	for i := range result.Days {
		applyTempDiff(&result.Days[i], result.Overall.AvgTempsEachHour)
		result.Index[result.Days[i].Date] = NewIndexEntry(&result.Days[i])
	}

	e.logger.Debug("aggregation complete",
		"readings", len(readings),
		"days", result.Overall.TotalRecordedDays,
		"valid_days", result.Overall.TotalValidDays,
	)

	return result, nil
}

func summarizeDay(rec *dayRecord) (DailySummary, *[HoursPerDay]*hourStat, error) {
	d := rec.day

	s := DailySummary{
		Date:           d.Date,
		HighestTemp:    Extreme{Value: d.PeakTemp, Time: d.PeakTime},
		LowestTemp:     Extreme{Value: d.LowestTemp, Time: d.LowestTime},
		DataPointCount: d.DataPointCount,
		IsValid:        d.IsValid,
		Total:          Pair{Temp: d.TotalTemp, Humid: d.TotalHumidity},
		Average:        Pair{Temp: d.AverageTemp(), Humid: d.AverageHumidity()},
		Entries:        d.Entries,
		Hourly:         newHourly(),
	}

	var hours [HoursPerDay]*hourStat
	for h := range rec.hours {
		st, err := rec.hours[h].stat()
		if errors.Is(err, ErrNoData) {
			continue
		}
		if err != nil {
			return DailySummary{}, nil, fmt.Errorf("hour %d: %w", h, err)
		}

		hours[h] = &st
		s.Hourly.Temp[h] = st.reprTemp
		s.Hourly.Humid[h] = st.reprHumid
		s.Hourly.Average[h] = st.average
		if st.slope != nil {
			s.Hourly.Slope[h] = *st.slope
		}
	}

	return s, &hours, nil
}

// applyTempDiff compares each representative hourly temperature with the
// cross-day average of that hour.
func applyTempDiff(s *DailySummary, hourAverages HourValues) {
	var sum float64
	var n int
	for h := 0; h < HoursPerDay; h++ {
		repr, ok := s.Hourly.Temp[h]
		if !ok {
			continue
		}
		avg, ok := hourAverages[h]
		if !ok {
			continue
		}
		diff := repr - avg
		s.Hourly.TempDiff[h] = diff
		sum += diff
		n++
	}

	if n > 0 {
		s.Statistics.TempDiffSum = &sum
	}
}
