package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smukkama/weather-summary/internal/aggregation"
	"github.com/smukkama/weather-summary/internal/reading"
)

// WindowSource loads the readings of the last Lookback whole local days,
// from local midnight Lookback days back up to today's local midnight. The
// day in progress is left out. Lookback is rounded down to days, minimum one.
type WindowSource struct {
	DB       *DB
	Lookback time.Duration
	Location *time.Location
	Now      func() time.Time
}

// Window returns the half-open [from, to) range of unix seconds to load.
func (s *WindowSource) Window() (from, to int64) {
	clock := s.Now
	if clock == nil {
		clock = now
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}

	days := int(s.Lookback / (24 * time.Hour))
	if days < 1 {
		days = 1
	}

	y, m, d := clock().In(loc).Date()
	end := time.Date(y, m, d, 0, 0, 0, 0, loc)
	start := time.Date(y, m, d-days, 0, 0, 0, 0, loc)
	return start.Unix(), end.Unix()
}

// Readings returns the stored readings in arrival order.
func (s *WindowSource) Readings(ctx context.Context) ([]reading.Reading, error) {
	from, to := s.Window()

	rows, err := s.DB.GetReadings(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}

	out := make([]reading.Reading, 0, len(rows))
	for _, r := range rows {
		out = append(out, reading.Reading{
			Timestamp:   r.Timestamp,
			Temperature: r.Temperature,
			Humidity:    r.Humidity,
		})
	}
	return out, nil
}

// SummarySink persists a run's daily and overall summaries.
type SummarySink struct {
	DB *DB
}

func (s *SummarySink) Name() string { return "database" }

// Write upserts every daily summary by date and replaces the overall row.
func (s *SummarySink) Write(ctx context.Context, runID string, res *aggregation.Result) error {
	updatedAt := now()

	rows := make([]*DailyRow, 0, len(res.Days))
	for i := range res.Days {
		day := &res.Days[i]
		doc, err := json.Marshal(day)
		if err != nil {
			return fmt.Errorf("failed to encode daily summary %s: %w", day.Date, err)
		}
		rows = append(rows, &DailyRow{
			Date:           day.Date,
			IsValid:        day.IsValid,
			DataPointCount: day.DataPointCount,
			Document:       doc,
			RunID:          runID,
			UpdatedAt:      updatedAt,
		})
	}

	if err := s.DB.UpsertDailySummaries(ctx, rows); err != nil {
		return err
	}

	doc, err := json.Marshal(res.Overall)
	if err != nil {
		return fmt.Errorf("failed to encode overall summary: %w", err)
	}

	if err := s.DB.UpsertOverallSummary(ctx, &OverallRow{
		Name:      OverallName,
		Document:  doc,
		RunID:     runID,
		UpdatedAt: updatedAt,
	}); err != nil {
		return fmt.Errorf("failed to upsert overall summary: %w", err)
	}

	return nil
}
