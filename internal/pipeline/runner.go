// Package pipeline wires one aggregation run: load readings from a Source,
// run the engine, then hand the result to each Sink in order.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smukkama/weather-summary/internal/aggregation"
	"github.com/smukkama/weather-summary/internal/reading"
)

// Source supplies the readings of one run.
type Source interface {
	Readings(ctx context.Context) ([]reading.Reading, error)
}

// Sink receives the result of a run.
type Sink interface {
	Name() string
	Write(ctx context.Context, runID string, res *aggregation.Result) error
}

// Report describes a finished run.
type Report struct {
	RunID     string
	Readings  int
	Days      int
	ValidDays int
	Duration  time.Duration
}

type Runner struct {
	source Source
	engine *aggregation.Engine
	sinks  []Sink
	logger *slog.Logger
	newID  func() string
}

func NewRunner(source Source, engine *aggregation.Engine, sinks []Sink, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		source: source,
		engine: engine,
		sinks:  sinks,
		logger: logger,
		newID:  func() string { return uuid.NewString() },
	}
}

// Run executes one pass. It stops at the first failing sink.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	runID := r.newID()
	logger := r.logger.With("run_id", runID)

	readings, err := r.source.Readings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}

	res, err := r.engine.Run(readings)
	if err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}

	for _, sink := range r.sinks {
		if err := sink.Write(ctx, runID, res); err != nil {
			return nil, fmt.Errorf("sink %s: %w", sink.Name(), err)
		}
		logger.Debug("sink written", "sink", sink.Name())
	}

	report := &Report{
		RunID:     runID,
		Readings:  len(readings),
		Days:      res.Overall.TotalRecordedDays,
		ValidDays: res.Overall.TotalValidDays,
		Duration:  time.Since(start),
	}

	logger.Info("run complete",
		"readings", report.Readings,
		"days", report.Days,
		"valid_days", report.ValidDays,
		"duration", report.Duration,
	)

	return report, nil
}
