package timer

import (
	"context"
	"fmt"
	"time"
)

// ParseTimeOfDay parses "HH:MM" (24h).
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time format: %s (expected HH:MM)", s)
	}
	return t.Hour(), t.Minute(), nil
}

// NextDailyRun returns the first time strictly after now that shows
// timeOfDay on a wall clock in loc.
func NextDailyRun(now time.Time, loc *time.Location, timeOfDay string) (time.Time, error) {
	hour, minute, err := ParseTimeOfDay(timeOfDay)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(loc)
	run := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)

	// If we're at or past today's run time, schedule for tomorrow
	if !local.Before(run) {
		run = time.Date(local.Year(), local.Month(), local.Day()+1, hour, minute, 0, 0, loc)
	}

	return run, nil
}

// ScheduleDaily runs fn every day at timeOfDay in loc until the scheduler
// stops. onSchedule, if set, is told each next run time.
func (s *Scheduler) ScheduleDaily(id string, loc *time.Location, timeOfDay string, fn func(ctx context.Context), onSchedule func(time.Time)) error {
	next, err := NextDailyRun(s.now(), loc, timeOfDay)
	if err != nil {
		return err
	}

	var job func(ctx context.Context)
	job = func(ctx context.Context) {
		fn(ctx)
		if ctx.Err() != nil {
			return
		}
		n, err := NextDailyRun(s.now(), loc, timeOfDay)
		if err != nil {
			return
		}
		if s.Schedule(id, n, job) == nil && onSchedule != nil {
			onSchedule(n)
		}
	}

	if err := s.Schedule(id, next, job); err != nil {
		return err
	}
	if onSchedule != nil {
		onSchedule(next)
	}
	return nil
}
