package aggregation

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrNoData is returned for an hour without samples. It is distinct from a
// representative value of zero.
var ErrNoData = errors.New("no data for this hour")

// HoursPerDay is the fixed width of a day record.
const HoursPerDay = 24

// HourBucket holds the raw samples of one local hour in arrival order.
type HourBucket struct {
	Temps  []float64
	Humids []float64
}

func (b *HourBucket) add(temp, humid float64) {
	b.Temps = append(b.Temps, temp)
	b.Humids = append(b.Humids, humid)
}

// Len returns the number of samples in the bucket.
func (b *HourBucket) Len() int {
	return len(b.Temps)
}

// Slope returns (last - first) / n. ok is false when there are fewer than
// two samples.
func Slope(samples []float64) (slope float64, ok bool) {
	n := len(samples)
	if n < 2 {
		return 0, false
	}
	return (samples[n-1] - samples[0]) / float64(n), true
}

// Representative picks the single value that stands for an hour: the
// maximum on a rising hour, the minimum on a falling one and the median
// otherwise.
func Representative(samples []float64) (float64, error) {
	if len(samples) == 0 {
		return 0, ErrNoData
	}

	slope, _ := Slope(samples)
	switch {
	case slope > 0:
		return floats.Max(samples), nil
	case slope < 0:
		return floats.Min(samples), nil
	}

	median, err := stats.Median(samples)
	if err != nil {
		return 0, fmt.Errorf("median: %w", err)
	}
	return median, nil
}

// hourStat is the per-hour view of a day used by the daily and overall
// summaries.
type hourStat struct {
	count     int
	average   float64
	slope     *float64
	reprTemp  float64
	reprHumid float64
}

func (b *HourBucket) stat() (hourStat, error) {
	if b.Len() == 0 {
		return hourStat{}, ErrNoData
	}

	s := hourStat{
		count:   b.Len(),
		average: stat.Mean(b.Temps, nil),
	}
	if slope, ok := Slope(b.Temps); ok {
		s.slope = &slope
	}

	var err error
	if s.reprTemp, err = Representative(b.Temps); err != nil {
		return hourStat{}, err
	}
	if s.reprHumid, err = Representative(b.Humids); err != nil {
		return hourStat{}, err
	}

	return s, nil
}
