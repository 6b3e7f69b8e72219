package aggregation

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// PopulationStdDev returns the population standard deviation of x, or nil
// when x is empty.
func PopulationStdDev(x []float64) *float64 {
	if len(x) == 0 {
		return nil
	}
	_, std := stat.PopMeanStdDev(x, nil)
	return &std
}

// Correlation returns the Pearson correlation coefficient of x and y. It is
// undefined (nil) for fewer than two pairs, mismatched lengths or a series
// with zero variance.
func Correlation(x, y []float64) *float64 {
	if len(x) < 2 || len(x) != len(y) {
		return nil
	}

	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	r = math.Max(-1, math.Min(1, r))
	return &r
}

// peakLowSeries collects (peak, low) pairs of valid days in date order.
type peakLowSeries struct {
	peaks []float64
	lows  []float64
}

// add appends a completed day and returns the correlation over every pair
// collected so far.
func (s *peakLowSeries) add(peak, low float64) *float64 {
	s.peaks = append(s.peaks, peak)
	s.lows = append(s.lows, low)
	return s.correlation()
}

func (s *peakLowSeries) correlation() *float64 {
	return Correlation(s.peaks, s.lows)
}
