package aggregation

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Coefficients are the nine heat index polynomial coefficients c0..c8.
type Coefficients [9]float64

// DefaultCoefficients is the Fischer and Schär (2010) fit in °C.
var DefaultCoefficients = Coefficients{
	-8.7847, 1.6114, -0.012308,
	2.3385, -0.14612, 2.2117e-3,
	-0.016425, 7.2546e-4, -3.582e-6,
}

const (
	DefaultTimezone          = "Asia/Singapore"
	DefaultValidityThreshold = 230
	DefaultFullHourSamples   = 12
	DefaultRoundTo           = 5 * time.Minute
)

// Config holds every constant the engine depends on.
type Config struct {
	// Location is the fixed zone used to assign readings to calendar days and hours.
	Location *time.Location
	// ValidityThreshold is the minimum number of readings for a day to count
	// toward overall statistics.
	ValidityThreshold int
	// FullHourSamples is the sample count an hour needs to enter the
	// cross-day per-hour average (one reading every 5 minutes).
	FullHourSamples int
	// RoundTo is the granularity of entry time labels.
	RoundTo   time.Duration
	HeatIndex Coefficients
}

// NewConfig returns the default configuration in the named zone.
func NewConfig(timezone string) (Config, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}

	return Config{
		Location:          loc,
		ValidityThreshold: DefaultValidityThreshold,
		FullHourSamples:   DefaultFullHourSamples,
		RoundTo:           DefaultRoundTo,
		HeatIndex:         DefaultCoefficients,
	}, nil
}

func (c Config) validate() error {
	if c.Location == nil {
		return fmt.Errorf("location is required")
	}
	if c.ValidityThreshold < 1 {
		return fmt.Errorf("validity threshold must be positive, got %d", c.ValidityThreshold)
	}
	if c.FullHourSamples < 1 {
		return fmt.Errorf("full hour sample count must be positive, got %d", c.FullHourSamples)
	}
	if c.RoundTo <= 0 || c.RoundTo > time.Hour {
		return fmt.Errorf("rounding granularity must be in (0, 1h], got %s", c.RoundTo)
	}
	return nil
}
