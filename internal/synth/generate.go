// Package synth produces synthetic station readings: a daily sine cycle
// anchored at 13:00 local time with humidity moving against temperature,
// smoothed by a centered moving average.
package synth

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/smukkama/weather-summary/internal/reading"
)

const (
	baseTemp   = 31.5
	floorTemp  = 27.0
	baseHumid  = 100.0
	anchorHour = 13.0
)

type Options struct {
	Start     time.Time
	End       time.Time
	Interval  time.Duration
	Smoothing int // moving-average half width
	Seed      uint64
	Location  *time.Location
}

// Generate returns one reading per Interval from Start through End.
func Generate(opts Options) ([]reading.Reading, error) {
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", opts.Interval)
	}
	if opts.End.Before(opts.Start) {
		return nil, fmt.Errorf("end %s is before start %s", opts.End, opts.Start)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	uniform := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	var raw []reading.Reading
	for t := opts.Start; !t.After(opts.End); t = t.Add(opts.Interval) {
		local := t.In(loc)
		hours := float64(local.Hour()) + float64(local.Minute())/60

		f := uniform(0.9, 1.1)
		angle := f*math.Mod(hours-anchorHour+24, 24)/24*2*math.Pi - math.Pi/2
		wave := math.Sin(angle)

		raw = append(raw, reading.Reading{
			Timestamp:   t.Unix(),
			Temperature: round2(math.Max(floorTemp, uniform(2.5, 4.5)*wave+baseTemp)),
			Humidity:    round2(baseHumid - uniform(10, 30)*wave),
		})
	}

	return smooth(raw, opts.Smoothing), nil
}

func smooth(in []reading.Reading, width int) []reading.Reading {
	if width <= 0 {
		return in
	}

	out := make([]reading.Reading, len(in))
	for i := range in {
		lo, hi := max(0, i-width), min(len(in), i+width+1)
		var temp, humid float64
		for _, rd := range in[lo:hi] {
			temp += rd.Temperature
			humid += rd.Humidity
		}
		n := float64(hi - lo)
		out[i] = reading.Reading{
			Timestamp:   in[i].Timestamp,
			Temperature: round2(temp / n),
			Humidity:    round2(humid / n),
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// StringEnvelope wraps readings the way the station export does, with
// temperature and humidity as two-decimal strings.
func StringEnvelope(readings []reading.Reading) *reading.Envelope {
	env := reading.NewEnvelope(readings)
	for i, rd := range readings {
		env.Data[i].Temp = json.RawMessage(strconv.Quote(strconv.FormatFloat(rd.Temperature, 'f', 2, 64)))
		env.Data[i].Humid = json.RawMessage(strconv.Quote(strconv.FormatFloat(rd.Humidity, 'f', 2, 64)))
	}
	return env
}
