// Package reading defines the raw environmental reading and decodes the
// envelope produced by the ingestion side.
package reading

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Reading is one periodic measurement. Timestamp is in epoch seconds (UTC).
type Reading struct {
	Timestamp   int64
	Temperature float64
	Humidity    float64
}

// Timestamps outside [MinTimestamp, MaxTimestamp] are rejected.
const (
	MinTimestamp int64 = 0
	MaxTimestamp int64 = 253402300799 // 9999-12-31T23:59:59Z
)

var (
	// ErrMalformed marks a record with a missing or non-numeric field.
	ErrMalformed = errors.New("malformed reading")
	// ErrInvalidTimestamp marks a non-numeric, fractional or out-of-range timestamp.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)

// CheckTimestamp reports whether ts can be localized.
func CheckTimestamp(ts int64) error {
	if ts < MinTimestamp || ts > MaxTimestamp {
		return fmt.Errorf("%w: %d out of range", ErrInvalidTimestamp, ts)
	}
	return nil
}

// RawReading is a reading as it appears on the wire. Every field accepts a
// JSON number or a numeric string.
type RawReading struct {
	Time  json.RawMessage `json:"time"`
	Temp  json.RawMessage `json:"temp"`
	Humid json.RawMessage `json:"humid"`
}

// Parse validates the raw fields and converts them to a Reading.
func (r RawReading) Parse() (Reading, error) {
	ts, err := parseTimestamp(r.Time)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: time: %w", ErrMalformed, err)
	}

	temp, err := parseFloat(r.Temp)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: temp: %v", ErrMalformed, err)
	}

	humid, err := parseFloat(r.Humid)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: humid: %v", ErrMalformed, err)
	}

	return Reading{Timestamp: ts, Temperature: temp, Humidity: humid}, nil
}

func numberText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("missing")
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}

	return string(raw), nil
}

func parseFloat(raw json.RawMessage) (float64, error) {
	text, err := numberText(raw)
	if err != nil {
		return 0, err
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not finite: %q", text)
	}
	return v, nil
}

func parseTimestamp(raw json.RawMessage) (int64, error) {
	text, err := numberText(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	ts, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		// Exports sometimes write integral seconds as 1.7e9.
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil || f != math.Trunc(f) || math.Abs(f) > float64(MaxTimestamp) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTimestamp, text)
		}
		ts = int64(f)
	}

	if err := CheckTimestamp(ts); err != nil {
		return 0, err
	}
	return ts, nil
}
