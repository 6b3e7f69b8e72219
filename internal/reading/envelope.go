package reading

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Envelope is the document returned by the reading export:
// {statusCode, message, data: [{time, temp, humid}, ...]}.
type Envelope struct {
	StatusCode int          `json:"statusCode"`
	Message    string       `json:"message"`
	Data       []RawReading `json:"data"`
}

// Policy decides what happens to a malformed record.
type Policy string

const (
	// PolicyFail aborts the whole batch on the first malformed record.
	PolicyFail Policy = "fail"
	// PolicySkip drops malformed records and counts them.
	PolicySkip Policy = "skip"
)

// ParsePolicy parses a policy name; empty means PolicyFail.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFail:
		return PolicyFail, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return PolicyFail, fmt.Errorf("invalid malformed policy %q (allowed: fail, skip)", s)
	}
}

// DecodeStats describes the outcome of decoding one envelope.
type DecodeStats struct {
	Total    int
	Accepted int
	Skipped  int
}

// Decode reads an envelope and converts its records in arrival order.
func Decode(r io.Reader, policy Policy) ([]Reading, DecodeStats, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, DecodeStats{}, fmt.Errorf("failed to decode envelope: %w", err)
	}
	return env.Readings(policy)
}

// Readings converts the envelope records according to policy.
func (e *Envelope) Readings(policy Policy) ([]Reading, DecodeStats, error) {
	stats := DecodeStats{Total: len(e.Data)}

	if e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode > 299) {
		return nil, stats, fmt.Errorf("envelope reports status %d: %s", e.StatusCode, e.Message)
	}

	out := make([]Reading, 0, len(e.Data))
	for i, raw := range e.Data {
		rd, err := raw.Parse()
		if err != nil {
			if policy == PolicySkip {
				stats.Skipped++
				continue
			}
			return nil, stats, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, rd)
	}
	stats.Accepted = len(out)

	return out, stats, nil
}

// FileSource loads readings from an envelope file on disk.
type FileSource struct {
	Path   string
	Policy Policy
	Logger *slog.Logger
}

// Readings implements pipeline.Source.
func (s *FileSource) Readings(ctx context.Context) ([]Reading, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open readings file: %w", err)
	}
	defer f.Close()

	readings, stats, err := Decode(f, s.Policy)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}

	if s.Logger != nil {
		s.Logger.Info("readings loaded",
			"path", s.Path,
			"total", stats.Total,
			"accepted", stats.Accepted,
			"skipped", stats.Skipped,
		)
	}

	return readings, nil
}

// NewEnvelope wraps readings in a successful envelope.
func NewEnvelope(readings []Reading) *Envelope {
	data := make([]RawReading, len(readings))
	for i, rd := range readings {
		data[i] = RawReading{
			Time:  json.RawMessage(strconv.FormatInt(rd.Timestamp, 10)),
			Temp:  json.RawMessage(strconv.FormatFloat(rd.Temperature, 'f', -1, 64)),
			Humid: json.RawMessage(strconv.FormatFloat(rd.Humidity, 'f', -1, 64)),
		}
	}

	return &Envelope{
		StatusCode: 200,
		Message:    "Last data fetched successfully",
		Data:       data,
	}
}
