package protocol

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/smukkama/weather-summary/internal/reading"
)

// ReadingMessage is one raw reading on the readings topic
type ReadingMessage struct {
	StationID  string    `json:"station_id"`
	Time       int64     `json:"time"`
	Temp       float64   `json:"temp"`
	Humid      float64   `json:"humid"`
	ReceivedAt time.Time `json:"received_at"`
}

// NewReadingMessage wraps a reading for publishing
func NewReadingMessage(stationID string, rd reading.Reading, receivedAt time.Time) *ReadingMessage {
	return &ReadingMessage{
		StationID:  stationID,
		Time:       rd.Timestamp,
		Temp:       rd.Temperature,
		Humid:      rd.Humidity,
		ReceivedAt: receivedAt,
	}
}

// Reading validates the message and converts it to a reading
func (m *ReadingMessage) Reading() (reading.Reading, error) {
	if err := reading.CheckTimestamp(m.Time); err != nil {
		return reading.Reading{}, err
	}
	if math.IsNaN(m.Temp) || math.IsInf(m.Temp, 0) || math.IsNaN(m.Humid) || math.IsInf(m.Humid, 0) {
		return reading.Reading{}, fmt.Errorf("%w: non-finite value", reading.ErrMalformed)
	}

	return reading.Reading{
		Timestamp:   m.Time,
		Temperature: m.Temp,
		Humidity:    m.Humid,
	}, nil
}

// SummaryKind distinguishes the documents on the summaries topic
type SummaryKind string

const (
	SummaryKindDaily   SummaryKind = "daily"
	SummaryKindOverall SummaryKind = "overall"
)

// OverallKey is the message key of the overall document
const OverallKey = "overall"

// SummaryMessage carries one summary document produced by a run
type SummaryMessage struct {
	RunID   string          `json:"run_id"`
	Kind    SummaryKind     `json:"kind"`
	Date    string          `json:"date,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// Key returns the Kafka message key: the date, or OverallKey
func (m *SummaryMessage) Key() string {
	if m.Kind == SummaryKindOverall {
		return OverallKey
	}
	return m.Date
}

// EncodeReadingMessage encodes a ReadingMessage to JSON
func EncodeReadingMessage(msg *ReadingMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeReadingMessage decodes JSON to ReadingMessage
func DecodeReadingMessage(data []byte) (*ReadingMessage, error) {
	var msg ReadingMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EncodeSummaryMessage encodes a SummaryMessage to JSON
func EncodeSummaryMessage(msg *SummaryMessage) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeSummaryMessage decodes JSON to SummaryMessage
func DecodeSummaryMessage(data []byte) (*SummaryMessage, error) {
	var msg SummaryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case SummaryKindDaily, SummaryKindOverall:
	default:
		return nil, fmt.Errorf("unknown summary kind %q", msg.Kind)
	}
	return &msg, nil
}
