package database

import (
	"encoding/json"
	"time"
)

// OverallName is the overall_summary row written by each run.
const OverallName = "overall"

// StoredReading is one row of the readings table.
type StoredReading struct {
	ID          int64
	StationID   string
	Timestamp   int64
	Temperature float64
	Humidity    float64
	ReceivedAt  time.Time
}

// DailyRow is one row of the daily_summary table.
type DailyRow struct {
	Date           string
	IsValid        bool
	DataPointCount int
	Document       json.RawMessage
	RunID          string
	UpdatedAt      time.Time
}

// OverallRow is one row of the overall_summary table.
type OverallRow struct {
	Name      string
	Document  json.RawMessage
	RunID     string
	UpdatedAt time.Time
}
