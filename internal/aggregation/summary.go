package aggregation

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strconv"
)

// Extreme is a daily peak or low with its local clock time.
type Extreme struct {
	Value float64 `json:"value"`
	Time  string  `json:"time"`
}

// Pair carries a temperature and a humidity figure.
type Pair struct {
	Temp  float64 `json:"temp"`
	Humid float64 `json:"humid"`
}

// HourValues maps local hours (0..23) to a figure. Hours without samples
// are absent.
type HourValues map[int]float64

// MarshalJSON writes the hours in numeric order.
func (h HourValues) MarshalJSON() ([]byte, error) {
	if h == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, hour := range slices.Sorted(maps.Keys(h)) {
		if i > 0 {
			buf.WriteByte(',')
		}
		v, err := json.Marshal(h[hour])
		if err != nil {
			return nil, err
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(hour)))
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Hourly holds the per-hour figures of a day.
type Hourly struct {
	Temp     HourValues `json:"temp"`
	Humid    HourValues `json:"humid"`
	Average  HourValues `json:"average"`
	Slope    HourValues `json:"slope"`
	TempDiff HourValues `json:"temp_diff"`
}

func newHourly() Hourly {
	return Hourly{
		Temp:     make(HourValues),
		Humid:    make(HourValues),
		Average:  make(HourValues),
		Slope:    make(HourValues),
		TempDiff: make(HourValues),
	}
}

// Statistics holds the derived figures of a day. A nil field is undefined.
type Statistics struct {
	TempDeviation      *float64 `json:"temp_deviation"`
	HumidDeviation     *float64 `json:"humid_deviation"`
	CorrelationPeakLow *float64 `json:"correlation_peak_low"`
	TempDiffSum        *float64 `json:"temp_diff_sum"`
}

// DailySummary is the per-day output document.
type DailySummary struct {
	Date           string     `json:"date"`
	HighestTemp    Extreme    `json:"highest_temp"`
	LowestTemp     Extreme    `json:"lowest_temp"`
	DataPointCount int        `json:"data_point_count"`
	IsValid        bool       `json:"is_valid"`
	Total          Pair       `json:"total"`
	Average        Pair       `json:"average"`
	Entries        Entries    `json:"entries"`
	Hourly         Hourly     `json:"hourly"`
	Statistics     Statistics `json:"statistics"`
}

// Record is a global extreme with the date and time it occurred.
type Record struct {
	Value float64 `json:"value"`
	Date  string  `json:"date"`
	Time  string  `json:"time"`
}

// OverallSummary rolls every valid day into global figures.
type OverallSummary struct {
	PeakTemperature                *Record    `json:"overall_peak_temperature"`
	LowTemperature                 *Record    `json:"overall_low_temperature"`
	TotalValidDataPoints           int        `json:"total_valid_data_points"`
	AvgTemp                        float64    `json:"overall_avg_temp"`
	AvgHumidity                    float64    `json:"overall_avg_humidity"`
	TotalRecordedDays              int        `json:"total_recorded_days"`
	TotalValidDays                 int        `json:"total_valid_days"`
	TotalValidTemp                 float64    `json:"overall_total_valid_temp"`
	TotalValidHumidity             float64    `json:"overall_total_valid_humidity"`
	AvgTempsEachHour               HourValues `json:"avg_temps_each_hour"`
	AvgRepresentativeTempsEachHour HourValues `json:"avg_representative_temps_each_hour"`
	CorrelationPeakLow             *float64   `json:"correlation_peak_low_temperature"`
	CorrelationTempHumidity        *float64   `json:"correlation_temperature_humidity"`
}

// IndexEntry is the compact per-day record keyed by date.
type IndexEntry struct {
	IsValid            bool       `json:"is_valid"`
	DataPointCount     int        `json:"data_point_count"`
	HighLow            [2]float64 `json:"high_low"`
	TempHigh           float64    `json:"temp_high"`
	TempLow            float64    `json:"temp_low"`
	CorrelationHighLow *float64   `json:"correlation_high_low"`
	TempDeviation      *float64   `json:"temp_deviation"`
	HumidDeviation     *float64   `json:"humid_deviation"`
	TempDiffSum        *float64   `json:"temp_diff_sum"`
	Total              Pair       `json:"total"`
	Average            Pair       `json:"average"`
}

// DailyIndex maps dates to their compact entries.
type DailyIndex map[string]IndexEntry

// NewIndexEntry condenses a daily summary.
func NewIndexEntry(s *DailySummary) IndexEntry {
	return IndexEntry{
		IsValid:            s.IsValid,
		DataPointCount:     s.DataPointCount,
		HighLow:            [2]float64{s.HighestTemp.Value, s.LowestTemp.Value},
		TempHigh:           s.HighestTemp.Value,
		TempLow:            s.LowestTemp.Value,
		CorrelationHighLow: s.Statistics.CorrelationPeakLow,
		TempDeviation:      s.Statistics.TempDeviation,
		HumidDeviation:     s.Statistics.HumidDeviation,
		TempDiffSum:        s.Statistics.TempDiffSum,
		Total:              s.Total,
		Average:            s.Average,
	}
}

// Result is everything one engine run produces.
type Result struct {
	Days    []DailySummary
	Overall OverallSummary
	Index   DailyIndex
}
