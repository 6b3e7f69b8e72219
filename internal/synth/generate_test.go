package synth

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/smukkama/weather-summary/internal/aggregation"
	"github.com/smukkama/weather-summary/internal/reading"
)

func weekOptions(seed uint64) Options {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return Options{
		Start:     start,
		End:       start.Add(7*24*time.Hour - 5*time.Minute),
		Interval:  5 * time.Minute,
		Smoothing: 4,
		Seed:      seed,
		Location:  time.UTC,
	}
}

func TestGenerateShape(t *testing.T) {
	got, err := Generate(weekOptions(1))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if len(got) != 7*288 {
		t.Fatalf("len = %d, want %d", len(got), 7*288)
	}
	for i, rd := range got {
		if i > 0 && rd.Timestamp-got[i-1].Timestamp != 300 {
			t.Fatalf("reading %d not 5 minutes after previous", i)
		}
		if rd.Temperature < floorTemp || rd.Temperature > baseTemp+4.5 {
			t.Fatalf("reading %d temperature %v out of range", i, rd.Temperature)
		}
		if rd.Humidity < baseHumid-30 || rd.Humidity > baseHumid+30 {
			t.Fatalf("reading %d humidity %v out of range", i, rd.Humidity)
		}
	}
}

func TestGenerateDeterministicPerSeed(t *testing.T) {
	a, _ := Generate(weekOptions(42))
	b, _ := Generate(weekOptions(42))
	c, _ := Generate(weekOptions(43))

	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("same seed differs (-a +b):\n%s", diff)
	}
	if cmp.Equal(a, c) {
		t.Error("different seeds produced identical data")
	}
}

func TestGenerateFeedsValidDays(t *testing.T) {
	readings, err := Generate(weekOptions(7))
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := aggregation.NewConfig("UTC")
	if err != nil {
		t.Fatal(err)
	}
	e, err := aggregation.NewEngine(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(readings)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if res.Overall.TotalValidDays != 7 {
		t.Errorf("TotalValidDays = %d, want 7", res.Overall.TotalValidDays)
	}
	if peak := res.Overall.PeakTemperature; peak == nil || peak.Value <= baseTemp {
		t.Errorf("peak = %+v, want above %v", peak, baseTemp)
	}
	if res.Overall.TotalValidDataPoints != 7*288 {
		t.Errorf("TotalValidDataPoints = %d, want %d", res.Overall.TotalValidDataPoints, 7*288)
	}
}

func TestSmooth(t *testing.T) {
	in := []reading.Reading{
		{Timestamp: 1, Temperature: 30, Humidity: 60},
		{Timestamp: 2, Temperature: 33, Humidity: 66},
		{Timestamp: 3, Temperature: 27, Humidity: 90},
	}
	want := []reading.Reading{
		{Timestamp: 1, Temperature: 31.5, Humidity: 63},
		{Timestamp: 2, Temperature: 30, Humidity: 72},
		{Timestamp: 3, Temperature: 30, Humidity: 78},
	}

	if diff := cmp.Diff(smooth(in, 1), want, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Unexpected result (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(smooth(in, 0), in); diff != "" {
		t.Errorf("zero width changed data:\n%s", diff)
	}
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	opts := weekOptions(1)
	opts.Interval = 0
	if _, err := Generate(opts); err == nil {
		t.Error("zero interval accepted")
	}

	opts = weekOptions(1)
	opts.End = opts.Start.Add(-time.Minute)
	if _, err := Generate(opts); err == nil {
		t.Error("end before start accepted")
	}
}

func TestStringEnvelopeDecodes(t *testing.T) {
	in := []reading.Reading{{Timestamp: 1705305600, Temperature: 29.5, Humidity: 81.25}}

	data, err := json.Marshal(StringEnvelope(in))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"temp":"29.50"`)) {
		t.Errorf("temperature not a string: %s", data)
	}

	got, stats, err := reading.Decode(bytes.NewReader(data), reading.PolicyFail)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if stats.Accepted != 1 {
		t.Errorf("Accepted = %d, want 1", stats.Accepted)
	}
	if diff := cmp.Diff(got, in); diff != "" {
		t.Errorf("Unexpected result (-got +want):\n%s", diff)
	}
}
