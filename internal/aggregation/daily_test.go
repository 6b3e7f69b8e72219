package aggregation

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/smukkama/weather-summary/internal/reading"
)

func singapore(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestLocalize(t *testing.T) {
	l := NewLocalizer(singapore(t), DefaultRoundTo)

	cases := []struct {
		name string
		ts   int64
		want Localized
	}{
		{
			name: "evening",
			ts:   1702128108, // 2023-12-09 21:21:48 +08
			want: Localized{Date: "2023-12-09", Hour: 21, Rounded: "21:20", Clock: "09:21 PM"},
		},
		{
			name: "just_after_midnight",
			ts:   1702137660, // 2023-12-10 00:01:00 +08
			want: Localized{Date: "2023-12-10", Hour: 0, Rounded: "00:00", Clock: "12:01 AM"},
		},
		{
			name: "rounds_up",
			ts:   1702128108 + 72, // 21:23:00
			want: Localized{Date: "2023-12-09", Hour: 21, Rounded: "21:25", Clock: "09:23 PM"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rd := reading.Reading{Timestamp: tc.ts, Temperature: 30, Humidity: 70}
			got, err := l.Localize(rd)
			if err != nil {
				t.Fatalf("Localize() unexpected error: %v", err)
			}
			tc.want.Reading = rd
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Unexpected result (-got +want):\n%s", diff)
			}
		})
	}
}

func TestLocalizeInvalidTimestamp(t *testing.T) {
	l := NewLocalizer(singapore(t), DefaultRoundTo)
	for _, ts := range []int64{-1, reading.MaxTimestamp + 1} {
		if _, err := l.Localize(reading.Reading{Timestamp: ts}); !errors.Is(err, reading.ErrInvalidTimestamp) {
			t.Errorf("Localize(%d) error = %v, want ErrInvalidTimestamp", ts, err)
		}
	}
}

func TestDayBucketAdd(t *testing.T) {
	d := newDayBucket("2023-12-10", 3)

	add := func(temp, humid float64, rounded, clock string) {
		d.Add(Localized{
			Reading: reading.Reading{Temperature: temp, Humidity: humid},
			Date:    "2023-12-10",
			Rounded: rounded,
			Clock:   clock,
		}, HeatIndex(DefaultCoefficients, temp, humid))
	}

	add(27.0, 90, "00:00", "12:01 AM")
	if d.IsValid {
		t.Error("day valid after 1 reading with threshold 3")
	}
	add(31.0, 70, "13:00", "01:00 PM")
	add(31.0, 68, "13:05", "01:05 PM")
	add(27.0, 88, "23:50", "11:50 PM")

	if d.DataPointCount != 4 {
		t.Errorf("DataPointCount = %d, want 4", d.DataPointCount)
	}
	if !d.IsValid {
		t.Error("day not valid after 4 readings with threshold 3")
	}
	if d.PeakTemp != 31.0 || d.PeakTime != "01:00 PM" {
		t.Errorf("peak = %v at %s, want 31 at 01:00 PM (first occurrence)", d.PeakTemp, d.PeakTime)
	}
	if d.LowestTemp != 27.0 || d.LowestTime != "12:01 AM" {
		t.Errorf("low = %v at %s, want 27 at 12:01 AM (first occurrence)", d.LowestTemp, d.LowestTime)
	}
	if !approx(d.TotalTemp, 116) || !approx(d.TotalHumidity, 316) {
		t.Errorf("totals = %v/%v, want 116/316", d.TotalTemp, d.TotalHumidity)
	}

	wantTimes := []string{"13:00", "13:05", "23:50"}
	if diff := cmp.Diff(d.Entries.Time, wantTimes); diff != "" {
		t.Errorf("midnight entry not excluded (-got +want):\n%s", diff)
	}
	if len(d.Entries.HeatIndex) != 3 || d.Entries.HeatIndex[0] != HeatIndex(DefaultCoefficients, 31.0, 70) {
		t.Errorf("unexpected heat index entries: %v", d.Entries.HeatIndex)
	}
}

func TestDayBucketValidityThreshold(t *testing.T) {
	d := newDayBucket("2024-01-15", DefaultValidityThreshold)
	for i := 0; i < DefaultValidityThreshold; i++ {
		if d.IsValid != (d.DataPointCount >= DefaultValidityThreshold) {
			t.Fatalf("IsValid = %v with %d readings", d.IsValid, d.DataPointCount)
		}
		d.Add(Localized{Reading: reading.Reading{Temperature: 30, Humidity: 70}, Rounded: "12:00"}, 0)
	}

	if d.DataPointCount != 230 || !d.IsValid {
		t.Errorf("count = %d valid = %v, want 230 valid", d.DataPointCount, d.IsValid)
	}
}
