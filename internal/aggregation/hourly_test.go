package aggregation

import (
	"errors"
	"testing"
)

func TestSlope(t *testing.T) {
	cases := []struct {
		name    string
		samples []float64
		want    float64
		wantOK  bool
	}{
		{name: "empty", samples: nil, wantOK: false},
		{name: "single", samples: []float64{30}, wantOK: false},
		{name: "rising", samples: []float64{30.0, 30.5, 31.0}, want: 1.0 / 3, wantOK: true},
		{name: "falling", samples: []float64{31.0, 30.5, 30.0}, want: -1.0 / 3, wantOK: true},
		{name: "flat_ends", samples: []float64{30.0, 31.0, 30.0}, want: 0, wantOK: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Slope(tc.samples)
			if ok != tc.wantOK {
				t.Fatalf("Slope() ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && !approx(got, tc.want) {
				t.Errorf("Slope() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRepresentative(t *testing.T) {
	cases := []struct {
		name    string
		samples []float64
		want    float64
	}{
		{name: "rising_takes_max", samples: []float64{30.0, 30.5, 31.0}, want: 31.0},
		{name: "falling_takes_min", samples: []float64{31.0, 30.5, 30.0}, want: 30.0},
		{name: "flat_takes_median", samples: []float64{30.0, 31.0, 30.0}, want: 30.0},
		{name: "single_sample", samples: []float64{28.4}, want: 28.4},
		{name: "rising_with_inner_peak", samples: []float64{29.0, 32.0, 29.5}, want: 32.0},
		{name: "flat_even_count", samples: []float64{30.0, 31.0, 33.0, 30.0}, want: 30.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Representative(tc.samples)
			if err != nil {
				t.Fatalf("Representative() unexpected error: %v", err)
			}
			if !approx(got, tc.want) {
				t.Errorf("Representative() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRepresentativeNoData(t *testing.T) {
	if _, err := Representative(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("Representative(nil) error = %v, want ErrNoData", err)
	}

	var b HourBucket
	if _, err := b.stat(); !errors.Is(err, ErrNoData) {
		t.Errorf("stat() on empty bucket error = %v, want ErrNoData", err)
	}
}

func TestHourBucketStatIndependentSeries(t *testing.T) {
	var b HourBucket
	b.add(30.0, 80)
	b.add(30.5, 75)
	b.add(31.0, 70)

	st, err := b.stat()
	if err != nil {
		t.Fatalf("stat() unexpected error: %v", err)
	}

	if st.count != 3 {
		t.Errorf("count = %d, want 3", st.count)
	}
	if !approx(st.reprTemp, 31.0) {
		t.Errorf("reprTemp = %v, want 31.0 (rising)", st.reprTemp)
	}
	if !approx(st.reprHumid, 70) {
		t.Errorf("reprHumid = %v, want 70 (falling)", st.reprHumid)
	}
	if !approx(st.average, 30.5) {
		t.Errorf("average = %v, want 30.5", st.average)
	}
	if st.slope == nil || !approx(*st.slope, 1.0/3) {
		t.Errorf("slope = %v, want 1/3", st.slope)
	}
}
