package aggregation

import "testing"

func TestHeatIndex(t *testing.T) {
	cases := []struct {
		temp, humid float64
		want        float64
	}{
		{31.5, 70, 38.96},
		{30, 80, 37.65},
		{25, 50, 25.88},
		{33.2, 55, 38.26},
		{0, 0, -8.78},
	}

	for _, tc := range cases {
		got := HeatIndex(DefaultCoefficients, tc.temp, tc.humid)
		if got != tc.want {
			t.Errorf("HeatIndex(%v, %v) = %v, want %v", tc.temp, tc.humid, got, tc.want)
		}
	}
}

func TestHeatIndexCustomCoefficients(t *testing.T) {
	c := Coefficients{1, 1, 0, 0, 0, 0, 0, 0, 0}
	if got := HeatIndex(c, 2.346, 99); got != 3.35 {
		t.Errorf("HeatIndex() = %v, want 3.35", got)
	}
}
