package aggregation

import "math"

// HeatIndex evaluates the heat index polynomial for temperature t (°C) and
// relative humidity h (%), rounded to two decimals.
func HeatIndex(c Coefficients, t, h float64) float64 {
	t2 := t * t
	v := c[0] + c[1]*t + c[2]*t2 +
		h*(c[3]+c[4]*t+c[5]*t2) +
		h*h*(c[6]+c[7]*t+c[8]*t2)

	return round2(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
