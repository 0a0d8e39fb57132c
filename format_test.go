package kerbmath

import (
	"math"
	"testing"
)

func TestFormatDistance(t *testing.T) {
	for _, tc := range []struct {
		d   float64
		exp string
	}{
		{0.5, "0.5000m"},
		{12.5, "12.50m"},
		{1234, "1.23km"},
		{69077.553, "69.08km"},
		{600000, "600.0km"},
		{13599840, "13600km"},
		{1.3599840256e10, "13.60Gm"},
		{-1234, "-1.23km"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{math.NaN(), "NaN"},
	} {
		if got := FormatDistance(tc.d); got != tc.exp {
			t.Fatalf("FormatDistance(%g)=%s, expected %s", tc.d, got, tc.exp)
		}
	}
}

func TestFormatVelocity(t *testing.T) {
	for _, tc := range []struct {
		v   float64
		exp string
	}{
		{0.25, "250mm/s"},
		{9.81, "9.810m/s"},
		{2246.11, "2246.1m/s"},
		{12345, "12.3km/s"},
		{math.Inf(1), "inf"},
		{math.NaN(), "NaN"},
	} {
		if got := FormatVelocity(tc.v); got != tc.exp {
			t.Fatalf("FormatVelocity(%g)=%s, expected %s", tc.v, got, tc.exp)
		}
	}
}
