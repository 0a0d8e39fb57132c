package kerbmath

import (
	"fmt"
	"math"
)

// FormatDistance returns a human readable distance, the unit depending on the magnitude.
func FormatDistance(d float64) string {
	switch {
	case math.IsNaN(d):
		return "NaN"
	case d < 0:
		return "-" + FormatDistance(-d)
	case math.IsInf(d, 1):
		return "inf"
	case d < 1:
		return fmt.Sprintf("%.4fm", d)
	case d < 100:
		return fmt.Sprintf("%.2fm", d)
	case d < 100e3:
		return fmt.Sprintf("%.2fkm", d/1e3)
	case d < 10000e3:
		return fmt.Sprintf("%.1fkm", d/1e3)
	case d < 1000000e3:
		return fmt.Sprintf("%.0fkm", d/1e3)
	case d < 100e9:
		return fmt.Sprintf("%.2fGm", d/1e9)
	case d < 10000e9:
		return fmt.Sprintf("%.1fGm", d/1e9)
	}
	return fmt.Sprintf("%.0fGm", d/1e9)
}

// FormatVelocity returns a human readable velocity.
func FormatVelocity(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case v < 0:
		return "-" + FormatVelocity(-v)
	case math.IsInf(v, 1):
		return "inf"
	case v < 1:
		return fmt.Sprintf("%.0fmm/s", v/1e-3)
	case v < 100:
		return fmt.Sprintf("%.3fm/s", v)
	case v < 10000:
		return fmt.Sprintf("%.1fm/s", v)
	case v < 1000e3:
		return fmt.Sprintf("%.1fkm/s", v/1e3)
	}
	return fmt.Sprintf("%.0fkm/s", v/1e3)
}
