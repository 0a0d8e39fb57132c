package kerbmath

import (
	"fmt"
	"math"
)

// Atmosphere is an exponential atmosphere with a hard cutoff altitude.
// All heights are in meters above the surface.
type Atmosphere struct {
	Cutoff          float64 // altitude above which there is no atmosphere (0 for vacuum)
	ScaleHeight     float64 // altitude over which pressure and density decrease by e
	SurfacePressure float64 // N/m^2
	SurfaceDensity  float64 // kg/m^3
}

// Vacuum returns an atmosphere which does not exist.
func Vacuum() Atmosphere {
	return Atmosphere{}
}

// NewAtmosphere returns a validated atmosphere.
func NewAtmosphere(cutoff, scaleHeight, p0, ρ0 float64) (Atmosphere, error) {
	if !(cutoff >= 0) || math.IsInf(cutoff, 0) {
		return Atmosphere{}, fmt.Errorf("%w: atmosphere cutoff must be finite and >= 0, but is %g", ErrOutOfDomainValue, cutoff)
	}
	if cutoff > 0 {
		if !(scaleHeight > 0) {
			return Atmosphere{}, fmt.Errorf("%w: scale height must be > 0, but is %g", ErrOutOfDomainValue, scaleHeight)
		}
		if !(p0 >= 0) {
			return Atmosphere{}, fmt.Errorf("%w: surface pressure must be >= 0, but is %g", ErrOutOfDomainValue, p0)
		}
		if !(ρ0 >= 0) {
			return Atmosphere{}, fmt.Errorf("%w: surface density must be >= 0, but is %g", ErrOutOfDomainValue, ρ0)
		}
	}
	return Atmosphere{cutoff, scaleHeight, p0, ρ0}, nil
}

// IsVacuum returns whether this atmosphere has no extent.
func (a Atmosphere) IsVacuum() bool {
	return a.Cutoff <= 0
}

// Pressure returns the pressure at height h (N/m^2).
func (a Atmosphere) Pressure(h float64) float64 {
	if h >= a.Cutoff {
		return 0
	}
	return a.SurfacePressure * math.Exp(-h/a.ScaleHeight)
}

// Density returns the air density at height h (kg/m^3).
// Density is taken proportional to pressure, i.e. the temperature is constant.
func (a Atmosphere) Density(h float64) float64 {
	if h >= a.Cutoff {
		return 0
	}
	return a.SurfaceDensity * math.Exp(-h/a.ScaleHeight)
}

// DragAccel returns the (positive) deceleration due to drag at height h for a velocity v relative to the
// atmosphere and a drag coefficient cd (usually 0.2).
func (a Atmosphere) DragAccel(h, v, cd float64) float64 {
	return 0.5 * a.Density(h) * v * v * cd
}

// TerminalVelocity returns the velocity at which drag equals the gravitational acceleration g at height h.
func (a Atmosphere) TerminalVelocity(h, g, cd float64) float64 {
	if h >= a.Cutoff {
		return math.Inf(1)
	}
	return math.Sqrt(g / (0.5 * a.Density(h) * cd))
}

func (a Atmosphere) String() string {
	if a.IsVacuum() {
		return "vacuum"
	}
	return fmt.Sprintf("cutoff=%s H=%s p0=%.0fPa ρ0=%.4fkg/m^3", FormatDistance(a.Cutoff), FormatDistance(a.ScaleHeight), a.SurfacePressure, a.SurfaceDensity)
}
