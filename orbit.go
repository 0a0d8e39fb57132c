package kerbmath

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

const (
	eccentricityε = 1e-12
	distanceε     = 1e-3 // 1 mm
	angleε        = 1e-9 // in degrees
)

// Orbit defines an orbit (or escape trajectory) via its periapsis and apoapsis radii.
// Orbits are immutable: maneuvers return new orbits.
type Orbit struct {
	Origin  *Body // shared, not owned
	rp, ra  float64
	incl, ω float64 // degrees
	name    string
}

// NewOrbit resolves the provided parameters into an orbit around body.
func NewOrbit(body *Body, p Params) (*Orbit, error) {
	rslt, err := Resolve(body, p)
	if err != nil {
		return nil, err
	}
	return &Orbit{body, rslt.Rp, rslt.Ra, rslt.Incl, rslt.Omega, ""}, nil
}

// NewOrbitFromRadii is the same as NewOrbit with rp and ra (m from the center).
func NewOrbitFromRadii(body *Body, rp, ra, incl, ω float64) (*Orbit, error) {
	return NewOrbit(body, Params{"rp": {rp}, "ra": {ra}, "incl": {incl}, "omega": {ω}})
}

// WithName returns a copy of this orbit with the provided name.
func (o *Orbit) WithName(name string) *Orbit {
	n := *o
	n.name = name
	return &n
}

// Name returns the name of this orbit, if any.
func (o *Orbit) Name() string {
	return o.name
}

// Periapsis returns the periapsis radius (m).
func (o *Orbit) Periapsis() float64 {
	return o.rp
}

// Apoapsis returns the apoapsis radius (m), negative for escape trajectories.
func (o *Orbit) Apoapsis() float64 {
	return o.ra
}

// Inclination returns the inclination (deg).
func (o *Orbit) Inclination() float64 {
	return o.incl
}

// ArgPeriapsis returns the argument of periapsis (deg).
func (o *Orbit) ArgPeriapsis() float64 {
	return o.ω
}

// IsEscape returns whether this is an escape (parabolic or hyperbolic) trajectory.
func (o *Orbit) IsEscape() bool {
	return o.ra < 0
}

// Eccentricity returns the eccentricity.
func (o *Orbit) Eccentricity() float64 {
	return (1 - o.rp/o.ra) / (1 + o.rp/o.ra)
}

// SemiMajorAxis returns the semi-major axis (m), negative for escape trajectories.
func (o *Orbit) SemiMajorAxis() float64 {
	return (o.ra + o.rp) / 2
}

// Energyξ returns the specific mechanical energy ξ (J/kg).
func (o *Orbit) Energyξ() float64 {
	return -0.5 * o.Origin.GM() / o.SemiMajorAxis()
}

// Period returns the orbital period in seconds, +Inf for escape trajectories.
func (o *Orbit) Period() float64 {
	if o.IsEscape() {
		return math.Inf(1)
	}
	return 2 * math.Pi * math.Sqrt(math.Pow(o.SemiMajorAxis(), 3)/o.Origin.GM())
}

// Speed returns the speed at radius r (vis-viva).
func (o *Orbit) Speed(r float64) float64 {
	return math.Sqrt(o.Origin.GM() * (2/r - 1/o.SemiMajorAxis()))
}

// Vp returns the periapsis speed.
func (o *Orbit) Vp() float64 {
	return o.Speed(o.rp)
}

// Va returns the apoapsis speed, or the speed at infinity for escape trajectories.
func (o *Orbit) Va() float64 {
	if o.IsEscape() {
		return o.Vinf()
	}
	return o.Speed(o.ra)
}

// Vinf returns the hyperbolic excess speed, NaN for closed orbits.
func (o *Orbit) Vinf() float64 {
	if !o.IsEscape() {
		return math.NaN()
	}
	return math.Sqrt(-o.Origin.GM() / o.SemiMajorAxis())
}

// SemiParameter returns the semi-latus rectum.
func (o *Orbit) SemiParameter() float64 {
	return o.rp * (1 + o.Eccentricity())
}

// TrueAnomaly returns the true anomaly (deg, in [0, 180]) at radius r on the outbound leg.
// Circular orbits return 0: the radius does not determine the position on a circle.
// Returns NaN if the orbit does not reach r.
func (o *Orbit) TrueAnomaly(r float64) float64 {
	e := o.Eccentricity()
	if scalar.EqualWithinAbs(e, 0, eccentricityε) || scalar.EqualWithinAbs(r, o.rp, distanceε) {
		return 0
	}
	if !o.IsEscape() && scalar.EqualWithinAbs(r, o.ra, distanceε) {
		return 180
	}
	return Rad2deg(math.Acos(clampCos((o.SemiParameter()/r - 1) / e)))
}

// Radius returns the radius at true anomaly ν (deg). Beyond the asymptotes of an escape trajectory,
// the radius is +Inf.
func (o *Orbit) Radius(ν float64) float64 {
	denom := 1 + o.Eccentricity()*math.Cos(Deg2rad(ν))
	if denom <= 0 {
		return math.Inf(1)
	}
	return o.SemiParameter() / denom
}

// FlightPathAngle returns the flight path angle (deg) at radius r on the outbound leg.
func (o *Orbit) FlightPathAngle(r float64) float64 {
	e := o.Eccentricity()
	sinν, cosν := math.Sincos(Deg2rad(o.TrueAnomaly(r)))
	return Rad2deg(math.Atan2(e*sinν, 1+e*cosν))
}

// RV returns the position and velocity vectors (IRF) at radius r. The outbound leg moves away from the
// periapsis, the inbound leg towards it.
func (o *Orbit) RV(r float64, inbound bool) (R, V Vector) {
	ν := Deg2rad(o.TrueAnomaly(r))
	if inbound {
		ν = -ν
	}
	e := o.Eccentricity()
	sinν, cosν := math.Sincos(ν)
	R = Perifocal2IRF(o.incl, o.ω, Vector{r * cosν, r * sinν, 0})
	// Only the direction is taken from the perifocal velocity, the magnitude comes from vis-viva.
	vDir := Perifocal2IRF(o.incl, o.ω, Vector{-sinν, e + cosν, 0}).Unit()
	V = vDir.Scale(o.Speed(r))
	return
}

// R returns the position vector at radius r on the outbound leg.
func (o *Orbit) R(r float64) Vector {
	R, _ := o.RV(r, false)
	return R
}

// V returns the velocity vector at radius r on the outbound leg.
func (o *Orbit) V(r float64) Vector {
	_, V := o.RV(r, false)
	return V
}

// Reaches returns whether the orbit passes through radius r.
func (o *Orbit) Reaches(r float64) bool {
	return r >= o.rp && (o.IsEscape() || r <= o.ra)
}

// String implements the stringer interface.
func (o *Orbit) String() string {
	var rep string
	if o.name != "" {
		rep = o.name + ": "
	}
	rep += o.Origin.Name
	hp := o.rp - o.Origin.Radius
	if o.IsEscape() {
		rep += fmt.Sprintf(" escape trajectory, periapsis %s, vinf=%s", FormatDistance(hp), FormatVelocity(o.Vinf()))
	} else {
		rep += fmt.Sprintf(" orbit, %sx%s", FormatDistance(o.ra-o.Origin.Radius), FormatDistance(hp))
	}
	if o.incl != 0 {
		rep += fmt.Sprintf(", incl=%.2f deg", o.incl)
	}
	if o.ω != 0 {
		rep += fmt.Sprintf(", ω=%.2f deg", o.ω)
	}
	return rep
}

// Equals returns whether two orbits are identical (the name is ignored).
func (o *Orbit) Equals(o1 *Orbit) (bool, error) {
	if !o.Origin.Equals(o1.Origin) {
		return false, errors.New("different origin")
	}
	if !scalar.EqualWithinAbs(o.rp, o1.rp, distanceε) {
		return false, errors.New("periapsis invalid")
	}
	if o.ra != o1.ra && !scalar.EqualWithinAbs(o.ra, o1.ra, distanceε) {
		return false, errors.New("apoapsis invalid")
	}
	if !scalar.EqualWithinAbs(o.incl, o1.incl, angleε) {
		return false, errors.New("inclination invalid")
	}
	if !scalar.EqualWithinAbs(o.ω, o1.ω, angleε) {
		return false, errors.New("argument of periapsis invalid")
	}
	return true, nil
}
