package kerbmath

import (
	"fmt"
	"math"
)

// BurnKind defines the kind of impulsive maneuver.
type BurnKind uint8

const (
	// PeriapsisChange burns at apoapsis to change the periapsis.
	PeriapsisChange BurnKind = iota + 1
	// ApoapsisChange burns at periapsis to change the apoapsis.
	ApoapsisChange
	// Deorbit lowers the periapsis to the lowest stable orbit radius.
	Deorbit
	// Escape raises the apoapsis to infinity.
	Escape
	// Circularization raises the periapsis to the apoapsis.
	Circularization
	// InclinationChange rotates the orbital plane.
	InclinationChange
)

func (k BurnKind) String() string {
	switch k {
	case PeriapsisChange:
		return "chrp"
	case ApoapsisChange:
		return "chra"
	case Deorbit:
		return "deorbit"
	case Escape:
		return "escape"
	case Circularization:
		return "circ"
	case InclinationChange:
		return "chir"
	}
	panic("cannot stringify unknown burn kind")
}

// Burn is the result of an impulsive maneuver: the Δv needed at the burn radius to go from the Before orbit to
// the After orbit.
type Burn struct {
	Kind          BurnKind
	Radius        float64 // m from the center
	Δv            float64 // m/s
	Before, After *Orbit
}

func (b Burn) String() string {
	return fmt.Sprintf("%s @ %s: Δv=%s -> %s", b.Kind, FormatDistance(b.Radius-b.Before.Origin.Radius), FormatVelocity(b.Δv), b.After)
}

// apsisBurn computes the tangential Δv at radius r between this orbit and the new one.
func (o *Orbit) apsisBurn(kind BurnKind, r float64, after *Orbit) Burn {
	burns.WithLabelValues(kind.String()).Inc()
	return Burn{kind, r, math.Abs(after.Speed(r) - o.Speed(r)), o, after}
}

func (o *Orbit) changePeriapsis(kind BurnKind, rpNew float64) (Burn, error) {
	if o.IsEscape() {
		return Burn{}, fmt.Errorf("%w: cannot optimally change periapsis while on escape trajectory (ra=%g)", ErrManeuverPrecondition, o.ra)
	}
	if rpNew > o.ra {
		return Burn{}, fmt.Errorf("%w: cannot raise periapsis (%s) over apoapsis (%s)", ErrManeuverPrecondition, FormatDistance(rpNew), FormatDistance(o.ra))
	}
	after, err := NewOrbitFromRadii(o.Origin, rpNew, o.ra, o.incl, o.ω)
	if err != nil {
		return Burn{}, err
	}
	return o.apsisBurn(kind, o.ra, after), nil
}

func (o *Orbit) changeApoapsis(kind BurnKind, raNew float64) (Burn, error) {
	if raNew > 0 && raNew < o.rp {
		return Burn{}, fmt.Errorf("%w: cannot lower apoapsis (%s) below periapsis (%s)", ErrManeuverPrecondition, FormatDistance(raNew), FormatDistance(o.rp))
	}
	after, err := NewOrbitFromRadii(o.Origin, o.rp, raNew, o.incl, o.ω)
	if err != nil {
		return Burn{}, err
	}
	return o.apsisBurn(kind, o.rp, after), nil
}

// ChangePeriapsis returns the apoapsis burn to move the periapsis to rpNew (m from the center).
func (o *Orbit) ChangePeriapsis(rpNew float64) (Burn, error) {
	return o.changePeriapsis(PeriapsisChange, rpNew)
}

// ChangePeriapsisHeight returns the apoapsis burn to move the periapsis to hpNew (km above the surface).
func (o *Orbit) ChangePeriapsisHeight(hpNew float64) (Burn, error) {
	return o.ChangePeriapsis(hpNew*1000 + o.Origin.Radius)
}

// ChangeApoapsis returns the periapsis burn to move the apoapsis to raNew (m from the center).
// An raNew of +Inf leads to a parabolic escape trajectory.
func (o *Orbit) ChangeApoapsis(raNew float64) (Burn, error) {
	return o.changeApoapsis(ApoapsisChange, raNew)
}

// ChangeApoapsisHeight returns the periapsis burn to move the apoapsis to haNew (km above the surface).
func (o *Orbit) ChangeApoapsisHeight(haNew float64) (Burn, error) {
	return o.ChangeApoapsis(haNew*1000 + o.Origin.Radius)
}

// Deorbit returns the apoapsis burn which lowers the periapsis to the lowest stable orbit radius.
func (o *Orbit) Deorbit() (Burn, error) {
	return o.changePeriapsis(Deorbit, o.Origin.MinOrbitRadius())
}

// Escape returns the periapsis burn to a parabolic escape trajectory.
func (o *Orbit) Escape() (Burn, error) {
	return o.changeApoapsis(Escape, math.Inf(1))
}

// Circularize returns the apoapsis burn which raises the periapsis to the apoapsis.
func (o *Orbit) Circularize() (Burn, error) {
	return o.changePeriapsis(Circularization, o.ra)
}

// ChangeInclination returns the burn at radius r (m from the center, outbound leg) to change the inclination
// to inclNew (deg). The velocity vector is rotated about the radius vector.
func (o *Orbit) ChangeInclination(r, inclNew float64) (Burn, error) {
	if !o.Reaches(r) {
		return Burn{}, fmt.Errorf("%w: orbit does not reach radius %s (rp=%s, ra=%s)", ErrManeuverPrecondition, FormatDistance(r), FormatDistance(o.rp), FormatDistance(o.ra))
	}
	after, err := NewOrbitFromRadii(o.Origin, o.rp, o.ra, inclNew, o.ω)
	if err != nil {
		return Burn{}, err
	}
	R, V := o.RV(r, false)
	Vnew := RotateAbout(V, R, Deg2rad(inclNew-o.incl))
	burns.WithLabelValues(InclinationChange.String()).Inc()
	return Burn{InclinationChange, r, Vnew.Sub(V).Norm(), o, after}, nil
}

// ChangeInclinationHeight is ChangeInclination at h km above the surface.
func (o *Orbit) ChangeInclinationHeight(h, inclNew float64) (Burn, error) {
	return o.ChangeInclination(h*1000+o.Origin.Radius, inclNew)
}
