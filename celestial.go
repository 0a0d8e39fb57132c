package kerbmath

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// G is the gravitational constant (m^3 kg^-1 s^-2).
	G = 6.67384e-11
)

// Body defines a celestial body. A Body must be created via NewBody and must not be altered afterwards:
// orbits hold a pointer to their body.
type Body struct {
	Name           string
	Mass           float64 // kg
	Radius         float64 // m
	MaxElevation   float64 // highest terrain above the surface (m)
	RotationPeriod float64 // sidereal rotation period (s), +Inf if not rotating
	Atmosphere     Atmosphere
	μ              float64
}

// NewBody returns a new body. A zero rotation period means the body does not rotate.
// A negative rotation period is a retrograde rotation.
func NewBody(name string, mass, radius, maxElevation, rotationPeriod float64, atm Atmosphere) (*Body, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: body name may not be empty", ErrInvalidParameterCombination)
	}
	if !(mass > 0) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("%w: mass of %s must be > 0, but is %g", ErrOutOfDomainValue, name, mass)
	}
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: radius of %s must be > 0, but is %g", ErrOutOfDomainValue, name, radius)
	}
	if !(maxElevation >= 0) {
		return nil, fmt.Errorf("%w: max elevation of %s must be >= 0, but is %g", ErrOutOfDomainValue, name, maxElevation)
	}
	if math.IsNaN(rotationPeriod) {
		return nil, fmt.Errorf("%w: rotation period of %s is NaN", ErrOutOfDomainValue, name)
	}
	if rotationPeriod == 0 {
		rotationPeriod = math.Inf(1)
	}
	if _, err := NewAtmosphere(atm.Cutoff, atm.ScaleHeight, atm.SurfacePressure, atm.SurfaceDensity); err != nil {
		return nil, fmt.Errorf("atmosphere of %s: %w", name, err)
	}
	return &Body{name, mass, radius, maxElevation, rotationPeriod, atm, G * mass}, nil
}

// mustBody is only used for the definitions below.
func mustBody(name string, mass, radius, maxElevation, rotationPeriod float64, atm Atmosphere) *Body {
	b, err := NewBody(name, mass, radius, maxElevation, rotationPeriod, atm)
	if err != nil {
		panic(err)
	}
	return b
}

// GM returns μ (which is unexported because it's a lowercase letter)
func (b *Body) GM() float64 {
	return b.μ
}

// Accel returns the gravitational acceleration at radius r from the center (m/s^2).
func (b *Body) Accel(r float64) float64 {
	return b.μ / (r * r)
}

// SurfaceGravity returns the gravitational acceleration at the surface (m/s^2).
func (b *Body) SurfaceGravity() float64 {
	return b.Accel(b.Radius)
}

// MinOrbitRadius returns the radius of the lowest stable orbit: outside the atmosphere and above the highest
// terrain.
func (b *Body) MinOrbitRadius() float64 {
	return b.Radius + math.Max(b.Atmosphere.Cutoff, b.MaxElevation)
}

// EntryRadius returns the radius at which the atmosphere starts.
func (b *Body) EntryRadius() float64 {
	return b.Radius + b.Atmosphere.Cutoff
}

// CollisionRadius returns the radius below which terrain may be hit.
func (b *Body) CollisionRadius() float64 {
	return b.Radius + b.MaxElevation
}

// MinOrbit returns the lowest stable circular orbit.
func (b *Body) MinOrbit(incl, ω float64) (*Orbit, error) {
	o, err := NewOrbitFromRadii(b, b.MinOrbitRadius(), b.MinOrbitRadius(), incl, ω)
	if err != nil {
		return nil, err
	}
	return o.WithName("min" + b.Name), nil
}

// RotationVelocity returns the velocity of the co-rotating atmosphere at position R (IRF).
// The rotation axis is z and the rotation is prograde (counter-clockwise seen from north).
func (b *Body) RotationVelocity(R Vector) Vector {
	if math.IsInf(b.RotationPeriod, 0) {
		return Vector{}
	}
	Ω := Vector{0, 0, 2 * math.Pi / b.RotationPeriod}
	return Ω.Cross(R)
}

// TerminalVelocity returns the terminal velocity at height h (m) above the surface.
func (b *Body) TerminalVelocity(h, cd float64) float64 {
	return b.Atmosphere.TerminalVelocity(h, b.Accel(b.Radius+h), cd)
}

// String returns the radius and, if relevant, the height of the lowest stable orbit.
func (b *Body) String() string {
	rep := b.Name + ": " + FormatDistance(b.Radius)
	if minOrbitH := b.MinOrbitRadius() - b.Radius; minOrbitH > 0.0001*b.Radius {
		rep += " + " + FormatDistance(minOrbitH)
	}
	return rep
}

// Equals returns whether the provided body is the same.
func (b *Body) Equals(o *Body) bool {
	if b == o {
		return true
	}
	if b == nil || o == nil {
		return false
	}
	return b.Name == o.Name && b.Mass == o.Mass && b.Radius == o.Radius
}

// BodyFromString returns a built-in body from its name.
func BodyFromString(name string) (*Body, error) {
	if b, ok := KerbolSystem[strings.ToLower(name)]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("undefined body '%s'", name)
}

// BodyNames returns the sorted names of the provided bodies.
func BodyNames(bodies map[string]*Body) []string {
	names := make([]string, 0, len(bodies))
	for _, b := range bodies {
		names = append(names, b.Name)
	}
	sort.Strings(names)
	return names
}

/* Definitions */

// Kerbol is the star.
var Kerbol = mustBody("Kerbol", 1.7565670e28, 261600000, 0, 432000, Vacuum())

// Moho is hot.
var Moho = mustBody("Moho", 2.5263617e21, 250000, 6818, 1210000, Vacuum())

// Eve has the thickest atmosphere around.
var Eve = mustBody("Eve", 1.2244127e23, 700000, 7540, 80500, Atmosphere{96708.574, 7000, 506625, 6.1154743})

// Gilly is Eve's captured asteroid.
var Gilly = mustBody("Gilly", 1.2420512e17, 13000, 6401, 28255, Vacuum())

// Kerbin is home.
var Kerbin = mustBody("Kerbin", 5.2915793e22, 600000, 6764.1, 21549.425, Atmosphere{69077.553, 5000, 101325, 1.2230948})

// Mun is the first stop.
var Mun = mustBody("Mun", 9.7600236e20, 200000, 7061, 138984.38, Vacuum())

// Minmus is minty.
var Minmus = mustBody("Minmus", 2.6457897e19, 60000, 5724, 40400, Vacuum())

// Duna is red.
var Duna = mustBody("Duna", 4.5154812e21, 320000, 8264, 65517.859, Atmosphere{41446.246, 3000, 20265, 0.2446189})

// Ike orbits Duna.
var Ike = mustBody("Ike", 2.7821949e20, 130000, 12725, 65517.862, Vacuum())

// Dres is often forgotten.
var Dres = mustBody("Dres", 3.2191322e20, 138000, 5700, 34800, Vacuum())

// Jool is green and has no surface to speak of.
var Jool = mustBody("Jool", 4.2332635e24, 6000000, 0, 36000, Atmosphere{138155.11, 10000, 1519875, 18.346422})

// Laythe is the ocean moon.
var Laythe = mustBody("Laythe", 2.9397663e22, 500000, 6079, 52980.879, Atmosphere{55262.042, 4000, 81060, 0.9784759})

// Vall is icy.
var Vall = mustBody("Vall", 3.1088028e21, 300000, 7976, 105962.09, Vacuum())

// Tylo is the heavy one.
var Tylo = mustBody("Tylo", 4.2332635e22, 600000, 11290, 211926.36, Vacuum())

// Bop is a captured rock.
var Bop = mustBody("Bop", 3.7261536e19, 65000, 21757, 544507.4, Vacuum())

// Pol is small.
var Pol = mustBody("Pol", 1.0813636e19, 44000, 5590, 901902.62, Vacuum())

// Eeloo is far away.
var Eeloo = mustBody("Eeloo", 1.1149358e21, 210000, 3874, 19460, Vacuum())

// KerbolSystem lists the built-in bodies by lower case name.
var KerbolSystem = map[string]*Body{
	"kerbol": Kerbol,
	"moho":   Moho,
	"eve":    Eve,
	"gilly":  Gilly,
	"kerbin": Kerbin,
	"mun":    Mun,
	"minmus": Minmus,
	"duna":   Duna,
	"ike":    Ike,
	"dres":   Dres,
	"jool":   Jool,
	"laythe": Laythe,
	"vall":   Vall,
	"tylo":   Tylo,
	"bop":    Bop,
	"pol":    Pol,
	"eeloo":  Eeloo,
}
