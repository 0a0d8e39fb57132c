package kerbmath

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Params holds the raw, user supplied orbit parameters keyed by name. Most parameters take a single value,
// `vr` and `vh` take two (speed then radius or height).
//
//	rp, hp        periapsis radius (m) or height above surface (km)
//	ra, ha        apoapsis radius (m) or height above surface (km)
//	a, vr, vh,
//	vinf, T,
//	espec         semi-major axis (m), speed at a radius (m/s, m), speed at a height (m/s, km),
//	              hyperbolic excess speed (m/s), period (s), specific orbital energy (J/kg)
//	e             eccentricity
//	vp, va        periapsis and apoapsis speed (m/s)
//	incl, omega   inclination and argument of periapsis (deg), always optional
//
// Exactly two of the six groups (periapsis, apoapsis, shape, e, vp, va) must be provided.
type Params map[string][]float64

// Set sets a parameter and returns the params to allow chaining.
func (p Params) Set(name string, values ...float64) Params {
	p[name] = values
	return p
}

// ParseParams parses `name=value[,value]` tokens.
func ParseParams(tokens []string) (Params, error) {
	p := Params{}
	for _, token := range tokens {
		kv := strings.SplitN(token, "=", 2)
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			return nil, fmt.Errorf("%w: malformed parameter `%s` (expected name=value)", ErrInvalidParameterCombination, token)
		}
		name := strings.TrimSpace(kv[0])
		if _, dup := p[name]; dup {
			return nil, fmt.Errorf("%w: parameter %s given twice", ErrInvalidParameterCombination, name)
		}
		var values []float64
		for _, raw := range strings.Split(kv[1], ",") {
			val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: could not parse %s=%s: %s", ErrOutOfDomainValue, name, raw, err)
			}
			values = append(values, val)
		}
		p[name] = values
	}
	return p, nil
}

type paramGroup uint8

// Groups are in the same order as the canonical elements they produce.
const (
	periapsisGroup paramGroup = iota
	apoapsisGroup
	shapeGroup
	eccentricityGroup
	periapsisSpeedGroup
	apoapsisSpeedGroup
	numGroups
	noGroup paramGroup = 255
)

func (g paramGroup) String() string {
	switch g {
	case periapsisGroup:
		return "periapsis"
	case apoapsisGroup:
		return "apoapsis"
	case shapeGroup:
		return "shape"
	case eccentricityGroup:
		return "eccentricity"
	case periapsisSpeedGroup:
		return "periapsis speed"
	case apoapsisSpeedGroup:
		return "apoapsis speed"
	}
	return "none"
}

type paramSpec struct {
	group paramGroup
	arity int
}

var paramSpecs = map[string]paramSpec{
	"rp":    {periapsisGroup, 1},
	"hp":    {periapsisGroup, 1},
	"ra":    {apoapsisGroup, 1},
	"ha":    {apoapsisGroup, 1},
	"a":     {shapeGroup, 1},
	"vr":    {shapeGroup, 2},
	"vh":    {shapeGroup, 2},
	"vinf":  {shapeGroup, 1},
	"T":     {shapeGroup, 1},
	"espec": {shapeGroup, 1},
	"e":     {eccentricityGroup, 1},
	"vp":    {periapsisSpeedGroup, 1},
	"va":    {apoapsisSpeedGroup, 1},
	"incl":  {noGroup, 1},
	"omega": {noGroup, 1},
}

// Combination enumerates which two canonical elements were provided.
type Combination uint8

const (
	// CombinationNone is the zero value.
	CombinationNone Combination = iota
	// RpRa is (periapsis, apoapsis)
	RpRa
	// RpA is (periapsis, semi-major axis)
	RpA
	// RpE is (periapsis, eccentricity)
	RpE
	// RpVp is (periapsis, periapsis speed)
	RpVp
	// RpVa is (periapsis, apoapsis speed), not implemented.
	RpVa
	// RaA is (apoapsis, semi-major axis)
	RaA
	// RaE is (apoapsis, eccentricity)
	RaE
	// RaVp is (apoapsis, periapsis speed), not implemented.
	RaVp
	// RaVa is (apoapsis, apoapsis speed)
	RaVa
	// AE is (semi-major axis, eccentricity)
	AE
	// AVp is (semi-major axis, periapsis speed), not implemented.
	AVp
	// AVa is (semi-major axis, apoapsis speed), not implemented.
	AVa
	// EVp is (eccentricity, periapsis speed)
	EVp
	// EVa is (eccentricity, apoapsis speed)
	EVa
	// VpVa is (periapsis speed, apoapsis speed), not implemented.
	VpVa
)

// combinations is indexed by the two (ordered) groups.
var combinations = [numGroups][numGroups]Combination{
	periapsisGroup:      {apoapsisGroup: RpRa, shapeGroup: RpA, eccentricityGroup: RpE, periapsisSpeedGroup: RpVp, apoapsisSpeedGroup: RpVa},
	apoapsisGroup:       {shapeGroup: RaA, eccentricityGroup: RaE, periapsisSpeedGroup: RaVp, apoapsisSpeedGroup: RaVa},
	shapeGroup:          {eccentricityGroup: AE, periapsisSpeedGroup: AVp, apoapsisSpeedGroup: AVa},
	eccentricityGroup:   {periapsisSpeedGroup: EVp, apoapsisSpeedGroup: EVa},
	periapsisSpeedGroup: {apoapsisSpeedGroup: VpVa},
}

func combinationOf(g1, g2 paramGroup) Combination {
	if g1 > g2 {
		g1, g2 = g2, g1
	}
	return combinations[g1][g2]
}

// Supported returns whether the combination can be resolved.
func (c Combination) Supported() bool {
	switch c {
	case RpRa, RpA, RpE, RpVp, RaA, RaE, RaVa, AE, EVp, EVa:
		return true
	}
	return false
}

func (c Combination) String() string {
	switch c {
	case RpRa:
		return "rp, ra"
	case RpA:
		return "rp, a"
	case RpE:
		return "rp, e"
	case RpVp:
		return "rp, vp"
	case RpVa:
		return "rp, va"
	case RaA:
		return "ra, a"
	case RaE:
		return "ra, e"
	case RaVp:
		return "ra, vp"
	case RaVa:
		return "ra, va"
	case AE:
		return "a, e"
	case AVp:
		return "a, vp"
	case AVa:
		return "a, va"
	case EVp:
		return "e, vp"
	case EVa:
		return "e, va"
	case VpVa:
		return "vp, va"
	}
	return "none"
}

// Resolution is the canonical form of an orbit: the periapsis and apoapsis radii (m from the center of the
// body), the inclination and the argument of periapsis (deg).
// By convention, an escape trajectory has a negative apoapsis, and a parabolic one has ra = -Inf.
type Resolution struct {
	Rp, Ra      float64
	Incl, Omega float64
	Combination Combination
}

// Resolve turns a set of raw parameters into the canonical (rp, ra) pair.
func Resolve(body *Body, p Params) (Resolution, error) {
	r, err := resolve(body, p)
	if err != nil {
		resolveFailures.WithLabelValues(errorKind(err)).Inc()
		return Resolution{}, err
	}
	resolutions.WithLabelValues(r.Combination.String()).Inc()
	return r, nil
}

func resolve(body *Body, p Params) (Resolution, error) {
	var rslt Resolution
	if body == nil {
		return rslt, fmt.Errorf("%w: an orbit needs a body", ErrInvalidParameterCombination)
	}
	// Sort the names for deterministic error messages.
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	var given [numGroups]string
	for _, name := range names {
		spec, known := paramSpecs[name]
		if !known {
			return rslt, fmt.Errorf("%w: unknown parameter `%s`", ErrInvalidParameterCombination, name)
		}
		if len(p[name]) != spec.arity {
			return rslt, fmt.Errorf("%w: %s takes %d value(s), got %d", ErrInvalidParameterCombination, name, spec.arity, len(p[name]))
		}
		if spec.group == noGroup {
			continue
		}
		if prev := given[spec.group]; prev != "" {
			return rslt, fmt.Errorf("%w: %s and %s are mutually exclusive", ErrInvalidParameterCombination, prev, name)
		}
		given[spec.group] = name
	}

	var groups []paramGroup
	for g := paramGroup(0); g < numGroups; g++ {
		if given[g] != "" {
			groups = append(groups, g)
		}
	}
	if len(groups) != 2 {
		var provided []string
		for _, g := range groups {
			provided = append(provided, given[g])
		}
		return rslt, fmt.Errorf("%w: exactly two of periapsis, apoapsis, shape, e, vp, va must be specified, got %d (%s)", ErrInvalidParameterCombination, len(groups), strings.Join(provided, ", "))
	}

	for _, angle := range []string{"incl", "omega"} {
		if vals, ok := p[angle]; ok {
			if math.IsNaN(vals[0]) || math.IsInf(vals[0], 0) {
				return rslt, fmt.Errorf("%w: %s must be finite, but is %g", ErrOutOfDomainValue, angle, vals[0])
			}
		}
	}
	if vals, ok := p["incl"]; ok {
		rslt.Incl = vals[0]
	}
	if vals, ok := p["omega"]; ok {
		rslt.Omega = vals[0]
	}

	var v [numGroups]float64
	for _, g := range groups {
		val, err := canonical(body, given[g], p[given[g]])
		if err != nil {
			return rslt, err
		}
		v[g] = val
	}

	rslt.Combination = combinationOf(groups[0], groups[1])
	rp, ra, err := solve(body, rslt.Combination, v)
	if err != nil {
		return rslt, err
	}
	if err := checkRadii(rp, ra); err != nil {
		return rslt, err
	}
	rslt.Rp, rslt.Ra = rp, ra
	return rslt, nil
}

// canonical converts a raw parameter into the canonical value of its group.
func canonical(body *Body, name string, vals []float64) (float64, error) {
	for _, val := range vals {
		if math.IsNaN(val) {
			return 0, fmt.Errorf("%w: %s is NaN", ErrOutOfDomainValue, name)
		}
	}
	μ := body.GM()
	switch name {
	case "rp":
		return vals[0], nil
	case "hp":
		return vals[0]*1000 + body.Radius, nil
	case "ra", "ha":
		ra := vals[0]
		if name == "ha" {
			ra = ra*1000 + body.Radius
		}
		// By convention, parabolic orbits have an ra of -inf.
		if math.IsInf(ra, 1) {
			ra = math.Inf(-1)
		}
		return ra, nil
	case "a":
		a := vals[0]
		if a == 0 {
			return 0, fmt.Errorf("%w: a must not be zero", ErrOutOfDomainValue)
		}
		if math.IsInf(a, 1) {
			a = math.Inf(-1)
		}
		return a, nil
	case "vr", "vh":
		v, r := vals[0], vals[1]
		if name == "vh" {
			r = r*1000 + body.Radius
		}
		if v < 0 || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%w: speed of %s must be finite and >= 0, but is %g", ErrOutOfDomainValue, name, v)
		}
		if !(r > 0) {
			return 0, fmt.Errorf("%w: radius of %s must be > 0, but is %g", ErrOutOfDomainValue, name, r)
		}
		return semiMajorAxisFromEnergy(μ, 0.5*v*v-μ/r), nil
	case "vinf":
		vinf := vals[0]
		if vinf < 0 || math.IsInf(vinf, 0) {
			return 0, fmt.Errorf("%w: vinf must be finite and >= 0, but is %g", ErrOutOfDomainValue, vinf)
		}
		return semiMajorAxisFromEnergy(μ, 0.5*vinf*vinf), nil
	case "T":
		T := vals[0]
		if !(T > 0) {
			return 0, fmt.Errorf("%w: T must be > 0, but is %g", ErrOutOfDomainValue, T)
		}
		a := math.Cbrt(μ * math.Pow(T/(2*math.Pi), 2))
		return semiMajorAxisFromEnergy(μ, -μ/(2*a)), nil
	case "espec":
		return semiMajorAxisFromEnergy(μ, vals[0]), nil
	case "e":
		if vals[0] < 0 || math.IsInf(vals[0], 0) {
			return 0, fmt.Errorf("%w: e must be >= 0, but is %g", ErrOutOfDomainValue, vals[0])
		}
		return vals[0], nil
	case "vp", "va":
		if vals[0] < 0 || math.IsInf(vals[0], 0) {
			return 0, fmt.Errorf("%w: %s must be finite and >= 0, but is %g", ErrOutOfDomainValue, name, vals[0])
		}
		return vals[0], nil
	}
	return 0, fmt.Errorf("%w: unknown parameter `%s`", ErrInvalidParameterCombination, name)
}

// semiMajorAxisFromEnergy returns a = -μ/(2ξ), with a zero energy (parabola) mapped to -Inf.
func semiMajorAxisFromEnergy(μ, ξ float64) float64 {
	a := -μ / (2 * ξ)
	if math.IsInf(a, 1) {
		a = math.Inf(-1)
	}
	return a
}

// apoapsisFromRpA returns ra = 2a - rp, with +Inf mapped to -Inf.
func apoapsisFromRpA(rp, a float64) float64 {
	ra := 2*a - rp
	if math.IsInf(ra, 1) {
		ra = math.Inf(-1)
	}
	return ra
}

// solve dispatches on the combination. Values are indexed by group.
func solve(body *Body, c Combination, v [numGroups]float64) (rp, ra float64, err error) {
	μ := body.GM()
	unsupported := func(reason string) (float64, float64, error) {
		return 0, 0, fmt.Errorf("%w: (%s): %s", ErrUnsupportedCombination, c, reason)
	}
	switch c {
	case RpRa:
		rp, ra = v[periapsisGroup], v[apoapsisGroup]
		if ra > 0 && rp > ra {
			// Transposed by the user.
			rp, ra = ra, rp
		}
		return rp, ra, nil

	case RpA:
		rp = v[periapsisGroup]
		return rp, apoapsisFromRpA(rp, v[shapeGroup]), nil

	case RpE:
		rp = v[periapsisGroup]
		e := v[eccentricityGroup]
		if e == 1 {
			return rp, math.Inf(-1), nil
		}
		return rp, rp * (1 + e) / (1 - e), nil

	case RpVp:
		rp = v[periapsisGroup]
		vp := v[periapsisSpeedGroup]
		a := semiMajorAxisFromEnergy(μ, 0.5*vp*vp-μ/rp)
		return rp, apoapsisFromRpA(rp, a), nil

	case RaA:
		return solveRaA(c, v[apoapsisGroup], v[shapeGroup])

	case RaE:
		ra = v[apoapsisGroup]
		e := v[eccentricityGroup]
		if math.IsInf(ra, -1) || e == 1 {
			return unsupported("rp must be specified for parabolic orbits")
		}
		return ra * (1 - e) / (1 + e), ra, nil

	case RaVa:
		ra = v[apoapsisGroup]
		va := v[apoapsisSpeedGroup]
		return solveRaA(c, ra, semiMajorAxisFromEnergy(μ, 0.5*va*va-μ/ra))

	case AE:
		a := v[shapeGroup]
		e := v[eccentricityGroup]
		if math.IsInf(a, -1) || e == 1 {
			return unsupported("rp must be specified for parabolic orbits")
		}
		rp = (1 - e) * a
		return rp, 2*a - rp, nil

	case EVp:
		// vp^2 = μ(1+e)/rp
		e := v[eccentricityGroup]
		vp := v[periapsisSpeedGroup]
		if vp == 0 {
			return 0, 0, fmt.Errorf("%w: vp must be > 0 to be combined with e", ErrOutOfDomainValue)
		}
		rp = μ * (1 + e) / (vp * vp)
		if e == 1 {
			return rp, math.Inf(-1), nil
		}
		return rp, rp * (1 + e) / (1 - e), nil

	case EVa:
		// va^2 = μ(1-e)/ra
		e := v[eccentricityGroup]
		va := v[apoapsisSpeedGroup]
		if e >= 1 {
			return unsupported(fmt.Sprintf("an orbit with e=%g has no apoapsis", e))
		}
		if va == 0 {
			return 0, 0, fmt.Errorf("%w: va must be > 0 to be combined with e", ErrOutOfDomainValue)
		}
		ra = μ * (1 - e) / (va * va)
		return ra * (1 - e) / (1 + e), ra, nil
	}
	return unsupported("not implemented")
}

func solveRaA(c Combination, ra, a float64) (rp, raOut float64, err error) {
	if math.IsInf(ra, -1) {
		return 0, 0, fmt.Errorf("%w: (%s): rp must be specified for parabolic orbits", ErrUnsupportedCombination, c)
	}
	if (ra < 0) != (a < 0) {
		return 0, 0, fmt.Errorf("%w: ra=%g and a=%g must both be positive (orbit) or both negative (escape)", ErrOutOfDomainValue, ra, a)
	}
	return 2*a - ra, ra, nil
}

// checkRadii enforces the orbit invariants.
func checkRadii(rp, ra float64) error {
	if math.IsNaN(rp) || math.IsNaN(ra) {
		return fmt.Errorf("%w: rp=%g and ra=%g must be numbers", ErrOutOfDomainValue, rp, ra)
	}
	if !(rp > 0) || math.IsInf(rp, 0) {
		return fmt.Errorf("%w: rp must be > 0 and finite, but is %s", ErrOutOfDomainValue, FormatDistance(rp))
	}
	if ra == 0 {
		return fmt.Errorf("%w: ra must not be zero", ErrOutOfDomainValue)
	}
	if ra > 0 && ra < rp {
		return fmt.Errorf("%w: ra (%s) must be >= rp (%s)", ErrOutOfDomainValue, FormatDistance(ra), FormatDistance(rp))
	}
	// Hyperbolas have ra = 2a - rp with a < 0, hence ra < -rp.
	if ra < 0 && ra >= -rp {
		return fmt.Errorf("%w: escape apoapsis ra (%s) must be below -rp (%s)", ErrOutOfDomainValue, FormatDistance(ra), FormatDistance(-rp))
	}
	return nil
}
