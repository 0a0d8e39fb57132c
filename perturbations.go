package kerbmath

// Forces defines the accelerations acting on a vessel during atmospheric flight.
type Forces struct {
	Body *Body
	Drag float64 // drag coefficient (unitless, usually 0.2)
}

// Acceleration is the breakdown of the accelerations at a given state.
type Acceleration struct {
	Gravity  float64 // magnitude of the gravitational acceleration (m/s^2)
	Drag     float64 // magnitude of the drag deceleration (m/s^2)
	AirSpeed float64 // speed relative to the atmosphere (m/s)
	Total    Vector  // sum of all accelerations (IRF)
}

// At returns the accelerations at position R with velocity V (IRF).
// Drag opposes the velocity relative to the co-rotating atmosphere, gravity points towards the center.
func (f Forces) At(R, V Vector) Acceleration {
	r := R.Norm()
	vRel := V.Sub(f.Body.RotationVelocity(R))
	airSpeed := vRel.Norm()
	drag := f.Body.Atmosphere.DragAccel(r-f.Body.Radius, airSpeed, f.Drag)
	gravity := f.Body.Accel(r)
	total := vRel.Unit().Scale(-drag).Add(R.Unit().Scale(-gravity))
	return Acceleration{gravity, drag, airSpeed, total}
}

// Energyξ returns the specific mechanical energy of the state (J/kg).
func (f Forces) Energyξ(R, V Vector) float64 {
	v := V.Norm()
	return 0.5*v*v - f.Body.GM()/R.Norm()
}
