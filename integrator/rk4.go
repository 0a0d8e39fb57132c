package integrator

// RK4 defines a classical fourth order Runge-Kutta integrator.
type RK4 struct {
	X0         float64    // The initial x0.
	StepSize   float64    // The step size.
	Integrator Integrable // What is to be integrated.
}

// NewRK4 returns a new RK4 integrator instance.
func NewRK4(x0 float64, stepSize float64, inte Integrable) *RK4 {
	if stepSize <= 0 {
		panic("config StepSize must be positive")
	}
	if inte == nil {
		panic("config Integrator may not be nil")
	}
	return &RK4{X0: x0, StepSize: stepSize, Integrator: inte}
}

// Solve solves the configured RK4.
// Returns the number of iterations performed and the last X_i.
// The slice passed to SetState is never reused, so the Integrable may keep it.
func (r *RK4) Solve() (uint64, float64) {
	const (
		half     = 1 / 2.0
		oneSixth = 1 / 6.0
		oneThird = 1 / 3.0
	)

	iterNum := uint64(0)
	xi := r.X0
	h := r.StepSize
	var acc, tState []float64 // Weighted sum of the k's, and the intermediate states.
	for !r.Integrator.Stop(iterNum) {
		state := r.Integrator.GetState()
		if len(acc) != len(state) {
			acc = make([]float64, len(state))
			tState = make([]float64, len(state))
		}

		for i, y := range r.Integrator.Func(xi, state) {
			acc[i] = oneSixth * y * h
			tState[i] = state[i] + y*h*half
		}
		for i, y := range r.Integrator.Func(xi+h*half, tState) {
			acc[i] += oneThird * y * h
			tState[i] = state[i] + y*h*half
		}
		for i, y := range r.Integrator.Func(xi+h*half, tState) {
			acc[i] += oneThird * y * h
			tState[i] = state[i] + y*h
		}
		newState := make([]float64, len(state))
		for i, y := range r.Integrator.Func(xi+h, tState) {
			newState[i] = state[i] + acc[i] + oneSixth*y*h
		}
		r.Integrator.SetState(iterNum, newState)

		xi += h
		iterNum++
	}

	return iterNum, xi
}
