package integrator

// Euler defines an explicit (forward) Euler integrator: s_{i+1} = s_i + h*f(x_i, s_i).
type Euler struct {
	X0         float64
	StepSize   float64
	Integrator Integrable
}

// NewEuler returns a new Euler integrator instance.
func NewEuler(x0 float64, stepSize float64, inte Integrable) *Euler {
	if stepSize <= 0 {
		panic("config StepSize must be positive")
	}
	if inte == nil {
		panic("config Integrator may not be nil")
	}
	return &Euler{X0: x0, StepSize: stepSize, Integrator: inte}
}

// Solve solves the configured Euler.
// Returns the number of iterations performed and the last X_i.
func (r *Euler) Solve() (uint64, float64) {
	iterNum := uint64(0)
	xi := r.X0
	for !r.Integrator.Stop(iterNum) {
		state := r.Integrator.GetState()
		newState := make([]float64, len(state))
		for i, y := range r.Integrator.Func(xi, state) {
			newState[i] = state[i] + y*r.StepSize
		}
		r.Integrator.SetState(iterNum, newState)
		xi += r.StepSize
		iterNum++
	}
	return iterNum, xi
}
