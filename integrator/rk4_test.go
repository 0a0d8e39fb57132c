package integrator

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

// decay integrates dy/dt = -k*y from y(0)=y0, componentwise.
type decay struct {
	state []float64
	k     float64
	steps uint64
}

func (d *decay) GetState() []float64 {
	return d.state
}

func (d *decay) SetState(i uint64, s []float64) {
	d.state = s
}

func (d *decay) Stop(i uint64) bool {
	return i >= d.steps
}

func (d *decay) Func(t float64, s []float64) []float64 {
	f := make([]float64, len(s))
	for i, y := range s {
		f[i] = -d.k * y
	}
	return f
}

// oscillator integrates x'' = -x, i.e. state (x, v).
type oscillator struct {
	state []float64
	steps uint64
}

func (o *oscillator) GetState() []float64 {
	return o.state
}

func (o *oscillator) SetState(i uint64, s []float64) {
	o.state = s
}

func (o *oscillator) Stop(i uint64) bool {
	return i >= o.steps
}

func (o *oscillator) Func(t float64, s []float64) []float64 {
	return []float64{s[1], -s[0]}
}

func TestRK4Decay(t *testing.T) {
	d := &decay{[]float64{1200}, 0.5, 100}
	iterNum, xi := NewRK4(0, 0.01, d).Solve()
	if iterNum != 100 {
		t.Fatalf("iterNum=%d", iterNum)
	}
	if !scalar.EqualWithinAbs(xi, 1, 1e-9) {
		t.Fatalf("xi=%f", xi)
	}
	exp := 1200 * math.Exp(-0.5)
	if !scalar.EqualWithinRel(d.state[0], exp, 1e-9) {
		t.Fatalf("y(1)=%f expected %f", d.state[0], exp)
	}
}

func TestEulerDecay(t *testing.T) {
	d := &decay{[]float64{1}, 1, 1000}
	NewEuler(0, 1e-3, d).Solve()
	exp := math.Exp(-1)
	// First order: the error is in the order of the step.
	if !scalar.EqualWithinAbs(d.state[0], exp, 1e-3) {
		t.Fatalf("y(1)=%f expected %f", d.state[0], exp)
	}
	if scalar.EqualWithinAbs(d.state[0], exp, 1e-6) {
		t.Fatal("forward Euler should not be that precise")
	}
}

func TestRK4ConservesOscillatorEnergy(t *testing.T) {
	h := 1e-2
	steps := uint64(2 * math.Pi / h)
	rk := &oscillator{[]float64{1, 0}, steps}
	NewRK4(0, 1e-2, rk).Solve()
	eu := &oscillator{[]float64{1, 0}, steps}
	NewEuler(0, 1e-2, eu).Solve()
	energy := func(s []float64) float64 { return 0.5 * (s[0]*s[0] + s[1]*s[1]) }
	if !scalar.EqualWithinAbs(energy(rk.state), 0.5, 1e-8) {
		t.Fatalf("RK4 energy drifted to %f", energy(rk.state))
	}
	// Forward Euler gains energy at every step on an oscillator.
	if energy(eu.state) <= 0.5 {
		t.Fatalf("Euler energy did not increase: %f", energy(eu.state))
	}
}

// history keeps every state it is given.
type history struct {
	decay
	states [][]float64
}

func (h *history) SetState(i uint64, s []float64) {
	h.decay.SetState(i, s)
	h.states = append(h.states, s)
}

func TestSolversDoNotReuseStates(t *testing.T) {
	for name, solve := range map[string]func(Integrable){
		"rk4":   func(i Integrable) { NewRK4(0, 0.1, i).Solve() },
		"euler": func(i Integrable) { NewEuler(0, 0.1, i).Solve() },
	} {
		h := &history{decay: decay{[]float64{1, 2}, 1, 20}}
		solve(h)
		if len(h.states) != 20 {
			t.Fatalf("%s: %d states", name, len(h.states))
		}
		prev := []float64{1, 2}
		for i, s := range h.states {
			if !(s[0] < prev[0]) || !scalar.EqualWithinRel(s[1], 2*s[0], 1e-12) {
				t.Fatalf("%s: state %d %v overwritten (previous %v)", name, i, s, prev)
			}
			prev = s
		}
	}
}

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func TestInvalidConfig(t *testing.T) {
	assertPanic(t, func() { NewRK4(0, 0, &decay{}) })
	assertPanic(t, func() { NewRK4(0, 1, nil) })
	assertPanic(t, func() { NewEuler(0, -1, &decay{}) })
	assertPanic(t, func() { NewEuler(0, 1, nil) })
}
