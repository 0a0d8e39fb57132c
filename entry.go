package kerbmath

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/kerbmath/kerbmath/integrator"
)

const (
	// DefaultDrag is the default drag coefficient of a vessel.
	DefaultDrag = 0.2
	// DefaultEntryStep is the default step size of the entry simulation.
	DefaultEntryStep = time.Millisecond
	// DefaultMaxSteps bounds the entry simulation (10000 s at the default step).
	DefaultMaxSteps = 10000000
	// DefaultTraceInterval is the simulated time between two trace samples when TraceEvery is not set.
	DefaultTraceInterval = time.Second
	// exitFactor is the radius, relative to the entry radius, above which the vessel left the atmosphere.
	exitFactor = 1.01
	// energyGainTol is the relative energy increase below which a step is considered round-off.
	energyGainTol = 1e-12
)

// EntryStatus is the state of an atmospheric entry.
type EntryStatus uint8

const (
	// NotEntered is the status before the simulation runs.
	NotEntered EntryStatus = iota
	// Descending means the vessel is within the atmosphere.
	Descending
	// Collided is terminal: the vessel is below the surface.
	Collided
	// Exited means the vessel left the atmosphere (it may come back).
	Exited
)

func (s EntryStatus) String() string {
	switch s {
	case NotEntered:
		return "not entered"
	case Descending:
		return "descending"
	case Collided:
		return "collided"
	case Exited:
		return "exited"
	}
	panic("cannot stringify unknown entry status")
}

// Method is the numerical integration method of the entry simulation.
type Method uint8

const (
	// RK4 is the fourth order Runge Kutta.
	RK4 Method = iota + 1
	// Euler is the explicit forward Euler.
	Euler
)

func (m Method) String() string {
	switch m {
	case RK4:
		return "rk4"
	case Euler:
		return "euler"
	}
	panic("cannot stringify unknown integration method")
}

// MethodFromString returns the method from its name.
func MethodFromString(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "rk4":
		return RK4, nil
	case "euler":
		return Euler, nil
	}
	return 0, fmt.Errorf("unknown integration method '%s' (rk4 or euler)", name)
}

// EntryConfig is the configuration of an entry simulation. Zero values are replaced by the defaults.
type EntryConfig struct {
	Drag       float64       // drag coefficient
	Step       time.Duration // integration step
	Method     Method        // integration method
	MaxSteps   uint64        // hard limit on the number of steps
	TraceEvery uint64        // record one sample every TraceEvery steps (0: one per DefaultTraceInterval)
	StopOnExit bool          // stop as soon as the vessel leaves the atmosphere
	Logger     kitlog.Logger
}

// DefaultEntryConfig returns the default configuration.
func DefaultEntryConfig() EntryConfig {
	return EntryConfig{Drag: DefaultDrag, Step: DefaultEntryStep, Method: RK4, MaxSteps: DefaultMaxSteps, TraceEvery: traceEvery(DefaultEntryStep)}
}

// traceEvery returns the number of steps of the given size in DefaultTraceInterval, and at least one.
func traceEvery(step time.Duration) uint64 {
	if step <= 0 || step >= DefaultTraceInterval {
		return 1
	}
	return uint64(DefaultTraceInterval / step)
}

func (c EntryConfig) withDefaults() EntryConfig {
	def := DefaultEntryConfig()
	if c.Drag == 0 {
		c.Drag = def.Drag
	}
	if c.Step == 0 {
		c.Step = def.Step
	}
	if c.Method == 0 {
		c.Method = def.Method
	}
	if c.MaxSteps == 0 {
		c.MaxSteps = def.MaxSteps
	}
	if c.TraceEvery == 0 {
		c.TraceEvery = traceEvery(c.Step)
	}
	if c.Logger == nil {
		c.Logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	}
	return c
}

// EntrySample is one entry of the simulation trace.
type EntrySample struct {
	T        float64 // s since entry
	Altitude float64 // m above the surface
	Gravity  float64 // gravitational acceleration (m/s^2)
	Drag     float64 // drag deceleration (m/s^2)
	AirSpeed float64 // speed relative to the atmosphere (m/s)
	Energyξ  float64 // specific mechanical energy (J/kg)
}

// EntryResult is the outcome of an entry simulation.
type EntryResult struct {
	Status        EntryStatus
	Steps         uint64
	Duration      float64 // s
	Trace         []EntrySample
	EntryR        Vector // initial position (IRF)
	EntryV        Vector // initial velocity (IRF)
	R, V          Vector // final position and velocity (IRF)
	Truncated     bool   // the step limit was hit
	TerrainWarned bool
	Exits         int
	Reentries     int
	EnergyGains   uint64  // steps during which the specific energy increased beyond round-off
	MaxEnergyGain float64 // largest single step energy increase (J/kg)
	CoastDrift    float64 // energy change accumulated outside the atmosphere, where it should be conserved (J/kg)
}

// Entry numerically simulates an aerobrake, aerocapture or atmospheric entry from an orbit which partially
// lies within the atmosphere. It implements integrator.Integrable.
type Entry struct {
	Orbit           *Orbit
	conf            EntryConfig
	forces          Forces
	entryRadius     float64
	collisionRadius float64
	R, V            Vector
	t, ξ            float64
	exitξ           float64 // energy when the vessel last left the atmosphere
	status          EntryStatus
	rslt            EntryResult
	nonFinite       bool
	logger          kitlog.Logger
}

// NewEntry checks that the orbit crosses the atmosphere and returns an entry positioned where the inbound leg
// of the orbit enters the atmosphere.
func NewEntry(o *Orbit, conf EntryConfig) (*Entry, error) {
	if o == nil {
		return nil, fmt.Errorf("%w: no orbit", ErrSimulationPrecondition)
	}
	conf = conf.withDefaults()
	if conf.Drag < 0 || math.IsNaN(conf.Drag) || math.IsInf(conf.Drag, 0) {
		return nil, fmt.Errorf("%w: drag coefficient must be finite and >= 0, but is %g", ErrOutOfDomainValue, conf.Drag)
	}
	if conf.Step < 0 {
		return nil, fmt.Errorf("%w: step must be positive, but is %s", ErrOutOfDomainValue, conf.Step)
	}
	body := o.Origin
	if body.Atmosphere.IsVacuum() {
		return nil, fmt.Errorf("%w: %s has no atmosphere", ErrSimulationPrecondition, body.Name)
	}
	entryR := body.EntryRadius()
	if o.rp >= entryR {
		return nil, fmt.Errorf("%w: orbit outside atmosphere (periapsis %s above %s)", ErrSimulationPrecondition, FormatDistance(o.rp-body.Radius), FormatDistance(body.Atmosphere.Cutoff))
	}
	if o.ra > 0 && o.ra < entryR {
		return nil, fmt.Errorf("%w: orbit completely within atmosphere (apoapsis %s below %s)", ErrSimulationPrecondition, FormatDistance(o.ra-body.Radius), FormatDistance(body.Atmosphere.Cutoff))
	}
	e := &Entry{Orbit: o, conf: conf, forces: Forces{body, conf.Drag}, entryRadius: entryR, collisionRadius: body.CollisionRadius()}
	e.R, e.V = o.RV(entryR, true)
	e.ξ = e.forces.Energyξ(e.R, e.V)
	e.logger = kitlog.With(conf.Logger, "subsys", "entry", "body", body.Name)
	e.rslt.EntryR, e.rslt.EntryV = e.R, e.V
	return e, nil
}

// Status returns the current status.
func (e *Entry) Status() EntryStatus {
	return e.status
}

// Run integrates until the vessel collides, leaves the atmosphere (if StopOnExit) or the step limit is reached.
// Run may only be called once.
func (e *Entry) Run() EntryResult {
	e.status = Descending
	e.logger.Log("level", "info", "status", "started", "entry", e.R, "ventry", e.V, "method", e.conf.Method, "step", e.conf.Step, "drag", e.conf.Drag)
	e.record()
	var solver integrator.Solver
	switch e.conf.Method {
	case Euler:
		solver = integrator.NewEuler(0, e.conf.Step.Seconds(), e)
	default:
		solver = integrator.NewRK4(0, e.conf.Step.Seconds(), e)
	}
	solver.Solve() // Blocking.
	if last := len(e.rslt.Trace) - 1; last < 0 || e.rslt.Trace[last].T != e.t {
		e.record()
	}
	if e.status == Exited {
		// Still coasting.
		e.rslt.CoastDrift += e.ξ - e.exitξ
	}
	e.rslt.Status = e.status
	e.rslt.Duration = e.t
	e.rslt.R, e.rslt.V = e.R, e.V
	entrySteps.Add(float64(e.rslt.Steps))
	entryRuns.WithLabelValues(e.status.String()).Inc()
	e.logger.Log("level", "notice", "status", "finished", "outcome", e.status, "steps", e.rslt.Steps, "duration(s)", e.t, "altitude(m)", e.R.Norm()-e.Orbit.Origin.Radius, "ξ(J/kg)", e.ξ, "energyGains", e.rslt.EnergyGains, "maxEnergyGain(J/kg)", e.rslt.MaxEnergyGain, "coastDrift(J/kg)", e.rslt.CoastDrift)
	return e.rslt
}

// record appends the current state to the trace.
func (e *Entry) record() {
	acc := e.forces.At(e.R, e.V)
	e.rslt.Trace = append(e.rslt.Trace, EntrySample{e.t, e.R.Norm() - e.Orbit.Origin.Radius, acc.Gravity, acc.Drag, acc.AirSpeed, e.ξ})
}

// GetState implements the integrator.Integrable interface.
func (e *Entry) GetState() []float64 {
	return []float64{e.R[0], e.R[1], e.R[2], e.V[0], e.V[1], e.V[2]}
}

// SetState implements the integrator.Integrable interface.
func (e *Entry) SetState(i uint64, s []float64) {
	e.R = Vector{s[0], s[1], s[2]}
	e.V = Vector{s[3], s[4], s[5]}
	e.t += e.conf.Step.Seconds()
	e.rslt.Steps = i + 1

	// Energy diagnostics. A vessel slower than the co-rotating air may gain energy from drag, so gains are
	// reported and not treated as failures.
	ξ := e.forces.Energyξ(e.R, e.V)
	if gain := ξ - e.ξ; gain > energyGainTol*math.Abs(ξ) {
		e.rslt.EnergyGains++
		if gain > e.rslt.MaxEnergyGain {
			e.rslt.MaxEnergyGain = gain
		}
	}
	e.ξ = ξ

	if !e.nonFinite && !(e.R.IsFinite() && e.V.IsFinite()) {
		e.nonFinite = true
		e.logger.Log("level", "critical", "status", "non-finite state", "t", e.t, "R", e.R, "V", e.V)
	}

	r := e.R.Norm()
	body := e.Orbit.Origin
	if r < body.Radius {
		e.status = Collided
		e.logger.Log("level", "critical", "collided", body.Name, "t", e.t, "r", r, "radius", body.Radius, "v", e.V.Norm())
	} else if !e.rslt.TerrainWarned && r < e.collisionRadius {
		e.rslt.TerrainWarned = true
		e.logger.Log("level", "warning", "status", "terrain collision possible", "t", e.t, "altitude(m)", r-body.Radius)
	}
	switch {
	case e.status == Descending && r > exitFactor*e.entryRadius:
		e.status = Exited
		e.rslt.Exits++
		e.exitξ = ξ
		e.logger.Log("level", "warning", "status", "exited atmosphere", "t", e.t, "altitude(m)", r-body.Radius, "ξ(J/kg)", ξ)
	case e.status == Exited && r < e.entryRadius:
		e.status = Descending
		e.rslt.Reentries++
		e.rslt.CoastDrift += ξ - e.exitξ
		e.logger.Log("level", "info", "status", "reentered atmosphere", "t", e.t, "coastDrift(J/kg)", ξ-e.exitξ)
	}

	if e.status == Collided || (i+1)%e.conf.TraceEvery == 0 {
		e.record()
	}
}

// Stop implements the integrator.Integrable interface.
func (e *Entry) Stop(i uint64) bool {
	switch {
	case e.status == Collided:
		return true
	case e.status == Exited && e.conf.StopOnExit:
		return true
	case i >= e.conf.MaxSteps:
		e.rslt.Truncated = true
		e.logger.Log("level", "critical", "status", "killed", "steps", i, "t", e.t)
		return true
	}
	return false
}

// Func implements the integrator.Integrable interface.
func (e *Entry) Func(t float64, s []float64) []float64 {
	R := Vector{s[0], s[1], s[2]}
	V := Vector{s[3], s[4], s[5]}
	acc := e.forces.At(R, V).Total
	return []float64{V[0], V[1], V[2], acc[0], acc[1], acc[2]}
}
