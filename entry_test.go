package kerbmath

import (
	"math"
	"testing"
	"time"

	kitlog "github.com/go-kit/kit/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"gonum.org/v1/gonum/floats/scalar"
)

func testEntryConfig() EntryConfig {
	return EntryConfig{Step: 10 * time.Millisecond, MaxSteps: 2000000, TraceEvery: 100, Logger: kitlog.NewNopLogger()}
}

func TestEntryPreconditions(t *testing.T) {
	conf := testEntryConfig()
	mun, err := NewOrbit(Mun, Params{}.Set("hp", 5).Set("ha", 50))
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range []*Orbit{
		mun,
		mustOrbit(t, Params{}.Set("hp", 100).Set("ha", 100)),
		mustOrbit(t, Params{}.Set("hp", 30).Set("ha", 50)),
		mustOrbit(t, Params{}.Set("hp", 10).Set("ha", 10)),
		// Periapsis exactly at the top of the atmosphere never meets any air.
		mustOrbit(t, Params{}.Set("rp", Kerbin.EntryRadius()).Set("ra", Kerbin.EntryRadius())),
		mustOrbit(t, Params{}.Set("rp", Kerbin.EntryRadius()).Set("ra", 2*Kerbin.EntryRadius())),
		nil,
	} {
		_, err := NewEntry(o, conf)
		assertErrorIs(t, err, ErrSimulationPrecondition)
	}
	conf.Drag = -1
	_, err = NewEntry(mustOrbit(t, Params{}.Set("hp", 30).Set("ha", 100)), conf)
	assertErrorIs(t, err, ErrOutOfDomainValue)
}

func TestEntryStart(t *testing.T) {
	o := mustOrbit(t, Params{}.Set("hp", 30).Set("ha", 100).Set("incl", 20))
	e, err := NewEntry(o, testEntryConfig())
	if err != nil {
		t.Fatal(err)
	}
	if e.Status() != NotEntered {
		t.Fatalf("status %s", e.Status())
	}
	R, V := e.R, e.V
	if !scalar.EqualWithinRel(R.Norm(), Kerbin.EntryRadius(), 1e-9) {
		t.Fatalf("entry at %s", FormatDistance(R.Norm()-Kerbin.Radius))
	}
	if R.Dot(V) >= 0 {
		t.Fatal("the entry must be on the inbound leg")
	}
	if !scalar.EqualWithinRel(V.Norm(), o.Speed(Kerbin.EntryRadius()), 1e-9) {
		t.Fatalf("entry speed %f", V.Norm())
	}
	state := e.GetState()
	if len(state) != 6 || state[0] != R[0] || state[5] != V[2] {
		t.Fatalf("unexpected state %v", state)
	}
	deriv := e.Func(0, state)
	if deriv[0] != V[0] || deriv[1] != V[1] || deriv[2] != V[2] {
		t.Fatal("the derivative of the position is not the velocity")
	}
}

func TestEntryCollision(t *testing.T) {
	collided := testutil.ToFloat64(entryRuns.WithLabelValues(Collided.String()))
	o := mustOrbit(t, Params{}.Set("hp", 10).Set("ha", 100))
	e, err := NewEntry(o, testEntryConfig())
	if err != nil {
		t.Fatal(err)
	}
	rslt := e.Run()
	if rslt.Status != Collided || e.Status() != Collided {
		t.Fatalf("status %s after %f s", rslt.Status, rslt.Duration)
	}
	if rslt.Truncated {
		t.Fatal("collision should happen before the step limit")
	}
	if !rslt.TerrainWarned {
		t.Fatal("no terrain warning before colliding")
	}
	if r := rslt.R.Norm(); r >= Kerbin.Radius || r < Kerbin.Radius-100 {
		t.Fatalf("final altitude %f", r-Kerbin.Radius)
	}
	if !scalar.EqualWithinRel(rslt.Duration, float64(rslt.Steps)*0.01, 1e-6) {
		t.Fatalf("duration %f for %d steps", rslt.Duration, rslt.Steps)
	}
	first, last := rslt.Trace[0], rslt.Trace[len(rslt.Trace)-1]
	if first.T != 0 || !scalar.EqualWithinAbs(first.Altitude, Kerbin.Atmosphere.Cutoff, 1e-3) {
		t.Fatalf("first sample %+v", first)
	}
	if last.T != rslt.Duration || last.Altitude >= 0 {
		t.Fatalf("last sample %+v", last)
	}
	if last.Energyξ >= first.Energyξ {
		t.Fatal("drag did not remove energy")
	}
	// Near the surface, the vessel falls at about its terminal velocity.
	if last.AirSpeed > 5*Kerbin.TerminalVelocity(0, DefaultDrag) {
		t.Fatalf("impact at %f m/s", last.AirSpeed)
	}
	if got := testutil.ToFloat64(entryRuns.WithLabelValues(Collided.String())); got != collided+1 {
		t.Fatalf("entry runs %f != %f", got, collided+1)
	}
}

func TestEntryAerobrake(t *testing.T) {
	for _, method := range []Method{RK4, Euler} {
		o := mustOrbit(t, Params{}.Set("hp", 65).Set("ha", 5000))
		conf := testEntryConfig()
		conf.Method = method
		conf.StopOnExit = true
		e, err := NewEntry(o, conf)
		if err != nil {
			t.Fatal(err)
		}
		rslt := e.Run()
		if rslt.Status != Exited || rslt.Exits != 1 || rslt.Truncated {
			t.Fatalf("%s: status %s, %d exits", method, rslt.Status, rslt.Exits)
		}
		if rslt.R.Norm() <= Kerbin.EntryRadius() || rslt.R.Dot(rslt.V) <= 0 {
			t.Fatalf("%s: not leaving the atmosphere", method)
		}
		ξ0 := rslt.Trace[0].Energyξ
		ξ1 := rslt.Trace[len(rslt.Trace)-1].Energyξ
		if ξ1 >= ξ0 {
			t.Fatalf("%s: aerobraking gained energy (%f -> %f)", method, ξ0, ξ1)
		}
		if -(ξ1 - ξ0) > math.Abs(ξ0) {
			t.Fatalf("%s: aerobraking lost too much energy (%f -> %f)", method, ξ0, ξ1)
		}
	}
}

func TestEntryTruncated(t *testing.T) {
	o := mustOrbit(t, Params{}.Set("hp", 30).Set("ha", 100))
	conf := testEntryConfig()
	conf.MaxSteps = 250
	conf.TraceEvery = 100
	e, err := NewEntry(o, conf)
	if err != nil {
		t.Fatal(err)
	}
	rslt := e.Run()
	if !rslt.Truncated || rslt.Steps != 250 || rslt.Status != Descending {
		t.Fatalf("truncated=%v steps=%d status=%s", rslt.Truncated, rslt.Steps, rslt.Status)
	}
	// Initial state, two samples at 100 and 200, and the final one.
	if len(rslt.Trace) != 4 {
		t.Fatalf("%d samples", len(rslt.Trace))
	}
}

func TestEntryConfigDefaults(t *testing.T) {
	conf := EntryConfig{}.withDefaults()
	if conf.Drag != DefaultDrag || conf.Step != DefaultEntryStep || conf.Method != RK4 || conf.MaxSteps != DefaultMaxSteps || conf.TraceEvery != 1000 || conf.Logger == nil {
		t.Fatalf("unexpected defaults %+v", conf)
	}
	if def := DefaultEntryConfig(); def.TraceEvery != 1000 {
		t.Fatalf("default trace every %d steps", def.TraceEvery)
	}
	// One sample per simulated second by default, whatever the step.
	for step, exp := range map[time.Duration]uint64{
		50 * time.Millisecond: 20,
		time.Second:           1,
		3 * time.Second:       1,
	} {
		if got := (EntryConfig{Step: step}).withDefaults().TraceEvery; got != exp {
			t.Fatalf("step %s: trace every %d != %d", step, got, exp)
		}
	}
	if got := (EntryConfig{TraceEvery: 7}).withDefaults().TraceEvery; got != 7 {
		t.Fatalf("explicit trace every overwritten: %d", got)
	}
	if m, err := MethodFromString("Euler"); err != nil || m != Euler {
		t.Fatal("euler not parsed")
	}
	if _, err := MethodFromString("leapfrog"); err == nil {
		t.Fatal("unknown method accepted")
	}
	for _, s := range []EntryStatus{NotEntered, Descending, Collided, Exited} {
		if s.String() == "" {
			t.Fatal("empty status")
		}
	}
	assertPanic(t, func() {
		_ = EntryStatus(42).String()
	})
}

func TestEntryDefaultTraceBounded(t *testing.T) {
	o := mustOrbit(t, Params{}.Set("hp", 30).Set("ha", 100))
	e, err := NewEntry(o, EntryConfig{MaxSteps: 5000, Logger: kitlog.NewNopLogger()})
	if err != nil {
		t.Fatal(err)
	}
	rslt := e.Run()
	// 5 s at 1 ms: the initial state, one sample per second, and no extra final sample.
	if !rslt.Truncated || len(rslt.Trace) != 6 {
		t.Fatalf("truncated=%v with %d samples", rslt.Truncated, len(rslt.Trace))
	}
	for i, s := range rslt.Trace {
		if !scalar.EqualWithinAbs(s.T, float64(i), 1e-9) {
			t.Fatalf("sample %d at t=%f", i, s.T)
		}
	}
}

// coarseAerobrake runs a low aerobrake with a coarse step, and keeps integrating after leaving the atmosphere.
func coarseAerobrake(t *testing.T, method Method, maxSteps uint64) EntryResult {
	t.Helper()
	o := mustOrbit(t, Params{}.Set("hp", 65).Set("ha", 1000))
	conf := EntryConfig{Step: time.Second, Method: method, MaxSteps: maxSteps, TraceEvery: 10, Logger: kitlog.NewNopLogger()}
	e, err := NewEntry(o, conf)
	if err != nil {
		t.Fatal(err)
	}
	return e.Run()
}

func TestEntryReentry(t *testing.T) {
	// About three orbits of roughly 4000 s each.
	rslt := coarseAerobrake(t, RK4, 12000)
	if !rslt.Truncated || rslt.Status == Collided {
		t.Fatalf("status %s, truncated=%v", rslt.Status, rslt.Truncated)
	}
	if rslt.Exits < 2 || rslt.Reentries < 1 {
		t.Fatalf("%d exits and %d reentries", rslt.Exits, rslt.Reentries)
	}
	// Every exit but the current coast is followed by a reentry.
	switch rslt.Exits - rslt.Reentries {
	case 0:
		if rslt.Status != Descending {
			t.Fatalf("status %s after reentering", rslt.Status)
		}
	case 1:
		if rslt.Status != Exited {
			t.Fatalf("status %s while coasting", rslt.Status)
		}
	default:
		t.Fatalf("%d exits for %d reentries", rslt.Exits, rslt.Reentries)
	}
	// The trace goes back into the atmosphere after having left it.
	cutoff := Kerbin.Atmosphere.Cutoff
	left, back := false, false
	for _, s := range rslt.Trace {
		if s.Altitude > 2*cutoff {
			left = true
		} else if left && s.Altitude < cutoff {
			back = true
			break
		}
	}
	if !left || !back {
		t.Fatalf("left=%v back=%v", left, back)
	}
}

func TestEntryCoastDrift(t *testing.T) {
	// The run stops mid coast: the drift covers the vacuum arc since the exit.
	euler := coarseAerobrake(t, Euler, 2500)
	rk4 := coarseAerobrake(t, RK4, 2500)
	for _, rslt := range []EntryResult{euler, rk4} {
		if rslt.Status != Exited || rslt.Exits != 1 || rslt.Reentries != 0 {
			t.Fatalf("status %s, %d exits", rslt.Status, rslt.Exits)
		}
	}
	ξ := math.Abs(rk4.Trace[0].Energyξ)
	if math.Abs(rk4.CoastDrift) > 1e-6*ξ {
		t.Fatalf("rk4 drifted by %g J/kg while coasting", rk4.CoastDrift)
	}
	if math.Abs(euler.CoastDrift) <= math.Abs(rk4.CoastDrift) {
		t.Fatalf("euler drift %g <= rk4 drift %g", euler.CoastDrift, rk4.CoastDrift)
	}
	// Explicit Euler spirals out of a Kepler orbit.
	if euler.CoastDrift <= 0 || euler.EnergyGains == 0 || euler.MaxEnergyGain <= 0 {
		t.Fatalf("euler drift %g with %d gains (max %g)", euler.CoastDrift, euler.EnergyGains, euler.MaxEnergyGain)
	}
	if euler.EnergyGains <= rk4.EnergyGains {
		t.Fatalf("euler gained energy in %d steps, rk4 in %d", euler.EnergyGains, rk4.EnergyGains)
	}
}

func TestEntryEnergyGainsIgnoreRoundOff(t *testing.T) {
	o := mustOrbit(t, Params{}.Set("hp", 30).Set("ha", 100))
	e, err := NewEntry(o, testEntryConfig())
	if err != nil {
		t.Fatal(err)
	}
	e.status = Descending
	state := e.GetState()
	// Same state: no energy change at all.
	e.SetState(0, state)
	// A relative change far below the tolerance.
	state[3] *= 1 + 1e-15
	state[4] *= 1 + 1e-15
	state[5] *= 1 + 1e-15
	e.SetState(1, state)
	if e.rslt.EnergyGains != 0 {
		t.Fatalf("round-off counted as %d gains", e.rslt.EnergyGains)
	}
	// A real gain.
	state[3] *= 1.001
	state[4] *= 1.001
	state[5] *= 1.001
	e.SetState(2, state)
	if e.rslt.EnergyGains != 1 || e.rslt.MaxEnergyGain <= 0 {
		t.Fatalf("%d gains, max %g", e.rslt.EnergyGains, e.rslt.MaxEnergyGain)
	}
}
