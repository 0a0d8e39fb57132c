package main

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kerbmath/kerbmath"
	"github.com/spf13/cobra"
)

var bodiesCmd = &cobra.Command{
	Use:   "bodies",
	Short: "List the known celestial bodies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range kerbmath.BodyNames(conf.Bodies) {
			b, err := conf.Body(name)
			if err != nil {
				return err
			}
			fmt.Println(bodyStyle.Render(b.String()))
		}
		return nil
	},
}

var bodyCmd = &cobra.Command{
	Use:   "body <name>",
	Short: "Show the properties of a celestial body",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := conf.Body(args[0])
		if err != nil {
			return err
		}
		fmt.Println(bodyStyle.Render(b.String()))
		fmt.Printf("  mass            %g kg\n", b.Mass)
		fmt.Printf("  μ               %g m^3/s^2\n", b.GM())
		fmt.Printf("  surface gravity %.3f m/s^2\n", b.SurfaceGravity())
		fmt.Printf("  rotation period %s\n", formatPeriod(b.RotationPeriod))
		fmt.Printf("  max elevation   %s\n", kerbmath.FormatDistance(b.MaxElevation))
		fmt.Printf("  lowest orbit    %s\n", kerbmath.FormatDistance(b.MinOrbitRadius()-b.Radius))
		fmt.Printf("  atmosphere      %s\n", b.Atmosphere)
		if !b.Atmosphere.IsVacuum() {
			fmt.Printf("  vterm (surface) %s\n", kerbmath.FormatVelocity(b.TerminalVelocity(0, conf.Entry.Drag)))
		}
		return nil
	},
}

var orbitCmd = &cobra.Command{
	Use:   "orbit <body> <name=value>...",
	Short: "Resolve an orbit from two shape parameters",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := orbitFromArgs(args[0], args[1:])
		if err != nil {
			return err
		}
		printOrbit(o)
		return nil
	},
}

var maneuverCmd = &cobra.Command{
	Use:   "maneuver <body> <kind> [value...] -- <name=value>...",
	Short: "Plan a maneuver from an orbit",
	Long: `Plan a maneuver from the orbit given after "--". Kinds:
  chrp <r>        change periapsis radius (m)
  chhp <h>        change periapsis height (km)
  chra <r>        change apoapsis radius (m)
  chha <h>        change apoapsis height (km)
  deorbit         lower periapsis to the lowest stable orbit
  escape          raise apoapsis to a parabolic escape
  circ            circularize at apoapsis
  chir <r> <i>    change inclination to i (deg) at radius r (m)
  chih <h> <i>    change inclination to i (deg) at height h (km)`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dash := cmd.ArgsLenAtDash()
		if dash < 0 {
			return fmt.Errorf("missing orbit parameters after --")
		}
		if dash < 2 {
			return fmt.Errorf("expected <body> <kind> before --")
		}
		o, err := orbitFromArgs(args[0], args[dash:])
		if err != nil {
			return err
		}
		values, err := parseFloats(args[2:dash])
		if err != nil {
			return err
		}
		burn, err := plan(o, args[1], values)
		if err != nil {
			return err
		}
		logger.Log("level", "info", "subsys", "maneuver", "kind", burn.Kind, "Δv", burn.Δv)
		printOrbit(burn.Before)
		fmt.Printf("%s at %s: Δv = %s\n", burn.Kind, kerbmath.FormatDistance(burn.Radius-o.Origin.Radius), kerbmath.FormatVelocity(burn.Δv))
		printOrbit(burn.After)
		return nil
	},
}

var (
	traceOut string
)

var entryCmd = &cobra.Command{
	Use:   "entry <body> <name=value>...",
	Short: "Simulate an atmospheric entry, aerobrake or aerocapture",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, err := orbitFromArgs(args[0], args[1:])
		if err != nil {
			return err
		}
		printOrbit(o)
		econf := conf.Entry
		econf.Logger = logger
		e, err := kerbmath.NewEntry(o, econf)
		if err != nil {
			return err
		}
		rslt := e.Run()
		fmt.Printf("entry at %s, %s\n", kerbmath.FormatDistance(rslt.EntryR.Norm()-o.Origin.Radius), kerbmath.FormatVelocity(rslt.EntryV.Norm()))
		fmt.Printf("%s after %.3f s (%d steps)", rslt.Status, rslt.Duration, rslt.Steps)
		if rslt.Truncated {
			fmt.Print(errorStyle.Render(" [step limit reached]"))
		}
		fmt.Println()
		final := rslt.Trace[len(rslt.Trace)-1]
		fmt.Printf("  altitude %s, airspeed %s, energy %.1f J/kg, exits %d\n", kerbmath.FormatDistance(final.Altitude), kerbmath.FormatVelocity(final.AirSpeed), final.Energyξ, rslt.Exits)
		if rslt.EnergyGains > 0 {
			fmt.Println(dimStyle.Render(fmt.Sprintf("  %d steps gained energy (max %.3g J/kg)", rslt.EnergyGains, rslt.MaxEnergyGain)))
		}
		if rslt.Exits > 0 {
			fmt.Println(dimStyle.Render(fmt.Sprintf("  %d reentries, energy drift while coasting %.3g J/kg", rslt.Reentries, rslt.CoastDrift)))
		}
		if traceOut == "" {
			return nil
		}
		f, err := os.Create(traceOut)
		if err != nil {
			return err
		}
		defer f.Close()
		return kerbmath.WriteTrace(f, rslt, time.Now().UTC())
	},
}

func init() {
	flags := entryCmd.Flags()
	flags.Float64("drag", kerbmath.DefaultDrag, "drag coefficient")
	flags.Duration("step", kerbmath.DefaultEntryStep, "integration step")
	flags.String("integrator", "rk4", "integration method (rk4 or euler)")
	flags.Uint64("max-steps", kerbmath.DefaultMaxSteps, "maximum number of steps")
	flags.Uint64("trace-every", 0, "record one trace sample every n steps (0: one per simulated second)")
	flags.Bool("stop-on-exit", false, "stop when the vessel leaves the atmosphere")
	flags.StringVarP(&traceOut, "out", "o", "", "write the trace as CSV to this file")
	for key, flag := range map[string]string{
		"entry.drag":         "drag",
		"entry.step":         "step",
		"entry.integrator":   "integrator",
		"entry.max_steps":    "max-steps",
		"entry.trace_every":  "trace-every",
		"entry.stop_on_exit": "stop-on-exit",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func orbitFromArgs(bodyName string, tokens []string) (*kerbmath.Orbit, error) {
	body, err := conf.Body(bodyName)
	if err != nil {
		return nil, err
	}
	p, err := kerbmath.ParseParams(tokens)
	if err != nil {
		return nil, err
	}
	return kerbmath.NewOrbit(body, p)
}

func parseFloats(args []string) ([]float64, error) {
	values := make([]float64, len(args))
	for i, arg := range args {
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value '%s': %w", arg, err)
		}
		values[i] = f
	}
	return values, nil
}

func plan(o *kerbmath.Orbit, kind string, values []float64) (kerbmath.Burn, error) {
	arity := map[string]int{"chrp": 1, "chhp": 1, "chra": 1, "chha": 1, "deorbit": 0, "escape": 0, "circ": 0, "chir": 2, "chih": 2}
	n, ok := arity[strings.ToLower(kind)]
	if !ok {
		return kerbmath.Burn{}, fmt.Errorf("unknown maneuver '%s'", kind)
	}
	if len(values) != n {
		return kerbmath.Burn{}, fmt.Errorf("maneuver %s takes %d value(s), got %d", kind, n, len(values))
	}
	switch strings.ToLower(kind) {
	case "chrp":
		return o.ChangePeriapsis(values[0])
	case "chhp":
		return o.ChangePeriapsisHeight(values[0])
	case "chra":
		return o.ChangeApoapsis(values[0])
	case "chha":
		return o.ChangeApoapsisHeight(values[0])
	case "deorbit":
		return o.Deorbit()
	case "escape":
		return o.Escape()
	case "circ":
		return o.Circularize()
	case "chir":
		return o.ChangeInclination(values[0], values[1])
	default:
		return o.ChangeInclinationHeight(values[0], values[1])
	}
}

func printOrbit(o *kerbmath.Orbit) {
	fmt.Println(orbitStyle.Render(o.String()))
	fmt.Printf("  e      %.6f\n", o.Eccentricity())
	fmt.Printf("  a      %s\n", kerbmath.FormatDistance(o.SemiMajorAxis()))
	fmt.Printf("  period %s\n", formatPeriod(o.Period()))
	fmt.Printf("  vp     %s\n", kerbmath.FormatVelocity(o.Vp()))
	if o.IsEscape() {
		fmt.Printf("  vinf   %s\n", kerbmath.FormatVelocity(o.Vinf()))
	} else {
		fmt.Printf("  va     %s\n", kerbmath.FormatVelocity(o.Va()))
	}
	fmt.Printf("  ξ      %.3f J/kg\n", o.Energyξ())
}

func formatPeriod(s float64) string {
	if math.IsInf(s, 0) {
		return "∞"
	}
	return time.Duration(s * float64(time.Second)).Round(time.Second).String()
}
