package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	kitlog "github.com/go-kit/kit/log"
	"github.com/kerbmath/kerbmath"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	bodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F2C94C")).Bold(true)
	orbitStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#27AE60"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
)

var (
	configDir   string
	showMetrics bool
	quiet       bool

	conf   kerbmath.Config
	v      = viper.New()
	logger kitlog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kerbmath",
	Short: "Orbital mechanics sandbox for the Kerbol system",
	Long: `kerbmath resolves orbits from any two shape parameters, plans maneuvers and simulates atmospheric entries.

Orbit parameters are given as name=value tokens, e.g. hp=100 ha=250 incl=6:
  rp, ra    periapsis, apoapsis radius (m)
  hp, ha    periapsis, apoapsis height (km)
  a, e      semi-major axis (m), eccentricity
  vp, va    speed at periapsis, apoapsis (m/s)
  vr=v,r    speed v at radius r, vh=v,h speed v at height h (km)
  vinf, T, espec
  incl, omega (degrees)`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if quiet {
			logger = kitlog.NewNopLogger()
		} else {
			logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
		}
		kerbmath.SetConfigDefaults(v)
		if err := kerbmath.ReadConfig(v, configDir); err != nil {
			return err
		}
		var err error
		conf, err = kerbmath.ConfigFromViper(v)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if showMetrics {
			return kerbmath.WriteMetrics(os.Stderr)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "directory of conf.toml (default $"+kerbmath.ConfigEnv+")")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "print the counters to stderr on exit")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "do not log")
	rootCmd.AddCommand(bodiesCmd, bodyCmd, orbitCmd, maneuverCmd, entryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
