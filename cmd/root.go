package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pipeline-sim/pipeline-sim/sim/workload"
)

var (
	// Flags shared by every subcommand
	logLevel     string // Log verbosity level
	seed         int64  // Master seed; overrides the scenario seed when set
	scenarioPath string // YAML scenario file; empty selects the built-in reference scenario
	traceLevel   string // Admission trace level; overrides the scenario when set
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "pipeline-sim",
	Short: "Simulator for tandem pipelines of finite-buffer service stages",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// loadScenario reads the scenario selected by --scenario, applies the flag
// overrides the user actually set, and validates the result.
func loadScenario(cmd *cobra.Command) (*workload.ScenarioSpec, error) {
	spec := workload.DefaultScenarioSpec()
	if scenarioPath != "" {
		loaded, err := workload.LoadScenarioSpec(scenarioPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
		logrus.Infof("Loaded scenario from %s", scenarioPath)
	}

	// Flags override scenario values only when explicitly given
	if cmd.Flags().Changed("seed") {
		spec.Seed = seed
	}
	if cmd.Flags().Changed("trace") {
		spec.Trace = traceLevel
	}

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return spec, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Master seed for every random stream (overrides the scenario seed)")
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "", "Path to a YAML scenario file (default: built-in reference scenario)")
	rootCmd.PersistentFlags().StringVar(&traceLevel, "trace", "none", "Admission trace level (none, rejections, admissions)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(accuracyCmd)
	rootCmd.AddCommand(scenarioCmd)
}
