package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pipeline-sim/pipeline-sim/sim"
	"github.com/pipeline-sim/pipeline-sim/sim/trace"
	"github.com/pipeline-sim/pipeline-sim/sim/workload"
)

var runHorizon float64 // Simulated time to run; defaults to the scenario's graph.max_horizon

// runReport is the YAML document printed by `run`.
// YAML rather than JSON: statistics of an empty run are NaN.
type runReport struct {
	Seed                  int64               `yaml:"seed"`
	Horizon               float64             `yaml:"horizon"`
	Statistics            sim.Statistics      `yaml:"statistics"`
	Latency               sim.LatencySummary  `yaml:"latency"`
	IdleTimeProbabilities []float64           `yaml:"idle_time_probabilities"`
	OfferedLoad           []float64           `yaml:"offered_load"`
	Trace                 *trace.TraceSummary `yaml:"trace,omitempty"`
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and print its statistics",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := loadScenario(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		horizon := spec.Graph.MaxHorizon
		if cmd.Flags().Changed("horizon") {
			horizon = runHorizon
		}
		if err := runSimulation(cmd.OutOrStdout(), spec, horizon); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
	},
}

// runSimulation builds the scenario's pipeline, runs it for horizon and writes a runReport to w.
func runSimulation(w io.Writer, spec *workload.ScenarioSpec, horizon float64) error {
	if horizon < 0 {
		return fmt.Errorf("horizon must be non-negative, got %v", horizon)
	}
	p, err := spec.NewPipeline(sim.NewSimulationKey(spec.Seed))
	if err != nil {
		return err
	}
	loads, err := spec.OfferedLoad()
	if err != nil {
		return err
	}

	logrus.Infof("Starting simulation: %d stages, horizon=%v, seed=%d", p.NumStages(), horizon, spec.Seed)
	startTime := time.Now()
	completed := p.WorkDuring(sim.NewDuration(horizon))
	logrus.Infof("Simulation complete: %d arrivals, %d dropped, %d completed in %v",
		p.RequestsCount(), p.DelayedRequestsCount(), len(completed), time.Since(startTime))

	stats := p.Statistics()
	report := runReport{
		Seed:                  spec.Seed,
		Horizon:               horizon,
		Statistics:            stats,
		Latency:               sim.SummarizeLatencies(completed),
		IdleTimeProbabilities: stats.IdleTimeProbabilities(),
		OfferedLoad:           loads,
	}
	if p.Trace() != nil {
		report.Trace = trace.Summarize(p.Trace())
	}
	return writeYAML(w, report)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return enc.Close()
}

func init() {
	runCmd.Flags().Float64Var(&runHorizon, "horizon", 0, "Simulated time to run; scenario graph.max_horizon when not set")
}
