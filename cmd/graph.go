package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pipeline-sim/pipeline-sim/sim"
	"github.com/pipeline-sim/pipeline-sim/sim/graph"
	"github.com/pipeline-sim/pipeline-sim/sim/workload"
)

var (
	graphMaxHorizon  float64 // Last x value of the sweep
	graphHorizonStep float64 // Sweep step
	graphFixed       bool    // Run every point for the max horizon
	graphOutput      string  // Output file; empty writes to stdout
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Sweep the horizon and print the mean-latency curve as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := loadScenario(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applyGraphOverrides(cmd, spec)

		if graphOutput == "" {
			err = generateGraph(cmd.OutOrStdout(), spec)
		} else {
			err = writeGraphFile(graphOutput, spec)
		}
		if err != nil {
			logrus.Fatalf("Graph generation failed: %v", err)
		}
		if graphOutput != "" {
			logrus.Infof("Graph written to %s", graphOutput)
		}
	},
}

// registerGraphFlags adds the sweep flags to c. Shared by `graph` and `accuracy`.
func registerGraphFlags(c *cobra.Command) {
	c.Flags().Float64Var(&graphMaxHorizon, "max-horizon", 750, "Last horizon of the sweep (overrides scenario graph.max_horizon)")
	c.Flags().Float64Var(&graphHorizonStep, "step", 10, "Horizon step of the sweep (overrides scenario graph.horizon_step)")
	c.Flags().BoolVar(&graphFixed, "fixed-horizon", false, "Run every point for the max horizon (overrides scenario graph.fixed_horizon)")
}

// applyGraphOverrides copies the sweep flags the user set into spec.
func applyGraphOverrides(cmd *cobra.Command, spec *workload.ScenarioSpec) {
	if cmd.Flags().Changed("max-horizon") {
		spec.Graph.MaxHorizon = graphMaxHorizon
	}
	if cmd.Flags().Changed("step") {
		spec.Graph.HorizonStep = graphHorizonStep
	}
	if cmd.Flags().Changed("fixed-horizon") {
		spec.Graph.FixedHorizon = graphFixed
	}
}

// graphConfig maps the scenario's sweep and accuracy settings onto graph.Config.
func graphConfig(spec *workload.ScenarioSpec) graph.Config {
	return graph.Config{
		MaxHorizon:            spec.Graph.MaxHorizon,
		HorizonStep:           spec.Graph.HorizonStep,
		FixedHorizon:          spec.Graph.FixedHorizon,
		MaxAccuracyIterations: spec.Accuracy.MaxIterations,
	}
}

// newGenerator validates spec and builds a Generator whose streams derive from key.
func newGenerator(spec *workload.ScenarioSpec, key sim.SimulationKey) (*graph.Generator, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	p, err := spec.NewPipeline(key)
	if err != nil {
		return nil, err
	}
	return graph.NewGenerator(p, graphConfig(spec)), nil
}

// generateGraph runs one sweep and writes the Graph to w as indented JSON.
func generateGraph(w io.Writer, spec *workload.ScenarioSpec) error {
	g, err := newGenerator(spec, sim.NewSimulationKey(spec.Seed))
	if err != nil {
		return err
	}
	gr := g.Generate()
	logrus.Infof("Graph: %d points, mean=%.4f deviation=%.4f max=%.4f",
		len(gr.Points), gr.Mean, gr.Deviation, gr.MaxMetric)

	data, err := json.MarshalIndent(gr, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("writing graph: %w", err)
	}
	return nil
}

// writeGraphFile generates the graph into path. A failed Close is reported,
// since it can mean the JSON never reached the disk.
func writeGraphFile(path string, spec *workload.ScenarioSpec) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing output file: %w", cerr)
		}
	}()
	return generateGraph(f, spec)
}

func init() {
	registerGraphFlags(graphCmd)
	graphCmd.Flags().StringVar(&graphOutput, "output", "", "Write the graph JSON to this file instead of stdout")
}
