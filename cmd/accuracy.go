package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pipeline-sim/pipeline-sim/sim"
	"github.com/pipeline-sim/pipeline-sim/sim/graph"
	"github.com/pipeline-sim/pipeline-sim/sim/workload"
)

var (
	accInitialN      float64 // Starting replication count
	accPrecision     float64 // Target half-width of the confidence interval
	accQuantile      float64 // Confidence quantile
	accMaxIterations int     // Cap on generated graphs (0 = unbounded)
	accWorkers       int     // Parallel replications for --average
	accAverage       bool    // Average statistics over the estimated replication count
	accMaxReplicas   int     // Cap on the averaged replication count (0 = no cap)
)

// accuracyReport is the YAML document printed by `accuracy`.
type accuracyReport struct {
	Seed                  int64           `yaml:"seed"`
	RequiredReplications  float64         `yaml:"required_replications"`
	Converged             bool            `yaml:"converged"`
	Replications          int             `yaml:"replications,omitempty"`
	Statistics            *sim.Statistics `yaml:"statistics,omitempty"`
	IdleTimeProbabilities []float64       `yaml:"idle_time_probabilities,omitempty"`
}

var accuracyCmd = &cobra.Command{
	Use:   "accuracy",
	Short: "Estimate the replication count needed for a target precision",
	Long: "Runs the sequential-sampling loop: each iteration sweeps the horizon, estimates the " +
		"required replication count from the metric deviation and repeats while the estimate grows. " +
		"With --average the statistics are then averaged over that many parallel replications.",
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := loadScenario(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		applyGraphOverrides(cmd, spec)
		applyAccuracyOverrides(cmd, spec)

		if err := estimateAccuracy(cmd.Context(), cmd.OutOrStdout(), spec, accAverage, accMaxReplicas); err != nil {
			logrus.Fatalf("Accuracy estimation failed: %v", err)
		}
	},
}

// applyAccuracyOverrides copies the accuracy flags the user set into spec.
func applyAccuracyOverrides(cmd *cobra.Command, spec *workload.ScenarioSpec) {
	if cmd.Flags().Changed("initial") {
		spec.Accuracy.InitialReplications = accInitialN
	}
	if cmd.Flags().Changed("precision") {
		spec.Accuracy.Precision = accPrecision
	}
	if cmd.Flags().Changed("quantile") {
		spec.Accuracy.Quantile = accQuantile
	}
	if cmd.Flags().Changed("max-iterations") {
		spec.Accuracy.MaxIterations = accMaxIterations
	}
	if cmd.Flags().Changed("workers") {
		spec.Accuracy.Workers = accWorkers
	}
}

// estimateAccuracy runs AchieveAccuracy and, when average is set, averages
// statistics over the resulting replication count. Hitting the iteration cap
// is reported, not fatal.
func estimateAccuracy(ctx context.Context, w io.Writer, spec *workload.ScenarioSpec, average bool, maxReplicas int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	key := sim.NewSimulationKey(spec.Seed)
	g, err := newGenerator(spec, key)
	if err != nil {
		return err
	}

	acc := spec.Accuracy
	n, err := g.AchieveAccuracy(acc.InitialReplications, acc.Precision, acc.Quantile)
	converged := true
	if errors.Is(err, graph.ErrAccuracyNotReached) {
		logrus.Warnf("Using the last estimate n*=%.2f", n)
		converged = false
	} else if err != nil {
		return err
	}
	logrus.Infof("Required replications: %.2f (precision=%v, quantile=%v)", n, acc.Precision, acc.Quantile)

	report := accuracyReport{Seed: spec.Seed, RequiredReplications: n, Converged: converged}
	if average {
		replicas := replicationCount(n, maxReplicas)
		workers := acc.Workers
		if workers == 0 {
			workers = runtime.NumCPU()
		}
		stats, err := graph.ParallelAverage(ctx, replicas, workers, func(replica int) (*graph.Generator, error) {
			return newGenerator(spec, key.ForReplica(replica))
		})
		if err != nil {
			return fmt.Errorf("averaging %d replications: %w", replicas, err)
		}
		report.Replications = replicas
		report.Statistics = &stats
		report.IdleTimeProbabilities = stats.IdleTimeProbabilities()
	}
	return writeYAML(w, report)
}

// replicationCount rounds n up to a whole positive count, capped at maxReplicas when set.
func replicationCount(n float64, maxReplicas int) int {
	count := 1
	if n > 1 {
		count = int(math.Min(math.Ceil(n), math.MaxInt32))
	}
	if maxReplicas > 0 && count > maxReplicas {
		logrus.Warnf("Capping %d replications at %d", count, maxReplicas)
		count = maxReplicas
	}
	return count
}

func init() {
	registerGraphFlags(accuracyCmd)
	accuracyCmd.Flags().Float64Var(&accInitialN, "initial", 100, "Initial replication count (overrides scenario accuracy.initial_replications)")
	accuracyCmd.Flags().Float64Var(&accPrecision, "precision", 0.2, "Target precision (overrides scenario accuracy.precision)")
	accuracyCmd.Flags().Float64Var(&accQuantile, "quantile", 1.95, "Confidence quantile (overrides scenario accuracy.quantile)")
	accuracyCmd.Flags().IntVar(&accMaxIterations, "max-iterations", 0, "Maximum generated graphs, 0 for unbounded (overrides scenario accuracy.max_iterations)")
	accuracyCmd.Flags().IntVar(&accWorkers, "workers", 0, "Parallel replications for --average, 0 for one per CPU (overrides scenario accuracy.workers)")
	accuracyCmd.Flags().BoolVar(&accAverage, "average", false, "Average statistics over the estimated replication count")
	accuracyCmd.Flags().IntVar(&accMaxReplicas, "max-replicas", 10000, "Upper bound on averaged replications, 0 for no cap")
}
