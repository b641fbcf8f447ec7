package graph

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pipeline-sim/pipeline-sim/sim"
)

// ErrAccuracyNotReached is returned by AchieveAccuracy when
// Config.MaxAccuracyIterations graphs were generated without convergence.
var ErrAccuracyNotReached = errors.New("accuracy not reached within iteration cap")

// RequiredReplications returns ((deviation²/precision)·quantile)², the number of
// independent replications whose sample mean meets precision at the given quantile.
func RequiredReplications(deviation, precision, quantile float64) float64 {
	return math.Pow(deviation*deviation/precision*quantile, 2)
}

// AchieveAccuracy runs the sequential-sampling loop: generate a graph, compute
// n* from its deviation, and repeat with n = n* while n* exceeds the current n.
// Returns the first n* that does not exceed n.
//
// With Config.MaxAccuracyIterations > 0 the loop stops after that many graphs
// and returns the last n* together with ErrAccuracyNotReached.
func (g *Generator) AchieveAccuracy(initialN, precision, quantile float64) (float64, error) {
	if !(precision > 0) {
		return 0, fmt.Errorf("precision must be positive, got %v", precision)
	}
	if !(quantile > 0) {
		return 0, fmt.Errorf("quantile must be positive, got %v", quantile)
	}

	n := initialN
	for iter := 1; ; iter++ {
		gr := g.Generate()
		required := RequiredReplications(gr.Deviation, precision, quantile)
		logrus.Debugf("accuracy iteration %d: deviation=%.6f n=%.2f n*=%.2f", iter, gr.Deviation, n, required)

		if !(required > n) {
			return required, nil
		}
		n = required

		if limit := g.config.MaxAccuracyIterations; limit > 0 && iter >= limit {
			logrus.Warnf("accuracy not reached after %d iterations; last n*=%.2f", iter, required)
			return required, ErrAccuracyNotReached
		}
	}
}

// AverageOver runs Generate n times and returns the mean of the final-point
// statistics of every run. The pipeline's random streams carry over between
// runs, so the runs are independent replications.
func (g *Generator) AverageOver(n int) (sim.Statistics, error) {
	if n <= 0 {
		return sim.Statistics{}, fmt.Errorf("replication count must be positive, got %d", n)
	}
	var total sim.Statistics
	for i := 0; i < n; i++ {
		g.Generate()
		total.Merge(g.pipeline.Statistics())
	}
	total.Scale(float64(n))
	return total, nil
}

// GeneratorFactory builds the Generator of one replication. Every replica must
// own its pipeline and random streams.
type GeneratorFactory func(replica int) (*Generator, error)

// ParallelAverage is AverageOver spread across goroutines: replica i runs one
// Generate on factory(i). At most workers replicas run at once (0 means no limit).
// Statistics are merged in replica order, so the result only depends on factory.
// Cancelling ctx stops scheduling new replicas and returns ctx's error.
func ParallelAverage(ctx context.Context, n, workers int, factory GeneratorFactory) (sim.Statistics, error) {
	if n <= 0 {
		return sim.Statistics{}, fmt.Errorf("replication count must be positive, got %d", n)
	}
	if workers < 0 {
		return sim.Statistics{}, fmt.Errorf("workers must be non-negative, got %d", workers)
	}

	results := make([]sim.Statistics, n)
	eg, egCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}
	for i := 0; i < n; i++ {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			gen, err := factory(i)
			if err != nil {
				return fmt.Errorf("replica %d: %w", i, err)
			}
			gen.Generate()
			results[i] = gen.pipeline.Statistics()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return sim.Statistics{}, err
	}
	if err := ctx.Err(); err != nil {
		return sim.Statistics{}, err
	}

	var total sim.Statistics
	for _, r := range results {
		total.Merge(r)
	}
	total.Scale(float64(n))
	logrus.Debugf("parallel average over %d replicas (workers=%d) done", n, workers)
	return total, nil
}
