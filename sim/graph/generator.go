// Package graph builds metric-vs-horizon curves from repeated pipeline runs
// and estimates how many independent replications a target precision needs.
package graph

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/pipeline-sim/pipeline-sim/sim"
)

// Config controls the horizon sweep and the convergence loop.
type Config struct {
	MaxHorizon   float64 // Last x value of the sweep (inclusive)
	HorizonStep  float64 // Distance between consecutive x values (> 0)
	FixedHorizon bool    // Run every point for MaxHorizon instead of x

	// MaxAccuracyIterations caps the number of graphs AchieveAccuracy generates.
	// 0 means unbounded.
	MaxAccuracyIterations int
}

// Point is one (horizon, metric) sample of a Graph.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Graph is the result of one full sweep. The metric is the mean latency of
// the requests completed during the run at each point.
type Graph struct {
	Points     []Point `json:"points"`
	Mean       float64 `json:"mean"`
	Deviation  float64 `json:"deviation"` // population standard deviation of the metric
	MaxHorizon float64 `json:"max_horizon"`
	MaxMetric  float64 `json:"max_metric"`
}

// Generator repeatedly resets and re-runs one pipeline.
// Not safe for concurrent use; see ParallelAverage for replication-level parallelism.
type Generator struct {
	pipeline *sim.Pipeline
	config   Config
}

// NewGenerator creates a Generator over p.
// Panics if p is nil, HorizonStep is not positive, or MaxHorizon is negative.
func NewGenerator(p *sim.Pipeline, cfg Config) *Generator {
	if p == nil {
		panic("NewGenerator: pipeline must not be nil")
	}
	if !(cfg.HorizonStep > 0) || math.IsInf(cfg.HorizonStep, 0) {
		panic(fmt.Sprintf("NewGenerator: HorizonStep must be positive and finite, got %v", cfg.HorizonStep))
	}
	if !(cfg.MaxHorizon >= 0) || math.IsInf(cfg.MaxHorizon, 0) {
		panic(fmt.Sprintf("NewGenerator: MaxHorizon must be non-negative and finite, got %v", cfg.MaxHorizon))
	}
	return &Generator{pipeline: p, config: cfg}
}

// Pipeline returns the pipeline driven by g.
func (g *Generator) Pipeline() *sim.Pipeline {
	return g.pipeline
}

// Config returns the generator configuration.
func (g *Generator) Config() Config {
	return g.config
}

// maxPreallocPoints bounds the up-front allocation of a sweep; longer sweeps grow by append.
const maxPreallocPoints = 1 << 16

// pointCapacity estimates the number of sweep points, capped at maxPreallocPoints.
func pointCapacity(cfg Config) int {
	n := math.Floor(cfg.MaxHorizon/cfg.HorizonStep) + 1
	if n > maxPreallocPoints {
		return maxPreallocPoints
	}
	return int(n)
}

// Generate sweeps x = 0, step, 2·step, ... while x <= MaxHorizon. Each point
// resets the pipeline and runs it for x (or MaxHorizon when FixedHorizon is set).
// The pipeline is left in the state of the last run, so its Statistics
// describe the final point.
func (g *Generator) Generate() Graph {
	cfg := g.config
	n := pointCapacity(cfg)
	points := make([]Point, 0, n)
	metrics := make([]float64, 0, n)
	maxMetric := 0.0

	for i := 0; ; i++ {
		x := float64(i) * cfg.HorizonStep
		if x > cfg.MaxHorizon {
			break
		}
		horizon := x
		if cfg.FixedHorizon {
			horizon = cfg.MaxHorizon
		}

		g.pipeline.Reset()
		y := meanLatency(g.pipeline.WorkDuring(sim.NewDuration(horizon)))
		if y > maxMetric {
			maxMetric = y
		}
		points = append(points, Point{X: x, Y: y})
		metrics = append(metrics, y)
	}

	mean, dev := stat.PopMeanStdDev(metrics, nil)
	if math.IsNaN(dev) {
		// variance rounded below zero
		dev = 0
	}
	logrus.Debugf("graph: %d points, mean=%.6f deviation=%.6f max=%.6f", len(points), mean, dev, maxMetric)

	return Graph{
		Points:     points,
		Mean:       mean,
		Deviation:  dev,
		MaxHorizon: cfg.MaxHorizon,
		MaxMetric:  maxMetric,
	}
}

// meanLatency is the mean time in system of reqs, or 0 when reqs is empty.
func meanLatency(reqs []sim.Request) float64 {
	if len(reqs) == 0 {
		return 0
	}
	latencies := make([]float64, len(reqs))
	for i, r := range reqs {
		latencies[i] = r.Latency().Float64()
	}
	return stat.Mean(latencies, nil)
}
