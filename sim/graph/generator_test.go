package graph

import (
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipeline-sim/pipeline-sim/sim"
)

func TestMain(m *testing.M) {
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.ErrorLevel)
	}
	os.Exit(m.Run())
}

type constSampler float64

func (c constSampler) Sample(_ *rand.Rand) sim.Duration {
	return sim.NewDuration(float64(c))
}

type expSampler float64

func (e expSampler) Sample(rng *rand.Rand) sim.Duration {
	return sim.NewDuration(rng.ExpFloat64() * float64(e))
}

// newConstPipeline builds one buffer-1 stage fed every time unit.
// Every request that completes has latency == service.
func newConstPipeline(service float64) *sim.Pipeline {
	return sim.PipelineBuilder{
		Arrival: constSampler(1),
		RNG:     sim.NewPartitionedRNG(sim.NewSimulationKey(42)),
	}.Build([]sim.StageSpec{
		sim.ServiceSpec{Name: "s0", BufferSize: 1, HandlingTime: constSampler(service)},
	})
}

// newReferencePipeline builds the three-stage exponential reference chain.
func newReferencePipeline(key sim.SimulationKey) *sim.Pipeline {
	return sim.PipelineBuilder{
		Arrival: expSampler(0.4),
		RNG:     sim.NewPartitionedRNG(key),
	}.Build([]sim.StageSpec{
		sim.ServiceSpec{Name: "s0", BufferSize: 4, HandlingTime: expSampler(1.25)},
		sim.ServiceSpec{Name: "s1", BufferSize: 2, HandlingTime: expSampler(0.5)},
		sim.ServiceSpec{Name: "s2", BufferSize: 2, HandlingTime: expSampler(0.5)},
	})
}

func TestGenerate_GrowingHorizon_PointsAndMoments(t *testing.T) {
	// GIVEN a constant pipeline whose completions all have latency 0.5
	g := NewGenerator(newConstPipeline(0.5), Config{MaxHorizon: 20, HorizonStep: 5})

	// WHEN the sweep runs
	gr := g.Generate()

	// THEN x = 0, 5, 10, 15, 20 and only the empty x=0 run has metric 0
	require.Len(t, gr.Points, 5)
	for i, p := range gr.Points {
		assert.Equal(t, float64(i)*5, p.X)
	}
	assert.Equal(t, 0.0, gr.Points[0].Y)
	for _, p := range gr.Points[1:] {
		assert.InDelta(t, 0.5, p.Y, 1e-12)
	}
	// mean 0.4, population deviation sqrt((0.16 + 4·0.01)/5) = 0.2
	assert.InDelta(t, 0.4, gr.Mean, 1e-12)
	assert.InDelta(t, 0.2, gr.Deviation, 1e-12)
	assert.Equal(t, 20.0, gr.MaxHorizon)
	assert.InDelta(t, 0.5, gr.MaxMetric, 1e-12)
}

func TestGenerate_FixedHorizon_EveryPointRunsMaxHorizon(t *testing.T) {
	// GIVEN the same pipeline with a fixed horizon
	g := NewGenerator(newConstPipeline(0.5), Config{MaxHorizon: 20, HorizonStep: 5, FixedHorizon: true})

	// WHEN the sweep runs
	gr := g.Generate()

	// THEN x still advances by step but every metric comes from a 20-unit run
	require.Len(t, gr.Points, 5)
	assert.Equal(t, 20.0, gr.Points[4].X)
	for _, p := range gr.Points {
		assert.InDelta(t, 0.5, p.Y, 1e-12)
	}
	assert.InDelta(t, 0.5, gr.Mean, 1e-12)
	assert.Equal(t, 0.0, gr.Deviation)
}

func TestGenerate_ZeroMaxHorizon_SinglePoint(t *testing.T) {
	g := NewGenerator(newConstPipeline(0.5), Config{MaxHorizon: 0, HorizonStep: 10})

	gr := g.Generate()

	require.Len(t, gr.Points, 1)
	assert.Equal(t, Point{X: 0, Y: 0}, gr.Points[0])
	assert.Equal(t, 0.0, gr.Mean)
	assert.Equal(t, 0.0, gr.Deviation)
	assert.Equal(t, 0.0, gr.MaxMetric)
}

func TestGenerate_LeavesPipelineAtFinalPoint(t *testing.T) {
	// GIVEN a sweep ending at horizon 20
	p := newConstPipeline(0.5)
	g := NewGenerator(p, Config{MaxHorizon: 20, HorizonStep: 5})

	// WHEN it runs
	g.Generate()

	// THEN the pipeline holds only the last run
	assert.Equal(t, 20, p.RequestsCount())
	assert.Equal(t, 20.0, p.WorkingTime().Float64())
	assert.Len(t, p.Completed(), 19)
}

func TestGenerate_MaxMetricIsLargestPoint(t *testing.T) {
	gr := NewGenerator(newReferencePipeline(sim.NewSimulationKey(7)), Config{MaxHorizon: 200, HorizonStep: 10}).Generate()

	largest := 0.0
	for _, p := range gr.Points {
		largest = math.Max(largest, p.Y)
	}
	assert.Equal(t, largest, gr.MaxMetric)
	assert.Greater(t, gr.Deviation, 0.0)
}

func TestNewGenerator_InvalidConfig_Panics(t *testing.T) {
	p := newConstPipeline(1)
	assert.Panics(t, func() { NewGenerator(nil, Config{HorizonStep: 1}) })
	assert.Panics(t, func() { NewGenerator(p, Config{MaxHorizon: 10, HorizonStep: 0}) })
	assert.Panics(t, func() { NewGenerator(p, Config{MaxHorizon: -1, HorizonStep: 1}) })
	assert.Panics(t, func() { NewGenerator(p, Config{MaxHorizon: math.NaN(), HorizonStep: 1}) })
	assert.Panics(t, func() { NewGenerator(p, Config{MaxHorizon: 10, HorizonStep: math.Inf(1)}) })
}

func TestPointCapacity_CapsHugeSweeps(t *testing.T) {
	assert.Equal(t, 5, pointCapacity(Config{MaxHorizon: 20, HorizonStep: 5}))
	assert.Equal(t, 1, pointCapacity(Config{MaxHorizon: 0, HorizonStep: 1}))
	assert.Equal(t, 3, pointCapacity(Config{MaxHorizon: 2.5, HorizonStep: 1}))
	// 1e21 points would overflow make's capacity
	assert.Equal(t, maxPreallocPoints, pointCapacity(Config{MaxHorizon: 1e12, HorizonStep: 1e-9}))
}

func TestNewGenerator_KeepsConfigAndPipeline(t *testing.T) {
	p := newConstPipeline(0.5)
	cfg := Config{MaxHorizon: 30, HorizonStep: 3, FixedHorizon: true, MaxAccuracyIterations: 2}

	g := NewGenerator(p, cfg)

	assert.Equal(t, cfg, g.Config())
	assert.Same(t, p, g.Pipeline())
}
