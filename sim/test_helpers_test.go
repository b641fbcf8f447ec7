package sim

import (
	"math"
	"math/rand"
)

// constSampler always returns the same duration.
type constSampler float64

func (c constSampler) Sample(_ *rand.Rand) Duration {
	return NewDuration(float64(c))
}

// seqSampler returns its values in order, then repeats the last one.
type seqSampler struct {
	values []float64
	next   int
}

func (s *seqSampler) Sample(_ *rand.Rand) Duration {
	v := s.values[s.next]
	if s.next < len(s.values)-1 {
		s.next++
	}
	return NewDuration(v)
}

// expSampler draws exponential durations with the given mean.
type expSampler float64

func (e expSampler) Sample(rng *rand.Rand) Duration {
	return NewDuration(rng.ExpFloat64() * float64(e))
}

// recordingStage accepts or refuses every request and remembers what it saw.
// With drain set it spends the whole budget it is handed, accepted or not.
type recordingStage struct {
	refuse   bool
	drain    bool
	received []Request
	budgets  []Duration
	resets   int
}

func (r *recordingStage) PushRequest(budget *Duration, req Request) error {
	r.budgets = append(r.budgets, *budget)
	if r.drain {
		*budget = Zero
	}
	if r.refuse {
		return &BlockedError{Stage: "recorder", Reason: ReasonBufferFull}
	}
	r.received = append(r.received, req)
	return nil
}

func (r *recordingStage) Reset() {
	r.resets++
}

func (r *recordingStage) IdleTimeReport() []StageStatistics {
	return nil
}

// newTestPipeline builds a pipeline with the given arrival sampler and services.
func newTestPipeline(seed int64, arrival DurationSampler, specs ...StageSpec) *Pipeline {
	return PipelineBuilder{
		Arrival: arrival,
		RNG:     NewPartitionedRNG(NewSimulationKey(seed)),
	}.Build(specs)
}

// referenceSpecs is the three-stage reference configuration.
func referenceSpecs() []StageSpec {
	return []StageSpec{
		ServiceSpec{Name: "s0", BufferSize: 4, HandlingTime: expSampler(1.25)},
		ServiceSpec{Name: "s1", BufferSize: 2, HandlingTime: expSampler(0.5)},
		ServiceSpec{Name: "s2", BufferSize: 2, HandlingTime: expSampler(0.5)},
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
