// sim/pipeline.go
package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/pipeline-sim/pipeline-sim/sim/trace"
)

// PipelineBuilder holds the pipeline-wide parameters used to assemble a stage chain.
type PipelineBuilder struct {
	Arrival DurationSampler // Inter-arrival gap distribution
	RNG     *PartitionedRNG // Source of every random stream in the pipeline
}

// Build folds specs right-to-left into a chain ending in a Collector.
// specs[0] becomes the head stage. Stage i draws from RNG.ForSubsystem(SubsystemStage(i)).
func (b PipelineBuilder) Build(specs []StageSpec) *Pipeline {
	if b.Arrival == nil {
		panic("PipelineBuilder.Build: Arrival must not be nil")
	}
	if b.RNG == nil {
		panic("PipelineBuilder.Build: RNG must not be nil")
	}

	accum := &RequestAccumulator{}
	var head Stage = NewCollector(accum)
	for i := len(specs) - 1; i >= 0; i-- {
		head = specs[i].NewStage(b.RNG.ForSubsystem(SubsystemStage(i)), head)
	}

	return &Pipeline{
		arrival:   b.Arrival,
		rng:       b.RNG,
		completed: accum,
		head:      head,
		numStages: len(specs),
	}
}

// Pipeline drives requests through a stage chain.
// Time advances by sampled inter-arrival gaps only: each arrival hands the
// head stage the gap since the previous arrival as its time budget.
//
// Not safe for concurrent use; independent replications need independent pipelines.
type Pipeline struct {
	arrival   DurationSampler
	rng       *PartitionedRNG
	completed *RequestAccumulator
	head      Stage
	numStages int

	requestsCount        int
	delayedRequestsCount int
	workingTime          Duration

	trace *trace.SimulationTrace
}

// SetTrace enables admission tracing. A nil trace disables it.
func (p *Pipeline) SetTrace(st *trace.SimulationTrace) {
	p.trace = st
}

// Trace returns the attached trace, or nil.
func (p *Pipeline) Trace() *trace.SimulationTrace {
	return p.trace
}

// Head returns the first stage of the chain.
func (p *Pipeline) Head() Stage {
	return p.head
}

// NumStages returns the number of service stages (the Collector is not counted).
func (p *Pipeline) NumStages() int {
	return p.numStages
}

// RequestsCount returns the number of arrivals since the last Reset.
func (p *Pipeline) RequestsCount() int {
	return p.requestsCount
}

// DelayedRequestsCount returns the number of arrivals dropped since the last Reset.
func (p *Pipeline) DelayedRequestsCount() int {
	return p.delayedRequestsCount
}

// WorkingTime returns the total simulated time run since the last Reset.
func (p *Pipeline) WorkingTime() Duration {
	return p.workingTime
}

// Completed returns a copy of the requests that reached the Collector.
func (p *Pipeline) Completed() []Request {
	return p.completed.Snapshot()
}

// Reset clears the chain, the completed list and every counter.
// RNG streams are not rewound.
func (p *Pipeline) Reset() {
	p.completed.Clear()
	p.head.Reset()
	p.requestsCount = 0
	p.delayedRequestsCount = 0
	p.workingTime = Zero
	p.trace.Clear()
}

// WorkDuring feeds arrivals into the chain until the next sampled arrival
// would fall after workingTime. Arrival times are relative to the start of
// this call. Returns a snapshot of all requests completed since the last Reset.
func (p *Pipeline) WorkDuring(workingTime Duration) []Request {
	p.workingTime.Increase(workingTime)
	rng := p.rng.ForSubsystem(SubsystemArrival)
	clock := Zero

	for {
		gap := p.arrival.Sample(rng)
		if workingTime.Less(clock.Add(gap)) {
			break
		}
		clock.Increase(gap)

		index := p.requestsCount
		p.requestsCount++

		budget := gap
		err := p.head.PushRequest(&budget, NewRequest(clock))
		if err == nil {
			p.trace.RecordAdmission(trace.AdmissionRecord{RequestIndex: index, Clock: clock.Float64(), Admitted: true})
			continue
		}
		if !errors.Is(err, ErrBlocked) {
			panic(fmt.Sprintf("Pipeline.WorkDuring: unexpected stage error: %v", err))
		}
		p.delayedRequestsCount++
		record := trace.AdmissionRecord{RequestIndex: index, Clock: clock.Float64()}
		var blocked *BlockedError
		if errors.As(err, &blocked) {
			record.Stage = blocked.Stage
			record.Reason = string(blocked.Reason)
		}
		p.trace.RecordAdmission(record)
		logrus.Debugf("[t=%v] request %d dropped: %v", clock, index, err)
	}

	return p.completed.Snapshot()
}

// Statistics computes the statistics of the work done since the last Reset.
//
// ProbabilityOfRequestDelay is NaN when there were no arrivals and
// AverageHandlingTime is NaN when no request completed.
func (p *Pipeline) Statistics() Statistics {
	latencies := make([]float64, 0, p.completed.Len())
	for _, req := range p.completed.Items() {
		latencies = append(latencies, req.Latency().Float64())
	}

	return Statistics{
		WorkingTime:               p.workingTime,
		RequestsNumber:            float64(p.requestsCount),
		HandledRequestsNumber:     float64(p.requestsCount - p.delayedRequestsCount),
		DelayedRequestsCount:      float64(p.delayedRequestsCount),
		ProbabilityOfRequestDelay: float64(p.delayedRequestsCount) / float64(p.requestsCount),
		AverageHandlingTime:       stat.Mean(latencies, nil),
		Stages:                    p.head.IdleTimeReport(),
	}
}
