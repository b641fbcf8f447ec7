package sim

import (
	"errors"
	"fmt"
	"math/rand"
)

// ErrBlocked is matched (via errors.Is) by every rejection a stage reports.
var ErrBlocked = errors.New("stage blocked")

// BlockedReason describes why a stage refused a request.
type BlockedReason string

const (
	// ReasonBufferFull: the stage's bounded buffer was at capacity.
	ReasonBufferFull BlockedReason = "buffer_full"
	// ReasonDownstreamBlocked: a request completed during this call could not be forwarded.
	ReasonDownstreamBlocked BlockedReason = "downstream_blocked"
	// ReasonStalled: the stage was already holding a stuck request and still cannot forward it.
	ReasonStalled BlockedReason = "stalled"
)

// BlockedError is returned by Stage.PushRequest when a request is dropped.
type BlockedError struct {
	Stage  string
	Reason BlockedReason
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("stage %q blocked: %s", e.Stage, e.Reason)
}

// Unwrap lets errors.Is(err, ErrBlocked) match.
func (e *BlockedError) Unwrap() error {
	return ErrBlocked
}

// StageStatistics holds the per-stage figures reported by IdleTimeReport.
type StageStatistics struct {
	IdleTime float64 `json:"idle_time" yaml:"idle_time"`
}

// Stage is one element of the processing chain.
//
// PushRequest hands the stage a request together with the amount of simulated
// time that elapsed since the previous push (the budget). The stage may consume
// part of the budget doing its own work. It returns nil when the request was
// accepted, or an error matching ErrBlocked when the request was dropped.
//
// Stages are not safe for concurrent use.
type Stage interface {
	PushRequest(budget *Duration, req Request) error
	// Reset clears buffers, blocking state and statistics of this stage and every stage after it.
	Reset()
	// IdleTimeReport returns one entry per stage from this one to the end of the chain.
	IdleTimeReport() []StageStatistics
}

// StageSpec describes a stage kind. NewStage creates an instance that forwards to next.
// This is the extension point for new stage types.
type StageSpec interface {
	NewStage(rng *rand.Rand, next Stage) Stage
}

// DurationSampler is any source of non-negative random durations
// (arrival gaps, service times).
type DurationSampler interface {
	// Sample returns a non-negative duration drawn using rng.
	Sample(rng *rand.Rand) Duration
}
