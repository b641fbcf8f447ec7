// Implements the Service stage: a bounded buffer in front of a single server,
// with backpressure when the next stage refuses completed requests.

package sim

import (
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"
)

// ServiceSpec configures a Service stage.
type ServiceSpec struct {
	Name         string          // Used in BlockedError and trace records
	BufferSize   int             // Maximum number of waiting requests (>= 1)
	HandlingTime DurationSampler // Service time distribution
}

// NewStage builds a Service that forwards completed requests to next.
// Panics if BufferSize < 1 or HandlingTime is nil.
func (s ServiceSpec) NewStage(rng *rand.Rand, next Stage) Stage {
	if s.HandlingTime == nil {
		panic(fmt.Sprintf("ServiceSpec %q: HandlingTime must not be nil", s.Name))
	}
	if next == nil {
		panic(fmt.Sprintf("ServiceSpec %q: next stage must not be nil", s.Name))
	}
	return &Service{
		name:    s.Name,
		handler: newHandler(s.BufferSize, rng, s.HandlingTime),
		next:    next,
	}
}

// Service is a stage with one server and a bounded FIFO buffer.
//
// While Blocked it holds exactly one completed request that the next stage
// refused, and drops every newly arriving request until that stuck request
// is delivered on a later call.
type Service struct {
	name     string
	handler  *handler
	next     Stage
	idleTime Duration

	blocked bool
	stuck   Request // valid only while blocked
}

// Name returns the configured stage name.
func (s *Service) Name() string {
	return s.name
}

// Blocked reports whether the stage is holding an undeliverable request.
func (s *Service) Blocked() bool {
	return s.blocked
}

// BufferLen returns the number of requests waiting in the buffer.
func (s *Service) BufferLen() int {
	return s.handler.buffer.Len()
}

// BufferCap returns the buffer capacity.
func (s *Service) BufferCap() int {
	return s.handler.buffer.Cap()
}

// InService reports whether a request is partially served.
func (s *Service) InService() bool {
	return s.handler.current != nil
}

// IdleTime returns the accumulated idle time of this stage.
func (s *Service) IdleTime() Duration {
	return s.idleTime
}

func (s *Service) PushRequest(budget *Duration, req Request) error {
	// Idle time counts the whole budget handed to this stage, busy or not.
	allotted := *budget

	if s.blocked {
		// The stuck request shares this stage's budget: whatever the next
		// stage spends on it is no longer available to the service loop.
		if err := s.next.PushRequest(budget, s.stuck); err != nil {
			s.idleTime.Increase(*budget)
			logrus.Debugf("stage %s: still blocked, dropping request arrived at %v", s.name, req.ArrivalTime)
			return &BlockedError{Stage: s.name, Reason: ReasonStalled}
		}
		s.blocked = false
		s.stuck = Request{}
	}

	handleErr := s.handleRequests(budget)
	s.idleTime.Increase(allotted)
	if handleErr != nil {
		return handleErr
	}

	if !s.handler.add(req) {
		return &BlockedError{Stage: s.name, Reason: ReasonBufferFull}
	}
	return nil
}

// handleRequests serves buffered requests within *budget and forwards each
// completed one downstream. The downstream budget for an emitted request is
// the time consumed since the previous emission.
func (s *Service) handleRequests(budget *Duration) error {
	lastBudget := *budget
	for {
		req, done, ok := s.handler.progress(budget)
		if !ok {
			return nil
		}
		if !done {
			continue
		}

		downstream := lastBudget.Sub(*budget)
		if err := s.next.PushRequest(&downstream, req); err != nil {
			s.blocked = true
			s.stuck = req
			logrus.Debugf("stage %s: next stage refused request arrived at %v: %v", s.name, req.ArrivalTime, err)
			return &BlockedError{Stage: s.name, Reason: ReasonDownstreamBlocked}
		}
		lastBudget = *budget
	}
}

func (s *Service) Reset() {
	s.handler.clear()
	s.blocked = false
	s.stuck = Request{}
	s.idleTime = Zero
	s.next.Reset()
}

func (s *Service) IdleTimeReport() []StageStatistics {
	report := []StageStatistics{{IdleTime: s.idleTime.Float64()}}
	return append(report, s.next.IdleTimeReport()...)
}
