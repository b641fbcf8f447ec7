package sim

import "fmt"

// Statistics is a snapshot of a finished run.
// Counts are float64 so that statistics of independent replications can be
// merged with Merge and averaged with Scale.
type Statistics struct {
	WorkingTime               Duration          `json:"working_time" yaml:"working_time"`
	RequestsNumber            float64           `json:"requests_number" yaml:"requests_number"`
	HandledRequestsNumber     float64           `json:"handled_requests_number" yaml:"handled_requests_number"`
	DelayedRequestsCount      float64           `json:"delayed_requests_count" yaml:"delayed_requests_count"`
	ProbabilityOfRequestDelay float64           `json:"probability_of_request_delay" yaml:"probability_of_request_delay"`
	AverageHandlingTime       float64           `json:"average_handling_time" yaml:"average_handling_time"`
	Stages                    []StageStatistics `json:"stages" yaml:"stages"` // chain order, head first
}

// Merge adds other into s field by field.
// The shorter stage list is zero-padded up to the longer one.
func (s *Statistics) Merge(other Statistics) {
	s.WorkingTime.Increase(other.WorkingTime)
	s.RequestsNumber += other.RequestsNumber
	s.HandledRequestsNumber += other.HandledRequestsNumber
	s.DelayedRequestsCount += other.DelayedRequestsCount
	s.ProbabilityOfRequestDelay += other.ProbabilityOfRequestDelay
	s.AverageHandlingTime += other.AverageHandlingTime

	for len(s.Stages) < len(other.Stages) {
		s.Stages = append(s.Stages, StageStatistics{})
	}
	for i, st := range other.Stages {
		s.Stages[i].IdleTime += st.IdleTime
	}
}

// Scale divides every field by n, turning a sum of n merged runs into their mean.
// Panics if n <= 0.
func (s *Statistics) Scale(n float64) {
	if n <= 0 {
		panic(fmt.Sprintf("Statistics.Scale: n must be positive, got %v", n))
	}
	s.WorkingTime = NewDuration(s.WorkingTime.Float64() / n)
	s.RequestsNumber /= n
	s.HandledRequestsNumber /= n
	s.DelayedRequestsCount /= n
	s.ProbabilityOfRequestDelay /= n
	s.AverageHandlingTime /= n
	for i := range s.Stages {
		s.Stages[i].IdleTime /= n
	}
}

// IdleTimeProbabilities returns each stage's idle time as a fraction of the working time.
func (s Statistics) IdleTimeProbabilities() []float64 {
	probs := make([]float64, len(s.Stages))
	for i, st := range s.Stages {
		probs[i] = st.IdleTime / s.WorkingTime.Float64()
	}
	return probs
}

// Clone returns a deep copy of s.
func (s Statistics) Clone() Statistics {
	out := s
	out.Stages = append([]StageStatistics(nil), s.Stages...)
	return out
}
