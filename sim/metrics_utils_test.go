package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func requestWithLatency(arrival, latency float64) Request {
	r := NewRequest(NewDuration(arrival))
	r.Wait(NewDuration(latency))
	return r
}

func TestCalculatePercentile_Interpolates(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	assert.Equal(t, 1.0, CalculatePercentile(data, 0))
	assert.Equal(t, 3.0, CalculatePercentile(data, 50))
	assert.Equal(t, 5.0, CalculatePercentile(data, 100))
	// rank 0.9·4 = 3.6 → 4 + 0.6·(5-4)
	assert.InDelta(t, 4.6, CalculatePercentile(data, 90), 1e-12)
}

func TestCalculatePercentile_SingleAndEmpty(t *testing.T) {
	assert.Equal(t, 7.0, CalculatePercentile([]float64{7}, 99))
	assert.True(t, math.IsNaN(CalculatePercentile(nil, 50)))
}

func TestSummarizeLatencies_UnsortedInput(t *testing.T) {
	// GIVEN requests completed out of latency order
	reqs := []Request{
		requestWithLatency(0, 3),
		requestWithLatency(1, 1),
		requestWithLatency(2, 2),
	}

	// WHEN summarized
	s := SummarizeLatencies(reqs)

	// THEN percentiles come from the sorted latencies
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 2.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.0, s.P50, 1e-12)
	assert.InDelta(t, 2.8, s.P90, 1e-12)
	assert.Equal(t, 3.0, s.Max)
}

func TestSummarizeLatencies_Empty_IsNaN(t *testing.T) {
	s := SummarizeLatencies(nil)

	assert.Equal(t, 0, s.Count)
	for name, v := range map[string]float64{"mean": s.Mean, "p50": s.P50, "p90": s.P90, "p99": s.P99, "max": s.Max} {
		assert.True(t, math.IsNaN(v), "%s: expected NaN, got %v", name, v)
	}
}

func TestSummarizeLatencies_MeanMatchesAverageHandlingTime(t *testing.T) {
	// GIVEN a run of the reference chain
	p := newTestPipeline(5, expSampler(0.4), referenceSpecs()...)
	completed := p.WorkDuring(NewDuration(300))

	// WHEN both views of the latency are computed
	s := SummarizeLatencies(completed)

	// THEN the summary mean is the statistics average and the percentiles are ordered
	assert.True(t, almostEqual(p.Statistics().AverageHandlingTime, s.Mean))
	assert.LessOrEqual(t, s.P50, s.P90)
	assert.LessOrEqual(t, s.P90, s.P99)
	assert.LessOrEqual(t, s.P99, s.Max)
}
