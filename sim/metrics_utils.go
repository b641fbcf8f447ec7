// sim/metrics_utils.go
package sim

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// LatencySummary describes the distribution of time in system over completed requests.
// Every field except Count is NaN when no request completed.
type LatencySummary struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
	P50   float64 `json:"p50" yaml:"p50"`
	P90   float64 `json:"p90" yaml:"p90"`
	P99   float64 `json:"p99" yaml:"p99"`
	Max   float64 `json:"max" yaml:"max"`
}

// CalculatePercentile returns the p-th percentile (0..100) of sorted data,
// interpolating linearly between the two closest ranks. NaN for empty data.
func CalculatePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}

	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if upperIdx >= n {
		return sorted[n-1]
	}
	if lowerIdx == upperIdx {
		return sorted[lowerIdx]
	}
	return sorted[lowerIdx] + (sorted[upperIdx]-sorted[lowerIdx])*(rank-float64(lowerIdx))
}

// SummarizeLatencies computes the latency distribution of reqs.
func SummarizeLatencies(reqs []Request) LatencySummary {
	if len(reqs) == 0 {
		nan := math.NaN()
		return LatencySummary{Mean: nan, P50: nan, P90: nan, P99: nan, Max: nan}
	}

	latencies := make([]float64, len(reqs))
	for i, r := range reqs {
		latencies[i] = r.Latency().Float64()
	}
	sort.Float64s(latencies)

	return LatencySummary{
		Count: len(latencies),
		Mean:  stat.Mean(latencies, nil),
		P50:   CalculatePercentile(latencies, 50),
		P90:   CalculatePercentile(latencies, 90),
		P99:   CalculatePercentile(latencies, 99),
		Max:   latencies[len(latencies)-1],
	}
}
