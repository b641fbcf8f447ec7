// Package testutil holds the golden pipeline runs and float helpers shared by sim tests.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// GoldenDataset mirrors testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is a deterministic pipeline run: constant inter-arrival gap,
// constant service times, fixed horizon. Expected values are traced by hand.
type GoldenTestCase struct {
	Name       string        `json:"name"`
	ArrivalGap float64       `json:"arrival_gap"`
	Horizon    float64       `json:"horizon"`
	Stages     []GoldenStage `json:"stages"`
	Metrics    GoldenMetrics `json:"metrics"`
}

// GoldenStage is one constant-service stage, head first.
type GoldenStage struct {
	BufferSize  int     `json:"buffer_size"`
	ServiceTime float64 `json:"service_time"`
}

type GoldenMetrics struct {
	Requests          int `json:"requests"`
	DelayedRequests   int `json:"delayed_requests"`
	CompletedRequests int `json:"completed_requests"`

	ProbabilityOfRequestDelay float64   `json:"probability_of_request_delay"`
	AverageHandlingTime       float64   `json:"average_handling_time"`
	IdleTimes                 []float64 `json:"idle_times"` // head first
}

// goldenPath locates <repo>/testdata/goldendataset.json from this file's directory.
func goldenPath(t *testing.T) string {
	_, here, _, ok := runtime.Caller(0)
	require.True(t, ok, "cannot resolve testutil source path")
	root := filepath.Join(filepath.Dir(here), "..", "..", "..")
	return filepath.Join(root, "testdata", "goldendataset.json")
}

// LoadGoldenDataset reads and decodes the golden runs, failing t on any error.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	raw, err := os.ReadFile(goldenPath(t))
	require.NoError(t, err, "reading golden dataset")

	dataset := &GoldenDataset{}
	require.NoError(t, json.Unmarshal(raw, dataset), "decoding golden dataset")
	require.NotEmpty(t, dataset.Tests, "golden dataset has no cases")
	return dataset
}

// AssertFloat64Equal reports an error on t when want and got differ by more
// than relTol relative to the larger magnitude. Two zeros are always equal.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	scale := math.Max(math.Abs(want), math.Abs(got))
	if scale == 0 {
		return
	}
	if rel := math.Abs(want-got) / scale; rel > relTol {
		t.Errorf("%s: got %v, want %v (relative error %.3g > %.3g)", name, got, want, rel, relTol)
	}
}
