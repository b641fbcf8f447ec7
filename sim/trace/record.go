// Package trace provides admission-trace recording for pipeline runs.
// It has no dependencies on sim/ and stores plain data types only.
package trace

// AdmissionRecord captures what happened to a single arrival at the head of the pipeline.
type AdmissionRecord struct {
	RequestIndex int     `json:"request_index"` // 0-based arrival index within the run
	Clock        float64 `json:"clock"`         // arrival time
	Admitted     bool    `json:"admitted"`
	Stage        string  `json:"stage,omitempty"`  // rejecting stage; empty when admitted
	Reason       string  `json:"reason,omitempty"` // rejection reason; empty when admitted
}
