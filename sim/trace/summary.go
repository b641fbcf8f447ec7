package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalRecords       int            `json:"total_records" yaml:"total_records"`
	AdmittedCount      int            `json:"admitted_count" yaml:"admitted_count"`
	RejectedCount      int            `json:"rejected_count" yaml:"rejected_count"`
	RejectionsByStage  map[string]int `json:"rejections_by_stage" yaml:"rejections_by_stage"`   // stage name → rejected arrivals
	RejectionsByReason map[string]int `json:"rejections_by_reason" yaml:"rejections_by_reason"` // reason → rejected arrivals
	FirstRejection     float64        `json:"first_rejection" yaml:"first_rejection"`           // clock of the earliest rejection; 0 if none
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		RejectionsByStage:  make(map[string]int),
		RejectionsByReason: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalRecords = len(st.Admissions)
	for _, a := range st.Admissions {
		if a.Admitted {
			summary.AdmittedCount++
			continue
		}
		if summary.RejectedCount == 0 || a.Clock < summary.FirstRejection {
			summary.FirstRejection = a.Clock
		}
		summary.RejectedCount++
		summary.RejectionsByStage[a.Stage]++
		summary.RejectionsByReason[a.Reason]++
	}

	return summary
}
