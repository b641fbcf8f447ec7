package trace

import "testing"

func TestSummarize_NilTrace_ZeroValues(t *testing.T) {
	summary := Summarize(nil)
	if summary.TotalRecords != 0 || summary.RejectedCount != 0 {
		t.Errorf("expected zero summary, got %+v", summary)
	}
	if summary.RejectionsByStage == nil || summary.RejectionsByReason == nil {
		t.Error("expected non-nil maps")
	}
}

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelAdmissions})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	if summary.TotalRecords != 0 {
		t.Errorf("expected 0 records, got %d", summary.TotalRecords)
	}
	if summary.AdmittedCount != 0 || summary.RejectedCount != 0 {
		t.Error("expected 0 admitted and rejected")
	}
	if len(summary.RejectionsByStage) != 0 {
		t.Error("expected empty stage distribution")
	}
	if summary.FirstRejection != 0 {
		t.Errorf("expected FirstRejection 0, got %f", summary.FirstRejection)
	}
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with mixed admissions and rejections
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelAdmissions})
	st.RecordAdmission(AdmissionRecord{RequestIndex: 0, Clock: 1, Admitted: true})
	st.RecordAdmission(AdmissionRecord{RequestIndex: 1, Clock: 2, Stage: "s0", Reason: "buffer_full"})
	st.RecordAdmission(AdmissionRecord{RequestIndex: 2, Clock: 3, Admitted: true})
	st.RecordAdmission(AdmissionRecord{RequestIndex: 3, Clock: 4, Stage: "s0", Reason: "stalled"})
	st.RecordAdmission(AdmissionRecord{RequestIndex: 4, Clock: 5, Stage: "s1", Reason: "buffer_full"})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	if summary.TotalRecords != 5 {
		t.Errorf("expected 5 records, got %d", summary.TotalRecords)
	}
	if summary.AdmittedCount != 2 {
		t.Errorf("expected 2 admitted, got %d", summary.AdmittedCount)
	}
	if summary.RejectedCount != 3 {
		t.Errorf("expected 3 rejected, got %d", summary.RejectedCount)
	}
	if summary.RejectionsByStage["s0"] != 2 || summary.RejectionsByStage["s1"] != 1 {
		t.Errorf("unexpected stage distribution %v", summary.RejectionsByStage)
	}
	if summary.RejectionsByReason["buffer_full"] != 2 || summary.RejectionsByReason["stalled"] != 1 {
		t.Errorf("unexpected reason distribution %v", summary.RejectionsByReason)
	}
	if summary.FirstRejection != 2 {
		t.Errorf("expected first rejection at 2, got %f", summary.FirstRejection)
	}
}
