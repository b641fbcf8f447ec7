package trace

import (
	"testing"
)

func TestSimulationTrace_AdmissionsLevel_RecordsEverything(t *testing.T) {
	// GIVEN a trace configured for admissions
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelAdmissions})

	// WHEN an admitted and a rejected arrival are recorded
	st.RecordAdmission(AdmissionRecord{RequestIndex: 0, Clock: 1.5, Admitted: true})
	st.RecordAdmission(AdmissionRecord{RequestIndex: 1, Clock: 2.5, Admitted: false, Stage: "s0", Reason: "buffer_full"})

	// THEN both are kept in order
	if len(st.Admissions) != 2 {
		t.Fatalf("expected 2 admissions, got %d", len(st.Admissions))
	}
	if st.Admissions[0].RequestIndex != 0 || st.Admissions[1].RequestIndex != 1 {
		t.Errorf("records out of order: %+v", st.Admissions)
	}
	if !st.Admissions[0].Admitted {
		t.Error("expected first record admitted=true")
	}
}

func TestSimulationTrace_RejectionsLevel_SkipsAdmitted(t *testing.T) {
	// GIVEN a trace configured for rejections only
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelRejections})

	// WHEN an admitted and a rejected arrival are recorded
	st.RecordAdmission(AdmissionRecord{RequestIndex: 0, Admitted: true})
	st.RecordAdmission(AdmissionRecord{RequestIndex: 1, Admitted: false, Stage: "s1", Reason: "stalled"})

	// THEN only the rejection is kept
	if len(st.Admissions) != 1 {
		t.Fatalf("expected 1 record, got %d", len(st.Admissions))
	}
	if st.Admissions[0].Stage != "s1" {
		t.Errorf("expected stage s1, got %s", st.Admissions[0].Stage)
	}
}

func TestSimulationTrace_NoneLevel_RecordsNothing(t *testing.T) {
	for _, level := range []TraceLevel{TraceLevelNone, ""} {
		st := NewSimulationTrace(TraceConfig{Level: level})
		st.RecordAdmission(AdmissionRecord{Admitted: false, Stage: "s0"})
		if len(st.Admissions) != 0 {
			t.Errorf("level %q: expected no records, got %d", level, len(st.Admissions))
		}
	}
}

func TestSimulationTrace_NilReceiver_IsNoop(t *testing.T) {
	var st *SimulationTrace
	st.RecordAdmission(AdmissionRecord{Admitted: true})
	st.Clear()
}

func TestSimulationTrace_Clear_KeepsConfig(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelAdmissions})
	st.RecordAdmission(AdmissionRecord{Admitted: true})

	st.Clear()

	if len(st.Admissions) != 0 {
		t.Errorf("expected empty trace after Clear, got %d", len(st.Admissions))
	}
	if st.Config.Level != TraceLevelAdmissions {
		t.Errorf("Clear changed level to %q", st.Config.Level)
	}
}

func TestIsValidTraceLevel(t *testing.T) {
	tests := []struct {
		level string
		want  bool
	}{
		{"", true},
		{"none", true},
		{"rejections", true},
		{"admissions", true},
		{"decisions", false},
		{"all", false},
	}
	for _, tc := range tests {
		if got := IsValidTraceLevel(tc.level); got != tc.want {
			t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tc.level, got, tc.want)
		}
	}
}
