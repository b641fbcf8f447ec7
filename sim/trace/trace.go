package trace

// TraceLevel controls the verbosity of admission tracing.
type TraceLevel string

const (
	// TraceLevelNone records nothing.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelRejections records only dropped arrivals.
	TraceLevelRejections TraceLevel = "rejections"
	// TraceLevelAdmissions records every arrival, admitted or not.
	TraceLevelAdmissions TraceLevel = "admissions"
)

// validTraceLevels lists the accepted --trace values.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:       true,
	TraceLevelRejections: true,
	TraceLevelAdmissions: true,
	"":                   true, // empty defaults to none
}

// IsValidTraceLevel reports whether level names a known trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig selects which arrivals a SimulationTrace keeps.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects admission records during a pipeline run.
type SimulationTrace struct {
	Config     TraceConfig
	Admissions []AdmissionRecord
}

// NewSimulationTrace returns an empty trace using config.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:     config,
		Admissions: make([]AdmissionRecord, 0),
	}
}

// RecordAdmission appends an admission record if the configured level keeps it.
// Safe to call on a nil trace.
func (st *SimulationTrace) RecordAdmission(record AdmissionRecord) {
	if st == nil {
		return
	}
	switch st.Config.Level {
	case TraceLevelAdmissions:
	case TraceLevelRejections:
		if record.Admitted {
			return
		}
	default:
		return
	}
	st.Admissions = append(st.Admissions, record)
}

// Clear drops every record, keeping the configuration.
func (st *SimulationTrace) Clear() {
	if st == nil {
		return
	}
	st.Admissions = st.Admissions[:0]
}
