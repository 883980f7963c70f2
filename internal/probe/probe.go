package probe

// Status is the severity of a probe outcome. The numeric value is the process
// exit code the monitoring agent expects.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
	StatusUnknown
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode returns the exit status for s. Out-of-range values map to UNKNOWN.
func (s Status) ExitCode() int {
	if s < StatusOK || s > StatusUnknown {
		return int(StatusUnknown)
	}
	return int(s)
}

// Metric is a single performance value attached to a result.
type Metric struct {
	Name  string
	Value float64
}

// Result is the outcome of one probe run.
type Result struct {
	Status     Status
	Service    string
	Message    string
	Metrics    []Metric
	LongOutput []string
}
