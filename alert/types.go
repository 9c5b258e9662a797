package alert

// Severity is a normalized Alerta severity level.
type Severity int

const (
	Critical Severity = iota
	Major
	Minor
	Warning
	Informational
	Indeterminate
	Normal
	OK
	maxSeverity
)

const severityStrings = "criticalmajorminorwarninginformationalindeterminatenormalok"

var severityOffsets = []int{0, 8, 13, 18, 25, 38, 51, 57, 59}

func (s Severity) String() string {
	if s >= 0 && s < maxSeverity {
		return severityStrings[severityOffsets[s]:severityOffsets[s+1]]
	}
	return "unknown"
}
