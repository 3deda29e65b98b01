package tld

// Status is a rule's registration status, as assigned by the rule source
// files (§3 Rule, spec status closed set).
type Status uint8

const (
	StatusValid Status = iota
	StatusProposed
	StatusDeprecated
	StatusUnused
	StatusReserved
	StatusInfrastructure
	StatusExample
	StatusException
	StatusUndefined
)

var statusNames = [...]string{
	StatusValid:          "valid",
	StatusProposed:       "proposed",
	StatusDeprecated:     "deprecated",
	StatusUnused:         "unused",
	StatusReserved:       "reserved",
	StatusInfrastructure: "infrastructure",
	StatusExample:        "example",
	StatusException:      "exception",
	StatusUndefined:      "undefined",
}

// StatusToString returns the canonical rule-source spelling of status, or
// "undefined" for any out-of-range value.
func StatusToString(status Status) string {
	if int(status) < 0 || int(status) >= len(statusNames) || statusNames[status] == "" {
		return statusNames[StatusUndefined]
	}
	return statusNames[status]
}

// ParseStatus parses the closed set of status literals accepted in a rule
// source file's `status = ...` assignment (§4.C): every status name except
// "undefined", including "exception". apply_to is handled by the caller.
func ParseStatus(s string) (Status, bool) {
	for st, name := range statusNames {
		if name == s && Status(st) != StatusUndefined {
			return Status(st), true
		}
	}
	return StatusUndefined, false
}
