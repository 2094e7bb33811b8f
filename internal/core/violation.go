package core

// Severity ranks how seriously a policy violation blocks the gate.
// Errors block the pass/fail decision, warnings and info do not.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Violation is a single detected policy issue, immutable once created.
// Violations are produced only by the rule engine; a file's policy score is a
// pure function of its violation set.
type Violation struct {
	FilePath    string   `json:"file_path"`
	Line        int      `json:"line"`
	Rule        string   `json:"rule"`
	Severity    Severity `json:"severity"`
	Message     string   `json:"message"`
	CodeSnippet string   `json:"code_snippet,omitempty"`
}

// CountBySeverity tallies errors and warnings in a violation list.
func CountBySeverity(violations []Violation) (errors, warnings int) {
	for _, v := range violations {
		switch v.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return errors, warnings
}
