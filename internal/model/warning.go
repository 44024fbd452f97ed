package model

// WarningKind is the severity of an advisory finding.
type WarningKind string

const (
	WarningInfo  WarningKind = "info"
	WarningWarn  WarningKind = "warning"
	WarningError WarningKind = "error"
)

// ValidationWarning is a non-fatal annotation attached to a result.
type ValidationWarning struct {
	Kind       WarningKind `json:"kind"`
	Field      string      `json:"field,omitempty"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// ValidationSummary is the flattened form returned by the validate endpoint.
type ValidationSummary struct {
	Valid       bool     `json:"valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// Summarize splits warnings by kind. Info messages that carry no
// suggestion of their own are reported as suggestions.
func Summarize(ws []ValidationWarning) ValidationSummary {
	summary := ValidationSummary{
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}
	for _, w := range ws {
		switch w.Kind {
		case WarningError:
			summary.Errors = append(summary.Errors, w.Message)
		case WarningWarn:
			summary.Warnings = append(summary.Warnings, w.Message)
		case WarningInfo:
			if w.Suggestion == "" {
				summary.Suggestions = appendUnique(summary.Suggestions, w.Message)
			}
		}
		if w.Suggestion != "" {
			summary.Suggestions = appendUnique(summary.Suggestions, w.Suggestion)
		}
	}
	summary.Valid = len(summary.Errors) == 0
	return summary
}

// HasErrors reports whether any warning is of kind error.
func HasErrors(ws []ValidationWarning) bool {
	for _, w := range ws {
		if w.Kind == WarningError {
			return true
		}
	}
	return false
}

// SuggestionsOf collects the distinct suggestion strings in order.
func SuggestionsOf(ws []ValidationWarning) []string {
	out := []string{}
	for _, w := range ws {
		if w.Suggestion != "" {
			out = appendUnique(out, w.Suggestion)
		}
	}
	return out
}

func appendUnique(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
