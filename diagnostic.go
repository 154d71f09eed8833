package cdaengine

// Severity grades a diagnostic or validation issue.
type Severity string

const (
	// SeverityFatal indicates the document could not be processed at all.
	// A fatal diagnostic always accompanies a parse failure.
	SeverityFatal Severity = "fatal"
	// SeverityError indicates the document is invalid.
	SeverityError Severity = "error"
	// SeverityWarning indicates a potential problem that should be reviewed.
	SeverityWarning Severity = "warning"
)

// Diagnostic is a single issue reported by the parser. Diagnostics are the
// non-throwing channel: warnings are collected even when the parse succeeds,
// and only a fatal diagnostic correlates with a returned ParseError.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity Severity `json:"severity"`

	// Message is the human-readable description.
	Message string `json:"message"`

	// Line is the 1-based source line, 0 when unknown.
	Line int `json:"line,omitempty"`

	// Column is the 1-based source column, 0 when unknown.
	Column int `json:"column,omitempty"`
}

// IsFatal returns true for fatal diagnostics.
func (d Diagnostic) IsFatal() bool {
	return d.Severity == SeverityFatal
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	return string(d.Severity) + ": " + d.Message
}
