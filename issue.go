package cdaengine

// Issue represents a single conformance finding produced by the validator.
// Issues are data, never errors: a document can be invalid without any error
// being returned to the caller.
type Issue struct {
	// Code identifies the rule that fired, e.g. "CDA-MISSING-REQUIRED".
	Code string `json:"code"`

	// Message contains human-readable details about the finding.
	Message string `json:"message"`

	// XPath locates the offending element.
	XPath string `json:"xpath,omitempty"`

	// Severity of the finding.
	Severity Severity `json:"severity"`

	// Context carries rule-specific key/value details.
	Context map[string]string `json:"context,omitempty"`

	// Phase is the validation phase that generated this issue.
	Phase string `json:"phase,omitempty"`
}

// IsError returns true if this is an error or fatal issue.
func (i Issue) IsError() bool {
	return i.Severity == SeverityError || i.Severity == SeverityFatal
}

// IsWarning returns true if this is a warning.
func (i Issue) IsWarning() bool {
	return i.Severity == SeverityWarning
}

// String returns a human-readable representation of the issue.
func (i Issue) String() string {
	s := string(i.Severity) + " [" + i.Code + "]: " + i.Message
	if i.XPath != "" {
		s += " at " + i.XPath
	}
	return s
}

// IssueBuilder provides a fluent API for building issues.
type IssueBuilder struct {
	issue Issue
}

// NewIssue creates a new IssueBuilder.
func NewIssue(severity Severity, code string) *IssueBuilder {
	return &IssueBuilder{
		issue: Issue{
			Severity: severity,
			Code:     code,
		},
	}
}

// ErrorIssue creates an error issue builder.
func ErrorIssue(code string) *IssueBuilder {
	return NewIssue(SeverityError, code)
}

// WarningIssue creates a warning issue builder.
func WarningIssue(code string) *IssueBuilder {
	return NewIssue(SeverityWarning, code)
}

// Message sets the message.
func (b *IssueBuilder) Message(msg string) *IssueBuilder {
	b.issue.Message = msg
	return b
}

// At sets the XPath location.
func (b *IssueBuilder) At(xpath string) *IssueBuilder {
	b.issue.XPath = xpath
	return b
}

// Context adds a context key/value pair.
func (b *IssueBuilder) Context(key, value string) *IssueBuilder {
	if b.issue.Context == nil {
		b.issue.Context = make(map[string]string, 2)
	}
	b.issue.Context[key] = value
	return b
}

// Phase sets the validation phase.
func (b *IssueBuilder) Phase(phase string) *IssueBuilder {
	b.issue.Phase = phase
	return b
}

// Build returns the constructed issue.
func (b *IssueBuilder) Build() Issue {
	return b.issue
}
