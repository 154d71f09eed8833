package cdaengine

import (
	"sync"
	"time"
)

// Statistics summarizes the work a validation pass performed.
type Statistics struct {
	// ElementsValidated is the number of elements the validator visited.
	ElementsValidated int `json:"elementsValidated"`

	// RulesChecked is the number of rule evaluations performed.
	RulesChecked int `json:"rulesChecked"`
}

// ValidationResult contains the outcome of validating a CDA document tree.
// Use Release() to return it to the pool when done for better performance.
type ValidationResult struct {
	// Valid is true if no error or fatal issues were found
	// (warnings are allowed).
	Valid bool `json:"valid"`

	// Errors contains the error and fatal issues found.
	Errors []Issue `json:"errors,omitempty"`

	// Warnings contains the warning issues found.
	Warnings []Issue `json:"warnings,omitempty"`

	// Statistics summarizes the validation pass.
	Statistics Statistics `json:"statistics"`

	// Duration is the wall-clock time the validation took.
	Duration time.Duration `json:"duration"`

	// JobID is set when using batch validation to correlate results.
	JobID string `json:"jobId,omitempty"`

	// mu protects concurrent access to the issue slices
	mu sync.Mutex
}

// resultPool holds reusable ValidationResult instances.
var resultPool = sync.Pool{
	New: func() any {
		return &ValidationResult{
			Errors:   make([]Issue, 0, 8),
			Warnings: make([]Issue, 0, 8),
		}
	},
}

// AcquireResult gets a ValidationResult from the pool.
// The result starts as valid with no issues.
func AcquireResult() *ValidationResult {
	r := resultPool.Get().(*ValidationResult)
	r.Reset()
	return r
}

// Release returns the ValidationResult to the pool.
// After calling Release, the result should not be used.
func (r *ValidationResult) Release() {
	if r == nil {
		return
	}
	// Don't return results with oversized issue slices
	if cap(r.Errors) <= 1024 && cap(r.Warnings) <= 1024 {
		resultPool.Put(r)
	}
}

// Reset clears the result for reuse.
func (r *ValidationResult) Reset() {
	r.Valid = true
	r.Errors = r.Errors[:0]
	r.Warnings = r.Warnings[:0]
	r.Statistics = Statistics{}
	r.Duration = 0
	r.JobID = ""
}

// AddIssue adds a validation issue to the result.
// This method is thread-safe.
func (r *ValidationResult) AddIssue(issue Issue) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if issue.IsError() {
		r.Errors = append(r.Errors, issue)
		r.Valid = false
	} else {
		r.Warnings = append(r.Warnings, issue)
	}
}

// AddError is a convenience method to add an error issue.
func (r *ValidationResult) AddError(code, message, xpath string) {
	r.AddIssue(Issue{
		Severity: SeverityError,
		Code:     code,
		Message:  message,
		XPath:    xpath,
	})
}

// AddWarning is a convenience method to add a warning issue.
func (r *ValidationResult) AddWarning(code, message, xpath string) {
	r.AddIssue(Issue{
		Severity: SeverityWarning,
		Code:     code,
		Message:  message,
		XPath:    xpath,
	})
}

// HasErrors returns true if there are any error or fatal issues.
func (r *ValidationResult) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any warning issues.
func (r *ValidationResult) HasWarnings() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Warnings) > 0
}

// ErrorCount returns the number of error and fatal issues.
func (r *ValidationResult) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Errors)
}

// WarningCount returns the number of warning issues.
func (r *ValidationResult) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Warnings)
}

// Issues returns all errors followed by all warnings.
func (r *ValidationResult) Issues() []Issue {
	r.mu.Lock()
	defer r.mu.Unlock()

	issues := make([]Issue, 0, len(r.Errors)+len(r.Warnings))
	issues = append(issues, r.Errors...)
	issues = append(issues, r.Warnings...)
	return issues
}

// Merge combines another result into this one. Statistics are summed and the
// duration is taken as the maximum of the two.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}

	other.mu.Lock()
	errors := make([]Issue, len(other.Errors))
	copy(errors, other.Errors)
	warnings := make([]Issue, len(other.Warnings))
	copy(warnings, other.Warnings)
	stats := other.Statistics
	duration := other.Duration
	other.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.Errors = append(r.Errors, errors...)
	r.Warnings = append(r.Warnings, warnings...)
	if len(r.Errors) > 0 {
		r.Valid = false
	}
	r.Statistics.ElementsValidated += stats.ElementsValidated
	r.Statistics.RulesChecked += stats.RulesChecked
	if duration > r.Duration {
		r.Duration = duration
	}
}

// Clone creates a copy of the result (not pooled).
func (r *ValidationResult) Clone() *ValidationResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := &ValidationResult{
		Valid:      r.Valid,
		Errors:     make([]Issue, len(r.Errors)),
		Warnings:   make([]Issue, len(r.Warnings)),
		Statistics: r.Statistics,
		Duration:   r.Duration,
		JobID:      r.JobID,
	}
	copy(clone.Errors, r.Errors)
	copy(clone.Warnings, r.Warnings)
	return clone
}

// NewResult creates a new (non-pooled) result.
// Prefer AcquireResult() for better performance.
func NewResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   make([]Issue, 0, 4),
		Warnings: make([]Issue, 0, 4),
	}
}
