// Package validator walks a parsed CDA document tree applying structural and
// conformance rules, producing categorized issues with statistics. Validation
// failures are data: Validate never returns an error for an invalid document.
package validator

import (
	"time"

	cdaengine "github.com/gocda/engine"
	"github.com/gocda/engine/document"
)

// Options holds validator configuration.
type Options struct {
	// StopOnFirstError short-circuits validation on the first error.
	// Issues collected up to that point are still returned.
	StopOnFirstError bool

	// MaxErrors caps the error list length. 0 means unlimited.
	MaxErrors int

	// ValidateCDASchema enables the structural schema phases.
	ValidateCDASchema bool

	// CheckConformanceRules enables the conformance rule phases.
	// Disabling both toggles yields zero rules checked.
	CheckConformanceRules bool
}

// DefaultOptions returns the default validator configuration.
func DefaultOptions() Options {
	return Options{
		ValidateCDASchema:     true,
		CheckConformanceRules: true,
	}
}

// Option configures a Validator.
type Option func(*Options)

// WithStopOnFirstError makes validation short-circuit on the first error.
func WithStopOnFirstError(enable bool) Option {
	return func(o *Options) { o.StopOnFirstError = enable }
}

// WithMaxErrors caps the number of collected errors. Use 0 for unlimited.
func WithMaxErrors(max int) Option {
	return func(o *Options) { o.MaxErrors = max }
}

// WithCDASchema enables or disables the structural schema phases.
func WithCDASchema(enable bool) Option {
	return func(o *Options) { o.ValidateCDASchema = enable }
}

// WithConformanceRules enables or disables the conformance rule phases.
func WithConformanceRules(enable bool) Option {
	return func(o *Options) { o.CheckConformanceRules = enable }
}

// Validator applies the CDA rule set to document trees. A Validator is
// immutable after construction and safe for concurrent use; each Validate
// call runs on its own state.
type Validator struct {
	opts    Options
	metrics *cdaengine.Metrics
	phases  []phase
}

// New creates a validator.
func New(opts ...Option) *Validator {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	v := &Validator{opts: options}
	if options.ValidateCDASchema {
		v.phases = append(v.phases,
			phase{name: "structure", run: (*run).structurePhase},
		)
	}
	if options.CheckConformanceRules {
		v.phases = append(v.phases,
			phase{name: "identifiers", run: (*run).identifiersPhase},
			phase{name: "codes", run: (*run).codesPhase},
			phase{name: "timestamps", run: (*run).timestampsPhase},
			phase{name: "narrative", run: (*run).narrativePhase},
			phase{name: "cardinality", run: (*run).cardinalityPhase},
		)
	}
	return v
}

// WithMetrics attaches a metrics collector recording per-phase timings.
func (v *Validator) WithMetrics(m *cdaengine.Metrics) *Validator {
	v.metrics = m
	return v
}

// Options returns the validator's configuration.
func (v *Validator) Options() Options {
	return v.opts
}

// phase is one named group of rules executed over the whole tree.
type phase struct {
	name string
	run  func(*run, *document.Element)
}

// Validate applies every enabled phase to the tree rooted at el.
func (v *Validator) Validate(el *document.Element) *cdaengine.ValidationResult {
	start := time.Now()
	result := cdaengine.AcquireResult()

	if el == nil {
		result.AddError("DOC-NO-ROOT", "document has no root element", "/")
		result.Duration = time.Since(start)
		return result
	}

	r := &run{
		opts:   v.opts,
		result: result,
	}

	for _, p := range v.phases {
		if r.stopped {
			break
		}
		phaseStart := time.Now()
		before := result.ErrorCount() + result.WarningCount()

		r.currentPhase = p.name
		p.run(r, el)

		if v.metrics != nil {
			found := result.ErrorCount() + result.WarningCount() - before
			v.metrics.RecordPhase(p.name, time.Since(phaseStart), found)
		}
	}

	result.Statistics.ElementsValidated = el.Count()
	result.Statistics.RulesChecked = r.rulesChecked
	result.Duration = time.Since(start)

	if v.metrics != nil {
		v.metrics.RecordValidation(result.Duration, result.Valid)
		for _, issue := range result.Issues() {
			v.metrics.RecordIssue(issue.Severity)
		}
	}
	return result
}

// ValidateDocument validates a document's root element.
func (v *Validator) ValidateDocument(doc *document.Document) *cdaengine.ValidationResult {
	if doc == nil {
		return v.Validate(nil)
	}
	return v.Validate(doc.Root)
}

// run is the single-use state for one validation pass.
type run struct {
	opts         Options
	result       *cdaengine.ValidationResult
	rulesChecked int
	currentPhase string
	stopped      bool
}

// checkRule counts a rule evaluation. Returns false once collection stopped.
func (r *run) checkRule() bool {
	if r.stopped {
		return false
	}
	r.rulesChecked++
	return true
}

func (r *run) addError(code, message, xpath string) {
	if r.stopped {
		return
	}
	if r.opts.MaxErrors > 0 && r.result.ErrorCount() >= r.opts.MaxErrors {
		r.stopped = true
		return
	}
	r.result.AddIssue(cdaengine.Issue{
		Severity: cdaengine.SeverityError,
		Code:     code,
		Message:  message,
		XPath:    xpath,
		Phase:    r.currentPhase,
	})
	if r.opts.StopOnFirstError {
		r.stopped = true
	}
}

func (r *run) addWarning(code, message, xpath string) {
	if r.stopped {
		return
	}
	r.result.AddIssue(cdaengine.Issue{
		Severity: cdaengine.SeverityWarning,
		Code:     code,
		Message:  message,
		XPath:    xpath,
		Phase:    r.currentPhase,
	})
}

// walk visits every element depth-first in document order, passing the
// element's path expression. Stops early once collection stopped.
func (r *run) walk(root *document.Element, visit func(el *document.Element, xpath string)) {
	var descend func(el *document.Element, xpath string)
	descend = func(el *document.Element, xpath string) {
		if r.stopped {
			return
		}
		visit(el, xpath)

		// Precompute sibling name counts so repeated names get indexes.
		counts := make(map[string]int, len(el.Children))
		for _, child := range el.Children {
			counts[child.Name]++
		}
		seen := make(map[string]int, len(counts))
		for _, child := range el.Children {
			seen[child.Name]++
			segment := child.Name
			if counts[child.Name] > 1 {
				segment = segment + "[" + itoa(seen[child.Name]) + "]"
			}
			descend(child, xpath+"/"+segment)
		}
	}
	descend(root, "/"+root.Name)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
