// Package xpath compiles and evaluates a restricted path-expression grammar
// against a document tree.
//
// Supported forms:
//
//	/a/b/c                absolute path; the first step matches the context
//	                      element itself, subsequent steps match children
//	a/b                   relative path; the first step matches children
//	//name                descendant search, inclusive of the context element
//	name[@attr='value']   single-attribute exact-match predicate on any step
//
// A malformed expression is an error; a well-formed expression with zero
// structural matches returns an empty result. The two are deliberately
// distinct.
package xpath

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/gocda/engine/document"
)

// ErrInvalidExpression reports that an expression does not conform to the
// restricted path grammar.
var ErrInvalidExpression = errors.New("invalid path expression")

func exprErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidExpression}, args...)...)
}

// Step is a single compiled path step.
type Step struct {
	// Name is the local element name to match.
	Name string

	// AttrName and AttrValue hold the predicate, when HasPredicate is set.
	AttrName     string
	AttrValue    string
	HasPredicate bool
}

// matches reports whether el satisfies the step.
func (s Step) matches(el *document.Element) bool {
	if el.Name != s.Name {
		return false
	}
	if !s.HasPredicate {
		return true
	}
	v, ok := el.Attribute(s.AttrName)
	return ok && v == s.AttrValue
}

// Path is a compiled expression, reusable across evaluations.
type Path struct {
	steps      []Step
	absolute   bool
	descendant bool
	expr       string
}

// String returns the source expression.
func (p *Path) String() string {
	return p.expr
}

// Compile parses an expression into a reusable Path.
func Compile(expr string) (*Path, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, exprErrorf("expression is empty")
	}

	p := &Path{expr: expr}
	rest := expr
	switch {
	case strings.HasPrefix(rest, "//"):
		p.descendant = true
		rest = rest[2:]
	case strings.HasPrefix(rest, "/"):
		p.absolute = true
		rest = rest[1:]
	}
	if rest == "" {
		return nil, exprErrorf("expression has no steps: %q", expr)
	}

	for _, raw := range splitSteps(rest) {
		step, err := parseStep(raw)
		if err != nil {
			return nil, err
		}
		p.steps = append(p.steps, step)
	}
	return p, nil
}

// splitSteps splits on '/' while respecting bracket nesting, so a '/' inside
// a predicate is not a step separator.
func splitSteps(expr string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '/':
			if depth == 0 {
				parts = append(parts, expr[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, expr[start:])
	return parts
}

// parseStep parses "name" or "name[@attr='value']".
func parseStep(raw string) (Step, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Step{}, exprErrorf("step is empty")
	}

	open := strings.IndexByte(raw, '[')
	if open < 0 {
		if strings.ContainsAny(raw, "]@=") {
			return Step{}, exprErrorf("malformed step %q", raw)
		}
		return Step{Name: raw}, nil
	}

	if !strings.HasSuffix(raw, "]") {
		return Step{}, exprErrorf("unterminated predicate in step %q", raw)
	}
	name := raw[:open]
	if name == "" {
		return Step{}, exprErrorf("step %q has a predicate but no name", raw)
	}

	pred := raw[open+1 : len(raw)-1]
	if !strings.HasPrefix(pred, "@") {
		return Step{}, exprErrorf("unsupported predicate %q (only [@attr='value'] is supported)", pred)
	}
	eq := strings.IndexByte(pred, '=')
	if eq < 0 {
		return Step{}, exprErrorf("predicate %q is missing '='", pred)
	}

	attr := strings.TrimSpace(pred[1:eq])
	if attr == "" {
		return Step{}, exprErrorf("predicate %q has no attribute name", pred)
	}
	value := strings.TrimSpace(pred[eq+1:])
	value = stripQuotes(value)

	return Step{
		Name:         name,
		AttrName:     attr,
		AttrValue:    value,
		HasPredicate: true,
	}, nil
}

// stripQuotes removes one level of matching single or double quotes.
func stripQuotes(v string) string {
	if len(v) >= 2 {
		if (v[0] == '\'' && v[len(v)-1] == '\'') || (v[0] == '"' && v[len(v)-1] == '"') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// Evaluate runs the compiled path against a context element and returns all
// matches in document order. A zero-match result is empty, not an error.
func (p *Path) Evaluate(ctx *document.Element) []*document.Element {
	if ctx == nil {
		return nil
	}

	current := p.first(ctx)
	for _, step := range p.steps[1:] {
		var next []*document.Element
		for _, el := range current {
			for _, child := range el.Children {
				if step.matches(child) {
					next = append(next, child)
				}
			}
		}
		current = next
	}
	return current
}

// first evaluates the initial step, whose axis depends on the path form.
func (p *Path) first(ctx *document.Element) []*document.Element {
	step := p.steps[0]
	switch {
	case p.descendant:
		return descendantMatches(ctx, step)
	case p.absolute:
		if step.matches(ctx) {
			return []*document.Element{ctx}
		}
		return nil
	default:
		var matches []*document.Element
		for _, child := range ctx.Children {
			if step.matches(child) {
				matches = append(matches, child)
			}
		}
		return matches
	}
}

// descendantMatches collects every matching element in the subtree rooted at
// ctx, inclusive of ctx, depth-first in document order.
func descendantMatches(ctx *document.Element, step Step) []*document.Element {
	var matches []*document.Element
	var walk func(*document.Element)
	walk = func(el *document.Element) {
		if step.matches(el) {
			matches = append(matches, el)
		}
		for _, child := range el.Children {
			walk(child)
		}
	}
	walk(ctx)
	return matches
}

// Query compiles and evaluates expr against an element context.
func Query(ctx *document.Element, expr string) ([]*document.Element, error) {
	p, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return p.Evaluate(ctx), nil
}

// QueryDocument evaluates expr against a document's root.
func QueryDocument(doc *document.Document, expr string) ([]*document.Element, error) {
	p, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Root == nil {
		return nil, nil
	}
	return p.Evaluate(doc.Root), nil
}

// First returns the first match of expr against ctx, or nil.
func First(ctx *document.Element, expr string) (*document.Element, error) {
	matches, err := Query(ctx, expr)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}
