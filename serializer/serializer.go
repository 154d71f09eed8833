// Package serializer emits document trees as escaped XML text, re-declaring
// namespaces so the output round-trips through the parser.
package serializer

import (
	"sort"
	"strings"
	"unicode/utf8"

	cdaengine "github.com/gocda/engine"
	"github.com/gocda/engine/document"
	"github.com/gocda/engine/pool"
)

// Options controls output formatting.
type Options struct {
	// Pretty inserts newlines and per-depth indentation.
	Pretty bool

	// Indent is the per-depth indentation string, used only when Pretty
	// is set. Defaults to two spaces.
	Indent string
}

// DefaultOptions returns pretty-printing with two-space indentation.
func DefaultOptions() Options {
	return Options{Pretty: true, Indent: "  "}
}

// ToString serializes the document. The XML declaration is always emitted
// first. Attributes are written in sorted-by-name order for deterministic
// output regardless of parse order.
func ToString(doc *document.Document, opts Options) string {
	if opts.Indent == "" {
		opts.Indent = "  "
	}

	w := newWriter(opts)

	version := doc.Version
	if version == "" {
		version = "1.0"
	}
	encoding := doc.Encoding
	if encoding == "" {
		encoding = "UTF-8"
	}
	w.sb.WriteString(`<?xml version="` + version + `" encoding="` + encoding + `"?>`)

	if doc.Root != nil {
		w.element(doc.Root, 0, true)
	}
	if opts.Pretty {
		w.sb.WriteByte('\n')
	}
	return w.sb.String()
}

// ToBytes serializes the document to UTF-8 bytes. It fails with a
// *cdaengine.SerializeError only when the produced string is not valid
// UTF-8, which cannot happen for trees built by the parser but is surfaced
// as a distinct error kind regardless.
func ToBytes(doc *document.Document, opts Options) ([]byte, error) {
	s := ToString(doc, opts)
	if !utf8.ValidString(s) {
		return nil, cdaengine.NewSerializeError("serialized document is not valid UTF-8")
	}
	return []byte(s), nil
}

// ElementToString serializes a bare element subtree without a declaration,
// in compact form. Useful for embedding fragments in reports and logs.
func ElementToString(el *document.Element) string {
	w := newWriter(Options{Pretty: false})
	w.element(el, 0, false)
	return w.sb.String()
}

type writer struct {
	sb   strings.Builder
	opts Options

	// declared maps prefix -> URI for namespaces already in scope.
	// The empty prefix key tracks the default namespace.
	declared map[string]string
}

func newWriter(opts Options) *writer {
	return &writer{
		opts:     opts,
		declared: map[string]string{"xml": document.NamespaceXML},
	}
}

// scopeChange records a namespace declaration to undo when the declaring
// element closes.
type scopeChange struct {
	prefix   string
	previous string
	existed  bool
}

func (w *writer) element(el *document.Element, depth int, isRoot bool) {
	w.newline(depth)
	w.sb.WriteByte('<')
	w.writeName(el)

	restore := w.namespaceDecls(el, isRoot)
	w.attributes(el)

	switch {
	case len(el.Children) == 0 && el.Text == "":
		w.sb.WriteString("/>")

	case len(el.Children) == 0:
		w.sb.WriteByte('>')
		w.escapeText(el.Text)
		w.sb.WriteString("</")
		w.writeName(el)
		w.sb.WriteByte('>')

	default:
		w.sb.WriteByte('>')
		if el.Text != "" {
			w.newline(depth + 1)
			w.escapeText(el.Text)
		}
		for _, child := range el.Children {
			w.element(child, depth+1, false)
		}
		w.newline(depth)
		w.sb.WriteString("</")
		w.writeName(el)
		w.sb.WriteByte('>')
	}

	for _, change := range restore {
		if change.existed {
			w.declared[change.prefix] = change.previous
		} else {
			delete(w.declared, change.prefix)
		}
	}
}

func (w *writer) writeName(el *document.Element) {
	if el.Prefix != "" {
		w.sb.WriteString(el.Prefix)
		w.sb.WriteByte(':')
	}
	w.sb.WriteString(el.Name)
}

// namespaceDecls emits xmlns declarations at the document root, or wherever
// an element's prefix or default namespace is not already in scope. It
// returns the scope changes to undo when the element closes.
func (w *writer) namespaceDecls(el *document.Element, isRoot bool) []scopeChange {
	if el.Namespace == "" {
		return nil
	}

	key := el.Prefix
	previous, existed := w.declared[key]
	if !isRoot && existed && previous == el.Namespace {
		return nil
	}

	if el.Prefix == "" {
		w.sb.WriteString(` xmlns="`)
	} else {
		w.sb.WriteString(` xmlns:` + el.Prefix + `="`)
	}
	w.escapeAttr(el.Namespace)
	w.sb.WriteByte('"')

	w.declared[key] = el.Namespace
	return []scopeChange{{prefix: key, previous: previous, existed: existed}}
}

func (w *writer) attributes(el *document.Element) {
	if len(el.Attributes) == 0 {
		return
	}

	names := pool.AcquireStringSlice()
	defer pool.ReleaseStringSlice(names)
	for name := range el.Attributes {
		*names = append(*names, name)
	}
	sort.Strings(*names)

	for _, name := range *names {
		w.sb.WriteByte(' ')
		w.sb.WriteString(name)
		w.sb.WriteString(`="`)
		w.escapeAttr(el.Attributes[name])
		w.sb.WriteByte('"')
	}
}

// newline starts a new indented line in pretty mode; a no-op in compact mode.
func (w *writer) newline(depth int) {
	if !w.opts.Pretty {
		return
	}
	w.sb.WriteByte('\n')
	for i := 0; i < depth; i++ {
		w.sb.WriteString(w.opts.Indent)
	}
}

// escapeText escapes character data: & < >.
func (w *writer) escapeText(s string) {
	for _, r := range s {
		switch r {
		case '&':
			w.sb.WriteString("&amp;")
		case '<':
			w.sb.WriteString("&lt;")
		case '>':
			w.sb.WriteString("&gt;")
		default:
			w.sb.WriteRune(r)
		}
	}
}

// escapeAttr escapes attribute values: & < > " '.
func (w *writer) escapeAttr(s string) {
	for _, r := range s {
		switch r {
		case '&':
			w.sb.WriteString("&amp;")
		case '<':
			w.sb.WriteString("&lt;")
		case '>':
			w.sb.WriteString("&gt;")
		case '"':
			w.sb.WriteString("&quot;")
		case '\'':
			w.sb.WriteString("&apos;")
		default:
			w.sb.WriteRune(r)
		}
	}
}
