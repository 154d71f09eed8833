// Package parser converts CDA document bytes into a document tree via a
// single streaming scan, enforcing depth and size limits and collecting
// diagnostics instead of always aborting.
package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	cdaengine "github.com/gocda/engine"
	"github.com/gocda/engine/document"
	"github.com/gocda/engine/intern"
)

// Parser turns byte buffers into document trees. A Parser value only holds
// configuration and is safe to share; every Parse call runs on its own
// isolated scan state.
type Parser struct {
	cfg      Config
	interner *intern.Interner
}

// New creates a parser with the given configuration.
func New(cfg Config) *Parser {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = cdaengine.DefaultMaxDepth
	}
	if cfg.MaxDocumentSize <= 0 {
		cfg.MaxDocumentSize = cdaengine.DefaultMaxDocumentSize
	}
	return &Parser{cfg: cfg}
}

// WithInterner attaches a dynamic string interner used for names that are not
// covered by the static CDA element-name table.
func (p *Parser) WithInterner(i *intern.Interner) *Parser {
	p.interner = i
	return p
}

// Parse parses data into a document. It fails with a *cdaengine.ParseError
// when the input is empty, exceeds the configured size, contains malformed
// markup, or nests deeper than the configured maximum.
func (p *Parser) Parse(data []byte) (*document.Document, error) {
	doc, _, err := p.ParseWithDiagnostics(data)
	return doc, err
}

// ParseWithDiagnostics parses data and additionally returns every diagnostic
// collected during the scan. Warnings are collected even when the parse
// eventually succeeds; a fatal diagnostic always accompanies a non-nil error.
func (p *Parser) ParseWithDiagnostics(data []byte) (*document.Document, []cdaengine.Diagnostic, error) {
	if len(data) == 0 {
		return nil, nil, cdaengine.NewParseError(cdaengine.ParseErrorEmptyInput, "document is empty")
	}
	if int64(len(data)) > p.cfg.MaxDocumentSize {
		return nil, nil, cdaengine.NewParseError(cdaengine.ParseErrorTooLarge,
			fmt.Sprintf("document size %d exceeds maximum %d", len(data), p.cfg.MaxDocumentSize))
	}

	s := &scan{
		cfg:      p.cfg,
		interner: p.interner,
		data:     data,
		doc:      document.NewDocument(nil),
	}
	err := s.run()
	if err != nil {
		return nil, s.diagnostics, err
	}
	return s.doc, s.diagnostics, nil
}

// scan is the single-use state for one parse call. It is constructed, driven
// to completion, and discarded; it must never be shared across calls.
type scan struct {
	cfg      Config
	interner *intern.Interner

	data        []byte
	decoder     *xml.Decoder
	doc         *document.Document
	stack       []*document.Element
	pendingText strings.Builder
	depth       int

	// bindings is the prefix scope list. Declarations append; scope end
	// removes the oldest entry for each prefix the closing element
	// declared. Resolution scans newest-first.
	bindings []prefixBinding

	diagnostics []cdaengine.Diagnostic
}

type prefixBinding struct {
	prefix string
	uri    string
}

// frame tracks the prefixes declared by each open element, parallel to the
// element stack.
type frame struct {
	element  *document.Element
	declared []string
}

func (s *scan) run() error {
	s.decoder = xml.NewDecoder(bytes.NewReader(s.data))
	s.decoder.Strict = true

	var frames []frame

	for {
		tok, err := s.decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s.fatalScan(err)
		}

		switch t := tok.(type) {
		case xml.ProcInst:
			if t.Target == "xml" {
				s.readDeclaration(string(t.Inst))
			}

		case xml.StartElement:
			s.depth++
			if s.depth > s.cfg.MaxDepth {
				return s.fatal(cdaengine.ParseErrorDepthExceeded,
					fmt.Sprintf("nesting depth %d exceeds maximum %d", s.depth, s.cfg.MaxDepth))
			}

			declared := s.pushPrefixMappings(t.Attr)
			s.flushText()

			el := s.buildElement(t)
			frames = append(frames, frame{element: el, declared: declared})
			s.stack = append(s.stack, el)

		case xml.EndElement:
			if len(s.stack) == 0 {
				return s.fatal(cdaengine.ParseErrorMalformed,
					fmt.Sprintf("unexpected closing tag </%s>", rawName(t.Name)))
			}

			top := len(s.stack) - 1
			el := s.stack[top]
			if !s.matchesClose(el, t.Name) {
				return s.fatal(cdaengine.ParseErrorMalformed,
					fmt.Sprintf("closing tag </%s> does not match <%s>", rawName(t.Name), el.Name))
			}

			s.flushTextInto(el)
			if strings.TrimSpace(el.Text) == "" {
				el.Text = ""
			}

			s.popPrefixMappings(frames[top].declared)
			frames = frames[:top]
			s.stack = s.stack[:top]
			s.depth--

			if len(s.stack) == 0 {
				if s.doc.Root != nil {
					return s.fatal(cdaengine.ParseErrorMalformed, "multiple root elements")
				}
				s.doc.Root = el
			} else {
				parent := s.stack[len(s.stack)-1]
				parent.Children = append(parent.Children, el)
			}

		case xml.CharData:
			// CDATA sections arrive as plain character data and are
			// treated identically to normal text.
			s.pendingText.Write(t)

		case xml.Directive:
			// DOCTYPE and friends: external entities and DTDs are
			// never processed. Recorded, not fatal.
			s.warn("document type declaration ignored")

		case xml.Comment:
			// skipped
		}
	}

	if len(s.stack) > 0 {
		return s.fatal(cdaengine.ParseErrorMalformed,
			fmt.Sprintf("unexpected end of document: <%s> is not closed", s.stack[len(s.stack)-1].Name))
	}
	if s.doc.Root == nil {
		return s.fatal(cdaengine.ParseErrorMalformed, "document has no root element")
	}
	return nil
}

// buildElement resolves the raw start tag into an Element. RawToken leaves
// the prefix in Name.Space.
func (s *scan) buildElement(t xml.StartElement) *document.Element {
	prefix := t.Name.Space
	local := s.internName(t.Name.Local)

	uri, resolved := s.resolvePrefix(prefix)
	if !resolved && prefix != "" && s.cfg.ValidateNamespaces {
		s.warn(fmt.Sprintf("undeclared namespace prefix %q on element %q", prefix, local))
	}

	el := &document.Element{
		Name:      local,
		Namespace: uri,
		Prefix:    prefix,
	}

	for _, attr := range t.Attr {
		if isNamespaceDecl(attr.Name) {
			continue
		}
		name := s.internName(attr.Name.Local)
		if attr.Name.Space != "" {
			name = attr.Name.Space + ":" + attr.Name.Local
		}
		if el.Attributes == nil {
			el.Attributes = make(map[string]string, len(t.Attr))
		}
		el.Attributes[name] = attr.Value
	}
	return el
}

// pushPrefixMappings appends bindings for every xmlns declaration on the tag
// and returns the declared prefixes for scope-end removal.
func (s *scan) pushPrefixMappings(attrs []xml.Attr) []string {
	var declared []string
	for _, attr := range attrs {
		switch {
		case attr.Name.Space == "xmlns":
			s.bindings = append(s.bindings, prefixBinding{prefix: attr.Name.Local, uri: attr.Value})
			declared = append(declared, attr.Name.Local)
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			s.bindings = append(s.bindings, prefixBinding{prefix: "", uri: attr.Value})
			declared = append(declared, "")
		}
	}
	return declared
}

// popPrefixMappings removes the oldest binding for each prefix the closing
// element declared. Documents that redeclare a prefix at nested scopes with a
// different URI keep resolving to the inner URI after the inner scope ends;
// this matches the engine's long-standing behavior and is relied on by
// round-trip tests.
func (s *scan) popPrefixMappings(declared []string) {
	for _, prefix := range declared {
		for i, b := range s.bindings {
			if b.prefix == prefix {
				s.bindings = append(s.bindings[:i], s.bindings[i+1:]...)
				break
			}
		}
	}
}

// resolvePrefix returns the URI for a prefix, scanning newest bindings first.
func (s *scan) resolvePrefix(prefix string) (string, bool) {
	if prefix == "xml" {
		return document.NamespaceXML, true
	}
	for i := len(s.bindings) - 1; i >= 0; i-- {
		if s.bindings[i].prefix == prefix {
			return s.bindings[i].uri, true
		}
	}
	return "", false
}

// flushText appends the pending text buffer onto the current top-of-stack
// element and resets the buffer. Text that accumulates outside any open
// element, such as the newline after the XML declaration, has no owner and
// is discarded so it cannot leak into the root element's text.
func (s *scan) flushText() {
	if s.pendingText.Len() == 0 {
		return
	}
	if len(s.stack) == 0 {
		s.pendingText.Reset()
		return
	}
	s.flushTextInto(s.stack[len(s.stack)-1])
}

func (s *scan) flushTextInto(el *document.Element) {
	if s.pendingText.Len() == 0 {
		return
	}
	el.Text += s.pendingText.String()
	s.pendingText.Reset()
}

func (s *scan) matchesClose(el *document.Element, name xml.Name) bool {
	return el.Name == name.Local && el.Prefix == name.Space
}

func (s *scan) internName(name string) string {
	if interned, ok := intern.ElementName(name); ok {
		return interned
	}
	if s.interner != nil {
		return s.interner.Intern(name)
	}
	return name
}

// readDeclaration extracts version and encoding from the XML declaration.
func (s *scan) readDeclaration(inst string) {
	if v, ok := declarationAttr(inst, "version"); ok {
		s.doc.Version = v
	}
	if enc, ok := declarationAttr(inst, "encoding"); ok {
		s.doc.Encoding = enc
	}
}

func declarationAttr(inst, name string) (string, bool) {
	idx := strings.Index(inst, name+"=")
	if idx < 0 {
		return "", false
	}
	rest := inst[idx+len(name)+1:]
	if len(rest) < 2 {
		return "", false
	}
	quote := rest[0]
	if quote != '"' && quote != '\'' {
		return "", false
	}
	end := strings.IndexByte(rest[1:], quote)
	if end < 0 {
		return "", false
	}
	return rest[1 : 1+end], true
}

func rawName(name xml.Name) string {
	if name.Space != "" {
		return name.Space + ":" + name.Local
	}
	return name.Local
}

// --- diagnostics ---

func (s *scan) warn(message string) {
	line, col := s.position()
	s.diagnostics = append(s.diagnostics, cdaengine.Diagnostic{
		Severity: cdaengine.SeverityWarning,
		Message:  message,
		Line:     line,
		Column:   col,
	})
}

func (s *scan) fatal(kind cdaengine.ParseErrorKind, message string) error {
	line, col := s.position()
	s.diagnostics = append(s.diagnostics, cdaengine.Diagnostic{
		Severity: cdaengine.SeverityFatal,
		Message:  message,
		Line:     line,
		Column:   col,
	})
	return cdaengine.NewParseErrorAt(kind, message, line, col)
}

// fatalScan converts a scanner error into a fatal malformed-markup failure.
func (s *scan) fatalScan(err error) error {
	msg := err.Error()
	if syntax, ok := err.(*xml.SyntaxError); ok {
		msg = syntax.Msg
	}
	return s.fatal(cdaengine.ParseErrorMalformed, "malformed document: "+msg)
}

// position computes the 1-based line and column of the decoder's current
// input offset.
func (s *scan) position() (line, col int) {
	offset := s.decoder.InputOffset()
	if offset > int64(len(s.data)) {
		offset = int64(len(s.data))
	}
	line, col = 1, 1
	for _, b := range s.data[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}
