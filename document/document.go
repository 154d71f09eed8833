// Package document defines the in-memory XML tree produced by the parser
// and the read-only query primitives the rest of the engine is built on.
package document

// Element is a single node in the document tree.
//
// An Element is owned exactly once by its parent's Children slice (or held by
// the caller when it is a root). There is no back-reference to the parent, so
// a tree is trivially acyclic and safe to share between concurrent readers
// once construction has finished. The engine never mutates an Element after
// the parser returns it; collaborators that need to modify a tree work on a
// Clone.
type Element struct {
	// Name is the local name without any prefix.
	Name string `json:"name"`

	// Namespace is the resolved namespace URI, empty when unresolved.
	Namespace string `json:"namespace,omitempty"`

	// Prefix is the namespace prefix as written in the source document.
	Prefix string `json:"prefix,omitempty"`

	// Attributes maps attribute names to values. Lookup is unordered;
	// the serializer emits attributes in sorted order.
	Attributes map[string]string `json:"attributes,omitempty"`

	// Children are the child elements in document order.
	Children []*Element `json:"children,omitempty"`

	// Text is the element's direct character data. It does not include
	// text held by descendants.
	Text string `json:"text,omitempty"`
}

// Document is the result of a successful parse.
type Document struct {
	// Root is the outermost element. It may be nil for a malformed parse
	// that still produced diagnostics.
	Root *Element `json:"root,omitempty"`

	// Version is the XML version from the declaration (default "1.0").
	Version string `json:"version"`

	// Encoding is the declared encoding (default "UTF-8").
	Encoding string `json:"encoding"`
}

// NewElement creates an element with the given local name.
func NewElement(name string) *Element {
	return &Element{
		Name:       name,
		Attributes: make(map[string]string),
	}
}

// NewDocument creates a document with default XML declaration values.
func NewDocument(root *Element) *Document {
	return &Document{
		Root:     root,
		Version:  "1.0",
		Encoding: "UTF-8",
	}
}

// Attribute returns the value of the named attribute.
// The second return value is false when the attribute is absent.
func (e *Element) Attribute(name string) (string, bool) {
	if e.Attributes == nil {
		return "", false
	}
	v, ok := e.Attributes[name]
	return v, ok
}

// AttributeOr returns the named attribute or the fallback when absent.
func (e *Element) AttributeOr(name, fallback string) string {
	if v, ok := e.Attribute(name); ok {
		return v
	}
	return fallback
}

// HasAttribute reports whether the named attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.Attribute(name)
	return ok
}

// ChildrenByName returns the direct children with the given local name,
// in document order.
func (e *Element) ChildrenByName(name string) []*Element {
	var matches []*Element
	for _, child := range e.Children {
		if child.Name == name {
			matches = append(matches, child)
		}
	}
	return matches
}

// FirstChild returns the first direct child with the given local name,
// or nil when there is none.
func (e *Element) FirstChild(name string) *Element {
	for _, child := range e.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}

// Descendants returns every descendant (including e itself) with the given
// local name, in document order.
func (e *Element) Descendants(name string) []*Element {
	var matches []*Element
	e.walk(func(el *Element) {
		if el.Name == name {
			matches = append(matches, el)
		}
	})
	return matches
}

// DescendantsNS returns every descendant (including e itself) matching both
// the namespace URI and the local name, in document order.
func (e *Element) DescendantsNS(namespace, name string) []*Element {
	var matches []*Element
	e.walk(func(el *Element) {
		if el.Name == name && el.Namespace == namespace {
			matches = append(matches, el)
		}
	})
	return matches
}

// walk visits e and every descendant depth-first in document order.
func (e *Element) walk(visit func(*Element)) {
	visit(e)
	for _, child := range e.Children {
		child.walk(visit)
	}
}

// AllText returns the element's direct text concatenated with each child's
// AllText in document order, recursively. An element without text contributes
// the empty string.
func (e *Element) AllText() string {
	text := e.Text
	for _, child := range e.Children {
		text += child.AllText()
	}
	return text
}

// Count returns the number of elements in the subtree rooted at e.
func (e *Element) Count() int {
	n := 0
	e.walk(func(*Element) { n++ })
	return n
}

// Clone returns a deep copy of the subtree rooted at e. This is the
// copy-on-write path for builder collaborators: they clone a parsed tree,
// mutate the clone, and hand it back to the serializer.
func (e *Element) Clone() *Element {
	clone := &Element{
		Name:      e.Name,
		Namespace: e.Namespace,
		Prefix:    e.Prefix,
		Text:      e.Text,
	}
	if e.Attributes != nil {
		clone.Attributes = make(map[string]string, len(e.Attributes))
		for k, v := range e.Attributes {
			clone.Attributes[k] = v
		}
	}
	if len(e.Children) > 0 {
		clone.Children = make([]*Element, len(e.Children))
		for i, child := range e.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return clone
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	clone := &Document{
		Version:  d.Version,
		Encoding: d.Encoding,
	}
	if d.Root != nil {
		clone.Root = d.Root.Clone()
	}
	return clone
}
