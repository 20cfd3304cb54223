package builder

import (
	"strings"

	"sip-creator/internal/record"
)

// Node is an Element, Text or CData.
type Node interface {
	isNode()
}

// Attr is an output attribute.
type Attr struct {
	Name  record.QName
	Tag   string
	Value string
}

// Element is an output element. Tag is the prefixed name as written in the
// program; Name is the qualified name used for serialization.
type Element struct {
	Name     record.QName
	Tag      string
	Attrs    []Attr
	Children []Node
}

// Text is character data.
type Text struct {
	Value string
}

// CData is a CDATA section.
type CData struct {
	Value string
}

func (*Element) isNode() {}
func (*Text) isNode()    {}
func (*CData) isNode()   {}

// Document is a finished output record.
type Document struct {
	Root *Element
	// Namespaces maps each prefix used by a qualified name to its URI.
	Namespaces map[string]string
}

// Attr returns the value of the attribute with the given tag.
func (e *Element) Attr(tag string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Tag == tag {
			return a.Value, true
		}
	}

	return "", false
}

// Text returns the concatenated direct text and CDATA content, trimmed.
func (e *Element) Text() string {
	var sb strings.Builder

	for _, c := range e.Children {
		switch c := c.(type) {
		case *Text:
			sb.WriteString(c.Value)
		case *CData:
			sb.WriteString(c.Value)
		}
	}

	return strings.TrimSpace(sb.String())
}

// Elements returns the child elements.
func (e *Element) Elements() []*Element {
	var out []*Element

	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}

	return out
}

// Walk visits e and its descendant elements depth first. path is the slash
// path of tags from the root, e.g. "/rdf:RDF/edm:ProvidedCHO".
func (e *Element) Walk(fn func(path string, el *Element)) {
	e.walk("", fn)
}

func (e *Element) walk(parent string, fn func(string, *Element)) {
	path := parent + "/" + e.Tag
	fn(path, e)

	for _, c := range e.Elements() {
		c.walk(path, fn)
	}
}

// strip removes empty text and CDATA and, bottom up, every element without
// children, attributes or text. It reports whether e itself is empty.
func strip(e *Element) bool {
	kept := e.Children[:0]

	for _, c := range e.Children {
		switch c := c.(type) {
		case *Element:
			if strip(c) {
				continue
			}
		case *Text:
			if strings.TrimSpace(c.Value) == "" {
				continue
			}
		case *CData:
			if strings.TrimSpace(c.Value) == "" {
				continue
			}
		}

		kept = append(kept, c)
	}

	for i := len(kept); i < len(e.Children); i++ {
		e.Children[i] = nil
	}

	e.Children = kept

	return len(e.Children) == 0 && len(e.Attrs) == 0
}
