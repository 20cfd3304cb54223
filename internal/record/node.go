// Package record models one source record as an attributed element tree.
//
// Records are produced by Parse for a single document or by Reader, which
// streams a large export and cuts it into records at a configured record
// root. Every record is re-rooted under a synthetic "input" element, so
// paths into a record always start with "/input".
package record

import (
	"strings"
)

// InputTag is the tag of the synthetic element every streamed record hangs under.
const InputTag = "input"

// QName is a namespace-qualified XML name.
type QName struct {
	// Space is the resolved namespace URI (empty when unqualified).
	Space string
	// Local is the local part of the name.
	Local string
	// Prefix is the prefix used in the source document.
	Prefix string
}

// String returns "prefix:local", or just "local" when there is no prefix.
func (q QName) String() string {
	if q.Prefix == "" {
		return q.Local
	}

	return q.Prefix + ":" + q.Local
}

// Attr is a single attribute value.
type Attr struct {
	Name  QName
	Value string
}

// Node is one element of a source record.
type Node struct {
	Name     QName
	Attrs    []Attr
	Text     string
	Children []*Node

	parent *Node
}

// NewNode creates a detached node. Text is trimmed.
func NewNode(name QName, text string, attrs ...Attr) *Node {
	return &Node{
		Name:  name,
		Attrs: attrs,
		Text:  strings.TrimSpace(text),
	}
}

// Append adds children to n and sets their parent.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.parent = n
		n.Children = append(n.Children, c)
	}

	return n
}

// Parent returns the enclosing element, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Tag returns the qualified tag as written in the source.
func (n *Node) Tag() string {
	return n.Name.String()
}

// Attr returns the value of the attribute with the given qualified name.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.String() == name {
			return a.Value, true
		}
	}

	return "", false
}

// ChildrenNamed returns all direct children with the given qualified tag.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node

	for _, c := range n.Children {
		if c.Tag() == name {
			out = append(out, c)
		}
	}

	return out
}

// Child returns the first child with the given qualified tag.
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Tag() == name {
			return c
		}
	}

	return nil
}

// Path returns the absolute slash path of n, e.g. "/input/metadata/dc:title".
func (n *Node) Path() string {
	var parts []string
	for cur := n; cur != nil; cur = cur.parent {
		parts = append(parts, cur.Tag())
	}

	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteString("/")
		sb.WriteString(parts[i])
	}

	return sb.String()
}

// Values resolves a path relative to n's own tag and returns the text values
// found there. The first segment must match n's tag; a final "@name" segment
// selects attribute values. Example: Values("/input/header/@id").
func (n *Node) Values(path string) []string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) == 0 || segs[0] != n.Tag() {
		return nil
	}

	current := []*Node{n}

	for i, seg := range segs[1:] {
		if strings.HasPrefix(seg, "@") {
			if i != len(segs)-2 {
				return nil
			}

			var out []string

			for _, c := range current {
				if v, ok := c.Attr(seg[1:]); ok {
					out = append(out, v)
				}
			}

			return out
		}

		var next []*Node
		for _, c := range current {
			next = append(next, c.ChildrenNamed(seg)...)
		}

		current = next
	}

	out := make([]string, 0, len(current))
	for _, c := range current {
		out = append(out, c.Text)
	}

	return out
}

// Walk visits n and all descendants depth-first in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)

	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Record is one source record ready to be mapped.
type Record struct {
	// ID is the unique identifier extracted from the record.
	ID string
	// Number is the 1-based position of the record in its stream.
	Number int
	// Root is the synthetic "input" node.
	Root *Node
}

var poison = &Record{ID: "<poison>"}

// Poison returns the sentinel record that signals the end of a record stream.
func Poison() *Record {
	return poison
}

// IsPoison reports whether r is the end-of-stream sentinel.
func (r *Record) IsPoison() bool {
	return r == poison
}
