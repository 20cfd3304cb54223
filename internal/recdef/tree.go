package recdef

import (
	"errors"
	"fmt"
	"strings"
)

// NodeID identifies a node of a Tree. IDs are stable for the life of the tree.
type NodeID int

// NoNode is the parent of the root.
const NoNode NodeID = -1

// Node is one element or attribute of the definition tree.
type Node struct {
	ID       NodeID
	Parent   NodeID
	Path     string
	Tag      string
	IsAttr   bool
	Children []NodeID
	Required bool
	Singular bool
	URI      bool
	Doc      string
}

// Tree is an arena of definition nodes. Nodes reference each other by
// NodeID; the root has ID 0.
type Tree struct {
	def    *Definition
	nodes  []Node
	byPath map[string]NodeID
}

// Build flattens a Definition into a Tree.
func Build(def *Definition) (*Tree, error) {
	if def == nil {
		return nil, errors.New("record definition is nil")
	}

	t := &Tree{def: def, byPath: make(map[string]NodeID)}

	if _, err := t.addElem(&def.Root, NoNode, ""); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *Tree) add(n Node) (NodeID, error) {
	if _, dup := t.byPath[n.Path]; dup {
		return NoNode, fmt.Errorf("duplicate definition path %s", n.Path)
	}

	n.ID = NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)
	t.byPath[n.Path] = n.ID

	if n.Parent != NoNode {
		t.nodes[n.Parent].Children = append(t.nodes[n.Parent].Children, n.ID)
	}

	return n.ID, nil
}

func (t *Tree) addElem(e *Elem, parent NodeID, parentPath string) (NodeID, error) {
	if e.Tag == "" || strings.Contains(e.Tag, "/") {
		return NoNode, fmt.Errorf("invalid element tag %q under %s", e.Tag, parentPath)
	}

	path := parentPath + "/" + e.Tag

	id, err := t.add(Node{
		Parent:   parent,
		Path:     path,
		Tag:      e.Tag,
		Required: e.Required,
		Singular: e.Singular,
		URI:      e.URI,
		Doc:      e.Doc,
	})
	if err != nil {
		return NoNode, err
	}

	for _, a := range e.Attrs {
		if _, err := t.add(Node{
			Parent:   id,
			Path:     path + "/@" + a.Tag,
			Tag:      a.Tag,
			IsAttr:   true,
			Required: a.Required,
			Singular: true,
			URI:      a.URI,
		}); err != nil {
			return NoNode, err
		}
	}

	for i := range e.Elems {
		if _, err := t.addElem(&e.Elems[i], id, path); err != nil {
			return NoNode, err
		}
	}

	return id, nil
}

// Definition returns the definition the tree was built from.
func (t *Tree) Definition() *Definition {
	return t.def
}

// Root returns the root node ID.
func (t *Tree) Root() NodeID {
	return 0
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Node returns the node with the given ID.
func (t *Tree) Node(id NodeID) *Node {
	return &t.nodes[id]
}

// Lookup finds a node by its absolute path, e.g. "/record/title/@xml:lang".
func (t *Tree) Lookup(path string) (NodeID, bool) {
	id, ok := t.byPath[path]
	return id, ok
}

// Ancestors returns the IDs from the root down to, but excluding, id.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for p := t.nodes[id].Parent; p != NoNode; p = t.nodes[p].Parent {
		out = append(out, p)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return out
}

// Walk visits every node in document order. Attributes of an element are
// visited before its child elements.
func (t *Tree) Walk(fn func(*Node)) {
	t.walk(0, fn)
}

func (t *Tree) walk(id NodeID, fn func(*Node)) {
	fn(&t.nodes[id])

	for _, c := range t.nodes[id].Children {
		t.walk(c, fn)
	}
}

// AttrChildren returns the attribute children of id.
func (t *Tree) AttrChildren(id NodeID) []NodeID {
	var out []NodeID

	for _, c := range t.nodes[id].Children {
		if t.nodes[c].IsAttr {
			out = append(out, c)
		}
	}

	return out
}

// ElemChildren returns the element children of id.
func (t *Tree) ElemChildren(id NodeID) []NodeID {
	var out []NodeID

	for _, c := range t.nodes[id].Children {
		if !t.nodes[c].IsAttr {
			out = append(out, c)
		}
	}

	return out
}
