package mapping

import (
	"sort"

	"sip-creator/internal/recdef"
)

// Attached is the record definition tree annotated with the node mappings
// that feed each of its nodes.
type Attached struct {
	Tree *recdef.Tree
	// Invalid holds node mappings whose output path is not in the tree.
	Invalid []*NodeMapping

	byNode map[recdef.NodeID][]*NodeMapping
	below  map[recdef.NodeID]bool
}

// Attach distributes rm's node mappings over tree. Within one definition
// node, mappings are ordered by their sorted input paths so the order does
// not depend on when a mapping was created.
func Attach(rm *RecMapping, tree *recdef.Tree) *Attached {
	a := &Attached{
		Tree:   tree,
		byNode: make(map[recdef.NodeID][]*NodeMapping),
		below:  make(map[recdef.NodeID]bool),
	}

	for _, nm := range rm.NodeMappings {
		id, ok := tree.Lookup(nm.Output)
		if !ok {
			a.Invalid = append(a.Invalid, nm)
			continue
		}

		a.byNode[id] = append(a.byNode[id], nm)

		for n := id; n != recdef.NoNode; n = tree.Node(n).Parent {
			a.below[n] = true
		}
	}

	for id := range a.byNode {
		list := a.byNode[id]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Key() < list[j].Key()
		})
	}

	return a
}

// Mappings returns the node mappings attached to id.
func (a *Attached) Mappings(id recdef.NodeID) []*NodeMapping {
	return a.byNode[id]
}

// HasMappings reports whether id or any of its descendants carries a mapping.
func (a *Attached) HasMappings(id recdef.NodeID) bool {
	return a.below[id]
}

// NodeOf returns the definition node nm is attached to.
func (a *Attached) NodeOf(nm *NodeMapping) (recdef.NodeID, bool) {
	id, ok := a.Tree.Lookup(nm.Output)
	if !ok {
		return recdef.NoNode, false
	}

	for _, m := range a.byNode[id] {
		if m == nm {
			return id, true
		}
	}

	return recdef.NoNode, false
}
