package script

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"sip-creator/internal/record"
)

// Value is a runtime value: nil, string, float64, bool, []Value, *Map or
// *record.Node.
type Value = any

// Map is an insertion-ordered string-keyed map.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{vals: make(map[string]Value)}
}

// MapOf builds a map from a Go map with keys in sorted order.
func MapOf[V any](m map[string]V) *Map {
	out := NewMap()

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		out.Set(k, m[k])
	}

	return out
}

// Set stores v under k, keeping the original position of an existing key.
func (m *Map) Set(k string, v Value) {
	if _, ok := m.vals[k]; !ok {
		m.keys = append(m.keys, k)
	}

	m.vals[k] = v
}

// Get returns the value stored under k.
func (m *Map) Get(k string) (Value, bool) {
	v, ok := m.vals[k]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.keys)
}

// TypeName names the runtime type of v for error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "bool"
	case []Value:
		return "list"
	case *Map:
		return "map"
	case *record.Node:
		return "node"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Text converts a scalar or node to its string form. Lists render their
// element texts separated by a space.
func Text(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case *record.Node:
		return x.Text
	case []Value:
		parts := make([]string, 0, len(x))
		for _, e := range x {
			parts = append(parts, Text(e))
		}

		return strings.Join(parts, " ")
	case *Map:
		parts := make([]string, 0, x.Len())
		for _, k := range x.keys {
			parts = append(parts, k+":"+Text(x.vals[k]))
		}

		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}

// Truthy reports whether v counts as true in a condition. nil, "", 0,
// false, empty lists and empty maps are false; nodes are true.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case float64:
		return x != 0
	case bool:
		return x
	case []Value:
		return len(x) > 0
	case *Map:
		return x.Len() > 0
	default:
		return true
	}
}

// Equal compares two values. Nodes compare by text.
func Equal(a, b Value) bool {
	if n, ok := a.(*record.Node); ok {
		a = n.Text
	}

	if n, ok := b.(*record.Node); ok {
		b = n.Text
	}

	switch x := a.(type) {
	case nil:
		return b == nil
	case []Value:
		y, ok := b.([]Value)
		if !ok || len(x) != len(y) {
			return false
		}

		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}

		return true
	case *Map:
		y, ok := b.(*Map)
		if !ok || x.Len() != y.Len() {
			return false
		}

		for _, k := range x.keys {
			yv, ok := y.vals[k]
			if !ok || !Equal(x.vals[k], yv) {
				return false
			}
		}

		return true
	default:
		return a == b
	}
}

// Flatten turns v into a list: nil is empty, lists are flattened one level
// per nesting, scalars and nodes become one-element lists.
func Flatten(v Value) []Value {
	switch x := v.(type) {
	case nil:
		return nil
	case []Value:
		out := make([]Value, 0, len(x))
		for _, e := range x {
			out = append(out, Flatten(e)...)
		}

		return out
	default:
		return []Value{v}
	}
}

func nodesOf(nodes []*record.Node) []Value {
	out := make([]Value, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}

	return out
}
