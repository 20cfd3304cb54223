package mapping

import (
	"slices"
	"sort"
	"strings"
	"sync"
)

// ConstantPath is the input path of node mappings that produce a constant.
const ConstantPath = "/constant"

// RecMapping is the whole mapping configuration for one record definition.
type RecMapping struct {
	// Version of the mapping file format.
	Version string `yaml:"version,omitempty"`

	// Prefix names the record definition the mapping targets.
	Prefix string `yaml:"prefix"`

	// Facts are dataset-level constants bound as "_facts" in generated code.
	Facts map[string]string `yaml:"facts,omitempty"`

	// OneToOne maps a source path to an output path without any code.
	OneToOne map[string]string `yaml:"121,omitempty"`

	// NodeMappings are the explicit node mappings.
	NodeMappings []*NodeMapping `yaml:"node_mappings,omitempty"`

	// mu guards NodeMappings and the fields the setters change.
	mu        sync.RWMutex
	listeners map[int]func(Change)
	nextID    int
}

// NodeMapping maps one or more source paths (or a constant) onto one output node.
type NodeMapping struct {
	// Output is the path of the target definition node.
	Output string `yaml:"output"`

	// Input lists source paths, or the single ConstantPath.
	Input InputPaths `yaml:"input"`

	// Constant is the produced value when Input is ConstantPath.
	Constant string `yaml:"constant,omitempty"`

	// Code replaces the generated default body when non-empty.
	Code string `yaml:"code,omitempty"`

	// Dictionary maps source values to output values.
	Dictionary map[string]string `yaml:"dictionary,omitempty"`

	// Documentation is free text for the curator.
	Documentation string `yaml:"documentation,omitempty"`
}

// IsConstant reports whether nm ignores the source.
func (nm *NodeMapping) IsConstant() bool {
	return len(nm.Input) == 1 && nm.Input[0] == ConstantPath
}

// HasCustomCode reports whether the curator replaced the generated code.
func (nm *NodeMapping) HasCustomCode() bool {
	return strings.TrimSpace(nm.Code) != ""
}

// SortedInputs returns the input paths in lexical order.
func (nm *NodeMapping) SortedInputs() []string {
	in := slices.Clone([]string(nm.Input))
	sort.Strings(in)

	return in
}

// Key identifies a node mapping by its output and input paths.
func (nm *NodeMapping) Key() string {
	return nm.Output + " <- " + strings.Join(nm.SortedInputs(), ",")
}

// Matches reports whether nm maps exactly sources onto target.
func (nm *NodeMapping) Matches(sources []string, target string) bool {
	if nm.Output != target || len(sources) != len(nm.Input) {
		return false
	}

	want := slices.Clone(sources)
	sort.Strings(want)

	return slices.Equal(want, nm.SortedInputs())
}

// ChangeKind tells listeners what happened to a node mapping.
type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeRemoved
	ChangeCode
	ChangeDictionary
	ChangeDocumentation
)

// Change is delivered to listeners registered with Subscribe.
type Change struct {
	Kind        ChangeKind
	NodeMapping *NodeMapping
}

// Subscribe registers fn for every change and returns a function that
// removes it again.
func (rm *RecMapping) Subscribe(fn func(Change)) func() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.listeners == nil {
		rm.listeners = make(map[int]func(Change))
	}

	id := rm.nextID
	rm.nextID++
	rm.listeners[id] = fn

	return func() {
		rm.mu.Lock()
		defer rm.mu.Unlock()

		delete(rm.listeners, id)
	}
}

func (rm *RecMapping) notify(c Change) {
	rm.mu.Lock()

	ids := make([]int, 0, len(rm.listeners))
	for id := range rm.listeners {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	fns := make([]func(Change), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, rm.listeners[id])
	}

	rm.mu.Unlock()

	for _, fn := range fns {
		fn(c)
	}
}

// View runs fn while no setter can change rm. fn must not call the setters,
// Find or View.
func (rm *RecMapping) View(fn func()) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	fn()
}

// CodeOf returns the code of nm.
func (rm *RecMapping) CodeOf(nm *NodeMapping) string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return nm.Code
}

// Find returns the node mapping that maps sources onto target, or nil.
func (rm *RecMapping) Find(sources []string, target string) *NodeMapping {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	for _, nm := range rm.NodeMappings {
		if nm.Matches(sources, target) {
			return nm
		}
	}

	return nil
}

// Add appends a node mapping and notifies listeners.
func (rm *RecMapping) Add(nm *NodeMapping) {
	rm.mu.Lock()
	rm.NodeMappings = append(rm.NodeMappings, nm)
	rm.mu.Unlock()

	rm.notify(Change{Kind: ChangeAdded, NodeMapping: nm})
}

// Remove deletes nm and notifies listeners. It reports whether nm was present.
func (rm *RecMapping) Remove(nm *NodeMapping) bool {
	rm.mu.Lock()

	i := slices.Index(rm.NodeMappings, nm)
	if i < 0 {
		rm.mu.Unlock()
		return false
	}

	rm.NodeMappings = slices.Delete(rm.NodeMappings, i, i+1)
	rm.mu.Unlock()

	rm.notify(Change{Kind: ChangeRemoved, NodeMapping: nm})

	return true
}

// SetCode replaces the code of nm and notifies listeners.
func (rm *RecMapping) SetCode(nm *NodeMapping, code string) {
	rm.mu.Lock()
	nm.Code = code
	rm.mu.Unlock()

	rm.notify(Change{Kind: ChangeCode, NodeMapping: nm})
}

// SetDictionary replaces the dictionary of nm and notifies listeners.
func (rm *RecMapping) SetDictionary(nm *NodeMapping, dict map[string]string) {
	rm.mu.Lock()
	nm.Dictionary = dict
	rm.mu.Unlock()

	rm.notify(Change{Kind: ChangeDictionary, NodeMapping: nm})
}

// SetDocumentation replaces the documentation of nm and notifies listeners.
func (rm *RecMapping) SetDocumentation(nm *NodeMapping, doc string) {
	rm.mu.Lock()
	nm.Documentation = doc
	rm.mu.Unlock()

	rm.notify(Change{Kind: ChangeDocumentation, NodeMapping: nm})
}
