package createstate

import (
	"errors"
	"slices"
	"sort"
	"sync"

	"sip-creator/internal/mapping"
)

// ErrNotArmed is returned by Create unless both a source and a target are
// selected and no node mapping exists for them yet.
var ErrNotArmed = errors.New("select a source and a target before creating a node mapping")

// Mappings finds and stores node mappings. *mapping.RecMapping implements it.
type Mappings interface {
	Find(sources []string, target string) *mapping.NodeMapping
	Add(nm *mapping.NodeMapping)
}

// Event describes one transition.
type Event struct {
	From, To   State
	Setter     Setter
	Transition CreateTransition
}

// Listener is called after every transition, outside the model's lock.
type Listener func(Event)

// Model holds the current selection.
type Model struct {
	mappings Mappings

	mu          sync.Mutex
	sources     []string
	target      string
	nodeMapping *mapping.NodeMapping
	listeners   map[int]Listener
	nextID      int
}

// NewModel starts with nothing selected.
func NewModel(mappings Mappings) *Model {
	return &Model{mappings: mappings, listeners: make(map[int]Listener)}
}

// Subscribe registers l and returns a function that removes it.
func (m *Model) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = l

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()

		delete(m.listeners, id)
	}
}

// State returns the current state.
func (m *Model) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state()
}

func (m *Model) state() State {
	return StateOf(len(m.sources) > 0, m.target != "", m.nodeMapping != nil)
}

func (m *Model) Sources() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.sources)
}

func (m *Model) Target() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.target
}

func (m *Model) NodeMapping() *mapping.NodeMapping {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.nodeMapping
}

// SetSource selects source paths; none clears the source. With a target
// selected, an existing node mapping for the pair is adopted.
func (m *Model) SetSource(sources []string) {
	m.change(SetterSource, func() {
		m.sources = normalize(sources)
		m.nodeMapping = m.find()
	})
}

// SetTarget selects the target output path; "" clears it.
func (m *Model) SetTarget(target string) {
	m.change(SetterTarget, func() {
		m.target = target
		m.nodeMapping = m.find()
	})
}

// SetNodeMapping selects nm together with its inputs and output. nil is
// ignored; Clear or a new source or target drops the node mapping.
func (m *Model) SetNodeMapping(nm *mapping.NodeMapping) {
	if nm == nil {
		return
	}

	m.change(SetterNodeMapping, func() {
		m.nodeMapping = nm
		m.sources = normalize(nm.Input)
		m.target = nm.Output
	})
}

// Clear drops the whole selection.
func (m *Model) Clear() {
	m.change(SetterNone, func() {
		m.sources, m.target, m.nodeMapping = nil, "", nil
	})
}

// Create adds a node mapping for the armed selection and selects it.
func (m *Model) Create() (*mapping.NodeMapping, error) {
	m.mu.Lock()

	if m.state() != SourceAndTarget {
		m.mu.Unlock()
		return nil, ErrNotArmed
	}

	nm := &mapping.NodeMapping{
		Output: m.target,
		Input:  mapping.InputPaths(slices.Clone(m.sources)),
	}
	m.mu.Unlock()

	m.mappings.Add(nm)
	m.SetNodeMapping(nm)

	return nm, nil
}

// find looks up the node mapping of the current pair. Callers hold m.mu.
func (m *Model) find() *mapping.NodeMapping {
	if len(m.sources) == 0 || m.target == "" || m.mappings == nil {
		return nil
	}

	return m.mappings.Find(m.sources, m.target)
}

func (m *Model) change(setter Setter, apply func()) {
	m.mu.Lock()

	from := m.state()
	apply()
	to := m.state()

	if !isMove(from, to) {
		m.mu.Unlock()
		return
	}

	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	ls := make([]Listener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, m.listeners[id])
	}

	m.mu.Unlock()

	ev := Event{From: from, To: to, Setter: setter, Transition: Transition(from, to, setter)}

	for _, l := range ls {
		l(ev)
	}
}

func normalize(sources []string) []string {
	if len(sources) == 0 {
		return nil
	}

	out := slices.Clone(sources)
	slices.Sort(out)

	return slices.Compact(out)
}
