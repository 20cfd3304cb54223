package createstate

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sip-creator/internal/mapping"
)

func newTestModel() (*Model, *mapping.RecMapping, *[]Event) {
	rm := &mapping.RecMapping{
		Prefix: "edm",
		NodeMappings: []*mapping.NodeMapping{
			{Output: "/rdf:RDF/dc:type", Input: mapping.InputPaths{"/input/type"}},
		},
	}

	m := NewModel(rm)

	var events []Event
	m.Subscribe(func(ev Event) { events = append(events, ev) })

	return m, rm, &events
}

func TestModel_Walkthrough(t *testing.T) {
	m, rm, events := newTestModel()

	step := func(want CreateTransition, state State, action func()) {
		t.Helper()

		n := len(*events)
		action()
		require.Len(t, *events, n+1)

		ev := (*events)[n]
		assert.Equal(t, want, ev.Transition, "got %s", ev.Transition)
		assert.Equal(t, state, ev.To)
		assert.Equal(t, state, m.State())
	}

	assert.Equal(t, Nothing, m.State())

	step(NothingToSource, SourceOnly, func() { m.SetSource([]string{"/input/title"}) })
	step(SourceToArmed, SourceAndTarget, func() { m.SetTarget("/rdf:RDF/dc:title") })

	var created *mapping.NodeMapping

	step(CreateComplete, Complete, func() {
		var err error
		created, err = m.Create()
		require.NoError(t, err)
	})
	assert.Len(t, rm.NodeMappings, 2)
	assert.Equal(t, "/rdf:RDF/dc:title", created.Output)
	assert.Same(t, created, m.NodeMapping())

	step(ArmedToTarget, SourceOnly, func() { m.SetTarget("") })
	step(SourceToComplete, Complete, func() { m.SetTarget("/rdf:RDF/dc:title") })
	step(CompleteToArmedSource, SourceAndTarget, func() { m.SetSource([]string{"/input/other"}) })
	step(ArmedToCompleteSource, Complete, func() { m.SetSource([]string{"/input/title"}) })
	step(CompleteToArmedTarget, SourceAndTarget, func() { m.SetTarget("/rdf:RDF/dc:subject") })
	step(ArmedToArmedTarget, SourceAndTarget, func() { m.SetTarget("/rdf:RDF/dc:description") })
	step(ArmedToCompleteTarget, Complete, func() { m.SetTarget("/rdf:RDF/dc:title") })
	step(CompleteToComplete, Complete, func() { m.SetSource([]string{"/input/title", "/input/title"}) })
	step(CompleteToNothing, Nothing, m.Clear)
	step(NothingToComplete, Complete, func() { m.SetNodeMapping(rm.NodeMappings[0]) })

	assert.Equal(t, []string{"/input/type"}, m.Sources())
	assert.Equal(t, "/rdf:RDF/dc:type", m.Target())

	step(ArmedToSource, TargetOnly, func() { m.SetSource(nil) })
	step(TargetToArmed, SourceAndTarget, func() { m.SetSource([]string{"/input/x"}) })
	step(ArmedToArmedSource, SourceAndTarget, func() { m.SetSource([]string{"/input/y"}) })
	step(ArmedToSource, TargetOnly, func() { m.SetSource(nil) })
	step(TargetToNothing, Nothing, func() { m.SetTarget("") })
	step(NothingToTarget, TargetOnly, func() { m.SetTarget("/rdf:RDF/dc:title") })
	step(TargetToArmed, SourceAndTarget, func() { m.SetSource([]string{"/input/x"}) })
	step(ArmedToTarget, SourceOnly, func() { m.SetTarget("") })
	step(SourceToNothing, Nothing, func() { m.SetSource(nil) })
	step(NothingToSource, SourceOnly, func() { m.SetSource([]string{"/input/type"}) })
	step(SourceToArmed, SourceAndTarget, func() { m.SetTarget("/rdf:RDF/dc:subject") })
	step(ArmedToNothing, Nothing, m.Clear)
	step(NothingToTarget, TargetOnly, func() { m.SetTarget("/rdf:RDF/dc:type") })
	step(TargetToComplete, Complete, func() { m.SetSource([]string{"/input/type"}) })
}

func TestModel_SelfMovesAreSilent(t *testing.T) {
	m, _, events := newTestModel()

	m.Clear()
	assert.Empty(t, *events)

	m.SetSource([]string{"/input/a"})
	m.SetSource([]string{"/input/b"})
	require.Len(t, *events, 1)
	assert.Equal(t, []string{"/input/b"}, m.Sources())

	m.SetSource(nil)
	m.SetTarget("/rdf:RDF/dc:title")
	m.SetTarget("/rdf:RDF/dc:subject")
	assert.Len(t, *events, 3)
	assert.Equal(t, TargetOnly, m.State())
}

func TestModel_SetNodeMappingNilIsNoop(t *testing.T) {
	m, _, events := newTestModel()

	m.SetSource([]string{"/input/a"})
	m.SetTarget("/rdf:RDF/dc:title")
	require.Len(t, *events, 2)

	m.SetNodeMapping(nil)
	assert.Len(t, *events, 2)
	assert.Equal(t, SourceAndTarget, m.State())

	_, err := m.Create()
	require.NoError(t, err)

	m.SetNodeMapping(nil)
	assert.Len(t, *events, 3)
	assert.Equal(t, Complete, m.State())
}

func TestModel_CreateNotArmed(t *testing.T) {
	m, rm, _ := newTestModel()

	_, err := m.Create()
	assert.ErrorIs(t, err, ErrNotArmed)

	m.SetSource([]string{"/input/type"})
	m.SetTarget("/rdf:RDF/dc:type")
	assert.Equal(t, Complete, m.State())

	_, err = m.Create()
	assert.ErrorIs(t, err, ErrNotArmed)
	assert.Len(t, rm.NodeMappings, 1)
}

func TestModel_Unsubscribe(t *testing.T) {
	m := NewModel(nil)

	calls := 0
	unsubscribe := m.Subscribe(func(Event) { calls++ })

	m.SetSource([]string{"/input/a"})
	unsubscribe()
	m.SetTarget("/rdf:RDF/dc:title")

	assert.Equal(t, 1, calls)
	assert.Equal(t, SourceAndTarget, m.State())
}

func TestTransition_Unreachable(t *testing.T) {
	assert.PanicsWithError(t, "unreachable create transition: SOURCE_AND_TARGET to SOURCE_AND_TARGET by NONE", func() {
		Transition(SourceAndTarget, SourceAndTarget, SetterNone)
	})
	assert.PanicsWithError(t, "unreachable create transition: SOURCE_AND_TARGET to SOURCE_AND_TARGET by NODE_MAPPING", func() {
		Transition(SourceAndTarget, SourceAndTarget, SetterNodeMapping)
	})
	assert.Panics(t, func() { Transition(Nothing, SourceAndTarget, SetterSource) })
	assert.Panics(t, func() { Transition(SourceOnly, TargetOnly, SetterSource) })
	assert.Panics(t, func() { Transition(Nothing, Nothing, SetterNone) })
	assert.Panics(t, func() { Transition(Complete, SourceAndTarget, SetterNodeMapping) })
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, Nothing, StateOf(false, false, false))
	assert.Equal(t, SourceOnly, StateOf(true, false, false))
	assert.Equal(t, TargetOnly, StateOf(false, true, false))
	assert.Equal(t, SourceAndTarget, StateOf(true, true, false))
	assert.Equal(t, Complete, StateOf(true, true, true))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "SOURCE_AND_TARGET", SourceAndTarget.String())
	assert.Equal(t, "NODE_MAPPING", SetterNodeMapping.String())
	assert.Equal(t, "COMPLETE_TO_ARMED_SOURCE", CompleteToArmedSource.String())
	assert.Equal(t, "CREATE_COMPLETE", CreateComplete.String())
	assert.Equal(t, "ARMED_TO_TARGET", Transition(Complete, SourceOnly, SetterTarget).String())
	assert.Equal(t, "State(7)", State(7).String())
}

func TestModel_RandomWalkNeverUnreachable(t *testing.T) {
	sources := [][]string{nil, {"/input/a"}, {"/input/b"}, {"/input/a", "/input/b"}}
	targets := []string{"", "/rdf:RDF/dc:title", "/rdf:RDF/dc:type"}

	properties := gopter.NewProperties(nil)

	properties.Property("every setter sequence yields reachable transitions", prop.ForAll(
		func(ops []int) bool {
			m, rm, events := newTestModel()

			for i, op := range ops {
				switch op % 6 {
				case 0:
					m.SetSource(sources[i%len(sources)])
				case 1:
					m.SetTarget(targets[i%len(targets)])
				case 2:
					m.SetNodeMapping(rm.NodeMappings[i%len(rm.NodeMappings)])
				case 3:
					m.SetNodeMapping(nil)
				case 4:
					m.Clear()
				case 5:
					_, _ = m.Create()
				}

				if n := len(*events); n > 0 && (*events)[n-1].To != m.State() {
					return false
				}
			}

			for _, ev := range *events {
				if ev.From == SourceAndTarget && ev.To == SourceAndTarget &&
					ev.Setter != SetterSource && ev.Setter != SetterTarget {
					return false
				}
			}

			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
