package engine

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sip-creator/internal/config"
	"sip-creator/internal/createstate"
	"sip-creator/internal/gen"
)

func newTestSession(t *testing.T) (*Session, <-chan Event) {
	t.Helper()

	return newTestSessionWith(t, SessionConfig{Generator: gen.GeneratorConfig{}})
}

func newTestSessionWith(t *testing.T, cfg SessionConfig) (*Session, <-chan Event) {
	t.Helper()

	_, tree := fixtures(t)
	s := NewSession(cfg, tree, nil)
	t.Cleanup(s.Close)

	events := make(chan Event, 128)
	s.Subscribe(func(ev Event) { events <- ev })

	return s, events
}

// waitFor returns the first event satisfying ok. Intermediate events may be
// coalesced by the session, so earlier ones are skipped.
func waitFor(t *testing.T, events <-chan Event, ok func(Event) bool) Event {
	t.Helper()

	timeout := time.After(5 * time.Second)

	for {
		select {
		case ev := <-events:
			if ok(ev) {
				return ev
			}
		case <-timeout:
			t.Fatal("timed out waiting for session event")
			return Event{}
		}
	}
}

func TestSession_RunsRecord(t *testing.T) {
	s, events := newTestSession(t)
	rm, _ := fixtures(t)

	s.SetMapping(rm)
	s.SetRecord(testRec(t, "r1", testRecord))

	ev := waitFor(t, events, func(ev Event) bool { return ev.Document != nil })
	assert.Equal(t, CompileOriginal, ev.State)
	assert.NoError(t, ev.Err)
	assert.Contains(t, ev.XML, `<dc:title>Mona Lisa</dc:title>`)
	assert.NotEmpty(t, ev.Code.Hash)
}

func TestSession_EditAndSave(t *testing.T) {
	s, events := newTestSession(t)
	rm, _ := fixtures(t)
	title := find(t, rm, "/rdf:RDF/edm:ProvidedCHO/dc:title")

	s.SetMapping(rm)
	s.SetRecord(testRec(t, "r1", testRecord))
	s.SetEditPath(title)

	s.Edit(`element "dc:title" text upper(_title)`)

	ev := waitFor(t, events, func(ev Event) bool { return ev.State == CompileEdited && ev.Document != nil })
	assert.Contains(t, ev.XML, `<dc:title>MONA LISA</dc:title>`)
	assert.Empty(t, title.Code)

	s.Save()

	ev = waitFor(t, events, func(ev Event) bool { return ev.State == CompileSaved })
	assert.Contains(t, ev.XML, `<dc:title>MONA LISA</dc:title>`)
	assert.Equal(t, `element "dc:title" text upper(_title)`, title.Code)
}

func TestSession_CompileFailure(t *testing.T) {
	s, events := newTestSession(t)
	rm, _ := fixtures(t)

	s.SetMapping(rm)
	s.SetEditPath(find(t, rm, "/rdf:RDF/edm:ProvidedCHO/dc:title"))
	s.Edit(`element "dc:title" text (`)

	ev := waitFor(t, events, func(ev Event) bool { return ev.State == CompileFailed })
	require.Error(t, ev.Err)
	assert.True(t, IsCompile(ev.Err))
	assert.Contains(t, ev.Excerpt, ">> ")
	assert.Nil(t, ev.Document)
}

func TestSession_Discard(t *testing.T) {
	s, events := newTestSession(t)
	rm, _ := fixtures(t)

	s.SetMapping(rm)
	s.SetRecord(testRec(t, "r1", testRecord))
	s.SetEditPath(find(t, rm, "/rdf:RDF/edm:ProvidedCHO/dc:title"))
	s.Edit(`discard "no titles today"`)

	ev := waitFor(t, events, func(ev Event) bool { return ev.Err != nil })
	reason, ok := IsDiscard(ev.Err)
	require.True(t, ok)
	assert.Equal(t, "no titles today", reason)
	assert.Equal(t, CompileEdited, ev.State)
}

func TestSession_Preview(t *testing.T) {
	s, _ := newTestSession(t)
	rm, _ := fixtures(t)

	code, err := s.Preview()
	require.NoError(t, err)
	assert.Empty(t, code)

	s.SetMapping(rm)
	s.SetEditPath(find(t, rm, "/rdf:RDF/edm:ProvidedCHO/dc:title"))

	code, err = s.Preview()
	require.NoError(t, err)
	assert.Contains(t, code, `element "dc:title" text _title`)
	assert.NotContains(t, code, "dc:type")
}

func TestSession_CloseStopsEvents(t *testing.T) {
	_, tree := fixtures(t)
	s := NewSession(SessionConfig{}, tree, nil)

	calls := 0
	s.Subscribe(func(Event) { calls++ })
	s.Close()
	s.Close()

	rm, _ := fixtures(t)
	s.SetMapping(rm)
	s.Edit("ignored")
	s.Save()

	assert.Zero(t, calls)
}

func TestSession_SetMappingResetsCompiler(t *testing.T) {
	s, events := newTestSession(t)
	rm, _ := fixtures(t)

	assert.Equal(t, 0, s.compiler.Generation())

	s.SetMapping(rm)
	assert.Equal(t, 1, s.compiler.Generation())

	other, _ := fixtures(t)
	s.SetMapping(other)
	assert.Equal(t, 2, s.compiler.Generation())

	s.SetRecord(testRec(t, "r1", testRecord))
	ev := waitFor(t, events, func(ev Event) bool { return ev.Document != nil })
	assert.NoError(t, ev.Err)
}

func TestSession_DebounceCoalescesEdits(t *testing.T) {
	s, events := newTestSessionWith(t, SessionConfig{Debounce: 200 * time.Millisecond})
	rm, _ := fixtures(t)

	s.SetMapping(rm)
	s.SetRecord(testRec(t, "r1", testRecord))
	s.SetEditPath(find(t, rm, "/rdf:RDF/edm:ProvidedCHO/dc:title"))
	waitFor(t, events, func(ev Event) bool { return ev.State == CompileOriginal && ev.Document != nil })

	// let runs still queued for the selection finish
	time.Sleep(100 * time.Millisecond)
	for len(events) > 0 {
		<-events
	}

	for i := range 10 {
		s.Edit(fmt.Sprintf(`element "dc:title" text "edit %d"`, i))
		time.Sleep(20 * time.Millisecond)
	}

	ev := waitFor(t, events, func(ev Event) bool { return ev.State == CompileEdited })
	assert.Contains(t, ev.XML, "<dc:title>edit 9</dc:title>")

	time.Sleep(400 * time.Millisecond)
	for len(events) > 0 {
		assert.NotEqual(t, CompileEdited, (<-events).State)
	}
}

func TestSession_ConcurrentMappingChanges(t *testing.T) {
	s, events := newTestSession(t)
	rm, _ := fixtures(t)
	model := createstate.NewModel(rm)

	s.SetMapping(rm)
	s.SetRecord(testRec(t, "r1", testRecord))

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for i := range 200 {
			model.Clear()
			model.SetSource([]string{fmt.Sprintf("/input/metadata/extra%d", i)})
			model.SetTarget("/rdf:RDF/edm:ProvidedCHO/dc:title")

			if _, err := model.Create(); err != nil {
				t.Errorf("create %d: %v", i, err)
				return
			}
		}
	}()

	// keep the consumer going while the model adds node mappings
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for running := true; running; {
		select {
		case ev := <-events:
			assert.NoError(t, ev.Err)
		case <-done:
			running = false
		}
	}

	ev := waitFor(t, events, func(ev Event) bool {
		return ev.Code != nil && strings.Contains(ev.Code.Source, "extra199")
	})
	require.NoError(t, ev.Err)
	assert.Contains(t, ev.XML, "<dc:title>Mona Lisa</dc:title>")

	var count int
	rm.View(func() { count = len(rm.NodeMappings) })
	assert.Equal(t, 203, count)
}

func TestNewSessionConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Interactive.Debounce = 750 * time.Millisecond
	cfg.Generator.Trace = true
	cfg.Generator.Comments = false

	sc := NewSessionConfig(cfg)
	assert.Equal(t, 750*time.Millisecond, sc.Debounce)
	assert.True(t, sc.Trace)
	assert.False(t, sc.Generator.GenerateComments)
}
