package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"sip-creator/internal/builder"
	"sip-creator/internal/config"
	"sip-creator/internal/gen"
	"sip-creator/internal/logger"
	"sip-creator/internal/mapping"
	"sip-creator/internal/recdef"
	"sip-creator/internal/record"
	"sip-creator/internal/script"
)

// Event is published to listeners after every recompilation.
type Event struct {
	State CompileState
	Code  *gen.Code
	// Document and XML are set when a record was mapped successfully.
	Document *builder.Document
	XML      string
	// Err is the compile, discard or runtime error, if any.
	Err     error
	Excerpt string
	Trace   []string
}

// Listener receives session events on the session's worker goroutine.
type Listener func(Event)

// SessionConfig tunes a Session.
type SessionConfig struct {
	Debounce  time.Duration
	Trace     bool
	Generator gen.GeneratorConfig
}

// NewSessionConfig takes the debounce delay and generator settings from cfg.
func NewSessionConfig(cfg *config.Config) SessionConfig {
	return SessionConfig{
		Debounce:  cfg.Interactive.Debounce,
		Trace:     cfg.Generator.Trace,
		Generator: gen.ConfigFrom(cfg.Generator),
	}
}

// Session recompiles and reruns a mapping while it is being edited. All
// work happens on one background goroutine; requests arriving while it is
// busy are coalesced into one more run.
type Session struct {
	config   SessionConfig
	tree     *recdef.Tree
	compiler *script.Compiler
	gen      *gen.Generator
	log      *logger.Logger

	mu          sync.Mutex
	rm          *mapping.RecMapping
	unsubscribe func()
	rec         *record.Record
	edit        *gen.EditPath
	state       CompileState
	timer       *time.Timer
	listeners   map[int]Listener
	nextID      int
	closed      bool

	// kickMu guards sends on kick against Close; it is separate from mu so
	// mapping change notifications can trigger while mu is held.
	kickMu  sync.Mutex
	stopped bool
	kick    chan struct{}
	done    chan struct{}
}

// NewSession starts a session over tree. Close it to stop the worker.
func NewSession(config SessionConfig, tree *recdef.Tree, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Discard()
	}

	s := &Session{
		config:    config,
		tree:      tree,
		compiler:  script.NewCompiler(),
		gen:       gen.NewGenerator(config.Generator),
		log:       log,
		listeners: make(map[int]Listener),
		kick:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	go s.worker()

	return s
}

// Subscribe registers l and returns a function that removes it.
func (s *Session) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.listeners, id)
	}
}

// SetMapping replaces the mapping. The compiler context is reset so code of
// the previous mapping is not kept.
func (s *Session) SetMapping(rm *mapping.RecMapping) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}

	s.rm = rm
	s.edit = nil
	s.state = CompileOriginal
	s.compiler.Reset()

	if rm != nil {
		s.unsubscribe = rm.Subscribe(func(mapping.Change) { s.trigger() })
	}

	s.mu.Unlock()

	s.log.WithMapping(mappingName(rm)).Debug("mapping replaced")
	s.trigger()
}

// SetRecord selects the record the mapping is run against. nil only
// compiles.
func (s *Session) SetRecord(rec *record.Record) {
	s.mu.Lock()
	s.rec = rec
	s.mu.Unlock()

	s.trigger()
}

// SetEditPath selects the node mapping being edited, starting from its
// current code. nil ends editing.
func (s *Session) SetEditPath(nm *mapping.NodeMapping) {
	s.mu.Lock()

	if nm == nil {
		s.edit = nil
	} else {
		code := nm.Code
		if s.rm != nil {
			code = s.rm.CodeOf(nm)
		}

		s.edit = &gen.EditPath{NodeMapping: nm, EditedCode: code}
	}

	s.state = CompileOriginal
	s.mu.Unlock()

	s.trigger()
}

// Edit replaces the code of the node mapping being edited. The rerun is
// delayed by the debounce interval and restarted by every further edit.
func (s *Session) Edit(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil || s.closed {
		return
	}

	s.edit.EditedCode = code
	s.state = CompileEdited

	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = time.AfterFunc(s.config.Debounce, s.trigger)
}

// Save stores the edited code in the mapping. Saving empty code reverts the
// node mapping to its generated default.
func (s *Session) Save() {
	s.mu.Lock()

	if s.edit == nil || s.rm == nil {
		s.mu.Unlock()
		return
	}

	s.rm.SetCode(s.edit.NodeMapping, s.edit.EditedCode)
	s.state = CompileSaved
	s.mu.Unlock()

	s.trigger()
}

// defaultCode returns the generated code of nm alone. Callers hold s.mu.
func (s *Session) defaultCode(nm *mapping.NodeMapping) (string, error) {
	code, err := s.gen.Generate(s.rm, s.tree, &gen.EditPath{NodeMapping: nm, GeneratedCodeOnly: true}, false)
	if err != nil {
		return "", err
	}

	return code.Source, nil
}

// Preview returns the generated code of the node mapping being edited,
// wrapped in its ancestor elements.
func (s *Session) Preview() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil || s.rm == nil {
		return "", nil
	}

	return s.defaultCode(s.edit.NodeMapping)
}

// Close stops the worker and releases the compiler context. Listeners are
// not called after Close returns.
func (s *Session) Close() {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	s.closed = true

	if s.timer != nil {
		s.timer.Stop()
	}

	if s.unsubscribe != nil {
		s.unsubscribe()
	}

	s.mu.Unlock()

	s.kickMu.Lock()
	s.stopped = true
	close(s.kick)
	s.kickMu.Unlock()

	<-s.done

	s.compiler.Close()
}

func (s *Session) trigger() {
	s.kickMu.Lock()
	defer s.kickMu.Unlock()

	if s.stopped {
		return
	}

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Session) worker() {
	defer close(s.done)

	for range s.kick {
		s.process()
	}
}

func (s *Session) process() {
	s.mu.Lock()

	if s.rm == nil {
		s.mu.Unlock()
		return
	}

	var edit *gen.EditPath
	if s.edit != nil {
		e := *s.edit
		edit = &e
	}

	state, rec := s.state, s.rec
	code, err := s.gen.Generate(s.rm, s.tree, edit, s.config.Trace)
	name := s.rm.Prefix
	facts := s.rm.Facts
	s.mu.Unlock()

	ev := Event{State: state, Code: code}

	if err != nil {
		ev.State, ev.Err = CompileFailed, err
		s.publish(ev)

		return
	}

	prog, err := s.compiler.Compile(name, code.Source)
	if err != nil {
		ev.State, ev.Err, ev.Excerpt = CompileFailed, err, ExcerptFor(err, code.Source)
		s.publish(ev)

		return
	}

	if rec == nil || rec.Root == nil {
		s.publish(ev)
		return
	}

	b := builder.New(s.tree.Definition())

	err = prog.Run(context.Background(), &script.Binding{
		Input:     rec.Root,
		RecordID:  rec.ID,
		Output:    b,
		Facts:     facts,
		OptLookup: s.tree.Definition().OptionLookup(),
		Trace:     func(msg string) { ev.Trace = append(ev.Trace, msg) },
	})

	switch {
	case err == nil:
		ev.Document = b.Finish()
		ev.XML = builder.Serialize(ev.Document)
	case isDiscard(err):
		ev.Err = err
	default:
		ev.State, ev.Err, ev.Excerpt = CompileFailed, err, ExcerptFor(err, code.Source)
		s.log.WithRecord(rec.ID).WithError(err).Debug("mapping failed on record")
	}

	s.publish(ev)
}

func (s *Session) publish(ev Event) {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return
	}

	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	ls := make([]Listener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, s.listeners[id])
	}

	s.mu.Unlock()

	for _, l := range ls {
		l(ev)
	}
}

func isDiscard(err error) bool {
	_, ok := IsDiscard(err)
	return ok
}

func mappingName(rm *mapping.RecMapping) string {
	if rm == nil {
		return ""
	}

	return rm.Prefix
}
