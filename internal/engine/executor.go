package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"sip-creator/internal/builder"
	"sip-creator/internal/gen"
	"sip-creator/internal/logger"
	"sip-creator/internal/mapping"
	"sip-creator/internal/recdef"
	"sip-creator/internal/record"
	"sip-creator/internal/script"
)

// ErrNotCompiled is returned by Program before the code was compiled.
var ErrNotCompiled = errors.New("mapping code is not compiled")

// Executor runs one compiled mapping. Run is safe for concurrent use.
type Executor struct {
	compiler  *script.Compiler
	code      *gen.Code
	name      string
	def       *recdef.Definition
	facts     map[string]string
	optLookup map[string]map[string]string
	log       *logger.Logger

	once     sync.Once
	prog     *script.Program
	err      error
	compiled atomic.Int32
	running  atomic.Int64
}

// NewExecutor prepares code generated from rm for execution. Compilation
// happens on the first Compile or Run.
func NewExecutor(compiler *script.Compiler, code *gen.Code, rm *mapping.RecMapping, tree *recdef.Tree, log *logger.Logger) *Executor {
	if log == nil {
		log = logger.Discard()
	}

	return &Executor{
		compiler:  compiler,
		code:      code,
		name:      rm.Prefix,
		def:       tree.Definition(),
		facts:     rm.Facts,
		optLookup: tree.Definition().OptionLookup(),
		log:       log,
	}
}

// Compile compiles the code once. Later calls return the first result.
func (e *Executor) Compile() error {
	e.once.Do(func() {
		e.prog, e.err = e.compiler.Compile(e.name, e.code.Source)
		if e.err != nil {
			e.compiled.Store(int32(StateFailedToCompile))
			e.log.WithMapping(e.name).WithError(e.err).Warn("mapping code failed to compile")

			return
		}

		e.compiled.Store(int32(StateCompiled))
	})

	return e.err
}

// Program returns the compiled program without compiling it.
func (e *Executor) Program() (*script.Program, error) {
	switch e.State() {
	case StateUncompiled:
		return nil, ErrNotCompiled
	case StateFailedToCompile:
		return nil, e.err
	}

	return e.prog, nil
}

// State reports the lifecycle state.
func (e *Executor) State() State {
	if e.running.Load() > 0 {
		return StateRunning
	}

	return State(e.compiled.Load())
}

// Code returns the code the executor runs.
func (e *Executor) Code() *gen.Code {
	return e.code
}

// Run maps one record. The returned error is the program's own: a
// *script.DiscardError when the record asked to be skipped, a
// *script.CompileError when the code does not compile, otherwise a runtime
// error.
func (e *Executor) Run(ctx context.Context, rec *record.Record) (*builder.Document, error) {
	if err := e.Compile(); err != nil {
		return nil, err
	}

	if rec == nil || rec.Root == nil {
		return nil, fmt.Errorf("record has no content")
	}

	e.running.Add(1)
	defer e.running.Add(-1)

	b := builder.New(e.def)
	entry := e.log.WithRecord(rec.ID)

	err := e.prog.Run(ctx, &script.Binding{
		Input:     rec.Root,
		RecordID:  rec.ID,
		Output:    b,
		Facts:     e.facts,
		OptLookup: e.optLookup,
		Trace: func(msg string) {
			entry.Debug(msg)
		},
	})
	if err != nil {
		return nil, err
	}

	return b.Finish(), nil
}
