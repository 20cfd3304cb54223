package script

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
)

// Program is a compiled program. It is immutable and safe for concurrent
// runs.
type Program struct {
	Name   string
	Hash   string
	Source string

	stmts []stmt
}

// Run executes the program against b. A discard statement surfaces as
// *DiscardError. Panics inside the interpreter are recovered into a
// *RuntimeError without position.
func (p *Program) Run(ctx context.Context, b *Binding) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &RuntimeError{Message: fmt.Sprint(r)}
		}
	}()

	in := &interp{ctx: ctx, source: p.Source, binding: b, call: &Call{Binding: b}}

	return in.exec(p.stmts, newScope(rootScope(b)))
}

// Expr is a compiled single expression.
type Expr struct {
	Source string

	x expr
}

// Eval evaluates the expression with vars as the only bindings.
func (e *Expr) Eval(vars map[string]Value) (v Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			v, err = nil, &RuntimeError{Message: fmt.Sprint(r)}
		}
	}()

	b := &Binding{Vars: vars}
	in := &interp{ctx: context.Background(), source: e.Source, binding: b, call: &Call{Binding: b}}

	sc := newScope(nil)
	for k, val := range vars {
		sc.vars[k] = val
	}

	return in.eval(e.x, sc)
}

// Compiler compiles programs and caches them by content hash. Create one per
// mapping context; Reset drops everything compiled so far.
type Compiler struct {
	mu         sync.Mutex
	builtins   *Registry
	programs   map[string]*Program
	exprs      map[string]*Expr
	generation int
	closed     bool
}

// NewCompiler creates a compiler with the standard builtins.
func NewCompiler() *Compiler {
	return NewCompilerWith(NewRegistry())
}

// NewCompilerWith creates a compiler using the given builtins.
func NewCompilerWith(builtins *Registry) *Compiler {
	return &Compiler{
		builtins: builtins,
		programs: make(map[string]*Program),
		exprs:    make(map[string]*Expr),
	}
}

// Builtins exposes the registry, e.g. to add functions.
func (c *Compiler) Builtins() *Registry {
	return c.builtins
}

// Hash returns the hex SHA-256 of source, the cache key of a program.
func Hash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Compile parses source. Every syntax problem is reported in one
// *CompileError.
func (c *Compiler) Compile(name, source string) (*Program, error) {
	key := Hash(source)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrCompilerClosed
	}

	if p, ok := c.programs[key]; ok {
		c.mu.Unlock()
		return p, nil
	}
	c.mu.Unlock()

	stmts, problems := parse(source, c.builtins)
	if len(problems) > 0 {
		return nil, &CompileError{Name: name, Problems: problems}
	}

	p := &Program{Name: name, Hash: key, Source: source, stmts: stmts}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCompilerClosed
	}

	if existing, ok := c.programs[key]; ok {
		return existing, nil
	}

	c.programs[key] = p

	return p, nil
}

// CompileExpr parses a single expression.
func (c *Compiler) CompileExpr(source string) (*Expr, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrCompilerClosed
	}

	if e, ok := c.exprs[source]; ok {
		c.mu.Unlock()
		return e, nil
	}
	c.mu.Unlock()

	x, problems := parseExpr(source, c.builtins)
	if len(problems) > 0 {
		return nil, &CompileError{Name: "expression", Problems: problems}
	}

	e := &Expr{Source: source, x: x}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCompilerClosed
	}

	c.exprs[source] = e

	return e, nil
}

// Eval compiles source as an expression and evaluates it against vars.
func (c *Compiler) Eval(source string, vars map[string]Value) (Value, error) {
	e, err := c.CompileExpr(source)
	if err != nil {
		return nil, err
	}

	return e.Eval(vars)
}

// Reset discards cached programs. Programs already handed out keep working.
func (c *Compiler) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.programs = make(map[string]*Program)
	c.exprs = make(map[string]*Expr)
	c.generation++
}

// Generation counts calls to Reset.
func (c *Compiler) Generation() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.generation
}

// Cached returns the number of cached programs.
func (c *Compiler) Cached() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.programs)
}

// Close drops the cache and rejects further compiles.
func (c *Compiler) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.programs = nil
	c.exprs = nil
	c.closed = true
}
