package script

import (
	"context"
	"errors"
	"fmt"
	"math"

	"sip-creator/internal/record"
)

// Sink receives the elements a program emits. Element creates one or more
// elements named name and runs body once inside each of them. attrs may be
// nil; content is nil when the statement has no text clause.
type Sink interface {
	Element(name string, attrs *Map, content Value, body func() error) error
}

// Binding is the per-run environment of a program.
type Binding struct {
	Input     *record.Node
	RecordID  string
	Output    Sink
	OptLookup map[string]map[string]string
	Facts     map[string]string
	// Vars are extra top-level variables.
	Vars map[string]Value
	// Trace receives trace() output; nil drops it.
	Trace func(string)
}

type scope struct {
	vars   map[string]Value
	parent *scope
}

func newScope(parent *scope) *scope {
	return &scope{vars: make(map[string]Value), parent: parent}
}

func (s *scope) lookup(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}

	return nil, false
}

func (s *scope) assign(name string, v Value) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return true
		}
	}

	return false
}

func rootScope(b *Binding) *scope {
	s := newScope(nil)

	if b == nil {
		return s
	}

	for k, v := range b.Vars {
		s.vars[k] = v
	}

	if b.Input != nil {
		s.vars[record.InputTag] = b.Input
	}

	s.vars["_id"] = b.RecordID
	s.vars["_facts"] = MapOf(b.Facts)

	opts := NewMap()
	for _, k := range MapOf(b.OptLookup).Keys() {
		opts.Set(k, MapOf(b.OptLookup[k]))
	}

	s.vars["_optLookup"] = opts

	return s
}

type interp struct {
	ctx     context.Context
	source  string
	binding *Binding
	call    *Call
}

func (in *interp) errorf(pos Pos, err error, format string, args ...any) error {
	return &RuntimeError{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
		Excerpt: Excerpt(in.source, pos),
		Err:     err,
	}
}

func (in *interp) exec(stmts []stmt, sc *scope) error {
	for _, s := range stmts {
		if err := in.stmt(s, sc); err != nil {
			return err
		}
	}

	return nil
}

func (in *interp) stmt(s stmt, sc *scope) error {
	switch s := s.(type) {
	case *elementStmt:
		return in.element(s, sc)

	case *forStmt:
		seq, err := in.eval(s.seq, sc)
		if err != nil {
			return err
		}

		for _, item := range Flatten(seq) {
			if err := in.ctx.Err(); err != nil {
				return err
			}

			inner := newScope(sc)
			inner.vars[s.name] = item

			if err := in.exec(s.body, inner); err != nil {
				return err
			}
		}

		return nil

	case *letStmt:
		v, err := in.eval(s.value, sc)
		if err != nil {
			return err
		}

		sc.vars[s.name] = v

		return nil

	case *assignStmt:
		v, err := in.eval(s.value, sc)
		if err != nil {
			return err
		}

		if !sc.assign(s.name, v) {
			return &MissingPropertyError{Name: s.name, Pos: s.pos}
		}

		return nil

	case *ifStmt:
		c, err := in.eval(s.cond, sc)
		if err != nil {
			return err
		}

		if Truthy(c) {
			return in.exec(s.then, newScope(sc))
		}

		return in.exec(s.els, newScope(sc))

	case *discardStmt:
		v, err := in.eval(s.reason, sc)
		if err != nil {
			return err
		}

		return &DiscardError{Reason: Text(v)}

	case *exprStmt:
		_, err := in.eval(s.x, sc)
		return err
	}

	return in.errorf(s.stmtPos(), nil, "unsupported statement %T", s)
}

func (in *interp) element(s *elementStmt, sc *scope) error {
	if in.binding == nil || in.binding.Output == nil {
		return in.errorf(s.pos, nil, "no output bound for element")
	}

	name, err := in.eval(s.name, sc)
	if err != nil {
		return err
	}

	tag, ok := name.(string)
	if !ok || tag == "" {
		return in.errorf(s.pos, nil, "element name must be a non-empty string, got %s", TypeName(name))
	}

	var attrs *Map

	if s.attrs != nil {
		v, err := in.eval(s.attrs, sc)
		if err != nil {
			return err
		}

		if v != nil {
			if attrs, ok = v.(*Map); !ok {
				return in.errorf(s.attrs.exprPos(), nil, "attrs must be a map, got %s", TypeName(v))
			}
		}
	}

	var content Value

	if s.text != nil {
		if content, err = in.eval(s.text, sc); err != nil {
			return err
		}
	}

	body := func() error {
		return in.exec(s.body, newScope(sc))
	}

	if err := in.binding.Output.Element(tag, attrs, content, body); err != nil {
		if isScriptError(err) {
			return err
		}

		return in.errorf(s.pos, err, "element %s: %v", tag, err)
	}

	return nil
}

// isScriptError reports errors already carrying their own position, which
// pass through element bodies untouched.
func isScriptError(err error) bool {
	var (
		d *DiscardError
		m *MissingPropertyError
		r *RuntimeError
	)

	return errors.As(err, &d) || errors.As(err, &m) || errors.As(err, &r) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (in *interp) eval(x expr, sc *scope) (Value, error) {
	switch x := x.(type) {
	case *literal:
		return x.value, nil

	case *ident:
		v, ok := sc.lookup(x.name)
		if !ok {
			return nil, &MissingPropertyError{Name: x.name, Pos: x.pos}
		}

		return v, nil

	case *listLit:
		out := make([]Value, 0, len(x.items))
		for _, item := range x.items {
			v, err := in.eval(item, sc)
			if err != nil {
				return nil, err
			}

			out = append(out, v)
		}

		return out, nil

	case *mapLit:
		m := NewMap()
		for i, k := range x.keys {
			v, err := in.eval(x.values[i], sc)
			if err != nil {
				return nil, err
			}

			m.Set(k, v)
		}

		return m, nil

	case *indexExpr:
		base, err := in.eval(x.x, sc)
		if err != nil {
			return nil, err
		}

		idx, err := in.eval(x.index, sc)
		if err != nil {
			return nil, err
		}

		v, err := index(base, idx)
		if err != nil {
			return nil, in.errorf(x.pos, err, "%v", err)
		}

		return v, nil

	case *callExpr:
		args := make([]Value, 0, len(x.args))
		for _, a := range x.args {
			v, err := in.eval(a, sc)
			if err != nil {
				return nil, err
			}

			args = append(args, v)
		}

		v, err := x.builtin.Fn(in.call, args)
		if err != nil {
			return nil, in.errorf(x.pos, err, "%s: %v", x.builtin.Name, err)
		}

		return v, nil

	case *unaryExpr:
		v, err := in.eval(x.x, sc)
		if err != nil {
			return nil, err
		}

		if x.op == "!" {
			return !Truthy(v), nil
		}

		f, ok := v.(float64)
		if !ok {
			return nil, in.errorf(x.pos, nil, "cannot negate %s", TypeName(v))
		}

		return -f, nil

	case *binaryExpr:
		return in.binary(x, sc)
	}

	return nil, in.errorf(x.exprPos(), nil, "unsupported expression %T", x)
}

func (in *interp) binary(x *binaryExpr, sc *scope) (Value, error) {
	a, err := in.eval(x.x, sc)
	if err != nil {
		return nil, err
	}

	switch x.op {
	case "&&":
		if !Truthy(a) {
			return false, nil
		}

		b, err := in.eval(x.y, sc)
		if err != nil {
			return nil, err
		}

		return Truthy(b), nil
	case "||":
		if Truthy(a) {
			return true, nil
		}

		b, err := in.eval(x.y, sc)
		if err != nil {
			return nil, err
		}

		return Truthy(b), nil
	}

	b, err := in.eval(x.y, sc)
	if err != nil {
		return nil, err
	}

	switch x.op {
	case "==":
		return Equal(a, b), nil
	case "!=":
		return !Equal(a, b), nil
	case "+":
		return in.plus(x.pos, a, b)
	case "-":
		fa, okA := a.(float64)
		fb, okB := b.(float64)

		if !okA || !okB {
			return nil, in.errorf(x.pos, nil, "cannot subtract %s from %s", TypeName(b), TypeName(a))
		}

		return fa - fb, nil
	}

	c, ok := compare(a, b)
	if !ok {
		return nil, in.errorf(x.pos, nil, "cannot compare %s with %s", TypeName(a), TypeName(b))
	}

	switch x.op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

func (in *interp) plus(pos Pos, a, b Value) (Value, error) {
	fa, okA := a.(float64)
	fb, okB := b.(float64)

	if okA && okB {
		return fa + fb, nil
	}

	la, listA := a.([]Value)
	lb, listB := b.([]Value)

	switch {
	case listA && listB:
		out := make([]Value, 0, len(la)+len(lb))
		return append(append(out, la...), lb...), nil
	case listA || listB:
		return nil, in.errorf(pos, nil, "cannot add %s and %s", TypeName(a), TypeName(b))
	}

	return Text(a) + Text(b), nil
}

func compare(a, b Value) (int, bool) {
	if n, ok := a.(*record.Node); ok {
		a = n.Text
	}

	if n, ok := b.(*record.Node); ok {
		b = n.Text
	}

	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, false
		}

		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}

		return 0, true
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}

		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}

		return 0, true
	}

	return 0, false
}

func index(base, idx Value) (Value, error) {
	switch x := base.(type) {
	case nil:
		return nil, nil

	case *record.Node:
		name, ok := idx.(string)
		if !ok {
			return nil, fmt.Errorf("cannot index node with %s", TypeName(idx))
		}

		if len(name) > 1 && name[0] == '@' {
			v, found := x.Attr(name[1:])
			if !found {
				return nil, nil
			}

			return v, nil
		}

		return nodesOf(x.ChildrenNamed(name)), nil

	case []Value:
		if f, ok := idx.(float64); ok {
			i := int(f)
			if f != math.Trunc(f) || i < 0 || i >= len(x) {
				return nil, nil
			}

			return x[i], nil
		}

		out := make([]Value, 0, len(x))
		for _, e := range x {
			v, err := index(e, idx)
			if err != nil {
				return nil, err
			}

			out = append(out, Flatten(v)...)
		}

		return out, nil

	case *Map:
		v, _ := x.Get(Text(idx))
		return v, nil
	}

	return nil, fmt.Errorf("cannot index %s", TypeName(base))
}
