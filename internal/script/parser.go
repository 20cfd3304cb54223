package script

import (
	"fmt"
	"slices"
	"strconv"
)

const maxProblems = 25

var comparisons = []string{"==", "!=", "<", "<=", ">", ">="}

type parser struct {
	toks     []token
	p        int
	builtins *Registry
	problems []Problem
}

// bail aborts the current statement; the parser resynchronizes at the next
// line.
type bail struct{}

func parse(src string, builtins *Registry) ([]stmt, []Problem) {
	lx := newLexer(src)
	toks := lx.tokens()

	p := &parser{toks: toks, builtins: builtins, problems: lx.problems}
	stmts := p.stmts(false)

	return stmts, p.problems
}

func parseExpr(src string, builtins *Registry) (expr, []Problem) {
	lx := newLexer(src)
	p := &parser{toks: lx.tokens(), builtins: builtins, problems: lx.problems}

	var x expr

	func() {
		defer p.recoverBail()

		x = p.expr()
		if t := p.peek(); t.kind != tokEOF {
			p.errorf(t.pos, "unexpected %s after expression", t.describe())
		}
	}()

	return x, p.problems
}

func (p *parser) peek() token {
	return p.toks[p.p]
}

func (p *parser) advance() token {
	t := p.toks[p.p]
	if t.kind != tokEOF {
		p.p++
	}

	return t
}

func (p *parser) errorf(pos Pos, format string, args ...any) {
	if len(p.problems) < maxProblems {
		p.problems = append(p.problems, Problem{Pos: pos, Message: fmt.Sprintf(format, args...)})
	}
}

func (p *parser) fail(pos Pos, format string, args ...any) {
	p.errorf(pos, format, args...)
	panic(bail{})
}

func (p *parser) recoverBail() {
	if r := recover(); r != nil {
		if _, ok := r.(bail); !ok {
			panic(r)
		}
	}
}

func (p *parser) expect(kind tokenKind, text string) token {
	t := p.peek()
	if !t.is(kind, text) {
		p.fail(t.pos, "expected %q, found %s", text, t.describe())
	}

	return p.advance()
}

func (p *parser) expectIdent() token {
	t := p.peek()
	if t.kind != tokIdent {
		p.fail(t.pos, "expected identifier, found %s", t.describe())
	}

	return p.advance()
}

// sync skips to the first token of the next line, or to a closing brace.
func (p *parser) sync(start int) {
	if p.p == start {
		p.advance()
	}

	for {
		t := p.peek()
		if t.kind == tokEOF || t.nl || t.is(tokPunct, "}") {
			return
		}

		p.advance()
	}
}

func (p *parser) stmts(inBlock bool) []stmt {
	var out []stmt

	for {
		t := p.peek()
		if t.kind == tokEOF {
			return out
		}

		if t.is(tokPunct, "}") {
			if inBlock {
				return out
			}

			p.errorf(t.pos, "unexpected \"}\"")
			p.advance()

			continue
		}

		start := p.p

		if s, ok := p.stmtSafe(); ok {
			out = append(out, s)
			if next := p.peek(); next.kind != tokEOF && !next.nl && !next.is(tokPunct, "}") {
				p.errorf(next.pos, "unexpected %s at end of statement", next.describe())
				p.sync(p.p)
			}
		} else {
			p.sync(start)
		}
	}
}

func (p *parser) stmtSafe() (s stmt, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isBail := r.(bail); !isBail {
				panic(r)
			}

			ok = false
		}
	}()

	return p.stmt(), true
}

func (p *parser) block() []stmt {
	p.expect(tokPunct, "{")
	body := p.stmts(true)
	p.expect(tokPunct, "}")

	return body
}

func (p *parser) stmt() stmt {
	t := p.peek()

	if t.kind == tokKeyword {
		switch t.text {
		case "element":
			return p.elementStmt()
		case "for":
			p.advance()
			name := p.expectIdent()
			p.expect(tokKeyword, "in")
			seq := p.expr()

			return &forStmt{pos: t.pos, name: name.text, seq: seq, body: p.block()}
		case "let":
			p.advance()
			name := p.expectIdent()
			p.expect(tokPunct, "=")

			return &letStmt{pos: t.pos, name: name.text, value: p.expr()}
		case "if":
			return p.ifStmt()
		case "discard":
			p.advance()
			return &discardStmt{pos: t.pos, reason: p.expr()}
		}
	}

	if t.kind == tokIdent && p.toks[p.p+1].is(tokPunct, "=") {
		p.advance()
		p.advance()

		return &assignStmt{pos: t.pos, name: t.text, value: p.expr()}
	}

	return &exprStmt{x: p.expr()}
}

func (p *parser) elementStmt() stmt {
	t := p.advance()
	s := &elementStmt{pos: t.pos, name: p.expr()}

	if c := p.peek(); c.is(tokIdent, "attrs") && !c.nl {
		p.advance()
		s.attrs = p.expr()
	}

	if c := p.peek(); c.is(tokIdent, "text") && !c.nl {
		p.advance()
		s.text = p.expr()
	}

	if p.peek().is(tokPunct, "{") {
		s.body = p.block()
	}

	return s
}

func (p *parser) ifStmt() stmt {
	t := p.advance()
	s := &ifStmt{pos: t.pos, cond: p.expr()}
	s.then = p.block()

	if p.peek().is(tokKeyword, "else") {
		p.advance()

		if p.peek().is(tokKeyword, "if") {
			s.els = []stmt{p.ifStmt()}
		} else {
			s.els = p.block()
		}
	}

	return s
}

func (p *parser) expr() expr {
	return p.or()
}

func (p *parser) binary(next func() expr, ops ...string) expr {
	x := next()

	for {
		t := p.peek()
		if t.kind != tokPunct || t.nl || !slices.Contains(ops, t.text) {
			return x
		}

		p.advance()
		x = &binaryExpr{pos: t.pos, op: t.text, x: x, y: next()}
	}
}

func (p *parser) or() expr {
	return p.binary(p.and, "||")
}

func (p *parser) and() expr {
	return p.binary(p.cmp, "&&")
}

func (p *parser) cmp() expr {
	x := p.add()

	t := p.peek()
	if t.kind == tokPunct && !t.nl && slices.Contains(comparisons, t.text) {
		p.advance()
		return &binaryExpr{pos: t.pos, op: t.text, x: x, y: p.add()}
	}

	return x
}

func (p *parser) add() expr {
	return p.binary(p.unary, "+", "-")
}

func (p *parser) unary() expr {
	t := p.peek()
	if t.is(tokPunct, "!") || t.is(tokPunct, "-") {
		p.advance()
		return &unaryExpr{pos: t.pos, op: t.text, x: p.unary()}
	}

	return p.postfix()
}

func (p *parser) postfix() expr {
	x := p.primary()

	for {
		t := p.peek()
		if t.nl {
			return x
		}

		switch {
		case t.is(tokPunct, "["):
			p.advance()
			idx := p.expr()
			p.expect(tokPunct, "]")
			x = &indexExpr{pos: t.pos, x: x, index: idx}
		case t.is(tokPunct, "."):
			p.advance()
			name := p.expectIdent()
			x = &indexExpr{pos: t.pos, x: x, index: &literal{pos: name.pos, value: name.text}}
		case t.is(tokPunct, "("):
			p.fail(t.pos, "only builtin functions can be called")
		default:
			return x
		}
	}
}

func (p *parser) primary() expr {
	t := p.advance()

	switch t.kind {
	case tokString:
		return &literal{pos: t.pos, value: t.text}
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			p.fail(t.pos, "malformed number %q", t.text)
		}

		return &literal{pos: t.pos, value: f}
	case tokKeyword:
		switch t.text {
		case "true":
			return &literal{pos: t.pos, value: true}
		case "false":
			return &literal{pos: t.pos, value: false}
		case "nil":
			return &literal{pos: t.pos, value: nil}
		}
	case tokIdent:
		if p.peek().is(tokPunct, "(") && !p.peek().nl {
			return p.call(t)
		}

		return &ident{pos: t.pos, name: t.text}
	case tokPunct:
		switch t.text {
		case "(":
			x := p.expr()
			p.expect(tokPunct, ")")

			return x
		case "[":
			l := &listLit{pos: t.pos}
			for !p.peek().is(tokPunct, "]") {
				l.items = append(l.items, p.expr())
				if !p.peek().is(tokPunct, ",") {
					break
				}

				p.advance()
			}

			p.expect(tokPunct, "]")

			return l
		case "{":
			return p.mapLit(t)
		}
	}

	p.fail(t.pos, "unexpected %s", t.describe())

	return nil
}

func (p *parser) mapLit(open token) expr {
	m := &mapLit{pos: open.pos}

	for !p.peek().is(tokPunct, "}") {
		k := p.advance()
		if k.kind != tokString && k.kind != tokIdent {
			p.fail(k.pos, "map key must be a string, found %s", k.describe())
		}

		p.expect(tokPunct, ":")
		m.keys = append(m.keys, k.text)
		m.values = append(m.values, p.expr())

		if !p.peek().is(tokPunct, ",") {
			break
		}

		p.advance()
	}

	p.expect(tokPunct, "}")

	return m
}

func (p *parser) call(name token) expr {
	p.expect(tokPunct, "(")

	var args []expr

	for !p.peek().is(tokPunct, ")") {
		args = append(args, p.expr())
		if !p.peek().is(tokPunct, ",") {
			break
		}

		p.advance()
	}

	p.expect(tokPunct, ")")

	b, ok := p.builtins.Lookup(name.text)
	if !ok {
		p.errorf(name.pos, "unknown function %s", name.text)
		return &literal{pos: name.pos}
	}

	if len(args) < b.MinArgs || (b.MaxArgs >= 0 && len(args) > b.MaxArgs) {
		p.errorf(name.pos, "%s expects %s, got %d", b.Name, b.arity(), len(args))
	}

	return &callExpr{pos: name.pos, builtin: b, args: args}
}
