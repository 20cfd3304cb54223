package script

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	src      string
	off      int
	line     int
	col      int
	problems []Problem
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, col: 1}
}

func (l *lexer) errorf(pos Pos, format string, args ...any) {
	l.problems = append(l.problems, Problem{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (l *lexer) peek() rune {
	if l.off >= len(l.src) {
		return -1
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.off:])

	return r
}

func (l *lexer) next() rune {
	if l.off >= len(l.src) {
		return -1
	}

	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	return r
}

// tokens scans the whole source. Lexical errors are recorded as problems and
// the offending rune is skipped.
func (l *lexer) tokens() []token {
	var out []token

	nl := true

	for {
		// whitespace and comments
		for {
			r := l.peek()
			if r == '\n' {
				nl = true
				l.next()

				continue
			}

			if r == '#' {
				for l.peek() != '\n' && l.peek() != -1 {
					l.next()
				}

				continue
			}

			if r != -1 && unicode.IsSpace(r) {
				l.next()
				continue
			}

			break
		}

		pos := Pos{Line: l.line, Column: l.col}
		r := l.peek()

		if r == -1 {
			out = append(out, token{kind: tokEOF, pos: pos, nl: true})
			return out
		}

		tok, ok := l.scan(r, pos)
		if !ok {
			continue
		}

		tok.nl = nl
		nl = false
		out = append(out, tok)
	}
}

func (l *lexer) scan(r rune, pos Pos) (token, bool) {
	switch {
	case r == '_' || unicode.IsLetter(r):
		start := l.off
		for r := l.peek(); r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r); r = l.peek() {
			l.next()
		}

		word := l.src[start:l.off]
		if keywords[word] {
			return token{kind: tokKeyword, text: word, pos: pos}, true
		}

		return token{kind: tokIdent, text: word, pos: pos}, true

	case unicode.IsDigit(r):
		start := l.off
		for r := l.peek(); unicode.IsDigit(r) || r == '.'; r = l.peek() {
			l.next()
		}

		return token{kind: tokNumber, text: l.src[start:l.off], pos: pos}, true

	case r == '"' || r == '\'':
		return l.scanString(pos)
	}

	l.next()

	two := string(r) + string(l.peek())
	switch two {
	case "==", "!=", "<=", ">=", "&&", "||":
		l.next()
		return token{kind: tokPunct, text: two, pos: pos}, true
	}

	if strings.ContainsRune("{}[](),:.=<>+-!", r) {
		return token{kind: tokPunct, text: string(r), pos: pos}, true
	}

	l.errorf(pos, "unexpected character %q", r)

	return token{}, false
}

func (l *lexer) scanString(pos Pos) (token, bool) {
	quote := l.next()

	var sb strings.Builder

	for {
		if r := l.peek(); r == -1 || r == '\n' {
			l.errorf(pos, "unterminated string")
			return token{kind: tokString, text: sb.String(), pos: pos}, true
		}

		r := l.next()

		switch r {
		case quote:
			return token{kind: tokString, text: sb.String(), pos: pos}, true
		case '\\':
			esc := l.next()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\', '"', '\'':
				sb.WriteRune(esc)
			default:
				l.errorf(Pos{Line: l.line, Column: l.col - 1}, "unknown escape \\%c", esc)
			}
		default:
			sb.WriteRune(r)
		}
	}
}

// Quote renders s as a string literal of the language.
func Quote(s string) string {
	var sb strings.Builder

	sb.WriteByte('"')

	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}

	sb.WriteByte('"')

	return sb.String()
}
