package script

import "fmt"

// Pos is a 1-based line and column in program source.
type Pos struct {
	Line   int
	Column int
}

// String renders the position as "line:column".
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position is known.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokKeyword
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  Pos
	// nl is set when a line break separates this token from the previous one.
	nl bool
}

func (t token) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

func (t token) describe() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return fmt.Sprintf("string %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

var keywords = map[string]bool{
	"element": true,
	"for":     true,
	"in":      true,
	"let":     true,
	"if":      true,
	"else":    true,
	"discard": true,
	"true":    true,
	"false":   true,
	"nil":     true,
}
