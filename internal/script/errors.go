package script

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCompilerClosed is returned by a Compiler after Close.
var ErrCompilerClosed = errors.New("compiler closed")

// Problem is one compile problem at a source position.
type Problem struct {
	Pos     Pos
	Message string
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Pos, p.Message)
}

// CompileError carries every problem found while compiling one program.
type CompileError struct {
	Name     string
	Problems []Problem
}

func (e *CompileError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.String())
	}

	return fmt.Sprintf("compile %s: %s", e.Name, strings.Join(msgs, "; "))
}

// DiscardError is raised by the discard statement. It asks the caller to skip
// the record and is not a failure.
type DiscardError struct {
	Reason string
}

func (e *DiscardError) Error() string {
	return "discarded: " + e.Reason
}

// MissingPropertyError reports a reference to a variable that is not bound.
type MissingPropertyError struct {
	Name string
	Pos  Pos
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("%s: no such property: %s", e.Pos, e.Name)
}

// RuntimeError is a failure while running a program. Excerpt holds the
// offending source lines when the position is known.
type RuntimeError struct {
	Pos     Pos
	Message string
	Excerpt string
	Err     error
}

func (e *RuntimeError) Error() string {
	if !e.Pos.IsValid() {
		return "problem executing mapping: " + e.Message
	}

	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Excerpt renders the lines around pos with the offending line marked.
// It returns "" when pos is unknown or outside source.
func Excerpt(source string, pos Pos) string {
	if !pos.IsValid() {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	from := max(pos.Line-2, 1)
	to := min(pos.Line+1, len(lines))

	var sb strings.Builder

	for n := from; n <= to; n++ {
		marker := "   "
		if n == pos.Line {
			marker = ">> "
		}

		fmt.Fprintf(&sb, "%s%4d: %s\n", marker, n, lines[n-1])

		if n == pos.Line && pos.Column > 0 {
			fmt.Fprintf(&sb, "         %s^\n", strings.Repeat(" ", pos.Column-1))
		}
	}

	return sb.String()
}
