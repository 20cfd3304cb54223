package gen

import (
	"strings"
)

// codeWriter accumulates indented program lines.
type codeWriter struct {
	sb     strings.Builder
	indent string
	depth  int
}

func (w *codeWriter) line(s string) {
	w.sb.WriteString(strings.Repeat(w.indent, w.depth))
	w.sb.WriteString(s)
	w.sb.WriteByte('\n')
}

// open writes s followed by an opening brace and indents what follows.
func (w *codeWriter) open(s string) {
	w.line(s + " {")
	w.depth++
}

func (w *codeWriter) close() {
	w.depth--
	w.line("}")
}

// block writes curator code at the current depth, keeping its relative
// indentation.
func (w *codeWriter) block(code string) {
	lines := strings.Split(strings.Trim(code, "\n"), "\n")

	common := -1

	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}

		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}

	for _, l := range lines {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			w.sb.WriteByte('\n')
			continue
		}

		w.line(l[common:])
	}
}

func (w *codeWriter) String() string {
	return w.sb.String()
}

// oneLine folds curator code for use inside an expression.
func oneLine(code string) string {
	return strings.Join(strings.Fields(code), " ")
}
