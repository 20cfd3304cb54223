package engine

import (
	"errors"
	"strings"

	"sip-creator/internal/script"
)

// IsDiscard reports whether err asks to skip the record, with the reason.
func IsDiscard(err error) (string, bool) {
	var d *script.DiscardError
	if errors.As(err, &d) {
		return d.Reason, true
	}

	return "", false
}

// IsMissingProperty reports whether err is a reference to an unbound name.
func IsMissingProperty(err error) bool {
	var m *script.MissingPropertyError
	return errors.As(err, &m)
}

// IsCompile reports whether err is a compile failure.
func IsCompile(err error) bool {
	var c *script.CompileError
	return errors.As(err, &c)
}

// ExcerptFor renders the source lines err points at, or "" when err carries
// no position.
func ExcerptFor(err error, source string) string {
	var (
		rt *script.RuntimeError
		mp *script.MissingPropertyError
		ce *script.CompileError
	)

	switch {
	case errors.As(err, &rt):
		if rt.Excerpt != "" {
			return rt.Excerpt
		}

		return script.Excerpt(source, rt.Pos)
	case errors.As(err, &mp):
		return script.Excerpt(source, mp.Pos)
	case errors.As(err, &ce):
		parts := make([]string, 0, len(ce.Problems))
		for _, p := range ce.Problems {
			if ex := script.Excerpt(source, p.Pos); ex != "" {
				parts = append(parts, p.Message+"\n"+ex)
			}
		}

		return strings.Join(parts, "\n")
	}

	return ""
}
