package mapping

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Path is a parsed slash path into a record or a record definition.
type Path struct {
	Segments []Segment
}

// Segment is one step of a Path.
type Segment struct {
	// Name is the qualified name without the "@" marker.
	Name string
	// IsAttr is set for the final "@name" segment.
	IsAttr bool
}

// String renders the segment as written in a path.
func (s Segment) String() string {
	if s.IsAttr {
		return "@" + s.Name
	}

	return s.Name
}

// Local returns the name without its prefix.
func (s Segment) Local() string {
	if i := strings.IndexByte(s.Name, ':'); i >= 0 {
		return s.Name[i+1:]
	}

	return s.Name
}

// ParsePath parses "/a/b:c/@d" into a Path.
func ParsePath(path string) (Path, error) {
	if path == "" {
		return Path{}, errors.New("empty path")
	}

	if !strings.HasPrefix(path, "/") {
		return Path{}, fmt.Errorf("invalid path %q: must start with /", path)
	}

	parts := strings.Split(path[1:], "/")
	segments := make([]Segment, 0, len(parts))

	for i, part := range parts {
		if part == "" {
			return Path{}, fmt.Errorf("invalid path %q: empty segment", path)
		}

		seg := Segment{Name: part}

		if strings.HasPrefix(part, "@") {
			if i != len(parts)-1 {
				return Path{}, fmt.Errorf("invalid path %q: attribute %s must be the last segment", path, part)
			}

			if i == 0 {
				return Path{}, fmt.Errorf("invalid path %q: attribute without element", path)
			}

			seg = Segment{Name: part[1:], IsAttr: true}
		}

		if !isQName(seg.Name) {
			return Path{}, fmt.Errorf("invalid path %q: invalid name %q", path, seg.Name)
		}

		segments = append(segments, seg)
	}

	return Path{Segments: segments}, nil
}

// MustParsePath is ParsePath for literals known to be valid.
func MustParsePath(path string) Path {
	p, err := ParsePath(path)
	if err != nil {
		panic(err)
	}

	return p
}

// String renders the path.
func (p Path) String() string {
	var sb strings.Builder

	for _, s := range p.Segments {
		sb.WriteByte('/')
		sb.WriteString(s.String())
	}

	return sb.String()
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.Segments)
}

// Last returns the final segment.
func (p Path) Last() Segment {
	if len(p.Segments) == 0 {
		return Segment{}
	}

	return p.Segments[len(p.Segments)-1]
}

// IsAttr reports whether the path addresses an attribute.
func (p Path) IsAttr() bool {
	return p.Last().IsAttr
}

// Parent returns the path without its final segment.
func (p Path) Parent() Path {
	if len(p.Segments) == 0 {
		return p
	}

	return Path{Segments: p.Segments[:len(p.Segments)-1]}
}

// HasPrefix reports whether q is an ancestor-or-self of p.
func (p Path) HasPrefix(q Path) bool {
	if len(q.Segments) > len(p.Segments) {
		return false
	}

	for i, s := range q.Segments {
		if p.Segments[i] != s {
			return false
		}
	}

	return true
}

// Rel returns the segments of p below its ancestor q.
func (p Path) Rel(q Path) []Segment {
	if !p.HasPrefix(q) {
		return nil
	}

	return p.Segments[len(q.Segments):]
}

// isQName checks for an XML name with at most one prefix separator.
func isQName(s string) bool {
	prefix, local, found := strings.Cut(s, ":")
	if !found {
		return isNCName(s)
	}

	return isNCName(prefix) && isNCName(local)
}

func isNCName(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && (r == '-' || r == '.' || unicode.IsDigit(r)):
		default:
			return false
		}
	}

	return true
}
