package match

import (
	"strings"
	"unicode"
)

// NormalizeName folds an XML qualified name for fuzzy matching: the prefix
// and a leading "@" are dropped, the rest is lower-cased and stripped of
// separators. "dc:Date_Created" and "@dateCreated" both become "datecreated".
func NormalizeName(name string) string {
	name = strings.TrimPrefix(name, "@")

	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[i+1:]
	}

	var sb strings.Builder

	for _, r := range name {
		if r == '_' || r == '-' || r == '.' || unicode.IsSpace(r) {
			continue
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

// lastSegment returns the part of a slash path after the final slash.
func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}

	return path
}

// parentPath returns the path without its last segment.
func parentPath(path string) string {
	if i := strings.LastIndexByte(path, '/'); i > 0 {
		return path[:i]
	}

	return ""
}
