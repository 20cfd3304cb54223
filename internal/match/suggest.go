package match

import (
	"sort"
	"strings"
)

// MinSuggestionScore is the lowest score a candidate needs to be suggested.
const MinSuggestionScore = 0.6

// Suggestion is one ranked candidate path.
type Suggestion struct {
	Path  string
	Score float64
}

// Suggest ranks candidates against missing and returns at most limit paths
// scoring at least MinSuggestionScore, best first. The name of the last
// segment weighs most; a matching parent path and a matching node kind
// (attribute or element) add to the score.
func Suggest(missing string, candidates []string, limit int) []Suggestion {
	want := NormalizeName(lastSegment(missing))
	wantAttr := strings.HasPrefix(lastSegment(missing), "@")
	wantParent := parentPath(missing)

	var out []Suggestion

	for _, c := range candidates {
		if c == missing {
			continue
		}

		last := lastSegment(c)
		if strings.HasPrefix(last, "@") != wantAttr {
			continue
		}

		score := 0.8 * Similarity(want, NormalizeName(last))
		if parentPath(c) == wantParent {
			score += 0.2
		} else {
			score += 0.2 * Similarity(wantParent, parentPath(c))
		}

		if score >= MinSuggestionScore {
			out = append(out, Suggestion{Path: c, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}

		return out[i].Path < out[j].Path
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}
