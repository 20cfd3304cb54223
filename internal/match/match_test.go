package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"titel", "title", 2},
		{"überschrift", "uberschrift", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.expected, Levenshtein(tt.b, tt.a))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("title", "title"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 0.5, Similarity("ab", "ac"), 1e-9)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "datecreated", NormalizeName("dc:Date_Created"))
	assert.Equal(t, "datecreated", NormalizeName("@dateCreated"))
	assert.Equal(t, "lang", NormalizeName("@xml:lang"))
	assert.Equal(t, "title", NormalizeName("title"))
}

func TestSuggest(t *testing.T) {
	candidates := []string{
		"/input/metadata/dc:title",
		"/input/metadata/dc:titles",
		"/input/metadata/dc:creator",
		"/input/metadata/dc:title/@xml:lang",
		"/input/header/title",
	}

	all := Suggest("/input/metadata/title", candidates, 0)
	require.Len(t, all, 3)
	assert.Equal(t, "/input/metadata/dc:title", all[0].Path)

	var paths []string
	for _, s := range all {
		paths = append(paths, s.Path)
	}

	assert.ElementsMatch(t, []string{
		"/input/metadata/dc:title",
		"/input/metadata/dc:titles",
		"/input/header/title",
	}, paths)

	assert.Len(t, Suggest("/input/metadata/title", candidates, 1), 1)

	attrs := Suggest("/input/metadata/dc:title/@lang", candidates, 0)
	require.Len(t, attrs, 1)
	assert.Equal(t, "/input/metadata/dc:title/@xml:lang", attrs[0].Path)

	assert.Empty(t, Suggest("/input/zzz/qqqqq", candidates, 3))
}
