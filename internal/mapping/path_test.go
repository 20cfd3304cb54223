package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	p, err := ParsePath("/input/metadata/dc:title/@xml:lang")
	require.NoError(t, err)

	require.Equal(t, 4, p.Len())
	assert.Equal(t, "input", p.Segments[0].Name)
	assert.Equal(t, "dc:title", p.Segments[2].Name)
	assert.Equal(t, "title", p.Segments[2].Local())
	assert.True(t, p.IsAttr())
	assert.Equal(t, "xml:lang", p.Last().Name)
	assert.Equal(t, "/input/metadata/dc:title/@xml:lang", p.String())
	assert.Equal(t, "/input/metadata/dc:title", p.Parent().String())
}

func TestParsePath_Errors(t *testing.T) {
	for _, bad := range []string{
		"",
		"input/a",
		"/input//a",
		"/input/@a/b",
		"/@a",
		"/input/1abc",
		"/input/a:b:c",
		"/input/a b",
	} {
		t.Run(bad, func(t *testing.T) {
			_, err := ParsePath(bad)
			assert.Error(t, err)
		})
	}
}

func TestPath_PrefixAndRel(t *testing.T) {
	p := MustParsePath("/input/a/b/@c")
	q := MustParsePath("/input/a")

	assert.True(t, p.HasPrefix(q))
	assert.True(t, p.HasPrefix(p))
	assert.False(t, q.HasPrefix(p))
	assert.False(t, p.HasPrefix(MustParsePath("/input/b")))

	rel := p.Rel(q)
	require.Len(t, rel, 2)
	assert.Equal(t, "b", rel[0].String())
	assert.Equal(t, "@c", rel[1].String())

	assert.Nil(t, q.Rel(p))
	assert.Panics(t, func() { MustParsePath("nope") })
}
