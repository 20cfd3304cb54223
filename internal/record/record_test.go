package record

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harvest = `<?xml version="1.0"?>
<harvest xmlns:dc="http://purl.org/dc/elements/1.1/">
  <record id="a1">
    <header><identifier>oai:1</identifier></header>
    <metadata>
      <dc:title xml:lang="en">  First title  </dc:title>
      <dc:title>Second</dc:title>
      <dc:creator/>
    </metadata>
  </record>
  <record id="a2">
    <header><identifier>oai:2</identifier></header>
    <metadata><dc:title>Other</dc:title></metadata>
  </record>
</harvest>`

func TestParse_ResolvesNamespacesAndTrimsText(t *testing.T) {
	root, err := Parse(strings.NewReader(harvest))
	require.NoError(t, err)

	assert.Equal(t, "harvest", root.Tag())
	require.Len(t, root.Children, 2)

	title := root.Children[0].Child("metadata").Child("dc:title")
	require.NotNil(t, title)
	assert.Equal(t, "First title", title.Text)
	assert.Equal(t, "http://purl.org/dc/elements/1.1/", title.Name.Space)
	assert.Equal(t, "dc", title.Name.Prefix)

	lang, ok := title.Attr("xml:lang")
	assert.True(t, ok)
	assert.Equal(t, "en", lang)
	assert.Equal(t, XMLNamespace, title.Attrs[0].Name.Space)

	creator := root.Children[0].Child("metadata").Child("dc:creator")
	require.NotNil(t, creator)
	assert.Equal(t, "", creator.Text)
	assert.Same(t, root.Children[0].Child("metadata"), creator.Parent())
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse(strings.NewReader("<a><b></a>"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParse_MismatchedTags(t *testing.T) {
	_, err := Parse(strings.NewReader("<input><title>x</input></title>"))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "element title closed by input")

	_, err = Parse(strings.NewReader("<input><dc:title>x</title></input>"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Parse(strings.NewReader("<input><title>x</title>"))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "element input is not closed")
}

func TestReader_MismatchedTags(t *testing.T) {
	rd := NewReader(strings.NewReader(`<harvest><record><title>x</record></title></harvest>`),
		ReaderConfig{RecordRoot: "/harvest/record"})

	_, err := rd.Next()
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "reading record 1")
}

func TestReader_StreamsRecords(t *testing.T) {
	rd := NewReader(strings.NewReader(harvest), ReaderConfig{
		RecordRoot: "/harvest/record",
		UniqueID:   "/input/header/identifier",
	})

	first, err := rd.Next()
	require.NoError(t, err)
	assert.Equal(t, "oai:1", first.ID)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, InputTag, first.Root.Tag())
	assert.Nil(t, first.Root.Parent())
	assert.Equal(t, []string{"a1"}, first.Root.Values("/input/@id"))
	assert.Equal(t, []string{"First title", "Second"}, first.Root.Values("/input/metadata/dc:title"))
	assert.Equal(t, "/input/metadata/dc:title", first.Root.Child("metadata").Child("dc:title").Path())

	second, err := rd.Next()
	require.NoError(t, err)
	assert.Equal(t, "oai:2", second.ID)

	_, err = rd.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestReader_FallsBackToRecordNumber(t *testing.T) {
	rd := NewReader(strings.NewReader(harvest), ReaderConfig{RecordRoot: "/harvest/record"})

	rec, err := rd.Next()
	require.NoError(t, err)
	assert.Equal(t, "1", rec.ID)
}

func TestStats(t *testing.T) {
	rd := NewReader(strings.NewReader(harvest), ReaderConfig{RecordRoot: "/harvest/record"})
	stats := NewStats()

	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)
		stats.Add(rec)
	}

	stats.Add(Poison())

	assert.Equal(t, 2, stats.Records())
	assert.True(t, stats.Contains("/input/metadata/dc:title"))
	assert.True(t, stats.Contains("/input/metadata/dc:title/@xml:lang"))
	assert.True(t, stats.Contains("/input/@id"))
	assert.False(t, stats.Contains("/input/metadata/dc:subject"))
	assert.Equal(t, 3, stats.Count("/input/metadata/dc:title"))
	assert.Contains(t, stats.Paths(), "/input/header/identifier")
}

func TestPoison(t *testing.T) {
	assert.True(t, Poison().IsPoison())
	assert.False(t, (&Record{ID: "x"}).IsPoison())
}
