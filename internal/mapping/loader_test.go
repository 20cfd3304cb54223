package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	rm, err := Parse([]byte(testMapping))
	require.NoError(t, err)

	assert.Equal(t, "1", rm.Version)
	assert.Equal(t, "edm", rm.Prefix)
	assert.Equal(t, "Example Museum", rm.Facts["provider"])
	assert.Nil(t, rm.OneToOne)

	require.Len(t, rm.NodeMappings, 4)

	// 121 shorthand is expanded first
	first := rm.NodeMappings[0]
	assert.Equal(t, "/rdf:RDF/edm:ProvidedCHO/@rdf:about", first.Output)
	assert.Equal(t, InputPaths{"/input/header/identifier"}, first.Input)

	title := rm.NodeMappings[1]
	assert.Equal(t, "the main title", title.Documentation)
	assert.True(t, title.Input.IsSingle())

	dict := rm.NodeMappings[2]
	assert.Equal(t, "IMAGE", dict.Dictionary["photo"])

	constant := rm.NodeMappings[3]
	assert.True(t, constant.IsConstant())
	assert.Equal(t, "Example Museum", constant.Constant)
}

func TestParse_InputList(t *testing.T) {
	rm, err := Parse([]byte(`
prefix: x
node_mappings:
  - output: /r/a
    input: [/input/b, /input/c]
    code: |
      element "a" text _b + _c
`))
	require.NoError(t, err)
	require.Len(t, rm.NodeMappings, 1)

	nm := rm.NodeMappings[0]
	assert.Equal(t, InputPaths{"/input/b", "/input/c"}, nm.Input)
	assert.True(t, nm.HasCustomCode())
	assert.Equal(t, "/input/b", nm.Input.First())
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("node_mappings:\n  - output: /r\n    input: {a: b}\n"))
	assert.Error(t, err)
}

func TestMarshal_SingleInputAsScalar(t *testing.T) {
	rm := &RecMapping{
		Prefix: "x",
		NodeMappings: []*NodeMapping{
			{Output: "/r/a", Input: InputPaths{"/input/a"}},
		},
	}

	data, err := Marshal(rm)
	require.NoError(t, err)
	assert.Contains(t, string(data), "input: /input/a\n")
}

func TestNormalize_IsDeterministic(t *testing.T) {
	rm := &RecMapping{OneToOne: map[string]string{
		"/input/z": "/r/z",
		"/input/a": "/r/a",
		"/input/m": "/r/m",
	}}

	Normalize(rm)

	require.Len(t, rm.NodeMappings, 3)
	assert.Equal(t, "/r/a", rm.NodeMappings[0].Output)
	assert.Equal(t, "/r/m", rm.NodeMappings[1].Output)
	assert.Equal(t, "/r/z", rm.NodeMappings[2].Output)
}

func TestInputPaths_YAML(t *testing.T) {
	rm, err := Parse([]byte(`
prefix: edm
node_mappings:
  - output: /r/a
    input: "  /input/a  "
  - output: /r/b
    input: ""
    constant: fixed
`))
	require.NoError(t, err)
	assert.Equal(t, InputPaths{"/input/a"}, rm.NodeMappings[0].Input)
	assert.True(t, rm.NodeMappings[1].Input.HasConstant())

	_, err = Parse([]byte(`
prefix: edm
node_mappings:
  - output: /r/a
    input: [/input/a, "  "]
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blank input path")

	_, err = Parse([]byte(`
prefix: edm
node_mappings:
  - output: /r/a
    input: {path: /input/a}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input must be a path or a list of paths")
}
