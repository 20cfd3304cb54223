package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sip-creator/internal/gen"
	"sip-creator/internal/mapping"
	"sip-creator/internal/recdef"
	"sip-creator/internal/record"
)

const testDefinition = `
prefix: edm
version: "5.2"
default_prefix: edm
element_form_qualified: true
namespaces:
  - prefix: edm
    uri: http://www.europeana.eu/schemas/edm/
  - prefix: dc
    uri: http://purl.org/dc/elements/1.1/
  - prefix: rdf
    uri: http://www.w3.org/1999/02/22-rdf-syntax-ns#
root:
  tag: rdf:RDF
  elems:
    - tag: edm:ProvidedCHO
      attrs:
        - tag: rdf:about
      elems:
        - tag: dc:title
        - tag: dc:type
opt_lists:
  - name: types
    options:
      - key: IMAGE
        value: Image
`

const testMapping = `
prefix: edm
facts:
  provider: Example Museum
node_mappings:
  - output: /rdf:RDF/edm:ProvidedCHO/@rdf:about
    input: /input/header/identifier
  - output: /rdf:RDF/edm:ProvidedCHO/dc:title
    input: /input/metadata/title
  - output: /rdf:RDF/edm:ProvidedCHO/dc:type
    input: /input/metadata/type
    code: element "dc:type" text _optLookup["types"][upper(_type)] + " from " + _facts["provider"]
`

const testRecord = `<input>
  <header><identifier>http://example.org/1</identifier></header>
  <metadata>
    <title>Mona Lisa</title>
    <type>image</type>
  </metadata>
</input>`

func fixtures(t *testing.T) (*mapping.RecMapping, *recdef.Tree) {
	t.Helper()

	def, err := recdef.Parse([]byte(testDefinition))
	require.NoError(t, err)

	tree, err := recdef.Build(def)
	require.NoError(t, err)

	rm, err := mapping.Parse([]byte(testMapping))
	require.NoError(t, err)

	return rm, tree
}

func testRec(t *testing.T, id string, xml string) *record.Record {
	t.Helper()

	root, err := record.Parse(strings.NewReader(xml))
	require.NoError(t, err)

	return &record.Record{ID: id, Root: root}
}

func generate(t *testing.T, rm *mapping.RecMapping, tree *recdef.Tree) *gen.Code {
	t.Helper()

	code, err := gen.NewGenerator(gen.DefaultGeneratorConfig()).Generate(rm, tree, nil, false)
	require.NoError(t, err)

	return code
}

func find(t *testing.T, rm *mapping.RecMapping, output string) *mapping.NodeMapping {
	t.Helper()

	for _, nm := range rm.NodeMappings {
		if nm.Output == output {
			return nm
		}
	}

	t.Fatalf("no node mapping for %s", output)

	return nil
}
