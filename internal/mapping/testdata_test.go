package mapping

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sip-creator/internal/recdef"
)

const testDefinition = `
prefix: edm
version: "5.2"
default_prefix: edm
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
          attrs:
            - tag: xml:lang
        - tag: dc:type
        - tag: edm:provider
`

const testMapping = `
prefix: edm
facts:
  provider: Example Museum
121:
  /input/header/identifier: /rdf:RDF/edm:ProvidedCHO/@rdf:about
node_mappings:
  - output: /rdf:RDF/edm:ProvidedCHO/dc:title
    input: /input/metadata/title
    documentation: the main title
  - output: /rdf:RDF/edm:ProvidedCHO/dc:type
    input: /input/metadata/type
    dictionary:
      photo: IMAGE
      book: TEXT
  - output: /rdf:RDF/edm:ProvidedCHO/edm:provider
    constant: Example Museum
`

func testTree(t *testing.T) *recdef.Tree {
	t.Helper()

	def, err := recdef.Parse([]byte(testDefinition))
	require.NoError(t, err)

	tree, err := recdef.Build(def)
	require.NoError(t, err)

	return tree
}
