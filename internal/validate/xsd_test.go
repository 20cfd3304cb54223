package validate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sip-creator/internal/config"
	"sip-creator/internal/recdef"
	"sip-creator/internal/script"
)

const recordSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
  <xs:element name="record">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="title" type="xs:string"/>
        <xs:element name="count" type="xs:integer" minOccurs="0"/>
      </xs:sequence>
    </xs:complexType>
  </xs:element>
</xs:schema>
`

func schemaFS() fstest.MapFS {
	return fstest.MapFS{"schemas/record.xsd": {Data: []byte(recordSchema)}}
}

func TestXSDValidator(t *testing.T) {
	v, err := NewXSDValidator(schemaFS(), "schemas/record.xsd")
	require.NoError(t, err)

	h := &CollectingHandler{}
	v.Validate(`<record><title>Mona Lisa</title><count>3</count></record>`, h)
	assert.Zero(t, h.Len(), h.Message())

	tests := map[string]string{
		"order":   `<record><count>3</count><title>Mona Lisa</title></record>`,
		"type":    `<record><title>Mona Lisa</title><count>three</count></record>`,
		"missing": `<record><count>3</count></record>`,
		"root":    `<other/>`,
	}

	for name, xml := range tests {
		t.Run(name, func(t *testing.T) {
			h := &CollectingHandler{}
			v.Validate(xml, h)

			assert.NotZero(t, h.Len())
			assert.Contains(t, h.Message(), "[schema_")
		})
	}
}

func TestNewXSDValidator_Errors(t *testing.T) {
	_, err := NewXSDValidator(schemaFS(), "")
	assert.ErrorIs(t, err, ErrNoSchemaLocation)

	_, err = NewXSDValidator(schemaFS(), "schemas/missing.xsd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading schema schemas/missing.xsd")
}

func TestSchemaLocation(t *testing.T) {
	def := &recdef.Definition{
		DefaultPrefix: "edm",
		Namespaces: []recdef.Namespace{
			{Prefix: "dc", URI: "http://purl.org/dc/elements/1.1/", SchemaLocation: "dc.xsd"},
			{Prefix: "edm", URI: "http://www.europeana.eu/schemas/edm/", SchemaLocation: "edm.xsd"},
		},
	}
	assert.Equal(t, "edm.xsd", SchemaLocation(def))

	def.DefaultPrefix = "rdf"
	assert.Equal(t, "dc.xsd", SchemaLocation(def))

	assert.Empty(t, SchemaLocation(&recdef.Definition{}))
}

func TestNewSchemaValidator_FallsBackToDefinition(t *testing.T) {
	tree := testTree(t)

	v, err := NewSchemaValidator(tree, nil)
	require.NoError(t, err)
	assert.IsType(t, &DefinitionValidator{}, v)

	// the test definition names no schema location
	v, err = NewSchemaValidator(tree, schemaFS())
	require.NoError(t, err)
	assert.IsType(t, &DefinitionValidator{}, v)
}

func TestNewPipelineWithSchemas(t *testing.T) {
	def := testTree(t).Definition()
	def.Namespaces[0].SchemaLocation = "schemas/edm.xsd"

	tree, err := recdef.Build(def)
	require.NoError(t, err)

	_, err = NewPipelineWithSchemas(tree, script.NewCompiler(), config.ValidationConfig{Schema: true}, schemaFS())
	assert.ErrorContains(t, err, "loading schema schemas/edm.xsd")

	p, err := NewPipelineWithSchemas(tree, script.NewCompiler(), config.ValidationConfig{Schema: false}, schemaFS())
	require.NoError(t, err)
	assert.Nil(t, p.Schema)
}
