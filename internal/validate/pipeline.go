package validate

import (
	"io/fs"

	"sip-creator/internal/builder"
	"sip-creator/internal/config"
	"sip-creator/internal/diagnostic"
	"sip-creator/internal/recdef"
	"sip-creator/internal/script"
)

// Report holds the violations of one record, by stage.
type Report struct {
	Schema    []string
	Structure []string
	Content   []string
	RDF       []string
	// RDFOutput is the converted record when the RDF stage ran cleanly.
	RDFOutput string
}

// HasErrors reports whether any stage found a violation.
func (r *Report) HasErrors() bool {
	return len(r.Schema)+len(r.Structure)+len(r.Content)+len(r.RDF) > 0
}

// Pipeline runs the configured stages in order. Structure and content
// checks always run; the others are optional.
type Pipeline struct {
	Schema     SchemaValidator
	Tree       *recdef.Tree
	Assertions *Assertions
	URICheck   bool
	RDF        *RDFConverter
}

// NewPipeline assembles the stages selected by cfg for tree. The schema stage
// checks against the record definition.
func NewPipeline(tree *recdef.Tree, compiler *script.Compiler, cfg config.ValidationConfig) (*Pipeline, error) {
	return NewPipelineWithSchemas(tree, compiler, cfg, nil)
}

// NewPipelineWithSchemas is NewPipeline with the XML schemas of the record
// definition read from schemas. A nil schemas falls back to the definition.
func NewPipelineWithSchemas(tree *recdef.Tree, compiler *script.Compiler, cfg config.ValidationConfig, schemas fs.FS) (*Pipeline, error) {
	assertions, err := NewAssertions(compiler, tree.Definition())
	if err != nil {
		return nil, err
	}

	p := &Pipeline{Tree: tree, Assertions: assertions, URICheck: cfg.URI}

	if cfg.Schema {
		p.Schema, err = NewSchemaValidator(tree, schemas)
		if err != nil {
			return nil, err
		}
	}

	if cfg.RDF {
		format, err := ParseRDFFormat(cfg.RDFFormat)
		if err != nil {
			return nil, err
		}

		p.RDF = &RDFConverter{Format: format}
	}

	return p, nil
}

// Run validates doc, whose serialized form is xml.
func (p *Pipeline) Run(doc *builder.Document, xml string) *Report {
	r := &Report{}

	if p.Schema != nil {
		h := &CollectingHandler{}
		p.Schema.Validate(xml, h)

		if h.Len() > 0 {
			r.Schema = []string{h.Message()}
		}
	}

	if p.Tree != nil {
		r.Structure = messages(Structure(p.Tree, doc))
	}

	if p.Assertions != nil {
		r.Content = messages(p.Assertions.Check(doc))
	}

	if p.URICheck && p.Tree != nil {
		r.RDF = messages(URIs(p.Tree, doc))
	}

	if p.RDF != nil {
		out, err := p.RDF.Convert(xml)
		if err != nil {
			r.RDF = append(r.RDF, err.Error())
		} else if len(r.RDF) == 0 {
			r.RDFOutput = out
		}
	}

	return r
}

func messages(d diagnostic.Diagnostics) []string {
	if !d.HasErrors() {
		return nil
	}

	out := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		out = append(out, e.String())
	}

	return out
}
