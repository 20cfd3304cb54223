package validate

import (
	"fmt"
	"strings"

	"sip-creator/internal/diagnostic"
	"sip-creator/internal/recdef"
	"sip-creator/internal/record"
)

// Diagnostic codes.
const (
	CodeSchemaWarning   = "schema_warning"
	CodeSchemaError     = "schema_error"
	CodeSchemaFatal     = "schema_fatal"
	CodeRequiredMissing = "required_missing"
	CodeTooMany         = "too_many"
	CodeAssertion       = "assertion"
	CodeInvalidURI      = "invalid_uri"
	CodeRDF             = "rdf"
)

// ErrorHandler receives schema problems as the validator finds them.
type ErrorHandler interface {
	Warning(err error)
	Error(err error)
	Fatal(err error)
}

// SchemaValidator checks a serialized record. It reports through h and never
// stops at the first problem unless it cannot continue.
type SchemaValidator interface {
	Validate(xml string, h ErrorHandler)
}

// CollectingHandler accumulates every callback.
type CollectingHandler struct {
	diags diagnostic.Diagnostics
}

func (h *CollectingHandler) Warning(err error) {
	h.diags.AddWarning(CodeSchemaWarning, err.Error(), "", "")
}

func (h *CollectingHandler) Error(err error) {
	h.diags.AddError(CodeSchemaError, err.Error(), "", "")
}

func (h *CollectingHandler) Fatal(err error) {
	h.diags.AddError(CodeSchemaFatal, err.Error(), "", "")
}

// Len is the number of problems collected.
func (h *CollectingHandler) Len() int {
	return len(h.diags.Errors) + len(h.diags.Warnings)
}

// Message joins every problem, warnings last, one per line.
func (h *CollectingHandler) Message() string {
	parts := make([]string, 0, h.Len())

	for _, d := range h.diags.Errors {
		parts = append(parts, d.String())
	}

	for _, d := range h.diags.Warnings {
		parts = append(parts, d.String())
	}

	return strings.Join(parts, "\n")
}

// DefinitionValidator checks that a serialized record only uses elements and
// attributes of the record definition, in the places it allows them.
type DefinitionValidator struct {
	tree     *recdef.Tree
	prefixes map[string]string
}

// NewDefinitionValidator validates against tree.
func NewDefinitionValidator(tree *recdef.Tree) *DefinitionValidator {
	def := tree.Definition()
	prefixes := map[string]string{record.XMLNamespace: "xml"}

	for _, ns := range def.Namespaces {
		prefixes[ns.URI] = ns.Prefix
	}

	return &DefinitionValidator{tree: tree, prefixes: prefixes}
}

func (v *DefinitionValidator) Validate(xml string, h ErrorHandler) {
	root, err := record.Parse(strings.NewReader(xml))
	if err != nil {
		h.Fatal(err)
		return
	}

	tag, ok := v.tag(root.Name, false, "/")
	if !ok {
		h.Fatal(fmt.Errorf("root element is %s, expected %s", root.Name, v.tree.Node(v.tree.Root()).Tag))
		return
	}

	v.element(root, "/"+tag, h)
}

func (v *DefinitionValidator) element(n *record.Node, path string, h ErrorHandler) {
	for _, a := range n.Attrs {
		if _, ok := v.tag(a.Name, true, path+"/@"); !ok {
			h.Error(fmt.Errorf("attribute %s is not allowed on %s", a.Name, path))
		}
	}

	for _, c := range n.Children {
		tag, ok := v.tag(c.Name, false, path+"/")
		if !ok {
			h.Error(fmt.Errorf("element %s is not allowed in %s", c.Name, path))
			continue
		}

		v.element(c, path+"/"+tag, h)
	}
}

// tag finds the definition tag of name that exists at under+tag in the tree.
func (v *DefinitionValidator) tag(name record.QName, isAttr bool, under string) (string, bool) {
	var candidates []string

	if name.Space == "" {
		if def := v.tree.Definition().DefaultPrefix; def != "" {
			candidates = append(candidates, def+":"+name.Local)
		}

		candidates = append(candidates, name.Local)
	} else {
		prefix, ok := v.prefixes[name.Space]
		if !ok {
			return "", false
		}

		candidates = append(candidates, prefix+":"+name.Local)
	}

	for _, c := range candidates {
		if id, ok := v.tree.Lookup(under + c); ok && v.tree.Node(id).IsAttr == isAttr {
			return c, true
		}
	}

	return "", false
}
