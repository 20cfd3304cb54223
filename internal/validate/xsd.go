package validate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/jacoelho/xsd"
	xsderrors "github.com/jacoelho/xsd/errors"

	"sip-creator/internal/recdef"
)

// ErrNoSchemaLocation means the record definition does not point at an XML
// schema for its target namespace.
var ErrNoSchemaLocation = errors.New("record definition has no schema location")

type compiledSchema interface {
	Validate(r io.Reader) error
}

// XSDValidator validates serialized records against the XML schema of the
// record definition.
type XSDValidator struct {
	location string

	mu     sync.Mutex
	schema compiledSchema
}

// NewXSDValidator compiles the schema at location. Imports and includes are
// resolved inside fsys.
func NewXSDValidator(fsys fs.FS, location string) (*XSDValidator, error) {
	if location == "" {
		return nil, ErrNoSchemaLocation
	}

	schema, err := xsd.Load(fsys, location)
	if err != nil {
		return nil, fmt.Errorf("loading schema %s: %w", location, err)
	}

	return &XSDValidator{location: location, schema: schema}, nil
}

// SchemaLocation picks the schema of the definition's own namespace, or the
// first namespace that names one.
func SchemaLocation(def *recdef.Definition) string {
	var first string

	for _, ns := range def.Namespaces {
		if ns.SchemaLocation == "" {
			continue
		}

		if ns.Prefix == def.DefaultPrefix {
			return ns.SchemaLocation
		}

		if first == "" {
			first = ns.SchemaLocation
		}
	}

	return first
}

// Validate reports every schema violation as an error. Anything that is not
// a violation list, such as unreadable input, is fatal.
func (v *XSDValidator) Validate(xml string, h ErrorHandler) {
	v.mu.Lock()
	err := v.schema.Validate(strings.NewReader(xml))
	v.mu.Unlock()

	if err == nil {
		return
	}

	var violations xsderrors.ValidationList
	if !errors.As(err, &violations) {
		h.Fatal(err)
		return
	}

	for _, violation := range violations {
		h.Error(fmt.Errorf("%v", violation))
	}
}

// NewSchemaValidator returns an XSDValidator when fsys holds the schema of
// the definition and a DefinitionValidator otherwise.
func NewSchemaValidator(tree *recdef.Tree, fsys fs.FS) (SchemaValidator, error) {
	location := SchemaLocation(tree.Definition())
	if fsys == nil || location == "" {
		return NewDefinitionValidator(tree), nil
	}

	v, err := NewXSDValidator(fsys, location)
	if err != nil {
		return nil, err
	}

	return v, nil
}
