// Package recdef describes the target record schema: which elements and
// attributes a mapped record may contain, their cardinality, namespaces,
// value-option lists and content assertions.
package recdef

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Definition is the record definition of one target schema.
type Definition struct {
	Prefix  string `yaml:"prefix"`
	Version string `yaml:"version"`
	// DefaultPrefix is the schema's own target namespace prefix.
	DefaultPrefix string `yaml:"default_prefix,omitempty"`
	// ElementFormQualified mirrors elementFormDefault="qualified".
	ElementFormQualified bool `yaml:"element_form_qualified"`
	// AttributeFormQualified mirrors attributeFormDefault="qualified".
	AttributeFormQualified bool        `yaml:"attribute_form_qualified"`
	Namespaces             []Namespace `yaml:"namespaces"`
	Root                   Elem        `yaml:"root"`
	OptLists               []OptList   `yaml:"opt_lists,omitempty"`
	Assertions             []Assertion `yaml:"assertions,omitempty"`
}

// Namespace binds a prefix to a URI.
type Namespace struct {
	Prefix         string `yaml:"prefix"`
	URI            string `yaml:"uri"`
	SchemaLocation string `yaml:"schema_location,omitempty"`
}

// Elem is one element of the target schema.
type Elem struct {
	Tag string `yaml:"tag"`
	Doc string `yaml:"doc,omitempty"`
	// Required means at least one occurrence whenever the parent exists.
	Required bool `yaml:"required,omitempty"`
	// Singular means at most one occurrence per parent.
	Singular bool `yaml:"singular,omitempty"`
	// URI marks text content that must be an absolute URI.
	URI   bool   `yaml:"uri,omitempty"`
	Attrs []Attr `yaml:"attrs,omitempty"`
	Elems []Elem `yaml:"elems,omitempty"`
}

// Attr is one attribute of a target element.
type Attr struct {
	Tag      string `yaml:"tag"`
	Required bool   `yaml:"required,omitempty"`
	URI      bool   `yaml:"uri,omitempty"`
}

// OptList is a value-option lookup table.
type OptList struct {
	Name    string `yaml:"name"`
	Options []Opt  `yaml:"options"`
}

// Opt is one entry of an OptList.
type Opt struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Assertion is a content rule checked against every output value at Path.
// Condition is an expression in the transform language with "value" bound to
// the text (or attribute value) found; a non-empty string result is a violation.
type Assertion struct {
	Path      string `yaml:"path"`
	Condition string `yaml:"condition"`
}

// Parse decodes a YAML record definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition

	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse record definition YAML: %w", err)
	}

	if def.Root.Tag == "" {
		return nil, fmt.Errorf("record definition %q has no root element", def.Prefix)
	}

	return &def, nil
}

// Marshal serializes a Definition to YAML.
func Marshal(def *Definition) ([]byte, error) {
	return yaml.Marshal(def)
}

// Namespace returns the URI bound to prefix.
func (d *Definition) Namespace(prefix string) (string, bool) {
	for _, ns := range d.Namespaces {
		if ns.Prefix == prefix {
			return ns.URI, true
		}
	}

	return "", false
}

// ElementQualified reports whether an element with the given prefix keeps
// its prefix in output. Elements in the schema's default namespace are only
// written qualified when the element form default says so.
func (d *Definition) ElementQualified(prefix string) bool {
	if prefix == "" {
		return false
	}

	return prefix != d.DefaultPrefix || d.ElementFormQualified
}

// AttributeQualified is ElementQualified for attributes.
func (d *Definition) AttributeQualified(prefix string) bool {
	if prefix == "" {
		return false
	}

	if prefix == "xml" {
		return true
	}

	return prefix != d.DefaultPrefix || d.AttributeFormQualified
}

// OptionLookup returns the value-option table: list name -> key -> value.
func (d *Definition) OptionLookup() map[string]map[string]string {
	out := make(map[string]map[string]string, len(d.OptLists))

	for _, l := range d.OptLists {
		m := make(map[string]string, len(l.Options))
		for _, o := range l.Options {
			m[o.Key] = o.Value
		}

		out[l.Name] = m
	}

	return out
}
