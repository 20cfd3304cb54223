// Package builder assembles the target record that a mapping program emits.
//
// A Builder is the script.Sink of one program run. It resolves prefixed
// names against the record definition, expands multi-valued attributes and
// content into repeated elements, checks xml:lang values and splits CDATA
// sections out of text. Finish strips elements left empty because source
// data was absent and returns the Document.
package builder
