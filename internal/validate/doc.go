// Package validate inspects a built output record. Each stage collects every
// violation it finds instead of stopping at the first:
//
//   - schema: the serialized document against the record definition
//   - structure: required and singular cardinality rules
//   - content: the definition's assertions, evaluated in the transform language
//   - uri: values the definition marks as URIs must be absolute
//   - rdf: the document must read as RDF/XML and produce at least one triple
//
// URI violations are reported with the RDF ones, since an invalid URI is what
// breaks the RDF reading of a record.
package validate
