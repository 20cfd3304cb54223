// Package mapping holds the mapping configuration: the node mappings that
// feed nodes of a record definition from paths into the source records.
//
// The YAML form is what storage persists and the UI edits:
//
//	version: "1"
//	prefix: edm
//	facts:
//	  provider: Example Museum
//	# shorthand: source path -> output path, no code, no dictionary
//	121:
//	  /input/header/identifier: /rdf:RDF/edm:ProvidedCHO/@rdf:about
//	node_mappings:
//	  - output: /rdf:RDF/edm:ProvidedCHO/dc:title
//	    input: /input/metadata/title
//	  - output: /rdf:RDF/edm:ProvidedCHO/dc:type
//	    input: /input/metadata/type
//	    dictionary:
//	      photo: IMAGE
//	      book: TEXT
//	  - output: /rdf:RDF/edm:ProvidedCHO/edm:provider
//	    input: /constant
//	    constant: Example Museum
//	  - output: /rdf:RDF/edm:ProvidedCHO/dc:description
//	    input: [/input/metadata/abstract, /input/metadata/note]
//	    code: |
//	      element "dc:description" text trim(_abstract + " " + _note)
//
// # Paths
//
// Paths are slash separated XML qualified names. A final "@name" segment
// addresses an attribute. Input paths start at the synthetic record root
// "/input"; output paths start at the record definition root. The path
// "/constant" marks a node mapping that ignores the source entirely.
//
// # Priority
//
// Node mappings produced from the "121" shorthand come first, explicit
// node mappings follow. A shorthand entry that duplicates an explicit one
// is reported by Validate.
package mapping
