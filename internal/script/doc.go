// Package script implements the transform language that generated mapping
// programs and curator snippets are written in.
//
// A program is a sequence of statements that walk the bound source record
// ("input") and emit target elements through a Sink:
//
//	# one dc:title per source title, carrying its language
//	for _title in input["metadata"]["title"] {
//	    element "dc:title" attrs {"xml:lang": _title["@lang"]} text _title
//	}
//	if empty(input["metadata"]["rights"]) {
//	    discard "no rights statement"
//	}
//
// Statements: element, for, let, assignment, if/else, discard and bare
// expressions. Expressions: string, number, bool and nil literals, lists
// [a, b], maps {"k": v}, indexing x["name"] or x.name, builtin calls,
// arithmetic "+"/"-", comparison, "&&", "||" and "!".
//
// Indexing a source node by name yields the list of its children with that
// name; "@name" yields an attribute value. Indexing a list applies the index
// to every element and flattens the result, so input["a"]["b"] reaches all
// grandchildren. Indexing nil yields nil, which keeps snippets robust when
// source data is absent.
//
// Programs are compiled by a Compiler, an explicitly created context that
// caches compiled programs by content hash. A compiled Program is immutable
// and may run concurrently with separate Bindings.
package script
