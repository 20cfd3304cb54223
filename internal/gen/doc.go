// Package gen generates the transform program for a mapping.
//
// Generation walks the record definition tree in document order and emits
// code only for subtrees that carry node mappings. Every source input path
// becomes a for loop whose variable is named after the last path segment
// ("_title"); nested inputs are indexed relative to the deepest enclosing
// loop variable, so a mapping below a looped parent sees only the parent's
// current source element.
//
// Codegen patterns:
//   - Default element: element "dc:title" attrs {...} text _title
//   - Dictionary: text lookup({"a": "b"}, _type)
//   - Constant: text "value", no loop
//   - Custom code: the curator's statements inside the loops
//   - Attribute mappings: values in the owning element's attrs map
//
// Output is deterministic: the same mapping and definition always produce
// the same bytes, and so the same hash.
package gen
