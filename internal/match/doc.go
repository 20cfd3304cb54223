// Package match ranks source paths by similarity so that a node mapping
// whose input path is missing from the loaded statistics can be offered the
// most likely replacements.
//
// Key functions:
//   - Levenshtein: edit distance between two strings
//   - NormalizeName: folds an XML qualified name for fuzzy comparison
//   - Suggest: ranks candidate paths against a missing one
package match
