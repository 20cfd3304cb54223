package mapping

import (
	"fmt"

	"sip-creator/internal/diagnostic"
	"sip-creator/internal/match"
	"sip-creator/internal/recdef"
	"sip-creator/internal/record"
)

// Diagnostic codes reported by Validate.
const (
	CodeInvalidOutputPath  = "invalid_output_path"
	CodeUnknownOutputPath  = "unknown_output_path"
	CodeInvalidInputPath   = "invalid_input_path"
	CodeNoInput            = "no_input"
	CodeMixedConstant      = "mixed_constant"
	CodeDuplicate          = "duplicate_node_mapping"
	CodeInputPathMissing   = "input_path_missing"
	CodeDictionaryConstant = "dictionary_on_constant"
	CodeAttributeMulti     = "attribute_multiple_inputs"
)

// maxSuggestions caps the alternatives offered for a missing input path.
const maxSuggestions = 3

// Validate checks rm against the definition tree and, when stats is not nil,
// against the paths seen in the loaded source records. All problems are
// collected; nothing stops at the first one.
func Validate(rm *RecMapping, tree *recdef.Tree, stats *record.Stats) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if rm == nil {
		res.AddError("mapping_is_nil", "mapping is nil", "", "")
		return res
	}

	if tree == nil {
		res.AddError("tree_is_nil", "record definition tree is nil", rm.Prefix, "")
		return res
	}

	var known []string
	if stats != nil {
		known = stats.Paths()
	}

	seen := map[string]struct{}{}

	rm.mu.RLock()
	defer rm.mu.RUnlock()

	for _, nm := range rm.NodeMappings {
		if nm == nil {
			continue
		}

		validateOutput(res, rm.Prefix, tree, nm)
		validateInputs(res, rm.Prefix, nm, stats, known)

		key := nm.Key()
		if _, dup := seen[key]; dup {
			res.AddError(CodeDuplicate, fmt.Sprintf("node mapping %s appears more than once", key), rm.Prefix, nm.Output)
		}

		seen[key] = struct{}{}
	}

	return res
}

func validateOutput(res *diagnostic.Diagnostics, scope string, tree *recdef.Tree, nm *NodeMapping) {
	out, err := ParsePath(nm.Output)
	if err != nil {
		res.AddError(CodeInvalidOutputPath, err.Error(), scope, nm.Output)
		return
	}

	if _, ok := tree.Lookup(nm.Output); !ok {
		res.AddError(CodeUnknownOutputPath,
			fmt.Sprintf("output path is not part of record definition %s", scope), scope, nm.Output)
	}

	if out.IsAttr() && len(nm.Input) > 1 && !nm.HasCustomCode() {
		res.AddWarning(CodeAttributeMulti,
			"attribute fed by several inputs without code; only values of the first input are used", scope, nm.Output)
	}
}

func validateInputs(
	res *diagnostic.Diagnostics,
	scope string,
	nm *NodeMapping,
	stats *record.Stats,
	known []string,
) {
	if nm.Input.IsEmpty() {
		res.AddError(CodeNoInput, "node mapping has no input path", scope, nm.Output)
		return
	}

	if nm.Input.HasConstant() {
		if !nm.IsConstant() {
			res.AddError(CodeMixedConstant, "constant marker mixed with source paths", scope, nm.Output)
		}

		if len(nm.Dictionary) > 0 {
			res.AddWarning(CodeDictionaryConstant, "dictionary is ignored for constant node mappings", scope, nm.Output)
		}

		return
	}

	for _, in := range nm.Input {
		p, err := ParsePath(in)
		if err != nil {
			res.AddError(CodeInvalidInputPath, err.Error(), scope, in)
			continue
		}

		if p.Segments[0].Name != record.InputTag || p.Segments[0].IsAttr {
			res.AddError(CodeInvalidInputPath,
				fmt.Sprintf("input path %s must start at /%s", in, record.InputTag), scope, in)

			continue
		}

		if stats == nil || stats.Contains(in) {
			continue
		}

		var suggestions []string
		for _, s := range match.Suggest(in, known, maxSuggestions) {
			suggestions = append(suggestions, s.Path)
		}

		res.AddWarning(CodeInputPathMissing,
			fmt.Sprintf("input path missing from source statistics (feeds %s)", nm.Output),
			scope, in, suggestions...)
	}
}
