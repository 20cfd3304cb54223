package mapping

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"sip-creator/internal/common"
)

// InputPaths are the source paths of a node mapping. In YAML a single path
// may be written as a plain string:
//
//	input: /input/metadata/title
//	input: [/input/metadata/creator, /input/metadata/contributor]
type InputPaths []string

// UnmarshalYAML trims every path and rejects blank entries in a list.
func (p *InputPaths) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var path string
		if err := node.Decode(&path); err != nil {
			return err
		}

		*p = nil
		if path = strings.TrimSpace(path); path != "" {
			*p = InputPaths{path}
		}

		return nil
	case yaml.SequenceNode:
		paths := make(InputPaths, 0, len(node.Content))

		for _, item := range node.Content {
			var path string
			if err := item.Decode(&path); err != nil {
				return err
			}

			if path = strings.TrimSpace(path); path == "" {
				return fmt.Errorf("line %d: blank input path", item.Line)
			}

			paths = append(paths, path)
		}

		*p = paths

		return nil
	default:
		return fmt.Errorf("line %d: input must be a path or a list of paths", node.Line)
	}
}

// MarshalYAML writes a single path as a plain string.
func (p InputPaths) MarshalYAML() (any, error) {
	if common.IsSingle(p) {
		return p[0], nil
	}

	return []string(p), nil
}

// First returns the first path, or "".
func (p InputPaths) First() string {
	v, _ := common.First(p)
	return v
}

func (p InputPaths) IsEmpty() bool {
	return common.IsEmpty(p)
}

func (p InputPaths) IsSingle() bool {
	return common.IsSingle(p)
}

// HasConstant reports whether the constant marker is among the paths.
func (p InputPaths) HasConstant() bool {
	return slices.Contains(p, ConstantPath)
}
