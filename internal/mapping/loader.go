package mapping

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Parse parses YAML data into a RecMapping. The "121" shorthand is expanded
// into node mappings placed before the explicit ones.
func Parse(data []byte) (*RecMapping, error) {
	var rm RecMapping

	if err := yaml.Unmarshal(data, &rm); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}

	applyDefaults(&rm)
	Normalize(&rm)

	return &rm, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(rm *RecMapping) {
	if rm.Version == "" {
		rm.Version = "1"
	}

	if rm.Facts == nil {
		rm.Facts = map[string]string{}
	}

	for _, nm := range rm.NodeMappings {
		if nm != nil && nm.Input.IsEmpty() && nm.Constant != "" {
			nm.Input = InputPaths{ConstantPath}
		}
	}
}

// Marshal serializes a RecMapping to YAML.
func Marshal(rm *RecMapping) ([]byte, error) {
	return yaml.Marshal(rm)
}

// Normalize expands the 121 shorthand into node mappings and clears it.
// Entries are expanded in source path order so the result is deterministic.
func Normalize(rm *RecMapping) {
	if len(rm.OneToOne) == 0 {
		return
	}

	sources := make([]string, 0, len(rm.OneToOne))
	for src := range rm.OneToOne {
		sources = append(sources, src)
	}

	sort.Strings(sources)

	expanded := make([]*NodeMapping, 0, len(sources))
	for _, src := range sources {
		expanded = append(expanded, &NodeMapping{
			Output: rm.OneToOne[src],
			Input:  InputPaths{src},
		})
	}

	// shorthand has the highest priority, so it goes first
	rm.NodeMappings = append(expanded, rm.NodeMappings...)
	rm.OneToOne = nil
}
