package profile

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed profiles/builtin.yaml
var builtinYAML []byte

// Builtin returns the embedded preset table. The result is a fresh copy,
// callers may keep it without sharing state.
func Builtin() (Table, error) {
	var table Table
	if err := yaml.Unmarshal(builtinYAML, &table); err != nil {
		return nil, fmt.Errorf("failed to parse built-in profiles: %w", err)
	}
	if err := Validate(table); err != nil {
		return nil, fmt.Errorf("built-in profiles: %w", err)
	}
	return table, nil
}
