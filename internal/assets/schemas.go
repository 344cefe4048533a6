package assets

import (
	"embed"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed embedded_schemas
var schemaFS embed.FS

// GetSchema returns the embedded schema bytes by embed path.
func GetSchema(relPath string) ([]byte, bool) {
	data, err := schemaFS.ReadFile(relPath)
	return data, err == nil
}

// GetSchemaJSON returns a registered schema by name, converted from YAML to JSON
// so it can be handed straight to a JSON Schema loader.
func GetSchemaJSON(name string) ([]byte, error) {
	for _, info := range Registry {
		if info.Name != name {
			continue
		}
		raw, ok := GetSchema(info.Path)
		if !ok {
			return nil, fmt.Errorf("schema %s missing from embed (%s)", name, info.Path)
		}
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse schema %s: %w", name, err)
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode schema %s: %w", name, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown schema: %s", name)
}
