package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fulmenhq/starcat/internal/assets"
	"github.com/pelletier/go-toml/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

var (
	schemaOnce   sync.Once
	schemaLoaded *gojsonschema.Schema
	schemaErr    error
)

func configSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		raw, err := assets.GetSchemaJSON(assets.ConfigSchema)
		if err != nil {
			schemaErr = err
			return
		}
		schemaLoaded, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	})
	return schemaLoaded, schemaErr
}

// ValidateConfig validates JSON configuration data against the embedded schema
func ValidateConfig(configData []byte) error {
	schema, err := configSchema()
	if err != nil {
		return fmt.Errorf("failed to load config schema: %v", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(configData))
	if err != nil {
		return fmt.Errorf("schema validation error: %v", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

// ValidateConfigFile decodes a YAML, JSON or TOML config file and validates it.
func ValidateConfigFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path chosen by the operator
	if err != nil {
		return fmt.Errorf("failed to read config %s: %v", path, err)
	}
	doc, err := decodeConfigDocument(path, data)
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %v", path, err)
	}
	if doc == nil {
		return nil
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert config %s: %v", path, err)
	}
	if err := ValidateConfig(asJSON); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func decodeConfigDocument(path string, data []byte) (any, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		// JSON is a subset of YAML
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
