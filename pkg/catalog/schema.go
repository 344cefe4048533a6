package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/fulmenhq/starcat/internal/assets"
	"github.com/xeipuuv/gojsonschema"
)

var (
	documentSchema     *gojsonschema.Schema
	documentSchemaErr  error
	documentSchemaOnce sync.Once
)

func compiledDocumentSchema() (*gojsonschema.Schema, error) {
	documentSchemaOnce.Do(func() {
		data, err := assets.GetSchemaJSON(assets.CatalogSchema)
		if err != nil {
			documentSchemaErr = err
			return
		}
		documentSchema, documentSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	})
	return documentSchema, documentSchemaErr
}

// ValidateDocument runs the embedded catalog JSON Schema over a raw document and
// returns one SchemaViolation finding per schema error. Data that is not JSON
// at all is an error. It is a structural pre-pass; field rules and warnings
// come from ValidateRecord.
func ValidateDocument(data []byte) ([]Finding, error) {
	sch, err := compiledDocumentSchema()
	if err != nil {
		return nil, fmt.Errorf("load catalog schema: %w", err)
	}
	result, err := sch.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	var findings []Finding
	for _, verr := range result.Errors() {
		entry, field := splitSchemaField(verr.Field())
		if prop, ok := verr.Details()["property"].(string); ok && verr.Type() == "required" {
			field = prop
		}
		findings = append(findings, Finding{
			Entry:    entry,
			Field:    field,
			Kind:     KindSchemaViolation,
			Severity: SeverityError,
			Message:  verr.Description(),
		})
	}
	return findings, nil
}

// splitSchemaField turns gojsonschema's "3.size" into ("Object #3", "size").
func splitSchemaField(path string) (string, string) {
	if path == "" || path == "(root)" {
		return "document", ""
	}
	head, rest, _ := strings.Cut(path, ".")
	if idx, err := strconv.Atoi(head); err == nil {
		return fmt.Sprintf("Object #%d", idx), rest
	}
	return "document", path
}
