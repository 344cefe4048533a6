package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/fulmenhq/starcat/pkg/safeio"
)

// MaxColor is the largest 24-bit RGB value.
const MaxColor = 0xFFFFFF

// Field names as they appear in the catalog document.
const (
	FieldName       = "name"
	FieldSize       = "size"
	FieldColor      = "color"
	FieldTexture    = "texture"
	FieldType       = "type"
	FieldRenderMode = "renderMode"
	FieldParent     = "parent"
	FieldEmissive   = "emissive"
)

// RequiredFields must be present and non-empty on every entry.
var RequiredFields = []string{FieldName, FieldSize, FieldColor, FieldTexture}

// Entry is one validated astronomical object.
type Entry struct {
	Name       string     `json:"name"`
	Size       float64    `json:"size"`
	Color      int        `json:"color"`
	Texture    string     `json:"texture"`
	Type       ObjectType `json:"type,omitempty"`
	RenderMode RenderMode `json:"renderMode,omitempty"`
	Parent     string     `json:"parent,omitempty"`
	Emissive   *bool      `json:"emissive,omitempty"`
}

// Fields returns the entry as a document field map, omitting unset optionals.
func (e Entry) Fields() map[string]any {
	m := map[string]any{
		FieldName:    e.Name,
		FieldSize:    e.Size,
		FieldColor:   e.Color,
		FieldTexture: e.Texture,
	}
	if e.Type != "" {
		m[FieldType] = string(e.Type)
	}
	if e.RenderMode != "" {
		m[FieldRenderMode] = string(e.RenderMode)
	}
	if e.Parent != "" {
		m[FieldParent] = e.Parent
	}
	if e.Emissive != nil {
		m[FieldEmissive] = *e.Emissive
	}
	return m
}

// Severity separates blocking violations from informational warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind identifies the rule a finding came from.
type Kind string

const (
	KindSchemaViolation   Kind = "SchemaViolation"
	KindTraversalRejected Kind = "TraversalRejected"
	KindDuplicateName     Kind = "DuplicateName"
	KindMissingTexture    Kind = "MissingTexture"
	KindLargeTexture      Kind = "LargeTexture"
	KindUnusualColor      Kind = "UnusualColor"
	KindOrphanParent      Kind = "OrphanParent"
	KindEmptyCatalog      Kind = "EmptyCatalog"
)

// Finding is a single violation or warning tied to an entry and field.
type Finding struct {
	Entry    string   `json:"entry"`
	Field    string   `json:"field,omitempty"`
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	if f.Entry == "" {
		return f.Message
	}
	return f.Entry + ": " + f.Message
}

// Findings collects the outcome of validating one or more entries.
type Findings struct {
	Violations []Finding `json:"violations"`
	Warnings   []Finding `json:"warnings"`
}

// OK reports whether there are no hard violations. Warnings never affect it.
func (f *Findings) OK() bool {
	return f == nil || len(f.Violations) == 0
}

// Merge appends other's findings to f.
func (f *Findings) Merge(other *Findings) {
	if other == nil {
		return
	}
	f.Violations = append(f.Violations, other.Violations...)
	f.Warnings = append(f.Warnings, other.Warnings...)
}

func (f *Findings) violation(entry, field string, kind Kind, format string, args ...any) {
	f.Violations = append(f.Violations, Finding{
		Entry: entry, Field: field, Kind: kind, Severity: SeverityError,
		Message: fmt.Sprintf(format, args...),
	})
}

func (f *Findings) warning(entry, field string, kind Kind, format string, args ...any) {
	f.Warnings = append(f.Warnings, Finding{
		Entry: entry, Field: field, Kind: kind, Severity: SeverityWarning,
		Message: fmt.Sprintf(format, args...),
	})
}

// Err returns a *ValidationError when there are hard violations, nil otherwise.
func (f *Findings) Err(entry string) error {
	if f.OK() {
		return nil
	}
	return &ValidationError{Entry: entry, Findings: f.Violations}
}

// ValidateCandidate checks a driver-supplied field map against the entry rules.
// It returns the entry only when there are no hard violations; warnings may
// accompany an accepted entry.
func ValidateCandidate(fields map[string]any) (*Entry, *Findings) {
	id := "candidate"
	if name, ok := fields[FieldName].(string); ok && name != "" {
		id = name
	}
	return validateFields(id, fields, ParseColor)
}

// ValidateRecord applies the entry rules to the record at position idx of a
// loaded catalog, identifying it by name or by position. Stored colors must be
// JSON integers; hex strings are only accepted from drivers.
func ValidateRecord(idx int, fields map[string]any) (*Entry, *Findings) {
	id := fmt.Sprintf("Object #%d", idx)
	if name, ok := fields[FieldName].(string); ok && name != "" {
		id = name
	}
	return validateFields(id, fields, parseStoredColor)
}

func validateFields(id string, fields map[string]any, parseColor func(any) (int64, error)) (*Entry, *Findings) {
	f := &Findings{}
	var e Entry

	for _, name := range RequiredFields {
		v, ok := fields[name]
		if !ok {
			f.violation(id, name, KindSchemaViolation, "Missing required field '%s'", name)
		} else if isEmpty(v) {
			f.violation(id, name, KindSchemaViolation, "Field '%s' is empty", name)
		}
	}

	if v, ok := fields[FieldName]; ok && v != nil {
		if s, isStr := v.(string); isStr {
			e.Name = s
		} else {
			f.violation(id, FieldName, KindSchemaViolation, "name must be a string (got %v)", v)
		}
	}

	if v, ok := fields[FieldSize]; ok && v != nil {
		size, err := toFloat(v)
		switch {
		case err != nil:
			f.violation(id, FieldSize, KindSchemaViolation, "Size must be a number (got %v)", v)
		case size <= 0:
			f.violation(id, FieldSize, KindSchemaViolation, "Size must be positive (got %v)", formatFloat(size))
		default:
			e.Size = size
		}
	}

	if v, ok := fields[FieldColor]; ok && v != nil {
		color, err := parseColor(v)
		if err != nil {
			f.violation(id, FieldColor, KindSchemaViolation, "Color must be an integer (got %v)", v)
		} else {
			if color < 0 || color > MaxColor {
				f.warning(id, FieldColor, KindUnusualColor, "Color value seems unusual (%v)", v)
			}
			e.Color = int(color)
		}
	}

	if v, ok := fields[FieldTexture]; ok && v != nil {
		s, isStr := v.(string)
		switch {
		case !isStr:
			f.violation(id, FieldTexture, KindSchemaViolation, "texture must be a string (got %v)", v)
		case strings.TrimSpace(s) == "":
			// reported by the required-field pass
		default:
			if _, err := safeio.CleanFilename(s); errors.Is(err, safeio.ErrPathTraversal) {
				f.violation(id, FieldTexture, KindTraversalRejected,
					"Texture filename must be a plain file name inside the texture directory (got %q)", s)
			} else {
				e.Texture = s
			}
		}
	}

	if v, ok := fields[FieldType]; ok {
		s, isStr := v.(string)
		if t := ObjectType(s); isStr && t.Valid() {
			e.Type = t
		} else {
			f.violation(id, FieldType, KindSchemaViolation,
				"Invalid type '%v' (must be one of %s)", v, quoteList(ObjectTypes))
		}
	}

	if v, ok := fields[FieldRenderMode]; ok {
		s, isStr := v.(string)
		if m := RenderMode(s); isStr && m.Valid() {
			e.RenderMode = m
		} else {
			f.violation(id, FieldRenderMode, KindSchemaViolation,
				"Invalid renderMode '%v' (must be one of %s)", v, quoteList(RenderModes))
		}
	}

	if v, ok := fields[FieldParent]; ok {
		if s, isStr := v.(string); isStr || v == nil {
			e.Parent = s
		} else {
			f.violation(id, FieldParent, KindSchemaViolation, "parent must be a string (got %v)", v)
		}
		if t, _ := fields[FieldType].(string); ObjectType(t) != TypeMoon {
			f.warning(id, FieldParent, KindOrphanParent, "Has 'parent' field but type is not 'moon'")
		}
	}

	if v, ok := fields[FieldEmissive]; ok {
		if b, isBool := v.(bool); isBool {
			e.Emissive = &b
		} else {
			f.violation(id, FieldEmissive, KindSchemaViolation, "emissive must be a boolean (got %v)", v)
		}
	}

	if !f.OK() {
		return nil, f
	}
	return &e, f
}

// isEmpty mirrors JSON-document truthiness: absent values, "", 0, false and
// empty containers all count as empty.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

func toFloat(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	case bool:
		return 0, fmt.Errorf("boolean is not a number")
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			f = float64(rv.Uint())
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		default:
			return 0, fmt.Errorf("%T is not a number", v)
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not a finite number", v)
	}
	return f, nil
}

// ParseColor accepts a JSON integer, an integral float, a decimal string, or a hex
// string ("#EFEFEF", "0xEFEFEF", or bare "EFEFEF"). Range is not checked; floats
// beyond the int64 range are clamped.
func ParseColor(v any) (int64, error) {
	if t, ok := v.(string); ok {
		s := strings.TrimSpace(t)
		switch {
		case strings.HasPrefix(s, "#"):
			return strconv.ParseInt(s[1:], 16, 64)
		case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
			return strconv.ParseInt(s[2:], 16, 64)
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		return strconv.ParseInt(s, 16, 64)
	}
	return parseStoredColor(v)
}

// parseStoredColor accepts only numbers with an integral value.
func parseStoredColor(v any) (int64, error) {
	switch t := v.(type) {
	case string:
		return 0, fmt.Errorf("string %q is not an integer", t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil && !math.IsInf(f, 0) {
			return 0, fmt.Errorf("%s is not an integer", t)
		}
		return integralFloat(f)
	case bool:
		return 0, fmt.Errorf("boolean is not an integer")
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return math.MaxInt64, nil
		}
		return int64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return integralFloat(rv.Float())
	}
	return 0, fmt.Errorf("%T is not an integer", v)
}

func integralFloat(f float64) (int64, error) {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0), f != math.Trunc(f):
		return 0, fmt.Errorf("%v is not an integer", f)
	case f >= math.MaxInt64:
		return math.MaxInt64, nil
	case f <= math.MinInt64:
		return math.MinInt64, nil
	}
	return int64(f), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
