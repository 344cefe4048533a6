package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fulmenhq/starcat/pkg/catalog"
	"github.com/fulmenhq/starcat/pkg/safeio"
)

// Bucket labels for records without a type or render mode.
const (
	UnknownType       = "unknown"
	UnspecifiedRender = "not specified"
	megabyte          = 1024 * 1024
)

// Count is one row of a summary breakdown.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Summary aggregates a validated catalog.
type Summary struct {
	Total        int     `json:"total"`
	Issues       int     `json:"issues"`
	Warnings     int     `json:"warnings"`
	ByType       []Count `json:"byType"`
	ByRenderMode []Count `json:"byRenderMode"`
}

// Report is the outcome of validating a whole catalog.
type Report struct {
	Catalog  string           `json:"catalog"`
	Textures string           `json:"textures"`
	OK       bool             `json:"ok"`
	Findings catalog.Findings `json:"findings"`
	Summary  Summary          `json:"summary"`
}

// Passed reports whether the catalog has no hard violations.
func (r *Report) Passed() bool {
	return r.Findings.OK()
}

type validateConfig struct {
	largeBytes int64
	textureDir string
}

// ValidateOption adjusts ValidateAll.
type ValidateOption func(*validateConfig)

// WithLargeThreshold sets the size above which a texture draws a warning.
func WithLargeThreshold(n int64) ValidateOption {
	return func(c *validateConfig) {
		if n > 0 {
			c.largeBytes = n
		}
	}
}

// WithTextureDirLabel sets the directory named in missing-texture messages.
func WithTextureDirLabel(dir string) ValidateOption {
	return func(c *validateConfig) {
		c.textureDir = dir
	}
}

// ValidateAll checks every record against the entry rules and the texture
// listing. It never modifies cat and reports every finding it encounters.
func ValidateAll(cat *catalog.Catalog, listing *Listing, opts ...ValidateOption) *Report {
	cfg := validateConfig{largeBytes: DefaultLargeTextureBytes, textureDir: DefaultTextureDir}
	for _, opt := range opts {
		opt(&cfg)
	}

	report := &Report{Textures: cfg.textureDir}
	records := cat.Records()

	if len(records) == 0 {
		report.Findings.Violations = append(report.Findings.Violations, catalog.Finding{
			Entry: "catalog", Kind: catalog.KindEmptyCatalog, Severity: catalog.SeverityError,
			Message: "Catalog is empty",
		})
	}

	for idx, rec := range records {
		_, findings := catalog.ValidateRecord(idx, rec.Fields())
		report.Findings.Merge(findings)
		report.Findings.Merge(checkTexture(idx, rec, listing, cfg))
	}

	if dups := cat.Duplicates(); len(dups) > 0 {
		quoted := make([]string, len(dups))
		for i, d := range dups {
			quoted[i] = "'" + d + "'"
		}
		report.Findings.Violations = append(report.Findings.Violations, catalog.Finding{
			Entry: "catalog", Field: catalog.FieldName, Kind: catalog.KindDuplicateName,
			Severity: catalog.SeverityError,
			Message:  "Duplicate object names found: " + strings.Join(quoted, ", "),
		})
	}

	report.OK = report.Passed()
	report.Summary = Summary{
		Total:        len(records),
		Issues:       len(report.Findings.Violations),
		Warnings:     len(report.Findings.Warnings),
		ByType:       countBy(records, catalog.FieldType, UnknownType),
		ByRenderMode: countBy(records, catalog.FieldRenderMode, UnspecifiedRender),
	}
	return report
}

func checkTexture(idx int, rec catalog.Record, listing *Listing, cfg validateConfig) *catalog.Findings {
	name := rec.Texture()
	if name == "" {
		return nil
	}
	if _, err := safeio.CleanFilename(name); err != nil {
		// already reported as a traversal violation
		return nil
	}
	id := rec.Name()
	if id == "" {
		id = fmt.Sprintf("Object #%d", idx)
	}

	f := &catalog.Findings{}
	size, ok := listing.Lookup(name)
	if !ok {
		f.Violations = append(f.Violations, catalog.Finding{
			Entry: id, Field: catalog.FieldTexture, Kind: catalog.KindMissingTexture,
			Severity: catalog.SeverityError,
			Message:  "Texture file not found: " + filepath.Join(cfg.textureDir, name),
		})
		return f
	}
	if size > cfg.largeBytes {
		f.Warnings = append(f.Warnings, catalog.Finding{
			Entry: id, Field: catalog.FieldTexture, Kind: catalog.KindLargeTexture,
			Severity: catalog.SeverityWarning,
			Message:  fmt.Sprintf("Texture file is large (%.1f MB)", float64(size)/megabyte),
		})
	}
	return f
}

func countBy(records []catalog.Record, field, missing string) []Count {
	counts := map[string]int{}
	for _, rec := range records {
		label := missing
		if v, ok := rec.Fields()[field]; ok {
			label = fmt.Sprint(v)
		}
		counts[label]++
	}
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Validate loads the catalog and lists the texture directory, then runs
// ValidateAll. A texture directory that does not exist is treated as empty.
//
// With strictSchema the raw document is first checked against the embedded
// JSON Schema. A document the schema rejects structurally (not an array, or
// elements that are not objects) yields a failed report holding the schema
// findings instead of a load error. For a parsable document, schema findings
// on a field already reported by the entry rules are dropped.
func (e *Engine) Validate(ctx context.Context, strictSchema bool) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var schemaFindings []catalog.Finding
	if strictSchema {
		data, err := os.ReadFile(e.catalogPath) // #nosec G304 -- operator-supplied catalog path
		if err != nil {
			return nil, &catalog.StoreIOError{Op: "load", Path: e.catalogPath, Missing: errors.Is(err, fs.ErrNotExist), Err: err}
		}
		schemaFindings, err = catalog.ValidateDocument(data)
		if err != nil {
			return nil, &catalog.StoreIOError{Op: "parse", Path: e.catalogPath, Err: err}
		}
		if _, parseErr := catalog.Parse(data); parseErr != nil && len(schemaFindings) > 0 {
			return e.schemaOnlyReport(schemaFindings), nil
		}
	}

	cat, err := catalog.Load(e.catalogPath)
	if err != nil {
		return nil, err
	}

	listing, err := ListAssets(e.textureDir, e.ignore)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		listing = NewListing()
	}

	report := ValidateAll(cat, listing, WithLargeThreshold(e.largeBytes), WithTextureDirLabel(e.textureDir))
	report.Catalog = e.catalogPath

	if len(schemaFindings) > 0 {
		report.Findings.Violations = append(report.Findings.Violations,
			uncoveredSchemaFindings(schemaFindings, cat.Records(), report.Findings.Violations)...)
		report.OK = report.Passed()
		report.Summary.Issues = len(report.Findings.Violations)
	}
	return report, nil
}

func (e *Engine) schemaOnlyReport(findings []catalog.Finding) *Report {
	report := &Report{Catalog: e.catalogPath, Textures: e.textureDir}
	report.Findings.Violations = findings
	report.OK = report.Passed()
	report.Summary = Summary{Issues: len(findings), ByType: []Count{}, ByRenderMode: []Count{}}
	return report
}

// uncoveredSchemaFindings renames positional schema findings after their
// record and keeps only those whose entry and field carry no violation yet.
func uncoveredSchemaFindings(findings []catalog.Finding, records []catalog.Record, existing []catalog.Finding) []catalog.Finding {
	type key struct{ entry, field string }
	seen := make(map[key]bool, len(existing))
	for _, f := range existing {
		seen[key{f.Entry, f.Field}] = true
	}

	var out []catalog.Finding
	for _, f := range findings {
		var idx int
		if _, err := fmt.Sscanf(f.Entry, "Object #%d", &idx); err == nil && idx >= 0 && idx < len(records) {
			if name := records[idx].Name(); name != "" {
				f.Entry = name
			}
		}
		if seen[key{f.Entry, f.Field}] {
			continue
		}
		seen[key{f.Entry, f.Field}] = true
		out = append(out, f)
	}
	return out
}
