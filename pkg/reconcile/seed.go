package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fulmenhq/starcat/internal/assets"
	"github.com/fulmenhq/starcat/pkg/catalog"
	"github.com/fulmenhq/starcat/pkg/logger"
	"github.com/fulmenhq/starcat/pkg/texture"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SeedItem is one object in a seed list. Color accepts the same forms as the
// add command: an integer or a "#RRGGBB" / "0xRRGGBB" string.
type SeedItem struct {
	Name       string  `json:"name" yaml:"name" toml:"name"`
	Type       string  `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Parent     string  `json:"parent,omitempty" yaml:"parent,omitempty" toml:"parent,omitempty"`
	Size       float64 `json:"size" yaml:"size" toml:"size"`
	Color      any     `json:"color" yaml:"color" toml:"color"`
	RenderMode string  `json:"renderMode,omitempty" yaml:"renderMode,omitempty" toml:"renderMode,omitempty"`
	Emissive   bool    `json:"emissive,omitempty" yaml:"emissive,omitempty" toml:"emissive,omitempty"`
	URL        string  `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`
	Texture    string  `json:"texture" yaml:"texture" toml:"texture"`
}

// Fields converts the item into a candidate field map. Optional fields are
// only set when given; emissive is only written when true.
func (s SeedItem) Fields() map[string]any {
	fields := map[string]any{
		catalog.FieldName:    s.Name,
		catalog.FieldSize:    s.Size,
		catalog.FieldColor:   s.Color,
		catalog.FieldTexture: s.Texture,
	}
	if s.Type != "" {
		fields[catalog.FieldType] = s.Type
	}
	if s.RenderMode != "" {
		fields[catalog.FieldRenderMode] = s.RenderMode
	}
	if s.Parent != "" {
		fields[catalog.FieldParent] = s.Parent
	}
	if s.Emissive {
		fields[catalog.FieldEmissive] = true
	}
	return fields
}

type seedList struct {
	Seeds []SeedItem `json:"seeds" yaml:"seeds" toml:"seeds"`
}

// ParseSeeds decodes a seed list. format is "yaml", "json" or "toml"; the
// document holds a top-level "seeds" array. YAML and JSON documents may also
// be a bare array.
func ParseSeeds(data []byte, format string) ([]SeedItem, error) {
	var list seedList
	switch strings.ToLower(format) {
	case "yaml", "yml", "":
		if err := yaml.Unmarshal(data, &list); err != nil {
			var bare []SeedItem
			if yaml.Unmarshal(data, &bare) != nil {
				return nil, fmt.Errorf("failed to parse seed list: %w", err)
			}
			list.Seeds = bare
		}
	case "json":
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &list.Seeds); err != nil {
				return nil, fmt.Errorf("failed to parse seed list: %w", err)
			}
		} else if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("failed to parse seed list: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("failed to parse seed list: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported seed list format: %s", format)
	}
	if len(list.Seeds) == 0 {
		return nil, errors.New("seed list is empty")
	}
	return list.Seeds, nil
}

// LoadSeedFile reads a seed list, choosing the format from the extension.
func LoadSeedFile(path string) ([]SeedItem, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied seed file
	if err != nil {
		return nil, fmt.Errorf("failed to read seed list %s: %w", path, err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	items, err := ParseSeeds(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// DefaultSeeds returns the built-in seed list.
func DefaultSeeds() ([]SeedItem, error) {
	data, err := assets.DefaultSeeds()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in seed list: %w", err)
	}
	return ParseSeeds(data, "yaml")
}

// SeedStatus is the per-item outcome of a seed run.
type SeedStatus string

const (
	SeedAdded   SeedStatus = "added"
	SeedSkipped SeedStatus = "skipped"
	SeedFailed  SeedStatus = "failed"
)

// SeedItemResult records what happened to one seed item.
type SeedItemResult struct {
	Name    string          `json:"name"`
	Status  SeedStatus      `json:"status"`
	Texture *texture.Result `json:"-"`
	Err     error           `json:"-"`
	Error   string          `json:"error,omitempty"`
}

// SeedReport summarizes a seed run.
type SeedReport struct {
	Items   []SeedItemResult `json:"items"`
	Added   int              `json:"added"`
	Skipped int              `json:"skipped"`
	Failed  int              `json:"failed"`
	Total   int              `json:"total"` // catalog size afterwards
	Saved   bool             `json:"saved"`
}

func (r *SeedReport) record(res SeedItemResult) {
	if res.Err != nil {
		res.Error = res.Err.Error()
	}
	switch res.Status {
	case SeedAdded:
		r.Added++
	case SeedSkipped:
		r.Skipped++
	case SeedFailed:
		r.Failed++
	}
	r.Items = append(r.Items, res)
}

// Seed adds every item whose name is not yet in the catalog, fetching textures
// that are not already on disk. Items that fail validation or fetching are
// recorded and skipped; the run continues. The catalog is saved once at the
// end, and is created if it does not exist yet. A cancelled context stops the
// run after the current item and nothing is saved.
func (e *Engine) Seed(ctx context.Context, items []SeedItem) (*SeedReport, error) {
	cat, err := catalog.Load(e.catalogPath)
	created := false
	if err != nil {
		if !catalog.IsMissing(err) {
			return nil, err
		}
		logger.Info("Catalog not found, creating it", logger.String("path", e.catalogPath))
		cat = catalog.New()
		created = true
	}

	report := &SeedReport{}
	started := time.Now()
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.record(e.seedOne(ctx, cat, item))
	}
	report.Total = cat.Len()

	if report.Added == 0 && !created {
		logger.Info("No new objects to add")
		return report, nil
	}
	if err := cat.Save(e.catalogPath); err != nil {
		return report, err
	}
	report.Saved = true
	logger.Info(fmt.Sprintf("Saved %d objects to %s", cat.Len(), e.catalogPath),
		logger.Int("added", report.Added), logger.Int("skipped", report.Skipped), logger.Int("failed", report.Failed),
		logger.Duration("elapsed", time.Since(started)))
	return report, nil
}

func (e *Engine) seedOne(ctx context.Context, cat *catalog.Catalog, item SeedItem) SeedItemResult {
	res := SeedItemResult{Name: item.Name}
	if cat.Has(item.Name) {
		logger.Debug("Already in catalog", logger.String("name", item.Name))
		res.Status = SeedSkipped
		return res
	}

	entry, findings := catalog.ValidateCandidate(item.Fields())
	if !findings.OK() {
		res.Status = SeedFailed
		res.Err = findings.Err(item.Name)
		logger.Warn("Invalid seed item", logger.String("name", item.Name), logger.Err(res.Err))
		return res
	}

	if item.URL != "" {
		tex, err := e.pipeline.FetchAndNormalize(ctx, item.URL, entry.Texture, string(entry.RenderMode), false)
		if err != nil {
			res.Status = SeedFailed
			res.Err = err
			logger.Warn("Texture fetch failed", logger.String("name", item.Name), logger.Err(err))
			return res
		}
		res.Texture = tex
	}

	if _, err := cat.Upsert(*entry, catalog.ConflictSkip); err != nil {
		res.Status = SeedFailed
		res.Err = err
		return res
	}
	logger.Info("Added object", logger.String("name", entry.Name))
	res.Status = SeedAdded
	return res
}
