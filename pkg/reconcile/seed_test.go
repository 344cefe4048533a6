package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fulmenhq/starcat/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeeds(t *testing.T) {
	tests := []struct {
		name   string
		format string
		doc    string
	}{
		{"yaml document", "yaml", `
seeds:
  - name: Io
    type: moon
    parent: Jupiter
    size: 1821
    color: "#F0E68C"
    texture: io.jpg
`},
		{"yaml bare array", "yml", `
- name: Io
  size: 1821
  color: 15787660
  texture: io.jpg
`},
		{"json document", "json", `{"seeds": [{"name": "Io", "size": 1821, "color": "0xF0E68C", "texture": "io.jpg"}]}`},
		{"json bare array", "json", `[{"name": "Io", "size": 1821, "color": 15787660, "texture": "io.jpg"}]`},
		{"toml", "toml", `
[[seeds]]
name = "Io"
size = 1821
color = 15787660
texture = "io.jpg"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseSeeds([]byte(tt.doc), tt.format)
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.Equal(t, "Io", items[0].Name)
			assert.Equal(t, float64(1821), items[0].Size)
			assert.Equal(t, "io.jpg", items[0].Texture)

			color, err := catalog.ParseColor(items[0].Color)
			require.NoError(t, err)
			assert.Equal(t, int64(0xF0E68C), color)
		})
	}
}

func TestParseSeeds_Errors(t *testing.T) {
	_, err := ParseSeeds([]byte("seeds: []\n"), "yaml")
	assert.EqualError(t, err, "seed list is empty")

	_, err = ParseSeeds([]byte("{"), "json")
	assert.Error(t, err)

	_, err = ParseSeeds([]byte("name: x"), "ini")
	assert.ErrorContains(t, err, "unsupported seed list format")
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "extra.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[seeds]]\nname = \"Io\"\nsize = 1821\ncolor = 1\ntexture = \"io.jpg\"\n"), 0o644))

	items, err := LoadSeedFile(path)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = LoadSeedFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultSeeds(t *testing.T) {
	items, err := DefaultSeeds()
	require.NoError(t, err)
	require.Len(t, items, 7)

	for _, item := range items {
		_, findings := catalog.ValidateCandidate(item.Fields())
		assert.True(t, findings.OK(), "%s: %v", item.Name, findings.Violations)
		assert.NotEmpty(t, item.URL, item.Name)
	}
}

func TestSeedItemFields(t *testing.T) {
	fields := SeedItem{Name: "Io", Size: 1, Color: 1, Texture: "io.jpg"}.Fields()
	assert.NotContains(t, fields, catalog.FieldEmissive)
	assert.NotContains(t, fields, catalog.FieldType)

	fields = SeedItem{Name: "Sun", Size: 1, Color: 1, Texture: "sun.jpg", Emissive: true, Type: "star"}.Fields()
	assert.Equal(t, true, fields[catalog.FieldEmissive])
	assert.Equal(t, "star", fields[catalog.FieldType])
}

func seedItems() []SeedItem {
	return []SeedItem{
		{Name: "Europa", Type: "moon", Parent: "Jupiter", Size: 3122, Color: "#EFEFEF", URL: "https://example.com/europa.png", Texture: "europa.jpg"},
		{Name: "Crab Nebula", Type: "nebula", Size: 11, Color: "#E07A5F", RenderMode: "billboard", Emissive: true, URL: "https://example.com/crab.png", Texture: "crab.png"},
		{Name: "Lost", Size: 1, Color: 1, URL: "https://example.com/missing.png", Texture: "lost.jpg"},
		{Name: "Broken", Size: -1, Color: 1, Texture: "broken.jpg"},
	}
}

func TestSeed_CreatesCatalog(t *testing.T) {
	ws := newWorkspace(t)
	engine := ws.engine(t)

	report, err := engine.Seed(context.Background(), seedItems())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Added)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 2, report.Total)
	assert.True(t, report.Saved)

	assert.Equal(t, []string{"Europa", "Crab Nebula"}, ws.load(t).Names())
	assert.FileExists(t, filepath.Join(ws.textures, "europa.jpg"))
	assert.FileExists(t, filepath.Join(ws.textures, "crab.png"))
	assert.NoFileExists(t, filepath.Join(ws.textures, "lost.jpg"))

	statuses := map[string]SeedStatus{}
	for _, item := range report.Items {
		statuses[item.Name] = item.Status
	}
	assert.Equal(t, SeedFailed, statuses["Lost"])
	assert.Equal(t, SeedFailed, statuses["Broken"])
	assert.NotEmpty(t, report.Items[2].Error)

	t.Run("second run skips existing names", func(t *testing.T) {
		before := ws.fetches()
		report, err := engine.Seed(context.Background(), seedItems()[:2])
		require.NoError(t, err)
		assert.Equal(t, 0, report.Added)
		assert.Equal(t, 2, report.Skipped)
		assert.False(t, report.Saved)
		assert.Equal(t, before, ws.fetches())
	})
}

func TestSeed_KeepsExistingTexture(t *testing.T) {
	ws := newWorkspace(t)
	ws.writeCatalog(t, "[]\n")
	ws.touchTexture(t, "europa.jpg", 3)
	engine := ws.engine(t)

	report, err := engine.Seed(context.Background(), seedItems()[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, int32(0), ws.fetches())

	info, err := os.Stat(filepath.Join(ws.textures, "europa.jpg"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size())
}

func TestSeed_Cancelled(t *testing.T) {
	ws := newWorkspace(t)
	ws.writeCatalog(t, "[]\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := ws.engine(t).Seed(ctx, seedItems())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Items)
	data, _ := os.ReadFile(ws.catalog)
	assert.Equal(t, "[]\n", string(data))
}

func TestSeed_BadCatalog(t *testing.T) {
	ws := newWorkspace(t)
	ws.writeCatalog(t, "{not json")
	_, err := ws.engine(t).Seed(context.Background(), seedItems())
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrStoreIO)
}
