package assets

import (
	"embed"
	"io/fs"
)

//go:embed embedded_templates
var Templates embed.FS

//go:embed embedded_seeds
var Seeds embed.FS

// DefaultSeedPath is the seed list used when the operator gives none.
const DefaultSeedPath = "default.yaml"

func templatesFS() fs.FS {
	if sub, err := fs.Sub(Templates, "embedded_templates"); err == nil {
		return sub
	}
	return Templates
}

func seedsFS() fs.FS {
	if sub, err := fs.Sub(Seeds, "embedded_seeds"); err == nil {
		return sub
	}
	return Seeds
}

// GetTemplate returns an embedded template by name (e.g. "validate-report.md.hbs").
func GetTemplate(name string) ([]byte, error) {
	return fs.ReadFile(templatesFS(), name)
}

// DefaultSeeds returns the embedded default seed list (YAML).
func DefaultSeeds() ([]byte, error) {
	return fs.ReadFile(seedsFS(), DefaultSeedPath)
}
