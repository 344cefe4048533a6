// Package reconcile keeps a catalog document and its texture directory in step:
// adding single objects, seeding from lists, validating everything and pruning
// entries whose textures are gone.
package reconcile

import (
	"github.com/fulmenhq/starcat/pkg/texture"
)

// Defaults used when no option overrides them.
const (
	DefaultCatalogPath       = "objects.json"
	DefaultTextureDir        = "textures"
	DefaultLargeTextureBytes = 5 * 1024 * 1024
)

// Engine runs catalog operations against one catalog file and one texture directory.
type Engine struct {
	catalogPath string
	textureDir  string
	pipeline    *texture.Pipeline
	largeBytes  int64
	ignore      []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalogPath sets the catalog document path.
func WithCatalogPath(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.catalogPath = path
		}
	}
}

// WithTextureDir sets the texture directory.
func WithTextureDir(dir string) Option {
	return func(e *Engine) {
		if dir != "" {
			e.textureDir = dir
		}
	}
}

// WithPipeline sets the texture pipeline. It should write into the engine's
// texture directory.
func WithPipeline(p *texture.Pipeline) Option {
	return func(e *Engine) {
		e.pipeline = p
	}
}

// WithLargeTextureBytes sets the size above which validation warns about a texture.
func WithLargeTextureBytes(n int64) Option {
	return func(e *Engine) {
		if n > 0 {
			e.largeBytes = n
		}
	}
}

// WithIgnore sets doublestar patterns hidden from texture listings.
func WithIgnore(patterns []string) Option {
	return func(e *Engine) {
		e.ignore = append([]string(nil), patterns...)
	}
}

// New creates an engine. Without WithPipeline a default pipeline writing into
// the texture directory is used.
func New(opts ...Option) *Engine {
	e := &Engine{
		catalogPath: DefaultCatalogPath,
		textureDir:  DefaultTextureDir,
		largeBytes:  DefaultLargeTextureBytes,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pipeline == nil {
		e.pipeline = texture.NewPipeline(e.textureDir)
	}
	return e
}

// CatalogPath returns the catalog document path.
func (e *Engine) CatalogPath() string { return e.catalogPath }

// TextureDir returns the texture directory.
func (e *Engine) TextureDir() string { return e.textureDir }

// Pipeline returns the texture pipeline.
func (e *Engine) Pipeline() *texture.Pipeline { return e.pipeline }
