package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Asset is one file in the texture directory.
type Asset struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Listing is a flat snapshot of the texture directory.
type Listing struct {
	assets []Asset
	byName map[string]int64
}

// NewListing builds a listing from assets, sorted by name.
func NewListing(assets ...Asset) *Listing {
	l := &Listing{
		assets: append([]Asset(nil), assets...),
		byName: make(map[string]int64, len(assets)),
	}
	sort.Slice(l.assets, func(i, j int) bool { return l.assets[i].Name < l.assets[j].Name })
	for _, a := range l.assets {
		l.byName[a.Name] = a.Size
	}
	return l
}

// Names returns every file name, sorted.
func (l *Listing) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, len(l.assets))
	for i, a := range l.assets {
		names[i] = a.Name
	}
	return names
}

// Assets returns the listed files, sorted by name.
func (l *Listing) Assets() []Asset {
	if l == nil {
		return nil
	}
	return append([]Asset(nil), l.assets...)
}

// Lookup returns the size of name and whether it is listed.
func (l *Listing) Lookup(name string) (int64, bool) {
	if l == nil {
		return 0, false
	}
	size, ok := l.byName[name]
	return size, ok
}

// Len returns the number of listed files.
func (l *Listing) Len() int {
	if l == nil {
		return 0
	}
	return len(l.assets)
}

// ListAssets lists the files (or symlinks to files) directly inside dir, skipping names that
// match any of the doublestar ignore patterns. Subdirectories are not descended.
func ListAssets(dir string, ignore []string) (*Listing, error) {
	for _, p := range ignore {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid ignore pattern %q", p)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list textures in %s: %w", dir, err)
	}

	var assets []Asset
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ignored(name, ignore) {
			continue
		}
		// Stat follows symlinks so linked textures count as present.
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		assets = append(assets, Asset{Name: name, Size: info.Size()})
	}
	return NewListing(assets...), nil
}

func ignored(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
