package reconcile

import (
	"context"
	"fmt"

	"github.com/fulmenhq/starcat/pkg/catalog"
	"github.com/fulmenhq/starcat/pkg/logger"
)

// PruneResult describes a prune run.
type PruneResult struct {
	Removed []string `json:"removed"` // names (or textures) of dropped records, in document order
	Kept    int      `json:"kept"`
	DryRun  bool     `json:"dryRun"`
	Saved   bool     `json:"saved"`
}

// Prune drops every record whose texture file is not in the texture directory
// and saves the catalog. The catalog is rewritten even when nothing was
// removed, unless dryRun is set.
func (e *Engine) Prune(ctx context.Context, dryRun bool) (*PruneResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cat, err := catalog.Load(e.catalogPath)
	if err != nil {
		return nil, err
	}
	listing, err := ListAssets(e.textureDir, e.ignore)
	if err != nil {
		return nil, err
	}

	pruned, removed := cat.PruneMissing(listing.Names())
	result := &PruneResult{
		Removed: removedNames(cat, listing),
		Kept:    pruned.Len(),
		DryRun:  dryRun,
	}

	if dryRun {
		logger.Info(fmt.Sprintf("Would remove %d objects with missing textures", removed))
		return result, nil
	}
	if err := pruned.Save(e.catalogPath); err != nil {
		return nil, err
	}
	result.Saved = true
	logger.Info(fmt.Sprintf("Removed %d objects with missing textures. Cleaned %s saved.", removed, e.catalogPath))
	return result, nil
}

func removedNames(cat *catalog.Catalog, listing *Listing) []string {
	removed := []string{}
	for _, rec := range cat.Records() {
		if _, ok := listing.Lookup(rec.Texture()); ok && rec.Texture() != "" {
			continue
		}
		label := rec.Name()
		if label == "" {
			label = rec.Texture()
		}
		removed = append(removed, label)
	}
	return removed
}
