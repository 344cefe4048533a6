package reconcile

import (
	"context"
	"fmt"

	"github.com/fulmenhq/starcat/pkg/catalog"
	"github.com/fulmenhq/starcat/pkg/logger"
	"github.com/fulmenhq/starcat/pkg/texture"
)

// AddRequest is one object to add, as collected by a driver.
type AddRequest struct {
	Fields    map[string]any
	SourceURL string // optional texture download
	Overwrite bool   // replace an existing texture file
	Conflict  catalog.ConflictPolicy

	// AllowMissingTexture keeps going when the download fails; the entry is
	// added and the failure is reported in AddResult.FetchErr.
	AllowMissingTexture bool
}

// AddResult describes a completed AddOne.
type AddResult struct {
	Entry    *catalog.Entry
	Outcome  catalog.UpsertOutcome
	Texture  *texture.Result // nil when nothing was fetched
	FetchErr error
	Warnings []catalog.Finding
	Total    int // catalog size after the operation
}

// AddOne validates fields, optionally fetches the texture, and upserts the
// entry into the catalog. Nothing is written when validation fails, when the
// name conflicts under ConflictAbort, or when the fetch fails without
// AllowMissingTexture.
func (e *Engine) AddOne(ctx context.Context, req AddRequest) (*AddResult, error) {
	entry, findings := catalog.ValidateCandidate(req.Fields)
	if !findings.OK() {
		id := "candidate"
		if name, ok := req.Fields[catalog.FieldName].(string); ok && name != "" {
			id = name
		}
		return nil, findings.Err(id)
	}
	for _, w := range findings.Warnings {
		logger.Warn(w.String())
	}

	cat, err := catalog.Load(e.catalogPath)
	if err != nil {
		return nil, err
	}
	if req.Conflict == catalog.ConflictAbort && cat.Has(entry.Name) {
		return nil, &catalog.DuplicateNameError{Name: entry.Name}
	}

	result := &AddResult{Entry: entry, Warnings: findings.Warnings}

	if req.SourceURL != "" {
		res, err := e.pipeline.FetchAndNormalize(ctx, req.SourceURL, entry.Texture, string(entry.RenderMode), req.Overwrite)
		switch {
		case err == nil:
			result.Texture = res
		case req.AllowMissingTexture && ctx.Err() == nil:
			logger.Warn("Texture download failed, adding object anyway",
				logger.String("name", entry.Name), logger.Err(err))
			result.FetchErr = err
		default:
			return nil, err
		}
	} else {
		logger.Info(fmt.Sprintf("Skipping texture download. Make sure %s exists in %s", entry.Texture, e.textureDir))
	}

	outcome, err := cat.Upsert(*entry, req.Conflict)
	if err != nil {
		return nil, err
	}
	result.Outcome = outcome
	result.Total = cat.Len()

	if outcome == catalog.Skipped {
		logger.Info("Object already present, leaving catalog unchanged", logger.String("name", entry.Name))
		return result, nil
	}
	if err := cat.Save(e.catalogPath); err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("Saved %d objects to %s", cat.Len(), e.catalogPath),
		logger.String("name", entry.Name), logger.String("outcome", outcome.String()))
	return result, nil
}
