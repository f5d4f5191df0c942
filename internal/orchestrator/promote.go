package orchestrator

import (
	"context"

	"github.com/brennhill/calibrator/internal/artifacts"
	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/coreerr"
)

// FilePromoter is the only collaborator permitted to write the validated
// catalog path config/data/services/<service_id>.json. It is deliberately
// the single call site in the module that targets that path — the draft
// writer (writeDraft in explore.go) refuses it via
// Layout.EnsureDraftWritable.
type FilePromoter struct {
	Layout artifacts.Layout
}

// Promote writes draft to the validated catalog path, overwriting whatever
// was there before.
func (p FilePromoter) Promote(ctx context.Context, serviceID string, draft catalog.Draft) error {
	path := p.Layout.ValidatedCatalogPath(serviceID)
	if err := writeJSON(path, draft); err != nil {
		return coreerr.Wrap(coreerr.KindArtifactWrite, "promoting catalog for "+serviceID, err)
	}
	return nil
}
