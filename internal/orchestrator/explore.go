package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brennhill/calibrator/internal/artifacts"
	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/config"
	"github.com/brennhill/calibrator/internal/coreerr"
	"github.com/brennhill/calibrator/internal/explorer"
	"github.com/brennhill/calibrator/internal/logging"
)

// ExploreInput carries explorer mode's fixed per-run inputs.
type ExploreInput struct {
	ServiceID   string
	UIMapping   catalog.UIMapping
	Triggers    []string // section_expansion_triggers from the catalog loader entry, if any
	GeneratedAt time.Time
}

// RunExplorer sequences explorer mode's phases: open the service page,
// read its region context, expand every collapsible section, run the
// exploration engine, synthesize the draft, and persist it plus an
// exploration report and review notes.
func RunExplorer(ctx context.Context, d browser.Driver, nav CardNavigator, cfg config.ExplorationConfig, in ExploreInput, layout artifacts.Layout, log logging.Logger) (catalog.Draft, error) {
	if err := nav.OpenServicePage(ctx, in.ServiceID); err != nil {
		return catalog.Draft{}, err
	}
	region, err := nav.RegionContext(ctx)
	if err != nil {
		region = ""
	}
	if err := nav.ExpandSections(ctx, in.Triggers); err != nil {
		return catalog.Draft{}, err
	}

	restore := func(ctx context.Context, d browser.Driver) error {
		if err := nav.OpenServicePage(ctx, in.ServiceID); err != nil {
			return err
		}
		return nav.ExpandSections(ctx, in.Triggers)
	}

	result, err := explorer.Explore(ctx, d, restore, cfg, log)
	if err != nil {
		return catalog.Draft{}, err
	}

	dims := explorer.BuildDimensions(result.Fields)
	draft := catalog.Synthesize(dims, catalog.SynthInput{
		ServiceID:        in.ServiceID,
		Source:           "explorer",
		GeneratedAt:      in.GeneratedAt.UTC().Format(time.RFC3339),
		RegionUsed:       region,
		UIMapping:        in.UIMapping,
		GateControls:     result.Gates,
		States:           result.Tracker.States(),
		ActivatedToggles: result.Tracker.ActivatedToggles(),
		BudgetHit:        result.Tracker.BudgetHit(),
	})

	if err := writeDraft(layout, draft); err != nil {
		return draft, coreerr.Wrap(coreerr.KindArtifactWrite, "writing draft catalog", err)
	}
	log.Info("draft_written", map[string]any{"service_id": in.ServiceID, "sections": len(draft.Sections)})

	if err := writeExplorationReport(layout, draft, result); err != nil {
		return draft, coreerr.Wrap(coreerr.KindArtifactWrite, "writing exploration report", err)
	}
	if err := writeReviewNotes(layout, draft); err != nil {
		return draft, coreerr.Wrap(coreerr.KindArtifactWrite, "writing review notes", err)
	}

	if result.Tracker.BudgetHit() {
		log.Warn("budget_hit", map[string]any{"service_id": in.ServiceID, "max_states": cfg.MaxStates})
	}

	return draft, nil
}

// writeDraft persists draft to config/data/services/generated/<id>_draft.json,
// refusing any path EnsureDraftWritable rejects.
func writeDraft(layout artifacts.Layout, draft catalog.Draft) error {
	path := layout.DraftPath(draft.ServiceID)
	if err := layout.EnsureDraftWritable(path); err != nil {
		return err
	}
	return writeJSON(path, draft)
}

// writeExplorationReport persists the per-state summary a reviewer uses to
// sanity-check what the BFS walk actually exercised.
func writeExplorationReport(layout artifacts.Layout, draft catalog.Draft, result *explorer.Result) error {
	report := struct {
		ServiceID        string         `json:"service_id"`
		States           []catalog.State `json:"states"`
		BudgetHit        bool           `json:"budget_hit"`
		ActivatedToggles []string       `json:"activated_toggles"`
		FieldCount       int            `json:"field_count"`
	}{
		ServiceID:        draft.ServiceID,
		States:           result.Tracker.States(),
		BudgetHit:        result.Tracker.BudgetHit(),
		ActivatedToggles: result.Tracker.ActivatedToggles(),
		FieldCount:       len(result.Fields),
	}
	return writeJSON(layout.ExplorationReportPath(draft.ServiceID), report)
}

// writeReviewNotes renders a Markdown summary of every dimension a human
// reviewer should look at before promoting the draft: REVIEW_REQUIRED and
// CONFLICT dimensions, by section.
func writeReviewNotes(layout artifacts.Layout, draft catalog.Draft) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Review notes: %s\n\n", draft.ServiceID)

	flagged := 0
	for _, s := range draft.Sections {
		for _, dim := range s.Dimensions {
			if dim.Status == catalog.StatusOK {
				continue
			}
			flagged++
			fmt.Fprintf(&b, "- **%s** (%s) — %s\n", dim.Key, s.Label, dim.Status)
			if dim.ReviewNote != "" {
				fmt.Fprintf(&b, "  %s\n", dim.ReviewNote)
			}
		}
	}
	if flagged == 0 {
		b.WriteString("No dimensions require review.\n")
	}

	path := layout.ReviewNotesPath(draft.ServiceID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
