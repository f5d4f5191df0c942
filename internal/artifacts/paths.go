// Package artifacts resolves and guards the fixed file layout: draft
// catalogs, exploration reports, review notes, screenshots, and run
// results, all rooted at and validated against a project directory.
package artifacts

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Layout resolves fixed output paths rooted at a project directory
// (normally the repo root the CLI was invoked from).
type Layout struct {
	ProjectRoot string
}

func (l Layout) abs(parts ...string) string {
	all := append([]string{l.ProjectRoot}, parts...)
	return filepath.Join(all...)
}

// DraftPath returns config/data/services/generated/<service_id>_draft.json.
func (l Layout) DraftPath(serviceID string) string {
	return l.abs("config", "data", "services", "generated", serviceID+"_draft.json")
}

// ValidatedCatalogPath returns config/data/services/<service_id>.json — the
// promoter-only path; the draft writer must never write here.
func (l Layout) ValidatedCatalogPath(serviceID string) string {
	return l.abs("config", "data", "services", serviceID+".json")
}

// ExplorationReportPath returns artifacts/<service_id>/exploration_report.json.
func (l Layout) ExplorationReportPath(serviceID string) string {
	return l.abs("artifacts", serviceID, "exploration_report.json")
}

// ReviewNotesPath returns artifacts/<service_id>/REVIEW_NOTES.md.
func (l Layout) ReviewNotesPath(serviceID string) string {
	return l.abs("artifacts", serviceID, "REVIEW_NOTES.md")
}

// ScreenshotDir returns artifacts/<service_id>/screenshots.
func (l Layout) ScreenshotDir(serviceID string) string {
	return l.abs("artifacts", serviceID, "screenshots")
}

// StateScreenshotPath returns artifacts/<service_id>/screenshots/<state_id>_<gate-slug>.png.
func (l Layout) StateScreenshotPath(serviceID, stateID, gateSlug string) string {
	return filepath.Join(l.ScreenshotDir(serviceID), fmt.Sprintf("%s_%s.png", stateID, gateSlug))
}

// RunResultPath returns outputs/<run_id>.json.
func (l Layout) RunResultPath(runID string) string {
	return l.abs("outputs", runID+".json")
}

// FailureScreenshotPath returns the <screenshotsDir>/<run_id>_<group_slug>_
// <service_slug>_<step_slug>_<epoch_ms>.png template for a failed dimension.
func (l Layout) FailureScreenshotPath(screenshotsDir, runID, groupSlug, serviceSlug, stepSlug string, now time.Time) string {
	return filepath.Join(screenshotsDir, fmt.Sprintf("%s_%s_%s_%s_%d.png", runID, groupSlug, serviceSlug, stepSlug, now.UnixMilli()))
}

// generatedDirSuffix is the directory segment the draft writer must stay
// within — normalized with OS separators so the check works cross-platform.
var generatedDirSuffix = filepath.Join("services", "generated") + string(filepath.Separator)

// EnsureDraftWritable refuses any output path that is not under
// …/services/generated/, and refuses the validated catalog path outright —
// only the promoter collaborator may write config/data/services/<id>.json.
func (l Layout) EnsureDraftWritable(path string) error {
	clean := filepath.Clean(path)
	if !strings.Contains(clean+string(filepath.Separator), generatedDirSuffix) {
		return fmt.Errorf("artifacts: refusing to write draft outside services/generated/: %s", path)
	}
	return nil
}
