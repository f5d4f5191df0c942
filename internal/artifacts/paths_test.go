package artifacts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout_DraftAndValidatedPaths(t *testing.T) {
	t.Parallel()
	l := Layout{ProjectRoot: "/repo"}

	assert.Equal(t, "/repo/config/data/services/generated/ec2_draft.json", l.DraftPath("ec2"))
	assert.Equal(t, "/repo/config/data/services/ec2.json", l.ValidatedCatalogPath("ec2"))
	assert.Equal(t, "/repo/artifacts/ec2/exploration_report.json", l.ExplorationReportPath("ec2"))
	assert.Equal(t, "/repo/artifacts/ec2/REVIEW_NOTES.md", l.ReviewNotesPath("ec2"))
	assert.Equal(t, "/repo/artifacts/ec2/screenshots", l.ScreenshotDir("ec2"))
	assert.Equal(t, "/repo/artifacts/ec2/screenshots/S1_enable-encryption.png", l.StateScreenshotPath("ec2", "S1", "enable-encryption"))
	assert.Equal(t, "/repo/outputs/run-123.json", l.RunResultPath("run-123"))
}

func TestLayout_FailureScreenshotPath(t *testing.T) {
	t.Parallel()
	l := Layout{ProjectRoot: "/repo"}
	now := time.UnixMilli(1700000000000)

	got := l.FailureScreenshotPath("/repo/artifacts/shots", "run-1", "core", "ec2", "fill-storage", now)
	assert.Equal(t, "/repo/artifacts/shots/run-1_core_ec2_fill-storage_1700000000000.png", got)
}

func TestEnsureDraftWritable_AllowsGeneratedDir(t *testing.T) {
	t.Parallel()
	l := Layout{ProjectRoot: "/repo"}
	err := l.EnsureDraftWritable(l.DraftPath("ec2"))
	require.NoError(t, err)
}

func TestEnsureDraftWritable_RefusesValidatedCatalogPath(t *testing.T) {
	t.Parallel()
	l := Layout{ProjectRoot: "/repo"}
	err := l.EnsureDraftWritable(l.ValidatedCatalogPath("ec2"))
	require.Error(t, err)
}

func TestEnsureDraftWritable_RefusesArbitraryPath(t *testing.T) {
	t.Parallel()
	l := Layout{ProjectRoot: "/repo"}
	err := l.EnsureDraftWritable("/repo/config/data/services/../../etc/passwd")
	require.Error(t, err)
}
