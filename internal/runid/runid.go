// Package runid builds the run_id, a UUID correlation id, and the failure
// screenshot filename.
package runid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New returns a run id in the run_YYYYMMDD_HHMMSS (UTC) format, derived
// from now.
func New(now time.Time) string {
	return "run_" + now.UTC().Format("20060102_150405")
}

// Correlation returns a random UUID string (36 characters) for use as a
// correlation id. No caller in the module uses it: replay trace entries
// (see internal/explorer) and screenshot filenames carry no correlation id.
func Correlation() string {
	return uuid.NewString()
}

// EpochMillis renders now as milliseconds since epoch, for the failure
// screenshot path template
// (<screenshotsDir>/<run_id>_<group>_<service>_<step>_<epoch_ms>.png).
func EpochMillis(now time.Time) int64 {
	return now.UnixMilli()
}

// ScreenshotFileName builds the failure screenshot filename.
func ScreenshotFileName(runID, groupSlug, serviceSlug, stepSlug string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s_%s_%d.png", runID, groupSlug, serviceSlug, stepSlug, EpochMillis(now))
}
