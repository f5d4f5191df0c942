package coreerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetriable_ClosedNonRetriableSet(t *testing.T) {
	t.Parallel()
	for _, k := range []Kind{
		KindBrowserCrash, KindAutomationFatal, KindArtifactWrite, KindOSError,
		KindProfileNotFound, KindProfilePermission, KindProfileEncoding,
		KindProfileValidation, KindResolution,
	} {
		assert.False(t, Retriable(New(k, "boom")), "kind %s should be non-retriable", k)
	}
}

func TestRetriable_EverythingElseRetries(t *testing.T) {
	t.Parallel()
	for _, k := range []Kind{
		KindTimeout, KindElementNotFound, KindStaleElement, KindFindInPageNoMatch,
		KindLocatorNotFound, KindNetworkBlip, KindUnknown,
	} {
		assert.True(t, Retriable(New(k, "transient")))
	}
}

func TestRetriable_ExplicitOverrideWins(t *testing.T) {
	t.Parallel()
	no := false
	err := New(KindTimeout, "timed out")
	err.Retriable = &no
	assert.False(t, Retriable(err))
}

func TestRetriable_NonCoreErrorDefaultsRetriable(t *testing.T) {
	t.Parallel()
	assert.True(t, Retriable(errors.New("plain error")))
	assert.False(t, Retriable(nil))
}

func TestWrap_Unwraps(t *testing.T) {
	t.Parallel()
	cause := errors.New("root cause")
	err := Wrap(KindOSError, "disk full", cause)
	require.ErrorIs(t, err, cause)
}

func TestKindOf(t *testing.T) {
	t.Parallel()
	assert.Equal(t, KindResolution, KindOf(New(KindResolution, "x")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}
