package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brennhill/calibrator/internal/orchestrator"
)

func TestResolveMode_ExactlyOneFlagRequired(t *testing.T) {
	t.Parallel()

	_, err := resolveMode(&rootOptions{})
	assert.ErrorContains(t, err, "exactly one of")

	_, err = resolveMode(&rootOptions{runMode: true, explore: true})
	assert.ErrorContains(t, err, "exactly one of")
}

func TestResolveMode_PicksTheSetFlag(t *testing.T) {
	t.Parallel()

	m, err := resolveMode(&rootOptions{dryRun: true})
	assert.NoError(t, err)
	assert.Equal(t, modeDryRun, m)

	m, err = resolveMode(&rootOptions{promote: true})
	assert.NoError(t, err)
	assert.Equal(t, modePromote, m)
}

func TestExitCodeForRun_MapsStatusToExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, exitSuccess, exitCodeForRun(orchestrator.StatusSuccess))
	assert.Equal(t, exitPartialSuccess, exitCodeForRun(orchestrator.StatusPartialSuccess))
	assert.Equal(t, exitPreflightFailure, exitCodeForRun(orchestrator.StatusFailed))
}

func TestFail_WrapsErrorWithCodeAndUnwraps(t *testing.T) {
	t.Parallel()

	inner := assert.AnError
	err := fail(exitBrowserLaunch, inner)

	me, ok := err.(*modeError)
	assert.True(t, ok)
	assert.Equal(t, exitBrowserLaunch, me.code)
	assert.ErrorIs(t, err, inner)

	assert.Nil(t, fail(exitSuccess, nil))
}
