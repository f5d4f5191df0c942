package explorer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/catalog"
)

func TestReplayTrace_RecentPreservesOrderBeforeWraparound(t *testing.T) {
	t.Parallel()
	tr := NewReplayTrace()
	tr.Record(ReplayTraceEntry{Sequence: []string{"a"}, Success: true})
	tr.Record(ReplayTraceEntry{Sequence: []string{"b"}, Success: false, Error: "boom"})

	recent := tr.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, []string{"a"}, recent[0].Sequence)
	assert.Equal(t, []string{"b"}, recent[1].Sequence)
	assert.False(t, recent[1].Success)
}

func TestReplayTrace_WrapsAtCapacity(t *testing.T) {
	t.Parallel()
	tr := NewReplayTrace()
	for i := 0; i < replayTraceSize+5; i++ {
		tr.Record(ReplayTraceEntry{Sequence: []string{string(rune('a' + i%26))}})
	}

	recent := tr.Recent()
	require.Len(t, recent, replayTraceSize)
	// The oldest 5 entries were overwritten; the buffer holds the most recent replayTraceSize.
	assert.Equal(t, []string{string(rune('a' + 5%26))}, recent[0].Sequence)
}

func TestReplayWithTrace_RecordsFailureWhenRestoreErrors(t *testing.T) {
	t.Parallel()
	d := newGatedDriver()
	trace := NewReplayTrace()
	restore := func(ctx context.Context, dr browser.Driver) error { return errors.New("navigation failed") }

	ok := ReplayWithTrace(context.Background(), d, restore, nil, trace)
	assert.False(t, ok)

	recent := trace.Recent()
	require.Len(t, recent, 1)
	assert.False(t, recent[0].Success)
	assert.Equal(t, "navigation failed", recent[0].Error)
}

func TestReplayWithTrace_RecordsSuccess(t *testing.T) {
	t.Parallel()
	d := newGatedDriver()
	trace := NewReplayTrace()
	restore := func(ctx context.Context, dr browser.Driver) error { return nil }
	seq := []Action{{CSSSelector: "#enc", GateType: catalog.GateToggle}}

	ok := ReplayWithTrace(context.Background(), d, restore, seq, trace)
	assert.True(t, ok)

	recent := trace.Recent()
	require.Len(t, recent, 1)
	assert.True(t, recent[0].Success)
	assert.Empty(t, recent[0].Error)
}
