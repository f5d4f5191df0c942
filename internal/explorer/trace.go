package explorer

import (
	"context"
	"sync"

	"github.com/brennhill/calibrator/internal/browser"
)

// replayTraceSize bounds the ring buffer.
const replayTraceSize = 50

// ReplayTraceEntry records one replayed action sequence attempt, for
// post-mortem diagnosis when a sequence fails to reproduce during the
// primary BFS walk.
type ReplayTraceEntry struct {
	Sequence []string
	Success  bool
	Error    string
}

// ReplayTrace is a fixed-size circular buffer of the most recent replay
// attempts: a preallocated slice plus a wraparound index. Guarded by its
// own mutex even though exploration runs single-threaded, since the trace
// can be inspected concurrently with an in-flight run.
type ReplayTrace struct {
	mu      sync.Mutex
	entries []ReplayTraceEntry
	index   int
	filled  bool
}

// NewReplayTrace returns an empty trace with the standard buffer size.
func NewReplayTrace() *ReplayTrace {
	return &ReplayTrace{entries: make([]ReplayTraceEntry, replayTraceSize)}
}

// Record appends entry, overwriting the oldest recorded attempt once the
// buffer is full.
func (t *ReplayTrace) Record(entry ReplayTraceEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[t.index] = entry
	t.index = (t.index + 1) % len(t.entries)
	if t.index == 0 {
		t.filled = true
	}
}

// Recent returns a copy of the recorded entries in chronological order.
func (t *ReplayTrace) Recent() []ReplayTraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.filled {
		out := make([]ReplayTraceEntry, t.index)
		copy(out, t.entries[:t.index])
		return out
	}
	out := make([]ReplayTraceEntry, len(t.entries))
	copy(out, t.entries[t.index:])
	copy(out[len(t.entries)-t.index:], t.entries[:t.index])
	return out
}

// ReplayWithTrace restores the page to base, replays seq, and records the
// attempt's outcome to trace. The primary BFS walk is its only caller and
// skips the action when it returns false, without failing the run. No
// screenshot is taken on either outcome, and no replay verification runs
// at synthesis time.
func ReplayWithTrace(ctx context.Context, d browser.Driver, restore Restorer, seq []Action, trace *ReplayTrace) bool {
	if err := restore(ctx, d); err != nil {
		trace.Record(ReplayTraceEntry{Sequence: encodeSequence(seq), Success: false, Error: err.Error()})
		return false
	}
	ok := replaySequence(ctx, d, seq)
	entry := ReplayTraceEntry{Sequence: encodeSequence(seq), Success: ok}
	if !ok {
		entry.Error = "a replayed step's target was not visible"
	}
	trace.Record(entry)
	return ok
}
