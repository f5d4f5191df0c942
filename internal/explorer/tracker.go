package explorer

import (
	"fmt"

	"github.com/brennhill/calibrator/internal/catalog"
)

// StateTracker owns the exploration graph for the duration of one run. It
// never stores parent pointers; ancestry is reconstructed by following
// entered_via.from_state.
type StateTracker struct {
	states              []catalog.State
	visitedFingerprints map[string]string // fingerprint -> state_id
	activatedToggles    []string
	budgetHit           bool
	currentState        string
	maxStates           int
}

// NewStateTracker returns a tracker with the given state budget.
func NewStateTracker(maxStates int) *StateTracker {
	return &StateTracker{
		visitedFingerprints: map[string]string{},
		maxStates:           maxStates,
	}
}

// States returns the recorded states in discovery order.
func (t *StateTracker) States() []catalog.State { return t.states }

// BudgetHit reports whether the maxStates cap was reached.
func (t *StateTracker) BudgetHit() bool { return t.budgetHit }

// ActivatedToggles returns the keys of every toggle/switch gate actuated
// during exploration (surfaced in exploration_meta).
func (t *StateTracker) ActivatedToggles() []string { return t.activatedToggles }

// RecordToggleActivation notes that the toggle/switch gate identified by
// key was actuated, for the exploration_meta summary.
func (t *StateTracker) RecordToggleActivation(key string) {
	t.activatedToggles = append(t.activatedToggles, key)
}

// Seen reports whether fingerprint has already been recorded, and the
// state id it maps to if so.
func (t *StateTracker) Seen(fingerprint string) (string, bool) {
	id, ok := t.visitedFingerprints[fingerprint]
	return id, ok
}

// TryRecord records a new state for fingerprint if it is unseen and the
// budget allows it. Returns the recorded (or pre-existing) state and
// whether it is newly recorded. Once the budget is hit, no further states
// are appended but the lookup for already-seen fingerprints keeps working,
// so ongoing actions can still complete safely.
func (t *StateTracker) TryRecord(fingerprint string, enteredVia catalog.EnteredVia, sequence []string) (catalog.State, bool) {
	if id, ok := t.visitedFingerprints[fingerprint]; ok {
		return t.byID(id), false
	}
	if len(t.states) >= t.maxStates {
		t.budgetHit = true
		return catalog.State{}, false
	}

	id := fmt.Sprintf("S%d", len(t.states))
	st := catalog.State{
		StateID:     id,
		EnteredVia:  enteredVia,
		Fingerprint: fingerprint,
		Sequence:    append([]string{}, sequence...),
	}
	t.states = append(t.states, st)
	t.visitedFingerprints[fingerprint] = id
	t.currentState = id
	if len(t.states) >= t.maxStates {
		t.budgetHit = true
	}
	return st, true
}

func (t *StateTracker) byID(id string) catalog.State {
	for _, s := range t.states {
		if s.StateID == id {
			return s
		}
	}
	return catalog.State{}
}

// CurrentState returns the id of the most recently recorded state.
func (t *StateTracker) CurrentState() string { return t.currentState }
