package explorer

import (
	"context"
	"strings"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/config"
	"github.com/brennhill/calibrator/internal/logging"
	"github.com/brennhill/calibrator/internal/options"
	"github.com/brennhill/calibrator/internal/scanner"
)

// Restorer returns the page to its base state before a replay attempt —
// a fresh navigation to the configure URL, or an equivalent reload.
type Restorer func(ctx context.Context, d browser.Driver) error

// ExploredField is one field scanned during exploration, tagged with the
// section it belongs to and the state it was first observed in.
type ExploredField struct {
	scanner.ElementInfo
	Section           string
	DiscoveredInState string
	AddButtonLabel    string // copied from the owning section's inventory, for P6 detection
}

// Result is the outcome of a full exploration run: the primary BFS walk
// plus the three post-BFS sweeps.
type Result struct {
	Tracker *StateTracker
	Fields  []ExploredField
	Gates   []catalog.GateControl
	Trace   *ReplayTrace
}

// Explore runs the primary BFS walk followed by the toggle-exhaustion,
// radio-card, and select-sampling sweeps, all sharing one StateTracker and
// bounded by cfg.MaxStates.
func Explore(ctx context.Context, d browser.Driver, restore Restorer, cfg config.ExplorationConfig, log logging.Logger) (*Result, error) {
	tracker, fields, gates, trace, err := runBFS(ctx, d, restore, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := restore(ctx, d); err != nil {
		return nil, err
	}
	toggleExhaustionSweep(ctx, d, tracker, &fields, log)

	if err := restore(ctx, d); err != nil {
		return nil, err
	}
	radioCardSweep(ctx, d, tracker, &fields, log)

	if err := restore(ctx, d); err != nil {
		return nil, err
	}
	selectSamplingSweep(ctx, d, tracker, &fields, cfg.MaxOptionsPerSelect, log)

	if tracker.BudgetHit() {
		log.Warn("budget_hit", map[string]any{"max_states": cfg.MaxStates})
	}

	return &Result{Tracker: tracker, Fields: fields, Gates: gates, Trace: trace}, nil
}

type queuedState struct {
	stateID  string
	sequence []Action
	gates    []catalog.GateControl
}

// runBFS implements the primary walk: S0 is scanned immediately, then for
// each dequeued state every action built from the gate controls visible
// *at that state* is replayed from a freshly restored base page.
func runBFS(ctx context.Context, d browser.Driver, restore Restorer, cfg config.ExplorationConfig, log logging.Logger) (*StateTracker, []ExploredField, []catalog.GateControl, *ReplayTrace, error) {
	tracker := NewStateTracker(cfg.MaxStates)
	trace := NewReplayTrace()
	var fields []ExploredField
	gateUnion := map[string]catalog.GateControl{}
	var gateOrder []string
	recordGates := func(gates []catalog.GateControl) {
		for _, g := range gates {
			if _, ok := gateUnion[g.Key]; !ok {
				gateOrder = append(gateOrder, g.Key)
			}
			gateUnion[g.Key] = g
		}
	}

	fp0, inv0, err := Fingerprint(ctx, d)
	if err != nil {
		return nil, nil, nil, trace, err
	}
	s0, _ := tracker.TryRecord(fp0, catalog.EnteredVia{}, nil)
	fields = append(fields, collectFields(ctx, d, inv0, s0.StateID)...)
	gates0 := DetectGates(ctx, d, inv0)
	recordGates(gates0)
	log.Info("state_recorded", map[string]any{"state_id": s0.StateID, "sequence_len": 0})

	queue := []queuedState{{stateID: s0.StateID, gates: gates0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, gate := range cur.gates {
			for _, action := range ActionsForGate(gate, cfg.MaxOptionsPerSelect) {
				if tracker.BudgetHit() {
					continue
				}

				seq := append(append([]Action{}, cur.sequence...), action)

				if !ReplayWithTrace(ctx, d, restore, seq, trace) {
					continue // restore failed or a step could not be applied, skip
				}

				fp, inv, err := Fingerprint(ctx, d)
				if err != nil {
					continue
				}

				entered := catalog.EnteredVia{GateControl: gate.Key, Action: action.String(), FromState: cur.stateID}
				st, isNew := tracker.TryRecord(fp, entered, encodeSequence(seq))

				if action.GateType == catalog.GateToggle {
					tracker.RecordToggleActivation(gate.Key)
					if cfg.RestoreToggles {
						_ = Restore(ctx, d, action)
					}
				}

				if !isNew {
					continue // dedup dropped: fingerprint already visited
				}

				fields = append(fields, collectFields(ctx, d, inv, st.StateID)...)
				nextGates := DetectGates(ctx, d, inv)
				recordGates(nextGates)
				log.Info("state_recorded", map[string]any{"state_id": st.StateID, "gate": gate.Key, "action": action.String()})
				queue = append(queue, queuedState{stateID: st.StateID, sequence: seq, gates: nextGates})
			}
		}
	}

	return tracker, fields, orderedGates(gateUnion, gateOrder), trace, nil
}

func orderedGates(byKey map[string]catalog.GateControl, order []string) []catalog.GateControl {
	out := make([]catalog.GateControl, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

func replaySequence(ctx context.Context, d browser.Driver, seq []Action) bool {
	for _, a := range seq {
		if err := Apply(ctx, d, a); err != nil {
			return false
		}
	}
	return true
}

func encodeSequence(seq []Action) []string {
	out := make([]string, 0, len(seq))
	for _, a := range seq {
		out = append(out, a.String())
	}
	return out
}

// collectFields converts a scanned inventory into ExploredFields tagged
// with the state they were observed in, populating each SELECT/COMBOBOX/
// RADIO field's option list via the live options scanner since a plain DOM
// scan does not enumerate choices.
func collectFields(ctx context.Context, d browser.Driver, inventories []scanner.SectionInventory, stateID string) []ExploredField {
	var out []ExploredField
	for _, inv := range inventories {
		for _, el := range inv.Elements {
			switch el.FieldType {
			case catalog.FieldSelect, catalog.FieldCombobox, catalog.FieldRadio:
				if opts, ok := scanLiveOptions(ctx, d, el); ok {
					el.Options = opts
				}
			}
			out = append(out, ExploredField{
				ElementInfo:       el,
				Section:           inv.Section,
				DiscoveredInState: stateID,
				AddButtonLabel:    inv.AddButtonLabel,
			})
		}
	}
	return out
}

// DetectGates resolves every toggle/radio/select/combobox element in
// inventories into a catalog.GateControl, enumerating its option set via
// options.ScanOptions. Radio groups collapse to one gate keyed by their
// shared "name" attribute. Gates are the candidate actions the BFS driver
// actuates to discover conditionally revealed fields.
func DetectGates(ctx context.Context, d browser.Driver, inventories []scanner.SectionInventory) []catalog.GateControl {
	var gates []catalog.GateControl
	seenRadioGroups := map[string]bool{}

	for _, inv := range inventories {
		for _, el := range inv.Elements {
			switch el.FieldType {
			case catalog.FieldToggle:
				gates = append(gates, catalog.GateControl{
					Key:           gateKey(el),
					AriaLabel:     el.Label,
					GateType:      catalog.GateToggle,
					DefaultState:  toggleDefaultState(el),
					CSSSelector:   el.CSSSelector,
					SectionsGated: []string{inv.Section},
				})
			case catalog.FieldRadio:
				name := el.Attrs["name"]
				if name == "" || seenRadioGroups[name] {
					continue
				}
				seenRadioGroups[name] = true
				opts, ok := scanLiveOptions(ctx, d, el)
				if !ok {
					continue
				}
				gates = append(gates, catalog.GateControl{
					Key:           name,
					AriaLabel:     el.Label,
					GateType:      catalog.GateRadio,
					DefaultState:  firstOrEmpty(opts),
					CSSSelector:   el.CSSSelector,
					Options:       opts,
					SectionsGated: []string{inv.Section},
				})
			case catalog.FieldSelect, catalog.FieldCombobox:
				opts, ok := scanLiveOptions(ctx, d, el)
				if !ok {
					continue
				}
				gates = append(gates, catalog.GateControl{
					Key:           gateKey(el),
					AriaLabel:     el.Label,
					GateType:      selectGateType(el.FieldType),
					DefaultState:  el.Attrs["value"],
					CSSSelector:   el.CSSSelector,
					Options:       opts,
					SectionsGated: []string{inv.Section},
				})
			}
		}
	}
	return gates
}

func scanLiveOptions(ctx context.Context, d browser.Driver, el scanner.ElementInfo) ([]string, bool) {
	h, err := d.Query(ctx, el.CSSSelector)
	if err != nil || h == nil {
		return nil, false
	}
	opts, err := options.ScanOptions(ctx, d, h)
	if err != nil {
		return nil, false
	}
	return opts, true
}

func gateKey(el scanner.ElementInfo) string {
	if el.Label != "" {
		return el.Label
	}
	return el.CSSSelector
}

func toggleDefaultState(el scanner.ElementInfo) string {
	if strings.EqualFold(el.Attrs["aria-checked"], "true") {
		return "true"
	}
	return "false"
}

func selectGateType(ft catalog.FieldType) catalog.GateType {
	if ft == catalog.FieldCombobox {
		return catalog.GateCombobox
	}
	return catalog.GateSelect
}

func firstOrEmpty(opts []string) string {
	if len(opts) == 0 {
		return ""
	}
	return opts[0]
}
