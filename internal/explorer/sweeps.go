package explorer

import (
	"context"
	"strings"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/interactor"
	"github.com/brennhill/calibrator/internal/logging"
	"github.com/brennhill/calibrator/internal/scanner"
)

// maxToggleExhaustionIterations bounds the toggle-exhaustion sweep.
const maxToggleExhaustionIterations = 100

// toggleExhaustionSweep repeatedly finds the first visible unchecked
// switch/checkbox not yet swept, clicks it ON, scans, and restores it OFF,
// stopping when no candidate remains or the iteration cap is hit. Tracks
// already-swept selectors so a toggle that restores to unchecked isn't
// picked again as "first unchecked" forever.
func toggleExhaustionSweep(ctx context.Context, d browser.Driver, tracker *StateTracker, fields *[]ExploredField, log logging.Logger) {
	swept := map[string]bool{}
	for i := 0; i < maxToggleExhaustionIterations; i++ {
		if tracker.BudgetHit() {
			return
		}

		inv, err := scanner.ScanPage(ctx, d)
		if err != nil {
			return
		}
		target, ok := firstVisibleUncheckedToggle(inv, swept)
		if !ok {
			return
		}
		swept[target.CSSSelector] = true

		h, err := d.Query(ctx, target.CSSSelector)
		if err != nil || h == nil {
			return
		}
		if err := h.Click(ctx, browser.ClickOpts{}); err != nil {
			return
		}

		fp, scanned, err := Fingerprint(ctx, d)
		if err == nil {
			action := target.CSSSelector + "|click"
			st, isNew := tracker.TryRecord(fp, catalog.EnteredVia{Action: action}, []string{action})
			if isNew {
				*fields = append(*fields, collectFields(ctx, d, scanned, st.StateID)...)
				log.Info("state_recorded", map[string]any{"state_id": st.StateID, "sweep": "toggle_exhaustion"})
			}
		}

		if h2, err := d.Query(ctx, target.CSSSelector); err == nil && h2 != nil {
			_ = h2.Click(ctx, browser.ClickOpts{}) // restore OFF
		}
	}
}

func firstVisibleUncheckedToggle(inventories []scanner.SectionInventory, swept map[string]bool) (scanner.ElementInfo, bool) {
	for _, inv := range inventories {
		for _, el := range inv.Elements {
			if el.FieldType != catalog.FieldToggle {
				continue
			}
			if swept[el.CSSSelector] {
				continue
			}
			if strings.EqualFold(el.Attrs["aria-checked"], "true") {
				continue
			}
			return el, true
		}
	}
	return scanner.ElementInfo{}, false
}

type radioGroup struct {
	name    string
	members []scanner.ElementInfo
}

// radioCardSweep groups radios by name and, for each group, selects every
// non-default option and scans. Radios are never restored (see DESIGN.md
// on this choice).
func radioCardSweep(ctx context.Context, d browser.Driver, tracker *StateTracker, fields *[]ExploredField, log logging.Logger) {
	inv, err := scanner.ScanPage(ctx, d)
	if err != nil {
		return
	}

	for _, group := range groupRadiosByName(inv) {
		for i, el := range group.members {
			if tracker.BudgetHit() {
				return
			}
			if i == 0 {
				continue // the first member is the group's current/default selection
			}

			h, err := d.Query(ctx, el.CSSSelector)
			if err != nil || h == nil {
				continue
			}
			if err := h.Click(ctx, browser.ClickOpts{}); err != nil {
				continue
			}

			fp, scanned, err := Fingerprint(ctx, d)
			if err != nil {
				continue
			}
			action := el.CSSSelector + "|click"
			st, isNew := tracker.TryRecord(fp, catalog.EnteredVia{Action: action}, []string{action})
			if isNew {
				*fields = append(*fields, collectFields(ctx, d, scanned, st.StateID)...)
				log.Info("state_recorded", map[string]any{"state_id": st.StateID, "sweep": "radio_card", "group": group.name})
			}
		}
	}
}

func groupRadiosByName(inventories []scanner.SectionInventory) []radioGroup {
	index := map[string]int{}
	var groups []radioGroup

	for _, inv := range inventories {
		for _, el := range inv.Elements {
			if el.FieldType != catalog.FieldRadio {
				continue
			}
			name := el.Attrs["name"]
			if name == "" {
				name = el.CSSSelector
			}
			if idx, ok := index[name]; ok {
				groups[idx].members = append(groups[idx].members, el)
				continue
			}
			index[name] = len(groups)
			groups = append(groups, radioGroup{name: name, members: []scanner.ElementInfo{el}})
		}
	}
	return groups
}

// selectSamplingSweep samples, for each visible select/combobox, the first
// maxOptionsPerSelect non-default options, selecting and scanning each.
func selectSamplingSweep(ctx context.Context, d browser.Driver, tracker *StateTracker, fields *[]ExploredField, maxOptionsPerSelect int, log logging.Logger) {
	inv, err := scanner.ScanPage(ctx, d)
	if err != nil {
		return
	}

	for _, section := range inv {
		for _, el := range section.Elements {
			if el.FieldType != catalog.FieldSelect && el.FieldType != catalog.FieldCombobox {
				continue
			}
			sampleSelect(ctx, d, tracker, fields, el, maxOptionsPerSelect, log)
		}
	}
}

func sampleSelect(ctx context.Context, d browser.Driver, tracker *StateTracker, fields *[]ExploredField, el scanner.ElementInfo, maxOptionsPerSelect int, log logging.Logger) {
	opts, ok := scanLiveOptions(ctx, d, el)
	if !ok {
		return
	}

	sampled := 0
	for _, opt := range opts {
		if tracker.BudgetHit() || sampled >= maxOptionsPerSelect {
			return
		}
		if opt == catalog.TruncatedSentinel || strings.EqualFold(opt, el.Attrs["value"]) {
			continue
		}

		h, err := d.Query(ctx, el.CSSSelector)
		if err != nil || h == nil {
			continue
		}
		if err := interactor.Fill(ctx, d, h, el.FieldType, opt); err != nil {
			continue
		}
		sampled++

		fp, scanned, err := Fingerprint(ctx, d)
		if err != nil {
			continue
		}
		action := el.CSSSelector + "|select:" + opt
		st, isNew := tracker.TryRecord(fp, catalog.EnteredVia{Action: action}, []string{action})
		if isNew {
			*fields = append(*fields, collectFields(ctx, d, scanned, st.StateID)...)
			log.Info("state_recorded", map[string]any{"state_id": st.StateID, "sweep": "select_sampling", "selector": el.CSSSelector})
		}
	}
}
