package explorer

import (
	"context"
	"fmt"
	"strings"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/coreerr"
	"github.com/brennhill/calibrator/internal/interactor"
)

// Action is one gate actuation the BFS driver can replay: a TOGGLE click,
// or a RADIO/SELECT/COMBOBOX "select:<value>".
type Action struct {
	GateKey     string
	CSSSelector string
	GateType    catalog.GateType
	Value       string // empty for a TOGGLE click
}

// String encodes the action into the flat form a catalog.State.Sequence
// entry stores: "<selector>|click" or "<selector>|select:<value>".
func (a Action) String() string {
	if a.GateType == catalog.GateToggle {
		return a.CSSSelector + "|click"
	}
	return fmt.Sprintf("%s|select:%s", a.CSSSelector, a.Value)
}

// gateFieldType maps a GateType onto the FieldType interactor.Fill
// dispatches on, so action replay reuses the same per-field-type fill
// routines the runner orchestrator uses rather than duplicating them.
func gateFieldType(g catalog.GateType) catalog.FieldType {
	switch g {
	case catalog.GateToggle:
		return catalog.FieldToggle
	case catalog.GateRadio:
		return catalog.FieldRadio
	case catalog.GateSelect:
		return catalog.FieldSelect
	case catalog.GateCombobox:
		return catalog.FieldCombobox
	default:
		return catalog.FieldUnknown
	}
}

// ActionsForGate builds the actions derived from one gate control: a
// single "click" for TOGGLE, or one "select:<value>" per non-default
// option (capped at maxOptionsPerSelect) for RADIO/SELECT/COMBOBOX.
func ActionsForGate(g catalog.GateControl, maxOptionsPerSelect int) []Action {
	if g.GateType == catalog.GateToggle {
		return []Action{{GateKey: g.Key, CSSSelector: g.CSSSelector, GateType: g.GateType}}
	}

	var out []Action
	count := 0
	for _, opt := range g.Options {
		if count >= maxOptionsPerSelect {
			break
		}
		if strings.EqualFold(opt, g.DefaultState) {
			continue // default state skipped
		}
		out = append(out, Action{GateKey: g.Key, CSSSelector: g.CSSSelector, GateType: g.GateType, Value: opt})
		count++
	}
	return out
}

// Apply replays action against the current page: resolves its target
// element and either clicks it (TOGGLE) or fills it via interactor.Fill
// using the value-appropriate field type. Returns a coreerr with Kind
// ElementNotFound if the target is not currently visible — the caller
// treats this as "step cannot be applied, skip".
func Apply(ctx context.Context, d browser.Driver, a Action) error {
	h, err := d.Query(ctx, a.CSSSelector)
	if err != nil {
		return err
	}
	if h == nil {
		return coreerr.New(coreerr.KindElementNotFound, "explorer: gate target not visible: "+a.CSSSelector)
	}

	if a.GateType == catalog.GateToggle {
		return h.Click(ctx, browser.ClickOpts{})
	}
	return interactor.Fill(ctx, d, h, gateFieldType(a.GateType), a.Value)
}

// Restore returns a TOGGLE action's target to OFF by re-clicking it; a
// target whose aria-checked already reads as something other than "true"
// is left as it is. The primary BFS calls it only when restoreToggles is
// enabled. Non-TOGGLE actions are never restored (see DESIGN.md on this
// choice).
func Restore(ctx context.Context, d browser.Driver, a Action) error {
	if a.GateType != catalog.GateToggle {
		return nil
	}
	h, err := d.Query(ctx, a.CSSSelector)
	if err != nil || h == nil {
		return err
	}
	if checked, ok, err := h.GetAttribute(ctx, "aria-checked"); err == nil && ok && !strings.EqualFold(checked, "true") {
		return nil
	}
	return h.Click(ctx, browser.ClickOpts{})
}
