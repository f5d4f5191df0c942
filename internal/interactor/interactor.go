// Package interactor fills a resolved control according to its field
// type, dispatching per-control-kind (radio vs checkbox vs plain value)
// the same way a field-type-to-fill-routine table would. The run
// orchestrator wraps each fill it issues in internal/retry.WithRetry; the
// explorer's action replay and select sampling call Fill directly, with no
// retry wrapper.
package interactor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/coreerr"
)

const comboboxSettleDelay = 300 * time.Millisecond

// Fill dispatches to the field-type-specific routine.
func Fill(ctx context.Context, d browser.Driver, h browser.Handle, fieldType catalog.FieldType, value string) error {
	switch fieldType {
	case catalog.FieldNumber, catalog.FieldText:
		return fillTextLike(ctx, d, h, value)
	case catalog.FieldToggle:
		return fillToggle(ctx, h, value)
	case catalog.FieldRadio:
		return fillRadio(ctx, d, h, value)
	case catalog.FieldSelect:
		return fillSelect(ctx, d, h, value)
	case catalog.FieldCombobox:
		return fillCombobox(ctx, d, h, value, true)
	case catalog.FieldInstanceSearch:
		return fillCombobox(ctx, d, h, value, false)
	default:
		return coreerr.New(coreerr.KindAutomationFatal, "interactor: unknown field type "+string(fieldType))
	}
}

// fillTextLike handles the NUMBER/TEXT path: focus, clear, fill the
// string form of the value. A spinbutton without native fill support
// dispatches a script that sets .value and emits an "input" event instead.
func fillTextLike(ctx context.Context, d browser.Driver, h browser.Handle, value string) error {
	if err := h.ScrollIntoViewIfNeeded(ctx); err != nil {
		return err
	}
	if err := h.Click(ctx, browser.ClickOpts{}); err != nil {
		return err
	}

	if role, ok, _ := h.GetAttribute(ctx, "role"); ok && role == "spinbutton" {
		if err := h.Fill(ctx, value); err == nil {
			return nil
		}
		return setValueViaScript(ctx, d, h, value)
	}

	if err := h.Fill(ctx, ""); err != nil {
		return err
	}
	return h.Fill(ctx, value)
}

// setValueViaScript is the spinbutton-without-fill escape hatch: set the
// DOM value and dispatch an input event so framework-bound listeners react.
func setValueViaScript(ctx context.Context, d browser.Driver, h browser.Handle, value string) error {
	_, err := d.Evaluate(ctx, `(el, v) => { el.value = v; el.dispatchEvent(new Event('input', {bubbles: true})); }`, h, value)
	return err
}

func fillToggle(ctx context.Context, h browser.Handle, value string) error {
	want := strings.EqualFold(value, "true") || value == "1" || strings.EqualFold(value, "on")

	current, _, err := h.GetAttribute(ctx, "aria-checked")
	if err != nil {
		return err
	}
	have := strings.EqualFold(current, "true")

	if have == want {
		return nil
	}
	return h.Click(ctx, browser.ClickOpts{})
}

func fillRadio(ctx context.Context, d browser.Driver, h browser.Handle, value string) error {
	name, ok, err := h.GetAttribute(ctx, "name")
	if err != nil {
		return err
	}
	if !ok || name == "" {
		return h.Click(ctx, browser.ClickOpts{})
	}

	group, err := d.QueryAll(ctx, fmt.Sprintf(`input[type="radio"][name="%s"]`, name))
	if err != nil {
		return err
	}
	for _, member := range group {
		if radioMatches(ctx, member, value) {
			return member.Click(ctx, browser.ClickOpts{})
		}
	}
	return coreerr.New(coreerr.KindElementNotFound, "no radio option matches "+value)
}

func radioMatches(ctx context.Context, h browser.Handle, value string) bool {
	if v, ok, _ := h.GetAttribute(ctx, "aria-label"); ok && strings.EqualFold(v, value) {
		return true
	}
	if v, ok, _ := h.GetAttribute(ctx, "value"); ok && strings.EqualFold(v, value) {
		return true
	}
	return false
}

func fillSelect(ctx context.Context, d browser.Driver, h browser.Handle, value string) error {
	if err := h.SelectOption(ctx, browser.SelectOpts{Label: value}); err == nil {
		return nil
	}
	if err := h.SelectOption(ctx, browser.SelectOpts{Value: value}); err == nil {
		return nil
	}
	return fillCustomDropdown(ctx, d, h, value)
}

// fillCustomDropdown implements the non-native SELECT fallback path:
// click to open, match a custom option, else ArrowDown if still closed and
// match once more. A value no option matches is an ElementNotFound error.
func fillCustomDropdown(ctx context.Context, d browser.Driver, h browser.Handle, value string) error {
	if err := h.Click(ctx, browser.ClickOpts{}); err != nil {
		return err
	}

	if opt, ok := findCustomOption(ctx, d, value); ok {
		return opt.Click(ctx, browser.ClickOpts{})
	}

	if isOpen, _ := isDropdownOpen(ctx, d); !isOpen {
		if err := d.Keyboard(ctx, "ArrowDown"); err != nil {
			return err
		}
		if opt, ok := findCustomOption(ctx, d, value); ok {
			return opt.Click(ctx, browser.ClickOpts{})
		}
	}
	return coreerr.New(coreerr.KindElementNotFound, "no custom option matches "+value)
}

// findCustomOption tries, in order: exact role=option by name, visible
// role=option containing the value, normalized-token match against
// [role=option] or [data-value] visible candidates.
func findCustomOption(ctx context.Context, d browser.Driver, value string) (browser.Handle, bool) {
	if h, err := d.ByRole(ctx, browser.RoleQuery{Role: "option", Name: value, Exact: true}); err == nil && h != nil {
		return h, true
	}
	if h, err := d.ByRole(ctx, browser.RoleQuery{Role: "option", Name: value}); err == nil && h != nil {
		return h, true
	}

	normalizedTarget := normalizeToken(value)
	for _, selector := range []string{`[role="option"]`, `[data-value]`} {
		candidates, err := d.QueryAll(ctx, selector)
		if err != nil {
			continue
		}
		for _, c := range candidates {
			visible, err := c.IsVisible(ctx)
			if err != nil || !visible {
				continue
			}
			text, _ := c.TextContent(ctx)
			if normalizeToken(text) == normalizedTarget {
				return c, true
			}
		}
	}
	return nil, false
}

func normalizeToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "")
}

func isDropdownOpen(ctx context.Context, d browser.Driver) (bool, error) {
	found, err := d.QueryAll(ctx, `[role="listbox"]`)
	if err != nil {
		return false, err
	}
	for _, l := range found {
		if v, err := l.IsVisible(ctx); err == nil && v {
			return true, nil
		}
	}
	return false, nil
}

// fillCombobox handles the COMBOBOX/INSTANCE_SEARCH path: click,
// fill, wait for the listbox to settle, prefer a role=option whose name
// contains the value, else Enter. verifyFinalValue controls whether the
// post-fill value check runs (skipped for INSTANCE_SEARCH, which instead
// picks the first non-header option).
func fillCombobox(ctx context.Context, d browser.Driver, h browser.Handle, value string, verifyFinalValue bool) error {
	if err := h.Click(ctx, browser.ClickOpts{}); err != nil {
		return err
	}
	if err := h.Fill(ctx, value); err != nil {
		return err
	}
	if err := d.Wait(ctx, comboboxSettleDelay); err != nil {
		return err
	}

	if !verifyFinalValue {
		return pickFirstNonHeaderOption(ctx, d)
	}

	if opt, ok := findComboboxOption(ctx, d, value); ok {
		if err := opt.Click(ctx, browser.ClickOpts{}); err != nil {
			return err
		}
	} else if err := d.Keyboard(ctx, "Enter"); err != nil {
		return err
	}

	final, _, err := h.GetAttribute(ctx, "value")
	if err != nil {
		return err
	}
	if !strings.Contains(strings.ToLower(final), strings.ToLower(value)) {
		return coreerr.New(coreerr.KindElementNotFound, "combobox final value does not contain "+value)
	}
	return nil
}

func findComboboxOption(ctx context.Context, d browser.Driver, value string) (browser.Handle, bool) {
	candidates, err := d.QueryAll(ctx, `[role="option"]`)
	if err != nil {
		return nil, false
	}
	lowerValue := strings.ToLower(value)
	for _, c := range candidates {
		text, _ := c.TextContent(ctx)
		if strings.Contains(strings.ToLower(text), lowerValue) {
			return c, true
		}
	}
	return nil, false
}

func pickFirstNonHeaderOption(ctx context.Context, d browser.Driver) error {
	candidates, err := d.QueryAll(ctx, `[role="option"]`)
	if err != nil {
		return err
	}
	for _, c := range candidates {
		if role, ok, _ := c.GetAttribute(ctx, "aria-level"); ok && role != "" {
			continue // header-level option, skip
		}
		return c.Click(ctx, browser.ClickOpts{})
	}
	return coreerr.New(coreerr.KindElementNotFound, "no non-header option available for instance search")
}
