// Package options implements the options scanner: it enumerates the
// choice set of a SELECT, COMBOBOX, or RADIO control, polling a combobox's
// listbox until its visible option count stabilizes rather than assuming a
// single render pass surfaces everything.
package options

import (
	"context"
	"fmt"
	"strings"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/coreerr"
)

// maxScrollRounds bounds the combobox listbox convergence loop.
const maxScrollRounds = 10

// ScanOptions enumerates the choice set of the control h resolves to,
// detecting its kind (native select, combobox, or radio group) and
// dispatching to the matching enumeration routine. The result is truncated
// to catalog.MaxOptionsBeforeTruncation entries plus catalog.TruncatedSentinel
// when it would otherwise exceed that bound.
func ScanOptions(ctx context.Context, d browser.Driver, h browser.Handle) ([]string, error) {
	tag, err := h.TagName(ctx)
	if err != nil {
		return nil, err
	}
	tag = strings.ToLower(tag)
	inputType, _, _ := h.GetAttribute(ctx, "type")
	role, _, _ := h.GetAttribute(ctx, "role")

	var opts []string
	switch {
	case tag == "select":
		opts, err = scanNativeSelect(ctx, d, h)
	case role == "combobox":
		opts, err = scanCombobox(ctx, d, h)
	case tag == "input" && strings.EqualFold(inputType, "radio"):
		opts, err = scanRadioGroup(ctx, d, h)
	default:
		return nil, coreerr.New(coreerr.KindAutomationFatal, "options: unsupported control kind for scanning")
	}
	if err != nil {
		return nil, err
	}
	return truncate(opts), nil
}

func truncate(opts []string) []string {
	if len(opts) <= catalog.MaxOptionsBeforeTruncation {
		return opts
	}
	out := append([]string{}, opts[:catalog.MaxOptionsBeforeTruncation]...)
	return append(out, catalog.TruncatedSentinel)
}

// scanNativeSelect enumerates <option> text content.
func scanNativeSelect(ctx context.Context, d browser.Driver, h browser.Handle) ([]string, error) {
	raw, err := d.Evaluate(ctx, `(el) => Array.from(el.options).map(o => o.textContent)`, h)
	if err != nil {
		return nil, err
	}
	opts, _ := raw.([]string)
	return opts, nil
}

// scanCombobox handles the COMBOBOX path: click to open, resolve the
// listbox (visible [role=listbox], else the element aria-controls points
// at), else fall back to native-option enumeration. Scrolls the listbox
// progressively, appending unseen option texts each round, until a round
// adds nothing new or maxScrollRounds is reached.
func scanCombobox(ctx context.Context, d browser.Driver, h browser.Handle) ([]string, error) {
	if err := h.Click(ctx, browser.ClickOpts{}); err != nil {
		return nil, err
	}

	listbox, ok := findOpenListbox(ctx, d, h)
	if !ok {
		_ = d.Keyboard(ctx, "Escape")
		return scanNativeSelect(ctx, d, h)
	}

	seen := map[string]bool{}
	var ordered []string
	for round := 0; round < maxScrollRounds; round++ {
		before := len(ordered)
		for _, opt := range visibleOptionTexts(ctx, d) {
			if !seen[opt] {
				seen[opt] = true
				ordered = append(ordered, opt)
			}
		}
		if len(ordered) == before {
			break
		}
		if _, err := d.Evaluate(ctx, `(el) => { el.scrollTop += el.clientHeight }`, listbox); err != nil {
			break
		}
	}

	_ = d.Keyboard(ctx, "Escape")
	return ordered, nil
}

func findOpenListbox(ctx context.Context, d browser.Driver, h browser.Handle) (browser.Handle, bool) {
	found, err := d.QueryAll(ctx, `[role="listbox"]`)
	if err == nil {
		for _, l := range found {
			if v, err := l.IsVisible(ctx); err == nil && v {
				return l, true
			}
		}
	}
	if controls, ok, _ := h.GetAttribute(ctx, "aria-controls"); ok && controls != "" {
		if el, err := d.Query(ctx, "#"+controls); err == nil && el != nil {
			if v, err := el.IsVisible(ctx); err == nil && v {
				return el, true
			}
		}
	}
	return nil, false
}

func visibleOptionTexts(ctx context.Context, d browser.Driver) []string {
	candidates, err := d.QueryAll(ctx, `[role="option"]`)
	if err != nil {
		return nil
	}
	var out []string
	for _, c := range candidates {
		if v, err := c.IsVisible(ctx); err != nil || !v {
			continue
		}
		if text, err := c.TextContent(ctx); err == nil {
			out = append(out, strings.TrimSpace(text))
		}
	}
	return out
}

// scanRadioGroup enumerates the radio group h belongs to, keyed by its
// "name" attribute, labeling each member in priority order: aria-label,
// associated label[for], value, positional "Option N".
func scanRadioGroup(ctx context.Context, d browser.Driver, h browser.Handle) ([]string, error) {
	name, ok, err := h.GetAttribute(ctx, "name")
	if err != nil {
		return nil, err
	}
	if !ok || name == "" {
		return []string{radioLabel(ctx, d, h, 1)}, nil
	}

	group, err := d.QueryAll(ctx, fmt.Sprintf(`input[type="radio"][name="%s"]`, name))
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(group))
	for i, member := range group {
		labels = append(labels, radioLabel(ctx, d, member, i+1))
	}
	return labels, nil
}

func radioLabel(ctx context.Context, d browser.Driver, h browser.Handle, position int) string {
	if v, ok, _ := h.GetAttribute(ctx, "aria-label"); ok && strings.TrimSpace(v) != "" {
		return v
	}
	if id, ok, _ := h.GetAttribute(ctx, "id"); ok && id != "" {
		if label, err := d.Query(ctx, fmt.Sprintf(`label[for="%s"]`, id)); err == nil && label != nil {
			if txt, err := label.TextContent(ctx); err == nil && strings.TrimSpace(txt) != "" {
				return strings.TrimSpace(txt)
			}
		}
	}
	// Wrapping-label-minus-self requires ancestor DOM traversal a real
	// driver resolves via Evaluate; the fake driver and this tier fall
	// through to the value/positional fallbacks below.
	if v, ok, _ := h.GetAttribute(ctx, "value"); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fmt.Sprintf("Option %d", position)
}
