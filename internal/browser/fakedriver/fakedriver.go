// Package fakedriver is an in-memory browser.Driver used by unit tests
// across the core. It models a fixed DOM as a tree of fake elements keyed
// by CSS selector, ARIA label, and role, with gate controls able to toggle
// visibility of other elements — enough to drive locator, interactor, and
// explorer tests without a real browser engine.
package fakedriver

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/coreerr"
)

// Element is a node in the fake DOM.
type Element struct {
	Selector    string
	Role        string
	AriaLabel   string
	Text        string
	Tag         string
	Type        string // input type, e.g. "number", "checkbox"
	Attrs       map[string]string
	Visible     bool
	Value       string
	Checked     bool
	Rect        browser.Rect
	Options     []string // for select/listbox-like elements
	GateTargets []string // selectors this element reveals when actuated

	// LabelWrapText and PrecedingText seed the label_wrap / heuristic
	// DeriveLabel tiers, standing in for what a real driver's Evaluate
	// would compute by walking the live DOM (closest('label'), walking
	// previousElementSibling).
	LabelWrapText string
	PrecedingText string
}

// Driver is the fake browser.Driver.
type Driver struct {
	mu       sync.Mutex
	elements map[string]*Element
	order    []string
	viewport browser.Viewport
}

// New returns an empty Driver with the given viewport.
func New(viewport browser.Viewport) *Driver {
	return &Driver{elements: map[string]*Element{}, viewport: viewport}
}

// AddElement registers el, keyed by its Selector.
func (d *Driver) AddElement(el Element) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el.Attrs == nil {
		el.Attrs = map[string]string{}
	}
	if _, exists := d.elements[el.Selector]; !exists {
		d.order = append(d.order, el.Selector)
	}
	d.elements[el.Selector] = &el
}

// SetVisible toggles an element's visibility directly (used to seed gate effects).
func (d *Driver) SetVisible(selector string, visible bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if el, ok := d.elements[selector]; ok {
		el.Visible = visible
	}
}

// Elements returns the elements currently visible, in registration order.
func (d *Driver) Elements() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Element, 0, len(d.order))
	for _, sel := range d.order {
		if el := d.elements[sel]; el.Visible {
			out = append(out, el)
		}
	}
	return out
}

func (d *Driver) Goto(ctx context.Context, url string, mode browser.WaitMode) error { return nil }

func (d *Driver) Query(ctx context.Context, selector string) (browser.Handle, error) {
	d.mu.Lock()
	el, ok := d.elements[selector]
	d.mu.Unlock()
	if ok {
		if !el.Visible {
			return nil, nil
		}
		return &handle{d: d, el: el}, nil
	}
	for _, el := range d.Elements() {
		if matchesSelector(el, selector) {
			return &handle{d: d, el: el}, nil
		}
	}
	return nil, nil
}

func (d *Driver) QueryAll(ctx context.Context, selector string) ([]browser.Handle, error) {
	var out []browser.Handle
	for _, el := range d.Elements() {
		if matchesSelector(el, selector) {
			out = append(out, &handle{d: d, el: el})
		}
	}
	return out, nil
}

func (d *Driver) ByRole(ctx context.Context, q browser.RoleQuery) (browser.Handle, error) {
	for _, el := range d.Elements() {
		if el.Role != q.Role {
			continue
		}
		if nameMatches(el.AriaLabel, q.Name, q.Exact) || nameMatches(el.Text, q.Name, q.Exact) {
			return &handle{d: d, el: el}, nil
		}
	}
	return nil, nil
}

func (d *Driver) ByLabel(ctx context.Context, text string, exact bool) (browser.Handle, error) {
	for _, el := range d.Elements() {
		if nameMatches(el.AriaLabel, text, exact) {
			return &handle{d: d, el: el}, nil
		}
	}
	return nil, nil
}

func (d *Driver) ByText(ctx context.Context, q browser.TextQuery) (browser.Handle, error) {
	for _, el := range d.Elements() {
		if nameMatches(el.Text, q.Text, q.Exact) {
			return &handle{d: d, el: el}, nil
		}
	}
	return nil, nil
}

// Evaluate recognizes the small set of scripts this core actually runs
// (set-value-and-dispatch-input, enumerate select options, scroll a
// listbox) by sniffing for a telltale substring, and resolves them against
// the *handle passed as the first arg. Unrecognized scripts are a no-op,
// matching a real driver's Evaluate returning whatever the script computes.
func (d *Driver) Evaluate(ctx context.Context, script string, args ...any) (any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	h, ok := args[0].(*handle)
	if !ok {
		return nil, nil
	}

	switch {
	case strings.Contains(script, "el.options"):
		d.mu.Lock()
		defer d.mu.Unlock()
		return append([]string{}, h.el.Options...), nil
	case strings.Contains(script, "el.value = v"):
		if len(args) < 2 {
			return nil, nil
		}
		v, _ := args[1].(string)
		return nil, h.Fill(ctx, v)
	case strings.Contains(script, "scrollTop"):
		return nil, nil
	case strings.Contains(script, "closest('label')"):
		return h.el.LabelWrapText, nil
	case strings.Contains(script, "previousElementSibling"):
		return h.el.PrecedingText, nil
	}
	return nil, nil
}

func (d *Driver) Screenshot(ctx context.Context, path string) error { return nil }

func (d *Driver) Keyboard(ctx context.Context, keyOrChord string) error { return nil }

func (d *Driver) Wait(ctx context.Context, dur time.Duration) error { return nil }

func (d *Driver) Viewport(ctx context.Context) (browser.Viewport, error) { return d.viewport, nil }

func nameMatches(have, want string, exact bool) bool {
	if want == "" {
		return false
	}
	if exact {
		return have == want
	}
	return strings.Contains(strings.ToLower(have), strings.ToLower(want))
}

// attrSelectorPartRe matches one bracket predicate: [attr], [attr=val],
// [attr="val"], or [attr='val']. Group 2 (with its leading "=") is empty for
// a bare presence check; groups 3/4/5 hold the quoted/unquoted value.
var attrSelectorPartRe = regexp.MustCompile(`\[([a-zA-Z-]+)(=(?:"([^"]*)"|'([^']*)'|([^\]]*)))?\]`)

// matchesSelector supports the small subset of CSS this fake driver needs
// to exercise: a bare tag name, comma-separated lists of compounds, and a
// tag optionally followed by one or more bracket predicates — either
// presence ([role]) or value ([attr="value"], [attr=value]) — matched
// against Tag/Type/Role and the Attrs map (a value predicate on aria-label
// reads AriaLabel first, as GetAttribute does).
func matchesSelector(el *Element, selector string) bool {
	if selector == el.Selector {
		return true
	}
	for _, part := range strings.Split(selector, ",") {
		part = strings.TrimSpace(part)
		if matchesSimpleCompound(el, part) {
			return true
		}
	}
	return false
}

func matchesSimpleCompound(el *Element, compound string) bool {
	tag := compound
	if idx := strings.Index(compound, "["); idx >= 0 {
		tag = compound[:idx]
	}
	if tag != "" && tag != el.Tag {
		return false
	}

	for _, m := range attrSelectorPartRe.FindAllStringSubmatch(compound, -1) {
		attr := m[1]
		if m[2] == "" {
			if !elementHasAnyAttr(el, attr) {
				return false
			}
			continue
		}
		want := m[3]
		if want == "" {
			want = m[4]
		}
		if want == "" {
			want = m[5]
		}
		if !elementHasAttr(el, attr, want) {
			return false
		}
	}
	return true
}

func elementHasAnyAttr(el *Element, attr string) bool {
	switch attr {
	case "type":
		return el.Type != ""
	case "role":
		return el.Role != ""
	default:
		_, ok := el.Attrs[attr]
		return ok
	}
}

func elementHasAttr(el *Element, attr, want string) bool {
	switch attr {
	case "type":
		return el.Type == want
	case "role":
		return el.Role == want
	case "aria-label":
		if el.AriaLabel != "" {
			return el.AriaLabel == want
		}
		return el.Attrs[attr] == want
	default:
		return el.Attrs[attr] == want
	}
}

type handle struct {
	d  *Driver
	el *Element
}

func (h *handle) TagName(ctx context.Context) (string, error) { return h.el.Tag, nil }

func (h *handle) Click(ctx context.Context, opts browser.ClickOpts) error {
	if !h.el.Visible && !opts.Force {
		return coreerr.New(coreerr.KindElementNotVisible, "element not visible: "+h.el.Selector)
	}
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	if h.el.Type == "checkbox" || h.el.Type == "radio" || h.el.Role == "switch" {
		h.el.Checked = !h.el.Checked
	}
	for _, target := range h.el.GateTargets {
		if t, ok := h.d.elements[target]; ok {
			t.Visible = h.el.Checked || h.el.Role != "switch"
		}
	}
	return nil
}

func (h *handle) Fill(ctx context.Context, text string) error {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	h.el.Value = text
	return nil
}

func (h *handle) SelectOption(ctx context.Context, opts browser.SelectOpts) error {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	target := opts.Label
	if target == "" {
		target = opts.Value
	}
	for _, o := range h.el.Options {
		if strings.EqualFold(o, target) {
			h.el.Value = o
			return nil
		}
	}
	return coreerr.New(coreerr.KindElementNotFound, fmt.Sprintf("option %q not found", target))
}

func (h *handle) BoundingBox(ctx context.Context) (browser.Rect, bool, error) {
	return h.el.Rect, true, nil
}

func (h *handle) IsVisible(ctx context.Context) (bool, error) { return h.el.Visible, nil }

func (h *handle) TextContent(ctx context.Context) (string, error) { return h.el.Text, nil }

func (h *handle) GetAttribute(ctx context.Context, name string) (string, bool, error) {
	switch name {
	case "aria-checked":
		return fmt.Sprintf("%v", h.el.Checked), true, nil
	case "aria-label":
		if h.el.AriaLabel != "" {
			return h.el.AriaLabel, true, nil
		}
		v, ok := h.el.Attrs["aria-label"]
		return v, ok, nil
	case "value":
		if h.el.Value != "" {
			return h.el.Value, true, nil
		}
		if v, ok := h.el.Attrs["value"]; ok {
			return v, true, nil
		}
		return "", true, nil
	case "type":
		if h.el.Type != "" {
			return h.el.Type, true, nil
		}
		v, ok := h.el.Attrs["type"]
		return v, ok, nil
	case "role":
		if h.el.Role != "" {
			return h.el.Role, true, nil
		}
		v, ok := h.el.Attrs["role"]
		return v, ok, nil
	}
	v, ok := h.el.Attrs[name]
	return v, ok, nil
}

func (h *handle) ScrollIntoViewIfNeeded(ctx context.Context) error { return nil }

func (h *handle) WaitForState(ctx context.Context, state string, timeout time.Duration) error {
	return nil
}
