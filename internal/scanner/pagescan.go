package scanner

import (
	"context"
	"sort"
	"strings"

	"github.com/brennhill/calibrator/internal/browser"
)

// UnknownSection is the sentinel section label for a control with no
// heading above it.
const UnknownSection = "UNKNOWN"

// pageCandidateSelector is the closed set of tags/roles ScanPage treats as
// scannable interactive controls.
const pageCandidateSelector = `input, select, textarea, [role="combobox"], [role="spinbutton"], [role="switch"], [role="radio"], [role="listbox"]`

const addButtonTag = "button"

// KnownAttrs lists the attribute names this core ever reads off a scanned
// element — the selector/label derivation candidates plus the type/role
// discriminants DetectFieldType needs. The driver has no generic
// "list every attribute" primitive, so the scanner asks for exactly the
// attributes the downstream pipeline reads rather than scraping everything.
var KnownAttrs = []string{
	"id", "aria-label", "aria-labelledby", "name",
	"data-testid", "data-id", "data-automation-id",
	"aria-controls", "role", "type", "value", "aria-checked", "required", "aria-required",
}

// CollectAttrs reads KnownAttrs off h via GetAttribute, omitting any that
// are absent.
func CollectAttrs(ctx context.Context, h browser.Handle) map[string]string {
	attrs := map[string]string{}
	for _, name := range KnownAttrs {
		if v, ok, _ := h.GetAttribute(ctx, name); ok {
			attrs[name] = v
		}
	}
	return attrs
}

// ScanPage walks the current page and returns an ordered list of section
// inventories. Headings are found via sectionSelectors; an interactive
// control is assigned to the nearest heading whose bounding box sits
// above it — the driver gives no "nearest ancestor heading" primitive, so
// section assignment reuses the vertical-proximity idea locator.go's
// text-proximity tier already applies to match a label to its control.
func ScanPage(ctx context.Context, d browser.Driver) ([]SectionInventory, error) {
	headings, err := scanHeadings(ctx, d)
	if err != nil {
		return nil, err
	}

	candidates, err := d.QueryAll(ctx, pageCandidateSelector)
	if err != nil {
		return nil, err
	}

	// order preserves insertion order of first appearance (section
	// building downstream relies on this); UNKNOWN is not seeded up front —
	// it only joins order the first time some control actually lands there.
	var order []string
	bySection := map[string]*SectionInventory{}
	ensure := func(name string) *SectionInventory {
		if inv, ok := bySection[name]; ok {
			return inv
		}
		inv := &SectionInventory{Section: name}
		bySection[name] = inv
		order = append(order, name)
		return inv
	}

	for _, h := range candidates {
		visible, err := h.IsVisible(ctx)
		if err != nil || !visible {
			continue
		}
		info, err := buildElementInfo(ctx, d, h)
		if err != nil {
			continue
		}
		section := nearestHeadingAbove(headings, info.Rect)
		inv := ensure(section)
		inv.Elements = append(inv.Elements, info)
	}

	attachAddButtons(ctx, d, headings, ensure)

	out := make([]SectionInventory, 0, len(order))
	for _, name := range order {
		out = append(out, *bySection[name])
	}
	return out, nil
}

type heading struct {
	Label string
	Rect  browser.Rect
}

func scanHeadings(ctx context.Context, d browser.Driver) ([]heading, error) {
	found, err := d.QueryAll(ctx, strings.Join(sectionSelectors, ", "))
	if err != nil {
		return nil, err
	}
	var out []heading
	for _, h := range found {
		visible, err := h.IsVisible(ctx)
		if err != nil || !visible {
			continue
		}
		text, err := h.TextContent(ctx)
		if err != nil {
			continue
		}
		label := strings.TrimSpace(text)
		if IsNoiseSectionName(label) {
			continue
		}
		rect, ok, err := h.BoundingBox(ctx)
		if err != nil || !ok {
			continue
		}
		out = append(out, heading{Label: label, Rect: rect})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rect.Y < out[j].Rect.Y })
	return out, nil
}

// nearestHeadingAbove returns the label of the heading with the greatest Y
// not exceeding rect.Y, or UnknownSection if none qualifies.
func nearestHeadingAbove(headings []heading, rect browser.Rect) string {
	best := UnknownSection
	bestY := -1.0
	for _, h := range headings {
		if h.Rect.Y <= rect.Y && h.Rect.Y > bestY {
			bestY = h.Rect.Y
			best = h.Label
		}
	}
	return best
}

func buildElementInfo(ctx context.Context, d browser.Driver, h browser.Handle) (ElementInfo, error) {
	tag, err := h.TagName(ctx)
	if err != nil {
		return ElementInfo{}, err
	}
	attrs := CollectAttrs(ctx, h)
	text, _ := h.TextContent(ctx)
	rect, _, _ := h.BoundingBox(ctx)
	label, labelSource := DeriveLabel(ctx, d, h, attrs)
	selector := DeriveCSSSelector(tag, attrs)
	fieldType := DetectFieldType(tag, attrs["type"], attrs["role"])

	return ElementInfo{
		Tag:         tag,
		Role:        attrs["role"],
		Attrs:       attrs,
		Text:        text,
		Rect:        rect,
		Visible:     true,
		Label:       label,
		LabelSource: labelSource,
		CSSSelector: selector,
		FieldType:   fieldType,
	}, nil
}

// attachAddButtons records the visible text of any "Add …" button in the
// section nearest above it, as the repeatable-row trigger. Errors querying
// buttons are non-fatal to the overall scan: a page with no
// repeatable-row trigger is the common case, not a failure.
func attachAddButtons(ctx context.Context, d browser.Driver, headings []heading, ensure func(string) *SectionInventory) {
	buttons, err := d.QueryAll(ctx, addButtonTag)
	if err != nil {
		return
	}
	for _, b := range buttons {
		visible, err := b.IsVisible(ctx)
		if err != nil || !visible {
			continue
		}
		text, err := b.TextContent(ctx)
		if err != nil || !strings.HasPrefix(strings.TrimSpace(text), "Add ") {
			continue
		}
		rect, ok, err := b.BoundingBox(ctx)
		if err != nil || !ok {
			continue
		}
		section := nearestHeadingAbove(headings, rect)
		ensure(section).AddButtonLabel = strings.TrimSpace(text)
	}
}
