// Package scanner implements the DOM scanner: it produces an ordered list
// of inventories (section name + visible interactive elements), each
// element's provenance-ranked label, and a stable derived CSS selector,
// using a priority-ordered fallback chain to derive a label or selector.
package scanner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/catalog"
)

// ElementInfo is one visible interactive element discovered by a scan.
type ElementInfo struct {
	Tag         string
	Role        string
	Attrs       map[string]string
	Text        string
	Rect        browser.Rect
	Visible     bool
	Label       string
	LabelSource catalog.LabelSource
	CSSSelector string
	FieldType   catalog.FieldType
	Options     []string
}

// SectionInventory pairs a section heading with its elements.
type SectionInventory struct {
	Section        string
	Elements       []ElementInfo
	AddButtonLabel string // visible text of an "Add …" button found in this section, if any
}

// sectionSelectors is the closed list of heading/legend/accordion-trigger
// selectors the scanner descends.
var sectionSelectors = []string{
	"h1", "h2", "h3", "h4", "legend",
	"[role=heading]", "[aria-expanded][role=button]", ".accordion-trigger", "[data-accordion-trigger]",
}

// noiseBlocklist is the exact-match blocklist of non-section heading text.
var noiseBlocklist = map[string]bool{
	"loading": true, "error": true, "untitled": true, "": true,
}

var shortNumericRe = regexp.MustCompile(`^\d{1,3}$`)
var pageTitleRe = regexp.MustCompile(`(?i)pricing calculator|amazon web services|aws\b`)

// IsNoiseSectionName reports whether label should be rejected as a section
// heading: exact blocklist, short-numeric regex, page-title regex, or
// length outside [3,120].
func IsNoiseSectionName(label string) bool {
	trimmed := strings.TrimSpace(label)
	if noiseBlocklist[strings.ToLower(trimmed)] {
		return true
	}
	if shortNumericRe.MatchString(trimmed) {
		return true
	}
	if pageTitleRe.MatchString(trimmed) {
		return true
	}
	if len(trimmed) < 3 || len(trimmed) > 120 {
		return true
	}
	return false
}

// volatileIDPattern matches the auto-generated form-field id pattern that
// must not be used to build a selector.
var volatileIDPattern = regexp.MustCompile(`^formField\d+-\d+-\d+$`)

// DeriveLabel resolves an element's label in priority order: aria-label,
// aria-labelledby, label[for], wrapping label minus own text, nearest
// heuristic text, else none/UNKNOWN.
func DeriveLabel(ctx context.Context, d browser.Driver, h browser.Handle, attrs map[string]string) (string, catalog.LabelSource) {
	if v := strings.TrimSpace(attrs["aria-label"]); v != "" {
		return v, catalog.LabelSourceAria
	}
	if refs := strings.TrimSpace(attrs["aria-labelledby"]); refs != "" {
		var parts []string
		for _, id := range strings.Fields(refs) {
			if el, err := d.Query(ctx, "#"+cssEscape(id)); err == nil && el != nil {
				if txt, err := el.TextContent(ctx); err == nil && strings.TrimSpace(txt) != "" {
					parts = append(parts, strings.TrimSpace(txt))
				}
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " "), catalog.LabelSourceAriaBy
		}
	}
	if id := strings.TrimSpace(attrs["id"]); id != "" {
		if el, err := d.Query(ctx, fmt.Sprintf(`label[for="%s"]`, cssEscape(id))); err == nil && el != nil {
			if txt, err := el.TextContent(ctx); err == nil && strings.TrimSpace(txt) != "" {
				return strings.TrimSpace(txt), catalog.LabelSourceLabelFor
			}
		}
	}
	if v, err := d.Evaluate(ctx, labelWrapScript, h); err == nil {
		if txt, ok := v.(string); ok && strings.TrimSpace(txt) != "" {
			return strings.TrimSpace(txt), catalog.LabelSourceLabelWrap
		}
	}
	if v, err := d.Evaluate(ctx, precedingTextScript, h); err == nil {
		if txt, ok := v.(string); ok && strings.TrimSpace(txt) != "" {
			return strings.TrimSpace(txt), catalog.LabelSourceHeuristic
		}
	}
	return "", catalog.LabelSourceNone
}

// labelWrapScript finds an ancestor label element and returns its text with
// the field's own text subtracted (step 4: label_wrap).
const labelWrapScript = `el => {
	const l = el.closest('label');
	if (!l) return '';
	return l.textContent.replace(el.textContent || '', '').trim();
}`

// precedingTextScript walks back through preceding siblings at the same
// indent level for the nearest non-empty text (step 5: heuristic).
const precedingTextScript = `el => {
	let n = el.previousElementSibling;
	while (n) {
		const t = (n.textContent || '').trim();
		if (t) return t;
		n = n.previousElementSibling;
	}
	return '';
}`

// attrSelectorCandidates names, in priority order, the data attributes
// tried after id/aria-label.
var attrSelectorCandidates = []string{"data-testid", "data-id", "data-automation-id"}

// DeriveCSSSelector builds a stable CSS selector in priority order:
// tag[id=…] (unless the id is the volatile formField pattern),
// [aria-label=…], any of data-testid|data-id|data-automation-id, [name=…],
// [aria-labelledby=…], [aria-controls=…], [role=…][aria-label=…], else the
// UNKNOWN sentinel. All attribute values are CSS-escaped.
func DeriveCSSSelector(tag string, attrs map[string]string) string {
	if id := attrs["id"]; id != "" && !volatileIDPattern.MatchString(id) {
		return fmt.Sprintf(`%s[id="%s"]`, tag, cssEscape(id))
	}
	if v := attrs["aria-label"]; v != "" {
		return fmt.Sprintf(`[aria-label="%s"]`, cssEscape(v))
	}
	for _, attr := range attrSelectorCandidates {
		if v := attrs[attr]; v != "" {
			return fmt.Sprintf(`[%s="%s"]`, attr, cssEscape(v))
		}
	}
	if v := attrs["name"]; v != "" {
		return fmt.Sprintf(`[name="%s"]`, cssEscape(v))
	}
	if v := attrs["aria-labelledby"]; v != "" {
		return fmt.Sprintf(`[aria-labelledby="%s"]`, cssEscape(v))
	}
	if v := attrs["aria-controls"]; v != "" {
		return fmt.Sprintf(`[aria-controls="%s"]`, cssEscape(v))
	}
	if role := attrs["role"]; role != "" {
		if v := attrs["aria-label"]; v != "" {
			return fmt.Sprintf(`[role="%s"][aria-label="%s"]`, cssEscape(role), cssEscape(v))
		}
	}
	return catalog.UnknownSelector
}

// cssEscape escapes a value for safe embedding in a CSS attribute selector.
func cssEscape(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}

// DetectFieldType maps a resolved element's tag/type/role to the closed
// FieldType set.
func DetectFieldType(tag, inputType, role string) catalog.FieldType {
	tag = strings.ToLower(tag)
	inputType = strings.ToLower(inputType)
	role = strings.ToLower(role)

	switch {
	case tag == "input" && inputType == "number":
		return catalog.FieldNumber
	case tag == "input" && (inputType == "text" || inputType == "tel" || inputType == "email"):
		return catalog.FieldText
	case tag == "input" && inputType == "checkbox":
		return catalog.FieldToggle
	case tag == "input" && inputType == "radio":
		return catalog.FieldRadio
	case tag == "select":
		return catalog.FieldSelect
	case tag == "textarea":
		return catalog.FieldText
	case role == "combobox":
		return catalog.FieldCombobox
	case role == "spinbutton":
		return catalog.FieldNumber
	case role == "switch":
		return catalog.FieldToggle
	case role == "radio":
		return catalog.FieldRadio
	case role == "listbox":
		return catalog.FieldSelect
	default:
		return catalog.FieldText
	}
}
