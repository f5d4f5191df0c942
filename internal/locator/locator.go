// Package locator implements the tiered element-resolution algorithm:
// catalog CSS → aria-label → label[for] → role+name → visible-text
// proximity → find-in-page fallback, stopping at the first tier that
// resolves an element.
package locator

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/coreerr"
	"github.com/brennhill/calibrator/internal/scanner"
)

// Strategy names the tier that resolved an element, or which failed.
type Strategy string

const (
	StrategyCatalogCSS     Strategy = "catalog_css"
	StrategyAriaLabel      Strategy = "aria_label"
	StrategyLabelFor       Strategy = "label_for"
	StrategyRoleName       Strategy = "role_name"
	StrategyTextProximity  Strategy = "text_proximity"
	StrategyFindInPage     Strategy = "find_in_page"
	StrategyNone           Strategy = ""
)

// roleOrder is the ordered role list tier 4 tries.
var roleOrder = []string{"spinbutton", "combobox", "textbox", "switch", "checkbox", "radio"}

// findInPageSelectorPriority is the fixed selector-priority list tier 6
// orders candidates by.
var findInPageSelectorPriority = []string{
	"number", "text", "select", "combobox", "spinbutton", "switch", "radio", "listbox", "textarea", "contenteditable",
}

const (
	catalogCSSWait    = 2 * time.Second
	proximityBandPx   = 100.0
	findInPageBandPx  = 150.0
)

// Options configures FindElement.
type Options struct {
	PrimaryCSS string
	Required   bool
	Context    string // free-form context, carried into diagnostics only
}

// Status is the outcome status of a locate attempt.
type Status string

const (
	StatusFound   Status = "found"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of FindElement.
type Result struct {
	Element   browser.Handle
	FieldType catalog.FieldType
	Strategy  Strategy
	Status    Status
}

// ScreenshotFunc captures a screenshot for a failed locate, named per the
// run's screenshot path template.
type ScreenshotFunc func(ctx context.Context, dimensionKey string) error

// LogFunc receives the locator_not_found event.
type LogFunc func(dimensionKey string, fields map[string]any)

// FindElement resolves dimensionKey to a concrete control, trying each tier
// in order and stopping at the first success.
func FindElement(ctx context.Context, d browser.Driver, dimensionKey string, opts Options, shot ScreenshotFunc, logf LogFunc) (Result, error) {
	if opts.PrimaryCSS != "" {
		if h, ok := tryCatalogCSS(ctx, d, opts.PrimaryCSS); ok {
			return resultFor(ctx, h, StrategyCatalogCSS)
		}
	}

	if h, ok := tryAriaLabel(ctx, d, dimensionKey); ok {
		return resultFor(ctx, h, StrategyAriaLabel)
	}

	if h, ok := tryLabelFor(ctx, d, dimensionKey); ok {
		return resultFor(ctx, h, StrategyLabelFor)
	}

	if h, ok := tryRoleName(ctx, d, dimensionKey); ok {
		return resultFor(ctx, h, StrategyRoleName)
	}

	if h, ok := tryTextProximity(ctx, d, dimensionKey); ok {
		return resultFor(ctx, h, StrategyTextProximity)
	}

	if h, ok := tryFindInPage(ctx, d, dimensionKey); ok {
		return resultFor(ctx, h, StrategyFindInPage)
	}

	if logf != nil {
		logf(dimensionKey, map[string]any{"event_type": "locator_not_found"})
	}
	if shot != nil {
		_ = shot(ctx, dimensionKey)
	}

	status := StatusFailed
	if !opts.Required {
		status = StatusSkipped
	}
	return Result{Status: status, Strategy: StrategyNone}, coreerr.New(coreerr.KindLocatorNotFound, "no strategy resolved dimension "+dimensionKey)
}

func resultFor(ctx context.Context, h browser.Handle, strat Strategy) (Result, error) {
	ft := fieldTypeOf(ctx, h)
	return Result{Element: h, FieldType: ft, Strategy: strat, Status: StatusFound}, nil
}

func fieldTypeOf(ctx context.Context, h browser.Handle) catalog.FieldType {
	tag, _ := h.TagName(ctx)
	inputType, _, _ := h.GetAttribute(ctx, "type")
	role, _, _ := h.GetAttribute(ctx, "role")
	return scanner.DetectFieldType(tag, inputType, role)
}

func tryCatalogCSS(ctx context.Context, d browser.Driver, css string) (browser.Handle, bool) {
	waitCtx, cancel := context.WithTimeout(ctx, catalogCSSWait)
	defer cancel()

	h, err := d.Query(waitCtx, css)
	if err != nil || h == nil {
		return nil, false
	}
	if err := h.WaitForState(waitCtx, "visible", catalogCSSWait); err != nil {
		return nil, false
	}
	return h, true
}

func tryAriaLabel(ctx context.Context, d browser.Driver, key string) (browser.Handle, bool) {
	h, err := d.ByLabel(ctx, key, false)
	if err != nil || h == nil {
		return nil, false
	}
	return h, true
}

func tryLabelFor(ctx context.Context, d browser.Driver, key string) (browser.Handle, bool) {
	// Resolved via the driver's label-association equivalent of ByLabel;
	// distinct tier from aria-label substring match in that it requires an
	// exact label[for] association rather than a case-insensitive substring.
	h, err := d.ByLabel(ctx, key, true)
	if err != nil || h == nil {
		return nil, false
	}
	return h, true
}

func tryRoleName(ctx context.Context, d browser.Driver, key string) (browser.Handle, bool) {
	for _, role := range roleOrder {
		h, err := d.ByRole(ctx, browser.RoleQuery{Role: role, Name: key})
		if err == nil && h != nil {
			return h, true
		}
	}
	return nil, false
}

// interactiveSelector is the candidate list tier 5 queries within the
// proximity band.
const interactiveSelector = "input, select, textarea, [role=combobox], [role=spinbutton]"

func tryTextProximity(ctx context.Context, d browser.Driver, key string) (browser.Handle, bool) {
	textHandle, err := d.ByText(ctx, browser.TextQuery{Text: key})
	if err != nil || textHandle == nil {
		return nil, false
	}
	textRect, ok, err := textHandle.BoundingBox(ctx)
	if err != nil || !ok {
		return nil, false
	}

	candidates, err := d.QueryAll(ctx, interactiveSelector)
	if err != nil {
		return nil, false
	}
	return nearestWithinBand(ctx, candidates, textRect, proximityBandPx)
}

func tryFindInPage(ctx context.Context, d browser.Driver, key string) (browser.Handle, bool) {
	chord := "Control+f"
	if runtime.GOOS == "darwin" {
		chord = "Meta+f"
	}
	if err := d.Keyboard(ctx, chord); err != nil {
		return nil, false
	}
	if err := d.Keyboard(ctx, key); err != nil {
		return nil, false
	}

	rawRect, err := d.Evaluate(ctx, "getBoundingClientRect(selection)")
	if err != nil {
		return nil, false
	}
	selRect, ok := rawRect.(browser.Rect)
	if !ok {
		return nil, false
	}

	var ordered []browser.Handle
	for _, sel := range findInPageSelectorPriority {
		found, err := d.QueryAll(ctx, selectorForFindInPagePriority(sel))
		if err != nil {
			continue
		}
		ordered = append(ordered, found...)
	}
	_ = d.Keyboard(ctx, "Escape")

	h, found := nearestWithinBand(ctx, ordered, selRect, findInPageBandPx)
	return h, found
}

func selectorForFindInPagePriority(kind string) string {
	switch kind {
	case "number":
		return `input[type="number"]`
	case "text":
		return `input[type="text"]`
	case "select":
		return "select"
	case "combobox":
		return `[role="combobox"]`
	case "spinbutton":
		return `[role="spinbutton"]`
	case "switch":
		return `[role="switch"]`
	case "radio":
		return `input[type="radio"]`
	case "listbox":
		return `[role="listbox"]`
	case "textarea":
		return "textarea"
	case "contenteditable":
		return `[contenteditable="true"]`
	default:
		return fmt.Sprintf("[data-kind=%q]", kind)
	}
}

// nearestWithinBand returns the candidate whose vertical center is within
// band pixels of ref and closest to it, preserving candidate order as the
// tie-break (callers supply candidates already ordered by selector
// priority).
func nearestWithinBand(ctx context.Context, candidates []browser.Handle, ref browser.Rect, band float64) (browser.Handle, bool) {
	refCenterY := ref.Y + ref.Height/2
	var best browser.Handle
	bestDelta := math.MaxFloat64

	for _, c := range candidates {
		rect, ok, err := c.BoundingBox(ctx)
		if err != nil || !ok {
			continue
		}
		centerY := rect.Y + rect.Height/2
		delta := math.Abs(centerY - refCenterY)
		if delta > band {
			continue
		}
		if delta < bestDelta {
			bestDelta = delta
			best = c
		}
	}
	return best, best != nil
}
