package orchestrator

import (
	"context"

	"github.com/brennhill/calibrator/internal/browser"
	"github.com/brennhill/calibrator/internal/coreerr"
)

// DriverNavigator is the concrete CardNavigator built directly on the
// browser.Driver primitives: opening a card is a visible-text click,
// expanding a section is clicking each gate control's trigger selector in
// turn.
type DriverNavigator struct {
	Driver browser.Driver
}

// OpenServicePage finds the calculator's card for serviceID by its visible
// text and clicks it onto the page.
func (n DriverNavigator) OpenServicePage(ctx context.Context, serviceID string) error {
	h, err := n.Driver.ByText(ctx, browser.TextQuery{Text: serviceID, Exact: false})
	if err != nil {
		return coreerr.Wrap(coreerr.KindResolution, "locating service card: "+serviceID, err)
	}
	if h == nil {
		return coreerr.New(coreerr.KindResolution, "service card not found: "+serviceID)
	}
	return h.Click(ctx, browser.ClickOpts{})
}

// RegionContext reads the calculator's region selector, if present. A
// missing or unlabeled region control is not fatal — callers treat an
// empty result as "no region".
func (n DriverNavigator) RegionContext(ctx context.Context) (string, error) {
	h, err := n.Driver.ByLabel(ctx, "Region", false)
	if err != nil {
		return "", err
	}
	if h == nil {
		return "", nil
	}
	return h.TextContent(ctx)
}

// ExpandSections clicks each gate control trigger in turn so the sections
// they reveal are present in the DOM before the engine or the fill pass
// reads it. A trigger already expanded (absent from the page) is skipped.
func (n DriverNavigator) ExpandSections(ctx context.Context, triggers []string) error {
	for _, sel := range triggers {
		h, err := n.Driver.Query(ctx, sel)
		if err != nil {
			return err
		}
		if h == nil {
			continue
		}
		if err := h.Click(ctx, browser.ClickOpts{}); err != nil {
			return err
		}
	}
	return nil
}

// NavigateFunc adapts the navigator into runner mode's per-service
// collaborator: open the service's card, then expand whatever sections the
// promoted catalog says this service gates behind a toggle, radio, or
// select.
func (n DriverNavigator) NavigateFunc(loader CatalogLoader) NavigateFunc {
	return func(ctx context.Context, groupName, serviceName string) error {
		entry, ok := loader.GetServiceByName(serviceName)
		if !ok {
			return coreerr.New(coreerr.KindResolution, "unknown service in catalog: "+serviceName)
		}
		if err := n.OpenServicePage(ctx, entry.ServiceID); err != nil {
			return err
		}
		return n.ExpandSections(ctx, entry.SectionExpansionTriggers)
	}
}
