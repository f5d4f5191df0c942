package orchestrator

import (
	"context"

	"github.com/brennhill/calibrator/internal/catalog"
)

// NavigateFunc is the external navigation collaborator called once per
// service in runner mode: open the page, locate the service's card, and
// click its configure button.
type NavigateFunc func(ctx context.Context, groupName, serviceName string) error

// ServiceCatalogEntry is the non-null result of
// CatalogLoader.GetServiceByName. Dimensions carries the validated
// catalog's per-key metadata (css_selector, required, …); a non-empty
// css_selector is the runner-mode locator's tier-1 shortcut.
// FileCatalogLoader leaves css_selector blank, so with that loader the
// locator starts at its second tier.
type ServiceCatalogEntry struct {
	ServiceID                string
	SectionExpansionTriggers []string
	Dimensions               map[string]catalog.Dimension
}

// CatalogLoader is the catalog loader collaborator.
type CatalogLoader interface {
	GetServiceByName(name string) (ServiceCatalogEntry, bool)
}

// CardNavigator is the explorer-mode navigation surface: open the service's
// configure page, read the region context it renders under, and expand
// every collapsible section so its fields become scannable.
type CardNavigator interface {
	OpenServicePage(ctx context.Context, serviceID string) error
	RegionContext(ctx context.Context) (string, error)
	ExpandSections(ctx context.Context, triggers []string) error
}

// Promoter is the only collaborator permitted to write the validated
// catalog path config/data/services/<service_id>.json.
type Promoter interface {
	Promote(ctx context.Context, serviceID string, draft catalog.Draft) error
}
