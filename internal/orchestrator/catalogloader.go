package orchestrator

import (
	"encoding/json"
	"os"

	"github.com/brennhill/calibrator/internal/artifacts"
	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/coreerr"
)

// FileCatalogLoader reads promoted catalogs (config/data/services/<id>.json)
// from disk and serves them as the CatalogLoader collaborator runner mode
// consults for each dimension's required flag and (when known)
// css_selector: load a typed record from a JSON path and index it by name.
type FileCatalogLoader struct {
	Layout  artifacts.Layout
	entries map[string]ServiceCatalogEntry
}

// Load reads one promoted catalog per serviceID into the loader. A missing
// or unparseable catalog is a fatal Resolution error — runner mode cannot
// fill a service whose catalog was never promoted.
func (l *FileCatalogLoader) Load(serviceIDs []string) error {
	if l.entries == nil {
		l.entries = make(map[string]ServiceCatalogEntry, len(serviceIDs))
	}
	for _, id := range serviceIDs {
		data, err := os.ReadFile(l.Layout.ValidatedCatalogPath(id))
		if err != nil {
			return coreerr.Wrap(coreerr.KindResolution, "loading catalog for "+id, err)
		}
		var draft catalog.Draft
		if err := json.Unmarshal(data, &draft); err != nil {
			return coreerr.Wrap(coreerr.KindResolution, "parsing catalog for "+id, err)
		}
		l.entries[id] = entryFromDraft(draft)
	}
	return nil
}

// GetServiceByName implements CatalogLoader.
func (l *FileCatalogLoader) GetServiceByName(name string) (ServiceCatalogEntry, bool) {
	e, ok := l.entries[name]
	return e, ok
}

// entryFromDraft flattens a draft catalog's sections into the flat
// per-dimension map ServiceCatalogEntry needs; css_selector is left blank
// since the draft's per-dimension projection doesn't persist one — the
// locator's aria-label/label/role tiers resolve it at runtime instead.
func entryFromDraft(draft catalog.Draft) ServiceCatalogEntry {
	dims := make(map[string]catalog.Dimension)
	for _, section := range draft.Sections {
		for _, dp := range section.Dimensions {
			dims[dp.Key] = catalog.Dimension{
				Key:            dp.Key,
				LabelVisible:   dp.LabelVisible,
				AriaLabel:      dp.AriaLabel,
				FieldType:      dp.FieldType,
				Options:        dp.Options,
				DefaultValue:   dp.DefaultValue,
				Unit:           dp.Unit,
				UnitSibling:    dp.UnitSibling,
				Required:       dp.Required,
				PatternType:    dp.PatternType,
				AddButtonLabel: dp.AddButtonLabel,
				SemanticRole:   dp.SemanticRole,
				RowFields:      dp.RowFields,
				ReviewNote:     dp.ReviewNote,
			}
		}
	}

	triggers := make([]string, 0, len(draft.GateControls))
	for _, g := range draft.GateControls {
		if g.CSSSelector != "" && g.CSSSelector != catalog.UnknownSelector {
			triggers = append(triggers, g.CSSSelector)
		}
	}

	return ServiceCatalogEntry{ServiceID: draft.ServiceID, SectionExpansionTriggers: triggers, Dimensions: dims}
}
