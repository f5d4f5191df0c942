// capabilities.go — pure function for building a machine-readable
// capability map from a loaded draft catalog: walk a typed list, extract
// sorted names plus a dispatch/enum summary.
package catalog

import "sort"

// SectionCapability summarizes one section for the capability map: its
// dimension keys (sorted) and the gate keys that reveal it, if any.
type SectionCapability struct {
	Label          string   `json:"label"`
	DimensionKeys  []string `json:"dimension_keys"`
	GatesRequired  []string `json:"gates_required,omitempty"`
}

// Capabilities transforms a draft catalog into the machine-readable map a
// profile builder or a review tool uses to discover what a catalog
// declares: which sections it has, each one's dimension keys, and which
// gate controls must be actuated to reach a section gated behind one.
func Capabilities(d Draft) map[string]any {
	gatesBySection := map[string][]string{}
	for _, g := range d.GateControls {
		for _, section := range g.SectionsGated {
			gatesBySection[section] = append(gatesBySection[section], g.Key)
		}
	}

	sections := make(map[string]any, len(d.Sections))
	for _, s := range d.Sections {
		keys := make([]string, 0, len(s.Dimensions))
		for _, dim := range s.Dimensions {
			keys = append(keys, dim.Key)
		}
		sort.Strings(keys)

		gates := append([]string{}, gatesBySection[s.Label]...)
		sort.Strings(gates)

		sections[s.Key] = SectionCapability{
			Label:         s.Label,
			DimensionKeys: keys,
			GatesRequired: gates,
		}
	}

	gateKeys := make([]string, 0, len(d.GateControls))
	for _, g := range d.GateControls {
		gateKeys = append(gateKeys, g.Key)
	}
	sort.Strings(gateKeys)

	return map[string]any{
		"service_id":     d.ServiceID,
		"schema_version": d.SchemaVersion,
		"sections":       sections,
		"gate_keys":      gateKeys,
		"has_geo_sections": d.GeoSections != nil,
	}
}
