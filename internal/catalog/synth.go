package catalog

import (
	"strconv"
	"strings"
)

// regionKeywords is the closed list used to recognize a region-labeled
// section during geo-template extraction.
var regionKeywords = []string{
	"United States", "US ", "Canada", "Asia Pacific", "Europe", "Africa",
	"Middle East", "South America", "Australia", "India", "Japan", "Global",
}

func looksLikeRegionSection(label string) bool {
	if strings.Contains(label, "(") {
		return true
	}
	for _, kw := range regionKeywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

// SynthInput carries the synthesizer's non-dimension inputs: the state
// list, gate controls, and the service/card metadata the orchestrator's
// navigation phases gathered.
type SynthInput struct {
	ServiceID   string
	Source      string
	GeneratedAt string
	RegionUsed  string
	UIMapping   UIMapping
	GateControls []GateControl
	States      []State
	ActivatedToggles []string
	BudgetHit   bool
	Screenshots []string
}

// Synthesize builds the draft catalog from the deduped dimension set:
// geo-template extraction, then standard section building, then
// per-dimension projection.
func Synthesize(dims []Dimension, in SynthInput) Draft {
	byState := map[string]State{}
	for _, s := range in.States {
		byState[s.StateID] = s
	}

	bySection, order := groupBySection(dims)
	geo, remainingOrder := extractGeoSections(bySection, order)

	sections := buildSections(bySection, remainingOrder, byState)

	var meta *ExplorationMeta
	if len(in.ActivatedToggles) > 0 || in.BudgetHit || len(in.Screenshots) > 0 || len(in.States) > 0 {
		meta = &ExplorationMeta{
			ActivatedToggles:  in.ActivatedToggles,
			ExplorationStates: len(in.States),
			BudgetHit:         in.BudgetHit,
			Screenshots:       in.Screenshots,
		}
	}

	return Draft{
		ServiceID:       in.ServiceID,
		SchemaVersion:   SchemaVersion,
		GeneratedAt:     in.GeneratedAt,
		Source:          in.Source,
		RegionUsed:      in.RegionUsed,
		UIMapping:       in.UIMapping,
		GateControls:    in.GateControls,
		Sections:        sections,
		GeoSections:     geo,
		ExplorationMeta: meta,
	}
}

// groupBySection buckets dims by their Section attribute, preserving
// insertion order of first appearance.
func groupBySection(dims []Dimension) (map[string][]Dimension, []string) {
	bySection := map[string][]Dimension{}
	var order []string
	for _, d := range dims {
		if _, ok := bySection[d.Section]; !ok {
			order = append(order, d.Section)
		}
		bySection[d.Section] = append(bySection[d.Section], d)
	}
	return bySection, order
}

// dimensionSignature is the (key, field_type) pair signature used to
// detect sections that are really region-templated repeats of one another.
func dimensionSignature(dims []Dimension) string {
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		parts = append(parts, d.Key+":"+string(d.FieldType))
	}
	return strings.Join(parts, "|")
}

// extractGeoSections collapses region-labeled sections that share a
// signature across >=2 labels into one geo_sections block, removing them
// from the standard section list. Only one group is collapsed: when several
// signatures qualify, the one with the most labels wins and the others stay
// standard sections; which of two equally large groups wins is not defined.
func extractGeoSections(bySection map[string][]Dimension, order []string) (*GeoSections, []string) {
	bySignature := map[string][]string{} // signature -> section labels, in order
	for _, label := range order {
		if !looksLikeRegionSection(label) {
			continue
		}
		sig := dimensionSignature(bySection[label])
		bySignature[sig] = append(bySignature[sig], label)
	}

	var chosenLabels []string
	for _, labels := range bySignature {
		if len(labels) >= 2 && len(labels) > len(chosenLabels) {
			chosenLabels = labels
		}
	}
	if len(chosenLabels) < 2 {
		return nil, order
	}

	collapsed := map[string]bool{}
	for _, l := range chosenLabels {
		collapsed[l] = true
	}

	var regions []GeoRegion
	for _, label := range order {
		if collapsed[label] {
			regions = append(regions, GeoRegion{
				Key:               CleanKey(label, maxSectionKeyLen),
				Label:             label,
				AWSSectionHeading: label,
			})
		}
	}

	template := projectDimensions(bySection[chosenLabels[0]])

	var remainingOrder []string
	for _, label := range order {
		if !collapsed[label] {
			remainingOrder = append(remainingOrder, label)
		}
	}

	return &GeoSections{TemplateDimensions: template, Regions: regions}, remainingOrder
}

// buildSections assigns each remaining section group a unique key, its
// lowest state_id, and that state's entered_via.
func buildSections(bySection map[string][]Dimension, order []string, byState map[string]State) []Section {
	usedKeys := map[string]int{}
	out := make([]Section, 0, len(order))

	for _, label := range order {
		group := bySection[label]
		key := uniqueSectionKey(SectionKey(label), usedKeys)

		stateID := lowestStateID(group)
		entered := byState[stateID].EnteredVia

		out = append(out, Section{
			Key:        key,
			Label:      label,
			StateID:    stateID,
			EnteredVia: entered,
			Dimensions: projectDimensions(group),
		})
	}
	return out
}

func uniqueSectionKey(base string, used map[string]int) string {
	n := used[base]
	used[base]++
	if n == 0 {
		return base
	}
	for {
		candidate := base + "_" + strconv.Itoa(n+1)
		if _, taken := used[candidate]; !taken {
			used[candidate] = 1
			return candidate
		}
		n++
	}
}

// lowestStateID returns the numerically lowest "S<N>" state id among
// group's discovered_in_state values.
func lowestStateID(group []Dimension) string {
	best := ""
	bestN := -1
	for _, d := range group {
		n := stateOrdinal(d.DiscoveredInState)
		if bestN == -1 || n < bestN {
			bestN, best = n, d.DiscoveredInState
		}
	}
	return best
}

func stateOrdinal(id string) int {
	n := 0
	for _, c := range strings.TrimPrefix(id, "S") {
		if c < '0' || c > '9' {
			return 1 << 30
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// projectDimensions emits the fixed required fields plus the optional ones
// only when set.
func projectDimensions(dims []Dimension) []DimensionProjection {
	out := make([]DimensionProjection, 0, len(dims))
	for _, d := range dims {
		out = append(out, DimensionProjection{
			Key:            d.Key,
			LabelVisible:   d.LabelVisible,
			AriaLabel:      d.AriaLabel,
			FieldType:      d.FieldType,
			DefaultValue:   d.DefaultValue,
			UnitSibling:    d.UnitSibling,
			Options:        d.Options,
			Required:       d.Required,
			Confidence:     d.Confidence,
			Status:         d.Status,
			Unit:           d.Unit,
			PatternType:    d.PatternType,
			SemanticRole:   d.SemanticRole,
			RowFields:      d.RowFields,
			AddButtonLabel: d.AddButtonLabel,
			ReviewNote:     d.ReviewNote,
		})
	}
	return out
}
