package explorer

import (
	"regexp"
	"strings"

	"github.com/brennhill/calibrator/internal/catalog"
	"github.com/brennhill/calibrator/internal/scanner"
)

// dimensionKeyMaxLen bounds a dimension's cleaned key. Chosen generously,
// well above the 60-char section-key bound, so truncation essentially never
// triggers for real label text while still guarding against a pathological
// input.
const dimensionKeyMaxLen = 120

// BuildDimensions runs the four-stage pipeline over every field scanned
// during exploration: dedup by selector, unit-selector merge,
// repeatable-row detection, then confidence and status scoring.
func BuildDimensions(fields []ExploredField) []catalog.Dimension {
	provisional := make([]catalog.Dimension, 0, len(fields))
	for _, f := range fields {
		provisional = append(provisional, dimensionFromField(f))
	}

	deduped := dedupBySelector(provisional)
	merged := mergeUnitSelectors(deduped)
	markRepeatableRows(merged)
	scoreConfidenceAndStatus(merged)
	return merged
}

func dimensionFromField(f ExploredField) catalog.Dimension {
	key := f.Label
	if key == "" {
		key = f.CSSSelector
	}
	return catalog.Dimension{
		Key:               catalog.CleanKey(key, dimensionKeyMaxLen),
		LabelVisible:      f.Label,
		AriaLabel:         f.Attrs["aria-label"],
		FieldType:         f.FieldType,
		Section:           f.Section,
		CSSSelector:       f.CSSSelector,
		Options:           f.Options,
		DefaultValue:      f.Attrs["value"],
		Required:          strings.EqualFold(f.Attrs["required"], "true") || strings.EqualFold(f.Attrs["aria-required"], "true"),
		LabelSource:       f.LabelSource,
		DiscoveredInState: f.DiscoveredInState,
		AddButtonLabel:    f.AddButtonLabel,
	}
}

// dedupBySelector merges dimensions. Two dimensions sharing a non-UNKNOWN
// css_selector are merged; dimensions whose selector is UNKNOWN
// are instead grouped by cleaned key, and a collision on that key — which
// cannot be merged with confidence since there is no stable selector to
// confirm they are the same control — is kept as a separate entry tagged
// with an increasing disambiguation_index.
func dedupBySelector(in []catalog.Dimension) []catalog.Dimension {
	bySelector := map[string]int{}
	seenCleanKey := map[string]bool{}
	nextDisambiguation := map[string]int{}
	var out []catalog.Dimension

	for _, d := range in {
		if d.CSSSelector != catalog.UnknownSelector {
			if idx, ok := bySelector[d.CSSSelector]; ok {
				out[idx] = mergeDimension(out[idx], d)
				continue
			}
			bySelector[d.CSSSelector] = len(out)
			out = append(out, d)
			continue
		}

		cleanKey := d.Key
		if !seenCleanKey[cleanKey] {
			seenCleanKey[cleanKey] = true
			out = append(out, d)
			continue
		}
		nextDisambiguation[cleanKey]++
		d.DisambiguationIndex = nextDisambiguation[cleanKey]
		out = append(out, d)
	}
	return out
}

// mergeDimension folds b's metadata onto a: options/unit/default_value/
// unit_sibling/semantic_role/pattern_type fill in only where a is empty,
// field_type is overwritten only if a was UNKNOWN, and required ORs.
func mergeDimension(a, b catalog.Dimension) catalog.Dimension {
	if len(a.Options) == 0 {
		a.Options = b.Options
	}
	if a.Unit == "" {
		a.Unit = b.Unit
	}
	if a.DefaultValue == "" {
		a.DefaultValue = b.DefaultValue
	}
	if a.UnitSibling == nil {
		a.UnitSibling = b.UnitSibling
	}
	if a.SemanticRole == "" {
		a.SemanticRole = b.SemanticRole
	}
	if a.PatternType == "" {
		a.PatternType = b.PatternType
	}
	if a.AddButtonLabel == "" {
		a.AddButtonLabel = b.AddButtonLabel
	}
	if a.FieldType == catalog.FieldUnknown {
		a.FieldType = b.FieldType
	}
	a.Required = a.Required || b.Required
	return a
}

var unitKeyRe = regexp.MustCompile(`^Unit\s+(.+)$`)

// unitTailExpressions is the set of recognized unit-bearing phrase tails.
// Chosen to cover the measurement-like dimensions a pricing calculator
// commonly pairs with a unit selector (e.g. "Unit EBS Storage" -> tail
// "EBS Storage" ends in "storage").
var unitTailExpressions = []string{
	"storage", "size", "capacity", "memory", "data transfer",
	"bandwidth", "duration", "throughput", "volume", "transfer",
}

func matchesUnitTail(tail string) bool {
	for _, t := range unitTailExpressions {
		if tail == t || strings.HasSuffix(tail, " "+t) {
			return true
		}
	}
	return false
}

// mergeUnitSelectors merges a SELECT/RADIO/COMBOBOX dimension whose visible
// label matches "Unit <tail>", where tail ends in a recognized unit
// expression, into the same-section dimension whose cleaned key is the
// longest prefix of tail's cleaned form.
func mergeUnitSelectors(dims []catalog.Dimension) []catalog.Dimension {
	bySection := map[string][]int{}
	for i, d := range dims {
		bySection[d.Section] = append(bySection[d.Section], i)
	}

	drop := map[int]bool{}
	for _, idxs := range bySection {
		for _, ui := range idxs {
			unitDim := dims[ui]
			switch unitDim.FieldType {
			case catalog.FieldSelect, catalog.FieldRadio, catalog.FieldCombobox:
			default:
				continue
			}

			m := unitKeyRe.FindStringSubmatch(unitDim.LabelVisible)
			if m == nil {
				continue
			}
			tail := strings.TrimSpace(m[1])
			if !matchesUnitTail(strings.ToLower(tail)) {
				continue
			}

			cleanTail := catalog.CleanKey(tail, dimensionKeyMaxLen)
			baseIdx := longestPrefixMatch(dims, idxs, ui, cleanTail)
			if baseIdx < 0 {
				continue
			}

			dims[baseIdx].Unit = unitDim.DefaultValue
			dims[baseIdx].UnitSibling = &catalog.UnitSibling{
				DefaultValue: unitDim.DefaultValue,
				Options:      unitDim.Options,
				AriaLabel:    unitDim.AriaLabel,
			}
			drop[ui] = true
		}
	}

	out := make([]catalog.Dimension, 0, len(dims))
	for i, d := range dims {
		if !drop[i] {
			out = append(out, d)
		}
	}
	return out
}

func longestPrefixMatch(dims []catalog.Dimension, idxs []int, unitIdx int, cleanTail string) int {
	best, bestLen := -1, -1
	for _, i := range idxs {
		if i == unitIdx {
			continue
		}
		key := dims[i].Key
		if key == "" || !strings.HasPrefix(cleanTail, key) {
			continue
		}
		if len(key) > bestLen {
			best, bestLen = i, len(key)
		}
	}
	return best
}

// markRepeatableRows tags every dimension whose section had an "Add …"
// button P6_REPEATABLE_ROW.
func markRepeatableRows(dims []catalog.Dimension) {
	for i := range dims {
		if dims[i].AddButtonLabel != "" {
			dims[i].PatternType = catalog.PatternRepeatableRow
		}
	}
}

// scoreConfidenceAndStatus computes overall = min(label, section)*0.6 +
// field_type_conf*0.4, with status thresholds at 0.75/0.5, and a duplicate
// aria_label or an unresolved section forcing CONFLICT / at least
// REVIEW_REQUIRED respectively.
func scoreConfidenceAndStatus(dims []catalog.Dimension) {
	ariaCounts := map[string]int{}
	for _, d := range dims {
		if d.AriaLabel != "" {
			ariaCounts[d.AriaLabel]++
		}
	}

	for i := range dims {
		d := &dims[i]
		labelConf := labelSourceConfidence(d.LabelSource)
		sectionConf := 1.0
		if d.Section == scanner.UnknownSection {
			sectionConf = 0.3
		}
		fieldTypeConf := 1.0
		if d.FieldType == catalog.FieldUnknown {
			fieldTypeConf = 0.3
		}

		overall := round3(minFloat(labelConf, sectionConf)*0.6 + fieldTypeConf*0.4)
		d.Confidence = catalog.Confidence{Label: labelConf, Section: sectionConf, Overall: overall}
		d.Status = statusFor(overall)

		if d.AriaLabel != "" && ariaCounts[d.AriaLabel] > 1 {
			d.Status = catalog.StatusConflict
		} else if d.Section == scanner.UnknownSection && d.Status == catalog.StatusOK {
			d.Status = catalog.StatusReviewRequired
		}
	}
}

func labelSourceConfidence(src catalog.LabelSource) float64 {
	switch src {
	case catalog.LabelSourceAria:
		return 1.0
	case catalog.LabelSourceAriaBy:
		return 0.9
	case catalog.LabelSourceLabelFor:
		return 0.85
	case catalog.LabelSourceLabelWrap:
		return 0.7
	case catalog.LabelSourceHeuristic:
		return 0.5
	default:
		return 0.2
	}
}

func statusFor(overall float64) catalog.Status {
	switch {
	case overall >= 0.75:
		return catalog.StatusOK
	case overall >= 0.5:
		return catalog.StatusReviewRequired
	default:
		return catalog.StatusConflict
	}
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func round3(v float64) float64 {
	const scale = 1000.0
	return float64(int(v*scale+0.5)) / scale
}
