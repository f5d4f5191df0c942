// Package catalog defines the data model (Dimension, GateControl, State,
// draft catalog) and the draft synthesizer.
package catalog

// FieldType is the closed set of control kinds a dimension can resolve to.
type FieldType string

const (
	FieldNumber         FieldType = "NUMBER"
	FieldText           FieldType = "TEXT"
	FieldSelect         FieldType = "SELECT"
	FieldCombobox       FieldType = "COMBOBOX"
	FieldToggle         FieldType = "TOGGLE"
	FieldRadio          FieldType = "RADIO"
	FieldInstanceSearch FieldType = "INSTANCE_SEARCH"
	FieldUnknown        FieldType = "UNKNOWN"
)

// GateType is the closed set of gate-control kinds.
type GateType string

const (
	GateToggle   GateType = "TOGGLE"
	GateRadio    GateType = "RADIO"
	GateSelect   GateType = "SELECT"
	GateCombobox GateType = "COMBOBOX"
)

// LabelSource records how a dimension's label was derived.
type LabelSource string

const (
	LabelSourceAria      LabelSource = "aria_label"
	LabelSourceAriaBy    LabelSource = "aria_labelledby"
	LabelSourceLabelFor  LabelSource = "label_for"
	LabelSourceLabelWrap LabelSource = "label_wrap"
	LabelSourceHeuristic LabelSource = "heuristic"
	LabelSourceNone      LabelSource = "none"
)

// PatternType is the closed set of recognized layout patterns.
type PatternType string

const (
	PatternNone          PatternType = ""
	PatternRepeatableRow PatternType = "P6_REPEATABLE_ROW"
)

// Status is the per-dimension confidence status.
type Status string

const (
	StatusOK             Status = "OK"
	StatusReviewRequired Status = "REVIEW_REQUIRED"
	StatusConflict       Status = "CONFLICT"
)

// UnknownSelector is the sentinel css_selector value for an unresolved
// stable selector.
const UnknownSelector = "UNKNOWN"

// TruncatedSentinel terminates an options list exceeding the truncation cap.
const TruncatedSentinel = "TRUNCATED"

// MaxOptionsBeforeTruncation is the option-list cap before truncation.
const MaxOptionsBeforeTruncation = 50

// Confidence records label/section/overall confidence components.
type Confidence struct {
	Label   float64 `json:"label"`
	Section float64 `json:"section"`
	Overall float64 `json:"overall"`
}

// UnitSibling describes the paired unit dimension merged onto a base
// dimension.
type UnitSibling struct {
	DefaultValue string   `json:"default_value,omitempty"`
	Options      []string `json:"options,omitempty"`
	AriaLabel    string   `json:"aria_label,omitempty"`
}

// Dimension is a configurable form field.
type Dimension struct {
	Key                 string       `json:"key"`
	LabelVisible        string       `json:"label_visible"`
	AriaLabel           string       `json:"aria_label,omitempty"`
	FieldType           FieldType    `json:"field_type"`
	Section             string       `json:"section"`
	CSSSelector         string       `json:"css_selector"`
	Options             []string     `json:"options,omitempty"`
	DefaultValue        string       `json:"default_value,omitempty"`
	Unit                string       `json:"unit,omitempty"`
	UnitSibling         *UnitSibling `json:"unit_sibling,omitempty"`
	Required            bool         `json:"required"`
	PatternType         PatternType  `json:"pattern_type,omitempty"`
	AddButtonLabel      string       `json:"add_button_label,omitempty"`
	LabelSource         LabelSource  `json:"label_source"`
	Confidence          Confidence   `json:"confidence"`
	Status              Status       `json:"status"`
	DiscoveredInState    string      `json:"discovered_in_state"`
	DisambiguationIndex int          `json:"disambiguation_index,omitempty"`
	SemanticRole        string       `json:"semantic_role,omitempty"`
	ReviewNote          string       `json:"review_note,omitempty"`
	RowFields           []string     `json:"row_fields,omitempty"`
}

// GateControl is a control capable of revealing new fields.
type GateControl struct {
	Key           string   `json:"key"`
	AriaLabel     string   `json:"aria_label,omitempty"`
	GateType      GateType `json:"gate_type"`
	DefaultState  string   `json:"default_state,omitempty"`
	CSSSelector   string   `json:"css_selector"`
	Options       []string `json:"options,omitempty"`
	SectionsGated []string `json:"sections_gated,omitempty"`
}

// EnteredVia records how a state was reached.
type EnteredVia struct {
	GateControl string `json:"gate_control,omitempty"`
	Action      string `json:"action,omitempty"`
	FromState   string `json:"from_state,omitempty"`
}

// State is a node in the exploration graph.
type State struct {
	StateID     string     `json:"state_id"`
	EnteredVia  EnteredVia `json:"entered_via"`
	Fingerprint string     `json:"fingerprint"`
	Sequence    []string   `json:"sequence"`
}

// UIMapping is the draft catalog's ui_mapping block: the search terms, card
// title, and configure button label the runner orchestrator uses to locate
// this service's card on the landing page.
type UIMapping struct {
	SearchTerms          []string `json:"search_terms,omitempty"`
	CardTitle            string   `json:"card_title,omitempty"`
	ConfigureButtonLabel string   `json:"configure_button_label,omitempty"`
}

// DimensionProjection is the per-dimension shape emitted into a section, as
// opposed to the full internal Dimension record — optional fields are
// omitted entirely when unset.
type DimensionProjection struct {
	Key            string       `json:"key"`
	LabelVisible   string       `json:"label_visible"`
	AriaLabel      string       `json:"aws_aria_label,omitempty"`
	FieldType      FieldType    `json:"field_type"`
	DefaultValue   string       `json:"default_value,omitempty"`
	UnitSibling    *UnitSibling `json:"unit_sibling,omitempty"`
	Options        []string     `json:"options,omitempty"`
	Required       bool         `json:"required"`
	Confidence     Confidence   `json:"confidence"`
	Status         Status       `json:"status"`
	Unit           string       `json:"unit,omitempty"`
	PatternType    PatternType  `json:"pattern_type,omitempty"`
	SemanticRole   string       `json:"semantic_role,omitempty"`
	RowFields      []string     `json:"row_fields,omitempty"`
	AddButtonLabel string       `json:"add_button_label,omitempty"`
	ReviewNote     string       `json:"review_note,omitempty"`
}

// Section groups the dimensions discovered under one heading.
type Section struct {
	Key        string                `json:"key"`
	Label      string                `json:"label"`
	StateID    string                `json:"state_id"`
	EnteredVia EnteredVia            `json:"entered_via"`
	Dimensions []DimensionProjection `json:"dimensions"`
}

// GeoRegion is one member of a geo-template's region list.
type GeoRegion struct {
	Key               string `json:"key"`
	Label             string `json:"label"`
	AWSSectionHeading string `json:"aws_section_heading"`
}

// GeoSections is the optional collapsed-region-template block.
type GeoSections struct {
	TemplateDimensions []DimensionProjection `json:"template_dimensions"`
	Regions            []GeoRegion           `json:"regions"`
}

// ExplorationMeta is the draft catalog's optional exploration summary:
// actuated toggles, the full state count, whether the maxStates budget was
// hit, and the screenshots taken along the way.
type ExplorationMeta struct {
	ActivatedToggles  []string `json:"activated_toggles,omitempty"`
	ExplorationStates int      `json:"exploration_states"`
	BudgetHit         bool     `json:"exploration_budget_hit"`
	Screenshots       []string `json:"screenshots,omitempty"`
}

// Draft is the top-level draft catalog record.
type Draft struct {
	ServiceID       string           `json:"service_id"`
	SchemaVersion   string           `json:"schema_version"`
	GeneratedAt     string           `json:"generated_at"`
	Source          string           `json:"source"`
	RegionUsed      string           `json:"region_used,omitempty"`
	UIMapping       UIMapping        `json:"ui_mapping"`
	GateControls    []GateControl    `json:"gate_controls"`
	Sections        []Section        `json:"sections"`
	GeoSections     *GeoSections     `json:"geo_sections,omitempty"`
	ExplorationMeta *ExplorationMeta `json:"exploration_meta,omitempty"`
}

// SchemaVersion is the fixed draft schema_version this synthesizer emits.
const SchemaVersion = "2.0"
