package model

// FieldKind is the input control a field is captured with.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextArea FieldKind = "textarea"
	KindNumber   FieldKind = "number"
	KindSelect   FieldKind = "select"
	KindRadio    FieldKind = "radio"
	KindDate     FieldKind = "date"
)

// AddNewOption is the sentinel menu value a select offers next to its real
// options when Field.AllowAdd is set. Selecting it opens the inline creator
// and never lands in form state.
const AddNewOption = "__add_new__"

// CreatorKind selects how the "add new" action collects a value.
type CreatorKind string

const (
	// CreatorText asks for a single free-text value.
	CreatorText CreatorKind = "text"
	// CreatorSubForm opens a nested intake form and derives the option from
	// the submitted record.
	CreatorSubForm CreatorKind = "subform"
)

const (
	ValidationRulePattern = "pattern"
	ValidationRuleEmail   = "email"
	ValidationRuleMin     = "min"
)

// ValidationRule represents a single format or bounds constraint applied to a
// field. Pattern rules keep the expression in Params["pattern"], numeric
// bounds encode their threshold in Params["value"]. Message overrides the
// engine default for the rule.
type ValidationRule struct {
	Kind    string            `json:"kind" yaml:"kind"`
	Params  map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Message string            `json:"message,omitempty" yaml:"message,omitempty"`
}

// Field describes one input of an entry form. Requiredness is either
// unconditional (Required) or keyed off sibling values (RequiredWhen);
// VisibleWhen hides the field, and a hidden field is exempt from every rule.
// Expressions use the visibility/expr grammar, for example
// `businessType == "B2B" && source == "Referral"`.
type Field struct {
	Name         string           `json:"name" yaml:"name"`
	Label        string           `json:"label,omitempty" yaml:"label,omitempty"`
	Kind         FieldKind        `json:"kind" yaml:"kind"`
	Section      string           `json:"section,omitempty" yaml:"section,omitempty"`
	Options      string           `json:"options,omitempty" yaml:"options,omitempty"`
	AllowAdd     bool             `json:"allowAdd,omitempty" yaml:"allowAdd,omitempty"`
	Creator      CreatorKind      `json:"creator,omitempty" yaml:"creator,omitempty"`
	Shared       bool             `json:"shared,omitempty" yaml:"shared,omitempty"`
	Required     bool             `json:"required,omitempty" yaml:"required,omitempty"`
	RequiredWhen string           `json:"requiredWhen,omitempty" yaml:"requiredWhen,omitempty"`
	RequiredMsg  string           `json:"requiredMessage,omitempty" yaml:"requiredMessage,omitempty"`
	VisibleWhen  string           `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
	Rules        []ValidationRule `json:"rules,omitempty" yaml:"rules,omitempty"`
	Default      any              `json:"default,omitempty" yaml:"default,omitempty"`
	ResetsOn     []string         `json:"resetsOn,omitempty" yaml:"resetsOn,omitempty"`
	OptionsBy    string           `json:"optionsBy,omitempty" yaml:"optionsBy,omitempty"`
}

// Section groups related fields under a heading ("Personal Details",
// "Location", ...).
type Section struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// FormDefinition is the static description of one entry screen. Field order
// is render order; sections are listed in display order.
type FormDefinition struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	Sections  []Section `json:"sections,omitempty" yaml:"sections,omitempty"`
	Fields    []Field   `json:"fields" yaml:"fields"`
	Itinerary bool      `json:"itinerary,omitempty" yaml:"itinerary,omitempty"`
}
