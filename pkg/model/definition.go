package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-tourforms/pkg/visibility/expr"
)

var (
	errFormIDMissing    = errors.New("model: form id is required")
	errFieldNameMissing = errors.New("model: field name is required")
)

// DisplayLabel returns the field label, deriving one from the name when the
// definition leaves it empty.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return DefaultLabeler(f.Name)
}

// IsChoice reports whether the field picks from an option list.
func (f Field) IsChoice() bool {
	return f.Kind == KindSelect || f.Kind == KindRadio
}

// OptionKey resolves the option registry key for the field. Fields whose
// options depend on a parent (OptionsBy) are keyed "<options>:<parent value>";
// an empty parent yields an empty key and therefore no options.
func (f Field) OptionKey(values map[string]any) string {
	if !f.IsChoice() {
		return ""
	}
	base := strings.TrimSpace(f.Options)
	if base == "" {
		base = f.Name
	}
	if f.OptionsBy == "" {
		return base
	}
	parent, _ := values[f.OptionsBy].(string)
	parent = strings.TrimSpace(parent)
	if parent == "" {
		return ""
	}
	return DependentOptionKey(base, parent)
}

// DependentOptionKey joins a base option key with the parent value it is
// scoped to.
func DependentOptionKey(base, parent string) string {
	return base + ":" + parent
}

// CreatorKind returns the configured creator, defaulting to CreatorText.
func (f Field) CreatorKind() CreatorKind {
	if f.Creator == "" {
		return CreatorText
	}
	return f.Creator
}

// Field looks up a field by name.
func (d FormDefinition) Field(name string) (Field, bool) {
	for _, field := range d.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Names returns field names in definition order.
func (d FormDefinition) Names() []string {
	names := make([]string, 0, len(d.Fields))
	for _, field := range d.Fields {
		names = append(names, field.Name)
	}
	return names
}

// SectionFields returns the fields assigned to the section, in order. Fields
// without a section are grouped under the empty id.
func (d FormDefinition) SectionFields(sectionID string) []Field {
	var out []Field
	for _, field := range d.Fields {
		if field.Section == sectionID {
			out = append(out, field)
		}
	}
	return out
}

// Defaults returns the initial value of every field. Fields without a default
// start as "" (text-like) or nil (dates).
func (d FormDefinition) Defaults() map[string]any {
	out := make(map[string]any, len(d.Fields))
	for _, field := range d.Fields {
		switch {
		case field.Default != nil:
			out[field.Name] = field.Default
		case field.Kind == KindDate:
			out[field.Name] = nil
		default:
			out[field.Name] = ""
		}
	}
	return out
}

// Dependents lists the fields that are cleared when name changes.
func (d FormDefinition) Dependents(name string) []string {
	var out []string
	for _, field := range d.Fields {
		for _, parent := range field.ResetsOn {
			if parent == name {
				out = append(out, field.Name)
				break
			}
		}
	}
	return out
}

// Clone returns a deep copy so callers cannot mutate a shared definition.
func (d FormDefinition) Clone() FormDefinition {
	out := d
	out.Sections = append([]Section(nil), d.Sections...)
	out.Fields = make([]Field, len(d.Fields))
	for i, field := range d.Fields {
		out.Fields[i] = cloneField(field)
	}
	return out
}

func cloneField(f Field) Field {
	out := f
	out.ResetsOn = append([]string(nil), f.ResetsOn...)
	if len(f.Rules) > 0 {
		out.Rules = make([]ValidationRule, len(f.Rules))
		for i, rule := range f.Rules {
			copied := rule
			if len(rule.Params) > 0 {
				copied.Params = make(map[string]string, len(rule.Params))
				for k, v := range rule.Params {
					copied.Params[k] = v
				}
			}
			out.Rules[i] = copied
		}
	}
	return out
}

// Validate checks the definition for structural mistakes: duplicate names,
// unknown sections or cascade parents, and expressions that do not compile.
func (d FormDefinition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errFormIDMissing
	}

	sections := make(map[string]struct{}, len(d.Sections))
	for _, section := range d.Sections {
		sections[section.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(d.Fields))
	for _, field := range d.Fields {
		if strings.TrimSpace(field.Name) == "" {
			return errFieldNameMissing
		}
		if _, dup := seen[field.Name]; dup {
			return fmt.Errorf("model: form %q defines field %q twice", d.ID, field.Name)
		}
		seen[field.Name] = struct{}{}
	}

	for _, field := range d.Fields {
		if field.Section != "" {
			if _, ok := sections[field.Section]; !ok {
				return fmt.Errorf("model: field %q references unknown section %q", field.Name, field.Section)
			}
		}
		switch field.Kind {
		case KindText, KindTextArea, KindNumber, KindSelect, KindRadio, KindDate:
		default:
			return fmt.Errorf("model: field %q has unsupported kind %q", field.Name, field.Kind)
		}
		for _, parent := range append(append([]string(nil), field.ResetsOn...), field.OptionsBy) {
			if parent == "" {
				continue
			}
			if _, ok := seen[parent]; !ok {
				return fmt.Errorf("model: field %q depends on unknown field %q", field.Name, parent)
			}
		}
		for _, rule := range []string{field.VisibleWhen, field.RequiredWhen} {
			if strings.TrimSpace(rule) == "" {
				continue
			}
			program, err := expr.Compile(rule)
			if err != nil {
				return fmt.Errorf("model: field %q: %w", field.Name, err)
			}
			for _, dep := range program.Dependencies() {
				if strings.HasPrefix(dep, "extras.") {
					continue
				}
				if _, ok := seen[dep]; !ok {
					return fmt.Errorf("model: field %q rule references unknown field %q", field.Name, dep)
				}
			}
		}
		for _, rule := range field.Rules {
			if err := validateRule(rule); err != nil {
				return fmt.Errorf("model: field %q: %w", field.Name, err)
			}
		}
	}
	return nil
}

func validateRule(rule ValidationRule) error {
	switch rule.Kind {
	case ValidationRulePattern:
		if rule.Params["pattern"] == "" {
			return errors.New("pattern rule requires params.pattern")
		}
	case ValidationRuleMin:
		if rule.Params["value"] == "" {
			return errors.New("min rule requires params.value")
		}
	case ValidationRuleEmail:
	default:
		return fmt.Errorf("unsupported rule %q", rule.Kind)
	}
	return nil
}
