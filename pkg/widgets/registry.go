package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-tourforms/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetText      = "text"
	WidgetTextArea  = "textarea"
	WidgetNumber    = "number"
	WidgetDate      = "date"
	WidgetEmail     = "email"
	WidgetPhone     = "tel"
	WidgetRadio     = "radio"
	WidgetSelect    = "select"
	WidgetCreatable = "creatable-select"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry picks the input control a field is drawn with. Higher priority
// wins; ties fall back to registration order. An empty registry never
// resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher under name. Higher priority values take
// precedence.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a field.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Controls resolves every field of def. Fields nothing matches get
// WidgetText.
func (r *Registry) Controls(def model.FormDefinition) map[string]string {
	out := make(map[string]string, len(def.Fields))
	for _, field := range def.Fields {
		widget, ok := r.Resolve(field)
		if !ok {
			widget = WidgetText
		}
		out[field.Name] = widget
	}
	return out
}

func hasRule(field model.Field, kind string) (model.ValidationRule, bool) {
	for _, rule := range field.Rules {
		if rule.Kind == kind {
			return rule, true
		}
	}
	return model.ValidationRule{}, false
}

// numericPattern reports patterns that only accept digits, like the mobile
// and pincode rules.
func numericPattern(pattern string) bool {
	p := strings.TrimSuffix(strings.TrimPrefix(pattern, "^"), "$")
	if p == "" {
		return false
	}
	p = strings.TrimPrefix(p, "[0-9]")
	p = strings.TrimPrefix(p, `\d`)
	if p == "" || p == "+" {
		return true
	}
	return strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") &&
		strings.Trim(p[1:len(p)-1], "0123456789,") == ""
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetCreatable, 90, func(field model.Field) bool {
		return field.Kind == model.KindSelect && field.AllowAdd
	})
	r.Register(WidgetRadio, 80, func(field model.Field) bool {
		return field.Kind == model.KindRadio
	})
	r.Register(WidgetSelect, 70, func(field model.Field) bool {
		return field.Kind == model.KindSelect
	})

	r.Register(WidgetTextArea, 60, func(field model.Field) bool {
		return field.Kind == model.KindTextArea
	})
	r.Register(WidgetDate, 60, func(field model.Field) bool {
		return field.Kind == model.KindDate
	})
	r.Register(WidgetNumber, 60, func(field model.Field) bool {
		return field.Kind == model.KindNumber
	})

	r.Register(WidgetEmail, 50, func(field model.Field) bool {
		_, ok := hasRule(field, model.ValidationRuleEmail)
		return field.Kind == model.KindText && ok
	})
	r.Register(WidgetPhone, 40, func(field model.Field) bool {
		rule, ok := hasRule(field, model.ValidationRulePattern)
		return field.Kind == model.KindText && ok && numericPattern(rule.Params["pattern"])
	})
}
