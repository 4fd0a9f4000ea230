package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/visibility"
	"github.com/goliatone/go-tourforms/pkg/visibility/expr"
)

// Engine evaluates a form definition's rule table against form values. It
// holds no per-form state, so one Engine can serve every session.
type Engine struct {
	evaluator visibility.Evaluator
	extras    map[string]any
	patterns  sync.Map
}

// Option configures an Engine.
type Option func(*Engine)

// WithEvaluator swaps the expression evaluator used for visibleWhen and
// requiredWhen rules.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(e *Engine) {
		if evaluator != nil {
			e.evaluator = evaluator
		}
	}
}

// WithExtras exposes screen-level facts to rules under the `extras.` prefix.
func WithExtras(extras map[string]any) Option {
	return func(e *Engine) {
		e.extras = extras
	}
}

// New constructs an Engine backed by the shared expression evaluator.
func New(opts ...Option) *Engine {
	e := &Engine{evaluator: expr.Default}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

var defaultEngine = New()

// Validate runs the default engine. See Engine.Validate.
func Validate(def model.FormDefinition, values map[string]any) Errors {
	return defaultEngine.Validate(def, values)
}

// Visible runs the default engine. See Engine.Visible.
func Visible(def model.FormDefinition, values map[string]any) map[string]bool {
	return defaultEngine.Visible(def, values)
}

// Validate returns the error map for values. It is a pure function of its
// inputs: hidden fields never appear, and each failing field carries only the
// first failing rule's message.
func (e *Engine) Validate(def model.FormDefinition, values map[string]any) Errors {
	return fromList(e.Check(def, values))
}

// Check is Validate with rule identifiers kept, in definition order.
func (e *Engine) Check(def model.FormDefinition, values map[string]any) []ValidationError {
	visible := e.Visible(def, values)
	var out []ValidationError
	for _, field := range def.Fields {
		if !visible[field.Name] {
			continue
		}
		if failure, ok := e.checkField(field, values); ok {
			out = append(out, failure)
		}
	}
	return out
}

// Visible evaluates every field's visibleWhen rule. A rule that fails to
// evaluate leaves the field visible so it can still be corrected.
func (e *Engine) Visible(def model.FormDefinition, values map[string]any) map[string]bool {
	ctx := visibility.Context{Values: values, Extras: e.extras}
	out := make(map[string]bool, len(def.Fields))
	for _, field := range def.Fields {
		if strings.TrimSpace(field.VisibleWhen) == "" {
			out[field.Name] = true
			continue
		}
		ok, err := e.evaluator.Eval(field.Name, field.VisibleWhen, ctx)
		out[field.Name] = ok || err != nil
	}
	return out
}

// Required reports whether field is mandatory for the current values, either
// unconditionally or because its requiredWhen rule holds.
func (e *Engine) Required(field model.Field, values map[string]any) bool {
	if field.Required {
		return true
	}
	if strings.TrimSpace(field.RequiredWhen) == "" {
		return false
	}
	ctx := visibility.Context{Values: values, Extras: e.extras}
	holds, err := e.evaluator.Eval(field.Name, field.RequiredWhen, ctx)
	return err == nil && holds
}

// checkField applies the rule table in order: type/format, unconditional
// required, conditional required, numeric bounds.
func (e *Engine) checkField(field model.Field, values map[string]any) (ValidationError, bool) {
	value := values[field.Name]
	empty := IsEmpty(value)
	label := field.DisplayLabel()

	fail := func(rule, message string) (ValidationError, bool) {
		return ValidationError{Field: field.Name, Rule: rule, Message: message}, true
	}

	if !empty {
		if msg, bad := typeFailure(field, value, label); bad {
			return fail(RuleType, msg)
		}
		for _, rule := range field.Rules {
			switch rule.Kind {
			case model.ValidationRulePattern:
				re, err := e.pattern(rule.Params["pattern"])
				if err != nil {
					continue
				}
				if !re.MatchString(stringValue(value)) {
					return fail(RulePattern, orDefault(rule.Message, label+" is invalid"))
				}
			case model.ValidationRuleEmail:
				if err := is.EmailFormat.Validate(stringValue(value)); err != nil {
					return fail(RuleEmail, orDefault(rule.Message, "Invalid email format"))
				}
			}
		}
	}

	if empty && field.Required {
		return fail(RuleRequired, requiredMessage(field, label))
	}

	if empty && strings.TrimSpace(field.RequiredWhen) != "" {
		ctx := visibility.Context{Values: values, Extras: e.extras}
		if holds, err := e.evaluator.Eval(field.Name, field.RequiredWhen, ctx); err == nil && holds {
			return fail(RuleRequiredWhen, requiredMessage(field, label))
		}
	}

	if !empty {
		for _, rule := range field.Rules {
			if rule.Kind != model.ValidationRuleMin {
				continue
			}
			bound, err := strconv.ParseFloat(rule.Params["value"], 64)
			if err != nil {
				continue
			}
			n, ok := numberValue(value)
			if !ok || n < bound {
				return fail(RuleMin, orDefault(rule.Message, fmt.Sprintf("%s must be at least %s", label, rule.Params["value"])))
			}
		}
	}

	return ValidationError{}, false
}

func (e *Engine) pattern(source string) (*regexp.Regexp, error) {
	if cached, ok := e.patterns.Load(source); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(source)
	if err != nil {
		return nil, err
	}
	e.patterns.Store(source, re)
	return re, nil
}

func typeFailure(field model.Field, value any, label string) (string, bool) {
	switch field.Kind {
	case model.KindNumber:
		if _, ok := numberValue(value); !ok {
			return label + " must be a number", true
		}
	case model.KindDate:
		if _, ok := DateValue(value); !ok {
			return label + " must be a valid date", true
		}
	}
	return "", false
}

func requiredMessage(field model.Field, label string) string {
	return orDefault(field.RequiredMsg, label+" is required")
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

// IsEmpty reports whether a form value counts as unset: nil, a blank string or
// a zero date.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case time.Time:
		return v.IsZero()
	case *time.Time:
		return v == nil || v.IsZero()
	}
	return false
}

// DateValue accepts time.Time, *time.Time or an ISO-8601 string (date or
// RFC 3339 timestamp).
func DateValue(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		return ParseDate(v)
	}
	return time.Time{}, false
}

// ParseDate parses the ISO forms a date picker or an edit-mode record may
// carry.
func ParseDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly, "02-01-2006"} {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func numberValue(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}
	return 0, false
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
