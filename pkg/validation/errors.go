package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Rule identifiers reported on ValidationError.Rule.
const (
	RuleType         = "type"
	RulePattern      = "pattern"
	RuleEmail        = "email"
	RuleRequired     = "required"
	RuleRequiredWhen = "requiredWhen"
	RuleMin          = "min"
)

// ValidationError is a field-level, user-correctable failure. It never blocks
// editing; it only withholds submission while present.
type ValidationError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors maps a field name to its single active message.
type Errors map[string]string

// Has reports whether field currently fails.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Fields returns the failing field names, sorted.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for field := range e {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether there are no failures.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Clone returns an independent copy.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Error renders "field: message" pairs in field order so Errors can travel as
// an error value.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+e[field])
	}
	return "validation: " + strings.Join(parts, "; ")
}

func fromList(list []ValidationError) Errors {
	out := make(Errors, len(list))
	for _, failure := range list {
		out[failure.Field] = failure.Message
	}
	return out
}
