package options

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ErrDuplicateOption matches DuplicateOptionError via errors.Is.
	ErrDuplicateOption = errors.New("options: duplicate option")
	// ErrEmptyOption is returned when the value is blank after sanitising.
	ErrEmptyOption = errors.New("options: option value is empty")
	// ErrUnknownField is returned by operations that require an existing list.
	ErrUnknownField = errors.New("options: unknown option field")
)

// DuplicateOptionError reports an Add whose value is already listed. The
// creator dialog surfaces it inline and stays open.
type DuplicateOptionError struct {
	Field string
	Value string
}

func (e *DuplicateOptionError) Error() string {
	return fmt.Sprintf("options: %q already exists in %s", e.Value, e.Field)
}

// Is lets errors.Is(err, ErrDuplicateOption) match.
func (e *DuplicateOptionError) Is(target error) bool {
	return target == ErrDuplicateOption
}

// Promoter pushes an inline-created value into a pool shared beyond the
// current form (for example the associate directory).
type Promoter interface {
	Promote(ctx context.Context, field, value string) error
}

// PromoterFunc adapts a function into a Promoter.
type PromoterFunc func(ctx context.Context, field, value string) error

// Promote calls the underlying function.
func (fn PromoterFunc) Promote(ctx context.Context, field, value string) error {
	return fn(ctx, field, value)
}

// Registry holds the selectable values of each option field. Lists keep
// insertion order (seeded defaults first, user additions appended) and never
// contain the same value twice; comparison is exact and case-sensitive.
//
// A Registry is owned by one form session and is not safe for concurrent use.
type Registry struct {
	lists    map[string][]string
	defaults map[string]int
	promoter Promoter
}

// Option configures a Registry.
type Option func(*Registry)

// WithPromoter wires the shared pool used by Promote.
func WithPromoter(p Promoter) Option {
	return func(r *Registry) {
		r.promoter = p
	}
}

// New seeds a registry. Duplicate or blank seed values are dropped while the
// first occurrence keeps its position.
func New(seed map[string][]string, opts ...Option) *Registry {
	r := &Registry{
		lists:    make(map[string][]string, len(seed)),
		defaults: make(map[string]int, len(seed)),
	}
	for field, values := range seed {
		list := dedupe(values)
		r.lists[field] = list
		r.defaults[field] = len(list)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Options returns a copy of the field's values, defaults first. Unknown fields
// yield nil.
func (r *Registry) Options(field string) []string {
	if r == nil {
		return nil
	}
	list, ok := r.lists[field]
	if !ok {
		return nil
	}
	return append([]string(nil), list...)
}

// Added returns only the values appended after seeding.
func (r *Registry) Added(field string) []string {
	if r == nil {
		return nil
	}
	list := r.lists[field]
	return append([]string(nil), list[r.defaults[field]:]...)
}

// Has reports whether value is listed for field.
func (r *Registry) Has(field, value string) bool {
	if r == nil {
		return false
	}
	for _, existing := range r.lists[field] {
		if existing == value {
			return true
		}
	}
	return false
}

// Add appends value to field and returns the updated list. The value is
// trimmed and stripped of markup first. On error the registry is unchanged.
func (r *Registry) Add(field, value string) ([]string, error) {
	if r == nil {
		return nil, ErrUnknownField
	}
	clean := Sanitize(value)
	if clean == "" {
		return nil, ErrEmptyOption
	}
	if r.Has(field, clean) {
		return nil, &DuplicateOptionError{Field: field, Value: clean}
	}
	r.lists[field] = append(r.lists[field], clean)
	return r.Options(field), nil
}

// Merge appends values that are not yet listed, skipping duplicates silently.
// It is used to fold a shared pool into a freshly seeded registry.
func (r *Registry) Merge(field string, values []string) {
	if r == nil {
		return
	}
	for _, value := range values {
		clean := Sanitize(value)
		if clean == "" || r.Has(field, clean) {
			continue
		}
		r.lists[field] = append(r.lists[field], clean)
	}
}

// Promote forwards value to the configured Promoter. Without one it is a
// no-op.
func (r *Registry) Promote(ctx context.Context, field, value string) error {
	if r == nil || r.promoter == nil {
		return nil
	}
	if err := r.promoter.Promote(ctx, field, value); err != nil {
		return fmt.Errorf("options: promote %s: %w", field, err)
	}
	return nil
}

// Fields returns the known option fields, sorted.
func (r *Registry) Fields() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.lists))
	for field := range r.lists {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy sharing the promoter.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	out := &Registry{
		lists:    make(map[string][]string, len(r.lists)),
		defaults: make(map[string]int, len(r.defaults)),
		promoter: r.promoter,
	}
	for field, list := range r.lists {
		out.lists[field] = append([]string(nil), list...)
	}
	for field, n := range r.defaults {
		out.defaults[field] = n
	}
	return out
}

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Sanitize trims value and strips any markup so a user-entered option can be
// echoed back in rendered menus safely.
func Sanitize(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	// StrictPolicy entity-encodes what it keeps ("&" -> "&amp;")
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(trimmed)))
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
