package record

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-tourforms/pkg/itinerary"
	"github.com/goliatone/go-tourforms/pkg/model"
)

// TimestampLayout renders dates the way a browser's Date.toISOString does:
// UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ItineraryKey is the key the stay list occupies in the flat payload.
const ItineraryKey = "itinerary"

// Record is one finished submission. Values holds every defined field,
// hidden ones included, with dates already serialized.
type Record struct {
	ID          string               `json:"id"`
	Form        string               `json:"form"`
	Values      map[string]any       `json:"values"`
	Itinerary   []itinerary.StayItem `json:"itinerary,omitempty"`
	SubmittedAt time.Time            `json:"submittedAt"`
}

// Store receives finished records. Implementations own retries and
// durability; a form session calls Save exactly once per successful submit.
type Store interface {
	Save(ctx context.Context, rec Record) error
}

// StoreFunc adapts a function into a Store.
type StoreFunc func(ctx context.Context, rec Record) error

// Save calls the underlying function.
func (fn StoreFunc) Save(ctx context.Context, rec Record) error {
	return fn(ctx, rec)
}

// New builds a record with a fresh id.
func New(def model.FormDefinition, values map[string]any, stay []itinerary.StayItem, now time.Time) Record {
	rec := Record{
		ID:          uuid.NewString(),
		Form:        def.ID,
		Values:      Normalize(def, values),
		SubmittedAt: now.UTC(),
	}
	if def.Itinerary {
		rec.Itinerary = append([]itinerary.StayItem{}, stay...)
	}
	return rec
}

// Flat returns the record as the single mapping handed to callers: field
// values plus the stay list under ItineraryKey when the form has one.
func (r Record) Flat() map[string]any {
	out := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		out[k] = v
	}
	if r.Itinerary != nil {
		items := make([]map[string]any, 0, len(r.Itinerary))
		for _, item := range r.Itinerary {
			items = append(items, map[string]any{"name": item.Name, "nights": item.Nights})
		}
		out[ItineraryKey] = items
	}
	return out
}

// Normalize projects values onto the definition's fields. Date values become
// ISO-8601 strings and unset or blank dates become nil. Strings are stored
// trimmed, the same form the validation engine checks them in; nothing else
// is coerced into a different default. Keys that are not defined fields are
// dropped.
func Normalize(def model.FormDefinition, values map[string]any) map[string]any {
	out := make(map[string]any, len(def.Fields))
	for _, field := range def.Fields {
		value, ok := values[field.Name]
		if !ok {
			value = nil
			if field.Kind != model.KindDate {
				value = ""
			}
		}
		if field.Kind == model.KindDate {
			out[field.Name] = normalizeDate(value)
			continue
		}
		if text, isString := value.(string); isString {
			value = strings.TrimSpace(text)
		}
		out[field.Name] = value
	}
	return out
}

// FormatTime renders t in TimestampLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func normalizeDate(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return FormatTime(v)
	case *time.Time:
		if v == nil || v.IsZero() {
			return nil
		}
		return FormatTime(*v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return FormatTime(parsed)
			}
		}
		return v
	default:
		return v
	}
}
