package session

import (
	"time"

	"github.com/goliatone/go-tourforms/internal/logger"
	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/options"
	"github.com/goliatone/go-tourforms/pkg/record"
	"github.com/goliatone/go-tourforms/pkg/validation"
)

// Option configures a Session.
type Option func(*Session)

// Observer receives outcome counts. internal/metrics.Recorder implements it.
type Observer interface {
	SubmissionRecorded(form, outcome string)
	OptionAdded(form, field string)
	ItineraryMoved(form string)
}

// Submission outcomes reported to the Observer.
const (
	OutcomeSaved   = "saved"
	OutcomeBlocked = "blocked"
	OutcomeFailed  = "failed"
)

type nopObserver struct{}

func (nopObserver) SubmissionRecorded(string, string) {}
func (nopObserver) OptionAdded(string, string)        {}
func (nopObserver) ItineraryMoved(string)             {}

// ChangeHook runs after a field value changes and its dependents have been
// cleared, before errors are recomputed.
type ChangeHook func(s *Session, field string, previous any)

// SubForm describes the nested intake form a field's "add new" action opens.
// Label turns the submitted record into the option value; when nil the
// "firstName lastName" display name is used.
type SubForm struct {
	Definition model.FormDefinition
	Label      func(rec record.Record) string
}

// WithInitialValues opens the session in edit mode. Values are merged over
// the definition defaults; ISO date strings on date fields are parsed.
func WithInitialValues(values map[string]any) Option {
	return func(s *Session) {
		s.initial = values
	}
}

// WithRegistry supplies the option registry. Without it the session seeds an
// empty one.
func WithRegistry(reg *options.Registry) Option {
	return func(s *Session) {
		if reg != nil {
			s.registry = reg
		}
	}
}

// WithStore sets where successful submissions go.
func WithStore(store record.Store) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithLogger sets the session logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver reports submissions, inline additions and itinerary moves.
func WithObserver(o Observer) Option {
	return func(s *Session) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithPromoter overrides the registry's promoter for shared fields.
func WithPromoter(p options.Promoter) Option {
	return func(s *Session) {
		s.promoter = p
	}
}

// WithSubForm routes the field's "add new" action to a nested form.
func WithSubForm(field string, sub SubForm) Option {
	return func(s *Session) {
		if s.subForms == nil {
			s.subForms = make(map[string]SubForm)
		}
		s.subForms[field] = sub
	}
}

// WithChangeHook registers hook for changes to field.
func WithChangeHook(field string, hook ChangeHook) Option {
	return func(s *Session) {
		if hook == nil {
			return
		}
		if s.hooks == nil {
			s.hooks = make(map[string][]ChangeHook)
		}
		s.hooks[field] = append(s.hooks[field], hook)
	}
}

// WithEngine swaps the validation engine.
func WithEngine(engine *validation.Engine) Option {
	return func(s *Session) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithClock overrides time.Now for record timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}
