package session

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/goliatone/go-tourforms/internal/logger"
	"github.com/goliatone/go-tourforms/pkg/itinerary"
	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/options"
	"github.com/goliatone/go-tourforms/pkg/record"
	"github.com/goliatone/go-tourforms/pkg/validation"
)

// Session is one in-progress form: current values, the touched set and the
// error map, plus the option registry and (for package forms) the itinerary
// it owns. The error map is recomputed after every mutation, so it always
// reflects the current values.
//
// A Session belongs to a single screen and is not safe for concurrent use.
type Session struct {
	def      model.FormDefinition
	engine   *validation.Engine
	registry *options.Registry
	store    record.Store
	logger   logger.Logger
	observer Observer
	promoter options.Promoter
	subForms map[string]SubForm
	hooks    map[string][]ChangeHook
	clock    func() time.Time
	initial  map[string]any

	values    map[string]any
	touched   map[string]bool
	visible   map[string]bool
	errors    validation.Errors
	rejection record.Rejection
	dialog    *Dialog
	itinerary *itinerary.Sequencer
	changing  map[string]bool
}

// New opens a session over def. The definition is copied.
func New(def model.FormDefinition, opts ...Option) (*Session, error) {
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	s := &Session{
		def:      def.Clone(),
		engine:   validation.New(),
		logger:   logger.NewNoOpLogger(),
		observer: nopObserver{},
		clock:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.registry == nil {
		s.registry = options.New(nil)
	}
	for field := range s.subForms {
		if _, ok := s.def.Field(field); !ok {
			return nil, fmt.Errorf("%w: sub-form for %q", ErrUnknownField, field)
		}
	}
	if s.def.Itinerary {
		s.itinerary = itinerary.New()
	}
	s.logger = s.logger.With(map[string]any{"form": s.def.ID})
	s.load()
	return s, nil
}

// MustNew is New that panics; for static form catalogs.
func MustNew(def model.FormDefinition, opts ...Option) *Session {
	s, err := New(def, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Session) load() {
	values := s.def.Defaults()
	for name, value := range s.initial {
		field, ok := s.def.Field(name)
		if !ok {
			continue
		}
		if field.Kind == model.KindDate {
			if raw, isString := value.(string); isString {
				if parsed, ok := validation.ParseDate(raw); ok {
					value = parsed
				} else if strings.TrimSpace(raw) == "" {
					value = nil
				}
			}
		}
		values[name] = value
	}
	s.values = values
	s.touched = make(map[string]bool, len(s.def.Fields))
	s.rejection = record.Rejection{}
	s.dialog = nil
	if s.itinerary != nil {
		s.itinerary.Reset()
	}
	s.recompute()
}

// Definition returns a copy of the form definition.
func (s *Session) Definition() model.FormDefinition {
	return s.def.Clone()
}

// Registry exposes the session's option registry.
func (s *Session) Registry() *options.Registry {
	return s.registry
}

// Itinerary returns the owned sequencer, or nil for forms without one.
func (s *Session) Itinerary() *itinerary.Sequencer {
	return s.itinerary
}

// Value returns the current value of a field.
func (s *Session) Value(name string) any {
	return s.values[name]
}

// Values returns a copy of all current values.
func (s *Session) Values() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Set changes a field value. Choosing model.AddNewOption on a field that
// allows it does not touch the values; it opens and returns the option
// dialog instead. Dependent fields (ResetsOn) are cleared when the value
// actually changes.
func (s *Session) Set(name string, value any) (*Dialog, error) {
	field, ok := s.def.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if s.dialog != nil {
		return nil, ErrDialogOpen
	}
	if value == model.AddNewOption {
		return s.openDialog(field)
	}
	s.assign(field, value)
	return nil, nil
}

func (s *Session) assign(field model.Field, value any) {
	previous := s.values[field.Name]
	s.values[field.Name] = value
	if !sameValue(previous, value) {
		s.cascade(field.Name, previous)
	}
	s.recompute()
}

// cascade clears dependents and runs change hooks. A field already being
// processed further up the chain is not re-entered.
func (s *Session) cascade(name string, previous any) {
	if s.changing == nil {
		s.changing = make(map[string]bool)
	}
	if s.changing[name] {
		return
	}
	s.changing[name] = true
	defer delete(s.changing, name)

	defaults := s.def.Defaults()
	for _, dependent := range s.def.Dependents(name) {
		before := s.values[dependent]
		s.values[dependent] = defaults[dependent]
		if !sameValue(before, defaults[dependent]) {
			s.cascade(dependent, before)
		}
	}
	for _, hook := range s.hooks[name] {
		hook(s, name, previous)
	}
}

// Blur marks the field touched so its error, if any, is displayed.
func (s *Session) Blur(name string) error {
	if _, ok := s.def.Field(name); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	s.touched[name] = true
	s.recompute()
	return nil
}

// Touched reports whether the field has lost focus or been submitted.
func (s *Session) Touched(name string) bool {
	return s.touched[name]
}

// Visible reports whether the field is currently rendered.
func (s *Session) Visible(name string) bool {
	return s.visible[name]
}

// Errors returns every current failure, touched or not.
func (s *Session) Errors() validation.Errors {
	return s.errors.Clone()
}

// DisplayErrors returns the failures a user should see: touched fields only.
func (s *Session) DisplayErrors() validation.Errors {
	out := make(validation.Errors)
	for field, message := range s.errors {
		if s.touched[field] {
			out[field] = message
		}
	}
	return out
}

// Rejection returns the messages of the last store rejection, if any.
func (s *Session) Rejection() record.Rejection {
	return s.rejection
}

// Valid reports whether the form could be submitted right now.
func (s *Session) Valid() bool {
	return s.errors.Empty()
}

// Submit validates the form and hands exactly one normalized record to the
// store. While errors exist it marks every field touched, records nothing
// and returns a *SubmissionBlockedError.
func (s *Session) Submit(ctx context.Context) (record.Record, error) {
	if s.dialog != nil {
		return record.Record{}, ErrDialogOpen
	}
	s.recompute()
	if !s.errors.Empty() {
		for _, field := range s.def.Fields {
			s.touched[field.Name] = true
		}
		s.observer.SubmissionRecorded(s.def.ID, OutcomeBlocked)
		s.logger.Debug("submission blocked", map[string]any{"fields": s.errors.Fields()})
		return record.Record{}, &SubmissionBlockedError{Form: s.def.ID, Errors: s.errors.Clone()}
	}

	var stay []itinerary.StayItem
	if s.itinerary != nil {
		stay = s.itinerary.Payload()
	}
	rec := record.New(s.def, s.values, stay, s.clock())

	if s.store != nil {
		if err := s.store.Save(ctx, rec); err != nil {
			s.observer.SubmissionRecorded(s.def.ID, OutcomeFailed)
			var rejected *record.RejectedError
			if errors.As(err, &rejected) {
				s.rejection = record.MapRejection(s.def, rejected.Payload)
				s.logger.Warn("record rejected by store", map[string]any{"store": rejected.Store})
			} else {
				s.logger.WithError(err).Error("record store failed", map[string]any{"id": rec.ID})
			}
			return record.Record{}, fmt.Errorf("session: save %s: %w", s.def.ID, err)
		}
	}

	s.rejection = record.Rejection{}
	s.observer.SubmissionRecorded(s.def.ID, OutcomeSaved)
	s.logger.Info("record submitted", map[string]any{"id": rec.ID, "stays": len(rec.Itinerary)})
	return rec, nil
}

// Reset restores the initial values (defaults, or the edit-mode record),
// clears touched flags, closes any dialog and empties the itinerary. Options
// added inline stay in the registry.
func (s *Session) Reset() {
	s.load()
}

// Move transfers a location between the itinerary pools. See
// itinerary.Sequencer.Move.
func (s *Session) Move(id string, from, to itinerary.Pool, index int) (bool, error) {
	if s.itinerary == nil {
		return false, ErrNoItinerary
	}
	moved, err := s.itinerary.Move(id, from, to, index)
	if err != nil {
		return false, err
	}
	if moved {
		s.observer.ItineraryMoved(s.def.ID)
	}
	return moved, nil
}

// SetNights edits a staged location's nights.
func (s *Session) SetNights(id string, nights int) error {
	if s.itinerary == nil {
		return ErrNoItinerary
	}
	return s.itinerary.SetNights(id, nights)
}

// Options returns the menu for a choice field: the registry list for its
// current key, followed by the add-new sentinel when the field allows it.
func (s *Session) Options(name string) ([]string, error) {
	field, ok := s.def.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return s.menu(field), nil
}

func (s *Session) menu(field model.Field) []string {
	if !field.IsChoice() {
		return nil
	}
	key := field.OptionKey(s.values)
	var list []string
	if key != "" {
		list = s.registry.Options(key)
	}
	if field.AllowAdd && key != "" {
		list = append(list, model.AddNewOption)
	}
	return list
}

func (s *Session) recompute() {
	s.visible = s.engine.Visible(s.def, s.values)
	s.errors = s.engine.Validate(s.def, s.values)
}

func sameValue(a, b any) bool {
	ta, aTime := a.(time.Time)
	tb, bTime := b.(time.Time)
	if aTime || bTime {
		return aTime && bTime && ta.Equal(tb)
	}
	return reflect.DeepEqual(a, b)
}
