package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/options"
	"github.com/goliatone/go-tourforms/pkg/record"
)

// Dialog is the modal "add new option" workflow scoped to one field. A text
// dialog collects a single value; a sub-form dialog runs a nested session
// (associate intake) and derives the value from its record. Until Confirm
// succeeds the parent session is untouched, and Cancel leaves it exactly as
// it was.
type Dialog struct {
	session *Session
	field   model.Field
	key     string
	kind    model.CreatorKind
	input   string
	err     error
	sub     *Session
	label   func(record.Record) string
	closed  bool
}

func (s *Session) openDialog(field model.Field) (*Dialog, error) {
	if !field.IsChoice() || !field.AllowAdd {
		return nil, fmt.Errorf("%w: %q", ErrNotExtensible, field.Name)
	}
	key := field.OptionKey(s.values)
	if key == "" {
		return nil, fmt.Errorf("%w: %q depends on %q", ErrNoOptionList, field.Name, field.OptionsBy)
	}

	d := &Dialog{
		session: s,
		field:   field,
		key:     key,
		kind:    field.CreatorKind(),
	}
	if d.kind == model.CreatorSubForm {
		sub, ok := s.subForms[field.Name]
		if !ok {
			return nil, fmt.Errorf("session: field %q has no sub-form configured", field.Name)
		}
		// the nested form works on a copy; its additions land on Confirm
		nested, err := New(sub.Definition,
			WithRegistry(s.registry.Clone()),
			WithStore(s.store),
			WithLogger(s.logger),
			WithObserver(s.observer),
			WithEngine(s.engine),
			WithClock(s.clock),
		)
		if err != nil {
			return nil, err
		}
		d.sub = nested
		d.label = sub.Label
		if d.label == nil {
			d.label = DisplayName
		}
	}
	s.dialog = d
	s.logger.Debug("option dialog opened", map[string]any{"field": field.Name, "creator": string(d.kind)})
	return d, nil
}

// Dialog returns the open dialog, if any.
func (s *Session) Dialog() *Dialog {
	return s.dialog
}

// Field is the name of the field the dialog adds to.
func (d *Dialog) Field() string { return d.field.Name }

// Kind reports which creator the field uses.
func (d *Dialog) Kind() model.CreatorKind { return d.kind }

// Open reports whether the dialog still awaits Confirm or Cancel.
func (d *Dialog) Open() bool { return !d.closed }

// Input returns the pending text value.
func (d *Dialog) Input() string { return d.input }

// Err returns the last Confirm failure, shown inside the dialog.
func (d *Dialog) Err() error { return d.err }

// SubForm returns the nested session of a sub-form dialog, nil otherwise.
func (d *Dialog) SubForm() *Session { return d.sub }

// SetInput replaces the pending text value and clears the last error.
func (d *Dialog) SetInput(value string) error {
	if d.closed {
		return ErrDialogClosed
	}
	d.input = value
	d.err = nil
	return nil
}

// Confirm adds the value to the registry, selects it on the field and closes
// the dialog. On a duplicate, an empty value or a blocked sub-form the dialog
// stays open with Err set. It returns the value that was selected.
func (d *Dialog) Confirm(ctx context.Context) (string, error) {
	if d.closed {
		return "", ErrDialogClosed
	}
	s := d.session

	var value string
	switch d.kind {
	case model.CreatorSubForm:
		rec, err := d.sub.Submit(ctx)
		if err != nil {
			d.err = err
			return "", err
		}
		value = options.Sanitize(d.label(rec))
		if value == "" {
			d.err = options.ErrEmptyOption
			return "", d.err
		}
		// the record is already stored, so an existing entry is simply selected
		if _, err := s.registry.Add(d.key, value); err != nil && !errors.Is(err, options.ErrDuplicateOption) {
			d.err = err
			return "", err
		}
		nested := d.sub.Registry()
		for _, key := range nested.Fields() {
			s.registry.Merge(key, nested.Added(key))
		}
	default:
		list, err := s.registry.Add(d.key, d.input)
		if err != nil {
			d.err = err
			return "", err
		}
		value = list[len(list)-1]
	}

	d.closed = true
	s.dialog = nil
	s.observer.OptionAdded(s.def.ID, d.field.Name)
	s.logger.Info("option added", map[string]any{"field": d.field.Name, "key": d.key})

	if d.field.Shared {
		if err := s.promote(ctx, d.key, value); err != nil {
			s.logger.WithError(err).Warn("option promotion failed", map[string]any{"field": d.field.Name})
		}
	}

	s.touched[d.field.Name] = true
	s.assign(d.field, value)
	return value, nil
}

// Cancel closes the dialog without changing anything.
func (d *Dialog) Cancel() {
	if d.closed {
		return
	}
	d.closed = true
	if d.session.dialog == d {
		d.session.dialog = nil
	}
}

func (s *Session) promote(ctx context.Context, key, value string) error {
	if s.promoter != nil {
		if err := s.promoter.Promote(ctx, key, value); err != nil {
			return fmt.Errorf("session: promote %s: %w", key, err)
		}
		return nil
	}
	return s.registry.Promote(ctx, key, value)
}

// DisplayName derives an option label from a person record:
// "firstName lastName", falling back to "name" or "fullName".
func DisplayName(rec record.Record) string {
	text := func(key string) string {
		v, _ := rec.Values[key].(string)
		return strings.TrimSpace(v)
	}
	if full := strings.TrimSpace(text("firstName") + " " + text("lastName")); full != "" {
		return full
	}
	for _, key := range []string{"fullName", "name"} {
		if v := text(key); v != "" {
			return v
		}
	}
	return ""
}
