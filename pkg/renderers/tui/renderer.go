// Package tui runs entry screens in the terminal. A Renderer walks the
// visible fields of a form session in order, offers "+ Add New" on
// extensible selects, edits the itinerary of package screens and keeps the
// user in the loop until the record is saved or they give up.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-tourforms/internal/logger"
	"github.com/goliatone/go-tourforms/pkg/itinerary"
	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/record"
	"github.com/goliatone/go-tourforms/pkg/session"
	"github.com/goliatone/go-tourforms/pkg/validation"
)

// Renderer drives a session through a PromptDriver.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	out          io.Writer
	theme        Theme
	logger       logger.Logger
}

// New constructs a console with the survey driver and JSON output.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		out:          os.Stdout,
		logger:       logger.NewNoOpLogger(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.out)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// Run prompts every visible field, then submits. Blocked submissions send
// the user back to the failing fields; store rejections and failures ask
// whether to try again. The saved record is printed to the configured
// output and returned.
func (r *Renderer) Run(ctx context.Context, s *session.Session) (record.Record, error) {
	if ctx == nil {
		return record.Record{}, errors.New("tui: context is required")
	}
	if s == nil {
		return record.Record{}, errors.New("tui: session is nil")
	}

	if err := r.info(ctx, s.Definition().Title); err != nil {
		return record.Record{}, err
	}
	if err := r.fill(ctx, s, nil); err != nil {
		return record.Record{}, err
	}
	if s.Itinerary() != nil {
		if err := r.editItinerary(ctx, s); err != nil {
			return record.Record{}, err
		}
	}

	for {
		rec, err := s.Submit(ctx)
		if err == nil {
			if err := r.print(s.Definition(), rec); err != nil {
				return rec, err
			}
			return rec, nil
		}

		var blocked *session.SubmissionBlockedError
		if errors.As(err, &blocked) {
			only := make(map[string]bool, len(blocked.Errors))
			for _, field := range blocked.Errors.Fields() {
				only[field] = true
				_ = r.fail(ctx, blocked.Errors[field])
			}
			stuck := r.unfillable(s, only)
			for _, field := range stuck {
				_ = r.info(ctx, fmt.Sprintf("%s has no options to choose from; add entries to its option list first", field.DisplayLabel()))
			}
			if len(stuck) == len(only) {
				return record.Record{}, fmt.Errorf("%w: %v", ErrUnfillable, err)
			}
			fix, cerr := r.driver.Confirm(ctx, ConfirmConfig{Message: "Fix and resubmit?", Default: true})
			if cerr != nil {
				return record.Record{}, cerr
			}
			if !fix {
				return record.Record{}, fmt.Errorf("%w: %v", ErrCancelled, err)
			}
			if err := r.fill(ctx, s, only); err != nil {
				return record.Record{}, err
			}
			continue
		}

		rejection := s.Rejection()
		for _, msg := range rejection.Form {
			_ = r.fail(ctx, msg)
		}
		only := make(map[string]bool, len(rejection.Fields))
		for field, msgs := range rejection.Fields {
			only[field] = true
			_ = r.fail(ctx, fmt.Sprintf("%s: %s", field, strings.Join(msgs, ", ")))
		}
		if len(rejection.Form) == 0 && len(only) == 0 {
			_ = r.fail(ctx, err.Error())
		}
		r.logger.WithError(err).Warn("submission not saved", map[string]any{"form": s.Definition().ID})

		retry, cerr := r.driver.Confirm(ctx, ConfirmConfig{Message: "Record was not saved. Try again?", Default: true})
		if cerr != nil {
			return record.Record{}, cerr
		}
		if !retry {
			return record.Record{}, fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		if len(only) > 0 {
			if err := r.fill(ctx, s, only); err != nil {
				return record.Record{}, err
			}
		}
	}
}

// fill prompts the visible fields in definition order; when only is set,
// just those fields. Visibility is re-read after every answer so dependent
// fields appear or disappear as the user goes.
func (r *Renderer) fill(ctx context.Context, s *session.Session, only map[string]bool) error {
	for _, field := range s.Definition().Fields {
		if only != nil && !only[field.Name] {
			continue
		}
		if !s.Visible(field.Name) {
			continue
		}
		if err := r.promptField(ctx, s, field); err != nil {
			return err
		}
	}
	return nil
}

// unfillable returns the blocked choice fields the console cannot offer any
// option for. A dependent field whose parent is also blocked is not counted,
// since fixing the parent may populate its menu.
func (r *Renderer) unfillable(s *session.Session, blocked map[string]bool) []model.Field {
	var out []model.Field
	for _, field := range s.Definition().Fields {
		if !blocked[field.Name] || !field.IsChoice() {
			continue
		}
		if field.OptionsBy != "" && blocked[field.OptionsBy] {
			continue
		}
		if menu, err := s.Options(field.Name); err == nil && len(menu) == 0 {
			out = append(out, field)
		}
	}
	return out
}

func (r *Renderer) promptField(ctx context.Context, s *session.Session, field model.Field) error {
	for {
		var err error
		switch {
		case field.IsChoice():
			var skipped bool
			skipped, err = r.promptChoice(ctx, s, field)
			if skipped {
				return err
			}
		case field.Kind == model.KindDate:
			err = r.promptDate(ctx, s, field)
		case field.Kind == model.KindTextArea:
			err = r.promptTextArea(ctx, s, field)
		default:
			err = r.promptText(ctx, s, field)
		}
		if err != nil {
			return err
		}

		if err := s.Blur(field.Name); err != nil {
			return err
		}
		msg := s.DisplayErrors()[field.Name]
		if msg == "" {
			return nil
		}
		if err := r.fail(ctx, msg); err != nil {
			return err
		}
	}
}

func (r *Renderer) promptText(ctx context.Context, s *session.Session, field model.Field) error {
	answer, err := r.driver.Input(ctx, InputConfig{
		Message: r.label(s, field),
		Default: stringValue(s.Value(field.Name)),
	})
	if err != nil {
		return err
	}
	_, err = s.Set(field.Name, strings.TrimSpace(answer))
	return err
}

func (r *Renderer) promptTextArea(ctx context.Context, s *session.Session, field model.Field) error {
	answer, err := r.driver.TextArea(ctx, TextAreaConfig{
		Message: r.label(s, field),
		Default: stringValue(s.Value(field.Name)),
	})
	if err != nil {
		return err
	}
	_, err = s.Set(field.Name, answer)
	return err
}

func (r *Renderer) promptDate(ctx context.Context, s *session.Session, field model.Field) error {
	current := ""
	if t, ok := validation.DateValue(s.Value(field.Name)); ok {
		current = t.Format("2006-01-02")
	}
	answer, err := r.driver.Input(ctx, InputConfig{
		Message: r.label(s, field),
		Default: current,
		Help:    "YYYY-MM-DD",
		Validator: func(raw string) error {
			if strings.TrimSpace(raw) == "" {
				return nil
			}
			if _, ok := validation.ParseDate(raw); !ok {
				return fmt.Errorf("%s must be a valid date", field.DisplayLabel())
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	var value any
	if t, ok := validation.ParseDate(answer); ok {
		value = t
	}
	_, err = s.Set(field.Name, value)
	return err
}

// promptChoice reports skipped when the field has nothing to choose from yet,
// for instance a city menu before the state is picked.
func (r *Renderer) promptChoice(ctx context.Context, s *session.Session, field model.Field) (bool, error) {
	menu, err := s.Options(field.Name)
	if err != nil {
		return true, err
	}
	if len(menu) == 0 {
		if field.OptionsBy != "" {
			return true, r.info(ctx, fmt.Sprintf("%s: choose %s first", field.DisplayLabel(), model.DefaultLabeler(field.OptionsBy)))
		}
		return true, r.info(ctx, fmt.Sprintf("%s: no options available", field.DisplayLabel()))
	}

	display := make([]string, len(menu))
	for i, option := range menu {
		display[i] = option
		if option == model.AddNewOption {
			display[i] = AddNewLabel
		}
	}
	current, _ := s.Value(field.Name).(string)

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      r.label(s, field),
		Options:      display,
		DefaultIndex: indexOf(menu, current),
	})
	if err != nil {
		return false, err
	}
	if idx < 0 || idx >= len(menu) {
		return false, r.fail(ctx, fmt.Sprintf("Invalid %s selection", field.DisplayLabel()))
	}

	dialog, err := s.Set(field.Name, menu[idx])
	if err != nil {
		return false, err
	}
	if dialog != nil {
		return false, r.runDialog(ctx, field, dialog)
	}
	return false, nil
}

// runDialog collects a new option. Text creators ask for the value; sub-form
// creators walk the nested intake form. Declining to retry cancels the dialog
// and leaves the field as it was.
func (r *Renderer) runDialog(ctx context.Context, field model.Field, d *session.Dialog) error {
	label := field.DisplayLabel()
	if nested := d.SubForm(); nested != nil {
		if err := r.info(ctx, fmt.Sprintf("New %s: %s", label, nested.Definition().Title)); err != nil {
			return err
		}
		if err := r.fill(ctx, nested, nil); err != nil {
			d.Cancel()
			return err
		}
	}

	for {
		if d.SubForm() == nil {
			value, err := r.driver.Input(ctx, InputConfig{Message: "New " + label, Default: d.Input()})
			if err != nil {
				d.Cancel()
				return err
			}
			if err := d.SetInput(value); err != nil {
				return err
			}
		}

		value, err := d.Confirm(ctx)
		if err == nil {
			r.logger.Debug("option created from console", map[string]any{"field": field.Name, "value": value})
			return nil
		}
		if err := r.fail(ctx, err.Error()); err != nil {
			d.Cancel()
			return err
		}
		again, cerr := r.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
		if cerr != nil || !again {
			d.Cancel()
			return cerr
		}

		var blocked *session.SubmissionBlockedError
		if errors.As(err, &blocked) {
			only := make(map[string]bool, len(blocked.Errors))
			for _, name := range blocked.Errors.Fields() {
				only[name] = true
			}
			if ferr := r.fill(ctx, d.SubForm(), only); ferr != nil {
				d.Cancel()
				return ferr
			}
		}
	}
}

const (
	actionStage  = "Stage a location"
	actionReturn = "Return a location"
	actionNights = "Set nights"
	actionDone   = "Done"
	atTheEnd     = "At the end"
)

// editItinerary lets the user order the staged stays and set their nights.
func (r *Renderer) editItinerary(ctx context.Context, s *session.Session) error {
	seq := s.Itinerary()
	for {
		staged := seq.Staged()
		if err := r.info(ctx, summarize(staged, seq.TotalNights())); err != nil {
			return err
		}

		var actions []string
		if len(seq.Candidates()) > 0 {
			actions = append(actions, actionStage)
		}
		if len(staged) > 0 {
			actions = append(actions, actionReturn, actionNights)
		}
		actions = append(actions, actionDone)

		idx, err := r.driver.Select(ctx, SelectConfig{Message: "Itinerary", Options: actions, DefaultIndex: 0})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(actions) {
			continue
		}

		switch actions[idx] {
		case actionDone:
			return nil
		case actionStage:
			err = r.stage(ctx, s)
		case actionReturn:
			err = r.unstage(ctx, s)
		case actionNights:
			err = r.nights(ctx, s)
		}
		if err != nil {
			return err
		}
	}
}

func (r *Renderer) stage(ctx context.Context, s *session.Session) error {
	candidates := s.Itinerary().Candidates()
	pick, err := r.driver.Select(ctx, SelectConfig{Message: "Location", Options: candidates, DefaultIndex: -1})
	if err != nil || pick < 0 || pick >= len(candidates) {
		return err
	}

	staged := s.Itinerary().Staged()
	position := len(staged)
	if len(staged) > 0 {
		slots := make([]string, 0, len(staged)+1)
		for _, item := range staged {
			slots = append(slots, "Before "+item.Name)
		}
		slots = append(slots, atTheEnd)
		at, err := r.driver.Select(ctx, SelectConfig{Message: "Position", Options: slots, DefaultIndex: len(staged)})
		if err != nil {
			return err
		}
		if at >= 0 {
			position = at
		}
	}
	_, err = s.Move(candidates[pick], itinerary.Candidate, itinerary.Staged, position)
	return err
}

func (r *Renderer) unstage(ctx context.Context, s *session.Session) error {
	names := stagedNames(s.Itinerary().Staged())
	pick, err := r.driver.Select(ctx, SelectConfig{Message: "Return to candidates", Options: names, DefaultIndex: -1})
	if err != nil || pick < 0 || pick >= len(names) {
		return err
	}
	_, err = s.Move(names[pick], itinerary.Staged, itinerary.Candidate, len(s.Itinerary().Candidates()))
	return err
}

func (r *Renderer) nights(ctx context.Context, s *session.Session) error {
	staged := s.Itinerary().Staged()
	names := stagedNames(staged)
	pick, err := r.driver.Select(ctx, SelectConfig{Message: "Stay", Options: names, DefaultIndex: -1})
	if err != nil || pick < 0 || pick >= len(names) {
		return err
	}
	answer, err := r.driver.Input(ctx, InputConfig{
		Message: "Nights at " + names[pick],
		Default: strconv.Itoa(staged[pick].Nights),
		Validator: func(raw string) error {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || n < 0 {
				return errors.New("enter a whole number of nights")
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return r.fail(ctx, "enter a whole number of nights")
	}
	return s.SetNights(names[pick], n)
}

func (r *Renderer) print(def model.FormDefinition, rec record.Record) error {
	if r.out == nil {
		return nil
	}
	var payload []byte
	switch r.outputFormat {
	case OutputFormatPrettyText:
		payload = []byte(pretty(def, rec))
	default:
		var err error
		payload, err = json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("tui: encode record: %w", err)
		}
		payload = append(payload, '\n')
	}
	_, err := r.out.Write(payload)
	return err
}

func (r *Renderer) label(s *session.Session, field model.Field) string {
	label := field.DisplayLabel()
	if (field.Required || field.RequiredWhen != "") && requiredNow(s, field.Name) {
		label += " *"
	}
	return label
}

// requiredNow resolves conditional requiredness against current values.
func requiredNow(s *session.Session, name string) bool {
	for _, section := range s.View().Sections {
		for _, fv := range section.Fields {
			if fv.Name == name {
				return fv.Required
			}
		}
	}
	return false
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	if msg == "" {
		return nil
	}
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) fail(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

func summarize(staged []itinerary.StayItem, total int) string {
	if len(staged) == 0 {
		return "Itinerary: nothing staged yet"
	}
	parts := make([]string, len(staged))
	for i, item := range staged {
		parts[i] = fmt.Sprintf("%d. %s (%d nights)", i+1, item.Name, item.Nights)
	}
	return fmt.Sprintf("Itinerary: %s, %d nights total", strings.Join(parts, "; "), total)
}

func stagedNames(staged []itinerary.StayItem) []string {
	out := make([]string, len(staged))
	for i, item := range staged {
		out[i] = item.Name
	}
	return out
}

func pretty(def model.FormDefinition, rec record.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", def.Title, rec.ID)
	for _, field := range def.Fields {
		value := stringValue(rec.Values[field.Name])
		if value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", field.DisplayLabel(), value)
	}
	for i, stay := range rec.Itinerary {
		fmt.Fprintf(&b, "Stay %d: %s, %d nights\n", i+1, stay.Name, stay.Nights)
	}
	return b.String()
}

func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}
