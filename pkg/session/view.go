package session

import (
	"github.com/goliatone/go-tourforms/pkg/itinerary"
	"github.com/goliatone/go-tourforms/pkg/model"
)

// View is a render-ready snapshot of the session. Hidden fields are left out
// and errors are the displayable ones only.
type View struct {
	Form      string
	Title     string
	Sections  []SectionView
	Dialog    *DialogView
	Itinerary *ItineraryView
	FormError []string
	CanSubmit bool
}

type SectionView struct {
	ID     string
	Title  string
	Fields []FieldView
}

type FieldView struct {
	Name     string
	Label    string
	Kind     model.FieldKind
	Value    any
	Required bool
	Error    string
	Options  []string
	AllowAdd bool
}

type DialogView struct {
	Field string
	Kind  model.CreatorKind
	Input string
	Error string
}

type ItineraryView struct {
	Candidates  []string
	Staged      []itinerary.StayItem
	TotalNights int
}

// View builds the current snapshot.
func (s *Session) View() View {
	display := s.DisplayErrors()
	view := View{
		Form:      s.def.ID,
		Title:     s.def.Title,
		CanSubmit: s.errors.Empty(),
		FormError: append([]string(nil), s.rejection.Form...),
	}

	project := func(field model.Field) FieldView {
		fv := FieldView{
			Name:     field.Name,
			Label:    field.DisplayLabel(),
			Kind:     field.Kind,
			Value:    s.values[field.Name],
			Required: s.engine.Required(field, s.values),
			Error:    display[field.Name],
			Options:  s.menu(field),
			AllowAdd: field.AllowAdd,
		}
		if fv.Error == "" {
			if msgs := s.rejection.Fields[field.Name]; len(msgs) > 0 {
				fv.Error = msgs[0]
			}
		}
		return fv
	}

	sections := s.def.Sections
	if len(sections) == 0 || len(s.def.SectionFields("")) > 0 {
		sections = append([]model.Section{{ID: ""}}, sections...)
	}
	for _, section := range sections {
		sv := SectionView{ID: section.ID, Title: section.Title}
		for _, field := range s.def.SectionFields(section.ID) {
			if !s.visible[field.Name] {
				continue
			}
			sv.Fields = append(sv.Fields, project(field))
		}
		if len(sv.Fields) > 0 {
			view.Sections = append(view.Sections, sv)
		}
	}

	if d := s.dialog; d != nil {
		dv := &DialogView{Field: d.field.Name, Kind: d.kind, Input: d.input}
		if d.err != nil {
			dv.Error = d.err.Error()
		}
		view.Dialog = dv
	}

	if s.itinerary != nil {
		view.Itinerary = &ItineraryView{
			Candidates:  s.itinerary.Candidates(),
			Staged:      s.itinerary.Staged(),
			TotalNights: s.itinerary.TotalNights(),
		}
	}
	return view
}
