// Package preview renders form snapshots and stored records as HTML for
// review screens and print-outs. Free-text notes may carry markup typed into
// the console; it is sanitized before it reaches the page.
package preview

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/record"
	"github.com/goliatone/go-tourforms/pkg/session"
	"github.com/goliatone/go-tourforms/pkg/widgets"
)

//go:embed templates/*.tpl
var embedded embed.FS

// Templates returns the built-in template set.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

var (
	filtersOnce sync.Once
	notePolicy  *bluemonday.Policy
)

func registerFilters() {
	filtersOnce.Do(func() {
		notePolicy = bluemonday.UGCPolicy()
		notePolicy.RequireNoFollowOnLinks(true)

		if !pongo2.FilterExists("ugc") {
			_ = pongo2.RegisterFilter("ugc", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
				return pongo2.AsSafeValue(Sanitize(in.String())), nil
			})
		}
		if !pongo2.FilterExists("display") {
			_ = pongo2.RegisterFilter("display", func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
				if in.IsNil() || strings.TrimSpace(in.String()) == "" {
					return pongo2.AsValue("-"), nil
				}
				return in, nil
			})
		}
	})
}

// Sanitize strips everything but basic formatting markup from a note.
func Sanitize(note string) string {
	registerFilters()
	return strings.TrimSpace(notePolicy.Sanitize(note))
}

// Renderer turns views and records into HTML.
type Renderer struct {
	engine  *Engine
	widgets *widgets.Registry
}

// New builds a renderer over the built-in templates. Options may point it at
// a directory of overrides.
func New(opts ...EngineOption) (*Renderer, error) {
	all := append([]EngineOption{WithFS(Templates())}, opts...)
	engine, err := NewEngine(all...)
	if err != nil {
		return nil, err
	}
	return &Renderer{engine: engine, widgets: widgets.NewRegistry()}, nil
}

// Widgets exposes the control registry so callers can register their own
// matchers.
func (r *Renderer) Widgets() *widgets.Registry {
	return r.widgets
}

// Form renders the live state of an entry screen. Every visible field is
// tagged with the control it is drawn with.
func (r *Renderer) Form(s *session.Session, out ...io.Writer) (string, error) {
	if s == nil {
		return "", fmt.Errorf("preview: session is nil")
	}
	ctx, err := toContext(s.View())
	if err != nil {
		return "", fmt.Errorf("preview: convert view: %w", err)
	}
	controls := r.widgets.Controls(s.Definition())
	sections, _ := ctx["Sections"].([]any)
	for _, section := range sections {
		sv, _ := section.(map[string]any)
		fields, _ := sv["Fields"].([]any)
		for _, field := range fields {
			if fv, ok := field.(map[string]any); ok {
				name, _ := fv["Name"].(string)
				fv["Widget"] = controls[name]
			}
		}
	}
	ctx["addNew"] = model.AddNewOption
	return r.engine.Render("form", ctx, out...)
}

// Record renders a stored record labelled and grouped by def.
func (r *Renderer) Record(def model.FormDefinition, rec record.Record, out ...io.Writer) (string, error) {
	type row struct {
		Label string `json:"label"`
		Value any    `json:"value"`
		Rich  bool   `json:"rich"`
	}
	type group struct {
		Title string `json:"title"`
		Rows  []row  `json:"rows"`
	}

	var groups []group
	add := func(title string, fields []model.Field) {
		g := group{Title: title}
		for _, field := range fields {
			g.Rows = append(g.Rows, row{
				Label: field.DisplayLabel(),
				Value: rec.Values[field.Name],
				Rich:  field.Kind == model.KindTextArea,
			})
		}
		if len(g.Rows) > 0 {
			groups = append(groups, g)
		}
	}
	add("", def.SectionFields(""))
	for _, section := range def.Sections {
		add(section.Title, def.SectionFields(section.ID))
	}

	title := def.Title
	if title == "" {
		title = model.DefaultLabeler(def.ID)
	}
	data := map[string]any{
		"id":          rec.ID,
		"form":        rec.Form,
		"title":       title,
		"submittedAt": record.FormatTime(rec.SubmittedAt),
		"sections":    groups,
		"itinerary":   rec.Itinerary,
	}
	return r.engine.Render("record", data, out...)
}
