package forms

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/options"
	"github.com/goliatone/go-tourforms/pkg/session"
)

// Directory is a pool of option values shared across sessions, such as the
// associate directory. Values are listed when a screen opens and promoted
// when a user creates one inline.
type Directory interface {
	options.Promoter
	List(ctx context.Context, field string) ([]string, error)
}

type screen struct {
	definition func() model.FormDefinition
	seeds      func() map[string][]string
	options    func() []session.Option
}

// Catalog is the set of entry screens the console offers.
type Catalog struct {
	screens   map[string]screen
	overrides map[string][]string
	directory Directory
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithSeedOverrides replaces option lists by key, typically loaded from
// options.yaml.
func WithSeedOverrides(overrides map[string][]string) CatalogOption {
	return func(c *Catalog) {
		c.overrides = overrides
	}
}

// WithDirectory wires the shared pool behind fields flagged Shared.
func WithDirectory(dir Directory) CatalogOption {
	return func(c *Catalog) {
		c.directory = dir
	}
}

// NewCatalog returns the lead, lead tour, associate, staff and package screens.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{
		screens: map[string]screen{
			LeadID: {
				definition: Lead,
				// the nested associate intake shares the lead registry
				seeds: func() map[string][]string {
					return options.MergeSeeds(associateSeeds(), leadSeeds())
				},
				options: func() []session.Option {
					intake := session.SubForm{Definition: Associate()}
					return []session.Option{
						session.WithSubForm("assignedTo", intake),
						session.WithSubForm("referralBy", intake),
					}
				},
			},
			LeadTourID:  {definition: LeadTour, seeds: leadTourSeeds},
			AssociateID: {definition: Associate, seeds: associateSeeds},
			StaffID:     {definition: Staff, seeds: staffSeeds},
			PackageID: {
				definition: Package,
				seeds:      packageSeeds,
				options:    packageHooks,
			},
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// IDs lists the screen ids, sorted.
func (c *Catalog) IDs() []string {
	out := make([]string, 0, len(c.screens))
	for id := range c.screens {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Definition returns a fresh copy of the screen's definition.
func (c *Catalog) Definition(id string) (model.FormDefinition, bool) {
	sc, ok := c.screens[id]
	if !ok {
		return model.FormDefinition{}, false
	}
	return sc.definition(), true
}

// Definitions returns every screen definition in id order.
func (c *Catalog) Definitions() []model.FormDefinition {
	out := make([]model.FormDefinition, 0, len(c.screens))
	for _, id := range c.IDs() {
		out = append(out, c.screens[id].definition())
	}
	return out
}

// Seeds returns the default option lists of a screen with overrides applied.
// Overrides only replace keys the screen already uses.
func (c *Catalog) Seeds(id string) map[string][]string {
	sc, ok := c.screens[id]
	if !ok {
		return nil
	}
	seeds := sc.seeds()
	applicable := make(map[string][]string)
	for key, values := range c.overrides {
		if _, used := seeds[key]; used {
			applicable[key] = values
		}
	}
	return options.MergeSeeds(seeds, applicable)
}

// Open starts a session for the screen with a freshly seeded registry. When a
// directory is configured its current entries are merged into the shared
// lists and it receives inline-created values.
func (c *Catalog) Open(ctx context.Context, id string, opts ...session.Option) (*session.Session, error) {
	sc, ok := c.screens[id]
	if !ok {
		return nil, fmt.Errorf("forms: unknown screen %q", id)
	}
	def := sc.definition()

	var regOpts []options.Option
	if c.directory != nil {
		regOpts = append(regOpts, options.WithPromoter(c.directory))
	}
	reg := options.New(c.Seeds(id), regOpts...)

	if c.directory != nil {
		for _, key := range sharedKeys(def) {
			shared, err := c.directory.List(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("forms: list shared %s: %w", key, err)
			}
			reg.Merge(key, shared)
		}
	}

	all := []session.Option{session.WithRegistry(reg)}
	if sc.options != nil {
		all = append(all, sc.options()...)
	}
	all = append(all, opts...)
	return session.New(def, all...)
}

func sharedKeys(def model.FormDefinition) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, field := range def.Fields {
		if !field.Shared {
			continue
		}
		key := field.OptionKey(nil)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}
