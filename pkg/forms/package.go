package forms

import (
	"fmt"

	"github.com/goliatone/go-tourforms/pkg/model"
	"github.com/goliatone/go-tourforms/pkg/session"
)

// PackageID identifies the tour package builder.
const PackageID = "package"

// Package is the tour package builder. Domestic packages pick a sector from a
// list and get candidate cities for it; international packages type the
// sector and choose a destination country. Switching the tour type clears the
// destination fields and both itinerary pools.
func Package() model.FormDefinition {
	const (
		domestic      = `tourType == "Domestic"`
		international = `tourType == "International"`
	)
	onTourType := []string{"tourType"}

	return model.FormDefinition{
		ID:        PackageID,
		Title:     "Package Entry Form",
		Itinerary: true,
		Sections: []model.Section{
			{ID: "destination", Title: "Destination"},
		},
		Fields: []model.Field{
			{Name: "tourType", Kind: model.KindRadio, Section: "destination", Default: "Domestic"},
			{
				Name: "sector", Kind: model.KindSelect, Section: "destination", Options: "packageSector",
				VisibleWhen: domestic, RequiredWhen: domestic, RequiredMsg: "Sector is required", ResetsOn: onTourType,
			},
			{
				Name: "sectorName", Label: "Sector (Manual Input)", Kind: model.KindText, Section: "destination",
				VisibleWhen: international, RequiredWhen: international, RequiredMsg: "Sector is required", ResetsOn: onTourType,
			},
			{
				Name: "subType", Label: "Package Sub Type", Kind: model.KindSelect, Section: "destination", Options: "packageSubType",
				Required: true, ResetsOn: onTourType,
			},
			{
				Name: "destinationCountry", Kind: model.KindSelect, Section: "destination", Options: "packageCountry",
				VisibleWhen: international, RequiredWhen: international, RequiredMsg: "Destination country is required", ResetsOn: onTourType,
			},
		},
	}
}

func packageSeeds() map[string][]string {
	return map[string][]string{
		"tourType":       {"Domestic", "International"},
		"packageSector":  {"Uttar Pradesh", "Maharashtra", "Kerala", "Goa", "Kashmir", "Rajasthan"},
		"packageSubType": {"Adventure", "Leisure", "Cultural"},
		"packageCountry": {"Thailand", "France", "USA", "Japan", "Australia"},
	}
}

// SectorCities lists the candidate locations offered for a domestic sector.
func SectorCities(sector string) []string {
	if sector == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s - City 1", sector),
		fmt.Sprintf("%s - City 2", sector),
		fmt.Sprintf("%s - City 3", sector),
	}
}

func packageHooks() []session.Option {
	return []session.Option{
		session.WithChangeHook("tourType", func(s *session.Session, _ string, _ any) {
			s.Itinerary().Reset()
		}),
		session.WithChangeHook("sector", func(s *session.Session, _ string, _ any) {
			if s.Value("tourType") != "Domestic" {
				return
			}
			sector, _ := s.Value("sector").(string)
			s.Itinerary().Seed(SectorCities(sector))
		}),
	}
}
