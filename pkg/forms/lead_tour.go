package forms

import "github.com/goliatone/go-tourforms/pkg/model"

// LeadTourID identifies the lead tour enquiry screen.
const LeadTourID = "leadTour"

// LeadTour captures a lead's travel requirement. The destination country is
// only asked (and only required) for international tours.
func LeadTour() model.FormDefinition {
	const international = `tourType == "International"`

	return model.FormDefinition{
		ID:    LeadTourID,
		Title: "Lead Tour Form",
		Sections: []model.Section{
			{ID: "tour", Title: "Tour"},
			{ID: "travellers", Title: "Travellers"},
			{ID: "travel", Title: "Arrival & Departure"},
			{ID: "stay", Title: "Accommodation"},
			{ID: "note", Title: "Requirement"},
		},
		Fields: []model.Field{
			{Name: "tourType", Kind: model.KindRadio, Section: "tour", Default: "Domestic"},
			{
				Name: "country", Kind: model.KindSelect, Section: "tour", Options: "tourCountry", AllowAdd: true,
				VisibleWhen: international, RequiredWhen: international, RequiredMsg: "Country is required",
			},
			{Name: "destination", Label: "Tour Destination", Kind: model.KindSelect, Section: "tour", AllowAdd: true, Required: true, RequiredMsg: "Required"},
			{Name: "services", Label: "Services Required", Kind: model.KindSelect, Section: "tour", AllowAdd: true, Required: true, RequiredMsg: "Required"},

			{
				Name: "adults", Label: "No of Adults", Kind: model.KindNumber, Section: "travellers", Required: true, RequiredMsg: "Required",
				Rules: []model.ValidationRule{atLeast(1, "At least 1 adult")},
			},
			{Name: "children", Label: "No of Children(6-12)", Kind: model.KindNumber, Section: "travellers"},
			{Name: "kidsWithoutMattress", Label: "No of Kids(2-5)", Kind: model.KindNumber, Section: "travellers"},
			{Name: "infants", Label: "No of Infants", Kind: model.KindNumber, Section: "travellers"},

			{Name: "arrivalDate", Kind: model.KindDate, Section: "travel", Required: true, RequiredMsg: "Required"},
			{Name: "arrivalCity", Kind: model.KindSelect, Section: "travel", AllowAdd: true},
			{Name: "arrivalLocation", Kind: model.KindSelect, Section: "travel", AllowAdd: true},
			{Name: "departureDate", Kind: model.KindDate, Section: "travel", Required: true, RequiredMsg: "Required"},
			{Name: "departureCity", Kind: model.KindSelect, Section: "travel", AllowAdd: true},
			{Name: "departureLocation", Kind: model.KindSelect, Section: "travel", AllowAdd: true},

			{Name: "hotelType", Kind: model.KindSelect, Section: "stay", AllowAdd: true},
			{Name: "mealPlan", Kind: model.KindSelect, Section: "stay", AllowAdd: true},
			{Name: "transport", Kind: model.KindRadio, Section: "stay", Default: "No"},
			{Name: "sharingType", Kind: model.KindSelect, Section: "stay", AllowAdd: true, Required: true, RequiredMsg: "Required"},
			{
				Name: "noOfRooms", Label: "No of Rooms", Kind: model.KindNumber, Section: "stay", Required: true, RequiredMsg: "Required",
				Rules: []model.ValidationRule{atLeast(1, "At least 1 room")},
			},
			{Name: "noOfMattress", Label: "No of Mattress", Kind: model.KindNumber, Section: "stay", Default: "0"},
			{Name: "noOfNights", Label: "No of Nights", Kind: model.KindNumber, Section: "stay"},

			{Name: "requirementNote", Kind: model.KindTextArea, Section: "note"},
		},
	}
}

func leadTourSeeds() map[string][]string {
	return map[string][]string{
		"tourType":          {"Domestic", "International"},
		"tourCountry":       {"France", "USA", "Japan"},
		"destination":       {"Delhi", "Paris"},
		"services":          {"Hotel", "Transport"},
		"arrivalCity":       {"Mumbai", "Delhi"},
		"arrivalLocation":   {"Airport"},
		"departureCity":     {"Delhi"},
		"departureLocation": {"Hotel"},
		"hotelType":         {"3 Star", "5 Star"},
		"mealPlan":          {"Breakfast"},
		"transport":         {"Yes", "No"},
		"sharingType":       {"Twin"},
	}
}
