package forms

import "github.com/goliatone/go-tourforms/pkg/model"

// StaffID identifies the staff record screen.
const StaffID = "staff"

// Staff is the staff record form. Country, state and city cascade: each list
// depends on its parent and picking a new parent clears the children.
func Staff() model.FormDefinition {
	return model.FormDefinition{
		ID:    StaffID,
		Title: "Staff Entry Form",
		Sections: []model.Section{
			{ID: "personal", Title: "Staff's Personal Details"},
			{ID: "location", Title: "Staff's Location"},
			{ID: "address", Title: "Address"},
		},
		Fields: []model.Field{
			{Name: "firstName", Kind: model.KindText, Section: "personal", Required: true, RequiredMsg: "Required"},
			{Name: "lastName", Kind: model.KindText, Section: "personal", Required: true, RequiredMsg: "Required"},
			{Name: "mobile", Label: "Mobile Number", Kind: model.KindText, Section: "personal", Required: true, RequiredMsg: "Required"},
			{Name: "alternateContact", Kind: model.KindText, Section: "personal"},
			{Name: "designation", Kind: model.KindText, Section: "personal", Required: true, RequiredMsg: "Required"},
			{Name: "userRole", Kind: model.KindSelect, Section: "personal", Required: true, RequiredMsg: "Required"},
			{Name: "email", Label: "Email Id", Kind: model.KindText, Section: "personal", Rules: []model.ValidationRule{email("Invalid email")}},
			{Name: "title", Kind: model.KindSelect, Section: "personal", Options: "staffTitle"},
			{Name: "dob", Label: "Date of Birth", Kind: model.KindDate, Section: "personal"},

			{Name: "country", Kind: model.KindSelect, Section: "location", Options: "staffCountry", Required: true, RequiredMsg: "Required"},
			{
				Name: "state", Kind: model.KindSelect, Section: "location", Options: "staffState", Required: true, RequiredMsg: "Required",
				OptionsBy: "country", ResetsOn: []string{"country"},
			},
			{
				Name: "city", Kind: model.KindSelect, Section: "location", Options: "staffCity", Required: true, RequiredMsg: "Required",
				OptionsBy: "state", ResetsOn: []string{"state"},
			},

			{Name: "address1", Label: "Address Line 1", Kind: model.KindText, Section: "address"},
			{Name: "address2", Label: "Address Line 2", Kind: model.KindText, Section: "address"},
			{Name: "address3", Label: "Address Line 3", Kind: model.KindText, Section: "address"},
			{Name: "pincode", Kind: model.KindText, Section: "address"},
		},
	}
}

func staffSeeds() map[string][]string {
	seeds := map[string][]string{
		"staffTitle":   {"Mr", "Mrs", "Ms", "Dr"},
		"userRole":     {"Admin", "Manager", "Executive"},
		"staffCountry": {"India", "USA"},
	}
	states := map[string][]string{
		"India": {"Maharashtra", "Delhi", "Karnataka"},
		"USA":   {"California", "New York", "Texas"},
	}
	cities := map[string][]string{
		"Maharashtra": {"Mumbai", "Pune"},
		"Delhi":       {"New Delhi"},
		"Karnataka":   {"Bangalore"},
		"California":  {"Los Angeles", "San Francisco"},
		"New York":    {"New York City"},
		"Texas":       {"Houston"},
	}
	for country, list := range states {
		seeds[model.DependentOptionKey("staffState", country)] = list
	}
	for state, list := range cities {
		seeds[model.DependentOptionKey("staffCity", state)] = list
	}
	return seeds
}
