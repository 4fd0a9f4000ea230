package forms

import "github.com/goliatone/go-tourforms/pkg/model"

// AssociateID identifies the associate intake screen.
const AssociateID = "associate"

// Associate is the associate intake form. It doubles as the nested form the
// lead screen opens to create an associate inline.
func Associate() model.FormDefinition {
	tenDigits := func(label string) []model.ValidationRule {
		return []model.ValidationRule{digits(10, label+" must be 10 digits")}
	}

	return model.FormDefinition{
		ID:    AssociateID,
		Title: "Associate Detail Form",
		Sections: []model.Section{
			{ID: "personal", Title: "Associate's Personal Details"},
			{ID: "location", Title: "Associate's Location"},
			{ID: "address", Title: "Address"},
		},
		Fields: []model.Field{
			{Name: "firstName", Kind: model.KindText, Section: "personal", Required: true},
			{Name: "lastName", Kind: model.KindText, Section: "personal", Required: true},
			{Name: "mobile", Label: "Mobile Number", Kind: model.KindText, Section: "personal", Required: true, Rules: tenDigits("Mobile")},
			{Name: "alternateContact", Kind: model.KindText, Section: "personal", Required: true, Rules: tenDigits("Alternate Contact")},
			{Name: "associateType", Kind: model.KindSelect, Section: "personal", Required: true, AllowAdd: true},
			{Name: "email", Kind: model.KindText, Section: "personal", Required: true, Rules: []model.ValidationRule{email("Invalid email format")}},
			{Name: "title", Kind: model.KindSelect, Section: "personal", Options: "associateTitle", Required: true},
			{Name: "dob", Label: "Date of Birth", Kind: model.KindDate, Section: "personal", Required: true},
			{Name: "associateUserId", Label: "Associates User ID", Kind: model.KindText, Section: "personal", Required: true},
			{Name: "associateStatus", Label: "Associates Status", Kind: model.KindSelect, Section: "personal", Required: true, RequiredMsg: "Status is required"},

			{Name: "country", Kind: model.KindSelect, Section: "location", Options: "associateCountry", AllowAdd: true, Required: true},
			{Name: "state", Kind: model.KindSelect, Section: "location", Options: "associateState", AllowAdd: true, Required: true},
			{Name: "city", Kind: model.KindSelect, Section: "location", Options: "associateCity", AllowAdd: true, Required: true},

			{Name: "address1", Label: "Address Line 1", Kind: model.KindText, Section: "address", Required: true},
			{Name: "address2", Label: "Address Line 2", Kind: model.KindText, Section: "address", Required: true},
			{Name: "address3", Label: "Address Line 3", Kind: model.KindText, Section: "address", Required: true},
			{Name: "pincode", Kind: model.KindText, Section: "address", Required: true, Rules: []model.ValidationRule{digits(6, "Pincode must be 6 digits")}},
		},
	}
}

func associateSeeds() map[string][]string {
	return map[string][]string{
		"associateType":    {"Type A", "Type B"},
		"associateTitle":   {"Mr.", "Ms.", "Mrs.", "Dr."},
		"associateStatus":  {"Active", "Deactive", "Expired"},
		"associateCountry": {"India", "USA"},
		"associateState":   {"State 1", "State 2"},
		"associateCity":    {"City 1", "City 2"},
	}
}
