package forms

import "github.com/goliatone/go-tourforms/pkg/model"

// LeadID identifies the customer lead screen.
const LeadID = "lead"

// Lead is the customer detail form. "Referral by" only appears for B2B
// referrals; both it and "assigned to" pick from the associate directory and
// create new associates through the associate intake form.
func Lead() model.FormDefinition {
	return model.FormDefinition{
		ID:    LeadID,
		Title: "Customer Detail Form",
		Sections: []model.Section{
			{ID: "personal", Title: "Personal Details"},
			{ID: "location", Title: "Location"},
			{ID: "address", Title: "Address"},
			{ID: "official", Title: "Official Detail"},
			{ID: "note", Title: "Note"},
		},
		Fields: []model.Field{
			{Name: "fullName", Label: "Full Name", Kind: model.KindText, Section: "personal", Required: true, RequiredMsg: "Name is required"},
			{Name: "mobile", Kind: model.KindText, Section: "personal", Rules: []model.ValidationRule{digits(10, "Mobile must be 10 digits")}},
			{Name: "alternateNumber", Kind: model.KindText, Section: "personal", Rules: []model.ValidationRule{digits(10, "Alternate Number must be 10 digits")}},
			{Name: "email", Kind: model.KindText, Section: "personal", Rules: []model.ValidationRule{email("Invalid email format")}},
			{Name: "title", Kind: model.KindSelect, Section: "personal", Options: "leadTitle"},
			{Name: "dob", Label: "Date Of Birth", Kind: model.KindDate, Section: "personal"},

			{Name: "country", Kind: model.KindText, Section: "location", Default: "India"},
			{Name: "state", Kind: model.KindText, Section: "location"},
			{Name: "city", Kind: model.KindText, Section: "location"},

			{Name: "address1", Label: "Address Line1", Kind: model.KindText, Section: "address"},
			{Name: "address2", Label: "Address Line2", Kind: model.KindText, Section: "address"},
			{Name: "address3", Label: "Address Line3", Kind: model.KindText, Section: "address"},
			{Name: "pincode", Kind: model.KindText, Section: "address", Rules: []model.ValidationRule{digits(6, "Pincode must be 6 digits")}},

			{Name: "businessType", Kind: model.KindRadio, Section: "official", Default: "B2B"},
			{Name: "priority", Kind: model.KindSelect, Section: "official"},
			{Name: "source", Kind: model.KindSelect, Section: "official", Required: true},
			{
				Name: "referralBy", Kind: model.KindSelect, Section: "official",
				Options:      AssociatesKey,
				AllowAdd:     true,
				Creator:      model.CreatorSubForm,
				Shared:       true,
				VisibleWhen:  `businessType == "B2B" && source == "Referral"`,
				RequiredWhen: `businessType == "B2B" && source == "Referral"`,
			},
			{
				Name: "assignedTo", Kind: model.KindSelect, Section: "official", Required: true,
				Options:  AssociatesKey,
				AllowAdd: true,
				Creator:  model.CreatorSubForm,
				Shared:   true,
			},

			{Name: "note", Label: "Initial Note", Kind: model.KindTextArea, Section: "note"},
		},
	}
}

func leadSeeds() map[string][]string {
	return map[string][]string{
		"leadTitle":    {"Mr", "Ms", "Mrs"},
		"businessType": {"B2B", "B2C"},
		"priority":     {"High", "Medium", "Low"},
		"source":       {"Direct", "Referral", "Website"},
		AssociatesKey:  {},
	}
}
