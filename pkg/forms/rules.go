package forms

import (
	"strconv"

	"github.com/goliatone/go-tourforms/pkg/model"
)

// Option list keys shared between screens.
const (
	// AssociatesKey is the option list behind "assigned to" and "referral by".
	// It is the pool inline-created associates are promoted into.
	AssociatesKey = "associates"
)

func digits(n int, message string) model.ValidationRule {
	return model.ValidationRule{
		Kind:    model.ValidationRulePattern,
		Params:  map[string]string{"pattern": "^[0-9]{" + strconv.Itoa(n) + "}$"},
		Message: message,
	}
}

func email(message string) model.ValidationRule {
	return model.ValidationRule{Kind: model.ValidationRuleEmail, Message: message}
}

func atLeast(n int, message string) model.ValidationRule {
	return model.ValidationRule{
		Kind:    model.ValidationRuleMin,
		Params:  map[string]string{"value": strconv.Itoa(n)},
		Message: message,
	}
}
