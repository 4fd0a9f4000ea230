package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-tourforms/pkg/validation"
)

var (
	// ErrUnknownField is returned for field names the definition does not
	// declare.
	ErrUnknownField = errors.New("session: unknown field")
	// ErrSubmissionBlocked matches SubmissionBlockedError via errors.Is.
	ErrSubmissionBlocked = errors.New("session: submission blocked")
	// ErrDialogOpen is returned while an option dialog is waiting for the
	// user; the dialog is modal.
	ErrDialogOpen = errors.New("session: option dialog is open")
	// ErrDialogClosed is returned by a dialog after Confirm or Cancel.
	ErrDialogClosed = errors.New("session: option dialog is closed")
	// ErrNotExtensible is returned when "add new" is chosen on a field that
	// does not allow it.
	ErrNotExtensible = errors.New("session: field does not accept new options")
	// ErrNoOptionList is returned when a dependent field's parent is unset.
	ErrNoOptionList = errors.New("session: field has no option list yet")
	// ErrNoItinerary is returned by itinerary operations on plain forms.
	ErrNoItinerary = errors.New("session: form has no itinerary")
)

// SubmissionBlockedError is the guarded no-op result of submitting a form
// that still has validation errors. Nothing was handed to the store.
type SubmissionBlockedError struct {
	Form   string
	Errors validation.Errors
}

func (e *SubmissionBlockedError) Error() string {
	return fmt.Sprintf("session: submission of %s blocked by %d error(s): %s",
		e.Form, len(e.Errors), strings.Join(e.Errors.Fields(), ", "))
}

// Is lets errors.Is(err, ErrSubmissionBlocked) match.
func (e *SubmissionBlockedError) Is(target error) bool {
	return target == ErrSubmissionBlocked
}
