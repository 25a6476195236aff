// Package password holds the client-side password rules applied before a
// change or reset request is sent.
package password

import (
	"regexp"

	"github.com/wolfeidau/flightdesk/internal/form"
)

// MinLength is the minimum number of characters in a new password.
const MinLength = 8

var (
	upper   = regexp.MustCompile(`[A-Z]`)
	lower   = regexp.MustCompile(`[a-z]`)
	digit   = regexp.MustCompile(`[0-9]`)
	special = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// StrengthError returns the first strength rule pw breaks, or "".
func StrengthError(pw string) string {
	switch {
	case pw == "":
		return "New password is required"
	case len(pw) < MinLength:
		return "Use at least 8 characters"
	case !upper.MatchString(pw):
		return "Add an uppercase letter"
	case !lower.MatchString(pw):
		return "Add a lowercase letter"
	case !digit.MatchString(pw):
		return "Add a number"
	case !special.MatchString(pw):
		return "Add a special character"
	}
	return ""
}

// ConfirmError returns a problem with the confirmation field, or "".
func ConfirmError(pw, confirm string) string {
	if confirm == "" {
		return "Confirm your new password"
	}
	if pw != "" && confirm != pw {
		return "Passwords do not match"
	}
	return ""
}

// Change is the password change form.
type Change struct {
	Current string
	New     string
	Confirm string
}

// Validate checks the change form. The strength message takes precedence
// over the confirmation message, which takes precedence over missing fields.
func (c Change) Validate() error {
	var errs form.Errors

	strength := StrengthError(c.New)
	if strength == "" && c.Current != "" && c.New == c.Current {
		strength = "New password must differ from current"
	}
	errs.Add(strength)
	errs.Add(ConfirmError(c.New, c.Confirm))
	errs.Check(c.Current != "", "Please fill all fields")

	return errs.Err()
}

// ResetRequest asks for a reset code.
type ResetRequest struct {
	Username string
	Email    string
}

func (r ResetRequest) Validate() error {
	var errs form.Errors
	errs.Check(!form.Blank(r.Username) && !form.Blank(r.Email), "Enter username and email")
	return errs.Err()
}

// ResetConfirm sets a new password with a reset code.
type ResetConfirm struct {
	Username string
	Code     string
	New      string
	Confirm  string
}

func (r ResetConfirm) Validate() error {
	var errs form.Errors
	errs.Add(StrengthError(r.New))
	errs.Add(ConfirmError(r.New, r.Confirm))
	errs.Check(!form.Blank(r.Username) && !form.Blank(r.Code), "Fill all fields")
	return errs.Err()
}
