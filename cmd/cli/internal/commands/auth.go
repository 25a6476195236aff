package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wolfeidau/flightdesk/internal/client"
	"github.com/wolfeidau/flightdesk/internal/form"
	"github.com/wolfeidau/flightdesk/internal/guard"
	"github.com/wolfeidau/flightdesk/internal/password"
	"github.com/wolfeidau/flightdesk/internal/session"
)

type LoginCmd struct {
	Username string `help:"Username" required:""`
	Email    string `help:"Email address used for booking history" required:""`
	Password string `help:"Password" env:"FLIGHTDESK_PASSWORD" required:""`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := validateLogin(l.Username, l.Email, l.Password); err != nil {
		return a.fail(err, "")
	}

	if _, err := a.session.Login(ctx, client.LoginRequest{Username: l.Username, Password: l.Password}, l.Email); err != nil {
		return a.fail(err, "Login failed. Check your credentials.")
	}

	a.notifier.Success("Logged in successfully")

	switch {
	case a.session.IsAdmin():
		fmt.Fprintln(a.out, "Signed in as administrator. Use 'flightdesk-cli admin' to manage airlines and flights.")
	case a.session.RequiresPasswordChange():
		fmt.Fprintln(a.out, "Your password has expired. Run 'flightdesk-cli password change' before booking.")
	}

	return nil
}

func validateLogin(username, email, pw string) error {
	var errs form.Errors
	errs.Check(!form.Blank(username) && form.ValidEmail(email) && pw != "",
		"Please enter username, valid email, and password.")
	return errs.Err()
}

type RegisterCmd struct {
	Username        string `help:"Username" required:""`
	FullName        string `help:"Full name" name:"full-name" required:""`
	Email           string `help:"Email address" required:""`
	Password        string `help:"Password" env:"FLIGHTDESK_PASSWORD" required:""`
	ConfirmPassword string `help:"Repeat the password" name:"confirm-password" required:""`
}

func (r *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	var errs form.Errors
	errs.Check(!form.Blank(r.Username) && !form.Blank(r.FullName) && form.ValidEmail(r.Email) && r.Password != "",
		"Please complete all fields with a valid email.")
	errs.Check(r.Password == r.ConfirmPassword, "Passwords do not match.")
	if err := errs.Err(); err != nil {
		return a.fail(err, "")
	}

	_, err = a.session.Register(ctx, client.RegisterRequest{
		Username: r.Username,
		Password: r.Password,
		FullName: r.FullName,
		Email:    r.Email,
		Role:     session.RoleUser,
	})
	if err != nil {
		return a.fail(err, "Registration failed. Please try again.")
	}

	a.notifier.Success("Account created.")
	return nil
}

type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := a.session.Logout(); err != nil {
		return a.fail(err, "Failed to sign out.")
	}

	a.notifier.Info("Signed out.")
	return nil
}

type WhoamiCmd struct{}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	s, ok := a.session.Session()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}

	fmt.Fprintf(a.out, "Username:     %s\n", orDash(a.session.Username()))
	fmt.Fprintf(a.out, "Email:        %s\n", orDash(a.session.Email()))
	fmt.Fprintf(a.out, "Role:         %s\n", orDash(a.session.Role()))
	fmt.Fprintf(a.out, "Token:        %s\n", s.Fingerprint())
	if s.CreatedAt != nil {
		fmt.Fprintf(a.out, "Password set: %s\n", s.CreatedAt.Format(time.DateOnly))
	}
	if s.MustChangePassword {
		fmt.Fprintln(a.out, "Password:     expired")
	}
	fmt.Fprintf(a.out, "Server:       %s\n", a.api.BaseURL())

	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

type PasswordCmd struct {
	Change       PasswordChangeCmd       `cmd:"" help:"Change the password of the signed in user"`
	ResetRequest PasswordResetRequestCmd `cmd:"" name:"reset-request" help:"Request a password reset code"`
	ResetConfirm PasswordResetConfirmCmd `cmd:"" name:"reset-confirm" help:"Set a new password with a reset code"`
}

type PasswordChangeCmd struct {
	Current string `help:"Current password" required:""`
	New     string `help:"New password" required:""`
	Confirm string `help:"Repeat the new password" required:""`
}

func (p *PasswordChangeCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := a.navigate(guard.PathChangePassword); err != nil {
		return err
	}

	if err := (password.Change{Current: p.Current, New: p.New, Confirm: p.Confirm}).Validate(); err != nil {
		return a.fail(err, "")
	}

	if _, err := a.api.UpdatePassword(ctx, p.Current, p.New); err != nil {
		return a.fail(err, "Failed to update password")
	}

	if err := a.session.MarkPasswordChanged(); err != nil {
		return a.fail(err, "Failed to update password")
	}

	a.notifier.Success("Password updated successfully")
	return nil
}

type PasswordResetRequestCmd struct {
	Username string `help:"Username" required:""`
	Email    string `help:"Email address" required:""`
}

func (p *PasswordResetRequestCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := (password.ResetRequest{Username: p.Username, Email: p.Email}).Validate(); err != nil {
		return a.fail(err, "")
	}

	if _, err := a.api.RequestPasswordReset(ctx, strings.TrimSpace(p.Username), strings.TrimSpace(p.Email)); err != nil {
		return a.fail(err, "Failed to request reset code")
	}

	a.notifier.Success("If the account exists, a code was sent.")
	return nil
}

type PasswordResetConfirmCmd struct {
	Username string `help:"Username" required:""`
	Code     string `help:"Reset code" required:""`
	New      string `help:"New password" required:""`
	Confirm  string `help:"Repeat the new password" required:""`
}

func (p *PasswordResetConfirmCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := globals.open()
	if err != nil {
		return err
	}

	if err := (password.ResetConfirm{Username: p.Username, Code: p.Code, New: p.New, Confirm: p.Confirm}).Validate(); err != nil {
		return a.fail(err, "")
	}

	if _, err := a.api.ConfirmPasswordReset(ctx, strings.TrimSpace(p.Username), strings.TrimSpace(p.Code), p.New); err != nil {
		return a.fail(err, "Failed to reset password")
	}

	a.notifier.Success("Password updated successfully")
	return nil
}
