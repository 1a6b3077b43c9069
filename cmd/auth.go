package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/watchlist/internal/forms"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/router"
	"github.com/desertthunder/watchlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in and stores the returned user in the local session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGuest(router.LoginRoute); err != nil {
		return err
	}

	form := forms.NewLoginForm(r.auth, r.session, r.logger)
	form.Username = cmd.String("username")
	form.Password = cmd.String("password")

	if !form.Validate() {
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, form.Status())
	}

	r.logger.Info("signing in", "username", form.Username)
	if !form.Submit(ctx) {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, form.Status())
	}

	u := r.session.CurrentUser()
	return r.writePlain("✓ Angemeldet als %s (%s)\n", u.Username, u.FullName())
}

// AuthRegister creates an account and signs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGuest(router.RegisterRoute); err != nil {
		return err
	}

	form := forms.NewRegisterForm(r.auth, r.session, r.logger)
	form.FirstName = cmd.String("first-name")
	form.LastName = cmd.String("last-name")
	form.Username = cmd.String("username")
	form.Email = cmd.String("email")
	form.Password = cmd.String("password")
	form.ConfirmPassword = cmd.String("confirm-password")
	if !cmd.IsSet("confirm-password") {
		form.ConfirmPassword = form.Password
	}

	if !form.Validate() {
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, form.Status())
	}
	if !form.Submit(ctx) {
		return fmt.Errorf("%w: %s", shared.ErrAuthFailed, form.Status())
	}

	return r.writePlain("✓ %s\n", form.Status())
}

// AuthLogout clears the local session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}
	u := r.session.CurrentUser()
	if u == nil {
		return r.writePlain("Nicht angemeldet\n")
	}

	r.session.Logout()
	r.logger.Info("signed out", "username", u.Username)
	return r.writePlain("✓ %s abgemeldet\n", u.Username)
}

// AuthStatus prints the user held in the local session without contacting the backend.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}
	u := r.session.CurrentUser()

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"authenticated": u != nil, "user": u}, true)
	}
	if u == nil {
		return r.writePlain("Nicht angemeldet\n")
	}
	r.writeUser(u)
	return nil
}

// AccountShow reloads the signed-in user from the backend and refreshes the local session with it.
func (r *Runner) AccountShow(ctx context.Context, cmd *cli.Command) error {
	current, err := r.requireAuth()
	if err != nil {
		return err
	}

	u, err := r.auth.FetchUser(ctx, current.ID)
	if err != nil {
		return err
	}
	r.session.UpdateUser(*u)

	if cmd.Bool("json") {
		return r.writeJSON(u, true)
	}
	r.writeUser(u)
	return nil
}

// AccountUpdate changes the profile. Flags that are not set keep their current value.
func (r *Runner) AccountUpdate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireAuth(); err != nil {
		return err
	}
	if !cmd.IsSet("first-name") && !cmd.IsSet("last-name") && !cmd.IsSet("email") {
		return fmt.Errorf("%w: nothing to update, set --first-name, --last-name or --email", shared.ErrMissingArgument)
	}

	form := forms.NewAccountForm(r.auth, r.session, r.logger)
	form.Load()
	if cmd.IsSet("first-name") {
		form.FirstName = cmd.String("first-name")
	}
	if cmd.IsSet("last-name") {
		form.LastName = cmd.String("last-name")
	}
	if cmd.IsSet("email") {
		form.Email = cmd.String("email")
	}

	if !form.Validate() {
		return fmt.Errorf("%w: %s", shared.ErrInvalidInput, form.Status())
	}
	if !form.Submit(ctx) {
		return fmt.Errorf("%w: %s", shared.ErrUpdateUser, form.Status())
	}

	r.writePlain("✓ %s\n", form.Status())
	r.writeUser(r.session.CurrentUser())
	return nil
}

func (r *Runner) writeUser(u *models.User) {
	r.writePlainHeader(u.FullName())
	r.writePlain("ID:        %d\n", u.ID)
	r.writePlain("Username:  %s\n", u.Username)
	r.writePlain("E-Mail:    %s\n", u.Email)
	if !u.CreatedAt.IsZero() {
		r.writePlain("Seit:      %s\n", u.CreatedAt.Format("02.01.2006"))
	}
	if u.LastLogin != nil && !u.LastLogin.IsZero() {
		r.writePlain("Login:     %s\n", u.LastLogin.Local().Format("02.01.2006 15:04"))
	}
}
