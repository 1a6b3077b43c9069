package forms

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/services"
)

// UpdateOutcome is the result of a profile update.
type UpdateOutcome struct {
	User *models.User
	Err  error
}

// AccountForm edits the profile of the signed-in user. The username is shown but never sent.
type AccountForm struct {
	Submission

	FirstName string
	LastName  string
	Email     string

	auth    services.AuthService
	session Session
	logger  *log.Logger
	status  Status
}

func NewAccountForm(auth services.AuthService, session Session, logger *log.Logger) *AccountForm {
	if logger == nil {
		logger = log.Default()
	}
	f := &AccountForm{auth: auth, session: session, logger: logger.WithPrefix("account")}
	f.Load()
	return f
}

func (f *AccountForm) Status() Status { return f.status }

func (f *AccountForm) SubmitLabel() string { return f.label("Speichern", "Speichern...") }

// User returns the identity the form edits, or nil when signed out.
func (f *AccountForm) User() *models.User { return f.session.CurrentUser() }

// Load copies the current profile into the form fields.
func (f *AccountForm) Load() {
	if u := f.session.CurrentUser(); u != nil {
		f.FirstName, f.LastName, f.Email = u.FirstName, u.LastName, u.Email
	}
}

func (f *AccountForm) Validate() bool {
	switch {
	case f.session.CurrentUser() == nil:
		f.status = errorStatus(MsgNotLoggedIn)
	case blank(f.FirstName, f.LastName, f.Email):
		f.status = errorStatus(MsgFillAllFields)
	default:
		return true
	}
	return false
}

func (f *AccountForm) Request() models.UpdateUserRequest {
	return models.UpdateUserRequest{FirstName: f.FirstName, LastName: f.LastName, Email: f.Email}
}

// Send updates the profile of the user with id.
func (f *AccountForm) Send(ctx context.Context, id int64, req models.UpdateUserRequest) UpdateOutcome {
	user, err := f.auth.UpdateUser(ctx, id, req)
	return UpdateOutcome{User: user, Err: err}
}

// Complete replaces the whole session identity with the server's record on success.
func (f *AccountForm) Complete(o UpdateOutcome) bool {
	var updateErr *services.UpdateError
	switch {
	case errors.As(o.Err, &updateErr):
		f.logger.Warn("profile update rejected", "error", o.Err)
		f.status = errorStatus(updateErr.Message)
		return false
	case o.Err != nil, o.User == nil:
		f.logger.Error("profile update failed", "error", o.Err)
		f.status = errorStatus(MsgGenericError)
		return false
	}

	f.session.UpdateUser(*o.User)
	f.Load()
	f.status = successStatus(MsgProfileUpdated)
	return true
}

func (f *AccountForm) Submit(ctx context.Context) bool {
	if !f.Validate() || !f.Start() {
		return false
	}
	defer f.Finish()
	return f.Complete(f.Send(ctx, f.User().ID, f.Request()))
}

// Logout clears the session. Views bound to a router are redirected by its session subscription.
func (f *AccountForm) Logout() {
	f.status = Status{}
	f.FirstName, f.LastName, f.Email = "", "", ""
	f.session.Logout()
}
