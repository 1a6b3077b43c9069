package forms

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/services"
)

// AuthOutcome is the result of a login or registration round trip.
type AuthOutcome struct {
	Result *models.AuthResult
	Err    error
}

// LoginForm is the controller behind the login view.
type LoginForm struct {
	Submission

	Username string
	Password string

	auth     services.AuthService
	session  Session
	logger   *log.Logger
	status   Status
	redirect string
}

// NewLoginForm creates an empty form. A successful login stores the user on session.
func NewLoginForm(auth services.AuthService, session Session, logger *log.Logger) *LoginForm {
	if logger == nil {
		logger = log.Default()
	}
	return &LoginForm{auth: auth, session: session, logger: logger.WithPrefix("login")}
}

// Status is the message to render below the form.
func (f *LoginForm) Status() Status { return f.status }

// Redirect is the path to navigate to after a successful login, or "".
func (f *LoginForm) Redirect() string { return f.redirect }

// SubmitLabel is the button text, which changes while a request is in flight.
func (f *LoginForm) SubmitLabel() string { return f.label("Anmelden", "Anmelden...") }

// Validate requires both fields.
func (f *LoginForm) Validate() bool {
	f.redirect = ""
	if blank(f.Username, f.Password) {
		f.status = errorStatus(MsgFillAllFields)
		return false
	}
	return true
}

// Request builds the login body from the fields as typed.
func (f *LoginForm) Request() models.LoginRequest {
	return models.LoginRequest{Username: f.Username, Password: f.Password}
}

// Send performs the request. It touches no form state and may run off the UI loop.
func (f *LoginForm) Send(ctx context.Context, req models.LoginRequest) AuthOutcome {
	result, err := f.auth.Login(ctx, req)
	return AuthOutcome{Result: result, Err: err}
}

// Complete applies o. On success the session holds the returned user and Redirect reports the home path.
func (f *LoginForm) Complete(o AuthOutcome) bool {
	if !applyAuthOutcome(o, &f.status, f.logger) {
		return false
	}

	f.session.SetUser(o.Result.User)
	f.status = Status{}
	f.Password = ""
	f.redirect = homePath
	return true
}

// Submit validates, sends and completes in one call.
func (f *LoginForm) Submit(ctx context.Context) bool {
	if !f.Validate() || !f.Start() {
		return false
	}
	defer f.Finish()
	return f.Complete(f.Send(ctx, f.Request()))
}

// applyAuthOutcome writes the failure message for o into status and reports whether o carries a usable user.
func applyAuthOutcome(o AuthOutcome, status *Status, logger *log.Logger) bool {
	switch {
	case o.Err != nil:
		logger.Error("request failed", "error", o.Err)
		*status = errorStatus(MsgGenericError)
		return false
	case o.Result == nil:
		*status = errorStatus(MsgGenericError)
		return false
	case !o.Result.Success:
		if o.Result.Message == "" {
			*status = errorStatus(MsgGenericError)
		} else {
			*status = errorStatus(o.Result.Message)
		}
		return false
	case o.Result.User == nil:
		logger.Warn("successful response without user")
		*status = errorStatus(MsgGenericError)
		return false
	default:
		return true
	}
}
