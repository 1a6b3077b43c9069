package forms

import (
	"context"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/services"
)

// RegisterForm is the controller behind the registration view.
type RegisterForm struct {
	Submission

	FirstName       string
	LastName        string
	Username        string
	Email           string
	Password        string
	ConfirmPassword string

	auth     services.AuthService
	session  Session
	logger   *log.Logger
	status   Status
	redirect string
}

// NewRegisterForm creates an empty form. A successful registration signs the new user in on session.
func NewRegisterForm(auth services.AuthService, session Session, logger *log.Logger) *RegisterForm {
	if logger == nil {
		logger = log.Default()
	}
	return &RegisterForm{auth: auth, session: session, logger: logger.WithPrefix("register")}
}

// Status is the message to render below the form.
func (f *RegisterForm) Status() Status { return f.status }

// Redirect is the path to navigate to after a successful registration, or "".
func (f *RegisterForm) Redirect() string { return f.redirect }

// SubmitLabel is the button text, which changes while a request is in flight.
func (f *RegisterForm) SubmitLabel() string {
	return f.label("Registrieren", "Registrierung läuft...")
}

// Validate checks, in order: every field filled, passwords equal, minimum password length.
func (f *RegisterForm) Validate() bool {
	f.redirect = ""
	switch {
	case blank(f.FirstName, f.LastName, f.Username, f.Email, f.Password, f.ConfirmPassword):
		f.status = errorStatus(MsgFillAllFields)
	case f.Password != f.ConfirmPassword:
		f.status = errorStatus(MsgPasswordMismatch)
	case utf8.RuneCountInString(f.Password) < MinPasswordLength:
		f.status = errorStatus(MsgPasswordTooShort)
	default:
		return true
	}
	return false
}

// Request builds the registration body. The confirmation is never sent.
func (f *RegisterForm) Request() models.RegisterRequest {
	return models.RegisterRequest{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Username:  f.Username,
		Email:     f.Email,
		Password:  f.Password,
	}
}

// Send performs the request. It touches no form state and may run off the UI loop.
func (f *RegisterForm) Send(ctx context.Context, req models.RegisterRequest) AuthOutcome {
	result, err := f.auth.Register(ctx, req)
	return AuthOutcome{Result: result, Err: err}
}

// Complete applies o. On success the new user is signed in, both passwords are cleared
// and Redirect reports the home path.
func (f *RegisterForm) Complete(o AuthOutcome) bool {
	if !applyAuthOutcome(o, &f.status, f.logger) {
		return false
	}

	f.session.SetUser(o.Result.User)
	f.status = successStatus(MsgRegisterSuccess)
	f.Password, f.ConfirmPassword = "", ""
	f.redirect = homePath
	return true
}

// Submit validates, sends and completes in one call.
func (f *RegisterForm) Submit(ctx context.Context) bool {
	if !f.Validate() || !f.Start() {
		return false
	}
	defer f.Finish()
	return f.Complete(f.Send(ctx, f.Request()))
}
