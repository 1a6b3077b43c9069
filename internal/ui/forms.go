package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/watchlist/internal/forms"
	"github.com/desertthunder/watchlist/internal/models"
)

// loginView binds [forms.LoginForm] to text inputs.
type loginView struct {
	form   *forms.LoginForm
	fields *fieldSet
}

func newLoginView(form *forms.LoginForm) *loginView {
	return &loginView{form: form, fields: newFieldSet("Benutzername", "Passwort").secret(1)}
}

func (v *loginView) enter() tea.Cmd { return v.fields.focusAt(0) }

func (v *loginView) handleKey(ctx context.Context, keys keyMap, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.next):
		return v.fields.move(1)
	case key.Matches(msg, keys.prev):
		return v.fields.move(-1)
	case key.Matches(msg, keys.submit):
		return v.submit(ctx)
	}
	return v.fields.update(msg)
}

func (v *loginView) submit(ctx context.Context) tea.Cmd {
	v.form.Username, v.form.Password = v.fields.value(0), v.fields.value(1)
	if !v.form.Validate() || !v.form.Start() {
		return nil
	}
	req := v.form.Request()
	return func() tea.Msg { return loginCompletedMsg(v.form.Send(ctx, req)) }
}

func (v *loginView) complete(o forms.AuthOutcome) bool {
	defer v.form.Finish()
	ok := v.form.Complete(o)
	if ok {
		v.fields.reset()
	}
	return ok
}

func (v *loginView) view(keys keyMap) string {
	return formLayout(v.fields, v.form.SubmitLabel(), v.form.Status(),
		"Noch kein Konto? "+styles.active.Render("Registrieren Sie sich hier")+styles.help.Render("("+keys.link.Help().Key+")"))
}

// registerView binds [forms.RegisterForm] to text inputs.
type registerView struct {
	form   *forms.RegisterForm
	fields *fieldSet
}

func newRegisterView(form *forms.RegisterForm) *registerView {
	fields := newFieldSet("Vorname", "Nachname", "Benutzername", "E-Mail", "Passwort", "Bestätigen").
		secret(4).
		secret(5)
	return &registerView{form: form, fields: fields}
}

func (v *registerView) enter() tea.Cmd { return v.fields.focusAt(0) }

func (v *registerView) handleKey(ctx context.Context, keys keyMap, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.next):
		return v.fields.move(1)
	case key.Matches(msg, keys.prev):
		return v.fields.move(-1)
	case key.Matches(msg, keys.submit):
		return v.submit(ctx)
	}
	return v.fields.update(msg)
}

func (v *registerView) submit(ctx context.Context) tea.Cmd {
	f := v.form
	f.FirstName, f.LastName, f.Username = v.fields.value(0), v.fields.value(1), v.fields.value(2)
	f.Email, f.Password, f.ConfirmPassword = v.fields.value(3), v.fields.value(4), v.fields.value(5)
	if !f.Validate() || !f.Start() {
		return nil
	}
	req := f.Request()
	return func() tea.Msg { return registerCompletedMsg(f.Send(ctx, req)) }
}

func (v *registerView) complete(o forms.AuthOutcome) bool {
	defer v.form.Finish()
	ok := v.form.Complete(o)
	if ok {
		v.fields.reset()
	}
	return ok
}

func (v *registerView) view(keys keyMap) string {
	return formLayout(v.fields, v.form.SubmitLabel(), v.form.Status(),
		"Bereits registriert? "+styles.active.Render("Hier anmelden")+styles.help.Render("("+keys.link.Help().Key+")"))
}

// entryView binds [forms.EntryForm] to text inputs for creating entries.
type entryView struct {
	form   *forms.EntryForm
	fields *fieldSet
}

func newEntryView(form *forms.EntryForm) *entryView {
	return &entryView{form: form, fields: newEntryFields()}
}

// enter discards a draft typed by a previous user.
func (v *entryView) enter() tea.Cmd {
	if v.form.Reconcile() {
		v.fields.reset()
	}
	return v.fields.focusAt(0)
}

func (v *entryView) clear() {
	v.form.Reset()
	v.form.Reconcile()
	v.fields.reset()
}

func (v *entryView) handleKey(ctx context.Context, keys keyMap, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.next):
		return v.fields.move(1)
	case key.Matches(msg, keys.prev):
		return v.fields.move(-1)
	case key.Matches(msg, keys.submit):
		return v.submit(ctx)
	}
	return v.fields.update(msg)
}

func (v *entryView) submit(ctx context.Context) tea.Cmd {
	var e models.Entry
	readEntryFields(v.fields, &e)
	v.form.Title, v.form.Type, v.form.Genre, v.form.Watched, v.form.Rating = e.Title, e.Type, e.Genre, e.Watched, e.Rating
	if !v.form.Validate() || !v.form.Start() {
		return nil
	}
	req := v.form.Request()
	return func() tea.Msg { return entrySavedMsg(v.form.Send(ctx, req)) }
}

func (v *entryView) complete(o forms.SaveOutcome) bool {
	defer v.form.Finish()
	ok := v.form.Complete(o)
	if ok {
		v.fields.reset()
		v.fields.focusAt(0)
	}
	return ok
}

func (v *entryView) view(keys keyMap) string {
	return formLayout(v.fields, v.form.SubmitLabel(), v.form.Status(), "")
}

// accountView binds [forms.AccountForm] to text inputs.
type accountView struct {
	form   *forms.AccountForm
	fields *fieldSet
}

func newAccountView(form *forms.AccountForm) *accountView {
	return &accountView{form: form, fields: newFieldSet("Vorname", "Nachname", "E-Mail")}
}

// enter loads the signed-in profile into the inputs.
func (v *accountView) enter() tea.Cmd {
	v.form.Load()
	v.fill()
	return v.fields.focusAt(0)
}

func (v *accountView) fill() {
	v.fields.setValue(0, v.form.FirstName)
	v.fields.setValue(1, v.form.LastName)
	v.fields.setValue(2, v.form.Email)
}

func (v *accountView) handleKey(ctx context.Context, keys keyMap, msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.next):
		return v.fields.move(1)
	case key.Matches(msg, keys.prev):
		return v.fields.move(-1)
	case key.Matches(msg, keys.submit):
		return v.submit(ctx)
	}
	return v.fields.update(msg)
}

func (v *accountView) submit(ctx context.Context) tea.Cmd {
	v.form.FirstName, v.form.LastName, v.form.Email = v.fields.value(0), v.fields.value(1), v.fields.value(2)
	if !v.form.Validate() || !v.form.Start() {
		return nil
	}
	id, req := v.form.User().ID, v.form.Request()
	return func() tea.Msg { return accountUpdatedMsg(v.form.Send(ctx, id, req)) }
}

func (v *accountView) complete(o forms.UpdateOutcome) bool {
	defer v.form.Finish()
	ok := v.form.Complete(o)
	if ok {
		v.fill()
	}
	return ok
}

func (v *accountView) logout() {
	v.form.Logout()
	v.fields.reset()
}

func (v *accountView) view(keys keyMap) string {
	var info string
	if u := v.form.User(); u != nil {
		info = styles.help.Render("Angemeldet als " + u.Username + ", Mitglied seit " + u.CreatedAt.Format("02.01.2006"))
	}
	return formLayout(v.fields, v.form.SubmitLabel(), v.form.Status(),
		info+"\n"+styles.help.Render("Abmelden ("+keys.logout.Help().Key+")"))
}

func formLayout(fields *fieldSet, label string, status forms.Status, footer string) string {
	parts := []string{fields.view(), "", styles.button.Render(label)}
	if s := styles.status(status); s != "" {
		parts = append(parts, s)
	}
	if footer != "" {
		parts = append(parts, "", footer)
	}
	return strings.Join(parts, "\n")
}
