package forms

import (
	"strings"
	"sync"

	"github.com/desertthunder/watchlist/internal/models"
)

// Messages rendered by the forms.
const (
	MsgFillAllFields    = "Bitte füllen Sie alle Felder aus"
	MsgPasswordMismatch = "Die Passwörter stimmen nicht überein"
	MsgPasswordTooShort = "Das Passwort muss mindestens 6 Zeichen lang sein"
	MsgGenericError     = "Ein Fehler ist aufgetreten. Bitte versuchen Sie es erneut."
	MsgRegisterSuccess  = "Registrierung erfolgreich! Sie werden weitergeleitet..."
	MsgTitleAndCategory = "Bitte füllen Sie mindestens Titel und Kategorie aus."
	MsgRatingRange      = "Die Bewertung muss zwischen 1 und 10 liegen"
	MsgEntrySaved       = "Eintrag erfolgreich gespeichert!"
	MsgProfileUpdated   = "Profil erfolgreich aktualisiert!"
	MsgNotLoggedIn      = "Sie sind nicht angemeldet."
	MsgNoEntries        = "Noch keine Watchlist-Einträge vorhanden"
	MsgNoCover          = "Kein Cover"
	MsgRefreshConfirm   = "Möchten Sie alle fehlenden Cover aktualisieren? Dies kann etwas dauern."
	MsgLoadFailed       = "Fehler beim Laden der Watchlist"
	MsgSaveFailed       = "Fehler beim Speichern des Eintrags"
	MsgDeleteFailed     = "Fehler beim Löschen des Eintrags"
	MsgRefreshFailed    = "Fehler beim Aktualisieren der Cover"
	MsgEntryDeleted     = "Eintrag gelöscht"
	MsgEntryUpdated     = "Eintrag aktualisiert"
)

// MinPasswordLength is the shortest password accepted at registration, counted in characters.
const MinPasswordLength = 6

// homePath is where successful logins and registrations redirect.
const homePath = "/"

// StatusKind distinguishes the message styles of a [Status].
type StatusKind int

const (
	StatusNone StatusKind = iota
	StatusError
	StatusSuccess
	StatusInfo
)

// Status is the single message region of a form.
type Status struct {
	Kind StatusKind
	Text string
}

func (s Status) IsError() bool   { return s.Kind == StatusError }
func (s Status) IsSuccess() bool { return s.Kind == StatusSuccess }
func (s Status) Empty() bool     { return s.Kind == StatusNone }
func (s Status) String() string  { return s.Text }

func errorStatus(text string) Status   { return Status{Kind: StatusError, Text: text} }
func successStatus(text string) Status { return Status{Kind: StatusSuccess, Text: text} }
func infoStatus(text string) Status    { return Status{Kind: StatusInfo, Text: text} }

// Submission tracks whether a round trip is outstanding. The zero value is idle.
//
// Callers pair Start with a deferred Finish:
//
//	if !f.Start() {
//		return
//	}
//	defer f.Finish()
type Submission struct {
	mu     sync.Mutex
	active bool
}

// Start marks a submission as outstanding. It returns false if one already is.
func (s *Submission) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return false
	}
	s.active = true
	return true
}

// Finish re-enables submission.
func (s *Submission) Finish() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// Submitting reports whether a round trip is outstanding.
func (s *Submission) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Submission) label(idle, busy string) string {
	if s.Submitting() {
		return busy
	}
	return idle
}

// Session is the part of the session store the forms write to.
type Session interface {
	CurrentUser() *models.User
	SetUser(user *models.User)
	UpdateUser(user models.User)
	Logout()
}

func blank(values ...string) bool {
	for _, v := range values {
		if isBlank(v) {
			return true
		}
	}
	return false
}

func isBlank(v string) bool { return strings.TrimSpace(v) == "" }
