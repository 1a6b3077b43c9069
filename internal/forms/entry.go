package forms

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/services"
)

// SaveOutcome is the result of creating or updating an entry.
type SaveOutcome struct {
	Entry *models.Entry
	Err   error
}

// EntryForm creates a new watchlist entry, or edits one loaded with [EntryForm.Load].
type EntryForm struct {
	Submission

	Title   string
	Type    models.Category
	Genre   string
	Watched bool
	Rating  int

	id        *int64
	posterURL string
	owner     int64

	watchlist services.WatchlistService
	session   Session
	logger    *log.Logger
	status    Status
}

func NewEntryForm(watchlist services.WatchlistService, session Session, logger *log.Logger) *EntryForm {
	if logger == nil {
		logger = log.Default()
	}
	f := &EntryForm{watchlist: watchlist, session: session, logger: logger.WithPrefix("entry")}
	f.owner = f.userID()
	return f
}

func (f *EntryForm) userID() int64 {
	if u := f.session.CurrentUser(); u != nil {
		return u.ID
	}
	return 0
}

// Reconcile discards the draft and the status when the session user is not the one who started it.
// It reports whether anything was discarded.
func (f *EntryForm) Reconcile() bool {
	id := f.userID()
	if id == f.owner {
		return false
	}
	f.logger.Debug("session user changed, discarding draft", "from", f.owner, "to", id)
	f.Reset()
	f.status = Status{}
	f.owner = id
	return true
}

func (f *EntryForm) Status() Status { return f.status }

func (f *EntryForm) SubmitLabel() string { return f.label("Speichern", "Speichern...") }

// Editing reports whether the form updates an existing entry.
func (f *EntryForm) Editing() bool { return f.id != nil }

// Load fills the form from e for editing.
func (f *EntryForm) Load(e models.Entry) {
	f.Title, f.Type, f.Genre, f.Watched, f.Rating = e.Title, e.Type, e.Genre, e.Watched, e.Rating
	f.id, f.posterURL = e.ID, e.PosterURL
	f.status = Status{}
}

// Reset clears every field and leaves the status in place.
func (f *EntryForm) Reset() {
	f.Title, f.Type, f.Genre, f.Watched, f.Rating = "", "", "", false, 0
	f.id, f.posterURL = nil, ""
}

func (f *EntryForm) Validate() bool {
	if f.session.CurrentUser() == nil {
		f.status = errorStatus(MsgNotLoggedIn)
		return false
	}

	if err := f.entry(0).Validate(); err != nil {
		f.status = entryErrorStatus(err)
		return false
	}
	return true
}

func entryErrorStatus(err error) Status {
	switch {
	case errors.Is(err, models.ErrMissingTitle), errors.Is(err, models.ErrInvalidCategory):
		return errorStatus(MsgTitleAndCategory)
	case errors.Is(err, models.ErrRatingRange):
		return errorStatus(MsgRatingRange)
	default:
		return errorStatus(MsgGenericError)
	}
}

// Request builds the entry to send, owned by the current user.
func (f *EntryForm) Request() models.Entry {
	return f.entry(f.userID())
}

func (f *EntryForm) entry(userID int64) models.Entry {
	e := models.Entry{
		ID:        f.id,
		Title:     strings.TrimSpace(f.Title),
		Type:      f.Type,
		Genre:     strings.TrimSpace(f.Genre),
		Watched:   f.Watched,
		Rating:    f.Rating,
		PosterURL: f.posterURL,
	}
	if !e.Watched {
		e.Rating = 0
	}
	if userID != 0 {
		e.UserID = models.Int64(userID)
	}
	return e
}

func (f *EntryForm) Send(ctx context.Context, e models.Entry) SaveOutcome {
	var (
		saved *models.Entry
		err   error
	)
	if e.HasID() {
		saved, err = f.watchlist.Update(ctx, e)
	} else {
		saved, err = f.watchlist.Create(ctx, e)
	}
	return SaveOutcome{Entry: saved, Err: err}
}

// Complete applies o. A created entry clears the form for the next one.
func (f *EntryForm) Complete(o SaveOutcome) bool {
	if o.Err != nil {
		f.logger.Error("could not save entry", "error", o.Err)
		f.status = errorStatus(MsgGenericError)
		return false
	}

	if f.Editing() && o.Entry != nil {
		f.Load(*o.Entry)
	} else {
		f.Reset()
	}
	f.status = successStatus(MsgEntrySaved)
	return true
}

func (f *EntryForm) Submit(ctx context.Context) bool {
	if !f.Validate() || !f.Start() {
		return false
	}
	defer f.Finish()
	return f.Complete(f.Send(ctx, f.Request()))
}
