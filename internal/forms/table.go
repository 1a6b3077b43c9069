package forms

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/services"
)

// LoadOutcome is the result of fetching the watchlist of UserID.
type LoadOutcome struct {
	UserID  int64
	Entries []models.Entry
	Err     error
}

// DeleteOutcome is the result of deleting one entry.
type DeleteOutcome struct {
	ID  int64
	Err error
}

// RefreshOutcome is the result of the poster refresh for UserID.
type RefreshOutcome struct {
	UserID  int64
	Summary string
	Err     error
}

// TableColumns are the headers of [WatchlistTable.Rows].
var TableColumns = []string{"Cover", "Titel", "Typ", "Genre", "Gesehen", "Bewertung"}

// WatchlistTable lists the current user's entries and edits them in place.
//
// Rows are edited one at a time: [WatchlistTable.StartEdit] copies a row into a draft that
// [WatchlistTable.SaveEdit] sends and [WatchlistTable.CancelEdit] discards. Saves are last write wins.
//
// The table only ever holds the entries of one user. When the session user changes, the rows are dropped
// before anything else is applied, and loads requested for another user are discarded.
type WatchlistTable struct {
	Submission

	owner    int64
	items    []models.Entry
	editMode bool
	editing  int
	draft    models.Entry

	watchlist services.WatchlistService
	session   Session
	logger    *log.Logger
	status    Status
}

func NewWatchlistTable(watchlist services.WatchlistService, session Session, logger *log.Logger) *WatchlistTable {
	if logger == nil {
		logger = log.Default()
	}
	return &WatchlistTable{
		watchlist: watchlist,
		session:   session,
		logger:    logger.WithPrefix("watchlist"),
		editing:   -1,
	}
}

func (t *WatchlistTable) Status() Status { return t.status }

// Items returns a copy of the listed entries.
func (t *WatchlistTable) Items() []models.Entry { return append([]models.Entry(nil), t.items...) }

// SetItems replaces the listed entries with ones owned by the current user and ends any row edit.
func (t *WatchlistTable) SetItems(items []models.Entry) {
	t.owner, _ = t.UserID()
	t.items = append([]models.Entry(nil), items...)
	t.editing = -1
}

// Clear drops the rows, the draft and the status.
func (t *WatchlistTable) Clear() {
	t.owner = 0
	t.items = nil
	t.editMode = false
	t.editing = -1
	t.status = Status{}
}

// Reconcile clears the table when the session user is not the one whose entries it holds.
// It reports whether anything was cleared.
func (t *WatchlistTable) Reconcile() bool {
	id, _ := t.UserID()
	if id == t.owner {
		return false
	}
	t.logger.Debug("session user changed, clearing watchlist", "from", t.owner, "to", id)
	t.Clear()
	t.owner = id
	return true
}

// Owns reports whether entries requested for userID belong to the signed-in user.
func (t *WatchlistTable) Owns(userID int64) bool {
	id, ok := t.UserID()
	return ok && id == userID
}

func (t *WatchlistTable) Len() int { return len(t.items) }

// EmptyMessage is shown instead of rows when there are none.
func (t *WatchlistTable) EmptyMessage() string {
	if len(t.items) == 0 {
		return MsgNoEntries
	}
	return ""
}

// Rows renders each entry as cells matching [TableColumns].
func (t *WatchlistTable) Rows() [][]string {
	rows := make([][]string, 0, len(t.items))
	for _, e := range t.items {
		cover := e.PosterURL
		if cover == "" {
			cover = MsgNoCover
		}
		rows = append(rows, []string{cover, e.Title, string(e.Type), e.Genre, e.WatchedLabel(), e.Stars()})
	}
	return rows
}

func (t *WatchlistTable) EditMode() bool { return t.editMode }

// ToggleEditMode shows or hides the row actions. Leaving edit mode discards an open draft.
func (t *WatchlistTable) ToggleEditMode() {
	t.editMode = !t.editMode
	if !t.editMode {
		t.editing = -1
	}
}

func (t *WatchlistTable) EditLabel() string {
	if t.editMode {
		return "Bearbeitung beenden"
	}
	return "Bearbeiten"
}

// StartEdit opens row i for editing. It enables edit mode if needed.
func (t *WatchlistTable) StartEdit(i int) bool {
	if i < 0 || i >= len(t.items) {
		return false
	}
	t.editMode = true
	t.editing = i
	t.draft = t.items[i]
	return true
}

// Editing returns the index of the row being edited, or -1.
func (t *WatchlistTable) Editing() int { return t.editing }

// Draft returns the editable copy of the open row, or nil.
func (t *WatchlistTable) Draft() *models.Entry {
	if t.editing < 0 {
		return nil
	}
	return &t.draft
}

func (t *WatchlistTable) CancelEdit() { t.editing = -1 }

// ValidateDraft checks the open draft and writes the failure message.
func (t *WatchlistTable) ValidateDraft() bool {
	if t.editing < 0 {
		return false
	}
	return t.validate(t.draft)
}

func (t *WatchlistTable) validate(e models.Entry) bool {
	if t.session.CurrentUser() == nil {
		t.status = errorStatus(MsgNotLoggedIn)
		return false
	}
	if err := e.Validate(); err != nil {
		t.status = entryErrorStatus(err)
		return false
	}
	return true
}

// DraftRequest returns the draft stamped with the current user.
func (t *WatchlistTable) DraftRequest() models.Entry {
	e := t.draft
	e.Title = strings.TrimSpace(e.Title)
	e.Genre = strings.TrimSpace(e.Genre)
	if !e.Watched {
		e.Rating = 0
	}
	if u := t.session.CurrentUser(); u != nil {
		e.UserID = models.Int64(u.ID)
	}
	return e
}

// DeleteConfirmation is the question asked before deleting row i.
func (t *WatchlistTable) DeleteConfirmation(i int) string {
	if i < 0 || i >= len(t.items) {
		return ""
	}
	return fmt.Sprintf("Sind Sie sicher, dass Sie \"%s\" löschen möchten?", t.items[i].Title)
}

// UserID returns the signed-in user's ID.
func (t *WatchlistTable) UserID() (int64, bool) {
	u := t.session.CurrentUser()
	if u == nil {
		return 0, false
	}
	return u.ID, true
}

// SendLoad fetches the entries of userID.
func (t *WatchlistTable) SendLoad(ctx context.Context, userID int64) LoadOutcome {
	entries, err := t.watchlist.List(ctx, userID)
	return LoadOutcome{UserID: userID, Entries: entries, Err: err}
}

// CompleteLoad applies o. Outcomes requested for someone other than the signed-in user are dropped.
func (t *WatchlistTable) CompleteLoad(o LoadOutcome) bool {
	t.Reconcile()
	if !t.Owns(o.UserID) {
		t.logger.Debug("dropping watchlist of another user", "user_id", o.UserID)
		return false
	}
	if o.Err != nil {
		t.logger.Error("could not load watchlist", "error", o.Err)
		t.status = errorStatus(MsgLoadFailed)
		return false
	}
	t.SetItems(o.Entries)
	t.status = Status{}
	return true
}

// SendSave updates e on the backend.
func (t *WatchlistTable) SendSave(ctx context.Context, e models.Entry) SaveOutcome {
	saved, err := t.watchlist.Update(ctx, e)
	return SaveOutcome{Entry: saved, Err: err}
}

// CompleteSave replaces the row with the saved entry and closes the draft.
func (t *WatchlistTable) CompleteSave(o SaveOutcome) bool {
	if o.Err != nil || o.Entry == nil {
		t.logger.Error("could not save entry", "error", o.Err)
		t.status = errorStatus(MsgSaveFailed)
		return false
	}

	for i := range t.items {
		if t.items[i].IDValue() == o.Entry.IDValue() {
			t.items[i] = *o.Entry
		}
	}
	t.editing = -1
	t.status = successStatus(MsgEntryUpdated)
	return true
}

func (t *WatchlistTable) SendDelete(ctx context.Context, id, userID int64) DeleteOutcome {
	return DeleteOutcome{ID: id, Err: t.watchlist.Delete(ctx, id, userID)}
}

// CompleteDelete removes the deleted row.
func (t *WatchlistTable) CompleteDelete(o DeleteOutcome) bool {
	if o.Err != nil {
		t.logger.Error("could not delete entry", "id", o.ID, "error", o.Err)
		t.status = errorStatus(MsgDeleteFailed)
		return false
	}

	kept := t.items[:0]
	for _, e := range t.items {
		if e.IDValue() != o.ID {
			kept = append(kept, e)
		}
	}
	t.items = kept
	t.editing = -1
	t.status = successStatus(MsgEntryDeleted)
	return true
}

func (t *WatchlistTable) SendRefresh(ctx context.Context, userID int64) RefreshOutcome {
	summary, err := t.watchlist.RefreshAllPosters(ctx, userID)
	return RefreshOutcome{UserID: userID, Summary: summary, Err: err}
}

// CompleteRefresh reports the backend's summary. Callers reload the list afterwards.
func (t *WatchlistTable) CompleteRefresh(o RefreshOutcome) bool {
	t.Reconcile()
	if !t.Owns(o.UserID) {
		t.logger.Debug("dropping poster refresh of another user", "user_id", o.UserID)
		return false
	}
	if o.Err != nil {
		t.logger.Error("could not refresh posters", "error", o.Err)
		t.status = errorStatus(MsgRefreshFailed)
		return false
	}
	t.status = infoStatus(o.Summary)
	return true
}

// Reload fetches the list synchronously.
func (t *WatchlistTable) Reload(ctx context.Context) bool {
	userID, ok := t.UserID()
	if !ok {
		t.status = errorStatus(MsgNotLoggedIn)
		return false
	}
	if !t.Start() {
		return false
	}
	defer t.Finish()
	return t.CompleteLoad(t.SendLoad(ctx, userID))
}

// SaveEdit sends the open draft synchronously.
func (t *WatchlistTable) SaveEdit(ctx context.Context) bool {
	if !t.ValidateDraft() || !t.Start() {
		return false
	}
	defer t.Finish()
	return t.CompleteSave(t.SendSave(ctx, t.DraftRequest()))
}

// DeleteAt deletes row i synchronously. Callers ask [WatchlistTable.DeleteConfirmation] first.
func (t *WatchlistTable) DeleteAt(ctx context.Context, i int) bool {
	userID, ok := t.UserID()
	if !ok || i < 0 || i >= len(t.items) || !t.items[i].HasID() {
		return false
	}
	if !t.Start() {
		return false
	}
	defer t.Finish()
	return t.CompleteDelete(t.SendDelete(ctx, t.items[i].IDValue(), userID))
}

// RefreshPosters asks the backend for missing covers and reloads the list.
func (t *WatchlistTable) RefreshPosters(ctx context.Context) bool {
	userID, ok := t.UserID()
	if !ok {
		t.status = errorStatus(MsgNotLoggedIn)
		return false
	}
	if !t.Start() {
		return false
	}
	defer t.Finish()

	refreshed := t.SendRefresh(ctx, userID)
	if refreshed.Err != nil {
		return t.CompleteRefresh(refreshed)
	}
	return t.CompleteRefreshLoad(refreshed, t.SendLoad(ctx, userID))
}

// CompleteRefreshLoad applies a poster refresh and the reload that followed it, keeping the refresh summary as status.
func (t *WatchlistTable) CompleteRefreshLoad(r RefreshOutcome, l LoadOutcome) bool {
	if !t.CompleteRefresh(r) {
		return false
	}
	status := t.status
	if t.CompleteLoad(l) {
		t.status = status
	}
	return true
}
