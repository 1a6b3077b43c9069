package forms

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/services"
	"github.com/desertthunder/watchlist/internal/session"
	"github.com/desertthunder/watchlist/internal/shared"
	"github.com/desertthunder/watchlist/internal/storage"
	tu "github.com/desertthunder/watchlist/internal/testing"
)

// stubAuth records calls and answers from its fields.
type stubAuth struct {
	mu       sync.Mutex
	calls    int
	result   *models.AuthResult
	user     *models.User
	err      error
	block    chan struct{}
	panicMsg string
}

func (s *stubAuth) answer() (*models.AuthResult, error) {
	s.mu.Lock()
	s.calls++
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.result, s.err
}

func (s *stubAuth) Login(context.Context, models.LoginRequest) (*models.AuthResult, error) {
	return s.answer()
}

func (s *stubAuth) Register(context.Context, models.RegisterRequest) (*models.AuthResult, error) {
	return s.answer()
}

func (s *stubAuth) FetchUser(context.Context, int64) (*models.User, error) {
	return s.user, s.err
}

func (s *stubAuth) UpdateUser(context.Context, int64, models.UpdateUserRequest) (*models.User, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.user, s.err
}

func (s *stubAuth) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func quietLogger() *log.Logger { return shared.NewLogger(io.Discard) }

func newSession(t *testing.T, user *models.User) *session.Store {
	t.Helper()
	s := session.New(storage.NewMemoryStorage(), quietLogger())
	if user != nil {
		s.SetUser(user)
	}
	return s
}

func backendClients(t *testing.T) (*tu.StubBackend, *services.AuthClient, *services.WatchlistClient) {
	t.Helper()
	backend := tu.NewStubBackend(t)
	api := services.NewAPIService(backend.URL, nil, services.WithLogger(quietLogger()))
	return backend, services.NewAuthClient(api, quietLogger()), services.NewWatchlistClient(api, quietLogger())
}

func offlineClients() (*services.AuthClient, *services.WatchlistClient) {
	api := services.NewAPIService("http://example.com", tu.FailingClient(), services.WithLogger(quietLogger()))
	return services.NewAuthClient(api, quietLogger()), services.NewWatchlistClient(api, quietLogger())
}

func TestSubmission(t *testing.T) {
	t.Run("Start Is Exclusive", func(t *testing.T) {
		var s Submission
		if s.Submitting() {
			t.Fatal("expected zero value to be idle")
		}
		if !s.Start() {
			t.Fatal("expected first Start to succeed")
		}
		if s.Start() {
			t.Error("expected second Start to fail while submitting")
		}
		s.Finish()
		if s.Submitting() {
			t.Error("expected Finish to re-enable")
		}
		if !s.Start() {
			t.Error("expected Start after Finish to succeed")
		}
	})

	t.Run("Restored After Panic", func(t *testing.T) {
		auth := &stubAuth{panicMsg: "boom"}
		f := NewLoginForm(auth, newSession(t, nil), quietLogger())
		f.Username, f.Password = "testuser", "testpassword"

		func() {
			defer func() {
				if recover() == nil {
					t.Error("expected panic to propagate")
				}
			}()
			f.Submit(context.Background())
		}()

		if f.Submitting() {
			t.Error("expected submission state to be restored after panic")
		}
		if f.SubmitLabel() != "Anmelden" {
			t.Errorf("expected idle label, got %q", f.SubmitLabel())
		}
	})
}

func TestLoginForm(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty Fields", func(t *testing.T) {
		tests := []struct{ username, password string }{
			{"", ""},
			{"testuser", ""},
			{"", "testpassword"},
			{"   ", "testpassword"},
		}
		for _, tt := range tests {
			auth := &stubAuth{}
			f := NewLoginForm(auth, newSession(t, nil), quietLogger())
			f.Username, f.Password = tt.username, tt.password

			if f.Submit(ctx) {
				t.Errorf("%+v: expected failure", tt)
			}
			if f.Status().Text != MsgFillAllFields || !f.Status().IsError() {
				t.Errorf("%+v: expected %q, got %+v", tt, MsgFillAllFields, f.Status())
			}
			if auth.Calls() != 0 {
				t.Errorf("%+v: expected no network call", tt)
			}
		}
	})

	t.Run("Successful Login", func(t *testing.T) {
		_, auth, _ := backendClients(t)
		store := newSession(t, nil)
		f := NewLoginForm(auth, store, quietLogger())
		f.Username, f.Password = tu.TestUsername, tu.TestPassword

		if !f.Submit(ctx) {
			t.Fatalf("expected success, got %+v", f.Status())
		}
		if !store.IsAuthenticated() {
			t.Fatal("expected session to be authenticated")
		}
		if store.CurrentUser().Username != tu.TestUsername {
			t.Errorf("expected session user %s, got %s", tu.TestUsername, store.CurrentUser().Username)
		}
		if f.Redirect() != "/" {
			t.Errorf("expected redirect to /, got %q", f.Redirect())
		}
		if !f.Status().Empty() {
			t.Errorf("expected cleared status, got %+v", f.Status())
		}
		if f.Password != "" {
			t.Error("expected password field to be cleared")
		}
	})

	t.Run("Invalid Credentials Show Server Message", func(t *testing.T) {
		_, auth, _ := backendClients(t)
		store := newSession(t, nil)
		f := NewLoginForm(auth, store, quietLogger())
		f.Username, f.Password = "wronguser", "wrongpassword"

		if f.Submit(ctx) {
			t.Fatal("expected failure")
		}
		if f.Status().Text != "Ungültige Anmeldedaten!" {
			t.Errorf("expected server message verbatim, got %q", f.Status().Text)
		}
		if store.IsAuthenticated() {
			t.Error("expected session to stay unauthenticated")
		}
		if f.Redirect() != "" {
			t.Errorf("expected no redirect, got %q", f.Redirect())
		}
	})

	t.Run("Network Failure Shows Generic Message", func(t *testing.T) {
		auth, _ := offlineClients()
		store := newSession(t, nil)
		f := NewLoginForm(auth, store, quietLogger())
		f.Username, f.Password = tu.TestUsername, tu.TestPassword

		if f.Submit(ctx) {
			t.Fatal("expected failure")
		}
		if f.Status().Text != MsgGenericError {
			t.Errorf("expected generic message, got %q", f.Status().Text)
		}
		if store.IsAuthenticated() {
			t.Error("expected session to stay unauthenticated")
		}
		if f.Submitting() {
			t.Error("expected submit to be re-enabled")
		}
	})

	t.Run("Rejection Without Message", func(t *testing.T) {
		auth := &stubAuth{result: &models.AuthResult{Success: false}}
		f := NewLoginForm(auth, newSession(t, nil), quietLogger())
		f.Username, f.Password = "a", "b"

		f.Submit(ctx)
		if f.Status().Text != MsgGenericError {
			t.Errorf("expected generic message, got %q", f.Status().Text)
		}
	})

	t.Run("Success Without User", func(t *testing.T) {
		auth := &stubAuth{result: &models.AuthResult{Success: true}}
		store := newSession(t, nil)
		f := NewLoginForm(auth, store, quietLogger())
		f.Username, f.Password = "a", "b"

		if f.Submit(ctx) {
			t.Error("expected failure without a user")
		}
		if store.IsAuthenticated() {
			t.Error("expected session to stay unauthenticated")
		}
	})

	t.Run("Loading State", func(t *testing.T) {
		auth := &stubAuth{
			block:  make(chan struct{}),
			result: &models.AuthResult{Success: true, User: &models.User{ID: 1, Username: "testuser"}},
		}
		f := NewLoginForm(auth, newSession(t, nil), quietLogger())
		f.Username, f.Password = tu.TestUsername, tu.TestPassword

		if f.SubmitLabel() != "Anmelden" {
			t.Fatalf("expected idle label, got %q", f.SubmitLabel())
		}

		done := make(chan bool)
		go func() { done <- f.Submit(ctx) }()

		deadline := time.After(2 * time.Second)
		for auth.Calls() == 0 {
			select {
			case <-deadline:
				t.Fatal("request never started")
			default:
				time.Sleep(time.Millisecond)
			}
		}

		if f.SubmitLabel() != "Anmelden..." {
			t.Errorf("expected loading label, got %q", f.SubmitLabel())
		}
		if f.Start() {
			t.Error("expected a second submission to be refused")
		}

		close(auth.block)
		if !<-done {
			t.Error("expected success")
		}
		if f.SubmitLabel() != "Anmelden" {
			t.Errorf("expected idle label after completion, got %q", f.SubmitLabel())
		}
	})

	t.Run("New Outcome Overwrites Message", func(t *testing.T) {
		_, auth, _ := backendClients(t)
		f := NewLoginForm(auth, newSession(t, nil), quietLogger())

		f.Submit(ctx)
		if f.Status().Text != MsgFillAllFields {
			t.Fatalf("expected fill message, got %q", f.Status().Text)
		}

		f.Username, f.Password = "wrong", "wrong"
		f.Submit(ctx)
		if f.Status().Text != "Ungültige Anmeldedaten!" {
			t.Errorf("expected message to be replaced, got %q", f.Status().Text)
		}
	})
}

func TestRegisterForm(t *testing.T) {
	ctx := context.Background()

	fill := func(f *RegisterForm, password, confirm string) {
		f.FirstName, f.LastName = "Test", "User"
		f.Username, f.Email = "newuser", "new@example.com"
		f.Password, f.ConfirmPassword = password, confirm
	}

	t.Run("Local Validation", func(t *testing.T) {
		tests := []struct {
			name     string
			password string
			confirm  string
			empty    bool
			want     string
		}{
			{"Empty Fields", "", "", true, MsgFillAllFields},
			{"Mismatch", "password123", "different", false, MsgPasswordMismatch},
			{"Too Short", "12345", "12345", false, MsgPasswordTooShort},
			{"Short Multibyte", "äöüß", "äöüß", false, MsgPasswordTooShort},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				auth := &stubAuth{}
				f := NewRegisterForm(auth, newSession(t, nil), quietLogger())
				if !tt.empty {
					fill(f, tt.password, tt.confirm)
				}

				if f.Submit(ctx) {
					t.Fatal("expected failure")
				}
				if f.Status().Text != tt.want {
					t.Errorf("expected %q, got %q", tt.want, f.Status().Text)
				}
				if auth.Calls() != 0 {
					t.Error("expected no network call")
				}
			})
		}
	})

	t.Run("Request Omits Confirmation", func(t *testing.T) {
		f := NewRegisterForm(&stubAuth{}, newSession(t, nil), quietLogger())
		fill(f, "password123", "password123")

		want := models.RegisterRequest{
			FirstName: "Test", LastName: "User", Username: "newuser", Email: "new@example.com", Password: "password123",
		}
		if got := f.Request(); got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("Successful Registration", func(t *testing.T) {
		_, auth, _ := backendClients(t)
		store := newSession(t, nil)
		f := NewRegisterForm(auth, store, quietLogger())
		fill(f, "password123", "password123")

		if !f.Submit(ctx) {
			t.Fatalf("expected success, got %+v", f.Status())
		}
		if f.Status().Text != MsgRegisterSuccess || !f.Status().IsSuccess() {
			t.Errorf("expected success message, got %+v", f.Status())
		}
		if u := store.CurrentUser(); u == nil || u.Username != "newuser" {
			t.Errorf("expected session user newuser, got %+v", u)
		}
		if f.Redirect() != "/" {
			t.Errorf("expected redirect to /, got %q", f.Redirect())
		}
	})

	t.Run("Duplicate Username", func(t *testing.T) {
		_, auth, _ := backendClients(t)
		store := newSession(t, nil)
		f := NewRegisterForm(auth, store, quietLogger())
		fill(f, "password123", "password123")
		f.Username = tu.TestUsername

		if f.Submit(ctx) {
			t.Fatal("expected failure")
		}
		if f.Status().Text != "Username bereits vergeben!" {
			t.Errorf("expected server message, got %q", f.Status().Text)
		}
		if store.IsAuthenticated() {
			t.Error("expected session to stay unauthenticated")
		}
	})

	t.Run("Network Failure", func(t *testing.T) {
		auth, _ := offlineClients()
		f := NewRegisterForm(auth, newSession(t, nil), quietLogger())
		fill(f, "password123", "password123")

		f.Submit(ctx)
		if f.Status().Text != MsgGenericError {
			t.Errorf("expected generic message, got %q", f.Status().Text)
		}
	})

	t.Run("Loading Label", func(t *testing.T) {
		f := NewRegisterForm(&stubAuth{}, newSession(t, nil), quietLogger())
		if f.SubmitLabel() != "Registrieren" {
			t.Errorf("expected idle label, got %q", f.SubmitLabel())
		}
		f.Start()
		if f.SubmitLabel() != "Registrierung läuft..." {
			t.Errorf("expected loading label, got %q", f.SubmitLabel())
		}
		f.Finish()
	})
}

func TestEntryForm(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: 1, Username: tu.TestUsername}

	t.Run("Validation", func(t *testing.T) {
		tests := []struct {
			name  string
			setup func(f *EntryForm)
			want  string
		}{
			{"Empty Title", func(f *EntryForm) { f.Type = models.CategoryFilm }, MsgTitleAndCategory},
			{"Empty Type", func(f *EntryForm) { f.Title = "Test Movie" }, MsgTitleAndCategory},
			{"Unknown Type", func(f *EntryForm) { f.Title, f.Type = "Test Movie", "Hörspiel" }, MsgTitleAndCategory},
			{"Watched Without Rating", func(f *EntryForm) {
				f.Title, f.Type, f.Watched = "Test Movie", models.CategoryFilm, true
			}, MsgRatingRange},
			{"Rating Too High", func(f *EntryForm) {
				f.Title, f.Type, f.Watched, f.Rating = "Test Movie", models.CategoryFilm, true, 11
			}, MsgRatingRange},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := NewEntryForm(nil, newSession(t, user), quietLogger())
				tt.setup(f)
				if f.Validate() {
					t.Fatal("expected validation failure")
				}
				if f.Status().Text != tt.want {
					t.Errorf("expected %q, got %q", tt.want, f.Status().Text)
				}
			})
		}
	})

	t.Run("Signed Out", func(t *testing.T) {
		f := NewEntryForm(nil, newSession(t, nil), quietLogger())
		f.Title, f.Type = "Test Movie", models.CategoryFilm
		if f.Validate() {
			t.Fatal("expected failure without a session")
		}
		if f.Status().Text != MsgNotLoggedIn {
			t.Errorf("expected %q, got %q", MsgNotLoggedIn, f.Status().Text)
		}
	})

	t.Run("Draft Belongs To One User", func(t *testing.T) {
		s := newSession(t, user)
		f := NewEntryForm(nil, s, quietLogger())
		f.Title, f.Type, f.Genre = "Secret Film", models.CategoryFilm, "Drama"
		f.Validate()

		if f.Reconcile() || f.Title != "Secret Film" {
			t.Fatal("expected the draft of the signed-in user to be kept")
		}

		s.Logout()
		s.SetUser(&models.User{ID: 2, Username: "bob"})
		if !f.Reconcile() {
			t.Fatal("expected the draft to be discarded")
		}
		if f.Title != "" || f.Type != "" || f.Genre != "" || !f.Status().Empty() {
			t.Errorf("expected an empty form, got %+v", f)
		}
		if req := f.Request(); req.UserID == nil || *req.UserID != 2 {
			t.Errorf("expected requests for bob, got %+v", req.UserID)
		}
	})

	t.Run("Unwatched Rating Is Dropped", func(t *testing.T) {
		f := NewEntryForm(nil, newSession(t, user), quietLogger())
		f.Title, f.Type, f.Rating = "Test Movie", models.CategoryFilm, 7

		if !f.Validate() {
			t.Fatalf("expected valid form, got %+v", f.Status())
		}
		req := f.Request()
		if req.Rating != 0 {
			t.Errorf("expected rating 0 for unwatched entry, got %d", req.Rating)
		}
		if req.UserID == nil || *req.UserID != 1 {
			t.Errorf("expected userId 1, got %v", req.UserID)
		}
	})

	t.Run("Create", func(t *testing.T) {
		backend, _, watchlist := backendClients(t)
		f := NewEntryForm(watchlist, newSession(t, user), quietLogger())
		f.Title, f.Type, f.Genre, f.Watched, f.Rating = "Inception", models.CategoryFilm, "Sci-Fi", true, 9

		if !f.Submit(ctx) {
			t.Fatalf("expected success, got %+v", f.Status())
		}
		if f.Status().Text != MsgEntrySaved {
			t.Errorf("expected %q, got %q", MsgEntrySaved, f.Status().Text)
		}
		if f.Title != "" || f.Editing() {
			t.Error("expected form to be reset after create")
		}

		stored := backend.Entries(1)
		if len(stored) != 1 || stored[0].Title != "Inception" || stored[0].Rating != 9 {
			t.Errorf("expected stored entry, got %+v", stored)
		}
	})

	t.Run("Edit", func(t *testing.T) {
		backend, _, watchlist := backendClients(t)
		existing := backend.AddEntry(models.Entry{
			Title: "Dune", Type: models.CategoryFilm, UserID: models.Int64(1), PosterURL: "http://example.com/dune.jpg",
		})

		f := NewEntryForm(watchlist, newSession(t, user), quietLogger())
		f.Load(existing)
		f.Title = "Dune: Part One"

		if !f.Submit(ctx) {
			t.Fatalf("expected success, got %+v", f.Status())
		}
		if !f.Editing() || f.Title != "Dune: Part One" {
			t.Error("expected form to keep the edited entry")
		}

		stored := backend.Entries(1)
		if len(stored) != 1 || stored[0].Title != "Dune: Part One" {
			t.Fatalf("expected updated entry, got %+v", stored)
		}
		if stored[0].PosterURL != "http://example.com/dune.jpg" {
			t.Errorf("expected poster to be kept, got %s", stored[0].PosterURL)
		}
	})

	t.Run("Network Failure", func(t *testing.T) {
		_, watchlist := offlineClients()
		f := NewEntryForm(watchlist, newSession(t, user), quietLogger())
		f.Title, f.Type = "Inception", models.CategoryFilm

		if f.Submit(ctx) {
			t.Fatal("expected failure")
		}
		if f.Status().Text != MsgGenericError {
			t.Errorf("expected generic message, got %q", f.Status().Text)
		}
		if f.Title != "Inception" {
			t.Error("expected fields to be kept after failure")
		}
	})

	t.Run("Labels", func(t *testing.T) {
		f := NewEntryForm(nil, newSession(t, user), quietLogger())
		if f.SubmitLabel() != "Speichern" {
			t.Errorf("expected idle label, got %q", f.SubmitLabel())
		}
		f.Start()
		defer f.Finish()
		if f.SubmitLabel() != "Speichern..." {
			t.Errorf("expected loading label, got %q", f.SubmitLabel())
		}
	})
}

func TestAccountForm(t *testing.T) {
	ctx := context.Background()

	t.Run("Loads Current Profile", func(t *testing.T) {
		store := newSession(t, &models.User{ID: 1, FirstName: "Test", LastName: "User", Email: "test@example.com"})
		f := NewAccountForm(&stubAuth{}, store, quietLogger())

		if f.FirstName != "Test" || f.LastName != "User" || f.Email != "test@example.com" {
			t.Errorf("expected fields from session, got %q %q %q", f.FirstName, f.LastName, f.Email)
		}
	})

	t.Run("Update Replaces Session Identity", func(t *testing.T) {
		_, auth, _ := backendClients(t)
		login, err := auth.Login(ctx, models.LoginRequest{Username: tu.TestUsername, Password: tu.TestPassword})
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		store := newSession(t, login.User)

		f := NewAccountForm(auth, store, quietLogger())
		f.FirstName, f.Email = "Neu", "neu@example.com"

		if !f.Submit(ctx) {
			t.Fatalf("expected success, got %+v", f.Status())
		}
		if f.Status().Text != MsgProfileUpdated {
			t.Errorf("expected %q, got %q", MsgProfileUpdated, f.Status().Text)
		}

		u := store.CurrentUser()
		if u.FirstName != "Neu" || u.Email != "neu@example.com" || u.Username != tu.TestUsername {
			t.Errorf("expected updated identity, got %+v", u)
		}
		if u.LastLogin != nil {
			t.Error("expected whole record from server to replace the cached identity")
		}
	})

	t.Run("Server Rejection Message", func(t *testing.T) {
		_, auth, _ := backendClients(t)
		store := newSession(t, &models.User{ID: 1, FirstName: "Test", LastName: "User", Email: "test@example.com"})

		f := NewAccountForm(auth, store, quietLogger())
		f.Email = "   "
		if f.Submit(ctx) {
			t.Fatal("expected local validation failure")
		}
		if f.Status().Text != MsgFillAllFields {
			t.Errorf("expected %q, got %q", MsgFillAllFields, f.Status().Text)
		}

		stub := &stubAuth{err: &services.UpdateError{Message: "E-Mail bereits vergeben"}}
		f = NewAccountForm(stub, store, quietLogger())
		if f.Submit(ctx) {
			t.Fatal("expected failure")
		}
		if f.Status().Text != "E-Mail bereits vergeben" {
			t.Errorf("expected server message, got %q", f.Status().Text)
		}
		if store.CurrentUser().Email != "test@example.com" {
			t.Error("expected session to be untouched")
		}
	})

	t.Run("Other Errors Are Generic", func(t *testing.T) {
		store := newSession(t, &models.User{ID: 1, FirstName: "Test", LastName: "User", Email: "test@example.com"})
		f := NewAccountForm(&stubAuth{err: errors.New("boom")}, store, quietLogger())

		f.Submit(ctx)
		if f.Status().Text != MsgGenericError {
			t.Errorf("expected generic message, got %q", f.Status().Text)
		}
	})

	t.Run("Logout", func(t *testing.T) {
		store := newSession(t, &models.User{ID: 1, FirstName: "Test", LastName: "User", Email: "test@example.com"})
		f := NewAccountForm(&stubAuth{}, store, quietLogger())

		f.Logout()
		if store.IsAuthenticated() {
			t.Error("expected logout to clear the session")
		}
		if f.Validate() {
			t.Error("expected validation to fail once signed out")
		}
	})
}

func TestWatchlistTable(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: 1, Username: tu.TestUsername}

	seed := func(backend *tu.StubBackend) {
		backend.AddEntry(models.Entry{
			Title: "Inception", Type: models.CategoryFilm, Genre: "Sci-Fi",
			PosterURL: "http://example.com/inception.jpg", UserID: models.Int64(1),
		})
		backend.AddEntry(models.Entry{
			Title: "Breaking Bad", Type: models.CategorySeries, Genre: "Drama",
			Watched: true, Rating: 9, UserID: models.Int64(1),
		})
	}

	t.Run("Empty", func(t *testing.T) {
		_, _, watchlist := backendClients(t)
		table := NewWatchlistTable(watchlist, newSession(t, user), quietLogger())

		if !table.Reload(ctx) {
			t.Fatalf("expected reload to succeed, got %+v", table.Status())
		}
		if table.EmptyMessage() != MsgNoEntries {
			t.Errorf("expected %q, got %q", MsgNoEntries, table.EmptyMessage())
		}
	})

	t.Run("Rows", func(t *testing.T) {
		backend, _, watchlist := backendClients(t)
		seed(backend)
		table := NewWatchlistTable(watchlist, newSession(t, user), quietLogger())
		table.Reload(ctx)

		rows := table.Rows()
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		want := [][]string{
			{"http://example.com/inception.jpg", "Inception", "Film", "Sci-Fi", "Nein", "-"},
			{MsgNoCover, "Breaking Bad", "Serie", "Drama", "Ja", "⭐⭐⭐⭐⭐ 9/10"},
		}
		for i := range want {
			for j := range want[i] {
				if rows[i][j] != want[i][j] {
					t.Errorf("row %d col %s: expected %q, got %q", i, TableColumns[j], want[i][j], rows[i][j])
				}
			}
		}
		if table.EmptyMessage() != "" {
			t.Error("expected no empty message")
		}
	})

	t.Run("Edit Mode Toggle", func(t *testing.T) {
		table := NewWatchlistTable(nil, newSession(t, user), quietLogger())
		table.SetItems([]models.Entry{{ID: models.Int64(1), Title: "Inception", Type: models.CategoryFilm}})

		if table.EditLabel() != "Bearbeiten" {
			t.Errorf("expected Bearbeiten, got %q", table.EditLabel())
		}
		table.ToggleEditMode()
		if !table.EditMode() || table.EditLabel() != "Bearbeitung beenden" {
			t.Errorf("expected edit mode, got label %q", table.EditLabel())
		}

		table.StartEdit(0)
		table.ToggleEditMode()
		if table.Draft() != nil {
			t.Error("expected leaving edit mode to discard the draft")
		}
	})

	t.Run("Edit And Cancel", func(t *testing.T) {
		table := NewWatchlistTable(nil, newSession(t, user), quietLogger())
		table.SetItems([]models.Entry{{ID: models.Int64(1), Title: "Inception", Type: models.CategoryFilm}})

		if table.StartEdit(5) {
			t.Error("expected out of range edit to be refused")
		}
		if !table.StartEdit(0) {
			t.Fatal("expected edit to start")
		}
		table.Draft().Title = "Changed"
		table.CancelEdit()

		if table.Draft() != nil {
			t.Error("expected draft to be closed")
		}
		if table.Items()[0].Title != "Inception" {
			t.Error("expected cancel to keep the original row")
		}
	})

	t.Run("Save Edit", func(t *testing.T) {
		backend, _, watchlist := backendClients(t)
		seed(backend)
		table := NewWatchlistTable(watchlist, newSession(t, user), quietLogger())
		table.Reload(ctx)

		table.StartEdit(0)
		table.Draft().Title = "Updated Title"
		if !table.SaveEdit(ctx) {
			t.Fatalf("expected save to succeed, got %+v", table.Status())
		}

		if table.Items()[0].Title != "Updated Title" {
			t.Errorf("expected row to be updated, got %q", table.Items()[0].Title)
		}
		if table.Editing() != -1 {
			t.Error("expected draft to be closed after save")
		}
		if stored := backend.Entries(1); stored[0].Title != "Updated Title" || *stored[0].UserID != 1 {
			t.Errorf("expected backend entry to carry new title and user, got %+v", stored[0])
		}
	})

	t.Run("Save Edit Validation", func(t *testing.T) {
		table := NewWatchlistTable(nil, newSession(t, user), quietLogger())
		table.SetItems([]models.Entry{{ID: models.Int64(1), Title: "Inception", Type: models.CategoryFilm}})

		table.StartEdit(0)
		table.Draft().Title = " "
		if table.SaveEdit(ctx) {
			t.Fatal("expected validation failure")
		}
		if table.Status().Text != MsgTitleAndCategory {
			t.Errorf("expected %q, got %q", MsgTitleAndCategory, table.Status().Text)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		backend, _, watchlist := backendClients(t)
		seed(backend)
		table := NewWatchlistTable(watchlist, newSession(t, user), quietLogger())
		table.Reload(ctx)

		if got := table.DeleteConfirmation(0); got != `Sind Sie sicher, dass Sie "Inception" löschen möchten?` {
			t.Errorf("unexpected confirmation %q", got)
		}
		if !table.DeleteAt(ctx, 0) {
			t.Fatalf("expected delete to succeed, got %+v", table.Status())
		}
		if table.Len() != 1 || table.Items()[0].Title != "Breaking Bad" {
			t.Errorf("expected one remaining row, got %+v", table.Items())
		}

		reqs := backend.Requests()
		if last := reqs[len(reqs)-1]; last != "DELETE /Watchlist/1" {
			t.Errorf("expected DELETE /Watchlist/1, got %s", last)
		}
	})

	t.Run("Delete Failure Keeps Row", func(t *testing.T) {
		_, watchlist := offlineClients()
		table := NewWatchlistTable(watchlist, newSession(t, user), quietLogger())
		table.SetItems([]models.Entry{{ID: models.Int64(1), Title: "Inception", Type: models.CategoryFilm}})

		if table.DeleteAt(ctx, 0) {
			t.Fatal("expected failure")
		}
		if table.Status().Text != MsgDeleteFailed || table.Len() != 1 {
			t.Errorf("expected failure message and kept row, got %+v / %d", table.Status(), table.Len())
		}
	})

	t.Run("Refresh Posters", func(t *testing.T) {
		backend, _, watchlist := backendClients(t)
		seed(backend)
		table := NewWatchlistTable(watchlist, newSession(t, user), quietLogger())

		if !table.RefreshPosters(ctx) {
			t.Fatalf("expected refresh to succeed, got %+v", table.Status())
		}
		if table.Status().Text != "2 Poster aktualisiert" {
			t.Errorf("expected backend summary, got %q", table.Status().Text)
		}
		if table.Len() != 2 {
			t.Errorf("expected list to be reloaded, got %d rows", table.Len())
		}
	})

	t.Run("Load Failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("down"))}
		api := services.NewAPIService("http://example.com", client, services.WithLogger(quietLogger()))
		table := NewWatchlistTable(services.NewWatchlistClient(api, quietLogger()), newSession(t, user), quietLogger())

		if table.Reload(ctx) {
			t.Fatal("expected failure")
		}
		if table.Status().Text != MsgLoadFailed {
			t.Errorf("expected %q, got %q", MsgLoadFailed, table.Status().Text)
		}
	})

	t.Run("Rows Belong To The Signed In User", func(t *testing.T) {
		backend, _, watchlist := backendClients(t)
		seed(backend)
		s := newSession(t, user)
		table := NewWatchlistTable(watchlist, s, quietLogger())
		if !table.Reload(ctx) || table.Len() != 2 {
			t.Fatalf("expected 2 rows, got %d (%+v)", table.Len(), table.Status())
		}
		late := table.SendLoad(ctx, user.ID)
		table.ToggleEditMode()
		table.StartEdit(0)

		s.Logout()
		s.SetUser(&models.User{ID: 2, Username: "bob"})

		if table.CompleteLoad(LoadOutcome{UserID: 2, Err: errors.New("down")}) {
			t.Fatal("expected load failure")
		}
		if table.Len() != 0 {
			t.Errorf("expected previous rows to be dropped, got %+v", table.Items())
		}
		if table.EditMode() || table.Draft() != nil {
			t.Error("expected the previous draft to be dropped")
		}
		if table.Status().Text != MsgLoadFailed {
			t.Errorf("expected %q, got %q", MsgLoadFailed, table.Status().Text)
		}

		if table.CompleteLoad(late) {
			t.Error("expected a load for another user to be dropped")
		}
		if table.Len() != 0 {
			t.Errorf("expected no rows, got %+v", table.Items())
		}
		if table.CompleteRefresh(RefreshOutcome{UserID: user.ID, Summary: "2 Poster aktualisiert"}) {
			t.Error("expected a refresh for another user to be dropped")
		}
		if table.Status().Text != MsgLoadFailed {
			t.Errorf("expected status to be kept, got %q", table.Status().Text)
		}

		backend.AddEntry(models.Entry{Title: "Dark", Type: models.CategorySeries, UserID: models.Int64(2)})
		if !table.Reload(ctx) {
			t.Fatalf("expected reload to succeed, got %+v", table.Status())
		}
		if items := table.Items(); len(items) != 1 || items[0].Title != "Dark" {
			t.Errorf("expected only bob's entry, got %+v", items)
		}
	})

	t.Run("Reconcile", func(t *testing.T) {
		s := newSession(t, user)
		table := NewWatchlistTable(nil, s, quietLogger())
		table.SetItems([]models.Entry{{ID: models.Int64(1), Title: "Inception", Type: models.CategoryFilm}})

		if table.Reconcile() {
			t.Error("expected rows of the signed-in user to be kept")
		}
		s.Logout()
		if !table.Reconcile() || table.Len() != 0 {
			t.Errorf("expected rows to be cleared on logout, got %d", table.Len())
		}
		if table.Reconcile() {
			t.Error("expected a second reconcile to be a no-op")
		}
	})

	t.Run("Draft Request Is Trimmed", func(t *testing.T) {
		table := NewWatchlistTable(nil, newSession(t, user), quietLogger())
		table.SetItems([]models.Entry{{ID: models.Int64(1), Title: "Inception", Type: models.CategoryFilm}})
		table.StartEdit(0)
		table.Draft().Title = "  Inception  "
		table.Draft().Genre = " Sci-Fi\t"

		req := table.DraftRequest()
		if req.Title != "Inception" || req.Genre != "Sci-Fi" {
			t.Errorf("expected trimmed title and genre, got %q / %q", req.Title, req.Genre)
		}
	})

	t.Run("Signed Out", func(t *testing.T) {
		table := NewWatchlistTable(nil, newSession(t, nil), quietLogger())
		if table.Reload(ctx) || table.RefreshPosters(ctx) {
			t.Error("expected operations to fail without a session")
		}
		if table.Status().Text != MsgNotLoggedIn {
			t.Errorf("expected %q, got %q", MsgNotLoggedIn, table.Status().Text)
		}
	})
}
