package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/forms"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/router"
	"github.com/desertthunder/watchlist/internal/services"
	"github.com/desertthunder/watchlist/internal/session"
	"github.com/desertthunder/watchlist/internal/shared"
	"github.com/desertthunder/watchlist/internal/storage"
	tu "github.com/desertthunder/watchlist/internal/testing"
)

type harness struct {
	app     *App
	session *session.Store
	backend *tu.StubBackend
	opened  []string
}

func quietLogger() *log.Logger { return shared.NewLogger(io.Discard) }

func newHarness(t *testing.T, user *models.User) *harness {
	t.Helper()

	backend := tu.NewStubBackend(t)
	api := services.NewAPIService(backend.URL, nil, services.WithLogger(quietLogger()))

	s := session.New(storage.NewMemoryStorage(), quietLogger())
	if user != nil {
		s.SetUser(user)
	}
	r := router.New(s, nil, quietLogger())
	t.Cleanup(r.Close)

	h := &harness{session: s, backend: backend}
	h.app = NewApp(context.Background(), Deps{
		Session:   s,
		Router:    r,
		Auth:      services.NewAuthClient(api, quietLogger()),
		Watchlist: services.NewWatchlistClient(api, quietLogger()),
		Logger:    quietLogger(),
		OpenURL: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
	})
	h.drive(h.app.Init())
	return h
}

// drive runs cmd and feeds its messages back into the app until nothing is left.
func (h *harness) drive(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.drive(c)
		}
	case Msg:
		_, next := h.app.Update(msg)
		h.drive(next)
	}
}

func (h *harness) press(msg tea.KeyMsg) {
	_, cmd := h.app.Update(msg)
	h.drive(cmd)
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (h *harness) key(k string) {
	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

func (h *harness) alt(k string) {
	h.press(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k), Alt: true})
}

func (h *harness) tab()   { h.press(tea.KeyMsg{Type: tea.KeyTab}) }
func (h *harness) enter() { h.press(tea.KeyMsg{Type: tea.KeyEnter}) }

func (h *harness) fillForm(values ...string) {
	for i, v := range values {
		if i > 0 {
			h.tab()
		}
		h.typeText(v)
	}
}

func (h *harness) assertRoute(t *testing.T, want router.Route) {
	t.Helper()
	if got := h.app.Route(); got.Name != want.Name {
		t.Fatalf("route = %s, want %s", got.Name, want.Name)
	}
}

func (h *harness) assertView(t *testing.T, want string) {
	t.Helper()
	if view := h.app.View(); !strings.Contains(view, want) {
		t.Errorf("view does not contain %q:\n%s", want, view)
	}
}

func testUser() *models.User {
	return &models.User{ID: 1, Username: tu.TestUsername, FirstName: "Test", LastName: "User", Email: "test@example.com"}
}

func seedEntries(h *harness) {
	h.backend.AddEntry(models.Entry{Title: "Dune", Type: models.CategoryFilm, Genre: "Sci-Fi", Watched: true, Rating: 9,
		PosterURL: "https://posters.example.com/dune.jpg", UserID: models.Int64(1)})
	h.backend.AddEntry(models.Entry{Title: "Dark", Type: models.CategorySeries, Genre: "Mystery", UserID: models.Int64(1)})
}

func TestApp_Guest(t *testing.T) {
	t.Run("starts on login", func(t *testing.T) {
		h := newHarness(t, nil)
		h.assertRoute(t, router.LoginRoute)
		h.assertView(t, "Anmelden")
		h.assertView(t, "Registrieren Sie sich hier")
	})

	t.Run("protected views are unreachable", func(t *testing.T) {
		h := newHarness(t, nil)
		for _, k := range []string{"1", "2", "3"} {
			h.alt(k)
			h.assertRoute(t, router.LoginRoute)
		}
		if view := h.app.View(); strings.Contains(view, "Willkommen") {
			t.Errorf("guest view should not greet:\n%s", view)
		}
	})

	t.Run("switches between login and register", func(t *testing.T) {
		h := newHarness(t, nil)
		h.alt("r")
		h.assertRoute(t, router.RegisterRoute)
		h.assertView(t, "Hier anmelden")
		h.alt("r")
		h.assertRoute(t, router.LoginRoute)
	})
}

func TestApp_Login(t *testing.T) {
	t.Run("success greets the user and lists entries", func(t *testing.T) {
		h := newHarness(t, nil)
		seedEntries(h)

		h.fillForm(tu.TestUsername, tu.TestPassword)
		h.enter()

		h.assertRoute(t, router.HomeRoute)
		if !h.session.IsAuthenticated() {
			t.Fatal("session should hold the user")
		}
		h.assertView(t, "Willkommen zu deiner persönlichen Watchlist, Test!")
		h.assertView(t, "Eintrag erstellen")
		h.assertView(t, "Dune")
		h.assertView(t, "Kein Cover")
	})

	t.Run("wrong password shows the server message", func(t *testing.T) {
		h := newHarness(t, nil)

		h.fillForm(tu.TestUsername, "wrong")
		h.enter()

		h.assertRoute(t, router.LoginRoute)
		h.assertView(t, "Ungültige Anmeldedaten!")
		if h.session.IsAuthenticated() {
			t.Error("session should stay empty")
		}
	})

	t.Run("empty fields never reach the backend", func(t *testing.T) {
		h := newHarness(t, nil)
		h.enter()

		h.assertView(t, forms.MsgFillAllFields)
		if reqs := h.backend.Requests(); len(reqs) != 0 {
			t.Errorf("unexpected requests %v", reqs)
		}
	})
}

func TestApp_Register(t *testing.T) {
	h := newHarness(t, nil)
	h.alt("r")

	h.fillForm("Neo", "Anderson", "neo", "neo@example.com", "matrix", "matrix")
	h.enter()

	h.assertRoute(t, router.HomeRoute)
	h.assertView(t, forms.MsgRegisterSuccess)
	h.assertView(t, "Willkommen zu deiner persönlichen Watchlist, Neo!")
	h.assertView(t, forms.MsgNoEntries)

	h.alt("2")
	if strings.Contains(h.app.View(), forms.MsgRegisterSuccess) {
		t.Error("registration message should clear on navigation")
	}
}

func TestApp_Entries(t *testing.T) {
	t.Run("create entry", func(t *testing.T) {
		h := newHarness(t, testUser())
		h.alt("2")
		h.assertRoute(t, router.AboutRoute)

		h.fillForm("Arrival", "film", "Sci-Fi", "ja", "8")
		h.enter()

		h.assertView(t, forms.MsgEntrySaved)
		entries := h.backend.Entries(1)
		if len(entries) != 1 || entries[0].Title != "Arrival" || entries[0].Rating != 8 || !entries[0].Watched {
			t.Errorf("backend entries = %+v", entries)
		}
	})

	t.Run("create entry validation", func(t *testing.T) {
		h := newHarness(t, testUser())
		h.alt("2")

		h.fillForm("Arrival")
		h.enter()

		h.assertView(t, forms.MsgTitleAndCategory)
		if got := len(h.backend.Entries(1)); got != 0 {
			t.Errorf("backend has %d entries, want 0", got)
		}
	})

	t.Run("edit row", func(t *testing.T) {
		h := newHarness(t, nil)
		seedEntries(h)
		h.session.SetUser(testUser())
		h.drive(h.app.follow())
		h.assertRoute(t, router.HomeRoute)

		h.key("e")
		h.assertView(t, "Bearbeitung beenden")
		h.enter()
		h.press(tea.KeyMsg{Type: tea.KeyCtrlU})
		h.typeText("Dune Part One")
		h.enter()

		h.assertView(t, forms.MsgEntryUpdated)
		h.assertView(t, "Dune Part One")
		if got := h.backend.Entries(1)[0].Title; got != "Dune Part One" {
			t.Errorf("backend title = %q", got)
		}
	})

	t.Run("delete asks first", func(t *testing.T) {
		h := newHarness(t, nil)
		seedEntries(h)
		h.session.SetUser(testUser())
		h.drive(h.app.follow())

		h.key("e")
		h.key("d")
		h.assertView(t, `Sind Sie sicher, dass Sie "Dune" löschen möchten?`)

		h.key("n")
		if got := len(h.backend.Entries(1)); got != 2 {
			t.Fatalf("declined delete removed entries: %d left", got)
		}

		h.key("d")
		h.key("y")
		h.assertView(t, forms.MsgEntryDeleted)
		if got := len(h.backend.Entries(1)); got != 1 {
			t.Errorf("backend has %d entries, want 1", got)
		}
	})

	t.Run("refresh posters", func(t *testing.T) {
		h := newHarness(t, nil)
		seedEntries(h)
		h.session.SetUser(testUser())
		h.drive(h.app.follow())

		h.key("r")
		h.assertView(t, forms.MsgRefreshConfirm)
		h.key("y")

		h.assertView(t, "2 Poster aktualisiert")
		for _, e := range h.app.home.list.Items() {
			if !strings.HasSuffix(e.PosterURL, "?refreshed") {
				t.Errorf("entry %q was not reloaded: %s", e.Title, e.PosterURL)
			}
		}
	})

	t.Run("open poster", func(t *testing.T) {
		h := newHarness(t, nil)
		seedEntries(h)
		h.session.SetUser(testUser())
		h.drive(h.app.follow())

		h.key("o")
		if len(h.opened) != 1 || h.opened[0] != "https://posters.example.com/dune.jpg" {
			t.Errorf("opened = %v", h.opened)
		}

		h.press(tea.KeyMsg{Type: tea.KeyDown})
		h.key("o")
		if h.app.home.notice != forms.MsgNoCover {
			t.Errorf("notice = %q, want %q", h.app.home.notice, forms.MsgNoCover)
		}
		if len(h.opened) != 1 {
			t.Errorf("entry without cover should not open anything: %v", h.opened)
		}
	})

	t.Run("open poster failure", func(t *testing.T) {
		h := newHarness(t, nil)
		seedEntries(h)
		h.app.home.openURL = func(string) error { return errors.New("no browser") }
		h.session.SetUser(testUser())
		h.drive(h.app.follow())

		h.key("o")
		h.assertView(t, "no browser")
	})
}

func TestApp_Account(t *testing.T) {
	t.Run("update profile", func(t *testing.T) {
		h := newHarness(t, testUser())
		h.alt("3")
		h.assertRoute(t, router.AccountRoute)

		h.press(tea.KeyMsg{Type: tea.KeyCtrlU})
		h.typeText("Tess")
		h.enter()

		h.assertView(t, forms.MsgProfileUpdated)
		h.assertView(t, "Willkommen zu deiner persönlichen Watchlist, Tess!")
		if got := h.session.CurrentUser().FirstName; got != "Tess" {
			t.Errorf("session first name = %q", got)
		}
	})

	t.Run("blank fields are rejected locally", func(t *testing.T) {
		h := newHarness(t, testUser())
		h.alt("3")

		h.tab()
		h.tab()
		h.press(tea.KeyMsg{Type: tea.KeyCtrlU})
		h.enter()

		h.assertView(t, forms.MsgFillAllFields)
	})

	t.Run("logout lands on login", func(t *testing.T) {
		h := newHarness(t, testUser())
		seedEntries(h)
		h.alt("1")
		h.assertView(t, "Dune")
		h.alt("2")
		h.typeText("Geheimer Film")

		h.alt("3")
		h.alt("x")

		h.assertRoute(t, router.LoginRoute)
		if h.session.IsAuthenticated() {
			t.Error("session should be empty after logout")
		}
		if view := h.app.View(); strings.Contains(view, "Willkommen") {
			t.Errorf("logged out view should not greet:\n%s", view)
		}
		if n := h.app.home.list.Len(); n != 0 {
			t.Errorf("table kept %d rows after logout", n)
		}
		if h.app.entry.form.Title != "" || h.app.entry.fields.value(0) != "" {
			t.Error("entry draft kept after logout")
		}

		h.alt("r")
		h.fillForm("Neo", "Anderson", "neo", "neo@example.com", "matrix", "matrix")
		h.enter()

		h.assertRoute(t, router.HomeRoute)
		h.assertView(t, forms.MsgNoEntries)
		if view := h.app.View(); strings.Contains(view, "Dune") || strings.Contains(view, "Dark") {
			t.Errorf("new user sees entries of the previous one:\n%s", view)
		}
		h.alt("2")
		if view := h.app.View(); strings.Contains(view, "Geheimer Film") {
			t.Errorf("new user sees the draft of the previous one:\n%s", view)
		}
	})

	t.Run("load finishing after a user change is discarded", func(t *testing.T) {
		h := newHarness(t, testUser())
		seedEntries(h)
		pending := h.app.home.load(h.app.ctx)
		if pending == nil {
			t.Fatal("expected a load to start")
		}

		h.alt("3")
		h.alt("x")
		h.alt("r")
		h.fillForm("Neo", "Anderson", "neo", "neo@example.com", "matrix", "matrix")
		h.enter()
		h.assertRoute(t, router.HomeRoute)

		before := countRequests(h.backend, "GET /Watchlist")
		h.drive(pending)

		for _, e := range h.app.home.list.Items() {
			t.Errorf("new user got entry %q of the previous one", e.Title)
		}
		if view := h.app.View(); strings.Contains(view, "Dune") {
			t.Errorf("stale load reached the view:\n%s", view)
		}
		if got := countRequests(h.backend, "GET /Watchlist") - before; got != 2 {
			t.Errorf("expected the stale load and one reload, got %d requests", got)
		}
		if h.app.home.list.Submitting() {
			t.Error("table should be idle after the reload")
		}
	})
}

func countRequests(b *tu.StubBackend, want string) int {
	n := 0
	for _, r := range b.Requests() {
		if r == want {
			n++
		}
	}
	return n
}

func TestReadEntryFields(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   models.Entry
	}{
		{
			name:   "english category and rating",
			values: []string{"Heat", "movie", "Crime", "yes", "7"},
			want:   models.Entry{Title: "Heat", Type: models.CategoryFilm, Genre: "Crime", Watched: true, Rating: 7},
		},
		{
			name:   "unknown category is kept",
			values: []string{"Heat", "Hörspiel", "", "nein", ""},
			want:   models.Entry{Title: "Heat", Type: "Hörspiel"},
		},
		{
			name:   "rating that is not a number",
			values: []string{"Heat", "Film", "", "ja", "zehn"},
			want:   models.Entry{Title: "Heat", Type: models.CategoryFilm, Watched: true, Rating: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newEntryFields()
			for i, v := range tt.values {
				s.setValue(i, v)
			}
			var got models.Entry
			readEntryFields(s, &got)
			if got != tt.want {
				t.Errorf("readEntryFields() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
