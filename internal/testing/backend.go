package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/watchlist/internal/models"
)

// Credentials accepted by a fresh [StubBackend].
const (
	TestUsername = "testuser"
	TestPassword = "testpassword"
)

// StubBackend is an in-memory imitation of the watchlist backend served over httptest.
//
// It answers the /auth and /Watchlist endpoints with the same bodies the real server sends.
type StubBackend struct {
	*httptest.Server

	mu        sync.Mutex
	users     map[int64]*models.User
	passwords map[string]string
	byName    map[string]int64
	entries   map[int64]models.Entry
	nextUser  int64
	nextEntry int64
	requests  []string
}

// NewStubBackend starts a backend with one registered user (id 1, testuser / testpassword).
// The server is closed when the test finishes.
func NewStubBackend(t *testing.T) *StubBackend {
	t.Helper()

	b := &StubBackend{
		users:     map[int64]*models.User{},
		passwords: map[string]string{},
		byName:    map[string]int64{},
		entries:   map[int64]models.Entry{},
		nextUser:  1,
		nextEntry: 1,
	}
	b.addUser(models.User{
		Username:  TestUsername,
		Email:     "test@example.com",
		FirstName: "Test",
		LastName:  "User",
		CreatedAt: models.NewTimestamp(mustTime("2024-01-01T10:00:00Z")),
	}, TestPassword)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/register", b.register)
	mux.HandleFunc("GET /auth/user/{id}", b.getUser)
	mux.HandleFunc("PUT /auth/user/{id}", b.putUser)
	mux.HandleFunc("GET /Watchlist", b.listEntries)
	mux.HandleFunc("POST /Watchlist", b.createEntry)
	mux.HandleFunc("POST /Watchlist/refresh-all-posters", b.refreshPosters)
	mux.HandleFunc("PUT /Watchlist/{id}", b.updateEntry)
	mux.HandleFunc("DELETE /Watchlist/{id}", b.deleteEntry)

	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.Close)
	return b
}

// Requests returns "METHOD /path" for every request received so far.
func (b *StubBackend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

// AddEntry seeds an entry and returns it with its assigned ID.
func (b *StubBackend) AddEntry(e models.Entry) models.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextEntry
	b.nextEntry++
	e.ID = &id
	b.entries[id] = e
	return e
}

// Entries returns a snapshot of stored entries for userID.
func (b *StubBackend) Entries(userID int64) []models.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.entriesFor(userID)
}

func (b *StubBackend) entriesFor(userID int64) []models.Entry {
	out := []models.Entry{}
	for id := int64(1); id < b.nextEntry; id++ {
		e, ok := b.entries[id]
		if ok && e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

func (b *StubBackend) addUser(u models.User, password string) *models.User {
	u.ID = b.nextUser
	b.nextUser++
	b.users[u.ID] = &u
	b.passwords[u.Username] = password
	b.byName[u.Username] = u.ID
	return &u
}

func (b *StubBackend) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.AuthResult{Message: "Ungültige Anfrage"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok := b.byName[req.Username]
	if !ok || b.passwords[req.Username] != req.Password {
		writeJSON(w, http.StatusUnauthorized, models.AuthResult{Message: "Ungültige Anmeldedaten!"})
		return
	}

	user := *b.users[id]
	now := models.NewTimestamp(mustTime("2024-06-01T08:30:00Z"))
	user.LastLogin = &now
	writeJSON(w, http.StatusOK, models.AuthResult{Success: true, Message: "Login erfolgreich!", User: &user})
}

func (b *StubBackend) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.AuthResult{Message: "Ungültige Anfrage"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.byName[req.Username]; exists {
		writeJSON(w, http.StatusBadRequest, models.AuthResult{Message: "Username bereits vergeben!"})
		return
	}

	user := b.addUser(models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		CreatedAt: models.NewTimestamp(mustTime("2024-06-01T08:30:00Z")),
	}, req.Password)
	writeJSON(w, http.StatusOK, models.AuthResult{Success: true, Message: "Registrierung erfolgreich!", User: user})
}

func (b *StubBackend) getUser(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[pathID(r)]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Benutzer nicht gefunden"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *StubBackend) putUser(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Ungültige Anfrage"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u, ok := b.users[pathID(r)]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Benutzer nicht gefunden"})
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "E-Mail darf nicht leer sein"})
		return
	}

	u.FirstName, u.LastName, u.Email = req.FirstName, req.LastName, req.Email
	writeJSON(w, http.StatusOK, u)
}

func (b *StubBackend) listEntries(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.entriesFor(userID))
}

func (b *StubBackend) createEntry(w http.ResponseWriter, r *http.Request) {
	var e models.Entry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil || e.UserID == nil {
		http.Error(w, "invalid entry", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextEntry
	b.nextEntry++
	e.ID = &id
	if e.PosterURL == "" {
		e.PosterURL = fmt.Sprintf("https://posters.example.com/%d.jpg", id)
	}
	b.entries[id] = e
	writeJSON(w, http.StatusCreated, e)
}

func (b *StubBackend) updateEntry(w http.ResponseWriter, r *http.Request) {
	var e models.Entry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, "invalid entry", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := pathID(r)
	if _, ok := b.entries[id]; !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	e.ID = &id
	b.entries[id] = e
	writeJSON(w, http.StatusOK, e)
}

func (b *StubBackend) deleteEntry(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := pathID(r)
	e, ok := b.entries[id]
	if !ok || e.UserID == nil || strconv.FormatInt(*e.UserID, 10) != r.URL.Query().Get("userId") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	delete(b.entries, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *StubBackend) refreshPosters(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("userId"), 10, 64)
	if err != nil {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for id, e := range b.entries {
		if e.UserID != nil && *e.UserID == userID {
			e.PosterURL = fmt.Sprintf("https://posters.example.com/%d.jpg?refreshed", id)
			b.entries[id] = e
			n++
		}
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(w, "%d Poster aktualisiert", n)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}
