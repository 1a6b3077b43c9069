package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/watchlist/internal/models"
)

type field struct {
	label string
	input textinput.Model
}

// fieldSet is a column of labelled text inputs with one focused at a time.
type fieldSet struct {
	fields []field
	focus  int
}

func newFieldSet(labels ...string) *fieldSet {
	s := &fieldSet{}
	for _, label := range labels {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		in.Width = 40
		in.Cursor.SetMode(cursor.CursorStatic)
		s.fields = append(s.fields, field{label: label, input: in})
	}
	return s
}

func (s *fieldSet) secret(i int) *fieldSet {
	s.fields[i].input.EchoMode = textinput.EchoPassword
	s.fields[i].input.EchoCharacter = '•'
	return s
}

func (s *fieldSet) placeholder(i int, text string) *fieldSet {
	s.fields[i].input.Placeholder = text
	return s
}

func (s *fieldSet) value(i int) string { return s.fields[i].input.Value() }

func (s *fieldSet) setValue(i int, v string) { s.fields[i].input.SetValue(v) }

func (s *fieldSet) reset() {
	for i := range s.fields {
		s.fields[i].input.Reset()
	}
}

func (s *fieldSet) focusAt(i int) tea.Cmd {
	if len(s.fields) == 0 {
		return nil
	}
	s.focus = (i + len(s.fields)) % len(s.fields)
	var cmd tea.Cmd
	for j := range s.fields {
		if j == s.focus {
			cmd = s.fields[j].input.Focus()
		} else {
			s.fields[j].input.Blur()
		}
	}
	return cmd
}

func (s *fieldSet) move(delta int) tea.Cmd { return s.focusAt(s.focus + delta) }

func (s *fieldSet) update(msg tea.Msg) tea.Cmd {
	if len(s.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	s.fields[s.focus].input, cmd = s.fields[s.focus].input.Update(msg)
	return cmd
}

func (s *fieldSet) view() string {
	rows := make([]string, 0, len(s.fields))
	for i, f := range s.fields {
		marker := "  "
		if i == s.focus && f.input.Focused() {
			marker = "> "
		}
		rows = append(rows, marker+styles.label.Render(f.label)+f.input.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Entry fields share one layout between the create form and inline row edits.
const (
	entryTitle = iota
	entryType
	entryGenre
	entryWatched
	entryRating
)

func newEntryFields() *fieldSet {
	s := newFieldSet("Titel", "Kategorie", "Genre", "Gesehen", "Bewertung")
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return s.placeholder(entryType, strings.Join(names, " / ")).
		placeholder(entryWatched, "ja / nein").
		placeholder(entryRating, "1-10")
}

func fillEntryFields(s *fieldSet, e models.Entry) {
	s.setValue(entryTitle, e.Title)
	s.setValue(entryType, string(e.Type))
	s.setValue(entryGenre, e.Genre)
	s.setValue(entryWatched, e.WatchedLabel())
	rating := ""
	if e.Rating > 0 {
		rating = strconv.Itoa(e.Rating)
	}
	s.setValue(entryRating, rating)
}

// readEntryFields copies the inputs onto e. An unknown category or a rating that is not a number is kept
// invalid so entry validation reports it.
func readEntryFields(s *fieldSet, e *models.Entry) {
	e.Title = s.value(entryTitle)
	e.Genre = s.value(entryGenre)

	e.Type = ""
	if raw := strings.TrimSpace(s.value(entryType)); raw != "" {
		c, err := models.ParseCategory(raw)
		if err != nil {
			c = models.Category(raw)
		}
		e.Type = c
	}

	e.Watched = parseYes(s.value(entryWatched))

	e.Rating = 0
	if raw := strings.TrimSpace(s.value(entryRating)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			n = -1
		}
		e.Rating = n
	}
}

func parseYes(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "ja", "j", "yes", "y", "x", "true", "1":
		return true
	default:
		return false
	}
}
