package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/watchlist/internal/forms"
)

var columnWidths = []int{24, 28, 14, 14, 8, 16}

// homeView renders [forms.WatchlistTable] with a bubbles table and an inline row editor.
type homeView struct {
	list    *forms.WatchlistTable
	grid    table.Model
	draft   *fieldSet
	openURL func(string) error
	notice  string
}

func newHomeView(list *forms.WatchlistTable, openURL func(string) error) *homeView {
	columns := make([]table.Column, len(forms.TableColumns))
	for i, title := range forms.TableColumns {
		columns[i] = table.Column{Title: title, Width: columnWidths[i]}
	}
	grid := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(12))
	return &homeView{list: list, grid: grid, draft: newEntryFields(), openURL: openURL}
}

func (v *homeView) resize(width, height int) {
	if height > 14 {
		v.grid.SetHeight(height - 14)
	}
	v.grid.SetWidth(width - 4)
}

// enter reloads the list whenever the view is shown. Rows of a previous user are dropped first.
func (v *homeView) enter(ctx context.Context) tea.Cmd {
	v.notice = ""
	if v.list.Reconcile() {
		v.sync()
	}
	return v.load(ctx)
}

func (v *homeView) load(ctx context.Context) tea.Cmd {
	userID, ok := v.list.UserID()
	if !ok || !v.list.Start() {
		return nil
	}
	return func() tea.Msg { return watchlistLoadedMsg(v.list.SendLoad(ctx, userID)) }
}

func (v *homeView) sync() {
	v.grid.SetRows(toRows(v.list.Rows()))
	if c := v.grid.Cursor(); c >= v.list.Len() && v.list.Len() > 0 {
		v.grid.SetCursor(v.list.Len() - 1)
	}
}

func toRows(cells [][]string) []table.Row {
	rows := make([]table.Row, len(cells))
	for i, r := range cells {
		rows[i] = table.Row(r)
	}
	return rows
}

// handleKey returns the command for msg and, for actions that need a yes/no answer, the question to ask.
func (v *homeView) handleKey(ctx context.Context, keys keyMap, msg tea.KeyMsg) (tea.Cmd, *confirmation) {
	if v.list.Editing() >= 0 {
		switch {
		case key.Matches(msg, keys.back):
			v.list.CancelEdit()
			return nil, nil
		case key.Matches(msg, keys.next):
			return v.draft.move(1), nil
		case key.Matches(msg, keys.prev):
			return v.draft.move(-1), nil
		case key.Matches(msg, keys.submit):
			return v.save(ctx), nil
		}
		return v.draft.update(msg), nil
	}

	v.notice = ""
	switch {
	case key.Matches(msg, keys.exit):
		return tea.Quit, nil
	case key.Matches(msg, keys.edit):
		v.list.ToggleEditMode()
		return nil, nil
	case key.Matches(msg, keys.submit) && v.list.EditMode():
		i := v.grid.Cursor()
		if !v.list.StartEdit(i) {
			return nil, nil
		}
		fillEntryFields(v.draft, *v.list.Draft())
		return v.draft.focusAt(0), nil
	case key.Matches(msg, keys.remove) && v.list.EditMode():
		i := v.grid.Cursor()
		question := v.list.DeleteConfirmation(i)
		if question == "" {
			return nil, nil
		}
		return nil, &confirmation{question: question, onYes: func() tea.Cmd { return v.remove(ctx, i) }}
	case key.Matches(msg, keys.refresh):
		return nil, &confirmation{question: forms.MsgRefreshConfirm, onYes: func() tea.Cmd { return v.refresh(ctx) }}
	case key.Matches(msg, keys.poster):
		return v.openPoster(), nil
	}

	var cmd tea.Cmd
	v.grid, cmd = v.grid.Update(msg)
	return cmd, nil
}

func (v *homeView) save(ctx context.Context) tea.Cmd {
	draft := v.list.Draft()
	if draft == nil {
		return nil
	}
	readEntryFields(v.draft, draft)
	if !v.list.ValidateDraft() || !v.list.Start() {
		return nil
	}
	req := v.list.DraftRequest()
	return func() tea.Msg { return rowSavedMsg(v.list.SendSave(ctx, req)) }
}

func (v *homeView) remove(ctx context.Context, i int) tea.Cmd {
	items := v.list.Items()
	userID, ok := v.list.UserID()
	if !ok || i < 0 || i >= len(items) || !items[i].HasID() || !v.list.Start() {
		return nil
	}
	id := items[i].IDValue()
	return func() tea.Msg { return entryDeletedMsg(v.list.SendDelete(ctx, id, userID)) }
}

func (v *homeView) refresh(ctx context.Context) tea.Cmd {
	userID, ok := v.list.UserID()
	if !ok || !v.list.Start() {
		return nil
	}
	return func() tea.Msg {
		r := v.list.SendRefresh(ctx, userID)
		var l forms.LoadOutcome
		if r.Err == nil {
			l = v.list.SendLoad(ctx, userID)
		}
		return postersRefreshedMsg(r, l)
	}
}

func (v *homeView) openPoster() tea.Cmd {
	items := v.list.Items()
	i := v.grid.Cursor()
	if i < 0 || i >= len(items) {
		return nil
	}
	url := items[i].PosterURL
	if url == "" {
		v.notice = forms.MsgNoCover
		return nil
	}
	return func() tea.Msg { return posterOpenedMsg(v.openURL(url)) }
}

// complete applies a finished round trip. Every kind handled here was started with [forms.Submission.Start].
//
// A load that was requested for a user who has since signed out is dropped and the list is
// loaded again for whoever is signed in now.
func (v *homeView) complete(ctx context.Context, msg Msg) tea.Cmd {
	stale := v.apply(msg)
	v.list.Finish()
	v.sync()
	if stale {
		return v.load(ctx)
	}
	return nil
}

func (v *homeView) apply(msg Msg) (stale bool) {
	switch msg.kind {
	case MsgWatchlistLoaded:
		o := msg.data.(forms.LoadOutcome)
		stale = !v.list.Owns(o.UserID)
		v.list.CompleteLoad(o)
	case MsgRowSaved:
		v.list.CompleteSave(msg.data.(forms.SaveOutcome))
	case MsgEntryDeleted:
		v.list.CompleteDelete(msg.data.(forms.DeleteOutcome))
	case MsgPostersRefreshed:
		data := msg.data.(refreshed)
		stale = !v.list.Owns(data.refresh.UserID)
		if data.refresh.Err != nil {
			v.list.CompleteRefresh(data.refresh)
		} else {
			v.list.CompleteRefreshLoad(data.refresh, data.load)
		}
	}
	return stale
}

// clear empties the grid and any open row editor.
func (v *homeView) clear() {
	v.list.Clear()
	v.draft.reset()
	v.notice = ""
	v.sync()
}

func (v *homeView) posterOpened(err error) {
	if err != nil {
		v.notice = err.Error()
	}
}

func (v *homeView) help(keys keyMap) []key.Binding {
	if v.list.Editing() >= 0 {
		return []key.Binding{keys.next, keys.submit, keys.back, keys.quit}
	}
	bindings := []key.Binding{keys.edit}
	if v.list.EditMode() {
		bindings = append(bindings, key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit row")), keys.remove)
	}
	return append(bindings, keys.poster, keys.refresh, keys.exit)
}

func (v *homeView) view() string {
	var b strings.Builder

	b.WriteString(styles.button.Render(v.list.EditLabel()))
	b.WriteString("\n")

	if msg := v.list.EmptyMessage(); msg != "" {
		b.WriteString(styles.help.Render(msg))
	} else {
		b.WriteString(v.grid.View())
	}

	if v.list.Editing() >= 0 {
		b.WriteString("\n\n")
		b.WriteString(v.draft.view())
	}
	if s := styles.status(v.list.Status()); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	if v.notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.warn.Render(v.notice))
	}
	return b.String()
}
