package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/watchlist/internal/forms"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLoginCompleted MsgKind = iota
	MsgRegisterCompleted
	MsgEntrySaved
	MsgWatchlistLoaded
	MsgRowSaved
	MsgEntryDeleted
	MsgPostersRefreshed
	MsgAccountUpdated
	MsgPosterOpened
)

type refreshed struct {
	refresh forms.RefreshOutcome
	load    forms.LoadOutcome
}

// loginCompletedMsg is the constructor for [MsgLoginCompleted]
func loginCompletedMsg(o forms.AuthOutcome) Msg {
	return Msg{kind: MsgLoginCompleted, data: o}
}

// registerCompletedMsg is the constructor for [MsgRegisterCompleted]
func registerCompletedMsg(o forms.AuthOutcome) Msg {
	return Msg{kind: MsgRegisterCompleted, data: o}
}

// entrySavedMsg is the constructor for [MsgEntrySaved]
func entrySavedMsg(o forms.SaveOutcome) Msg {
	return Msg{kind: MsgEntrySaved, data: o}
}

// watchlistLoadedMsg is the constructor for [MsgWatchlistLoaded]
func watchlistLoadedMsg(o forms.LoadOutcome) Msg {
	return Msg{kind: MsgWatchlistLoaded, data: o}
}

// rowSavedMsg is the constructor for [MsgRowSaved]
func rowSavedMsg(o forms.SaveOutcome) Msg {
	return Msg{kind: MsgRowSaved, data: o}
}

// entryDeletedMsg is the constructor for [MsgEntryDeleted]
func entryDeletedMsg(o forms.DeleteOutcome) Msg {
	return Msg{kind: MsgEntryDeleted, data: o}
}

// postersRefreshedMsg is the constructor for [MsgPostersRefreshed]
func postersRefreshedMsg(r forms.RefreshOutcome, l forms.LoadOutcome) Msg {
	return Msg{kind: MsgPostersRefreshed, data: refreshed{refresh: r, load: l}}
}

// accountUpdatedMsg is the constructor for [MsgAccountUpdated]
func accountUpdatedMsg(o forms.UpdateOutcome) Msg {
	return Msg{kind: MsgAccountUpdated, data: o}
}

// posterOpenedMsg is the constructor for [MsgPosterOpened]
func posterOpenedMsg(err error) Msg {
	return Msg{kind: MsgPosterOpened, data: err}
}
