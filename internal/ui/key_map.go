package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next    key.Binding
	prev    key.Binding
	submit  key.Binding
	back    key.Binding
	yes     key.Binding
	no      key.Binding
	edit    key.Binding
	remove  key.Binding
	poster  key.Binding
	refresh key.Binding
	home    key.Binding
	create  key.Binding
	account key.Binding
	logout  key.Binding
	link    key.Binding
	exit    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		prev:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		submit:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		yes:     key.NewBinding(key.WithKeys("y", "j"), key.WithHelp("y/j", "yes")),
		no:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit mode")),
		remove:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		poster:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open cover")),
		refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh covers")),
		home:    key.NewBinding(key.WithKeys("alt+1"), key.WithHelp("alt+1", "home")),
		create:  key.NewBinding(key.WithKeys("alt+2"), key.WithHelp("alt+2", "new entry")),
		account: key.NewBinding(key.WithKeys("alt+3"), key.WithHelp("alt+3", "account")),
		logout:  key.NewBinding(key.WithKeys("alt+x"), key.WithHelp("alt+x", "logout")),
		link:    key.NewBinding(key.WithKeys("alt+r"), key.WithHelp("alt+r", "switch form")),
		exit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.next, k.prev, k.submit, k.back},
		{k.edit, k.remove, k.poster, k.refresh},
		{k.home, k.create, k.account, k.logout},
		{k.link, k.exit, k.quit},
	}
}

// formHelp is the help line shown under every text form.
func (k keyMap) formHelp() []key.Binding {
	return []key.Binding{k.next, k.prev, k.submit, k.quit}
}
