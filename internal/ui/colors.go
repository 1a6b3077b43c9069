package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/watchlist/internal/forms"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title  lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	warn   lipgloss.Style
	help   lipgloss.Style
	label  lipgloss.Style
	nav    lipgloss.Style
	active lipgloss.Style
	button lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title:  NewBold(t).MarginBottom(1),
		ok:     NewBold(s),
		err:    NewBold(e),
		warn:   NewStyle(w),
		help:   NewEm(h),
		label:  NewStyle(h).Width(14),
		nav:    NewStyle(h).PaddingRight(2),
		active: NewBold(t).Underline(true).PaddingRight(2),
		button: NewBold(t).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color(t)).Padding(0, 2),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// status renders a form's single status region.
func (p *Palette) status(s forms.Status) string {
	switch s.Kind {
	case forms.StatusError:
		return p.err.Render(s.Text)
	case forms.StatusSuccess:
		return p.ok.Render(s.Text)
	case forms.StatusInfo:
		return p.warn.Render(s.Text)
	default:
		return ""
	}
}
