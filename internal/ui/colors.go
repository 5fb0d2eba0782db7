package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// interface Painter defines coloring text with [lipgloss] styles
type Painter interface {
	On(string, lipgloss.Color) string // Sets background color
	As(string, lipgloss.Color) string // Sets foreground color
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	muted lipgloss.Style
}

func NewPalette(t, s, e, w, m string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		muted: NewEm(m),
	}
}

// On renders s on a background of c.
func (p *Palette) On(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Background(c).Render(s)
}

// As renders s in the foreground colour c.
func (p *Palette) As(s string, c lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(c).Render(s)
}

var _ Painter = (*Palette)(nil)

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

func Title(s string) string { return styles.title.Render(s) }
func OK(s string) string    { return styles.ok.Render(s) }
func Err(s string) string   { return styles.err.Render(s) }
func Warn(s string) string  { return styles.warn.Render(s) }
func Muted(s string) string { return styles.muted.Render(s) }

// badge colours keyed by status, stage or batch state
var badgeColors = map[string]lipgloss.Color{
	"new":          "#5FAFFF",
	"applied":      "#5FAFFF",
	"draft":        "#626262",
	"pending":      "#626262",
	"screening":    "#FFA500",
	"sending":      "#FFA500",
	"paused":       "#FFA500",
	"shortlisted":  "#AF87FF",
	"interviewing": "#7D56F4",
	"interview":    "#7D56F4",
	"scheduled":    "#7D56F4",
	"offered":      "#00AFAF",
	"offer":        "#00AFAF",
	"partial":      "#FFA500",
	"open":         "#04B575",
	"hired":        "#04B575",
	"completed":    "#04B575",
	"rejected":     "#FF0000",
	"failed":       "#FF0000",
	"closed":       "#626262",
	"cancelled":    "#626262",
}

// Badge renders a status value in its pipeline colour. Unknown values are left unstyled.
func Badge(status string) string {
	c, ok := badgeColors[status]
	if !ok {
		return status
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(status)
}
