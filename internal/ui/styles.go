package ui

import (
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/lipgloss"
)

const (
	colorAccent = lipgloss.Color("#FF8C42")
	colorSoft   = lipgloss.Color("#FFB84D")
	colorMuted  = lipgloss.Color("#6B7280")
	colorText   = lipgloss.Color("#FFFFFF")
	colorError  = lipgloss.Color("#FF4757")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginTop(1)

	// LinkStyle renders the source document of the shown timetable.
	LinkStyle = lipgloss.NewStyle().
			Foreground(colorSoft).
			Underline(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(colorText)

	// CheckedStyle marks the date and grade picked so far.
	CheckedStyle = lipgloss.NewStyle().
			Foreground(colorSoft).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(colorSoft).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(colorMuted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)

	SpinnerStyle = lipgloss.NewStyle().Foreground(colorAccent)
)

func filePickerStyles() filepicker.Styles {
	st := filepicker.DefaultStyles()
	st.Cursor = lipgloss.NewStyle().Foreground(colorAccent)
	st.Symlink = lipgloss.NewStyle().Foreground(colorSoft)
	st.Directory = lipgloss.NewStyle().Foreground(colorSoft)
	st.File = lipgloss.NewStyle().Foreground(colorText)
	st.Permission = lipgloss.NewStyle().Foreground(colorMuted)
	st.Selected = SelectedStyle
	st.FileSize = lipgloss.NewStyle().Foreground(colorMuted)
	return st
}
