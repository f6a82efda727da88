package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nconklindev/timetable/internal/types"
)

type fakeBrowser struct {
	linksErr  error
	reportErr error
}

func (f fakeBrowser) Links(context.Context) ([]types.SheetLink, error) {
	return []types.SheetLink{
		{Date: "01.09", URL: "https://school.example/01-09"},
		{Date: "02.09", URL: "https://school.example/02-09"},
	}, f.linksErr
}

func (fakeBrowser) Grades(context.Context, string) ([]int, error) { return []int{7, 8}, nil }

func (fakeBrowser) Labels(context.Context, string, int) (string, []types.Label, error) {
	return "10", []types.Label{"8А", "8Б"}, nil
}

func (f fakeBrowser) Schedule(_ context.Context, date, _ string, label string) (types.Report, error) {
	if f.reportErr != nil {
		return types.Report{}, f.reportErr
	}
	return types.Report{Date: date, Label: types.Label(label), Lessons: []types.Lesson{
		{Time: "08:30 - 09:15", Subject: "Химия", Room: "204"},
	}}, nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestBrowseToSchedule(t *testing.T) {
	ctx := context.Background()
	m := New(ctx, fakeBrowser{})
	assert.Equal(t, stateLoading, m.state)

	m = update(t, m, m.loadLinks()())
	require.Equal(t, stateDates, m.state)
	assert.Contains(t, m.View(), "01.09")

	m = update(t, m, key("down"))
	assert.Equal(t, 1, m.cursor)
	m = update(t, m, key("enter"))
	assert.Equal(t, stateLoading, m.state)
	assert.Equal(t, "02.09", m.date)

	m = update(t, m, m.loadGrades(m.date)())
	require.Equal(t, stateGrades, m.state)
	assert.Zero(t, m.cursor)
	assert.Contains(t, m.View(), "7 класс")

	m = update(t, m, key("j"))
	m = update(t, m, key("enter"))
	assert.Equal(t, 8, m.grade)

	m = update(t, m, m.loadLabels(m.date, m.grade)())
	require.Equal(t, stateClasses, m.state)
	assert.Equal(t, "10", m.sheetID)
	assert.Contains(t, m.View(), "02.09 · 8 класс")

	m = update(t, m, key("enter"))
	m = update(t, m, m.loadReport(m.date, m.sheetID, "8А")())
	require.Equal(t, stateSchedule, m.state)
	view := m.View()
	assert.Contains(t, view, "Химия")
	assert.Contains(t, view, "Кабинет: 204")
	assert.Contains(t, view, "https://school.example/02-09")

	m = update(t, m, key("esc"))
	assert.Equal(t, stateClasses, m.state)
	m = update(t, m, key("esc"))
	assert.Equal(t, stateGrades, m.state)
	m = update(t, m, key("esc"))
	assert.Equal(t, stateDates, m.state)
}

func TestErrorReturnsToPreviousStep(t *testing.T) {
	m := New(context.Background(), fakeBrowser{reportErr: errors.New("sheet gone")})
	m = update(t, m, m.loadLinks()())
	m = update(t, m, m.loadGrades("01.09")())
	m = update(t, m, m.loadLabels("01.09", 7)())

	m = update(t, m, m.loadReport("01.09", "10", "8А")())
	require.Equal(t, stateError, m.state)
	assert.True(t, strings.Contains(m.View(), "sheet gone"))

	m = update(t, m, key("enter"))
	assert.Equal(t, stateClasses, m.state)
}

func TestLinksErrorQuits(t *testing.T) {
	m := New(context.Background(), fakeBrowser{linksErr: errors.New("offline")})
	m = update(t, m, m.loadLinks()())
	require.Equal(t, stateError, m.state)

	_, cmd := m.Update(key("enter"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestFilePickerOpensWorkbook(t *testing.T) {
	opened := ""
	m := NewWithFilePicker(context.Background(), func(path string) (Browser, error) {
		opened = path
		return fakeBrowser{}, nil
	})
	assert.Equal(t, stateFilePicker, m.state)

	msg := m.openFile("/tmp/01.09.xlsx")()
	assert.Equal(t, "/tmp/01.09.xlsx", opened)

	m = update(t, m, msg)
	assert.Equal(t, stateLoading, m.state)
	m = update(t, m, m.loadLinks()())
	assert.Equal(t, stateDates, m.state)

	m = update(t, m, key("esc"))
	assert.Equal(t, stateFilePicker, m.state)
}
