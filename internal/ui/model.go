package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nconklindev/timetable/internal/timetable"
	"github.com/nconklindev/timetable/internal/types"
	"github.com/nconklindev/timetable/internal/workbook"
)

// Browser is the schedule service as seen by the terminal UI.
type Browser interface {
	Links(ctx context.Context) ([]types.SheetLink, error)
	Grades(ctx context.Context, date string) ([]int, error)
	Labels(ctx context.Context, date string, grade int) (string, []types.Label, error)
	Schedule(ctx context.Context, date, sheetID, label string) (types.Report, error)
}

// Opener turns a picked workbook file into a Browser.
type Opener func(path string) (Browser, error)

var errNoLinks = errors.New("не нашёл ни одного расписания")

type state int

const (
	stateFilePicker state = iota
	stateLoading
	stateDates
	stateGrades
	stateClasses
	stateSchedule
	stateError
)

type Model struct {
	ctx     context.Context
	browser Browser
	open    Opener

	state      state
	filepicker filepicker.Model
	spinner    spinner.Model
	loading    string

	links   []types.SheetLink
	grades  []int
	sheetID string
	labels  []types.Label
	report  types.Report
	cursor  int

	date  string
	grade int

	exported string
	err      error
	back     state
	width    int
	height   int
}

type linksMsg struct {
	links []types.SheetLink
	err   error
}

type gradesMsg struct {
	grades []int
	err    error
}

type labelsMsg struct {
	sheetID string
	labels  []types.Label
	err     error
}

type reportMsg struct {
	report types.Report
	err    error
}

type openedMsg struct {
	browser Browser
	err     error
}

type exportedMsg struct {
	path string
	err  error
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return s
}

// New starts the UI on the list of published dates.
func New(ctx context.Context, b Browser) Model {
	return Model{
		ctx:     ctx,
		browser: b,
		state:   stateLoading,
		loading: "Ищу расписания…",
		spinner: newSpinner(),
	}
}

// NewWithFilePicker starts the UI on a file picker for local workbooks.
func NewWithFilePicker(ctx context.Context, open Opener) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".csv", ".xlsx"}
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles = filePickerStyles()

	return Model{
		ctx:        ctx,
		open:       open,
		state:      stateFilePicker,
		filepicker: fp,
		spinner:    newSpinner(),
	}
}

func (m Model) Init() tea.Cmd {
	if m.state == stateFilePicker {
		return m.filepicker.Init()
	}
	return tea.Batch(m.spinner.Tick, m.loadLinks())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filepicker.SetHeight(max(msg.Height-14, 5))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.state != stateFilePicker {
			return m.onKey(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case openedMsg:
		if msg.err != nil {
			return m.fail(msg.err, stateFilePicker)
		}
		m.browser = msg.browser
		return m.startLoading("Ищу расписания…", m.loadLinks())

	case linksMsg:
		if msg.err != nil {
			return m.fail(msg.err, m.rootState())
		}
		m.links = msg.links
		return m.enter(stateDates), nil

	case gradesMsg:
		if msg.err != nil {
			return m.fail(msg.err, stateDates)
		}
		m.grades = msg.grades
		return m.enter(stateGrades), nil

	case labelsMsg:
		if msg.err != nil {
			return m.fail(msg.err, stateGrades)
		}
		m.sheetID, m.labels = msg.sheetID, msg.labels
		return m.enter(stateClasses), nil

	case reportMsg:
		if msg.err != nil {
			return m.fail(msg.err, stateClasses)
		}
		m.report = msg.report
		m.exported = ""
		return m.enter(stateSchedule), nil

	case exportedMsg:
		if msg.err != nil {
			return m.fail(msg.err, stateSchedule)
		}
		m.exported = msg.path
		return m, nil
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			return m.startLoading("Открываю "+filepath.Base(path)+"…", m.openFile(path))
		}
		return m, cmd
	}

	return m, nil
}

func (m Model) rootState() state {
	if m.open != nil {
		return stateFilePicker
	}
	return stateError
}

func (m Model) enter(s state) Model {
	m.state = s
	m.cursor = 0
	return m
}

func (m Model) fail(err error, back state) (Model, tea.Cmd) {
	m.err = err
	m.back = back
	m.state = stateError
	return m, nil
}

func (m Model) startLoading(text string, load tea.Cmd) (Model, tea.Cmd) {
	m.state = stateLoading
	m.loading = text
	return m, tea.Batch(m.spinner.Tick, load)
}

func (m Model) itemCount() int {
	switch m.state {
	case stateDates:
		return len(m.links)
	case stateGrades:
		return len(m.grades)
	case stateClasses:
		return len(m.labels)
	}
	return 0
}

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateLoading:
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case stateError:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc", "backspace", "enter":
			if m.back == stateError {
				return m, tea.Quit
			}
			m.err = nil
			return m.enter(m.back), nil
		}
		return m, nil

	case stateSchedule:
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc", "backspace":
			return m.enter(stateClasses), nil
		case "e":
			return m, m.export()
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < m.itemCount()-1 {
			m.cursor++
		}
	case "esc", "backspace":
		switch m.state {
		case stateClasses:
			return m.enter(stateGrades), nil
		case stateGrades:
			return m.enter(stateDates), nil
		case stateDates:
			if m.open != nil {
				m.browser = nil
				return m.enter(stateFilePicker), m.filepicker.Init()
			}
		}
	case "enter":
		return m.choose()
	}
	return m, nil
}

func (m Model) choose() (tea.Model, tea.Cmd) {
	if m.itemCount() == 0 {
		return m, nil
	}
	switch m.state {
	case stateDates:
		m.date = m.links[m.cursor].Date
		return m.startLoading("Загружаю список классов…", m.loadGrades(m.date))
	case stateGrades:
		m.grade = m.grades[m.cursor]
		return m.startLoading("Загружаю расписание…", m.loadLabels(m.date, m.grade))
	case stateClasses:
		label := string(m.labels[m.cursor])
		return m.startLoading("Загружаю расписание…", m.loadReport(m.date, m.sheetID, label))
	}
	return m, nil
}

func (m Model) openFile(path string) tea.Cmd {
	open := m.open
	return func() tea.Msg {
		b, err := open(path)
		return openedMsg{browser: b, err: err}
	}
}

func (m Model) loadLinks() tea.Cmd {
	ctx, b := m.ctx, m.browser
	return func() tea.Msg {
		links, err := b.Links(ctx)
		if err == nil && len(links) == 0 {
			err = errNoLinks
		}
		return linksMsg{links: links, err: err}
	}
}

func (m Model) loadGrades(date string) tea.Cmd {
	ctx, b := m.ctx, m.browser
	return func() tea.Msg {
		grades, err := b.Grades(ctx, date)
		return gradesMsg{grades: grades, err: err}
	}
}

func (m Model) loadLabels(date string, grade int) tea.Cmd {
	ctx, b := m.ctx, m.browser
	return func() tea.Msg {
		id, labels, err := b.Labels(ctx, date, grade)
		return labelsMsg{sheetID: id, labels: labels, err: err}
	}
}

func (m Model) loadReport(date, sheetID, label string) tea.Cmd {
	ctx, b := m.ctx, m.browser
	return func() tea.Msg {
		r, err := b.Schedule(ctx, date, sheetID, label)
		return reportMsg{report: r, err: err}
	}
}

// export writes the shown report to <date>_<label>.xlsx in the working directory.
func (m Model) export() tea.Cmd {
	r := m.report
	return func() tea.Msg {
		name := strings.NewReplacer(".", "-", "/", "-").Replace(r.Date) + "_" + string(r.Label) + ".xlsx"
		err := workbook.Export(name, r)
		return exportedMsg{path: name, err: err}
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateLoading:
		return BoxStyle.Render(m.spinner.View() + " " + m.loading)
	case stateDates:
		items := make([]string, len(m.links))
		for i, l := range m.links {
			items[i] = l.Date
		}
		return m.viewList("📅 Выбери дату", "", items)
	case stateGrades:
		items := make([]string, len(m.grades))
		for i, g := range m.grades {
			items[i] = fmt.Sprintf("%d класс", g)
		}
		return m.viewList("Выбери номер класса", m.date, items)
	case stateClasses:
		items := make([]string, len(m.labels))
		for i, l := range m.labels {
			items[i] = string(l)
		}
		if len(items) == 0 {
			items = []string{"Нет классов"}
		}
		return m.viewList("Выбери класс", fmt.Sprintf("%s · %d класс", m.date, m.grade), items)
	case stateSchedule:
		return m.viewSchedule()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("🗓 Timetable"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Выбери файл расписания (CSV или XLSX)"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("q: выход"))

	return s.String()
}

func (m Model) viewList(title, subtitle string, items []string) string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(title))
	s.WriteString("\n")
	if subtitle != "" {
		s.WriteString(CheckedStyle.Render(subtitle))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	for i, item := range items {
		line := "  " + item
		if m.cursor == i {
			line = SelectedStyle.Render("> " + item)
		} else {
			line = UnselectedStyle.Render(line)
		}
		s.WriteString(line)
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("↑/↓: выбор • enter: открыть • esc: назад • q: выход"))
	return BoxStyle.Render(s.String())
}

func (m Model) viewSchedule() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("🗓 Timetable"))
	s.WriteString("\n\n")
	s.WriteString(timetable.FormatPlain(m.report))
	s.WriteString("\n")
	if src := m.sourceURL(); src != "" {
		s.WriteString("\n")
		s.WriteString(LinkStyle.Render(src))
		s.WriteString("\n")
	}

	if m.exported != "" {
		s.WriteString("\n")
		s.WriteString(SuccessStyle.Render("✓ Сохранено: " + m.exported))
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("e: экспорт в XLSX • esc: назад • q: выход"))
	return BoxStyle.Render(s.String())
}

// sourceURL is the published link of the chosen date.
func (m Model) sourceURL() string {
	for _, l := range m.links {
		if l.Date == m.date {
			return l.URL
		}
	}
	return ""
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Ошибка"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("enter: назад • q: выход"))

	return BoxStyle.Render(s.String())
}
