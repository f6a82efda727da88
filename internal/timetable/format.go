package timetable

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nconklindev/timetable/internal/types"
)

// EmptyReport is rendered instead of a report with no lessons.
const EmptyReport = "Пусто."

var showTimeRx = regexp.MustCompile(`\d{1,2}[:.]\d{2}.*\d{1,2}[:.]\d{2}`)

type markup struct {
	bold   func(string) string
	escape func(string) string
}

var (
	htmlMarkup = markup{
		bold:   func(s string) string { return "<b>" + s + "</b>" },
		escape: html.EscapeString,
	}
	plainMarkup = markup{
		bold:   func(s string) string { return s },
		escape: func(s string) string { return s },
	}
)

// FormatHTML renders a report for Telegram's HTML parse mode.
func FormatHTML(r types.Report) string {
	return format(r, htmlMarkup)
}

// FormatPlain renders a report without markup.
func FormatPlain(r types.Report) string {
	return format(r, plainMarkup)
}

func format(r types.Report, m markup) string {
	if len(r.Lessons) == 0 {
		return EmptyReport
	}
	lines := []string{
		m.bold("РАСПИСАНИЕ НА " + m.escape(r.Date)),
		"Класс: " + m.bold(m.escape(string(r.Label))),
		"",
	}
	return strings.Join(append(lines, lessonLines(r.Lessons, m)...), "\n")
}

func lessonLines(lessons []types.Lesson, m markup) []string {
	lines := make([]string, 0, len(lessons)*2)
	for i, l := range lessons {
		subj := Placeholder
		if l.Subject != "" && l.Subject != Placeholder {
			subj = m.bold(m.escape(l.Subject))
		}
		if showTimeRx.MatchString(l.Time) {
			lines = append(lines, fmt.Sprintf("%d — (%s) %s", i+1, m.escape(l.Time), subj))
		} else {
			lines = append(lines, fmt.Sprintf("%d — %s", i+1, subj))
		}
		if l.Room != "" {
			lines = append(lines, "Кабинет: "+m.bold(m.escape(l.Room)))
		}
	}
	return lines
}
