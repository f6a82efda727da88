package timetable

import (
	"testing"

	"github.com/nconklindev/timetable/internal/types"
)

func TestFormatHTML(t *testing.T) {
	tests := []struct {
		name     string
		report   types.Report
		expected string
	}{
		{
			name:     "Empty",
			report:   types.Report{Date: "08.09", Label: "7А"},
			expected: "Пусто.",
		},
		{
			name: "Lessons",
			report: types.Report{
				Date:  "08.09",
				Label: "7А",
				Lessons: []types.Lesson{
					{Time: "09:00 - 09:45", Subject: "Математика", Room: "101"},
					{Time: "10:00 - 10:45", Subject: "—"},
					{Time: "обед", Subject: "R&D <lab>"},
				},
			},
			expected: "<b>РАСПИСАНИЕ НА 08.09</b>\n" +
				"Класс: <b>7А</b>\n" +
				"\n" +
				"1 — (09:00 - 09:45) <b>Математика</b>\n" +
				"Кабинет: <b>101</b>\n" +
				"2 — (10:00 - 10:45) —\n" +
				"3 — <b>R&amp;D &lt;lab&gt;</b>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatHTML(tt.report); got != tt.expected {
				t.Errorf("FormatHTML() =\n%s\nwant\n%s", got, tt.expected)
			}
		})
	}
}

func TestFormatPlain(t *testing.T) {
	r := types.Report{
		Date:    "08.09",
		Label:   "7А",
		Lessons: []types.Lesson{{Time: "09:00 - 09:45", Subject: "R&D", Room: "101"}},
	}

	want := "РАСПИСАНИЕ НА 08.09\nКласс: 7А\n\n1 — (09:00 - 09:45) R&D\nКабинет: 101"
	if got := FormatPlain(r); got != want {
		t.Errorf("FormatPlain() =\n%s\nwant\n%s", got, want)
	}
}
