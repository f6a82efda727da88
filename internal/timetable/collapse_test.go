package timetable

import (
	"reflect"
	"testing"

	"github.com/nconklindev/timetable/internal/types"
)

func TestTimeKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"9:00 - 9:45", "09:00-09:45"},
		{"09.00-09.45", "09:00-09:45"},
		{"10:20 — 11:05", "10:20-11:05"},
		{" обед ", "обед"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := TimeKey(tt.input); got != tt.expected {
				t.Errorf("TimeKey(%q) = %q; want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCollapse(t *testing.T) {
	entries := []types.Entry{
		{Time: "9:00 - 9:45", Subject: "Английский", HasSubject: true, Room: "204"},
		{Time: "10:00 - 10:45", Subject: "—"},
		{Time: "09:00-09:45", Subject: "Информатика", HasSubject: true, Room: "305"},
		{Time: "09:00 - 09:45", Subject: "Английский", HasSubject: true, Room: "204"},
		{Time: "", Subject: "Классный час", HasSubject: true},
		{Time: "обед", Subject: "—"},
	}

	got := Collapse(entries)
	want := []types.Lesson{
		{Time: "09:00 - 09:45", Subject: "Английский / Информатика", Room: "204/305"},
		{Time: "10:00 - 10:45", Subject: "—"},
		{Time: "обед", Subject: "—"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Collapse() = %+v; want %+v", got, want)
	}
}

func TestCollapseIdempotent(t *testing.T) {
	entries := []types.Entry{
		{Time: "8.30-9.15", Subject: "Алгебра", HasSubject: true, Room: "12"},
		{Time: "8:30 - 9:15", Subject: "Геометрия", HasSubject: true, Room: "А2-101"},
		{Time: "9:25-10:10", Subject: "—"},
		{Time: "перемена", Subject: "Физкультура", HasSubject: true, Room: "СПОРТЗАЛ"},
	}

	once := Collapse(entries)
	again := make([]types.Entry, len(once))
	for i, l := range once {
		again[i] = types.Entry{Time: l.Time, Subject: l.Subject, HasSubject: l.Subject != Placeholder, Room: l.Room}
	}
	twice := Collapse(again)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Collapse is not idempotent:\n once  %+v\n twice %+v", once, twice)
	}
}
