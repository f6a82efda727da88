package timetable

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nconklindev/timetable/internal/types"
)

// twoBlockGrid has header rows 0 and 20; 7А and 7Б share the first one.
func twoBlockGrid() types.Grid {
	g := make(types.Grid, 25)
	g[0] = []string{"", "Время", "7А", "Каб", "7Б", "Каб"}
	for r := 1; r < 20; r++ {
		g[r] = []string{"", "", "", "", "", ""}
	}
	g[1] = []string{"1", "08:30-09:15", "Алгебра", "204", "История", "305"}
	g[2] = []string{"2", "09:25-10:10", "Физика", "каб. 12", "Химия", "306"}
	g[20] = []string{"", "Время", "8А", "Каб"}
	g[21] = []string{"1", "08:30-09:15", "Биология", "401"}
	return g
}

func TestScanHeaders(t *testing.T) {
	idx, rows := ScanHeaders(twoBlockGrid())

	if !reflect.DeepEqual(rows, []int{0, 20}) {
		t.Fatalf("header rows = %v; want [0 20]", rows)
	}

	expected := types.HeaderIndex{
		"7А": {Row: 0, TimeCol: 1, SubjectCol: 2},
		"7Б": {Row: 0, TimeCol: 1, SubjectCol: 4},
		"8А": {Row: 20, TimeCol: 1, SubjectCol: 2},
	}
	if !reflect.DeepEqual(idx, expected) {
		t.Errorf("index = %v; want %v", idx, expected)
	}
}

func TestScanHeadersDeepestRowWins(t *testing.T) {
	g := types.Grid{
		{"Время", "7А"},
		{"08:30-09:15", "Алгебра"},
		{"ВРЕМЯ урока", "", "7А"},
		{"08:30-09:15", "", "Физика"},
	}

	idx, _ := ScanHeaders(g)
	want := types.HeaderPos{Row: 2, TimeCol: 0, SubjectCol: 2}
	if idx["7А"] != want {
		t.Errorf("7А = %+v; want %+v", idx["7А"], want)
	}
}

func TestScanHeadersLimit(t *testing.T) {
	g := make(types.Grid, HeaderScanLimit+2)
	g[HeaderScanLimit] = []string{"Время", "9А"}

	idx, rows := ScanHeaders(g)
	if len(rows) != 0 || len(idx) != 0 {
		t.Errorf("expected no headers past the scan limit, got rows=%v idx=%v", rows, idx)
	}
}

func TestAnalyzeNoHeader(t *testing.T) {
	_, err := Analyze(types.Grid{{"Математика", "101"}})
	if !errors.Is(err, ErrNoHeader) {
		t.Errorf("Analyze() error = %v; want ErrNoHeader", err)
	}
}

func TestBoundaries(t *testing.T) {
	g := twoBlockGrid()
	idx, rows := ScanHeaders(g)

	tests := []struct {
		label types.Label
		end   int
		right int
	}{
		{"7А", 20, 4},
		{"7Б", 20, 6},
		{"8А", 25, 6},
	}

	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			pos := idx[tt.label]
			if got := EndRow(len(g), pos.Row, rows); got != tt.end {
				t.Errorf("EndRow() = %d; want %d", got, tt.end)
			}
			right := RightBound(g, idx, tt.label)
			if right != tt.right {
				t.Errorf("RightBound() = %d; want %d", right, tt.right)
			}
			if right < pos.SubjectCol+1 || right > g.Width() {
				t.Errorf("RightBound() = %d outside [%d, %d]", right, pos.SubjectCol+1, g.Width())
			}
		})
	}
}
