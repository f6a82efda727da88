package types

import "sort"

// Grid is a sheet as a list of rows of cell text. Rows may differ in length.
type Grid [][]string

// Cell returns the cell at (r, c) or "" when the position is outside the grid.
func (g Grid) Cell(r, c int) string {
	if r < 0 || r >= len(g) || c < 0 || c >= len(g[r]) {
		return ""
	}
	return g[r][c]
}

// Width is the length of the longest row.
func (g Grid) Width() int {
	w := 0
	for _, row := range g {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Label is a canonical class label such as "7А" or "10ИНЖ".
type Label string

type HeaderPos struct {
	Row        int
	TimeCol    int
	SubjectCol int
}

type HeaderIndex map[Label]HeaderPos

type CabinetInfo struct {
	Column     int
	HasColumn  bool
	RightBound int
}

type CabinetMap map[Label]CabinetInfo

// Entry is one raw lesson row recovered from a class block.
type Entry struct {
	Time       string
	Subject    string
	HasSubject bool
	Room       string
}

// Lesson is a time slot after collapsing. Subject is "—" when the slot is empty.
type Lesson struct {
	Time    string
	Subject string
	Room    string
}

// Sheet is an analyzed grid ready for extraction.
type Sheet struct {
	Grid     Grid
	Labels   HeaderIndex
	Headers  []int
	Cabinets CabinetMap
}

// LabelsForGrade returns the sheet's labels whose grade equals grade, sorted.
func (s *Sheet) LabelsForGrade(grade int, gradeOf func(Label) (int, bool)) []Label {
	var out []Label
	for l := range s.Labels {
		if g, ok := gradeOf(l); ok && g == grade {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SheetLink is a published timetable link for one date ("dd.mm").
type SheetLink struct {
	Title string
	URL   string
	Date  string
}

// SheetMeta describes the sheets of one spreadsheet document.
type SheetMeta struct {
	Titles map[string]string
	IDs    []string
}

type Report struct {
	Date    string
	Label   Label
	Lessons []Lesson
}
