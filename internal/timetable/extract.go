package timetable

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nconklindev/timetable/internal/types"
)

var (
	timeRangeRx = regexp.MustCompile(`\d{1,2}[:.]\d{2}\s*[-–—]\s*\d{1,2}[:.]\d{2}`)
	timeDashRx  = regexp.MustCompile(`\s*[-–—]\s*`)
)

// Placeholder is the subject of a slot with no lesson.
const Placeholder = "—"

// Strategy turns one class block of an analyzed sheet into raw entries.
type Strategy interface {
	Name() string
	Entries(s *types.Sheet, label types.Label) []types.Entry
}

// StrategyByName resolves a configured dialect; unknown names fall back to
// FallbackStrategy.
func StrategyByName(name string) Strategy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PairedRowStrategy{}.Name():
		return PairedRowStrategy{}
	default:
		return FallbackStrategy{}
	}
}

// Extract returns the entries of label, or a *LookupError when the sheet has
// no such class.
func Extract(s *types.Sheet, label types.Label, strategy Strategy) ([]types.Entry, error) {
	if _, ok := s.Labels[label]; !ok {
		return nil, &LookupError{Label: label, Err: ErrLabelNotFound}
	}
	return strategy.Entries(s, label), nil
}

// NormalizeTime turns "9.00–9.45" into "9:00 - 9:45".
func NormalizeTime(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(NormalizeHyphens(Norm(s)), ".", ":"))
	return timeDashRx.ReplaceAllString(s, " - ")
}

// FallbackStrategy fills the time column down, takes the subject from the
// class column or from nearby cells, and searches several places for a room.
type FallbackStrategy struct{}

func (FallbackStrategy) Name() string { return "fallback" }

func (FallbackStrategy) Entries(s *types.Sheet, label types.Label) []types.Entry {
	g := s.Grid
	pos := s.Labels[label]
	cab := s.Cabinets[label]
	start := pos.Row + 1
	end := EndRow(len(g), pos.Row, s.Headers)
	if start >= end {
		return nil
	}

	times := fillDown(g, pos.TimeCol, start, end)

	var out []types.Entry
	for r := start; r < end; r++ {
		t := NormalizeTime(times[r-start])
		subj := strings.TrimSpace(NormSoft(g.Cell(r, pos.SubjectCol)))
		if t == "" && subj == "" {
			continue
		}
		if subj != "" && IsBareLabel(subj) {
			break
		}

		hasSubject := subj != ""
		if !hasSubject {
			if near, ok := subjectNearby(g, r, pos.SubjectCol, start, cab.RightBound); ok {
				subj, hasSubject = near, true
			} else {
				subj = Placeholder
			}
		}

		e := types.Entry{Time: t, Subject: subj, HasSubject: hasSubject}
		if subj != Placeholder {
			e.Room, _ = findRoom(g, r, pos.SubjectCol, cab)
		}
		out = append(out, e)
	}
	return out
}

// fillDown carries the last non-blank time cell down the block and copies the
// first one into any leading blank rows.
func fillDown(g types.Grid, col, start, end int) []string {
	times := make([]string, end-start)
	last := ""
	for r := start; r < end; r++ {
		if t := strings.TrimSpace(g.Cell(r, col)); t != "" {
			last = t
		}
		times[r-start] = last
	}
	first := ""
	for _, t := range times {
		if t != "" {
			first = t
			break
		}
	}
	for i := range times {
		if times[i] != "" {
			break
		}
		times[i] = first
	}
	return times
}

// subjectNearby picks the acceptable cell closest to subjCol in row r, then in
// row r-1. Ties go to the left.
func subjectNearby(g types.Grid, r, subjCol, blockStart, rightBound int) (string, bool) {
	left := max(0, subjCol-2)
	right := min(subjCol+6, rightBound)
	for _, rr := range []int{r, r - 1} {
		if rr < blockStart {
			continue
		}
		best, bestDist := "", -1
		for c := left; c < right; c++ {
			v := strings.TrimSpace(NormSoft(g.Cell(rr, c)))
			if !isSubjectCandidate(v) {
				continue
			}
			if d := abs(c - subjCol); bestDist < 0 || d < bestDist {
				best, bestDist = v, d
			}
		}
		if bestDist >= 0 {
			return best, true
		}
	}
	return "", false
}

func isSubjectCandidate(v string) bool {
	if v == "" || isPlaceholder(v) || !strings.ContainsFunc(v, unicode.IsLetter) {
		return false
	}
	if _, ok := ExtractCabinet(v); ok {
		return false
	}
	return !timeRangeRx.MatchString(NormalizeHyphens(v)) && !IsBareLabel(v)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// findRoom searches rows r, r+1 and r-1 in order: the cabinet column, the
// right neighbour, two more columns to the right, the subject cell, the left
// neighbour.
func findRoom(g types.Grid, r, subjCol int, cab types.CabinetInfo) (string, bool) {
	rows := []int{r, r + 1, r - 1}

	if cab.HasColumn {
		if code, ok := extractTrustedCabinet(g.Cell(r, cab.Column)); ok {
			return code, true
		}
		if code, ok := scanRows(g, rows[1:], cab.Column); ok {
			return code, true
		}
	}
	if code, ok := scanRows(g, rows, subjCol+1); ok {
		return code, true
	}
	for c := subjCol + 2; c <= min(subjCol+3, cab.RightBound); c++ {
		if code, ok := scanRows(g, rows, c); ok {
			return code, true
		}
	}
	if code, ok := scanRows(g, rows, subjCol); ok {
		return code, true
	}
	return scanRows(g, rows, subjCol-1)
}

func scanRows(g types.Grid, rows []int, col int) (string, bool) {
	for _, r := range rows {
		if code, ok := ExtractCabinet(g.Cell(r, col)); ok {
			return code, true
		}
	}
	return "", false
}

// PairedRowStrategy reads layouts where a lesson spans two rows: the subject
// on the first and its time on the second, with the room to the lower right.
type PairedRowStrategy struct{}

func (PairedRowStrategy) Name() string { return "paired" }

func (PairedRowStrategy) Entries(s *types.Sheet, label types.Label) []types.Entry {
	g := s.Grid
	pos := s.Labels[label]
	right := s.Cabinets[label].RightBound
	end := EndRow(len(g), pos.Row, s.Headers)
	roomCol := pos.SubjectCol + 1

	roomAt := func(r int) (string, bool) {
		if r >= end || roomCol > right {
			return "", false
		}
		return ExtractCabinet(g.Cell(r, roomCol))
	}

	var out []types.Entry
	for r := pos.Row + 1; r < end; {
		subj := strings.TrimSpace(NormSoft(g.Cell(r, pos.SubjectCol)))
		if subj != "" && IsBareLabel(subj) {
			break
		}

		here := NormSoft(g.Cell(r, pos.TimeCol))
		next := ""
		if r+1 < end {
			next = NormSoft(g.Cell(r+1, pos.TimeCol))
		}

		if subj != "" && next != "" && here == "" {
			e := types.Entry{Time: NormalizeTime(next), Subject: subj, HasSubject: true}
			e.Room, _ = roomAt(r + 1)
			out = append(out, e)
			r += 2
			continue
		}

		t := NormalizeTime(here)
		if t == "" && subj == "" {
			r++
			continue
		}

		e := types.Entry{Time: t, Subject: subj, HasSubject: subj != ""}
		if subj == "" {
			e.Subject = Placeholder
		} else {
			room, ok := roomAt(r)
			if !ok && here == "" {
				room, _ = roomAt(r + 1)
			}
			e.Room = room
		}
		out = append(out, e)
		r++
	}
	return out
}
