package timetable

import (
	"regexp"
	"strings"

	"github.com/nconklindev/timetable/internal/types"
)

// CabinetDetectionRows bounds the statistical pass below a header row.
const CabinetDetectionRows = 18

const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
	hyphens   = `[-\x{2010}\x{2011}\x{2012}\x{2013}\x{2014}\x{2212}]`
	roomCode  = `[А-ЯA-Z]\s*\d{1,2}\s*` + hyphens + `\s*\d{2,3}`
)

var (
	cabinetRx = regexp.MustCompile(`(?i)` +
		wordStart + `каб(?:инет)?\.?\s*[:\-]?\s*([A-Za-zА-Яа-я0-9_/ \t\-]+)` +
		`|` + wordStart + `(` + roomCode + `(?:\s*/\s*` + roomCode + `)*)` + wordEnd +
		`|` + wordStart + `(спортзал(?:\s*\d+)?|актовый зал|спорт[ .\-]?зал|ауд\.?\s*\d+)` + wordEnd)

	// roomTokenRx accepts plain room numbers, only in a known cabinet column.
	roomTokenRx = regexp.MustCompile(`^[A-ZА-Я]{0,2}-?\d{1,4}[A-ZА-Я]?(?:/[A-ZА-Я]{0,2}-?\d{1,4}[A-ZА-Я]?)*$`)
)

// ExtractCabinet finds a room code in a cell and returns it normalized:
// whitespace removed, hyphens unified, upper case, Ё folded to Е.
func ExtractCabinet(cell string) (string, bool) {
	for _, line := range strings.Split(NormalizeHyphens(NormSoft(cell)), "\n") {
		if line == "" {
			continue
		}
		m := cabinetRx.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, g := range m[1:] {
			if code := canonicalCode(g); code != "" {
				return code, true
			}
		}
	}
	return "", false
}

// extractTrustedCabinet is ExtractCabinet for cells of a detected cabinet
// column, where a bare number is a room as well.
func extractTrustedCabinet(cell string) (string, bool) {
	if code, ok := ExtractCabinet(cell); ok {
		return code, true
	}
	code := canonicalCode(Norm(NormalizeHyphens(cell)))
	if code != "" && roomTokenRx.MatchString(code) {
		return code, true
	}
	return "", false
}

func canonicalCode(s string) string {
	s = strings.Join(strings.Fields(NormalizeHyphens(s)), "")
	s = strings.ToUpper(s)
	return strings.ReplaceAll(s, "Ё", "Е")
}

// DetectCabinetColumn looks for the column holding rooms for the class whose
// subject sits in subjCol. Header hints win; otherwise the column with the
// most recognizable codes in the first rows of the block is taken.
func DetectCabinetColumn(g types.Grid, headerRow, subjCol, endRow, rightBound int) (int, bool) {
	last := min(subjCol+3, rightBound)
	header := g[headerRow]

	for c := subjCol + 1; c <= last; c++ {
		if c < len(header) && strings.Contains(strings.ToLower(Norm(header[c])), "каб") {
			return c, true
		}
	}

	rowEnd := min(endRow, headerRow+1+CabinetDetectionRows)
	best, bestCount := -1, 0
	for c := subjCol + 1; c <= last; c++ {
		count := 0
		for r := headerRow + 1; r < rowEnd; r++ {
			if _, ok := ExtractCabinet(g.Cell(r, c)); ok {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = c, count
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// BuildCabinetMap computes the cabinet column and right bound of every label.
func BuildCabinetMap(g types.Grid, idx types.HeaderIndex, headers []int) types.CabinetMap {
	out := make(types.CabinetMap, len(idx))
	for label, pos := range idx {
		end := EndRow(len(g), pos.Row, headers)
		right := RightBound(g, idx, label)
		col, ok := DetectCabinetColumn(g, pos.Row, pos.SubjectCol, end, right)
		out[label] = types.CabinetInfo{Column: col, HasColumn: ok, RightBound: right}
	}
	return out
}
