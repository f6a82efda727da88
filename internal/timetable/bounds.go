package timetable

import (
	"sort"

	"github.com/nconklindev/timetable/internal/types"
)

// EndRow returns the first header row below headerRow, or rowCount when the
// block runs to the end of the sheet.
func EndRow(rowCount, headerRow int, headers []int) int {
	i := sort.SearchInts(headers, headerRow+1)
	if i < len(headers) {
		return headers[i]
	}
	return rowCount
}

// RightBound returns the subject column of the nearest label to the right on
// the same header row, or the grid width.
func RightBound(g types.Grid, idx types.HeaderIndex, label types.Label) int {
	pos := idx[label]
	right := g.Width()
	for other, p := range idx {
		if other == label || p.Row != pos.Row {
			continue
		}
		if p.SubjectCol > pos.SubjectCol && p.SubjectCol < right {
			right = p.SubjectCol
		}
	}
	return right
}
