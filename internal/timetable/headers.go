package timetable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nconklindev/timetable/internal/types"
)

// HeaderScanLimit is how many leading rows are searched for header rows.
const HeaderScanLimit = 400

var (
	ErrNoHeader      = errors.New("no header rows")
	ErrLabelNotFound = errors.New("class label not found")
)

// LookupError reports a class label that the sheet does not contain.
type LookupError struct {
	Label types.Label
	Err   error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("label %q: %v", e.Label, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// ScanHeaders finds header rows (a row with a "время" cell) and maps every
// class label on them to its position. A label seen again on a later header
// row overwrites the earlier entry.
func ScanHeaders(g types.Grid) (types.HeaderIndex, []int) {
	idx := make(types.HeaderIndex)
	var rows []int

	limit := min(len(g), HeaderScanLimit)
	for r := 0; r < limit; r++ {
		row := g[r]
		timeCol := -1
		for c, cell := range row {
			if strings.Contains(strings.ToLower(Norm(cell)), "время") {
				timeCol = c
				break
			}
		}
		if timeCol < 0 {
			continue
		}

		rows = append(rows, r)
		for c, cell := range row {
			if label, ok := ParseClassLabel(cell); ok {
				idx[label] = types.HeaderPos{Row: r, TimeCol: timeCol, SubjectCol: c}
			}
		}
	}
	return idx, rows
}

// Analyze prepares a grid for extraction.
func Analyze(g types.Grid) (*types.Sheet, error) {
	idx, headers := ScanHeaders(g)
	if len(headers) == 0 {
		return nil, ErrNoHeader
	}
	return &types.Sheet{
		Grid:     g,
		Labels:   idx,
		Headers:  headers,
		Cabinets: BuildCabinetMap(g, idx, headers),
	}, nil
}
