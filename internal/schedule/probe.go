package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nconklindev/timetable/internal/timetable"
	"github.com/nconklindev/timetable/internal/types"
)

// errFound stops the probe group once a sheet matched.
var errFound = errors.New("found")

// probe fetches candidate sheets concurrently and returns the first one
// carrying a class of grade. Failed candidates are skipped.
func (s *Service) probe(ctx context.Context, date, doc string, grade int, ids []string) (string, *types.Sheet, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.parallelism)

	var (
		once    sync.Once
		foundID string
		found   *types.Sheet
	)

	for _, id := range ids {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			sheet, err := s.sheet(gctx, doc, SheetKey{Date: date, SheetID: id})
			if err != nil {
				s.log.Debug("probe candidate failed", "date", date, "sheet", id, "error", err)
				return nil
			}
			if len(sheet.LabelsForGrade(grade, timetable.GradeFromLabel)) == 0 {
				return nil
			}
			once.Do(func() { foundID, found = id, sheet })
			return errFound
		})
	}

	err := g.Wait()
	switch {
	case found != nil:
		return foundID, found, nil
	case err != nil && !errors.Is(err, errFound):
		return "", nil, err
	case ctx.Err() != nil:
		return "", nil, ctx.Err()
	default:
		return "", nil, fmt.Errorf("grade %d: %w", grade, ErrSheetNotFound)
	}
}
