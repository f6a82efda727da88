package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nconklindev/timetable/internal/schedule"
	"github.com/nconklindev/timetable/internal/timetable"
	"github.com/nconklindev/timetable/internal/workbook"
)

type reportFlags struct {
	class string
	html  bool
	out   string
}

// printReport finds the class's sheet, renders its lessons to w and
// optionally exports them.
func printReport(ctx context.Context, w io.Writer, svc *schedule.Service, date string, f reportFlags) error {
	label, ok := timetable.ParseClassLabel(f.class)
	if !ok {
		return fmt.Errorf("not a class label: %q", f.class)
	}
	grade, _ := timetable.GradeFromLabel(label)

	sheetID, _, err := svc.SheetForGrade(ctx, date, grade)
	if err != nil {
		return err
	}
	r, err := svc.Schedule(ctx, date, sheetID, string(label))
	if errors.Is(err, timetable.ErrLabelNotFound) {
		return fmt.Errorf("class %s is not on the %s timetable", label, date)
	}
	if err != nil {
		return err
	}

	text := timetable.FormatPlain(r)
	if f.html {
		text = timetable.FormatHTML(r)
	}
	if _, err := fmt.Fprintln(w, text); err != nil {
		return err
	}

	if f.out != "" {
		if err := workbook.Export(f.out, r); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	return nil
}
