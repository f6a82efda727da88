package workbook

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/timetable/internal/types"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{"№", "Время", "Предмет", "Кабинет"}

// Export writes a report to a .csv or .xlsx file, one lesson per row.
func Export(path string, r types.Report) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return exportCSV(path, r)
	case ".xlsx":
		return exportXLSX(path, r)
	default:
		return fmt.Errorf("unsupported file type: %s", ext)
	}
}

func reportRows(r types.Report) [][]string {
	rows := [][]string{exportHeader}
	for i, l := range r.Lessons {
		rows = append(rows, []string{fmt.Sprint(i + 1), l.Time, l.Subject, l.Room})
	}
	return rows
}

func exportCSV(path string, r types.Report) error {
	outFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer outFile.Close()

	writer := csv.NewWriter(outFile)
	if err := writer.WriteAll(reportRows(r)); err != nil {
		return err
	}
	return outFile.Close()
}

func exportXLSX(path string, r types.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := string(r.Label)
	if sheetName == "" {
		sheetName = "Расписание"
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	for rowIdx, row := range reportRows(r) {
		for colIdx, val := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
