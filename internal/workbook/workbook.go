package workbook

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nconklindev/timetable/internal/types"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var (
	dateInNameRx = regexp.MustCompile(`(\d{1,2})[._-](\d{1,2})`)
	utf8BOM      = []byte{0xEF, 0xBB, 0xBF}
)

// Sheet is one named grid of a workbook.
type Sheet struct {
	Name string
	Grid types.Grid
}

// Workbook is a timetable read from a local file. It serves the same lookups
// as the published online documents: one date, one document, named sheets.
type Workbook struct {
	Path   string
	Date   string
	Sheets []Sheet
}

// Open reads a .csv or .xlsx file.
func Open(path string) (*Workbook, error) {
	ext := strings.ToLower(filepath.Ext(path))

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sheets []Sheet
	switch ext {
	case ".csv":
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		grid, err := ParseCSV(data)
		if err != nil {
			return nil, err
		}
		sheets = []Sheet{{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), Grid: grid}}
	case ".xlsx":
		sheets, err = ReadXLSX(f)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	return &Workbook{Path: path, Date: dateFromName(path), Sheets: sheets}, nil
}

// ParseCSV parses CSV text into a grid. Rows may have different lengths and
// stray quotes are tolerated. Input that is not valid UTF-8 is decoded as
// Windows-1251.
func ParseCSV(data []byte) (types.Grid, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode windows-1251: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	return types.Grid(records), nil
}

// ReadXLSX reads every sheet of an XLSX workbook in tab order.
func ReadXLSX(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Grid: types.Grid(rows)})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	return sheets, nil
}

func dateFromName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if m := dateInNameRx.FindStringSubmatch(base); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d.%02d", day, month)
	}
	return base
}

// Links reports the workbook as the only published timetable.
func (w *Workbook) Links(context.Context) ([]types.SheetLink, error) {
	return []types.SheetLink{{Title: filepath.Base(w.Path), URL: w.Path, Date: w.Date}}, nil
}

// Resolve maps the workbook link to itself.
func (w *Workbook) Resolve(_ context.Context, link string) (string, error) {
	return link, nil
}

// SheetMeta lists the workbook's sheets; sheet names are the sheet ids.
func (w *Workbook) SheetMeta(context.Context, string) (types.SheetMeta, error) {
	meta := types.SheetMeta{Titles: make(map[string]string, len(w.Sheets))}
	for _, s := range w.Sheets {
		meta.Titles[s.Name] = s.Name
		meta.IDs = append(meta.IDs, s.Name)
	}
	return meta, nil
}

// FetchGrid returns the grid of the named sheet.
func (w *Workbook) FetchGrid(_ context.Context, _ string, sheetID string) (types.Grid, error) {
	for _, s := range w.Sheets {
		if s.Name == sheetID {
			return s.Grid, nil
		}
	}
	return nil, fmt.Errorf("sheet %q not in %s", sheetID, filepath.Base(w.Path))
}
