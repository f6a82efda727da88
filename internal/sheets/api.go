package sheets

import (
	"context"
	"fmt"
	"strconv"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/nconklindev/timetable/internal/types"
)

// APIMeta reads sheet ids and titles through the Sheets API. It needs only an
// API key since the documents are public.
type APIMeta struct {
	service *sheetsapi.Service
}

func NewAPIMeta(ctx context.Context, apiKey, userAgent string, opts ...option.ClientOption) (*APIMeta, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey), option.WithUserAgent(userAgent)}, opts...)
	srv, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &APIMeta{service: srv}, nil
}

func (m *APIMeta) SheetMeta(ctx context.Context, doc string) (types.SheetMeta, error) {
	id, err := SpreadsheetID(doc)
	if err != nil {
		return types.SheetMeta{}, err
	}

	resp, err := m.service.Spreadsheets.Get(id).
		Fields("sheets.properties(sheetId,title)").
		Context(ctx).
		Do()
	if err != nil {
		return types.SheetMeta{}, fmt.Errorf("get spreadsheet %s: %w", id, err)
	}

	meta := types.SheetMeta{Titles: make(map[string]string, len(resp.Sheets))}
	for _, s := range resp.Sheets {
		if s.Properties == nil {
			continue
		}
		gid := strconv.FormatInt(s.Properties.SheetId, 10)
		meta.Titles[gid] = s.Properties.Title
		meta.IDs = append(meta.IDs, gid)
	}
	if len(meta.IDs) == 0 {
		meta.IDs = []string{"0"}
	}
	return meta, nil
}
