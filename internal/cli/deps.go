package cli

import (
	"context"
	"log/slog"

	"github.com/nconklindev/timetable/internal/config"
	"github.com/nconklindev/timetable/internal/schedule"
	"github.com/nconklindev/timetable/internal/sheets"
	"github.com/nconklindev/timetable/internal/site"
	"github.com/nconklindev/timetable/internal/timetable"
	"github.com/nconklindev/timetable/internal/types"
	"github.com/nconklindev/timetable/internal/workbook"
)

// documents serves spreadsheet lookups, taking sheet metadata from the
// Sheets API when a key is configured.
type documents struct {
	*sheets.Client
	meta schedule.MetaResolver
}

func (d documents) SheetMeta(ctx context.Context, doc string) (types.SheetMeta, error) {
	return d.meta.SheetMeta(ctx, doc)
}

type live struct {
	site    *site.Scraper
	docs    documents
	service *schedule.Service
}

func newLive(ctx context.Context, cfg *config.Config, log *slog.Logger) (*live, error) {
	src := cfg.Source
	scraper := site.NewScraper(src.PageURL, src.Section, src.UserAgent, src.FetchTimeout, log)
	client := sheets.NewClient(src.UserAgent, src.FetchTimeout, log)

	docs := documents{Client: client, meta: client}
	if src.GoogleAPIKey != "" {
		api, err := sheets.NewAPIMeta(ctx, src.GoogleAPIKey, src.UserAgent)
		if err != nil {
			return nil, err
		}
		docs.meta = api
	}

	svc := schedule.NewService(
		schedule.Sources{Links: scraper, Docs: docs, Meta: docs, Grids: docs},
		schedule.NewCaches(),
		serviceOptions(cfg, log),
	)
	return &live{site: scraper, docs: docs, service: svc}, nil
}

func newOffline(path string, cfg *config.Config, log *slog.Logger) (*workbook.Workbook, *schedule.Service, error) {
	wb, err := workbook.Open(path)
	if err != nil {
		return nil, nil, err
	}
	svc := schedule.NewService(
		schedule.Sources{Links: wb, Docs: wb, Meta: wb, Grids: wb},
		schedule.NewCaches(),
		serviceOptions(cfg, log),
	)
	return wb, svc, nil
}

func serviceOptions(cfg *config.Config, log *slog.Logger) schedule.Options {
	return schedule.Options{
		Strategy:    timetable.StrategyByName(cfg.Extract.Dialect),
		Parallelism: cfg.Source.ProbeParallelism,
		Log:         log,
	}
}
