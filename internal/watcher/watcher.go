package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/nconklindev/timetable/internal/app"
	"github.com/nconklindev/timetable/internal/store"
	"github.com/nconklindev/timetable/internal/types"
)

type LinkSource interface {
	Links(ctx context.Context) ([]types.SheetLink, error)
}

// Documents resolves spreadsheet URLs and reads their sheets as raw CSV.
type Documents interface {
	Resolve(ctx context.Context, link string) (string, error)
	SheetMeta(ctx context.Context, doc string) (types.SheetMeta, error)
	FetchCSV(ctx context.Context, doc, gid string) ([]byte, error)
}

type Store interface {
	Schedules(ctx context.Context) (map[string]store.ScheduleLink, error)
	UpsertSchedule(ctx context.Context, date, linkURL, googleURL string) error
	SheetHash(ctx context.Context, date, gid string) (string, error)
	SetSheetHash(ctx context.Context, date, gid, title, hash string) error
}

// Schedules is the part of the schedule service the watcher keeps current.
type Schedules interface {
	SetLinks(links []types.SheetLink)
	RememberDocURL(date, doc string)
	Invalidate(date, sheetID string)
}

// Notifier delivers an HTML announcement to every subscriber.
type Notifier interface {
	Broadcast(ctx context.Context, text string) error
}

type Config struct {
	MinInterval time.Duration
	MaxInterval time.Duration
	Location    *time.Location
}

// Watcher polls the site for new dates and edited sheets.
type Watcher struct {
	links    LinkSource
	docs     Documents
	store    Store
	sched    Schedules
	notifier Notifier
	cfg      Config
	log      *slog.Logger
	now      func() time.Time
}

func New(links LinkSource, docs Documents, st Store, sched Schedules, n Notifier, cfg Config, log *slog.Logger) *Watcher {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MaxInterval < cfg.MinInterval {
		cfg.MaxInterval = cfg.MinInterval
	}
	return &Watcher{
		links:    links,
		docs:     docs,
		store:    st,
		sched:    sched,
		notifier: n,
		cfg:      cfg,
		log:      log.With("service", "watcher"),
		now:      time.Now,
	}
}

// Run checks immediately and then at random intervals until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		if err := w.CheckOnce(ctx); err != nil && ctx.Err() == nil {
			w.log.Error("check failed", "error", err)
		}

		wait := w.nextInterval()
		w.log.Debug("next check", "in", wait)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

func (w *Watcher) nextInterval() time.Duration {
	span := w.cfg.MaxInterval - w.cfg.MinInterval
	if span <= 0 {
		return w.cfg.MinInterval
	}
	return w.cfg.MinInterval + rand.N(span+1)
}

// CheckOnce announces new dates and edited sheets. A failed link fetch ends
// the pass silently; other per-date failures skip that date.
func (w *Watcher) CheckOnce(ctx context.Context) error {
	links, err := w.links.Links(ctx)
	if err != nil {
		w.log.Warn("fetch links", "error", err)
		return nil
	}

	known, err := w.store.Schedules(ctx)
	if err != nil {
		return fmt.Errorf("load schedules: %w", err)
	}

	for _, l := range links {
		if _, ok := known[l.Date]; ok {
			continue
		}
		if err := w.announceDate(ctx, l); err != nil {
			return err
		}
	}

	known, err = w.store.Schedules(ctx)
	if err != nil {
		return fmt.Errorf("load schedules: %w", err)
	}
	for _, date := range sortedDates(known) {
		if err := w.checkDate(ctx, date, known[date]); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Warn("check date", "date", date, "error", err)
		}
	}

	if len(links) > 0 {
		w.sched.SetLinks(links)
	}
	return nil
}

func (w *Watcher) announceDate(ctx context.Context, l types.SheetLink) error {
	doc, err := w.docs.Resolve(ctx, l.URL)
	if err != nil {
		w.log.Warn("resolve new date", "date", l.Date, "error", err)
		doc = ""
	}
	if err := w.store.UpsertSchedule(ctx, l.Date, l.URL, doc); err != nil {
		return fmt.Errorf("save %s: %w", l.Date, err)
	}
	if doc != "" {
		w.sched.RememberDocURL(l.Date, doc)
	}
	w.log.Info("new date", "date", l.Date)
	w.broadcast(ctx, fmt.Sprintf("🆕 Появилось новое расписание на <b>%s</b>", html.EscapeString(l.Date)))
	return nil
}

func (w *Watcher) checkDate(ctx context.Context, date string, link store.ScheduleLink) error {
	doc := link.GoogleURL
	if doc == "" {
		var err error
		if doc, err = w.docs.Resolve(ctx, link.LinkURL); err != nil {
			return fmt.Errorf("resolve: %w", err)
		}
		if err := w.store.UpsertSchedule(ctx, date, link.LinkURL, doc); err != nil {
			return err
		}
		w.sched.RememberDocURL(date, doc)
	}

	meta, err := w.docs.SheetMeta(ctx, doc)
	if err != nil {
		return fmt.Errorf("sheet metadata: %w", err)
	}

	for _, gid := range sheetIDs(meta) {
		body, err := w.docs.FetchCSV(ctx, doc, gid)
		if err != nil {
			w.log.Debug("fetch sheet", "date", date, "gid", gid, "error", err)
			continue
		}
		if err := w.compare(ctx, date, gid, meta.Titles[gid], body); err != nil {
			return err
		}
	}
	return nil
}

// compare stores the sheet's hash and announces a change. The first hash of
// a sheet is recorded silently.
func (w *Watcher) compare(ctx context.Context, date, gid, title string, body []byte) error {
	sum := sha256.Sum256(body)
	h := hex.EncodeToString(sum[:])

	old, err := w.store.SheetHash(ctx, date, gid)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return w.store.SetSheetHash(ctx, date, gid, title, h)
	case err != nil:
		return err
	case old == h:
		return nil
	}

	if err := w.store.SetSheetHash(ctx, date, gid, title, h); err != nil {
		return err
	}
	w.sched.Invalidate(date, gid)

	if title == "" {
		title = "лист " + gid
	}
	w.log.Info("sheet changed", "date", date, "gid", gid, "title", title)
	w.broadcast(ctx, fmt.Sprintf("✏️ Обновлено расписание на <b>%s</b> — внесены правки в лист «%s»\n%s",
		html.EscapeString(date), html.EscapeString(title), app.FormatStamp(w.now(), w.cfg.Location)))
	return nil
}

func (w *Watcher) broadcast(ctx context.Context, text string) {
	if err := w.notifier.Broadcast(ctx, text); err != nil {
		w.log.Warn("broadcast", "error", err)
	}
}

func sheetIDs(meta types.SheetMeta) []string {
	if len(meta.IDs) > 0 {
		return meta.IDs
	}
	ids := make([]string, 0, len(meta.Titles))
	for id := range meta.Titles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedDates(m map[string]store.ScheduleLink) []string {
	out := make([]string, 0, len(m))
	for d := range m {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// LogNotifier writes announcements to the log instead of sending them.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Broadcast(_ context.Context, text string) error {
	n.Log.Info("announcement", "text", text)
	return nil
}
