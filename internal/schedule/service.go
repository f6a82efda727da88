package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/nconklindev/timetable/internal/cache"
	"github.com/nconklindev/timetable/internal/timetable"
	"github.com/nconklindev/timetable/internal/types"
)

// Grade range offered to users.
const (
	MinGrade = 5
	MaxGrade = 11
)

var (
	ErrDateNotFound  = errors.New("date not found")
	ErrSheetNotFound = errors.New("no sheet for grade")
)

type LinkSource interface {
	Links(ctx context.Context) ([]types.SheetLink, error)
}

type DocResolver interface {
	Resolve(ctx context.Context, link string) (string, error)
}

type MetaResolver interface {
	SheetMeta(ctx context.Context, doc string) (types.SheetMeta, error)
}

type GridFetcher interface {
	FetchGrid(ctx context.Context, doc, sheetID string) (types.Grid, error)
}

// Sources bundles the collaborators a Service reads timetables from.
type Sources struct {
	Links LinkSource
	Docs  DocResolver
	Meta  MetaResolver
	Grids GridFetcher
}

type SheetKey struct {
	Date    string
	SheetID string
}

type GradeKey struct {
	Date  string
	Grade int
}

// Caches holds the service's memoized lookups.
type Caches struct {
	Sheets  *cache.Store[SheetKey, *types.Sheet]
	DocURLs *cache.Store[string, string]
	ByGrade *cache.Store[GradeKey, string]
}

func NewCaches() Caches {
	return Caches{
		Sheets:  cache.New[SheetKey, *types.Sheet](),
		DocURLs: cache.New[string, string](),
		ByGrade: cache.New[GradeKey, string](),
	}
}

type Options struct {
	Strategy    timetable.Strategy
	Parallelism int
	Log         *slog.Logger
}

// Service answers timetable questions for published dates.
type Service struct {
	src         Sources
	caches      Caches
	strategy    timetable.Strategy
	parallelism int
	log         *slog.Logger

	mu     sync.RWMutex
	links  []types.SheetLink
	loaded bool
}

func NewService(src Sources, caches Caches, opts Options) *Service {
	if opts.Strategy == nil {
		opts.Strategy = timetable.FallbackStrategy{}
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 6
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	return &Service{
		src:         src,
		caches:      caches,
		strategy:    opts.Strategy,
		parallelism: opts.Parallelism,
		log:         opts.Log.With("service", "schedule"),
	}
}

// Links returns the known published dates, loading them on first use.
func (s *Service) Links(ctx context.Context) ([]types.SheetLink, error) {
	s.mu.RLock()
	links, loaded := s.links, s.loaded
	s.mu.RUnlock()
	if loaded {
		return links, nil
	}
	return s.RefreshLinks(ctx)
}

// SetLinks replaces the known dates.
func (s *Service) SetLinks(links []types.SheetLink) {
	cp := append([]types.SheetLink(nil), links...)
	s.mu.Lock()
	s.links, s.loaded = cp, true
	s.mu.Unlock()
}

func (s *Service) RefreshLinks(ctx context.Context) ([]types.SheetLink, error) {
	links, err := s.src.Links.Links(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch links: %w", err)
	}
	s.SetLinks(links)
	return links, nil
}

func (s *Service) linkFor(date string) (types.SheetLink, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.links {
		if l.Date == date {
			return l, true
		}
	}
	return types.SheetLink{}, false
}

// DocURL resolves the spreadsheet document published for date. Unknown dates
// trigger one refresh of the link list.
func (s *Service) DocURL(ctx context.Context, date string) (string, error) {
	return s.caches.DocURLs.GetOrLoad(ctx, date, func(ctx context.Context) (string, error) {
		if _, err := s.Links(ctx); err != nil {
			return "", err
		}
		link, ok := s.linkFor(date)
		if !ok {
			if _, err := s.RefreshLinks(ctx); err != nil {
				return "", err
			}
			if link, ok = s.linkFor(date); !ok {
				return "", fmt.Errorf("%s: %w", date, ErrDateNotFound)
			}
		}
		doc, err := s.src.Docs.Resolve(ctx, link.URL)
		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", date, err)
		}
		return doc, nil
	})
}

// RememberDocURL records an already resolved document for date.
func (s *Service) RememberDocURL(date, doc string) {
	s.caches.DocURLs.Set(date, doc)
}

// Grades lists the grades offered for date. Sheets whose titles name a grade
// are remembered; when no title does, the full range is offered.
func (s *Service) Grades(ctx context.Context, date string) ([]int, error) {
	doc, err := s.DocURL(ctx, date)
	if err != nil {
		return nil, err
	}
	quick, err := s.quickMatch(ctx, doc)
	if err != nil {
		return nil, err
	}

	grades := make([]int, 0, len(quick))
	for g, id := range quick {
		s.caches.ByGrade.Set(GradeKey{Date: date, Grade: g}, id)
		grades = append(grades, g)
	}
	if len(grades) == 0 {
		return allGrades(), nil
	}
	sort.Ints(grades)
	return grades, nil
}

func allGrades() []int {
	out := make([]int, 0, MaxGrade-MinGrade+1)
	for g := MinGrade; g <= MaxGrade; g++ {
		out = append(out, g)
	}
	return out
}

// quickMatch maps grades in range to the sheet whose title names them.
// Titles are visited in sheet order; the first sheet wins.
func (s *Service) quickMatch(ctx context.Context, doc string) (map[int]string, error) {
	meta, err := s.src.Meta.SheetMeta(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("sheet metadata: %w", err)
	}
	out := make(map[int]string)
	for _, id := range metaIDs(meta) {
		g, ok := timetable.GradeFromTitle(meta.Titles[id])
		if !ok || g < MinGrade || g > MaxGrade {
			continue
		}
		if _, seen := out[g]; !seen {
			out[g] = id
		}
	}
	return out, nil
}

// metaIDs returns the sheet ids in document order, falling back to the
// sorted title keys and finally to the first sheet.
func metaIDs(meta types.SheetMeta) []string {
	if len(meta.IDs) > 0 {
		return meta.IDs
	}
	ids := make([]string, 0, len(meta.Titles))
	for id := range meta.Titles {
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []string{"0"}
	}
	sort.Strings(ids)
	return ids
}

// SheetForGrade finds the sheet holding grade's classes: a remembered
// mapping first, then sheet titles, then a concurrent probe of every sheet.
func (s *Service) SheetForGrade(ctx context.Context, date string, grade int) (string, *types.Sheet, error) {
	doc, err := s.DocURL(ctx, date)
	if err != nil {
		return "", nil, err
	}

	gk := GradeKey{Date: date, Grade: grade}
	if id, ok := s.caches.ByGrade.Get(gk); ok {
		sheet, err := s.sheet(ctx, doc, SheetKey{Date: date, SheetID: id})
		if err == nil {
			return id, sheet, nil
		}
		s.log.Warn("remembered sheet failed", "date", date, "grade", grade, "sheet", id, "error", err)
		s.caches.ByGrade.Delete(gk)
	}

	quick, err := s.quickMatch(ctx, doc)
	if err != nil {
		return "", nil, err
	}
	if id, ok := quick[grade]; ok {
		sheet, err := s.sheet(ctx, doc, SheetKey{Date: date, SheetID: id})
		if err == nil {
			s.caches.ByGrade.Set(gk, id)
			return id, sheet, nil
		}
		s.log.Warn("titled sheet failed", "date", date, "grade", grade, "sheet", id, "error", err)
	}

	meta, err := s.src.Meta.SheetMeta(ctx, doc)
	if err != nil {
		return "", nil, fmt.Errorf("sheet metadata: %w", err)
	}
	id, sheet, err := s.probe(ctx, date, doc, grade, metaIDs(meta))
	if err != nil {
		return "", nil, err
	}
	s.caches.ByGrade.Set(gk, id)
	return id, sheet, nil
}

// Labels returns the sheet id and the sorted class labels of grade.
func (s *Service) Labels(ctx context.Context, date string, grade int) (string, []types.Label, error) {
	id, sheet, err := s.SheetForGrade(ctx, date, grade)
	if err != nil {
		return "", nil, err
	}
	return id, sheet.LabelsForGrade(grade, timetable.GradeFromLabel), nil
}

// Schedule extracts and collapses the lessons of label on the given sheet.
func (s *Service) Schedule(ctx context.Context, date, sheetID, label string) (types.Report, error) {
	l := canonicalLabel(label)

	doc, err := s.DocURL(ctx, date)
	if err != nil {
		return types.Report{}, err
	}
	sheet, err := s.sheet(ctx, doc, SheetKey{Date: date, SheetID: sheetID})
	if err != nil {
		grade, ok := timetable.GradeFromLabel(l)
		if !ok {
			return types.Report{}, err
		}
		s.log.Warn("sheet unavailable, probing by grade", "date", date, "sheet", sheetID, "error", err)
		if _, sheet, err = s.SheetForGrade(ctx, date, grade); err != nil {
			return types.Report{}, err
		}
	}

	entries, err := timetable.Extract(sheet, l, s.strategy)
	if err != nil {
		return types.Report{}, err
	}
	return types.Report{Date: date, Label: l, Lessons: timetable.Collapse(entries)}, nil
}

func canonicalLabel(label string) types.Label {
	if l, ok := timetable.ParseClassLabel(label); ok {
		return l
	}
	return types.Label(strings.ToUpper(strings.TrimSpace(label)))
}

// Invalidate drops the analyzed sheet so the next request refetches it.
func (s *Service) Invalidate(date, sheetID string) {
	s.caches.Sheets.Delete(SheetKey{Date: date, SheetID: sheetID})
}

func (s *Service) sheet(ctx context.Context, doc string, key SheetKey) (*types.Sheet, error) {
	return s.caches.Sheets.GetOrLoad(ctx, key, func(ctx context.Context) (*types.Sheet, error) {
		return s.load(ctx, doc, key.SheetID)
	})
}

func (s *Service) load(ctx context.Context, doc, sheetID string) (*types.Sheet, error) {
	grid, err := s.src.Grids.FetchGrid(ctx, doc, sheetID)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet %s: %w", sheetID, err)
	}
	sheet, err := timetable.Analyze(grid)
	if err != nil {
		return nil, fmt.Errorf("analyze sheet %s: %w", sheetID, err)
	}
	return sheet, nil
}
