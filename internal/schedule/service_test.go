package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nconklindev/timetable/internal/timetable"
	"github.com/nconklindev/timetable/internal/types"
)

// fakeSource serves an in-memory document through all four collaborator
// interfaces and counts calls.
type fakeSource struct {
	mu       sync.Mutex
	links    []types.SheetLink
	meta     types.SheetMeta
	grids    map[string]types.Grid
	linkErr  error
	calls    map[string]int
	onLinks  func(n int) []types.SheetLink
	onGrid   func(id string)
	resolved []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		links: []types.SheetLink{{Title: "Расписание на 01.09", URL: "https://site/01", Date: "01.09"}},
		meta: types.SheetMeta{
			Titles: map[string]string{"10": "7 классы", "20": "8 классы"},
			IDs:    []string{"10", "20"},
		},
		grids: map[string]types.Grid{
			"10": gradeGrid("7А", "7Б"),
			"20": gradeGrid("8А", "8Б"),
		},
		calls: map[string]int{},
	}
}

func gradeGrid(a, b string) types.Grid {
	return types.Grid{
		{"", "Время", a, "Каб", "Время", b, "Каб"},
		{"1", "08:30-09:15", "Математика", "101", "08:30-09:15", "История", "202"},
		{"2", "09:25-10:10", "Русский язык", "каб. 105", "09:25-10:10", "Физика", "203"},
	}
}

func (f *fakeSource) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSource) inc(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.calls[name]
}

func (f *fakeSource) Links(context.Context) ([]types.SheetLink, error) {
	n := f.inc("links")
	if f.linkErr != nil {
		return nil, f.linkErr
	}
	if f.onLinks != nil {
		return f.onLinks(n), nil
	}
	return f.links, nil
}

func (f *fakeSource) Resolve(_ context.Context, link string) (string, error) {
	f.inc("resolve")
	f.mu.Lock()
	f.resolved = append(f.resolved, link)
	f.mu.Unlock()
	return "doc:" + link, nil
}

func (f *fakeSource) SheetMeta(context.Context, string) (types.SheetMeta, error) {
	f.inc("meta")
	return f.meta, nil
}

func (f *fakeSource) FetchGrid(_ context.Context, _ string, id string) (types.Grid, error) {
	f.inc("grid:" + id)
	if f.onGrid != nil {
		f.onGrid(id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.grids[id]
	if !ok {
		return nil, errors.New("no such sheet")
	}
	return g, nil
}

func newTestService(f *fakeSource) *Service {
	return NewService(Sources{Links: f, Docs: f, Meta: f, Grids: f}, NewCaches(), Options{Parallelism: 2})
}

func TestLinksLoadOnce(t *testing.T) {
	f := newFakeSource()
	s := newTestService(f)

	for range 3 {
		links, err := s.Links(context.Background())
		require.NoError(t, err)
		require.Len(t, links, 1)
	}
	assert.Equal(t, 1, f.count("links"))
}

func TestLinksError(t *testing.T) {
	f := newFakeSource()
	f.linkErr = errors.New("offline")
	s := newTestService(f)

	_, err := s.Links(context.Background())
	assert.ErrorIs(t, err, f.linkErr)
}

func TestDocURLRefreshesUnknownDate(t *testing.T) {
	f := newFakeSource()
	f.onLinks = func(n int) []types.SheetLink {
		if n == 1 {
			return f.links
		}
		return append([]types.SheetLink{{URL: "https://site/02", Date: "02.09"}}, f.links...)
	}
	s := newTestService(f)

	doc, err := s.DocURL(context.Background(), "02.09")
	require.NoError(t, err)
	assert.Equal(t, "doc:https://site/02", doc)
	assert.Equal(t, 2, f.count("links"))

	_, err = s.DocURL(context.Background(), "02.09")
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("resolve"))
}

func TestDocURLUnknownDate(t *testing.T) {
	s := newTestService(newFakeSource())

	_, err := s.DocURL(context.Background(), "31.12")
	assert.ErrorIs(t, err, ErrDateNotFound)
}

func TestRememberDocURL(t *testing.T) {
	f := newFakeSource()
	s := newTestService(f)
	s.RememberDocURL("01.09", "doc:preset")

	doc, err := s.DocURL(context.Background(), "01.09")
	require.NoError(t, err)
	assert.Equal(t, "doc:preset", doc)
	assert.Zero(t, f.count("resolve"))
}

func TestGrades(t *testing.T) {
	t.Run("from titles", func(t *testing.T) {
		s := newTestService(newFakeSource())
		grades, err := s.Grades(context.Background(), "01.09")
		require.NoError(t, err)
		assert.Equal(t, []int{7, 8}, grades)
	})

	t.Run("untitled sheets offer full range", func(t *testing.T) {
		f := newFakeSource()
		f.meta.Titles = map[string]string{"10": "Лист1", "20": "Лист2"}
		s := newTestService(f)

		grades, err := s.Grades(context.Background(), "01.09")
		require.NoError(t, err)
		assert.Equal(t, []int{5, 6, 7, 8, 9, 10, 11}, grades)
	})
}

func TestSheetForGradeByTitle(t *testing.T) {
	f := newFakeSource()
	s := newTestService(f)

	id, sheet, err := s.SheetForGrade(context.Background(), "01.09", 8)
	require.NoError(t, err)
	assert.Equal(t, "20", id)
	assert.Contains(t, sheet.Labels, types.Label("8Б"))
	assert.Zero(t, f.count("grid:10"))

	_, _, err = s.SheetForGrade(context.Background(), "01.09", 8)
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("grid:20"))
}

func TestSheetForGradeProbes(t *testing.T) {
	f := newFakeSource()
	f.meta.Titles = map[string]string{"10": "Лист1", "20": "Лист2", "30": "Лист3"}
	f.meta.IDs = []string{"10", "20", "30"}
	s := newTestService(f)

	id, _, err := s.SheetForGrade(context.Background(), "01.09", 8)
	require.NoError(t, err)
	assert.Equal(t, "20", id)

	id, _, err = s.SheetForGrade(context.Background(), "01.09", 8)
	require.NoError(t, err)
	assert.Equal(t, "20", id)
	assert.Equal(t, 1, f.count("grid:20"))
}

func TestInvalidateDuringProbeDropsSheet(t *testing.T) {
	f := newFakeSource()
	f.meta.Titles = map[string]string{"10": "Лист1", "20": "Лист2"}
	f.meta.IDs = []string{"10", "20"}
	s := newTestService(f)
	f.onGrid = func(id string) {
		if id == "20" {
			s.Invalidate("01.09", "20")
		}
	}

	id, sheet, err := s.SheetForGrade(context.Background(), "01.09", 8)
	require.NoError(t, err)
	assert.Equal(t, "20", id)
	assert.NotNil(t, sheet)

	_, cached := s.caches.Sheets.Get(SheetKey{Date: "01.09", SheetID: "20"})
	assert.False(t, cached, "sheet invalidated while loading must not be cached")
}

func TestSheetForGradeMissing(t *testing.T) {
	f := newFakeSource()
	s := newTestService(f)

	_, _, err := s.SheetForGrade(context.Background(), "01.09", 11)
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestLabels(t *testing.T) {
	s := newTestService(newFakeSource())

	id, labels, err := s.Labels(context.Background(), "01.09", 7)
	require.NoError(t, err)
	assert.Equal(t, "10", id)
	assert.Equal(t, []types.Label{"7А", "7Б"}, labels)
}

func TestSchedule(t *testing.T) {
	s := newTestService(newFakeSource())

	r, err := s.Schedule(context.Background(), "01.09", "10", "7а")
	require.NoError(t, err)
	assert.Equal(t, types.Label("7А"), r.Label)
	assert.Equal(t, "01.09", r.Date)
	assert.Equal(t, []types.Lesson{
		{Time: "08:30 - 09:15", Subject: "Математика", Room: "101"},
		{Time: "09:25 - 10:10", Subject: "Русский язык", Room: "105"},
	}, r.Lessons)
}

func TestScheduleUnknownLabel(t *testing.T) {
	s := newTestService(newFakeSource())

	_, err := s.Schedule(context.Background(), "01.09", "10", "7В")
	assert.ErrorIs(t, err, timetable.ErrLabelNotFound)
}

func TestScheduleStaleSheetIDReprobes(t *testing.T) {
	s := newTestService(newFakeSource())

	r, err := s.Schedule(context.Background(), "01.09", "99", "8Б")
	require.NoError(t, err)
	require.NotEmpty(t, r.Lessons)
	assert.Equal(t, "История", r.Lessons[0].Subject)
}

func TestInvalidateRefetches(t *testing.T) {
	f := newFakeSource()
	s := newTestService(f)
	ctx := context.Background()

	_, err := s.Schedule(ctx, "01.09", "10", "7А")
	require.NoError(t, err)

	f.mu.Lock()
	f.grids["10"] = types.Grid{
		{"Время", "7А"},
		{"08:30-09:15", "Химия"},
	}
	f.mu.Unlock()
	s.Invalidate("01.09", "10")

	r, err := s.Schedule(ctx, "01.09", "10", "7А")
	require.NoError(t, err)
	require.Len(t, r.Lessons, 1)
	assert.Equal(t, "Химия", r.Lessons[0].Subject)
	assert.Equal(t, 2, f.count("grid:10"))
}
