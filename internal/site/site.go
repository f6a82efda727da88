package site

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/nconklindev/timetable/internal/scrape"
	"github.com/nconklindev/timetable/internal/types"
)

var (
	sectionRx = regexp.MustCompile(`(?i)образовательная\s+площадка\s*№\s*(\d+)`)
	titleRx   = regexp.MustCompile(`(?i)расписан\p{L}*\s+урок\p{L}*\s+на\s+(\d{2}\.\d{2})`)
)

// excluded link titles, lower case.
var excluded = []string{"начальная школа"}

// Scraper lists the timetable links published on the school page.
type Scraper struct {
	pageURL   string
	section   int
	userAgent string
	timeout   time.Duration
	log       *slog.Logger
}

func NewScraper(pageURL string, section int, userAgent string, timeout time.Duration, log *slog.Logger) *Scraper {
	return &Scraper{
		pageURL:   pageURL,
		section:   section,
		userAgent: userAgent,
		timeout:   timeout,
		log:       log.With("component", "site"),
	}
}

// Links returns the links of the configured section, newest date first.
func (s *Scraper) Links(ctx context.Context) ([]types.SheetLink, error) {
	c := scrape.NewCollector(ctx, s.userAgent, s.timeout)

	var links []types.SheetLink
	c.OnHTML("body", func(e *colly.HTMLElement) {
		links = collectLinks(e, s.section)
	})
	c.OnError(func(r *colly.Response, err error) {
		s.log.Warn("page fetch failed", slog.String("url", r.Request.URL.String()), slog.String("error", err.Error()))
	})

	if err := c.Visit(s.pageURL); err != nil {
		return nil, fmt.Errorf("visit %s: %w", s.pageURL, err)
	}
	c.Wait()

	s.log.Debug("links collected", slog.Int("count", len(links)))
	return links, nil
}

// collectLinks walks the page in document order. An element whose text names
// a section switches the current section; anchors below elements of the
// wanted section are taken when their title names a date.
func collectLinks(body *colly.HTMLElement, section int) []types.SheetLink {
	type key struct{ title, url string }
	var (
		cur   = -1
		order []key
		found = make(map[key]types.SheetLink)
	)

	body.ForEach("*", func(_ int, el *colly.HTMLElement) {
		text := norm(el.Text)
		if m := sectionRx.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				n = -1
			}
			cur = n
			return
		}
		if cur != section {
			return
		}

		el.ForEach("a[href]", func(_ int, a *colly.HTMLElement) {
			title := norm(a.Text)
			if isExcluded(title) {
				return
			}
			m := titleRx.FindStringSubmatch(title)
			if m == nil {
				return
			}
			link := types.SheetLink{Title: title, URL: a.Request.AbsoluteURL(a.Attr("href")), Date: m[1]}
			k := key{link.Title, link.URL}
			if _, seen := found[k]; !seen {
				order = append(order, k)
			}
			found[k] = link
		})
	})

	out := make([]types.SheetLink, 0, len(order))
	for _, k := range order {
		out = append(out, found[k])
	}
	SortByDateDesc(out)
	return out
}

// SortByDateDesc orders "dd.mm" links by month then day, newest first.
func SortByDateDesc(links []types.SheetLink) {
	sort.SliceStable(links, func(i, j int) bool {
		return dateOrdinal(links[i].Date) > dateOrdinal(links[j].Date)
	})
}

func dateOrdinal(date string) int {
	day, month, ok := strings.Cut(date, ".")
	if !ok {
		return 0
	}
	d, _ := strconv.Atoi(day)
	m, _ := strconv.Atoi(month)
	return m*100 + d
}

func isExcluded(title string) bool {
	lower := strings.ToLower(title)
	for _, x := range excluded {
		if strings.Contains(lower, x) {
			return true
		}
	}
	return false
}

func norm(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
