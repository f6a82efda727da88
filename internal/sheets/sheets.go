package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/nconklindev/timetable/internal/scrape"
	"github.com/nconklindev/timetable/internal/types"
	"github.com/nconklindev/timetable/internal/workbook"
)

const spreadsheetsMarker = "docs.google.com/spreadsheets"

var (
	ErrNoSpreadsheetLink = errors.New("no google spreadsheet link")
	ErrBadSpreadsheetURL = errors.New("not a spreadsheet document url")
)

var (
	gidTitleRx     = regexp.MustCompile(`(?s)"gid"\s*:\s*(\d+).*?"title"\s*:\s*"([^"]+)"`)
	sheetIDTitleRx = regexp.MustCompile(`(?s)"sheetId"\s*:\s*(\d+).*?"title"\s*:\s*"([^"]+)"`)
	gidRxs         = []*regexp.Regexp{
		regexp.MustCompile(`[?&]gid=(\d+)`),
		regexp.MustCompile(`data-gid="(\d+)"`),
		regexp.MustCompile(`gid\\?":\s*"?(\d+)"?`),
	}
)

// SpreadsheetID extracts the document id from a .../spreadsheets/d/<id>/... URL.
func SpreadsheetID(doc string) (string, error) {
	u, err := url.Parse(doc)
	if err != nil {
		return "", err
	}
	parts := strings.Split(u.Path, "/")
	for i, p := range parts {
		if p == "d" && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1], nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrBadSpreadsheetURL, doc)
}

func rebuild(doc, tail string, query url.Values) (string, error) {
	u, err := url.Parse(doc)
	if err != nil {
		return "", err
	}
	id, err := SpreadsheetID(doc)
	if err != nil {
		return "", err
	}
	out := url.URL{
		Scheme:   u.Scheme,
		Host:     u.Host,
		Path:     "/spreadsheets/d/" + id + "/" + tail,
		RawQuery: query.Encode(),
	}
	return out.String(), nil
}

// HTMLViewURL is the public HTML rendering of a document.
func HTMLViewURL(doc string) (string, error) {
	return rebuild(doc, "htmlview", nil)
}

// CSVExportURL is the CSV export of one sheet of a document.
func CSVExportURL(doc, gid string) (string, error) {
	return rebuild(doc, "export", url.Values{"format": {"csv"}, "gid": {gid}})
}

// Client resolves published links to spreadsheet documents and reads them
// through their public HTML and CSV endpoints.
type Client struct {
	fetcher   *scrape.Fetcher
	userAgent string
	timeout   time.Duration
	log       *slog.Logger
}

func NewClient(userAgent string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		fetcher:   scrape.NewFetcher(userAgent, timeout),
		userAgent: userAgent,
		timeout:   timeout,
		log:       log.With("component", "sheets"),
	}
}

// Resolve returns link itself when it already is a spreadsheet URL, otherwise
// the first embedded iframe or anchor on the linked page that points to one.
func (c *Client) Resolve(ctx context.Context, link string) (string, error) {
	if strings.Contains(link, spreadsheetsMarker) {
		return link, nil
	}

	col := scrape.NewCollector(ctx, c.userAgent, c.timeout)
	var iframe, anchor string
	col.OnHTML(`iframe[src*="`+spreadsheetsMarker+`"]`, func(e *colly.HTMLElement) {
		if iframe == "" {
			iframe = e.Attr("src")
		}
	})
	col.OnHTML(`a[href*="`+spreadsheetsMarker+`"]`, func(e *colly.HTMLElement) {
		if anchor == "" {
			anchor = e.Attr("href")
		}
	})

	if err := col.Visit(link); err != nil {
		return "", fmt.Errorf("visit %s: %w", link, err)
	}
	col.Wait()

	switch {
	case iframe != "":
		return iframe, nil
	case anchor != "":
		return anchor, nil
	default:
		return "", fmt.Errorf("%s: %w", link, ErrNoSpreadsheetLink)
	}
}

// SheetMeta reads sheet ids and titles from the document's htmlview page.
// A document without any visible id has the single sheet "0".
func (c *Client) SheetMeta(ctx context.Context, doc string) (types.SheetMeta, error) {
	view, err := HTMLViewURL(doc)
	if err != nil {
		return types.SheetMeta{}, err
	}

	col := scrape.NewCollector(ctx, c.userAgent, c.timeout)
	titles := make(map[string]string)
	var body []byte
	col.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	col.OnHTML(`a[href*="gid="]`, func(e *colly.HTMLElement) {
		gid := gidFromHref(e.Attr("href"))
		title := strings.TrimSpace(e.Attr("aria-label"))
		if title == "" {
			title = strings.Join(strings.Fields(e.Text), " ")
		}
		if title != "" {
			titles[gid] = title
		}
	})

	if err := col.Visit(view); err != nil {
		return types.SheetMeta{}, fmt.Errorf("visit %s: %w", view, err)
	}
	col.Wait()

	meta := parseMeta(string(body), titles)
	c.log.Debug("sheet meta", slog.String("doc", doc), slog.Int("sheets", len(meta.IDs)))
	return meta, nil
}

func parseMeta(html string, titles map[string]string) types.SheetMeta {
	for _, rx := range []*regexp.Regexp{gidTitleRx, sheetIDTitleRx} {
		for _, m := range rx.FindAllStringSubmatch(html, -1) {
			if _, ok := titles[m[1]]; !ok {
				titles[m[1]] = m[2]
			}
		}
	}

	set := make(map[string]bool)
	for _, rx := range gidRxs {
		for _, m := range rx.FindAllStringSubmatch(html, -1) {
			set[m[1]] = true
		}
	}
	if len(set) == 0 {
		set["0"] = true
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return types.SheetMeta{Titles: titles, IDs: ids}
}

func gidFromHref(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return "0"
	}
	if gid := u.Query().Get("gid"); gid != "" {
		return gid
	}
	return "0"
}

// sortIDs orders numeric ids numerically and the rest lexically after them.
func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, errA := strconv.ParseInt(ids[i], 10, 64)
		b, errB := strconv.ParseInt(ids[j], 10, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}

// FetchCSV downloads the CSV export of one sheet.
func (c *Client) FetchCSV(ctx context.Context, doc, gid string) ([]byte, error) {
	u, err := CSVExportURL(doc, gid)
	if err != nil {
		return nil, err
	}
	return c.fetcher.Get(ctx, u)
}

// FetchGrid downloads and parses one sheet.
func (c *Client) FetchGrid(ctx context.Context, doc, gid string) (types.Grid, error) {
	data, err := c.FetchCSV(ctx, doc, gid)
	if err != nil {
		return nil, err
	}
	grid, err := workbook.ParseCSV(data)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", gid, err)
	}
	return grid, nil
}
