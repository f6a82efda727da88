package store

import (
	"context"
	"fmt"
)

// ScheduleLink is the persisted view of one published date.
type ScheduleLink struct {
	LinkURL   string
	GoogleURL string
}

// Schedules returns every known date keyed by its "dd.mm" label.
func (s *Store) Schedules(ctx context.Context) (map[string]ScheduleLink, error) {
	query, args, err := psql.Select("date_label", "link_url", "google_url").From("schedules").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build schedules: %w", err)
	}
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "schedules")
	}
	defer rows.Close()

	out := make(map[string]ScheduleLink)
	for rows.Next() {
		var date string
		var l ScheduleLink
		if err := rows.Scan(&date, &l.LinkURL, &l.GoogleURL); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out[date] = l
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "schedules")
	}
	return out, nil
}

// UpsertSchedule stores the link and resolved spreadsheet URL for a date.
// created_at is kept from the first insert.
func (s *Store) UpsertSchedule(ctx context.Context, date, linkURL, googleURL string) error {
	b := psql.Insert("schedules").
		Columns("date_label", "link_url", "google_url", "created_at").
		Values(date, linkURL, googleURL, s.now()).
		Suffix("ON CONFLICT (date_label) DO UPDATE SET link_url = EXCLUDED.link_url, google_url = EXCLUDED.google_url")
	return s.exec(ctx, b, "upsert schedule")
}
