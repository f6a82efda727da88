package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
)

const statsTopN = 10

type UserActivity struct {
	ID        int64
	FirstName string
	Username  string
	MsgCount  int64
	LastSeen  time.Time
}

type EventRecord struct {
	TS       time.Time
	Type     string
	UserID   int64
	Username string
	Meta     string
}

// Stats is the admin panel snapshot.
type Stats struct {
	Users     int64
	Events    int64
	Active24h int64
	Top       []UserActivity
	Recent    []EventRecord
}

func (s *Store) count(ctx context.Context, b squirrel.SelectBuilder, what string) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s: %w", what, err)
	}
	var n int64
	if err := s.q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, mapError(err, what)
	}
	return n, nil
}

// AdminStats collects totals, the ten most active users and the ten latest events.
func (s *Store) AdminStats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error

	if st.Users, err = s.count(ctx, psql.Select("COUNT(*)").From("users"), "count users"); err != nil {
		return Stats{}, err
	}
	if st.Events, err = s.count(ctx, psql.Select("COUNT(*)").From("events"), "count events"); err != nil {
		return Stats{}, err
	}
	active := psql.Select("COUNT(DISTINCT user_id)").From("events").
		Where(squirrel.GtOrEq{"ts": s.now().Add(-24 * time.Hour)})
	if st.Active24h, err = s.count(ctx, active, "count active"); err != nil {
		return Stats{}, err
	}

	if st.Top, err = s.topUsers(ctx); err != nil {
		return Stats{}, err
	}
	if st.Recent, err = s.recentEvents(ctx); err != nil {
		return Stats{}, err
	}
	return st, nil
}

func (s *Store) topUsers(ctx context.Context) ([]UserActivity, error) {
	query, args, err := psql.Select("user_id", "first_name", "username", "msg_count", "last_seen").
		From("users").
		OrderBy("msg_count DESC", "last_seen DESC").
		Limit(statsTopN).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top users: %w", err)
	}
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "top users")
	}
	defer rows.Close()

	var out []UserActivity
	for rows.Next() {
		var u UserActivity
		if err := rows.Scan(&u.ID, &u.FirstName, &u.Username, &u.MsgCount, &u.LastSeen); err != nil {
			return nil, fmt.Errorf("scan top user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) recentEvents(ctx context.Context) ([]EventRecord, error) {
	query, args, err := psql.Select("e.ts", "e.type", "u.user_id", "u.username", "e.meta").
		From("events e").
		Join("users u USING (user_id)").
		OrderBy("e.ts DESC", "e.id DESC").
		Limit(statsTopN).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent events: %w", err)
	}
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "recent events")
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var e EventRecord
		if err := rows.Scan(&e.TS, &e.Type, &e.UserID, &e.Username, &e.Meta); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
