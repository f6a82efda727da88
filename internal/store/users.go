package store

import (
	"context"
	"fmt"
)

// User is the Telegram identity recorded on every interaction.
type User struct {
	ID        int64
	FirstName string
	Username  string
}

// UpsertUser inserts the user or refreshes their names, bumps msg_count and
// moves last_seen to now.
func (s *Store) UpsertUser(ctx context.Context, u User) error {
	now := s.now()
	b := psql.Insert("users").
		Columns("user_id", "first_name", "username", "joined_at", "last_seen", "msg_count").
		Values(u.ID, u.FirstName, u.Username, now, now, 1).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			username = EXCLUDED.username,
			last_seen = EXCLUDED.last_seen,
			msg_count = users.msg_count + 1`)
	return s.exec(ctx, b, "upsert user")
}

// AllUserIDs returns every known user id, oldest first.
func (s *Store) AllUserIDs(ctx context.Context) ([]int64, error) {
	query, args, err := psql.Select("user_id").From("users").OrderBy("joined_at", "user_id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user ids: %w", err)
	}
	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "user ids")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "user ids")
	}
	return ids, nil
}
