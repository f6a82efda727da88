package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
)

// SheetHash returns the last content hash seen for a sheet, or ErrNotFound.
func (s *Store) SheetHash(ctx context.Context, date, gid string) (string, error) {
	query, args, err := psql.Select("hash").From("sheet_hashes").
		Where(squirrel.Eq{"date_label": date, "gid": gid}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build sheet hash: %w", err)
	}
	var h string
	if err := s.q.QueryRow(ctx, query, args...).Scan(&h); err != nil {
		return "", mapError(err, "sheet hash")
	}
	return h, nil
}

func (s *Store) SetSheetHash(ctx context.Context, date, gid, title, hash string) error {
	b := psql.Insert("sheet_hashes").
		Columns("date_label", "gid", "title", "hash", "updated_at").
		Values(date, gid, title, hash, s.now()).
		Suffix(`ON CONFLICT (date_label, gid) DO UPDATE SET
			title = EXCLUDED.title,
			hash = EXCLUDED.hash,
			updated_at = EXCLUDED.updated_at`)
	return s.exec(ctx, b, "set sheet hash")
}
