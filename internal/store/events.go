package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Event types recorded by the bot.
const (
	EventStart    = "start"
	EventOpenMenu = "open_menu"
	EventDate     = "pick_date"
	EventGrade    = "pick_grade"
	EventClass    = "pick_class"
	EventBack     = "back"
	EventNews     = "news"
	EventAdmin    = "admin"
)

// LogEvent appends an activity record for the user.
func (s *Store) LogEvent(ctx context.Context, userID int64, eventType, meta string) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("event id: %w", err)
	}
	b := psql.Insert("events").
		Columns("id", "user_id", "ts", "type", "meta").
		Values(id, userID, s.now(), eventType, meta)
	return s.exec(ctx, b, "log event")
}
