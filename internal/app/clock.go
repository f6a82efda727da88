package app

import "time"

// FormatStamp renders t the way user-facing messages show times:
// "02.01.2006 (15:04 MSK)" in loc.
func FormatStamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "—"
	}
	return t.In(loc).Format("02.01.2006 (15:04 MSK)")
}
