package timetable

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/nconklindev/timetable/internal/types"
)

var (
	timeKeyRx = regexp.MustCompile(`(\d{1,2}):(\d{2}).*?(\d{1,2}):(\d{2})`)
	fullKeyRx = regexp.MustCompile(`^\d{2}:\d{2}-\d{2}:\d{2}$`)
)

// TimeKey canonicalizes a time range to "HH:MM-HH:MM". Strings without two
// times are returned trimmed.
func TimeKey(t string) string {
	s := strings.TrimSpace(strings.ReplaceAll(t, ".", ":"))
	m := timeKeyRx.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[3])
	return fmt.Sprintf("%02d:%s-%02d:%s", from, m[2], to, m[4])
}

type slot struct {
	subjects []string
	rooms    []string
}

// Collapse merges entries sharing a time key, in first-seen order. Distinct
// subjects are joined with " / " and distinct rooms with "/"; rooms count only
// for real subjects. Entries without a time are dropped.
func Collapse(entries []types.Entry) []types.Lesson {
	var order []string
	slots := make(map[string]*slot)

	for _, e := range entries {
		k := TimeKey(e.Time)
		sl, ok := slots[k]
		if !ok {
			sl = &slot{}
			slots[k] = sl
			order = append(order, k)
		}

		subj := strings.TrimSpace(e.Subject)
		if subj == "" || isPlaceholder(subj) {
			continue
		}
		if !slices.Contains(sl.subjects, subj) {
			sl.subjects = append(sl.subjects, subj)
		}
		if room := strings.TrimSpace(e.Room); room != "" && !slices.Contains(sl.rooms, room) {
			sl.rooms = append(sl.rooms, room)
		}
	}

	out := make([]types.Lesson, 0, len(order))
	for _, k := range order {
		if k == "" {
			continue
		}
		sl := slots[k]
		subject := Placeholder
		if len(sl.subjects) > 0 {
			subject = strings.Join(sl.subjects, " / ")
		}
		out = append(out, types.Lesson{
			Time:    displayTime(k),
			Subject: subject,
			Room:    strings.Join(sl.rooms, "/"),
		})
	}
	return out
}

func displayTime(k string) string {
	if !fullKeyRx.MatchString(k) {
		return k
	}
	from, to, _ := strings.Cut(k, "-")
	return from + " - " + to
}
