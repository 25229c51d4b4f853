package availability

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/belmontfield/dispatch/internal/domain"
)

// weekdayNames is scanned in order, so when a phrase names several weekdays
// the earliest name Sunday through Saturday wins, every time.
var weekdayNames = []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// ResolveDay turns a date expression into local midnight of a single calendar
// day in loc. Recognized: "today", "tomorrow", weekday names, and explicit
// dates (2006-01-02 or RFC 3339). A bare weekday name always rolls forward to
// the next occurrence, never today; only the "today" keyword is same-day.
func ResolveDay(expr string, now time.Time, loc *time.Location) (time.Time, error) {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	lc := strings.ToLower(strings.TrimSpace(expr))
	switch {
	case lc == "":
		return time.Time{}, errors.Mark(errors.New("empty date expression"), domain.ErrInvalidWindow)
	case strings.Contains(lc, "today"):
		return midnight, nil
	case strings.Contains(lc, "tomorrow"):
		return midnight.AddDate(0, 0, 1), nil
	}

	for i, name := range weekdayNames {
		if strings.Contains(lc, name) {
			ahead := int(time.Weekday(i)-local.Weekday()+7) % 7
			if ahead == 0 {
				ahead = 7
			}
			return midnight.AddDate(0, 0, ahead), nil
		}
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, expr, loc); err == nil {
			t = t.In(loc)
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, errors.Mark(errors.Newf("unrecognized date expression %q", expr), domain.ErrInvalidWindow)
}

// parseClock parses "HH:MM" into hours and minutes.
func parseClock(s string) (int, int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, errors.Newf("bad clock time %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errors.Newf("bad clock time %q", s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errors.Newf("bad clock time %q", s)
	}
	return hour, minute, nil
}
