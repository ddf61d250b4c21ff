package reports

import (
	"strings"
	"time"

	"restopos/internal/core/apperror"
)

// DefaultWindow is used when no start date is given.
const DefaultWindow = 30 * 24 * time.Hour

var dateLayouts = []string{time.DateOnly, time.RFC3339Nano, time.RFC3339}

// ParseDateRange turns optional start/end strings into a whole-day window in loc.
// Start is moved to 00:00:00.000 and end to 23:59:59.999 of their calendar days.
// A missing end means now; a missing start means 30 days before end.
func ParseDateRange(start, end string, now time.Time, loc *time.Location) (Period, error) {
	if loc == nil {
		loc = time.Local
	}

	endAt := now.In(loc)
	if strings.TrimSpace(end) != "" {
		t, err := parseDate(end, loc)
		if err != nil {
			return Period{}, apperror.NewInvalidInput("endDate", "endDate must be YYYY-MM-DD or RFC3339").WithDetail("value", end)
		}
		endAt = t
	}

	startAt := endAt.Add(-DefaultWindow)
	if strings.TrimSpace(start) != "" {
		t, err := parseDate(start, loc)
		if err != nil {
			return Period{}, apperror.NewInvalidInput("startDate", "startDate must be YYYY-MM-DD or RFC3339").WithDetail("value", start)
		}
		startAt = t
	}

	p := Period{StartDate: startOfDay(startAt), EndDate: endOfDay(endAt)}
	if p.StartDate.After(p.EndDate) {
		return Period{}, apperror.NewValidation("startDate must not be after endDate").
			WithDetail("startDate", start).
			WithDetail("endDate", end)
	}
	return p, nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range dateLayouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}
