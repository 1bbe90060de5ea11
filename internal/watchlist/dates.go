package watchlist

import (
	"strings"
	"time"
)

// zoned layouts carry their own offset
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon Jan 02 2006 15:04:05 GMT-0700",
	"Mon Jan 2 2006 15:04:05 GMT-0700",
}

// local layouts are read in the configured location
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"Mon Jan 02 2006",
}

// parseDate reads the timestamp formats found in dateLastCheck and annotation
// dates, including browser Date strings with a trailing "(zone name)".
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, " ("); i > 0 && strings.HasSuffix(s, ")") {
		s = s[:i]
	}
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sameDay compares the calendar days of two timestamps in loc.
// Two unparseable values are the same day; one unparseable value is not.
func sameDay(a, b string, loc *time.Location) bool {
	ta, okA := parseDate(a, loc)
	tb, okB := parseDate(b, loc)
	if !okA || !okB {
		return okA == okB
	}

	ya, ma, da := ta.In(loc).Date()
	yb, mb, db := tb.In(loc).Date()
	return ya == yb && ma == mb && da == db
}

// timestamp renders now for dateLastCheck and annotation dates
func timestamp(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(time.RFC3339)
}
