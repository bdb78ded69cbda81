package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/donorlens/schema"
)

// relativeTimeRe captures "N [units] ago", e.g. "2 years ago" or "3 weeks ago".
var relativeTimeRe = regexp.MustCompile(`^(\d+)\s+(year|month|week|day)s?\s+ago$`)

// ParseRelativeTime converts strings like "2 years ago" into a time before now.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	matches := relativeTimeRe.FindStringSubmatch(s)
	if len(matches) == 0 {
		return time.Time{}, fmt.Errorf("invalid relative time format: %s", s)
	}

	value, _ := strconv.Atoi(matches[1])
	switch matches[2] {
	case "year":
		return now.AddDate(-value, 0, 0), nil
	case "month":
		return now.AddDate(0, -value, 0), nil
	case "week":
		return now.AddDate(0, 0, -7*value), nil
	default: // day
		return now.AddDate(0, 0, -value), nil
	}
}

// ParseAsOf resolves the as-of flag. Empty means today. Accepted forms are
// YYYY-MM-DD, RFC3339, "today" and "N [units] ago". The result is a civil date.
func ParseAsOf(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "today":
		return schema.CivilDate(now), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return schema.CivilDate(t), nil
	}
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as-of date %q. Expected YYYY-MM-DD, RFC3339 or 'N [units] ago'", s)
	}
	return schema.CivilDate(t), nil
}
