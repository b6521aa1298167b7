// Package schedule parses the --at option of one-shot commands and waits
// for the time it names.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Parse resolves input against now, in now's location. Accepted forms:
//
//	+15m, +1h30m          a delay from now
//	15:04                 today, or tomorrow when already past
//	2006-01-02            midnight of that day
//	2006-01-02 15:04      a local date and time
//	2006-01-02T15:04      the same, ISO 8601 style
func Parse(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	local := now.Location()

	if rest, ok := strings.CutPrefix(input, "+"); ok {
		d, err := time.ParseDuration(rest)
		if err != nil || d < 0 {
			return time.Time{}, fmt.Errorf("invalid delay: %q", input)
		}
		return now.Add(d), nil
	}

	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, input, local); err == nil {
			return t, nil
		}
	}

	if t, err := time.ParseInLocation("15:04", input, local); err == nil {
		scheduled := time.Date(now.Year(), now.Month(), now.Day(),
			t.Hour(), t.Minute(), 0, 0, local)
		if scheduled.Before(now) {
			scheduled = scheduled.AddDate(0, 0, 1)
		}
		return scheduled, nil
	}

	return time.Time{}, fmt.Errorf("invalid schedule format: %q (supported: +DURATION, HH:MM, YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", YYYY-MM-DDTHH:MM)", input)
}
