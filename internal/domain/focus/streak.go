package focus

import (
	"time"

	"github.com/phrazzld/focus-api/internal/domain"
)

// CurrentStreak counts the consecutive study days ending at the most recent
// active day. The run is anchored at today when today is in history, else at
// yesterday; when neither is present the streak is 0. Entries that are not
// valid dates never match and are ignored.
func CurrentStreak(history []string, today string) int {
	day, err := time.Parse(domain.DateLayout, today)
	if err != nil || len(history) == 0 {
		return 0
	}

	studied := make(map[string]struct{}, len(history))
	for _, d := range history {
		studied[d] = struct{}{}
	}
	has := func(t time.Time) bool {
		_, ok := studied[t.Format(domain.DateLayout)]
		return ok
	}

	if !has(day) {
		day = day.AddDate(0, 0, -1)
		if !has(day) {
			return 0
		}
	}

	streak := 0
	for has(day) {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// ComboActive reports whether streak reaches the combo threshold.
func ComboActive(streak int, params *Params) bool {
	return streak >= params.ComboThreshold
}

// DayOf returns the calendar day of t in loc, formatted for the study history.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(domain.DateLayout)
}
