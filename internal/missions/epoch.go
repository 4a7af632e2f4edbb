package missions

import (
	"fmt"
	"time"
)

// DailyKey returns the daily epoch key (yyyy-MM-dd) for t in loc.
func DailyKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// WeeklyKey returns the ISO-8601 week key (YYYY-Www) for t in loc. Weeks
// start on Monday and the year is the ISO week-year, so 2027-01-01 (a
// Friday) belongs to 2026-W53.
func WeeklyKey(t time.Time, loc *time.Location) string {
	year, week := t.In(loc).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}
