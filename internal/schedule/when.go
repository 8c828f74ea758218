package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Day indices run 0=Monday .. 6=Sunday.
var dayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// ParseDay resolves a day name to its index, case-insensitively.
func ParseDay(name string) (int, error) {
	trimmed := strings.TrimSpace(name)
	for i, d := range dayNames {
		if strings.EqualFold(trimmed, d) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown day name: %q", name)
}

// DayName returns the display name for a day index.
func DayName(day int) string {
	if day < 0 || day > 6 {
		return "?"
	}
	return dayNames[day]
}

// DayIndex converts a time.Weekday (Sunday=0) to our Monday=0 indexing.
func DayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// NextOccurrence resolves a day index and start hour to the next concrete
// calendar date, in now's location. A request for today whose start hour is
// already at or past the current hour rolls forward a full week: "today but
// already past" means next week, not today.
func NextOccurrence(now time.Time, day, startHour int) time.Time {
	today := DayIndex(now.Weekday())
	offset := (day - today + 7) % 7
	if offset == 0 && startHour <= now.Hour() {
		offset = 7
	}
	return time.Date(now.Year(), now.Month(), now.Day()+offset, startHour, 0, 0, 0, now.Location())
}

// YesterdayIndex computes the day index that has just elapsed, which the
// daily purge wipes to keep the rolling week bounded.
func YesterdayIndex(now time.Time) int {
	return (DayIndex(now.Weekday()) + 6) % 7
}
