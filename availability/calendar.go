// Package availability computes bookable days and clock times for the clinic.
//
// Everything here is a pure function of its arguments; callers pass the reference
// month and the occupied slots they loaded from storage.
package availability

import "time"

// WorkingDays returns every Monday-Friday date of month's calendar month, in month's
// location, skipping the given holidays. Days already past are included.
func WorkingDays(month time.Time, holidays ...time.Time) []time.Time {
	closed := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		closed[h.Format(DateLayout)] = struct{}{}
	}

	year, m, _ := month.Date()
	loc := month.Location()
	// Day 0 of the next month is the last day of this one.
	last := time.Date(year, m+1, 0, 0, 0, 0, 0, loc).Day()

	days := make([]time.Time, 0, last)
	for d := 1; d <= last; d++ {
		day := time.Date(year, m, d, 0, 0, 0, 0, loc)
		if !isWeekday(day) {
			continue
		}
		if _, ok := closed[day.Format(DateLayout)]; ok {
			continue
		}
		days = append(days, day)
	}
	return days
}

// ListWorkingDays is WorkingDays rendered as "YYYY-MM-DD" strings.
func ListWorkingDays(month time.Time, holidays ...time.Time) []string {
	days := WorkingDays(month, holidays...)
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.Format(DateLayout))
	}
	return out
}

// IsWorkingDay reports whether date is a weekday that is not one of holidays.
func IsWorkingDay(date time.Time, holidays ...time.Time) bool {
	if !isWeekday(date) {
		return false
	}
	key := date.Format(DateLayout)
	for _, h := range holidays {
		if h.Format(DateLayout) == key {
			return false
		}
	}
	return true
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}
