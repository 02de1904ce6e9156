package availability

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02" // Format "YYYY-MM-DD"
	TimeLayout  = "15:04"      // Format "HH:MM" in 24h
	MonthLayout = "2006-01"
)

// Slot is a clock time on the clinic's daily grid.
type Slot struct {
	Hour   int
	Minute int
}

// ParseSlot parses a "HH:MM" string. Seconds ("HH:MM:SS") are accepted and dropped,
// which is how Postgres renders time columns.
func ParseSlot(s string) (Slot, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		t, err = time.Parse("15:04:05", s)
		if err != nil {
			return Slot{}, fmt.Errorf("invalid time %q: expected HH:MM", s)
		}
	}
	return Slot{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// SlotOf returns the clock time of t in t's location.
func SlotOf(t time.Time) Slot {
	return Slot{Hour: t.Hour(), Minute: t.Minute()}
}

func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

func (s Slot) minutes() int {
	return s.Hour*60 + s.Minute
}

func slotAt(minutes int) Slot {
	return Slot{Hour: minutes / 60, Minute: minutes % 60}
}

// ParseMonth parses "YYYY-MM" into the first day of that month in loc.
func ParseMonth(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(MonthLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return t, nil
}

// ParseDate parses "YYYY-MM-DD" as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}
