package availability

import "time"

// Grid is the clinic's fixed daily set of bookable start times: every Step from Open,
// as long as the whole slot ends by Close.
type Grid struct {
	Open  Slot
	Close Slot
	Step  time.Duration
}

// DefaultGrid is 08:00-16:00 in one-hour slots (08:00 ... 15:00).
var DefaultGrid = Grid{
	Open:  Slot{Hour: 8},
	Close: Slot{Hour: 16},
	Step:  time.Hour,
}

// Slots returns every start time of the grid in ascending order. A grid with a
// non-positive step or a closing time not after the opening time is empty.
func (g Grid) Slots() []Slot {
	step := int(g.Step / time.Minute)
	if step <= 0 || g.Close.minutes() <= g.Open.minutes() {
		return nil
	}
	var slots []Slot
	for m := g.Open.minutes(); m+step <= g.Close.minutes(); m += step {
		slots = append(slots, slotAt(m))
	}
	return slots
}

// Contains reports whether s is one of the grid's start times.
func (g Grid) Contains(s Slot) bool {
	for _, slot := range g.Slots() {
		if slot == s {
			return true
		}
	}
	return false
}

// Available returns the grid minus occupied, in ascending order. Occupied times that are
// not on the grid match nothing and are ignored.
func (g Grid) Available(occupied []Slot) []Slot {
	taken := make(map[Slot]struct{}, len(occupied))
	for _, s := range occupied {
		taken[s] = struct{}{}
	}

	free := []Slot{}
	for _, s := range g.Slots() {
		if _, ok := taken[s]; !ok {
			free = append(free, s)
		}
	}
	return free
}

// ListAvailableSlots is Available rendered as "HH:MM" strings.
func (g Grid) ListAvailableSlots(occupied []Slot) []string {
	free := g.Available(occupied)
	out := make([]string, 0, len(free))
	for _, s := range free {
		out = append(out, s.String())
	}
	return out
}

// ListAvailableSlots lists the free slots of DefaultGrid.
func ListAvailableSlots(occupied []Slot) []string {
	return DefaultGrid.ListAvailableSlots(occupied)
}
