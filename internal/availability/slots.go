package availability

import (
	"sort"
)

// FreeSlots returns the gaps between busy intervals inside window, in chronological order.
// Busy intervals may be unsorted, overlapping or fall outside the window.
// Gaps shorter than minHours are dropped; pass 0 to keep every gap.
func FreeSlots(window Interval, busy []Interval, minHours float64) []Interval {
	relevant := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if !b.End.After(window.Start) || !b.Start.Before(window.End) {
			continue
		}
		relevant = append(relevant, b)
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].Start.Before(relevant[j].Start)
	})

	var free []Interval
	emit := func(gap Interval) {
		if gap.Hours() >= minHours {
			free = append(free, gap)
		}
	}

	cursor := window.Start
	for _, b := range relevant {
		if b.Start.After(cursor) {
			emit(Interval{Start: cursor, End: b.Start})
		}
		// The cursor only ever moves forward, so nested intervals cannot reopen a gap.
		if b.End.After(cursor) {
			cursor = b.End
		}
	}

	if window.End.After(cursor) {
		emit(Interval{Start: cursor, End: window.End})
	}

	return free
}
