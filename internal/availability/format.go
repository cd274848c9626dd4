package availability

import (
	"fmt"
	"time"
)

const displayLayout = "2006-01-02 03:04 PM"

// Format renders an opportunity as a single display line, with times in loc.
func Format(o Opportunity, loc *time.Location) string {
	return fmt.Sprintf("%s & %s free: %s -> %s (%.2fh)",
		o.Aircraft.Name,
		o.Instructor.Name,
		o.Slot.Start.In(loc).Format(displayLayout),
		o.Slot.End.In(loc).Format(displayLayout),
		o.Hours(),
	)
}
