package availability

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidQuery = errors.New("invalid availability query")

// Query describes the window to search and the constraints a slot has to meet.
type Query struct {
	Start        time.Time
	End          time.Time
	MinFreeHours float64
	StartHour    int // local business-day start, 0-23
	EndHour      int // local business-day end, 1-24
}

// Validate checks the query bounds.
func (q Query) Validate() error {
	if q.End.Before(q.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidQuery, q.End.Format(time.RFC3339), q.Start.Format(time.RFC3339))
	}
	if q.StartHour < 0 || q.StartHour > 23 {
		return fmt.Errorf("%w: start hour %d out of range", ErrInvalidQuery, q.StartHour)
	}
	if q.EndHour < 1 || q.EndHour > 24 {
		return fmt.Errorf("%w: end hour %d out of range", ErrInvalidQuery, q.EndHour)
	}
	if q.EndHour <= q.StartHour {
		return fmt.Errorf("%w: end hour %d must be after start hour %d", ErrInvalidQuery, q.EndHour, q.StartHour)
	}
	if q.MinFreeHours < 0 {
		return fmt.Errorf("%w: minimum free hours must not be negative", ErrInvalidQuery)
	}
	return nil
}

// Days returns the number of whole calendar days in loc spanned by [Start, End).
// A day is a local date step, so a 23 or 25 hour DST day still counts as one.
func (q Query) Days(loc *time.Location) int {
	if !q.End.After(q.Start) {
		return 0
	}
	start := q.Start.In(loc)
	n := 0
	for !start.AddDate(0, 0, n+1).After(q.End) {
		n++
	}
	return n
}

// DayWindows returns one business-hour window per day of the query.
// Day boundaries and hours are wall-clock times in loc, so DST shifts are honoured.
func DayWindows(q Query, loc *time.Location) []Interval {
	n := q.Days(loc)
	windows := make([]Interval, 0, n)
	for i := 0; i < n; i++ {
		y, m, d := q.Start.In(loc).AddDate(0, 0, i).Date()
		windows = append(windows, Interval{
			Start: time.Date(y, m, d, q.StartHour, 0, 0, 0, loc),
			End:   time.Date(y, m, d, q.EndHour, 0, 0, 0, loc),
		})
	}
	return windows
}
