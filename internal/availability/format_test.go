package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	loc := denver(t)

	tests := []struct {
		name string
		slot Interval
		want string
	}{
		{
			name: "Afternoon slot",
			slot: Interval{Start: at(loc, 9, 15, 0), End: at(loc, 9, 17, 0)},
			want: "N172SP & Jane Doe (CFI) free: 2026-02-09 03:00 PM -> 2026-02-09 05:00 PM (2.00h)",
		},
		{
			name: "Fractional duration",
			slot: Interval{Start: at(loc, 9, 9, 0), End: at(loc, 9, 10, 40)},
			want: "N172SP & Jane Doe (CFI) free: 2026-02-09 09:00 AM -> 2026-02-09 10:40 AM (1.67h)",
		},
		{
			name: "UTC input is shown in local time",
			slot: Interval{
				Start: time.Date(2026, 2, 9, 16, 0, 0, 0, time.UTC),
				End:   time.Date(2026, 2, 9, 19, 30, 0, 0, time.UTC),
			},
			want: "N172SP & Jane Doe (CFI) free: 2026-02-09 09:00 AM -> 2026-02-09 12:30 PM (3.50h)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(Opportunity{Aircraft: planeA, Instructor: instructor, Slot: tt.slot}, loc)
			assert.Equal(t, tt.want, got)
		})
	}
}
