package booking

import (
	"errors"
	"time"

	"github.com/nekogravitycat/flight-checker/internal/resource"
)

var (
	ErrSchemaMissing    = errors.New("schedule tables are missing")
	ErrInvalidTimeRange = errors.New("start time must be before end time")
)

// Booking is a reservation of one resource over [Start, End).
type Booking struct {
	ID           string
	ResourceID   string
	InstructorID *string // nil when no instructor is attached
	Start        time.Time
	End          time.Time
}

// Unavailability is a blackout period of one resource over [Start, End).
type Unavailability struct {
	ResourceID string
	Start      time.Time
	End        time.Time
}

// Schedule is the validated record set the availability engine works on.
type Schedule struct {
	Resources      []resource.Resource
	Bookings       []Booking
	Unavailability []Unavailability
}

// BookingsForResource returns the bookings placed on the given resource.
func (s *Schedule) BookingsForResource(resourceID string) []Booking {
	var out []Booking
	for _, b := range s.Bookings {
		if b.ResourceID == resourceID {
			out = append(out, b)
		}
	}
	return out
}

// BookingsForInstructor returns the bookings that keep the instructor busy:
// those the instructor is attached to, and those placed on the instructor resource itself.
func (s *Schedule) BookingsForInstructor(instructorID string) []Booking {
	var out []Booking
	for _, b := range s.Bookings {
		if b.ResourceID == instructorID || (b.InstructorID != nil && *b.InstructorID == instructorID) {
			out = append(out, b)
		}
	}
	return out
}

// UnavailabilityFor returns the blackout periods of the given resource.
func (s *Schedule) UnavailabilityFor(resourceID string) []Unavailability {
	var out []Unavailability
	for _, u := range s.Unavailability {
		if u.ResourceID == resourceID {
			out = append(out, u)
		}
	}
	return out
}
