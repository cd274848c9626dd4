package booking

import (
	"context"
	"time"

	"github.com/nekogravitycat/flight-checker/internal/resource"
)

// DBSource assembles a Schedule from the local Postgres tables.
type DBSource struct {
	resRepo     resource.Repository
	bookingRepo Repository
}

func NewDBSource(resRepo resource.Repository, bookingRepo Repository) *DBSource {
	return &DBSource{
		resRepo:     resRepo,
		bookingRepo: bookingRepo,
	}
}

// Fetch loads resources plus every booking and blackout overlapping [start, end).
func (s *DBSource) Fetch(ctx context.Context, start, end time.Time) (*Schedule, error) {
	resources, err := s.resRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.ListBookings(ctx, start, end)
	if err != nil {
		return nil, err
	}
	periods, err := s.bookingRepo.ListUnavailability(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &Schedule{
		Resources:      resources,
		Bookings:       bookings,
		Unavailability: periods,
	}, nil
}
