package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/nekogravitycat/flight-checker/internal/booking"
	"github.com/nekogravitycat/flight-checker/internal/resource"
)

var ErrInvalidPayload = errors.New("invalid schedule payload")

// Payload is the raw schedule response. Field names follow the upstream API.
type Payload struct {
	Results *Results `json:"results" validate:"required"`
}

type Results struct {
	Resources      []ResourceDTO       `json:"resources" validate:"required,dive"`
	Events         []EventDTO          `json:"events" validate:"required,dive"`
	Unavailability []UnavailabilityDTO `json:"unavailability" validate:"required,dive"`
}

type ResourceDTO struct {
	ID             string  `json:"Id" validate:"required"`
	Name           string  `json:"Name" validate:"required"`
	ResourceTypeID *int    `json:"ResourceTypeId" validate:"required"`
	AircraftMake   *string `json:"AircraftMake"`
}

type EventDTO struct {
	ResourceID   string    `json:"ResourceId" validate:"required"`
	StartAtUTC   Timestamp `json:"StartAtUtc" validate:"required"`
	EndAtUTC     Timestamp `json:"EndAtUtc" validate:"required"`
	InstructorID *string   `json:"InstructorId"`
}

type UnavailabilityDTO struct {
	ResourceID string    `json:"ResourceId" validate:"required"`
	StartDate  Timestamp `json:"StartDate" validate:"required"`
	EndDate    Timestamp `json:"EndDate" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		e := sl.Current().Interface().(EventDTO)
		if e.EndAtUTC.Before(e.StartAtUTC.Time) {
			sl.ReportError(e.EndAtUTC, "EndAtUtc", "EndAtUTC", "endafterstart", "")
		}
	}, EventDTO{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		u := sl.Current().Interface().(UnavailabilityDTO)
		if u.EndDate.Before(u.StartDate.Time) {
			sl.ReportError(u.EndDate, "EndDate", "EndDate", "endafterstart", "")
		}
	}, UnavailabilityDTO{})
	return v
}

// Validate checks the payload shape.
func (p *Payload) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return nil
}

// ToSchedule converts a validated payload into the typed record set.
func (p *Payload) ToSchedule() *booking.Schedule {
	s := &booking.Schedule{
		Resources:      make([]resource.Resource, 0, len(p.Results.Resources)),
		Bookings:       make([]booking.Booking, 0, len(p.Results.Events)),
		Unavailability: make([]booking.Unavailability, 0, len(p.Results.Unavailability)),
	}

	for _, r := range p.Results.Resources {
		s.Resources = append(s.Resources, resource.Resource{
			ID:             r.ID,
			Name:           r.Name,
			ResourceTypeID: *r.ResourceTypeID,
			AircraftMake:   r.AircraftMake,
		})
	}
	for _, e := range p.Results.Events {
		s.Bookings = append(s.Bookings, booking.Booking{
			ResourceID:   e.ResourceID,
			InstructorID: e.InstructorID,
			Start:        e.StartAtUTC.Time,
			End:          e.EndAtUTC.Time,
		})
	}
	for _, u := range p.Results.Unavailability {
		s.Unavailability = append(s.Unavailability, booking.Unavailability{
			ResourceID: u.ResourceID,
			Start:      u.StartDate.Time,
			End:        u.EndDate.Time,
		})
	}

	return s
}

// Decode reads, validates and converts a schedule payload.
func Decode(r io.Reader) (*booking.Schedule, error) {
	var p Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p.ToSchedule(), nil
}
