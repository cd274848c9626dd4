package resource

import (
	"errors"
)

var (
	ErrInstructorNotFound  = errors.New("instructor not found")
	ErrAmbiguousInstructor = errors.New("more than one resource matches the instructor name")
)

// Resource represents a bookable unit on the schedule (an aircraft, an instructor, a simulator).
type Resource struct {
	ID             string
	Name           string
	ResourceTypeID int
	AircraftMake   *string // nil for anything that is not an aircraft
}

// IsAircraft reports whether the resource carries an aircraft make.
func (r Resource) IsAircraft() bool {
	return r.AircraftMake != nil
}
