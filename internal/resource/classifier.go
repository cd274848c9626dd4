package resource

import (
	"fmt"
)

// Classifier picks the instructor and the aircraft of interest out of a flat resource list.
type Classifier struct {
	InstructorName string
	AircraftMake   string
}

func NewClassifier(instructorName, aircraftMake string) *Classifier {
	return &Classifier{
		InstructorName: instructorName,
		AircraftMake:   aircraftMake,
	}
}

// SelectAircraft returns every resource whose aircraft make equals the configured make.
// The match is exact and case-sensitive. Input order is preserved.
func (c *Classifier) SelectAircraft(resources []Resource) []Resource {
	var aircraft []Resource
	for _, r := range resources {
		if r.IsAircraft() && *r.AircraftMake == c.AircraftMake {
			aircraft = append(aircraft, r)
		}
	}
	return aircraft
}

// SelectInstructor returns the single resource whose name equals the configured instructor name.
func (c *Classifier) SelectInstructor(resources []Resource) (Resource, error) {
	var (
		found   Resource
		matches int
	)
	for _, r := range resources {
		if r.Name != c.InstructorName {
			continue
		}
		if matches == 0 {
			found = r
		}
		matches++
	}

	switch matches {
	case 0:
		return Resource{}, fmt.Errorf("%w: %q", ErrInstructorNotFound, c.InstructorName)
	case 1:
		return found, nil
	default:
		return Resource{}, fmt.Errorf("%w: %q matched %d resources", ErrAmbiguousInstructor, c.InstructorName, matches)
	}
}
