package http

import (
	"encoding/json"
	"math"
	"time"

	"github.com/nekogravitycat/flight-checker/internal/availability"
)

type FindRequest struct {
	// Raw upstream schedule payload, decoded and validated by the schedule package.
	Schedule     json.RawMessage `json:"schedule" binding:"required"`
	Start        time.Time       `json:"start" binding:"required"`
	End          time.Time       `json:"end" binding:"required"`
	MinFreeHours float64         `json:"min_free_hours" binding:"gte=0"`
	StartHour    *int            `json:"start_hour" binding:"required,gte=0,lte=23"`
	EndHour      *int            `json:"end_hour" binding:"required,gte=1,lte=24"`
}

func (r FindRequest) Query() availability.Query {
	return availability.Query{
		Start:        r.Start,
		End:          r.End,
		MinFreeHours: r.MinFreeHours,
		StartHour:    *r.StartHour,
		EndHour:      *r.EndHour,
	}
}

type OpportunityResponse struct {
	AircraftID     string    `json:"aircraft_id"`
	AircraftName   string    `json:"aircraft_name"`
	InstructorName string    `json:"instructor_name"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Hours          float64   `json:"hours"`
	Text           string    `json:"text"`
}

func NewOpportunityResponse(o availability.Opportunity, loc *time.Location) OpportunityResponse {
	return OpportunityResponse{
		AircraftID:     o.Aircraft.ID,
		AircraftName:   o.Aircraft.Name,
		InstructorName: o.Instructor.Name,
		Start:          o.Slot.Start.In(loc),
		End:            o.Slot.End.In(loc),
		Hours:          math.Round(o.Hours()*100) / 100,
		Text:           availability.Format(o, loc),
	}
}
