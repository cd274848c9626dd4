package availability

import (
	"errors"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nekogravitycat/flight-checker/internal/booking"
	"github.com/nekogravitycat/flight-checker/internal/resource"
)

// Opportunity is a free aircraft slot during which the instructor is free as well.
type Opportunity struct {
	Aircraft   resource.Resource
	Instructor resource.Resource
	Slot       Interval
}

// Hours returns the slot length in fractional hours.
func (o Opportunity) Hours() float64 {
	return o.Slot.Hours()
}

type Config struct {
	Classifier *resource.Classifier
	Location   *time.Location
	Workers    int // days computed in parallel; <= 0 means GOMAXPROCS
	Logger     *zap.Logger
}

// Engine finds the windows where the instructor and an aircraft are free at the same time.
type Engine struct {
	classifier *resource.Classifier
	loc        *time.Location
	workers    int
	logger     *zap.Logger
}

func NewEngine(cfg Config) (*Engine, error) {
	if cfg.Classifier == nil {
		return nil, errors.New("availability: classifier is required")
	}
	if cfg.Location == nil {
		return nil, errors.New("availability: location is required")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		classifier: cfg.Classifier,
		loc:        cfg.Location,
		workers:    workers,
		logger:     logger,
	}, nil
}

// Location returns the reference timezone used for day windows and formatting.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// plan holds everything the per-day computation reads. It is never written after construction.
type plan struct {
	instructor       resource.Resource
	aircraft         []resource.Resource
	instructorBusy   []Interval
	aircraftBusy     map[string][]Interval
	instructorBlocks []Interval
	minFreeHours     float64
}

// FindOpportunities returns every (aircraft, slot) pair that satisfies the query, ordered by day,
// then aircraft, then slot start. It fails only when the instructor cannot be identified; in that
// case no partial results are returned. A degenerate query (end before start, empty business day)
// yields no results.
func (e *Engine) FindOpportunities(s booking.Schedule, q Query) ([]Opportunity, error) {
	instructor, err := e.classifier.SelectInstructor(s.Resources)
	if err != nil {
		return nil, err
	}
	aircraft := e.classifier.SelectAircraft(s.Resources)

	p := &plan{
		instructor:   instructor,
		aircraft:     aircraft,
		aircraftBusy: make(map[string][]Interval, len(aircraft)),
		minFreeHours: q.MinFreeHours,
	}
	for _, a := range aircraft {
		for _, b := range s.BookingsForResource(a.ID) {
			p.aircraftBusy[a.ID] = append(p.aircraftBusy[a.ID], Interval{Start: b.Start, End: b.End})
		}
	}
	for _, b := range s.BookingsForInstructor(instructor.ID) {
		p.instructorBusy = append(p.instructorBusy, Interval{Start: b.Start, End: b.End})
	}
	for _, u := range s.UnavailabilityFor(instructor.ID) {
		p.instructorBlocks = append(p.instructorBlocks, Interval{Start: u.Start, End: u.End})
	}

	windows := DayWindows(q, e.loc)
	perDay := make([][]Opportunity, len(windows))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, w := range windows {
		i, w := i, w
		g.Go(func() error {
			perDay[i] = e.day(p, w)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Opportunity
	for _, day := range perDay {
		out = append(out, day...)
	}

	e.logger.Debug("availability computed",
		zap.String("instructor", instructor.Name),
		zap.Int("aircraft", len(aircraft)),
		zap.Int("days", len(windows)),
		zap.Int("opportunities", len(out)),
	)

	return out, nil
}

func (e *Engine) day(p *plan, window Interval) []Opportunity {
	// Only blackouts starting inside or after today's window are considered.
	var blocks []Interval
	for _, b := range p.instructorBlocks {
		if !b.Start.Before(window.Start) {
			blocks = append(blocks, b)
		}
	}

	instructorFree := FreeSlots(window, p.instructorBusy, 0)
	if len(instructorFree) == 0 {
		e.logger.Debug("instructor fully booked", zap.Time("day", window.Start.In(e.loc)))
		return nil
	}

	var out []Opportunity
	for _, a := range p.aircraft {
		for _, slot := range FreeSlots(window, p.aircraftBusy[a.ID], p.minFreeHours) {
			if !containedByAny(instructorFree, slot) || overlapsAny(blocks, slot) {
				continue
			}
			out = append(out, Opportunity{
				Aircraft:   a,
				Instructor: p.instructor,
				Slot:       slot,
			})
		}
	}
	return out
}

func containedByAny(outer []Interval, inner Interval) bool {
	for _, o := range outer {
		if o.Contains(inner) {
			return true
		}
	}
	return false
}

func overlapsAny(intervals []Interval, target Interval) bool {
	for _, i := range intervals {
		if i.Overlaps(target) {
			return true
		}
	}
	return false
}

// Find runs FindOpportunities and renders each result as a display line.
func (e *Engine) Find(s booking.Schedule, q Query) ([]string, error) {
	found, err := e.FindOpportunities(s, q)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(found))
	for _, o := range found {
		lines = append(lines, Format(o, e.loc))
	}
	return lines, nil
}
