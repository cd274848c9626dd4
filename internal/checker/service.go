package checker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nekogravitycat/flight-checker/internal/availability"
	"github.com/nekogravitycat/flight-checker/internal/booking"
	"github.com/nekogravitycat/flight-checker/internal/notify"
)

const (
	SubjectAvailable = "Flight Available"
	SubjectFailure   = "FlightChecker Failure"

	lineSeparator = "\n\n\n"
)

// Source supplies the schedule for a date range (the upstream API or the local database).
type Source interface {
	Fetch(ctx context.Context, start, end time.Time) (*booking.Schedule, error)
}

type Config struct {
	WindowDays   int
	MinFreeHours float64
	StartHour    int
	EndHour      int
}

// Report describes one check.
type Report struct {
	RunID    string    `json:"run_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Lines    []string  `json:"lines"`
	Notified bool      `json:"notified"`
}

type Service struct {
	cfg      Config
	source   Source
	engine   *availability.Engine
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(cfg Config, source Source, engine *availability.Engine, notifier notify.Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:      cfg,
		source:   source,
		engine:   engine,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Run fetches the schedule for the coming window, finds joint availability and notifies
// when there is something to report. A failed fetch is reported as a failure notification.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	start := s.now()
	report := &Report{
		RunID: uuid.NewString(),
		Start: start,
		End:   start.AddDate(0, 0, s.cfg.WindowDays),
		Lines: []string{},
	}
	logger := s.logger.With(zap.String("run_id", report.RunID))
	logger.Info("check started", zap.Time("start", report.Start), zap.Time("end", report.End))

	schedule, err := s.source.Fetch(ctx, report.Start, report.End)
	if err != nil {
		logger.Error("fetch schedule failed", zap.Error(err))
		notifyErr := s.notifier.Notify(ctx, notify.Message{
			Subject: SubjectFailure,
			Body:    fmt.Sprintf("unable to fetch schedule: %v", err),
		})
		if notifyErr != nil {
			logger.Error("failure notification failed", zap.Error(notifyErr))
		}
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}

	lines, err := s.engine.Find(*schedule, availability.Query{
		Start:        report.Start,
		End:          report.End,
		MinFreeHours: s.cfg.MinFreeHours,
		StartHour:    s.cfg.StartHour,
		EndHour:      s.cfg.EndHour,
	})
	if err != nil {
		logger.Error("find availability failed", zap.Error(err))
		return nil, err
	}
	report.Lines = lines

	if len(lines) == 0 {
		logger.Info("check finished, nothing available")
		return report, nil
	}

	if err := s.notifier.Notify(ctx, notify.Message{
		Subject: SubjectAvailable,
		Body:    strings.Join(lines, lineSeparator),
	}); err != nil {
		logger.Error("availability notification failed", zap.Error(err))
		return report, fmt.Errorf("notify: %w", err)
	}
	report.Notified = true

	logger.Info("check finished", zap.Int("slots", len(lines)))
	return report, nil
}
