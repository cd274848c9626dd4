package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nekogravitycat/flight-checker/internal/api"
	"github.com/nekogravitycat/flight-checker/internal/auth"
	"github.com/nekogravitycat/flight-checker/internal/availability"
	availabilityHttp "github.com/nekogravitycat/flight-checker/internal/availability/http"
	"github.com/nekogravitycat/flight-checker/internal/booking"
	"github.com/nekogravitycat/flight-checker/internal/checker"
	"github.com/nekogravitycat/flight-checker/internal/config"
	"github.com/nekogravitycat/flight-checker/internal/db"
	"github.com/nekogravitycat/flight-checker/internal/notify"
	"github.com/nekogravitycat/flight-checker/internal/resource"
	"github.com/nekogravitycat/flight-checker/internal/schedule"
)

// Container holds the initialized components that are needed externally.
type Container struct {
	Router  *gin.Engine
	Checker *checker.Service
	Engine  *availability.Engine

	closers []func()
}

// Close releases the database pool and the broker connection, if any were opened.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// NewContainer initializes all modules and returns the container.
func NewContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{}

	// Availability engine
	classifier := resource.NewClassifier(cfg.InstructorName, cfg.AircraftMake)
	engine, err := availability.NewEngine(availability.Config{
		Classifier: classifier,
		Location:   cfg.Location,
		Workers:    cfg.EngineWorkers,
		Logger:     logger.Named("engine"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	c.Engine = engine

	// Schedule source
	source, err := c.newSource(ctx, cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	// Notifier
	notifier, err := c.newNotifier(cfg, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	// Checker
	c.Checker = checker.NewService(checker.Config{
		WindowDays:   cfg.WindowDays,
		MinFreeHours: cfg.MinFreeHours,
		StartHour:    cfg.BusinessStartHour,
		EndHour:      cfg.BusinessEndHour,
	}, source, engine, notifier, logger.Named("checker"))

	// Router
	c.Router = api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		APIKeyHash:          cfg.APIKeyHash,
		KeyHasher:           auth.NewBcryptKeyHasher(),
		AvailabilityHandler: availabilityHttp.NewHandler(engine, c.Checker, logger.Named("http")),
		Logger:              logger,
	})

	return c, nil
}

func (c *Container) newSource(ctx context.Context, cfg *config.Config, logger *zap.Logger) (checker.Source, error) {
	switch cfg.ScheduleSource {
	case config.SourceDB:
		pool, err := db.NewPool(ctx, cfg.DBDSN, cfg.DBMaxConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to db: %w", err)
		}
		c.closers = append(c.closers, pool.Close)
		return booking.NewDBSource(resource.NewPgxRepository(pool), booking.NewPgxRepository(pool)), nil
	default:
		client, err := schedule.NewClient(schedule.Config{
			LoginURL:        cfg.FSP.LoginURL,
			ScheduleURL:     cfg.FSP.ScheduleURL,
			Username:        cfg.FSP.Username,
			Password:        cfg.FSP.Password,
			OperatorID:      cfg.FSP.OperatorID,
			LocationIDs:     cfg.FSP.LocationIDs,
			InstructorIDs:   cfg.FSP.InstructorIDs,
			AircraftTypeIDs: cfg.FSP.AircraftTypeIDs,
			ScheduleViewID:  cfg.FSP.ScheduleViewID,
			Attempts:        cfg.FSP.Attempts,
			Timeout:         cfg.FSP.Timeout,
		}, logger.Named("schedule"))
		if err != nil {
			return nil, fmt.Errorf("failed to create schedule client: %w", err)
		}
		return client, nil
	}
}

func (c *Container) newNotifier(cfg *config.Config, logger *zap.Logger) (notify.Notifier, error) {
	if cfg.Notifier != config.NotifierAMQP {
		return notify.NewLogNotifier(logger.Named("notify")), nil
	}

	notifier, closeFn, err := notify.DialAMQP(cfg.AMQPURL, cfg.AMQPQueue)
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() {
		if err := closeFn(); err != nil {
			logger.Warn("failed to close rabbitmq connection", zap.Error(err))
		}
	})
	return notifier, nil
}
