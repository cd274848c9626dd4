package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

const (
	SourceAPI = "api"
	SourceDB  = "db"

	NotifierLog  = "log"
	NotifierAMQP = "amqp"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	LogLevel     string
	APIKeyHash   string

	// Availability search
	InstructorName    string
	AircraftMake      string
	Location          *time.Location
	MinFreeHours      float64
	BusinessStartHour int
	BusinessEndHour   int
	WindowDays        int
	EngineWorkers     int

	// Schedule source
	ScheduleSource string
	DBDSN          string
	DBMaxConns     int
	FSP            FSPConfig

	// Notifications
	Notifier  string
	AMQPURL   string
	AMQPQueue string
}

// FSPConfig holds the upstream scheduling service settings.
type FSPConfig struct {
	LoginURL        string
	ScheduleURL     string
	Username        string
	Password        string
	OperatorID      int
	LocationIDs     []int
	InstructorIDs   []string
	AircraftTypeIDs []string // "makeId:modelId" pairs
	ScheduleViewID  string
	Attempts        int
	Timeout         time.Duration
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	// Production origin (default: empty)
	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")

	// Application environment (default: dev)
	appEnvStr := getEnv("APP_ENV", "dev")
	cfg.IsProduction = appEnvStr == PROD_STRING

	// HTTP listen address (default: :8080)
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// bcrypt hash of the API key guarding /v1 (empty disables the HTTP API)
	cfg.APIKeyHash = getEnv("API_KEY_HASH", "")

	// Instructor and fleet selection are required; there is no sensible default.
	cfg.InstructorName = os.Getenv("INSTRUCTOR_NAME")
	if cfg.InstructorName == "" {
		return nil, fmt.Errorf("INSTRUCTOR_NAME is required")
	}
	cfg.AircraftMake = getEnv("AIRCRAFT_MAKE", "Cessna")

	tz := getEnv("TIMEZONE", "America/Denver")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if cfg.MinFreeHours, err = getEnvAsFloat("MIN_FREE_HOURS", 1.5); err != nil {
		return nil, fmt.Errorf("invalid MIN_FREE_HOURS: %w", err)
	}
	if cfg.BusinessStartHour, err = getEnvAsInt("BUSINESS_START_HOUR", 9); err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_START_HOUR: %w", err)
	}
	if cfg.BusinessEndHour, err = getEnvAsInt("BUSINESS_END_HOUR", 17); err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_END_HOUR: %w", err)
	}
	if cfg.BusinessStartHour < 0 || cfg.BusinessEndHour > 24 || cfg.BusinessStartHour >= cfg.BusinessEndHour {
		return nil, fmt.Errorf("business hours %d-%d are invalid", cfg.BusinessStartHour, cfg.BusinessEndHour)
	}
	if cfg.WindowDays, err = getEnvAsInt("WINDOW_DAYS", 14); err != nil {
		return nil, fmt.Errorf("invalid WINDOW_DAYS: %w", err)
	}
	if cfg.EngineWorkers, err = getEnvAsInt("ENGINE_WORKERS", 0); err != nil {
		return nil, fmt.Errorf("invalid ENGINE_WORKERS: %w", err)
	}

	// Schedule source: upstream API (default) or local database
	cfg.ScheduleSource = getEnv("SCHEDULE_SOURCE", SourceAPI)
	switch cfg.ScheduleSource {
	case SourceAPI:
		if err := loadFSP(cfg); err != nil {
			return nil, err
		}
	case SourceDB:
		cfg.DBDSN = os.Getenv("DB_DSN")
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required when SCHEDULE_SOURCE=db")
		}
		if cfg.DBMaxConns, err = getEnvAsInt("DB_MAX_CONNS", 0); err != nil {
			return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown SCHEDULE_SOURCE %q", cfg.ScheduleSource)
	}

	cfg.Notifier = getEnv("NOTIFIER", NotifierLog)
	switch cfg.Notifier {
	case NotifierLog:
	case NotifierAMQP:
		cfg.AMQPURL = os.Getenv("AMQP_URL")
		if cfg.AMQPURL == "" {
			return nil, fmt.Errorf("AMQP_URL is required when NOTIFIER=amqp")
		}
		cfg.AMQPQueue = getEnv("AMQP_QUEUE", "flight-checker.alerts")
	default:
		return nil, fmt.Errorf("unknown NOTIFIER %q", cfg.Notifier)
	}

	return cfg, nil
}

func loadFSP(cfg *Config) error {
	var err error
	fsp := &cfg.FSP

	fsp.LoginURL = os.Getenv("FSP_LOGIN_URL")
	if fsp.LoginURL == "" {
		return fmt.Errorf("FSP_LOGIN_URL is required")
	}
	fsp.ScheduleURL = getEnv("FSP_SCHEDULE_URL", "https://api-external.flightschedulepro.com/api/v2/schedule")

	fsp.Username = os.Getenv("FSP_USERNAME")
	if fsp.Username == "" {
		return fmt.Errorf("FSP_USERNAME is required")
	}
	fsp.Password = os.Getenv("FSP_PASSWORD")
	if fsp.Password == "" {
		return fmt.Errorf("FSP_PASSWORD is required")
	}

	if fsp.OperatorID, err = getEnvAsInt("FSP_OPERATOR_ID", 0); err != nil {
		return fmt.Errorf("invalid FSP_OPERATOR_ID: %w", err)
	}
	if fsp.LocationIDs, err = getEnvAsIntList("FSP_LOCATION_IDS"); err != nil {
		return fmt.Errorf("invalid FSP_LOCATION_IDS: %w", err)
	}
	fsp.InstructorIDs = getEnvAsList("FSP_INSTRUCTOR_IDS")
	fsp.AircraftTypeIDs = getEnvAsList("FSP_AIRCRAFT_TYPE_IDS")
	fsp.ScheduleViewID = getEnv("FSP_SCHEDULE_VIEW_ID", "")

	if fsp.Attempts, err = getEnvAsInt("FSP_ATTEMPTS", 2); err != nil {
		return fmt.Errorf("invalid FSP_ATTEMPTS: %w", err)
	}
	timeout := getEnv("FSP_TIMEOUT", "20s")
	if fsp.Timeout, err = time.ParseDuration(timeout); err != nil {
		return fmt.Errorf("invalid FSP_TIMEOUT: %w", err)
	}

	return nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid number: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsList splits a comma separated variable, dropping empty items.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsIntList(key string) ([]int, error) {
	var out []int
	for _, part := range getEnvAsList(key) {
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("env %s item %q is not a valid integer: %w", key, part, err)
		}
		out = append(out, v)
	}
	return out, nil
}
