package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/nekogravitycat/flight-checker/internal/booking"
)

const sessionCookie = "FspApp"

var (
	ErrLogin     = errors.New("schedule login failed")
	ErrBadStatus = errors.New("schedule request returned unexpected status")
)

type Config struct {
	LoginURL        string
	ScheduleURL     string
	Username        string
	Password        string
	OperatorID      int
	LocationIDs     []int
	InstructorIDs   []string
	AircraftTypeIDs []string // "makeId:modelId"
	ScheduleViewID  string
	Attempts        int
	Timeout         time.Duration
}

// Client talks to the upstream scheduling service: it logs in with a cookie session and
// fetches the schedule for a date range.
type Client struct {
	cfg    Config
	http   *http.Client
	jar    http.CookieJar
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar failed: %w", err)
	}
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Jar: jar, Timeout: cfg.Timeout},
		jar:    jar,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Login signs in and stores the bearer token carried in the session cookie.
func (c *Client) Login(ctx context.Context) (string, error) {
	form := url.Values{
		"username":     {c.cfg.Username},
		"password":     {c.cfg.Password},
		"rememberMe":   {"off"},
		"uv_login":     {"0"},
		"uv_ssl":       {"0"},
		"zenDeskLogin": {"0"},
		"return":       {""},
		"returnUrl":    {""},
		"checkEmail":   {"false"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build login request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLogin, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	loginURL, err := url.Parse(c.cfg.LoginURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrLogin, err)
	}

	var raw string
	for _, ck := range c.jar.Cookies(loginURL) {
		if ck.Name == sessionCookie {
			raw = ck.Value
			break
		}
	}
	if raw == "" {
		return "", fmt.Errorf("%w: %s cookie not set", ErrLogin, sessionCookie)
	}

	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: decode session cookie: %v", ErrLogin, err)
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(decoded), &session); err != nil {
		return "", fmt.Errorf("%w: parse session cookie: %v", ErrLogin, err)
	}
	if session.Token == "" {
		return "", fmt.Errorf("%w: token missing", ErrLogin)
	}

	c.mu.Lock()
	c.token = session.Token
	c.tokenExp = tokenExpiry(session.Token)
	c.mu.Unlock()

	c.logger.Info("logged in to schedule service", zap.Time("token_expires", c.tokenExp))
	return session.Token, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the token is only
// forwarded to the service that issued it. Zero means unknown.
func tokenExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// bearer returns a cached token that is still valid for at least a minute, logging in otherwise.
func (c *Client) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	token, exp := c.token, c.tokenExp
	c.mu.Unlock()

	if token != "" && !exp.IsZero() && c.now().Add(time.Minute).Before(exp) {
		return token, nil
	}
	return c.Login(ctx)
}

func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExp = time.Time{}
	c.mu.Unlock()
}

type aircraftType struct {
	MakeID  string `json:"makeId"`
	ModelID string `json:"modelId"`
}

type scheduleRequest struct {
	OperatorID                     int            `json:"operatorId"`
	Start                          string         `json:"start"`
	End                            string         `json:"end"`
	Page                           int            `json:"page"`
	PageSize                       int            `json:"pageSize"`
	IncludeInstructorTimeOff       bool           `json:"includeInstructorTimeOff"`
	CanViewMaintenanceReservations bool           `json:"canViewMaintenanceReservations"`
	OutputFormat                   string         `json:"outputFormat"`
	Layout                         int            `json:"layout"`
	ScheduleViewID                 string         `json:"scheduleViewId,omitempty"`
	IsCalendarView                 bool           `json:"isCalendarView"`
	DatePickerView                 string         `json:"datePickerView"`
	RequestTimestamp               int64          `json:"requestTimestamp"`
	LocationIDs                    []int          `json:"locationIds"`
	AircraftIDs                    []string       `json:"aircraftIds"`
	AircraftTypeIDs                []aircraftType `json:"aircraftTypeIds"`
	SchedulingGroupIDs             []string       `json:"schedulingGroupIds"`
	SimulatorIDs                   []string       `json:"simulatorIds"`
	InstructorIDs                  []string       `json:"instructorIds"`
	EquipmentIDs                   []string       `json:"equipmentIds"`
	MeetingRoomIDs                 []string       `json:"meetingRoomIds"`
	ReservationTypeIDs             []string       `json:"reservationTypeIds"`
	DisplayMode                    int            `json:"displayMode"`
	FilterName                     string         `json:"filterName"`
	DefaultView                    bool           `json:"defaultView"`
	AircraftTab                    string         `json:"aircraftTab"`
}

// placeholderID is sent for the equipment, meeting room and reservation type filters.
const placeholderID = "00000000-0000-0000-0000-000000000001"

func (c *Client) newScheduleRequest(start, end time.Time) scheduleRequest {
	types := make([]aircraftType, 0, len(c.cfg.AircraftTypeIDs))
	for _, pair := range c.cfg.AircraftTypeIDs {
		makeID, modelID, _ := strings.Cut(pair, ":")
		types = append(types, aircraftType{MakeID: makeID, ModelID: modelID})
	}

	return scheduleRequest{
		OperatorID:                     c.cfg.OperatorID,
		Start:                          start.UTC().Format("2006-01-02"),
		End:                            end.UTC().Format("2006-01-02"),
		Page:                           1,
		PageSize:                       500,
		IncludeInstructorTimeOff:       true,
		CanViewMaintenanceReservations: true,
		OutputFormat:                   "bryntum",
		Layout:                         1,
		ScheduleViewID:                 c.cfg.ScheduleViewID,
		DatePickerView:                 "day",
		RequestTimestamp:               c.now().UnixMilli(),
		LocationIDs:                    nonNil(c.cfg.LocationIDs),
		AircraftIDs:                    []string{},
		AircraftTypeIDs:                types,
		SchedulingGroupIDs:             []string{},
		SimulatorIDs:                   []string{},
		InstructorIDs:                  nonNil(c.cfg.InstructorIDs),
		EquipmentIDs:                   []string{placeholderID},
		MeetingRoomIDs:                 []string{placeholderID},
		ReservationTypeIDs:             []string{placeholderID},
		FilterName:                     "Def",
		AircraftTab:                    "aircraft",
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// FetchSchedule downloads and validates the raw schedule for [start, end].
// Each attempt logs in again if the previous one failed.
func (c *Client) FetchSchedule(ctx context.Context, start, end time.Time) (*Payload, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.Attempts; attempt++ {
		p, err := c.fetchOnce(ctx, start, end)
		if err == nil {
			return p, nil
		}
		lastErr = err
		c.dropToken()

		c.logger.Warn("schedule fetch failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.cfg.Attempts),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("fetch schedule after %d attempts: %w", c.cfg.Attempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, start, end time.Time) (*Payload, error) {
	token, err := c.bearer(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(c.newScheduleRequest(start, end))
	if err != nil {
		return nil, fmt.Errorf("encode schedule request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ScheduleURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build schedule request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("schedule request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	var p Payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Fetch returns the typed schedule for [start, end].
func (c *Client) Fetch(ctx context.Context, start, end time.Time) (*booking.Schedule, error) {
	p, err := c.FetchSchedule(ctx, start, end)
	if err != nil {
		return nil, err
	}
	s := p.ToSchedule()
	c.logger.Info("schedule fetched",
		zap.Int("resources", len(s.Resources)),
		zap.Int("bookings", len(s.Bookings)),
		zap.Int("unavailability", len(s.Unavailability)),
	)
	return s, nil
}
