package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nekogravitycat/flight-checker/internal/availability"
	"github.com/nekogravitycat/flight-checker/internal/checker"
	"github.com/nekogravitycat/flight-checker/internal/pkg/response"
	"github.com/nekogravitycat/flight-checker/internal/resource"
)

type fakeRunner struct {
	report *checker.Report
	err    error
}

func (f *fakeRunner) Run(ctx context.Context) (*checker.Report, error) {
	return f.report, f.err
}

func setupRouter(t *testing.T, runner Runner) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loc, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)
	engine, err := availability.NewEngine(availability.Config{
		Classifier: resource.NewClassifier("Jane Doe (CFI)", "Cessna"),
		Location:   loc,
	})
	require.NoError(t, err)

	r := gin.New()
	pass := func(c *gin.Context) { c.Next() }
	RegisterRoutes(r.Group("/v1"), NewHandler(engine, runner, zaptest.NewLogger(t)), pass)
	return r
}

func executeRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reqBody []byte
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = []byte(b)
	default:
		reqBody, _ = json.Marshal(b)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Denver is UTC-7 in February: 09:00 local is 16:00 UTC.
var scenarioSchedule = map[string]any{
	"results": map[string]any{
		"resources": []any{
			map[string]any{"Id": "cfi", "Name": "Jane Doe (CFI)", "ResourceTypeId": 2, "AircraftMake": nil},
			map[string]any{"Id": "plane-a", "Name": "N172SP", "ResourceTypeId": 1, "AircraftMake": "Cessna"},
		},
		"events": []any{
			map[string]any{"ResourceId": "plane-p", "StartAtUtc": "2026-02-09T16:00:00Z", "EndAtUtc": "2026-02-09T18:00:00Z", "InstructorId": "cfi"},
			map[string]any{"ResourceId": "plane-a", "StartAtUtc": "2026-02-09T21:00:00Z", "EndAtUtc": "2026-02-09T22:00:00Z"},
		},
		"unavailability": []any{},
	},
}

func findBody(schedule any, mutate func(map[string]any)) map[string]any {
	body := map[string]any{
		"schedule":       schedule,
		"start":          "2026-02-09T07:00:00Z",
		"end":            "2026-02-10T07:00:00Z",
		"min_free_hours": 1.5,
		"start_hour":     9,
		"end_hour":       17,
	}
	if mutate != nil {
		mutate(body)
	}
	return body
}

func TestFindHandler(t *testing.T) {
	r := setupRouter(t, &fakeRunner{})

	t.Run("Success", func(t *testing.T) {
		w := executeRequest(r, http.MethodPost, "/v1/availability", findBody(scenarioSchedule, nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp response.ListResponse[OpportunityResponse]
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, 1, resp.Total)
		item := resp.Items[0]
		assert.Equal(t, "plane-a", item.AircraftID)
		assert.Equal(t, "N172SP", item.AircraftName)
		assert.Equal(t, "Jane Doe (CFI)", item.InstructorName)
		assert.Equal(t, 2.0, item.Hours)
		assert.True(t, item.Start.Equal(time.Date(2026, 2, 9, 22, 0, 0, 0, time.UTC)))
		assert.Equal(t, "N172SP & Jane Doe (CFI) free: 2026-02-09 03:00 PM -> 2026-02-09 05:00 PM (2.00h)", item.Text)
	})

	t.Run("Nothing available returns an empty list", func(t *testing.T) {
		w := executeRequest(r, http.MethodPost, "/v1/availability", findBody(scenarioSchedule, func(b map[string]any) {
			b["min_free_hours"] = 6
		}))
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items":[],"total":0}`, w.Body.String())
	})

	t.Run("Malformed body", func(t *testing.T) {
		w := executeRequest(r, http.MethodPost, "/v1/availability", `{"schedule":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing business hours", func(t *testing.T) {
		w := executeRequest(r, http.MethodPost, "/v1/availability", findBody(scenarioSchedule, func(b map[string]any) {
			delete(b, "start_hour")
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid schedule payload", func(t *testing.T) {
		w := executeRequest(r, http.MethodPost, "/v1/availability", findBody(map[string]any{"results": map[string]any{}}, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("End before start", func(t *testing.T) {
		w := executeRequest(r, http.MethodPost, "/v1/availability", findBody(scenarioSchedule, func(b map[string]any) {
			b["end"] = "2026-02-08T07:00:00Z"
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Empty business day", func(t *testing.T) {
		w := executeRequest(r, http.MethodPost, "/v1/availability", findBody(scenarioSchedule, func(b map[string]any) {
			b["start_hour"], b["end_hour"] = 9, 9
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid availability query")
	})

	t.Run("Null schedule", func(t *testing.T) {
		w := executeRequest(r, http.MethodPost, "/v1/availability", findBody(nil, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Instructor not on the schedule", func(t *testing.T) {
		noInstructor := map[string]any{
			"results": map[string]any{
				"resources":      []any{map[string]any{"Id": "plane-a", "Name": "N172SP", "ResourceTypeId": 1, "AircraftMake": "Cessna"}},
				"events":         []any{},
				"unavailability": []any{},
			},
		}
		w := executeRequest(r, http.MethodPost, "/v1/availability", findBody(noInstructor, nil))
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "instructor not found")
	})
}

func TestCheckHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		report := &checker.Report{RunID: "run-1", Lines: []string{"line"}, Notified: true}
		r := setupRouter(t, &fakeRunner{report: report})

		w := executeRequest(r, http.MethodPost, "/v1/checks", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var got checker.Report
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "run-1", got.RunID)
		assert.True(t, got.Notified)
	})

	t.Run("Upstream failure", func(t *testing.T) {
		r := setupRouter(t, &fakeRunner{err: errors.New("fetch schedule: bad status")})
		w := executeRequest(r, http.MethodPost, "/v1/checks", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.JSONEq(t, `{"error":"check failed"}`, w.Body.String())
	})

	t.Run("Instructor missing", func(t *testing.T) {
		r := setupRouter(t, &fakeRunner{err: resource.ErrInstructorNotFound})
		w := executeRequest(r, http.MethodPost, "/v1/checks", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
