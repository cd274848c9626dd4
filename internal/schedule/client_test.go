package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeService struct {
	logins     atomic.Int32
	fetches    atomic.Int32
	failFirstN int32
	noCookie   bool
	token      string
	lastBody   scheduleRequest
	lastAuth   string
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "pilot",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("upstream-secret"))
	require.NoError(t, err)
	return signed
}

func (f *fakeService) server(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/Account/Login/23267", func(w http.ResponseWriter, r *http.Request) {
		f.logins.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "pilot@example.test", r.PostForm.Get("username"))
		assert.Equal(t, "hunter2", r.PostForm.Get("password"))
		if !f.noCookie {
			session, _ := json.Marshal(map[string]string{"token": f.token})
			http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: url.QueryEscape(string(session)), Path: "/"})
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/v2/schedule", func(w http.ResponseWriter, r *http.Request) {
		n := f.fetches.Add(1)
		f.lastAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &f.lastBody))
		if n <= f.failFirstN {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, samplePayload)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, attempts int) *Client {
	c, err := NewClient(Config{
		LoginURL:        srv.URL + "/Account/Login/23267",
		ScheduleURL:     srv.URL + "/api/v2/schedule",
		Username:        "pilot@example.test",
		Password:        "hunter2",
		OperatorID:      23267,
		LocationIDs:     []int{1503},
		InstructorIDs:   []string{"cfi"},
		AircraftTypeIDs: []string{"make-1:model-1", "make-1:model-2"},
		Attempts:        attempts,
		Timeout:         5 * time.Second,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return c
}

func TestClientFetch(t *testing.T) {
	f := &fakeService{token: signedToken(t, time.Now().Add(time.Hour))}
	srv := f.server(t)
	c := newTestClient(t, srv, 2)

	start := time.Date(2026, 2, 9, 17, 0, 0, 0, time.UTC)
	s, err := c.Fetch(context.Background(), start, start.AddDate(0, 0, 14))
	require.NoError(t, err)
	assert.Len(t, s.Resources, 2)
	assert.Len(t, s.Bookings, 2)

	assert.Equal(t, "Bearer "+f.token, f.lastAuth)
	assert.Equal(t, 23267, f.lastBody.OperatorID)
	assert.Equal(t, "2026-02-09", f.lastBody.Start)
	assert.Equal(t, "2026-02-23", f.lastBody.End)
	assert.Equal(t, []int{1503}, f.lastBody.LocationIDs)
	assert.Equal(t, []aircraftType{{MakeID: "make-1", ModelID: "model-1"}, {MakeID: "make-1", ModelID: "model-2"}}, f.lastBody.AircraftTypeIDs)
	assert.True(t, f.lastBody.IncludeInstructorTimeOff)
	assert.Equal(t, []string{}, f.lastBody.SchedulingGroupIDs)
	assert.Equal(t, []string{}, f.lastBody.SimulatorIDs)
	assert.Equal(t, []string{placeholderID}, f.lastBody.EquipmentIDs)
	assert.Equal(t, []string{placeholderID}, f.lastBody.MeetingRoomIDs)
	assert.Equal(t, []string{placeholderID}, f.lastBody.ReservationTypeIDs)
	assert.Equal(t, "Def", f.lastBody.FilterName)
	assert.False(t, f.lastBody.DefaultView)

	t.Run("Valid token is reused", func(t *testing.T) {
		_, err := c.Fetch(context.Background(), start, start.AddDate(0, 0, 14))
		require.NoError(t, err)
		assert.Equal(t, int32(1), f.logins.Load())
		assert.Equal(t, int32(2), f.fetches.Load())
	})
}

func TestClientExpiredTokenLogsInAgain(t *testing.T) {
	f := &fakeService{token: signedToken(t, time.Now().Add(30*time.Second))}
	srv := f.server(t)
	c := newTestClient(t, srv, 1)

	start := time.Date(2026, 2, 9, 17, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		_, err := c.Fetch(context.Background(), start, start.AddDate(0, 0, 1))
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), f.logins.Load())
}

func TestClientRetries(t *testing.T) {
	start := time.Date(2026, 2, 9, 17, 0, 0, 0, time.UTC)

	t.Run("Second attempt succeeds", func(t *testing.T) {
		f := &fakeService{token: signedToken(t, time.Now().Add(time.Hour)), failFirstN: 1}
		c := newTestClient(t, f.server(t), 2)

		_, err := c.Fetch(context.Background(), start, start.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, int32(2), f.logins.Load(), "a failed attempt forces a fresh login")
		assert.Equal(t, int32(2), f.fetches.Load())
	})

	t.Run("Attempts exhausted", func(t *testing.T) {
		f := &fakeService{token: signedToken(t, time.Now().Add(time.Hour)), failFirstN: 5}
		c := newTestClient(t, f.server(t), 2)

		_, err := c.Fetch(context.Background(), start, start.AddDate(0, 0, 1))
		require.ErrorIs(t, err, ErrBadStatus)
		assert.Equal(t, int32(2), f.fetches.Load())
	})

	t.Run("Missing session cookie", func(t *testing.T) {
		f := &fakeService{noCookie: true}
		c := newTestClient(t, f.server(t), 2)

		_, err := c.Fetch(context.Background(), start, start.AddDate(0, 0, 1))
		require.ErrorIs(t, err, ErrLogin)
		assert.Equal(t, int32(2), f.logins.Load())
		assert.Equal(t, int32(0), f.fetches.Load())
	})
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	assert.True(t, tokenExpiry(signedToken(t, exp)).Equal(exp))
	assert.True(t, tokenExpiry("not-a-jwt").IsZero())
}
