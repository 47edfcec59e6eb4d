package reports

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"skywatch/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportsJSON = `[
	{"id": 2, "event_type": "meteor", "description": "bright", "latitude": -33.9, "longitude": 18.4,
	 "observed_at": "2024-05-01T20:15:00", "created_at": "2024-05-01T20:16:03.123456"},
	{"id": 1, "event_type": "flash", "description": null, "latitude": -26.2, "longitude": 28.04,
	 "observed_at": "2024-04-30T01:00:00Z", "created_at": "2024-04-30T01:02:00Z"}
]`

func TestListReports(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, api.ReportsEndpoint, r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, reportsJSON)
	}))
	defer srv.Close()

	c := New(srv.URL + "/")
	got, err := c.ListReports(context.Background(), 200)
	require.NoError(t, err)
	assert.Equal(t, "limit=200", gotQuery)
	require.Len(t, got, 2)

	assert.Equal(t, "meteor", got[0].EventType)
	require.NotNil(t, got[0].Description)
	assert.Equal(t, "bright", *got[0].Description)
	assert.True(t, got[0].HasDescription())
	assert.Equal(t, time.Date(2024, time.May, 1, 20, 15, 0, 0, time.UTC), got[0].ObservedAt.Time)
	assert.Nil(t, got[1].Description)
	assert.False(t, got[1].HasDescription())
	assert.Equal(t, time.Date(2024, time.April, 30, 1, 0, 0, 0, time.UTC), got[1].ObservedAt.Time)
}

func TestListReports_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "limit must be between 1 and 1000", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListReports(context.Background(), 5000)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
	body, ok := ResponseBody(err)
	assert.True(t, ok)
	assert.Contains(t, body, "limit must be between 1 and 1000")
}

func TestListReports_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "{not json")
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListReports(context.Background(), 10)
	assert.Error(t, err)
	_, ok := ResponseBody(err)
	assert.False(t, ok)
}

func TestCreateReport(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"id": 7, "event_type": "meteor", "description": null, "latitude": 1, "longitude": 2,
			"observed_at": "2024-01-01T00:00:00", "created_at": "2024-01-01T00:00:01"}`)
	}))
	defer srv.Close()

	created, err := New(srv.URL).CreateReport(context.Background(), api.ReportArgs{
		EventType:  "meteor",
		Latitude:   1,
		Longitude:  2,
		ObservedAt: api.NewTimestamp(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)

	assert.Equal(t, "meteor", got["event_type"])
	v, present := got["description"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, 1.0, got["latitude"])
	assert.Equal(t, "2024-01-01T00:00:00.000Z", got["observed_at"])
}

func TestCreateReport_FailureBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "server error")
	}))
	defer srv.Close()

	_, err := New(srv.URL).CreateReport(context.Background(), api.ReportArgs{EventType: "flash"})
	body, ok := ResponseBody(err)
	require.True(t, ok)
	assert.Equal(t, "server error", body)
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, api.HealthEndpoint, r.URL.Path)
		io.WriteString(w, `{"status": "ok"}`)
	}))
	defer srv.Close()

	assert.NoError(t, New(srv.URL).Health(context.Background()))
}

func TestRetry_ServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(RetryPolicy{Attempts: 3, Backoff: time.Millisecond}))
	got, err := c.ListReports(context.Background(), 200)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetry_DefaultIsSingleAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListReports(context.Background(), 200)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetry_ClientErrorsAreFinal(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(RetryPolicy{Attempts: 4, Backoff: time.Millisecond}))
	_, err := c.ListReports(context.Background(), 200)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetry_CreateNotRetriedByDefault(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, WithRetry(RetryPolicy{Attempts: 3, Backoff: time.Millisecond}))
	_, err := c.CreateReport(context.Background(), api.ReportArgs{EventType: "meteor"})
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{Attempts: 5, Backoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond}.normalized()
	assert.Equal(t, 100*time.Millisecond, p.backoff(1))
	assert.Equal(t, 200*time.Millisecond, p.backoff(2))
	assert.Equal(t, 300*time.Millisecond, p.backoff(3))
	assert.Equal(t, 300*time.Millisecond, p.backoff(9))
}

func TestCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "[]")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL, WithRateLimit(1, 1)).ListReports(ctx, 200)
	assert.ErrorIs(t, err, context.Canceled)
}
