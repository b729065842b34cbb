package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(ClientConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: timeout,
		Logger:  zerolog.Nop(),
	})
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "40.64", r.URL.Query().Get("lat"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"main": {"temp": 21.5, "humidity": 64},
			"weather": [{"description": "scattered clouds"}],
			"wind": {"speed": 4.1}
		}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 5*time.Second)
	rec, err := client.Fetch(context.Background(), 40.64, -73.78)
	require.NoError(t, err)

	assert.InDelta(t, 21.5, rec.TemperatureC, 0.001)
	assert.Equal(t, "Scattered Clouds", rec.Condition)
	assert.Equal(t, 64, rec.Humidity)
	assert.InDelta(t, 4.1, rec.WindSpeedMS, 0.001)
	assert.WithinDuration(t, time.Now().UTC(), rec.FetchedAt, time.Minute)
}

func TestFetchMissingWindDefaultsToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"main": {"temp": -3.2, "humidity": 80}, "weather": [{"description": "snow"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 5*time.Second)
	rec, err := client.Fetch(context.Background(), 60.3, 24.9)
	require.NoError(t, err)
	assert.Zero(t, rec.WindSpeedMS)
	assert.Equal(t, "Snow", rec.Condition)
}

func TestFetchParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "MissingTemperature", body: `{"main": {"humidity": 50}, "weather": [{"description": "clear"}]}`},
		{name: "MissingHumidity", body: `{"main": {"temp": 10}, "weather": [{"description": "clear"}]}`},
		{name: "NonNumericTemperature", body: `{"main": {"temp": "warm", "humidity": 50}}`},
		{name: "MalformedJSON", body: `{"main": {`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := newTestClient(srv.URL, 5*time.Second)
			_, err := client.Fetch(context.Background(), 0, 0)
			require.Error(t, err)
			assert.Equal(t, ReasonParse, AsFetchError(err).Reason)
		})
	}
}

func TestFetchStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reason Reason
	}{
		{name: "AuthRejected", status: http.StatusUnauthorized, reason: ReasonAuth},
		{name: "RateLimited", status: http.StatusTooManyRequests, reason: HTTPReason(429)},
		{name: "ServerError", status: http.StatusInternalServerError, reason: HTTPReason(500)},
		{name: "NotFound", status: http.StatusNotFound, reason: HTTPReason(404)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := newTestClient(srv.URL, 5*time.Second)
			_, err := client.Fetch(context.Background(), 10, 10)
			require.Error(t, err)

			fe := AsFetchError(err)
			assert.Equal(t, tt.reason, fe.Reason)
			assert.Equal(t, tt.status, fe.StatusCode)
		})
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, 20*time.Millisecond)
	_, err := client.Fetch(context.Background(), 10, 10)
	require.Error(t, err)
	assert.Equal(t, ReasonTimeout, AsFetchError(err).Reason)
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	client := newTestClient(srv.URL, time.Second)
	_, err := client.Fetch(context.Background(), 10, 10)
	require.Error(t, err)
	assert.Equal(t, ReasonTransport, AsFetchError(err).Reason)
}
