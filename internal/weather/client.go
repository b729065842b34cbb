package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the OpenWeatherMap current-weather endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// userAgent identifies the client to the provider.
const userAgent = "flightwx/1.0"

// maxErrorBodyBytes caps how much of an error response body is read for
// the failure detail.
const maxErrorBodyBytes = 512

// ClientConfig configures a Client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap credential.
	APIKey string

	// BaseURL overrides the provider endpoint. Empty means DefaultBaseURL.
	BaseURL string

	// Timeout is the per-request budget.
	Timeout time.Duration

	// Logger receives debug-level request traces.
	Logger zerolog.Logger
}

// Client performs single weather lookups against OpenWeatherMap.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a weather client with the given configuration.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: cfg.Logger,
	}
}

// openWeatherPayload mirrors the subset of the OpenWeatherMap response
// the report needs. Required numeric fields are pointers so a missing
// field is distinguishable from zero.
type openWeatherPayload struct {
	Main struct {
		Temp     *float64 `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

// Fetch retrieves current weather for the given coordinates. Coordinate
// validity is the caller's responsibility. Exactly one outbound request
// is made per call; every failure is returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context, lat, lon float64) (Record, error) {
	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%g", lat))
	params.Set("lon", fmt.Sprintf("%g", lon))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	reqURL := c.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Record{}, &FetchError{Reason: ReasonTransport, Detail: err.Error()}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Float64("lat", lat).Float64("lon", lon).Msg("fetching weather")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Record{}, classifyStatusError(resp)
	}

	var payload openWeatherPayload
	if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr != nil {
		return Record{}, &FetchError{
			Reason: ReasonParse,
			Detail: fmt.Sprintf("malformed response body: %v", decodeErr),
		}
	}

	return parsePayload(payload)
}

// parsePayload converts a decoded provider response into a Record,
// rejecting payloads with absent required fields.
func parsePayload(payload openWeatherPayload) (Record, error) {
	if payload.Main.Temp == nil {
		return Record{}, &FetchError{Reason: ReasonParse, Detail: "missing temperature in response"}
	}
	if payload.Main.Humidity == nil {
		return Record{}, &FetchError{Reason: ReasonParse, Detail: "missing humidity in response"}
	}

	condition := "Unknown"
	if len(payload.Weather) > 0 && payload.Weather[0].Description != "" {
		condition = titleCase(payload.Weather[0].Description)
	}

	windSpeed := 0.0
	if payload.Wind.Speed != nil {
		windSpeed = *payload.Wind.Speed
	}

	return Record{
		TemperatureC: *payload.Main.Temp,
		Condition:    condition,
		Humidity:     int(*payload.Main.Humidity),
		WindSpeedMS:  windSpeed,
		FetchedAt:    time.Now().UTC(),
	}, nil
}

// classifyTransportError maps request execution failures onto the
// timeout/transport reasons.
func classifyTransportError(err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Reason: ReasonTimeout, Detail: "request deadline exceeded"}
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Reason: ReasonTimeout, Detail: err.Error()}
	}

	return &FetchError{Reason: ReasonTransport, Detail: err.Error()}
}

// classifyStatusError maps non-success responses onto the auth/http
// reasons, carrying a trimmed slice of the body as detail.
func classifyStatusError(resp *http.Response) *FetchError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = resp.Status
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &FetchError{Reason: ReasonAuth, Detail: "rejected API credential", StatusCode: resp.StatusCode}
	}

	return &FetchError{
		Reason:     HTTPReason(resp.StatusCode),
		Detail:     detail,
		StatusCode: resp.StatusCode,
	}
}

// titleCase uppercases the first letter of each space-separated word,
// matching how provider condition strings are displayed.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
