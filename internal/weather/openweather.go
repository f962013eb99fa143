// Package weather fetches current outdoor conditions from OpenWeather so the
// dashboard can show them alongside greenhouse telemetry.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// Conditions is the subset of the OpenWeather current weather response the
// platform exposes.
type Conditions struct {
	Description string    `json:"description"`
	Temperature float64   `json:"temperatureCelsius"`
	Humidity    float64   `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeedMS"`
	ObservedAt  time.Time `json:"observedAt"`
}

type owmWeather struct {
	Description string `json:"description"`
}

type owmResp struct {
	Weather []owmWeather `json:"weather"`
	Main    struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Dt int64 `json:"dt"`
}

// Client calls the OpenWeather current weather endpoint behind a circuit
// breaker, so a flaky upstream cannot pile requests up.
type Client struct {
	apiKey     string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	baseURL    string
}

// NewClient builds a weather client. The key may be empty; Current then
// returns an error without calling out.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "openweather",
			Interval: 60 * time.Second,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
		}),
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
	}
}

// Current fetches the conditions at the given coordinates. Transient failures
// are retried with exponential backoff before the breaker counts them.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Conditions, error) {
	if c.apiKey == "" {
		return Conditions{}, fmt.Errorf("missing OpenWeather api key")
	}

	result, err := c.cb.Execute(func() (any, error) {
		var cond Conditions
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 15 * time.Second
		err := backoff.Retry(func() error {
			var err error
			cond, err = c.fetch(ctx, lat, lon)
			return err
		}, backoff.WithContext(backoff.WithMaxRetries(bo, 2), ctx))
		return cond, err
	})
	if err != nil {
		return Conditions{}, err
	}
	return result.(Conditions), nil
}

func (c *Client) fetch(ctx context.Context, lat, lon float64) (Conditions, error) {
	url := fmt.Sprintf("%s?lat=%f&lon=%f&units=metric&appid=%s", c.baseURL, lat, lon, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Conditions{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Conditions{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return Conditions{}, fmt.Errorf("openweather status %d: %s", resp.StatusCode, string(b))
	}

	var out owmResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Conditions{}, err
	}

	cond := Conditions{
		Temperature: out.Main.Temp,
		Humidity:    out.Main.Humidity,
		WindSpeed:   out.Wind.Speed,
		ObservedAt:  time.Unix(out.Dt, 0).UTC(),
	}
	if len(out.Weather) > 0 {
		cond.Description = out.Weather[0].Description
	}
	return cond, nil
}
