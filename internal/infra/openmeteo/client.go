// Package openmeteo fetches daily forecast and archive weather from Open-Meteo.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/solarcast/internal/domain/prediction"
	apperrors "github.com/yanqian/solarcast/pkg/errors"
	"github.com/yanqian/solarcast/pkg/metrics"
)

const (
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultArchiveURL  = "https://archive-api.open-meteo.com/v1/archive"
	dailyFields        = "temperature_2m_mean,cloudcover_mean,sunshine_duration"
)

// Config locates the two Open-Meteo endpoints.
type Config struct {
	ForecastURL string
	ArchiveURL  string
	Timeout     time.Duration
}

// Client implements the forecast and archive collaborators.
type Client struct {
	forecastURL string
	archiveURL  string
	httpClient  *http.Client
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewClient builds an API client. m may be nil.
func NewClient(cfg Config, m *metrics.Metrics) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		forecastURL: endpointOr(cfg.ForecastURL, defaultForecastURL),
		archiveURL:  endpointOr(cfg.ArchiveURL, defaultArchiveURL),
		httpClient:  &http.Client{Timeout: timeout},
		metrics:     m,
		now:         time.Now,
	}
}

func endpointOr(raw, fallback string) string {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		clean = fallback
	}
	return strings.TrimRight(clean, "/")
}

// Forecast returns up to days daily rows starting today in the location's timezone.
func (c *Client) Forecast(ctx context.Context, lat, lon float64, days int) ([]prediction.DailyWeather, error) {
	params := baseParams(lat, lon)
	params.Set("forecast_days", strconv.Itoa(days))
	started := time.Now()
	out, err := c.fetch(ctx, c.forecastURL, params)
	c.metrics.ObserveUpstream("open-meteo", "forecast", err, time.Since(started))
	return out, err
}

// History returns the days daily rows that end yesterday (UTC).
func (c *Client) History(ctx context.Context, lat, lon float64, days int) ([]prediction.DailyWeather, error) {
	today := c.now().UTC()
	end := time.Date(today.Year(), today.Month(), today.Day()-1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -days)

	params := baseParams(lat, lon)
	params.Set("start_date", start.Format(time.DateOnly))
	params.Set("end_date", end.Format(time.DateOnly))
	started := time.Now()
	out, err := c.fetch(ctx, c.archiveURL, params)
	c.metrics.ObserveUpstream("open-meteo", "archive", err, time.Since(started))
	return out, err
}

func baseParams(lat, lon float64) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	params.Set("daily", dailyFields)
	params.Set("timezone", "auto")
	return params
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]prediction.DailyWeather, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build open-meteo request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstreamHTTP, "open-meteo request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, apperrors.Wrap(apperrors.CodeUpstreamHTTP, "open-meteo request error",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(payload)))
	}

	var raw apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstreamHTTP, "decode open-meteo response", err)
	}
	if raw.Error {
		return nil, apperrors.Wrap(apperrors.CodeUpstreamHTTP, "open-meteo api error", fmt.Errorf("%s", raw.Reason))
	}
	return normalizeDaily(raw.Daily), nil
}

type apiResponse struct {
	Error  bool     `json:"error"`
	Reason string   `json:"reason"`
	Daily  apiDaily `json:"daily"`
}

type apiDaily struct {
	Time        []string   `json:"time"`
	Temperature []*float64 `json:"temperature_2m_mean"`
	Cloudcover  []*float64 `json:"cloudcover_mean"`
	Sunshine    []*float64 `json:"sunshine_duration"`
}

func normalizeDaily(daily apiDaily) []prediction.DailyWeather {
	out := make([]prediction.DailyWeather, 0, len(daily.Time))
	for i, raw := range daily.Time {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			continue
		}
		out = append(out, prediction.DailyWeather{
			Date:            date,
			Temperature:     at(daily.Temperature, i),
			Cloudiness:      at(daily.Cloudcover, i),
			SunshineSeconds: at(daily.Sunshine, i),
		})
	}
	return out
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

var (
	_ prediction.ForecastProvider = (*Client)(nil)
	_ prediction.ArchiveProvider  = (*Client)(nil)
)
