// Package openweather resolves and searches place names via the OpenWeatherMap
// geocoding API.
package openweather

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
	"github.com/yanqian/solarcast/internal/domain/solar"
	apperrors "github.com/yanqian/solarcast/pkg/errors"
	"github.com/yanqian/solarcast/pkg/metrics"
)

const defaultBaseURL = "https://api.openweathermap.org/geo/1.0"

// Client implements prediction.Geocoder.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewClient builds an API client. m may be nil.
func NewClient(baseURL, apiKey string, timeout time.Duration, m *metrics.Metrics) *Client {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
	}
}

// Resolve returns the best match for query.
func (c *Client) Resolve(ctx context.Context, query string, lang solar.Language) (prediction.Location, error) {
	started := time.Now()
	places, err := c.direct(ctx, query, 1)
	c.metrics.ObserveUpstream("openweather", "resolve", err, time.Since(started))
	if err != nil {
		return prediction.Location{}, err
	}
	if len(places) == 0 {
		return prediction.Location{}, apperrors.Wrap(apperrors.CodeLocationNotFound, fmt.Sprintf("location %q not found", query), nil)
	}
	return places[0].toLocation(lang), nil
}

// Search returns up to limit candidates for autocomplete.
func (c *Client) Search(ctx context.Context, query string, limit int, lang solar.Language) ([]prediction.Location, error) {
	started := time.Now()
	places, err := c.direct(ctx, query, limit)
	c.metrics.ObserveUpstream("openweather", "search", err, time.Since(started))
	if err != nil {
		return nil, err
	}
	out := make([]prediction.Location, 0, len(places))
	for _, p := range places {
		out = append(out, p.toLocation(lang))
	}
	return out, nil
}

func (c *Client) direct(ctx context.Context, query string, limit int) ([]place, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/direct?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocoding request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstreamHTTP, "geocoding request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, apperrors.Wrap(apperrors.CodeUpstreamHTTP, "geocoding request error",
			fmt.Errorf("status=%d body=%s", resp.StatusCode, string(payload)))
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUpstreamHTTP, "decode geocoding response", err)
	}
	return places, nil
}

type place struct {
	Name       string            `json:"name"`
	LocalNames map[string]string `json:"local_names"`
	Lat        float64           `json:"lat"`
	Lon        float64           `json:"lon"`
	Country    string            `json:"country"`
	State      string            `json:"state"`
}

// toLocation prefers the local name in the requested language.
func (p place) toLocation(lang solar.Language) prediction.Location {
	name := p.Name
	if local := strings.TrimSpace(p.LocalNames[string(lang)]); local != "" {
		name = local
	}
	display := name
	if p.Country != "" {
		display = name + ", " + p.Country
	}
	return prediction.Location{
		Lat:         p.Lat,
		Lon:         p.Lon,
		Name:        name,
		DisplayName: display,
		Country:     p.Country,
		State:       p.State,
	}
}

var _ prediction.Geocoder = (*Client)(nil)
