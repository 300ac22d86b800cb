// Package nws adapts the National Weather Service API: gridpoint metadata,
// hourly forecasts, and active alerts, fetched through the reactive cache
// pools.
package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/weathercal/weathercal/internal/fetchcache"
	"github.com/weathercal/weathercal/internal/weather"
)

// DefaultBaseURL is the production NWS API endpoint.
const DefaultBaseURL = "https://api.weather.gov"

// maxCoordDigits is the precision the points endpoint accepts.
const maxCoordDigits = 4

// Gridpoint is the metadata resolved for a coordinate pair.
type Gridpoint struct {
	ForecastHourlyURL string
	TimeZone          string
}

// Client fetches NWS data. Forecasts and alerts go through the short-TTL
// forecast pool; gridpoint metadata through the long-TTL gridpoint pool.
type Client struct {
	baseURL    string
	forecasts  *fetchcache.Pool
	gridpoints *fetchcache.Pool
}

// NewClient creates a Client. baseURL defaults to the production API.
func NewClient(baseURL string, forecasts, gridpoints *fetchcache.Pool) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: baseURL, forecasts: forecasts, gridpoints: gridpoints}
}

// Gridpoint resolves the hourly forecast URL and IANA timezone for a
// coordinate pair.
func (c *Client) Gridpoint(ctx context.Context, lat, lon float64) (Gridpoint, error) {
	return c.gridpointAt(ctx, lat, lon, maxCoordDigits)
}

func (c *Client) gridpointAt(ctx context.Context, lat, lon float64, digits int) (Gridpoint, error) {
	url := fmt.Sprintf("%s/points/%s,%s", c.baseURL,
		formatCoord(lat, digits), formatCoord(lon, digits))

	resp, err := c.gridpoints.Fetch(ctx, url)
	if err != nil {
		return Gridpoint{}, err
	}

	var payload struct {
		Properties *struct {
			ForecastHourly string `json:"forecastHourly"`
			TimeZone       string `json:"timeZone"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return Gridpoint{}, fmt.Errorf("%w: %v", weather.ErrMalformedPayload, err)
	}
	if payload.Properties == nil || payload.Properties.ForecastHourly == "" {
		return Gridpoint{}, fmt.Errorf("%w: missing properties.forecastHourly", weather.ErrMalformedPayload)
	}
	return Gridpoint{
		ForecastHourlyURL: payload.Properties.ForecastHourly,
		TimeZone:          payload.Properties.TimeZone,
	}, nil
}

// HourlyForecast fetches and decodes the hourly forecast at url.
func (c *Client) HourlyForecast(ctx context.Context, url string) (*weather.Forecast, error) {
	resp, err := c.forecasts.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return weather.ParseForecast(resp.Body)
}

// Alerts fetches the active alerts for a forecast zone.
func (c *Client) Alerts(ctx context.Context, zone string) ([]weather.Alert, error) {
	url := fmt.Sprintf("%s/alerts/active/zone/%s", c.baseURL, zone)
	resp, err := c.forecasts.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return weather.ParseAlerts(resp.Body)
}

// Simplify returns the lowest-precision coordinate pair that still resolves
// to the same hourly forecast URL as the full-precision input, by rounding
// to fewer decimal digits until the resolved URL changes and backing off
// one step.
func (c *Client) Simplify(ctx context.Context, lat, lon float64) (float64, float64, error) {
	baseline, err := c.gridpointAt(ctx, lat, lon, maxCoordDigits)
	if err != nil {
		return 0, 0, err
	}

	bestLat, bestLon := roundCoord(lat, maxCoordDigits), roundCoord(lon, maxCoordDigits)
	for digits := maxCoordDigits - 1; digits >= 0; digits-- {
		gp, err := c.gridpointAt(ctx, lat, lon, digits)
		if err != nil {
			// Over-rounded coordinates can land outside NWS coverage;
			// keep the last precision that resolved identically.
			break
		}
		if gp.ForecastHourlyURL != baseline.ForecastHourlyURL {
			break
		}
		bestLat, bestLon = roundCoord(lat, digits), roundCoord(lon, digits)
	}
	return bestLat, bestLon, nil
}

func roundCoord(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}

func formatCoord(v float64, digits int) string {
	return strconv.FormatFloat(roundCoord(v, digits), 'f', -1, 64)
}
