package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathercal/weathercal/internal/calendar"
	"github.com/weathercal/weathercal/internal/fetchcache"
	"github.com/weathercal/weathercal/internal/nws"
	"github.com/weathercal/weathercal/internal/soloize"
)

const forecastJSON = `{
	"properties": {
		"updateTime": "2024-04-03T22:32:00+00:00",
		"periods": [
			{
				"startTime": "2024-04-01T10:00:00-07:00",
				"endTime": "2024-04-01T11:00:00-07:00",
				"isDaytime": true,
				"temperature": 55,
				"probabilityOfPrecipitation": {"value": 70},
				"shortForecast": "Showers",
				"windSpeed": "5 mph"
			}
		]
	}
}`

// newTestApp builds the full stack against a stubbed NWS server.
func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/points/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"properties": {"forecastHourly": "http://%s/forecast", "timeZone": "America/Los_Angeles"}}`, r.Host)
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, forecastJSON)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	clock := clockwork.NewFakeClockAt(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	forecasts := fetchcache.New(fetchcache.Config{Name: "forecast", Capacity: 10, TTL: time.Hour}, server.Client(), clock, nil)
	gridpoints := fetchcache.New(fetchcache.Config{Name: "gridpoint", Capacity: 42, TTL: time.Hour}, server.Client(), clock, nil)

	client := nws.NewClient(server.URL, forecasts, gridpoints)
	service := calendar.NewService(client, clock, time.UTC)
	processor := soloize.NewProcessor(soloize.NewCache(), server.Client(), clock, 30*time.Second, nil)

	app := fiber.New()
	RegisterRoutes(app, service, processor, Options{DefaultLat: 37.3894, DefaultLon: -122.0819, AlertZone: "CAZ508"})
	return app
}

func get(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	return resp
}

func TestCoordinateCalendarRoute(t *testing.T) {
	app := newTestApp(t)

	resp := get(t, app, "/precip/37.3894,-122.0819")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, contentTypeCalendar, resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "BEGIN:VCALENDAR")
	assert.Contains(t, string(body), "SUMMARY:Showers")
}

func TestDefaultLocationRoute(t *testing.T) {
	app := newTestApp(t)

	resp := get(t, app, "/weather.ics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, contentTypeCalendar, resp.Header.Get("Content-Type"))
}

func TestSimplifyRouteReturnsJSON(t *testing.T) {
	app := newTestApp(t)

	resp := get(t, app, "/simplify/37.3894,-122.0819")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "latitude")
	assert.Contains(t, string(body), "longitude")
}

func TestCoordinateValidation(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{
		"/precip/91.0,-122.0",   // latitude out of range
		"/precip/37.39,-181.0",  // longitude out of range
		"/precip/37.39",         // missing longitude
		"/precip/abc,def",       // not numbers
		"/simplify/91.0,-122.0", // simplify shares the validation
	} {
		resp := get(t, app, path)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for %s", path)
	}
}

func TestUnknownCalendarName(t *testing.T) {
	app := newTestApp(t)

	resp := get(t, app, "/sideways/37.39,-122.08")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSoloizeRequiresURL(t *testing.T) {
	app := newTestApp(t)

	resp := get(t, app, "/soloize")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = get(t, app, "/soloize?url=ftp://example.com/feed.ics")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpstreamFailureIsRelayed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Unable to provide data for requested point"}`, http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	clock := clockwork.NewFakeClock()
	pool := fetchcache.New(fetchcache.Config{Name: "forecast", Capacity: 10, TTL: time.Hour}, server.Client(), clock, nil)
	client := nws.NewClient(server.URL, pool, pool)
	service := calendar.NewService(client, clock, time.UTC)
	processor := soloize.NewProcessor(soloize.NewCache(), server.Client(), clock, 30*time.Second, nil)

	app := fiber.New()
	RegisterRoutes(app, service, processor, Options{})

	resp := get(t, app, "/precip/37.39,-122.08")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "Unable to provide data"), "upstream body is relayed")
}
