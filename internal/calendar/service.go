package calendar

import (
	"context"
	"log"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/weathercal/weathercal/internal/nws"
	"github.com/weathercal/weathercal/internal/weather"
)

// Service orchestrates upstream fetches and calendar builds.
type Service struct {
	nws        *nws.Client
	clock      clockwork.Clock
	fallbackTZ *time.Location
}

// NewService creates a Service. fallbackTZ is used when a gridpoint carries
// no usable timezone.
func NewService(client *nws.Client, clock clockwork.Clock, fallbackTZ *time.Location) *Service {
	if fallbackTZ == nil {
		fallbackTZ = time.UTC
	}
	return &Service{nws: client, clock: clock, fallbackTZ: fallbackTZ}
}

// Interesting builds the serialized calendar of interesting-weather blocks
// for a coordinate pair under the given mode.
func (s *Service) Interesting(ctx context.Context, lat, lon float64, mode weather.Mode) (string, error) {
	f, loc, err := s.forecastFor(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	events, err := BuildInteresting(f, mode, loc)
	if err != nil {
		return "", err
	}
	return Encode(events, s.clock.Now()), nil
}

// BestWeather builds the serialized one-event-per-day best weather calendar.
func (s *Service) BestWeather(ctx context.Context, lat, lon float64) (string, error) {
	f, loc, err := s.forecastFor(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	events, err := BuildBestWeather(f, loc)
	if err != nil {
		return "", err
	}
	return Encode(events, s.clock.Now()), nil
}

// Alerts builds the serialized calendar of active alerts for a forecast zone.
func (s *Service) Alerts(ctx context.Context, zone string) (string, error) {
	alerts, err := s.nws.Alerts(ctx, zone)
	if err != nil {
		return "", err
	}
	events, err := BuildAlerts(alerts)
	if err != nil {
		return "", err
	}
	return Encode(events, s.clock.Now()), nil
}

// Simplify returns the lowest-precision coordinates resolving to the same
// hourly forecast as the input.
func (s *Service) Simplify(ctx context.Context, lat, lon float64) (float64, float64, error) {
	return s.nws.Simplify(ctx, lat, lon)
}

func (s *Service) forecastFor(ctx context.Context, lat, lon float64) (*weather.Forecast, *time.Location, error) {
	gp, err := s.nws.Gridpoint(ctx, lat, lon)
	if err != nil {
		return nil, nil, err
	}
	f, err := s.nws.HourlyForecast(ctx, gp.ForecastHourlyURL)
	if err != nil {
		return nil, nil, err
	}
	return f, s.location(gp.TimeZone), nil
}

func (s *Service) location(name string) *time.Location {
	if name == "" {
		return s.fallbackTZ
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("calendar: unknown gridpoint timezone %q, using fallback", name)
		return s.fallbackTZ
	}
	return loc
}
