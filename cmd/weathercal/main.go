package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jonboulle/clockwork"
	"github.com/kelvins/geocoder"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/weathercal/weathercal/internal/api/http"
	"github.com/weathercal/weathercal/internal/calendar"
	"github.com/weathercal/weathercal/internal/config"
	"github.com/weathercal/weathercal/internal/fetchcache"
	"github.com/weathercal/weathercal/internal/nws"
	"github.com/weathercal/weathercal/internal/observability"
	"github.com/weathercal/weathercal/internal/scheduler"
	"github.com/weathercal/weathercal/internal/soloize"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	fallbackTZ, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil {
		log.Fatalf("invalid TIMEZONE %q: %v", cfg.TimezoneName, err)
	}

	lat, lon := resolveDefaultLocation(cfg)

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{
		Timeout: cfg.FetchTimeout,
	}

	clock := clockwork.NewRealClock()
	metrics := observability.NewMetrics()

	forecasts := fetchcache.New(fetchcache.Config{
		Name:      "forecast",
		Capacity:  cfg.ForecastCacheSize,
		TTL:       cfg.ForecastCacheTTL,
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
	}, httpClient, clock, metrics)

	gridpoints := fetchcache.New(fetchcache.Config{
		Name:      "gridpoint",
		Capacity:  cfg.GridpointCacheSize,
		TTL:       cfg.GridpointCacheTTL,
		Timeout:   cfg.FetchTimeout,
		UserAgent: cfg.UserAgent,
	}, httpClient, clock, metrics)

	nwsClient := nws.NewClient(cfg.NWSBaseURL, forecasts, gridpoints)
	service := calendar.NewService(nwsClient, clock, fallbackTZ)

	// Soloize pipeline with its proactive refresh loop.
	feedClient := &http.Client{
		Timeout: cfg.SoloizeTimeout,
	}
	processor := soloize.NewProcessor(soloize.NewCache(), feedClient, clock, cfg.SoloizeTimeout, metrics)

	sched := scheduler.New(cfg.SoloizeRefreshInterval, processor)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weathercal",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weathercal",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service, processor, httpapi.Options{
		DefaultLat: lat,
		DefaultLon: lon,
		AlertZone:  cfg.AlertZone,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// resolveDefaultLocation geocodes WEATHER_LOCATION_CITY/COUNTRY when a
// Google geocoding key is configured, otherwise keeps the configured
// coordinates.
func resolveDefaultLocation(cfg *config.AppConfig) (float64, float64) {
	if cfg.GeocoderAPIKey == "" || cfg.LocationCity == "" {
		return cfg.DefaultLat, cfg.DefaultLon
	}

	geocoder.ApiKey = cfg.GeocoderAPIKey
	location, err := geocoder.Geocoding(geocoder.Address{
		City:    cfg.LocationCity,
		Country: cfg.LocationCountry,
	})
	if err != nil {
		log.Printf("geocoding %s failed, using configured coordinates: %v", cfg.LocationCity, err)
		return cfg.DefaultLat, cfg.DefaultLon
	}

	log.Printf("default location %s resolved to %.4f,%.4f", cfg.LocationCity, location.Latitude, location.Longitude)
	return location.Latitude, location.Longitude
}
