package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/weathercal/weathercal/internal/calendar"
	"github.com/weathercal/weathercal/internal/fetchcache"
	"github.com/weathercal/weathercal/internal/soloize"
	"github.com/weathercal/weathercal/internal/weather"
)

var validate = validator.New()

const contentTypeCalendar = "text/calendar; charset=utf-8"

// Options carries the default location served by the fixed *.ics routes.
type Options struct {
	DefaultLat float64
	DefaultLon float64
	AlertZone  string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *calendar.Service, processor *soloize.Processor, opts Options) {
	serveDefault := func(c *fiber.Ctx, mode weather.Mode) error {
		ics, err := service.Interesting(c.Context(), opts.DefaultLat, opts.DefaultLon, mode)
		if err != nil {
			return upstreamError(c, err)
		}
		return sendCalendar(c, ics)
	}

	// Fixed routes for the configured default location.
	app.Get("/weather.ics", func(c *fiber.Ctx) error { return serveDefault(c, weather.ModeRain) })
	app.Get("/warm.ics", func(c *fiber.Ctx) error { return serveDefault(c, weather.ModeWarm) })
	app.Get("/cool.ics", func(c *fiber.Ctx) error { return serveDefault(c, weather.ModeCool) })
	app.Get("/comfort.ics", func(c *fiber.Ctx) error { return serveDefault(c, weather.ModeComfortable) })

	app.Get("/bestweather.ics", func(c *fiber.Ctx) error {
		ics, err := service.BestWeather(c.Context(), opts.DefaultLat, opts.DefaultLon)
		if err != nil {
			return upstreamError(c, err)
		}
		return sendCalendar(c, ics)
	})

	app.Get("/alerts.ics", func(c *fiber.Ctx) error {
		ics, err := service.Alerts(c.Context(), opts.AlertZone)
		if err != nil {
			return upstreamError(c, err)
		}
		return sendCalendar(c, ics)
	})

	app.Get("/soloize", func(c *fiber.Ctx) error {
		feedURL := c.Query("url")
		if feedURL == "" {
			return fiber.NewError(fiber.StatusBadRequest, "url query parameter is required")
		}
		ics, err := processor.FetchAndProcessCached(c.Context(), feedURL)
		if err != nil {
			if errors.Is(err, soloize.ErrInvalidFeedURL) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			if errors.Is(err, soloize.ErrFeedParse) {
				return fiber.NewError(fiber.StatusBadGateway, "feed could not be parsed as a calendar")
			}
			return fiber.NewError(fiber.StatusBadGateway, "feed could not be fetched")
		}
		return sendCalendar(c, ics)
	})

	// Registered before /:calendar/:coords so it is not swallowed by the
	// wildcard.
	app.Get("/simplify/:coords", func(c *fiber.Ctx) error {
		coords, err := parseCoords(c.Params("coords"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		lat, lon, err := service.Simplify(c.Context(), coords.Latitude, coords.Longitude)
		if err != nil {
			return upstreamError(c, err)
		}
		return c.JSON(fiber.Map{
			"latitude":  lat,
			"longitude": lon,
		})
	})

	app.Get("/:calendar/:coords", func(c *fiber.Ctx) error {
		coords, err := parseCoords(c.Params("coords"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var ics string
		switch name := c.Params("calendar"); name {
		case "precip":
			ics, err = service.Interesting(c.Context(), coords.Latitude, coords.Longitude, weather.ModeRain)
		case "warm":
			ics, err = service.Interesting(c.Context(), coords.Latitude, coords.Longitude, weather.ModeWarm)
		case "cool":
			ics, err = service.Interesting(c.Context(), coords.Latitude, coords.Longitude, weather.ModeCool)
		case "comfort":
			ics, err = service.Interesting(c.Context(), coords.Latitude, coords.Longitude, weather.ModeComfortable)
		case "bestweather":
			ics, err = service.BestWeather(c.Context(), coords.Latitude, coords.Longitude)
		default:
			return fiber.NewError(fiber.StatusNotFound, "unknown calendar: "+name)
		}
		if err != nil {
			return upstreamError(c, err)
		}
		return sendCalendar(c, ics)
	})
}

// coordsParam holds a parsed "lat,lon" path segment.
type coordsParam struct {
	Latitude  float64 `validate:"latitude"`
	Longitude float64 `validate:"longitude"`
}

func parseCoords(raw string) (coordsParam, error) {
	var p coordsParam

	latStr, lonStr, ok := strings.Cut(raw, ",")
	if !ok {
		return p, errors.New("coordinates must be in lat,lon form")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return p, errors.New("invalid latitude")
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
	if err != nil {
		return p, errors.New("invalid longitude")
	}

	p.Latitude = lat
	p.Longitude = lon
	if err := validate.Struct(p); err != nil {
		return p, errors.New("coordinates out of range")
	}
	return p, nil
}

func sendCalendar(c *fiber.Ctx, ics string) error {
	c.Set(fiber.HeaderContentType, contentTypeCalendar)
	return c.SendString(ics)
}

// upstreamError relays a non-200 upstream response with its original status
// and body; anything else becomes a processing error.
func upstreamError(c *fiber.Ctx, err error) error {
	var ue *fetchcache.UpstreamError
	if errors.As(err, &ue) {
		return c.Status(ue.Status).SendString(ue.Body)
	}
	if errors.Is(err, weather.ErrMalformedPayload) {
		return fiber.NewError(fiber.StatusBadGateway, "upstream returned a malformed payload")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to build calendar")
}
