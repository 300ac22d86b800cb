package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedPayload indicates the upstream JSON is missing an expected
// field. It is fatal to the current build and is never retried.
var ErrMalformedPayload = errors.New("malformed upstream payload")

// QuantitativeValue is the NWS wrapper around a nullable numeric reading.
type QuantitativeValue struct {
	Value *float64 `json:"value"`
}

// Period is one upstream hourly forecast record. Timestamps are kept in
// their upstream string form: the calendar builders need the raw date
// prefix for stable UIDs, and parse to time.Time only where required.
type Period struct {
	StartTime                  string            `json:"startTime"`
	EndTime                    string            `json:"endTime"`
	IsDaytime                  bool              `json:"isDaytime"`
	Temperature                int               `json:"temperature"`
	Dewpoint                   QuantitativeValue `json:"dewpoint"`
	ProbabilityOfPrecipitation QuantitativeValue `json:"probabilityOfPrecipitation"`
	ShortForecast              string            `json:"shortForecast"`
	WindSpeed                  string            `json:"windSpeed"`
}

// PrecipChance returns the probability of precipitation in percent.
// A null upstream value counts as 0.
func (p Period) PrecipChance() int {
	if p.ProbabilityOfPrecipitation.Value == nil {
		return 0
	}
	return int(*p.ProbabilityOfPrecipitation.Value)
}

// DewpointC returns the dewpoint in °C, or 0 when the upstream value is null.
func (p Period) DewpointC() float64 {
	if p.Dewpoint.Value == nil {
		return 0
	}
	return *p.Dewpoint.Value
}

// Start parses the period's start timestamp.
func (p Period) Start() (time.Time, error) {
	return parseStamp(p.StartTime)
}

// End parses the period's end timestamp.
func (p Period) End() (time.Time, error) {
	return parseStamp(p.EndTime)
}

// StartDate returns the calendar-date portion of the start timestamp
// (the upstream-local YYYY-MM-DD prefix).
func (p Period) StartDate() string {
	if len(p.StartTime) < 10 {
		return p.StartTime
	}
	return p.StartTime[:10]
}

// WindSpeedMPH returns the leading integer of the textual wind speed
// ("10 mph" -> 10). Unparseable text counts as 0.
func (p Period) WindSpeedMPH() int {
	head, _, _ := strings.Cut(p.WindSpeed, " ")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0
	}
	return n
}

func parseStamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad timestamp %q", ErrMalformedPayload, s)
	}
	return t, nil
}

// Forecast is a decoded hourly forecast payload.
type Forecast struct {
	UpdateTime string
	Periods    []Period
}

// Updated parses the forecast's updateTime field.
func (f *Forecast) Updated() (time.Time, error) {
	return parseStamp(f.UpdateTime)
}

// ParseForecast decodes an NWS hourly forecast payload.
func ParseForecast(data []byte) (*Forecast, error) {
	var payload struct {
		Properties *struct {
			UpdateTime string   `json:"updateTime"`
			Periods    []Period `json:"periods"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.Properties == nil {
		return nil, fmt.Errorf("%w: missing properties", ErrMalformedPayload)
	}
	if payload.Properties.UpdateTime == "" {
		return nil, fmt.Errorf("%w: missing properties.updateTime", ErrMalformedPayload)
	}
	return &Forecast{
		UpdateTime: payload.Properties.UpdateTime,
		Periods:    payload.Properties.Periods,
	}, nil
}

// Alert is one active alert feature from the NWS alerts endpoint.
type Alert struct {
	Event       string `json:"event"`
	Onset       string `json:"onset"`
	Ends        string `json:"ends"`
	Expires     string `json:"expires"`
	Description string `json:"description"`
}

// Until returns the alert's end timestamp: ends when present, expires otherwise.
func (a Alert) Until() string {
	if a.Ends != "" {
		return a.Ends
	}
	return a.Expires
}

// ParseAlerts decodes an NWS active-alerts payload.
func ParseAlerts(data []byte) ([]Alert, error) {
	var payload struct {
		Features *[]struct {
			Properties *Alert `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if payload.Features == nil {
		return nil, fmt.Errorf("%w: missing features", ErrMalformedPayload)
	}
	alerts := make([]Alert, 0, len(*payload.Features))
	for _, f := range *payload.Features {
		if f.Properties == nil {
			return nil, fmt.Errorf("%w: feature missing properties", ErrMalformedPayload)
		}
		alerts = append(alerts, *f.Properties)
	}
	return alerts, nil
}
