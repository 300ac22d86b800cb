package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weathercal/weathercal/internal/weather"
)

func pct(v float64) weather.QuantitativeValue {
	return weather.QuantitativeValue{Value: &v}
}

func hour(start, end string, daytime bool, temp int, pop float64, forecast, wind string) weather.Period {
	return weather.Period{
		StartTime:                  start,
		EndTime:                    end,
		IsDaytime:                  daytime,
		Temperature:                temp,
		ProbabilityOfPrecipitation: pct(pop),
		ShortForecast:              forecast,
		WindSpeed:                  wind,
	}
}

func losAngeles(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	return loc
}

func TestBuildInterestingRain(t *testing.T) {
	f := &weather.Forecast{
		UpdateTime: "2024-04-03T22:32:00+00:00",
		Periods: []weather.Period{
			hour("2024-04-01T10:00:00-07:00", "2024-04-01T11:00:00-07:00", true, 55, 70, "Showers", "5 mph"),
			hour("2024-04-01T11:00:00-07:00", "2024-04-01T12:00:00-07:00", true, 58, 80, "Showers", "5 mph"),
			hour("2024-04-01T12:00:00-07:00", "2024-04-01T13:00:00-07:00", true, 60, 10, "Sunny", "5 mph"),
		},
	}

	events, err := BuildInteresting(f, weather.ModeRain, losAngeles(t))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "Showers", ev.Name)
	assert.Equal(t, "55-58F\n70-80% chance of rain\nForecast updated Wed Apr 03 03:32 PM", ev.Description)
	assert.Equal(t, 10, ev.Begin.Hour())
	assert.Equal(t, 12, ev.End.Hour())
	assert.True(t, ev.Begin.Before(ev.End))
}

func TestBuildInterestingSingleHourRangeCollapses(t *testing.T) {
	f := &weather.Forecast{
		UpdateTime: "2024-04-03T22:32:00+00:00",
		Periods: []weather.Period{
			hour("2024-04-01T10:00:00-07:00", "2024-04-01T11:00:00-07:00", true, 70, 10, "Sunny", "5 mph"),
		},
	}

	events, err := BuildInteresting(f, weather.ModeComfortable, losAngeles(t))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Open 🪟", events[0].Name)
	assert.True(t, strings.HasPrefix(events[0].Description, "70F\n10% chance of rain"))
}

func TestBuildInterestingUIDStableAcrossBuilds(t *testing.T) {
	f := &weather.Forecast{
		UpdateTime: "2024-04-03T22:32:00+00:00",
		Periods: []weather.Period{
			hour("2024-04-01T10:00:00-07:00", "2024-04-01T11:00:00-07:00", true, 70, 10, "Sunny", "5 mph"),
		},
	}

	first, err := BuildInteresting(f, weather.ModeWarm, losAngeles(t))
	require.NoError(t, err)
	second, err := BuildInteresting(f, weather.ModeWarm, losAngeles(t))
	require.NoError(t, err)
	assert.Equal(t, first[0].UID, second[0].UID)

	// A different mode produces a different label and therefore a different UID.
	other, err := BuildInteresting(f, weather.ModeComfortable, losAngeles(t))
	require.NoError(t, err)
	assert.NotEqual(t, first[0].UID, other[0].UID)
}

func TestBuildBestWeatherPicksMostDesirable(t *testing.T) {
	f := &weather.Forecast{
		UpdateTime: "2024-04-03T22:32:00+00:00",
		Periods: []weather.Period{
			hour("2024-04-01T10:00:00-07:00", "2024-04-01T11:00:00-07:00", true, 72, 40, "Chance Showers", "5 mph"),
			hour("2024-04-01T12:00:00-07:00", "2024-04-01T13:00:00-07:00", true, 70, 20, "Sunny", "10 mph"),
		},
	}

	events, err := BuildBestWeather(f, losAngeles(t))
	require.NoError(t, err)
	require.Len(t, events, 1)

	// Keys (40,2,5) vs (33,0,10): the noon period wins.
	assert.Equal(t, "Sunny", events[0].Name)
	assert.Equal(t, "70F, 20% chance of rain\nForecast updated Wed Apr 03 03:32 PM", events[0].Description)
}

func TestBuildBestWeatherUIDFollowsDateNotHour(t *testing.T) {
	morning := &weather.Forecast{
		UpdateTime: "2024-04-03T22:32:00+00:00",
		Periods: []weather.Period{
			hour("2024-04-01T10:00:00-07:00", "2024-04-01T11:00:00-07:00", true, 70, 10, "Sunny", "5 mph"),
		},
	}
	afternoon := &weather.Forecast{
		UpdateTime: "2024-04-03T23:32:00+00:00",
		Periods: []weather.Period{
			hour("2024-04-01T15:00:00-07:00", "2024-04-01T16:00:00-07:00", true, 70, 10, "Sunny", "5 mph"),
		},
	}

	a, err := BuildBestWeather(morning, losAngeles(t))
	require.NoError(t, err)
	b, err := BuildBestWeather(afternoon, losAngeles(t))
	require.NoError(t, err)

	// Same day, different winning hour: the UID must not change.
	assert.Equal(t, a[0].UID, b[0].UID)
}

func TestBuildBestWeatherMissingUpdateTime(t *testing.T) {
	f := &weather.Forecast{UpdateTime: "garbage"}
	_, err := BuildBestWeather(f, losAngeles(t))
	assert.ErrorIs(t, err, weather.ErrMalformedPayload)
}

func TestBuildAlerts(t *testing.T) {
	alerts := []weather.Alert{{
		Event:       "Wind Advisory",
		Onset:       "2024-04-01T10:00:00-07:00",
		Expires:     "2024-04-02T10:00:00-07:00",
		Description: "Gusty winds\nexpected this afternoon.\n\nSecure loose objects.",
	}}

	events, err := BuildAlerts(alerts)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "Wind Advisory", ev.Name)
	assert.Equal(t, "Gusty winds expected this afternoon.\n\nSecure loose objects.", ev.Description)
	assert.True(t, ev.End.After(ev.Begin))
}

func TestBuildAlertsPrefersEndsOverExpires(t *testing.T) {
	alerts := []weather.Alert{{
		Event:   "Flood Watch",
		Onset:   "2024-04-01T10:00:00-07:00",
		Ends:    "2024-04-01T18:00:00-07:00",
		Expires: "2024-04-02T10:00:00-07:00",
	}}

	events, err := BuildAlerts(alerts)
	require.NoError(t, err)
	assert.Equal(t, 18, events[0].End.Hour())
}

func TestBuildAlertsBadOnset(t *testing.T) {
	_, err := BuildAlerts([]weather.Alert{{Event: "X", Onset: ""}})
	assert.ErrorIs(t, err, weather.ErrMalformedPayload)
}

func TestCollapseNewlines(t *testing.T) {
	assert.Equal(t, "a b", collapseNewlines("a\nb"))
	assert.Equal(t, "a\n\nb", collapseNewlines("a\n\nb"))
	assert.Equal(t, "a\n\n\nb", collapseNewlines("a\n\n\nb"))
	assert.Equal(t, " a", collapseNewlines("\na"))
	assert.Equal(t, "a ", collapseNewlines("a\n"))
	assert.Equal(t, "", collapseNewlines(""))
}

func TestEncodeProducesICS(t *testing.T) {
	events := []Event{{
		UID:         NewUID("test"),
		Name:        "Showers",
		Begin:       time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC),
		Description: "55-58F",
	}}

	out := Encode(events, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "SUMMARY:Showers")
	assert.Contains(t, out, "UID:"+events[0].UID)
	assert.Contains(t, out, "END:VCALENDAR")
}
