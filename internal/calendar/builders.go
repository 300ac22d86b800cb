package calendar

import (
	"fmt"
	"time"

	"github.com/weathercal/weathercal/internal/weather"
)

// timestampLayout renders the "forecast last updated" stamp, e.g.
// "Wed Apr 03 03:32 PM".
const timestampLayout = "Mon Jan 02 03:04 PM"

// BuildInteresting maps an hourly forecast to one event per contiguous
// block of interesting weather under the given mode. Rain events carry the
// block's shared shortForecast as their name; the other modes use a fixed
// label.
func BuildInteresting(f *weather.Forecast, mode weather.Mode, loc *time.Location) ([]Event, error) {
	updated, err := updatedStamp(f, loc)
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, block := range weather.Blocks(f.Periods, mode) {
		first, last := block[0], block[len(block)-1]

		name := mode.Label()
		if mode == weather.ModeRain {
			name = first.ShortForecast
		}

		begin, err := first.Start()
		if err != nil {
			return nil, err
		}
		end, err := last.End()
		if err != nil {
			return nil, err
		}

		minTemp, maxTemp := block[0].Temperature, block[0].Temperature
		minPop, maxPop := block[0].PrecipChance(), block[0].PrecipChance()
		for _, p := range block[1:] {
			minTemp = min(minTemp, p.Temperature)
			maxTemp = max(maxTemp, p.Temperature)
			minPop = min(minPop, p.PrecipChance())
			maxPop = max(maxPop, p.PrecipChance())
		}

		events = append(events, Event{
			UID:   NewUID(name + first.StartTime + last.EndTime),
			Name:  name,
			Begin: begin,
			End:   end,
			Description: fmt.Sprintf("%sF\n%s%% chance of rain\nForecast updated %s",
				formatRange(minTemp, maxTemp), formatRange(minPop, maxPop), updated),
		})
	}
	return events, nil
}

// BuildBestWeather emits one event per calendar day: the most desirable
// daytime period. The UID derives from the day's date alone, so rebuilding
// reuses the same id even when the winning hour moves.
func BuildBestWeather(f *weather.Forecast, loc *time.Location) ([]Event, error) {
	updated, err := updatedStamp(f, loc)
	if err != nil {
		return nil, err
	}

	var events []Event
	for _, day := range weather.Days(f.Periods) {
		best := weather.BestPeriod(day)

		begin, err := best.Start()
		if err != nil {
			return nil, err
		}
		end, err := best.End()
		if err != nil {
			return nil, err
		}

		events = append(events, Event{
			UID:   NewUID(best.StartDate()),
			Name:  best.ShortForecast,
			Begin: begin,
			End:   end,
			Description: fmt.Sprintf("%dF, %d%% chance of rain\nForecast updated %s",
				best.Temperature, best.PrecipChance(), updated),
		})
	}
	return events, nil
}

// BuildAlerts maps active alert features to events. Single newlines inside
// the alert text are collapsed to spaces; paragraph breaks survive.
func BuildAlerts(alerts []weather.Alert) ([]Event, error) {
	var events []Event
	for _, a := range alerts {
		begin, err := time.Parse(time.RFC3339, a.Onset)
		if err != nil {
			return nil, fmt.Errorf("%w: alert onset %q", weather.ErrMalformedPayload, a.Onset)
		}
		end, err := time.Parse(time.RFC3339, a.Until())
		if err != nil {
			return nil, fmt.Errorf("%w: alert end %q", weather.ErrMalformedPayload, a.Until())
		}

		events = append(events, Event{
			UID:         NewUID(a.Event + a.Onset + a.Until()),
			Name:        a.Event,
			Begin:       begin,
			End:         end,
			Description: collapseNewlines(a.Description),
		})
	}
	return events, nil
}

func updatedStamp(f *weather.Forecast, loc *time.Location) (string, error) {
	updated, err := f.Updated()
	if err != nil {
		return "", err
	}
	return updated.In(loc).Format(timestampLayout), nil
}

// formatRange renders "55-60" or just "55" when the bounds coincide.
func formatRange(lo, hi int) string {
	if lo == hi {
		return fmt.Sprintf("%d", lo)
	}
	return fmt.Sprintf("%d-%d", lo, hi)
}

// collapseNewlines replaces each newline whose neighbors are not newlines
// with a space, joining the hard-wrapped lines NWS emits while keeping
// blank-line paragraph breaks.
func collapseNewlines(s string) string {
	b := []byte(s)
	out := make([]byte, len(b))
	for i, c := range b {
		if c == '\n' &&
			(i == 0 || b[i-1] != '\n') &&
			(i == len(b)-1 || b[i+1] != '\n') {
			out[i] = ' '
			continue
		}
		out[i] = c
	}
	return string(out)
}
