package calendar

import (
	"time"

	ics "github.com/arran4/golang-ical"
)

// Encode renders events to iCalendar wire format. now becomes each event's
// DTSTAMP.
func Encode(events []Event, now time.Time) string {
	cal := ics.NewCalendar()
	for _, ev := range events {
		e := cal.AddEvent(ev.UID)
		e.SetDtStampTime(now)
		e.SetStartAt(ev.Begin)
		e.SetEndAt(ev.End)
		e.SetSummary(ev.Name)
		if ev.Description != "" {
			e.SetDescription(ev.Description)
		}
	}
	return cal.Serialize()
}
