package calendar

import "time"

// Event is one output calendar entry. Events are built fresh per request
// and handed to the serializer; they are never mutated after construction.
type Event struct {
	UID         string
	Name        string
	Begin       time.Time
	End         time.Time
	Description string
}
