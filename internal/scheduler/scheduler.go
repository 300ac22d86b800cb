// Package scheduler drives the proactive feed refresh on a fixed interval.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher is the job the scheduler runs each cycle.
type Refresher interface {
	RefreshAll(ctx context.Context)
}

// Scheduler periodically refreshes every tracked calendar feed.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, refresher Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler. The first run happens one interval after Start, not
// immediately; entries are populated on demand before then.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 3 * time.Hour
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		log.Println("scheduler: running feed refresh job")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		s.refresher.RefreshAll(ctx)
		log.Println("scheduler: completed feed refresh job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
