// Package retention schedules the periodic sweep that drops expired
// messages. The sweep itself runs inside the coordinator under its write
// lock; this package only decides when.
package retention

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"roomchat/backend/internal/config"
	"roomchat/backend/internal/models"

	"github.com/adhocore/gronx"
)

// retryDelay is how long the scheduler waits after failing to compute the
// next tick.
const retryDelay = 30 * time.Second

// Sweeper runs one retention pass.
type Sweeper interface {
	Cleanup(ctx context.Context) (models.CleanupResult, error)
}

// Scheduler runs the sweeper on a cron schedule.
type Scheduler struct {
	Cron    string
	Sweeper Sweeper

	Now   func() time.Time
	After func(d time.Duration) <-chan time.Time

	running sync.Mutex
}

// NewScheduler validates the cron expression. An empty expression uses the
// default daily schedule.
func NewScheduler(cron string, s Sweeper) (*Scheduler, error) {
	if cron == "" {
		cron = config.DefaultRetentionCron
	}
	if !gronx.IsValid(cron) {
		return nil, fmt.Errorf("invalid retention cron expression: %s", cron)
	}
	return &Scheduler{
		Cron:    cron,
		Sweeper: s,
		Now:     time.Now,
		After:   time.After,
	}, nil
}

// Next returns the first tick strictly after now.
func (s *Scheduler) Next(now time.Time) (time.Time, error) {
	return gronx.NextTickAfter(s.Cron, now, false)
}

// RunOnce runs a sweep unless one is already in progress.
func (s *Scheduler) RunOnce(ctx context.Context) (models.CleanupResult, error) {
	if !s.running.TryLock() {
		return models.CleanupResult{}, fmt.Errorf("retention sweep already running")
	}
	defer s.running.Unlock()
	return s.Sweeper.Cleanup(ctx)
}

// Start runs the schedule in a goroutine until ctx is done. The returned
// channel is closed when the loop has exited.
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	log.Printf("INFO: retention scheduler started with cron %q", s.Cron)
	go func() {
		defer close(done)
		s.loop(ctx)
		log.Println("INFO: retention scheduler stopped")
	}()
	return done
}

func (s *Scheduler) loop(ctx context.Context) {
	for {
		now := s.Now()
		next, err := s.Next(now)
		wait := retryDelay
		if err != nil {
			log.Printf("ERROR: retention next tick for %q: %v", s.Cron, err)
		} else {
			wait = max(next.Sub(now), 0)
		}

		select {
		case <-ctx.Done():
			return
		case <-s.After(wait):
		}
		if err != nil {
			continue
		}

		res, err := s.RunOnce(ctx)
		if err != nil {
			log.Printf("ERROR: retention sweep failed: %v", err)
			continue
		}
		log.Printf("INFO: retention sweep removed %d messages, %d remain", res.RemovedCount, res.RemainingCount)
	}
}
