// Package jobs holds background work scheduled with cron.
package jobs

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// PendingSweeper removes pending reservations whose payment window has
// closed and reports how many were dropped.
type PendingSweeper interface {
	SweepExpiredPending(ctx context.Context) int
}

// Sweeper runs a PendingSweeper on a cron schedule.
type Sweeper struct {
	svc  PendingSweeper
	cron *cron.Cron
}

// NewSweeper parses schedule and registers the sweep job.  The scheduler
// is not started until Start is called.
func NewSweeper(svc PendingSweeper, schedule string) (*Sweeper, error) {
	s := &Sweeper{svc: svc, cron: cron.New()}
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("cron job: invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// RunOnce performs a single sweep and returns the number of reservations
// removed.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	n := s.svc.SweepExpiredPending(ctx)
	if n > 0 {
		log.Printf("cron job: removed %d expired pending reservations", n)
	}
	return n
}

// Start launches the scheduler in its own goroutine.
func (s *Sweeper) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
