// Package scheduler triggers periodic leaderboard refreshes.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pixel-phantoms/hud/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ErrEmptySchedule is returned when Schedule is given no expression.
var ErrEmptySchedule = errors.New("empty refresh schedule")

// Scheduler wraps a cron runner holding at most one refresh entry.
type Scheduler struct {
	cron     *cron.Cron
	mu       sync.Mutex
	entryID  cron.EntryID
	spec     string
	location *time.Location
	logger   logger.Logger
}

// New creates a Scheduler evaluating expressions in loc (UTC when nil).
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		location: loc,
		logger:   logger.Default().Named("scheduler"),
	}
}

// Schedule runs task on spec, a standard five-field cron expression or a
// descriptor such as "@every 15m". A previous entry is replaced.
func (s *Scheduler) Schedule(spec string, task func()) error {
	if spec == "" {
		return ErrEmptySchedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, task)
	if err != nil {
		return fmt.Errorf("adding cron entry %q: %w", spec, err)
	}
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}
	s.entryID = id
	s.spec = spec
	s.logger.Info(context.Background(), "refresh scheduled",
		logger.String("cron", spec),
		logger.String("timezone", s.location.String()),
	)
	return nil
}

// Next returns the next activation time, zero when nothing is scheduled or
// the runner is not started.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Start begins the cron runner.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the runner and waits for a running task to return or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stopping scheduler: %w", ctx.Err())
	}
}
