package repository

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pixel-phantoms/hud/internal/domain/model"
	"github.com/pixel-phantoms/hud/pkg/metrics"
)

// SnapshotStore keeps the latest snapshot behind an atomic pointer so reads
// never block a refresh.
type SnapshotStore struct {
	snapshot atomic.Pointer[Snapshot]
	now      func() time.Time
}

// NewSnapshotStore constructs an empty store.
func NewSnapshotStore(opts ...Option) *SnapshotStore {
	s := &SnapshotStore{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&Snapshot{rankByLogin: map[string]int{}})
	return s
}

// Replace indexes snap and publishes it.
func (s *SnapshotStore) Replace(_ context.Context, snap Snapshot) error {
	if snap.GeneratedAt.IsZero() {
		snap.GeneratedAt = s.now()
	}
	snap.rankByLogin = make(map[string]int, len(snap.Agents))
	byClass := make(map[string]int)
	for i, a := range snap.Agents {
		key := strings.ToLower(a.Login)
		if _, dup := snap.rankByLogin[key]; !dup {
			snap.rankByLogin[key] = i
		}
		byClass[string(a.Class)]++
	}
	s.snapshot.Store(&snap)

	metrics.UpdateAgents(len(snap.Agents), byClass)
	metrics.UpdateEventStats(snap.Stats.TotalEvents, snap.Stats.TotalAttendance)
	return nil
}

// Current returns the latest snapshot.
func (s *SnapshotStore) Current(_ context.Context) Snapshot {
	return *s.snapshot.Load()
}

// Rank looks up an agent by login in O(1).
func (s *SnapshotStore) Rank(_ context.Context, login string) (model.Agent, error) {
	snap := s.snapshot.Load()
	i, ok := snap.rankByLogin[strings.ToLower(strings.TrimSpace(login))]
	if !ok {
		return model.Agent{}, ErrNotFound
	}
	return snap.Agents[i], nil
}

// TopN returns a copy of the first n agents.
func (s *SnapshotStore) TopN(_ context.Context, n int) ([]model.Agent, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	agents := s.snapshot.Load().Agents
	if n > len(agents) {
		n = len(agents)
	}
	out := make([]model.Agent, n)
	copy(out, agents[:n])
	return out, nil
}

// Count returns the number of agents in the current snapshot.
func (s *SnapshotStore) Count(_ context.Context) int {
	return len(s.snapshot.Load().Agents)
}
