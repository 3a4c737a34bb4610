// Package repository holds the published leaderboard snapshot.
package repository

import (
	"context"
	"time"

	"github.com/pixel-phantoms/hud/internal/domain/model"
)

// Snapshot is one immutable scoring result. Callers must not mutate its slices.
type Snapshot struct {
	Agents      []model.Agent
	Stats       model.EventStats
	Events      []model.Event
	GeneratedAt time.Time

	Strategy string // attendance strategy that produced Stats
	Partial  bool   // at least one upstream failed
	Demo     bool   // demonstration dataset, upstream unavailable

	rankByLogin map[string]int // lower-cased login -> index into Agents
}

// Store provides read/write access to the ranking state.
type Store interface {
	// Replace atomically publishes a new snapshot.
	Replace(ctx context.Context, snap Snapshot) error

	// Current returns the latest snapshot, or the zero Snapshot before the first Replace.
	Current(ctx context.Context) Snapshot

	// Rank returns the agent for login, ignoring case.
	// Returns ErrNotFound if the login is unknown.
	Rank(ctx context.Context, login string) (model.Agent, error)

	// TopN returns the first n agents in rank order.
	TopN(ctx context.Context, n int) ([]model.Agent, error)

	// Count returns the number of ranked agents.
	Count(ctx context.Context) int
}
