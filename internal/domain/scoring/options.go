package scoring

import (
	"strings"
	"time"
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithOwner excludes the repository owner (case-insensitive) from ranking.
func WithOwner(owner string) Option {
	return func(e *Engine) {
		e.owner = strings.ToLower(strings.TrimSpace(owner))
	}
}

// WithNow pins the evaluation time used for the recency window.
func WithNow(now time.Time) Option {
	return func(e *Engine) {
		if !now.IsZero() {
			e.now = now
		}
	}
}

// WithRecencyWindow sets how far back a merge still earns the velocity bonus.
func WithRecencyWindow(window time.Duration) Option {
	return func(e *Engine) {
		if window > 0 {
			e.recencyWindow = window
		}
	}
}

// WithAchievements toggles achievement unlocks and their XP bonuses.
func WithAchievements(enabled bool) Option {
	return func(e *Engine) {
		e.achievements = enabled
	}
}
