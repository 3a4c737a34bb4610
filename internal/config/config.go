// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pixel-phantoms/hud/internal/domain/attendance"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// CORSOrigin is sent as Access-Control-Allow-Origin; empty disables CORS.
	CORSOrigin string `koanf:"cors_origin"`

	// RepoOwner and RepoName identify the scored repository. The owner is
	// excluded from the leaderboard.
	RepoOwner string `koanf:"repo_owner"`
	RepoName  string `koanf:"repo_name"`

	// GitHub API access.
	GitHubAPIBase        string  `koanf:"github_api_base"`
	GitHubToken          string  `koanf:"github_token"`
	GitHubMaxPages       int     `koanf:"github_max_pages"`
	GitHubPerPage        int     `koanf:"github_per_page"`
	GitHubRequestsPerSec float64 `koanf:"github_requests_per_second"`

	// AttendanceCSVPath is a local file or http(s) URL with GitHubUsername,Date,EventName rows.
	AttendanceCSVPath string `koanf:"attendance_csv_path"`

	// AttendanceSource selects "csv" or "derived" attendance.
	AttendanceSource string `koanf:"attendance_source"`

	// Events feed inputs; either may be empty.
	EventsJSONPath string `koanf:"events_json_path"`
	EventsAPIURL   string `koanf:"events_api_url"`

	// RefreshSchedule is a cron expression; empty disables scheduled refreshes.
	RefreshSchedule string `koanf:"refresh_schedule"`

	// Timezone is used for cron evaluation and event dates.
	Timezone string `koanf:"timezone"`

	// FetchTimeoutMS bounds a whole refresh pass.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// RecencyWindowDays is how recent a merge must be to add velocity.
	RecencyWindowDays int `koanf:"recency_window_days"`

	// AchievementsEnabled toggles achievement unlock bonuses.
	AchievementsEnabled bool `koanf:"achievements_enabled"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// QueueSize bounds pending refresh jobs.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of refresh workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the pending refresh reason set.
	DedupeSize int `koanf:"dedupe_size"`

	// DemoFallback serves the demonstration dataset when every upstream is empty.
	DemoFallback bool `koanf:"demo_fallback"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		RepoOwner:            "sayeeg-11",
		RepoName:             "Pixel_Phantoms",
		GitHubAPIBase:        "https://api.github.com",
		GitHubMaxPages:       3,
		GitHubPerPage:        100,
		GitHubRequestsPerSec: 2,
		AttendanceCSVPath:    "data/attendance.csv",
		AttendanceSource:     string(attendance.StrategyCSV),
		EventsJSONPath:       "data/events.json",
		RefreshSchedule:      "*/15 * * * *",
		Timezone:             "UTC",
		FetchTimeoutMS:       30_000,
		RecencyWindowDays:    60,
		AchievementsEnabled:  true,
		MaxLeaderboardLimit:  100,
		QueueSize:            8,
		WorkerCount:          1,
		DedupeSize:           64,
		DemoFallback:         true,
	}
}

// Validate reports the first invalid field wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.RepoOwner) == "" || strings.TrimSpace(c.RepoName) == "":
		return fmt.Errorf("%w: repo_owner and repo_name are required", ErrInvalidConfig)
	case c.GitHubMaxPages < 1:
		return fmt.Errorf("%w: github_max_pages must be positive", ErrInvalidConfig)
	case c.GitHubPerPage < 1 || c.GitHubPerPage > 100:
		return fmt.Errorf("%w: github_per_page must be within 1..100", ErrInvalidConfig)
	case c.FetchTimeoutMS < 1:
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	case c.RecencyWindowDays < 1:
		return fmt.Errorf("%w: recency_window_days must be positive", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.QueueSize < 1 || c.WorkerCount < 1:
		return fmt.Errorf("%w: queue_size and worker_count must be positive", ErrInvalidConfig)
	}
	if _, err := attendance.ParseStrategy(c.AttendanceSource); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// RecencyWindow returns RecencyWindowDays as a duration.
func (c *Config) RecencyWindow() time.Duration {
	return time.Duration(c.RecencyWindowDays) * 24 * time.Hour
}
