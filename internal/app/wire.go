package service

import (
	"fmt"
	"net/http"

	"github.com/pixel-phantoms/hud/internal/adapters/csvfeed"
	"github.com/pixel-phantoms/hud/internal/adapters/events"
	"github.com/pixel-phantoms/hud/internal/adapters/github"
	"github.com/pixel-phantoms/hud/internal/config"
	"github.com/pixel-phantoms/hud/internal/domain/attendance"
	"github.com/pixel-phantoms/hud/pkg/logger"
)

// FromConfig builds a Service and its upstream adapters from cfg. Extra
// options are applied last.
func FromConfig(cfg *config.Config, extra ...Option) (*Service, error) {
	strategy, err := attendance.ParseStrategy(cfg.AttendanceSource)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	hc := &http.Client{Timeout: cfg.FetchTimeout()}

	gh, err := github.NewClient(cfg.RepoOwner, cfg.RepoName,
		github.WithBaseURL(cfg.GitHubAPIBase),
		github.WithToken(cfg.GitHubToken),
		github.WithMaxPages(cfg.GitHubMaxPages),
		github.WithPerPage(cfg.GitHubPerPage),
		github.WithRequestsPerSecond(cfg.GitHubRequestsPerSec),
		github.WithHTTPClient(hc),
	)
	if err != nil {
		return nil, fmt.Errorf("github client: %w", err)
	}

	opts := []Option{
		WithPullRequests(gh),
		WithEvents(events.NewSource(
			events.WithLocalPath(cfg.EventsJSONPath),
			events.WithAPIURL(cfg.EventsAPIURL),
			events.WithLocation(loc),
			events.WithHTTPClient(hc),
		)),
		WithAttendanceStrategy(strategy),
		WithOwner(cfg.RepoOwner),
		WithRecencyWindow(cfg.RecencyWindow()),
		WithAchievements(cfg.AchievementsEnabled),
		WithFetchTimeout(cfg.FetchTimeout()),
		WithDemoFallback(cfg.DemoFallback),
		WithWorkerCount(cfg.WorkerCount),
		WithQueueSize(cfg.QueueSize),
		WithDedupeSize(cfg.DedupeSize),
		WithSchedule(cfg.RefreshSchedule, loc),
		WithLogger(logger.Named("service")),
	}
	if cfg.AttendanceCSVPath != "" {
		opts = append(opts, WithAttendance(csvfeed.New(cfg.AttendanceCSVPath, csvfeed.WithHTTPClient(hc))))
	}
	return New(append(opts, extra...)...), nil
}
