package service

import (
	"time"

	"github.com/pixel-phantoms/hud/internal/domain/attendance"
	"github.com/pixel-phantoms/hud/internal/domain/scoring"
	"github.com/pixel-phantoms/hud/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPullRequests sets the pull request source.
func WithPullRequests(src PullRequestSource) Option {
	return func(s *Service) {
		s.pulls = src
	}
}

// WithAttendance sets the attendance sheet source.
func WithAttendance(src AttendanceSource) Option {
	return func(s *Service) {
		s.attendance = src
	}
}

// WithEvents sets the event feed source.
func WithEvents(src EventSource) Option {
	return func(s *Service) {
		s.events = src
	}
}

// WithAttendanceStrategy picks how attendance is obtained.
func WithAttendanceStrategy(st attendance.Strategy) Option {
	return func(s *Service) {
		if st != "" {
			s.strategy = st
		}
	}
}

// WithOwner excludes the repository owner from the leaderboard.
func WithOwner(owner string) Option {
	return func(s *Service) {
		s.owner = owner
	}
}

// WithRecencyWindow sets how recent a merge must be to add velocity.
func WithRecencyWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.recencyWindow = d
		}
	}
}

// WithAchievements toggles achievement bonuses.
func WithAchievements(enabled bool) Option {
	return func(s *Service) {
		s.achievements = enabled
	}
}

// WithFetchTimeout bounds the upstream fetch phase of a refresh.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithDemoFallback serves the demonstration dataset when every upstream fails.
func WithDemoFallback(enabled bool) Option {
	return func(s *Service) {
		s.demoFallback = enabled
	}
}

// WithWorkerCount sets the number of refresh workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending refresh jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the set of pending refresh reasons.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithSchedule enqueues a refresh on the cron spec, evaluated in loc.
func WithSchedule(spec string, loc *time.Location) Option {
	return func(s *Service) {
		s.schedule = spec
		if loc != nil {
			s.location = loc
		}
	}
}

// WithClock sets the evaluation clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func (s *Service) scoringOptions(now time.Time) []scoring.Option {
	return []scoring.Option{
		scoring.WithOwner(s.owner),
		scoring.WithNow(now),
		scoring.WithRecencyWindow(s.recencyWindow),
		scoring.WithAchievements(s.achievements),
	}
}
