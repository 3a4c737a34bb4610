// Package service wires the upstream sources, the scoring engine and the
// snapshot store behind the operations the HTTP API and CLI need.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pixel-phantoms/hud/internal/adapters/events"
	"github.com/pixel-phantoms/hud/internal/adapters/mq/queue"
	"github.com/pixel-phantoms/hud/internal/adapters/mq/worker"
	"github.com/pixel-phantoms/hud/internal/adapters/repository"
	"github.com/pixel-phantoms/hud/internal/adapters/scheduler"
	"github.com/pixel-phantoms/hud/internal/domain/attendance"
	"github.com/pixel-phantoms/hud/internal/domain/dedupe"
	"github.com/pixel-phantoms/hud/internal/domain/model"
	"github.com/pixel-phantoms/hud/internal/domain/roster"
	"github.com/pixel-phantoms/hud/internal/domain/scoring"
	"github.com/pixel-phantoms/hud/internal/domain/types"
	"github.com/pixel-phantoms/hud/pkg/logger"
	"github.com/pixel-phantoms/hud/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Refresh reasons.
const (
	ReasonStartup  = "startup"
	ReasonSchedule = "schedule"
	ReasonManual   = "manual"
)

// Upstream source names used in logs and metrics.
const (
	sourceGitHub     = "github"
	sourceAttendance = "attendance"
	sourceEvents     = "events"
)

// PullRequestSource returns pull requests; on error it may still return the
// records gathered before the failure.
type PullRequestSource interface {
	MergedPullRequests(ctx context.Context) ([]model.PullRequest, error)
}

// AttendanceSource returns per-identity attendance and its stats.
type AttendanceSource interface {
	Attendance(ctx context.Context) (attendance.Result, error)
}

// EventSource returns the event feed sorted by date.
type EventSource interface {
	Events(ctx context.Context) ([]model.Event, error)
}

// EventProposer accepts new event proposals. Event sources may implement it.
type EventProposer interface {
	Propose(ctx context.Context, e model.Event) error
}

// Service implements the API dependencies for the leaderboard.
type Service struct {
	mu        sync.RWMutex
	refreshMu sync.Mutex

	// Upstream
	pulls      PullRequestSource
	attendance AttendanceSource
	events     EventSource
	strategy   attendance.Strategy

	// Scoring
	owner         string
	recencyWindow time.Duration
	achievements  bool

	// Refresh pipeline
	store        *repository.SnapshotStore
	deduper      dedupe.Deduper
	queue        *queue.InMemoryQueue
	pool         *worker.Pool
	scheduler    *scheduler.Scheduler
	fetchTimeout time.Duration
	demoFallback bool

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
	schedule    string
	location    *time.Location
	now         func() time.Time

	started bool
	logger  logger.Logger
}

// New constructs a Service. Sources left unset contribute nothing.
func New(opts ...Option) *Service {
	s := &Service{
		strategy:      attendance.StrategyCSV,
		recencyWindow: scoring.DefaultRecencyWindow,
		achievements:  true,
		fetchTimeout:  30 * time.Second,
		workerCount:   1,
		queueSize:     8,
		dedupeSize:    64,
		location:      time.UTC,
		now:           time.Now,
		logger:        logger.Default().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.store = repository.NewSnapshotStore(repository.WithClock(s.now))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	return s
}

// Start launches the refresh workers and, if configured, the schedule.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.schedule != "" {
		s.scheduler = scheduler.New(s.location)
		err := s.scheduler.Schedule(s.schedule, func() {
			_, err := s.Enqueue(context.Background(), ReasonSchedule)
			if err != nil && !errors.Is(err, ErrAlreadyPending) {
				s.logger.Warn(context.Background(), "scheduled refresh not queued", logger.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("scheduling refresh: %w", err)
		}
		s.scheduler.Start()
	}

	s.pool = worker.NewPool(s.workerCount, s.queue, worker.HandlerFunc(s.Handle))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "leaderboard service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.String("strategy", string(s.strategy)),
		logger.String("schedule", s.schedule),
	)
	return nil
}

// Stop halts the schedule and drains the workers.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	var errs []error
	if s.scheduler != nil {
		errs = append(errs, s.scheduler.Stop(ctx))
	}
	if s.pool != nil {
		errs = append(errs, s.pool.Shutdown(ctx))
	}

	s.started = false
	s.logger.Info(ctx, "leaderboard service stopped")
	return errors.Join(errs...)
}

// Enqueue asks for an asynchronous refresh. A reason that is already
// pending is coalesced and reported with ErrAlreadyPending.
func (s *Service) Enqueue(ctx context.Context, reason string) (queue.Job, error) {
	if s.deduper.SeenAndRecord(ctx, reason) {
		metrics.RecordDuplicateRefresh()
		return queue.Job{}, ErrAlreadyPending
	}

	job := queue.NewJob(reason)
	if !s.queue.Enqueue(ctx, job) {
		s.deduper.Unrecord(ctx, reason)
		return queue.Job{}, ErrQueueFull
	}

	s.logger.Debug(ctx, "refresh queued",
		logger.String("job_id", job.ID.String()),
		logger.String("reason", reason),
	)
	return job, nil
}

// Handle runs a dequeued refresh job. The reason is released first so a
// request arriving mid-pass queues a fresh one.
func (s *Service) Handle(ctx context.Context, job queue.Job) error {
	s.deduper.Unrecord(ctx, job.Reason)
	return s.Refresh(ctx, job.Reason)
}

// upstream holds what one refresh pass gathered.
type upstream struct {
	prs        []model.PullRequest
	attendance attendance.Result
	events     []model.Event

	prErr, attErr, evErr error
}

func (u *upstream) partial() bool {
	return u.prErr != nil || u.attErr != nil || u.evErr != nil
}

// Refresh fetches every upstream concurrently, scores and publishes a new
// snapshot. Upstream failures degrade to empty input; only cancellation of
// ctx fails the pass. Passes never overlap.
func (s *Service) Refresh(ctx context.Context, reason string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	start := time.Now()
	evalTime := s.now()

	up := s.fetch(ctx)
	if err := ctx.Err(); err != nil {
		_ = metrics.RecordRefresh(metrics.OutcomeFailed, time.Since(start))
		return fmt.Errorf("refresh %s: %w", reason, err)
	}

	res := up.attendance
	if s.strategy == attendance.StrategyDerived {
		res = attendance.Derive(scoring.CountMerged(up.prs, s.owner), len(up.events))
	}

	agents := scoring.Compute(up.prs, res.Attendance, s.scoringOptions(evalTime)...)
	snap := repository.Snapshot{
		Agents:      agents,
		Stats:       res.Stats,
		Events:      up.events,
		GeneratedAt: evalTime,
		Strategy:    string(s.strategy),
		Partial:     up.partial(),
	}

	outcome := metrics.OutcomeOK
	if snap.Partial {
		outcome = metrics.OutcomePartial
	}
	if len(agents) == 0 && snap.Partial && s.demoFallback {
		snap.Agents, snap.Stats = roster.Demo()
		snap.Demo = true
		outcome = metrics.OutcomeFallback
	}

	if err := s.store.Replace(ctx, snap); err != nil {
		_ = metrics.RecordRefresh(metrics.OutcomeFailed, time.Since(start))
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	_ = metrics.RecordRefresh(outcome, time.Since(start))

	s.logger.Info(ctx, "leaderboard refreshed",
		logger.String("reason", reason),
		logger.String("outcome", outcome),
		logger.Int("pull_requests", len(up.prs)),
		logger.Int("agents", len(snap.Agents)),
		logger.Int("events", len(up.events)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// fetch gathers all upstreams concurrently. Each branch records its own
// error and returns nil so one failure never cancels the others.
func (s *Service) fetch(ctx context.Context) *upstream {
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	up := &upstream{attendance: attendance.Empty()}
	g, gctx := errgroup.WithContext(fctx)

	if s.pulls != nil {
		g.Go(func() error {
			up.prs, up.prErr = s.pulls.MergedPullRequests(gctx)
			s.degraded(ctx, sourceGitHub, up.prErr)
			return nil
		})
	}
	if s.attendance != nil && s.strategy == attendance.StrategyCSV {
		g.Go(func() error {
			res, err := s.attendance.Attendance(gctx)
			if err != nil {
				res = attendance.Empty()
			}
			up.attendance, up.attErr = res, err
			s.degraded(ctx, sourceAttendance, err)
			return nil
		})
	}
	if s.events != nil {
		g.Go(func() error {
			up.events, up.evErr = s.events.Events(gctx)
			s.degraded(ctx, sourceEvents, up.evErr)
			return nil
		})
	}

	_ = g.Wait()
	return up
}

func (s *Service) degraded(ctx context.Context, source string, err error) {
	if err == nil {
		return
	}
	metrics.RecordUpstreamError(source)
	s.logger.Warn(ctx, "upstream degraded", logger.String("source", source), logger.Error(err))
}

// Snapshot returns the current published snapshot.
func (s *Service) Snapshot(ctx context.Context) repository.Snapshot {
	return s.store.Current(ctx)
}

// TopN returns the top N leaderboard entries.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	agents, err := s.store.TopN(ctx, n)
	if err != nil {
		return nil, err
	}
	return types.FromAgents(agents), nil
}

// Rank returns the entry for login, ignoring case.
func (s *Service) Rank(ctx context.Context, login string) (types.Entry, error) {
	a, err := s.store.Rank(ctx, login)
	if err != nil {
		return types.Entry{}, err
	}
	return types.FromAgent(a), nil
}

// Roster returns every agent grouped by XP tier.
func (s *Service) Roster(ctx context.Context) types.Roster {
	t := roster.Roster(s.store.Current(ctx).Agents)
	return types.Roster{
		Gold:   types.FromAgents(t.Gold),
		Silver: types.FromAgents(t.Silver),
		Bronze: types.FromAgents(t.Bronze),
	}
}

// Physics returns the top agent's bars.
func (s *Service) Physics(ctx context.Context) roster.PhysicsBars {
	return roster.Physics(s.store.Current(ctx).Agents)
}

// Chart returns the XP distribution for the top n agents.
func (s *Service) Chart(ctx context.Context, n int) []roster.Bar {
	return roster.Chart(s.store.Current(ctx).Agents, n)
}

// EventFeed is the published event list plus the featured event.
type EventFeed struct {
	Events []model.Event `json:"events"`
	Next   *model.Event  `json:"next,omitempty"`
}

// Events returns the event feed of the current snapshot.
func (s *Service) Events(ctx context.Context) EventFeed {
	evs := s.store.Current(ctx).Events
	feed := EventFeed{Events: evs}
	if feed.Events == nil {
		feed.Events = []model.Event{}
	}
	if next, ok := events.Next(evs, s.now()); ok {
		feed.Next = &next
	}
	return feed
}

// ProposeEvent forwards a proposal to the event source.
func (s *Service) ProposeEvent(ctx context.Context, e model.Event) error {
	p, ok := s.events.(EventProposer)
	if !ok {
		return ErrProposalsDisabled
	}
	return p.Propose(ctx, e)
}

// Stats summarises the service and its current snapshot.
type Stats struct {
	Started         bool      `json:"started"`
	Agents          int       `json:"agents"`
	TotalEvents     int       `json:"total_events"`
	TotalAttendance int       `json:"total_attendance"`
	GeneratedAt     time.Time `json:"generated_at"`
	Strategy        string    `json:"strategy"`
	Partial         bool      `json:"partial"`
	Demo            bool      `json:"demo"`
	QueueLength     int       `json:"queue_length"`
	PendingReasons  int64     `json:"pending_reasons"`
	Workers         int       `json:"workers"`
	NextRefresh     time.Time `json:"next_refresh,omitempty"`
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.store.Current(ctx)
	st := Stats{
		Started:         s.started,
		Agents:          len(snap.Agents),
		TotalEvents:     snap.Stats.TotalEvents,
		TotalAttendance: snap.Stats.TotalAttendance,
		GeneratedAt:     snap.GeneratedAt,
		Strategy:        snap.Strategy,
		Partial:         snap.Partial,
		Demo:            snap.Demo,
		QueueLength:     s.queue.Len(ctx),
		PendingReasons:  s.deduper.Size(),
		Workers:         s.workerCount,
	}
	if s.scheduler != nil {
		st.NextRefresh = s.scheduler.Next()
	}
	metrics.UpdateQueueLength(st.QueueLength)
	return st
}
