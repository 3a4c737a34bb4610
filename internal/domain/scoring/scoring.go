// Package scoring turns merged pull requests and event attendance into a
// ranked list of agents.
//
// A pass is a pure function of its inputs and the evaluation time: every call
// builds its own agent table, so there is no state shared between passes.
package scoring

import (
	"sort"
	"strings"
	"time"

	"github.com/pixel-phantoms/hud/internal/domain/model"
)

// Scoring matrix.
const (
	xpL3, massL3           = 1100, 30
	xpL2, massL2           = 500, 15
	xpL1, massL1           = 200, 10
	xpDefault, massDefault = 100, 5

	recencyVelocity = 10

	eventXP       = 250
	eventMass     = 2
	eventVelocity = 5

	firstContributionXP = 100
	prolificXP          = 500
	complexitySolverXP  = 300
	prolificThreshold   = 10

	// DefaultRecencyWindow is how far back a merge earns the velocity bonus.
	DefaultRecencyWindow = 60 * 24 * time.Hour
)

// Classification thresholds (strictly greater than).
const (
	titanMass       = 100
	strikerVelocity = 50
	scoutEvents     = 3
	overdriveVel    = 80
	onlineVel       = 20
)

// Tier is the complexity tier of a pull request, derived from its labels.
type Tier int

// Tiers in ascending complexity.
const (
	TierDefault Tier = iota
	TierL1
	TierL2
	TierL3
)

// tierMarkers lists label substrings from highest to lowest precedence.
var tierMarkers = []struct {
	marker string
	tier   Tier
}{
	{"level 3", TierL3},
	{"level 2", TierL2},
	{"level 1", TierL1},
}

// TierOf picks the complexity tier of a label set. The first marker found in
// any label wins, so "level 3" beats "level 2" regardless of label order.
func TierOf(labels []string) Tier {
	lowered := make([]string, len(labels))
	for i, l := range labels {
		lowered[i] = strings.ToLower(l)
	}
	for _, m := range tierMarkers {
		for _, l := range lowered {
			if strings.Contains(l, m.marker) {
				return m.tier
			}
		}
	}
	return TierDefault
}

// Gain returns the XP and mass a merged pull request of tier t is worth.
func (t Tier) Gain() (xp, mass int) {
	switch t {
	case TierL3:
		return xpL3, massL3
	case TierL2:
		return xpL2, massL2
	case TierL1:
		return xpL1, massL1
	default:
		return xpDefault, massDefault
	}
}

// Classify returns the tier class for final aggregates.
func Classify(mass, velocity, events int) model.Class {
	switch {
	case mass > titanMass:
		return model.ClassTitan
	case velocity > strikerVelocity:
		return model.ClassStriker
	case events > scoutEvents:
		return model.ClassScout
	default:
		return model.ClassRookie
	}
}

// StatusOf returns the activity status for a final velocity.
func StatusOf(velocity int) model.Status {
	switch {
	case velocity > overdriveVel:
		return model.StatusOverdrive
	case velocity > onlineVel:
		return model.StatusOnline
	default:
		return model.StatusIdle
	}
}

// AvatarFor is the avatar used when upstream did not supply one.
func AvatarFor(login string) string {
	return "https://github.com/" + login + ".png"
}

// Engine computes leaderboards. The zero value is not usable; call New.
type Engine struct {
	owner         string
	now           time.Time
	recencyWindow time.Duration
	achievements  bool
}

// New creates an Engine with achievements enabled and a 60 day recency window.
func New(opts ...Option) *Engine {
	e := &Engine{
		recencyWindow: DefaultRecencyWindow,
		achievements:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute is shorthand for New(opts...).Compute(prs, attendance).
func Compute(prs []model.PullRequest, attendance model.Attendance, opts ...Option) []model.Agent {
	return New(opts...).Compute(prs, attendance)
}

// table accumulates agents keyed by lower-cased login, remembering first-seen order.
type table struct {
	byKey map[string]*model.Agent
	order []*model.Agent
}

func (t *table) get(login, avatar string) *model.Agent {
	key := strings.ToLower(login)
	if a, ok := t.byKey[key]; ok {
		if a.AvatarURL == "" && avatar != "" {
			a.AvatarURL = avatar
		}
		return a
	}
	if avatar == "" {
		avatar = AvatarFor(login)
	}
	a := &model.Agent{Login: login, AvatarURL: avatar}
	t.byKey[key] = a
	t.order = append(t.order, a)
	return a
}

// Compute runs one scoring pass and returns agents ordered by rank.
func (e *Engine) Compute(prs []model.PullRequest, attendance model.Attendance) []model.Agent {
	now := e.now
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := now.Add(-e.recencyWindow)
	t := &table{byKey: make(map[string]*model.Agent)}

	for _, pr := range prs {
		login := strings.TrimSpace(pr.Author)
		if login == "" || !pr.Merged() || e.isOwner(login) {
			continue
		}
		a := t.get(login, pr.AvatarURL)

		tier := TierOf(pr.Labels)
		xp, mass := tier.Gain()
		a.XP += xp
		a.Mass += mass
		a.PRCount++

		if pr.MergedAt.After(cutoff) {
			a.Velocity += recencyVelocity
		}

		if e.achievements {
			e.unlock(a, tier)
		}
	}

	for _, login := range sortedLogins(attendance) {
		n := attendance[login]
		id := strings.TrimSpace(login)
		if id == "" || n <= 0 || e.isOwner(id) {
			continue
		}
		a := t.get(id, "")
		a.XP += n * eventXP
		a.Mass += n * eventMass
		a.Velocity += n * eventVelocity
		a.EventsAttended += n
	}

	sort.SliceStable(t.order, func(i, j int) bool {
		return t.order[i].XP > t.order[j].XP
	})

	out := make([]model.Agent, len(t.order))
	for i, a := range t.order {
		a.Rank = i + 1
		a.Class = Classify(a.Mass, a.Velocity, a.EventsAttended)
		a.Status = StatusOf(a.Velocity)
		out[i] = *a
	}
	return out
}

// unlock grants the achievements a freshly scored pull request qualifies for.
// Agent.Unlock makes each grant happen at most once per identity.
func (e *Engine) unlock(a *model.Agent, tier Tier) {
	if a.PRCount == 1 && a.Unlock(model.AchievementFirstContribution) {
		a.XP += firstContributionXP
	}
	if a.PRCount == prolificThreshold && a.Unlock(model.AchievementProlific) {
		a.XP += prolificXP
	}
	if tier == TierL3 && a.Unlock(model.AchievementComplexitySolver) {
		a.XP += complexitySolverXP
	}
}

func (e *Engine) isOwner(login string) bool {
	return e.owner != "" && strings.ToLower(login) == e.owner
}

// CountMerged returns the number of merged, non-owner pull requests per
// author. Logins differing only in case are one author, keyed by the
// first-seen spelling.
func CountMerged(prs []model.PullRequest, owner string) map[string]int {
	owner = strings.ToLower(strings.TrimSpace(owner))
	spelling := make(map[string]string)
	counts := make(map[string]int)
	for _, pr := range prs {
		login := strings.TrimSpace(pr.Author)
		key := strings.ToLower(login)
		if login == "" || !pr.Merged() || (owner != "" && key == owner) {
			continue
		}
		if first, ok := spelling[key]; ok {
			login = first
		} else {
			spelling[key] = login
		}
		counts[login]++
	}
	return counts
}

func sortedLogins(attendance model.Attendance) []string {
	logins := make([]string, 0, len(attendance))
	for login := range attendance {
		logins = append(logins, login)
	}
	sort.Strings(logins)
	return logins
}
