// Package roster derives the read-only HUD views from a ranked leaderboard.
package roster

import (
	"math"

	"github.com/pixel-phantoms/hud/internal/domain/model"
)

// Roster tier thresholds (inclusive).
const (
	GoldXP   = 5000
	SilverXP = 2000
)

// Physics bar scales.
const (
	maxVelocity = 150.0
	maxMass     = 200.0
)

// View defaults.
const (
	DefaultChartSize = 20
	DefaultTableSize = 50
	minBarHeight     = 5.0
)

// Tiers groups agents into gold, silver and bronze lists, keeping rank order.
type Tiers struct {
	Gold   []model.Agent
	Silver []model.Agent
	Bronze []model.Agent
}

// Roster splits agents by XP tier.
func Roster(agents []model.Agent) Tiers {
	t := Tiers{
		Gold:   []model.Agent{},
		Silver: []model.Agent{},
		Bronze: []model.Agent{},
	}
	for _, a := range agents {
		switch {
		case a.XP >= GoldXP:
			t.Gold = append(t.Gold, a)
		case a.XP >= SilverXP:
			t.Silver = append(t.Silver, a)
		default:
			t.Bronze = append(t.Bronze, a)
		}
	}
	return t
}

// PhysicsBars are the top agent's bar widths in percent.
type PhysicsBars struct {
	Login    string  `json:"login,omitempty"`
	Velocity float64 `json:"velocity_pct"`
	Mass     float64 `json:"mass_pct"`
	Impact   float64 `json:"impact_pct"`
}

// Physics returns the bars for the first agent; empty input yields the zero value.
func Physics(agents []model.Agent) PhysicsBars {
	if len(agents) == 0 {
		return PhysicsBars{}
	}
	top := agents[0]
	return PhysicsBars{
		Login:    top.Login,
		Velocity: math.Min(float64(top.Velocity)*100/maxVelocity, 100),
		Mass:     math.Min(float64(top.Mass)*100/maxMass, 100),
		Impact:   100,
	}
}

// Bar is one column of the XP distribution chart.
type Bar struct {
	Login  string  `json:"login"`
	XP     int     `json:"xp"`
	Height float64 `json:"height_pct"`
}

// Chart returns bars for the top n agents, scaled against the first.
// n < 1 uses DefaultChartSize.
func Chart(agents []model.Agent, n int) []Bar {
	top := Table(agents, defaultIfUnset(n, DefaultChartSize))
	bars := make([]Bar, 0, len(top))
	if len(top) == 0 {
		return bars
	}
	maxXP := float64(top[0].XP)
	for _, a := range top {
		h := minBarHeight
		if maxXP > 0 {
			h = math.Max(float64(a.XP)*100/maxXP, minBarHeight)
		}
		bars = append(bars, Bar{Login: a.Login, XP: a.XP, Height: h})
	}
	return bars
}

// Table returns the first n agents. n < 1 uses DefaultTableSize.
func Table(agents []model.Agent, n int) []model.Agent {
	n = defaultIfUnset(n, DefaultTableSize)
	if n > len(agents) {
		n = len(agents)
	}
	out := make([]model.Agent, n)
	copy(out, agents[:n])
	return out
}

func defaultIfUnset(n, def int) int {
	if n < 1 {
		return def
	}
	return n
}
