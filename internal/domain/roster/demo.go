package roster

import (
	"github.com/pixel-phantoms/hud/internal/domain/model"
	"github.com/pixel-phantoms/hud/internal/domain/scoring"
)

// Demo returns the fixed demonstration leaderboard shown when every upstream
// source is unavailable. Each call returns a fresh copy. Class and status are
// derived from the aggregates like any scored agent.
func Demo() ([]model.Agent, model.EventStats) {
	agents := []model.Agent{
		{Login: "Neo_One", XP: 15000, Velocity: 90, Mass: 80, PRCount: 15, EventsAttended: 5},
		{Login: "Trinity", XP: 12500, Velocity: 75, Mass: 50, PRCount: 12, EventsAttended: 4},
		{Login: "Morpheus", XP: 9800, Velocity: 40, Mass: 60, PRCount: 20, EventsAttended: 1},
		{Login: "Cipher", XP: 5000, Velocity: 10, Mass: 20, PRCount: 5, EventsAttended: 8},
		{Login: "Switch", XP: 3200, Velocity: 85, Mass: 10, PRCount: 8, EventsAttended: 0},
	}
	for i := range agents {
		a := &agents[i]
		a.Rank = i + 1
		a.AvatarURL = scoring.AvatarFor(a.Login)
		a.Class = scoring.Classify(a.Mass, a.Velocity, a.EventsAttended)
		a.Status = scoring.StatusOf(a.Velocity)
	}
	return agents, model.EventStats{TotalEvents: 15, TotalAttendance: 450}
}
