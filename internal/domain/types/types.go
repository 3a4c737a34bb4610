// Package types contains the wire shapes shared by the HTTP API and the CLI.
package types

import "github.com/pixel-phantoms/hud/internal/domain/model"

// Entry represents a leaderboard entry.
type Entry struct {
	Rank           int      `json:"rank"`
	Login          string   `json:"login"`
	AvatarURL      string   `json:"avatar_url"`
	XP             int      `json:"xp"`
	Mass           int      `json:"mass"`
	Velocity       int      `json:"velocity"`
	PRCount        int      `json:"pr_count"`
	EventsAttended int      `json:"events_attended"`
	Class          string   `json:"class"`
	Status         string   `json:"status"`
	Achievements   []string `json:"achievements"`
}

// FromAgent converts a ranked agent into its wire entry.
func FromAgent(a model.Agent) Entry {
	achievements := make([]string, len(a.Achievements))
	for i, ach := range a.Achievements {
		achievements[i] = string(ach)
	}
	return Entry{
		Rank:           a.Rank,
		Login:          a.Login,
		AvatarURL:      a.AvatarURL,
		XP:             a.XP,
		Mass:           a.Mass,
		Velocity:       a.Velocity,
		PRCount:        a.PRCount,
		EventsAttended: a.EventsAttended,
		Class:          string(a.Class),
		Status:         string(a.Status),
		Achievements:   achievements,
	}
}

// FromAgents converts agents in order.
func FromAgents(agents []model.Agent) []Entry {
	out := make([]Entry, len(agents))
	for i, a := range agents {
		out[i] = FromAgent(a)
	}
	return out
}

// Roster is the tiered roster on the wire.
type Roster struct {
	Gold   []Entry `json:"gold"`
	Silver []Entry `json:"silver"`
	Bronze []Entry `json:"bronze"`
}
