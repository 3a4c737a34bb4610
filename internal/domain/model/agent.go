package model

// Class is the coarse contributor category.
type Class string

// Tier classes, checked in this order.
const (
	ClassTitan   Class = "TITAN"
	ClassStriker Class = "STRIKER"
	ClassScout   Class = "SCOUT"
	ClassRookie  Class = "ROOKIE"
)

// Status is the activity indicator derived from velocity.
type Status string

// Statuses.
const (
	StatusOverdrive Status = "OVERDRIVE"
	StatusOnline    Status = "ONLINE"
	StatusIdle      Status = "IDLE"
)

// Achievement identifies a one-time unlock.
type Achievement string

// Achievements.
const (
	AchievementFirstContribution Achievement = "first_contribution"
	AchievementProlific          Achievement = "prolific"
	AchievementComplexitySolver  Achievement = "complexity_solver"
)

// Agent is a ranked contributor record.
type Agent struct {
	Login          string
	AvatarURL      string
	XP             int
	Mass           int
	Velocity       int
	PRCount        int
	EventsAttended int
	Rank           int
	Class          Class
	Status         Status
	Achievements   []Achievement // unlock order, no duplicates
}

// HasAchievement reports whether a has already unlocked ach.
func (a *Agent) HasAchievement(ach Achievement) bool {
	for _, got := range a.Achievements {
		if got == ach {
			return true
		}
	}
	return false
}

// Unlock records ach and reports whether it was newly unlocked.
func (a *Agent) Unlock(ach Achievement) bool {
	if a.HasAchievement(ach) {
		return false
	}
	a.Achievements = append(a.Achievements, ach)
	return true
}
