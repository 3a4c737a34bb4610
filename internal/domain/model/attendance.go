package model

// Attendance maps an identity to the number of events it attended.
type Attendance map[string]int

// EventStats summarises an attendance source.
type EventStats struct {
	TotalEvents     int `json:"total_events"`     // distinct events
	TotalAttendance int `json:"total_attendance"` // attendance rows
}
