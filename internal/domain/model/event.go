package model

import "time"

// Event is a community event listing.
type Event struct {
	Title       string    `json:"title"`
	Date        string    `json:"date"` // as published upstream
	Time        time.Time `json:"-"`    // parsed Date, zero when unparseable
	Type        string    `json:"type,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Link        string    `json:"link,omitempty"`
	Status      string    `json:"status,omitempty"`
}
