// internal/model/models.go
package model

import (
	"strings"
	"time"
)

// Status is the normalized sale status of an event.
type Status string

const (
	StatusOnSale    Status = "on_sale"
	StatusCancelled Status = "cancelled"
	StatusPostponed Status = "postponed"
	StatusUnknown   Status = "unknown"
)

// NormalizeStatus maps a provider status code onto the internal enum.
// Unrecognized codes become StatusUnknown, never an error.
func NormalizeStatus(code string) Status {
	switch strings.ToLower(code) {
	case "onsale", "live", "started":
		return StatusOnSale
	case "cancelled", "canceled", "deleted":
		return StatusCancelled
	case "postponed":
		return StatusPostponed
	default:
		return StatusUnknown
	}
}

// Valid reports whether s is one of the internal enum values.
func (s Status) Valid() bool {
	switch s {
	case StatusOnSale, StatusCancelled, StatusPostponed, StatusUnknown:
		return true
	}
	return false
}

// VenueAddress holds the best-effort address extracted from a provider's
// venue payload. All fields may be empty.
type VenueAddress struct {
	Street     string `json:"street,omitempty"`
	Street2    string `json:"street2,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	State      string `json:"state,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Event is the normalized internal event record. ExternalID is the natural
// key; no two events ever share one.
type Event struct {
	ID           int64        `json:"-"`
	ExternalID   string       `json:"external_id"`
	Source       string       `json:"source"`
	Name         string       `json:"name"`
	StartTime    time.Time    `json:"start_time"`
	EndTime      time.Time    `json:"end_time"`
	TicketURL    string       `json:"ticket_url,omitempty"`
	Status       Status       `json:"status"`
	Category     string       `json:"category"`
	VenueID      int64        `json:"-"`
	VenueName    string       `json:"venue_name"`
	VenueAddress VenueAddress `json:"-"`
	ImageURL     string       `json:"image_url,omitempty"`
	Published    bool         `json:"published"`
	LastSyncedAt time.Time    `json:"last_synced_at"`
	DBCreatedAt  time.Time    `json:"-"`
	DBUpdatedAt  time.Time    `json:"-"`
}

// Venue is a place events reference by name. Matching is exact-string on
// Name, case-sensitive; the sync never duplicates or renames venues.
type Venue struct {
	ID         int64     `json:"-"`
	Name       string    `json:"name"`
	Street     string    `json:"street,omitempty"`
	Street2    string    `json:"street2,omitempty"`
	City       string    `json:"city,omitempty"`
	PostalCode string    `json:"postal_code,omitempty"`
	State      string    `json:"state,omitempty"`
	Country    string    `json:"country,omitempty"`
	CreatedAt  time.Time `json:"-"`
}

// SyncResult summarizes one sync run.
type SyncResult struct {
	Created   int       `json:"created"`
	Updated   int       `json:"updated"`
	Skipped   int       `json:"skipped"`
	Total     int       `json:"total"`
	StartedAt time.Time `json:"started_at"`
}
