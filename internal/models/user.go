package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an athlete account. MaxHeartRate feeds the vendor B description
// renderer (percent-of-max formatting) when known.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	MaxHeartRate *int      `json:"maxHeartRate,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// VendorConnection is the persisted bootstrap state for a (user, vendor)
// pair: enough to show connection status in a UI, never the credentials
// themselves. Raw credentials live only in the session manager's memory.
type VendorConnection struct {
	UserID    uuid.UUID `json:"userId"`
	Vendor    string    `json:"vendor"`
	Email     string    `json:"email,omitempty"`
	AthleteID string    `json:"athleteId,omitempty"`
	Connected bool      `json:"connected"`
	UpdatedAt time.Time `json:"updatedAt"`
}
