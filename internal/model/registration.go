package model

import "time"

// Registration records that a user registered for an event, keyed by event name.
type Registration struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"userId" db:"user_id"`
	EventName    string    `json:"eventName" db:"event_name"`
	RegisteredAt time.Time `json:"registeredAt" db:"registered_at"`
}

// RegisterEventRequest is the body of POST /api/register-event.
type RegisterEventRequest struct {
	EventName string `json:"eventName"`
	Link      string `json:"link"`
}

// PendingRegistration is a registration attempt captured before the caller
// had an identity. It is replayed once after login.
type PendingRegistration struct {
	ID        string    `json:"id"`
	EventName string    `json:"eventName"`
	Link      string    `json:"link,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegistrationsResponse is the body of GET /api/user-registrations.
type RegistrationsResponse struct {
	RegisteredEvents []string `json:"registeredEvents"`
}
