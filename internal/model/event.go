package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is a listed event. EventName doubles as the key registrations refer to.
type Event struct {
	ID               int        `json:"-" db:"id"`
	EventID          uuid.UUID  `json:"_id" db:"event_id"`
	EventName        string     `json:"eventName" db:"event_name"`
	Category         string     `json:"category" db:"category"`
	OrganizationName string     `json:"organizationName" db:"organization_name"`
	OrganizerName    string     `json:"organizerName" db:"organizer_name"`
	OrganizerEmail   string     `json:"organizerEmail" db:"organizer_email"`
	MobileNumber     string     `json:"mobileNumber" db:"mobile_number"`
	Address          string     `json:"address" db:"address"`
	City             string     `json:"city" db:"city"`
	Latitude         string     `json:"latitude,omitempty" db:"latitude"`
	Longitude        string     `json:"longitude,omitempty" db:"longitude"`
	GoogleFormLink   string     `json:"googleFormLink,omitempty" db:"google_form_link"`
	Date             string     `json:"date" db:"event_date"`
	Time             string     `json:"time" db:"event_time"`
	EventDateTime    *time.Time `json:"eventDateTime,omitempty" db:"event_date_time"`
	ImagePath        string     `json:"imagePath" db:"image_path"`
	BrochurePath     string     `json:"brochurePath" db:"brochure_path"`
	OwnerID          int        `json:"createdBy" db:"owner_id"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsOwnedBy reports whether userID created the event.
func (e *Event) IsOwnedBy(userID int) bool {
	return userID != 0 && e.OwnerID == userID
}

// Expired reports whether the event is past its instant plus grace at now.
// Events without a derived instant never expire.
func (e *Event) Expired(now time.Time, grace time.Duration) bool {
	if e.EventDateTime == nil {
		return false
	}
	return e.EventDateTime.Add(grace).Before(now)
}

// EventScope selects which events a listing returns.
type EventScope struct {
	OwnerID int
}

// AllEvents lists every live event.
func AllEvents() EventScope {
	return EventScope{}
}

// OwnedBy lists only events created by ownerID.
func OwnedBy(ownerID int) EventScope {
	return EventScope{OwnerID: ownerID}
}

func (s EventScope) IsOwnerScoped() bool {
	return s.OwnerID != 0
}

// EventInput is a loosely-typed event submission. Date and time may arrive
// under either their primary or alternate key.
type EventInput struct {
	EventName        string `form:"eventName" json:"eventName"`
	Category         string `form:"category" json:"category"`
	OrganizationName string `form:"organizationName" json:"organizationName"`
	OrganizerName    string `form:"organizerName" json:"organizerName"`
	OrganizerEmail   string `form:"organizerEmail" json:"organizerEmail"`
	MobileNumber     string `form:"mobileNumber" json:"mobileNumber"`
	Address          string `form:"address" json:"address"`
	City             string `form:"city" json:"city"`
	Latitude         string `form:"latitude" json:"latitude"`
	Longitude        string `form:"longitude" json:"longitude"`
	GoogleFormLink   string `form:"googleFormLink" json:"googleFormLink"`
	Date             string `form:"date" json:"date"`
	EventDate        string `form:"eventDate" json:"eventDate"`
	Time             string `form:"time" json:"time"`
	EventTime        string `form:"eventTime" json:"eventTime"`
}

// ResolvedDate returns the trimmed date, falling back to eventDate when date is blank.
func (in EventInput) ResolvedDate() string {
	return firstNonBlank(in.Date, in.EventDate)
}

// ResolvedTime returns the trimmed time, falling back to eventTime when time is blank.
func (in EventInput) ResolvedTime() string {
	return firstNonBlank(in.Time, in.EventTime)
}

func firstNonBlank(primary, alternate string) string {
	if v := strings.TrimSpace(primary); v != "" {
		return v
	}
	return strings.TrimSpace(alternate)
}

// BlobJob asks the cleanup worker to remove a stored artifact.
type BlobJob struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

const (
	BlobReasonDeleted = "deleted"
	BlobReasonExpired = "expired"
	BlobReasonOrphan  = "orphan"
)
