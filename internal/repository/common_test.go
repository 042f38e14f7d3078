package repository

import (
	"testing"
	"time"

	"eventify-backend/internal/model"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var eventColumnNames = []string{
	"id", "event_id", "event_name", "category", "organization_name", "organizer_name",
	"organizer_email", "mobile_number", "address", "city", "latitude", "longitude", "google_form_link",
	"event_date", "event_time", "event_date_time", "image_path", "brochure_path", "owner_id",
	"created_at", "updated_at",
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

// newTestEvent builds a fully-populated event row for scanning.
func newTestEvent(id int, name string, ownerID int) *model.Event {
	at := time.Date(2026, 5, 1, 18, 30, 0, 0, time.UTC)
	created := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	return &model.Event{
		ID:               id,
		EventID:          uuid.New(),
		EventName:        name,
		Category:         "Music",
		OrganizationName: "City Arts",
		OrganizerName:    "Jordan",
		OrganizerEmail:   "jordan@example.com",
		MobileNumber:     "5550100",
		Address:          "1 Main St",
		City:             "Springfield",
		Latitude:         "12.97",
		Longitude:        "77.59",
		GoogleFormLink:   "https://forms.example.com/x",
		Date:             "2026-05-01",
		Time:             "18:30",
		EventDateTime:    &at,
		ImagePath:        "uploads/eventImage-1.png",
		BrochurePath:     "uploads/eventBrochure-1.pdf",
		OwnerID:          ownerID,
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func addEventRow(rows *pgxmock.Rows, e *model.Event) *pgxmock.Rows {
	return rows.AddRow(
		e.ID, e.EventID, e.EventName, e.Category, e.OrganizationName, e.OrganizerName,
		e.OrganizerEmail, e.MobileNumber, e.Address, e.City, e.Latitude, e.Longitude, e.GoogleFormLink,
		e.Date, e.Time, e.EventDateTime, e.ImagePath, e.BrochurePath, e.OwnerID,
		e.CreatedAt, e.UpdatedAt,
	)
}
