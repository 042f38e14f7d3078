package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventify-backend/internal/database"
	"eventify-backend/internal/model"
	apperrors "eventify-backend/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	// List returns events in scope, newest first, hiding events whose instant is before liveAfter.
	List(ctx context.Context, scope model.EventScope, liveAfter time.Time) ([]*model.Event, error)
	FindByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) ([]*model.Event, error)

	// Transaction methods
	// FindLiveForUpdate locks an event that has not expired as of liveAfter.
	FindLiveForUpdate(ctx context.Context, tx database.Querier, eventID uuid.UUID, liveAfter time.Time) (*model.Event, error)
	Delete(ctx context.Context, tx database.Querier, id int) error
}

type EventRepositoryImpl struct {
	db database.DB
}

func NewEventRepository(db database.DB) EventRepository {
	return &EventRepositoryImpl{
		db: db,
	}
}

const eventColumns = `id, event_id, event_name, category, organization_name, organizer_name,
		organizer_email, mobile_number, address, city, latitude, longitude, google_form_link,
		event_date, event_time, event_date_time, image_path, brochure_path, owner_id,
		created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.EventID,
		&event.EventName,
		&event.Category,
		&event.OrganizationName,
		&event.OrganizerName,
		&event.OrganizerEmail,
		&event.MobileNumber,
		&event.Address,
		&event.City,
		&event.Latitude,
		&event.Longitude,
		&event.GoogleFormLink,
		&event.Date,
		&event.Time,
		&event.EventDateTime,
		&event.ImagePath,
		&event.BrochurePath,
		&event.OwnerID,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func collectEvents(rows pgx.Rows) ([]*model.Event, error) {
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := `
		INSERT INTO events (
			event_id, event_name, category, organization_name, organizer_name,
			organizer_email, mobile_number, address, city, latitude, longitude,
			google_form_link, event_date, event_time, event_date_time,
			image_path, brochure_path, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + eventColumns

	created, err := scanEvent(r.db.QueryRow(ctx, query,
		event.EventID, event.EventName, event.Category, event.OrganizationName, event.OrganizerName,
		event.OrganizerEmail, event.MobileNumber, event.Address, event.City, event.Latitude, event.Longitude,
		event.GoogleFormLink, event.Date, event.Time, event.EventDateTime,
		event.ImagePath, event.BrochurePath, event.OwnerID,
	))
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return created, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context, scope model.EventScope, liveAfter time.Time) ([]*model.Event, error) {
	conds := []string{}
	args := []interface{}{}
	argPos := 1

	if scope.IsOwnerScoped() {
		conds = append(conds, fmt.Sprintf("owner_id = $%d", argPos))
		args = append(args, scope.OwnerID)
		argPos++
	}

	if !liveAfter.IsZero() {
		conds = append(conds, fmt.Sprintf("(event_date_time IS NULL OR event_date_time >= $%d)", argPos))
		args = append(args, liveAfter)
		argPos++
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	// id is a sequence, so id DESC is reverse insertion order.
	query := fmt.Sprintf(`
		SELECT %s
		FROM events
		%s
		ORDER BY id DESC
	`, eventColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return collectEvents(rows)
}

func (r *EventRepositoryImpl) FindByEventID(ctx context.Context, eventID uuid.UUID) (*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE event_id = $1
	`

	event, err := scanEvent(r.db.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) FindLiveForUpdate(ctx context.Context, tx database.Querier, eventID uuid.UUID, liveAfter time.Time) (*model.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE event_id = $1 AND (event_date_time IS NULL OR event_date_time >= $2)
		FOR UPDATE
	`

	event, err := scanEvent(tx.QueryRow(ctx, query, eventID, liveAfter))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, tx database.Querier, id int) error {
	result, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrEventNotFound
	}
	return nil
}

func (r *EventRepositoryImpl) DeleteExpired(ctx context.Context, cutoff time.Time) ([]*model.Event, error) {
	query := `
		DELETE FROM events
		WHERE event_date_time IS NOT NULL AND event_date_time < $1
		RETURNING ` + eventColumns

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("delete expired events: %w", err)
	}
	return collectEvents(rows)
}
