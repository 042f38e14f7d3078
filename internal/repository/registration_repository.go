package repository

import (
	"context"
	"fmt"
	"time"

	"eventify-backend/internal/database"
	"eventify-backend/internal/model"
)

type RegistrationRepository interface {
	// Upsert inserts (userID, eventName) or refreshes registered_at if it exists.
	Upsert(ctx context.Context, userID int, eventName string, at time.Time) (*model.Registration, error)
	ListEventNames(ctx context.Context, userID int) ([]string, error)
	// DeleteByEventName removes every registration for eventName and returns the affected user ids.
	DeleteByEventName(ctx context.Context, tx database.Querier, eventName string) ([]int, error)
}

type RegistrationRepositoryImpl struct {
	db database.DB
}

func NewRegistrationRepository(db database.DB) RegistrationRepository {
	return &RegistrationRepositoryImpl{
		db: db,
	}
}

func (r *RegistrationRepositoryImpl) Upsert(ctx context.Context, userID int, eventName string, at time.Time) (*model.Registration, error) {
	// A single conditional statement: two racing calls for the same pair
	// serialize on the unique index and the loser becomes an update.
	query := `
		INSERT INTO registrations (user_id, event_name, registered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, event_name)
		DO UPDATE SET registered_at = EXCLUDED.registered_at
		RETURNING id, user_id, event_name, registered_at
	`

	var reg model.Registration
	err := r.db.QueryRow(ctx, query, userID, eventName, at).Scan(
		&reg.ID,
		&reg.UserID,
		&reg.EventName,
		&reg.RegisteredAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert registration: %w", err)
	}
	return &reg, nil
}

func (r *RegistrationRepositoryImpl) ListEventNames(ctx context.Context, userID int) ([]string, error) {
	query := `
		SELECT event_name
		FROM registrations
		WHERE user_id = $1
		ORDER BY event_name
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *RegistrationRepositoryImpl) DeleteByEventName(ctx context.Context, tx database.Querier, eventName string) ([]int, error) {
	query := `
		DELETE FROM registrations
		WHERE event_name = $1
		RETURNING user_id
	`

	rows, err := tx.Query(ctx, query, eventName)
	if err != nil {
		return nil, fmt.Errorf("delete registrations: %w", err)
	}
	defer rows.Close()

	userIDs := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return userIDs, nil
}
