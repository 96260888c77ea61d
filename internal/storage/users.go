package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/stridesync/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrUserNotFound is returned when a user id does not exist.
var ErrUserNotFound = errors.New("user not found")

// CreateUser inserts a new user and returns it with its generated id.
func (db *DB) CreateUser(ctx context.Context, name string, maxHeartRate *int) (models.User, error) {
	user := models.User{ID: uuid.New(), Name: name, MaxHeartRate: maxHeartRate}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (id, name, max_heart_rate)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, user.ID, user.Name, user.MaxHeartRate).Scan(&user.CreatedAt)
	if err != nil {
		return models.User{}, fmt.Errorf("inserting user: %w", err)
	}
	return user, nil
}

// GetUser fetches a user by id.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	var u models.User
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, max_heart_rate, created_at FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Name, &u.MaxHeartRate, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("fetching user: %w", err)
	}
	return u, nil
}

// MaxHeartRate returns the user's max heart rate, or nil when unknown.
// Satisfies intervals.MaxHRSource for description rendering.
func (db *DB) MaxHeartRate(ctx context.Context, userID uuid.UUID) (*int, error) {
	var maxHR *int
	err := db.Pool.QueryRow(ctx, `
		SELECT max_heart_rate FROM users WHERE id = $1
	`, userID).Scan(&maxHR)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching max heart rate: %w", err)
	}
	return maxHR, nil
}
