package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/stridesync/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertConnection records a successful explicit connect for a vendor.
// Only the identifier (email or athlete id) and the connected flag are
// stored; credentials never reach the database.
func (db *DB) UpsertConnection(ctx context.Context, conn models.VendorConnection) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO vendor_connections (user_id, vendor, email, athlete_id, connected, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id, vendor) DO UPDATE
			SET email = $3, athlete_id = $4, connected = $5, updated_at = NOW()
	`, conn.UserID, conn.Vendor, conn.Email, conn.AthleteID, conn.Connected)
	if err != nil {
		return fmt.Errorf("upserting vendor connection: %w", err)
	}
	return nil
}

// GetConnection returns the stored bootstrap state for (user, vendor), or
// a zero-valued disconnected record when none exists.
func (db *DB) GetConnection(ctx context.Context, userID uuid.UUID, vendor string) (models.VendorConnection, error) {
	conn := models.VendorConnection{UserID: userID, Vendor: vendor}
	err := db.Pool.QueryRow(ctx, `
		SELECT email, athlete_id, connected, updated_at
		FROM vendor_connections WHERE user_id = $1 AND vendor = $2
	`, userID, vendor).Scan(&conn.Email, &conn.AthleteID, &conn.Connected, &conn.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return conn, nil
	}
	if err != nil {
		return models.VendorConnection{}, fmt.Errorf("fetching vendor connection: %w", err)
	}
	return conn, nil
}

// MarkDisconnected flips the connected flag after an explicit disconnect.
func (db *DB) MarkDisconnected(ctx context.Context, userID uuid.UUID, vendor string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE vendor_connections SET connected = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND vendor = $2
	`, userID, vendor)
	if err != nil {
		return fmt.Errorf("marking vendor disconnected: %w", err)
	}
	return nil
}
