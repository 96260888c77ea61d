package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/stridesync/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrWorkoutNotFound is returned when a workout id does not exist.
var ErrWorkoutNotFound = errors.New("workout not found")

// InsertWorkout stores a new workout. Steps are persisted as a JSONB tree.
func (db *DB) InsertWorkout(ctx context.Context, w models.Workout) (models.Workout, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	steps, err := json.Marshal(w.Steps)
	if err != nil {
		return models.Workout{}, fmt.Errorf("marshaling steps: %w", err)
	}

	var scheduled *string
	if w.ScheduledDate != nil {
		s := w.ScheduledDate.String()
		scheduled = &s
	}
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO workouts (id, user_id, name, description, sport, steps, scheduled_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`, w.ID, w.UserID, w.Name, w.Description, w.Sport, steps, scheduled).
		Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return models.Workout{}, fmt.Errorf("inserting workout: %w", err)
	}
	return w, nil
}

// GetWorkout fetches one workout by id.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, description, sport, steps, scheduled_date,
		       sent_to_garmin, garmin_workout_id, sent_to_intervals, intervals_event_id,
		       created_at, updated_at
		FROM workouts WHERE id = $1
	`, id)
	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Workout{}, ErrWorkoutNotFound
	}
	if err != nil {
		return models.Workout{}, fmt.Errorf("fetching workout: %w", err)
	}
	return w, nil
}

// ListWorkouts returns a user's workouts, newest first.
func (db *DB) ListWorkouts(ctx context.Context, userID uuid.UUID) ([]models.Workout, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, name, description, sport, steps, scheduled_date,
		       sent_to_garmin, garmin_workout_id, sent_to_intervals, intervals_event_id,
		       created_at, updated_at
		FROM workouts WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	var workouts []models.Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		workouts = append(workouts, w)
	}
	return workouts, rows.Err()
}

// MarkSentToGarmin records a successful push: the sync flag and vendor id
// are set together so the sent-implies-id invariant holds in the database.
func (db *DB) MarkSentToGarmin(ctx context.Context, id uuid.UUID, vendorWorkoutID string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE workouts
		SET sent_to_garmin = TRUE, garmin_workout_id = $2, updated_at = NOW()
		WHERE id = $1
	`, id, vendorWorkoutID)
	if err != nil {
		return fmt.Errorf("marking workout sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// MarkSentToIntervals records a successful event push.
func (db *DB) MarkSentToIntervals(ctx context.Context, id uuid.UUID, eventID string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE workouts
		SET sent_to_intervals = TRUE, intervals_event_id = $2, updated_at = NOW()
		WHERE id = $1
	`, id, eventID)
	if err != nil {
		return fmt.Errorf("marking workout sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// UpdateScheduledDate moves the workout's planned date after a reschedule.
func (db *DB) UpdateScheduledDate(ctx context.Context, id uuid.UUID, date models.Date) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE workouts SET scheduled_date = $2, updated_at = NOW() WHERE id = $1
	`, id, date.String())
	if err != nil {
		return fmt.Errorf("updating scheduled date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// ClearVendorState resets sync flags after a vendor-side delete.
func (db *DB) ClearVendorState(ctx context.Context, id uuid.UUID, vendor string) error {
	var query string
	switch vendor {
	case "garmin":
		query = `UPDATE workouts SET sent_to_garmin = FALSE, garmin_workout_id = NULL, updated_at = NOW() WHERE id = $1`
	case "intervals":
		query = `UPDATE workouts SET sent_to_intervals = FALSE, intervals_event_id = NULL, updated_at = NOW() WHERE id = $1`
	default:
		return fmt.Errorf("unknown vendor %q", vendor)
	}
	if _, err := db.Pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("clearing vendor state: %w", err)
	}
	return nil
}

func scanWorkout(row pgx.Row) (models.Workout, error) {
	var (
		w         models.Workout
		steps     []byte
		scheduled *time.Time
		garminID  *string
		eventID   *string
	)
	err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.Description, &w.Sport, &steps, &scheduled,
		&w.SentToGarmin, &garminID, &w.SentToIntervals, &eventID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return models.Workout{}, err
	}
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &w.Steps); err != nil {
			return models.Workout{}, fmt.Errorf("unmarshaling steps: %w", err)
		}
	}
	if scheduled != nil {
		d := models.DateOf(*scheduled)
		w.ScheduledDate = &d
	}
	if garminID != nil {
		w.GarminWorkoutID = *garminID
	}
	if eventID != nil {
		w.IntervalsEventID = *eventID
	}
	return w, nil
}
