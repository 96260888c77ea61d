package fitsync

import "github.com/claude/stridesync/internal/models"

// PushResult reports the two independent outcomes of a workout push: the
// created vendor workout, and, when the workout carried a date, whether
// the schedule binding succeeded. A scheduling failure never rolls back the
// push; ScheduleError carries the reason when it happens.
type PushResult struct {
	WorkoutID     string       `json:"vendorWorkoutId"`
	Scheduled     bool         `json:"scheduled"`
	ScheduledDate *models.Date `json:"scheduledDate,omitempty"`
	ScheduleError string       `json:"scheduleError,omitempty"`
}
