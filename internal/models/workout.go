package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Sport is the vendor-neutral sport of a workout.
type Sport string

const (
	SportRunning  Sport = "running"
	SportCycling  Sport = "cycling"
	SportSwimming Sport = "swimming"
)

// StepType classifies a workout step.
type StepType string

const (
	StepWarmup   StepType = "warmup"
	StepInterval StepType = "interval"
	StepRecovery StepType = "recovery"
	StepRest     StepType = "rest"
	StepCooldown StepType = "cooldown"
	StepRepeat   StepType = "repeat"
)

// DurationType says how a step ends.
type DurationType string

const (
	DurationTime      DurationType = "time"
	DurationDistance  DurationType = "distance"
	DurationLapButton DurationType = "lap-button"
)

// TargetType classifies a step's intensity target.
type TargetType string

const (
	TargetNone      TargetType = "no-target"
	TargetPaceZone  TargetType = "pace-zone"
	TargetHeartRate TargetType = "heart-rate-zone"
	TargetPowerZone TargetType = "power-zone"
	TargetCadence   TargetType = "cadence"
)

// WorkoutStep is one node of a workout's step tree. Leaf steps carry a
// duration and target; repeat steps carry a count and child steps instead.
//
// Duration semantics: seconds for DurationTime, meters for DurationDistance,
// nil for DurationLapButton. Target semantics: seconds-per-km for pace
// (low = faster), bpm for heart rate, watts for power, rpm for cadence.
type WorkoutStep struct {
	Type          StepType      `json:"stepType"`
	DurationType  DurationType  `json:"durationType,omitempty"`
	DurationValue *float64      `json:"durationValue,omitempty"`
	TargetType    TargetType    `json:"targetType,omitempty"`
	TargetLow     *float64      `json:"targetValueLow,omitempty"`
	TargetHigh    *float64      `json:"targetValueHigh,omitempty"`
	Stroke        string        `json:"strokeType,omitempty"`
	RepeatCount   *int          `json:"repeatCount,omitempty"`
	Steps         []WorkoutStep `json:"childSteps,omitempty"`
}

// IsRepeat reports whether the step is a repeat group.
func (s WorkoutStep) IsRepeat() bool { return s.Type == StepRepeat }

// Validate checks the structural invariants of the step tree: repeat steps
// have a count >= 1 and at least one child, non-repeat steps have neither.
func (s WorkoutStep) Validate() error {
	if s.IsRepeat() {
		if s.RepeatCount != nil && *s.RepeatCount < 1 {
			return fmt.Errorf("repeat step: repeatCount %d < 1", *s.RepeatCount)
		}
		if len(s.Steps) == 0 {
			return fmt.Errorf("repeat step: no child steps")
		}
		for i, child := range s.Steps {
			if child.IsRepeat() {
				return fmt.Errorf("repeat step: nested repeat at child %d", i)
			}
			if err := child.Validate(); err != nil {
				return fmt.Errorf("child %d: %w", i, err)
			}
		}
		return nil
	}
	if len(s.Steps) > 0 {
		return fmt.Errorf("%s step: childSteps only allowed on repeat steps", s.Type)
	}
	if s.RepeatCount != nil {
		return fmt.Errorf("%s step: repeatCount only allowed on repeat steps", s.Type)
	}
	return nil
}

// Workout is the vendor-neutral workout definition plus its per-vendor sync
// state. ScheduledDate is a calendar date with no time-of-day component.
type Workout struct {
	ID            uuid.UUID     `json:"id"`
	UserID        uuid.UUID     `json:"userId"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Sport         Sport         `json:"sportType"`
	Steps         []WorkoutStep `json:"steps"`
	ScheduledDate *Date         `json:"scheduledDate,omitempty"`

	SentToGarmin     bool   `json:"sentToGarmin"`
	GarminWorkoutID  string `json:"garminWorkoutId,omitempty"`
	SentToIntervals  bool   `json:"sentToIntervals"`
	IntervalsEventID string `json:"intervalsEventId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the workout's step tree and sync-flag invariants.
func (w Workout) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("workout name required")
	}
	for i, s := range w.Steps {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	if w.SentToGarmin && w.GarminWorkoutID == "" {
		return fmt.Errorf("sentToGarmin set without garminWorkoutId")
	}
	if w.SentToIntervals && w.IntervalsEventID == "" {
		return fmt.Errorf("sentToIntervals set without intervalsEventId")
	}
	return nil
}
