package models

import "time"

// Activity is the vendor-neutral read model for a recorded activity.
// Produced by vendor fetches only; this subsystem never mutates it.
type Activity struct {
	ID          string    `json:"activityId"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	DistanceM   float64   `json:"distance"`
	DurationSec float64   `json:"duration"`
	StartLocal  time.Time `json:"startTimeLocal"`
	AvgHR       *float64  `json:"avgHR,omitempty"`
	MaxHR       *float64  `json:"maxHR,omitempty"`
	AvgPace     *float64  `json:"avgPace,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	PlaceName   string    `json:"placeName,omitempty"`
}

// DailyStats aggregates today's health metrics. Every field is independently
// optional: each sub-metric is fetched on its own and a failure (or a vendor
// "no data" sentinel) leaves the field nil without affecting the others.
type DailyStats struct {
	Stress         *int `json:"stress,omitempty"`
	BodyBattery    *int `json:"bodyBattery,omitempty"`
	Steps          *int `json:"steps,omitempty"`
	StepsYesterday *int `json:"stepsYesterday,omitempty"`
}

// CalendarItem is one scheduled entry in a vendor calendar feed, normalized
// for callers. ScheduleID is the vendor-internal binding id needed to move
// or delete the entry; WorkoutID identifies the workout definition.
type CalendarItem struct {
	ScheduleID string `json:"scheduleId"`
	WorkoutID  string `json:"workoutId,omitempty"`
	Title      string `json:"title"`
	Date       Date   `json:"date"`
	ItemType   string `json:"itemType"`
}
