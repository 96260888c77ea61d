package intervals

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/claude/stridesync/internal/fitsync"
	"github.com/claude/stridesync/internal/models"
	"github.com/claude/stridesync/internal/observability"
	"github.com/google/uuid"
)

const (
	vendorName   = "Intervals"
	metricVendor = "intervals"
)

// matchWindowDays bounds the event scan around the date hint (or today)
// when a reschedule has to locate its target.
const matchWindowDays = 30

// MaxHRSource supplies a user's max heart rate for description rendering.
// Implemented by the storage layer; nil lookups fall back to absolute bpm.
type MaxHRSource interface {
	MaxHeartRate(ctx context.Context, userID uuid.UUID) (*int, error)
}

// Service exposes the intervals-side sync operations. The vendor has no
// structured-step API, so pushes land as calendar events whose description
// carries the rendered workout text.
type Service struct {
	sessions *fitsync.Manager[*Client]
	cache    *fitsync.Cache
	maxHR    MaxHRSource
	log      *slog.Logger
	now      func() time.Time
}

// NewService builds the intervals service against the given API base URL.
func NewService(baseURL string, cache *fitsync.Cache, maxHR MaxHRSource, livenessWindow time.Duration, log *slog.Logger) *Service {
	dial := func(ctx context.Context, creds fitsync.Credentials) (*Client, error) {
		return Dial(ctx, baseURL, creds)
	}
	probe := func(ctx context.Context, c *Client) error {
		return c.Profile(ctx)
	}
	return &Service{
		sessions: fitsync.NewManager(vendorName, metricVendor, dial, probe, livenessWindow, log),
		cache:    cache,
		maxHR:    maxHR,
		log:      log,
		now:      time.Now,
	}
}

// Connect validates the athlete id and API key and stores the session.
func (s *Service) Connect(ctx context.Context, userID uuid.UUID, athleteID, apiKey string) error {
	return s.sessions.Connect(ctx, userID, fitsync.Credentials{AthleteID: athleteID, APIKey: apiKey})
}

// Disconnect drops the user's session and cached credentials.
func (s *Service) Disconnect(userID uuid.UUID) {
	s.sessions.Disconnect(userID)
}

// IsConnected reports whether the user has a usable session.
func (s *Service) IsConnected(userID uuid.UUID) bool {
	return s.sessions.IsConnected(userID)
}

// Activities returns the user's activities from the last 30 days, newest
// first, capped at count. Cached for the engine TTL.
func (s *Service) Activities(ctx context.Context, userID uuid.UUID, count int) ([]models.Activity, error) {
	if count <= 0 {
		count = 10
	}
	key := fitsync.Key{UserID: userID, Resource: "intervals/activities", Params: strconv.Itoa(count)}
	if cached, ok := fitsync.Cached[[]models.Activity](s.cache, key); ok {
		observability.RecordCacheRequest("intervals/activities", "hit")
		return cached, nil
	}
	observability.RecordCacheRequest("intervals/activities", "miss")

	today := models.DateOf(s.now())
	var activities []models.Activity
	err := s.sessions.Do(ctx, userID, "fetch activities", func(c *Client) error {
		raw, err := c.Activities(ctx, today.AddDays(-matchWindowDays), today)
		if err != nil {
			return err
		}
		activities = toActivities(raw, count)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, activities)
	return activities, nil
}

// Events returns the user's calendar entries in [oldest, newest],
// normalized the same way the Garmin calendar read is, and cached for the
// engine TTL.
func (s *Service) Events(ctx context.Context, userID uuid.UUID, oldest, newest models.Date) ([]models.CalendarItem, error) {
	key := fitsync.Key{UserID: userID, Resource: "intervals/events",
		Params: oldest.String() + ".." + newest.String()}
	if cached, ok := fitsync.Cached[[]models.CalendarItem](s.cache, key); ok {
		observability.RecordCacheRequest("intervals/events", "hit")
		return cached, nil
	}
	observability.RecordCacheRequest("intervals/events", "miss")

	var items []models.CalendarItem
	err := s.sessions.Do(ctx, userID, "fetch events", func(c *Client) error {
		events, err := c.Events(ctx, oldest, newest)
		if err != nil {
			return err
		}
		items = toCalendarItems(events)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, items)
	return items, nil
}

// toCalendarItems normalizes vendor events. The event id doubles as the
// schedule id and, for workout events, as the workout id a push recorded.
// Entries with unparseable dates are dropped.
func toCalendarItems(events []Event) []models.CalendarItem {
	items := make([]models.CalendarItem, 0, len(events))
	for _, ev := range events {
		d, ok := ev.Date()
		if !ok {
			continue
		}
		item := models.CalendarItem{
			ScheduleID: strconv.FormatInt(ev.ID, 10),
			Title:      ev.Name,
			Date:       d,
			ItemType:   strings.ToLower(ev.Category),
		}
		if ev.Category == eventCategoryWorkout {
			item.WorkoutID = item.ScheduleID
		}
		items = append(items, item)
	}
	return items
}

// PushWorkout creates a calendar event carrying the rendered workout text.
// The event model has no separate schedule step: the event date is the
// schedule, so a dated workout comes back scheduled. An undated workout
// lands on today's date as an unscheduled placeholder.
func (s *Service) PushWorkout(ctx context.Context, userID uuid.UUID, workout models.Workout) (fitsync.PushResult, error) {
	var maxHR *int
	if s.maxHR != nil {
		hr, err := s.maxHR.MaxHeartRate(ctx, userID)
		if err != nil {
			s.log.Warn("max heart rate lookup failed", "user", userID, "error", err)
		} else {
			maxHR = hr
		}
	}

	date := models.DateOf(s.now())
	if workout.ScheduledDate != nil {
		date = *workout.ScheduledDate
	}
	ev := Event{
		Category:       eventCategoryWorkout,
		StartDateLocal: date.String() + "T00:00:00",
		Name:           workout.Name,
		Description:    ToDescription(workout, maxHR),
		Type:           toEventType(workout.Sport),
	}

	var result fitsync.PushResult
	err := s.sessions.Do(ctx, userID, "push workout", func(c *Client) error {
		created, err := c.CreateEvent(ctx, ev)
		if err != nil {
			return err
		}
		result.WorkoutID = strconv.FormatInt(created.ID, 10)
		return nil
	})
	if err != nil {
		return fitsync.PushResult{}, err
	}
	if workout.ScheduledDate != nil {
		result.Scheduled = true
		result.ScheduledDate = workout.ScheduledDate
	}
	s.cache.InvalidateUser(userID)
	return result, nil
}

// Reschedule moves a workout event to a new date. Events over a ±30 day
// window are matched first by event id, falling back to same category and
// same date when the caller's id is stale or unknown; the match is then
// updated in place with only start_date_local changed. No match is
// NotFound rather than a guess.
func (s *Service) Reschedule(ctx context.Context, userID uuid.UUID, eventID string, newDate models.Date, currentDate *models.Date) (models.Date, error) {
	center := models.DateOf(s.now())
	if currentDate != nil {
		center = *currentDate
	}

	err := s.sessions.Do(ctx, userID, "reschedule workout", func(c *Client) error {
		events, err := c.Events(ctx, center.AddDays(-matchWindowDays), center.AddDays(matchWindowDays))
		if err != nil {
			return err
		}
		target, ok := matchEvent(events, eventID, currentDate)
		if !ok {
			return fitsync.NotFound(vendorName, "workout event")
		}
		target.StartDateLocal = newDate.String() + "T00:00:00"
		return c.UpdateEvent(ctx, target)
	})
	if err != nil {
		return models.Date{}, err
	}
	s.cache.InvalidateUser(userID)
	return newDate, nil
}

// DeleteWorkout removes the workout event from the vendor calendar.
func (s *Service) DeleteWorkout(ctx context.Context, userID uuid.UUID, eventID string) error {
	id, err := strconv.ParseInt(eventID, 10, 64)
	if err != nil {
		return fitsync.NotFound(vendorName, "workout event")
	}
	err = s.sessions.Do(ctx, userID, "delete workout", func(c *Client) error {
		return c.DeleteEvent(ctx, id)
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateUser(userID)
	return nil
}

// matchEvent applies the reschedule fallback order: exact event id, then
// same category and same date. First match in feed order wins.
func matchEvent(events []Event, eventID string, date *models.Date) (Event, bool) {
	if id, err := strconv.ParseInt(eventID, 10, 64); err == nil {
		for _, ev := range events {
			if ev.ID == id {
				return ev, true
			}
		}
	}
	if date == nil {
		return Event{}, false
	}
	for _, ev := range events {
		if ev.Category != eventCategoryWorkout {
			continue
		}
		if d, ok := ev.Date(); ok && d == *date {
			return ev, true
		}
	}
	return Event{}, false
}

func toEventType(sport models.Sport) string {
	switch sport {
	case models.SportCycling:
		return "Ride"
	case models.SportSwimming:
		return "Swim"
	default:
		return "Run"
	}
}

func toActivities(raw []activityJSON, limit int) []models.Activity {
	activities := make([]models.Activity, 0, min(len(raw), limit))
	for _, a := range raw {
		if len(activities) == limit {
			break
		}
		act := models.Activity{
			ID:          a.ID,
			Name:        a.Name,
			Type:        a.Type,
			DistanceM:   a.Distance,
			DurationSec: a.MovingTime,
		}
		if t, err := time.Parse("2006-01-02T15:04:05", a.StartDateLocal); err == nil {
			act.StartLocal = t
		}
		if a.AverageHeartrate > 0 {
			v := a.AverageHeartrate
			act.AvgHR = &v
		}
		if a.MaxHeartrate > 0 {
			v := a.MaxHeartrate
			act.MaxHR = &v
		}
		activities = append(activities, act)
	}
	return activities
}
