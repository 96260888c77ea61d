package garmin

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/claude/stridesync/internal/fitsync"
	"github.com/claude/stridesync/internal/models"
	"github.com/claude/stridesync/internal/observability"
	"github.com/google/uuid"
)

// vendorName appears in user-facing error messages; metricVendor labels
// prometheus series.
const (
	vendorName   = "Garmin"
	metricVendor = "garmin"
)

// Service exposes the Garmin sync operations: session lifecycle, cached
// reads, and workout mutations under the engine's uniform retry policy.
type Service struct {
	sessions *fitsync.Manager[*Client]
	cache    *fitsync.Cache
	log      *slog.Logger
	now      func() time.Time
}

// NewService builds the Garmin service against the given API base URL.
func NewService(baseURL string, cache *fitsync.Cache, livenessWindow time.Duration, log *slog.Logger) *Service {
	dial := func(ctx context.Context, creds fitsync.Credentials) (*Client, error) {
		return Dial(ctx, baseURL, creds)
	}
	probe := func(ctx context.Context, c *Client) error {
		return c.Profile(ctx)
	}
	return &Service{
		sessions: fitsync.NewManager(vendorName, metricVendor, dial, probe, livenessWindow, log),
		cache:    cache,
		log:      log,
		now:      time.Now,
	}
}

// Connect performs an explicit login with the user's credentials.
func (s *Service) Connect(ctx context.Context, userID uuid.UUID, email, password string) error {
	return s.sessions.Connect(ctx, userID, fitsync.Credentials{Email: email, Password: password})
}

// Disconnect drops the user's session and cached credentials.
func (s *Service) Disconnect(userID uuid.UUID) {
	s.sessions.Disconnect(userID)
}

// IsConnected reports whether the user has a usable session.
func (s *Service) IsConnected(userID uuid.UUID) bool {
	return s.sessions.IsConnected(userID)
}

// Activities returns the user's most recent activities, cached for the
// engine TTL.
func (s *Service) Activities(ctx context.Context, userID uuid.UUID, count int) ([]models.Activity, error) {
	if count <= 0 {
		count = 10
	}
	key := fitsync.Key{UserID: userID, Resource: "garmin/activities", Params: strconv.Itoa(count)}
	if cached, ok := fitsync.Cached[[]models.Activity](s.cache, key); ok {
		observability.RecordCacheRequest("garmin/activities", "hit")
		return cached, nil
	}
	observability.RecordCacheRequest("garmin/activities", "miss")

	var activities []models.Activity
	err := s.sessions.Do(ctx, userID, "fetch activities", func(c *Client) error {
		raw, err := c.Activities(ctx, count)
		if err != nil {
			return err
		}
		activities = toActivities(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, activities)
	return activities, nil
}

// Calendar returns one month of the user's calendar, cached for the engine
// TTL. Zero year/month default to the current month.
func (s *Service) Calendar(ctx context.Context, userID uuid.UUID, year, month int) ([]models.CalendarItem, error) {
	if year == 0 || month == 0 {
		now := s.now()
		year, month = now.Year(), int(now.Month())
	}
	key := fitsync.Key{UserID: userID, Resource: "garmin/calendar",
		Params: strconv.Itoa(year) + "-" + strconv.Itoa(month)}
	if cached, ok := fitsync.Cached[[]models.CalendarItem](s.cache, key); ok {
		observability.RecordCacheRequest("garmin/calendar", "hit")
		return cached, nil
	}
	observability.RecordCacheRequest("garmin/calendar", "miss")

	var items []models.CalendarItem
	err := s.sessions.Do(ctx, userID, "fetch calendar", func(c *Client) error {
		feed, err := c.Calendar(ctx, year, month)
		if err != nil {
			return err
		}
		items = toCalendarItems(feed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, items)
	return items, nil
}

// DailyStats aggregates today's stress, body battery, and step counts.
// Each sub-metric is fetched independently: one failing leaves the others
// intact, and the vendor's zero sentinel for stress and body battery maps
// to absent rather than a real zero. A session-level failure (not
// connected, auth expired) surfaces as the overall error.
func (s *Service) DailyStats(ctx context.Context, userID uuid.UUID) (models.DailyStats, error) {
	today := models.DateOf(s.now())
	key := fitsync.Key{UserID: userID, Resource: "garmin/daily", Params: today.String()}
	if cached, ok := fitsync.Cached[models.DailyStats](s.cache, key); ok {
		observability.RecordCacheRequest("garmin/daily", "hit")
		return cached, nil
	}
	observability.RecordCacheRequest("garmin/daily", "miss")

	var stats models.DailyStats
	failed := false

	fetch := func(op string, get func(c *Client) (int, error), dest **int, zeroIsMissing bool) error {
		err := s.sessions.Do(ctx, userID, op, func(c *Client) error {
			v, err := get(c)
			if err != nil {
				return err
			}
			if zeroIsMissing && v == 0 {
				return nil
			}
			value := v
			*dest = &value
			return nil
		})
		if err != nil {
			failed = true
			s.log.Warn("daily stat fetch failed", "vendor", metricVendor, "op", op, "error", err)
		}
		return err
	}

	errStress := fetch("fetch stress", func(c *Client) (int, error) {
		return c.DailyStress(ctx, today)
	}, &stats.Stress, true)

	// A dead connection fails every metric the same way; bail out early
	// with the typed error instead of returning an empty struct.
	if kind := fitsync.KindOf(errStress); kind == fitsync.KindNotConnected || kind == fitsync.KindAuthExpired {
		return models.DailyStats{}, errStress
	}

	fetch("fetch body battery", func(c *Client) (int, error) {
		return c.BodyBattery(ctx, today)
	}, &stats.BodyBattery, true)
	fetch("fetch steps", func(c *Client) (int, error) {
		return c.DailySteps(ctx, today)
	}, &stats.Steps, false)
	fetch("fetch steps yesterday", func(c *Client) (int, error) {
		return c.DailySteps(ctx, today.AddDays(-1))
	}, &stats.StepsYesterday, false)

	// A transient per-metric failure must not pin its nil field for the
	// whole TTL; only a fully assembled read is worth caching.
	if !failed {
		s.cache.Set(key, stats)
	}
	return stats, nil
}

// PushWorkout creates the workout at the vendor and, when the workout has a
// scheduled date, binds it to the calendar. The two outcomes are
// independent; see PushResult.
func (s *Service) PushWorkout(ctx context.Context, userID uuid.UUID, workout models.Workout) (fitsync.PushResult, error) {
	dto := ToWorkout(workout)

	var result fitsync.PushResult
	err := s.sessions.Do(ctx, userID, "push workout", func(c *Client) error {
		id, err := c.CreateWorkout(ctx, dto)
		if err != nil {
			return err
		}
		result.WorkoutID = id
		return nil
	})
	if err != nil {
		return fitsync.PushResult{}, err
	}
	s.cache.InvalidateUser(userID)

	if workout.ScheduledDate != nil {
		date := *workout.ScheduledDate
		schedErr := s.sessions.Do(ctx, userID, "schedule workout", func(c *Client) error {
			_, err := c.ScheduleWorkout(ctx, result.WorkoutID, date)
			return err
		})
		if schedErr != nil {
			// The workout exists unscheduled; report the partial outcome.
			s.log.Warn("workout pushed but scheduling failed",
				"user", userID, "workout", result.WorkoutID, "error", schedErr)
			result.ScheduleError = schedErr.Error()
			return result, nil
		}
		result.Scheduled = true
		result.ScheduledDate = &date
		s.cache.InvalidateUser(userID)
	}
	return result, nil
}

// Reschedule moves a scheduled workout to a new date. The vendor has no
// move primitive, so the existing schedule entry is resolved from the
// calendar feed, deleted, and a fresh binding created for the new date.
func (s *Service) Reschedule(ctx context.Context, userID uuid.UUID, vendorWorkoutID string, newDate models.Date, currentDate *models.Date) (models.Date, error) {
	err := s.sessions.Do(ctx, userID, "reschedule workout", func(c *Client) error {
		scheduleID, err := resolveScheduleID(ctx, c, vendorWorkoutID, currentDate, models.DateOf(s.now()))
		if err != nil {
			return err
		}
		if err := c.DeleteSchedule(ctx, scheduleID); err != nil {
			return err
		}
		_, err = c.ScheduleWorkout(ctx, vendorWorkoutID, newDate)
		return err
	})
	if err != nil {
		return models.Date{}, err
	}
	s.cache.InvalidateUser(userID)
	return newDate, nil
}

// DeleteWorkout removes the workout definition from the vendor. Deletes are
// not idempotent at the vendor boundary; a repeat delete surfaces NotFound.
func (s *Service) DeleteWorkout(ctx context.Context, userID uuid.UUID, vendorWorkoutID string) error {
	err := s.sessions.Do(ctx, userID, "delete workout", func(c *Client) error {
		return c.DeleteWorkout(ctx, vendorWorkoutID)
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateUser(userID)
	return nil
}

func toActivities(raw []activityJSON) []models.Activity {
	activities := make([]models.Activity, 0, len(raw))
	for _, a := range raw {
		act := models.Activity{
			ID:          strconv.FormatInt(a.ActivityID, 10),
			Name:        a.ActivityName,
			Type:        a.ActivityType.TypeKey,
			DistanceM:   a.Distance,
			DurationSec: a.Duration,
			PlaceName:   a.LocationName,
		}
		if t, err := time.Parse("2006-01-02 15:04:05", a.StartTimeLocal); err == nil {
			act.StartLocal = t
		}
		if a.AverageHR > 0 {
			v := a.AverageHR
			act.AvgHR = &v
		}
		if a.MaxHR > 0 {
			v := a.MaxHR
			act.MaxHR = &v
		}
		if a.AverageSpeed > 0 {
			// Vendor reports speed in m/s; callers want pace in sec/km.
			pace := 1000.0 / a.AverageSpeed
			act.AvgPace = &pace
		}
		if a.StartLatitude != 0 || a.StartLongitude != 0 {
			lat, lon := a.StartLatitude, a.StartLongitude
			act.Latitude = &lat
			act.Longitude = &lon
		}
		activities = append(activities, act)
	}
	return activities
}
