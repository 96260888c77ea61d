package garmin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/stridesync/internal/fitsync"
	"github.com/claude/stridesync/internal/models"
)

// Client is an authenticated handle to the vendor's Connect API. One client
// per user session; the session manager owns its lifecycle.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Dial performs a credential login and returns an authenticated client.
func Dial(ctx context.Context, baseURL string, creds fitsync.Credentials) (*Client, error) {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login",
		loginRequest{Username: creds.Email, Password: creds.Password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("garmin login: %w", err)
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("garmin login: %w", fitsync.ErrUnauthorized)
	}
	c.token = resp.Token
	return c, nil
}

// do issues one API call, encoding body as JSON and decoding into out when
// non-nil. 401/403 map to fitsync.ErrUnauthorized and 404 to
// fitsync.ErrNotFoundAtVendor so the session manager can classify failures.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, fitsync.ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, fitsync.ErrNotFoundAtVendor)
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s response: %w", path, err)
		}
	}
	return nil
}

// Profile fetches the user's social profile. Used as the liveness probe.
func (c *Client) Profile(ctx context.Context) error {
	var out map[string]any
	return c.do(ctx, http.MethodGet, "/userprofile-service/socialProfile", nil, &out)
}

// Activities fetches the most recent activities, newest first.
func (c *Client) Activities(ctx context.Context, limit int) ([]activityJSON, error) {
	var out []activityJSON
	path := fmt.Sprintf("/activitylist-service/activities/search/activities?start=0&limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Calendar fetches one month of the calendar feed. The vendor's month path
// segment is zero-based; callers pass the usual 1-12.
func (c *Client) Calendar(ctx context.Context, year, month int) (calendarFeed, error) {
	var out calendarFeed
	path := fmt.Sprintf("/calendar-service/year/%d/month/%d", year, month-1)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return calendarFeed{}, err
	}
	return out, nil
}

// CreateWorkout pushes a workout definition and returns its vendor id.
func (c *Client) CreateWorkout(ctx context.Context, dto WorkoutDTO) (string, error) {
	var out workoutCreated
	if err := c.do(ctx, http.MethodPost, "/workout-service/workout", dto, &out); err != nil {
		return "", err
	}
	return strconv.FormatInt(out.WorkoutID, 10), nil
}

// ScheduleWorkout binds a pushed workout to a calendar date and returns the
// schedule-entry id.
func (c *Client) ScheduleWorkout(ctx context.Context, workoutID string, date models.Date) (string, error) {
	var out scheduleCreated
	path := "/workout-service/schedule/" + workoutID
	body := map[string]string{"date": date.String()}
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return "", err
	}
	return strconv.FormatInt(out.WorkoutScheduleID, 10), nil
}

// DeleteWorkout removes a workout definition. Not idempotent at the vendor:
// deleting an already-deleted workout is a vendor-level 404.
func (c *Client) DeleteWorkout(ctx context.Context, workoutID string) error {
	return c.do(ctx, http.MethodDelete, "/workout-service/workout/"+workoutID, nil, nil)
}

// DeleteSchedule removes one schedule entry without touching the workout.
func (c *Client) DeleteSchedule(ctx context.Context, scheduleID string) error {
	return c.do(ctx, http.MethodDelete, "/workout-service/schedule/"+scheduleID, nil, nil)
}

type stressResponse struct {
	OverallStressLevel int `json:"overallStressLevel"`
}

// DailyStress fetches the day's overall stress level. The vendor reports 0
// when no data exists for the day.
func (c *Client) DailyStress(ctx context.Context, date models.Date) (int, error) {
	var out stressResponse
	path := "/wellness-service/wellness/dailyStress/" + date.String()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	return out.OverallStressLevel, nil
}

type bodyBatteryResponse struct {
	BodyBatteryMostRecentValue int `json:"bodyBatteryMostRecentValue"`
}

// BodyBattery fetches the day's most recent body battery reading. 0 means
// no data, as with stress.
func (c *Client) BodyBattery(ctx context.Context, date models.Date) (int, error) {
	var out bodyBatteryResponse
	path := "/wellness-service/wellness/bodyBattery/reports/daily/" + date.String()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	return out.BodyBatteryMostRecentValue, nil
}

type dailySummaryResponse struct {
	TotalSteps int `json:"totalSteps"`
}

// DailySteps fetches the day's step count.
func (c *Client) DailySteps(ctx context.Context, date models.Date) (int, error) {
	var out dailySummaryResponse
	path := "/usersummary-service/usersummary/daily/" + date.String()
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return 0, err
	}
	return out.TotalSteps, nil
}
