// Package intervals implements the second vendor of the sync engine: an
// API-key platform with a calendar of events and no structured-step
// workout format. Workout structure reaches the athlete as rendered text
// in the event description.
package intervals

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/claude/stridesync/internal/fitsync"
	"github.com/claude/stridesync/internal/models"
)

// Client is an authenticated handle to the vendor API. Auth is HTTP basic
// with the literal user "API_KEY" and the athlete's key as password.
type Client struct {
	baseURL    string
	athleteID  string
	apiKey     string
	httpClient *http.Client
}

// Dial validates the credentials with a profile fetch and returns a client.
// API-key vendors have no login call, so validation is the first request.
func Dial(ctx context.Context, baseURL string, creds fitsync.Credentials) (*Client, error) {
	c := &Client{
		baseURL:    baseURL,
		athleteID:  creds.AthleteID,
		apiKey:     creds.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	if err := c.Profile(ctx); err != nil {
		return nil, fmt.Errorf("intervals credential check: %w", err)
	}
	return c, nil
}

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
	req.SetBasicAuth("API_KEY", c.apiKey)

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

func (c *Client) athletePath(suffix string) string {
	return "/api/v1/athlete/" + c.athleteID + suffix
}

// Profile fetches the athlete record. Used as the liveness probe.
func (c *Client) Profile(ctx context.Context) error {
	var out map[string]any
	return c.do(ctx, http.MethodGet, c.athletePath(""), nil, &out)
}

// eventCategoryWorkout marks planned workouts on the vendor calendar.
const eventCategoryWorkout = "WORKOUT"

// Event is a vendor calendar entry. StartDateLocal carries the scheduled
// date as local midnight; moving an event means updating only that field.
type Event struct {
	ID             int64  `json:"id,omitempty"`
	Category       string `json:"category"`
	StartDateLocal string `json:"start_date_local"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Type           string `json:"type,omitempty"`
}

// Date extracts the calendar date from the event's local start.
func (e Event) Date() (models.Date, bool) {
	if len(e.StartDateLocal) < len(models.DateLayout) {
		return models.Date{}, false
	}
	d, err := models.ParseDate(e.StartDateLocal[:len(models.DateLayout)])
	if err != nil {
		return models.Date{}, false
	}
	return d, true
}

// Events fetches calendar events in [oldest, newest].
func (c *Client) Events(ctx context.Context, oldest, newest models.Date) ([]Event, error) {
	var out []Event
	path := c.athletePath(fmt.Sprintf("/events?oldest=%s&newest=%s", oldest, newest))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEvent posts a new calendar event and returns it with the vendor id.
func (c *Client) CreateEvent(ctx context.Context, ev Event) (Event, error) {
	var out Event
	if err := c.do(ctx, http.MethodPost, c.athletePath("/events"), ev, &out); err != nil {
		return Event{}, err
	}
	return out, nil
}

// UpdateEvent PUTs a full event record over an existing id.
func (c *Client) UpdateEvent(ctx context.Context, ev Event) error {
	path := c.athletePath(fmt.Sprintf("/events/%d", ev.ID))
	return c.do(ctx, http.MethodPut, path, ev, nil)
}

// DeleteEvent removes a calendar event.
func (c *Client) DeleteEvent(ctx context.Context, eventID int64) error {
	path := c.athletePath(fmt.Sprintf("/events/%d", eventID))
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// activityJSON is the vendor's activity list row.
type activityJSON struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Type             string  `json:"type"`
	Distance         float64 `json:"distance"`
	MovingTime       float64 `json:"moving_time"`
	StartDateLocal   string  `json:"start_date_local"`
	AverageHeartrate float64 `json:"average_heartrate"`
	MaxHeartrate     float64 `json:"max_heartrate"`
}

// Activities fetches recorded activities in [oldest, newest], newest first.
func (c *Client) Activities(ctx context.Context, oldest, newest models.Date) ([]activityJSON, error) {
	var out []activityJSON
	path := c.athletePath(fmt.Sprintf("/activities?oldest=%s&newest=%s", oldest, newest))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
