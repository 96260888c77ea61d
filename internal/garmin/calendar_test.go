package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/stridesync/internal/fitsync"
	"github.com/claude/stridesync/internal/models"
)

func date(y int, m time.Month, d int) models.Date {
	return models.Date{Year: y, Month: m, Day: d}
}

// calendarServer serves canned month feeds keyed "year-month" (zero-based
// month, as the vendor path uses).
func calendarServer(t *testing.T, feeds map[string]calendarFeed) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /calendar-service/year/{year}/month/{month}", func(w http.ResponseWriter, r *http.Request) {
		key := r.PathValue("year") + "-" + r.PathValue("month")
		feed, ok := feeds[key]
		if !ok {
			feed = calendarFeed{}
		}
		json.NewEncoder(w).Encode(feed)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &Client{baseURL: srv.URL, token: "tok", httpClient: srv.Client()}
}

// TestResolveScheduleIDCurrentMonth verifies the common case: the schedule
// entry is in the month of the date hint.
func TestResolveScheduleIDCurrentMonth(t *testing.T) {
	client := calendarServer(t, map[string]calendarFeed{
		"2026-1": {CalendarItems: []calendarItem{
			{ID: 555, ItemType: "workout", Title: "Tempo", Date: "2026-02-21", WorkoutID: 123},
		}},
	})

	hint := date(2026, time.February, 21)
	id, err := resolveScheduleID(context.Background(), client, "123", &hint, date(2026, time.February, 10))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "555" {
		t.Errorf("scheduleID = %q, want 555", id)
	}
}

// TestResolveScheduleIDNextMonth verifies the scan falls through to the
// following month when the current month has no entry.
func TestResolveScheduleIDNextMonth(t *testing.T) {
	client := calendarServer(t, map[string]calendarFeed{
		"2026-2": {CalendarItems: []calendarItem{
			{ID: 777, ItemType: "workout", Date: "2026-03-02", WorkoutID: 123},
		}},
	})

	id, err := resolveScheduleID(context.Background(), client, "123", nil, date(2026, time.February, 25))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "777" {
		t.Errorf("scheduleID = %q, want 777", id)
	}
}

// TestResolveScheduleIDDateHint verifies the hint disambiguates multiple
// occurrences of the same workout.
func TestResolveScheduleIDDateHint(t *testing.T) {
	client := calendarServer(t, map[string]calendarFeed{
		"2026-1": {CalendarItems: []calendarItem{
			{ID: 1, ItemType: "workout", Date: "2026-02-10", WorkoutID: 123},
			{ID: 2, ItemType: "workout", Date: "2026-02-21", WorkoutID: 123},
		}},
	})

	hint := date(2026, time.February, 21)
	id, err := resolveScheduleID(context.Background(), client, "123", &hint, date(2026, time.February, 1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "2" {
		t.Errorf("scheduleID = %q, want the hinted occurrence 2", id)
	}
}

// TestResolveScheduleIDFirstMatchWithoutHint verifies feed order decides
// when no hint narrows the scan.
func TestResolveScheduleIDFirstMatchWithoutHint(t *testing.T) {
	client := calendarServer(t, map[string]calendarFeed{
		"2026-1": {CalendarItems: []calendarItem{
			{ID: 1, ItemType: "workout", Date: "2026-02-10", WorkoutID: 123},
			{ID: 2, ItemType: "workout", Date: "2026-02-21", WorkoutID: 123},
		}},
	})

	id, err := resolveScheduleID(context.Background(), client, "123", nil, date(2026, time.February, 1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "1" {
		t.Errorf("scheduleID = %q, want first feed entry 1", id)
	}
}

// TestResolveScheduleIDIgnoresOtherItems verifies non-workout items and
// other workouts never match.
func TestResolveScheduleIDIgnoresOtherItems(t *testing.T) {
	client := calendarServer(t, map[string]calendarFeed{
		"2026-1": {CalendarItems: []calendarItem{
			{ID: 10, ItemType: "activity", Date: "2026-02-21", WorkoutID: 123},
			{ID: 11, ItemType: "workout", Date: "2026-02-21", WorkoutID: 999},
			{ID: 12, ItemType: "workout", Date: "2026-02-21", WorkoutID: 123},
		}},
	})

	id, err := resolveScheduleID(context.Background(), client, "123", nil, date(2026, time.February, 1))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if id != "12" {
		t.Errorf("scheduleID = %q, want 12", id)
	}
}

// TestResolveScheduleIDNotFound verifies a missing entry surfaces the
// not-found sentinel for the session manager to classify.
func TestResolveScheduleIDNotFound(t *testing.T) {
	client := calendarServer(t, nil)

	_, err := resolveScheduleID(context.Background(), client, "123", nil, date(2026, time.February, 1))
	if !errors.Is(err, fitsync.ErrNotFoundAtVendor) {
		t.Errorf("err = %v, want ErrNotFoundAtVendor", err)
	}
}

// TestResolveScheduleIDBadWorkoutID verifies a non-numeric id cannot match
// anything and reads as not found.
func TestResolveScheduleIDBadWorkoutID(t *testing.T) {
	client := calendarServer(t, nil)

	_, err := resolveScheduleID(context.Background(), client, "abc", nil, date(2026, time.February, 1))
	if !errors.Is(err, fitsync.ErrNotFoundAtVendor) {
		t.Errorf("err = %v, want ErrNotFoundAtVendor", err)
	}
}

// TestNextMonth verifies the year rollover.
func TestNextMonth(t *testing.T) {
	if got := nextMonth(2026, 12); got != [2]int{2027, 1} {
		t.Errorf("nextMonth(2026, 12) = %v, want [2027 1]", got)
	}
	if got := nextMonth(2026, 2); got != [2]int{2026, 3} {
		t.Errorf("nextMonth(2026, 2) = %v, want [2026 3]", got)
	}
}

// TestCalendarMonthPathZeroBased verifies the client subtracts one from the
// caller's 1-12 month for the vendor's zero-based path segment.
func TestCalendarMonthPathZeroBased(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"calendarItems":[]}`)
	}))
	defer srv.Close()
	client := &Client{baseURL: srv.URL, token: "tok", httpClient: srv.Client()}

	if _, err := client.Calendar(context.Background(), 2026, 2); err != nil {
		t.Fatalf("calendar: %v", err)
	}
	if gotPath != "/calendar-service/year/2026/month/1" {
		t.Errorf("path = %q, want zero-based month segment", gotPath)
	}
}

// TestToCalendarItemsSkipsUnparseableDates verifies feed rows with broken
// dates are dropped instead of failing the whole read.
func TestToCalendarItemsSkipsUnparseableDates(t *testing.T) {
	feed := calendarFeed{CalendarItems: []calendarItem{
		{ID: 1, ItemType: "workout", Title: "Good", Date: "2026-02-21", WorkoutID: 5},
		{ID: 2, ItemType: "workout", Title: "Bad", Date: "not-a-date"},
	}}
	items := toCalendarItems(feed)
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	if items[0].ScheduleID != "1" || items[0].WorkoutID != "5" {
		t.Errorf("item = %+v", items[0])
	}
	if items[0].Date != date(2026, time.February, 21) {
		t.Errorf("date = %v, want 2026-02-21", items[0].Date)
	}
}
