package garmin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/claude/stridesync/internal/fitsync"
	"github.com/claude/stridesync/internal/models"
)

// resolveScheduleID finds the vendor-internal schedule-entry id for a
// scheduled workout occurrence. The push API never returns this id, so it
// has to be recovered by scanning the calendar feed: the month of the date
// hint (or of today), then the following month. A date hint narrows the
// match to that occurrence; without one the first entry for the workout
// wins. Feed order is date order, so "first" is deterministic.
func resolveScheduleID(ctx context.Context, client *Client, workoutID string, hint *models.Date, today models.Date) (string, error) {
	wid, err := strconv.ParseInt(workoutID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("workout id %q: %w", workoutID, fitsync.ErrNotFoundAtVendor)
	}

	start := today
	if hint != nil {
		start = *hint
	}

	months := [][2]int{
		{start.Year, int(start.Month)},
		nextMonth(start.Year, int(start.Month)),
	}
	for _, ym := range months {
		feed, err := client.Calendar(ctx, ym[0], ym[1])
		if err != nil {
			return "", err
		}
		for _, item := range feed.CalendarItems {
			if item.ItemType != "workout" || item.WorkoutID != wid {
				continue
			}
			if hint != nil && item.Date != hint.String() {
				continue
			}
			return strconv.FormatInt(item.ID, 10), nil
		}
	}
	return "", fmt.Errorf("schedule entry for workout %s: %w", workoutID, fitsync.ErrNotFoundAtVendor)
}

func nextMonth(year, month int) [2]int {
	if month == 12 {
		return [2]int{year + 1, 1}
	}
	return [2]int{year, month + 1}
}

// toCalendarItems normalizes a feed for callers.
func toCalendarItems(feed calendarFeed) []models.CalendarItem {
	items := make([]models.CalendarItem, 0, len(feed.CalendarItems))
	for _, it := range feed.CalendarItems {
		date, err := models.ParseDate(it.Date)
		if err != nil {
			continue
		}
		item := models.CalendarItem{
			ScheduleID: strconv.FormatInt(it.ID, 10),
			Title:      it.Title,
			Date:       date,
			ItemType:   it.ItemType,
		}
		if it.WorkoutID != 0 {
			item.WorkoutID = strconv.FormatInt(it.WorkoutID, 10)
		}
		items = append(items, item)
	}
	return items
}
