package mcp

import (
	"context"
	"strconv"

	"github.com/claude/stridesync/internal/fitsync"
	"github.com/claude/stridesync/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// vendorOps is the per-vendor operation set shared by both services.
type vendorOps interface {
	IsConnected(userID uuid.UUID) bool
	Activities(ctx context.Context, userID uuid.UUID, count int) ([]models.Activity, error)
	PushWorkout(ctx context.Context, userID uuid.UUID, workout models.Workout) (fitsync.PushResult, error)
	Reschedule(ctx context.Context, userID uuid.UUID, vendorWorkoutID string, newDate models.Date, currentDate *models.Date) (models.Date, error)
	DeleteWorkout(ctx context.Context, userID uuid.UUID, vendorWorkoutID string) error
}

func (h *handlers) vendor(name string) (vendorOps, bool) {
	switch name {
	case "garmin":
		return h.garmin, true
	case "intervals":
		return h.intervals, true
	default:
		return nil, false
	}
}

// --- Tool definitions ---

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List the user's workouts, newest first. Each workout includes its step tree, scheduled date, and per-vendor sync state (sentToGarmin/garminWorkoutId, sentToIntervals/intervalsEventId)."),
)

var toolPushWorkout = mcp.NewTool("push_workout",
	mcp.WithDescription("Push a workout to a connected vendor. On garmin the structured steps are created natively and a scheduled date binds the workout to the calendar; on intervals a calendar event is created with the workout rendered as description text. Returns the vendor workout id plus the scheduling outcome."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID")),
	mcp.WithString("vendor", mcp.Required(), mcp.Description("Target vendor"), mcp.Enum("garmin", "intervals")),
)

var toolRescheduleWorkout = mcp.NewTool("reschedule_workout",
	mcp.WithDescription("Move an already-pushed workout to a new date on the vendor calendar. The workout must have been pushed to the vendor first."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID")),
	mcp.WithString("vendor", mcp.Required(), mcp.Description("Target vendor"), mcp.Enum("garmin", "intervals")),
	mcp.WithString("date", mcp.Required(), mcp.Description("New date (YYYY-MM-DD)")),
)

var toolDeleteWorkout = mcp.NewTool("delete_workout",
	mcp.WithDescription("Delete a pushed workout from the vendor and clear its local sync state. The local workout definition is kept."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout UUID")),
	mcp.WithString("vendor", mcp.Required(), mcp.Description("Target vendor"), mcp.Enum("garmin", "intervals")),
)

var toolGetActivities = mcp.NewTool("get_activities",
	mcp.WithDescription("Fetch the user's recent activities from a vendor: name, type, distance, duration, heart rate, and pace where available."),
	mcp.WithString("vendor", mcp.Required(), mcp.Description("Source vendor"), mcp.Enum("garmin", "intervals")),
	mcp.WithString("count", mcp.Description("Maximum number of activities. Defaults to 10.")),
)

var toolGetCalendar = mcp.NewTool("get_calendar",
	mcp.WithDescription("Fetch one month of the user's Garmin calendar: scheduled workouts and other calendar items."),
	mcp.WithString("year", mcp.Description("Calendar year. Defaults to the current year.")),
	mcp.WithString("month", mcp.Description("Calendar month 1-12. Defaults to the current month.")),
)

var toolGetDailyStats = mcp.NewTool("get_daily_stats",
	mcp.WithDescription("Fetch today's wellness stats from Garmin: stress level, body battery, steps today and yesterday. Metrics the vendor has not recorded yet are omitted."),
)

var toolConnectionStatus = mcp.NewTool("connection_status",
	mcp.WithDescription("Report the user's live connection state for both vendors, with the identifier last used to connect."),
)

// --- Tool handlers ---

func (h *handlers) listWorkouts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	if uid == uuid.Nil {
		return mcp.NewToolResultError("no user resolved"), nil
	}

	workouts, err := h.db.ListWorkouts(ctx, uid)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) pushWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	if uid == uuid.Nil {
		return mcp.NewToolResultError("no user resolved"), nil
	}

	vendorName, svc, errMsg := h.requireVendor(req)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}
	workout, errMsg := h.requireWorkout(ctx, req, uid)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	pushed, err := svc.PushWorkout(ctx, uid, workout)
	if err != nil {
		h.log.Error("mcp push_workout", "vendor", vendorName, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	var markErr error
	switch vendorName {
	case "garmin":
		markErr = h.db.MarkSentToGarmin(ctx, workout.ID, pushed.WorkoutID)
	case "intervals":
		markErr = h.db.MarkSentToIntervals(ctx, workout.ID, pushed.WorkoutID)
	}
	if markErr != nil {
		h.log.Error("mcp push_workout: recording push failed", "workout", workout.ID, "error", markErr)
	}

	result, err := mcp.NewToolResultJSON(pushed)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) rescheduleWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	if uid == uuid.Nil {
		return mcp.NewToolResultError("no user resolved"), nil
	}

	vendorName, svc, errMsg := h.requireVendor(req)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}
	workout, errMsg := h.requireWorkout(ctx, req, uid)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}

	dateStr, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError("date parameter is required"), nil
	}
	newDate, err := models.ParseDate(dateStr)
	if err != nil {
		return mcp.NewToolResultError("invalid date, want YYYY-MM-DD: " + err.Error()), nil
	}

	vendorID, ok := vendorWorkoutID(workout, vendorName)
	if !ok {
		return mcp.NewToolResultError("workout has not been pushed to " + vendorName), nil
	}

	moved, err := svc.Reschedule(ctx, uid, vendorID, newDate, workout.ScheduledDate)
	if err != nil {
		h.log.Error("mcp reschedule_workout", "vendor", vendorName, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.db.UpdateScheduledDate(ctx, workout.ID, moved); err != nil {
		h.log.Error("mcp reschedule_workout: recording date failed", "workout", workout.ID, "error", err)
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"scheduledDate": moved})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) deleteWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	if uid == uuid.Nil {
		return mcp.NewToolResultError("no user resolved"), nil
	}

	vendorName, svc, errMsg := h.requireVendor(req)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}
	workout, errMsg := h.requireWorkout(ctx, req, uid)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}
	vendorID, ok := vendorWorkoutID(workout, vendorName)
	if !ok {
		return mcp.NewToolResultError("workout has not been pushed to " + vendorName), nil
	}

	if err := svc.DeleteWorkout(ctx, uid, vendorID); err != nil {
		h.log.Error("mcp delete_workout", "vendor", vendorName, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := h.db.ClearVendorState(ctx, workout.ID, vendorName); err != nil {
		h.log.Error("mcp delete_workout: clearing vendor state failed", "workout", workout.ID, "error", err)
	}

	result, err := mcp.NewToolResultJSON(map[string]any{"deleted": true, "vendor": vendorName})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getActivities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	if uid == uuid.Nil {
		return mcp.NewToolResultError("no user resolved"), nil
	}

	vendorName, svc, errMsg := h.requireVendor(req)
	if errMsg != "" {
		return mcp.NewToolResultError(errMsg), nil
	}
	count := 0
	if v := req.GetString("count", ""); v != "" {
		count, _ = strconv.Atoi(v)
	}

	activities, err := svc.Activities(ctx, uid, count)
	if err != nil {
		h.log.Error("mcp get_activities", "vendor", vendorName, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(activities)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	if uid == uuid.Nil {
		return mcp.NewToolResultError("no user resolved"), nil
	}

	year, _ := strconv.Atoi(req.GetString("year", "0"))
	month, _ := strconv.Atoi(req.GetString("month", "0"))

	items, err := h.garmin.Calendar(ctx, uid, year, month)
	if err != nil {
		h.log.Error("mcp get_calendar", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(items)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDailyStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	if uid == uuid.Nil {
		return mcp.NewToolResultError("no user resolved"), nil
	}

	stats, err := h.garmin.DailyStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_daily_stats", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) connectionStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	if uid == uuid.Nil {
		return mcp.NewToolResultError("no user resolved"), nil
	}

	status := map[string]any{}
	for _, vendorName := range []string{"garmin", "intervals"} {
		svc, _ := h.vendor(vendorName)
		conn, err := h.db.GetConnection(ctx, uid, vendorName)
		if err != nil {
			h.log.Error("mcp connection_status", "vendor", vendorName, "error", err)
			return mcp.NewToolResultError("query failed: " + err.Error()), nil
		}
		conn.Connected = svc.IsConnected(uid)
		status[vendorName] = conn
	}

	result, err := mcp.NewToolResultJSON(status)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Shared parameter plumbing ---

func (h *handlers) requireVendor(req mcp.CallToolRequest) (string, vendorOps, string) {
	name, err := req.RequireString("vendor")
	if err != nil {
		return "", nil, "vendor parameter is required"
	}
	svc, ok := h.vendor(name)
	if !ok {
		return "", nil, "unknown vendor " + name + ", want garmin or intervals"
	}
	return name, svc, ""
}

func (h *handlers) requireWorkout(ctx context.Context, req mcp.CallToolRequest, uid uuid.UUID) (models.Workout, string) {
	idStr, err := req.RequireString("workout_id")
	if err != nil {
		return models.Workout{}, "workout_id parameter is required"
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return models.Workout{}, "invalid workout_id: " + err.Error()
	}
	workout, err := h.db.GetWorkout(ctx, id)
	if err != nil || workout.UserID != uid {
		return models.Workout{}, "workout not found"
	}
	return workout, ""
}

// vendorWorkoutID returns the vendor-side id recorded for the workout.
func vendorWorkoutID(workout models.Workout, vendor string) (string, bool) {
	switch vendor {
	case "garmin":
		return workout.GarminWorkoutID, workout.SentToGarmin
	case "intervals":
		return workout.IntervalsEventID, workout.SentToIntervals
	}
	return "", false
}
