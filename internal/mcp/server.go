package mcp

import (
	"context"
	"log/slog"

	"github.com/claude/stridesync/internal/garmin"
	"github.com/claude/stridesync/internal/intervals"
	"github.com/claude/stridesync/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user id injected by the transport layer,
// or uuid.Nil when none was set.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithUserID returns a context carrying the given user id.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all sync tools registered.
func New(db *storage.DB, garminSvc *garmin.Service, intervalsSvc *intervals.Service, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("StrideSync", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("StrideSync workout synchronization server. Manage structured workouts, push and reschedule them on connected fitness platforms (garmin, intervals), and read back activities, calendar entries, and daily wellness stats. All data is scoped to the acting user."),
	)

	h := &handlers{db: db, garmin: garminSvc, intervals: intervalsSvc, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolListWorkouts, Handler: h.listWorkouts},
		server.ServerTool{Tool: toolPushWorkout, Handler: h.pushWorkout},
		server.ServerTool{Tool: toolRescheduleWorkout, Handler: h.rescheduleWorkout},
		server.ServerTool{Tool: toolDeleteWorkout, Handler: h.deleteWorkout},
		server.ServerTool{Tool: toolGetActivities, Handler: h.getActivities},
		server.ServerTool{Tool: toolGetCalendar, Handler: h.getCalendar},
		server.ServerTool{Tool: toolGetDailyStats, Handler: h.getDailyStats},
		server.ServerTool{Tool: toolConnectionStatus, Handler: h.connectionStatus},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	db        *storage.DB
	garmin    *garmin.Service
	intervals *intervals.Service
	log       *slog.Logger
}
