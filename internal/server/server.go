package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/stridesync/internal/fitsync"
	"github.com/claude/stridesync/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the storage surface the handlers need.
// Satisfied by *storage.DB.
type Store interface {
	CreateUser(ctx context.Context, name string, maxHeartRate *int) (models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (models.User, error)
	InsertWorkout(ctx context.Context, w models.Workout) (models.Workout, error)
	GetWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error)
	ListWorkouts(ctx context.Context, userID uuid.UUID) ([]models.Workout, error)
	MarkSentToGarmin(ctx context.Context, id uuid.UUID, vendorWorkoutID string) error
	MarkSentToIntervals(ctx context.Context, id uuid.UUID, eventID string) error
	UpdateScheduledDate(ctx context.Context, id uuid.UUID, date models.Date) error
	ClearVendorState(ctx context.Context, id uuid.UUID, vendor string) error
	UpsertConnection(ctx context.Context, conn models.VendorConnection) error
	GetConnection(ctx context.Context, userID uuid.UUID, vendor string) (models.VendorConnection, error)
	MarkDisconnected(ctx context.Context, userID uuid.UUID, vendor string) error
}

// VendorSyncer is the operation set both vendor services share.
type VendorSyncer interface {
	Disconnect(userID uuid.UUID)
	IsConnected(userID uuid.UUID) bool
	Activities(ctx context.Context, userID uuid.UUID, count int) ([]models.Activity, error)
	PushWorkout(ctx context.Context, userID uuid.UUID, workout models.Workout) (fitsync.PushResult, error)
	Reschedule(ctx context.Context, userID uuid.UUID, vendorWorkoutID string, newDate models.Date, currentDate *models.Date) (models.Date, error)
	DeleteWorkout(ctx context.Context, userID uuid.UUID, vendorWorkoutID string) error
}

// GarminService extends the shared surface with Garmin-only reads.
// Satisfied by *garmin.Service.
type GarminService interface {
	VendorSyncer
	Connect(ctx context.Context, userID uuid.UUID, email, password string) error
	Calendar(ctx context.Context, userID uuid.UUID, year, month int) ([]models.CalendarItem, error)
	DailyStats(ctx context.Context, userID uuid.UUID) (models.DailyStats, error)
}

// IntervalsService is the intervals-side surface.
// Satisfied by *intervals.Service.
type IntervalsService interface {
	VendorSyncer
	Connect(ctx context.Context, userID uuid.UUID, athleteID, apiKey string) error
	Events(ctx context.Context, userID uuid.UUID, oldest, newest models.Date) ([]models.CalendarItem, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     Store
	garmin    GarminService
	intervals IntervalsService
	log       *slog.Logger
	apiKey    string
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(store Store, garminSvc GarminService, intervalsSvc IntervalsService, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:     store,
		garmin:    garminSvc,
		intervals: intervalsSvc,
		log:       log,
		apiKey:    apiKey,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// User provisioning needs the API key but no acting user yet.
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/users", s.handleCreateUser)
		})

		// Everything else requires the API key and a resolved user.
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Use(UserID)

			r.Get("/users/me", s.handleCurrentUser)

			r.Post("/workouts", s.handleCreateWorkout)
			r.Get("/workouts", s.handleListWorkouts)
			r.Get("/workouts/{id}", s.handleGetWorkout)

			// Vendor-specific reads; static segments win over {vendor}.
			r.Get("/garmin/calendar", s.handleGarminCalendar)
			r.Get("/garmin/daily", s.handleGarminDaily)
			r.Get("/intervals/events", s.handleIntervalsEvents)

			r.Route("/{vendor}", func(r chi.Router) {
				r.Post("/connection", s.handleConnect)
				r.Get("/connection", s.handleConnectionStatus)
				r.Delete("/connection", s.handleDisconnect)
				r.Get("/activities", s.handleActivities)
				r.Post("/workouts/{id}/push", s.handlePushWorkout)
				r.Post("/workouts/{id}/reschedule", s.handleRescheduleWorkout)
				r.Delete("/workouts/{id}", s.handleVendorDeleteWorkout)
			})
		})
	})
}

// MountMCP exposes the MCP transport under /mcp, behind the API key. The
// transport is expected to resolve the acting user itself (X-User-ID).
func (s *Server) MountMCP(h http.Handler) {
	s.router.Handle("/mcp", APIKeyAuth(s.apiKey)(h))
	s.router.Handle("/mcp/*", APIKeyAuth(s.apiKey)(h))
}

// vendorService resolves the {vendor} path segment to a service.
func (s *Server) vendorService(name string) (VendorSyncer, bool) {
	switch name {
	case "garmin":
		return s.garmin, true
	case "intervals":
		return s.intervals, true
	default:
		return nil, false
	}
}
