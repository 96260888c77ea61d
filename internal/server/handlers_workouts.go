package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/stridesync/internal/models"
	"github.com/claude/stridesync/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)

	var workout models.Workout
	if err := json.NewDecoder(r.Body).Decode(&workout); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	// Sync state is owned by the push handlers, never set on create.
	workout.UserID = userID
	workout.SentToGarmin = false
	workout.GarminWorkoutID = ""
	workout.SentToIntervals = false
	workout.IntervalsEventID = ""

	if err := workout.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	created, err := s.store.InsertWorkout(r.Context(), workout)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)

	workouts, err := s.store.ListWorkouts(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workouts == nil {
		workouts = []models.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	workout, ok := s.ownedWorkout(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handlePushWorkout(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	vendor := chi.URLParam(r, "vendor")

	svc, ok := s.vendorService(vendor)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown vendor"})
		return
	}
	workout, ok := s.ownedWorkout(w, r)
	if !ok {
		return
	}

	result, err := svc.PushWorkout(r.Context(), userID, workout)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	var markErr error
	switch vendor {
	case "garmin":
		markErr = s.store.MarkSentToGarmin(r.Context(), workout.ID, result.WorkoutID)
	case "intervals":
		markErr = s.store.MarkSentToIntervals(r.Context(), workout.ID, result.WorkoutID)
	}
	if markErr != nil {
		// The workout exists at the vendor now; report the result anyway and
		// leave the flag for a later retry.
		s.log.Error("recording push failed", "vendor", vendor, "workout", workout.ID, "error", markErr)
	}
	writeJSON(w, http.StatusOK, result)
}

type rescheduleRequest struct {
	Date models.Date `json:"date"`
}

func (s *Server) handleRescheduleWorkout(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	vendor := chi.URLParam(r, "vendor")

	svc, ok := s.vendorService(vendor)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown vendor"})
		return
	}
	workout, ok := s.ownedWorkout(w, r)
	if !ok {
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Date.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date required (YYYY-MM-DD)"})
		return
	}

	vendorID, ok := vendorWorkoutID(workout, vendor)
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "workout has not been pushed to " + vendor})
		return
	}

	newDate, err := svc.Reschedule(r.Context(), userID, vendorID, req.Date, workout.ScheduledDate)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if err := s.store.UpdateScheduledDate(r.Context(), workout.ID, newDate); err != nil {
		s.log.Error("recording reschedule failed", "workout", workout.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"scheduledDate": newDate})
}

func (s *Server) handleVendorDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	vendor := chi.URLParam(r, "vendor")

	svc, ok := s.vendorService(vendor)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown vendor"})
		return
	}
	workout, ok := s.ownedWorkout(w, r)
	if !ok {
		return
	}
	vendorID, ok := vendorWorkoutID(workout, vendor)
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "workout has not been pushed to " + vendor})
		return
	}

	if err := svc.DeleteWorkout(r.Context(), userID, vendorID); err != nil {
		s.writeEngineError(w, err)
		return
	}
	if err := s.store.ClearVendorState(r.Context(), workout.ID, vendor); err != nil {
		s.log.Error("clearing vendor state failed", "workout", workout.ID, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedWorkout loads the {id} workout and enforces ownership. Workouts
// belonging to another user read as not found.
func (s *Server) ownedWorkout(w http.ResponseWriter, r *http.Request) (models.Workout, bool) {
	userID := userIDFromContext(r)

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return models.Workout{}, false
	}
	workout, err := s.store.GetWorkout(r.Context(), id)
	if errors.Is(err, storage.ErrWorkoutNotFound) || (err == nil && workout.UserID != userID) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return models.Workout{}, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return models.Workout{}, false
	}
	return workout, true
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
