package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/stridesync/internal/fitsync"
	"github.com/claude/stridesync/internal/models"
	"github.com/claude/stridesync/internal/storage"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createUserRequest provisions an athlete account. MaxHeartRate is optional
// and feeds the intervals description renderer.
type createUserRequest struct {
	Name         string `json:"name"`
	MaxHeartRate *int   `json:"maxHeartRate"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}
	if req.MaxHeartRate != nil && (*req.MaxHeartRate < 100 || *req.MaxHeartRate > 250) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "maxHeartRate out of range"})
		return
	}
	user, err := s.store.CreateUser(r.Context(), req.Name, req.MaxHeartRate)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUser(r.Context(), userIDFromContext(r))
	if errors.Is(err, storage.ErrUserNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// connectRequest carries credentials for either vendor. Garmin uses
// email/password, intervals uses athleteId/apiKey. Credentials are used for
// the login and kept only in the session manager's memory.
type connectRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	AthleteID string `json:"athleteId"`
	APIKey    string `json:"apiKey"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	vendor := chi.URLParam(r, "vendor")

	var req connectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	conn := models.VendorConnection{UserID: userID, Vendor: vendor, Connected: true}
	switch vendor {
	case "garmin":
		if req.Email == "" || req.Password == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password required"})
			return
		}
		if err := s.garmin.Connect(r.Context(), userID, req.Email, req.Password); err != nil {
			s.writeEngineError(w, err)
			return
		}
		conn.Email = req.Email
	case "intervals":
		if req.AthleteID == "" || req.APIKey == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "athleteId and apiKey required"})
			return
		}
		if err := s.intervals.Connect(r.Context(), userID, req.AthleteID, req.APIKey); err != nil {
			s.writeEngineError(w, err)
			return
		}
		conn.AthleteID = req.AthleteID
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown vendor"})
		return
	}

	if err := s.store.UpsertConnection(r.Context(), conn); err != nil {
		// The session is live; a bookkeeping failure should not undo it.
		s.log.Error("recording connection failed", "vendor", vendor, "user", userID, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"vendor": vendor, "connected": true})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	vendor := chi.URLParam(r, "vendor")

	svc, ok := s.vendorService(vendor)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown vendor"})
		return
	}
	svc.Disconnect(userID)
	if err := s.store.MarkDisconnected(r.Context(), userID, vendor); err != nil {
		s.log.Error("recording disconnect failed", "vendor", vendor, "user", userID, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleConnectionStatus(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	vendor := chi.URLParam(r, "vendor")

	svc, ok := s.vendorService(vendor)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown vendor"})
		return
	}
	conn, err := s.store.GetConnection(r.Context(), userID, vendor)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	// The live session is authoritative; the stored record only supplies the
	// identifier last used to connect.
	conn.Connected = svc.IsConnected(userID)
	writeJSON(w, http.StatusOK, conn)
}

func (s *Server) handleActivities(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)
	vendor := chi.URLParam(r, "vendor")

	svc, ok := s.vendorService(vendor)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown vendor"})
		return
	}
	count := 0
	if v := r.URL.Query().Get("count"); v != "" {
		count, _ = strconv.Atoi(v)
	}
	activities, err := svc.Activities(r.Context(), userID, count)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

func (s *Server) handleGarminCalendar(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	items, err := s.garmin.Calendar(r.Context(), userID, year, month)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleIntervalsEvents serves the intervals-side calendar read. Without
// explicit bounds it covers 30 days either side of today, matching the
// window the reschedule matcher scans.
func (s *Server) handleIntervalsEvents(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)

	today := models.DateOf(time.Now())
	oldest, newest := today.AddDays(-30), today.AddDays(30)
	if v := r.URL.Query().Get("oldest"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid oldest date (YYYY-MM-DD)"})
			return
		}
		oldest = d
	}
	if v := r.URL.Query().Get("newest"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid newest date (YYYY-MM-DD)"})
			return
		}
		newest = d
	}

	items, err := s.intervals.Events(r.Context(), userID, oldest, newest)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGarminDaily(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r)

	stats, err := s.garmin.DailyStats(r.Context(), userID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeEngineError maps engine error kinds to HTTP statuses: credential
// problems to 401, a missing session to 409 (the client should offer a
// reconnect), missing vendor targets to 404, vendor outages to 502, and
// unrepresentable operations to 422.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch fitsync.KindOf(err) {
	case fitsync.KindAuthInvalid, fitsync.KindAuthExpired:
		status = http.StatusUnauthorized
	case fitsync.KindNotConnected:
		status = http.StatusConflict
	case fitsync.KindNotFound:
		status = http.StatusNotFound
	case fitsync.KindVendorUnavailable:
		status = http.StatusBadGateway
	case fitsync.KindUnsupported:
		status = http.StatusUnprocessableEntity
	default:
		if errors.Is(err, storage.ErrWorkoutNotFound) {
			status = http.StatusNotFound
		} else {
			s.log.Error("internal error", "error", err)
		}
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
