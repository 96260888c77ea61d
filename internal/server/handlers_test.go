package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/claude/stridesync/internal/fitsync"
	"github.com/claude/stridesync/internal/models"
	"github.com/claude/stridesync/internal/storage"
	"github.com/google/uuid"
)

const testAPIKey = "test-key"

// fakeStore is an in-memory Store for handler tests.
type fakeStore struct {
	users    map[uuid.UUID]models.User
	workouts map[uuid.UUID]models.Workout
	conns    map[string]models.VendorConnection

	disconnected []string
	cleared      []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[uuid.UUID]models.User{},
		workouts: map[uuid.UUID]models.Workout{},
		conns:    map[string]models.VendorConnection{},
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, name string, maxHeartRate *int) (models.User, error) {
	user := models.User{ID: uuid.New(), Name: name, MaxHeartRate: maxHeartRate, CreatedAt: time.Now()}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeStore) GetUser(ctx context.Context, id uuid.UUID) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return u, nil
}

func connKey(userID uuid.UUID, vendor string) string { return userID.String() + "/" + vendor }

func (f *fakeStore) InsertWorkout(ctx context.Context, w models.Workout) (models.Workout, error) {
	w.ID = uuid.New()
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt
	f.workouts[w.ID] = w
	return w, nil
}

func (f *fakeStore) GetWorkout(ctx context.Context, id uuid.UUID) (models.Workout, error) {
	w, ok := f.workouts[id]
	if !ok {
		return models.Workout{}, storage.ErrWorkoutNotFound
	}
	return w, nil
}

func (f *fakeStore) ListWorkouts(ctx context.Context, userID uuid.UUID) ([]models.Workout, error) {
	var out []models.Workout
	for _, w := range f.workouts {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkSentToGarmin(ctx context.Context, id uuid.UUID, vendorWorkoutID string) error {
	w := f.workouts[id]
	w.SentToGarmin = true
	w.GarminWorkoutID = vendorWorkoutID
	f.workouts[id] = w
	return nil
}

func (f *fakeStore) MarkSentToIntervals(ctx context.Context, id uuid.UUID, eventID string) error {
	w := f.workouts[id]
	w.SentToIntervals = true
	w.IntervalsEventID = eventID
	f.workouts[id] = w
	return nil
}

func (f *fakeStore) UpdateScheduledDate(ctx context.Context, id uuid.UUID, date models.Date) error {
	w := f.workouts[id]
	w.ScheduledDate = &date
	f.workouts[id] = w
	return nil
}

func (f *fakeStore) ClearVendorState(ctx context.Context, id uuid.UUID, vendor string) error {
	f.cleared = append(f.cleared, vendor)
	w := f.workouts[id]
	switch vendor {
	case "garmin":
		w.SentToGarmin, w.GarminWorkoutID = false, ""
	case "intervals":
		w.SentToIntervals, w.IntervalsEventID = false, ""
	}
	f.workouts[id] = w
	return nil
}

func (f *fakeStore) UpsertConnection(ctx context.Context, conn models.VendorConnection) error {
	f.conns[connKey(conn.UserID, conn.Vendor)] = conn
	return nil
}

func (f *fakeStore) GetConnection(ctx context.Context, userID uuid.UUID, vendor string) (models.VendorConnection, error) {
	return f.conns[connKey(userID, vendor)], nil
}

func (f *fakeStore) MarkDisconnected(ctx context.Context, userID uuid.UUID, vendor string) error {
	f.disconnected = append(f.disconnected, vendor)
	conn := f.conns[connKey(userID, vendor)]
	conn.Connected = false
	f.conns[connKey(userID, vendor)] = conn
	return nil
}

// fakeSyncer implements the shared vendor operations with injectable
// results and errors.
type fakeSyncer struct {
	connected  bool
	activities []models.Activity
	pushResult fitsync.PushResult

	opErr error

	pushed      []models.Workout
	rescheduled []models.Date
	deleted     []string
}

func (f *fakeSyncer) Disconnect(userID uuid.UUID) { f.connected = false }

func (f *fakeSyncer) IsConnected(userID uuid.UUID) bool { return f.connected }

func (f *fakeSyncer) Activities(ctx context.Context, userID uuid.UUID, count int) ([]models.Activity, error) {
	if f.opErr != nil {
		return nil, f.opErr
	}
	return f.activities, nil
}

func (f *fakeSyncer) PushWorkout(ctx context.Context, userID uuid.UUID, workout models.Workout) (fitsync.PushResult, error) {
	if f.opErr != nil {
		return fitsync.PushResult{}, f.opErr
	}
	f.pushed = append(f.pushed, workout)
	return f.pushResult, nil
}

func (f *fakeSyncer) Reschedule(ctx context.Context, userID uuid.UUID, vendorWorkoutID string, newDate models.Date, currentDate *models.Date) (models.Date, error) {
	if f.opErr != nil {
		return models.Date{}, f.opErr
	}
	f.rescheduled = append(f.rescheduled, newDate)
	return newDate, nil
}

func (f *fakeSyncer) DeleteWorkout(ctx context.Context, userID uuid.UUID, vendorWorkoutID string) error {
	if f.opErr != nil {
		return f.opErr
	}
	f.deleted = append(f.deleted, vendorWorkoutID)
	return nil
}

type fakeGarmin struct {
	fakeSyncer
	connectErr error
	calendar   []models.CalendarItem
	daily      models.DailyStats
}

func (f *fakeGarmin) Connect(ctx context.Context, userID uuid.UUID, email, password string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeGarmin) Calendar(ctx context.Context, userID uuid.UUID, year, month int) ([]models.CalendarItem, error) {
	if f.opErr != nil {
		return nil, f.opErr
	}
	return f.calendar, nil
}

func (f *fakeGarmin) DailyStats(ctx context.Context, userID uuid.UUID) (models.DailyStats, error) {
	if f.opErr != nil {
		return models.DailyStats{}, f.opErr
	}
	return f.daily, nil
}

type fakeIntervals struct {
	fakeSyncer
	connectErr error
	events     []models.CalendarItem
	eventRange []models.Date
}

func (f *fakeIntervals) Connect(ctx context.Context, userID uuid.UUID, athleteID, apiKey string) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeIntervals) Events(ctx context.Context, userID uuid.UUID, oldest, newest models.Date) ([]models.CalendarItem, error) {
	if f.opErr != nil {
		return nil, f.opErr
	}
	f.eventRange = []models.Date{oldest, newest}
	return f.events, nil
}

type testEnv struct {
	srv       *Server
	store     *fakeStore
	garmin    *fakeGarmin
	intervals *fakeIntervals
	user      uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     newFakeStore(),
		garmin:    &fakeGarmin{},
		intervals: &fakeIntervals{},
		user:      uuid.New(),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.srv = New(env.store, env.garmin, env.intervals, testAPIKey, log)
	return env
}

// do issues an authenticated request against the server router.
func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("X-User-ID", env.user.String())
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	return rec
}

// seedWorkout inserts a workout owned by the env user.
func (env *testEnv) seedWorkout(t *testing.T, w models.Workout) models.Workout {
	t.Helper()
	w.UserID = env.user
	created, err := env.store.InsertWorkout(context.Background(), w)
	if err != nil {
		t.Fatalf("seeding workout: %v", err)
	}
	return created
}

// TestHealth verifies the health endpoint needs no auth.
func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

// TestCreateUser verifies provisioning needs the API key but no acting
// user, since it creates the identity other routes require.
func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)
	maxHR := 185

	body, _ := json.Marshal(createUserRequest{Name: "Alex", MaxHeartRate: &maxHR})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(body))
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var user models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if user.ID == uuid.Nil || user.Name != "Alex" {
		t.Errorf("user = %+v", user)
	}
	if user.MaxHeartRate == nil || *user.MaxHeartRate != 185 {
		t.Errorf("maxHeartRate = %v, want 185", user.MaxHeartRate)
	}
	if _, ok := env.store.users[user.ID]; !ok {
		t.Error("user not stored")
	}
}

// TestCreateUserValidation verifies name and heart-rate checks.
func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)

	for _, body := range []map[string]any{
		{},
		{"name": "Alex", "maxHeartRate": 50},
	} {
		data, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewReader(data))
		req.Header.Set("X-API-Key", testAPIKey)
		rec := httptest.NewRecorder()
		env.srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, want 400", body, rec.Code)
		}
	}
}

// TestCurrentUser verifies the acting user's record lookup, and that an
// unprovisioned id reads as 404.
func TestCurrentUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/users/me", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unprovisioned status = %d, want 404", rec.Code)
	}

	env.store.users[env.user] = models.User{ID: env.user, Name: "Alex"}
	rec = env.do(t, http.MethodGet, "/api/v1/users/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var user models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if user.ID != env.user {
		t.Errorf("user id = %s, want acting user", user.ID)
	}
}

// TestCreateWorkout verifies creation zeroes any client-supplied sync state.
func TestCreateWorkout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/workouts", map[string]any{
		"name":            "Tempo Run",
		"sportType":       "running",
		"sentToGarmin":    true,
		"garminWorkoutId": "sneaky",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var created models.Workout
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if created.UserID != env.user {
		t.Errorf("userId = %s, want acting user", created.UserID)
	}
	if created.SentToGarmin || created.GarminWorkoutID != "" {
		t.Error("sync state must be zeroed on create")
	}
}

// TestCreateWorkoutInvalid verifies step validation failures read as 400.
func TestCreateWorkoutInvalid(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/workouts", map[string]any{
		"name":      "Broken",
		"sportType": "running",
		"steps":     []map[string]any{{"stepType": "repeat"}},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestListWorkoutsEmpty verifies an empty list serializes as [] not null.
func TestListWorkoutsEmpty(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/workouts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want []", got)
	}
}

// TestGetWorkoutOwnership verifies another user's workout reads as 404.
func TestGetWorkoutOwnership(t *testing.T) {
	env := newTestEnv(t)

	other, err := env.store.InsertWorkout(context.Background(),
		models.Workout{UserID: uuid.New(), Name: "Not yours"})
	if err != nil {
		t.Fatalf("seeding workout: %v", err)
	}

	rec := env.do(t, http.MethodGet, "/api/v1/workouts/"+other.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	mine := env.seedWorkout(t, models.Workout{Name: "Mine"})
	rec = env.do(t, http.MethodGet, "/api/v1/workouts/"+mine.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("own workout status = %d, want 200", rec.Code)
	}
}

// TestConnectGarmin verifies a successful login records the connection.
func TestConnectGarmin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/garmin/connection",
		map[string]string{"email": "a@b.c", "password": "pw"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if !env.garmin.connected {
		t.Error("garmin service not connected")
	}
	conn := env.store.conns[connKey(env.user, "garmin")]
	if !conn.Connected || conn.Email != "a@b.c" {
		t.Errorf("stored connection = %+v", conn)
	}
}

// TestConnectMissingCredentials verifies both vendors reject incomplete
// credential payloads before touching the vendor.
func TestConnectMissingCredentials(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/garmin/connection",
		map[string]string{"email": "a@b.c"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("garmin status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/intervals/connection",
		map[string]string{"athleteId": "i1"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("intervals status = %d, want 400", rec.Code)
	}
}

// TestConnectRejectedCredentials verifies an AuthInvalid login reads as 401.
func TestConnectRejectedCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.garmin.connectErr = fitsync.AuthInvalid("Garmin", nil)

	rec := env.do(t, http.MethodPost, "/api/v1/garmin/connection",
		map[string]string{"email": "a@b.c", "password": "bad"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestConnectUnknownVendor verifies the vendor segment is validated.
func TestConnectUnknownVendor(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/strava/connection",
		map[string]string{"email": "a@b.c", "password": "pw"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestConnectionStatusLiveOverride verifies the live session wins over the
// stored record: a recorded connection with no session reads disconnected.
func TestConnectionStatusLiveOverride(t *testing.T) {
	env := newTestEnv(t)
	env.store.conns[connKey(env.user, "garmin")] = models.VendorConnection{
		UserID: env.user, Vendor: "garmin", Email: "a@b.c", Connected: true,
	}
	env.garmin.connected = false

	rec := env.do(t, http.MethodGet, "/api/v1/garmin/connection", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var conn models.VendorConnection
	if err := json.Unmarshal(rec.Body.Bytes(), &conn); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if conn.Connected {
		t.Error("connected = true, want live-session override to false")
	}
	if conn.Email != "a@b.c" {
		t.Errorf("email = %q, want stored identifier preserved", conn.Email)
	}
}

// TestDisconnect verifies the session drop and the stored record update.
func TestDisconnect(t *testing.T) {
	env := newTestEnv(t)
	env.intervals.connected = true

	rec := env.do(t, http.MethodDelete, "/api/v1/intervals/connection", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if env.intervals.connected {
		t.Error("session still connected")
	}
	if len(env.store.disconnected) != 1 || env.store.disconnected[0] != "intervals" {
		t.Errorf("disconnect records = %v", env.store.disconnected)
	}
}

// TestPushWorkout verifies a push records the vendor id on the workout.
func TestPushWorkout(t *testing.T) {
	env := newTestEnv(t)
	env.garmin.pushResult = fitsync.PushResult{WorkoutID: "123", Scheduled: true}
	workout := env.seedWorkout(t, models.Workout{Name: "Tempo"})

	rec := env.do(t, http.MethodPost, "/api/v1/garmin/workouts/"+workout.ID.String()+"/push", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	stored := env.store.workouts[workout.ID]
	if !stored.SentToGarmin || stored.GarminWorkoutID != "123" {
		t.Errorf("stored workout = %+v, want sentToGarmin with id 123", stored)
	}
	if len(env.garmin.pushed) != 1 {
		t.Errorf("pushes = %d, want 1", len(env.garmin.pushed))
	}
}

// TestPushNotConnected verifies a missing session reads as 409 so the
// client can offer a reconnect.
func TestPushNotConnected(t *testing.T) {
	env := newTestEnv(t)
	env.garmin.opErr = fitsync.NotConnected("Garmin")
	workout := env.seedWorkout(t, models.Workout{Name: "Tempo"})

	rec := env.do(t, http.MethodPost, "/api/v1/garmin/workouts/"+workout.ID.String()+"/push", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

// TestRescheduleRequiresPush verifies a never-pushed workout cannot be
// rescheduled at the vendor.
func TestRescheduleRequiresPush(t *testing.T) {
	env := newTestEnv(t)
	workout := env.seedWorkout(t, models.Workout{Name: "Tempo"})

	rec := env.do(t, http.MethodPost, "/api/v1/garmin/workouts/"+workout.ID.String()+"/reschedule",
		map[string]string{"date": "2026-03-01"})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

// TestRescheduleMissingDate verifies the date field is mandatory.
func TestRescheduleMissingDate(t *testing.T) {
	env := newTestEnv(t)
	workout := env.seedWorkout(t, models.Workout{
		Name: "Tempo", SentToGarmin: true, GarminWorkoutID: "123",
	})

	rec := env.do(t, http.MethodPost, "/api/v1/garmin/workouts/"+workout.ID.String()+"/reschedule",
		map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestReschedule verifies the vendor move and the stored date update.
func TestReschedule(t *testing.T) {
	env := newTestEnv(t)
	workout := env.seedWorkout(t, models.Workout{
		Name: "Tempo", SentToGarmin: true, GarminWorkoutID: "123",
	})

	rec := env.do(t, http.MethodPost, "/api/v1/garmin/workouts/"+workout.ID.String()+"/reschedule",
		map[string]string{"date": "2026-03-01"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	want := models.Date{Year: 2026, Month: time.March, Day: 1}
	if len(env.garmin.rescheduled) != 1 || env.garmin.rescheduled[0] != want {
		t.Errorf("vendor reschedules = %v, want [%s]", env.garmin.rescheduled, want)
	}
	stored := env.store.workouts[workout.ID]
	if stored.ScheduledDate == nil || *stored.ScheduledDate != want {
		t.Errorf("stored date = %v, want %s", stored.ScheduledDate, want)
	}
}

// TestVendorDeleteWorkout verifies the vendor delete clears the sync state.
func TestVendorDeleteWorkout(t *testing.T) {
	env := newTestEnv(t)
	workout := env.seedWorkout(t, models.Workout{
		Name: "Tempo", SentToIntervals: true, IntervalsEventID: "42",
	})

	rec := env.do(t, http.MethodDelete, "/api/v1/intervals/workouts/"+workout.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(env.intervals.deleted) != 1 || env.intervals.deleted[0] != "42" {
		t.Errorf("vendor deletes = %v, want [42]", env.intervals.deleted)
	}
	stored := env.store.workouts[workout.ID]
	if stored.SentToIntervals || stored.IntervalsEventID != "" {
		t.Errorf("stored workout = %+v, want intervals state cleared", stored)
	}
}

// TestEngineErrorStatusMapping verifies each engine kind maps to its HTTP
// status through a representative endpoint.
func TestEngineErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fitsync.AuthExpired("Garmin", nil), http.StatusUnauthorized},
		{fitsync.AuthInvalid("Garmin", nil), http.StatusUnauthorized},
		{fitsync.NotConnected("Garmin"), http.StatusConflict},
		{fitsync.NotFound("Garmin", "workout"), http.StatusNotFound},
		{fitsync.Unavailable("Garmin", "fetch activities", nil), http.StatusBadGateway},
		{fitsync.Unsupported("Garmin", "that"), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		env := newTestEnv(t)
		env.garmin.opErr = tc.err

		rec := env.do(t, http.MethodGet, "/api/v1/garmin/activities", nil)
		if rec.Code != tc.want {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}

// TestActivitiesUnknownVendor verifies the vendor dispatch 404s early.
func TestActivitiesUnknownVendor(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/strava/activities", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

// TestIntervalsEvents verifies the calendar read: the default window spans
// 30 days either side of today, explicit bounds pass through, and a
// malformed bound is rejected.
func TestIntervalsEvents(t *testing.T) {
	env := newTestEnv(t)
	env.intervals.events = []models.CalendarItem{
		{ScheduleID: "42", WorkoutID: "42", Title: "Threshold", ItemType: "workout"},
	}

	rec := env.do(t, http.MethodGet, "/api/v1/intervals/events", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var items []models.CalendarItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(items) != 1 || items[0].ScheduleID != "42" {
		t.Errorf("items = %+v", items)
	}

	today := models.DateOf(time.Now())
	if got := env.intervals.eventRange; len(got) != 2 ||
		got[0] != today.AddDays(-30) || got[1] != today.AddDays(30) {
		t.Errorf("default range = %v, want today +/- 30 days", got)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/intervals/events?oldest=2026-02-01&newest=2026-02-28", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("explicit range status = %d", rec.Code)
	}
	want := []models.Date{
		{Year: 2026, Month: time.February, Day: 1},
		{Year: 2026, Month: time.February, Day: 28},
	}
	if got := env.intervals.eventRange; got[0] != want[0] || got[1] != want[1] {
		t.Errorf("explicit range = %v, want %v", got, want)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/intervals/events?oldest=garbage", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed bound status = %d, want 400", rec.Code)
	}
}

// TestGarminDaily verifies the daily stats passthrough.
func TestGarminDaily(t *testing.T) {
	env := newTestEnv(t)
	bb := 55
	env.garmin.daily = models.DailyStats{BodyBattery: &bb}

	rec := env.do(t, http.MethodGet, "/api/v1/garmin/daily", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats models.DailyStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if stats.BodyBattery == nil || *stats.BodyBattery != 55 {
		t.Errorf("bodyBattery = %v, want 55", stats.BodyBattery)
	}
	if stats.Stress != nil {
		t.Errorf("stress = %v, want omitted", *stats.Stress)
	}
}
