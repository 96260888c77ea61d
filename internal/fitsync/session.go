package fitsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/stridesync/internal/observability"
	"github.com/google/uuid"
)

// DefaultLivenessWindow is how long a session is assumed live after its
// last successful use, before the next use triggers a network probe.
const DefaultLivenessWindow = 10 * time.Minute

// Credentials is what a vendor needs to open a session. Garmin uses
// Email/Password; intervals-style vendors use AthleteID/APIKey. Held in
// memory only, never persisted by this subsystem.
type Credentials struct {
	Email     string
	Password  string
	AthleteID string
	APIKey    string
}

// Dialer opens an authenticated vendor client from credentials.
type Dialer[C any] func(ctx context.Context, creds Credentials) (C, error)

// Prober cheaply verifies that an existing client handle is still live.
type Prober[C any] func(ctx context.Context, client C) error

type session[C any] struct {
	mu       sync.Mutex
	client   C
	live     bool
	creds    Credentials
	hasCreds bool
	lastUsed time.Time
}

// Manager owns one authenticated client handle per user for one vendor.
// Operations for the same user are serialized on the session's mutex so two
// concurrent calls never race to reconnect a dead session; different users
// proceed independently.
type Manager[C any] struct {
	vendor       string
	metricVendor string
	dial         Dialer[C]
	probe        Prober[C]
	window       time.Duration
	log          *slog.Logger
	now          func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*session[C]
}

// NewManager creates a session manager for one vendor. vendor names the
// platform in error messages; metricVendor labels prometheus series and
// must match the label used for the vendor's cache metrics. window
// defaults to DefaultLivenessWindow if zero.
func NewManager[C any](vendor, metricVendor string, dial Dialer[C], probe Prober[C], window time.Duration, log *slog.Logger) *Manager[C] {
	if window == 0 {
		window = DefaultLivenessWindow
	}
	return &Manager[C]{
		vendor:       vendor,
		metricVendor: metricVendor,
		dial:         dial,
		probe:        probe,
		window:       window,
		log:          log,
		now:          time.Now,
		sessions:     make(map[uuid.UUID]*session[C]),
	}
}

func (m *Manager[C]) get(userID uuid.UUID) *session[C] {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &session[C]{}
		m.sessions[userID] = s
	}
	return s
}

// Connect performs an explicit vendor login and stores the handle and the
// credentials for later silent reconnects. Nothing partial is stored on
// failure.
func (m *Manager[C]) Connect(ctx context.Context, userID uuid.UUID, creds Credentials) error {
	s := m.get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := m.dial(ctx, creds)
	if err != nil {
		m.log.Warn("vendor login failed", "vendor", m.vendor, "user", userID, "error", err)
		return AuthInvalid(m.vendor, err)
	}
	s.client = client
	s.live = true
	s.creds = creds
	s.hasCreds = true
	s.lastUsed = m.now()
	m.log.Info("vendor connected", "vendor", m.vendor, "user", userID)
	return nil
}

// Disconnect drops the handle and the cached credentials. Idempotent.
func (m *Manager[C]) Disconnect(userID uuid.UUID) {
	s := m.get(userID)
	s.mu.Lock()
	var zero C
	s.client = zero
	s.live = false
	s.creds = Credentials{}
	s.hasCreds = false
	s.mu.Unlock()
}

// IsConnected reports whether a live handle or reconnectable credentials
// exist for the user.
func (m *Manager[C]) IsConnected(userID uuid.UUID) bool {
	s := m.get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live || s.hasCreds
}

// ensure returns a live client, probing or silently reconnecting as needed.
// Caller must hold s.mu.
func (m *Manager[C]) ensure(ctx context.Context, userID uuid.UUID, s *session[C]) (C, error) {
	var zero C

	if s.live {
		if m.now().Sub(s.lastUsed) <= m.window {
			return s.client, nil
		}
		if err := m.probe(ctx, s.client); err == nil {
			s.lastUsed = m.now()
			return s.client, nil
		}
		// Probe failed: the handle is dead.
		s.client = zero
		s.live = false
		m.log.Info("vendor session dead", "vendor", m.vendor, "user", userID)
	}

	if !s.hasCreds {
		return zero, NotConnected(m.vendor)
	}
	client, err := m.dial(ctx, s.creds)
	if err != nil {
		observability.RecordReconnect(m.metricVendor, "failure")
		return zero, AuthExpired(m.vendor, err)
	}
	observability.RecordReconnect(m.metricVendor, "success")
	s.client = client
	s.live = true
	s.lastUsed = m.now()
	return client, nil
}

// Do runs one vendor call under the uniform retry policy: ensure a live
// session, attempt the call, and on failure evict the session, reconnect
// silently once, and retry the call exactly once. Typed vendor outcomes
// (ErrNotFoundAtVendor, engine *Error values) pass through without a retry;
// a second transport failure surfaces as VendorUnavailable.
func (m *Manager[C]) Do(ctx context.Context, userID uuid.UUID, op string, call func(C) error) error {
	s := m.get(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := m.ensure(ctx, userID, s)
	if err != nil {
		observability.RecordVendorCall(m.metricVendor, op, "session_error")
		return err
	}

	err = call(client)
	if err == nil {
		s.lastUsed = m.now()
		observability.RecordVendorCall(m.metricVendor, op, "success")
		return nil
	}
	if final, done := m.classify(op, err); done {
		observability.RecordVendorCall(m.metricVendor, op, "error")
		return final
	}

	// Evict and reconnect once, then retry exactly once.
	var zero C
	s.client = zero
	s.live = false
	if !s.hasCreds {
		observability.RecordVendorCall(m.metricVendor, op, "session_error")
		return NotConnected(m.vendor)
	}
	client, dialErr := m.dial(ctx, s.creds)
	if dialErr != nil {
		observability.RecordReconnect(m.metricVendor, "failure")
		observability.RecordVendorCall(m.metricVendor, op, "session_error")
		return AuthExpired(m.vendor, dialErr)
	}
	observability.RecordReconnect(m.metricVendor, "success")
	s.client = client
	s.live = true

	err = call(client)
	if err == nil {
		s.lastUsed = m.now()
		observability.RecordVendorCall(m.metricVendor, op, "retried_success")
		return nil
	}
	observability.RecordVendorCall(m.metricVendor, op, "error")
	if final, done := m.classify(op, err); done {
		return final
	}
	return Unavailable(m.vendor, op, err)
}

// classify maps a call error to its final form when no retry should happen.
// Returns done=false for errors worth an evict-reconnect-retry cycle.
func (m *Manager[C]) classify(op string, err error) (error, bool) {
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	if errors.Is(err, ErrNotFoundAtVendor) {
		return NotFound(m.vendor, op+" target"), true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Unavailable(m.vendor, op, err), true
	}
	// ErrUnauthorized and transport failures both go through the single
	// reconnect-and-retry cycle.
	return nil, false
}
