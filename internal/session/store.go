// Package session keeps the filter state and view options of each dashboard
// client in memory for the lifetime of the process.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wilbersoares/projeto-fatec/internal/dashboard"
	apperrors "github.com/wilbersoares/projeto-fatec/internal/errors"
	"github.com/wilbersoares/projeto-fatec/internal/filter"
	"github.com/wilbersoares/projeto-fatec/internal/infrastructure"
)

// ErrNotFound is wrapped by every lookup of an unknown or expired session.
var ErrNotFound = errors.New("session not found")

// Session is one client's dashboard state.
type Session struct {
	ID        string            `json:"id"`
	State     filter.State      `json:"state"`
	Options   dashboard.Options `json:"options"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s *Session) clone() Session {
	return Session{
		ID:        s.ID,
		State:     s.State.Clone(),
		Options:   s.Options.Clone(),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Store is a mutex guarded map of sessions. Sessions idle for longer than
// the TTL are treated as gone and removed by Sweep.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
	metrics  *infrastructure.BusinessMetrics
}

// NewStore creates an empty store. A non-positive ttl disables expiry.
func NewStore(ttl time.Duration, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *Store {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "session.store")),
		metrics:  metrics,
	}
}

// Create stores a new session and returns a copy of it.
func (s *Store) Create(ctx context.Context, state filter.State, opts dashboard.Options) Session {
	now := s.now()
	sess := &Session{
		ID:        uuid.NewString(),
		State:     state.Clone(),
		Options:   opts.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ActiveSessions.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "session created",
		slog.String("session_id", sess.ID),
		slog.Int("active_sessions", count))
	return sess.clone()
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return Session{}, notFound(id)
	}
	return sess.clone(), nil
}

// Update runs fn on a copy of the session and stores the result when fn
// succeeds. The session is locked for the duration of fn.
func (s *Store) Update(ctx context.Context, id string, fn func(*Session) error) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok || s.expired(sess) {
		return Session{}, notFound(id)
	}

	next := sess.clone()
	if err := fn(&next); err != nil {
		return Session{}, err
	}
	next.ID = sess.ID
	next.CreatedAt = sess.CreatedAt
	next.UpdatedAt = s.now()
	s.sessions[id] = &next

	s.logger.DebugContext(ctx, "session updated", slog.String("session_id", id))
	return next.clone(), nil
}

// Delete removes a session. It reports whether the session existed.
func (s *Store) Delete(ctx context.Context, id string) bool {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok && s.metrics != nil {
		s.metrics.ActiveSessions.Add(ctx, -1)
	}
	return ok
}

// Len returns the number of stored sessions, expired ones included until
// the next sweep.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *Store) Sweep(ctx context.Context) int {
	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		if s.metrics != nil {
			s.metrics.ActiveSessions.Add(ctx, int64(-removed))
		}
		s.logger.InfoContext(ctx, "expired sessions removed", slog.Int("removed", removed))
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 || s.ttl <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *Store) expired(sess *Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.UpdatedAt) > s.ttl
}

func notFound(id string) error {
	return apperrors.NewNotFoundError("session "+id, ErrNotFound)
}
