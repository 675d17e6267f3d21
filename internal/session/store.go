package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gostop.app/internal/metrics"
)

var ErrSessionNotFound = errors.New("session not found")

// Token identifies one Begin call. Commit only applies results carrying the
// most recent token of their kind.
type Token struct {
	Kind Kind
	gen  uint64
}

// Store is a thread-safe in-memory session registry with idle expiry.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *Store) Create() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newSession(uuid.NewString(), s.now())
	s.sessions[sess.ID] = sess
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return sess.snapshot()
}

func (s *Store) Get(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	sess.touched = s.now()
	return sess.snapshot(), nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookup(id); err != nil {
		return err
	}
	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return nil
}

// Update applies fn to the session under the lock. If fn fails the error is
// returned and the snapshot reflects whatever fn left behind.
func (s *Store) Update(id string, fn func(*Session) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	sess.touched = s.now()
	if err := fn(sess); err != nil {
		return sess.snapshot(), err
	}
	return sess.snapshot(), nil
}

// Begin starts a unit of work of the given kind and supersedes any earlier
// one still in flight. The snapshot holds the inputs the work should use.
func (s *Store) Begin(id string, kind Kind) (Token, Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(id)
	if err != nil {
		return Token{}, Snapshot{}, err
	}
	sess.touched = s.now()
	sess.generations[kind]++
	return Token{Kind: kind, gen: sess.generations[kind]}, sess.snapshot(), nil
}

// Commit applies fn if tok is still the latest of its kind. A stale commit
// leaves the session untouched and reports applied=false.
func (s *Store) Commit(id string, tok Token, fn func(*Session) error) (snap Snapshot, applied bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, false, err
	}
	if sess.generations[tok.Kind] != tok.gen {
		metrics.StaleCompletions.WithLabelValues(string(tok.Kind)).Inc()
		s.logger.Debug("dropping stale completion", "session_id", id, "kind", tok.Kind)
		return sess.snapshot(), false, nil
	}
	sess.touched = s.now()
	if err := fn(sess); err != nil {
		return sess.snapshot(), true, err
	}
	return sess.snapshot(), true, nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictExpired removes sessions idle for longer than the TTL.
func (s *Store) EvictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.touched.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return evicted
}

// StartJanitor evicts expired sessions every interval until ctx is done.
func (s *Store) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.EvictExpired(); n > 0 {
					s.logger.Info("evicted idle sessions", "count", n, "remaining", s.Len())
				}
			}
		}
	}()
}

func (s *Store) lookup(id string) (*Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}
