package config

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	BASE_BACKOFF   = 1 * time.Second
	MAX_BACKOFF    = 2 * time.Minute
	BACKOFF_FACTOR = 2.0
	JITTER_FACTOR  = 0.5
)

type backoffData struct {
	BackoffDelay time.Duration
	NextRetryAt  time.Time
}

// BackoffStore tracks upstream providers that recently failed so callers
// can skip them until their cool-down has passed.
type BackoffStore struct {
	mu       sync.RWMutex
	backoffs map[string]backoffData
	now      func() time.Time
}

func NewBackoffStore() *BackoffStore {
	return &BackoffStore{
		backoffs: make(map[string]backoffData),
		now:      time.Now,
	}
}

func (s *BackoffStore) NextRetryAt(provider string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if backoff, exists := s.backoffs[provider]; exists {
		return backoff.NextRetryAt.UTC(), true
	}
	return time.Time{}, false
}

// InBackoff reports whether provider is still cooling down.
func (s *BackoffStore) InBackoff(provider string) bool {
	next, ok := s.NextRetryAt(provider)
	return ok && s.now().Before(next)
}

func (s *BackoffStore) UpdateBackoff(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if backoff, exists := s.backoffs[provider]; exists {
		backoff.BackoffDelay = calculateNewBackoffDelay(backoff.BackoffDelay)
		backoff.NextRetryAt = calculateNextRetryAt(s.now(), backoff.BackoffDelay)
		s.backoffs[provider] = backoff
	} else {
		s.backoffs[provider] = backoffData{
			BackoffDelay: BASE_BACKOFF,
			NextRetryAt:  calculateNextRetryAt(s.now(), BASE_BACKOFF),
		}
	}
}

func (s *BackoffStore) ResetBackoff(provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.backoffs, provider)
}

func calculateNextRetryAt(now time.Time, backoff time.Duration) time.Time {
	jitter := time.Duration(rand.Float64() * float64(backoff) * JITTER_FACTOR)
	backoff += jitter
	if backoff > MAX_BACKOFF {
		backoff = MAX_BACKOFF
	}
	return now.Add(backoff).UTC()
}

func calculateNewBackoffDelay(backoffDelay time.Duration) time.Duration {
	backoffDelay *= BACKOFF_FACTOR
	if backoffDelay >= MAX_BACKOFF {
		backoffDelay = MAX_BACKOFF
	}
	return backoffDelay
}
