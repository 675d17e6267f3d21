package config

import (
	"testing"
	"time"
)

func TestBackoffStore(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := NewBackoffStore()
	s.now = func() time.Time { return now }

	if s.InBackoff("tmap") {
		t.Fatal("fresh store should not be in backoff")
	}

	s.UpdateBackoff("tmap")
	next, ok := s.NextRetryAt("tmap")
	if !ok {
		t.Fatal("expected retry time after update")
	}
	delay := next.Sub(now)
	if delay < BASE_BACKOFF || delay > time.Duration(float64(BASE_BACKOFF)*(1+JITTER_FACTOR)) {
		t.Errorf("first delay %v outside [%v, %v]", delay, BASE_BACKOFF, time.Duration(float64(BASE_BACKOFF)*(1+JITTER_FACTOR)))
	}
	if !s.InBackoff("tmap") {
		t.Error("expected provider to be in backoff")
	}
	if s.InBackoff("other") {
		t.Error("backoff must be per provider")
	}

	s.UpdateBackoff("tmap")
	next, _ = s.NextRetryAt("tmap")
	if d := next.Sub(now); d < 2*BASE_BACKOFF {
		t.Errorf("second delay %v should at least double", d)
	}

	now = now.Add(MAX_BACKOFF + time.Second)
	if s.InBackoff("tmap") {
		t.Error("backoff should expire")
	}

	s.ResetBackoff("tmap")
	if _, ok := s.NextRetryAt("tmap"); ok {
		t.Error("reset should clear provider")
	}
}

func TestCalculateNewBackoffDelayCaps(t *testing.T) {
	d := BASE_BACKOFF
	for i := 0; i < 20; i++ {
		d = calculateNewBackoffDelay(d)
	}
	if d != MAX_BACKOFF {
		t.Errorf("expected cap %v, got %v", MAX_BACKOFF, d)
	}
}
