package charter

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !limiter.Allow("captain-1") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}
	if limiter.Allow("captain-1") {
		t.Fatal("attempt over the limit should be denied")
	}
}

func TestRateLimiterIsPerKey(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	if !limiter.Allow("captain-1") {
		t.Fatal("first key should be allowed")
	}
	if !limiter.Allow("captain-2") {
		t.Fatal("second key has its own window")
	}
	if limiter.Allow("captain-1") {
		t.Fatal("first key is exhausted")
	}
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, 10*time.Minute)
	limiter.now = func() time.Time { return current }

	if !limiter.Allow("captain-1") {
		t.Fatal("first attempt should be allowed")
	}
	if limiter.Allow("captain-1") {
		t.Fatal("second attempt inside the window should be denied")
	}

	current = current.Add(11 * time.Minute)
	if !limiter.Allow("captain-1") {
		t.Fatal("attempt after window expiry should be allowed")
	}
}
