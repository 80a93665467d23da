package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"
)

// mockClock is a controllable clock for testing.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestCheckSubmit_Cooldown(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		SubmitCooldown:   10 * time.Second,
		SubmitMaxPerHour: 100,
		Clock:            clock,
	})
	defer limiter.Close()

	ip := "203.0.113.7"

	if result := limiter.Allow(ip); !result.Allowed {
		t.Fatalf("first submit should be allowed, got %s", result.Reason)
	}

	clock.Advance(4 * time.Second)
	result := limiter.CheckSubmit(ip)
	if result.Allowed {
		t.Fatal("submit within cooldown should be blocked")
	}
	if result.Reason != "cooldown" {
		t.Errorf("expected reason 'cooldown', got %q", result.Reason)
	}
	if result.RetryAfter != 6*time.Second {
		t.Errorf("expected RetryAfter 6s, got %v", result.RetryAfter)
	}

	// Another client is unaffected.
	if result := limiter.CheckSubmit("198.51.100.1"); !result.Allowed {
		t.Errorf("other client blocked: %s", result.Reason)
	}

	clock.Advance(7 * time.Second)
	if result := limiter.CheckSubmit(ip); !result.Allowed {
		t.Errorf("submit after cooldown should be allowed, got %s", result.Reason)
	}
}

func TestCheckSubmit_HourlyLimit(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{
		SubmitCooldown:   time.Millisecond,
		SubmitMaxPerHour: 3,
		Clock:            clock,
	})
	defer limiter.Close()

	ip := "203.0.113.7"
	for i := 0; i < 3; i++ {
		if result := limiter.Allow(ip); !result.Allowed {
			t.Fatalf("submit %d should be allowed, got %s", i+1, result.Reason)
		}
		clock.Advance(time.Second)
	}

	result := limiter.CheckSubmit(ip)
	if result.Allowed || result.Reason != "hourly_limit" {
		t.Fatalf("fourth submit = %+v, want hourly_limit", result)
	}

	clock.Advance(time.Hour)
	if result := limiter.Allow(ip); !result.Allowed {
		t.Fatalf("submit after window should be allowed, got %s", result.Reason)
	}
}

func TestAllow_ConcurrentBurst(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{SubmitMaxPerHour: 1, Clock: clock})
	defer limiter.Close()

	const callers = 32
	for round := 0; round < 50; round++ {
		ip := fmt.Sprintf("203.0.113.%d", round)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			allowed int
		)
		start := make(chan struct{})
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if limiter.Allow(ip).Allowed {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		close(start)
		wg.Wait()

		if allowed != 1 {
			t.Fatalf("round %d: %d of %d concurrent submits allowed, want 1", round, allowed, callers)
		}
	}
}

func TestCleanupDropsStaleEntries(t *testing.T) {
	clock := newMockClock()
	limiter := New(&Config{SubmitCooldown: time.Second, Clock: clock})
	defer limiter.Close()

	limiter.RecordSubmit("203.0.113.7")
	clock.Advance(2 * time.Hour)
	limiter.cleanup()

	limiter.mu.RLock()
	defer limiter.mu.RUnlock()
	if len(limiter.submits) != 0 {
		t.Fatalf("stale entries remain: %d", len(limiter.submits))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		trustProxy bool
		want       string
	}{
		{"remote addr", "203.0.113.7:5555", "", false, "203.0.113.7"},
		{"ignores xff when untrusted", "10.0.0.1:5555", "198.51.100.9", false, "10.0.0.1"},
		{"rightmost public xff", "10.0.0.1:5555", "198.51.100.9, 203.0.113.7, 10.0.0.2", true, "203.0.113.7"},
		{"all private xff", "10.0.0.1:5555", "10.0.0.3, 192.168.1.4", true, "192.168.1.4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := GetClientIP(req, tt.trustProxy); got != tt.want {
				t.Fatalf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
