package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lcalzada-xor/reconrisk/internal/core/domain"
)

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(3, 1*time.Second)
	defer limiter.Close()

	// Test: Should allow first 3 requests
	for i := 0; i < 3; i++ {
		if !limiter.Allow("192.168.1.1") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// Test: Should block 4th request
	if limiter.Allow("192.168.1.1") {
		t.Error("4th request should be blocked")
	}

	// Test: Different IP should be allowed
	if !limiter.Allow("192.168.1.2") {
		t.Error("Request from different IP should be allowed")
	}
}

func TestRateLimiter_WindowExpiration(t *testing.T) {
	limiter := NewRateLimiter(2, 500*time.Millisecond)
	defer limiter.Close()

	limiter.Allow("192.168.1.1")
	limiter.Allow("192.168.1.1")

	if limiter.Allow("192.168.1.1") {
		t.Error("Request should be blocked before window expires")
	}

	time.Sleep(600 * time.Millisecond)

	if !limiter.Allow("192.168.1.1") {
		t.Error("Request should be allowed after window expires")
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	limiter := NewRateLimiter(5, 100*time.Millisecond)
	limiter.Close()

	limiter.Allow("192.168.1.1")
	limiter.Allow("192.168.1.2")
	limiter.Allow("192.168.1.3")

	limiter.mu.Lock()
	initialCount := len(limiter.requests)
	limiter.mu.Unlock()

	if initialCount != 3 {
		t.Errorf("Expected 3 IPs in map, got %d", initialCount)
	}

	time.Sleep(150 * time.Millisecond)
	limiter.cleanup()

	limiter.mu.Lock()
	afterCleanup := len(limiter.requests)
	limiter.mu.Unlock()

	if afterCleanup != 0 {
		t.Errorf("Expected 0 IPs after cleanup, got %d", afterCleanup)
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(10, 1*time.Second)
	defer limiter.Close()
	done := make(chan bool)

	for i := 0; i < 5; i++ {
		go func() {
			for j := 0; j < 3; j++ {
				limiter.Allow("192.168.1.1")
			}
			done <- true
		}()
	}

	for i := 0; i < 5; i++ {
		<-done
	}

	// 15 attempts against a limit of 10
	if limiter.Allow("192.168.1.1") {
		t.Error("Should have exceeded limit with concurrent requests")
	}
}

func TestRateLimitMiddleware_SharesBudgetAcrossPorts(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	defer limiter.Close()

	h := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/risk/acme", nil)
	first.RemoteAddr = "10.0.0.7:50123"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, first)
	if w.Code != http.StatusNoContent {
		t.Fatalf("first request: got %d", w.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/risk/acme", nil)
	second.RemoteAddr = "10.0.0.7:50999"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, second)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", w.Header().Get("Retry-After"))
	}
}

func TestActorMiddleware(t *testing.T) {
	var got string
	h := ActorMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = domain.ActorFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(ActorHeader, " alice ")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "alice" {
		t.Errorf("actor = %q, want alice", got)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	if got != domain.SystemActor {
		t.Errorf("actor = %q, want %q", got, domain.SystemActor)
	}

	long := httptest.NewRequest(http.MethodPost, "/", nil)
	long.Header.Set(ActorHeader, string(make([]byte, maxActorLength+1)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, long)
	if w.Code != http.StatusBadRequest {
		t.Errorf("long actor: got %d", w.Code)
	}
}
