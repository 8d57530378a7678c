package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiterWindow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 2})
	defer rl.Stop()

	start := time.Now()
	for i, want := range []bool{true, true, false} {
		if got := rl.allowAt("1.2.3.4", start); got != want {
			t.Fatalf("request %d: allow = %v, want %v", i+1, got, want)
		}
	}

	if !rl.allowAt("5.6.7.8", start) {
		t.Error("other clients have their own window")
	}
	if !rl.allowAt("1.2.3.4", start.Add(61*time.Second)) {
		t.Error("a new window should start after a minute")
	}
	if got := rl.GetMetrics().TotalHits; got != 1 {
		t.Errorf("TotalHits = %d, want 1", got)
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	defer rl.Stop()

	now := time.Now()
	rl.allowAt("old", now.Add(-time.Hour))
	rl.allowAt("fresh", now)
	rl.cleanupStaleEntries(now)

	if got := rl.ActiveClients(); got != 1 {
		t.Errorf("ActiveClients = %d, want 1", got)
	}
}

func TestMiddlewareOnlyLimitsConfiguredMethods(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1, Methods: []string{http.MethodPost}})
	defer rl.Stop()

	h := rl.Middleware(nil, func(*http.Request) string { return "client" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodPost, http.StatusNoContent},
		{http.MethodPost, http.StatusTooManyRequests},
		{http.MethodGet, http.StatusNoContent},
		{http.MethodGet, http.StatusNoContent},
	}
	for i, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, "/expense", nil))
		if rec.Code != tt.want {
			t.Errorf("request %d (%s): status = %d, want %d", i+1, tt.method, rec.Code, tt.want)
		}
	}
}
