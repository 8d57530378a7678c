package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector(nil)

	tests := []struct {
		name      string
		method    string
		target    string
		userAgent string
		want      bool
	}{
		{"plain search", http.MethodGet, "/expense?name=Book", "Go-http-client/1.1", false},
		{"path traversal", http.MethodGet, "/expense/../../etc/passwd", "", true},
		{"encoded query is matched raw", http.MethodGet, "/income?name=x%27+union+select", "", false},
		{"raw union select", http.MethodGet, "/income?name=union select", "", true},
		{"scanner agent", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			req.URL.Path, req.URL.RawQuery, _ = strings.Cut(tt.target, "?")
			req.Header.Set("User-Agent", tt.userAgent)

			if got := d.DetectSuspiciousRequest(req); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMiddlewareBlocksTrace(t *testing.T) {
	d := NewDetector(nil)
	called := false
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("TRACE", "/expense", nil))

	if called {
		t.Fatal("TRACE should not reach the handler")
	}
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if m := d.GetMetrics(); m.BlockedRequests != 1 || m.SuspiciousRequests != 1 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector(nil)

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"direct client", "203.0.113.7:5000", "", "203.0.113.7"},
		{"untrusted peer ignores forwarded header", "203.0.113.7:5000", "198.51.100.1", "203.0.113.7"},
		{"trusted proxy uses first forwarded address", "10.0.0.2:80", "198.51.100.1, 10.0.0.2", "198.51.100.1"},
		{"trusted proxy with garbage header", "127.0.0.1:80", "nonsense", "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := d.ExtractClientIP(req); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for name, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be set on plain HTTP")
	}
}
