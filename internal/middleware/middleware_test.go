package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clipship/backend/internal/ctxkeys"
	"github.com/clipship/backend/internal/service"
)

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	called := false
	handler := RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/api/videos", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if called {
		t.Fatal("next handler must not run for anonymous requests")
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error, got content type %q", ct)
	}
}

func TestRequireAuthPassesIdentity(t *testing.T) {
	var seen *service.Identity
	handler := RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.Identity(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	r := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	identity := &service.Identity{ID: "user-1"}
	r = r.WithContext(ctxkeys.WithIdentity(r.Context(), identity))

	w := httptest.NewRecorder()
	handler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if seen == nil || seen.ID != "user-1" {
		t.Fatalf("expected identity to reach the handler, got %+v", seen)
	}
}

func TestRateLimitUploads(t *testing.T) {
	handler := RateLimitUploads(2)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	request := func(ip string) int {
		r := httptest.NewRequest(http.MethodPost, "/api/videos", nil)
		r.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		handler(w, r)
		return w.Code
	}

	// Burst of 2 per IP, the third is rejected.
	if code := request("10.0.0.1"); code != http.StatusCreated {
		t.Fatalf("first request: expected 201, got %d", code)
	}
	if code := request("10.0.0.1"); code != http.StatusCreated {
		t.Fatalf("second request: expected 201, got %d", code)
	}
	if code := request("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("third request: expected 429, got %d", code)
	}

	// A different IP has its own bucket.
	if code := request("10.0.0.2"); code != http.StatusCreated {
		t.Fatalf("other IP: expected 201, got %d", code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"remote addr", "192.168.1.10:54321", nil, "192.168.1.10"},
		{"x-forwarded-for", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "203.0.113.7"},
		{"x-real-ip", "10.0.0.1:80", map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
