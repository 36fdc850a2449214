package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func rateLimitedHandler(t *testing.T, limit int, prefix string) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mw := RateLimitMiddleware(client, RateLimitConfig{
		RequestsPerWindow: limit,
		Window:            time.Second,
		KeyPrefix:         prefix,
	}, zap.NewNop())

	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestProperty_ExcessRequestsAreBlocked(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("exactly the window's worth of requests succeed", prop.ForAll(
		func(limit int, excess int) bool {
			handler := rateLimitedHandler(t, limit, "ratelimit:test")

			allowed, blocked := 0, 0
			for i := 0; i < limit+excess; i++ {
				req := httptest.NewRequest("GET", "/test", nil)
				req.RemoteAddr = "192.168.1.100"
				w := httptest.NewRecorder()

				handler.ServeHTTP(w, req)

				switch w.Code {
				case http.StatusOK:
					allowed++
				case http.StatusTooManyRequests:
					blocked++
				}
			}

			return allowed == limit && blocked == excess
		},
		gen.IntRange(5, 20),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRateLimitCountsDevicesSeparately(t *testing.T) {
	handler := rateLimitedHandler(t, 1, "ratelimit:device")

	for i, device := range []string{"device-a", "device-b"} {
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1"
		req.Header.Set(DeviceIDHeader, device)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("request %d for %s should pass, got %d", i, device, w.Code)
		}
	}

	// Second request from the same device is over the limit
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set(DeviceIDHeader, "device-a")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 for repeat device, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on throttled response")
	}
}

func TestRateLimitHeadersPresent(t *testing.T) {
	handler := rateLimitedHandler(t, 10, "ratelimit:headers")

	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = "192.168.1.101"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Header().Get("X-RateLimit-Limit") != "10" {
		t.Errorf("unexpected X-RateLimit-Limit %q", w.Header().Get("X-RateLimit-Limit"))
	}
	if w.Header().Get("X-RateLimit-Remaining") != "9" {
		t.Errorf("unexpected X-RateLimit-Remaining %q", w.Header().Get("X-RateLimit-Remaining"))
	}
}
