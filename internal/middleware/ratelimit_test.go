package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, remote, forwarded string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/usage?username=a", nil)
	req.RemoteAddr = remote
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 2)
	h := rl.Middleware(okHandler())

	for i := 0; i < 2; i++ {
		if code := doRequest(h, "10.0.0.1:1234", ""); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, code)
		}
	}
	if code := doRequest(h, "10.0.0.1:5555", ""); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := doRequest(h, "10.0.0.2:1234", ""); code != http.StatusOK {
		t.Fatalf("other client should not be limited, got %d", code)
	}
	if code := doRequest(h, "10.0.0.1:1234", "203.0.113.9, 10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("untrusted peer must not pick its bucket via X-Forwarded-For, got %d", code)
	}

	rl.Reset()
	if code := doRequest(h, "10.0.0.1:1234", ""); code != http.StatusOK {
		t.Fatalf("expected reset bucket to allow, got %d", code)
	}
}

func TestRateLimiterIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1)
	h := rl.Middleware(okHandler())

	allowed := 0
	for i := 0; i < 50; i++ {
		if doRequest(h, "10.0.0.1:1234", fmt.Sprintf("198.51.100.%d", i)) == http.StatusOK {
			allowed++
		}
	}
	if allowed != 1 {
		t.Fatalf("expected 1 allowed request, got %d", allowed)
	}
	rl.mu.RLock()
	buckets := len(rl.limiters)
	rl.mu.RUnlock()
	if buckets != 1 {
		t.Fatalf("expected a single bucket, got %d", buckets)
	}
}

func TestRateLimiterTrustedProxyForwardsClient(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 1).TrustProxies(netip.MustParsePrefix("10.0.0.0/8"))
	h := rl.Middleware(okHandler())

	if code := doRequest(h, "10.0.0.1:1234", "203.0.113.9"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := doRequest(h, "10.0.0.2:4321", "203.0.113.9"); code != http.StatusTooManyRequests {
		t.Fatalf("same forwarded client should share a bucket, got %d", code)
	}
	// The spoofed left-most hop is ignored; the proxy appended the real peer.
	if code := doRequest(h, "10.0.0.1:1234", "1.2.3.4, 203.0.113.10, 10.0.0.5"); code != http.StatusOK {
		t.Fatalf("expected fresh bucket for 203.0.113.10, got %d", code)
	}
	if code := doRequest(h, "10.0.0.1:1234", "9.9.9.9, 203.0.113.10"); code != http.StatusTooManyRequests {
		t.Fatalf("rotating the spoofed hop must not grant a new bucket, got %d", code)
	}
	if code := doRequest(h, "10.0.0.3:1234", ""); code != http.StatusOK {
		t.Fatalf("proxy without header is keyed on itself, got %d", code)
	}
}

func TestLoggerMiddlewarePassesThrough(t *testing.T) {
	h := LoggerMiddleware(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusTeapot {
		t.Fatalf("expected status to pass through, got %d", w.Code)
	}
}
