package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ClientKey identifies the caller for limiting and logging. Requests made
// on behalf of a player carry a player_id query parameter (the websocket
// attach does), and that beats the transport address: the bot gateway
// funnels every player through a single upstream IP.
func ClientKey(r *http.Request) string {
	if id := r.URL.Query().Get("player_id"); id != "" {
		return "player:" + id
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return "ip:" + strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// window is one key's fixed window: used requests and when it resets.
type window struct {
	resetAt time.Time
	used    int
}

// RateLimiter is an in-memory fixed-window limiter keyed by ClientKey.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{windows: make(map[string]*window)}
}

// Allow counts one request against key and reports whether it fits within
// limit for the current window of the given span.
func (rl *RateLimiter) Allow(key string, limit int, span time.Duration) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w := rl.windows[key]
	if w == nil {
		w = &window{}
		rl.windows[key] = w
	}
	if !now.Before(w.resetAt) {
		w.resetAt = now.Add(span)
		w.used = 0
	}
	w.used++
	return w.used <= limit
}

// Cleanup drops keys whose window has passed. Run periodically; the map
// otherwise grows with every player and address ever seen.
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, w := range rl.windows {
		if !now.Before(w.resetAt) {
			delete(rl.windows, key)
		}
	}
}

// RateLimit rejects requests over the limit with 429 and a Retry-After
// covering the rest of the window at worst.
func RateLimit(limiter *RateLimiter, keyFunc func(*http.Request) string, limit int, span time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(keyFunc(r), limit, span) {
				w.Header().Set("Retry-After", strconv.Itoa(int(span.Seconds())))
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
