package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware applies a token bucket per client IP
type RateLimitMiddleware struct {
	rps      rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	lastSweep time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimitMiddleware creates a limiter allowing rps requests per second
// with the given burst for each client. A non-positive rps disables limiting.
func NewRateLimitMiddleware(rps float64, burst int) *RateLimitMiddleware {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return &RateLimitMiddleware{
		rps:      limit,
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
		limiters: make(map[string]*clientLimiter),
	}
}

// RateLimit rejects requests over the client's budget with 429
func (m *RateLimitMiddleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.allow(getClientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) allow(ip string) bool {
	now := m.now()

	m.mu.Lock()
	cl, ok := m.limiters[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.limiters[ip] = cl
	}
	cl.lastSeen = now
	if now.Sub(m.lastSweep) >= m.idle/2 {
		m.evictIdle(now)
		m.lastSweep = now
	}
	m.mu.Unlock()

	return cl.limiter.AllowN(now, 1)
}

// evictIdle drops limiters of clients not seen for a while. It runs at most
// once per half idle period. Callers hold mu.
func (m *RateLimitMiddleware) evictIdle(now time.Time) {
	for ip, cl := range m.limiters {
		if now.Sub(cl.lastSeen) > m.idle {
			delete(m.limiters, ip)
		}
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
