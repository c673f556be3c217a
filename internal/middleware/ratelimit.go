package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// idleAfter is how long an untouched budget is kept before it is dropped.
const idleAfter = 10 * time.Minute

type budget struct {
	tokens float64
	at     time.Time
}

// RateLimiter keeps one refilling request budget per caller key.
type RateLimiter struct {
	burst  float64
	perSec float64
	now    func() time.Time

	mu        sync.Mutex
	budgets   map[string]*budget
	lastSweep time.Time
}

// NewRateLimiter allows bursts of up to burst requests, refilled at perSecond.
func NewRateLimiter(burst, perSecond int) *RateLimiter {
	return &RateLimiter{
		burst:   float64(burst),
		perSec:  float64(perSecond),
		now:     time.Now,
		budgets: make(map[string]*budget),
	}
}

// Allow spends one request from key's budget. When the budget is empty it
// returns false and the wait until the next request would be allowed.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.sweep(now)

	b, ok := rl.budgets[key]
	if !ok {
		b = &budget{tokens: rl.burst, at: now}
		rl.budgets[key] = b
	}
	b.tokens = math.Min(rl.burst, b.tokens+now.Sub(b.at).Seconds()*rl.perSec)
	b.at = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	if rl.perSec <= 0 {
		return false, time.Minute
	}
	wait := time.Duration((1 - b.tokens) / rl.perSec * float64(time.Second))
	return false, wait
}

// sweep drops idle budgets; caller holds mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < idleAfter {
		return
	}
	rl.lastSweep = now
	for key, b := range rl.budgets {
		if now.Sub(b.at) > idleAfter {
			delete(rl.budgets, key)
		}
	}
}

// RateLimitMiddleware answers 429 with Retry-After once the caller's budget is spent.
// Callers are keyed by authenticated client and remote host.
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientFromContext(r.Context()) + "|" + remoteHost(r.RemoteAddr)
			ok, wait := limiter.Allow(key)
			if !ok {
				secs := int(math.Ceil(wait.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
				http.Error(w, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
