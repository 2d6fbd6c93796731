package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// TriggerLimiter is a per-caller token bucket guarding the trigger endpoints.
// Triggers arrive from the event delivery service, not end users, so the
// bucket protects against a misconfigured publisher replaying events in a
// tight loop rather than against abuse.
type TriggerLimiter struct {
	mu       sync.Mutex
	limiters map[string]*callerLimiter
	r        rate.Limit
	burst    int
}

// NewTriggerLimiter creates a per-IP limiter: r events/second, bursting up
// to burst events. Stale entries are evicted in the background.
func NewTriggerLimiter(r rate.Limit, burst int) *TriggerLimiter {
	tl := &TriggerLimiter{
		limiters: make(map[string]*callerLimiter),
		r:        r,
		burst:    burst,
	}
	go tl.evictStale()
	return tl
}

func (tl *TriggerLimiter) get(ip string) *rate.Limiter {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	if v, ok := tl.limiters[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}
	l := rate.NewLimiter(tl.r, tl.burst)
	tl.limiters[ip] = &callerLimiter{limiter: l, lastSeen: time.Now()}
	return l
}

func (tl *TriggerLimiter) evictStale() {
	for {
		time.Sleep(5 * time.Minute)
		tl.mu.Lock()
		for ip, v := range tl.limiters {
			if time.Since(v.lastSeen) > 10*time.Minute {
				delete(tl.limiters, ip)
			}
		}
		tl.mu.Unlock()
	}
}

// Middleware enforces the limit per remote IP and answers 429 when the
// caller's bucket is empty.
func (tl *TriggerLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !tl.get(c.RealIP()).Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}
