package mid

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/ardanlabs/namegen/business/web/errs"
	"github.com/ardanlabs/namegen/foundation/web"
	"golang.org/x/time/rate"
)

// ErrRateLimited is returned when a client sends ledger calls too quickly.
var ErrRateLimited = errors.New("too many ledger calls, slow down")

// maxClients bounds the number of limiters kept.
const maxClients = 10_000

// Limiter holds a token bucket per client address.
type Limiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	max      int
}

// NewLimiter constructs a limiter allowing perSecond calls per client with
// the specified burst. A zero rate disables limiting.
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		max:      maxClients,
	}
}

func (l *Limiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, exists := l.limiters[key]
	if !exists {
		if len(l.limiters) >= l.max {
			l.evict()
		}
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = lim
	}

	return lim.Allow()
}

// evict drops the limiters whose bucket has refilled, which behave the
// same as a new limiter. When every client is still throttled a single
// entry is dropped.
func (l *Limiter) evict() {
	full := float64(l.burst)
	for key, lim := range l.limiters {
		if lim.Tokens() >= full {
			delete(l.limiters, key)
		}
	}

	if len(l.limiters) < l.max {
		return
	}

	for key := range l.limiters {
		delete(l.limiters, key)
		return
	}
}

// RateLimit rejects requests from a client that exceeds the limiter.
func RateLimit(l *Limiter) web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if l == nil || l.rate <= 0 {
				return handler(ctx, w, r)
			}

			key, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				key = r.RemoteAddr
			}

			if !l.allow(key) {
				return errs.NewTrusted(ErrRateLimited, http.StatusTooManyRequests)
			}

			// Call the next handler.
			return handler(ctx, w, r)
		}

		return h
	}

	return m
}
