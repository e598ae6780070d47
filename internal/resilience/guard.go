package resilience

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// GuardConfig is the flat, config-file friendly form of a Guard.
type GuardConfig struct {
	MaxAttempts      int
	InitialBackoffMs int
	MaxBackoffMs     int
	FailureThreshold int
	ResetTimeoutSecs int
	RatePerSec       float64
	RateBurst        int
}

// Guard wraps every upstream call in a rate limiter, a circuit breaker and
// a retry policy, in that order.
type Guard struct {
	limiter *rate.Limiter
	breaker *Breaker
	retry   RetryPolicy
}

// NewGuard builds a Guard. A non-positive RatePerSec disables rate limiting.
func NewGuard(cfg GuardConfig) *Guard {
	policy := DefaultRetryPolicy()
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.InitialBackoffMs > 0 {
		policy.InitialBackoff = time.Duration(cfg.InitialBackoffMs) * time.Millisecond
	}
	if cfg.MaxBackoffMs > 0 {
		policy.MaxBackoff = time.Duration(cfg.MaxBackoffMs) * time.Millisecond
	}

	limit := rate.Inf
	burst := cfg.RateBurst
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	if burst <= 0 {
		burst = 1
	}

	return &Guard{
		limiter: rate.NewLimiter(limit, burst),
		breaker: NewBreaker(cfg.FailureThreshold, time.Duration(cfg.ResetTimeoutSecs)*time.Second),
		retry:   policy,
	}
}

// Breaker exposes the guard's breaker for status reporting.
func (g *Guard) Breaker() *Breaker { return g.breaker }

// Call runs fn under g. Each attempt waits on the limiter and consults the
// breaker; only transient failures count against the breaker.
func Call[T any](ctx context.Context, g *Guard, op string, fn func(context.Context) (T, error)) (T, error) {
	if g == nil {
		return fn(ctx)
	}

	policy := g.retry
	policy.OnRetry = RetryLogger(op)

	// ErrBreakerOpen is not transient, so an open breaker ends the call.
	return Retry(ctx, policy, func(ctx context.Context) (T, error) {
		var zero T
		if err := g.limiter.Wait(ctx); err != nil {
			return zero, eris.Wrapf(err, "resilience: %s rate limit wait", op)
		}
		if err := g.breaker.Allow(); err != nil {
			return zero, err
		}

		val, err := fn(ctx)
		if err != nil && IsTransient(err) {
			g.breaker.Record(err)
		} else {
			g.breaker.Record(nil)
		}
		return val, err
	})
}
