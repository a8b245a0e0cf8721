// Package rate provides the request limiter shared by the HTTP sources.
// It is a thin facade over golang.org/x/time/rate so callers keep one small API
// (float rate, int burst) regardless of the backing implementation.
package rate

import (
	"context"
	"time"

	xrate "golang.org/x/time/rate"
)

// Limiter is a token bucket limiter supporting blocking (Wait) and
// non-blocking (Allow) use.
type Limiter struct {
	lim *xrate.Limiter
}

// New creates a limiter refilling rate tokens per second with room for burst.
// A non-positive rate yields an unlimited limiter.
//
// Example:
//
//	limiter := rate.New(2, 1) // crt.sh: 2 req/s
func New(rate float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	limit := xrate.Limit(rate)
	if rate <= 0 {
		limit = xrate.Inf
	}
	return &Limiter{lim: xrate.NewLimiter(limit, burst)}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.lim.Wait(ctx)
}

// Allow reports whether one operation can proceed now, consuming a token if so.
func (l *Limiter) Allow() bool {
	return l.lim.Allow()
}

// AllowN reports whether n operations can proceed now.
func (l *Limiter) AllowN(n int) bool {
	return l.lim.AllowN(time.Now(), n)
}

// SetRate changes the refill rate.
func (l *Limiter) SetRate(rate float64) {
	if rate <= 0 {
		l.lim.SetLimit(xrate.Inf)
		return
	}
	l.lim.SetLimit(xrate.Limit(rate))
}

// SetBurst changes the bucket size.
func (l *Limiter) SetBurst(burst int) {
	if burst < 1 {
		burst = 1
	}
	l.lim.SetBurst(burst)
}

// Tokens returns the number of tokens currently available.
func (l *Limiter) Tokens() float64 {
	return l.lim.Tokens()
}

// Rate returns the refill rate in tokens per second (0 when unlimited).
func (l *Limiter) Rate() float64 {
	if l.lim.Limit() == xrate.Inf {
		return 0
	}
	return float64(l.lim.Limit())
}

// Burst returns the bucket size.
func (l *Limiter) Burst() int {
	return l.lim.Burst()
}
