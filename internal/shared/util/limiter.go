package util

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces filesystem reads. The zero value and a nil *Limiter are
// unlimited.
type Limiter struct {
	bucket *rate.Limiter
}

// NewLimiter allows perSecond reads with bursts of up to burst. A
// non-positive rate disables limiting.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	return &Limiter{bucket: rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))}
}

// Wait blocks until one read may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.bucket == nil {
		return nil
	}
	return l.bucket.Wait(ctx)
}
