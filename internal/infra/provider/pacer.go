package provider

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer throttles outbound provider calls so a burst of queued jobs does not
// trip the provider's own rate limiting.
type Pacer struct {
	limiter *rate.Limiter
}

func NewPacer(perSecond float64, burst int) *Pacer {
	return &Pacer{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a send slot is available or the context is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
