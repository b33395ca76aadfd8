package generate

import (
	"context"

	"golang.org/x/time/rate"
)

// Limited spaces out calls to the wrapped generator.
type Limited struct {
	next    Generator
	limiter *rate.Limiter
}

// NewLimited wraps next with a token bucket of perSecond requests. A
// non-positive rate returns next unchanged.
func NewLimited(next Generator, perSecond float64, burst int) Generator {
	if perSecond <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &Limited{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *Limited) Generate(ctx context.Context, req Request) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return l.next.Generate(ctx, req)
}
