package engines

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/letterboard/internal/speech"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// guard throttles calls to a remote service and stops calling it for a while
// after repeated failures.
type guard struct {
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func newGuard(name string, perMinute int) *guard {
	if perMinute <= 0 {
		perMinute = 50
	}
	return &guard{
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 3),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
			IsSuccessful: func(err error) bool {
				return err == nil || speech.IsCanceled(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Engine circuit changed", "engine", name, "from", from, "to", to)
			},
		}),
	}
}

func (g *guard) do(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, speech.NewSpeechError(speech.ErrorCodeCanceled, "rate limit wait canceled", speech.ErrCanceled)
		}
		return nil, speech.NewSpeechError(speech.ErrorCodeRateLimited, "rate limited", err)
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, speech.NewSpeechError(speech.ErrorCodeEngineUnavailable,
			"engine paused after repeated failures", speech.ErrEngineNotAvailable)
	}
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}
