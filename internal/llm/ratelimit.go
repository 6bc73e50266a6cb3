package llm

import (
	"context"
	"encoding/json"
	"time"
)

// RateLimit throttles calls to at most rps requests per second with a
// burst capacity. rps <= 0 disables the limiter.
func RateLimit(rps float64, burst int) Middleware {
	l := newRPSLimiter(rps, burst)
	return func(next Client) Client {
		return &limited{next: next, rl: l}
	}
}

type limited struct {
	next Client
	rl   *rpsLimiter
}

func (l *limited) Name() string { return l.next.Name() }
func (l *limited) Close() error {
	l.rl.Stop()
	return l.next.Close()
}

func (l *limited) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if err := l.rl.Acquire(ctx); err != nil {
		return nil, unavailable(err)
	}
	return l.next.GenerateJSON(ctx, prompt, input)
}

func (l *limited) Chat(ctx context.Context, system string, msgs []Message) (string, error) {
	if err := l.rl.Acquire(ctx); err != nil {
		return "", unavailable(err)
	}
	return l.next.Chat(ctx, system, msgs)
}

// rpsLimiter is a lightweight token-bucket limiter.
type rpsLimiter struct {
	tokens chan struct{}
	stopCh chan struct{}
}

// newRPSLimiter returns nil when rps <= 0; a nil limiter is a no-op.
func newRPSLimiter(rps float64, burst int) *rpsLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}

	l := &rpsLimiter{
		tokens: make(chan struct{}, burst),
		stopCh: make(chan struct{}),
	}

	// Pre-fill the bucket to allow an initial burst.
	for i := 0; i < burst; i++ {
		l.tokens <- struct{}{}
	}

	period := time.Duration(float64(time.Second) / rps)
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case l.tokens <- struct{}{}:
				default:
					// bucket full; drop token
				}
			case <-l.stopCh:
				return
			}
		}
	}()

	return l
}

// Acquire blocks until a token is available or the context is canceled.
func (l *rpsLimiter) Acquire(ctx context.Context) error {
	if l == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopCh:
		return context.Canceled
	case <-l.tokens:
		return nil
	}
}

// Stop terminates the refill goroutine.
func (l *rpsLimiter) Stop() {
	if l == nil {
		return
	}
	close(l.stopCh)
}
