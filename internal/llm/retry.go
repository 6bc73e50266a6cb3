package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Retry retries failed calls up to maxAttempts with exponential backoff
// starting at baseDelay. Only ErrUnavailable is retried: an empty or
// malformed response from a reachable model is not transient. Stops
// immediately when the context is done.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Client) Client {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Client
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	var last error
	for i := 0; i < r.max; i++ {
		resp, err := r.next.GenerateJSON(ctx, prompt, input)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		last = err
		if i == r.max-1 {
			break
		}
		if err := r.backoff(ctx, i); err != nil {
			return nil, err
		}
	}
	return nil, last
}

func (r *retrying) Chat(ctx context.Context, system string, msgs []Message) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		resp, err := r.next.Chat(ctx, system, msgs)
		if err == nil {
			return resp, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return "", err
		}
		last = err
		if i == r.max-1 {
			break
		}
		if err := r.backoff(ctx, i); err != nil {
			return "", err
		}
	}
	return "", last
}

// backoff waits out the i-th delay, returning early when the context is
// done. No delay is paid after the final attempt.
func (r *retrying) backoff(ctx context.Context, i int) error {
	timer := time.NewTimer(r.base * time.Duration(1<<i))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return unavailable(ctx.Err())
	case <-timer.C:
		return nil
	}
}
