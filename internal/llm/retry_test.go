package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type flakyClient struct {
	failures int
	calls    int
	err      error
}

func (f *flakyClient) Name() string { return "flaky" }
func (f *flakyClient) Close() error { return nil }

func (f *flakyClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return json.RawMessage(`{"ok":true}`), nil
}

func (f *flakyClient) Chat(ctx context.Context, system string, msgs []Message) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "ok", nil
}

func TestRetry_RetriesUnavailable(t *testing.T) {
	base := &flakyClient{failures: 1, err: ErrUnavailable}
	client := Wrap(base, Retry(3, time.Millisecond))

	raw, err := client.GenerateJSON(context.Background(), "p", nil)
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Fatalf("unexpected payload %s", raw)
	}
	if base.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", base.calls)
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	base := &flakyClient{failures: 10, err: ErrUnavailable}
	client := Wrap(base, Retry(3, time.Millisecond))

	_, err := client.GenerateJSON(context.Background(), "p", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if base.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", base.calls)
	}
}

func TestRetry_DoesNotRetryOtherErrors(t *testing.T) {
	base := &flakyClient{failures: 10, err: errors.New("bad input")}
	client := Wrap(base, Retry(3, time.Millisecond))

	_, err := client.GenerateJSON(context.Background(), "p", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if base.calls != 1 {
		t.Fatalf("expected a single call, got %d", base.calls)
	}
}

func TestRetry_StopsOnCancelledContext(t *testing.T) {
	base := &flakyClient{failures: 10, err: ErrUnavailable}
	client := Wrap(base, Retry(5, 50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.GenerateJSON(ctx, "p", nil)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if base.calls > 1 {
		t.Fatalf("expected at most 1 call, got %d", base.calls)
	}
}

func TestRetry_NoBackoffAfterFinalAttempt(t *testing.T) {
	base := &flakyClient{failures: 10, err: ErrUnavailable}
	client := Wrap(base, Retry(2, 200*time.Millisecond))

	start := time.Now()
	_, err := client.GenerateJSON(context.Background(), "p", nil)
	elapsed := time.Since(start)

	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	// One backoff between the two attempts, none after the last.
	if elapsed >= 400*time.Millisecond {
		t.Fatalf("final attempt paid a backoff: elapsed %v", elapsed)
	}
}

func TestRetry_CancellationCutsBackoffShort(t *testing.T) {
	base := &flakyClient{failures: 10, err: ErrUnavailable}
	client := Wrap(base, Retry(3, time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.GenerateJSON(ctx, "p", nil)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("expected ErrUnavailable, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("retry did not observe cancellation during backoff")
	}
	if base.calls != 1 {
		t.Fatalf("expected 1 call, got %d", base.calls)
	}
}

func TestPhase_RoundTrip(t *testing.T) {
	ctx := WithPhase(context.Background(), "categorize_risk")
	if got := PhaseFrom(ctx); got != "categorize_risk" {
		t.Fatalf("unexpected phase %q", got)
	}
	if got := PhaseFrom(context.Background()); got != "unknown" {
		t.Fatalf("expected unknown default, got %q", got)
	}
}
