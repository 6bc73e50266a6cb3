// Package llm is the sole boundary to the generative model. Clients
// implement two invocation modes: single-shot structured output
// (GenerateJSON) and conversational free text (Chat). Clients never retry
// internally; retry and rate limiting are middleware applied by the
// caller.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrUnavailable marks transport-level failures: the service could not be
// reached, timed out, or refused the request.
var ErrUnavailable = errors.New("llm: model unavailable")

// ErrEmptyResponse marks a reachable model that returned no usable
// content.
var ErrEmptyResponse = errors.New("llm: empty response from model")

// Message is one turn of a conversational invocation.
type Message struct {
	Role    string
	Content string
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Client is the model invocation adapter.
type Client interface {
	Name() string
	// GenerateJSON sends a compiled prompt plus the input object and
	// returns the model's JSON payload.
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	// Chat sends a system prompt and rolling history and returns free
	// text.
	Chat(ctx context.Context, system string, msgs []Message) (string, error)
	Close() error
}

// Middleware wraps a Client with a cross-cutting concern.
type Middleware func(Client) Client

// Wrap applies middlewares left to right: the first listed is outermost.
func Wrap(base Client, mws ...Middleware) Client {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// unavailable tags transport errors with ErrUnavailable so callers can
// branch on the taxonomy without inspecting provider error types. Context
// cancellation and deadline expiry count as unavailability.
func unavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrEmptyResponse) {
		return err
	}
	return errors.Join(ErrUnavailable, err)
}
