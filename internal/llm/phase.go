package llm

import "context"

type ctxKeyPhase struct{}

// WithPhase tags the context with the flow phase issuing the call. The
// phase shows up in logs and drives the fake client's canned responses.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
