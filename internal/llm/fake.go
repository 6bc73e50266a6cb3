package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeClient returns deterministic payloads per phase for offline runs and
// tests. Zero-value fields fall back to minimal valid JSON.
type FakeClient struct {
	// JSONByPhase maps a phase (see WithPhase) to the canned payload.
	JSONByPhase map[string]json.RawMessage
	// JSONErr, when set, is returned by every GenerateJSON call.
	JSONErr error
	// ChatText is the canned Chat reply.
	ChatText string
	// ChatErr, when set, is returned by every Chat call.
	ChatErr error

	mu        sync.Mutex
	jsonCalls int
	chatCalls int
}

func NewFakeClient() *FakeClient {
	return &FakeClient{JSONByPhase: map[string]json.RawMessage{}}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.mu.Lock()
	f.jsonCalls++
	f.mu.Unlock()
	if f.JSONErr != nil {
		return nil, f.JSONErr
	}
	if raw, ok := f.JSONByPhase[PhaseFrom(ctx)]; ok {
		return raw, nil
	}
	return json.RawMessage(`{}`), nil
}

func (f *FakeClient) Chat(ctx context.Context, system string, msgs []Message) (string, error) {
	f.mu.Lock()
	f.chatCalls++
	f.mu.Unlock()
	if f.ChatErr != nil {
		return "", f.ChatErr
	}
	if f.ChatText != "" {
		return f.ChatText, nil
	}
	return "I'm a placeholder assistant. Configure a real model provider for live answers.", nil
}

// JSONCalls reports how many GenerateJSON calls were made.
func (f *FakeClient) JSONCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jsonCalls
}

// ChatCalls reports how many Chat calls were made.
func (f *FakeClient) ChatCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.chatCalls
}
