package triage

import (
	"context"
	"strings"

	"medimind/internal/llm"
	"medimind/internal/prompt"
	"medimind/internal/schema"
)

// Casual-input policy: a query of at most four words made up entirely of
// greeting/small-talk tokens gets a canned friendly reply with no
// diagnostic content and no disclaimer. Anything else is treated as
// medical. Deliberately conservative so health guidance never skips the
// disclaimer.
var casualTokens = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "yo": {}, "thanks": {}, "thank": {},
	"you": {}, "ok": {}, "okay": {}, "bye": {}, "goodbye": {}, "morning": {},
	"good": {}, "evening": {}, "afternoon": {}, "howdy": {},
}

const casualReply = "Hello! I'm MediMind, your health assistant. Tell me about any symptoms or health questions you have and I'll do my best to help."

// Ask answers a free-text query over an optional rolling history. Replies
// that carry health guidance always end with the fixed disclaimer. When
// the model is unreachable the deterministic offline table answers, so
// the assistant degrades gracefully instead of failing closed.
func (s *Service) Ask(ctx context.Context, in schema.ChatInput) (string, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return "", &schema.InputError{Field: "query", Message: "is required"}
	}

	if isCasual(query) {
		return casualReply, nil
	}

	msgs := make([]llm.Message, 0, len(in.History)+1)
	for _, t := range schema.SanitizeHistory(in.History) {
		msgs = append(msgs, llm.Message{Role: string(t.Role), Content: t.Text})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: query})

	ctx, cancel := context.WithTimeout(llm.WithPhase(ctx, "chat"), s.opts.ChatTimeout)
	defer cancel()

	reply, err := s.llm.Chat(ctx, prompt.ChatSystem(), msgs)
	if err != nil {
		s.degraded("chat", err)
		return OfflineAnswer(query), nil
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return OfflineAnswer(query), nil
	}
	if !strings.Contains(reply, schema.ChatDisclaimer) {
		reply = reply + "\n\n" + schema.ChatDisclaimer
	}
	return reply, nil
}

func isCasual(query string) bool {
	words := strings.Fields(strings.ToLower(strings.TrimRight(query, "!.?,")))
	if len(words) == 0 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		w = strings.Trim(w, "!.?,")
		if _, ok := casualTokens[w]; !ok {
			return false
		}
	}
	return true
}
