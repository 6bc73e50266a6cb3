package triage

import (
	"context"
	"errors"
	"fmt"

	"medimind/internal/prompt"
	"medimind/internal/schema"
)

// ErrTurnFailed marks a Q&A turn that could not be completed. The turn is
// retryable: the caller's history is untouched and isFinal was never
// advanced.
var ErrTurnFailed = errors.New("triage: q&a turn failed")

// qnaFinalThreshold is the history length beyond which the machine stops
// asking and diagnoses: more than three question/answer round-trips.
const qnaFinalThreshold = 6

// NextTurn advances the progressive-diagnosis conversation by one turn.
// The machine holds no state of its own; it is a pure function of the
// history the caller supplies, which must already include the latest user
// answer. With more than qnaFinalThreshold persisted turns it enters the
// terminal Diagnosing state and the reply carries the final ranked
// diagnosis (summary in the question field, isFinal true); otherwise it
// asks the next clarifying question.
func (s *Service) NextTurn(ctx context.Context, history []schema.ConversationTurn) (schema.QnaReply, error) {
	history = schema.SanitizeHistory(history)
	final := len(history) > qnaFinalThreshold

	var (
		phase string
		p     string
		err   error
	)
	if final {
		phase = "qna_diagnosis"
		p, err = prompt.QnaDiagnosis(history)
	} else {
		phase = "qna_question"
		p, err = prompt.QnaQuestion(history)
	}
	if err != nil {
		return schema.QnaReply{}, err
	}

	raw, err := s.generate(ctx, phase, p, schema.QnaInput{History: history}, s.opts.SimpleTimeout, false)
	if err != nil {
		s.degraded(phase, err)
		return schema.QnaReply{}, fmt.Errorf("%w: the assistant is temporarily unavailable; your answers are preserved, please retry", ErrTurnFailed)
	}
	reply, err := schema.ParseQnaReply(raw)
	if err != nil {
		s.degraded(phase, err)
		return schema.QnaReply{}, fmt.Errorf("%w: the assistant returned an unusable answer; your answers are preserved, please retry", ErrTurnFailed)
	}

	// The transition rule is deterministic; the model's own flag is not
	// trusted either way.
	reply.IsFinal = final
	return reply, nil
}
