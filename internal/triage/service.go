// Package triage implements the diagnostic flows: independent
// request/response operations over the model adapter, the progressive Q&A
// state machine, and the chat assistant. Flows are stateless; concurrent
// calls share nothing but the adapter and the response cache.
package triage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"medimind/internal/llm"
)

var flowDegradedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "triage_flow_degraded_total",
		Help: "Total number of flow invocations that fell back to a degraded result",
	},
	[]string{"phase"},
)

// Options tunes per-flow timeouts and the adapter-call retry policy.
type Options struct {
	// SimpleTimeout bounds text-only flows.
	SimpleTimeout time.Duration
	// DetailedTimeout bounds the detailed flow, which may parse a report.
	DetailedTimeout time.Duration
	// ChatTimeout bounds conversational calls.
	ChatTimeout time.Duration
	// RetryAttempts is the total number of adapter attempts per call.
	RetryAttempts int
	// RetryBackoff is the initial backoff between attempts.
	RetryBackoff time.Duration
	// CacheSize caps the idempotent-response cache. 0 uses the default.
	CacheSize int
}

func (o *Options) fill() {
	if o.SimpleTimeout <= 0 {
		o.SimpleTimeout = 30 * time.Second
	}
	if o.DetailedTimeout <= 0 {
		o.DetailedTimeout = 90 * time.Second
	}
	if o.ChatTimeout <= 0 {
		o.ChatTimeout = 30 * time.Second
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 2
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 300 * time.Millisecond
	}
	if o.CacheSize <= 0 {
		o.CacheSize = 256
	}
}

// Service hosts the flows. All state is immutable after construction
// except the LRU cache, which is safe for concurrent use.
type Service struct {
	llm   llm.Client
	log   *zap.Logger
	opts  Options
	cache *lru.Cache[string, json.RawMessage]
}

func New(client llm.Client, log *zap.Logger, opts Options) (*Service, error) {
	if client == nil {
		return nil, errors.New("triage: llm client is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	opts.fill()
	cache, err := lru.New[string, json.RawMessage](opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		llm:   llm.Wrap(client, llm.Retry(opts.RetryAttempts, opts.RetryBackoff)),
		log:   log,
		opts:  opts,
		cache: cache,
	}, nil
}

// generate runs one bounded, phase-tagged structured call. Cacheable
// phases are answered from the LRU when an identical request was already
// served, so concurrent duplicates don't double-spend model quota.
func (s *Service) generate(ctx context.Context, phase, prompt string, input any, timeout time.Duration, cacheable bool) (json.RawMessage, error) {
	var key string
	if cacheable {
		key = cacheKey(phase, input)
		if raw, ok := s.cache.Get(key); ok {
			return raw, nil
		}
	}

	ctx, cancel := context.WithTimeout(llm.WithPhase(ctx, phase), timeout)
	defer cancel()

	raw, err := s.llm.GenerateJSON(ctx, prompt, input)
	if err != nil {
		return nil, err
	}
	if cacheable {
		s.cache.Add(key, raw)
	}
	return raw, nil
}

func cacheKey(phase string, input any) string {
	b, _ := json.Marshal(input)
	sum := sha256.Sum256(append([]byte(phase+"\n"), b...))
	return hex.EncodeToString(sum[:])
}

// degraded logs the real failure and reports that the flow fell back.
// Internal error detail stays in the log, never in the response.
func (s *Service) degraded(phase string, err error) {
	flowDegradedTotal.WithLabelValues(phase).Inc()
	s.log.Warn("flow degraded",
		zap.String("phase", phase),
		zap.Error(err),
	)
}
