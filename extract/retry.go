package extract

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/vicentereig/structprompt/events"
)

// BackoffPolicy computes the delay between retries of the same strategy:
// exponential growth from BaseDelay with proportional jitter, capped at
// MaxDelay. Deterministic mode resolves every delay to zero so test suites
// stay fast and repeatable.
type BackoffPolicy struct {
	BaseDelay     float64 // initial delay in seconds
	MaxDelay      float64 // cap in seconds
	Deterministic bool
}

// DefaultBackoffPolicy returns the production backoff policy.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{BaseDelay: 0.5, MaxDelay: 10.0}
}

// Delay calculates the backoff before retry k (1-indexed):
// min(base*2^(k-1) + jitter, cap) with jitter in [0, 0.1*base*2^(k-1)].
func (p BackoffPolicy) Delay(retry int) time.Duration {
	if p.Deterministic {
		return 0
	}
	if retry < 1 {
		retry = 1
	}
	raw := p.BaseDelay * math.Pow(2, float64(retry-1))
	jitter := rand.Float64() * 0.1 * raw
	delay := math.Min(raw+jitter, p.MaxDelay)
	return time.Duration(delay * float64(time.Second))
}

// Per-strategy retry budgets (retries after the first attempt). Schema-
// validated output rarely benefits from a blind retry; permissive text
// parsing often does.
var defaultRetryLimits = map[string]int{
	StrategyOpenAIStructuredOutput: 1,
	StrategyGeminiStructuredOutput: 1,
	StrategyAnthropicExtraction:    2,
}

const defaultRetryLimit = 3

// Handler drives one logical "get me structured output" operation through
// an ordered chain of strategies. Each Handler invocation owns its own
// retry bookkeeping; nothing is shared between operations.
type Handler struct {
	selector *Selector
	policy   BackoffPolicy
	limits   map[string]int
	sink     events.Sink
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithBackoffPolicy overrides the backoff policy.
func WithBackoffPolicy(p BackoffPolicy) HandlerOption {
	return func(h *Handler) { h.policy = p }
}

// WithRetryLimit overrides the retry budget for one strategy name.
func WithRetryLimit(strategyName string, retries int) HandlerOption {
	return func(h *Handler) { h.limits[strategyName] = retries }
}

// WithHandlerSink sets the event sink for attempt/retry observability.
func WithHandlerSink(sink events.Sink) HandlerOption {
	return func(h *Handler) { h.sink = sink }
}

// NewHandler creates a Handler over the given selector.
func NewHandler(selector *Selector, opts ...HandlerOption) *Handler {
	h := &Handler{
		selector: selector,
		policy:   DefaultBackoffPolicy(),
		limits:   make(map[string]int, len(defaultRetryLimits)),
		sink:     events.NopSink{},
	}
	for k, v := range defaultRetryLimits {
		h.limits[k] = v
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) limitFor(name string) int {
	if limit, ok := h.limits[name]; ok {
		return limit
	}
	return defaultRetryLimit
}

// chain builds the fallback chain: the initial strategy first, then every
// other available strategy by priority descending. The caller's selected
// strategy always leads even when it is not top priority, and everything
// else still gets a turn before the operation gives up.
func (h *Handler) chain(initial Strategy) []Strategy {
	chain := []Strategy{initial}
	for _, strat := range h.selector.AvailableStrategies() {
		if strat.Name() == initial.Name() {
			continue
		}
		chain = append(chain, strat)
	}
	return chain
}

// WithRetry runs op through the fallback chain starting at initial. Each
// strategy gets a bounded number of same-strategy retries with backoff; a
// strategy that claims an error via HandleError is abandoned immediately
// without consuming its retry budget. The first success wins; full
// exhaustion returns AllStrategiesExhausted wrapping the last real error.
func WithRetry[T any](ctx context.Context, h *Handler, initial Strategy, op func(Strategy) (T, error)) (T, error) {
	var zero T
	var lastErr error
	attempt := 0 // cumulative across strategies, for log correlation only

	for _, strat := range h.chain(initial) {
		limit := h.limitFor(strat.Name())
		for k := 0; ; {
			attempt++
			h.sink.Emit("extraction.attempt", map[string]interface{}{
				"strategy": strat.Name(),
				"attempt":  attempt,
				"retry":    k,
			})

			result, err := op(strat)
			if err == nil {
				return result, nil
			}
			lastErr = err

			if strat.HandleError(err) {
				h.sink.Emit("extraction.strategy_skipped", map[string]interface{}{
					"strategy": strat.Name(),
					"error":    err.Error(),
				})
				break
			}

			if k >= limit {
				h.sink.Emit("extraction.strategy_exhausted", map[string]interface{}{
					"strategy": strat.Name(),
					"retries":  k,
					"error":    err.Error(),
				})
				break
			}

			k++
			delay := h.policy.Delay(k)
			h.sink.Emit("extraction.retry", map[string]interface{}{
				"strategy": strat.Name(),
				"retry":    k,
				"delay_ms": delay.Milliseconds(),
				"error":    err.Error(),
			})

			if delay > 0 {
				select {
				case <-ctx.Done():
					return zero, ctx.Err()
				case <-time.After(delay):
				}
			} else if err := ctx.Err(); err != nil {
				return zero, err
			}
		}
	}

	h.sink.Emit("extraction.failed", map[string]interface{}{
		"attempts": attempt,
	})
	return zero, &AllStrategiesExhausted{Attempts: attempt, LastErr: lastErr}
}
