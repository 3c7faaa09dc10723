// Package predict composes signatures, extraction strategies and providers
// into callable modules. Predict is the base module (one structured-output
// call), ChainOfThought prepends an explicit reasoning field, and ReAct runs
// a bounded think/act/observe loop over a tool registry.
package predict

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vicentereig/structprompt/coerce"
	"github.com/vicentereig/structprompt/events"
	"github.com/vicentereig/structprompt/extract"
	"github.com/vicentereig/structprompt/llm"
	"github.com/vicentereig/structprompt/schema"
)

// Predict executes a signature against a provider: render the inputs into a
// prompt, obtain JSON through the extraction fallback chain, validate and
// coerce the payload into typed output values.
type Predict struct {
	sig       *schema.Signature
	client    *llm.Client
	provider  string
	model     string
	temp      *float64
	maxTokens *int
	pref      extract.Preference
	factories []extract.Factory
	handler   []extract.HandlerOption
	sink      events.Sink
	validator *outputValidator
}

// Option configures a predict module.
type Option func(*Predict)

// WithModel sets the target model ID.
func WithModel(model string) Option {
	return func(p *Predict) { p.model = model }
}

// WithProvider sets the target provider, overriding catalog resolution.
func WithProvider(provider string) Option {
	return func(p *Predict) { p.provider = provider }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) Option {
	return func(p *Predict) { p.temp = &temp }
}

// WithMaxTokens caps the response length.
func WithMaxTokens(n int) Option {
	return func(p *Predict) { p.maxTokens = &n }
}

// WithPreference sets the extraction strategy preference.
func WithPreference(pref extract.Preference) Option {
	return func(p *Predict) { p.pref = pref }
}

// WithStrategies replaces the built-in extraction strategy set.
func WithStrategies(factories []extract.Factory) Option {
	return func(p *Predict) { p.factories = factories }
}

// WithRetryOptions passes options through to the retry handler, for backoff
// tuning and per-strategy retry limits.
func WithRetryOptions(opts ...extract.HandlerOption) Option {
	return func(p *Predict) { p.handler = append(p.handler, opts...) }
}

// WithSink sets the event sink for selection and retry observability.
func WithSink(sink events.Sink) Option {
	return func(p *Predict) { p.sink = sink }
}

// NewPredict creates a predict module for a signature. The output schema is
// compiled here, so a malformed signature fails at construction rather than
// on the first call.
func NewPredict(sig *schema.Signature, client *llm.Client, opts ...Option) (*Predict, error) {
	p := &Predict{
		sig:    sig,
		client: client,
		sink:   events.NopSink{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.model == "" {
		provider := p.provider
		if provider == "" {
			provider = "openai"
		}
		if info := llm.LatestModel(provider); info != nil {
			p.model = info.ID
		}
	}
	if p.provider == "" {
		if info := llm.GetModelInfo(p.model); info != nil {
			p.provider = info.Provider
		}
	}
	if p.model == "" || p.provider == "" {
		return nil, &llm.ConfigurationError{BaseError: llm.BaseError{
			Message: fmt.Sprintf("cannot resolve provider/model for signature %s", sig.Name),
		}}
	}

	validator, err := newOutputValidator(sig)
	if err != nil {
		return nil, err
	}
	p.validator = validator
	return p, nil
}

// Signature returns the module's signature.
func (p *Predict) Signature() *schema.Signature { return p.sig }

// Call runs one structured-output operation. Inputs are validated against
// the signature's input contract before any provider traffic.
func (p *Predict) Call(ctx context.Context, inputs map[string]interface{}) (*Prediction, error) {
	validated, err := p.validateInputs(inputs)
	if err != nil {
		return nil, err
	}

	base := p.buildRequest(validated)

	selectorOpts := []extract.SelectorOption{
		extract.WithPreference(p.pref),
		extract.WithSelectorSink(p.sink),
	}
	if p.factories != nil {
		selectorOpts = append(selectorOpts, extract.WithFactories(p.factories))
	}
	selector := extract.NewSelector(p.provider, p.model, p.sig, selectorOpts...)

	initial := selector.Select()
	if initial == nil {
		return nil, &llm.ConfigurationError{BaseError: llm.BaseError{
			Message: fmt.Sprintf("no extraction strategy available for %s/%s", p.provider, p.model),
		}}
	}

	handlerOpts := append([]extract.HandlerOption{extract.WithHandlerSink(p.sink)}, p.handler...)
	handler := extract.NewHandler(selector, handlerOpts...)

	pred := newPrediction()
	var usage llm.Usage
	attempts := 0

	op := func(strat extract.Strategy) (map[string]interface{}, error) {
		attempts++
		req := base.Clone()
		strat.PrepareRequest(&req)

		resp, err := p.client.Chat(ctx, req)
		if err != nil {
			return nil, err
		}
		usage = usage.Add(resp.Usage)

		raw, ok := strat.ExtractJSON(resp)
		if !ok {
			return nil, &extract.ExtractionError{
				Strategy: strat.Name(),
				Message:  "no JSON payload in response",
			}
		}

		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return nil, &InvalidPredictionError{
				Stage:    StageParse,
				Strategy: strat.Name(),
				Attempt:  attempts,
				Cause:    err,
			}
		}

		values, err := p.validator.assemble(obj)
		if err != nil {
			var ipe *InvalidPredictionError
			if errors.As(err, &ipe) {
				ipe.Strategy = strat.Name()
				ipe.Attempt = attempts
			}
			return nil, err
		}

		pred.Strategy = strat.Name()
		return values, nil
	}

	values, err := extract.WithRetry(ctx, handler, initial, op)
	if err != nil {
		return nil, err
	}

	pred.Values = values
	pred.Usage = usage
	pred.Attempts = attempts
	pred.Metadata["provider"] = p.provider
	pred.Metadata["model"] = p.model
	return pred, nil
}

// validateInputs coerces caller-supplied inputs against the input contract.
// Defaults are applied and undeclared keys dropped, exactly as for outputs.
func (p *Predict) validateInputs(inputs map[string]interface{}) (map[string]interface{}, error) {
	if inputs == nil {
		inputs = map[string]interface{}{}
	}
	coerced, err := coerce.Coerce(inputs, p.sig.InputStruct())
	if err != nil {
		var tce *coerce.TypeCoercionError
		field := ""
		if errors.As(err, &tce) {
			field = tce.Field
		}
		return nil, &InvalidPredictionError{Field: field, Stage: StageInput, Cause: err}
	}
	sv, ok := coerced.(*coerce.StructValue)
	if !ok {
		return nil, &InvalidPredictionError{Stage: StageInput, Cause: fmt.Errorf("inputs are not an object")}
	}
	return sv.Fields, nil
}

// buildRequest renders the task and its inputs as the base conversation.
// Output formatting is deliberately absent here: each strategy injects its
// own constraint (schema, forced tool, or instructions) on its clone.
func (p *Predict) buildRequest(inputs map[string]interface{}) llm.Request {
	var sys strings.Builder
	sys.WriteString("You are completing the task: " + p.sig.Name + ".")
	if p.sig.Description != "" {
		sys.WriteString("\n" + p.sig.Description)
	}

	var user strings.Builder
	for _, f := range p.sig.Inputs {
		v, ok := inputs[f.Name]
		if !ok {
			continue
		}
		user.WriteString(f.Name + ": " + renderValue(v) + "\n")
	}

	return llm.Request{
		Model:       p.model,
		Provider:    p.provider,
		Temperature: p.temp,
		MaxTokens:   p.maxTokens,
		Messages: []llm.Message{
			llm.SystemMessage(sys.String()),
			llm.UserMessage(user.String()),
		},
	}
}

// renderValue serializes an input value for prompt text. Strings pass
// through verbatim; everything else is JSON.
func renderValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(doc)
}
