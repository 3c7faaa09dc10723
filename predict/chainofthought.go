package predict

import (
	"context"

	"github.com/vicentereig/structprompt/llm"
	"github.com/vicentereig/structprompt/schema"
)

// reasoningField is the output field ChainOfThought injects ahead of the
// declared outputs, forcing the model to reason before it answers.
var reasoningField = schema.Field{
	Name:        "reasoning",
	Type:        schema.StringType(),
	Required:    true,
	Description: "Step-by-step reasoning that leads to the answer. Think through the problem before filling in the remaining fields.",
}

// ChainOfThought wraps Predict with an augmented signature whose first
// output is a required reasoning field. The declared outputs are untouched;
// callers read the reasoning from the prediction like any other value.
type ChainOfThought struct {
	inner    *Predict
	declared *schema.Signature
}

// NewChainOfThought creates a chain-of-thought module for a signature.
func NewChainOfThought(sig *schema.Signature, client *llm.Client, opts ...Option) (*ChainOfThought, error) {
	augmented := sig.Clone()
	augmented.Outputs = append([]schema.Field{reasoningField}, augmented.Outputs...)

	inner, err := NewPredict(augmented, client, opts...)
	if err != nil {
		return nil, err
	}
	return &ChainOfThought{inner: inner, declared: sig}, nil
}

// Signature returns the caller's declared signature, without the injected
// reasoning field.
func (c *ChainOfThought) Signature() *schema.Signature { return c.declared }

// Call runs the prediction. The returned values include "reasoning" alongside
// the declared outputs.
func (c *ChainOfThought) Call(ctx context.Context, inputs map[string]interface{}) (*Prediction, error) {
	return c.inner.Call(ctx, inputs)
}
