package predict

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vicentereig/structprompt/coerce"
	"github.com/vicentereig/structprompt/llm"
	"github.com/vicentereig/structprompt/schema"
)

const defaultMaxIterations = 8

// MaxIterationsError reports that the reasoning loop hit its iteration cap
// without the model choosing to finish.
type MaxIterationsError struct {
	Iterations int
}

func (e *MaxIterationsError) Error() string {
	return fmt.Sprintf("reasoning loop did not finish within %d iterations", e.Iterations)
}

// ReAct runs a bounded think/act/observe loop: each step the model either
// calls a registered tool (the result is appended to the trajectory) or
// finishes with the declared outputs. Step decisions use a union output
// discriminated by the preceding action field.
type ReAct struct {
	step     *Predict
	declared *schema.Signature
	tools    *ToolRegistry
	maxIters int
	finish   *schema.TypeDescriptor
}

// ReActOption configures a ReAct module beyond the shared predict options.
type ReActOption func(*ReAct)

// WithMaxIterations caps the reasoning loop length.
func WithMaxIterations(n int) ReActOption {
	return func(r *ReAct) { r.maxIters = n }
}

// NewReAct creates a reasoning loop for a signature over a tool registry.
func NewReAct(sig *schema.Signature, client *llm.Client, tools *ToolRegistry, opts []Option, reactOpts ...ReActOption) (*ReAct, error) {
	r := &ReAct{
		declared: sig,
		tools:    tools,
		maxIters: defaultMaxIterations,
	}
	for _, opt := range reactOpts {
		opt(r)
	}

	stepSig, finish := stepSignature(sig, tools)
	r.finish = finish

	step, err := NewPredict(stepSig, client, opts...)
	if err != nil {
		return nil, err
	}
	r.step = step
	return r, nil
}

// Signature returns the caller's declared signature.
func (r *ReAct) Signature() *schema.Signature { return r.declared }

// stepSignature derives the per-step contract: the declared inputs plus the
// running trajectory, and a union-typed action whose variants are "call a
// tool" and "finish with the declared outputs". The next_action field
// immediately precedes the union so it acts as its discriminator.
func stepSignature(sig *schema.Signature, tools *ToolRegistry) (*schema.Signature, *schema.TypeDescriptor) {
	callTool := schema.StructOf("CallTool",
		schema.Field{Name: "tool_name", Type: schema.StringType(), Required: true,
			Description: "Name of the tool to invoke."},
		schema.Field{Name: "arguments", Type: schema.MapOf(schema.AnyType()),
			Description: "Arguments for the tool, matching its parameter schema."},
	)
	finish := schema.StructOf("Finish", sig.Outputs...)

	step := schema.NewSignature(sig.Name+"Step", stepDescription(sig, tools))
	step.Inputs = append([]schema.Field(nil), sig.Inputs...)
	step.WithInput(schema.Field{Name: "trajectory", Type: schema.StringType(),
		Description: "Previous thoughts, tool calls and observations."})

	step.WithOutput(schema.Field{Name: "thought", Type: schema.StringType(), Required: true,
		Description: "Reasoning about the current state and what to do next."})
	step.WithOutput(schema.Field{Name: "next_action", Type: schema.EnumOf("call_tool", "finish"), Required: true,
		Description: "Whether to call a tool or finish with the final answer."})
	step.WithOutput(schema.Field{Name: "action_details", Type: schema.UnionOf(callTool, finish), Required: true,
		Description: "CallTool when next_action is call_tool, Finish when next_action is finish."})

	return step, finish
}

func stepDescription(sig *schema.Signature, tools *ToolRegistry) string {
	var b strings.Builder
	if sig.Description != "" {
		b.WriteString(sig.Description + "\n")
	}
	b.WriteString("Work step by step. You may call the following tools:\n")
	for _, name := range tools.Names() {
		tool := tools.Get(name)
		b.WriteString("- " + tool.Name)
		if tool.Description != "" {
			b.WriteString(": " + tool.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("When you have enough information, finish with the final answer.")
	return b.String()
}

// Call runs the loop until the model finishes or the iteration cap trips.
func (r *ReAct) Call(ctx context.Context, inputs map[string]interface{}) (*Prediction, error) {
	var trajectory strings.Builder
	var usage llm.Usage
	attempts := 0

	for iter := 0; iter < r.maxIters; iter++ {
		stepInputs := make(map[string]interface{}, len(inputs)+1)
		for k, v := range inputs {
			stepInputs[k] = v
		}
		stepInputs["trajectory"] = trajectory.String()

		stepPred, err := r.step.Call(ctx, stepInputs)
		if err != nil {
			return nil, err
		}
		usage = usage.Add(stepPred.Usage)
		attempts += stepPred.Attempts

		thought, _ := stepPred.GetString("thought")
		action, _ := stepPred.GetString("next_action")
		details, _ := stepPred.Get("action_details")

		trajectory.WriteString("Thought: " + thought + "\n")

		if action == "finish" {
			pred := newPrediction()
			pred.Values = finishValues(details, r.finish)
			pred.Usage = usage
			pred.Strategy = stepPred.Strategy
			pred.Attempts = attempts
			pred.Metadata["iterations"] = iter + 1
			pred.Metadata["trajectory"] = trajectory.String()
			return pred, nil
		}

		observation := r.executeTool(ctx, details, &trajectory)
		trajectory.WriteString("Observation: " + observation + "\n")
	}

	return nil, &MaxIterationsError{Iterations: r.maxIters}
}

// finishValues extracts the declared outputs from the Finish variant. A
// degraded union (raw map) is salvaged by a direct coercion pass.
func finishValues(details interface{}, finish *schema.TypeDescriptor) map[string]interface{} {
	switch v := details.(type) {
	case *coerce.StructValue:
		return v.Fields
	case map[string]interface{}:
		if coerced, err := coerce.Coerce(v, finish); err == nil {
			if sv, ok := coerced.(*coerce.StructValue); ok {
				return sv.Fields
			}
		}
		return v
	default:
		return map[string]interface{}{}
	}
}

// executeTool resolves and runs the requested tool, recording the call in
// the trajectory. Failures become observations, not errors: the model sees
// what went wrong and can recover on the next step.
func (r *ReAct) executeTool(ctx context.Context, details interface{}, trajectory *strings.Builder) string {
	sv, ok := details.(*coerce.StructValue)
	if !ok {
		return "could not interpret the requested action; choose call_tool or finish"
	}

	name, _ := sv.Get("tool_name")
	toolName, _ := name.(string)
	tool := r.tools.Get(toolName)
	if tool == nil {
		return fmt.Sprintf("unknown tool %q; available tools: %s", toolName, strings.Join(r.tools.Names(), ", "))
	}

	args := map[string]interface{}{}
	if raw, ok := sv.Get("arguments"); ok {
		if m, ok := raw.(map[string]interface{}); ok {
			args = m
		}
	}

	trajectory.WriteString("Action: " + toolName + "(" + renderArgs(args) + ")\n")

	result, err := tool.Fn(ctx, args)
	if err != nil {
		return "tool error: " + err.Error()
	}
	return result
}

func renderArgs(args map[string]interface{}) string {
	if len(args) == 0 {
		return ""
	}
	doc, err := json.Marshal(args)
	if err != nil {
		return ""
	}
	return string(doc)
}
