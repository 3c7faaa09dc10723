package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vicentereig/structprompt/llm"
	"github.com/vicentereig/structprompt/schema"
)

// outputToolName is the synthetic tool the forced-tool-call strategy
// registers; the payload arrives as its arguments.
const outputToolName = "emit_structured_output"

// AnthropicToolUse forces the model into a single synthetic tool call whose
// arguments are the structured payload. Claude validates tool arguments far
// more reliably than it follows free-text formatting instructions.
type AnthropicToolUse struct {
	binding
}

func (s *AnthropicToolUse) Name() string  { return StrategyAnthropicToolUse }
func (s *AnthropicToolUse) Priority() int { return 80 }

func (s *AnthropicToolUse) Available() bool {
	return s.provider == "anthropic" && llm.SupportsToolUse(s.model)
}

func (s *AnthropicToolUse) PrepareRequest(req *llm.Request) {
	req.ToolDefs = append(req.ToolDefs, llm.ToolDefinition{
		Name:        outputToolName,
		Description: "Report the final structured output for this task.",
		Parameters:  s.sig.OutputJSONSchema(),
	})
	req.ToolChoice = &llm.ToolChoice{Mode: "named", ToolName: outputToolName}
}

func (s *AnthropicToolUse) ExtractJSON(resp *llm.Response) (string, bool) {
	if call, ok := resp.ToolCallNamed(outputToolName); ok && len(call.Arguments) > 0 {
		return string(call.Arguments), true
	}
	// The model sometimes answers in text despite the forced tool choice.
	content := stripCodeFences(resp.Content)
	if looksLikeJSON(content) {
		return content, true
	}
	return "", false
}

// HandleError advances past this strategy when the provider rejects the
// forced tool call or filters the content; neither improves on retry.
func (s *AnthropicToolUse) HandleError(err error) bool {
	var invalid *llm.InvalidRequestError
	var filtered *llm.ContentFilterError
	return errors.As(err, &invalid) || errors.As(err, &filtered)
}

// AnthropicExtraction is free-text extraction tuned to Claude's formatting
// conventions: the payload is requested inside a ```json fence and parsed
// back out of one.
type AnthropicExtraction struct {
	binding
}

func (s *AnthropicExtraction) Name() string  { return StrategyAnthropicExtraction }
func (s *AnthropicExtraction) Priority() int { return 50 }

func (s *AnthropicExtraction) Available() bool {
	return s.provider == "anthropic"
}

func (s *AnthropicExtraction) PrepareRequest(req *llm.Request) {
	var b strings.Builder
	b.WriteString("Respond with a JSON object inside a ```json code fence.\n")
	b.WriteString("The object must contain exactly these fields:\n")
	writeFieldList(&b, s.sig.Outputs)
	b.WriteString("\nDo not include any text outside the code fence.")
	req.Messages = append(req.Messages, llm.SystemMessage(b.String()))
}

func (s *AnthropicExtraction) ExtractJSON(resp *llm.Response) (string, bool) {
	content := resp.Content
	if idx := strings.Index(content, "```"); idx != -1 {
		content = stripCodeFences(content[idx:])
	}
	if looksLikeJSON(content) {
		return content, true
	}
	if v, ok := firstJSONValue(resp.Content); ok {
		return v, true
	}
	return "", false
}

func (s *AnthropicExtraction) HandleError(err error) bool {
	var filtered *llm.ContentFilterError
	return errors.As(err, &filtered)
}

// writeFieldList renders output fields as formatting instructions, one per
// line with type hints and enum token sets.
func writeFieldList(b *strings.Builder, fields []schema.Field) {
	for _, f := range fields {
		b.WriteString(fmt.Sprintf("- %s (%s)", f.Name, describeType(f.Type)))
		if !f.Required {
			b.WriteString(" (optional)")
		}
		if f.Description != "" {
			b.WriteString(": " + f.Description)
		}
		b.WriteString("\n")
	}
}

func describeType(d *schema.TypeDescriptor) string {
	switch d.Kind {
	case schema.KindArray:
		return "array of " + describeType(d.Elem)
	case schema.KindMap:
		return "object mapping strings to " + describeType(d.Elem)
	case schema.KindEnum:
		return "one of: " + strings.Join(d.Values, ", ")
	case schema.KindStruct:
		if d.Name != "" {
			return "object " + d.Name
		}
		return "object"
	case schema.KindUnion:
		names := make([]string, len(d.Variants))
		for i, v := range d.Variants {
			names[i] = v.Name
		}
		return "one of the objects: " + strings.Join(names, " | ")
	case schema.KindNilable:
		return describeType(d.Elem) + " or null"
	default:
		return string(d.Kind)
	}
}
