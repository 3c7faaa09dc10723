package extract

import (
	"errors"

	"github.com/vicentereig/structprompt/llm"
	"github.com/vicentereig/structprompt/schema"
)

// Stable strategy names. These are part of the observable surface: logs,
// preference matching and retry-limit overrides key on them.
const (
	StrategyOpenAIStructuredOutput = "openai_structured_output"
	StrategyGeminiStructuredOutput = "gemini_structured_output"
	StrategyAnthropicToolUse       = "anthropic_tool_use"
	StrategyAnthropicExtraction    = "anthropic_extraction"
	StrategyEnhancedPrompting      = "enhanced_prompting"
)

// OpenAIStructuredOutput asks OpenAI to validate the response against a JSON
// Schema server-side. The highest capability tier: when it works the payload
// is schema-conformant by construction.
type OpenAIStructuredOutput struct {
	binding
}

func (s *OpenAIStructuredOutput) Name() string  { return StrategyOpenAIStructuredOutput }
func (s *OpenAIStructuredOutput) Priority() int { return 100 }

func (s *OpenAIStructuredOutput) Available() bool {
	return s.provider == "openai" && llm.SupportsStructuredOutput(s.model)
}

func (s *OpenAIStructuredOutput) PrepareRequest(req *llm.Request) {
	req.ResponseFormat = &llm.ResponseFormat{
		Type:       "json_schema",
		JSONSchema: s.sig.OutputJSONSchema(),
		Strict:     true,
	}
}

func (s *OpenAIStructuredOutput) ExtractJSON(resp *llm.Response) (string, bool) {
	content := stripCodeFences(resp.Content)
	if looksLikeJSON(content) {
		return content, true
	}
	return "", false
}

// HandleError advances to the next strategy when the provider rejects the
// schema itself; re-sending an invalid request cannot succeed.
func (s *OpenAIStructuredOutput) HandleError(err error) bool {
	var invalid *llm.InvalidRequestError
	return errors.As(err, &invalid)
}

// GeminiStructuredOutput uses Gemini's native JSON response schema, carried
// through provider options.
type GeminiStructuredOutput struct {
	binding
}

func (s *GeminiStructuredOutput) Name() string  { return StrategyGeminiStructuredOutput }
func (s *GeminiStructuredOutput) Priority() int { return 90 }

func (s *GeminiStructuredOutput) Available() bool {
	return s.provider == "gemini" && llm.SupportsStructuredOutput(s.model)
}

func (s *GeminiStructuredOutput) PrepareRequest(req *llm.Request) {
	if req.ProviderOptions == nil {
		req.ProviderOptions = make(map[string]interface{}, 2)
	}
	req.ProviderOptions["response_mime_type"] = "application/json"
	req.ProviderOptions["response_schema"] = schema.JSONSchema(s.sig.OutputStruct())
}

func (s *GeminiStructuredOutput) ExtractJSON(resp *llm.Response) (string, bool) {
	content := stripCodeFences(resp.Content)
	if looksLikeJSON(content) {
		return content, true
	}
	return "", false
}

func (s *GeminiStructuredOutput) HandleError(err error) bool {
	var invalid *llm.InvalidRequestError
	return errors.As(err, &invalid)
}
