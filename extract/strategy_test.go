package extract

import (
	"strings"
	"testing"

	"github.com/vicentereig/structprompt/llm"
	"github.com/vicentereig/structprompt/schema"
)

func testSignature() *schema.Signature {
	return schema.NewSignature("Summarize", "Summarize the input text.").
		WithInput(schema.Field{Name: "text", Type: schema.StringType(), Required: true}).
		WithOutput(schema.Field{Name: "summary", Type: schema.StringType(), Required: true}).
		WithOutput(schema.Field{Name: "word_count", Type: schema.IntType(), Required: true})
}

func TestStrategyAvailability(t *testing.T) {
	tests := []struct {
		name      string
		provider  string
		model     string
		available []string
	}{
		{
			name:     "openai structured-output model",
			provider: "openai", model: "gpt-4o",
			available: []string{
				StrategyOpenAIStructuredOutput,
				StrategyEnhancedPrompting,
			},
		},
		{
			name:     "anthropic tool-use model",
			provider: "anthropic", model: "claude-sonnet-4-5",
			available: []string{
				StrategyAnthropicToolUse,
				StrategyAnthropicExtraction,
				StrategyEnhancedPrompting,
			},
		},
		{
			name:     "gemini structured-output model",
			provider: "gemini", model: "gemini-3-flash-preview",
			available: []string{
				StrategyGeminiStructuredOutput,
				StrategyEnhancedPrompting,
			},
		},
		{
			name:     "unknown provider and model",
			provider: "local", model: "llama-70b",
			available: []string{StrategyEnhancedPrompting},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSelector(tt.provider, tt.model, testSignature())
			got := s.AvailableStrategies()
			if len(got) != len(tt.available) {
				names := make([]string, len(got))
				for i, st := range got {
					names[i] = st.Name()
				}
				t.Fatalf("available = %v, want %v", names, tt.available)
			}
			for i, want := range tt.available {
				if got[i].Name() != want {
					t.Errorf("position %d = %s, want %s", i, got[i].Name(), want)
				}
			}
		})
	}
}

func TestOpenAIStructuredOutputPrepareRequest(t *testing.T) {
	strat := &OpenAIStructuredOutput{binding{"openai", "gpt-4o", testSignature()}}
	req := llm.Request{Model: "gpt-4o"}
	strat.PrepareRequest(&req)

	if req.ResponseFormat == nil {
		t.Fatal("expected response format to be set")
	}
	if req.ResponseFormat.Type != "json_schema" || !req.ResponseFormat.Strict {
		t.Errorf("response format = %+v", req.ResponseFormat)
	}
	if req.ResponseFormat.JSONSchema["type"] != "object" {
		t.Errorf("schema = %v", req.ResponseFormat.JSONSchema)
	}
}

func TestGeminiStructuredOutputPrepareRequest(t *testing.T) {
	strat := &GeminiStructuredOutput{binding{"gemini", "gemini-3-pro-preview", testSignature()}}
	req := llm.Request{Model: "gemini-3-pro-preview"}
	strat.PrepareRequest(&req)

	if req.ProviderOptions["response_mime_type"] != "application/json" {
		t.Errorf("provider options = %v", req.ProviderOptions)
	}
	if req.ProviderOptions["response_schema"] == nil {
		t.Error("expected response schema in provider options")
	}
}

func TestAnthropicToolUsePrepareRequest(t *testing.T) {
	strat := &AnthropicToolUse{binding{"anthropic", "claude-sonnet-4-5", testSignature()}}
	req := llm.Request{Model: "claude-sonnet-4-5"}
	strat.PrepareRequest(&req)

	if len(req.ToolDefs) != 1 || req.ToolDefs[0].Name != outputToolName {
		t.Fatalf("tool defs = %+v", req.ToolDefs)
	}
	if req.ToolChoice == nil || req.ToolChoice.Mode != "named" || req.ToolChoice.ToolName != outputToolName {
		t.Errorf("tool choice = %+v", req.ToolChoice)
	}
}

func TestAnthropicToolUseExtractJSON(t *testing.T) {
	strat := &AnthropicToolUse{binding{"anthropic", "claude-sonnet-4-5", testSignature()}}

	resp := &llm.Response{
		ToolCalls: []llm.ToolCall{{
			Name:      outputToolName,
			Arguments: []byte(`{"summary":"ok","word_count":1}`),
		}},
	}
	got, ok := strat.ExtractJSON(resp)
	if !ok || got != `{"summary":"ok","word_count":1}` {
		t.Errorf("tool call extraction = %q, %v", got, ok)
	}

	// Text fallback when the model answers outside the forced tool call.
	resp = &llm.Response{Content: "```json\n{\"summary\":\"ok\"}\n```"}
	got, ok = strat.ExtractJSON(resp)
	if !ok || got != `{"summary":"ok"}` {
		t.Errorf("text fallback = %q, %v", got, ok)
	}
}

func TestEnhancedPromptingPrepareRequest(t *testing.T) {
	strat := &EnhancedPrompting{binding{"local", "llama-70b", testSignature()}}
	req := llm.Request{Messages: []llm.Message{llm.UserMessage("hello")}}
	strat.PrepareRequest(&req)

	if len(req.Messages) != 2 {
		t.Fatalf("expected appended instruction message, got %d messages", len(req.Messages))
	}
	instr := req.Messages[1].Content
	for _, want := range []string{"summary", "word_count", "JSON"} {
		if !strings.Contains(instr, want) {
			t.Errorf("instruction missing %q:\n%s", want, instr)
		}
	}
}

func TestExtractJSONFromProse(t *testing.T) {
	strat := &EnhancedPrompting{binding{"local", "llama-70b", testSignature()}}

	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"bare object", `{"summary":"s"}`, `{"summary":"s"}`, true},
		{"fenced object", "```json\n{\"summary\":\"s\"}\n```", `{"summary":"s"}`, true},
		{"object inside prose", `Here you go: {"summary":"s"} hope that helps`, `{"summary":"s"}`, true},
		{"nested braces in strings", `{"summary":"uses { and } freely"}`, `{"summary":"uses { and } freely"}`, true},
		{"no json at all", "I cannot answer that.", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := strat.ExtractJSON(&llm.Response{Content: tt.content})
			if ok != tt.ok || got != tt.want {
				t.Errorf("got %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  ```json\n[1,2]\n```  ", "[1,2]"},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
