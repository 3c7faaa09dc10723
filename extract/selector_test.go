package extract

import (
	"sync"
	"testing"

	"github.com/vicentereig/structprompt/llm"
	"github.com/vicentereig/structprompt/schema"
)

// recordingSink captures emitted events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []string
	attrs  []map[string]interface{}
}

func (s *recordingSink) Emit(name string, attrs map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, name)
	s.attrs = append(s.attrs, attrs)
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func TestSelectAuto(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		want     string
	}{
		{"openai", "gpt-4o", StrategyOpenAIStructuredOutput},
		{"gemini", "gemini-3-pro-preview", StrategyGeminiStructuredOutput},
		{"anthropic", "claude-sonnet-4-5", StrategyAnthropicToolUse},
		{"local", "llama-70b", StrategyEnhancedPrompting},
	}
	for _, tt := range tests {
		s := NewSelector(tt.provider, tt.model, testSignature())
		got := s.Select()
		if got == nil || got.Name() != tt.want {
			t.Errorf("%s/%s: selected %v, want %s", tt.provider, tt.model, got, tt.want)
		}
	}
}

func TestSelectStrictFallsBackToUniversal(t *testing.T) {
	s := NewSelector("local", "llama-70b", testSignature(), WithPreference(PreferStrict))
	got := s.Select()
	if got == nil || got.Name() != StrategyEnhancedPrompting {
		t.Fatalf("selected %v, want universal fallback", got)
	}
}

func TestSelectStrictPicksProviderTier(t *testing.T) {
	s := NewSelector("anthropic", "claude-opus-4-6", testSignature(), WithPreference(PreferStrict))
	got := s.Select()
	if got == nil || got.Name() != StrategyAnthropicToolUse {
		t.Fatalf("selected %v, want %s", got, StrategyAnthropicToolUse)
	}
}

func TestSelectCompatible(t *testing.T) {
	s := NewSelector("openai", "gpt-4o", testSignature(), WithPreference(PreferCompatible))
	got := s.Select()
	if got == nil || got.Name() != StrategyEnhancedPrompting {
		t.Fatalf("selected %v, want universal fallback", got)
	}
}

func TestSelectPreferenceUnavailableWarnsAndFallsThrough(t *testing.T) {
	sink := &recordingSink{}
	// No universal strategy in the set, so PreferCompatible cannot be honored.
	factories := []Factory{
		func(p, m string, sig *schema.Signature) Strategy {
			return &OpenAIStructuredOutput{binding{p, m, sig}}
		},
	}
	s := NewSelector("openai", "gpt-4o", testSignature(),
		WithPreference(PreferCompatible),
		WithFactories(factories),
		WithSelectorSink(sink),
	)

	got := s.Select()
	if got == nil || got.Name() != StrategyOpenAIStructuredOutput {
		t.Fatalf("selected %v, want auto fallback", got)
	}

	names := sink.names()
	if len(names) != 1 || names[0] != "extraction.preference_unavailable" {
		t.Errorf("events = %v", names)
	}
}

func TestSelectReturnsNilWhenNothingAvailable(t *testing.T) {
	factories := []Factory{
		func(p, m string, sig *schema.Signature) Strategy {
			return &OpenAIStructuredOutput{binding{p, m, sig}}
		},
	}
	s := NewSelector("anthropic", "claude-sonnet-4-5", testSignature(), WithFactories(factories))
	if got := s.Select(); got != nil {
		t.Errorf("selected %v, want nil", got)
	}
}

func TestStrategyAvailable(t *testing.T) {
	s := NewSelector("anthropic", "claude-sonnet-4-5", testSignature())
	if !s.StrategyAvailable(StrategyAnthropicToolUse) {
		t.Error("expected anthropic tool use to be available")
	}
	if s.StrategyAvailable(StrategyOpenAIStructuredOutput) {
		t.Error("openai structured output must not be available for anthropic")
	}
	if s.StrategyAvailable("no_such_strategy") {
		t.Error("unknown strategy name must report unavailable")
	}
}

func TestSelectorEqualPriorityKeepsDeclarationOrder(t *testing.T) {
	mk := func(name string) Factory {
		return func(p, m string, sig *schema.Signature) Strategy {
			return &stubStrategy{name: name, priority: 10, available: true}
		}
	}
	s := NewSelector("openai", "gpt-4o", testSignature(),
		WithFactories([]Factory{mk("first"), mk("second"), mk("third")}))

	got := s.AvailableStrategies()
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Name() != want {
			t.Errorf("position %d = %s, want %s", i, got[i].Name(), want)
		}
	}
}

// stubStrategy is a configurable fake for selector and retry tests.
type stubStrategy struct {
	name      string
	priority  int
	available bool
	handles   func(error) bool
}

func (s *stubStrategy) Name() string                   { return s.name }
func (s *stubStrategy) Priority() int                  { return s.priority }
func (s *stubStrategy) Available() bool                { return s.available }
func (s *stubStrategy) PrepareRequest(req *llm.Request) {}
func (s *stubStrategy) ExtractJSON(resp *llm.Response) (string, bool) {
	return resp.Content, resp.Content != ""
}
func (s *stubStrategy) HandleError(err error) bool {
	if s.handles == nil {
		return false
	}
	return s.handles(err)
}
