// Package extract obtains schema-conformant JSON from language-model
// responses. A Strategy represents one provider capability tier (native
// structured output, forced tool calls, tuned free-text prompting, or the
// universal prompting fallback); the Selector ranks the tiers available for
// a provider/model pair, and the retry Handler walks the resulting fallback
// chain with bounded per-strategy retries.
package extract

import (
	"strings"

	"github.com/vicentereig/structprompt/llm"
	"github.com/vicentereig/structprompt/schema"
)

// Strategy is one algorithm for getting structured output out of a provider.
// Instances are stateless apart from the (provider, model, signature)
// binding they were built for; the Selector constructs them fresh per
// logical extraction operation.
type Strategy interface {
	// Name is the stable identifier used for logging, preference matching
	// and per-strategy retry-limit lookup.
	Name() string

	// Priority ranks simultaneously-available strategies; higher wins.
	Priority() int

	// Available reports whether the bound provider/model combination
	// supports this strategy. The universal fallback always returns true.
	Available() bool

	// PrepareRequest mutates the outgoing request in place: injecting a
	// schema constraint, forcing a tool call, or appending formatting
	// instructions. Called once per attempt, on a fresh request clone.
	PrepareRequest(req *llm.Request)

	// ExtractJSON pulls a JSON-encoded string out of the raw response.
	// Returns false when no JSON-shaped content is found; that is an
	// extraction failure, not an exception.
	ExtractJSON(resp *llm.Response) (string, bool)

	// HandleError reports whether the error is specific to this strategy
	// and the operation should immediately advance to the next strategy
	// instead of retrying this one.
	HandleError(err error) bool
}

// binding holds what every concrete strategy needs: which provider/model the
// request targets and the output contract being extracted.
type binding struct {
	provider string
	model    string
	sig      *schema.Signature
}

// Factory builds a strategy instance for a provider/model/signature binding.
// The Selector is configured with an ordered factory list instead of a
// global registry, so per-test or per-tenant strategy sets need no shared
// state.
type Factory func(provider, model string, sig *schema.Signature) Strategy

// DefaultFactories returns the built-in strategy set in declaration order.
// Declaration order doubles as the tiebreak for equal priorities.
func DefaultFactories() []Factory {
	return []Factory{
		func(p, m string, s *schema.Signature) Strategy { return &OpenAIStructuredOutput{binding{p, m, s}} },
		func(p, m string, s *schema.Signature) Strategy { return &GeminiStructuredOutput{binding{p, m, s}} },
		func(p, m string, s *schema.Signature) Strategy { return &AnthropicToolUse{binding{p, m, s}} },
		func(p, m string, s *schema.Signature) Strategy { return &AnthropicExtraction{binding{p, m, s}} },
		func(p, m string, s *schema.Signature) Strategy { return &EnhancedPrompting{binding{p, m, s}} },
	}
}

// stripCodeFences removes a surrounding markdown code fence, with or without
// a language tag, returning the inner content.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence line.
	if nl := strings.IndexByte(s, '\n'); nl != -1 {
		first := strings.TrimSpace(s[:nl])
		if first == "" || isFenceTag(first) {
			s = s[nl+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// firstJSONValue scans for the first balanced JSON object or array in the
// text. Models routinely wrap payloads in prose; this recovers them.
func firstJSONValue(s string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			start, open, close = i, '{', '}'
			break
		}
		if s[i] == '[' {
			start, open, close = i, '[', ']'
			break
		}
	}
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// looksLikeJSON reports whether trimmed content starts like a JSON value.
func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
