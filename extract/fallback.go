package extract

import (
	"strings"

	"github.com/vicentereig/structprompt/llm"
)

// EnhancedPrompting is the universal fallback: explicit JSON formatting
// instructions embedded in the prompt plus permissive parsing of whatever
// comes back. It works against any provider and must always be available —
// it is the guarantee that a fallback chain is never empty.
type EnhancedPrompting struct {
	binding
}

func (s *EnhancedPrompting) Name() string  { return StrategyEnhancedPrompting }
func (s *EnhancedPrompting) Priority() int { return 10 }

func (s *EnhancedPrompting) Available() bool { return true }

func (s *EnhancedPrompting) PrepareRequest(req *llm.Request) {
	var b strings.Builder
	b.WriteString("Respond with a single valid JSON object containing:\n")
	writeFieldList(&b, s.sig.Outputs)
	b.WriteString("\nReturn ONLY the JSON object. No markdown formatting, no code fences, no explanatory text.")
	req.Messages = append(req.Messages, llm.SystemMessage(b.String()))
}

// ExtractJSON parses permissively: fenced blocks first, then the first
// balanced JSON value anywhere in the text, then the verbatim content.
func (s *EnhancedPrompting) ExtractJSON(resp *llm.Response) (string, bool) {
	content := stripCodeFences(resp.Content)
	if looksLikeJSON(content) {
		return content, true
	}
	if v, ok := firstJSONValue(resp.Content); ok {
		return v, true
	}
	return "", false
}

func (s *EnhancedPrompting) HandleError(err error) bool { return false }
