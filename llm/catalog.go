package llm

// ModelInfo describes a known model in the catalog. The capability flags
// drive extraction-strategy availability: a strategy that needs native
// structured output or forced tool calls checks them before claiming it can
// serve a request.
type ModelInfo struct {
	ID                       string   `json:"id"`
	Provider                 string   `json:"provider"`
	DisplayName              string   `json:"display_name"`
	ContextWindow            int      `json:"context_window"`
	SupportsStructuredOutput bool     `json:"supports_structured_output"`
	SupportsToolUse          bool     `json:"supports_tool_use"`
	Aliases                  []string `json:"aliases,omitempty"`
}

// Models is the built-in model catalog (February 2026).
var Models = []ModelInfo{
	// Anthropic
	{
		ID: "claude-opus-4-6", Provider: "anthropic", DisplayName: "Claude Opus 4.6",
		ContextWindow: 200000, SupportsStructuredOutput: false, SupportsToolUse: true,
		Aliases: []string{"opus", "claude-opus"},
	},
	{
		ID: "claude-sonnet-4-5", Provider: "anthropic", DisplayName: "Claude Sonnet 4.5",
		ContextWindow: 200000, SupportsStructuredOutput: false, SupportsToolUse: true,
		Aliases: []string{"sonnet", "claude-sonnet"},
	},

	// OpenAI
	{
		ID: "gpt-5.2", Provider: "openai", DisplayName: "GPT-5.2",
		ContextWindow: 1047576, SupportsStructuredOutput: true, SupportsToolUse: true,
		Aliases: []string{"gpt5"},
	},
	{
		ID: "gpt-5.2-mini", Provider: "openai", DisplayName: "GPT-5.2 Mini",
		ContextWindow: 1047576, SupportsStructuredOutput: true, SupportsToolUse: true,
		Aliases: []string{"gpt5-mini"},
	},
	{
		ID: "gpt-4o", Provider: "openai", DisplayName: "GPT-4o",
		ContextWindow: 128000, SupportsStructuredOutput: true, SupportsToolUse: true,
	},
	{
		ID: "gpt-4o-mini", Provider: "openai", DisplayName: "GPT-4o Mini",
		ContextWindow: 128000, SupportsStructuredOutput: true, SupportsToolUse: true,
	},

	// Gemini
	{
		ID: "gemini-3-pro-preview", Provider: "gemini", DisplayName: "Gemini 3 Pro (Preview)",
		ContextWindow: 1048576, SupportsStructuredOutput: true, SupportsToolUse: true,
		Aliases: []string{"gemini-pro", "gemini-3-pro"},
	},
	{
		ID: "gemini-3-flash-preview", Provider: "gemini", DisplayName: "Gemini 3 Flash (Preview)",
		ContextWindow: 1048576, SupportsStructuredOutput: true, SupportsToolUse: true,
		Aliases: []string{"gemini-flash", "gemini-3-flash"},
	},
}

// GetModelInfo returns the catalog entry for a model ID or alias, or nil if
// unknown.
func GetModelInfo(modelID string) *ModelInfo {
	for i := range Models {
		if Models[i].ID == modelID {
			return &Models[i]
		}
		for _, alias := range Models[i].Aliases {
			if alias == modelID {
				return &Models[i]
			}
		}
	}
	return nil
}

// ListModels returns all known models, optionally filtered by provider.
func ListModels(provider string) []ModelInfo {
	if provider == "" {
		result := make([]ModelInfo, len(Models))
		copy(result, Models)
		return result
	}
	var result []ModelInfo
	for _, m := range Models {
		if m.Provider == provider {
			result = append(result, m)
		}
	}
	return result
}

// LatestModel returns the first (newest/best) catalog model for a provider.
func LatestModel(provider string) *ModelInfo {
	for i := range Models {
		if Models[i].Provider == provider {
			return &Models[i]
		}
	}
	return nil
}

// SupportsStructuredOutput reports whether the model can validate output
// against a JSON Schema server-side. Unknown models are assumed not to.
func SupportsStructuredOutput(modelID string) bool {
	if info := GetModelInfo(modelID); info != nil {
		return info.SupportsStructuredOutput
	}
	return false
}

// SupportsToolUse reports whether the model can be forced into a named tool
// call. Unknown models are assumed not to.
func SupportsToolUse(modelID string) bool {
	if info := GetModelInfo(modelID); info != nil {
		return info.SupportsToolUse
	}
	return false
}
