package llm

import "encoding/json"

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is the fundamental unit of conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message { return Message{Role: RoleSystem, Content: text} }

// UserMessage creates a user Message.
func UserMessage(text string) Message { return Message{Role: RoleUser, Content: text} }

// AssistantMessage creates an assistant Message.
func AssistantMessage(text string) Message { return Message{Role: RoleAssistant, Content: text} }

// ResponseFormat asks the provider for schema-constrained output.
type ResponseFormat struct {
	Type       string                 `json:"type"` // "text", "json", "json_schema"
	JSONSchema map[string]interface{} `json:"json_schema,omitempty"`
	Strict     bool                   `json:"strict,omitempty"`
}

// ToolDefinition describes a callable tool to the provider.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// ToolChoice controls whether and how the model uses tools.
type ToolChoice struct {
	Mode     string `json:"mode"`                // "auto", "none", "required", "named"
	ToolName string `json:"tool_name,omitempty"` // required when mode is "named"
}

// ToolCall is a model-initiated tool invocation extracted from a response.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Request is the input to a provider Chat call. Extraction strategies mutate
// a per-attempt clone of the request before it is sent.
type Request struct {
	Model           string                 `json:"model"`
	Provider        string                 `json:"provider,omitempty"`
	Messages        []Message              `json:"messages"`
	ResponseFormat  *ResponseFormat        `json:"response_format,omitempty"`
	ToolDefs        []ToolDefinition       `json:"tools,omitempty"`
	ToolChoice      *ToolChoice            `json:"tool_choice,omitempty"`
	Temperature     *float64               `json:"temperature,omitempty"`
	MaxTokens       *int                   `json:"max_tokens,omitempty"`
	ProviderOptions map[string]interface{} `json:"provider_options,omitempty"`
}

// Clone returns a copy of the request whose messages, tool definitions and
// provider options may be mutated without touching the original. One clone
// is made per extraction attempt.
func (r Request) Clone() Request {
	out := r
	out.Messages = append([]Message(nil), r.Messages...)
	out.ToolDefs = append([]ToolDefinition(nil), r.ToolDefs...)
	if r.ProviderOptions != nil {
		out.ProviderOptions = make(map[string]interface{}, len(r.ProviderOptions))
		for k, v := range r.ProviderOptions {
			out.ProviderOptions[k] = v
		}
	}
	if r.ResponseFormat != nil {
		rf := *r.ResponseFormat
		out.ResponseFormat = &rf
	}
	if r.ToolChoice != nil {
		tc := *r.ToolChoice
		out.ToolChoice = &tc
	}
	return out
}

// Usage tracks token consumption for one provider call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add returns a new Usage that is the sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
		TotalTokens:  u.TotalTokens + other.TotalTokens,
	}
}

// Response is the output of a provider Chat call: the final aggregated text
// plus any tool calls the model emitted. Streaming chunks are the adapter's
// concern; this layer only ever sees the assembled result.
type Response struct {
	ID           string                 `json:"id"`
	Model        string                 `json:"model"`
	Provider     string                 `json:"provider"`
	Content      string                 `json:"content"`
	ToolCalls    []ToolCall             `json:"tool_calls,omitempty"`
	FinishReason string                 `json:"finish_reason"`
	Usage        Usage                  `json:"usage"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// ToolCallNamed returns the first tool call with the given name.
func (r *Response) ToolCallNamed(name string) (*ToolCall, bool) {
	for i := range r.ToolCalls {
		if r.ToolCalls[i].Name == name {
			return &r.ToolCalls[i], true
		}
	}
	return nil, false
}
