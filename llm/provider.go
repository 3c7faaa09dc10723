package llm

import "context"

// ProviderAdapter is the interface every provider backend implements: send
// messages, get back text plus token usage. Timeouts, transport resilience
// and streaming aggregation all live behind this boundary.
type ProviderAdapter interface {
	// Name returns the provider identifier (e.g. "openai", "anthropic", "gemini").
	Name() string

	// Chat sends a blocking request and returns the full response.
	Chat(ctx context.Context, req Request) (*Response, error)
}

// Closer is implemented by adapters that hold resources.
type Closer interface {
	Close() error
}
