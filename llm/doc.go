// Package llm is the provider adapter layer: send messages, get back text
// plus token usage. It wraps the gollm library
// (github.com/teilomillet/gollm) behind the ProviderAdapter interface and
// classifies provider failures into a typed error taxonomy.
//
// The extraction pipeline built on top of this package treats it as an
// opaque collaborator: it hands over a Request (possibly mutated by an
// extraction strategy), receives a Response, and reacts only to the returned
// error or to the absence of JSON in the content.
//
// # Quick Start
//
//	adapter, _ := llm.NewGollmAdapter("openai", os.Getenv("OPENAI_API_KEY"))
//	resp, err := adapter.Chat(ctx, llm.Request{
//	    Model:    "gpt-5.2",
//	    Messages: []llm.Message{llm.UserMessage("Hello")},
//	})
//
// A Client can route between several registered adapters by provider name or
// via the model catalog:
//
//	client := llm.NewClient(llm.WithProvider("openai", adapter))
//	resp, err := client.Chat(ctx, req)
package llm
