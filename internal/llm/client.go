package llm

import "context"

// Message is one chat turn in completion-service order.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the final response after streaming deltas.
type ChatResponse struct {
	Text string `json:"text"`
}

// DeltaHandler receives streaming text fragments with reasoning spans
// already excluded. Returning an error stops consumption.
type DeltaHandler func(delta string) error

// Client bridges the relay with a chat-completion service.
type Client interface {
	// StreamChat sends the ordered message list and streams reply deltas.
	// The returned text is the full reply with reasoning spans stripped.
	StreamChat(ctx context.Context, messages []Message, onDelta DeltaHandler) (ChatResponse, error)

	// SetModel switches the completion model, re-deriving the endpoint for
	// provider-specific model families.
	SetModel(model string)
	// SetEndpoint overrides the completion API base URL.
	SetEndpoint(baseURL string)
	// SetAPIKey overrides the completion API credential.
	SetAPIKey(key string)
}
