package llm

import (
	"context"
	"strings"
)

// MockClient replays scripted deltas; used in tests and as the fallback when
// no completion endpoint is configured.
type MockClient struct {
	Deltas []string
	Err    error

	Model    string
	Endpoint string
	APIKey   string

	LastMessages []Message
}

func NewMockClient(deltas ...string) *MockClient {
	if len(deltas) == 0 {
		deltas = []string{"[NEUTRAL] ", "Tôi đang chạy ở chế độ thử nghiệm."}
	}
	return &MockClient{Deltas: deltas}
}

func (m *MockClient) StreamChat(ctx context.Context, messages []Message, onDelta DeltaHandler) (ChatResponse, error) {
	m.LastMessages = append([]Message(nil), messages...)
	if m.Err != nil {
		return ChatResponse{}, m.Err
	}

	var raw strings.Builder
	filter := &thinkFilter{}
	for _, d := range m.Deltas {
		if err := ctx.Err(); err != nil {
			return ChatResponse{}, err
		}
		raw.WriteString(d)
		if out := filter.Feed(d); out != "" && onDelta != nil {
			if err := onDelta(out); err != nil {
				return ChatResponse{}, err
			}
		}
	}
	if out := filter.Flush(); out != "" && onDelta != nil {
		if err := onDelta(out); err != nil {
			return ChatResponse{}, err
		}
	}
	return ChatResponse{Text: StripReasoning(raw.String())}, nil
}

func (m *MockClient) SetModel(model string)      { m.Model = model }
func (m *MockClient) SetEndpoint(baseURL string) { m.Endpoint = baseURL }
func (m *MockClient) SetAPIKey(key string)       { m.APIKey = key }
