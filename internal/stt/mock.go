package stt

import (
	"context"
	"sync"
)

// MockClient returns a canned transcript; used in tests and as the fallback
// when no STT endpoint is configured.
type MockClient struct {
	mu         sync.Mutex
	Transcript string
	Err        error

	Model     string
	Calls     int
	LastMime  string
	LastBytes int
}

func NewMockClient(transcript string) *MockClient {
	return &MockClient{Transcript: transcript}
}

func (m *MockClient) Transcribe(_ context.Context, audio []byte, mimeType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastMime = mimeType
	m.LastBytes = len(audio)
	if m.Err != nil {
		return "", m.Err
	}
	if len(audio) == 0 {
		return "", nil
	}
	return m.Transcript, nil
}

func (m *MockClient) SetModel(model string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Model = model
}
