package tts

import (
	"context"
	"sync"
	"time"

	"github.com/dsqt99/can-bo-cong-an-hcc/internal/audio"
)

// MockClient synthesizes a short beep WAV; used in tests and as the fallback
// when no synthesis endpoint is configured.
type MockClient struct {
	mu    sync.Mutex
	Err   error
	Voice string

	Calls     []string
	LastCfg   VoiceConfig
	beepCache []byte
}

func NewMockClient() *MockClient { return &MockClient{} }

func (m *MockClient) Synthesize(_ context.Context, text string, cfg VoiceConfig) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, text)
	m.LastCfg = cfg
	if m.Err != nil {
		return nil, m.Err
	}
	if m.beepCache == nil {
		pcm := audio.SinePCM16(440, 200*time.Millisecond, 16000)
		wav, err := audio.EncodeWAVPCM16LE(pcm, 16000)
		if err != nil {
			return nil, err
		}
		m.beepCache = wav
	}
	return m.beepCache, nil
}

func (m *MockClient) SetVoice(voice string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Voice = voice
}
