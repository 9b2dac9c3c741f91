package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// HTTPConfig controls the synthesis client.
type HTTPConfig struct {
	// URL is the synthesis endpoint, e.g. https://tts.example.com/synthesize.
	URL          string
	APIKey       string
	DefaultVoice string
	Language     string
}

// HTTPClient posts one sentence and receives encoded audio bytes back.
type HTTPClient struct {
	mu           sync.RWMutex
	url          string
	apiKey       string
	defaultVoice string
	language     string
	httpClient   *http.Client
}

func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	lang := strings.TrimSpace(cfg.Language)
	if lang == "" {
		lang = "vi"
	}
	return &HTTPClient{
		url:          strings.TrimSpace(cfg.URL),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		defaultVoice: strings.TrimSpace(cfg.DefaultVoice),
		language:     lang,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *HTTPClient) SetVoice(voice string) {
	voice = strings.TrimSpace(voice)
	if voice == "" {
		return
	}
	c.mu.Lock()
	c.defaultVoice = voice
	c.mu.Unlock()
}

type synthesizeRequest struct {
	Text        string `json:"text"`
	Voice       string `json:"voice,omitempty"`
	AudioPrompt string `json:"audio_prompt,omitempty"`
	Language    string `json:"language,omitempty"`
}

func (c *HTTPClient) Synthesize(ctx context.Context, text string, cfg VoiceConfig) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty synthesis text")
	}

	c.mu.RLock()
	endpoint := c.url
	apiKey := c.apiKey
	voice := c.defaultVoice
	lang := c.language
	c.mu.RUnlock()

	if strings.TrimSpace(cfg.Voice) != "" {
		voice = strings.TrimSpace(cfg.Voice)
	}
	if strings.TrimSpace(cfg.Language) != "" {
		lang = strings.TrimSpace(cfg.Language)
	}

	payload, err := json.Marshal(synthesizeRequest{
		Text:        text,
		Voice:       voice,
		AudioPrompt: strings.TrimSpace(cfg.AudioPrompt),
		Language:    lang,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("synthesis status %d: %s", res.StatusCode, string(body))
	}

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("synthesis returned no audio")
	}
	return audio, nil
}
