package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

const geminiOpenAIBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// OpenAIConfig controls construction of the completion client.
type OpenAIConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	GoogleAPIKey string
	Temperature  float64
}

// OpenAIClient talks to an OpenAI-compatible chat-completions endpoint.
// Each session owns its own instance, so settings updates never leak into
// another connection's in-flight run.
type OpenAIClient struct {
	mu sync.RWMutex

	baseURL string
	apiKey  string
	model   string

	defaultBaseURL string
	defaultAPIKey  string
	googleAPIKey   string
	temperature    float64

	httpClient *http.Client
}

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.7
	}
	c := &OpenAIClient{
		defaultBaseURL: strings.TrimSpace(cfg.BaseURL),
		defaultAPIKey:  strings.TrimSpace(cfg.APIKey),
		googleAPIKey:   strings.TrimSpace(cfg.GoogleAPIKey),
		temperature:    temp,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	c.SetModel(cfg.Model)
	return c
}

// SetModel switches the model and re-derives endpoint and credential:
// gemini-family models go through Google's OpenAI-compatible surface,
// everything else through the configured base URL.
func (c *OpenAIClient) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = strings.TrimSpace(model)
	if strings.Contains(strings.ToLower(c.model), "gemini") {
		c.baseURL = geminiOpenAIBaseURL
		c.apiKey = c.googleAPIKey
	} else {
		c.baseURL = c.defaultBaseURL
		c.apiKey = c.defaultAPIKey
	}
}

func (c *OpenAIClient) SetEndpoint(baseURL string) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultBaseURL = baseURL
	c.baseURL = baseURL
}

func (c *OpenAIClient) SetAPIKey(key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaultAPIKey = key
	c.apiKey = key
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream,omitempty"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// StreamChat streams reply deltas, excluding reasoning spans before any text
// reaches the handler. The returned text is the stripped full reply.
func (c *OpenAIClient) StreamChat(ctx context.Context, messages []Message, onDelta DeltaHandler) (ChatResponse, error) {
	c.mu.RLock()
	endpoint := c.completionsURL()
	apiKey := c.apiKey
	model := c.model
	temp := c.temperature
	c.mu.RUnlock()

	payload, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temp,
		Stream:      true,
	})
	if err != nil {
		return ChatResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return ChatResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	}

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return ChatResponse{}, fmt.Errorf("completion status %d: %s", res.StatusCode, string(body))
	}

	var raw strings.Builder
	filter := &thinkFilter{}
	emit := func(text string) error {
		if text == "" || onDelta == nil {
			return nil
		}
		return onDelta(text)
	}

	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "data:") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
		if line == "[DONE]" {
			break
		}

		var chunk chatCompletionChunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		token := chunk.Choices[0].Delta.Content
		if token != "" {
			raw.WriteString(token)
			if err := emit(filter.Feed(token)); err != nil {
				return ChatResponse{}, err
			}
		}
		if chunk.Choices[0].FinishReason != nil {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return ChatResponse{}, fmt.Errorf("stream read: %w", err)
	}
	if err := emit(filter.Flush()); err != nil {
		return ChatResponse{}, err
	}

	return ChatResponse{Text: StripReasoning(raw.String())}, nil
}

func (c *OpenAIClient) completionsURL() string {
	base := strings.TrimRight(c.baseURL, "/")
	return base + "/chat/completions"
}
