package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sttSendChunkSize  = 8 * 1024
	sttResultDeadline = 3 * time.Second
)

// WebsocketConfig controls the streaming-STT connection.
type WebsocketConfig struct {
	// URL is the websocket endpoint, e.g. wss://stt.example.com/stream.
	URL      string
	Model    string
	Language string
}

// WebsocketClient sends a complete utterance to a streaming STT server over
// a short-lived websocket and keeps the last (most complete) result.
type WebsocketClient struct {
	mu       sync.RWMutex
	url      string
	model    string
	language string
	dialer   *websocket.Dialer
}

func NewWebsocketClient(cfg WebsocketConfig) *WebsocketClient {
	lang := strings.TrimSpace(cfg.Language)
	if lang == "" {
		lang = "vi"
	}
	return &WebsocketClient{
		url:      strings.TrimSpace(cfg.URL),
		model:    strings.TrimSpace(cfg.Model),
		language: lang,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
}

func (c *WebsocketClient) SetModel(model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		return
	}
	c.mu.Lock()
	c.model = model
	c.mu.Unlock()
}

type sttResult struct {
	Text string `json:"text"`
}

// Transcribe streams the audio bytes in chunks and collects transcript
// results until the server goes quiet. The mime type is passed as a hint;
// container handling is the STT server's concern.
func (c *WebsocketClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", nil
	}

	endpoint, err := c.endpoint(mimeType)
	if err != nil {
		return "", err
	}

	conn, _, err := c.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("dial stt: %w", err)
	}
	defer conn.Close()

	for off := 0; off < len(audio); off += sttSendChunkSize {
		end := off + sttSendChunkSize
		if end > len(audio) {
			end = len(audio)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := conn.WriteMessage(websocket.BinaryMessage, audio[off:end]); err != nil {
			return "", fmt.Errorf("send audio chunk: %w", err)
		}
	}

	// Drain results until the server stops answering; the last non-empty
	// text is the most complete transcript.
	var last string
	for {
		deadline := time.Now().Add(sttResultDeadline)
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
		_ = conn.SetReadDeadline(deadline)

		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if text := parseResult(data); text != "" {
			last = text
		}
	}
	return last, nil
}

func (c *WebsocketClient) endpoint(mimeType string) (string, error) {
	c.mu.RLock()
	base, model, lang := c.url, c.model, c.language
	c.mu.RUnlock()

	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse stt url: %w", err)
	}
	q := u.Query()
	if model != "" {
		q.Set("model", model)
	}
	if lang != "" {
		q.Set("lang", lang)
	}
	if mt := strings.TrimSpace(mimeType); mt != "" {
		q.Set("content_type", mt)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func parseResult(data []byte) string {
	var res sttResult
	if err := json.Unmarshal(data, &res); err == nil {
		return strings.TrimSpace(res.Text)
	}
	return strings.TrimSpace(string(data))
}
