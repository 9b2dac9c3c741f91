package stt

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newSTTTestServer(t *testing.T, results []string, gotAudio *bytes.Buffer, gotQuery *string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotQuery != nil {
			*gotQuery = r.URL.RawQuery
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		// Collect chunks until the client pauses, then answer.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
			_, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if gotAudio != nil {
				gotAudio.Write(data)
			}
		}
		for _, res := range results {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(res))
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocketClientTranscribeLastResultWins(t *testing.T) {
	var audio bytes.Buffer
	var query string
	srv := newSTTTestServer(t, []string{
		`{"text":"xin"}`,
		`{"text":"xin chào"}`,
	}, &audio, &query)
	defer srv.Close()

	c := NewWebsocketClient(WebsocketConfig{URL: wsURL(srv), Model: "large-v3", Language: "vi"})

	payload := bytes.Repeat([]byte{0x01, 0x02}, 9000)
	got, err := c.Transcribe(context.Background(), payload, "audio/webm")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got != "xin chào" {
		t.Fatalf("transcript = %q, want %q", got, "xin chào")
	}
	if !bytes.Equal(audio.Bytes(), payload) {
		t.Fatalf("server received %d bytes, want %d", audio.Len(), len(payload))
	}
	for _, frag := range []string{"model=large-v3", "lang=vi", "content_type=audio%2Fwebm"} {
		if !strings.Contains(query, frag) {
			t.Fatalf("query %q missing %q", query, frag)
		}
	}
}

func TestWebsocketClientTranscribePlainTextResult(t *testing.T) {
	srv := newSTTTestServer(t, []string{"plain transcript"}, nil, nil)
	defer srv.Close()

	c := NewWebsocketClient(WebsocketConfig{URL: wsURL(srv)})
	got, err := c.Transcribe(context.Background(), []byte{0x01}, "audio/wav")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got != "plain transcript" {
		t.Fatalf("transcript = %q", got)
	}
}

func TestWebsocketClientTranscribeEmptyAudio(t *testing.T) {
	c := NewWebsocketClient(WebsocketConfig{URL: "ws://127.0.0.1:1/stream"})
	got, err := c.Transcribe(context.Background(), nil, "audio/webm")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if got != "" {
		t.Fatalf("transcript = %q, want empty", got)
	}
}

func TestWebsocketClientSetModel(t *testing.T) {
	c := NewWebsocketClient(WebsocketConfig{URL: "ws://stt.local/stream", Model: "base"})
	c.SetModel("large-v3")
	endpoint, err := c.endpoint("audio/webm")
	if err != nil {
		t.Fatalf("endpoint() error = %v", err)
	}
	if !strings.Contains(endpoint, "model=large-v3") {
		t.Fatalf("endpoint = %q, model not applied", endpoint)
	}
	c.SetModel("  ")
	endpoint, _ = c.endpoint("")
	if !strings.Contains(endpoint, "model=large-v3") {
		t.Fatalf("blank model should be ignored, endpoint = %q", endpoint)
	}
}

func TestWebsocketClientDialFailure(t *testing.T) {
	c := NewWebsocketClient(WebsocketConfig{URL: "ws://127.0.0.1:1/stream"})
	if _, err := c.Transcribe(context.Background(), []byte{0x01}, "audio/webm"); err == nil {
		t.Fatalf("expected dial error")
	}
}
