package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientSynthesize(t *testing.T) {
	var got synthesizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tts-key" {
			t.Errorf("Authorization = %q", auth)
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFFfake-audio"))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{URL: srv.URL, APIKey: "tts-key", DefaultVoice: "ngoc", Language: "vi"})
	audio, err := c.Synthesize(context.Background(), "Xin chào!", VoiceConfig{AudioPrompt: "ref-1"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if string(audio) != "RIFFfake-audio" {
		t.Fatalf("audio = %q", audio)
	}
	if got.Text != "Xin chào!" || got.Voice != "ngoc" || got.Language != "vi" || got.AudioPrompt != "ref-1" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestHTTPClientSynthesizeVoiceOverride(t *testing.T) {
	var got synthesizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{URL: srv.URL, DefaultVoice: "ngoc"})
	c.SetVoice("tuyen")
	if _, err := c.Synthesize(context.Background(), "a", VoiceConfig{Voice: "linh"}); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if got.Voice != "linh" {
		t.Fatalf("Voice = %q, want per-call override", got.Voice)
	}

	if _, err := c.Synthesize(context.Background(), "b", VoiceConfig{}); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if got.Voice != "tuyen" {
		t.Fatalf("Voice = %q, want updated default", got.Voice)
	}
}

func TestHTTPClientSynthesizeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{URL: srv.URL})
	if _, err := c.Synthesize(context.Background(), "text", VoiceConfig{}); err == nil {
		t.Fatalf("expected error on 500")
	}
	if _, err := c.Synthesize(context.Background(), "   ", VoiceConfig{}); err == nil {
		t.Fatalf("expected error on empty text")
	}
}

func TestHTTPClientSynthesizeEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPConfig{URL: srv.URL})
	if _, err := c.Synthesize(context.Background(), "text", VoiceConfig{}); err == nil {
		t.Fatalf("expected error on empty audio body")
	}
}

func TestMockClientBeepIsWAV(t *testing.T) {
	m := NewMockClient()
	audio, err := m.Synthesize(context.Background(), "hello", VoiceConfig{Voice: "v"})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(audio) < 44 || string(audio[:4]) != "RIFF" {
		t.Fatalf("mock audio is not a WAV container (%d bytes)", len(audio))
	}
	if len(m.Calls) != 1 || m.Calls[0] != "hello" {
		t.Fatalf("Calls = %+v", m.Calls)
	}
}
