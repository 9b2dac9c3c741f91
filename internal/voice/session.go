package voice

import (
	"context"
	"encoding/base64"
	"log"
	"strings"
	"sync/atomic"

	"github.com/dsqt99/can-bo-cong-an-hcc/internal/archive"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/history"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/llm"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/observability"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/protocol"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/stt"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/tts"
)

// Settings keys recognized by the orchestrator. Keys that configure a
// collaborator are forwarded to it synchronously when updated.
const (
	KeySystemPrompt   = "systemPrompt"
	KeyAIModel        = "aiModel"
	KeyLLMAPIURL      = "llmApiUrl"
	KeyLLMAPIKey      = "llmApiKey"
	KeySTTModel       = "sttModel"
	KeyTTSVoice       = "ttsVoice"
	KeyTTSAudioPrompt = "ttsAudioPrompt"
	KeyTTSLanguage    = "ttsLanguage"
)

// NotRecognizedText is the transcript sentinel sent when transcription
// yields no speech.
const NotRecognizedText = "(Không nhận diện được giọng nói)"

// Sender writes one outbound frame to the transport. Implementations are
// expected to be safe for use from the session loop only.
type Sender interface {
	Send(frame any) error
}

// Session owns one connection's lifecycle: it routes inbound frames, drives
// the transcription and reply pipelines, and emits outbound frames. Each
// session holds its own collaborator instances, so reconfiguration through
// settings updates never leaks into another connection.
type Session struct {
	ID string

	llm     llm.Client
	stt     stt.Client
	tts     tts.Client
	history *history.Store
	archive archive.Store
	metrics *observability.Metrics

	interrupt *Interrupt
	sender    Sender
	inert     atomic.Bool

	settings      map[string]string
	notRecognized string
}

// Interrupt signals barge-in. Called by the transport reader out-of-band
// while a reply run is in flight; idempotent.
func (s *Session) Interrupt() {
	s.interrupt.Signal()
}

// Close signals any in-flight run and drops the session's history window.
func (s *Session) Close() {
	s.interrupt.Signal()
	s.inert.Store(true)
	s.history.Clear(s.ID)
}

// Run announces the session and then consumes inbound frames sequentially
// until the channel closes or the context ends. Exactly one frame is
// processed at a time, so no two pipeline runs for this session overlap.
func (s *Session) Run(ctx context.Context, inbound <-chan any) {
	s.sendFrame(protocol.SessionInit{Type: protocol.TypeSessionInit, SessionID: s.ID})

	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-inbound:
			if !ok {
				return
			}
			s.handleFrame(ctx, frame)
		}
	}
}

func (s *Session) handleFrame(ctx context.Context, frame any) {
	switch msg := frame.(type) {
	case protocol.UpdateSettings:
		s.ApplySettings(msg.Settings)
	case protocol.ChatMessage:
		text := strings.TrimSpace(msg.Text)
		if text == "" {
			return
		}
		s.setProcessing(true)
		s.runReply(ctx, text)
		s.setProcessing(false)
	case protocol.AudioComplete:
		s.handleAudio(ctx, msg)
	case protocol.UserSpeaking:
		s.interrupt.Signal()
	default:
		log.Printf("session %s: unhandled frame %T", s.ID, frame)
	}
}

// ApplySettings merges the provided keys into the session settings and
// forwards collaborator-facing keys to the owning client. Forwarding is
// idempotent; applying the same value twice reconfigures to the same state.
func (s *Session) ApplySettings(settings map[string]string) {
	for key, value := range settings {
		s.settings[key] = value
		switch key {
		case KeyAIModel:
			s.llm.SetModel(value)
		case KeyLLMAPIURL:
			s.llm.SetEndpoint(value)
		case KeyLLMAPIKey:
			s.llm.SetAPIKey(value)
		case KeySTTModel:
			s.stt.SetModel(value)
		case KeyTTSVoice:
			s.tts.SetVoice(value)
		}
	}
}

// Settings returns a copy of the current settings map.
func (s *Session) Settings() map[string]string {
	out := make(map[string]string, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out
}

// handleAudio processes one completed utterance: decode, transcribe, reply.
// A decode failure aborts this turn only; the session stays usable.
func (s *Session) handleAudio(ctx context.Context, msg protocol.AudioComplete) {
	raw, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		log.Printf("session %s: bad audio payload: %v", s.ID, err)
		s.sendFrame(protocol.STTError{Type: protocol.TypeSTTError, Message: "Invalid audio data"})
		return
	}

	s.setProcessing(true)
	defer s.setProcessing(false)

	transcript, err := s.stt.Transcribe(ctx, raw, msg.MimeType)
	if err != nil {
		log.Printf("session %s: transcription failed: %v", s.ID, err)
		if s.metrics != nil {
			s.metrics.ProviderErrors.WithLabelValues("stt", "transcribe").Inc()
		}
		s.sendFrame(protocol.STTError{Type: protocol.TypeSTTError, Message: "Speech recognition failed"})
		return
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		s.sendFrame(protocol.Transcript{Type: protocol.TypeTranscript, Text: s.notRecognized, IsFinal: true})
		return
	}

	s.sendFrame(protocol.Transcript{Type: protocol.TypeTranscript, Text: transcript, IsFinal: true})
	s.runReply(ctx, transcript)
}

func (s *Session) setProcessing(active bool) {
	s.sendFrame(protocol.AIProcessing{Type: protocol.TypeAIProcessing, IsProcessing: active})
}

// sendFrame is the only outbound path. A transport write failure marks the
// session inert; every later send becomes a no-op. Never raises.
func (s *Session) sendFrame(frame any) {
	if s.inert.Load() {
		return
	}
	if err := s.sender.Send(frame); err != nil {
		log.Printf("session %s: transport send failed, going inert: %v", s.ID, err)
		s.inert.Store(true)
		return
	}
	if s.metrics != nil {
		s.metrics.WSMessages.WithLabelValues("out", frameType(frame)).Inc()
	}
}

func frameType(frame any) string {
	switch frame.(type) {
	case protocol.SessionInit:
		return string(protocol.TypeSessionInit)
	case protocol.AIProcessing:
		return string(protocol.TypeAIProcessing)
	case protocol.Transcript:
		return string(protocol.TypeTranscript)
	case protocol.STTError:
		return string(protocol.TypeSTTError)
	case protocol.AIStreamChunk:
		return string(protocol.TypeAIStreamChunk)
	case protocol.AIResponse:
		return string(protocol.TypeAIResponse)
	case protocol.Audio:
		return string(protocol.TypeAudio)
	default:
		return "unknown"
	}
}
