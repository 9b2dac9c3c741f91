package voice

import (
	"context"
	"encoding/base64"
	"log"

	"github.com/dsqt99/can-bo-cong-an-hcc/internal/protocol"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/tts"
)

// speakSentence turns one sentence unit into at most one audio frame.
// Bracketed tag spans never reach the synthesizer. The interrupt signal is
// polled before the synthesis call and again before the send, so audio from
// a call that finished after barge-in is discarded rather than emitted.
// A synthesis failure drops this sentence only; the run continues.
func (s *Session) speakSentence(ctx context.Context, sentence string) bool {
	text := stripBracketSpans(sentence)
	if text == "" {
		return false
	}
	if s.interrupt.Interrupted() {
		return false
	}

	cfg := tts.VoiceConfig{
		Voice:       s.settings[KeyTTSVoice],
		AudioPrompt: s.settings[KeyTTSAudioPrompt],
		Language:    s.settings[KeyTTSLanguage],
	}
	audio, err := s.tts.Synthesize(ctx, text, cfg)
	if err != nil {
		log.Printf("session %s: synthesis failed (%d chars dropped): %v", s.ID, len(text), err)
		if s.metrics != nil {
			s.metrics.ProviderErrors.WithLabelValues("tts", "synthesize").Inc()
		}
		return false
	}

	if s.interrupt.Interrupted() {
		return false
	}
	s.sendFrame(protocol.Audio{
		Type: protocol.TypeAudio,
		Data: base64.StdEncoding.EncodeToString(audio),
	})
	if s.metrics != nil {
		s.metrics.SentencesSynthesized.Inc()
	}
	return true
}
