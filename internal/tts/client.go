package tts

import "context"

// VoiceConfig selects the voice for one synthesis call.
type VoiceConfig struct {
	// Voice names a preset voice; empty means the client default.
	Voice string
	// AudioPrompt optionally references a cloning/reference prompt.
	AudioPrompt string
	// Language hints the synthesis language, e.g. "vi".
	Language string
}

// Client abstracts the audio-synthesis service: one sentence in, encoded
// audio bytes out.
type Client interface {
	Synthesize(ctx context.Context, text string, cfg VoiceConfig) ([]byte, error)

	// SetVoice changes the default voice used when a call does not name one.
	SetVoice(voice string)
}
