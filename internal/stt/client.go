package stt

import "context"

// Client abstracts the transcription service: one utterance in, best-effort
// transcript out. An empty transcript means no speech was recognized.
type Client interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)

	// SetModel switches the recognition model for subsequent calls.
	SetModel(model string)
}
