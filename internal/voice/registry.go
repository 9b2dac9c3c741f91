package voice

import (
	"github.com/google/uuid"

	"github.com/dsqt99/can-bo-cong-an-hcc/internal/archive"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/history"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/llm"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/observability"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/stt"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/tts"
)

// Registry is owned by the server bootstrap and builds one Session per
// connection. Collaborator factories produce fresh instances each time, so
// sessions never share mutable client configuration.
type Registry struct {
	NewLLM func() llm.Client
	NewSTT func() stt.Client
	NewTTS func() tts.Client

	History *history.Store
	Archive archive.Store
	Metrics *observability.Metrics

	// Defaults seeds each session's settings map; collaborator-facing keys
	// are forwarded on construction.
	Defaults map[string]string

	// NotRecognizedText overrides the empty-transcript sentinel.
	NotRecognizedText string
}

// NewSession builds a session with its own collaborators and a fresh id.
func (r *Registry) NewSession(sender Sender) *Session {
	sentinel := r.NotRecognizedText
	if sentinel == "" {
		sentinel = NotRecognizedText
	}

	s := &Session{
		ID:            uuid.NewString(),
		llm:           r.NewLLM(),
		stt:           r.NewSTT(),
		tts:           r.NewTTS(),
		history:       r.History,
		archive:       r.Archive,
		metrics:       r.Metrics,
		interrupt:     NewInterrupt(),
		sender:        sender,
		settings:      make(map[string]string, len(r.Defaults)),
		notRecognized: sentinel,
	}
	if len(r.Defaults) > 0 {
		s.ApplySettings(r.Defaults)
	}
	return s
}
