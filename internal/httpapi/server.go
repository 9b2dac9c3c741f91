package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/dsqt99/can-bo-cong-an-hcc/internal/config"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/history"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/observability"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/session"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/tts"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/voice"
)

type Server struct {
	cfg      config.Config
	sessions *session.Manager
	registry *voice.Registry
	history  *history.Store
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
}

func New(cfg config.Config, sessions *session.Manager, registry *voice.Registry, hist *history.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		registry: registry,
		history:  hist,
		metrics:  metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				// Default: only same-origin browser connections. Other sites
				// must not be able to drive a user's mic session if the relay
				// is ever exposed beyond localhost.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/ws/chat", s.handleChatWS)

	r.Get("/api/session/{id}/history", s.handleSessionHistory)
	r.Post("/api/clear-session/{id}", s.handleClearSession)
	r.Post("/api/clear-all-sessions", s.handleClearAllSessions)
	r.Post("/api/tts", s.handleStandaloneTTS)

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"service": "voice-relay",
		"status":  "ok",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": s.sessions.ActiveCount(),
	})
}

func (s *Server) handleSessionHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(id); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"messages":   s.history.Messages(id),
	})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.sessions.Get(id); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	s.history.Clear(id)
	respondJSON(w, http.StatusOK, map[string]any{
		"status":     "cleared",
		"session_id": id,
	})
}

func (s *Server) handleClearAllSessions(w http.ResponseWriter, _ *http.Request) {
	s.history.ClearAll()
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "cleared",
	})
}

type standaloneTTSRequest struct {
	Text        string `json:"text"`
	Voice       string `json:"voice"`
	AudioPrompt string `json:"audio_prompt"`
	Language    string `json:"language"`
}

// handleStandaloneTTS synthesizes one utterance outside any session, for
// voice auditioning and scripted announcements.
func (s *Server) handleStandaloneTTS(w http.ResponseWriter, r *http.Request) {
	var req standaloneTTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	synth := s.registry.NewTTS()
	audio, err := synth.Synthesize(ctx, req.Text, tts.VoiceConfig{
		Voice:       req.Voice,
		AudioPrompt: req.AudioPrompt,
		Language:    req.Language,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.ProviderErrors.WithLabelValues("tts", "preview").Inc()
		}
		respondError(w, http.StatusBadGateway, "synthesis_failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
