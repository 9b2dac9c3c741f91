package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dsqt99/can-bo-cong-an-hcc/internal/archive"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/config"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/history"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/httpapi"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/llm"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/observability"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/session"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/stt"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/tts"
	"github.com/dsqt99/can-bo-cong-an-hcc/internal/voice"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	archiveStore, err := archive.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("archive store init failed: %v", err)
	}
	defer archiveStore.Close()
	if cfg.DatabaseURL != "" {
		log.Printf("conversation archive: postgres")
	} else {
		log.Printf("conversation archive: in-memory")
	}

	// Each factory builds a fresh per-session client; connections never share
	// mutable collaborator configuration. Empty endpoints select mocks so the
	// relay runs end to end without external services.
	newLLM := func() llm.Client {
		if cfg.LLMAPIURL == "" {
			return llm.NewMockClient()
		}
		return llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:      cfg.LLMAPIURL,
			APIKey:       cfg.LLMAPIKey,
			Model:        cfg.LLMModel,
			GoogleAPIKey: cfg.GoogleAPIKey,
			Temperature:  cfg.LLMTemperature,
		})
	}
	newSTT := func() stt.Client {
		if cfg.STTWSURL == "" {
			return stt.NewMockClient("")
		}
		return stt.NewWebsocketClient(stt.WebsocketConfig{
			URL:      cfg.STTWSURL,
			Model:    cfg.STTModel,
			Language: cfg.STTLanguage,
		})
	}
	newTTS := func() tts.Client {
		if cfg.TTSAPIURL == "" {
			return tts.NewMockClient()
		}
		return tts.NewHTTPClient(tts.HTTPConfig{
			URL:          cfg.TTSAPIURL,
			APIKey:       cfg.TTSAPIKey,
			DefaultVoice: cfg.TTSVoice,
			Language:     cfg.TTSLanguage,
		})
	}
	log.Printf("collaborators: llm=%s stt=%s tts=%s",
		providerLabel(cfg.LLMAPIURL), providerLabel(cfg.STTWSURL), providerLabel(cfg.TTSAPIURL))

	hist := history.NewStore()
	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(info session.Info) {
		log.Printf("session %s: expired after inactivity", info.ID)
		hist.Clear(info.ID)
		metrics.SessionEvents.WithLabelValues("expired").Inc()
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	registry := &voice.Registry{
		NewLLM:   newLLM,
		NewSTT:   newSTT,
		NewTTS:   newTTS,
		History:  hist,
		Archive:  archiveStore,
		Metrics:  metrics,
		Defaults: cfg.SessionDefaults(),
	}

	api := httpapi.New(cfg, sessions, registry, hist, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()
	sessions.StartJanitor(runCtx, 5*time.Second)

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	runCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}

func providerLabel(endpoint string) string {
	if endpoint == "" {
		return "mock"
	}
	return "remote"
}
