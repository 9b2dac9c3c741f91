package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":8080")
	}
	if cfg.LLMAPIURL != "" {
		t.Fatalf("LLMAPIURL = %q, want empty default (mock client)", cfg.LLMAPIURL)
	}
	if cfg.STTLanguage != "vi" || cfg.TTSLanguage != "vi" {
		t.Fatalf("languages = %q/%q, want vi/vi", cfg.STTLanguage, cfg.TTSLanguage)
	}
	if cfg.SystemPrompt != DefaultSystemPrompt {
		t.Fatalf("SystemPrompt = %q, want default", cfg.SystemPrompt)
	}
	if cfg.SessionInactivityTimeout != 5*time.Minute {
		t.Fatalf("SessionInactivityTimeout = %v, want 5m", cfg.SessionInactivityTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_BIND_ADDR", ":9090")
	t.Setenv("LLM_API_URL", "http://llm.local/v1")
	t.Setenv("AI_MODEL", "gemini-2.0-flash")
	t.Setenv("LLM_TEMPERATURE", "0.2")
	t.Setenv("APP_SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":9090" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.LLMAPIURL != "http://llm.local/v1" || cfg.LLMModel != "gemini-2.0-flash" {
		t.Fatalf("llm config = %q %q", cfg.LLMAPIURL, cfg.LLMModel)
	}
	if cfg.LLMTemperature != 0.2 {
		t.Fatalf("LLMTemperature = %v", cfg.LLMTemperature)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Fatalf("ShutdownTimeout = %v", cfg.ShutdownTimeout)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("LLM_TEMPERATURE", "3.5")
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted out-of-range temperature")
	}

	setCoreEnvEmpty(t)
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "1s")
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted too-short inactivity timeout")
	}

	setCoreEnvEmpty(t)
	t.Setenv("APP_ALLOW_ANY_ORIGIN", "maybe")
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted invalid bool")
	}
}

func TestSessionDefaults(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("AI_MODEL", "qwen3:14b")
	t.Setenv("TTS_VOICE", "ngoc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defaults := cfg.SessionDefaults()
	if defaults["aiModel"] != "qwen3:14b" {
		t.Fatalf("aiModel = %q", defaults["aiModel"])
	}
	if defaults["ttsVoice"] != "ngoc" {
		t.Fatalf("ttsVoice = %q", defaults["ttsVoice"])
	}
	if defaults["systemPrompt"] == "" {
		t.Fatal("systemPrompt default missing")
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_INACTIVITY_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"LLM_API_URL",
		"LLM_API_KEY",
		"AI_MODEL",
		"LLM_TEMPERATURE",
		"GOOGLE_API_KEY",
		"STT_WS_URL",
		"STT_MODEL",
		"STT_LANGUAGE",
		"TTS_API_URL",
		"TTS_API_KEY",
		"TTS_VOICE",
		"TTS_AUDIO_PROMPT",
		"TTS_LANGUAGE",
		"SYSTEM_PROMPT",
		"DATABASE_URL",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
