package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSystemPrompt instructs the model to lead every reply with a
// bracketed mood tag, which the relay strips before display and synthesis.
const DefaultSystemPrompt = "Bạn là trợ lý ảo hỗ trợ cán bộ công an tại bộ phận một cửa. " +
	"Trả lời ngắn gọn, lịch sự, bằng tiếng Việt. " +
	"Luôn bắt đầu câu trả lời bằng một nhãn cảm xúc trong ngoặc vuông, " +
	"ví dụ [NEUTRAL], [HAPPY], [SAD], rồi mới đến nội dung."

// Config contains all runtime settings for the voice relay.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	LLMAPIURL      string
	LLMAPIKey      string
	LLMModel       string
	LLMTemperature float64
	GoogleAPIKey   string

	STTWSURL    string
	STTModel    string
	STTLanguage string

	TTSAPIURL      string
	TTSAPIKey      string
	TTSVoice       string
	TTSAudioPrompt string
	TTSLanguage    string

	SystemPrompt string

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults. Collaborator
// endpoints left empty select the built-in mock clients, which keeps local
// development runnable without any external service.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "voicerelay"),
		AllowAnyOrigin:   false,

		LLMAPIURL:      stringsTrimSpace("LLM_API_URL"),
		LLMAPIKey:      stringsTrimSpace("LLM_API_KEY"),
		LLMModel:       envOrDefault("AI_MODEL", "qwen3:8b"),
		LLMTemperature: 0.7,
		GoogleAPIKey:   stringsTrimSpace("GOOGLE_API_KEY"),

		STTWSURL:    stringsTrimSpace("STT_WS_URL"),
		STTModel:    envOrDefault("STT_MODEL", "whisper-base"),
		STTLanguage: envOrDefault("STT_LANGUAGE", "vi"),

		TTSAPIURL:      stringsTrimSpace("TTS_API_URL"),
		TTSAPIKey:      stringsTrimSpace("TTS_API_KEY"),
		TTSVoice:       envOrDefault("TTS_VOICE", "female-1"),
		TTSAudioPrompt: stringsTrimSpace("TTS_AUDIO_PROMPT"),
		TTSLanguage:    envOrDefault("TTS_LANGUAGE", "vi"),

		SystemPrompt: envOrDefault("SYSTEM_PROMPT", DefaultSystemPrompt),

		DatabaseURL: stringsTrimSpace("DATABASE_URL"),

		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 5 * time.Minute,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.LLMTemperature, err = floatFromEnv("LLM_TEMPERATURE", cfg.LLMTemperature)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.LLMTemperature < 0 || cfg.LLMTemperature > 2 {
		return Config{}, fmt.Errorf("LLM_TEMPERATURE must be in [0, 2]")
	}
	if strings.TrimSpace(cfg.BindAddr) == "" {
		return Config{}, fmt.Errorf("APP_BIND_ADDR must not be empty")
	}

	return cfg, nil
}

// SessionDefaults is the settings map a new session starts from.
func (c Config) SessionDefaults() map[string]string {
	return map[string]string{
		"systemPrompt":   c.SystemPrompt,
		"aiModel":        c.LLMModel,
		"sttModel":       c.STTModel,
		"ttsVoice":       c.TTSVoice,
		"ttsAudioPrompt": c.TTSAudioPrompt,
		"ttsLanguage":    c.TTSLanguage,
	}
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
