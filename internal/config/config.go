package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const defaultAPIBase = "https://life-coo-realtime-backend.onrender.com"

// Config stores runtime configuration for the Life COO client.
type Config struct {
	Backend  BackendConfig
	Voice    VoiceConfig
	Recap    RecapConfig
	Deepgram DeepgramConfig
	Audio    AudioConfig
	Rules    RulesConfig
	Profile  ProfileConfig
	Airports AirportsConfig
	Log      LogConfig
	Debug    DebugConfig
}

type BackendConfig struct {
	BaseURL             string
	FirstAttemptTimeout time.Duration
	RetryTimeout        time.Duration
}

type VoiceConfig struct {
	SilenceDelay time.Duration
}

type RecapConfig struct {
	Enabled       bool
	RetryDelay    time.Duration
	RewindStep    time.Duration
	PlayerCommand string
}

type DeepgramConfig struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
}

type AudioConfig struct {
	RecorderCommand string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
	ChunkSize       int
}

type RulesConfig struct {
	Path           string
	IterationLimit int
}

type ProfileConfig struct {
	Store     string
	Path      string
	RedisAddr string
	RedisKey  string
}

type AirportsConfig struct {
	Source string
}

type LogConfig struct {
	Dir   string
	Level string
	JSON  bool
}

type DebugConfig struct {
	Addr string
}

// Load resolves configuration from environment variables and defaults.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}
	base := filepath.Join(home, ".config", "lifecoo")

	cfg := Config{
		Backend: BackendConfig{
			BaseURL:             strings.TrimRight(envOrDefault("LIFECOO_API_BASE", defaultAPIBase), "/"),
			FirstAttemptTimeout: envOrDefaultMillis("LIFECOO_FIRST_ATTEMPT_TIMEOUT_MS", 8000),
			RetryTimeout:        envOrDefaultMillis("LIFECOO_RETRY_TIMEOUT_MS", 15000),
		},
		Voice: VoiceConfig{
			SilenceDelay: envOrDefaultMillis("LIFECOO_SILENCE_MS", 2000),
		},
		Recap: RecapConfig{
			Enabled:       envOrDefaultBool("LIFECOO_PLAY_RECAP", true),
			RetryDelay:    envOrDefaultMillis("LIFECOO_RECAP_RETRY_DELAY_MS", 900),
			RewindStep:    time.Duration(envOrDefaultInt("LIFECOO_REWIND_SECONDS", 10)) * time.Second,
			PlayerCommand: envOrDefault("LIFECOO_PLAYER_COMMAND", "ffplay"),
		},
		Deepgram: DeepgramConfig{
			APIKey:      strings.TrimSpace(os.Getenv("DEEPGRAM_API_KEY")),
			APIBaseURL:  envOrDefault("DEEPGRAM_API_BASE", "https://api.deepgram.com/v1"),
			Model:       envOrDefault("DEEPGRAM_MODEL", "nova-2"),
			Language:    envOrDefault("DEEPGRAM_LANGUAGE", "en-US"),
			SmartFormat: envOrDefaultBool("DEEPGRAM_SMART_FORMAT", true),
		},
		Audio: AudioConfig{
			RecorderCommand: envOrDefault("LIFECOO_FFMPEG_COMMAND", "ffmpeg"),
			InputFormat:     envOrDefault("LIFECOO_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     envOrDefault("LIFECOO_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      envOrDefaultInt("LIFECOO_SAMPLE_RATE", 16000),
			Channels:        envOrDefaultInt("LIFECOO_CHANNELS", 1),
			ChunkSize:       envOrDefaultInt("LIFECOO_AUDIO_CHUNK_SIZE", 4096),
		},
		Rules: RulesConfig{
			Path:           envOrDefault("LIFECOO_RULES_FILE", filepath.Join(base, "phrasebook.rules")),
			IterationLimit: envOrDefaultInt("LIFECOO_RULE_ITERATION_LIMIT", 30),
		},
		Profile: ProfileConfig{
			Store:     strings.ToLower(envOrDefault("LIFECOO_PROFILE_STORE", "file")),
			Path:      envOrDefault("LIFECOO_PROFILE_PATH", filepath.Join(base, "lifeCooFamilyProfile_v1.json")),
			RedisAddr: envOrDefault("LIFECOO_REDIS_ADDR", "localhost:6379"),
			RedisKey:  envOrDefault("LIFECOO_REDIS_KEY", "lifeCooFamilyProfile_v1"),
		},
		Airports: AirportsConfig{
			Source: envOrDefault("LIFECOO_AIRPORTS_SOURCE", "airports.json"),
		},
		Log: LogConfig{
			Dir:   envOrDefault("LIFECOO_LOG_DIR", filepath.Join(base, "logs")),
			Level: strings.ToLower(envOrDefault("LIFECOO_LOG_LEVEL", "info")),
			JSON:  envOrDefaultBool("LIFECOO_LOG_JSON", false),
		},
		Debug: DebugConfig{
			Addr: strings.TrimSpace(os.Getenv("LIFECOO_DEBUG_ADDR")),
		},
	}

	if cfg.Backend.FirstAttemptTimeout <= 0 {
		cfg.Backend.FirstAttemptTimeout = 8 * time.Second
	}
	if cfg.Backend.RetryTimeout <= 0 {
		cfg.Backend.RetryTimeout = 15 * time.Second
	}
	if cfg.Voice.SilenceDelay <= 0 {
		cfg.Voice.SilenceDelay = 2 * time.Second
	}
	if cfg.Recap.RetryDelay < 0 {
		cfg.Recap.RetryDelay = 900 * time.Millisecond
	}
	if cfg.Recap.RewindStep <= 0 {
		cfg.Recap.RewindStep = 10 * time.Second
	}
	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Audio.ChunkSize < 256 {
		cfg.Audio.ChunkSize = 4096
	}
	if cfg.Rules.IterationLimit <= 0 {
		cfg.Rules.IterationLimit = 30
	}

	return cfg, nil
}

func envOrDefault(key string, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDefaultMillis(key string, fallback int) time.Duration {
	return time.Duration(envOrDefaultInt(key, fallback)) * time.Millisecond
}

func envOrDefaultBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
