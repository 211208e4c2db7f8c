package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LIFECOO_API_BASE", "")
	t.Setenv("LIFECOO_PROFILE_STORE", "")
	t.Setenv("LIFECOO_DEBUG_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Backend.BaseURL != defaultAPIBase {
		t.Fatalf("unexpected base url: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.FirstAttemptTimeout != 8*time.Second || cfg.Backend.RetryTimeout != 15*time.Second {
		t.Fatalf("unexpected timeouts: %+v", cfg.Backend)
	}
	if cfg.Voice.SilenceDelay != 2*time.Second {
		t.Fatalf("unexpected silence delay: %s", cfg.Voice.SilenceDelay)
	}
	if !cfg.Recap.Enabled || cfg.Recap.RetryDelay != 900*time.Millisecond || cfg.Recap.RewindStep != 10*time.Second {
		t.Fatalf("unexpected recap config: %+v", cfg.Recap)
	}
	if cfg.Profile.Store != "file" {
		t.Fatalf("unexpected profile store: %q", cfg.Profile.Store)
	}
	wantProfile := filepath.Join(home, ".config", "lifecoo", "lifeCooFamilyProfile_v1.json")
	if cfg.Profile.Path != wantProfile {
		t.Fatalf("unexpected profile path: %q", cfg.Profile.Path)
	}
	if cfg.Profile.RedisKey != "lifeCooFamilyProfile_v1" {
		t.Fatalf("unexpected redis key: %q", cfg.Profile.RedisKey)
	}
	if cfg.Debug.Addr != "" {
		t.Fatalf("expected debug server disabled, got %q", cfg.Debug.Addr)
	}
}

func TestLoadRespectsOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LIFECOO_API_BASE", "http://localhost:9000/")
	t.Setenv("LIFECOO_FIRST_ATTEMPT_TIMEOUT_MS", "100")
	t.Setenv("LIFECOO_RETRY_TIMEOUT_MS", "300")
	t.Setenv("LIFECOO_SILENCE_MS", "2500")
	t.Setenv("LIFECOO_PLAY_RECAP", "off")
	t.Setenv("LIFECOO_RECAP_RETRY_DELAY_MS", "0")
	t.Setenv("LIFECOO_REWIND_SECONDS", "5")
	t.Setenv("LIFECOO_PLAYER_COMMAND", "my-ffplay")
	t.Setenv("LIFECOO_PROFILE_STORE", "Redis")
	t.Setenv("LIFECOO_REDIS_ADDR", "cache:6380")
	t.Setenv("LIFECOO_AIRPORTS_SOURCE", "https://example.com/airports.json")
	t.Setenv("LIFECOO_LOG_JSON", "yes")
	t.Setenv("LIFECOO_DEBUG_ADDR", "127.0.0.1:7070")
	t.Setenv("DEEPGRAM_LANGUAGE", "en-GB")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:9000" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.FirstAttemptTimeout != 100*time.Millisecond || cfg.Backend.RetryTimeout != 300*time.Millisecond {
		t.Fatalf("unexpected timeouts: %+v", cfg.Backend)
	}
	if cfg.Voice.SilenceDelay != 2500*time.Millisecond {
		t.Fatalf("unexpected silence delay: %s", cfg.Voice.SilenceDelay)
	}
	if cfg.Recap.Enabled || cfg.Recap.RetryDelay != 0 || cfg.Recap.RewindStep != 5*time.Second || cfg.Recap.PlayerCommand != "my-ffplay" {
		t.Fatalf("unexpected recap config: %+v", cfg.Recap)
	}
	if cfg.Profile.Store != "redis" || cfg.Profile.RedisAddr != "cache:6380" {
		t.Fatalf("unexpected profile config: %+v", cfg.Profile)
	}
	if cfg.Airports.Source != "https://example.com/airports.json" {
		t.Fatalf("unexpected airports source: %q", cfg.Airports.Source)
	}
	if !cfg.Log.JSON || cfg.Debug.Addr != "127.0.0.1:7070" || cfg.Deepgram.Language != "en-GB" {
		t.Fatalf("unexpected log/debug/deepgram config: %+v %+v %+v", cfg.Log, cfg.Debug, cfg.Deepgram)
	}
}

func TestLoadInvalidNumericValuesFallback(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LIFECOO_FIRST_ATTEMPT_TIMEOUT_MS", "bad")
	t.Setenv("LIFECOO_RETRY_TIMEOUT_MS", "-5")
	t.Setenv("LIFECOO_SILENCE_MS", "0")
	t.Setenv("LIFECOO_REWIND_SECONDS", "nope")
	t.Setenv("LIFECOO_SAMPLE_RATE", "bad")
	t.Setenv("LIFECOO_AUDIO_CHUNK_SIZE", "5")
	t.Setenv("LIFECOO_RULE_ITERATION_LIMIT", "0")
	t.Setenv("LIFECOO_PLAY_RECAP", "not-bool")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Backend.FirstAttemptTimeout != 8*time.Second || cfg.Backend.RetryTimeout != 15*time.Second {
		t.Fatalf("expected default timeouts, got %+v", cfg.Backend)
	}
	if cfg.Voice.SilenceDelay != 2*time.Second {
		t.Fatalf("expected default silence delay, got %s", cfg.Voice.SilenceDelay)
	}
	if cfg.Recap.RewindStep != 10*time.Second || !cfg.Recap.Enabled {
		t.Fatalf("unexpected recap fallback: %+v", cfg.Recap)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.ChunkSize != 4096 {
		t.Fatalf("unexpected audio fallback: %+v", cfg.Audio)
	}
	if cfg.Rules.IterationLimit != 30 {
		t.Fatalf("expected default iteration limit, got %d", cfg.Rules.IterationLimit)
	}
}
