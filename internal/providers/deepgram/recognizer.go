// Package deepgram streams microphone audio to Deepgram's live transcription
// websocket and turns its results into transcript events.
package deepgram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"

	"lifecoo/internal/domain"
	"lifecoo/internal/logging"
	"lifecoo/internal/ports"
)

const defaultAPIBase = "https://api.deepgram.com/v1"

// ErrMissingAPIKey means recognition cannot start without credentials.
var ErrMissingAPIKey = errors.New("DEEPGRAM_API_KEY is not configured")

// Config controls Deepgram websocket settings.
type Config struct {
	APIKey      string
	APIBaseURL  string
	Model       string
	Language    string
	SmartFormat bool
	Logger      *slog.Logger
}

// Recognizer implements ports.TranscriptionProvider.
type Recognizer struct {
	cfg    Config
	dialer *websocket.Dialer
	logger *slog.Logger
}

func NewRecognizer(cfg Config) *Recognizer {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBase
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	return &Recognizer{cfg: cfg, dialer: websocket.DefaultDialer, logger: logging.OrDiscard(cfg.Logger)}
}

// Configured reports whether an API key is present.
func (r *Recognizer) Configured() bool {
	return strings.TrimSpace(r.cfg.APIKey) != ""
}

func (r *Recognizer) StartStreaming(ctx context.Context, cfg ports.StreamingConfig) (ports.StreamingSession, error) {
	if !r.Configured() {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnsupported, ErrMissingAPIKey)
	}

	listenURL, err := listenEndpoint(r.cfg, cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+r.cfg.APIKey)

	conn, _, err := r.dialer.DialContext(ctx, listenURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Deepgram websocket: %w", err)
	}
	r.logger.Debug("deepgram stream opened", "model", r.cfg.Model, "language", r.cfg.Language)

	return openStream(ctx, conn, r.logger), nil
}

func listenEndpoint(providerCfg Config, streamCfg ports.StreamingConfig) (string, error) {
	base := strings.TrimSpace(providerCfg.APIBaseURL)
	if base == "" {
		base = defaultAPIBase
	}
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}

	endpoint, err := url.Parse(strings.TrimRight(base, "/") + "/listen")
	if err != nil {
		return "", fmt.Errorf("invalid Deepgram API base URL: %w", err)
	}

	if streamCfg.Encoding == "" {
		streamCfg.Encoding = "linear16"
	}
	if streamCfg.SampleRate <= 0 {
		streamCfg.SampleRate = 16000
	}
	if streamCfg.Channels <= 0 {
		streamCfg.Channels = 1
	}

	query := endpoint.Query()
	query.Set("model", providerCfg.Model)
	query.Set("encoding", streamCfg.Encoding)
	query.Set("sample_rate", strconv.Itoa(streamCfg.SampleRate))
	query.Set("channels", strconv.Itoa(streamCfg.Channels))
	query.Set("interim_results", strconv.FormatBool(streamCfg.InterimResults))
	query.Set("smart_format", strconv.FormatBool(providerCfg.SmartFormat))
	if providerCfg.Language != "" {
		query.Set("language", providerCfg.Language)
	}
	endpoint.RawQuery = query.Encode()
	return endpoint.String(), nil
}
