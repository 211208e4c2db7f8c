package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"lifecoo/internal/airports"
	"lifecoo/internal/audio"
	"lifecoo/internal/backend"
	"lifecoo/internal/config"
	"lifecoo/internal/debugsrv"
	"lifecoo/internal/logging"
	"lifecoo/internal/observability"
	"lifecoo/internal/phrasebook"
	"lifecoo/internal/ports"
	"lifecoo/internal/profile"
	"lifecoo/internal/providers/deepgram"
	"lifecoo/internal/usecase"
)

const airportsTimeout = 10 * time.Second

// Services is the assembled runtime graph.
type Services struct {
	Coordinator *usecase.Coordinator
	Airports    *airports.Directory
	Config      config.Config
	Logger      *slog.Logger
	Metrics     *observability.Metrics
	Debug       *debugsrv.Server

	profiles  ports.ProfileStore
	logCloser io.Closer
}

// Build wires all dependencies for the current runtime.
func Build(eventSink ports.EventSink) (Services, error) {
	cfg, err := config.Load()
	if err != nil {
		return Services{}, err
	}

	logger, logCloser := logging.New(logging.Options{
		Dir:   cfg.Log.Dir,
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
	})
	metrics := observability.NewMetrics("lifecoo")

	book, err := phrasebook.Load(cfg.Rules.Path, cfg.Rules.IterationLimit)
	if err != nil {
		_ = logCloser.Close()
		return Services{}, err
	}

	profiles, err := openProfileStore(cfg.Profile)
	if err != nil {
		_ = logCloser.Close()
		return Services{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), airportsTimeout)
	directory := airports.Load(ctx, cfg.Airports.Source, &http.Client{Timeout: airportsTimeout}, logger)
	cancel()

	recognizer := deepgram.NewRecognizer(deepgram.Config{
		APIKey:      cfg.Deepgram.APIKey,
		APIBaseURL:  cfg.Deepgram.APIBaseURL,
		Model:       cfg.Deepgram.Model,
		Language:    cfg.Deepgram.Language,
		SmartFormat: cfg.Deepgram.SmartFormat,
		Logger:      logger,
	})
	if !recognizer.Configured() {
		logger.Warn("DEEPGRAM_API_KEY is not set; voice capture is unavailable")
	}

	voice := usecase.NewVoiceCapture(
		audio.NewMicrophone(cfg.Audio.RecorderCommand),
		recognizer,
		eventSink,
		logger,
		usecase.VoiceConfig{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
			},
			Streaming: ports.StreamingConfig{
				SampleRate:     cfg.Audio.SampleRate,
				Channels:       cfg.Audio.Channels,
				Encoding:       "linear16",
				InterimResults: true,
			},
			ChunkSize:    cfg.Audio.ChunkSize,
			SilenceDelay: cfg.Voice.SilenceDelay,
		},
	)

	coordinator := usecase.NewCoordinator(usecase.Dependencies{
		Backend: backend.NewClient(backend.Config{
			BaseURL:             cfg.Backend.BaseURL,
			FirstAttemptTimeout: cfg.Backend.FirstAttemptTimeout,
			RetryTimeout:        cfg.Backend.RetryTimeout,
			Logger:              logger,
			Metrics:             metrics,
		}),
		Player:     audio.NewPlayer(cfg.Recap.PlayerCommand, "", logger),
		Profiles:   profiles,
		Phrasebook: book,
		Voice:      voice,
		Events:     eventSink,
		Logger:     logger,
		Metrics:    metrics,
	}, usecase.Config{
		RecapEnabled:    cfg.Recap.Enabled,
		RecapRetryDelay: cfg.Recap.RetryDelay,
		RewindStep:      cfg.Recap.RewindStep,
	})

	services := Services{
		Coordinator: coordinator,
		Airports:    directory,
		Config:      cfg,
		Logger:      logger,
		Metrics:     metrics,
		profiles:    profiles,
		logCloser:   logCloser,
	}

	if cfg.Debug.Addr != "" {
		debug := debugsrv.New(cfg.Debug.Addr, coordinator, metrics, logger)
		if err := debug.Start(); err != nil {
			logger.Warn("debug server disabled", "error", err)
		} else {
			services.Debug = debug
		}
	}

	logger.Info("lifecoo ready",
		"backend", cfg.Backend.BaseURL,
		"profile_store", cfg.Profile.Store,
		"phrasebook_rules", book.Len(),
		"airports", directory.Len(),
	)
	return services, nil
}

// Close stops background work and releases every adapter.
func (s Services) Close() error {
	var errs []error
	if s.Debug != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		errs = append(errs, s.Debug.Shutdown(ctx))
		cancel()
	}
	if s.Coordinator != nil {
		errs = append(errs, s.Coordinator.Close())
	}
	if s.profiles != nil {
		errs = append(errs, s.profiles.Close())
	}
	if s.logCloser != nil {
		errs = append(errs, s.logCloser.Close())
	}
	return errors.Join(errs...)
}

func openProfileStore(cfg config.ProfileConfig) (ports.ProfileStore, error) {
	storeType := profile.StoreType(cfg.Store)
	switch storeType {
	case profile.StoreTypeRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		store, err := profile.NewStore(storeType, profile.WithRedisClient(client), profile.WithKey(cfg.RedisKey))
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("open profile store: %w", err)
		}
		return store, nil
	default:
		store, err := profile.NewStore(storeType, profile.WithPath(cfg.Path))
		if err != nil {
			return nil, fmt.Errorf("open profile store: %w", err)
		}
		return store, nil
	}
}
