package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"lifecoo/internal/domain"
	"lifecoo/internal/logging"
	"lifecoo/internal/ports"
)

var ErrNoActiveCapture = errors.New("no active voice capture")

// VoiceConfig controls microphone capture and recognition.
type VoiceConfig struct {
	Audio         ports.AudioConfig
	Streaming     ports.StreamingConfig
	ChunkSize     int
	SilenceDelay  time.Duration
	StreamTimeout time.Duration
}

// Utterance is what one capture session produced. Discarded sessions were
// replaced or aborted and carry no text.
type Utterance struct {
	Text      string
	Err       error
	Discarded bool
}

// VoiceCapture runs one continuous capture session at a time, streaming
// microphone audio to the recognizer and stopping itself after a quiet spell.
type VoiceCapture struct {
	audio    ports.AudioCapture
	provider ports.TranscriptionProvider
	events   ports.EventSink
	logger   *slog.Logger
	cfg      VoiceConfig

	mu      sync.Mutex
	current *captureSession
}

func NewVoiceCapture(
	audio ports.AudioCapture,
	provider ports.TranscriptionProvider,
	events ports.EventSink,
	logger *slog.Logger,
	cfg VoiceConfig,
) *VoiceCapture {
	if cfg.ChunkSize < 256 {
		cfg.ChunkSize = 4096
	}
	if cfg.SilenceDelay <= 0 {
		cfg.SilenceDelay = 2 * time.Second
	}
	if cfg.StreamTimeout <= 0 {
		cfg.StreamTimeout = 4 * time.Second
	}
	cfg.Streaming.InterimResults = true
	return &VoiceCapture{
		audio:    audio,
		provider: provider,
		events:   events,
		logger:   logging.OrDiscard(logger),
		cfg:      cfg,
	}
}

// Start begins a capture session, discarding any session already running.
// finished is called exactly once when a started session ends; it is never
// called if Start returns an error.
func (v *VoiceCapture) Start(ctx context.Context, finished func(Utterance)) error {
	if v.audio == nil || v.provider == nil {
		return domain.ErrUnsupported
	}

	// Aborting waits for the previous session's finished callback, which may
	// itself start a session; keep aborting until none is left.
	for {
		v.mu.Lock()
		previous := v.current
		v.current = nil
		v.mu.Unlock()
		if previous == nil {
			break
		}
		previous.abort()
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	stream, err := v.provider.StartStreaming(sessionCtx, v.cfg.Streaming)
	if err != nil {
		cancel()
		return err
	}
	audio, err := v.audio.Start(sessionCtx, v.cfg.Audio)
	if err != nil {
		_ = stream.Close()
		cancel()
		return err
	}

	s := &captureSession{
		owner:      v,
		cancel:     cancel,
		audio:      audio,
		stream:     stream,
		finished:   finished,
		eventsDone: make(chan struct{}),
		audioDone:  make(chan struct{}),
		ended:      make(chan struct{}),
	}

	s.silence = time.AfterFunc(v.cfg.SilenceDelay, func() {
		v.logger.Debug("voice capture stopped after silence")
		s.finish(false)
	})

	v.mu.Lock()
	stale := v.current
	v.current = s
	v.mu.Unlock()
	if stale != nil {
		stale.abort()
	}

	go s.consume(v.events, v.cfg.SilenceDelay)
	go pumpAudio(audio, stream, v.cfg.ChunkSize, s.ending.Load, v.events, s.audioDone)

	return nil
}

// Stop ends the current session; its utterance is delivered asynchronously.
func (v *VoiceCapture) Stop() error {
	v.mu.Lock()
	s := v.current
	v.mu.Unlock()
	if s == nil {
		return ErrNoActiveCapture
	}
	s.finish(false)
	return nil
}

// Abort discards the current session and waits for it to shut down.
func (v *VoiceCapture) Abort() {
	v.mu.Lock()
	s := v.current
	v.current = nil
	v.mu.Unlock()
	if s != nil {
		s.abort()
	}
}

// Active reports whether a session is running.
func (v *VoiceCapture) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current != nil
}

func (v *VoiceCapture) release(s *captureSession) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.current == s {
		v.current = nil
	}
}

type captureSession struct {
	owner    *VoiceCapture
	cancel   context.CancelFunc
	audio    ports.AudioSession
	stream   ports.StreamingSession
	silence  *time.Timer
	finished func(Utterance)

	transcript transcriptAccumulator
	ending     atomic.Bool
	finishOnce sync.Once

	eventsDone chan struct{}
	audioDone  chan struct{}
	ended      chan struct{}
}

// consume surfaces the running transcript and restarts the silence timer on
// every recognition event. A closed event stream ends the session.
func (s *captureSession) consume(events ports.EventSink, silenceDelay time.Duration) {
	for event := range s.stream.Events() {
		s.silence.Reset(silenceDelay)
		if combined := s.transcript.Add(event); combined != "" {
			events.PartialTranscript(combined)
		}
	}
	close(s.eventsDone)
	s.finish(false)
}

func (s *captureSession) finish(discard bool) {
	s.finishOnce.Do(func() {
		s.ending.Store(true)
		go s.shutdown(discard)
	})
}

func (s *captureSession) abort() {
	s.finish(true)
	<-s.ended
}

func (s *captureSession) shutdown(discard bool) {
	defer close(s.ended)
	s.silence.Stop()

	var streamErr error
	if discard {
		s.cancel()
		_ = s.audio.Stop()
		_ = s.stream.Close()
	} else {
		if err := s.audio.Stop(); err != nil {
			s.owner.logger.Warn("failed to stop audio capture cleanly", "error", err)
		}
		_ = s.stream.CloseSend()
		streamErr = waitForStream(s.stream, s.owner.cfg.StreamTimeout)
	}
	<-s.eventsDone
	<-s.audioDone
	s.cancel()
	s.owner.release(s)

	if discard {
		s.finished(Utterance{Discarded: true})
		return
	}
	s.finished(Utterance{Text: s.transcript.Text(), Err: streamErr})
}
