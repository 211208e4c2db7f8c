package ports

import (
	"context"
	"io"
	"time"

	"lifecoo/internal/domain"
)

// AudioConfig describes how the microphone should be captured.
type AudioConfig struct {
	SampleRate  int
	Channels    int
	InputFormat string
	InputDevice string
}

// AudioSession is a live capture session.
type AudioSession interface {
	io.ReadCloser
	Stop() error
}

// AudioCapture creates microphone capture sessions.
type AudioCapture interface {
	Start(ctx context.Context, cfg AudioConfig) (AudioSession, error)
}

// StreamingConfig describes provider-agnostic streaming settings.
type StreamingConfig struct {
	SampleRate     int
	Channels       int
	Encoding       string
	InterimResults bool
}

// StreamingSession is an active recognition websocket session.
type StreamingSession interface {
	SendAudio(chunk []byte) error
	CloseSend() error
	Events() <-chan domain.TranscriptEvent
	Wait() error
	Close() error
}

// TranscriptionProvider starts streaming recognition sessions.
type TranscriptionProvider interface {
	StartStreaming(ctx context.Context, cfg StreamingConfig) (StreamingSession, error)
}

// RetryFunc is told when a backend call is about to be retried.
type RetryFunc func(endpoint string, cause error)

// Backend is the Life COO remote service.
type Backend interface {
	Interpret(ctx context.Context, text string, onRetry RetryFunc) (domain.InterpretResult, error)
	Optimize(ctx context.Context, req domain.TripRequest, onRetry RetryFunc) (domain.OptimizeResult, error)
	RecapAudio(ctx context.Context, result domain.OptimizeResult) (domain.AudioClip, error)
}

// Playback is one playing audio clip.
type Playback interface {
	// Done is closed once playback has finished or been stopped.
	Done() <-chan struct{}
	// Err reports why playback ended; nil after a clean finish or Stop.
	Err() error
	Rewind(d time.Duration) error
	Stop() error
}

// AudioPlayer plays synthesized clips.
type AudioPlayer interface {
	Play(ctx context.Context, clip domain.AudioClip) (Playback, error)
}

// ProfileStore persists the single saved trip profile.
type ProfileStore interface {
	Load(ctx context.Context) (domain.TripRequest, error)
	Save(ctx context.Context, profile domain.TripRequest) error
	Close() error
}

// TranscriptNormalizer rewrites finished utterances before they are acted on.
type TranscriptNormalizer interface {
	Apply(text string) (string, error)
}

// EventSink emits state and results to the UI.
type EventSink interface {
	StatusChanged(status domain.Status)
	PartialTranscript(text string)
	FormChanged(form domain.TripRequest)
	ResultRendered(view domain.ResultView)
	RecapStarted(summary string)
	SessionError(code domain.ErrorCode, detail string)
}
