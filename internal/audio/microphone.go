package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"lifecoo/internal/ports"
)

const captureWarmup = 250 * time.Millisecond

// Microphone streams 16-bit little-endian PCM from an ffmpeg input device.
type Microphone struct {
	command string
}

func NewMicrophone(command string) *Microphone {
	if command == "" {
		command = "ffmpeg"
	}
	return &Microphone{command: command}
}

func (m *Microphone) Start(ctx context.Context, cfg ports.AudioConfig) (ports.AudioSession, error) {
	cmd := exec.CommandContext(ctx, m.command, captureArgs(cfg)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}

	proc, err := spawn(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	if proc.exitedWithin(captureWarmup) {
		if err := proc.failure(); err != nil {
			return nil, fmt.Errorf("ffmpeg exited before capture started: %w", err)
		}
		return nil, errors.New("ffmpeg exited before capture started")
	}

	return &micSession{stdout: stdout, proc: proc}, nil
}

func captureArgs(cfg ports.AudioConfig) []string {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}

	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
		"-f", "s16le",
		"-",
	}
}

type micSession struct {
	stdout io.ReadCloser
	proc   *child

	once sync.Once
	err  error
}

func (s *micSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *micSession) Close() error {
	return s.Stop()
}

func (s *micSession) Stop() error {
	s.once.Do(func() {
		s.err = s.proc.terminate()
		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && s.err == nil {
			s.err = closeErr
		}
		if s.err != nil {
			if detail := s.proc.stderrText(); detail != "" {
				s.err = fmt.Errorf("%w: %s", s.err, detail)
			}
		}
	})
	return s.err
}
