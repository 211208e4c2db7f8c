package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"lifecoo/internal/domain"
	"lifecoo/internal/logging"
	"lifecoo/internal/ports"
)

// ErrPlaybackEnded is returned when controlling a clip that already finished.
var ErrPlaybackEnded = errors.New("playback already ended")

// Player plays recap clips through ffplay. Seeking is done by restarting
// the player at the new offset.
type Player struct {
	command string
	tempDir string
	logger  *slog.Logger
}

func NewPlayer(command string, tempDir string, logger *slog.Logger) *Player {
	if command == "" {
		command = "ffplay"
	}
	return &Player{command: command, tempDir: tempDir, logger: logging.OrDiscard(logger)}
}

func (p *Player) Play(ctx context.Context, clip domain.AudioClip) (ports.Playback, error) {
	if len(clip.Data) == 0 {
		return nil, errors.New("recap clip is empty")
	}

	file, err := os.CreateTemp(p.tempDir, "lifecoo-recap-*"+clipExtension(clip.ContentType))
	if err != nil {
		return nil, fmt.Errorf("failed to create recap file: %w", err)
	}
	path := file.Name()
	if _, err := file.Write(clip.Data); err != nil {
		file.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to write recap file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write recap file: %w", err)
	}

	pb := &playback{
		player: p,
		path:   path,
		done:   make(chan struct{}),
		now:    time.Now,
	}

	pb.mu.Lock()
	err = pb.startLocked(0)
	pb.mu.Unlock()
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	go func() {
		select {
		case <-ctx.Done():
			_ = pb.Stop()
		case <-pb.done:
		}
	}()

	return pb, nil
}

func (p *Player) args(path string, offset time.Duration) []string {
	args := []string{"-nodisp", "-autoexit", "-hide_banner", "-loglevel", "error"}
	if offset > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", offset.Seconds()))
	}
	return append(args, path)
}

type playback struct {
	player *Player
	path   string
	now    func() time.Time

	mu      sync.Mutex
	current *child
	offset  time.Duration
	started time.Time
	ended   bool
	err     error
	done    chan struct{}
}

func (pb *playback) Done() <-chan struct{} {
	return pb.done
}

func (pb *playback) Err() error {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	return pb.err
}

// Rewind restarts the clip d earlier than the current position, clamped to the start.
func (pb *playback) Rewind(d time.Duration) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	if pb.ended {
		return ErrPlaybackEnded
	}

	target := rewindOffset(pb.offset, pb.now().Sub(pb.started), d)
	previous := pb.current
	if err := pb.startLocked(target); err != nil {
		pb.finishLocked(err)
		go previous.terminate()
		return err
	}
	go previous.terminate()

	pb.player.logger.Debug("recap rewound", "offset", target)
	return nil
}

func (pb *playback) Stop() error {
	pb.mu.Lock()
	if pb.ended {
		pb.mu.Unlock()
		return nil
	}
	proc := pb.current
	pb.finishLocked(nil)
	pb.mu.Unlock()

	return proc.terminate()
}

func (pb *playback) startLocked(offset time.Duration) error {
	proc, err := spawn(exec.Command(pb.player.command, pb.player.args(pb.path, offset)...))
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", pb.player.command, err)
	}
	pb.current = proc
	pb.offset = offset
	pb.started = pb.now()

	go pb.watch(proc)
	return nil
}

// watch ends the playback when the active player exits on its own.
func (pb *playback) watch(proc *child) {
	<-proc.exited

	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.ended || pb.current != proc {
		return
	}
	pb.finishLocked(proc.failure())
}

func (pb *playback) finishLocked(err error) {
	pb.ended = true
	pb.err = err
	close(pb.done)
	if removeErr := os.Remove(pb.path); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		pb.player.logger.Warn("failed to remove recap file", "path", pb.path, "error", removeErr)
	}
}

func rewindOffset(offset, elapsed, step time.Duration) time.Duration {
	if elapsed < 0 {
		elapsed = 0
	}
	target := offset + elapsed - step
	if target < 0 {
		return 0
	}
	return target
}

func clipExtension(contentType string) string {
	mediaType, _, _ := strings.Cut(strings.ToLower(contentType), ";")
	switch strings.TrimSpace(mediaType) {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return ".wav"
	case "audio/ogg", "audio/opus":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	case "audio/aac":
		return ".aac"
	default:
		return ".mp3"
	}
}
