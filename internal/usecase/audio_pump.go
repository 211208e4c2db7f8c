package usecase

import (
	"errors"
	"fmt"
	"io"
	"time"

	"lifecoo/internal/domain"
	"lifecoo/internal/ports"
)

// pumpAudio forwards microphone chunks to the recognition stream until the
// capture ends. Failures are reported unless ending() says the session is
// already shutting down.
func pumpAudio(
	audio ports.AudioSession,
	stream ports.StreamingSession,
	chunkSize int,
	ending func() bool,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	if chunkSize < 256 {
		chunkSize = 4096
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := audio.Read(buf)
		if n > 0 {
			if sendErr := stream.SendAudio(buf[:n]); sendErr != nil {
				if !ending() {
					events.SessionError(domain.ErrorCodeAudioStream, fmt.Sprintf("failed to stream audio: %v", sendErr))
				}
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !ending() {
				events.SessionError(domain.ErrorCodeAudioStream, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}

func waitForStream(session ports.StreamingSession, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		_ = session.Close()
		return <-done
	}
}
