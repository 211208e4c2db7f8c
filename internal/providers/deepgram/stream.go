package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"lifecoo/internal/domain"
)

var (
	errSendClosed   = errors.New("audio stream is already closed")
	errStreamClosed = errors.New("recognition stream closed")
)

var closeStreamMessage = []byte(`{"type":"CloseStream"}`)

// stream is one live recognition websocket. Audio goes out through a
// single writer goroutine; results come back through a single reader.
type stream struct {
	conn   *websocket.Conn
	logger *slog.Logger

	events chan domain.TranscriptEvent
	audio  chan []byte
	done   chan struct{}

	workers sync.WaitGroup

	sendMu     sync.Mutex
	sendClosed bool

	errMu sync.Mutex
	err   error

	closeOnce sync.Once
}

func openStream(ctx context.Context, conn *websocket.Conn, logger *slog.Logger) *stream {
	s := &stream{
		conn:   conn,
		logger: logger,
		events: make(chan domain.TranscriptEvent, 64),
		audio:  make(chan []byte, 32),
		done:   make(chan struct{}),
	}

	s.workers.Add(2)
	go s.receive()
	go s.transmit()
	go func() {
		s.workers.Wait()
		close(s.events)
		close(s.done)
		_ = conn.Close()
	}()
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()

	return s
}

func (s *stream) SendAudio(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}

	s.sendMu.Lock()
	if s.sendClosed {
		s.sendMu.Unlock()
		return errSendClosed
	}
	// Holding sendMu keeps CloseSend from closing the channel mid-send.
	select {
	case s.audio <- append([]byte(nil), chunk...):
		s.sendMu.Unlock()
		return nil
	case <-s.done:
		s.sendMu.Unlock()
		if err := s.failure(); err != nil {
			return err
		}
		return errStreamClosed
	}
}

func (s *stream) CloseSend() error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if !s.sendClosed {
		s.sendClosed = true
		close(s.audio)
	}
	return nil
}

func (s *stream) Events() <-chan domain.TranscriptEvent {
	return s.events
}

func (s *stream) Wait() error {
	<-s.done
	return s.failure()
}

func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		_ = s.conn.Close()
		_ = s.CloseSend()
	})
	<-s.done
	return s.failure()
}

func (s *stream) failure() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *stream) fail(err error) {
	if err == nil || isOrderlyClose(err) {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func isOrderlyClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}

func (s *stream) transmit() {
	defer s.workers.Done()

	for chunk := range s.audio {
		if err := s.conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			s.fail(fmt.Errorf("failed to send audio: %w", err))
			return
		}
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, closeStreamMessage); err != nil {
		s.fail(fmt.Errorf("failed to close stream: %w", err))
	}
}

func (s *stream) receive() {
	defer s.workers.Done()

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			s.fail(fmt.Errorf("failed to read provider event: %w", err))
			return
		}

		event, ok, err := decodeResult(payload)
		if err != nil {
			s.publish(domain.TranscriptEvent{Kind: domain.TranscriptKindFinal, IsSpeechFinal: true})
			s.fail(err)
			return
		}
		if ok {
			s.publish(event)
		}
	}
}

// publish drops events when the consumer is not keeping up.
func (s *stream) publish(event domain.TranscriptEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Debug("dropping transcript event", "kind", event.Kind)
	}
}

type resultMessage struct {
	Type        string `json:"type"`
	Message     string `json:"message"`
	Description string `json:"description"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`

	Channel struct {
		Alternatives []alternative `json:"alternatives"`
	} `json:"channel"`
}

type alternative struct {
	Transcript string `json:"transcript"`
}

// decodeResult converts one provider message into a transcript event. Messages
// without text, and messages that are not JSON, are skipped.
func decodeResult(payload []byte) (domain.TranscriptEvent, bool, error) {
	var msg resultMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.TranscriptEvent{}, false, nil
	}

	if strings.EqualFold(msg.Type, "Error") {
		detail := strings.TrimSpace(msg.Message)
		if detail == "" {
			detail = strings.TrimSpace(msg.Description)
		}
		if detail == "" {
			detail = "deepgram returned an unknown error"
		}
		return domain.TranscriptEvent{}, false, errors.New(detail)
	}

	if len(msg.Channel.Alternatives) == 0 {
		return domain.TranscriptEvent{}, false, nil
	}
	text := strings.TrimSpace(msg.Channel.Alternatives[0].Transcript)
	if text == "" {
		return domain.TranscriptEvent{}, false, nil
	}

	kind := domain.TranscriptKindPartial
	if msg.IsFinal || msg.SpeechFinal {
		kind = domain.TranscriptKindFinal
	}
	return domain.TranscriptEvent{Kind: kind, Text: text, IsSpeechFinal: msg.SpeechFinal}, true, nil
}
