package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"lifecoo/internal/domain"
	"lifecoo/internal/ports"
)

var errNoSession = errors.New("no session configured")

type fakeBackend struct {
	mu sync.Mutex

	interpretTexts []string
	optimizeReqs   []domain.TripRequest
	recapCalls     int

	interpret func(text string, onRetry ports.RetryFunc) (domain.InterpretResult, error)
	optimize  func(req domain.TripRequest, onRetry ports.RetryFunc) (domain.OptimizeResult, error)
	recap     func(ctx context.Context, call int) (domain.AudioClip, error)
}

func (f *fakeBackend) Interpret(_ context.Context, text string, onRetry ports.RetryFunc) (domain.InterpretResult, error) {
	f.mu.Lock()
	f.interpretTexts = append(f.interpretTexts, text)
	fn := f.interpret
	f.mu.Unlock()
	if fn == nil {
		return domain.InterpretResult{}, errors.New("interpret not configured")
	}
	return fn(text, onRetry)
}

func (f *fakeBackend) Optimize(_ context.Context, req domain.TripRequest, onRetry ports.RetryFunc) (domain.OptimizeResult, error) {
	f.mu.Lock()
	f.optimizeReqs = append(f.optimizeReqs, req)
	fn := f.optimize
	f.mu.Unlock()
	if fn == nil {
		return sampleResult(), nil
	}
	return fn(req, onRetry)
}

func (f *fakeBackend) RecapAudio(ctx context.Context, _ domain.OptimizeResult) (domain.AudioClip, error) {
	f.mu.Lock()
	f.recapCalls++
	call := f.recapCalls
	fn := f.recap
	f.mu.Unlock()
	if fn == nil {
		return domain.AudioClip{Data: []byte(fmt.Sprintf("clip-%d", call)), ContentType: "audio/mpeg"}, nil
	}
	return fn(ctx, call)
}

func (f *fakeBackend) calls() (interpret, optimize, recap int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.interpretTexts), len(f.optimizeReqs), f.recapCalls
}

type fakePlayer struct {
	mu        sync.Mutex
	played    []string
	playbacks []*fakePlayback
	err       error
}

func (f *fakePlayer) Play(_ context.Context, clip domain.AudioClip) (ports.Playback, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	pb := &fakePlayback{done: make(chan struct{})}
	f.played = append(f.played, string(clip.Data))
	f.playbacks = append(f.playbacks, pb)
	return pb, nil
}

func (f *fakePlayer) snapshot() ([]string, []*fakePlayback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...), append([]*fakePlayback(nil), f.playbacks...)
}

type fakePlayback struct {
	mu      sync.Mutex
	done    chan struct{}
	ended   bool
	err     error
	stopped bool
	rewinds []time.Duration
}

func (f *fakePlayback) Done() <-chan struct{} { return f.done }

func (f *fakePlayback) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakePlayback) Rewind(d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ended {
		return errors.New("ended")
	}
	f.rewinds = append(f.rewinds, d)
	return nil
}

func (f *fakePlayback) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	f.endLocked(nil)
	return nil
}

// finish simulates the clip reaching its end.
func (f *fakePlayback) finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.endLocked(err)
}

func (f *fakePlayback) endLocked(err error) {
	if f.ended {
		return
	}
	f.ended = true
	f.err = err
	close(f.done)
}

func (f *fakePlayback) wasStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type fakeEventSink struct {
	mu sync.Mutex

	statuses []domain.Status
	partials []string
	forms    []domain.TripRequest
	results  []domain.ResultView
	recaps   []string
	errors   []errEvent
}

type errEvent struct {
	code   domain.ErrorCode
	detail string
}

func (f *fakeEventSink) StatusChanged(status domain.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
}

func (f *fakeEventSink) PartialTranscript(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.partials = append(f.partials, text)
}

func (f *fakeEventSink) FormChanged(form domain.TripRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forms = append(f.forms, form)
}

func (f *fakeEventSink) ResultRendered(view domain.ResultView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, view)
}

func (f *fakeEventSink) RecapStarted(summary string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recaps = append(f.recaps, summary)
}

func (f *fakeEventSink) SessionError(code domain.ErrorCode, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, errEvent{code: code, detail: detail})
}

func (f *fakeEventSink) snapshotStatuses() []domain.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Status(nil), f.statuses...)
}

func (f *fakeEventSink) snapshotErrors() []errEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]errEvent(nil), f.errors...)
}

func (f *fakeEventSink) snapshotPartials() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.partials...)
}

func (f *fakeEventSink) counts() (forms, results, recaps int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.forms), len(f.results), len(f.recaps)
}

func (f *fakeEventSink) sawReason(reason domain.StateReason) bool {
	for _, status := range f.snapshotStatuses() {
		if status.Reason == reason {
			return true
		}
	}
	return false
}

func (f *fakeEventSink) reasonIndex(reason domain.StateReason) int {
	for i, status := range f.snapshotStatuses() {
		if status.Reason == reason {
			return i
		}
	}
	return -1
}

type fakeAudioCapture struct {
	mu       sync.Mutex
	sessions []ports.AudioSession
	err      error
	calls    int
}

func (f *fakeAudioCapture) Start(_ context.Context, _ ports.AudioConfig) (ports.AudioSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.sessions) {
		return nil, errNoSession
	}
	session := f.sessions[f.calls]
	f.calls++
	return session, nil
}

type fakeAudioSession struct {
	mu        sync.Mutex
	chunks    [][]byte
	index     int
	stopCalls int
}

func (f *fakeAudioSession) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index >= len(f.chunks) {
		return 0, io.EOF
	}
	n := copy(p, f.chunks[f.index])
	f.index++
	return n, nil
}

func (f *fakeAudioSession) Close() error { return nil }

func (f *fakeAudioSession) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCalls++
	return nil
}

type fakeProvider struct {
	mu       sync.Mutex
	sessions []ports.StreamingSession
	err      error
	calls    int
}

func (f *fakeProvider) StartStreaming(_ context.Context, _ ports.StreamingConfig) (ports.StreamingSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.sessions) {
		return nil, errNoSession
	}
	session := f.sessions[f.calls]
	f.calls++
	return session, nil
}

type fakeStreamingSession struct {
	mu         sync.Mutex
	events     chan domain.TranscriptEvent
	sent       int
	waitErr    error
	waitGate   chan struct{}
	closeCalls int
	closed     bool
}

func newFakeStreamingSession(events ...domain.TranscriptEvent) *fakeStreamingSession {
	s := &fakeStreamingSession{events: make(chan domain.TranscriptEvent, 16)}
	for _, event := range events {
		s.events <- event
	}
	return s
}

func (f *fakeStreamingSession) SendAudio(_ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	return nil
}

func (f *fakeStreamingSession) CloseSend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		close(f.events)
		f.closed = true
	}
	return nil
}

func (f *fakeStreamingSession) Events() <-chan domain.TranscriptEvent { return f.events }

func (f *fakeStreamingSession) Wait() error {
	if f.waitGate != nil {
		<-f.waitGate
	}
	time.Sleep(5 * time.Millisecond)
	return f.waitErr
}

func (f *fakeStreamingSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	if !f.closed {
		close(f.events)
		f.closed = true
	}
	return nil
}

type fakePhrasebook struct {
	replace map[string]string
}

func (f *fakePhrasebook) Apply(text string) (string, error) {
	if out, ok := f.replace[text]; ok {
		return out, nil
	}
	return text, nil
}

func sampleResult() domain.OptimizeResult {
	return domain.OptimizeResult{
		ExecRecapBullets: []string{"Fly YYC to LHR via YVR.", "Daytime departures both ways."},
		RoutingOptions: []domain.RoutingOption{
			{Title: "Via Vancouver", Bullets: []string{"1 stop", "2h layover"}},
			{Title: "Nonstop evening", Bullets: []string{"Overnight arrival"}},
		},
		RiskRadarBullets: []string{"Summer storms at YVR."},
		RiskLevel:        "low",
	}
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
