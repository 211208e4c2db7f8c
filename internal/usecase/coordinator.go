package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"lifecoo/internal/domain"
	"lifecoo/internal/logging"
	"lifecoo/internal/observability"
	"lifecoo/internal/ports"
	"lifecoo/internal/render"
)

// Config tunes the interaction flows.
type Config struct {
	RecapEnabled    bool
	RecapRetryDelay time.Duration
	RewindStep      time.Duration
}

// Dependencies are the adapters the Coordinator drives. Voice and Phrasebook
// may be nil.
type Dependencies struct {
	Backend    ports.Backend
	Player     ports.AudioPlayer
	Profiles   ports.ProfileStore
	Phrasebook ports.TranscriptNormalizer
	Voice      *VoiceCapture
	Events     ports.EventSink
	Logger     *slog.Logger
	Metrics    *observability.Metrics
}

// session is the single mutable state of the client. It is only touched with
// Coordinator.mu held.
type session struct {
	form   domain.TripRequest
	last   *domain.OptimizeResult
	status domain.Status

	recapEnabled    bool
	driveMode       bool
	rememberProfile bool

	speakToken uint64
	playback   ports.Playback
}

// Coordinator owns the session state and runs every user-facing flow:
// voice capture, interpretation, optimization, recap playback and the
// hands-free drive mode. Events are emitted with the lock held so the sink
// sees them in order; sinks must not call back into the Coordinator.
type Coordinator struct {
	backend    ports.Backend
	player     ports.AudioPlayer
	profiles   ports.ProfileStore
	phrasebook ports.TranscriptNormalizer
	voice      *VoiceCapture
	events     ports.EventSink
	logger     *slog.Logger
	metrics    *observability.Metrics
	cfg        Config

	lifetime context.Context
	shutdown context.CancelFunc

	mu      sync.Mutex
	state   session
	pending sync.WaitGroup
}

func NewCoordinator(deps Dependencies, cfg Config) *Coordinator {
	if cfg.RecapRetryDelay < 0 {
		cfg.RecapRetryDelay = 0
	}
	if cfg.RewindStep <= 0 {
		cfg.RewindStep = 10 * time.Second
	}

	lifetime, shutdown := context.WithCancel(context.Background())
	c := &Coordinator{
		backend:    deps.Backend,
		player:     deps.Player,
		profiles:   deps.Profiles,
		phrasebook: deps.Phrasebook,
		voice:      deps.Voice,
		events:     deps.Events,
		logger:     logging.OrDiscard(deps.Logger),
		metrics:    deps.Metrics,
		cfg:        cfg,
		lifetime:   lifetime,
		shutdown:   shutdown,
	}
	c.state.recapEnabled = cfg.RecapEnabled
	c.state.status = domain.Status{
		State:    domain.StateIdle,
		Reason:   domain.ReasonReady,
		Message:  msgReady,
		Controls: domain.ControlsFor(domain.StateIdle),
		Recap:    cfg.RecapEnabled,
	}
	return c
}

// Status returns the current interaction status.
func (c *Coordinator) Status() domain.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.status
}

// Form returns the current trip form.
func (c *Coordinator) Form() domain.TripRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.form
}

// View renders the last optimize result, or the empty view before the first.
func (c *Coordinator) View() domain.ResultView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.last == nil {
		return render.Empty()
	}
	return render.Render(*c.state.last)
}

// LastResult returns the stored optimize result, if any.
func (c *Coordinator) LastResult() (domain.OptimizeResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.last == nil {
		return domain.OptimizeResult{}, false
	}
	return *c.state.last, true
}

// UpdateForm replaces the form with the user's edits.
func (c *Coordinator) UpdateForm(form domain.TripRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.form = form
}

// LoadSample fills the form with the canned family trip.
func (c *Coordinator) LoadSample() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.status.State.Busy() {
		return domain.ErrBusy
	}
	c.state.form = domain.SampleTrip()
	c.events.FormChanged(c.state.form)
	c.enterLocked(domain.StateIdle, domain.ReasonSampleLoaded, msgSampleLoaded)
	return nil
}

// SetRememberProfile controls whether every optimize saves the form first.
func (c *Coordinator) SetRememberProfile(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.rememberProfile = enabled
}

// Wait blocks until background recap playback and capture handling settle.
func (c *Coordinator) Wait() {
	c.pending.Wait()
}

// Close cancels background work, stops capture and playback, and waits.
func (c *Coordinator) Close() error {
	c.shutdown()
	if c.voice != nil {
		c.voice.Abort()
	}

	c.mu.Lock()
	c.state.speakToken++
	playback := c.state.playback
	c.state.playback = nil
	c.mu.Unlock()
	if playback != nil {
		_ = playback.Stop()
	}

	c.pending.Wait()
	return nil
}

// enterLocked moves the state machine and publishes the new status.
func (c *Coordinator) enterLocked(state domain.InteractionState, reason domain.StateReason, message string) {
	from := c.state.status.State
	if !canTransition(from, state) {
		c.logger.Warn("unexpected state transition", "from", from, "to", state, "reason", reason)
	}
	c.state.status.State = state
	c.state.status.Reason = reason
	c.state.status.Message = message
	c.state.status.Controls = domain.ControlsFor(state)
	c.publishLocked()
	if from != state {
		c.metrics.ObserveState(string(state))
	}
}

// noteLocked updates the message without changing state.
func (c *Coordinator) noteLocked(reason domain.StateReason, message string) {
	c.state.status.Reason = reason
	c.state.status.Message = message
	c.publishLocked()
}

func (c *Coordinator) publishLocked() {
	c.state.status.DriveMode = c.state.driveMode
	c.state.status.Recap = c.state.recapEnabled
	c.events.StatusChanged(c.state.status)
}

// failLocked surfaces a flow failure: an error event plus the Error state.
func (c *Coordinator) failLocked(code domain.ErrorCode, reason domain.StateReason, message string, cause error) {
	detail := message
	if cause != nil {
		detail = cause.Error()
		c.logger.Warn("flow failed", "code", code, "reason", reason, "error", cause)
	}
	c.events.SessionError(code, detail)
	c.enterLocked(domain.StateError, reason, message)
}

// retryNotice tells the user a cold backend is being retried, as long as the
// flow that triggered it is still the current state.
func (c *Coordinator) retryNotice(state domain.InteractionState) ports.RetryFunc {
	return func(endpoint string, cause error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state.status.State == state {
			c.noteLocked(domain.ReasonWakingUp, msgWakingUp)
		}
	}
}
