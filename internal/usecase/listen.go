package usecase

import (
	"context"
	"errors"

	"lifecoo/internal/domain"
)

// StartListening opens a capture session. It may interrupt a recap that is
// playing (the audio keeps going so it can be controlled by voice) but not an
// interpret or optimize in flight. Starting while already listening restarts
// the capture and drops what was heard so far.
func (c *Coordinator) StartListening(ctx context.Context) error {
	c.mu.Lock()
	if c.voice == nil {
		c.failLocked(domain.ErrorCodeUnsupported, domain.ReasonUnsupported, msgUnsupported, nil)
		c.mu.Unlock()
		return domain.ErrUnsupported
	}
	switch c.state.status.State {
	case domain.StateUnderstanding, domain.StateOptimizing:
		c.mu.Unlock()
		return domain.ErrBusy
	}
	c.enterLocked(domain.StateListening, domain.ReasonListening, msgListening)
	c.pending.Add(1)
	c.mu.Unlock()

	err := c.voice.Start(c.lifetime, func(u Utterance) {
		defer c.pending.Done()
		c.captureFinished(c.lifetime, u)
	})
	if err == nil {
		return nil
	}
	c.pending.Done()

	c.mu.Lock()
	defer c.mu.Unlock()
	if errors.Is(err, domain.ErrUnsupported) {
		c.failLocked(domain.ErrorCodeUnsupported, domain.ReasonUnsupported, msgUnsupported, err)
		return err
	}
	c.failLocked(domain.ErrorCodeCapture, domain.ReasonCaptureFailed, msgCaptureFailed, err)
	return err
}

// StopListening ends capture; the heard text is then handled as an utterance.
func (c *Coordinator) StopListening() error {
	if c.voice == nil {
		return domain.ErrUnsupported
	}
	return c.voice.Stop()
}

// ToggleListening starts capture when idle and stops it while listening.
func (c *Coordinator) ToggleListening(ctx context.Context) error {
	if c.voice != nil && c.voice.Active() {
		return c.StopListening()
	}
	return c.StartListening(ctx)
}

func (c *Coordinator) captureFinished(ctx context.Context, u Utterance) {
	if u.Discarded {
		return
	}

	c.mu.Lock()
	if c.state.status.State != domain.StateListening {
		c.mu.Unlock()
		c.logger.Debug("ignoring utterance outside listening", "state", c.Status().State)
		return
	}

	if u.Text == "" {
		if u.Err != nil {
			c.events.SessionError(domain.ErrorCodeCapture, u.Err.Error())
			c.logger.Warn("voice capture failed", "error", u.Err)
			c.enterLocked(domain.StateIdle, domain.ReasonCaptureFailed, msgCaptureFailed)
			c.mu.Unlock()
			return
		}
		c.enterLocked(domain.StateIdle, domain.ReasonNoSpeech, msgNoSpeech)
		c.mu.Unlock()
		c.resumeListening(ctx)
		return
	}
	c.mu.Unlock()

	if u.Err != nil {
		c.logger.Warn("voice capture ended with error, using partial transcript", "error", u.Err)
	}
	if err := c.HandleUtterance(ctx, u.Text); err != nil {
		c.logger.Debug("utterance handling failed", "error", err)
	}
}

// resumeListening restarts capture after a flow settles in drive mode.
func (c *Coordinator) resumeListening(ctx context.Context) {
	c.mu.Lock()
	drive := c.state.driveMode
	state := c.state.status.State
	c.mu.Unlock()

	if !drive || ctx.Err() != nil || state.Busy() {
		return
	}
	if err := c.StartListening(ctx); err != nil {
		c.logger.Warn("failed to resume listening", "error", err)
	}
}
