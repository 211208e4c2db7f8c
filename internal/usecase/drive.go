package usecase

import (
	"context"
	"errors"

	"lifecoo/internal/domain"
	"lifecoo/internal/drive"
)

// SetDriveMode toggles hands-free operation. Turning it on also turns the
// spoken recap on and starts listening.
func (c *Coordinator) SetDriveMode(ctx context.Context, enabled bool) error {
	c.mu.Lock()
	c.state.driveMode = enabled
	if !enabled {
		c.noteLocked(domain.ReasonDriveModeDisabled, msgDriveModeDisabled)
		c.mu.Unlock()
		return nil
	}
	c.state.recapEnabled = true
	c.noteLocked(domain.ReasonDriveModeEnabled, msgDriveModeEnabled)
	state := c.state.status.State
	c.mu.Unlock()

	if state.Busy() {
		return nil
	}
	return c.StartListening(ctx)
}

// HandleUtterance acts on a finished transcript heard while listening: in
// drive mode spoken commands are tried first, anything else is interpreted
// and optimized. Text that arrives while a recap is speaking is treated as
// the recap's own echo and dropped.
func (c *Coordinator) HandleUtterance(ctx context.Context, text string) error {
	if c.phrasebook != nil {
		rewritten, err := c.phrasebook.Apply(text)
		if err != nil {
			c.logger.Warn("phrasebook failed, using raw transcript", "error", err)
		} else {
			text = rewritten
		}
	}

	c.mu.Lock()
	switch c.state.status.State {
	case domain.StateSpeaking:
		c.mu.Unlock()
		c.logger.Debug("ignoring utterance during recap", "text", text)
		return nil
	case domain.StateListening:
	default:
		c.mu.Unlock()
		return domain.ErrBusy
	}

	c.events.PartialTranscript(text)

	if c.state.driveMode {
		if command := drive.Classify(text); command != drive.CommandNone {
			c.mu.Unlock()
			c.logger.Info("drive command", "command", command)
			return c.runCommand(ctx, command)
		}
	}

	if text == "" {
		c.enterLocked(domain.StateIdle, domain.ReasonNoSpeech, msgNoSpeech)
		c.mu.Unlock()
		return domain.ErrEmptyText
	}
	c.enterLocked(domain.StateUnderstanding, domain.ReasonUnderstanding, msgUnderstanding)
	c.mu.Unlock()

	_, err := c.interpret(ctx, text, true)
	c.resumeListening(ctx)
	return err
}

func (c *Coordinator) runCommand(ctx context.Context, command drive.Command) error {
	var err error
	switch command {
	case drive.CommandStop:
		err = c.commandStop()
	case drive.CommandReplay:
		err = c.commandReplay()
	case drive.CommandRewind:
		err = c.commandRewind()
	}

	c.mu.Lock()
	speaking := c.state.status.State == domain.StateSpeaking
	c.mu.Unlock()
	if !speaking {
		c.resumeListening(ctx)
	}
	return err
}

func (c *Coordinator) commandStop() error {
	c.mu.Lock()
	playback := c.cancelRecapLocked()
	c.enterLocked(domain.StateIdle, domain.ReasonRecapStopped, msgRecapStopped)
	c.mu.Unlock()

	stopPlayback(playback)
	return nil
}

func (c *Coordinator) commandReplay() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.state.last == nil:
		c.failLocked(domain.ErrorCodeCommand, domain.ReasonNoResult, msgNoResult, nil)
		return domain.ErrNoResult
	case !c.state.recapEnabled:
		c.failLocked(domain.ErrorCodeCommand, domain.ReasonRecapDisabled, msgRecapDisabled, nil)
		return domain.ErrRecapDisabled
	}
	c.startRecapLocked(*c.state.last)
	return nil
}

func (c *Coordinator) commandRewind() error {
	err := c.RewindRecap()
	if errors.Is(err, domain.ErrNoPlayback) {
		c.mu.Lock()
		c.failLocked(domain.ErrorCodeCommand, domain.ReasonNoPlayback, msgNoPlayback, err)
		c.mu.Unlock()
	}
	return err
}
