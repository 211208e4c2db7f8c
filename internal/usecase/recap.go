package usecase

import (
	"context"
	"fmt"
	"time"

	"lifecoo/internal/domain"
	"lifecoo/internal/ports"
	"lifecoo/internal/render"
)

// SetRecapEnabled toggles the spoken recap after each optimize. Turning it off
// also cancels any recap being fetched or played.
func (c *Coordinator) SetRecapEnabled(enabled bool) {
	c.mu.Lock()
	c.state.recapEnabled = enabled
	if enabled {
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	playback := c.cancelRecapLocked()
	if c.state.status.State == domain.StateSpeaking {
		c.enterLocked(domain.StateIdle, domain.ReasonRecapDisabled, msgRecapDisabled)
	} else {
		c.publishLocked()
	}
	c.mu.Unlock()

	stopPlayback(playback)
}

// StopRecap cancels the current recap, whether it is still being fetched or
// already playing.
func (c *Coordinator) StopRecap() error {
	c.mu.Lock()
	speaking := c.state.status.State == domain.StateSpeaking
	if !speaking && c.state.playback == nil {
		c.mu.Unlock()
		return domain.ErrNoPlayback
	}
	playback := c.cancelRecapLocked()
	if speaking {
		c.enterLocked(domain.StateIdle, domain.ReasonRecapStopped, msgRecapStopped)
	}
	c.mu.Unlock()

	stopPlayback(playback)
	return nil
}

// ReplayRecap speaks the last optimize result again.
func (c *Coordinator) ReplayRecap(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.status.State {
	case domain.StateListening, domain.StateUnderstanding, domain.StateOptimizing:
		return domain.ErrBusy
	}
	if !c.state.recapEnabled {
		return domain.ErrRecapDisabled
	}
	if c.state.last == nil {
		c.failLocked(domain.ErrorCodeCommand, domain.ReasonNoResult, msgNoResult, nil)
		return domain.ErrNoResult
	}
	c.startRecapLocked(*c.state.last)
	return nil
}

// RewindRecap seeks the playing recap back by the configured step.
func (c *Coordinator) RewindRecap() error {
	c.mu.Lock()
	playback := c.state.playback
	c.mu.Unlock()

	if playback == nil {
		return domain.ErrNoPlayback
	}
	if err := playback.Rewind(c.cfg.RewindStep); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrNoPlayback, err)
	}

	capturing := c.voice != nil && c.voice.Active()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.playback != playback {
		return nil
	}
	// A capture started over the recap keeps the Listening state.
	if c.state.status.State == domain.StateSpeaking || !capturing {
		c.enterLocked(domain.StateSpeaking, domain.ReasonRecapRewound, msgRecapRewound)
	} else {
		c.noteLocked(domain.ReasonRecapRewound, msgRecapRewound)
	}
	return nil
}

// cancelRecapLocked invalidates in-flight recaps and detaches the active
// playback, which the caller stops after unlocking.
func (c *Coordinator) cancelRecapLocked() ports.Playback {
	c.state.speakToken++
	playback := c.state.playback
	c.state.playback = nil
	return playback
}

// startRecapLocked issues a new speak request. Any earlier request becomes
// stale and its audio will never play.
func (c *Coordinator) startRecapLocked(result domain.OptimizeResult) {
	c.state.speakToken++
	token := c.state.speakToken
	c.enterLocked(domain.StateSpeaking, domain.ReasonPreparingRecap, msgPreparingRecap)

	c.pending.Add(1)
	go c.speak(c.lifetime, token, result)
}

// currentLocked reports whether a speak request may still play.
func (c *Coordinator) currentLocked(token uint64) (bool, string) {
	switch {
	case !c.state.recapEnabled:
		return false, "disabled"
	case token != c.state.speakToken:
		return false, "superseded"
	default:
		return true, ""
	}
}

func (c *Coordinator) speak(ctx context.Context, token uint64, result domain.OptimizeResult) {
	defer c.pending.Done()

	clip, err := c.fetchRecap(ctx, token, result)

	c.mu.Lock()
	if ok, reason := c.currentLocked(token); !ok {
		c.mu.Unlock()
		c.discardRecap(reason)
		return
	}
	if err != nil {
		c.failLocked(domain.ErrorCodeSpeech, domain.ReasonSpeechFailed, msgSpeechFailed, fmt.Errorf("%w: %w", domain.ErrSpeech, err))
		c.mu.Unlock()
		c.resumeListening(ctx)
		return
	}
	previous := c.state.playback
	c.state.playback = nil
	c.mu.Unlock()

	stopPlayback(previous)

	if c.player == nil {
		c.mu.Lock()
		ok, _ := c.currentLocked(token)
		if ok {
			c.failLocked(domain.ErrorCodeUnsupported, domain.ReasonUnsupported, msgSpeechFailed, domain.ErrUnsupported)
		}
		c.mu.Unlock()
		if ok {
			c.resumeListening(ctx)
		}
		return
	}

	playback, err := c.player.Play(ctx, clip)

	c.mu.Lock()
	if ok, reason := c.currentLocked(token); !ok {
		c.mu.Unlock()
		stopPlayback(playback)
		c.discardRecap(reason)
		return
	}
	if err != nil {
		c.failLocked(domain.ErrorCodeSpeech, domain.ReasonSpeechFailed, msgSpeechFailed, fmt.Errorf("%w: %w", domain.ErrSpeech, err))
		c.mu.Unlock()
		c.resumeListening(ctx)
		return
	}
	c.state.playback = playback
	if c.state.status.State == domain.StateSpeaking {
		c.noteLocked(domain.ReasonPlayingRecap, msgPlayingRecap)
	}
	c.events.RecapStarted(render.Summary(result))
	c.mu.Unlock()

	select {
	case <-playback.Done():
	case <-ctx.Done():
		_ = playback.Stop()
		return
	}

	c.mu.Lock()
	if c.state.playback != playback {
		c.mu.Unlock()
		return
	}
	c.state.playback = nil
	if token != c.state.speakToken || c.state.status.State != domain.StateSpeaking {
		c.mu.Unlock()
		return
	}
	if playErr := playback.Err(); playErr != nil {
		c.failLocked(domain.ErrorCodeSpeech, domain.ReasonSpeechFailed, msgSpeechFailed, fmt.Errorf("%w: %w", domain.ErrSpeech, playErr))
	} else {
		c.enterLocked(domain.StateIdle, domain.ReasonRecapFinished, msgRecapFinished)
	}
	c.mu.Unlock()

	c.resumeListening(ctx)
}

// fetchRecap asks for recap audio, retrying once after a short pause.
func (c *Coordinator) fetchRecap(ctx context.Context, token uint64, result domain.OptimizeResult) (domain.AudioClip, error) {
	clip, err := c.backend.RecapAudio(ctx, result)
	if err == nil {
		return clip, nil
	}
	c.logger.Warn("recap audio failed, retrying", "error", err)

	timer := time.NewTimer(c.cfg.RecapRetryDelay)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
		return domain.AudioClip{}, ctx.Err()
	}

	c.mu.Lock()
	current, _ := c.currentLocked(token)
	c.mu.Unlock()
	if !current {
		return domain.AudioClip{}, domain.ErrSuperseded
	}

	return c.backend.RecapAudio(ctx, result)
}

func (c *Coordinator) discardRecap(reason string) {
	c.metrics.ObserveRecapDiscarded(reason)
	c.logger.Debug("discarding recap audio", "reason", reason)
}

func stopPlayback(playback ports.Playback) {
	if playback == nil {
		return
	}
	_ = playback.Stop()
}
