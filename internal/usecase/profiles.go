package usecase

import (
	"context"
	"errors"

	"lifecoo/internal/domain"
)

// LoadProfile replaces the form with the saved family profile. Without a
// saved profile the form is left untouched.
func (c *Coordinator) LoadProfile(ctx context.Context) (domain.TripRequest, error) {
	c.mu.Lock()
	if c.state.status.State.Busy() {
		c.mu.Unlock()
		return domain.TripRequest{}, domain.ErrBusy
	}
	c.mu.Unlock()

	if c.profiles == nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.failLocked(domain.ErrorCodeProfile, domain.ReasonNoProfile, msgNoProfile, nil)
		return c.state.form, domain.ErrNoProfile
	}

	profile, err := c.profiles.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case errors.Is(err, domain.ErrNoProfile):
		c.failLocked(domain.ErrorCodeProfile, domain.ReasonNoProfile, msgNoProfile, nil)
		return c.state.form, err
	case err != nil:
		c.failLocked(domain.ErrorCodeProfile, domain.ReasonNoProfile, msgProfileFailed, err)
		return c.state.form, err
	}

	c.state.form = profile
	c.events.FormChanged(profile)
	c.enterLocked(domain.StateIdle, domain.ReasonProfileLoaded, msgProfileLoaded)
	return profile, nil
}

// SaveProfile stores the current form as the family profile.
func (c *Coordinator) SaveProfile(ctx context.Context) error {
	if c.profiles == nil {
		return domain.ErrUnsupported
	}

	c.mu.Lock()
	form := c.state.form
	c.mu.Unlock()

	if err := c.profiles.Save(ctx, form); err != nil {
		c.logger.Warn("failed to save family profile", "error", err)
		return err
	}
	c.logger.Info(msgProfileSaved)
	return nil
}
