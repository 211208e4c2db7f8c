package usecase

import (
	"context"
	"fmt"
	"strings"

	"lifecoo/internal/domain"
	"lifecoo/internal/render"
)

// Interpret turns free text into trip fields and, when autoOptimize is set
// and both endpoints came back, goes straight on to optimize. The returned
// form reflects the interpreted fields even when a later step fails.
func (c *Coordinator) Interpret(ctx context.Context, text string, autoOptimize bool) (domain.TripRequest, error) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if c.state.status.State.Busy() {
		c.mu.Unlock()
		return domain.TripRequest{}, domain.ErrBusy
	}
	if text == "" {
		c.failLocked(domain.ErrorCodeValidation, domain.ReasonValidationFailed, msgEmptyText, nil)
		form := c.state.form
		c.mu.Unlock()
		return form, domain.ErrEmptyText
	}
	c.enterLocked(domain.StateUnderstanding, domain.ReasonUnderstanding, msgUnderstanding)
	c.mu.Unlock()

	return c.interpret(ctx, text, autoOptimize)
}

// interpret runs with the state already in Understanding.
func (c *Coordinator) interpret(ctx context.Context, text string, autoOptimize bool) (domain.TripRequest, error) {
	result, err := c.backend.Interpret(ctx, text, c.retryNotice(domain.StateUnderstanding))

	c.mu.Lock()
	if err != nil {
		c.failLocked(domain.ErrorCodeInterpret, domain.ReasonInterpretFailed, msgInterpretFailed, err)
		form := c.state.form
		c.mu.Unlock()
		return form, fmt.Errorf("%w: %w", domain.ErrInterpret, err)
	}

	c.state.form = result.ApplyTo(c.state.form)
	form := c.state.form
	c.events.FormChanged(form)

	if !autoOptimize {
		c.enterLocked(domain.StateIdle, domain.ReasonTripUnderstood, msgUnderstood)
		c.mu.Unlock()
		return form, nil
	}

	req := form.Trimmed()
	if !req.HasEndpoints() {
		c.failLocked(domain.ErrorCodeValidation, domain.ReasonMissingFields, msgMissingFields, domain.ErrMissingFields)
		c.mu.Unlock()
		return form, domain.ErrMissingFields
	}

	c.noteLocked(domain.ReasonTripUnderstood, msgUnderstoodAuto)
	c.enterLocked(domain.StateOptimizing, domain.ReasonOptimizing, msgOptimizing)
	c.mu.Unlock()

	_, err = c.optimize(ctx, req)
	return form, err
}

// Optimize requests a routing plan for the current form.
func (c *Coordinator) Optimize(ctx context.Context) (domain.OptimizeResult, error) {
	c.mu.Lock()
	if c.state.status.State.Busy() {
		c.mu.Unlock()
		return domain.OptimizeResult{}, domain.ErrBusy
	}
	req := c.state.form.Trimmed()
	if !req.HasEndpoints() {
		c.failLocked(domain.ErrorCodeValidation, domain.ReasonValidationFailed, msgValidation, nil)
		c.mu.Unlock()
		return domain.OptimizeResult{}, domain.ErrValidation
	}
	c.enterLocked(domain.StateOptimizing, domain.ReasonOptimizing, msgOptimizing)
	c.mu.Unlock()

	return c.optimize(ctx, req)
}

// optimize runs with the state already in Optimizing. A failure keeps the
// previously rendered result.
func (c *Coordinator) optimize(ctx context.Context, req domain.TripRequest) (domain.OptimizeResult, error) {
	c.mu.Lock()
	remember := c.state.rememberProfile
	c.mu.Unlock()

	if remember && c.profiles != nil {
		if err := c.profiles.Save(ctx, req); err != nil {
			c.logger.Warn("failed to remember family profile", "error", err)
		}
	}

	if req.OutputStyle == "" {
		req.OutputStyle = domain.DefaultOutputStyle
	}

	result, err := c.backend.Optimize(ctx, req, c.retryNotice(domain.StateOptimizing))

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.failLocked(domain.ErrorCodeOptimize, domain.ReasonOptimizeFailed, msgOptimizeFailed, err)
		return domain.OptimizeResult{}, fmt.Errorf("%w: %w", domain.ErrOptimize, err)
	}

	c.state.last = &result
	c.events.ResultRendered(render.Render(result))
	c.enterLocked(domain.StateIdle, domain.ReasonRoutingUpdated, msgRoutingUpdated)

	if c.state.recapEnabled {
		c.startRecapLocked(result)
	}
	return result, nil
}
