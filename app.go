package main

import (
	"context"
	"fmt"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"lifecoo/internal/airports"
	"lifecoo/internal/bootstrap"
	"lifecoo/internal/config"
	"lifecoo/internal/domain"
	"lifecoo/internal/usecase"
)

const (
	eventStatus  = "lifecoo:status"
	eventPartial = "lifecoo:partial"
	eventForm    = "lifecoo:form"
	eventResult  = "lifecoo:result"
	eventRecap   = "lifecoo:recap"
	eventError   = "lifecoo:error"

	suggestionLimit = 8
)

// App is the Wails application root.
type App struct {
	ctx context.Context

	services    bootstrap.Services
	coordinator *usecase.Coordinator
	airports    *airports.Directory
	cfg         config.Config
	bootErr     error
}

func NewApp() *App {
	return &App{}
}

func (a *App) startup(ctx context.Context) {
	a.ctx = ctx

	services, err := bootstrap.Build(a)
	if err != nil {
		a.bootErr = err
		a.SessionError(domain.ErrorCodeStartup, err.Error())
		return
	}

	a.services = services
	a.cfg = services.Config
	a.coordinator = services.Coordinator
	a.airports = services.Airports
	a.StatusChanged(a.coordinator.Status())
}

func (a *App) shutdown(_ context.Context) {
	if a.coordinator == nil {
		return
	}
	_ = a.services.Close()
}

// GetStatus returns the current interaction status.
func (a *App) GetStatus() domain.Status {
	if a.coordinator == nil {
		if a.bootErr != nil {
			return domain.Status{
				State:    domain.StateError,
				Message:  a.bootErr.Error(),
				Controls: domain.ControlsFor(domain.StateError),
			}
		}
		return domain.Status{State: domain.StateIdle, Reason: domain.ReasonReady, Controls: domain.ControlsFor(domain.StateIdle)}
	}
	return a.coordinator.Status()
}

// GetForm returns the trip form.
func (a *App) GetForm() (domain.TripRequest, error) {
	if err := a.requireReady(); err != nil {
		return domain.TripRequest{}, err
	}
	return a.coordinator.Form(), nil
}

// UpdateForm stores the user's edits.
func (a *App) UpdateForm(form domain.TripRequest) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.coordinator.UpdateForm(form)
	return nil
}

// GetResult returns the rendered routing result.
func (a *App) GetResult() domain.ResultView {
	if a.coordinator == nil {
		return domain.ResultView{}
	}
	return a.coordinator.View()
}

func (a *App) LoadSample() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.LoadSample()
}

// Interpret fills the form from free text, optionally optimizing right away.
func (a *App) Interpret(text string, autoOptimize bool) (domain.TripRequest, error) {
	if err := a.requireReady(); err != nil {
		return domain.TripRequest{}, err
	}
	return a.coordinator.Interpret(a.ctx, text, autoOptimize)
}

// Optimize routes the current form and returns the rendered result.
func (a *App) Optimize() (domain.ResultView, error) {
	if err := a.requireReady(); err != nil {
		return domain.ResultView{}, err
	}
	if _, err := a.coordinator.Optimize(a.ctx); err != nil {
		return a.coordinator.View(), err
	}
	return a.coordinator.View(), nil
}

func (a *App) LoadProfile() (domain.TripRequest, error) {
	if err := a.requireReady(); err != nil {
		return domain.TripRequest{}, err
	}
	return a.coordinator.LoadProfile(a.ctx)
}

func (a *App) SaveProfile() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.SaveProfile(a.ctx)
}

func (a *App) SetRememberProfile(enabled bool) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.coordinator.SetRememberProfile(enabled)
	return nil
}

func (a *App) SetRecapEnabled(enabled bool) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	a.coordinator.SetRecapEnabled(enabled)
	return nil
}

func (a *App) SetDriveMode(enabled bool) error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.SetDriveMode(a.ctx, enabled)
}

// ToggleListening is bound to the microphone button.
func (a *App) ToggleListening() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.ToggleListening(a.ctx)
}

func (a *App) StopRecap() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.StopRecap()
}

func (a *App) ReplayRecap() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.ReplayRecap(a.ctx)
}

func (a *App) RewindRecap() error {
	if err := a.requireReady(); err != nil {
		return err
	}
	return a.coordinator.RewindRecap()
}

// SuggestAirports feeds the origin and destination autocomplete.
func (a *App) SuggestAirports(query string) []domain.Suggestion {
	if a.airports == nil {
		return nil
	}
	return a.airports.Suggest(query, suggestionLimit)
}

// GetRuntimeInfo returns non-sensitive config for the UI.
func (a *App) GetRuntimeInfo() map[string]string {
	if a.bootErr != nil {
		return map[string]string{"error": a.bootErr.Error()}
	}

	voice := "Deepgram"
	if a.cfg.Deepgram.APIKey == "" {
		voice = "unavailable"
	}
	return map[string]string{
		"backend":      a.cfg.Backend.BaseURL,
		"voice":        voice,
		"model":        a.cfg.Deepgram.Model,
		"language":     a.cfg.Deepgram.Language,
		"phrasebook":   a.cfg.Rules.Path,
		"profileStore": a.cfg.Profile.Store,
		"audioInput":   a.cfg.Audio.InputDevice,
		"debugAddr":    a.cfg.Debug.Addr,
	}
}

func (a *App) requireReady() error {
	if a.bootErr != nil {
		return a.bootErr
	}
	if a.coordinator == nil {
		return fmt.Errorf("application is not initialized")
	}
	return nil
}

// StatusChanged emits interaction state updates to the frontend.
func (a *App) StatusChanged(status domain.Status) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventStatus, status)
}

// PartialTranscript emits the running transcript.
func (a *App) PartialTranscript(text string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventPartial, map[string]string{"text": text})
}

// FormChanged emits the form after interpretation or loading.
func (a *App) FormChanged(form domain.TripRequest) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventForm, form)
}

// ResultRendered emits a fresh routing result.
func (a *App) ResultRendered(view domain.ResultView) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventResult, view)
}

// RecapStarted emits the text summary of the recap being played.
func (a *App) RecapStarted(summary string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventRecap, map[string]string{"summary": summary})
}

// SessionError emits failures to the UI.
func (a *App) SessionError(code domain.ErrorCode, detail string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, eventError, map[string]string{
		"code":    string(code),
		"message": errorMessage(code, detail),
		"detail":  detail,
	})
}

func errorMessage(code domain.ErrorCode, detail string) string {
	switch code {
	case domain.ErrorCodeStartup:
		return "Startup failed"
	case domain.ErrorCodeValidation:
		return "Origin and Destination are required"
	case domain.ErrorCodeInterpret:
		return "Could not understand the trip"
	case domain.ErrorCodeOptimize:
		return "Routing failed"
	case domain.ErrorCodeSpeech:
		return "Recap audio failed"
	case domain.ErrorCodeCapture:
		return "Microphone issue"
	case domain.ErrorCodeAudioStream:
		return "Audio streaming issue"
	case domain.ErrorCodeUnsupported:
		return "Voice is not available"
	case domain.ErrorCodeProfile:
		return "Family profile issue"
	case domain.ErrorCodeCommand:
		return "Voice command failed"
	default:
		if detail == "" {
			return "Unknown error"
		}
		return detail
	}
}
