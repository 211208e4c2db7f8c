package domain

import "errors"

var (
	ErrNetwork       = errors.New("network failure")
	ErrServer        = errors.New("server failure")
	ErrValidation    = errors.New("origin and destination are required")
	ErrMissingFields = errors.New("interpreted trip is missing origin or destination")
	ErrUnsupported   = errors.New("capability not supported")
	ErrSpeech        = errors.New("recap speech failed")
	ErrInterpret     = errors.New("could not interpret trip")
	ErrOptimize      = errors.New("could not optimize route")
	ErrNoProfile     = errors.New("no saved profile")
	ErrNoResult      = errors.New("no routing result to replay")
	ErrNoPlayback    = errors.New("no recap is playing")
	ErrBusy          = errors.New("another request is in progress")
	ErrEmptyText     = errors.New("nothing to interpret")
	ErrRecapDisabled = errors.New("spoken recap is disabled")
	ErrSuperseded    = errors.New("recap superseded")
)
