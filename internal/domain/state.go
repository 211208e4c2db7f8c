package domain

// InteractionState models which phase the client is in.
type InteractionState string

const (
	StateIdle          InteractionState = "idle"
	StateListening     InteractionState = "listening"
	StateUnderstanding InteractionState = "understanding"
	StateOptimizing    InteractionState = "optimizing"
	StateSpeaking      InteractionState = "speaking"
	StateError         InteractionState = "error"
)

// Busy reports whether primary actions must stay disabled in this state.
func (s InteractionState) Busy() bool {
	switch s {
	case StateListening, StateUnderstanding, StateOptimizing, StateSpeaking:
		return true
	default:
		return false
	}
}

// StateReason gives a structured reason for a transition.
type StateReason string

const (
	ReasonReady             StateReason = "ready"
	ReasonListening         StateReason = "listening"
	ReasonNoSpeech          StateReason = "no_speech"
	ReasonUnderstanding     StateReason = "understanding"
	ReasonTripUnderstood    StateReason = "trip_understood"
	ReasonOptimizing        StateReason = "optimizing"
	ReasonWakingUp          StateReason = "waking_up"
	ReasonRoutingUpdated    StateReason = "routing_updated"
	ReasonPreparingRecap    StateReason = "preparing_recap"
	ReasonPlayingRecap      StateReason = "playing_recap"
	ReasonRecapFinished     StateReason = "recap_finished"
	ReasonRecapStopped      StateReason = "recap_stopped"
	ReasonRecapRewound      StateReason = "recap_rewound"
	ReasonSampleLoaded      StateReason = "sample_loaded"
	ReasonProfileLoaded     StateReason = "profile_loaded"
	ReasonValidationFailed  StateReason = "validation_failed"
	ReasonMissingFields     StateReason = "missing_fields"
	ReasonInterpretFailed   StateReason = "interpret_failed"
	ReasonOptimizeFailed    StateReason = "optimize_failed"
	ReasonSpeechFailed      StateReason = "speech_failed"
	ReasonCaptureFailed     StateReason = "capture_failed"
	ReasonUnsupported       StateReason = "unsupported"
	ReasonNoProfile         StateReason = "no_profile"
	ReasonNoResult          StateReason = "no_result"
	ReasonNoPlayback        StateReason = "no_playback"
	ReasonRecapDisabled     StateReason = "recap_disabled"
	ReasonDriveModeEnabled  StateReason = "drive_mode_enabled"
	ReasonDriveModeDisabled StateReason = "drive_mode_disabled"
)

// Controls describes which UI controls are enabled.
type Controls struct {
	Primary bool `json:"primary"`
	Voice   bool `json:"voice"`
}

// ControlsFor derives control enablement from a state. Voice capture stays
// enabled so the user can always stop it.
func ControlsFor(state InteractionState) Controls {
	return Controls{Primary: !state.Busy(), Voice: true}
}

// Status summarizes the current interaction status.
type Status struct {
	State     InteractionState `json:"state"`
	Reason    StateReason      `json:"reason"`
	Message   string           `json:"message"`
	Controls  Controls         `json:"controls"`
	DriveMode bool             `json:"driveMode"`
	Recap     bool             `json:"recap"`
}

// ErrorCode identifies the class of a surfaced failure.
type ErrorCode string

const (
	ErrorCodeStartup     ErrorCode = "startup"
	ErrorCodeValidation  ErrorCode = "validation"
	ErrorCodeInterpret   ErrorCode = "interpret"
	ErrorCodeOptimize    ErrorCode = "optimize"
	ErrorCodeSpeech      ErrorCode = "speech"
	ErrorCodeCapture     ErrorCode = "capture"
	ErrorCodeAudioStream ErrorCode = "audio_stream"
	ErrorCodeUnsupported ErrorCode = "unsupported"
	ErrorCodeProfile     ErrorCode = "profile"
	ErrorCodeCommand     ErrorCode = "command"
)

// OptionBlock is one rendered routing option.
type OptionBlock struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
}

// RiskIndicator highlights exactly one of the three risk pills.
type RiskIndicator struct {
	Level  RiskLevel `json:"level"`
	Low    bool      `json:"low"`
	Medium bool      `json:"medium"`
	High   bool      `json:"high"`
}

// ResultView is the display projection of an OptimizeResult.
type ResultView struct {
	Recap              []string      `json:"recap"`
	Options            []OptionBlock `json:"options"`
	OptionsPlaceholder string        `json:"optionsPlaceholder,omitempty"`
	Risks              []string      `json:"risks"`
	Risk               RiskIndicator `json:"risk"`
}
