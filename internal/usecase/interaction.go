package usecase

import "lifecoo/internal/domain"

// transitions lists the states reachable from each state. Re-entering the
// current state is always allowed, and Error can be left for anything.
var transitions = map[domain.InteractionState][]domain.InteractionState{
	domain.StateIdle: {
		domain.StateListening, domain.StateUnderstanding, domain.StateOptimizing,
		domain.StateSpeaking, domain.StateError,
	},
	domain.StateListening:     {domain.StateIdle, domain.StateUnderstanding, domain.StateSpeaking, domain.StateError},
	domain.StateUnderstanding: {domain.StateIdle, domain.StateOptimizing, domain.StateError},
	domain.StateOptimizing:    {domain.StateIdle, domain.StateSpeaking, domain.StateError},
	domain.StateSpeaking:      {domain.StateIdle, domain.StateListening, domain.StateError},
}

func canTransition(from, to domain.InteractionState) bool {
	if from == to || from == domain.StateError {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

const (
	msgReady             = "Ready."
	msgListening         = "Listening…"
	msgNoSpeech          = "I didn't catch anything."
	msgCaptureFailed     = "I couldn't hear that. Please try again."
	msgUnsupported       = "Voice capture isn't available on this system."
	msgUnderstanding     = "Understanding your trip…"
	msgEmptyText         = "Please type or say your trip first."
	msgUnderstood        = "Trip understood. Ready to optimize."
	msgUnderstoodAuto    = "Trip understood. Optimizing now…"
	msgInterpretFailed   = "I couldn't quite understand that. Please try rephrasing."
	msgMissingFields     = "I still need both an origin and a destination."
	msgOptimizing        = "Optimizing route…"
	msgValidation        = "Origin and Destination are required."
	msgOptimizeFailed    = "I couldn't optimize this route. Please try again."
	msgRoutingUpdated    = "Routing updated just now."
	msgWakingUp          = "Waking up the concierge…"
	msgPreparingRecap    = "Preparing your recap…"
	msgPlayingRecap      = "Playing your recap…"
	msgRecapFinished     = "Recap finished."
	msgRecapStopped      = "Recap stopped."
	msgRecapRewound      = "Rewinding the recap…"
	msgRecapDisabled     = "Spoken recap is off."
	msgSpeechFailed      = "I couldn't play the recap right now."
	msgNoResult          = "There's no routing result to replay yet."
	msgNoPlayback        = "No recap is playing."
	msgSampleLoaded      = "Sample trip loaded. Ready to optimize."
	msgProfileLoaded     = "Saved family profile loaded."
	msgProfileSaved      = "Family profile saved."
	msgNoProfile         = "No saved family profile yet."
	msgProfileFailed     = "I couldn't reach the saved profile."
	msgDriveModeEnabled  = "Drive mode on. I'm listening."
	msgDriveModeDisabled = "Drive mode off."
)
