package usecase

import (
	"strings"
	"sync"

	"lifecoo/internal/domain"
)

// transcriptAccumulator keeps finalized segments plus the latest interim
// remainder of one capture session.
type transcriptAccumulator struct {
	mu      sync.Mutex
	finals  []string
	interim string
}

// Add folds an event in and returns the combined text so far.
func (a *transcriptAccumulator) Add(event domain.TranscriptEvent) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	text := strings.TrimSpace(event.Text)
	switch {
	case event.Kind == domain.TranscriptKindFinal && text != "":
		a.finals = append(a.finals, text)
		a.interim = ""
	case event.Kind == domain.TranscriptKindPartial:
		a.interim = text
	}
	return a.combinedLocked()
}

func (a *transcriptAccumulator) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.combinedLocked()
}

func (a *transcriptAccumulator) combinedLocked() string {
	parts := append([]string(nil), a.finals...)
	if a.interim != "" {
		parts = append(parts, a.interim)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
