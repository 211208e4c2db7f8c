package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"lifecoo/internal/domain"
)

var (
	statusStyle = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160"))
	recapStyle  = lipgloss.NewStyle().Italic(true)
)

// terminalSink prints session events for the command line. Status lines are
// shown only in verbose mode; errors always are.
type terminalSink struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

func newTerminalSink(out io.Writer, verbose bool) *terminalSink {
	return &terminalSink{out: out, verbose: verbose}
}

func (s *terminalSink) StatusChanged(status domain.Status) {
	if !s.verbose || status.Message == "" {
		return
	}
	s.println(statusStyle.Render(fmt.Sprintf("[%s] %s", status.State, status.Message)))
}

func (s *terminalSink) PartialTranscript(text string) {
	if !s.verbose {
		return
	}
	s.println(statusStyle.Render("heard: " + text))
}

func (s *terminalSink) FormChanged(form domain.TripRequest) {
	if !s.verbose {
		return
	}
	s.println(statusStyle.Render(fmt.Sprintf("trip: %s -> %s", form.Origin, form.Destination)))
}

func (s *terminalSink) ResultRendered(domain.ResultView) {}

func (s *terminalSink) RecapStarted(summary string) {
	s.println(recapStyle.Render("speaking: " + summary))
}

func (s *terminalSink) SessionError(code domain.ErrorCode, detail string) {
	s.println(errorStyle.Render(fmt.Sprintf("error (%s): %s", code, detail)))
}

func (s *terminalSink) println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.out, line)
}
