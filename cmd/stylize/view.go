package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	alertStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF5F87"})

	messageStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"})

	imageStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}).
		Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
		Faint(true)
)

// terminalView prints what a page would render.
type terminalView struct {
	out io.Writer

	imageURL string
	message  string
}

func (v *terminalView) Alert(message string) {
	fmt.Fprintln(v.out, alertStyle.Render("! "+message))
}

func (v *terminalView) ShowResult(imageURL, message string) {
	v.imageURL = imageURL
	v.message = message

	fmt.Fprintln(v.out, messageStyle.Render(message))
	fmt.Fprintln(v.out, imageStyle.Render(imageURL))
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner draws the in-flight state on a single line of out.
type spinner struct {
	out io.Writer

	mu   sync.Mutex
	text string
	stop chan struct{}
	done chan struct{}
}

// SetSubmitEnabled is a no-op: a one-shot run has nothing to resubmit.
func (s *spinner) SetSubmitEnabled(bool) {}

func (s *spinner) SetButtonText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

func (s *spinner) SetSpinnerVisible(visible bool) {
	s.mu.Lock()

	if visible {
		if s.stop == nil {
			s.stop = make(chan struct{})
			s.done = make(chan struct{})
			go s.run(s.stop, s.done)
		}
		s.mu.Unlock()
		return
	}

	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
}

func (s *spinner) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		text := s.text
		s.mu.Unlock()

		fmt.Fprintf(s.out, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], buttonStyle.Render(text))

		select {
		case <-stop:
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}
