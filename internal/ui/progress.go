// Package ui provides terminal UI components for the lifesim CLI.
// This file implements the progress line shown while a backend call runs.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Outcome is how a tracked action ended.
type Outcome int

const (
	OutcomeRunning Outcome = iota
	OutcomeDone
	OutcomeFailed
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

// ProgressDisplay draws one live line for a running action: a spinner and
// the elapsed time on a TTY, one line per state change otherwise.
type ProgressDisplay struct {
	mu      sync.Mutex
	out     io.Writer
	desc    string
	isTTY   bool
	frame   int
	started time.Time
	stop    chan struct{}
	done    chan struct{}
}

// NewProgressDisplay creates a display on stdout for the given action.
func NewProgressDisplay(desc string) *ProgressDisplay {
	return NewProgressDisplayTo(os.Stdout, desc, term.IsTerminal(int(os.Stdout.Fd())))
}

// NewProgressDisplayTo creates a display writing to out.
func NewProgressDisplayTo(out io.Writer, desc string, isTTY bool) *ProgressDisplay {
	return &ProgressDisplay{out: out, desc: desc, isTTY: isTTY}
}

// Start draws the initial line and, on a TTY, keeps redrawing it until
// Finish.
func (p *ProgressDisplay) Start() {
	p.mu.Lock()
	p.started = time.Now()
	if !p.isTTY {
		fmt.Fprintf(p.out, "[RUNNING] %s\n", p.desc)
		p.mu.Unlock()
		return
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	p.renderTTY()
	p.mu.Unlock()

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				p.mu.Lock()
				p.frame++
				p.renderTTY()
				p.mu.Unlock()
			}
		}
	}()
}

// Finish stops the redraw and prints the final state of the action.
func (p *ProgressDisplay) Finish(outcome Outcome) {
	if p.stop != nil {
		close(p.stop)
		<-p.done
		p.stop = nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	elapsed := time.Since(p.started)
	if p.isTTY {
		fmt.Fprint(p.out, "\r\033[2K")
		fmt.Fprintf(p.out, "%s %s \033[90m[%s]\033[0m\n", statusIcon(outcome), p.desc, FormatDuration(elapsed))
		return
	}
	fmt.Fprintln(p.out, formatPlain(p.desc, outcome, elapsed))
}

// renderTTY redraws the line in place. Caller holds mu.
func (p *ProgressDisplay) renderTTY() {
	frame := spinnerFrames[p.frame%len(spinnerFrames)]
	fmt.Fprintf(p.out, "\r\033[2K\033[33m%c\033[0m %s \033[90m[%s]\033[0m",
		frame, p.desc, FormatDuration(time.Since(p.started)))
}

// formatPlain formats the final line for non-TTY output.
func formatPlain(desc string, outcome Outcome, elapsed time.Duration) string {
	switch outcome {
	case OutcomeDone:
		return fmt.Sprintf("[DONE] %s [%s]", desc, FormatDuration(elapsed))
	case OutcomeFailed:
		return fmt.Sprintf("[FAILED] %s", desc)
	default:
		return fmt.Sprintf("[RUNNING] %s", desc)
	}
}

// statusIcon returns the status icon for an outcome.
func statusIcon(outcome Outcome) string {
	switch outcome {
	case OutcomeDone:
		return "\033[32m✓\033[0m"
	case OutcomeFailed:
		return "\033[31m✗\033[0m"
	default:
		return "\033[33m⏳\033[0m"
	}
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", h, m, s)
}
