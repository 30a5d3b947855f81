package tui

import (
	"fmt"
	"io"

	"github.com/lifesim-dev/lifesim/internal/game"
)

// FallbackRunner handles non-TTY execution by guiding users to CLI commands.
type FallbackRunner struct {
	out     io.Writer
	session *game.Session
}

// NewFallbackRunner creates a new FallbackRunner.
func NewFallbackRunner(out io.Writer, s *game.Session) *FallbackRunner {
	return &FallbackRunner{out: out, session: s}
}

// Run prints the current step and the command that moves it forward.
func (f *FallbackRunner) Run() error {
	fmt.Fprintln(f.out, "Non-TTY environment detected.")
	step := f.session.Step()
	fmt.Fprintf(f.out, "Step: %s\n", step)
	fmt.Fprintf(f.out, "Next: %s\n", NextCommand(step))
	return nil
}

// NextCommand names the non-interactive command that continues from step.
func NextCommand(step game.Step) string {
	switch step {
	case game.StepLogin:
		return "lifesim login <phone>"
	case game.StepInit:
		return "lifesim new [--from sheet.yaml]"
	case game.StepProbes:
		return "lifesim answer <n> <text>, then lifesim start"
	case game.StepGame:
		return "lifesim next <choice> | lifesim skip | lifesim legacy"
	default:
		return "lifesim status"
	}
}
