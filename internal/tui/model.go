package tui

import (
	"github.com/charmbracelet/bubbles/spinner"

	"github.com/lifesim-dev/lifesim/internal/config"
	"github.com/lifesim-dev/lifesim/internal/game"
)

// ViewState represents the current state of the TUI.
type ViewState int

const (
	StateLoading ViewState = iota // restoring the stored session
	StateLogin
	StateInit
	StateProbes
	StateGame
)

// StateFor maps a progression step to the screen that shows it.
func StateFor(step game.Step) ViewState {
	switch step {
	case game.StepInit:
		return StateInit
	case game.StepProbes:
		return StateProbes
	case game.StepGame:
		return StateGame
	default:
		return StateLogin
	}
}

// Tab represents the active tab in the TUI.
type Tab int

const (
	TabPlay Tab = iota
	TabHistory
	TabTemplates
)

// TabNames labels the tab bar.
var TabNames = []string{"Play", "History", "Templates"}

// Model holds the application state shared across views.
type Model struct {
	State     ViewState
	ActiveTab Tab
	Err       error
	Notice    string

	Cfg     *config.Config
	Session *game.Session

	Spinner spinner.Model

	// Terminal dimensions
	Width  int
	Height int

	// Ctrl+C confirmation state
	CtrlCPending bool
}

// NewModel creates a new Model for the given session.
func NewModel(cfg *config.Config, s *game.Session) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = WarningStyle

	return &Model{
		State:   StateLoading,
		Cfg:     cfg,
		Session: s,
		Spinner: sp,
		Width:   80,
		Height:  24,
	}
}

// Busy reports whether a transition is in flight.
func (m *Model) Busy() bool {
	pending, _ := m.Session.Status()
	return pending
}
