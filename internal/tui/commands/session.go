// Package commands provides Bubble Tea commands that drive the game session.
package commands

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/game"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/tui"
)

// Operation names carried by tui.TransitionDoneMsg.
const (
	OpLogin    = "login"
	OpLogout   = "logout"
	OpSubmit   = "submit_profile"
	OpStart    = "start_simulation"
	OpAdvance  = "advance_year"
	OpSkip     = "skip_years"
	OpLegacy   = "create_legacy"
	OpContinue = "continue"
	OpTemplate = "apply_template"
)

// done wraps the result of a transition.
func done(op string, err error) tea.Msg {
	return tui.TransitionDoneMsg{Op: op, Err: err}
}

// RestoreCmd loads the stored identity and session.
func RestoreCmd(s *game.Session) tea.Cmd {
	return func() tea.Msg {
		resumed, err := s.Restore(context.Background())
		return tui.RestoredMsg{Resumed: resumed, Err: err}
	}
}

// LoginCmd authenticates with a phone number.
func LoginCmd(s *game.Session, phone string) tea.Cmd {
	return func() tea.Msg {
		return done(OpLogin, s.Login(context.Background(), phone))
	}
}

// LogoutCmd clears the identity and session.
func LogoutCmd(s *game.Session) tea.Cmd {
	return func() tea.Msg {
		return done(OpLogout, s.Logout())
	}
}

// SubmitProfileCmd stores the edited sheet and submits it for probes.
func SubmitProfileCmd(s *game.Session, p profile.Profile) tea.Cmd {
	return func() tea.Msg {
		if err := s.SetProfile(p); err != nil {
			return done(OpSubmit, err)
		}
		return done(OpSubmit, s.SubmitProfile(context.Background()))
	}
}

// StartSimulationCmd starts the first simulated year.
func StartSimulationCmd(s *game.Session) tea.Cmd {
	return func() tea.Msg {
		return done(OpStart, s.StartSimulation(context.Background()))
	}
}

// AdvanceYearCmd submits the choice for the current year.
func AdvanceYearCmd(s *game.Session, choice string) tea.Cmd {
	return func() tea.Msg {
		return done(OpAdvance, s.AdvanceYear(context.Background(), choice))
	}
}

// SkipYearsCmd fast-forwards. The view asks for confirmation before
// sending it, so the confirmer always agrees.
func SkipYearsCmd(s *game.Session, years int) tea.Cmd {
	return func() tea.Msg {
		_, err := s.SkipYears(context.Background(), years, func(int) bool { return true })
		return done(OpSkip, err)
	}
}

// CreateLegacyCmd starts the next generation.
func CreateLegacyCmd(s *game.Session) tea.Cmd {
	return func() tea.Msg {
		return done(OpLegacy, s.CreateLegacy(context.Background()))
	}
}

// ContinueCmd resumes a game from history.
func ContinueCmd(s *game.Session, inst api.GameInstance) tea.Cmd {
	return func() tea.Msg {
		return done(OpContinue, s.ContinueFrom(context.Background(), inst))
	}
}

// ApplyTemplateCmd merges a template into the current sheet.
func ApplyTemplateCmd(s *game.Session, t profile.Template) tea.Cmd {
	return func() tea.Msg {
		return done(OpTemplate, s.ApplyTemplate(t))
	}
}

// RefreshCmd reloads history and templates.
func RefreshCmd(s *game.Session) tea.Cmd {
	return func() tea.Msg {
		s.Refresh(context.Background())
		return tui.RefreshedMsg{}
	}
}
