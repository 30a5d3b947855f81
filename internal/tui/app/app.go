// Package app provides the main TUI application that wires all views together.
package app

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lifesim-dev/lifesim/internal/config"
	"github.com/lifesim-dev/lifesim/internal/game"
	"github.com/lifesim-dev/lifesim/internal/tui"
	"github.com/lifesim-dev/lifesim/internal/tui/commands"
	"github.com/lifesim-dev/lifesim/internal/tui/views"
)

// App is the main TUI application that wires all views together.
type App struct {
	model *tui.Model

	// View models
	loginView     views.LoginModel
	profileView   views.ProfileModel
	interviewView views.InterviewModel
	gameView      views.GameModel
	historyView   views.ListModel
	templatesView views.ListModel
}

// New creates a new App driving s.
func New(cfg *config.Config, s *game.Session) *App {
	model := tui.NewModel(cfg, s)
	w, h := model.Width, model.Height

	return &App{
		model:         model,
		loginView:     views.NewLoginModel(w, h),
		profileView:   views.NewProfileModel(s.Profile(), w, h),
		interviewView: views.NewInterviewModel(w, h),
		gameView:      views.NewGameModel(cfg.Typewriter(), cfg.Game.DefaultSkipYears, w, h),
		historyView:   views.NewListModel("History", w, h),
		templatesView: views.NewListModel("Templates", w, h),
	}
}

// Init restores the stored session.
func (a *App) Init() tea.Cmd {
	return tea.Batch(commands.RestoreCmd(a.model.Session), a.model.Spinner.Tick, a.loginView.Init())
}

// Update handles messages and updates the application state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	s := a.model.Session
	keys := tui.DefaultKeyMap

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.model.Width = msg.Width
		a.model.Height = msg.Height
		a.loginView, _ = a.loginView.Update(msg)
		a.profileView, _ = a.profileView.Update(msg)
		a.interviewView, _ = a.interviewView.Update(msg)
		a.gameView, _ = a.gameView.Update(msg)
		a.historyView, _ = a.historyView.Update(msg)
		a.templatesView, _ = a.templatesView.Update(msg)
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CtrlC):
			if a.model.CtrlCPending {
				return a, tea.Quit
			}
			a.model.CtrlCPending = true
			return a, tea.Tick(time.Second, func(time.Time) tea.Msg {
				return tui.CtrlCResetMsg{}
			})
		case key.Matches(msg, keys.Tabs):
			if a.loggedIn() && !a.filtering() {
				return a, a.cycleTab()
			}
		case key.Matches(msg, keys.Logout):
			if a.loggedIn() {
				return a, commands.LogoutCmd(s)
			}
		case key.Matches(msg, keys.Refresh):
			if a.model.ActiveTab != tui.TabPlay {
				return a, commands.RefreshCmd(s)
			}
		}

	case tui.CtrlCResetMsg:
		a.model.CtrlCPending = false
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.model.Spinner, cmd = a.model.Spinner.Update(msg)
		return a, cmd

	case tui.RestoredMsg:
		a.model.Err = msg.Err
		if msg.Resumed {
			a.model.Notice = "Welcome back."
		}
		return a, a.sync(true)

	case tui.TransitionDoneMsg:
		return a, a.handleDone(msg)

	case tui.RefreshedMsg:
		return a, tea.Batch(
			a.historyView.SetHistory(s.History()),
			a.templatesView.SetTemplates(s.Templates()),
		)

	case tui.LoginSubmitMsg:
		return a, commands.LoginCmd(s, msg.Phone)

	case tui.ProfileSubmitMsg:
		return a, commands.SubmitProfileCmd(s, msg.Profile)

	case tui.AnswerMsg:
		a.model.Err = s.RecordAnswer(msg.Probe, msg.Text)
		a.syncInterview()
		return a, nil

	case tui.MoveProbeMsg:
		s.MoveProbe(msg.Delta)
		a.syncInterview()
		return a, nil

	case tui.StartSimulationMsg:
		return a, commands.StartSimulationCmd(s)

	case tui.ChoiceMsg:
		return a, commands.AdvanceYearCmd(s, msg.Choice)

	case tui.SkipMsg:
		return a, commands.SkipYearsCmd(s, msg.Years)

	case tui.LegacyMsg:
		return a, commands.CreateLegacyCmd(s)

	case tui.ContinueMsg:
		return a, commands.ContinueCmd(s, msg.Instance)

	case tui.TemplateMsg:
		return a, commands.ApplyTemplateCmd(s, msg.Template)

	case tui.TypewriterTickMsg:
		var cmd tea.Cmd
		a.gameView, cmd = a.gameView.Update(msg)
		return a, cmd
	}

	return a, a.route(msg)
}

// route forwards msg to the visible view.
func (a *App) route(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.model.ActiveTab {
	case tui.TabHistory:
		a.historyView, cmd = a.historyView.Update(msg)
		return cmd
	case tui.TabTemplates:
		a.templatesView, cmd = a.templatesView.Update(msg)
		return cmd
	}

	switch a.model.State {
	case tui.StateLogin:
		a.loginView, cmd = a.loginView.Update(msg)
	case tui.StateInit:
		a.profileView, cmd = a.profileView.Update(msg)
	case tui.StateProbes:
		a.interviewView, cmd = a.interviewView.Update(msg)
	case tui.StateGame:
		a.gameView, cmd = a.gameView.Update(msg)
	}
	return cmd
}

// handleDone applies the outcome of a transition.
func (a *App) handleDone(msg tui.TransitionDoneMsg) tea.Cmd {
	if errors.Is(msg.Err, game.ErrDiscarded) {
		return nil
	}
	a.model.Err = msg.Err
	a.model.Notice = ""
	if msg.Err != nil {
		if msg.Op == commands.OpSubmit {
			a.profileView.SetError(msg.Err)
		}
		return nil
	}

	switch msg.Op {
	case commands.OpLogout:
		a.model.ActiveTab = tui.TabPlay
		a.loginView.Reset()
		a.model.Notice = "Logged out."
	case commands.OpContinue, commands.OpTemplate:
		a.model.ActiveTab = tui.TabPlay
	case commands.OpLegacy:
		a.model.Notice = "A new generation begins."
	}

	reload := msg.Op == commands.OpTemplate || msg.Op == commands.OpLogin || msg.Op == commands.OpLogout
	return tea.Batch(a.sync(reload), commands.RefreshCmd(a.model.Session))
}

// sync moves to the screen for the session's step and loads its data.
// reloadForm refills the character form even when the step is unchanged.
func (a *App) sync(reloadForm bool) tea.Cmd {
	s := a.model.Session
	prev := a.model.State
	a.model.State = tui.StateFor(s.Step())

	switch a.model.State {
	case tui.StateInit:
		if reloadForm || prev != tui.StateInit {
			a.profileView.Load(s.Profile())
		}
		return a.profileView.Init()
	case tui.StateProbes:
		a.syncInterview()
	case tui.StateGame:
		return a.gameView.Sync(s.Profile(), s.Scenario())
	}
	return nil
}

func (a *App) syncInterview() {
	s := a.model.Session
	cursor, _, _ := s.CurrentProbe()
	a.interviewView.Sync(s.Probes(), s.Answers(), cursor)
}

func (a *App) loggedIn() bool {
	_, ok := a.model.Session.User()
	return ok
}

func (a *App) filtering() bool {
	switch a.model.ActiveTab {
	case tui.TabHistory:
		return a.historyView.Filtering()
	case tui.TabTemplates:
		return a.templatesView.Filtering()
	}
	return false
}

// cycleTab cycles through Play, History and Templates. Opening a list tab
// refreshes it.
func (a *App) cycleTab() tea.Cmd {
	a.model.ActiveTab = (a.model.ActiveTab + 1) % tui.Tab(len(tui.TabNames))
	if a.model.ActiveTab == tui.TabPlay {
		return nil
	}
	return commands.RefreshCmd(a.model.Session)
}

// View renders the current application state.
func (a *App) View() string {
	pending := a.model.CtrlCPending
	a.loginView.SetCtrlCPending(pending)
	a.profileView.SetCtrlCPending(pending)
	a.interviewView.SetCtrlCPending(pending)
	a.gameView.SetCtrlCPending(pending)
	a.historyView.SetCtrlCPending(pending)
	a.templatesView.SetCtrlCPending(pending)

	var content string
	switch a.model.ActiveTab {
	case tui.TabHistory:
		content = a.historyView.View()
	case tui.TabTemplates:
		content = a.templatesView.View()
	default:
		content = a.renderPlay()
	}

	parts := []string{content, a.renderStatus()}
	if a.loggedIn() {
		parts = append(parts, a.renderTabBar())
	}
	return a.centerContent(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

func (a *App) renderPlay() string {
	switch a.model.State {
	case tui.StateLoading:
		return tui.BoxStyle.Render(a.model.Spinner.View() + " Loading your life...")
	case tui.StateLogin:
		return a.loginView.View()
	case tui.StateInit:
		return a.profileView.View()
	case tui.StateProbes:
		return a.interviewView.View()
	case tui.StateGame:
		return a.gameView.View()
	default:
		return "Unknown state"
	}
}

// renderStatus shows the pending action, the last error or a notice.
func (a *App) renderStatus() string {
	if a.model.Busy() {
		_, desc := a.model.Session.Status()
		return a.model.Spinner.View() + " " + tui.WarningStyle.Render(desc+"...")
	}
	if a.model.Err != nil {
		return tui.ErrorStyle.Render(a.model.Err.Error())
	}
	if a.model.Notice != "" {
		return tui.SuccessStyle.Render(a.model.Notice)
	}
	return ""
}

// renderTabBar renders the tab bar with the active tab highlighted.
func (a *App) renderTabBar() string {
	rendered := make([]string, len(tui.TabNames))
	for i, name := range tui.TabNames {
		if tui.Tab(i) == a.model.ActiveTab {
			rendered[i] = tui.ActiveTabStyle.Render(name)
		} else {
			rendered[i] = tui.InactiveTabStyle.Render(name)
		}
	}
	user, _ := a.model.Session.User()
	bar := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	return bar + tui.StatusBarStyle.Render(strings.TrimSpace("user "+user.ID.String()+" · Ctrl+X: Log out"))
}

// centerContent centers the given content both horizontally and vertically.
func (a *App) centerContent(content string) string {
	return lipgloss.Place(
		a.model.Width,
		a.model.Height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}
