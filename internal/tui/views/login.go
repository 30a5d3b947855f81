// Package views provides TUI view components for lifesim.
package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lifesim-dev/lifesim/internal/tui"
)

// LoginModel is the view model for the login screen.
type LoginModel struct {
	phone        textinput.Model
	ctrlCPending bool
	width        int
	height       int
}

// NewLoginModel creates a new LoginModel.
func NewLoginModel(width, height int) LoginModel {
	ti := textinput.New()
	ti.Placeholder = "phone number"
	ti.CharLimit = 32
	ti.Width = 30
	ti.Focus()

	return LoginModel{phone: ti, width: width, height: height}
}

// Init returns the initial command for the login view.
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the login view.
func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == tui.KeyEnter {
			phone := strings.TrimSpace(m.phone.Value())
			return m, func() tea.Msg { return tui.LoginSubmitMsg{Phone: phone} }
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	var cmd tea.Cmd
	m.phone, cmd = m.phone.Update(msg)
	return m, cmd
}

// Reset clears the phone field.
func (m *LoginModel) Reset() {
	m.phone.SetValue("")
	m.phone.Focus()
}

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *LoginModel) SetCtrlCPending(pending bool) {
	m.ctrlCPending = pending
}

// View renders the login view.
func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Life Simulator"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("#E5E7EB")).
		Render("Log in with your phone number to continue."))
	b.WriteString("\n\n")
	b.WriteString(m.phone.View())
	b.WriteString("\n\n")
	b.WriteString(footer("Enter: Log in", m.ctrlCPending))

	return tui.BoxStyle.Width(boxWidth(m.width, 60)).Render(b.String())
}

// footer renders key hints followed by the exit hint.
func footer(hints string, ctrlCPending bool) string {
	exit := tui.DimStyle.Render("Ctrl+C: Exit")
	if ctrlCPending {
		exit = tui.WarningStyle.Render("Press Ctrl+C again to exit")
	}
	return tui.DimStyle.Render(hints+" · ") + exit
}

// boxWidth caps a box at limit columns or the screen width.
func boxWidth(width, limit int) int {
	if width-4 < limit {
		return width - 4
	}
	return limit
}
