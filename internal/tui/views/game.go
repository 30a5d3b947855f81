package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/scenario"
	"github.com/lifesim-dev/lifesim/internal/tui"
)

const (
	maxGameWidth = 96
	energyBar    = 20
)

// GameModel shows the current year and collects the next choice.
type GameModel struct {
	profile  profile.Profile
	scenario scenario.Scenario

	// Typewriter reveal of the event text.
	event    []rune
	revealed int
	seq      int
	delay    time.Duration

	selected int
	input    textinput.Model

	confirming bool
	skipYears  int

	ctrlCPending bool
	width        int
	height       int
}

// NewGameModel creates a game view that reveals events at delay per
// character; zero shows them at once.
func NewGameModel(delay time.Duration, skipYears, width, height int) GameModel {
	ti := textinput.New()
	ti.Placeholder = "or type your own choice"
	ti.CharLimit = 500
	ti.Width = maxGameWidth - 12

	return GameModel{
		delay:     delay,
		skipYears: skipYears,
		input:     ti,
		width:     width,
		height:    height,
	}
}

// Sync shows a new year. The returned command drives the typewriter.
func (m *GameModel) Sync(p profile.Profile, sc scenario.Scenario) tea.Cmd {
	same := m.profile.ID == p.ID && m.profile.CurrentAge == p.CurrentAge && m.scenario == sc
	m.profile = p
	m.scenario = sc
	m.confirming = false
	if same {
		return nil
	}

	m.event = []rune(sc.Event)
	m.selected = 0
	m.input.SetValue("")
	m.input.Blur()
	m.seq++
	if m.delay <= 0 {
		m.revealed = len(m.event)
		return nil
	}
	m.revealed = 0
	return m.tick()
}

func (m GameModel) tick() tea.Cmd {
	seq := m.seq
	return tea.Tick(m.delay, func(time.Time) tea.Msg { return tui.TypewriterTickMsg{Seq: seq} })
}

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *GameModel) SetCtrlCPending(pending bool) { m.ctrlCPending = pending }

// Init returns the initial command for the game view.
func (m GameModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the game view.
func (m GameModel) Update(msg tea.Msg) (GameModel, tea.Cmd) {
	keys := tui.DefaultKeyMap
	switch msg := msg.(type) {
	case tui.TypewriterTickMsg:
		if msg.Seq != m.seq || m.revealed >= len(m.event) {
			return m, nil
		}
		m.revealed++
		return m, m.tick()

	case tea.KeyMsg:
		if m.confirming {
			switch {
			case key.Matches(msg, keys.Confirm):
				m.confirming = false
				years := m.skipYears
				return m, func() tea.Msg { return tui.SkipMsg{Years: years} }
			case key.Matches(msg, keys.Decline):
				m.confirming = false
			}
			return m, nil
		}

		// Any key first finishes the reveal.
		if m.revealed < len(m.event) {
			m.revealed = len(m.event)
			return m, nil
		}

		choices := m.profile.AvailableChoices
		switch {
		case key.Matches(msg, keys.Skip):
			m.confirming = true
			return m, nil
		case key.Matches(msg, keys.Legacy):
			return m, func() tea.Msg { return tui.LegacyMsg{} }
		case key.Matches(msg, keys.Up):
			if m.selected > 0 {
				m.selected--
				m.input.Blur()
			}
			return m, nil
		case key.Matches(msg, keys.Down):
			if m.selected < len(choices) {
				m.selected++
			}
			if m.selected == len(choices) {
				m.input.Focus()
			}
			return m, nil
		case msg.String() == tui.KeyEnter:
			choice := strings.TrimSpace(m.input.Value())
			if m.selected < len(choices) {
				choice = choices[m.selected]
			}
			if choice == "" {
				return m, nil
			}
			return m, func() tea.Msg { return tui.ChoiceMsg{Choice: choice} }
		}

		// Typing moves the selection to the free-text row.
		if m.selected < len(choices) && msg.Type == tea.KeyRunes {
			m.selected = len(choices)
			m.input.Focus()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the game view.
func (m GameModel) View() string {
	var b strings.Builder
	p := m.profile
	inner := boxWidth(m.width, maxGameWidth) - 6

	title := fmt.Sprintf("%s, age %d", p.BasicInfo.Name, p.CurrentAge)
	b.WriteString(tui.TitleStyle.Render(title))
	b.WriteString(tui.DimStyle.Render(fmt.Sprintf("   generation %d · %s", max(p.Generation, 1), p.Difficulty)))
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n\n")

	event := string(m.event[:m.revealed])
	b.WriteString(lipgloss.NewStyle().Width(inner).Render(event))
	b.WriteString("\n\n")

	if m.revealed >= len(m.event) {
		b.WriteString(tui.DimStyle.Render("Status: "))
		b.WriteString(m.scenario.StatusChange)
		b.WriteString("\n")
		b.WriteString(tui.DimStyle.Render("Relationships: "))
		b.WriteString(m.scenario.RelationshipChange)
		b.WriteString("\n\n")

		for i, c := range p.AvailableChoices {
			line := fmt.Sprintf("  %d. %s", i+1, c)
			if i == m.selected {
				line = tui.SelectedStyle.Render("> " + strconv.Itoa(i+1) + ". " + c)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	if m.confirming {
		b.WriteString(tui.WarningStyle.Render(fmt.Sprintf("Skip %d years? (y/n)", m.skipYears)))
		b.WriteString("\n\n")
	}

	b.WriteString(footer("Enter: Choose · Ctrl+K: Skip · Ctrl+G: Next generation · Ctrl+T: Tabs", m.ctrlCPending))

	return tui.BoxStyle.Width(boxWidth(m.width, maxGameWidth)).Render(b.String())
}

func (m GameModel) renderStats() string {
	p := m.profile
	energy := min(max(p.HealthStatus.EnergyLevel, 0), 100)
	filled := energy * energyBar / 100
	bar := tui.EnergyFullStyle.Render(strings.Repeat("█", filled)) +
		tui.EnergyEmptyStyle.Render(strings.Repeat("░", energyBar-filled))

	return fmt.Sprintf("%s  energy %s %d  savings %.0f  debt %.0f",
		tui.DimStyle.Render(p.BasicInfo.Profession), bar, energy,
		p.EconomicStatus.Savings, p.EconomicStatus.Debt)
}
