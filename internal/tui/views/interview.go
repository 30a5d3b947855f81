package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lifesim-dev/lifesim/internal/tui"
)

// maxInterviewWidth is the maximum width for the interview box.
const maxInterviewWidth = 90

// InterviewModel shows one probe question at a time. Answers are kept by
// the session; the view only edits the current one.
type InterviewModel struct {
	probes       []string
	answers      map[string]string
	cursor       int
	input        textarea.Model
	ctrlCPending bool
	width        int
	height       int
}

// NewInterviewModel creates an empty interview view.
func NewInterviewModel(width, height int) InterviewModel {
	ta := textarea.New()
	ta.Placeholder = "Your answer (leave empty to stay silent)"
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetWidth(maxInterviewWidth - 8)
	ta.SetHeight(4)
	ta.Focus()

	return InterviewModel{input: ta, width: width, height: height}
}

// Sync loads the session's probes, answers and cursor.
func (m *InterviewModel) Sync(probes []string, answers map[string]string, cursor int) {
	m.probes = probes
	m.answers = answers
	m.cursor = cursor
	m.input.Reset()
	if probe, ok := m.current(); ok {
		m.input.SetValue(answers[probe])
	}
	m.input.Focus()
}

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *InterviewModel) SetCtrlCPending(pending bool) { m.ctrlCPending = pending }

func (m InterviewModel) current() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.probes) {
		return "", false
	}
	return m.probes[m.cursor], true
}

// Init returns the initial command for the interview view.
func (m InterviewModel) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the interview view.
func (m InterviewModel) Update(msg tea.Msg) (InterviewModel, tea.Cmd) {
	keys := tui.DefaultKeyMap
	switch msg := msg.(type) {
	case tea.KeyMsg:
		probe, ok := m.current()
		switch {
		case key.Matches(msg, keys.Submit):
			cmds := []tea.Cmd{}
			if ok {
				cmds = append(cmds, m.answer(probe, 0))
			}
			cmds = append(cmds, func() tea.Msg { return tui.StartSimulationMsg{} })
			return m, tea.Sequence(cmds...)
		case msg.String() == tui.KeyEnter:
			if !ok {
				return m, nil
			}
			if m.cursor == len(m.probes)-1 {
				return m, tea.Sequence(m.answer(probe, 0), func() tea.Msg { return tui.StartSimulationMsg{} })
			}
			return m, m.answer(probe, 1)
		case key.Matches(msg, keys.Next):
			if ok {
				return m, m.answer(probe, 1)
			}
		case key.Matches(msg, keys.Prev):
			if ok {
				return m, m.answer(probe, -1)
			}
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

// answer records the edited text and then moves the cursor.
func (m InterviewModel) answer(probe string, delta int) tea.Cmd {
	text := m.input.Value()
	cmds := []tea.Cmd{func() tea.Msg { return tui.AnswerMsg{Probe: probe, Text: text} }}
	if delta != 0 {
		cmds = append(cmds, func() tea.Msg { return tui.MoveProbeMsg{Delta: delta} })
	}
	return tea.Sequence(cmds...)
}

// View renders the interview view.
func (m InterviewModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Before your life begins"))
	b.WriteString("\n\n")

	if len(m.probes) == 0 {
		b.WriteString(tui.DimStyle.Render("No questions this time. Press Ctrl+S to begin."))
		b.WriteString("\n\n")
	} else {
		for i, p := range m.probes {
			marker := tui.ProbePending
			switch {
			case i == m.cursor:
				marker = tui.ProbeCurrent
			case m.answers[p] != "":
				marker = tui.ProbeAnswered
			}
			b.WriteString(marker + " ")
		}
		b.WriteString(tui.DimStyle.Render(fmt.Sprintf("  %d/%d", m.cursor+1, len(m.probes))))
		b.WriteString("\n\n")

		if probe, ok := m.current(); ok {
			b.WriteString(lipgloss.NewStyle().Bold(true).Width(maxInterviewWidth - 8).Render(probe))
			b.WriteString("\n\n")
		}
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	b.WriteString(footer("Enter: Answer · Ctrl+N/P: Next/Prev · Ctrl+S: Start life", m.ctrlCPending))

	return tui.BoxStyle.Width(boxWidth(m.width, maxInterviewWidth)).Render(b.String())
}
