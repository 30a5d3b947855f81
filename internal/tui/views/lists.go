package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/tui"
)

// GameItem implements list.Item for a history entry.
type GameItem struct {
	Instance api.GameInstance
}

// Title returns the character name.
func (i GameItem) Title() string { return i.Instance.Title() }

// Description summarizes status and progress.
func (i GameItem) Description() string {
	g := i.Instance
	parts := []string{strings.ToLower(g.Status)}
	if g.UserProfile != nil {
		parts = append(parts, fmt.Sprintf("age %d", g.UserProfile.CurrentAge))
		if g.UserProfile.Generation > 1 {
			parts = append(parts, fmt.Sprintf("generation %d", g.UserProfile.Generation))
		}
	}
	if g.LastUpdateTime != "" {
		parts = append(parts, g.LastUpdateTime)
	}
	return strings.Join(parts, " · ")
}

// FilterValue returns the value used for filtering in the list.
func (i GameItem) FilterValue() string { return i.Instance.Title() }

// TemplateItem implements list.Item for a saved template.
type TemplateItem struct {
	Template profile.Template
}

// Title returns the template name.
func (i TemplateItem) Title() string { return i.Template.Name }

// Description shows when the template was saved.
func (i TemplateItem) Description() string {
	if i.Template.CreateTime == "" {
		return "template " + i.Template.ID.String()
	}
	return "saved " + i.Template.CreateTime
}

// FilterValue returns the value used for filtering in the list.
func (i TemplateItem) FilterValue() string { return i.Template.Name }

// ListModel is a filterable list of history entries or templates. Enter
// on an item emits a ContinueMsg or TemplateMsg.
type ListModel struct {
	list         list.Model
	ctrlCPending bool
	width        int
	height       int
}

// NewListModel creates an empty list with the given title.
func NewListModel(title string, width, height int) ListModel {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(tui.SelectedStyle.GetForeground()).
		BorderForeground(tui.SelectedStyle.GetForeground())

	l := list.New(nil, delegate, width-4, height-6)
	l.Title = title
	l.Styles.Title = tui.ActiveTabStyle
	l.SetShowHelp(false)
	l.SetStatusBarItemName("entry", "entries")

	return ListModel{list: l, width: width, height: height}
}

// SetHistory replaces the items with game instances.
func (m *ListModel) SetHistory(games []api.GameInstance) tea.Cmd {
	items := make([]list.Item, len(games))
	for i, g := range games {
		items[i] = GameItem{Instance: g}
	}
	return m.list.SetItems(items)
}

// SetTemplates replaces the items with templates.
func (m *ListModel) SetTemplates(templates []profile.Template) tea.Cmd {
	items := make([]list.Item, len(templates))
	for i, t := range templates {
		items[i] = TemplateItem{Template: t}
	}
	return m.list.SetItems(items)
}

// Filtering reports whether the filter input has focus.
func (m ListModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *ListModel) SetCtrlCPending(pending bool) { m.ctrlCPending = pending }

// Update handles messages for the list.
func (m ListModel) Update(msg tea.Msg) (ListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == tui.KeyEnter && !m.Filtering() {
			switch item := m.list.SelectedItem().(type) {
			case GameItem:
				return m, func() tea.Msg { return tui.ContinueMsg{Instance: item.Instance} }
			case TemplateItem:
				return m, func() tea.Msg { return tui.TemplateMsg{Template: item.Template} }
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list.
func (m ListModel) View() string {
	return m.list.View() + "\n" + footer("Enter: Open · /: Filter · Ctrl+R: Refresh · Ctrl+T: Tabs", m.ctrlCPending)
}
