package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/tui"
)

// formField binds one text input to a profile field.
type formField struct {
	label string
	get   func(p profile.Profile) string
	set   func(p *profile.Profile, v string) error
}

func textField(label string, ptr func(p *profile.Profile) *string) formField {
	return formField{
		label: label,
		get:   func(p profile.Profile) string { return *ptr(&p) },
		set: func(p *profile.Profile, v string) error {
			*ptr(p) = v
			return nil
		},
	}
}

func intField(label string, ptr func(p *profile.Profile) *int) formField {
	return formField{
		label: label,
		get:   func(p profile.Profile) string { return strconv.Itoa(*ptr(&p)) },
		set: func(p *profile.Profile, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: not a whole number", label)
			}
			*ptr(p) = n
			return nil
		},
	}
}

func moneyField(label string, ptr func(p *profile.Profile) *float64) formField {
	return formField{
		label: label,
		get:   func(p profile.Profile) string { return strconv.FormatFloat(*ptr(&p), 'f', -1, 64) },
		set: func(p *profile.Profile, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: not a number", label)
			}
			*ptr(p) = f
			return nil
		},
	}
}

var profileFields = []formField{
	textField("Name", func(p *profile.Profile) *string { return &p.BasicInfo.Name }),
	intField("Start age", func(p *profile.Profile) *int { return &p.BasicInfo.StartAge }),
	textField("Gender", func(p *profile.Profile) *string { return &p.BasicInfo.Gender }),
	textField("Location", func(p *profile.Profile) *string { return &p.BasicInfo.Location }),
	textField("Education", func(p *profile.Profile) *string { return &p.BasicInfo.EducationLevel }),
	textField("Profession", func(p *profile.Profile) *string { return &p.BasicInfo.Profession }),
	textField("Life experiences", func(p *profile.Profile) *string { return &p.BasicInfo.LifeExperiences }),
	moneyField("Savings", func(p *profile.Profile) *float64 { return &p.EconomicStatus.Savings }),
	moneyField("Debt", func(p *profile.Profile) *float64 { return &p.EconomicStatus.Debt }),
	intField("Energy (0-100)", func(p *profile.Profile) *int { return &p.HealthStatus.EnergyLevel }),
	textField("Parents", func(p *profile.Profile) *string { return &p.FamilyBackground.ParentsStatus }),
	textField("Family assets", func(p *profile.Profile) *string { return &p.FamilyBackground.FamilyAssets }),
	textField("Father's job", func(p *profile.Profile) *string { return &p.FamilyBackground.FatherProfession }),
	textField("Mother's job", func(p *profile.Profile) *string { return &p.FamilyBackground.MotherProfession }),
}

// ProfileModel is the character creation form. The last row selects the
// difficulty with left/right.
type ProfileModel struct {
	base         profile.Profile
	inputs       []textinput.Model
	difficulty   int
	focus        int
	err          error
	ctrlCPending bool
	width        int
	height       int
}

// NewProfileModel creates a form filled from p.
func NewProfileModel(p profile.Profile, width, height int) ProfileModel {
	m := ProfileModel{width: width, height: height}
	m.inputs = make([]textinput.Model, len(profileFields))
	for i := range profileFields {
		ti := textinput.New()
		ti.CharLimit = 200
		ti.Width = 40
		m.inputs[i] = ti
	}
	m.Load(p)
	return m
}

// Load replaces the form contents with p, e.g. after a template was applied.
func (m *ProfileModel) Load(p profile.Profile) {
	m.base = p.Clone()
	for i, f := range profileFields {
		m.inputs[i].SetValue(f.get(p))
	}
	m.difficulty = 0
	for i, d := range profile.Difficulties {
		if d == p.Difficulty {
			m.difficulty = i
		}
	}
	m.err = nil
	m.setFocus(0)
}

// Profile builds the sheet from the form, reporting the first field that
// does not parse.
func (m ProfileModel) Profile() (profile.Profile, error) {
	p := m.base.Clone()
	for i, f := range profileFields {
		if err := f.set(&p, strings.TrimSpace(m.inputs[i].Value())); err != nil {
			return p, err
		}
	}
	p.Difficulty = profile.Difficulties[m.difficulty]
	return p, nil
}

// SetError shows err under the form.
func (m *ProfileModel) SetError(err error) { m.err = err }

// SetCtrlCPending sets the Ctrl+C pending state for display.
func (m *ProfileModel) SetCtrlCPending(pending bool) { m.ctrlCPending = pending }

func (m *ProfileModel) setFocus(i int) {
	rows := len(m.inputs) + 1
	m.focus = (i + rows) % rows
	for j := range m.inputs {
		if j == m.focus {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

// Init returns the initial command for the form.
func (m ProfileModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the form.
func (m ProfileModel) Update(msg tea.Msg) (ProfileModel, tea.Cmd) {
	keys := tui.DefaultKeyMap
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Submit):
			return m.submit()
		case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Down):
			m.setFocus(m.focus + 1)
			return m, nil
		case key.Matches(msg, keys.ShiftTab), key.Matches(msg, keys.Up):
			m.setFocus(m.focus - 1)
			return m, nil
		case msg.String() == tui.KeyEnter:
			if m.focus == len(m.inputs) {
				return m.submit()
			}
			m.setFocus(m.focus + 1)
			return m, nil
		}
		if m.focus == len(m.inputs) {
			n := len(profile.Difficulties)
			switch msg.String() {
			case tui.KeyLeft:
				m.difficulty = (m.difficulty + n - 1) % n
			case tui.KeyRight:
				m.difficulty = (m.difficulty + 1) % n
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	if m.focus < len(m.inputs) {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ProfileModel) submit() (ProfileModel, tea.Cmd) {
	p, err := m.Profile()
	if err == nil {
		err = p.Validate()
	}
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	return m, func() tea.Msg { return tui.ProfileSubmitMsg{Profile: p} }
}

// View renders the form.
func (m ProfileModel) View() string {
	var b strings.Builder

	b.WriteString(tui.TitleStyle.Render("Create your character"))
	b.WriteString("\n\n")

	for i, f := range profileFields {
		label := fmt.Sprintf("%-18s", f.label)
		if i == m.focus {
			label = tui.SelectedStyle.Render(label)
		} else {
			label = tui.DimStyle.Render(label)
		}
		b.WriteString(label + m.inputs[i].View() + "\n")
	}

	label := fmt.Sprintf("%-18s", "Difficulty")
	if m.focus == len(m.inputs) {
		label = tui.SelectedStyle.Render(label)
	} else {
		label = tui.DimStyle.Render(label)
	}
	b.WriteString(label)
	for i, d := range profile.Difficulties {
		if i == m.difficulty {
			b.WriteString(tui.ActiveTabStyle.Render(string(d)))
		} else {
			b.WriteString(tui.InactiveTabStyle.Render(string(d)))
		}
	}
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(tui.ErrorStyle.Render(m.err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(footer("Tab/↑↓: Move · Ctrl+S: Submit · Ctrl+T: Templates", m.ctrlCPending))

	return tui.BoxStyle.Width(boxWidth(m.width, 80)).Render(b.String())
}
