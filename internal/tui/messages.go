package tui

import (
	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/profile"
)

// ============================================================================
// Session Messages
// ============================================================================

// RestoredMsg reports the outcome of loading the stored identity and
// session at startup.
type RestoredMsg struct {
	Resumed bool
	Err     error
}

// TransitionDoneMsg signals that a progression action finished. The app
// re-reads the session after every one.
type TransitionDoneMsg struct {
	Op  string
	Err error
}

// RefreshedMsg signals that the history and template lists were reloaded.
type RefreshedMsg struct{}

// ============================================================================
// View Requests
// ============================================================================

// LoginSubmitMsg is sent when the user submits a phone number.
type LoginSubmitMsg struct {
	Phone string
}

// ProfileSubmitMsg is sent when the character form is submitted.
type ProfileSubmitMsg struct {
	Profile profile.Profile
}

// AnswerMsg records the answer to one probe.
type AnswerMsg struct {
	Probe string
	Text  string
}

// MoveProbeMsg moves the interview cursor by Delta.
type MoveProbeMsg struct {
	Delta int
}

// StartSimulationMsg requests the start of the first year.
type StartSimulationMsg struct{}

// ChoiceMsg submits the choice for the current year.
type ChoiceMsg struct {
	Choice string
}

// SkipMsg asks to fast-forward; the user already confirmed.
type SkipMsg struct {
	Years int
}

// LegacyMsg requests the next generation.
type LegacyMsg struct{}

// ContinueMsg resumes a game from history.
type ContinueMsg struct {
	Instance api.GameInstance
}

// TemplateMsg applies a saved template to the character form.
type TemplateMsg struct {
	Template profile.Template
}

// ============================================================================
// Utility Messages
// ============================================================================

// TypewriterTickMsg reveals the next character of the event text.
type TypewriterTickMsg struct {
	Seq int
}

// CtrlCResetMsg clears the pending Ctrl+C exit confirmation.
type CtrlCResetMsg struct{}
