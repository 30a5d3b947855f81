// Package game drives one player's progression through the life simulation:
// login, character creation, the probe interview and the yearly game loop.
package game

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/log"
	"github.com/lifesim-dev/lifesim/internal/probe"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/scenario"
)

// Step is the progression stage of a session.
type Step int

const (
	StepLogin Step = iota
	StepInit
	StepProbes
	StepGame
)

func (s Step) String() string {
	switch s {
	case StepLogin:
		return "login"
	case StepInit:
		return "init"
	case StepProbes:
		return "probes"
	case StepGame:
		return "game"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

var (
	// ErrBusy is returned when a transition is attempted while another is pending.
	ErrBusy = errors.New("another action is in progress")
	// ErrWrongStep is returned when a transition is not legal from the current step.
	ErrWrongStep = errors.New("action not available at this step")
	// ErrInvalidInstance is returned when a game instance carries no profile id.
	ErrInvalidInstance = errors.New("game instance has no profile id")
	// ErrInvalidYears is returned when a skip asks for fewer than one year.
	ErrInvalidYears = errors.New("years to skip must be positive")
	// ErrDiscarded is returned by a transition whose result arrived after logout.
	ErrDiscarded = errors.New("session was reset while the action was running")
	// ErrNotLoggedIn is returned when an action needs the authenticated user.
	ErrNotLoggedIn = errors.New("not logged in")
)

// Backend is the remote simulation service.
type Backend interface {
	Authenticate(ctx context.Context, phone string) (api.User, error)
	FetchHistory(ctx context.Context, userID profile.ID) ([]api.GameInstance, error)
	FetchTemplates(ctx context.Context, userID profile.ID) ([]profile.Template, error)
	FetchGameInstance(ctx context.Context, id profile.ID) (api.GameInstance, error)
	PersistProfile(ctx context.Context, p profile.Profile) (profile.Profile, error)
	GenerateProbes(ctx context.Context, p profile.Profile) ([]string, error)
	CreateTemplate(ctx context.Context, userID profile.ID, p profile.Profile) (profile.Template, error)
	StartGameInstance(ctx context.Context, userID profile.ID, p profile.Profile) (api.GameInstance, error)
	AnalyzeAndStart(ctx context.Context, profileID profile.ID, answers map[string]string) (profile.Profile, error)
	AdvanceYear(ctx context.Context, profileID profile.ID, choice string) (profile.Profile, error)
	SkipYears(ctx context.Context, profileID profile.ID, years int) (profile.Profile, error)
	CreateLegacy(ctx context.Context, profileID profile.ID) (profile.Profile, error)
}

// IdentityStore keeps the authenticated user across runs.
type IdentityStore interface {
	LoadUser() (*api.User, error) // nil when nobody is stored
	SaveUser(u api.User) error
	ClearUser() error
}

// SessionStore keeps the progression state and the scenario journal
// across runs.
type SessionStore interface {
	LoadSnapshot(userID profile.ID) (*Snapshot, error) // nil when none
	SaveSnapshot(snap Snapshot) error
	ClearSnapshot() error
	AppendJournal(entry JournalEntry) error
}

// EventSink receives structured progression events.
type EventSink interface {
	Append(event log.LogEvent) error
}

// Snapshot is the persisted form of a session.
type Snapshot struct {
	UserID  profile.ID
	Step    Step
	Profile profile.Profile
	Probes  []string
	Answers map[string]string
	Saved   time.Time
}

// JournalEntry is one committed scenario of a playthrough.
type JournalEntry struct {
	UserID     profile.ID
	ProfileID  profile.ID
	Generation int
	Age        int
	Choice     string
	Scenario   scenario.Scenario
	Time       time.Time
}

// Options wires the optional collaborators of a Session.
type Options struct {
	Identity IdentityStore
	Sessions SessionStore
	Events   EventSink

	// DefaultDifficulty seeds the difficulty of every new character
	// sheet. Empty or unknown values leave profile.Default's.
	DefaultDifficulty profile.Difficulty
}

// Session is the progression state machine for one player. All methods are
// safe for concurrent use; transitions are serialized by a busy guard.
type Session struct {
	backend    Backend
	identity   IdentityStore
	sessions   SessionStore
	events     EventSink
	difficulty profile.Difficulty

	mu        sync.RWMutex
	step      Step
	user      *api.User
	profile   profile.Profile
	scenario  scenario.Scenario
	probes    probe.Collector
	history   []api.GameInstance
	templates []profile.Template
	guard     guard
	epoch     uint64
}

// New creates a Session in the Login step.
func New(backend Backend, opts Options) *Session {
	return &Session{
		backend:    backend,
		identity:   opts.Identity,
		sessions:   opts.Sessions,
		events:     opts.Events,
		difficulty: opts.DefaultDifficulty,
		step:       StepLogin,
		profile:    draft(opts.DefaultDifficulty),
		scenario:   scenario.Default(),
	}
}

// draft returns a blank character sheet with difficulty d when d is known.
func draft(d profile.Difficulty) profile.Profile {
	p := profile.Default()
	if d != "" && d.Valid() {
		p.Difficulty = d
	}
	return p
}

// Step returns the current step.
func (s *Session) Step() Step {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.step
}

// Status reports whether a transition is pending and what it is doing.
func (s *Session) Status() (bool, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guard.pending, s.guard.description
}

// User returns the authenticated user, if any.
func (s *Session) User() (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return api.User{}, false
	}
	return *s.user, true
}

// Profile returns a copy of the tracked profile.
func (s *Session) Profile() profile.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// Scenario returns the normalized current scenario.
func (s *Session) Scenario() scenario.Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scenario
}

// Probes returns the probe questions of the current init cycle.
func (s *Session) Probes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.probes.Probes()
}

// Answers returns the answers recorded so far, verbatim.
func (s *Session) Answers() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.probes.Answers()
}

// CurrentProbe returns the probe under the interview cursor.
func (s *Session) CurrentProbe() (int, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.probes.Current()
	return s.probes.Cursor(), q, ok
}

// MoveProbe moves the interview cursor forward (delta > 0) or back.
func (s *Session) MoveProbe(delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if delta > 0 {
		return s.probes.Next()
	}
	return s.probes.Prev()
}

// History returns the cached game instances, newest first.
func (s *Session) History() []api.GameInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]api.GameInstance(nil), s.history...)
}

// Templates returns the cached templates.
func (s *Session) Templates() []profile.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]profile.Template(nil), s.templates...)
}

// begin claims the guard for a transition legal from one of allowed.
func (s *Session) begin(description string, allowed ...Step) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.guard.pending {
		return 0, ErrBusy
	}
	if !stepIn(s.step, allowed) {
		return 0, fmt.Errorf("%w: cannot %s during %s", ErrWrongStep, description, s.step)
	}
	s.guard.enter(description)
	return s.epoch, nil
}

// end releases the guard unless logout already reset it.
func (s *Session) end(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.guard.leave()
	}
}

// commit applies fn to the state if no logout happened since begin.
func (s *Session) commit(epoch uint64, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return ErrDiscarded
	}
	fn()
	return nil
}

func stepIn(step Step, allowed []Step) bool {
	for _, a := range allowed {
		if step == a {
			return true
		}
	}
	return false
}

// soft runs a best-effort sub-step. Failures are logged, never returned.
func (s *Session) soft(op string, fn func() error) {
	if err := fn(); err != nil && !errors.Is(err, ErrDiscarded) {
		s.emit(log.LogEvent{Event: log.EventSoftStepFailed, Op: op, Error: err.Error()})
	}
}

// fail logs a hard failure and returns err unchanged.
func (s *Session) fail(op string, step Step, err error) error {
	if errors.Is(err, ErrDiscarded) {
		return err
	}
	s.emit(log.LogEvent{Event: log.EventTransitionFailed, Op: op, Step: step.String(), Error: err.Error()})
	return err
}

func (s *Session) emit(event log.LogEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(event); err != nil {
		fmt.Fprintf(os.Stderr, "lifesim: event log: %v\n", err)
	}
}

// snapshotLocked captures the persistable state. Caller holds mu.
func (s *Session) snapshotLocked() *Snapshot {
	if s.user == nil {
		return nil
	}
	return &Snapshot{
		UserID:  s.user.ID,
		Step:    s.step,
		Profile: s.profile.Clone(),
		Probes:  s.probes.Probes(),
		Answers: s.probes.Answers(),
		Saved:   time.Now().UTC(),
	}
}

// save persists snap as a soft sub-step.
func (s *Session) save(snap *Snapshot) {
	if s.sessions == nil || snap == nil {
		return
	}
	s.soft("save session", func() error { return s.sessions.SaveSnapshot(*snap) })
}

// journal appends the committed scenario as a soft sub-step.
func (s *Session) journal(p profile.Profile, sc scenario.Scenario, choice string) {
	if s.sessions == nil {
		return
	}
	var userID profile.ID
	if u, ok := s.User(); ok {
		userID = u.ID
	}
	entry := JournalEntry{
		UserID:     userID,
		ProfileID:  p.ID,
		Generation: p.Generation,
		Age:        p.CurrentAge,
		Choice:     choice,
		Scenario:   sc,
		Time:       time.Now().UTC(),
	}
	s.soft("append journal", func() error { return s.sessions.AppendJournal(entry) })
}
