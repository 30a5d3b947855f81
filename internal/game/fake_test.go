package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/log"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/scenario"
)

var errBoom = errors.New("boom")

// fakeBackend answers every call from its fields and counts the calls.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	user    api.User
	authErr error

	persistID  profile.ID
	persistErr error
	probes     []string
	probesErr  error

	templateErr   error
	gameErr       error
	gameProfileID profile.ID

	started      profile.Profile
	startErr     error
	startedID    profile.ID
	startAnswers map[string]string

	next       profile.Profile
	nextErr    error
	lastChoice string

	skip      profile.Profile
	skipErr   error
	skipYears int

	legacy    profile.Profile
	legacyErr error

	history      []api.GameInstance
	historyErr   error
	templates    []profile.Template
	templatesErr error

	fetched    api.GameInstance
	fetchedErr error

	// When block is set, AdvanceYear signals entered and waits on block.
	block   chan struct{}
	entered chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls:     make(map[string]int),
		user:      api.User{ID: "7", Phone: "13800000000"},
		persistID: "5",
		probes:    []string{"q1", "q2"},
		started:   scenarioProfile("5", 25, `{"event":"first year"}`),
		next:      scenarioProfile("5", 26, `"{\"event\":\"second year\"}"`),
		skip:      scenarioProfile("5", 30, `{"message":"time flies"}`),
		legacy:    scenarioProfile("6", 18, `"the heir begins"`),
	}
}

func (f *fakeBackend) hit(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeBackend) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) Authenticate(_ context.Context, phone string) (api.User, error) {
	f.hit("login")
	if f.authErr != nil {
		return api.User{}, f.authErr
	}
	u := f.user
	u.Phone = phone
	return u, nil
}

func (f *fakeBackend) FetchHistory(context.Context, profile.ID) ([]api.GameInstance, error) {
	f.hit("history")
	return f.history, f.historyErr
}

func (f *fakeBackend) FetchTemplates(context.Context, profile.ID) ([]profile.Template, error) {
	f.hit("templates")
	return f.templates, f.templatesErr
}

func (f *fakeBackend) FetchGameInstance(context.Context, profile.ID) (api.GameInstance, error) {
	f.hit("fetch game")
	return f.fetched, f.fetchedErr
}

func (f *fakeBackend) PersistProfile(_ context.Context, p profile.Profile) (profile.Profile, error) {
	f.hit("persist")
	if f.persistErr != nil {
		return profile.Profile{}, f.persistErr
	}
	p.ID = f.persistID
	return p, nil
}

func (f *fakeBackend) GenerateProbes(context.Context, profile.Profile) ([]string, error) {
	f.hit("probes")
	return f.probes, f.probesErr
}

func (f *fakeBackend) CreateTemplate(_ context.Context, _ profile.ID, p profile.Profile) (profile.Template, error) {
	f.hit("template")
	if f.templateErr != nil {
		return profile.Template{}, f.templateErr
	}
	return profile.NewTemplate(p.BasicInfo.Name, p)
}

func (f *fakeBackend) StartGameInstance(_ context.Context, userID profile.ID, p profile.Profile) (api.GameInstance, error) {
	f.hit("game")
	if f.gameErr != nil {
		return api.GameInstance{}, f.gameErr
	}
	if f.gameProfileID != "" {
		p.ID = f.gameProfileID
	}
	return api.GameInstance{ID: "g1", UserID: userID, UserProfile: &p, Status: api.StatusActive}, nil
}

func (f *fakeBackend) AnalyzeAndStart(_ context.Context, id profile.ID, answers map[string]string) (profile.Profile, error) {
	f.hit("start")
	f.mu.Lock()
	f.startedID = id
	f.startAnswers = answers
	f.mu.Unlock()
	return f.started, f.startErr
}

func (f *fakeBackend) AdvanceYear(_ context.Context, _ profile.ID, choice string) (profile.Profile, error) {
	f.hit("next")
	if f.block != nil {
		f.entered <- struct{}{}
		<-f.block
	}
	f.mu.Lock()
	f.lastChoice = choice
	f.mu.Unlock()
	return f.next, f.nextErr
}

func (f *fakeBackend) SkipYears(_ context.Context, _ profile.ID, years int) (profile.Profile, error) {
	f.hit("skip")
	f.mu.Lock()
	f.skipYears = years
	f.mu.Unlock()
	return f.skip, f.skipErr
}

func (f *fakeBackend) CreateLegacy(context.Context, profile.ID) (profile.Profile, error) {
	f.hit("legacy")
	return f.legacy, f.legacyErr
}

type memIdentity struct {
	user    *api.User
	loadErr error
	cleared bool
}

func (m *memIdentity) LoadUser() (*api.User, error) { return m.user, m.loadErr }
func (m *memIdentity) SaveUser(u api.User) error { m.user = &u; return nil }
func (m *memIdentity) ClearUser() error { m.user = nil; m.cleared = true; return nil }

type memSessions struct {
	mu      sync.Mutex
	snap    *Snapshot
	journal []JournalEntry
}

func (m *memSessions) LoadSnapshot(userID profile.ID) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil || m.snap.UserID != userID {
		return nil, nil
	}
	snap := *m.snap
	return &snap, nil
}

func (m *memSessions) SaveSnapshot(snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = &snap
	return nil
}

func (m *memSessions) ClearSnapshot() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	m.journal = nil
	return nil
}

func (m *memSessions) AppendJournal(entry JournalEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = append(m.journal, entry)
	return nil
}

func (m *memSessions) entries() []JournalEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]JournalEntry(nil), m.journal...)
}

func scenarioProfile(id profile.ID, age int, rawScenario string) profile.Profile {
	p := profile.Default()
	p.ID = id
	p.CurrentAge = age
	p.CurrentScenario = scenario.FromRaw(json.RawMessage(rawScenario))
	p.AvailableChoices = []string{"stay", "go"}
	return p
}

type harness struct {
	backend  *fakeBackend
	identity *memIdentity
	sessions *memSessions
	events   *log.Recorder
	session  *Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		backend:  newFakeBackend(),
		identity: &memIdentity{},
		sessions: &memSessions{},
		events:   &log.Recorder{},
	}
	h.session = New(h.backend, Options{Identity: h.identity, Sessions: h.sessions, Events: h.events})
	return h
}

// toStep drives the session forward to step through the happy path.
func (h *harness) toStep(t *testing.T, step Step) {
	t.Helper()
	ctx := context.Background()
	if step >= StepInit {
		if err := h.session.Login(ctx, "13800000000"); err != nil {
			t.Fatalf("Login: %v", err)
		}
	}
	if step >= StepProbes {
		if err := h.session.SubmitProfile(ctx); err != nil {
			t.Fatalf("SubmitProfile: %v", err)
		}
	}
	if step >= StepGame {
		if err := h.session.StartSimulation(ctx); err != nil {
			t.Fatalf("StartSimulation: %v", err)
		}
	}
	if got := h.session.Step(); got != step {
		t.Fatalf("Step() = %s, want %s", got, step)
	}
}

func (h *harness) hasEvent(name string) bool {
	for _, n := range h.events.Names() {
		if n == name {
			return true
		}
	}
	return false
}

func (h *harness) softFailures() []string {
	var ops []string
	for _, e := range h.events.Events() {
		if e.Event == log.EventSoftStepFailed {
			ops = append(ops, e.Op)
		}
	}
	return ops
}
