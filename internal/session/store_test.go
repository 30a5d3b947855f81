package session

import (
	"path/filepath"
	"testing"

	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/game"
	"github.com/lifesim-dev/lifesim/internal/probe"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/scenario"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "lifesim.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// Both interfaces the controller persists through.
var (
	_ game.IdentityStore = (*Store)(nil)
	_ game.SessionStore  = (*Store)(nil)
)

func TestIdentityRoundTrip(t *testing.T) {
	s := newTestStore(t)

	u, err := s.LoadUser()
	if err != nil || u != nil {
		t.Fatalf("LoadUser() on empty store = %+v, %v", u, err)
	}

	if err := s.SaveUser(api.User{ID: "7", Phone: "138"}); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	if err := s.SaveUser(api.User{ID: "8", Phone: "139"}); err != nil {
		t.Fatalf("SaveUser again: %v", err)
	}
	u, err = s.LoadUser()
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if u == nil || u.ID != "8" || u.Phone != "139" {
		t.Errorf("LoadUser() = %+v, want the latest user", u)
	}

	if err := s.ClearUser(); err != nil {
		t.Fatalf("ClearUser: %v", err)
	}
	if u, _ := s.LoadUser(); u != nil {
		t.Errorf("LoadUser() after clear = %+v", u)
	}
}

func TestIdentitySurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifesim.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := s.SaveUser(api.User{ID: "7"}); err != nil {
		t.Fatalf("SaveUser: %v", err)
	}
	_ = s.Close()

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	u, err := reopened.LoadUser()
	if err != nil || u == nil || u.ID != "7" {
		t.Errorf("LoadUser() after reopen = %+v, %v", u, err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)

	if snap, err := s.LoadSnapshot("7"); err != nil || snap != nil {
		t.Fatalf("LoadSnapshot() on empty store = %+v, %v", snap, err)
	}

	p := profile.Default()
	p.ID = "5"
	p.CurrentAge = 31
	p.CurrentScenario = scenario.Text(`{"event":"kept raw"}`)
	in := game.Snapshot{
		UserID:  "7",
		Step:    game.StepProbes,
		Profile: p,
		Probes:  []string{"q1", "q2"},
		Answers: map[string]string{"q1": "yes", "q2": probe.SilentAnswer},
	}
	if err := s.SaveSnapshot(in); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	out, err := s.LoadSnapshot("7")
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if out == nil {
		t.Fatal("LoadSnapshot() = nil")
	}
	if out.Step != game.StepProbes || out.Profile.ID != "5" || out.Profile.CurrentAge != 31 {
		t.Errorf("snapshot = step %s id %q age %d", out.Step, out.Profile.ID, out.Profile.CurrentAge)
	}
	if out.Profile.CurrentScenario.Kind != scenario.KindText {
		t.Errorf("scenario kind = %s, want text", out.Profile.CurrentScenario.Kind)
	}
	if got := out.Profile.Scenario().Event; got != "kept raw" {
		t.Errorf("scenario event = %q", got)
	}
	if len(out.Probes) != 2 || out.Answers["q1"] != "yes" || out.Answers["q2"] != probe.SilentAnswer {
		t.Errorf("probes %v answers %v", out.Probes, out.Answers)
	}
	if out.Saved.IsZero() {
		t.Error("Saved not set")
	}

	if other, _ := s.LoadSnapshot("8"); other != nil {
		t.Errorf("LoadSnapshot(other user) = %+v", other)
	}
}

func TestSaveSnapshotUpdatesInPlace(t *testing.T) {
	s := newTestStore(t)

	snap := game.Snapshot{UserID: "7", Step: game.StepProbes, Profile: profile.Default(), Answers: map[string]string{"q1": "a", "q2": "b"}}
	if err := s.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	first, _ := s.Current("7")

	snap.Step = game.StepGame
	snap.Answers = map[string]string{"q1": "changed"}
	if err := s.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot again: %v", err)
	}
	second, err := s.Current("7")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if first == nil || second == nil || first.ID != second.ID {
		t.Fatalf("sessions %+v then %+v, want the same row", first, second)
	}
	if second.Step != "game" || second.Answers != 1 {
		t.Errorf("Current() = %+v", second)
	}

	out, _ := s.LoadSnapshot("7")
	if len(out.Answers) != 1 || out.Answers["q1"] != "changed" {
		t.Errorf("answers = %v, want replaced", out.Answers)
	}
}

func runningSnapshot(userID, profileID profile.ID) game.Snapshot {
	p := profile.Default()
	p.ID = profileID
	return game.Snapshot{UserID: userID, Step: game.StepGame, Profile: p}
}

func TestJournal(t *testing.T) {
	s := newTestStore(t)

	entry := game.JournalEntry{UserID: "7", ProfileID: "5", Age: 25, Scenario: scenario.Default()}
	if err := s.AppendJournal(entry); err == nil {
		t.Error("AppendJournal without a session should fail")
	}

	if err := s.SaveSnapshot(runningSnapshot("7", "5")); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	for age := 25; age < 29; age++ {
		e := game.JournalEntry{
			UserID:     "7",
			ProfileID:  "5",
			Generation: 1,
			Age:        age,
			Choice:     "go",
			Scenario:   scenario.Scenario{Event: "year", StatusChange: "s", RelationshipChange: "r"},
		}
		if err := s.AppendJournal(e); err != nil {
			t.Fatalf("AppendJournal: %v", err)
		}
	}

	all, err := s.Journal("7", "5", 0)
	if err != nil {
		t.Fatalf("Journal: %v", err)
	}
	if len(all) != 4 || all[0].Age != 25 || all[3].Age != 28 {
		t.Fatalf("Journal(0) = %+v", all)
	}
	if all[0].ProfileID != "5" || all[0].Choice != "go" || all[0].Scenario.RelationshipChange != "r" {
		t.Errorf("entry = %+v", all[0])
	}

	last, err := s.Journal("7", "5", 2)
	if err != nil {
		t.Fatalf("Journal(2): %v", err)
	}
	if len(last) != 2 || last[0].Age != 27 || last[1].Age != 28 {
		t.Errorf("Journal(2) = %+v, want the last two oldest first", last)
	}

	sum, _ := s.Current("7")
	if sum == nil || sum.Years != 4 {
		t.Errorf("Current() = %+v, want 4 journal entries", sum)
	}
}

func TestJournalIsPerGeneration(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveSnapshot(runningSnapshot("7", "5")); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	for _, e := range []game.JournalEntry{
		{UserID: "7", ProfileID: "5", Generation: 1, Age: 25, Scenario: scenario.Default()},
		{UserID: "7", ProfileID: "5", Generation: 1, Age: 26, Scenario: scenario.Default()},
		{UserID: "7", ProfileID: "6", Generation: 2, Age: 18, Scenario: scenario.Default()},
	} {
		if err := s.AppendJournal(e); err != nil {
			t.Fatalf("AppendJournal: %v", err)
		}
	}
	// The heir is now the tracked profile.
	if err := s.SaveSnapshot(runningSnapshot("7", "6")); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	heir, err := s.Journal("7", "6", 0)
	if err != nil {
		t.Fatalf("Journal: %v", err)
	}
	if len(heir) != 1 || heir[0].Generation != 2 || heir[0].Age != 18 {
		t.Errorf("heir journal = %+v, want only generation 2", heir)
	}
	if sum, _ := s.Current("7"); sum == nil || sum.Years != 1 || sum.ProfileID != "6" {
		t.Errorf("Current() = %+v, want 1 year for profile 6", sum)
	}
	if parent, _ := s.Journal("7", "5", 0); len(parent) != 2 {
		t.Errorf("parent journal = %+v, want its 2 years kept apart", parent)
	}
}

func TestJournalIsScopedToUser(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveSnapshot(runningSnapshot("7", "5")); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if err := s.SaveSnapshot(runningSnapshot("8", "5")); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	if err := s.AppendJournal(game.JournalEntry{UserID: "7", ProfileID: "5", Age: 30, Scenario: scenario.Default()}); err != nil {
		t.Fatalf("AppendJournal: %v", err)
	}
	if err := s.AppendJournal(game.JournalEntry{ProfileID: "5", Scenario: scenario.Default()}); err == nil {
		t.Error("AppendJournal without a user should fail")
	}

	if mine, _ := s.Journal("7", "5", 0); len(mine) != 1 || mine[0].Age != 30 {
		t.Errorf("user 7 journal = %+v", mine)
	}
	if other, _ := s.Journal("8", "5", 0); len(other) != 0 {
		t.Errorf("user 8 sees %+v, want nothing", other)
	}
	if sum, _ := s.Current("9"); sum != nil {
		t.Errorf("Current(unknown user) = %+v", sum)
	}
}

func TestClearSnapshot(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveSnapshot(game.Snapshot{UserID: "7", Step: game.StepGame, Profile: profile.Default(), Answers: map[string]string{"q": "a"}}); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if err := s.AppendJournal(game.JournalEntry{UserID: "7", ProfileID: "5", Scenario: scenario.Default()}); err != nil {
		t.Fatalf("AppendJournal: %v", err)
	}

	if err := s.ClearSnapshot(); err != nil {
		t.Fatalf("ClearSnapshot: %v", err)
	}
	if snap, _ := s.LoadSnapshot("7"); snap != nil {
		t.Errorf("snapshot survived clear: %+v", snap)
	}
	if sum, _ := s.Current("7"); sum != nil {
		t.Errorf("Current() after clear = %+v", sum)
	}
	if entries, _ := s.Journal("7", "5", 0); len(entries) != 0 {
		t.Errorf("journal survived clear: %+v", entries)
	}
}
