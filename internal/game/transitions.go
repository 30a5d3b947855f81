package game

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lifesim-dev/lifesim/internal/log"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/scenario"
)

// Confirmer is asked before a multi-year skip. Returning false cancels it.
type Confirmer func(years int) bool

// Restore loads a stored identity and, when one exists, moves straight to
// Init (or to the saved step of the last session) and refreshes the lists.
// It reports whether a user was restored.
func (s *Session) Restore(ctx context.Context) (bool, error) {
	if s.identity == nil {
		return false, nil
	}
	epoch, err := s.begin("restore session", StepLogin)
	if err != nil {
		return false, err
	}
	defer s.end(epoch)

	u, err := s.identity.LoadUser()
	if err != nil {
		return false, s.fail("restore session", StepLogin, fmt.Errorf("load identity: %w", err))
	}
	if u == nil {
		return false, nil
	}

	var snap *Snapshot
	if s.sessions != nil {
		s.soft("load session", func() error {
			var err error
			snap, err = s.sessions.LoadSnapshot(u.ID)
			return err
		})
	}

	var step Step
	if err := s.commit(epoch, func() {
		s.user = u
		s.step = StepInit
		if snap != nil {
			s.restoreLocked(*snap)
		}
		step = s.step
	}); err != nil {
		return false, err
	}

	s.emit(log.LogEvent{Event: log.EventSessionRestored, UserID: u.ID.String(), Step: step.String()})
	s.refresh(ctx, epoch)
	return true, nil
}

// restoreLocked reinstates a saved snapshot. Caller holds mu.
func (s *Session) restoreLocked(snap Snapshot) {
	if snap.Step == StepLogin {
		return
	}
	s.step = snap.Step
	s.profile = snap.Profile.Clone()
	s.probes.Restore(snap.Probes, snap.Answers)
	if s.step == StepGame {
		s.scenario = scenario.Normalize(s.profile.CurrentScenario)
	}
}

// Login authenticates with phone and moves to Init. On failure the session
// stays in Login.
func (s *Session) Login(ctx context.Context, phone string) error {
	epoch, err := s.begin("log in", StepLogin)
	if err != nil {
		return err
	}
	defer s.end(epoch)

	u, err := s.backend.Authenticate(ctx, phone)
	if err != nil {
		return s.fail("login", StepLogin, err)
	}

	var snap *Snapshot
	if err := s.commit(epoch, func() {
		s.user = &u
		s.step = StepInit
		s.profile = draft(s.difficulty)
		s.scenario = scenario.Default()
		s.probes.Reset(nil)
		snap = s.snapshotLocked()
	}); err != nil {
		return err
	}

	if s.identity != nil {
		s.soft("store identity", func() error { return s.identity.SaveUser(u) })
	}
	s.save(snap)
	s.emit(log.LogEvent{Event: log.EventLogin, UserID: u.ID.String()})
	s.refresh(ctx, epoch)
	return nil
}

// Logout forgets the stored identity and every piece of session state.
// It is always legal; a transition still running has its result discarded.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.epoch++
	s.guard.leave()
	var userID string
	if s.user != nil {
		userID = s.user.ID.String()
	}
	s.user = nil
	s.step = StepLogin
	s.profile = draft(s.difficulty)
	s.scenario = scenario.Default()
	s.probes.Reset(nil)
	s.history = nil
	s.templates = nil
	s.mu.Unlock()

	var errs []error
	if s.identity != nil {
		if err := s.identity.ClearUser(); err != nil {
			errs = append(errs, fmt.Errorf("clear identity: %w", err))
		}
	}
	if s.sessions != nil {
		if err := s.sessions.ClearSnapshot(); err != nil {
			errs = append(errs, fmt.Errorf("clear session: %w", err))
		}
	}
	s.emit(log.LogEvent{Event: log.EventLogout, UserID: userID})
	return errors.Join(errs...)
}

// SetProfile replaces the character sheet being edited in Init. The id the
// backend assigned earlier, if any, is kept.
func (s *Session) SetProfile(p profile.Profile) error {
	s.mu.Lock()
	if s.guard.pending {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.step != StepInit {
		step := s.step
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot edit the character during %s", ErrWrongStep, step)
	}
	p = p.Clone()
	p.ID = s.profile.ID
	s.profile = p
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.save(snap)
	return nil
}

// SubmitProfile persists the character sheet, adopting the id the backend
// assigns, then fetches the probe questions and moves to Probes. If probe
// generation fails the session stays in Init but keeps the new id.
func (s *Session) SubmitProfile(ctx context.Context) error {
	epoch, err := s.begin("create character", StepInit)
	if err != nil {
		return err
	}
	defer s.end(epoch)

	s.mu.RLock()
	draft := s.profile.Clone()
	s.mu.RUnlock()

	if err := draft.Validate(); err != nil {
		return s.fail("persist profile", StepInit, err)
	}

	saved, err := s.backend.PersistProfile(ctx, draft)
	if err != nil {
		return s.fail("persist profile", StepInit, err)
	}
	if saved.ID == "" {
		return s.fail("persist profile", StepInit, errors.New("persist profile: backend returned no profile id"))
	}
	draft.ID = saved.ID
	var snap *Snapshot
	if err := s.commit(epoch, func() {
		s.profile.ID = saved.ID
		snap = s.snapshotLocked()
	}); err != nil {
		return err
	}
	s.save(snap)
	s.emit(log.LogEvent{Event: log.EventProfilePersisted, ProfileID: saved.ID.String()})

	probes, err := s.backend.GenerateProbes(ctx, draft)
	if err != nil {
		return s.fail("generate probes", StepInit, err)
	}
	if err := s.commit(epoch, func() {
		s.probes.Reset(probes)
		s.step = StepProbes
		snap = s.snapshotLocked()
	}); err != nil {
		return err
	}
	s.save(snap)
	s.emit(log.LogEvent{Event: log.EventProbesGenerated, ProfileID: saved.ID.String(), Probes: len(probes)})
	return nil
}

// RecordAnswer stores text verbatim as the answer to probe.
func (s *Session) RecordAnswer(probe, text string) error {
	s.mu.Lock()
	if s.step != StepProbes {
		step := s.step
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot answer probes during %s", ErrWrongStep, step)
	}
	s.probes.Record(probe, text)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.save(snap)
	return nil
}

// StartSimulation submits the probe answers and opens the first year. The
// template save and the game instance record are best effort; only the
// analysis call can fail the transition, which then stays in Probes.
func (s *Session) StartSimulation(ctx context.Context) error {
	epoch, err := s.begin("start the simulation", StepProbes)
	if err != nil {
		return err
	}
	defer s.end(epoch)

	s.mu.RLock()
	p := s.profile.Clone()
	user := s.user
	s.mu.RUnlock()

	id := p.ID
	if user != nil {
		s.soft("save template", func() error {
			_, err := s.backend.CreateTemplate(ctx, user.ID, p)
			return err
		})
		s.soft("start game instance", func() error {
			g, err := s.backend.StartGameInstance(ctx, user.ID, p)
			if err != nil {
				return err
			}
			if g.UserProfile != nil && g.UserProfile.ID != "" {
				id = g.UserProfile.ID
			}
			return nil
		})
	}

	s.mu.RLock()
	answers := s.probes.Finalize(s.probes.Probes())
	s.mu.RUnlock()

	started, err := s.backend.AnalyzeAndStart(ctx, id, answers)
	if err != nil {
		return s.fail("start simulation", StepProbes, err)
	}
	started, sc, err := s.adopt(epoch, started, id, "")
	if err != nil {
		return err
	}

	s.emit(log.LogEvent{
		Event:     log.EventSimulationStarted,
		ProfileID: started.ID.String(),
		Age:       started.CurrentAge,
		Probes:    len(answers),
		Data:      map[string]interface{}{"event": sc.Event},
	})
	s.refresh(ctx, epoch)
	return nil
}

// AdvanceYear submits the player's choice for the coming year. A blank
// choice does nothing.
func (s *Session) AdvanceYear(ctx context.Context, choice string) error {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return nil
	}
	epoch, err := s.begin("advance a year", StepGame)
	if err != nil {
		return err
	}
	defer s.end(epoch)

	id := s.profileID()
	next, err := s.backend.AdvanceYear(ctx, id, choice)
	if err != nil {
		return s.fail("advance year", StepGame, err)
	}
	next, _, err = s.adopt(epoch, next, id, choice)
	if err != nil {
		return err
	}
	s.emit(log.LogEvent{Event: log.EventYearAdvanced, ProfileID: next.ID.String(), Age: next.CurrentAge, Choice: choice})
	return nil
}

// SkipYears fast-forwards by years after confirm approves. It reports
// whether the skip happened; a declined confirmation is not an error.
// Only the scenario of the final year is kept.
func (s *Session) SkipYears(ctx context.Context, years int, confirm Confirmer) (bool, error) {
	if years <= 0 {
		return false, fmt.Errorf("%w: got %d", ErrInvalidYears, years)
	}
	epoch, err := s.begin(fmt.Sprintf("skip %d years", years), StepGame)
	if err != nil {
		return false, err
	}
	defer s.end(epoch)

	if confirm == nil || !confirm(years) {
		return false, nil
	}

	id := s.profileID()
	next, err := s.backend.SkipYears(ctx, id, years)
	if err != nil {
		return false, s.fail("skip years", StepGame, err)
	}
	next, _, err = s.adopt(epoch, next, id, fmt.Sprintf("skip %d years", years))
	if err != nil {
		return false, err
	}
	s.emit(log.LogEvent{Event: log.EventYearsSkipped, ProfileID: next.ID.String(), Age: next.CurrentAge, Years: years})
	return true, nil
}

// CreateLegacy ends the current generation. The heir's profile, with the
// id the backend gave it, becomes the tracked profile; the step stays Game.
func (s *Session) CreateLegacy(ctx context.Context) error {
	epoch, err := s.begin("pass on the legacy", StepGame)
	if err != nil {
		return err
	}
	defer s.end(epoch)

	parent := s.profileID()
	heir, err := s.backend.CreateLegacy(ctx, parent)
	if err != nil {
		return s.fail("create legacy", StepGame, err)
	}
	heir, _, err = s.adopt(epoch, heir, parent, "")
	if err != nil {
		return err
	}
	s.emit(log.LogEvent{
		Event:     log.EventLegacyCreated,
		ProfileID: heir.ID.String(),
		ParentID:  parent.String(),
		Age:       heir.CurrentAge,
	})
	s.refresh(ctx, epoch)
	return nil
}

// ApplyTemplate merges t into the tracked profile and returns to Init with
// the probe cursor rewound. A corrupt template leaves everything unchanged.
func (s *Session) ApplyTemplate(t profile.Template) error {
	epoch, err := s.begin("apply template", StepInit, StepProbes, StepGame)
	if err != nil {
		return err
	}
	defer s.end(epoch)

	s.mu.RLock()
	merged := s.profile.Clone()
	s.mu.RUnlock()

	if err := merged.ApplyTemplate(t); err != nil {
		return s.fail("apply template", s.Step(), err)
	}

	var snap *Snapshot
	if err := s.commit(epoch, func() {
		s.profile = merged
		s.probes.Rewind()
		s.step = StepInit
		snap = s.snapshotLocked()
	}); err != nil {
		return err
	}
	s.save(snap)
	s.emit(log.LogEvent{Event: log.EventTemplateApplied, Template: t.Name, ProfileID: merged.ID.String()})
	return nil
}

func (s *Session) profileID() profile.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.ID
}

// adopt makes p the tracked profile and moves to Game. A response without
// an id keeps fallback. Probes and answers do not outlive the interview.
func (s *Session) adopt(epoch uint64, p profile.Profile, fallback profile.ID, choice string) (profile.Profile, scenario.Scenario, error) {
	if p.ID == "" {
		p.ID = fallback
	}
	sc := scenario.Normalize(p.CurrentScenario)

	var snap *Snapshot
	if err := s.commit(epoch, func() {
		s.profile = p.Clone()
		s.scenario = sc
		s.step = StepGame
		s.probes.Reset(nil)
		snap = s.snapshotLocked()
	}); err != nil {
		return p, sc, err
	}
	s.save(snap)
	s.journal(p, sc, choice)
	return p, sc, nil
}
