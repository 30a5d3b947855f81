package game

import (
	"context"
	"fmt"

	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/log"
	"github.com/lifesim-dev/lifesim/internal/profile"
)

// ContinueFrom resumes a saved game instance. The instance's profile
// becomes the tracked profile and the session moves to Game.
func (s *Session) ContinueFrom(ctx context.Context, inst api.GameInstance) error {
	epoch, err := s.begin("continue a saved game", StepInit, StepGame)
	if err != nil {
		return err
	}
	defer s.end(epoch)

	if inst.UserProfile == nil || inst.UserProfile.ID == "" {
		return s.fail("continue game", s.Step(), fmt.Errorf("%w: game %s", ErrInvalidInstance, inst.ID))
	}

	p, sc, err := s.adopt(epoch, inst.UserProfile.Clone(), inst.UserProfile.ID, "")
	if err != nil {
		return err
	}

	s.emit(log.LogEvent{
		Event:     log.EventGameContinued,
		GameID:    inst.ID.String(),
		ProfileID: p.ID.String(),
		Age:       p.CurrentAge,
		Data:      map[string]interface{}{"event": sc.Event},
	})
	s.refresh(ctx, epoch)
	return nil
}

// ContinueByID resumes the game instance with the given id, looking in the
// cached history first and asking the backend otherwise.
func (s *Session) ContinueByID(ctx context.Context, gameID profile.ID) error {
	for _, g := range s.History() {
		if g.ID == gameID {
			return s.ContinueFrom(ctx, g)
		}
	}
	g, err := s.backend.FetchGameInstance(ctx, gameID)
	if err != nil {
		return s.fail("fetch game", s.Step(), err)
	}
	return s.ContinueFrom(ctx, g)
}
