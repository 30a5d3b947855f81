package game

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Refresh reloads the history and template lists. Failures are logged and
// the previous lists kept.
func (s *Session) Refresh(ctx context.Context) {
	s.mu.RLock()
	epoch := s.epoch
	s.mu.RUnlock()
	s.refresh(ctx, epoch)
}

func (s *Session) refresh(ctx context.Context, epoch uint64) {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	if user == nil {
		return
	}
	userID := user.ID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.soft("refresh history", func() error {
			history, err := s.backend.FetchHistory(gctx, userID)
			if err != nil {
				return err
			}
			return s.commit(epoch, func() { s.history = history })
		})
		return nil
	})
	g.Go(func() error {
		s.soft("refresh templates", func() error {
			templates, err := s.backend.FetchTemplates(gctx, userID)
			if err != nil {
				return err
			}
			return s.commit(epoch, func() { s.templates = templates })
		})
		return nil
	})
	_ = g.Wait()
}
