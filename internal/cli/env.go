package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lifesim-dev/lifesim/internal/api"
	"github.com/lifesim-dev/lifesim/internal/config"
	"github.com/lifesim-dev/lifesim/internal/game"
	"github.com/lifesim-dev/lifesim/internal/log"
	"github.com/lifesim-dev/lifesim/internal/profile"
	"github.com/lifesim-dev/lifesim/internal/session"
	"github.com/lifesim-dev/lifesim/internal/ui"
)

// env is everything a command needs: config, the local store, the event
// log and a restored game session.
type env struct {
	cfg     *config.Config
	dir     string
	events  *log.Logger
	store   *session.Store
	session *game.Session
}

// openEnv loads config from the data directory and restores the stored
// session.
func openEnv(cmd *cobra.Command) (*env, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	if serverFlag != "" {
		cfg.Server.BaseURL = serverFlag
	}

	events, err := log.NewLogger(dir)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	store, err := session.NewStore(config.DBPath(dir))
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	client := api.NewClient(cfg.Server.BaseURL, cfg.Timeout())
	s := game.New(client, game.Options{
		Identity:          store,
		Sessions:          store,
		Events:            events,
		DefaultDifficulty: profile.Difficulty(cfg.Game.DefaultDifficulty),
	})
	if _, err := s.Restore(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	return &env{cfg: cfg, dir: dir, events: events, store: store, session: s}, nil
}

func (e *env) Close() error {
	return e.store.Close()
}

// withEnv adapts a command body that needs an env to cobra's RunE.
func withEnv(fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, args, e)
	}
}

// requireUser fails with a hint when nobody is logged in.
func (e *env) requireUser() (api.User, error) {
	u, ok := e.session.User()
	if !ok {
		return api.User{}, fmt.Errorf("%w; run: lifesim login <phone>", game.ErrNotLoggedIn)
	}
	return u, nil
}

// track runs fn behind a progress line.
func track(desc string, fn func() error) error {
	p := ui.NewProgressDisplay(desc)
	p.Start()
	err := fn()
	if err != nil {
		p.Finish(ui.OutcomeFailed)
		return err
	}
	p.Finish(ui.OutcomeDone)
	return nil
}
