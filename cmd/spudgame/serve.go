package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/spudgame/internal/display"
	"github.com/lox/spudgame/internal/feed"
	"github.com/lox/spudgame/internal/game"
	"github.com/lox/spudgame/internal/gameid"
	"github.com/lox/spudgame/internal/history"
)

// ServeCmd runs games continuously and streams their events
type ServeCmd struct {
	GameFlags `embed:""`

	Addr       string        `kong:"default=':8080',help='Server address'"`
	Seed       *int64        `kong:"help='Base seed; game i uses seed+i (optional)'"`
	Games      int           `kong:"default='0',help='Stop after this many games (0 runs until interrupted)'"`
	RoundDelay time.Duration `kong:"default='1s',help='Pause between rounds'"`
	GameDelay  time.Duration `kong:"default='5s',help='Pause between games'"`
	Print      bool          `kong:"help='Also print the transcript to stdout'"`
	LogDir     string        `kong:"type='path',help='Save each game as <dir>/<game id>.jsonl'"`
}

func (c *ServeCmd) Run(g *Globals) error {
	logger := g.Logger()

	cfg, err := g.gameConfig(c.GameFlags)
	if err != nil {
		return err
	}
	seed, err := resolveSeed(c.Seed, logger)
	if err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	hub := feed.NewHub(logger)
	subscribers := []game.EventSubscriber{hub}
	if c.LogDir != "" {
		archiver, err := history.NewArchiver(c.LogDir, logger)
		if err != nil {
			return err
		}
		subscribers = append(subscribers, archiver)
	}
	if c.Print {
		subscribers = append(subscribers, display.NewMonitor(os.Stdout, display.Options{Color: true, ShowGameID: true}))
	}

	// Without a fixed seed the run is not reproducible, so live games get
	// time-ordered ids instead of seed-derived ones
	var newID func(int64) string
	if c.Seed == nil {
		newID = func(int64) string { return gameid.Generate() }
	}

	runner := feed.NewRunner(feed.RunnerConfig{
		Game:        cfg,
		Seed:        seed,
		MaxGames:    c.Games,
		RoundDelay:  c.RoundDelay,
		GameDelay:   c.GameDelay,
		NewID:       newID,
		Logger:      logger,
		Subscribers: subscribers,
	})

	grp, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()

	grp.Go(func() error {
		return feed.ListenAndServe(serveCtx, c.Addr, hub, logger)
	})
	grp.Go(func() error {
		// A finished run shuts the server down too
		defer stopServer()
		return runner.Run(gctx)
	})

	if err := grp.Wait(); err != nil {
		return err
	}
	logger.Info("Stopped", "games", runner.Played())
	return nil
}
