package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/spudgame/internal/display"
	"github.com/lox/spudgame/internal/game"
	"github.com/lox/spudgame/internal/history"
	"github.com/lox/spudgame/internal/randutil"
)

// PlayCmd plays one game and prints the transcript
type PlayCmd struct {
	GameFlags `embed:""`

	Seed        *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	GameID      string `kong:"name='game-id',help='Label events with this id instead of one derived from the seed'"`
	ShowGuesses bool   `kong:"help='Show the guessed number on each round line'"`
	NoColor     bool   `kong:"help='Disable coloured output'"`
	LogFile     string `kong:"type='path',help='Write the event log as JSON lines to this file'"`
}

func (c *PlayCmd) Run(g *Globals) error {
	logger := g.Logger()

	cfg, err := g.gameConfig(c.GameFlags)
	if err != nil {
		return err
	}
	seed, err := resolveSeed(c.Seed, logger)
	if err != nil {
		return err
	}
	if cfg.ID, err = gameIDFor(c.GameID, seed); err != nil {
		return err
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	end, err := playGame(ctx, os.Stdout, cfg, seed, c.playOptions(), logger)
	if err != nil {
		return err
	}
	logger.Debug("Game over", "game", end.GameID, "reason", end.Reason, "attempts", end.Attempts)
	return nil
}

func (c *PlayCmd) playOptions() playOptions {
	return playOptions{
		color:       !c.NoColor,
		showGuesses: c.ShowGuesses,
		logFile:     c.LogFile,
	}
}

type playOptions struct {
	color       bool
	showGuesses bool
	logFile     string
}

// playGame runs one game to completion, printing to w and optionally
// exporting the event log.
func playGame(ctx context.Context, w io.Writer, cfg game.Config, seed int64, opts playOptions, logger *log.Logger) (*game.GameEndEvent, error) {
	recorder := history.NewRecorder()
	monitor := display.NewMonitor(w, display.Options{
		Color:       opts.color,
		ShowGuesses: opts.showGuesses,
	})

	engine, err := game.NewEngine(cfg, randutil.New(seed),
		game.WithLogger(logger),
		game.WithSubscribers(monitor, recorder))
	if err != nil {
		return nil, err
	}

	end, err := engine.Run(ctx)
	if err != nil {
		return nil, err
	}

	if opts.logFile != "" {
		if err := recorder.Save(opts.logFile); err != nil {
			return nil, fmt.Errorf("failed to write event log: %w", err)
		}
		logger.Info("Wrote event log", "path", opts.logFile, "events", recorder.Len())
	}
	return end, nil
}
