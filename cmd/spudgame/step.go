package main

import (
	"github.com/charmbracelet/log"

	"github.com/lox/spudgame/internal/game"
	"github.com/lox/spudgame/internal/randutil"
	"github.com/lox/spudgame/internal/tui"
)

// StepCmd opens the interactive round stepper
type StepCmd struct {
	GameFlags `embed:""`

	Seed        *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	GameID      string `kong:"name='game-id',help='Label events with this id instead of one derived from the seed'"`
	ShowGuesses bool   `kong:"help='Show the guessed number on each round line'"`
}

func (c *StepCmd) Run(g *Globals) error {
	// Logs would corrupt the alternate screen; only errors get through
	logger := g.Logger()
	if !g.Debug {
		logger.SetLevel(log.ErrorLevel)
	}

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

	engine, err := game.NewEngine(cfg, randutil.New(seed), game.WithLogger(logger))
	if err != nil {
		return err
	}
	return tui.Run(engine, logger, c.ShowGuesses)
}
