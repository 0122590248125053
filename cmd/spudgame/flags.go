package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/spudgame/internal/config"
	"github.com/lox/spudgame/internal/game"
	"github.com/lox/spudgame/internal/gameid"
	"github.com/lox/spudgame/internal/randutil"
)

// GameFlags override file and environment configuration
type GameFlags struct {
	Players              []string `kong:"short='p',sep=',',help='Comma separated player names'"`
	TotalNumbers         *int     `kong:"short='n',help='Size of the number range'"`
	InitialPrize         *float64 `kong:"help='Starting prize pool'"`
	PoolWinnerPercentage *float64 `kong:"help='Largest share of the pool a winner can take, in (0, 1]'"`
	MaxFee               *float64 `kong:"help='Cap on the pool based part of the steal fee'"`
	StartingBalance      *float64 `kong:"help='Balance every player starts with'"`
	AllowUnguessable     *bool    `negatable:"" help:"Draw the spudmaster number from the inclusive range, which may be unguessable"`
}

func (f GameFlags) apply(cfg *game.Config) {
	if len(f.Players) > 0 {
		cfg.Players = f.Players
		for name := range cfg.Balances {
			if !slices.Contains(f.Players, name) {
				delete(cfg.Balances, name)
			}
		}
	}
	if f.TotalNumbers != nil {
		cfg.TotalNumbers = *f.TotalNumbers
	}
	if f.InitialPrize != nil {
		cfg.InitialPrize = *f.InitialPrize
	}
	if f.PoolWinnerPercentage != nil {
		cfg.PoolWinnerPercentage = *f.PoolWinnerPercentage
	}
	if f.MaxFee != nil {
		cfg.MaxFee = *f.MaxFee
	}
	if f.StartingBalance != nil {
		cfg.StartingBalance = *f.StartingBalance
	}
	if f.AllowUnguessable != nil {
		cfg.AllowUnguessable = *f.AllowUnguessable
	}
}

// gameConfig layers file, environment and flags, then validates
func (g *Globals) gameConfig(flags GameFlags) (game.Config, error) {
	cfg, err := config.Resolve(g.Config)
	if err != nil {
		return game.Config{}, err
	}
	flags.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return game.Config{}, err
	}
	return cfg, nil
}

// gameIDFor returns the id to label a game with. An override may be a game
// id or a UUID in standard form; otherwise the id derives from the seed.
func gameIDFor(override string, seed int64) (string, error) {
	if override == "" {
		return gameid.FromSeed(seed), nil
	}
	id, err := gameid.Parse(strings.ToLower(override))
	if err != nil {
		u, uerr := uuid.Parse(override)
		if uerr != nil {
			return "", fmt.Errorf("invalid game id %q: %w", override, err)
		}
		id = u
	}
	return gameid.Encode(id), nil
}

// resolveSeed returns the requested seed or a fresh random one
func resolveSeed(seed *int64, logger *log.Logger) (int64, error) {
	if seed != nil {
		logger.Info("Using deterministic seed", "seed", *seed)
		return *seed, nil
	}
	s, err := randutil.NewSeed()
	if err != nil {
		return 0, err
	}
	logger.Info("Using random seed", "seed", s)
	return s, nil
}
