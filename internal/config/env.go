package config

import (
	"fmt"
	"slices"

	"github.com/caarlos0/env/v11"

	"github.com/lox/spudgame/internal/game"
)

// Env holds overrides read from SPUD_* environment variables. Unset
// variables leave the corresponding field nil.
type Env struct {
	Players              []string `env:"SPUD_PLAYERS"                envSeparator:","`
	TotalNumbers         *int     `env:"SPUD_TOTAL_NUMBERS"`
	InitialPrize         *float64 `env:"SPUD_INITIAL_PRIZE"`
	PoolWinnerPercentage *float64 `env:"SPUD_POOL_WINNER_PERCENTAGE"`
	MaxFee               *float64 `env:"SPUD_MAX_FEE"`
	StartingBalance      *float64 `env:"SPUD_STARTING_BALANCE"`
	AllowUnguessable     *bool    `env:"SPUD_ALLOW_UNGUESSABLE"`
}

// ParseEnv reads overrides from the process environment
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// Apply writes every set override into cfg. Replacing the player list drops
// balance overrides for players no longer seated.
func (e Env) Apply(cfg *game.Config) {
	if len(e.Players) > 0 {
		cfg.Players = e.Players
		for name := range cfg.Balances {
			if !slices.Contains(e.Players, name) {
				delete(cfg.Balances, name)
			}
		}
	}
	if e.TotalNumbers != nil {
		cfg.TotalNumbers = *e.TotalNumbers
	}
	if e.InitialPrize != nil {
		cfg.InitialPrize = *e.InitialPrize
	}
	if e.PoolWinnerPercentage != nil {
		cfg.PoolWinnerPercentage = *e.PoolWinnerPercentage
	}
	if e.MaxFee != nil {
		cfg.MaxFee = *e.MaxFee
	}
	if e.StartingBalance != nil {
		cfg.StartingBalance = *e.StartingBalance
	}
	if e.AllowUnguessable != nil {
		cfg.AllowUnguessable = *e.AllowUnguessable
	}
}
