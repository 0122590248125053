package game

import (
	"errors"
	"fmt"
	"math"
)

// Defaults used when a game is configured without explicit values.
const (
	DefaultTotalNumbers         = 20
	DefaultInitialPrize         = 10.0
	DefaultPoolWinnerPercentage = 0.8
	DefaultMaxFee               = 20.0
	DefaultStartingBalance      = 100.0
)

var (
	// ErrInvalidConfig is returned when a game cannot be set up from its configuration.
	ErrInvalidConfig = errors.New("invalid game config")
	// ErrGameOver is returned when a round is requested after the game has ended.
	ErrGameOver = errors.New("game is over")
)

// Config holds the parameters of a single game.
type Config struct {
	// ID labels the game in events. Optional.
	ID string

	Players              []string
	TotalNumbers         int
	InitialPrize         float64
	PoolWinnerPercentage float64
	MaxFee               float64
	StartingBalance      float64

	// Balances overrides StartingBalance for individual players.
	Balances map[string]float64

	// AllowUnguessable draws the spudmaster number from [0, TotalNumbers]
	// inclusive. The top value can never be guessed, so such a game only
	// ends by number exhaustion or when everyone runs out of money.
	AllowUnguessable bool
}

// DefaultConfig returns a configuration with the default parameters for the
// given players.
func DefaultConfig(players ...string) Config {
	return Config{
		Players:              players,
		TotalNumbers:         DefaultTotalNumbers,
		InitialPrize:         DefaultInitialPrize,
		PoolWinnerPercentage: DefaultPoolWinnerPercentage,
		MaxFee:               DefaultMaxFee,
		StartingBalance:      DefaultStartingBalance,
	}
}

// Validate checks the configuration for precondition violations.
func (c Config) Validate() error {
	if len(c.Players) < 2 {
		return fmt.Errorf("%w: at least 2 players are required, got %d", ErrInvalidConfig, len(c.Players))
	}

	seen := make(map[string]bool, len(c.Players))
	for _, name := range c.Players {
		if name == "" {
			return fmt.Errorf("%w: player names must not be empty", ErrInvalidConfig)
		}
		if seen[name] {
			return fmt.Errorf("%w: duplicate player %q", ErrInvalidConfig, name)
		}
		seen[name] = true
	}

	for name, balance := range c.Balances {
		if !seen[name] {
			return fmt.Errorf("%w: balance override for unknown player %q", ErrInvalidConfig, name)
		}
		if !finite(balance) {
			return fmt.Errorf("%w: player %q balance must be a finite number, got %g", ErrInvalidConfig, name, balance)
		}
		if balance < 0 {
			return fmt.Errorf("%w: player %q balance must not be negative", ErrInvalidConfig, name)
		}
	}

	if c.TotalNumbers <= 0 {
		return fmt.Errorf("%w: total numbers must be positive, got %d", ErrInvalidConfig, c.TotalNumbers)
	}
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"initial prize", c.InitialPrize},
		{"pool winner percentage", c.PoolWinnerPercentage},
		{"max fee", c.MaxFee},
		{"starting balance", c.StartingBalance},
	} {
		if !finite(field.value) {
			return fmt.Errorf("%w: %s must be a finite number, got %g", ErrInvalidConfig, field.name, field.value)
		}
	}

	if c.InitialPrize < 0 {
		return fmt.Errorf("%w: initial prize must not be negative", ErrInvalidConfig)
	}
	if c.PoolWinnerPercentage <= 0 || c.PoolWinnerPercentage > 1 {
		return fmt.Errorf("%w: pool winner percentage must be in (0, 1], got %g", ErrInvalidConfig, c.PoolWinnerPercentage)
	}
	if c.MaxFee < 0 {
		return fmt.Errorf("%w: max fee must not be negative", ErrInvalidConfig)
	}
	if c.StartingBalance < 0 {
		return fmt.Errorf("%w: starting balance must not be negative", ErrInvalidConfig)
	}

	return nil
}

// finite rejects NaN and infinities, which slip through ordered comparisons
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (c Config) startingBalance(player string) float64 {
	if balance, ok := c.Balances[player]; ok {
		return balance
	}
	return c.StartingBalance
}
