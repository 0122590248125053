package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/spudgame/internal/randutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("Alice", "Bob")
	assert.Equal(t, []string{"Alice", "Bob"}, cfg.Players)
	assert.Equal(t, 20, cfg.TotalNumbers)
	assert.Equal(t, 10.0, cfg.InitialPrize)
	assert.Equal(t, 0.8, cfg.PoolWinnerPercentage)
	assert.Equal(t, 20.0, cfg.MaxFee)
	assert.Equal(t, 100.0, cfg.StartingBalance)
	assert.False(t, cfg.AllowUnguessable)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"no players", func(c *Config) { c.Players = nil }, "at least 2 players"},
		{"single player", func(c *Config) { c.Players = []string{"Solo"} }, "at least 2 players"},
		{"duplicate player", func(c *Config) { c.Players = []string{"A", "A"} }, `duplicate player "A"`},
		{"empty name", func(c *Config) { c.Players = []string{"A", ""} }, "must not be empty"},
		{"zero numbers", func(c *Config) { c.TotalNumbers = 0 }, "total numbers must be positive"},
		{"negative numbers", func(c *Config) { c.TotalNumbers = -3 }, "total numbers must be positive"},
		{"negative prize", func(c *Config) { c.InitialPrize = -1 }, "initial prize"},
		{"zero share", func(c *Config) { c.PoolWinnerPercentage = 0 }, "pool winner percentage"},
		{"share above one", func(c *Config) { c.PoolWinnerPercentage = 1.2 }, "pool winner percentage"},
		{"negative fee cap", func(c *Config) { c.MaxFee = -1 }, "max fee"},
		{"negative balance", func(c *Config) { c.StartingBalance = -1 }, "starting balance"},
		{"unknown override", func(c *Config) { c.Balances = map[string]float64{"Zed": 5} }, `unknown player "Zed"`},
		{"negative override", func(c *Config) { c.Balances = map[string]float64{"A": -5} }, "must not be negative"},
		{"NaN share", func(c *Config) { c.PoolWinnerPercentage = math.NaN() }, "pool winner percentage must be a finite number"},
		{"infinite share", func(c *Config) { c.PoolWinnerPercentage = math.Inf(1) }, "pool winner percentage must be a finite number"},
		{"NaN prize", func(c *Config) { c.InitialPrize = math.NaN() }, "initial prize must be a finite number"},
		{"infinite prize", func(c *Config) { c.InitialPrize = math.Inf(1) }, "initial prize must be a finite number"},
		{"infinite fee cap", func(c *Config) { c.MaxFee = math.Inf(1) }, "max fee must be a finite number"},
		{"NaN fee cap", func(c *Config) { c.MaxFee = math.NaN() }, "max fee must be a finite number"},
		{"infinite balance", func(c *Config) { c.StartingBalance = math.Inf(1) }, "starting balance must be a finite number"},
		{"negative infinite balance", func(c *Config) { c.StartingBalance = math.Inf(-1) }, "starting balance must be a finite number"},
		{"NaN override", func(c *Config) { c.Balances = map[string]float64{"A": math.NaN()} }, `player "A" balance must be a finite number`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("A", "B")
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfigStartingBalanceOverride(t *testing.T) {
	cfg := DefaultConfig("A", "B")
	cfg.Balances = map[string]float64{"B": 42}
	assert.Equal(t, 100.0, cfg.startingBalance("A"))
	assert.Equal(t, 42.0, cfg.startingBalance("B"))
}

func TestNewEngineRejectsNonFiniteShare(t *testing.T) {
	cfg := DefaultConfig("A", "B")
	cfg.PoolWinnerPercentage = math.NaN()

	engine, err := NewEngine(cfg, randutil.NewSequence(3, 0, 0, 3))
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Nil(t, engine)
}
