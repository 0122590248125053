// Package config loads game parameters from an HCL file and the environment.
//
// Values are layered: built-in defaults, then the file, then SPUD_*
// environment variables. Command line flags are applied on top by the CLI.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/spudgame/internal/game"
)

// DefaultPlayers are seated when neither the file nor the environment names any
var DefaultPlayers = []string{"Alice", "Bob", "Mike"}

// File represents a spudgame configuration file
type File struct {
	Game    *GameBlock    `hcl:"game,block"`
	Players []PlayerBlock `hcl:"player,block"`
}

// GameBlock holds the game parameters. Omitted attributes stay nil and fall
// back to defaults; an explicit zero is kept.
type GameBlock struct {
	TotalNumbers         *int     `hcl:"total_numbers,optional"`
	InitialPrize         *float64 `hcl:"initial_prize,optional"`
	PoolWinnerPercentage *float64 `hcl:"pool_winner_percentage,optional"`
	MaxFee               *float64 `hcl:"max_fee,optional"`
	StartingBalance      *float64 `hcl:"starting_balance,optional"`
	AllowUnguessable     *bool    `hcl:"allow_unguessable,optional"`
}

// PlayerBlock seats one player, optionally with its own starting balance
type PlayerBlock struct {
	Name    string   `hcl:"name,label"`
	Balance *float64 `hcl:"balance,optional"`
}

// Default returns the configuration used when no file exists
func Default() *File {
	f := &File{Game: &GameBlock{}}
	for _, name := range DefaultPlayers {
		f.Players = append(f.Players, PlayerBlock{Name: name})
	}
	f.applyDefaults()
	return f
}

// Load loads configuration from an HCL file. A missing file yields defaults.
func Load(filename string) (*File, error) {
	if filename == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*File, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var f File
	diags = gohcl.DecodeBody(file.Body, nil, &f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	f.applyDefaults()
	return &f, nil
}

func (f *File) applyDefaults() {
	if f.Game == nil {
		f.Game = &GameBlock{}
	}
	if len(f.Players) == 0 {
		for _, name := range DefaultPlayers {
			f.Players = append(f.Players, PlayerBlock{Name: name})
		}
	}
}

// GameConfig converts the file into engine configuration
func (f *File) GameConfig() game.Config {
	cfg := game.DefaultConfig()

	if g := f.Game; g != nil {
		if g.TotalNumbers != nil {
			cfg.TotalNumbers = *g.TotalNumbers
		}
		if g.InitialPrize != nil {
			cfg.InitialPrize = *g.InitialPrize
		}
		if g.PoolWinnerPercentage != nil {
			cfg.PoolWinnerPercentage = *g.PoolWinnerPercentage
		}
		if g.MaxFee != nil {
			cfg.MaxFee = *g.MaxFee
		}
		if g.StartingBalance != nil {
			cfg.StartingBalance = *g.StartingBalance
		}
		if g.AllowUnguessable != nil {
			cfg.AllowUnguessable = *g.AllowUnguessable
		}
	}

	for _, p := range f.Players {
		cfg.Players = append(cfg.Players, p.Name)
		if p.Balance != nil {
			if cfg.Balances == nil {
				cfg.Balances = make(map[string]float64)
			}
			cfg.Balances[p.Name] = *p.Balance
		}
	}
	return cfg
}

// Validate validates the configuration
func (f *File) Validate() error {
	return f.GameConfig().Validate()
}

// Resolve loads filename and applies environment overrides
func Resolve(filename string) (game.Config, error) {
	f, err := Load(filename)
	if err != nil {
		return game.Config{}, err
	}
	cfg := f.GameConfig()

	env, err := ParseEnv()
	if err != nil {
		return game.Config{}, err
	}
	env.Apply(&cfg)
	return cfg, nil
}
