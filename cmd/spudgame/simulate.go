package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lox/spudgame/internal/simulator"
	"github.com/lox/spudgame/internal/statistics"
)

// SimulateCmd plays many seeded games and reports aggregate statistics
type SimulateCmd struct {
	GameFlags `embed:""`

	Games    int           `kong:"default='10000',help='Number of games to play'"`
	Seed     *int64        `kong:"help='Base seed; game i uses seed+i (optional)'"`
	Workers  int           `kong:"default='0',help='Parallel workers (0 uses GOMAXPROCS)'"`
	Timeout  time.Duration `kong:"default='0s',help='Abort the run after this long (0 for no limit)'"`
	Format   string        `kong:"default='text',enum='text,json,yaml',help='Report format (text, json, yaml)'"`
	Progress bool          `kong:"help='Print progress dots to stderr'"`
}

func (c *SimulateCmd) Run(g *Globals) error {
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

	simCfg := simulator.Config{
		Games:   c.Games,
		Seed:    seed,
		Workers: c.Workers,
		Game:    cfg,
		Timeout: c.Timeout,
		Logger:  logger,
	}
	if c.Progress {
		simCfg.Progress = newProgressPrinter(os.Stderr, 40).Update
	}

	start := time.Now()
	stats, err := simulator.New(simCfg).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Simulation complete", "games", stats.Games, "duration", time.Since(start).Round(time.Millisecond))

	return writeReport(os.Stdout, stats.Report(seed), c.Format)
}

// writeReport encodes the report in the requested format
func writeReport(w io.Writer, report statistics.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		_, err := io.WriteString(w, report.String())
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
