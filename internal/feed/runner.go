package feed

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/spudgame/internal/game"
	"github.com/lox/spudgame/internal/gameid"
	"github.com/lox/spudgame/internal/randutil"
)

// RunnerConfig configures back to back games
type RunnerConfig struct {
	Game       game.Config
	Seed       int64 // game i is played with Seed+i
	MaxGames   int   // 0 plays until the context is cancelled
	RoundDelay time.Duration
	GameDelay  time.Duration

	// NewID names the game played with seed. Defaults to gameid.FromSeed.
	NewID func(seed int64) string

	Clock       quartz.Clock
	Logger      *log.Logger
	Subscribers []game.EventSubscriber
}

// Runner plays games one after another, pacing rounds so spectators can
// follow along.
type Runner struct {
	cfg    RunnerConfig
	played int
}

// NewRunner creates a runner, filling in a real clock and a discard logger
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Clock == nil {
		cfg.Clock = quartz.NewReal()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.NewID == nil {
		cfg.NewID = gameid.FromSeed
	}
	cfg.Logger = cfg.Logger.WithPrefix("runner")
	return &Runner{cfg: cfg}
}

// Played returns the number of games completed
func (r *Runner) Played() int {
	return r.played
}

// Run plays games until MaxGames is reached or ctx is cancelled. A
// cancelled context is not an error.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.cfg.Game.Validate(); err != nil {
		return err
	}

	for i := 0; r.cfg.MaxGames == 0 || i < r.cfg.MaxGames; i++ {
		if i > 0 {
			if err := r.sleep(ctx, r.cfg.GameDelay); err != nil {
				return nil
			}
		}

		end, err := r.playGame(ctx, r.cfg.Seed+int64(i))
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		if err != nil {
			return err
		}

		r.played++
		r.cfg.Logger.Info("Game finished",
			"game", end.GameID,
			"reason", end.Reason,
			"winner", end.Winner,
			"attempts", end.Attempts)
	}
	return nil
}

func (r *Runner) playGame(ctx context.Context, seed int64) (*game.GameEndEvent, error) {
	cfg := r.cfg.Game
	cfg.ID = r.cfg.NewID(seed)

	engine, err := game.NewEngine(cfg, randutil.New(seed),
		game.WithClock(r.cfg.Clock),
		game.WithLogger(r.cfg.Logger),
		game.WithSubscribers(r.cfg.Subscribers...))
	if err != nil {
		return nil, err
	}

	for first := true; ; first = false {
		if !first {
			if err := r.sleep(ctx, r.cfg.RoundDelay); err != nil {
				return nil, err
			}
		}
		outcome, err := engine.AdvanceRound()
		if err != nil {
			return nil, err
		}
		if outcome.End != nil {
			return outcome.End, nil
		}
	}
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := r.cfg.Clock.NewTimer(d, "runner", "sleep")
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
