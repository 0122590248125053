package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/spudgame/internal/game"
	"github.com/lox/spudgame/internal/gameid"
	"github.com/lox/spudgame/internal/randutil"
	"github.com/lox/spudgame/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Games   int
	Seed    int64 // Game i is played with Seed+i
	Workers int   // Parallel games; defaults to GOMAXPROCS
	Game    game.Config
	Timeout time.Duration // Whole run; zero means no limit
	Logger  *log.Logger
	Clock   quartz.Clock

	// Observe returns a subscriber for the game played with seed, or nil.
	// Subscribers are called from worker goroutines.
	Observe func(seed int64) game.EventSubscriber

	// Progress is called after each finished game with the running count.
	Progress func(done, total int)
}

// Simulator plays many independent games and aggregates their outcomes
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	return &Simulator{config: config}
}

// Run plays every game and returns the aggregated statistics. Workers own
// contiguous seed ranges and their partials are merged in range order, so
// results appear in seed order whatever the scheduling.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if s.config.Games <= 0 {
		return nil, fmt.Errorf("games must be positive, got %d", s.config.Games)
	}
	if err := s.config.Game.Validate(); err != nil {
		return nil, err
	}

	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	logger := s.config.Logger.WithPrefix("simulator")
	logger.Debug("Starting simulation", "games", s.config.Games, "seed", s.config.Seed, "workers", s.config.Workers)

	// Each worker plays a contiguous run of seeds into its own partial
	// statistics; partials are merged in seed order.
	workers := min(s.config.Workers, s.config.Games)
	partials := make([]*statistics.Statistics, workers)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		first := w * s.config.Games / workers
		last := (w + 1) * s.config.Games / workers
		partial := &statistics.Statistics{}
		partials[w] = partial

		g.Go(func() error {
			for i := first; i < last; i++ {
				seed := s.config.Seed + int64(i)
				result, err := s.PlayGame(gctx, seed)
				if err != nil {
					return fmt.Errorf("game %d (seed %d): %w", i+1, seed, err)
				}
				partial.Add(result)
				n := done.Add(1)
				if s.config.Progress != nil {
					s.config.Progress(int(n), s.config.Games)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("simulation timed out after %v: %w", s.config.Timeout, err)
		}
		return nil, err
	}

	stats := &statistics.Statistics{}
	for _, partial := range partials {
		stats.Merge(partial)
	}

	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	logger.Debug("Simulation complete", "games", stats.Games, "win_rate", stats.WinRate())
	return stats, nil
}

// PlayGame plays a single game with its own engine and RNG
func (s *Simulator) PlayGame(ctx context.Context, seed int64) (statistics.GameResult, error) {
	cfg := s.config.Game
	cfg.ID = gameid.FromSeed(seed)

	unpaid := 0
	opts := []game.Option{
		game.WithLogger(s.config.Logger),
		game.WithClock(s.config.Clock),
		game.WithSubscribers(game.SubscriberFunc(func(event game.GameEvent) {
			if event.EventType() == game.EventTypeInsufficientFunds {
				unpaid++
			}
		})),
	}
	if s.config.Observe != nil {
		if sub := s.config.Observe(seed); sub != nil {
			opts = append(opts, game.WithSubscribers(sub))
		}
	}

	engine, err := game.NewEngine(cfg, randutil.New(seed), opts...)
	if err != nil {
		return statistics.GameResult{}, err
	}

	end, err := engine.Run(ctx)
	if err != nil {
		return statistics.GameResult{}, err
	}

	return statistics.ResultFromEnd(seed, *end, unpaid), nil
}

// RunSimulation is a convenience function for running a simulation with basic parameters
func RunSimulation(ctx context.Context, games int, seed int64, cfg game.Config, logger *log.Logger) (*statistics.Statistics, error) {
	return New(Config{
		Games:  games,
		Seed:   seed,
		Game:   cfg,
		Logger: logger,
	}).Run(ctx)
}
