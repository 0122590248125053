// Package game implements the round engine of the spud game, a hot potato
// guessing game.
//
// Every round a thief other than the current holder pays a steal fee into
// the prize pool and guesses one of the numbers nobody has tried yet. Guess
// the hidden spudmaster number, or take the last number left, and the spud
// explodes: the thief wins a share of the pool that grows the later the win
// comes. If every player falls below the liquidity floor the game ends with
// no winner.
//
// # Basic Usage
//
//	cfg := game.DefaultConfig("Alice", "Bob", "Mike")
//	engine, err := game.NewEngine(cfg, randutil.New(42))
//	if err != nil {
//	    return err
//	}
//	end, err := engine.Run(ctx)
//
// # Deterministic Testing
//
// The engine only draws randomness through the RNG interface. A seeded
// *rand.Rand from randutil.New reproduces a whole game; randutil.Sequence
// scripts individual draws. Setup draws the spudmaster number then the first
// holder; each round draws the thief then the index of the guess among the
// remaining numbers in ascending order.
//
// # Events
//
// Nothing is printed by the engine. Observers subscribe to Events() and
// receive GameStartEvent, RoundEvent, InsufficientFundsEvent and
// GameEndEvent values. Event timestamps come from the injected quartz.Clock.
package game
