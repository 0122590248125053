package game

import (
	"context"
	"errors"
	"testing"

	"github.com/coder/quartz"
	"github.com/lox/spudgame/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

func scenarioConfig() Config {
	cfg := DefaultConfig("Alice", "Bob", "Mike")
	cfg.TotalNumbers = 5
	cfg.InitialPrize = 100
	cfg.PoolWinnerPercentage = 0.8
	cfg.MaxFee = 20
	cfg.StartingBalance = 100
	return cfg
}

func TestEngine_ThreePlayerScenario(t *testing.T) {
	// spudmaster 2, Alice holds; guesses 4, 1, 2 by Bob, Mike, Alice
	rng := randutil.NewSequence(
		2, 0, // setup
		0, 4, // Bob steals from Alice, guesses 4
		1, 1, // Mike steals from Bob, guesses 1
		0, 1, // Alice steals from Mike, guesses 2
	)
	engine, events := newTestEngine(t, scenarioConfig(), rng)
	assert.Equal(t, 2, engine.SpudmasterNumber())
	assert.Equal(t, "Alice", engine.Holder())

	outcome, err := engine.AdvanceRound()
	require.NoError(t, err)
	assert.Equal(t, StatusActive, outcome.Status)
	require.NotNil(t, outcome.Round)
	assert.Nil(t, outcome.End)
	assert.Equal(t, "Bob", outcome.Round.Thief)
	assert.Equal(t, "Alice", outcome.Round.PreviousHolder)
	assert.Equal(t, 4, outcome.Round.Guess)
	assert.InDelta(t, 3.5, outcome.Round.Fee, delta)
	assert.InDelta(t, 96.5, outcome.Round.ThiefBalance, delta)
	assert.InDelta(t, 103.5, engine.PrizePool(), delta)
	assert.Equal(t, "Bob", engine.Holder())

	outcome, err = engine.AdvanceRound()
	require.NoError(t, err)
	assert.Equal(t, StatusActive, outcome.Status)
	assert.Equal(t, "Mike", outcome.Round.Thief)
	assert.Equal(t, 1, outcome.Round.Guess)
	assert.InDelta(t, 4.035, outcome.Round.Fee, delta)
	assert.InDelta(t, 95.965, outcome.Round.ThiefBalance, delta)
	assert.InDelta(t, 107.535, engine.PrizePool(), delta)

	outcome, err = engine.AdvanceRound()
	require.NoError(t, err)
	assert.Equal(t, StatusWinner, outcome.Status)
	assert.Equal(t, "Alice", outcome.Round.Thief)
	assert.Equal(t, "Mike", outcome.Round.PreviousHolder)
	assert.Equal(t, 2, outcome.Round.Guess)
	assert.InDelta(t, 4.57535, outcome.Round.Fee, delta)
	assert.InDelta(t, 112.11035, outcome.Round.PrizePool, delta)

	require.NotNil(t, outcome.End)
	end := outcome.End
	assert.Equal(t, ReasonSpudmasterGuessed, end.Reason)
	assert.Equal(t, "Alice", end.Winner)
	assert.Equal(t, 3, end.Attempts)
	// remaining fraction 2/5, winner share (1-0.4)*0.8 = 0.48
	assert.InDelta(t, 112.11035*0.48, end.Reward, delta)
	assert.InDelta(t, 53.812968, end.Reward, 1e-6)
	assert.InDelta(t, 58.297382, end.RemainingPool, 1e-6)
	assert.InDelta(t, 49.237618, end.NetProfit, 1e-6)

	alice, ok := engine.Balance("Alice")
	require.True(t, ok)
	assert.InDelta(t, 149.237618, alice, 1e-6)
	bob, _ := engine.Balance("Bob")
	assert.InDelta(t, 96.5, bob, delta)
	mike, _ := engine.Balance("Mike")
	assert.InDelta(t, 95.965, mike, delta)

	assert.True(t, engine.GameOver())
	assert.Equal(t, 0, rng.Remaining())
	assert.Equal(t, []EventType{
		EventTypeGameStart,
		EventTypeRound,
		EventTypeRound,
		EventTypeRound,
		EventTypeGameEnd,
	}, events.types())
}

func TestEngine_AdvanceAfterGameOver(t *testing.T) {
	rng := randutil.NewSequence(2, 0, 0, 2)
	engine, events := newTestEngine(t, scenarioConfig(), rng)

	outcome, err := engine.AdvanceRound()
	require.NoError(t, err)
	require.True(t, outcome.Status.Terminal())
	published := len(events.events)

	outcome, err = engine.AdvanceRound()
	assert.True(t, errors.Is(err, ErrGameOver))
	assert.Equal(t, StatusWinner, outcome.Status)
	assert.Len(t, events.events, published, "no events after the game ended")
}

func TestEngine_RewardFloor(t *testing.T) {
	cfg := DefaultConfig("A", "B")
	// spudmaster 7, A holds, B steals and guesses 7 on the very first try
	rng := randutil.NewSequence(7, 0, 0, 7)
	engine, _ := newTestEngine(t, cfg, rng)

	outcome, err := engine.AdvanceRound()
	require.NoError(t, err)
	require.NotNil(t, outcome.End)

	// 19 of 20 left: (1-0.95)*0.8 = 0.04, floored at 0.15
	assert.InDelta(t, 0.15, WinnerPercentage(20, 19, 0.8), delta)
	fee := BaseFee + 0.5 + 0.1
	assert.InDelta(t, fee, outcome.Round.Fee, delta)
	pool := DefaultInitialPrize + fee
	assert.InDelta(t, pool*MinWinnerPercentage, outcome.End.Reward, delta)
	assert.InDelta(t, pool*(1-MinWinnerPercentage), outcome.End.RemainingPool, delta)
}

func TestEngine_LiquidityTermination(t *testing.T) {
	cfg := scenarioConfig()
	cfg.StartingBalance = 9.99
	engine, events := newTestEngine(t, cfg, randutil.NewSequence(2, 0))

	before := engine.Balances()
	pool := engine.PrizePool()
	available := engine.AvailableNumbers()

	outcome, err := engine.AdvanceRound()
	require.NoError(t, err)
	assert.Equal(t, StatusNoWinner, outcome.Status)
	assert.Nil(t, outcome.Round)
	require.NotNil(t, outcome.End)
	assert.False(t, outcome.End.HasWinner())
	assert.Equal(t, ReasonPlayersBroke, outcome.End.Reason)
	assert.Equal(t, 0, outcome.End.Attempts)

	assert.Equal(t, before, engine.Balances())
	assert.Equal(t, pool, engine.PrizePool())
	assert.Equal(t, available, engine.AvailableNumbers())
	assert.Equal(t, 0, engine.StealCount())
	assert.Equal(t, []EventType{EventTypeGameStart, EventTypeGameEnd}, events.types())
}

func TestEngine_LiquidityNeedsEveryPlayerBroke(t *testing.T) {
	cfg := scenarioConfig()
	cfg.StartingBalance = 5
	cfg.Balances = map[string]float64{"Mike": LiquidityFloor}
	engine, _ := newTestEngine(t, cfg, randutil.NewSequence(2, 0, 0, 0))

	outcome, err := engine.AdvanceRound()
	require.NoError(t, err)
	assert.Equal(t, StatusActive, outcome.Status, "a player at exactly the floor keeps the game alive")
}

func TestEngine_FeeSkip(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Balances = map[string]float64{"Bob": 1}

	t.Run("miss", func(t *testing.T) {
		engine, events := newTestEngine(t, cfg, randutil.NewSequence(2, 0, 0, 0))

		outcome, err := engine.AdvanceRound()
		require.NoError(t, err)
		assert.Equal(t, StatusActive, outcome.Status)
		assert.False(t, outcome.Round.FeePaid)
		assert.InDelta(t, 3.5, outcome.Round.Fee, delta)

		bob, _ := engine.Balance("Bob")
		assert.Equal(t, 1.0, bob)
		assert.Equal(t, 100.0, engine.PrizePool())
		assert.Equal(t, "Bob", engine.Holder(), "unpaid thief still takes the potato")
		assert.Equal(t, []int{1, 2, 3, 4}, engine.AvailableNumbers())

		assert.Equal(t, []EventType{EventTypeGameStart, EventTypeInsufficientFunds, EventTypeRound}, events.types())
		notice := events.events[1].(InsufficientFundsEvent)
		assert.Equal(t, "Bob", notice.Player)
		assert.Equal(t, 1, notice.Attempt)
		assert.Equal(t, 1.0, notice.Balance)
	})

	t.Run("guess is still checked", func(t *testing.T) {
		engine, _ := newTestEngine(t, cfg, randutil.NewSequence(2, 0, 0, 2))

		outcome, err := engine.AdvanceRound()
		require.NoError(t, err)
		require.NotNil(t, outcome.End)
		assert.Equal(t, "Bob", outcome.End.Winner)
		// 4 of 5 left: (1-0.8)*0.8 = 0.16 of an untouched pool
		assert.InDelta(t, 16.0, outcome.End.Reward, delta)
		assert.InDelta(t, 16.0, outcome.End.NetProfit, delta)
		bob, _ := engine.Balance("Bob")
		assert.InDelta(t, 17.0, bob, delta)
	})
}

func TestEngine_NumbersExhausted(t *testing.T) {
	cfg := scenarioConfig()
	cfg.AllowUnguessable = true
	// spudmaster 5 is outside the guessable range [0, 5)
	rng := randutil.NewSequence(5, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	engine, events := newTestEngine(t, cfg, rng)
	assert.Equal(t, 5, engine.SpudmasterNumber())

	end, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonNumbersExhausted, end.Reason)
	assert.Equal(t, 5, end.Attempts)
	assert.Empty(t, engine.AvailableNumbers())

	rounds := events.rounds()
	require.Len(t, rounds, 5)
	assert.Equal(t, end.Winner, rounds[4].Thief)
	// no numbers left: full configured share
	assert.InDelta(t, rounds[4].PrizePool*0.8, end.Reward, delta)
}

func TestEngine_SpudmasterDrawRange(t *testing.T) {
	tests := []struct {
		name             string
		allowUnguessable bool
		want             int
	}{
		{"guessable range", false, 20},
		{"inclusive range", true, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("A", "B", "C")
			cfg.AllowUnguessable = tt.allowUnguessable
			rng := &recordingRNG{inner: randutil.New(1)}
			_, _ = newTestEngine(t, cfg, rng)
			require.Len(t, rng.bounds, 2)
			assert.Equal(t, tt.want, rng.bounds[0])
			assert.Equal(t, 3, rng.bounds[1])
		})
	}
}

func TestEngine_SeededGamesInvariants(t *testing.T) {
	cfg := DefaultConfig("Alice", "Bob", "Mike", "Zoe")
	totalMoney := DefaultInitialPrize + 4*DefaultStartingBalance

	for seed := int64(1); seed <= 50; seed++ {
		engine, events := newTestEngine(t, cfg, randutil.New(seed))
		rounds := 0
		for !engine.GameOver() {
			before := len(engine.AvailableNumbers())
			holder := engine.Holder()

			outcome, err := engine.AdvanceRound()
			require.NoError(t, err)
			if outcome.Round != nil {
				rounds++
				assert.Equal(t, before-1, len(engine.AvailableNumbers()), "seed %d: one number per round", seed)
				assert.NotEqual(t, holder, outcome.Round.Thief, "seed %d: holder cannot steal from themselves", seed)
				assert.NotContains(t, engine.AvailableNumbers(), outcome.Round.Guess)
			}
			assert.GreaterOrEqual(t, engine.PrizePool(), 0.0)

			sum := engine.PrizePool()
			for _, b := range engine.Balances() {
				sum += b.Amount
			}
			assert.InDelta(t, totalMoney, sum, 1e-6, "seed %d: money is conserved", seed)
		}
		assert.LessOrEqual(t, rounds, cfg.TotalNumbers)
		assert.Equal(t, rounds, engine.StealCount())

		guessed := make(map[int]bool)
		for _, round := range events.rounds() {
			assert.False(t, guessed[round.Guess], "seed %d: number %d guessed twice", seed, round.Guess)
			guessed[round.Guess] = true
		}
	}
}

func TestEngine_RunHonoursCancellation(t *testing.T) {
	engine, events := newTestEngine(t, DefaultConfig("A", "B"), randutil.New(3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	end, err := engine.Run(ctx)
	assert.Nil(t, end)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, events.events)
	assert.False(t, engine.GameOver())
}

func TestEngine_SameSeedSameGame(t *testing.T) {
	cfg := DefaultConfig("Alice", "Bob", "Mike")
	clock := quartz.NewMock(t)
	a, eventsA := newTestEngineWithClock(t, cfg, randutil.New(99), clock)
	b, eventsB := newTestEngineWithClock(t, cfg, randutil.New(99), clock)

	endA, err := a.Run(context.Background())
	require.NoError(t, err)
	endB, err := b.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, endA.Winner, endB.Winner)
	assert.Equal(t, endA.Reward, endB.Reward)
	assert.Equal(t, eventsA.rounds(), eventsB.rounds())
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	_, err := NewEngine(DefaultConfig("Solo"), randutil.New(1))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewEngine(DefaultConfig("A", "B"), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestEngine_NextFee(t *testing.T) {
	engine, _ := newTestEngine(t, scenarioConfig(), randutil.NewSequence(2, 0, 0, 4))
	assert.InDelta(t, 3.5, engine.NextFee(), delta)

	outcome, err := engine.AdvanceRound()
	require.NoError(t, err)
	assert.InDelta(t, outcome.Round.Fee, 3.5, delta)
	assert.InDelta(t, 2+1+1.035, engine.NextFee(), delta)
}
