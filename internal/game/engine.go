package game

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// RNG is the randomness the engine draws from. *rand.Rand from math/rand/v2
// satisfies it; tests use a scripted sequence.
type RNG interface {
	IntN(n int) int
}

// Status is the state of the engine's state machine
type Status int

const (
	StatusActive Status = iota
	StatusNoWinner
	StatusWinner
)

// String returns a readable status name
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusNoWinner:
		return "game over (no winner)"
	case StatusWinner:
		return "game over (winner)"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether no further rounds can be played
func (s Status) Terminal() bool {
	return s != StatusActive
}

// Outcome is the result of advancing one round.
type Outcome struct {
	Status Status
	// Round describes the attempt made this round. It is nil when the game
	// ended on the liquidity check before anyone could steal.
	Round *RoundEvent
	// End is set once the game reaches a terminal state.
	End *GameEndEvent
}

// Engine owns the state of one game and resolves it round by round. It is
// not safe for concurrent use; run one engine per goroutine.
type Engine struct {
	cfg    Config
	rng    RNG
	clock  quartz.Clock
	logger *log.Logger
	bus    EventBus

	players    []string
	balances   map[string]float64
	initial    map[string]float64
	prizePool  float64
	available  []int
	spudmaster int
	holder     string
	stealCount int
	status     Status
	started    bool
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock used to timestamp events
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithEventBus publishes events on an existing bus instead of a private one
func WithEventBus(bus EventBus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithSubscribers subscribes observers before any event is published
func WithSubscribers(subscribers ...EventSubscriber) Option {
	return func(e *Engine) {
		if e.bus == nil {
			e.bus = NewEventBus()
		}
		for _, sub := range subscribers {
			e.bus.Subscribe(sub)
		}
	}
}

// NewEngine validates cfg and sets up a new game. The spudmaster number is
// drawn first, then the player who starts holding the potato.
func NewEngine(cfg Config, rng RNG, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: a random source is required", ErrInvalidConfig)
	}

	e := &Engine{
		cfg:      cfg,
		rng:      rng,
		players:  slices.Clone(cfg.Players),
		balances: make(map[string]float64, len(cfg.Players)),
		initial:  make(map[string]float64, len(cfg.Players)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.clock == nil {
		e.clock = quartz.NewReal()
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if e.bus == nil {
		e.bus = NewEventBus()
	}
	e.logger = e.logger.WithPrefix("engine")

	for _, name := range e.players {
		balance := cfg.startingBalance(name)
		e.balances[name] = balance
		e.initial[name] = balance
	}

	e.prizePool = cfg.InitialPrize
	e.available = make([]int, cfg.TotalNumbers)
	for i := range e.available {
		e.available[i] = i
	}

	spudRange := cfg.TotalNumbers
	if cfg.AllowUnguessable {
		spudRange++
	}
	e.spudmaster = rng.IntN(spudRange)
	e.holder = e.players[rng.IntN(len(e.players))]

	e.logger.Debug("Game set up",
		"game", cfg.ID,
		"players", len(e.players),
		"numbers", cfg.TotalNumbers,
		"holder", e.holder)

	return e, nil
}

// Events returns the bus that game events are published on
func (e *Engine) Events() EventBus {
	return e.bus
}

// AdvanceRound plays one round of the game. It returns ErrGameOver when
// called after the game has ended.
func (e *Engine) AdvanceRound() (Outcome, error) {
	if e.status.Terminal() {
		return Outcome{Status: e.status}, ErrGameOver
	}
	e.start()

	if e.allBelowFloor() {
		e.status = StatusNoWinner
		end := e.finish(ReasonPlayersBroke, "", 0, 0)
		e.logger.Debug("All players below liquidity floor", "game", e.cfg.ID, "attempts", e.stealCount)
		return Outcome{Status: e.status, End: &end}, nil
	}

	e.stealCount++
	previous := e.holder
	thief := e.pickThief()
	guess := e.drawNumber()

	fee := StealFee(e.cfg.TotalNumbers, len(e.available), e.prizePool, e.cfg.MaxFee)
	paid := e.charge(thief, fee)

	round := RoundEvent{
		GameID:         e.cfg.ID,
		Attempt:        e.stealCount,
		Thief:          thief,
		PreviousHolder: previous,
		Guess:          guess,
		ThiefBalance:   e.balances[thief],
		Fee:            fee,
		FeePaid:        paid,
		PrizePool:      e.prizePool,
		NumbersLeft:    len(e.available),
		timestamp:      e.clock.Now(),
	}

	e.logger.Debug("Steal attempt",
		"game", e.cfg.ID,
		"attempt", e.stealCount,
		"thief", thief,
		"guess", guess,
		"fee", fee,
		"paid", paid,
		"pool", e.prizePool)

	if guess != e.spudmaster && len(e.available) > 0 {
		e.holder = thief
		e.bus.Publish(round)
		return Outcome{Status: e.status, Round: &round}, nil
	}

	e.bus.Publish(round)

	reason := ReasonSpudmasterGuessed
	if guess != e.spudmaster {
		reason = ReasonNumbersExhausted
	}

	reward := e.prizePool * WinnerPercentage(e.cfg.TotalNumbers, len(e.available), e.cfg.PoolWinnerPercentage)
	netProfit := reward - (e.initial[thief] - e.balances[thief])
	e.balances[thief] += reward
	e.prizePool -= reward
	e.status = StatusWinner

	end := e.finish(reason, thief, reward, netProfit)
	e.logger.Debug("Spud exploded", "game", e.cfg.ID, "winner", thief, "reward", reward, "reason", reason)
	return Outcome{Status: e.status, Round: &round, End: &end}, nil
}

// Run advances rounds until the game ends or ctx is cancelled. Cancellation
// is only observed between rounds.
func (e *Engine) Run(ctx context.Context) (*GameEndEvent, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome, err := e.AdvanceRound()
		if err != nil {
			return nil, err
		}
		if outcome.End != nil {
			return outcome.End, nil
		}
	}
}

// GameOver reports whether the game has reached a terminal state
func (e *Engine) GameOver() bool {
	return e.status.Terminal()
}

// Status returns the current state machine state
func (e *Engine) Status() Status {
	return e.status
}

// ID returns the configured game id
func (e *Engine) ID() string {
	return e.cfg.ID
}

// Config returns the configuration the engine was built with
func (e *Engine) Config() Config {
	return e.cfg
}

// PrizePool returns the current pool
func (e *Engine) PrizePool() float64 {
	return e.prizePool
}

// Holder returns the player currently holding the potato
func (e *Engine) Holder() string {
	return e.holder
}

// StealCount returns the number of attempts made so far
func (e *Engine) StealCount() int {
	return e.stealCount
}

// SpudmasterNumber returns the hidden winning number
func (e *Engine) SpudmasterNumber() int {
	return e.spudmaster
}

// AvailableNumbers returns a copy of the numbers not yet guessed, ascending
func (e *Engine) AvailableNumbers() []int {
	return slices.Clone(e.available)
}

// Balance returns a single player's balance
func (e *Engine) Balance(player string) (float64, bool) {
	balance, ok := e.balances[player]
	return balance, ok
}

// Balances returns every player's balance in setup order
func (e *Engine) Balances() []Balance {
	out := make([]Balance, 0, len(e.players))
	for _, name := range e.players {
		out = append(out, Balance{Player: name, Amount: e.balances[name]})
	}
	return out
}

// NextFee returns the fee the next attempt would be charged
func (e *Engine) NextFee() float64 {
	if len(e.available) == 0 {
		return 0
	}
	return StealFee(e.cfg.TotalNumbers, len(e.available)-1, e.prizePool, e.cfg.MaxFee)
}

func (e *Engine) start() {
	if e.started {
		return
	}
	e.started = true
	e.bus.Publish(GameStartEvent{
		GameID:      e.cfg.ID,
		InitialPool: e.prizePool,
		Balances:    e.Balances(),
		timestamp:   e.clock.Now(),
	})
}

func (e *Engine) allBelowFloor() bool {
	for _, name := range e.players {
		if e.balances[name] >= LiquidityFloor {
			return false
		}
	}
	return true
}

// pickThief chooses uniformly among everyone except the current holder,
// keeping setup order so a seed always selects the same player.
func (e *Engine) pickThief() string {
	candidates := make([]string, 0, len(e.players)-1)
	for _, name := range e.players {
		if name != e.holder {
			candidates = append(candidates, name)
		}
	}
	return candidates[e.rng.IntN(len(candidates))]
}

// drawNumber removes and returns a uniformly chosen available number.
func (e *Engine) drawNumber() int {
	i := e.rng.IntN(len(e.available))
	guess := e.available[i]
	e.available = slices.Delete(e.available, i, i+1)
	return guess
}

func (e *Engine) charge(thief string, fee float64) bool {
	if e.balances[thief] >= fee {
		e.balances[thief] -= fee
		e.prizePool += fee
		return true
	}

	e.logger.Debug("Insufficient funds for steal fee", "game", e.cfg.ID, "player", thief, "balance", e.balances[thief], "fee", fee)
	e.bus.Publish(InsufficientFundsEvent{
		GameID:    e.cfg.ID,
		Attempt:   e.stealCount,
		Player:    thief,
		Balance:   e.balances[thief],
		Fee:       fee,
		timestamp: e.clock.Now(),
	})
	return false
}

func (e *Engine) finish(reason EndReason, winner string, reward, netProfit float64) GameEndEvent {
	end := GameEndEvent{
		GameID:        e.cfg.ID,
		Reason:        reason,
		Winner:        winner,
		Reward:        reward,
		NetProfit:     netProfit,
		RemainingPool: e.prizePool,
		Attempts:      e.stealCount,
		Balances:      e.Balances(),
		timestamp:     e.clock.Now(),
	}
	e.bus.Publish(end)
	return end
}
