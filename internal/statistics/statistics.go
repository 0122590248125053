package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/spudgame/internal/game"
)

// GameResult is the outcome of one simulated game
type GameResult struct {
	GameID        string
	Seed          int64 // RNG seed for this game (for replay)
	Reason        game.EndReason
	Winner        string // Empty when nobody won
	Rounds        int
	Reward        float64
	NetProfit     float64
	RemainingPool float64
	UnpaidFees    int // Attempts where the thief could not pay
}

// ResultFromEnd builds a GameResult from a game's final event
func ResultFromEnd(seed int64, end game.GameEndEvent, unpaidFees int) GameResult {
	return GameResult{
		GameID:        end.GameID,
		Seed:          seed,
		Reason:        end.Reason,
		Winner:        end.Winner,
		Rounds:        end.Attempts,
		Reward:        end.Reward,
		NetProfit:     end.NetProfit,
		RemainingPool: end.RemainingPool,
		UnpaidFees:    unpaidFees,
	}
}

// Statistics aggregates results across many games
type Statistics struct {
	Games     int
	Wins      int // Games that paid out a winner
	Guessed   int // Wins by hitting the spudmaster number
	Exhausted int // Wins by taking the last number
	NoWinner  int // Games where every player went broke

	RoundsSum  int
	UnpaidFees int

	SumReward  float64
	SumReward2 float64   // Sum of squares for variance calculation
	Rewards    []float64 // Rewards of won games for median/percentile calculation

	SumRemainingPool float64
	SumNetProfit     float64

	PlayerWins map[string]int
}

// Add incorporates a new game result into the statistics
func (s *Statistics) Add(result GameResult) {
	s.Games++
	s.RoundsSum += result.Rounds
	s.UnpaidFees += result.UnpaidFees
	s.SumRemainingPool += result.RemainingPool

	if result.Winner == "" {
		s.NoWinner++
		return
	}

	s.Wins++
	switch result.Reason {
	case game.ReasonNumbersExhausted:
		s.Exhausted++
	default:
		s.Guessed++
	}

	s.SumReward += result.Reward
	s.SumReward2 += result.Reward * result.Reward
	s.Rewards = append(s.Rewards, result.Reward)
	s.SumNetProfit += result.NetProfit

	if s.PlayerWins == nil {
		s.PlayerWins = make(map[string]int)
	}
	s.PlayerWins[result.Winner]++
}

// WinRate returns the fraction of games that produced a winner
func (s *Statistics) WinRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Games)
}

// NoWinnerRate returns the fraction of games that ended with everyone broke
func (s *Statistics) NoWinnerRate() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.NoWinner) / float64(s.Games)
}

// MeanRounds returns the average number of steal attempts per game
func (s *Statistics) MeanRounds() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.RoundsSum) / float64(s.Games)
}

// MeanRemainingPool returns the average pool left behind after a game
func (s *Statistics) MeanRemainingPool() float64 {
	if s.Games == 0 {
		return 0
	}
	return s.SumRemainingPool / float64(s.Games)
}

// MeanReward returns the average reward of won games
func (s *Statistics) MeanReward() float64 {
	if s.Wins == 0 {
		return 0
	}
	return s.SumReward / float64(s.Wins)
}

// MeanNetProfit returns the average winner net profit
func (s *Statistics) MeanNetProfit() float64 {
	if s.Wins == 0 {
		return 0
	}
	return s.SumNetProfit / float64(s.Wins)
}

// RewardVariance returns the sample variance of rewards
func (s *Statistics) RewardVariance() float64 {
	if s.Wins < 2 {
		return 0
	}
	mean := s.MeanReward()
	v := (s.SumReward2 - float64(s.Wins)*mean*mean) / float64(s.Wins-1)
	// Cancellation can leave a tiny negative value for identical rewards
	return math.Max(v, 0)
}

// RewardStdDev returns the sample standard deviation of rewards
func (s *Statistics) RewardStdDev() float64 {
	return math.Sqrt(s.RewardVariance())
}

// RewardStdError returns the standard error of the mean reward
func (s *Statistics) RewardStdError() float64 {
	if s.Wins == 0 {
		return 0
	}
	return s.RewardStdDev() / math.Sqrt(float64(s.Wins))
}

// RewardCI95 returns the 95% confidence interval for the mean reward
func (s *Statistics) RewardCI95() (float64, float64) {
	mean := s.MeanReward()
	margin := 1.96 * s.RewardStdError()
	return mean - margin, mean + margin
}

// MedianReward returns the median reward of won games
func (s *Statistics) MedianReward() float64 {
	return s.RewardPercentile(0.5)
}

// RewardPercentile returns the reward at the given percentile (0.0 to 1.0)
func (s *Statistics) RewardPercentile(p float64) float64 {
	if len(s.Rewards) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Rewards))
	copy(sorted, s.Rewards)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Merge folds other into s
func (s *Statistics) Merge(other *Statistics) {
	s.Games += other.Games
	s.Wins += other.Wins
	s.Guessed += other.Guessed
	s.Exhausted += other.Exhausted
	s.NoWinner += other.NoWinner
	s.RoundsSum += other.RoundsSum
	s.UnpaidFees += other.UnpaidFees
	s.SumReward += other.SumReward
	s.SumReward2 += other.SumReward2
	s.Rewards = append(s.Rewards, other.Rewards...)
	s.SumRemainingPool += other.SumRemainingPool
	s.SumNetProfit += other.SumNetProfit

	if len(other.PlayerWins) > 0 && s.PlayerWins == nil {
		s.PlayerWins = make(map[string]int, len(other.PlayerWins))
	}
	for player, wins := range other.PlayerWins {
		s.PlayerWins[player] += wins
	}
}

// Validate checks that the counters are consistent
func (s *Statistics) Validate() error {
	if s.Games <= 0 {
		return fmt.Errorf("invalid games count: %d", s.Games)
	}

	if s.Wins+s.NoWinner != s.Games {
		return fmt.Errorf("wins (%d) + no-winner games (%d) does not match games (%d)",
			s.Wins, s.NoWinner, s.Games)
	}

	if s.Guessed+s.Exhausted != s.Wins {
		return fmt.Errorf("guessed (%d) + exhausted (%d) does not match wins (%d)",
			s.Guessed, s.Exhausted, s.Wins)
	}

	if len(s.Rewards) != s.Wins {
		return fmt.Errorf("rewards length (%d) does not match wins (%d)", len(s.Rewards), s.Wins)
	}

	playerWins := 0
	for _, wins := range s.PlayerWins {
		playerWins += wins
	}
	if playerWins != s.Wins {
		return fmt.Errorf("player wins total (%d) does not match wins (%d)", playerWins, s.Wins)
	}

	return nil
}
