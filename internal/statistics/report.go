package statistics

import (
	"fmt"
	"sort"
	"strings"
)

// Report is a serialisable summary of a simulation run
type Report struct {
	Games             int          `json:"games" yaml:"games"`
	Seed              int64        `json:"seed" yaml:"seed"`
	WinRate           float64      `json:"win_rate" yaml:"win_rate"`
	NoWinnerRate      float64      `json:"no_winner_rate" yaml:"no_winner_rate"`
	Guessed           int          `json:"guessed" yaml:"guessed"`
	Exhausted         int          `json:"exhausted" yaml:"exhausted"`
	MeanRounds        float64      `json:"mean_rounds" yaml:"mean_rounds"`
	UnpaidFees        int          `json:"unpaid_fees" yaml:"unpaid_fees"`
	MeanReward        float64      `json:"mean_reward" yaml:"mean_reward"`
	MedianReward      float64      `json:"median_reward" yaml:"median_reward"`
	RewardStdDev      float64      `json:"reward_stddev" yaml:"reward_stddev"`
	RewardCI95        [2]float64   `json:"reward_ci95" yaml:"reward_ci95,flow"`
	MeanNetProfit     float64      `json:"mean_net_profit" yaml:"mean_net_profit"`
	MeanRemainingPool float64      `json:"mean_remaining_pool" yaml:"mean_remaining_pool"`
	Players           []PlayerWins `json:"players" yaml:"players"`
}

// PlayerWins is the number of games a player won
type PlayerWins struct {
	Player string  `json:"player" yaml:"player"`
	Wins   int     `json:"wins" yaml:"wins"`
	Share  float64 `json:"share" yaml:"share"`
}

// Report summarises the statistics. Players are sorted by wins, then name.
func (s *Statistics) Report(seed int64) Report {
	low, high := s.RewardCI95()
	r := Report{
		Games:             s.Games,
		Seed:              seed,
		WinRate:           s.WinRate(),
		NoWinnerRate:      s.NoWinnerRate(),
		Guessed:           s.Guessed,
		Exhausted:         s.Exhausted,
		MeanRounds:        s.MeanRounds(),
		UnpaidFees:        s.UnpaidFees,
		MeanReward:        s.MeanReward(),
		MedianReward:      s.MedianReward(),
		RewardStdDev:      s.RewardStdDev(),
		RewardCI95:        [2]float64{low, high},
		MeanNetProfit:     s.MeanNetProfit(),
		MeanRemainingPool: s.MeanRemainingPool(),
	}

	for player, wins := range s.PlayerWins {
		share := 0.0
		if s.Games > 0 {
			share = float64(wins) / float64(s.Games)
		}
		r.Players = append(r.Players, PlayerWins{Player: player, Wins: wins, Share: share})
	}
	sort.Slice(r.Players, func(i, j int) bool {
		if r.Players[i].Wins != r.Players[j].Wins {
			return r.Players[i].Wins > r.Players[j].Wins
		}
		return r.Players[i].Player < r.Players[j].Player
	})

	return r
}

// String renders the report as aligned text
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Games:               %d (seed %d)\n", r.Games, r.Seed)
	fmt.Fprintf(&b, "Win rate:            %.1f%% (%d guessed, %d last number)\n", r.WinRate*100, r.Guessed, r.Exhausted)
	fmt.Fprintf(&b, "No winner:           %.1f%%\n", r.NoWinnerRate*100)
	fmt.Fprintf(&b, "Mean rounds:         %.2f\n", r.MeanRounds)
	fmt.Fprintf(&b, "Unpaid fees:         %d\n", r.UnpaidFees)
	fmt.Fprintf(&b, "Reward:              mean $%.2f, median $%.2f, sd $%.2f\n", r.MeanReward, r.MedianReward, r.RewardStdDev)
	fmt.Fprintf(&b, "Reward 95%% CI:       [$%.2f, $%.2f]\n", r.RewardCI95[0], r.RewardCI95[1])
	fmt.Fprintf(&b, "Mean net profit:     $%.2f\n", r.MeanNetProfit)
	fmt.Fprintf(&b, "Mean pool left over: $%.2f\n", r.MeanRemainingPool)
	for _, p := range r.Players {
		fmt.Fprintf(&b, "  %-12s %6d wins (%.1f%%)\n", p.Player, p.Wins, p.Share*100)
	}
	return b.String()
}
