package game

import "math"

// Pricing constants of the steal fee and payout curves.
const (
	BaseFee              = 2.0
	FeePerConsumedNumber = 0.5
	PoolFeeRate          = 0.01
	MinWinnerPercentage  = 0.15

	// LiquidityFloor is the balance below which a player can no longer
	// keep the game going. When every player is below it the game ends
	// without a winner.
	LiquidityFloor = 10.0
)

// StealFee returns the cost of one steal attempt. It rises with every number
// already consumed and with 1% of the pool, the pool part capped at maxFee.
func StealFee(totalNumbers, available int, prizePool, maxFee float64) float64 {
	dynamicFee := float64(totalNumbers-available) * FeePerConsumedNumber
	poolComponent := math.Min(prizePool*PoolFeeRate, maxFee)
	return BaseFee + dynamicFee + poolComponent
}

// WinnerPercentage returns the share of the pool paid to a winner when
// available numbers are still unguessed. Early wins pay less, never below
// MinWinnerPercentage.
func WinnerPercentage(totalNumbers, available int, poolWinnerPercentage float64) float64 {
	remainingFraction := float64(available) / float64(totalNumbers)
	return math.Max((1-remainingFraction)*poolWinnerPercentage, MinWinnerPercentage)
}
