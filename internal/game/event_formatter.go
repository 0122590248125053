package game

import (
	"fmt"
	"strings"
)

// FormattingOptions controls how events are rendered as text
type FormattingOptions struct {
	ShowGuesses bool // Append the guessed number to round lines
	ShowGameID  bool // Prefix lines with the game id when one is set
}

// EventFormatter renders game events as the classic console transcript
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format renders any game event. Unknown event types render as "".
func (ef *EventFormatter) Format(event GameEvent) string {
	switch e := event.(type) {
	case GameStartEvent:
		return ef.FormatGameStart(e)
	case RoundEvent:
		return ef.FormatRound(e)
	case InsufficientFundsEvent:
		return ef.FormatInsufficientFunds(e)
	case GameEndEvent:
		return ef.FormatGameEnd(e)
	default:
		return ""
	}
}

// FormatGameStart renders the opening banner and starting balances
func (ef *EventFormatter) FormatGameStart(event GameStartEvent) string {
	var b strings.Builder
	b.WriteString(ef.prefix(event.GameID))
	b.WriteString("*********** GAME START ****************\n")
	fmt.Fprintf(&b, "Initial prize pool: $%.2f\n", event.InitialPool)
	b.WriteString(FormatBalances("Starting", event.Balances))
	return b.String()
}

// FormatRound renders one steal attempt
func (ef *EventFormatter) FormatRound(event RoundEvent) string {
	line := fmt.Sprintf("%2d - %-5s stole the spud from %-5s -> %5s balance: $%.2f, Steal fee: $%.2f, Prize pool: $%.2f",
		event.Attempt, event.Thief, event.PreviousHolder, event.Thief,
		event.ThiefBalance, event.Fee, event.PrizePool)
	if !event.FeePaid {
		line += " (fee unpaid)"
	}
	if ef.opts.ShowGuesses {
		line += fmt.Sprintf(" [guess %d, %d left]", event.Guess, event.NumbersLeft)
	}
	return ef.prefix(event.GameID) + line
}

// FormatInsufficientFunds renders the notice for a thief who cannot pay
func (ef *EventFormatter) FormatInsufficientFunds(event InsufficientFundsEvent) string {
	return ef.prefix(event.GameID) + fmt.Sprintf("%s doesn't have enough funds to steal the spud.", event.Player)
}

// FormatGameEnd renders the result of a finished game
func (ef *EventFormatter) FormatGameEnd(event GameEndEvent) string {
	var b strings.Builder
	b.WriteString(ef.prefix(event.GameID))
	if !event.HasWinner() {
		b.WriteString("All players have run out of money. Game ends without a winner.\n")
	} else {
		fmt.Fprintf(&b, "Spud exploded! %s wins $%.2f (Net profit: %.2f)\n", event.Winner, event.Reward, event.NetProfit)
		if event.Reason == ReasonNumbersExhausted {
			b.WriteString("No numbers left, the last thief takes the pool.\n")
		}
		fmt.Fprintf(&b, "Remaining prize pool: $%.2f\n", event.RemainingPool)
	}
	b.WriteString(FormatBalances("Finished", event.Balances))
	return b.String()
}

// FormatBalances renders a balance list in setup order
func FormatBalances(status string, balances []Balance) string {
	parts := make([]string, 0, len(balances))
	for _, balance := range balances {
		parts = append(parts, fmt.Sprintf("'%s': $%.2f", balance.Player, balance.Amount))
	}
	return fmt.Sprintf("%s Spud Game with players: [%s]", status, strings.Join(parts, ", "))
}

func (ef *EventFormatter) prefix(gameID string) string {
	if !ef.opts.ShowGameID || gameID == "" {
		return ""
	}
	return "[" + gameID + "] "
}
