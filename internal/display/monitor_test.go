package display

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/spudgame/internal/game"
	"github.com/lox/spudgame/internal/randutil"
)

func scenarioTranscript(t *testing.T, opts Options) string {
	t.Helper()
	cfg := game.DefaultConfig("Alice", "Bob", "Mike")
	cfg.TotalNumbers = 5
	cfg.InitialPrize = 100

	var buf bytes.Buffer
	engine, err := game.NewEngine(cfg, randutil.NewSequence(2, 0, 0, 4, 1, 1, 0, 1),
		game.WithClock(quartz.NewMock(t)),
		game.WithLogger(log.NewWithOptions(io.Discard, log.Options{})),
		game.WithSubscribers(NewMonitor(&buf, opts)))
	require.NoError(t, err)

	_, err = engine.Run(t.Context())
	require.NoError(t, err)
	return buf.String()
}

func TestMonitor_PlainTranscript(t *testing.T) {
	out := scenarioTranscript(t, Options{})

	want := strings.Join([]string{
		"*********** GAME START ****************",
		"Initial prize pool: $100.00",
		"Starting Spud Game with players: ['Alice': $100.00, 'Bob': $100.00, 'Mike': $100.00]",
		" 1 - Bob   stole the spud from Alice ->   Bob balance: $96.50, Steal fee: $3.50, Prize pool: $103.50",
		" 2 - Mike  stole the spud from Bob   ->  Mike balance: $95.97, Steal fee: $4.04, Prize pool: $107.53",
		" 3 - Alice stole the spud from Mike  -> Alice balance: $95.42, Steal fee: $4.58, Prize pool: $112.11",
		"Spud exploded! Alice wins $53.81 (Net profit: 49.24)",
		"Remaining prize pool: $58.30",
		"Finished Spud Game with players: ['Alice': $149.24, 'Bob': $96.50, 'Mike': $95.97]",
		"",
	}, "\n")
	assert.Equal(t, want, out)
	assert.NotContains(t, out, "\x1b[", "no escape codes without colour")
}

func TestMonitor_ShowGuesses(t *testing.T) {
	out := scenarioTranscript(t, Options{ShowGuesses: true})
	assert.Contains(t, out, "[guess 4, 4 left]")
	assert.Contains(t, out, "[guess 2, 2 left]")
}

func TestMonitor_InsufficientFunds(t *testing.T) {
	var buf bytes.Buffer
	m := NewMonitor(&buf, Options{})

	m.OnEvent(game.InsufficientFundsEvent{Player: "Bob", Balance: 1, Fee: 2})
	assert.Equal(t, "Bob doesn't have enough funds to steal the spud.\n", buf.String())
}

func TestMonitor_NoWinner(t *testing.T) {
	var buf bytes.Buffer
	m := NewMonitor(&buf, Options{ShowGameID: true})

	m.OnEvent(game.GameEndEvent{
		GameID:   "g1",
		Reason:   game.ReasonPlayersBroke,
		Balances: []game.Balance{{Player: "A", Amount: 5}, {Player: "B", Amount: 9}},
	})
	assert.Equal(t,
		"[g1] All players have run out of money. Game ends without a winner.\n"+
			"Finished Spud Game with players: ['A': $5.00, 'B': $9.00]\n",
		buf.String())
}

func TestMonitor_RenderKeepsLinesUnpadded(t *testing.T) {
	m := NewMonitor(io.Discard, Options{})
	text := m.Render(game.GameStartEvent{InitialPool: 10, Balances: []game.Balance{{Player: "A", Amount: 100}}})

	for _, line := range strings.Split(text, "\n") {
		assert.Equal(t, strings.TrimRight(line, " "), line)
	}
}
