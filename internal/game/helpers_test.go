package game

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// eventCollector records every event it receives
type eventCollector struct {
	events []GameEvent
}

func (c *eventCollector) OnEvent(event GameEvent) {
	c.events = append(c.events, event)
}

func (c *eventCollector) types() []EventType {
	out := make([]EventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.EventType())
	}
	return out
}

func (c *eventCollector) rounds() []RoundEvent {
	var out []RoundEvent
	for _, e := range c.events {
		if round, ok := e.(RoundEvent); ok {
			out = append(out, round)
		}
	}
	return out
}

// recordingRNG remembers the bound of every draw
type recordingRNG struct {
	inner  RNG
	bounds []int
}

func (r *recordingRNG) IntN(n int) int {
	r.bounds = append(r.bounds, n)
	return r.inner.IntN(n)
}

func newTestEngine(t *testing.T, cfg Config, rng RNG) (*Engine, *eventCollector) {
	t.Helper()
	return newTestEngineWithClock(t, cfg, rng, quartz.NewMock(t))
}

func newTestEngineWithClock(t *testing.T, cfg Config, rng RNG, clock quartz.Clock) (*Engine, *eventCollector) {
	t.Helper()
	collector := &eventCollector{}
	engine, err := NewEngine(cfg, rng,
		WithLogger(testLogger()),
		WithClock(clock),
		WithSubscribers(collector))
	require.NoError(t, err)
	return engine, collector
}
