package game

import (
	"encoding/json"
	"reflect"
	"time"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeGameStart         EventType = "game_start"
	EventTypeRound             EventType = "round"
	EventTypeInsufficientFunds EventType = "insufficient_funds"
	EventTypeGameEnd           EventType = "game_end"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// EndReason explains why a game stopped.
type EndReason string

const (
	ReasonSpudmasterGuessed EndReason = "spudmaster_guessed"
	ReasonNumbersExhausted  EndReason = "numbers_exhausted"
	ReasonPlayersBroke      EndReason = "players_broke"
)

// GameEvent represents anything observable that happens during a game
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// Balance is a player's balance at a point in time.
type Balance struct {
	Player string  `json:"player"`
	Amount float64 `json:"amount"`
}

// GameStartEvent is published before the first round is played
type GameStartEvent struct {
	GameID      string    `json:"game_id,omitempty"`
	InitialPool float64   `json:"initial_pool"`
	Balances    []Balance `json:"balances"`
	timestamp   time.Time
}

func (e GameStartEvent) EventType() EventType { return EventTypeGameStart }
func (e GameStartEvent) Timestamp() time.Time { return e.timestamp }

// RoundEvent summarises one steal attempt
type RoundEvent struct {
	GameID         string  `json:"game_id,omitempty"`
	Attempt        int     `json:"attempt"`
	Thief          string  `json:"thief"`
	PreviousHolder string  `json:"previous_holder"`
	Guess          int     `json:"guess"`
	ThiefBalance   float64 `json:"thief_balance"`
	Fee            float64 `json:"fee"`
	FeePaid        bool    `json:"fee_paid"`
	PrizePool      float64 `json:"prize_pool"`
	NumbersLeft    int     `json:"numbers_left"`
	timestamp      time.Time
}

func (e RoundEvent) EventType() EventType { return EventTypeRound }
func (e RoundEvent) Timestamp() time.Time { return e.timestamp }

// InsufficientFundsEvent is published when a thief cannot pay the steal fee.
// The attempt still goes ahead without the charge.
type InsufficientFundsEvent struct {
	GameID    string  `json:"game_id,omitempty"`
	Attempt   int     `json:"attempt"`
	Player    string  `json:"player"`
	Balance   float64 `json:"balance"`
	Fee       float64 `json:"fee"`
	timestamp time.Time
}

func (e InsufficientFundsEvent) EventType() EventType { return EventTypeInsufficientFunds }
func (e InsufficientFundsEvent) Timestamp() time.Time { return e.timestamp }

// GameEndEvent is published once when the game reaches a terminal state
type GameEndEvent struct {
	GameID        string    `json:"game_id,omitempty"`
	Reason        EndReason `json:"reason"`
	Winner        string    `json:"winner,omitempty"`
	Reward        float64   `json:"reward"`
	NetProfit     float64   `json:"net_profit"`
	RemainingPool float64   `json:"remaining_pool"`
	Attempts      int       `json:"attempts"`
	Balances      []Balance `json:"balances"`
	timestamp     time.Time
}

func (e GameEndEvent) EventType() EventType { return EventTypeGameEnd }
func (e GameEndEvent) Timestamp() time.Time { return e.timestamp }

// HasWinner reports whether somebody won the pool.
func (e GameEndEvent) HasWinner() bool { return e.Winner != "" }

// EventEnvelope is the wire form of an event for logs and feeds.
type EventEnvelope struct {
	Type  EventType `json:"type"`
	Time  time.Time `json:"time"`
	Event GameEvent `json:"event"`
}

// MarshalEvent encodes an event together with its type and timestamp.
func MarshalEvent(event GameEvent) ([]byte, error) {
	return json.Marshal(EventEnvelope{
		Type:  event.EventType(),
		Time:  event.Timestamp(),
		Event: event,
	})
}

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// SubscriberFunc adapts a function to an EventSubscriber.
type SubscriberFunc func(event GameEvent)

// OnEvent calls f(event).
func (f SubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a synchronous in-memory event bus. Subscribers are called
// in subscription order on the publishing goroutine.
type SimpleEventBus struct {
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events. Subscribers of a
// non-comparable type, such as SubscriberFunc or a struct value holding a
// map, cannot be identified and are left in place.
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	if subscriber == nil || !reflect.TypeOf(subscriber).Comparable() {
		return
	}
	for i, sub := range bus.subscribers {
		// Interface comparison only panics when both dynamic types match and
		// are non-comparable, which the check above rules out
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	for _, subscriber := range bus.subscribers {
		subscriber.OnEvent(event)
	}
}
