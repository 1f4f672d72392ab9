package events

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/scorearb/arbiter/internal/telemetry"
)

// OverflowPolicy governs what happens when a Channel[T] is full at publish
// time. Producers never block indefinitely against DropOldest/DropNewest.
type OverflowPolicy int

const (
	// DropOldest evicts the channel's oldest queued item to make room.
	// Used for score/book signals, where staleness is worse than loss.
	DropOldest OverflowPolicy = iota
	// DropNewest refuses the incoming item, keeping everything queued.
	// Used for fill reports: every fill must be accounted for in risk.
	DropNewest
	// Block waits for consumer drain. Used only where loss is unacceptable
	// and the producer can tolerate backpressure.
	Block
)

// PublishResult reports the outcome of a Channel[T].Publish call.
type PublishResult int

const (
	Ok PublishResult = iota
	Dropped
)

// Channel is a named, typed, bounded event channel with a configurable
// overflow policy. It is the redesigned replacement for the teacher's
// synchronous, unbounded Bus on the hot GameEvent/MarketUpdate/
// ExecuteTrade/FillReport paths: the vocabulary (Publish/Subscribe) is
// kept, the transport underneath is a buffered Go channel.
type Channel[T any] struct {
	name   string
	policy OverflowPolicy
	ch     chan T

	drops       telemetry.Counter
	logLimiter  *rate.Limiter
	mu          sync.Mutex // guards DropOldest's peek-then-send
}

// NewChannel constructs a bounded channel with the given capacity and
// overflow policy. capacity should be a small integer (64-256 per spec).
func NewChannel[T any](name string, capacity int, policy OverflowPolicy) *Channel[T] {
	return &Channel[T]{
		name:       name,
		policy:     policy,
		ch:         make(chan T, capacity),
		logLimiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Publish attempts to enqueue msg, applying the channel's overflow policy
// when full. Never blocks indefinitely except under Block.
func (c *Channel[T]) Publish(msg T) PublishResult {
	switch c.policy {
	case Block:
		c.ch <- msg
		return Ok
	case DropNewest:
		select {
		case c.ch <- msg:
			return Ok
		default:
			c.onDrop("newest item refused, channel full")
			return Dropped
		}
	default: // DropOldest
		c.mu.Lock()
		defer c.mu.Unlock()
		select {
		case c.ch <- msg:
			return Ok
		default:
			select {
			case <-c.ch:
				c.onDrop("oldest item evicted to make room")
			default:
			}
			select {
			case c.ch <- msg:
				return Ok
			default:
				c.onDrop("evicted but still full, refusing newest")
				return Dropped
			}
		}
	}
}

func (c *Channel[T]) onDrop(reason string) {
	c.drops.Inc()
	if c.logLimiter.Allow() {
		telemetry.Warnf("events: channel %q dropped item (%s), total_drops=%d",
			c.name, reason, c.drops.Value())
	}
}

// Subscribe returns the channel's receive side. There must be exactly one
// consumer per Channel[T] (single-producer/single-consumer per spec.md §2).
func (c *Channel[T]) Subscribe() <-chan T {
	return c.ch
}

// Drops returns the total number of items dropped since construction.
func (c *Channel[T]) Drops() int64 {
	return c.drops.Value()
}

// Name returns the channel's configured name, used in log lines and metrics.
func (c *Channel[T]) Name() string {
	return c.name
}
