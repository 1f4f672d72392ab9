package sniper

import (
	"sync"
	"time"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// breaker is a three-state (closed/open/half-open) circuit breaker guarding
// order submission. failureThreshold consecutive non-success outcomes trip
// it open; cooldown starts at initialCooldown and doubles on every repeated
// half-open failure, capped at maxCooldown. All three are operator-tunable
// via config.Config's Breaker* fields. Independent of the risk-wide halt in
// internal/core/risk — this one protects against a misbehaving exchange
// connection, not a losing strategy.
type breaker struct {
	mu sync.Mutex

	state            breakerState
	consecutiveFails int
	cooldown         time.Duration
	openUntil        time.Time

	failureThreshold int
	initialCooldown  time.Duration
	maxCooldown      time.Duration
}

func newBreaker(failureThreshold int, initialCooldown, maxCooldown time.Duration) *breaker {
	return &breaker{
		state:            stateClosed,
		cooldown:         initialCooldown,
		failureThreshold: failureThreshold,
		initialCooldown:  initialCooldown,
		maxCooldown:      maxCooldown,
	}
}

// Allow reports whether a command may proceed, transitioning OPEN -> HALF_OPEN
// once the cooldown has elapsed.
func (b *breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed:
		return true
	case stateOpen:
		if time.Now().Before(b.openUntil) {
			return false
		}
		b.state = stateHalfOpen
		return true
	case stateHalfOpen:
		return true
	default:
		return true
	}
}

func (b *breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFails = 0
	b.cooldown = b.initialCooldown
	b.state = stateClosed
}

// RecordFailure reports a failed command and returns true if this call
// tripped the breaker open (i.e. a caller should log/audit the transition).
func (b *breaker) RecordFailure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == stateHalfOpen {
		b.trip()
		return true
	}

	b.consecutiveFails++
	if b.consecutiveFails >= b.failureThreshold {
		b.trip()
		return true
	}
	return false
}

// trip must be called with b.mu held.
func (b *breaker) trip() {
	b.state = stateOpen
	b.openUntil = time.Now().Add(b.cooldown)
	b.cooldown *= 2
	if b.cooldown > b.maxCooldown {
		b.cooldown = b.maxCooldown
	}
}

// CooldownUntil returns the current open-until deadline, for logging.
func (b *breaker) CooldownUntil() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openUntil
}
