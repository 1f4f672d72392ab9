package sniper

import (
	"testing"
	"time"
)

const (
	testFailureThreshold = 3
	testInitialCooldown  = 30 * time.Second
	testMaxCooldown      = 5 * time.Minute
)

func newTestBreaker() *breaker {
	return newBreaker(testFailureThreshold, testInitialCooldown, testMaxCooldown)
}

func TestBreakerStartsClosed(t *testing.T) {
	b := newTestBreaker()
	if !b.Allow() {
		t.Fatal("expected fresh breaker to allow")
	}
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := newTestBreaker()
	for i := 0; i < testFailureThreshold-1; i++ {
		if tripped := b.RecordFailure(); tripped {
			t.Fatalf("did not expect trip before threshold, call %d", i)
		}
	}
	if tripped := b.RecordFailure(); !tripped {
		t.Fatal("expected breaker to trip on the threshold-th failure")
	}
	if b.Allow() {
		t.Fatal("expected breaker to refuse while open")
	}
}

func TestBreakerHalfOpenAfterCooldown(t *testing.T) {
	b := newTestBreaker()
	for i := 0; i < testFailureThreshold; i++ {
		b.RecordFailure()
	}
	b.openUntil = time.Now().Add(-time.Second) // force cooldown elapsed
	if !b.Allow() {
		t.Fatal("expected breaker to allow once cooldown elapsed")
	}
	if b.state != stateHalfOpen {
		t.Fatalf("expected state half-open, got %v", b.state)
	}
}

func TestBreakerHalfOpenFailureRetripsImmediately(t *testing.T) {
	b := newTestBreaker()
	b.state = stateHalfOpen
	if tripped := b.RecordFailure(); !tripped {
		t.Fatal("expected a single half-open failure to retrip immediately")
	}
	if b.state != stateOpen {
		t.Fatalf("expected state open after half-open failure, got %v", b.state)
	}
}

func TestBreakerSuccessResetsState(t *testing.T) {
	b := newTestBreaker()
	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	if b.consecutiveFails != 0 {
		t.Fatalf("expected consecutive fails reset to 0, got %d", b.consecutiveFails)
	}
	if b.state != stateClosed {
		t.Fatalf("expected state closed after success, got %v", b.state)
	}
	if b.cooldown != testInitialCooldown {
		t.Fatalf("expected cooldown reset to initial, got %v", b.cooldown)
	}
}

func TestBreakerCooldownDoublesOnRepeatedTrips(t *testing.T) {
	b := newTestBreaker()
	for i := 0; i < testFailureThreshold; i++ {
		b.RecordFailure()
	}
	firstCooldown := b.cooldown // already doubled once inside trip()
	if firstCooldown != testInitialCooldown*2 {
		t.Fatalf("expected cooldown doubled to %v, got %v", testInitialCooldown*2, firstCooldown)
	}

	b.state = stateHalfOpen
	b.RecordFailure()
	if b.cooldown != testInitialCooldown*4 {
		t.Fatalf("expected cooldown doubled again to %v, got %v", testInitialCooldown*4, b.cooldown)
	}
}

func TestBreakerCooldownCapsAtMax(t *testing.T) {
	b := newTestBreaker()
	b.cooldown = testMaxCooldown
	for i := 0; i < testFailureThreshold; i++ {
		b.RecordFailure()
	}
	if b.cooldown != testMaxCooldown {
		t.Fatalf("expected cooldown capped at %v, got %v", testMaxCooldown, b.cooldown)
	}
}

func TestBreakerCooldownUntilReflectsTrip(t *testing.T) {
	b := newTestBreaker()
	before := time.Now()
	for i := 0; i < testFailureThreshold; i++ {
		b.RecordFailure()
	}
	if !b.CooldownUntil().After(before) {
		t.Fatal("expected CooldownUntil to be in the future after a trip")
	}
}
