package events

import "testing"

func TestGameEventFinalStatuses(t *testing.T) {
	for _, status := range []string{"final", "complete", "completed", "closed"} {
		ge := GameEvent{Status: status}
		if !ge.Final() {
			t.Errorf("expected status %q to be Final", status)
		}
	}
}

func TestGameEventNotFinal(t *testing.T) {
	ge := GameEvent{Status: "in progress"}
	if ge.Final() {
		t.Fatal("did not expect 'in progress' to be Final")
	}
}
