package oracle

import "testing"

func TestInProgressExcludesFinalAndNotStarted(t *testing.T) {
	live := CanonicalGameRecord{Status: "in progress"}
	if !live.InProgress() {
		t.Fatal("expected 'in progress' to be InProgress")
	}

	final := CanonicalGameRecord{Status: "final"}
	if final.InProgress() {
		t.Fatal("did not expect 'final' to be InProgress")
	}

	scheduled := CanonicalGameRecord{Status: "scheduled"}
	if scheduled.InProgress() {
		t.Fatal("did not expect 'scheduled' to be InProgress")
	}
}

func TestFinalStatuses(t *testing.T) {
	for _, status := range []string{"finished", "final", "ft", "aot", "cancelled", "postponed", "abandoned"} {
		rec := CanonicalGameRecord{Status: status}
		if !rec.Final() {
			t.Errorf("expected status %q to be Final", status)
		}
	}
}

func TestNonFinalStatusIsNotFinal(t *testing.T) {
	rec := CanonicalGameRecord{Status: "in progress"}
	if rec.Final() {
		t.Fatal("did not expect 'in progress' to be Final")
	}
}
