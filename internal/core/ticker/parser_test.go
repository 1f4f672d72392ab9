package ticker

import "testing"

func TestParseTickerValid(t *testing.T) {
	pt, ok := ParseTicker("NBATOT-24031512LALBOS-215", "NBATOT")
	if !ok {
		t.Fatal("expected valid ticker to parse")
	}
	if pt.DateCode != "24031512" {
		t.Fatalf("expected date code 24031512, got %q", pt.DateCode)
	}
	if pt.TeamRun != "LALBOS" {
		t.Fatalf("expected team run LALBOS, got %q", pt.TeamRun)
	}
	if pt.Threshold != 215 {
		t.Fatalf("expected threshold 215, got %d", pt.Threshold)
	}
}

func TestParseTickerWrongPrefix(t *testing.T) {
	_, ok := ParseTicker("NFLTOT-24031512LALBOS-215", "NBATOT")
	if ok {
		t.Fatal("expected mismatched series prefix to fail")
	}
}

func TestParseTickerEmptyPrefix(t *testing.T) {
	_, ok := ParseTicker("NBATOT-24031512LALBOS-215", "")
	if ok {
		t.Fatal("expected empty series prefix to always fail")
	}
}

func TestParseTickerMissingThreshold(t *testing.T) {
	_, ok := ParseTicker("NBATOT-24031512LALBOS", "NBATOT")
	if ok {
		t.Fatal("expected ticker with no threshold segment to fail")
	}
}

func TestParseTickerNonNumericThreshold(t *testing.T) {
	_, ok := ParseTicker("NBATOT-24031512LALBOS-abc", "NBATOT")
	if ok {
		t.Fatal("expected non-numeric threshold to fail")
	}
}

func TestParseTickerTeamRunTooShort(t *testing.T) {
	_, ok := ParseTicker("NBATOT-2403151-215", "NBATOT")
	if ok {
		t.Fatal("expected a date-and-teams segment no longer than the date code to fail")
	}
}

func TestParseTickerExtraDashSegments(t *testing.T) {
	_, ok := ParseTicker("NBATOT-24031512LALBOS-215-extra", "NBATOT")
	if ok {
		t.Fatal("expected more than two dash-delimited segments after the prefix to fail")
	}
}
