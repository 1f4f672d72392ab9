package goalserve

import (
	"strings"
	"testing"
	"time"
)

func TestScoresURLIncludesSportAndCompetition(t *testing.T) {
	c := NewClient("secret-key", time.Second)
	url := c.scoresURL("basketball", "nba")

	if !strings.Contains(url, "secret-key") {
		t.Fatalf("expected URL to embed the API key, got %q", url)
	}
	if !strings.Contains(url, "basketball") || !strings.Contains(url, "nba") {
		t.Fatalf("expected URL to embed sport and competition id, got %q", url)
	}
	if !strings.HasSuffix(url, "/livescore") {
		t.Fatalf("expected URL to end with /livescore, got %q", url)
	}
}

func TestNewClientAppliesTimeout(t *testing.T) {
	c := NewClient("key", 5*time.Second)
	if c.httpClient.Timeout != 5*time.Second {
		t.Fatalf("expected timeout 5s, got %v", c.httpClient.Timeout)
	}
}
