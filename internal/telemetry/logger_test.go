package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPrettyHandlerFormatsWarnAndError(t *testing.T) {
	var buf bytes.Buffer
	h := &prettyHandler{w: &buf, level: slog.LevelDebug}

	r := slog.Record{Level: slog.LevelWarn, Message: "something happened"}
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !strings.Contains(buf.String(), "WARN: something happened") {
		t.Fatalf("expected WARN prefix in output, got %q", buf.String())
	}
}

func TestPrettyHandlerEnabledRespectsLevel(t *testing.T) {
	h := &prettyHandler{level: slog.LevelWarn}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug to be disabled when handler level is warn")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected error to be enabled when handler level is warn")
	}
}

func TestPrettyHandlerInfoHasNoPrefix(t *testing.T) {
	var buf bytes.Buffer
	h := &prettyHandler{w: &buf, level: slog.LevelDebug}
	r := slog.Record{Level: slog.LevelInfo, Message: "plain info line"}
	h.Handle(context.Background(), r)
	if strings.Contains(buf.String(), "WARN:") || strings.Contains(buf.String(), "ERROR:") {
		t.Fatalf("did not expect a level prefix on an info line, got %q", buf.String())
	}
}
