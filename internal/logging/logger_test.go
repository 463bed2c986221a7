package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsAttrs(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("indexing set", String("set", "a"), Int("files", 12))

	out := buf.String()
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "indexing set") {
		t.Fatalf("unexpected output %q", out)
	}
	if !strings.Contains(out, "set=a") || !strings.Contains(out, "files=12") {
		t.Fatalf("attrs missing from %q", out)
	}
}

func TestConsoleHandlerGroupsQualifyAttachedAttrs(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.
		With(String("run", "r1")).
		WithGroup("stats").
		With(String("set", "a")).
		WithGroup("inner").
		Info("done", Int("files", 3))

	out := buf.String()
	if !strings.Contains(out, "run=r1") {
		t.Fatalf("pre-group attr must stay unprefixed: %q", out)
	}
	if !strings.Contains(out, "stats.set=a") {
		t.Fatalf("attr attached after WithGroup must carry its group: %q", out)
	}
	if !strings.Contains(out, "stats.inner.files=3") {
		t.Fatalf("record attr must carry all open groups: %q", out)
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("hidden")
	logger.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be suppressed: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("bogus"); got != slog.LevelInfo {
		t.Fatalf("expected info, got %v", got)
	}
}
