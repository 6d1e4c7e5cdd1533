package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	if err == nil {
		t.Fatal("New() should reject unknown level")
	}
}

func TestHandlerWritesMessageAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Info("transcript saved", "path", "/out/transcript_a.txt", "segments", 3)

	out := buf.String()
	if !strings.Contains(out, "transcript saved") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "path=/out/transcript_a.txt") {
		t.Errorf("output missing path attr: %q", out)
	}
	if !strings.Contains(out, "segments=3") {
		t.Errorf("output missing segments attr: %q", out)
	}
}

func TestHandlerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.Info("quiet")
	log.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Errorf("info record should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Errorf("warn record should pass: %q", out)
	}
}

func TestWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Options{Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	log.With(slog.String("file", "a.mp4")).WithGroup("segment").Debug("split", "count", 3)

	out := buf.String()
	if !strings.Contains(out, "file=a.mp4") {
		t.Errorf("output missing inherited attr: %q", out)
	}
	if !strings.Contains(out, "segment.count=3") {
		t.Errorf("output missing grouped attr: %q", out)
	}
}
