package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerWritesToFile(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, slog.LevelDebug, false)
	log.Info("board reset", Tick(42))

	out := buf.String()
	if !strings.Contains(out, "board reset") || !strings.Contains(out, "tick=42") {
		t.Errorf("output = %q, want it to mention the message and tick", out)
	}
}

func TestHandlerSkipsDebugWithoutDebugFlag(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}, false)
	log := slog.New(h)
	log.Debug("noisy")
	if buf.Len() == 0 {
		t.Fatal("expected debug record written to file even without debug flag")
	}
}

func TestHandlerNilFileDoesNotPanic(t *testing.T) {
	log := New(nil, slog.LevelDebug, false)
	log.Info("no file configured")
}
