package observability

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNopLogger(t *testing.T) {
	var l Logger = NopLogger{}
	l = l.With(String("k", "v"))
	l.Debug("d")
	l.Info("i", Int("n", 1))
	l.Warn("w", Bool("b", true))
	l.Error("e", Error("err", errors.New("boom")))
}

func TestSlogLoggerWritesFields(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	l := NewSlogLogger(slog.New(h)).With(String("export", "test"))

	l.Warn("page skipped", Int("page", 3), Int64("pixels", 1<<30), Error("err", errors.New("too large")))

	out := buf.String()
	for _, want := range []string{"level=WARN", `msg="page skipped"`, "export=test", "page=3", "pixels=1073741824", `err="too large"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output %q missing %q", out, want)
		}
	}
}

func TestSlogLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	l := NewSlogLogger(slog.New(h))
	l.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug message should be filtered, got %q", buf.String())
	}
}

func TestNilSlogLoggerDiscards(t *testing.T) {
	l := NewSlogLogger(nil)
	l.Error("nothing happens")
}
