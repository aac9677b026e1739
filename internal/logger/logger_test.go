package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesToFileAndWriter(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "mtb.log")

	log, closeFn, err := New(&buf, "debug", path)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	log.Debug("seat booked", "seat", "11")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !strings.Contains(buf.String(), "seat=11") {
		t.Fatalf("expected writer output, got %q", buf.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "seat booked") {
		t.Fatalf("expected file output, got %q", string(data))
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
