package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestServicePathDateStamp(t *testing.T) {
	ts := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	got := ServicePath("logs", "chunker", ts)
	want := filepath.Join("logs", "chunker_20260824.log")
	if got != want {
		t.Fatalf("ServicePath = %q, want %q", got, want)
	}
}

func TestOpenServiceCreatesDirAndAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	now := time.Now()

	f, path, err := OpenService(dir, "kbwriter", now)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := f.WriteString("first\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = f.Close()

	// Reopen and verify append semantics.
	f2, path2, err := OpenService(dir, "kbwriter", now)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if path2 != path {
		t.Fatalf("path changed across opens: %q vs %q", path2, path)
	}
	if _, err := f2.WriteString("second\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = f2.Close()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "first\nsecond\n" {
		t.Fatalf("unexpected content: %q", string(b))
	}
}

func TestNewWithFileMirrorsToRotatedLog(t *testing.T) {
	file := filepath.Join(t.TempDir(), "chunksupd.log")
	lg := New(Config{Level: "debug", File: file})
	lg.Info("hello", "service", "chunker")

	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("supervisor log not written: %v", err)
	}
	if !strings.Contains(string(b), "hello") || !strings.Contains(string(b), "chunker") {
		t.Fatalf("unexpected log content: %q", string(b))
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
