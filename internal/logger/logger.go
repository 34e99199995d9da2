package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for the supervisor's own log file.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes the logging layout of a supervised installation.
// Dir holds the per-service date-stamped files and, when File is set, the
// supervisor's own rotated log. Rotation parameters follow lumberjack
// semantics and apply to File only: service logs are plain append files
// because their descriptors are inherited by detached children.
type Config struct {
	Dir        string `json:"dir" mapstructure:"dir"`
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"` // supervisor log; empty disables
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

// ServicePath returns the date-stamped log file path for a service on day t,
// e.g. logs/chunker_20260824.log.
func ServicePath(dir, name string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.log", name, t.Format("20060102")))
}

// OpenService opens the date-stamped service log for appending, creating the
// log directory if absent. The file backs the stdout/stderr of a detached
// child, so it must be a real descriptor rather than a piped writer.
func OpenService(dir, name string, t time.Time) (*os.File, string, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, "", fmt.Errorf("create log dir %s: %w", dir, err)
	}
	path := ServicePath(dir, name, t)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640) // #nosec G304
	if err != nil {
		return nil, "", fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, path, nil
}

// New builds the supervisor's slog logger from c. Output goes to stderr with
// colorized levels; when c.File is set it is mirrored to a size-rotated file.
func New(c Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level)}
	if c.File == "" {
		return slog.New(NewColorTextHandler(os.Stderr, opts, true))
	}
	rot := &lj.Logger{
		Filename:   c.File,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
	w := io.MultiWriter(os.Stderr, rot)
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
