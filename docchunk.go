// Package docchunk exposes the pipeline service supervisor for embedding:
// the same lifecycle operations the chunksupd CLI offers, as a library.
package docchunk

import (
	"log/slog"
	"net/http"

	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/config"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/journal"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/logger"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/probe"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/server"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/supervisor"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Spec = supervisor.Spec

type Status = supervisor.Status

type Supervisor = supervisor.Supervisor

type CodedError = supervisor.CodedError

type Probe = probe.Probe

type LogConfig = logger.Config

type JournalConfig = journal.Config

type JournalSink = journal.Sink

type JournalEvent = journal.Event

type FileConfig = config.FileConfig

// Exit codes returned by ExitCode for supervisor operation errors.
const (
	ExitOK         = supervisor.ExitOK
	ExitFailure    = supervisor.ExitFailure
	ExitNotRunning = supervisor.ExitNotRunning
	ExitStalePID   = supervisor.ExitStalePID
)

// New builds a Supervisor for spec with defaults filled in.
func New(spec Spec) *Supervisor { return supervisor.New(spec) }

// DefaultSpecs returns the built-in chunker and kbwriter specs rooted at baseDir.
func DefaultSpecs(baseDir string) []Spec { return config.Defaults(baseDir) }

// LoadConfig reads the TOML config at path merged over the defaults for baseDir.
func LoadConfig(path, baseDir string) (FileConfig, error) { return config.Load(path, baseDir) }

// NewJournal builds the configured journal sink; a zero config yields (nil, nil).
func NewJournal(c JournalConfig) (JournalSink, error) { return journal.New(c) }

// NewLogger builds the supervisor's structured logger.
func NewLogger(c LogConfig) *slog.Logger { return logger.New(c) }

// ExitCode maps a supervisor operation error to a CLI exit code.
func ExitCode(err error) int { return supervisor.ExitCode(err) }

// NewRouter builds the embeddable HTTP control surface over sups.
func NewRouter(sups []*Supervisor, basePath string) http.Handler {
	return server.NewRouter(sups, basePath).Handler()
}
