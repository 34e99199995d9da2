// Package supervisor implements the lifecycle operations for the pipeline's
// background services: start, stop, restart, status and log access, tracked
// through a PID file and a date-stamped log file per service.
package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/journal"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/logger"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/logtail"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/metrics"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/probe"
)

// State machine states reported by Status.
const (
	StateRunning = "running"
	StateStopped = "stopped"
	StateStale   = "stale"
)

// Status describes the observed state of a service.
type Status struct {
	Name    string   `json:"name"`
	State   string   `json:"state"`
	PID     int      `json:"pid,omitempty"`
	LogPath string   `json:"log_path,omitempty"`
	LogTail []string `json:"log_tail,omitempty"`
}

// Supervisor executes lifecycle operations for one service. Each CLI
// invocation builds a fresh Supervisor from config; there is no resident
// state beyond the PID file and no locking around it, so concurrent starts
// can race on the check-then-write.
type Supervisor struct {
	spec      Spec
	probe     probe.Probe
	jrn       journal.Sink
	log       *slog.Logger
	promptIn  io.Reader
	promptOut io.Writer
	env       []string
}

// New builds a Supervisor for spec with defaults filled in.
func New(spec Spec) *Supervisor {
	spec.Normalize()
	return &Supervisor{
		spec:      spec,
		probe:     probe.Table{},
		log:       slog.Default(),
		promptIn:  os.Stdin,
		promptOut: os.Stderr,
	}
}

// Spec returns a copy of the normalized spec.
func (s *Supervisor) Spec() Spec { return s.spec }

// SetProbe replaces the process liveness probe (used by tests).
func (s *Supervisor) SetProbe(p probe.Probe) {
	if p != nil {
		s.probe = p
	}
}

// SetJournal attaches a lifecycle event sink. nil disables journaling.
func (s *Supervisor) SetJournal(j journal.Sink) { s.jrn = j }

// SetLogger replaces the supervisor's structured logger.
func (s *Supervisor) SetLogger(l *slog.Logger) {
	if l != nil {
		s.log = l
	}
}

// SetPromptIO redirects the interactive doc-dir prompt.
func (s *Supervisor) SetPromptIO(in io.Reader, out io.Writer) {
	if in != nil {
		s.promptIn = in
	}
	if out != nil {
		s.promptOut = out
	}
}

// SetEnv sets the full environment for launched services. nil inherits the
// supervisor's environment.
func (s *Supervisor) SetEnv(env []string) { s.env = env }

// Start launches the service detached. The PID file's existence is the sole
// precondition: if it exists the service counts as already running, even
// when the recorded process is long gone. docDir overrides the interactive
// prompt for services that take a document directory.
func (s *Supervisor) Start(docDir string) error {
	if _, err := os.Stat(s.spec.PIDFile); err == nil {
		return &CodedError{
			Code: ExitFailure,
			Msg:  fmt.Sprintf("%s is already running (pid file %s exists)", s.spec.Name, s.spec.PIDFile),
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("check pid file %s: %w", s.spec.PIDFile, err)
	}

	interp, err := s.spec.ResolveInterpreter()
	if err != nil {
		return err
	}

	if s.spec.DocDirFlag != "" && docDir == "" {
		if s.spec.PromptDocDir {
			docDir = s.promptDocDir()
		} else {
			docDir = s.spec.DefaultDocDir
		}
	}

	now := time.Now()
	logFile, logPath, err := logger.OpenService(s.spec.LogDir, s.spec.Name, now)
	if err != nil {
		return err
	}

	cmd := s.spec.BuildCommand(interp, docDir)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil
	if len(s.env) > 0 {
		cmd.Env = append(append([]string(nil), s.env...), s.spec.Env...)
	} else if len(s.spec.Env) > 0 {
		cmd.Env = append(os.Environ(), s.spec.Env...)
	}
	configureDetached(cmd)

	if err := cmd.Start(); err != nil {
		_ = logFile.Close()
		return fmt.Errorf("start %s: %w", s.spec.Name, err)
	}
	pid := cmd.Process.Pid
	startUnix := probe.StartUnix(pid)
	if err := WritePIDFile(s.spec.PIDFile, pid, startUnix); err != nil {
		s.log.Warn("pid file not written", "service", s.spec.Name, "error", err)
	}
	// The child owns its copy of the log descriptor; release ours and let
	// the process run on without us.
	_ = logFile.Close()
	_ = cmd.Process.Release()

	s.log.Info("service started",
		"service", s.spec.Name, "pid", pid, "log", logPath)
	metrics.IncStart(s.spec.Name)
	s.record(journal.EventStart, pid, docDir)
	return nil
}

// Stop terminates the service recorded in the PID file. SIGTERM is followed
// by a bounded wait and a SIGKILL escalation. The PID file is removed
// unconditionally, even when the process refused to die.
func (s *Supervisor) Stop() error {
	pid, startUnix, err := ReadPIDFile(s.spec.PIDFile)
	if err != nil {
		if os.IsNotExist(err) {
			return &CodedError{
				Code: ExitFailure,
				Msg:  fmt.Sprintf("%s is not running (no pid file at %s)", s.spec.Name, s.spec.PIDFile),
			}
		}
		return fmt.Errorf("read pid file %s: %w", s.spec.PIDFile, err)
	}
	defer RemovePIDFile(s.spec.PIDFile)

	alive, err := s.probe.Alive(pid, startUnix)
	if err != nil {
		return fmt.Errorf("probe pid %d: %w", pid, err)
	}
	if !alive {
		s.log.Warn("process already gone, removing pid file",
			"service", s.spec.Name, "pid", pid)
		metrics.IncStop(s.spec.Name)
		s.record(journal.EventStop, pid, "process already gone")
		return nil
	}

	if err := terminate(pid); err != nil {
		s.log.Warn("terminate failed", "service", s.spec.Name, "pid", pid, "error", err)
	}
	deadline := time.Now().Add(s.spec.StopGrace)
	for time.Now().Before(deadline) {
		if alive, _ = s.probe.Alive(pid, startUnix); !alive {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	detail := "terminated"
	if alive {
		_ = kill(pid)
		detail = "escalated to kill"
		s.log.Warn("stop escalated to kill",
			"service", s.spec.Name, "pid", pid, "grace", s.spec.StopGrace)
		// Brief best-effort wait for the kill to land.
		time.Sleep(200 * time.Millisecond)
	}

	s.log.Info("service stopped", "service", s.spec.Name, "pid", pid)
	metrics.IncStop(s.spec.Name)
	s.record(journal.EventStop, pid, detail)
	return nil
}

// Restart stops the service (tolerating "not running"), waits the settle
// delay, and starts it again.
func (s *Supervisor) Restart(docDir string) error {
	if err := s.Stop(); err != nil {
		var ce *CodedError
		if !errors.As(err, &ce) {
			return err
		}
		s.log.Warn("restart: stop skipped", "service", s.spec.Name, "reason", ce.Msg)
	}
	time.Sleep(s.spec.RestartDelay)
	return s.Start(docDir)
}

// Status inspects the PID file and the process table. The returned error is
// coded: ExitNotRunning when no PID file exists, ExitStalePID when the file
// names a process that is gone (the stale file is left in place). tailLines
// trailing log lines are attached when the service is running.
func (s *Supervisor) Status(tailLines int) (Status, error) {
	st := Status{Name: s.spec.Name, State: StateStopped}

	pid, startUnix, err := ReadPIDFile(s.spec.PIDFile)
	if err != nil {
		if os.IsNotExist(err) {
			metrics.SetRunning(s.spec.Name, false)
			return st, &CodedError{
				Code: ExitNotRunning,
				Msg:  fmt.Sprintf("%s is not running (no pid file at %s)", s.spec.Name, s.spec.PIDFile),
			}
		}
		return st, fmt.Errorf("read pid file %s: %w", s.spec.PIDFile, err)
	}
	st.PID = pid

	alive, err := s.probe.Alive(pid, startUnix)
	if err != nil {
		return st, fmt.Errorf("probe pid %d: %w", pid, err)
	}
	if !alive {
		st.State = StateStale
		metrics.IncStale(s.spec.Name)
		s.record(journal.EventStale, pid, "pid file present but process gone")
		return st, &CodedError{
			Code: ExitStalePID,
			Msg:  fmt.Sprintf("%s: pid file %s names pid %d but no such process (stale pid file left in place)", s.spec.Name, s.spec.PIDFile, pid),
		}
	}

	st.State = StateRunning
	st.LogPath = s.spec.LogPath(time.Now())
	metrics.SetRunning(s.spec.Name, true)
	if tailLines > 0 {
		// Best effort: today's file may not exist when the service was
		// started on a previous day.
		if lines, err := logtail.LastLines(st.LogPath, tailLines); err == nil {
			st.LogTail = lines
		}
	}
	return st, nil
}

// Logs writes the service's current log file to w. It fails without
// blocking when the file is absent; with follow set it streams appends
// until ctx is done.
func (s *Supervisor) Logs(ctx context.Context, w io.Writer, follow bool) error {
	path := s.spec.LogPath(time.Now())
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		if os.IsNotExist(err) {
			return &CodedError{
				Code: ExitFailure,
				Msg:  fmt.Sprintf("no log file for %s at %s", s.spec.Name, path),
			}
		}
		return err
	}
	if !follow {
		defer func() { _ = f.Close() }()
		_, err = io.Copy(w, f)
		return err
	}
	_ = f.Close()
	return logtail.Follow(ctx, path, w)
}

// History returns the most recent journal events for this service.
func (s *Supervisor) History(ctx context.Context, limit int) ([]journal.Event, error) {
	if s.jrn == nil {
		return nil, errors.New("journal is not configured")
	}
	return s.jrn.Recent(ctx, s.spec.Name, limit)
}

func (s *Supervisor) promptDocDir() string {
	fmt.Fprintf(s.promptOut, "document directory [%s]: ", s.spec.DefaultDocDir)
	line, _ := bufio.NewReader(s.promptIn).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return s.spec.DefaultDocDir
	}
	return line
}

// record journals a lifecycle event; failures are logged and dropped.
func (s *Supervisor) record(typ journal.EventType, pid int, detail string) {
	if s.jrn == nil {
		return
	}
	e := journal.Event{
		Type:       typ,
		Service:    s.spec.Name,
		PID:        pid,
		OccurredAt: time.Now().UTC(),
		Detail:     detail,
	}
	if err := s.jrn.Send(context.Background(), e); err != nil {
		s.log.Warn("journal write failed", "service", s.spec.Name, "error", err)
	}
}
