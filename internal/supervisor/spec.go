package supervisor

import (
	"os/exec"
	"path/filepath"
	"time"

	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/logger"
)

const (
	// DefaultInterpreter runs the pipeline scripts.
	DefaultInterpreter = "python3"
	// DefaultStopGrace is how long Stop waits after SIGTERM before escalating.
	DefaultStopGrace = 5 * time.Second
	// DefaultRestartDelay is the settle time between stop and start on restart.
	DefaultRestartDelay = 2 * time.Second
)

// Spec describes one supervised service: which script to run and where its
// PID file and logs live. The PID file's existence is the sole marker for
// "started"; it can go stale when the process dies on its own.
type Spec struct {
	Name        string   `json:"name" mapstructure:"name"`
	Script      string   `json:"script" mapstructure:"script"`
	Interpreter string   `json:"interpreter" mapstructure:"interpreter"`
	Args        []string `json:"args" mapstructure:"args"`
	WorkDir     string   `json:"work_dir" mapstructure:"workdir"`
	Env         []string `json:"env" mapstructure:"env"`
	PIDFile     string   `json:"pid_file" mapstructure:"pidfile"`
	LogDir      string   `json:"log_dir" mapstructure:"log_dir"`

	// Document-directory argument handling. When DocDirFlag is empty the
	// service takes no directory argument.
	DocDirFlag    string `json:"doc_dir_flag" mapstructure:"doc_dir_flag"`
	DefaultDocDir string `json:"default_doc_dir" mapstructure:"default_doc_dir"`
	PromptDocDir  bool   `json:"prompt_doc_dir" mapstructure:"prompt_doc_dir"`

	StopGrace    time.Duration `json:"stop_grace" mapstructure:"stop_grace"`
	RestartDelay time.Duration `json:"restart_delay" mapstructure:"restart_delay"`
}

// Normalize fills defaults for unset fields.
func (s *Spec) Normalize() {
	if s.Interpreter == "" {
		s.Interpreter = DefaultInterpreter
	}
	if s.PIDFile == "" && s.Name != "" {
		s.PIDFile = s.Name + ".pid"
	}
	if s.LogDir == "" {
		s.LogDir = "logs"
	}
	if s.StopGrace <= 0 {
		s.StopGrace = DefaultStopGrace
	}
	if s.RestartDelay <= 0 {
		s.RestartDelay = DefaultRestartDelay
	}
}

// LogPath returns the date-stamped log file for day t.
func (s *Spec) LogPath(t time.Time) string {
	return logger.ServicePath(s.LogDir, s.Name, t)
}

// ResolveInterpreter locates the interpreter binary on PATH (or verifies an
// explicit path). A missing interpreter is a precondition failure.
func (s *Spec) ResolveInterpreter() (string, error) {
	interp := s.Interpreter
	if interp == "" {
		interp = DefaultInterpreter
	}
	p, err := exec.LookPath(interp)
	if err != nil {
		return "", &CodedError{Code: ExitFailure, Msg: "interpreter not found: " + interp}
	}
	if !filepath.IsAbs(p) {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
	}
	return p, nil
}

// BuildCommand constructs the *exec.Cmd launching the service script with
// interp. docDir, when both it and DocDirFlag are set, is appended as
// "<flag> <dir>".
func (s *Spec) BuildCommand(interp, docDir string) *exec.Cmd {
	args := make([]string, 0, len(s.Args)+3)
	args = append(args, s.Script)
	args = append(args, s.Args...)
	if s.DocDirFlag != "" && docDir != "" {
		args = append(args, s.DocDirFlag, docDir)
	}
	// #nosec G204
	cmd := exec.Command(interp, args...)
	if s.WorkDir != "" {
		cmd.Dir = s.WorkDir
	}
	return cmd
}
