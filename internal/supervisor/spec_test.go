package supervisor

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeDefaults(t *testing.T) {
	s := Spec{Name: "chunker", Script: "gen_chunk_graph.py"}
	s.Normalize()
	if s.Interpreter != DefaultInterpreter {
		t.Fatalf("interpreter default not applied: %q", s.Interpreter)
	}
	if s.PIDFile != "chunker.pid" {
		t.Fatalf("pid file default not applied: %q", s.PIDFile)
	}
	if s.LogDir != "logs" {
		t.Fatalf("log dir default not applied: %q", s.LogDir)
	}
	if s.StopGrace != DefaultStopGrace || s.RestartDelay != DefaultRestartDelay {
		t.Fatalf("duration defaults not applied: %v %v", s.StopGrace, s.RestartDelay)
	}
}

func TestBuildCommandIncludesDocDir(t *testing.T) {
	s := Spec{
		Name:       "chunker",
		Script:     "gen_chunk_graph.py",
		DocDirFlag: "--doc_dir",
	}
	cmd := s.BuildCommand("/usr/bin/python3", "sample_doc")
	joined := strings.Join(cmd.Args, " ")
	if !strings.Contains(joined, "--doc_dir sample_doc") {
		t.Fatalf("launch command missing doc dir argument: %q", joined)
	}
	if cmd.Args[0] != "/usr/bin/python3" || cmd.Args[1] != "gen_chunk_graph.py" {
		t.Fatalf("unexpected argv: %v", cmd.Args)
	}
}

func TestBuildCommandWithoutDocDirFlag(t *testing.T) {
	s := Spec{Name: "kbwriter", Script: "Write_k_b_from_folder.py"}
	cmd := s.BuildCommand("/usr/bin/python3", "ignored")
	for _, a := range cmd.Args {
		if strings.Contains(a, "ignored") {
			t.Fatalf("doc dir leaked into argv of flagless service: %v", cmd.Args)
		}
	}
}

func TestBuildCommandExtraArgsBeforeDocDir(t *testing.T) {
	s := Spec{
		Name:       "chunker",
		Script:     "gen_chunk_graph.py",
		Args:       []string{"--verbose"},
		DocDirFlag: "--doc_dir",
	}
	cmd := s.BuildCommand("python3", "docs")
	want := []string{"gen_chunk_graph.py", "--verbose", "--doc_dir", "docs"}
	if len(cmd.Args) != len(want)+1 {
		t.Fatalf("unexpected argv: %v", cmd.Args)
	}
	for i, w := range want {
		if cmd.Args[i+1] != w {
			t.Fatalf("argv[%d] = %q, want %q (full: %v)", i+1, cmd.Args[i+1], w, cmd.Args)
		}
	}
}

func TestResolveInterpreterNotFound(t *testing.T) {
	s := Spec{Name: "chunker", Interpreter: "definitely-not-a-real-interpreter-zz"}
	_, err := s.ResolveInterpreter()
	if err == nil {
		t.Fatalf("expected interpreter-not-found error")
	}
	if ExitCode(err) != ExitFailure {
		t.Fatalf("interpreter error should exit %d, got %d", ExitFailure, ExitCode(err))
	}
	if !strings.Contains(err.Error(), "interpreter not found") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestResolveInterpreterShell(t *testing.T) {
	s := Spec{Name: "x", Interpreter: "/bin/sh"}
	p, err := s.ResolveInterpreter()
	if err != nil {
		t.Fatalf("resolve /bin/sh: %v", err)
	}
	if p == "" {
		t.Fatalf("empty interpreter path")
	}
}

func TestLogPathUsesLogDir(t *testing.T) {
	s := Spec{Name: "chunker", LogDir: "/var/log/chunksup"}
	got := s.LogPath(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	if got != "/var/log/chunksup/chunker_20260824.log" {
		t.Fatalf("unexpected log path: %q", got)
	}
}
