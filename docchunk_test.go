package docchunk

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultSpecs(t *testing.T) {
	specs := DefaultSpecs("/srv/pipeline")
	if len(specs) != 2 {
		t.Fatalf("expected 2 services, got %d", len(specs))
	}
	names := map[string]bool{}
	for _, s := range specs {
		names[s.Name] = true
	}
	if !names["chunker"] || !names["kbwriter"] {
		t.Fatalf("unexpected services: %v", names)
	}
}

func TestEmbeddedLifecycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires Unix sleep")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "svc.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\n"), 0o700); err != nil {
		t.Fatalf("write script: %v", err)
	}

	sup := New(Spec{
		Name:        "svc",
		Script:      script,
		Interpreter: "/bin/sh",
		PIDFile:     filepath.Join(dir, "svc.pid"),
		LogDir:      filepath.Join(dir, "logs"),
	})

	if _, err := sup.Status(0); ExitCode(err) != ExitNotRunning {
		t.Fatalf("fresh status should map to ExitNotRunning")
	}
	if err := sup.Start(""); err != nil {
		t.Fatalf("start: %v", err)
	}
	st, err := sup.Status(0)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.State != "running" || st.PID <= 0 {
		t.Fatalf("unexpected status: %+v", st)
	}
	if err := sup.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "svc.pid")); !os.IsNotExist(err) {
		t.Fatalf("pid file must be removed by stop")
	}
}
