package supervisor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPIDFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "chunker.pid")
	if err := WritePIDFile(path, 4321, 1756000000); err != nil {
		t.Fatalf("write: %v", err)
	}
	pid, start, err := ReadPIDFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if pid != 4321 || start != 1756000000 {
		t.Fatalf("round trip lost data: pid=%d start=%d", pid, start)
	}
}

func TestPIDFileWithoutMeta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kbwriter.pid")
	if err := os.WriteFile(path, []byte("777\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	pid, start, err := ReadPIDFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if pid != 777 || start != 0 {
		t.Fatalf("pid-only file misread: pid=%d start=%d", pid, start)
	}
}

func TestPIDFileGarbageMetaTolerated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunker.pid")
	if err := os.WriteFile(path, []byte("55\nnot-json\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	pid, start, err := ReadPIDFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if pid != 55 || start != 0 {
		t.Fatalf("garbage meta should yield pid only: pid=%d start=%d", pid, start)
	}
}

func TestPIDFileInvalidPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chunker.pid")
	if err := os.WriteFile(path, []byte("abc\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := ReadPIDFile(path); err == nil {
		t.Fatalf("expected error for invalid pid line")
	}
}

func TestRemovePIDFileMissingIsNoop(t *testing.T) {
	RemovePIDFile(filepath.Join(t.TempDir(), "nope.pid"))
}
