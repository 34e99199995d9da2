package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTOML(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write toml: %v", err)
	}
	return p
}

func TestDefaultsDefineBothServices(t *testing.T) {
	specs := Defaults("/srv/docchunk")
	if len(specs) != 2 {
		t.Fatalf("expected 2 built-in services, got %d", len(specs))
	}

	chunker := Find(specs, ServiceChunker)
	if chunker == nil {
		t.Fatalf("chunker missing")
	}
	if chunker.DocDirFlag != "--doc_dir" || chunker.DefaultDocDir != "sample_doc" || !chunker.PromptDocDir {
		t.Fatalf("chunker doc-dir defaults wrong: %+v", chunker)
	}
	if !strings.HasSuffix(chunker.Script, "gen_chunk_graph.py") {
		t.Fatalf("chunker script: %q", chunker.Script)
	}
	if chunker.PIDFile != filepath.Join("/srv/docchunk", "chunker.pid") {
		t.Fatalf("chunker pid file: %q", chunker.PIDFile)
	}

	kb := Find(specs, ServiceKBWriter)
	if kb == nil {
		t.Fatalf("kbwriter missing")
	}
	if kb.DocDirFlag != "" {
		t.Fatalf("kbwriter must not take a doc dir: %+v", kb)
	}
	if !strings.HasSuffix(kb.Script, "Write_k_b_from_folder.py") {
		t.Fatalf("kbwriter script: %q", kb.Script)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	fc, err := Load("", "/base")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(fc.Services) != 2 {
		t.Fatalf("expected defaults, got %d services", len(fc.Services))
	}
}

func TestLoadOverridesAndExtends(t *testing.T) {
	dir := t.TempDir()
	p := writeTOML(t, dir, "chunksup.toml", `
use_os_env = true
env = ["PYTHONUNBUFFERED=1"]

[log]
dir = "/var/log/chunksup"
level = "debug"

[journal]
type = "sqlite"
path = "/var/lib/chunksup/journal.db"

[[services]]
name = "chunker"
interpreter = "/opt/py/bin/python3"
stop_grace = "10s"

[[services]]
name = "extra"
script = "extra_worker.py"
`)

	fc, err := Load(p, dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !fc.UseOSEnv || len(fc.Env) != 1 {
		t.Fatalf("env settings lost: %+v", fc)
	}
	if fc.Journal.Type != "sqlite" || fc.Journal.Path == "" {
		t.Fatalf("journal config lost: %+v", fc.Journal)
	}

	chunker := Find(fc.Services, ServiceChunker)
	if chunker == nil {
		t.Fatalf("chunker missing after merge")
	}
	if chunker.Interpreter != "/opt/py/bin/python3" {
		t.Fatalf("interpreter override lost: %q", chunker.Interpreter)
	}
	if chunker.StopGrace != 10*time.Second {
		t.Fatalf("stop_grace override lost: %v", chunker.StopGrace)
	}
	// Defaults not named in the override survive.
	if chunker.DefaultDocDir != "sample_doc" || !chunker.PromptDocDir {
		t.Fatalf("merge clobbered defaults: %+v", chunker)
	}
	// Global log dir propagates.
	if chunker.LogDir != "/var/log/chunksup" {
		t.Fatalf("global log dir not applied: %q", chunker.LogDir)
	}

	if Find(fc.Services, "extra") == nil {
		t.Fatalf("additional service not appended")
	}
	if Find(fc.Services, ServiceKBWriter) == nil {
		t.Fatalf("kbwriter lost in merge")
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml"), "."); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestGlobalEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "svc.env")
	if err := os.WriteFile(envFile, []byte("# comment\nA=file\nB=file\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	fc := FileConfig{
		EnvFiles: []string{envFile},
		Env:      []string{"B=toplevel"},
	}
	env, err := GlobalEnv(fc)
	if err != nil {
		t.Fatalf("global env: %v", err)
	}
	got := make(map[string]string)
	for _, kv := range env {
		k, v, _ := strings.Cut(kv, "=")
		got[k] = v
	}
	if got["A"] != "file" {
		t.Fatalf("env file value lost: %v", env)
	}
	if got["B"] != "toplevel" {
		t.Fatalf("top-level env must override file: %v", env)
	}
}

func TestGlobalEnvNilWhenUnconfigured(t *testing.T) {
	env, err := GlobalEnv(FileConfig{})
	if err != nil {
		t.Fatalf("global env: %v", err)
	}
	if env != nil {
		t.Fatalf("expected nil (inherit), got %v", env)
	}
}

func TestNames(t *testing.T) {
	names := Names(Defaults("."))
	if len(names) != 2 || names[0] != ServiceChunker || names[1] != ServiceKBWriter {
		t.Fatalf("unexpected names: %v", names)
	}
}
