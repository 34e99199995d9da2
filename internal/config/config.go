// Package config loads the supervisor configuration: the two built-in
// pipeline services plus optional overrides from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/journal"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/logger"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/supervisor"
)

// Built-in service names.
const (
	ServiceChunker  = "chunker"
	ServiceKBWriter = "kbwriter"
)

// FileConfig represents the top-level TOML structure.
type FileConfig struct {
	Env      []string          `toml:"env" mapstructure:"env"`
	EnvFiles []string          `toml:"env_files" mapstructure:"env_files"`
	UseOSEnv bool              `toml:"use_os_env" mapstructure:"use_os_env"`
	Log      logger.Config     `toml:"log" mapstructure:"log"`
	Journal  journal.Config    `toml:"journal" mapstructure:"journal"`
	Services []supervisor.Spec `toml:"services" mapstructure:"services"`
}

// Defaults returns the built-in specs for the two pipeline services rooted
// at baseDir: PID files next to the scripts, logs under baseDir/logs.
func Defaults(baseDir string) []supervisor.Spec {
	logDir := filepath.Join(baseDir, "logs")
	return []supervisor.Spec{
		{
			Name:          ServiceChunker,
			Script:        filepath.Join(baseDir, "gen_chunk_graph.py"),
			PIDFile:       filepath.Join(baseDir, ServiceChunker+".pid"),
			LogDir:        logDir,
			DocDirFlag:    "--doc_dir",
			DefaultDocDir: "sample_doc",
			PromptDocDir:  true,
		},
		{
			Name:    ServiceKBWriter,
			Script:  filepath.Join(baseDir, "Write_k_b_from_folder.py"),
			PIDFile: filepath.Join(baseDir, ServiceKBWriter+".pid"),
			LogDir:  logDir,
		},
	}
}

// Load reads the TOML config at path and merges it over the built-in
// defaults for baseDir. An empty path returns the defaults unchanged.
func Load(path, baseDir string) (FileConfig, error) {
	fc := FileConfig{Services: Defaults(baseDir)}
	if path == "" {
		return fc, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return fc, fmt.Errorf("read config %s: %w", path, err)
	}
	var in FileConfig
	if err := v.Unmarshal(&in); err != nil {
		return fc, fmt.Errorf("parse config %s: %w", path, err)
	}

	fc.Env = in.Env
	fc.EnvFiles = in.EnvFiles
	fc.UseOSEnv = in.UseOSEnv
	fc.Log = in.Log
	fc.Journal = in.Journal
	fc.Services = mergeServices(fc.Services, in.Services)

	// A global log dir applies to services that did not set their own.
	if fc.Log.Dir != "" {
		for i := range fc.Services {
			if fc.Services[i].LogDir == "" || isDefaultLogDir(fc.Services[i].LogDir, baseDir) {
				fc.Services[i].LogDir = fc.Log.Dir
			}
		}
	}
	return fc, nil
}

func isDefaultLogDir(dir, baseDir string) bool {
	return dir == filepath.Join(baseDir, "logs")
}

// mergeServices overlays configured specs on the defaults by name; unknown
// names are appended as additional services.
func mergeServices(defaults, overrides []supervisor.Spec) []supervisor.Spec {
	out := append([]supervisor.Spec(nil), defaults...)
	for _, o := range overrides {
		idx := -1
		for i := range out {
			if out[i].Name == o.Name {
				idx = i
				break
			}
		}
		if idx < 0 {
			out = append(out, o)
			continue
		}
		out[idx] = overlaySpec(out[idx], o)
	}
	return out
}

// overlaySpec applies every non-zero field of o over base.
func overlaySpec(base, o supervisor.Spec) supervisor.Spec {
	if o.Script != "" {
		base.Script = o.Script
	}
	if o.Interpreter != "" {
		base.Interpreter = o.Interpreter
	}
	if len(o.Args) > 0 {
		base.Args = o.Args
	}
	if o.WorkDir != "" {
		base.WorkDir = o.WorkDir
	}
	if len(o.Env) > 0 {
		base.Env = o.Env
	}
	if o.PIDFile != "" {
		base.PIDFile = o.PIDFile
	}
	if o.LogDir != "" {
		base.LogDir = o.LogDir
	}
	if o.DocDirFlag != "" {
		base.DocDirFlag = o.DocDirFlag
	}
	if o.DefaultDocDir != "" {
		base.DefaultDocDir = o.DefaultDocDir
	}
	if o.PromptDocDir {
		base.PromptDocDir = true
	}
	if o.StopGrace > 0 {
		base.StopGrace = o.StopGrace
	}
	if o.RestartDelay > 0 {
		base.RestartDelay = o.RestartDelay
	}
	return base
}

// Find returns the spec named name, or nil.
func Find(specs []supervisor.Spec, name string) *supervisor.Spec {
	for i := range specs {
		if specs[i].Name == name {
			return &specs[i]
		}
	}
	return nil
}

// Names returns the configured service names in stable order.
func Names(specs []supervisor.Spec) []string {
	out := make([]string, 0, len(specs))
	for i := range specs {
		out = append(out, specs[i].Name)
	}
	sort.Strings(out)
	return out
}

// GlobalEnv merges the environment for launched services. Precedence: OS env
// (when enabled) provides the base, then env file contents, then the
// top-level env list overrides last. nil means "inherit as-is".
func GlobalEnv(fc FileConfig) ([]string, error) {
	if !fc.UseOSEnv && len(fc.EnvFiles) == 0 && len(fc.Env) == 0 {
		return nil, nil
	}
	m := make(map[string]string)
	if fc.UseOSEnv {
		for _, kv := range os.Environ() {
			if i := strings.IndexByte(kv, '='); i >= 0 {
				m[kv[:i]] = kv[i+1:]
			}
		}
	}
	for _, p := range fc.EnvFiles {
		pairs, err := loadEnvFile(p)
		if err != nil {
			return nil, err
		}
		for k, v := range pairs {
			m[k] = v
		}
	}
	for _, kv := range fc.Env {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			m[kv[:i]] = kv[i+1:]
		}
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out, nil
}

// loadEnvFile parses KEY=VALUE lines; blank lines and # comments are ignored.
func loadEnvFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	out := make(map[string]string)
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '='); i > 0 {
			out[strings.TrimSpace(line[:i])] = strings.TrimSpace(line[i+1:])
		}
	}
	return out, nil
}
