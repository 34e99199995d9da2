package supervisor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// pidMeta is the optional second line of a PID file. Recording the process
// start time lets status tell a recycled PID from the original process.
type pidMeta struct {
	StartUnix int64 `json:"start_unix"`
}

// WritePIDFile records pid (and its start time, when known) at path,
// creating the parent directory if needed.
func WritePIDFile(path string, pid int, startUnix int64) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create pid dir %s: %w", dir, err)
		}
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d\n", pid)
	if startUnix > 0 {
		mb, _ := json.Marshal(pidMeta{StartUnix: startUnix})
		b.Write(mb)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, b.Bytes(), 0o600)
}

// ReadPIDFile reads a PID file written by WritePIDFile. It returns the PID
// and, when the meta line is present and parseable, the recorded start time
// (0 otherwise). Files containing only the PID line are accepted.
func ReadPIDFile(path string) (int, int64, error) {
	b, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return 0, 0, err
	}
	pidLine, rest, _ := strings.Cut(strings.ReplaceAll(string(b), "\r\n", "\n"), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(pidLine))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid pid in %s: %w", path, err)
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return pid, 0, nil
	}
	var m pidMeta
	if err := json.Unmarshal([]byte(rest), &m); err != nil {
		// Tolerate unknown trailing content; the PID is still usable.
		return pid, 0, nil
	}
	return pid, m.StartUnix, nil
}

// RemovePIDFile best-effort.
func RemovePIDFile(path string) {
	_ = os.Remove(path)
}
