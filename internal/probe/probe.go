// Package probe answers whether a supervised process is still alive. The
// recorded start time guards against PID reuse: a recycled PID with a
// different start time is reported dead.
package probe

// Probe decides whether pid refers to the original process. startUnix is the
// start time recorded at launch, 0 when unknown. Implementations must be
// safe for concurrent use.
type Probe interface {
	Alive(pid int, startUnix int64) (bool, error)
}

// Table probes the OS process table.
type Table struct{}

func (Table) Alive(pid int, startUnix int64) (bool, error) {
	if pid <= 0 {
		return false, nil
	}
	if startUnix > 0 {
		if cur := StartUnix(pid); cur > 0 && cur != startUnix {
			// PID reused by another process.
			return false, nil
		}
	}
	return pidAlive(pid), nil
}
