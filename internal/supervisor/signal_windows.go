//go:build windows

package supervisor

import "os"

// terminate has no graceful signal on Windows; both paths end the process.
func terminate(pid int) error {
	return kill(pid)
}

func kill(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}
