//go:build !windows

package supervisor

import "syscall"

// terminate asks the process to exit (SIGTERM).
func terminate(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// kill forcibly ends the process (SIGKILL).
func kill(pid int) error {
	return syscall.Kill(pid, syscall.SIGKILL)
}
