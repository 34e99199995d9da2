//go:build windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// configureDetached detaches the child from the supervisor's console so it
// survives supervisor exit.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | 0x00000008, // DETACHED_PROCESS
	}
}
