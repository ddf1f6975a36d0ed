//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// setupDetachedAttributes puts the child in its own process group so
// that signals aimed at the controller's terminal do not reach it.
func setupDetachedAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}
