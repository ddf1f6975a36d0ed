//go:build !windows

package process

import (
	"syscall"
)

// SendTerminationSignal asks the process to shut down gracefully
// (SIGTERM). ESRCH surfaces to the caller, which treats it as already
// stopped.
func SendTerminationSignal(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}

// ForceKill terminates the process immediately (SIGKILL).
func ForceKill(pid int) error {
	return syscall.Kill(pid, syscall.SIGKILL)
}

// IsNoSuchProcess reports whether a signal failed because the target
// process no longer exists.
func IsNoSuchProcess(err error) bool {
	return err == syscall.ESRCH
}
