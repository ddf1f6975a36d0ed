//go:build windows

package process

import (
	"os"
)

// SendTerminationSignal terminates the process. Windows has no SIGTERM
// equivalent for a detached process, so graceful and forced paths are
// the same Kill.
func SendTerminationSignal(pid int) error {
	return kill(pid)
}

// ForceKill terminates the process immediately.
func ForceKill(pid int) error {
	return kill(pid)
}

func kill(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Kill()
}

// IsNoSuchProcess reports whether a signal failed because the target
// process no longer exists.
func IsNoSuchProcess(err error) bool {
	return os.IsNotExist(err)
}
