//go:build !windows

package daemon

import (
	"os"
	"syscall"
)

// syscallKillAndReap kills a direct child of the test binary and reaps
// it, so its PID leaves the process table instead of lingering as a
// zombie that liveness probes would still count as alive.
func syscallKillAndReap(pid int) error {
	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil && err != syscall.ESRCH {
		return err
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	_, err = process.Wait()
	return err
}
