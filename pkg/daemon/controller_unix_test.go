//go:build !windows

package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beardenhq/bearden/pkg/errors"
	"github.com/beardenhq/bearden/pkg/pidfile"
	"github.com/beardenhq/bearden/pkg/processstate"
)

// controllerMockLogger is a no-op Logger for tests
type controllerMockLogger struct{}

func (m *controllerMockLogger) Debugf(format string, args ...interface{}) {}
func (m *controllerMockLogger) Infof(format string, args ...interface{})  {}
func (m *controllerMockLogger) Warnf(format string, args ...interface{})  {}
func (m *controllerMockLogger) Errorf(format string, args ...interface{}) {}

func newTestController(t *testing.T, options ControllerOptions) (*Controller, *pidfile.Manager) {
	t.Helper()
	logger := &controllerMockLogger{}
	manager := pidfile.NewManager(filepath.Join(t.TempDir(), "bearden.pid"), logger)
	if options.StartupDelay == 0 {
		options.StartupDelay = 300 * time.Millisecond
	}
	if options.StopTimeout == 0 {
		options.StopTimeout = 3 * time.Second
	}
	if options.PollInterval == 0 {
		options.PollInterval = 100 * time.Millisecond
	}
	return NewController(options, manager, logger), manager
}

// spawnOrphan launches a long-lived process that is not a child of the
// test binary (double fork through sh), so that its death is observable
// through the process table rather than masked by an unreaped zombie.
// The process writes its own PID to pidPath, like the real server does.
func spawnOrphan(t *testing.T, pidPath string, ignoreTerm bool) int {
	t.Helper()

	script := fmt.Sprintf("echo $$ > %s; exec sleep 60", pidPath)
	if ignoreTerm {
		script = fmt.Sprintf(`trap "" TERM; echo $$ > %s; while :; do sleep 1; done`, pidPath)
	}

	cmd := exec.Command("/bin/sh", "-c",
		fmt.Sprintf("/bin/sh -c '%s' > /dev/null 2>&1 &", script))
	require.NoError(t, cmd.Run())

	pid := waitForPIDFile(t, pidPath)
	t.Cleanup(func() {
		// Best effort in case the test fails before stopping it.
		exec.Command("kill", "-9", fmt.Sprint(pid)).Run()
	})
	return pid
}

func waitForPIDFile(t *testing.T, pidPath string) int {
	t.Helper()
	manager := pidfile.NewManager(pidPath, &controllerMockLogger{})
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if pid, err := manager.Read(); err == nil {
			return pid
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("PID file %s never appeared", pidPath)
	return 0
}

func waitForDeath(t *testing.T, pid int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if alive, _ := processstate.IsProcessRunning(pid); !alive {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("process %d still alive", pid)
}

// writeServerScript creates a stand-in server executable that writes
// its own PID file and then sleeps, mirroring the real server's
// write-PID-after-bind behavior.
func writeServerScript(t *testing.T, pidPath string) string {
	t.Helper()
	scriptPath := filepath.Join(t.TempDir(), "fake-server.sh")
	content := fmt.Sprintf("#!/bin/sh\necho $$ > %s\nexec sleep 60\n", pidPath)
	require.NoError(t, os.WriteFile(scriptPath, []byte(content), 0755))
	return scriptPath
}

func TestStatus_NoPIDFileIsStopped(t *testing.T) {
	controller, _ := newTestController(t, ControllerOptions{})

	state := controller.Status()

	assert.False(t, state.Running)
	assert.Equal(t, 0, state.PID)
}

func TestStatus_LiveProcessIsRunning(t *testing.T) {
	controller, manager := newTestController(t, ControllerOptions{})
	require.NoError(t, manager.Write(os.Getpid()))

	state := controller.Status()

	assert.True(t, state.Running)
	assert.Equal(t, os.Getpid(), state.PID)
	assert.True(t, manager.Exists())
}

func TestStatus_StalePIDFileIsCleanedUp(t *testing.T) {
	controller, manager := newTestController(t, ControllerOptions{})
	require.NoError(t, manager.Write(4194000))

	state := controller.Status()

	assert.False(t, state.Running)
	assert.False(t, manager.Exists(), "stale PID file should be deleted by the check itself")
}

func TestStatus_GarbagePIDFileIsCleanedUp(t *testing.T) {
	controller, manager := newTestController(t, ControllerOptions{})
	require.NoError(t, os.WriteFile(manager.Path(), []byte("garbage\n"), 0644))

	state := controller.Status()

	assert.False(t, state.Running)
	assert.False(t, manager.Exists())
}

func TestStart_Success(t *testing.T) {
	controller, manager := newTestController(t, ControllerOptions{})
	serverPath := writeServerScript(t, manager.Path())
	controller.options.ServerPath = serverPath

	err := controller.Start()
	require.NoError(t, err)

	state := controller.Status()
	assert.True(t, state.Running)
	assert.Greater(t, state.PID, 0)

	// Reap the direct child so later liveness probes see reality.
	require.NoError(t, syscallKillAndReap(state.PID))
	assert.NoError(t, manager.Remove())
}

func TestStart_AlreadyRunningIsConflict(t *testing.T) {
	controller, manager := newTestController(t, ControllerOptions{ServerPath: "/nonexistent"})
	require.NoError(t, manager.Write(os.Getpid()))

	err := controller.Start()

	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))

	// Existing process and PID file untouched.
	pid, readErr := manager.Read()
	require.NoError(t, readErr)
	assert.Equal(t, os.Getpid(), pid)
}

func TestStart_PIDNeverAppearsIsProcessError(t *testing.T) {
	controller, _ := newTestController(t, ControllerOptions{})
	scriptPath := filepath.Join(t.TempDir(), "noop.sh")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/bin/sh\nexit 0\n"), 0755))
	controller.options.ServerPath = scriptPath

	err := controller.Start()

	require.Error(t, err)
	assert.True(t, errors.IsProcessError(err))
}

func TestStart_SpawnFailurePropagates(t *testing.T) {
	controller, _ := newTestController(t, ControllerOptions{ServerPath: "/does/not/exist"})

	err := controller.Start()

	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))
}

func TestStop_NotRunningIsNotFound(t *testing.T) {
	controller, manager := newTestController(t, ControllerOptions{})

	err := controller.Stop()

	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.False(t, manager.Exists())
}

func TestStop_Graceful(t *testing.T) {
	controller, manager := newTestController(t, ControllerOptions{})
	pid := spawnOrphan(t, manager.Path(), false)

	err := controller.Stop()
	require.NoError(t, err)

	waitForDeath(t, pid)
	assert.False(t, manager.Exists())
}

func TestStop_EscalatesToForcedKill(t *testing.T) {
	controller, manager := newTestController(t, ControllerOptions{
		StopTimeout:  500 * time.Millisecond,
		PollInterval: 100 * time.Millisecond,
	})
	pid := spawnOrphan(t, manager.Path(), true)

	err := controller.Stop()
	require.NoError(t, err)

	waitForDeath(t, pid)
	assert.False(t, manager.Exists())
}

func TestRestart_WhenStoppedBehavesLikeStart(t *testing.T) {
	controller, manager := newTestController(t, ControllerOptions{})
	serverPath := writeServerScript(t, manager.Path())
	controller.options.ServerPath = serverPath

	err := controller.Restart()
	require.NoError(t, err)

	state := controller.Status()
	assert.True(t, state.Running)

	require.NoError(t, syscallKillAndReap(state.PID))
	assert.NoError(t, manager.Remove())
}
