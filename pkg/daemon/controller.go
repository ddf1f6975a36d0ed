package daemon

import (
	"strings"
	"time"

	"github.com/beardenhq/bearden/pkg/errors"
	"github.com/beardenhq/bearden/pkg/logging"
	"github.com/beardenhq/bearden/pkg/pidfile"
	"github.com/beardenhq/bearden/pkg/process"
	"github.com/beardenhq/bearden/pkg/processstate"
)

const (
	// DefaultStartupDelay is how long start waits before checking that
	// the spawned server wrote its PID file.
	DefaultStartupDelay = 500 * time.Millisecond

	// DefaultStopTimeout bounds the graceful-termination wait before
	// escalating to a forced kill.
	DefaultStopTimeout = 30 * time.Second

	// DefaultPollInterval is the liveness poll resolution during stop.
	DefaultPollInterval = 1 * time.Second
)

// ControllerOptions configures a Controller. The timing fields exist so
// tests do not block on the 30-second stop ceiling; the CLI always runs
// with the defaults.
type ControllerOptions struct {
	// ServerPath is the server executable spawned by start.
	ServerPath string

	// ServerArgs are passed to the server verbatim.
	ServerArgs []string

	// LogFilePath receives the server's output. Empty derives a .log
	// file next to the PID file.
	LogFilePath string

	StartupDelay time.Duration
	StopTimeout  time.Duration
	PollInterval time.Duration
}

// Controller manages a single background server instance through its
// PID file: start, stop, restart, status.
type Controller struct {
	options ControllerOptions
	pidFile *pidfile.Manager
	logger  logging.Logger
}

// NewController creates a controller over the given PID file.
func NewController(options ControllerOptions, pidFile *pidfile.Manager, logger logging.Logger) *Controller {
	if options.StartupDelay == 0 {
		options.StartupDelay = DefaultStartupDelay
	}
	if options.StopTimeout == 0 {
		options.StopTimeout = DefaultStopTimeout
	}
	if options.PollInterval == 0 {
		options.PollInterval = DefaultPollInterval
	}
	if options.LogFilePath == "" {
		options.LogFilePath = strings.TrimSuffix(pidFile.Path(), ".pid") + ".log"
	}
	return &Controller{
		options: options,
		pidFile: pidFile,
		logger:  logger,
	}
}

// Inspect derives the current state from the PID file and a liveness
// probe. A stale or unreadable PID file is deleted on discovery, so a
// status check can mutate on-disk state.
func (c *Controller) Inspect() State {
	pid, err := c.pidFile.Read()
	if err != nil {
		if !errors.IsNotFoundError(err) {
			c.logger.Warnf("Removing unreadable PID file, path: %s, error: %v", c.pidFile.Path(), err)
			c.pidFile.Remove()
		}
		return State{}
	}

	alive, err := processstate.IsProcessRunning(pid)
	if err != nil {
		c.logger.Debugf("Liveness probe failed, pid: %d, error: %v", pid, err)
	}

	state := Classify(pid, alive)
	if !state.Running {
		c.logger.Infof("Removing stale PID file, pid: %d, path: %s", pid, c.pidFile.Path())
		c.pidFile.Remove()
	}
	return state
}

// Status reports the current state without further side effects beyond
// the stale cleanup Inspect performs.
func (c *Controller) Status() State {
	return c.Inspect()
}

// Start spawns the server as a detached background process. The server
// writes its own PID to the PID file once it is listening; Start waits
// briefly and re-checks. Conflict error if already running; Process
// error if the spawn succeeded but the PID never appeared.
func (c *Controller) Start() error {
	state := c.Inspect()
	if state.Running {
		return errors.NewConflictError("server already running", nil).WithContext("pid", state.PID)
	}

	spawnedPID, err := process.Spawn(process.SpawnConfig{
		ExecutablePath: c.options.ServerPath,
		Args:           c.options.ServerArgs,
		LogFilePath:    c.options.LogFilePath,
	}, c.logger)
	if err != nil {
		return err
	}

	time.Sleep(c.options.StartupDelay)

	state = c.Inspect()
	if !state.Running {
		return errors.NewProcessError("server started but PID file not found", nil).
			WithContext("spawned_pid", spawnedPID).
			WithContext("pid_file", c.pidFile.Path())
	}

	c.logger.Infof("Server started (PID: %d)", state.PID)
	return nil
}

// Stop terminates the running server: graceful signal first, then a
// liveness poll up to the stop timeout, then a forced kill. The PID
// file is removed on every exit path that ends with the server down.
// NotFound error when there is nothing to stop.
func (c *Controller) Stop() error {
	state := c.Inspect()
	if !state.Running {
		return errors.NewNotFoundError("server is not running", nil)
	}
	pid := state.PID

	if err := process.SendTerminationSignal(pid); err != nil {
		if process.IsNoSuchProcess(err) {
			// Died between the liveness probe and the signal.
			c.logger.Infof("Server was not running (PID: %d)", pid)
			c.pidFile.Remove()
			return nil
		}
		return errors.NewProcessError("failed to signal server", err).WithContext("pid", pid)
	}

	c.logger.Infof("Stopping server (PID: %d)...", pid)

	deadline := time.Now().Add(c.options.StopTimeout)
	for time.Now().Before(deadline) {
		time.Sleep(c.options.PollInterval)
		alive, _ := processstate.IsProcessRunning(pid)
		if !alive {
			c.pidFile.Remove()
			c.logger.Infof("Server stopped")
			return nil
		}
	}

	c.logger.Warnf("Server did not stop gracefully, forcing...")
	if err := process.ForceKill(pid); err != nil && !process.IsNoSuchProcess(err) {
		return errors.NewProcessError("failed to kill server", err).WithContext("pid", pid)
	}
	c.pidFile.Remove()
	c.logger.Infof("Server killed")
	return nil
}

// Restart stops the server if it is running, then starts it
// unconditionally. A failed stop is logged and start proceeds anyway.
func (c *Controller) Restart() error {
	if state := c.Inspect(); state.Running {
		if err := c.Stop(); err != nil && !errors.IsNotFoundError(err) {
			c.logger.Warnf("Stop before restart failed, starting anyway: %v", err)
		}
	}
	return c.Start()
}
