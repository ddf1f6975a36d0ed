package process

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/beardenhq/bearden/pkg/errors"
	"github.com/beardenhq/bearden/pkg/logging"
)

// SpawnConfig describes a process to launch detached from the caller.
type SpawnConfig struct {
	ExecutablePath   string
	Args             []string
	Environment      []string
	WorkingDirectory string

	// LogFilePath receives the child's combined stdout/stderr. Empty
	// discards the output.
	LogFilePath string
}

// Spawn launches the configured executable as a detached background
// process in its own process group and returns its PID. The caller does
// not wait on the child; its lifetime is tracked through the PID file it
// writes itself.
func Spawn(config SpawnConfig, logger logging.Logger) (int, error) {
	if config.ExecutablePath == "" {
		return 0, errors.NewValidationError("executable path cannot be empty", nil)
	}
	if _, err := os.Stat(config.ExecutablePath); err != nil {
		return 0, errors.NewIOError("executable does not exist", err).WithContext("executable_path", config.ExecutablePath)
	}

	workDir := config.WorkingDirectory
	if workDir == "" {
		absPath, err := filepath.Abs(config.ExecutablePath)
		if err != nil {
			return 0, errors.NewIOError("failed to get absolute path", err).WithContext("executable_path", config.ExecutablePath)
		}
		workDir = filepath.Dir(absPath)
	}

	env := os.Environ()
	env = append(env, config.Environment...)

	cmd := exec.Command(config.ExecutablePath, config.Args...)
	cmd.Dir = workDir
	cmd.Env = env

	if config.LogFilePath != "" {
		logFile, err := os.OpenFile(config.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, errors.NewIOError("failed to open process log file", err).WithContext("log_file", config.LogFilePath)
		}
		defer logFile.Close()
		cmd.Stdout = logFile
		cmd.Stderr = logFile
	}

	// Platform-specific detachment is handled in spawn_unix.go / spawn_windows.go
	setupDetachedAttributes(cmd)

	logger.Debugf("Spawning process, executable: %s, args: %v, working directory: %s",
		config.ExecutablePath, config.Args, workDir)

	if err := cmd.Start(); err != nil {
		return 0, errors.NewProcessError("failed to start the process", err).WithContext("executable_path", config.ExecutablePath)
	}

	pid := cmd.Process.Pid
	logger.Infof("Spawned process, executable: %s, PID: %d", config.ExecutablePath, pid)

	// Release so the child outlives the controller without becoming a
	// waited-on zombie of ours.
	if err := cmd.Process.Release(); err != nil {
		logger.Warnf("Failed to release process handle, PID: %d, error: %v", pid, err)
	}

	return pid, nil
}
