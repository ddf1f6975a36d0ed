package pidfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beardenhq/bearden/pkg/errors"
	"github.com/beardenhq/bearden/pkg/logging"
)

// DefaultFileName is the PID file used when no explicit path is given;
// it is resolved relative to the install directory by the callers.
const DefaultFileName = "bearden.pid"

// Manager reads and writes the single PID file that coordinates the
// daemon controller with the managed server process.
type Manager struct {
	path   string
	logger logging.Logger
}

// NewManager creates a manager for the PID file at path.
func NewManager(path string, logger logging.Logger) *Manager {
	return &Manager{
		path:   path,
		logger: logger,
	}
}

// Path returns the location of the PID file.
func (m *Manager) Path() string {
	return m.path
}

// Exists reports whether the PID file is present on disk.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Write records pid in the PID file, creating the parent directory if
// needed.
func (m *Manager) Write(pid int) error {
	m.logger.Debugf("Writing PID file, pid: %d, path: %s", pid, m.path)

	if err := validateDirectory(m.path); err != nil {
		m.logger.Errorf("PID file directory validation failed, path: %s, error: %v", m.path, err)
		return err
	}

	content := fmt.Sprintf("%d\n", pid)
	if err := os.WriteFile(m.path, []byte(content), 0644); err != nil {
		m.logger.Errorf("Failed to write PID file, pid: %d, path: %s, error: %v", pid, m.path, err)
		return errors.NewIOError("failed to write PID file", err).WithContext("pid_file", m.path).WithContext("pid", pid)
	}

	m.logger.Infof("PID file written, pid: %d, path: %s", pid, m.path)
	return nil
}

// Read parses the recorded process identifier. A missing file returns a
// NotFound error; unreadable or non-numeric content returns IO or
// Validation errors respectively.
func (m *Manager) Read() (int, error) {
	content, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errors.NewNotFoundError("PID file does not exist", err).WithContext("pid_file", m.path)
		}
		return 0, errors.NewIOError("failed to read PID file", err).WithContext("pid_file", m.path)
	}

	pidStr := strings.TrimSpace(string(content))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return 0, errors.NewValidationError("invalid PID in PID file", err).WithContext("pid_file", m.path).WithContext("content", pidStr)
	}

	return pid, nil
}

// Remove deletes the PID file. A file that is already gone is not an
// error: every caller treats a missing file as "stopped".
func (m *Manager) Remove() error {
	err := os.Remove(m.path)
	if err != nil && !os.IsNotExist(err) {
		m.logger.Errorf("Failed to remove PID file, path: %s, error: %v", m.path, err)
		return errors.NewIOError("failed to remove PID file", err).WithContext("pid_file", m.path)
	}
	m.logger.Debugf("PID file removed, path: %s", m.path)
	return nil
}

// validateDirectory ensures the PID file's parent directory exists and
// is writable, creating it when absent.
func validateDirectory(pidFilePath string) error {
	dir := filepath.Dir(pidFilePath)

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return errors.NewIOError("failed to create PID file directory", err).WithContext("directory", dir)
			}
		} else {
			return errors.NewIOError("failed to access PID file directory", err).WithContext("directory", dir)
		}
	} else if !info.IsDir() {
		return errors.NewValidationError("PID file path is not a directory", nil).WithContext("path", dir)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return errors.NewPermissionError("PID file directory is not writable", err).WithContext("directory", dir)
	}
	file.Close()
	os.Remove(testFile)

	return nil
}
