// beardenctl manages the dashboard server as a background daemon.
//
// Usage:
//
//	beardenctl start   - Start the server as a daemon
//	beardenctl stop    - Stop the running server
//	beardenctl restart - Restart the server
//	beardenctl status  - Check if the server is running
//
// Exit codes: 0 on success (or a running status), 1 otherwise.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/beardenhq/bearden/pkg/daemon"
	"github.com/beardenhq/bearden/pkg/errors"
	"github.com/beardenhq/bearden/pkg/logging"
	"github.com/beardenhq/bearden/pkg/pidfile"
)

const serverBinaryName = "beardensrv"

type flagOptions struct {
	Args struct {
		Command string `positional-arg-name:"command" description:"start|stop|restart|status"`
	} `positional-args:"yes" required:"yes"`
}

func main() {
	os.Exit(run())
}

func run() int {
	// Optional .env next to the binary for local setups.
	godotenv.Load()

	var opts flagOptions
	parser := flags.NewParser(&opts, flags.HelpFlag)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		fmt.Printf("Command line flags parsing failed: %v\n", err)
		return 1
	}

	zapLogger, err := logging.NewZapLogger("info")
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		return 1
	}
	logger := logging.NewLogger("module: controller , ", logging.LogFuncs{
		Debugf: zapLogger.Debugf,
		Infof:  zapLogger.Infof,
		Warnf:  zapLogger.Warnf,
		Errorf: zapLogger.Errorf,
	})

	installDir, err := resolveInstallDir()
	if err != nil {
		logger.Errorf("Failed to resolve install directory: %v", err)
		return 1
	}

	pidPath := os.Getenv("BEARDEN_PID_FILE")
	if pidPath == "" {
		pidPath = filepath.Join(installDir, pidfile.DefaultFileName)
	}
	serverPath := os.Getenv("BEARDEN_SERVER")
	if serverPath == "" {
		serverPath = filepath.Join(installDir, serverBinaryName)
	}

	manager := pidfile.NewManager(pidPath, logger)
	controller := daemon.NewController(daemon.ControllerOptions{
		ServerPath: serverPath,
		ServerArgs: []string{
			"--config-dir", installDir,
			"--pid-file", pidPath,
		},
	}, manager, logger)

	switch opts.Args.Command {
	case "start":
		return runStart(controller)
	case "stop":
		return runStop(controller)
	case "restart":
		return runRestart(controller)
	case "status":
		return runStatus(controller)
	default:
		fmt.Printf("Unknown command: %s\n", opts.Args.Command)
		fmt.Println("Usage: beardenctl {start|stop|restart|status}")
		return 1
	}
}

// resolveInstallDir treats the controller binary's directory as the
// install directory: the server binary, PID file, and configuration
// all live next to it unless overridden by environment.
func resolveInstallDir() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(executable), nil
}

func runStart(controller *daemon.Controller) int {
	if err := controller.Start(); err != nil {
		if errors.IsConflictError(err) {
			state := controller.Status()
			fmt.Printf("Server already running (PID: %d)\n", state.PID)
		} else {
			fmt.Printf("Failed to start server: %v\n", err)
		}
		return 1
	}
	state := controller.Status()
	fmt.Printf("Server started (PID: %d)\n", state.PID)
	return 0
}

func runStop(controller *daemon.Controller) int {
	if err := controller.Stop(); err != nil {
		if errors.IsNotFoundError(err) {
			fmt.Println("Server is not running")
		} else {
			fmt.Printf("Failed to stop server: %v\n", err)
		}
		return 1
	}
	fmt.Println("Server stopped")
	return 0
}

func runRestart(controller *daemon.Controller) int {
	if err := controller.Restart(); err != nil {
		fmt.Printf("Failed to restart server: %v\n", err)
		return 1
	}
	state := controller.Status()
	fmt.Printf("Server started (PID: %d)\n", state.PID)
	return 0
}

func runStatus(controller *daemon.Controller) int {
	state := controller.Status()
	if state.Running {
		fmt.Printf("Server is running (PID: %d)\n", state.PID)
		return 0
	}
	fmt.Println("Server is not running")
	return 1
}
