package main

import (
	"context"
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/beardenhq/bearden/pkg/config"
	"github.com/beardenhq/bearden/pkg/dashboard"
	"github.com/beardenhq/bearden/pkg/logging"
)

type flagOptions struct {
	ConfigDir string `long:"config-dir" description:"directory holding config.yaml and config.local.yaml"`
	PIDFile   string `long:"pid-file" description:"file to record this process's PID in once listening"`
	LogLevel  string `long:"log-level" description:"log level override (debug|info|warn|error)"`
}

func main() {
	// Optional .env for local development; missing file is fine.
	godotenv.Load()

	var opts flagOptions
	parser := flags.NewParser(&opts, flags.HelpFlag)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		fmt.Printf("Command line flags parsing failed: %v\n", err)
		os.Exit(1)
	}

	if opts.ConfigDir == "" {
		opts.ConfigDir = os.Getenv("BEARDEN_CONFIG_DIR")
	}
	if opts.ConfigDir == "" {
		opts.ConfigDir = "."
	}
	if opts.PIDFile == "" {
		opts.PIDFile = os.Getenv("BEARDEN_PID_FILE")
	}

	logLevel := opts.LogLevel
	if logLevel == "" {
		// The configured level; startup keeps going on config errors
		// here, the server's own load will surface them properly.
		if cfg, err := config.Load(opts.ConfigDir); err == nil {
			logLevel = cfg.Logging.Level
		} else {
			logLevel = config.DefaultLogLevel
		}
	}

	zapLogger, err := logging.NewZapLogger(logLevel)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogger("module: dashboard , ", logging.LogFuncs{
		Debugf: zapLogger.Debugf,
		Infof:  zapLogger.Infof,
		Warnf:  zapLogger.Warnf,
		Errorf: zapLogger.Errorf,
	})

	server, err := dashboard.NewServer(dashboard.ServerOptions{
		ConfigDir:   opts.ConfigDir,
		PIDFilePath: opts.PIDFile,
	}, logger)
	if err != nil {
		logger.Errorf("Failed to create server: %v", err)
		os.Exit(1)
	}

	if err := server.Run(context.Background()); err != nil {
		logger.Errorf("Server failed: %v", err)
		os.Exit(1)
	}
}
