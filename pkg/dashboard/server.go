package dashboard

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/beardenhq/bearden/pkg/config"
	"github.com/beardenhq/bearden/pkg/errors"
	"github.com/beardenhq/bearden/pkg/logging"
	"github.com/beardenhq/bearden/pkg/pidfile"
)

//go:embed templates/index.html
var templateFS embed.FS

// ServerOptions configures the dashboard server process.
type ServerOptions struct {
	// ConfigDir holds config.yaml and the optional config.local.yaml.
	ConfigDir string

	// PIDFilePath, when set, is written with this process's PID once
	// the listener is bound, and removed on shutdown. The daemon
	// controller tracks the server through it.
	PIDFilePath string
}

// Server is the dashboard web front: a service listing page and a
// per-service health probe endpoint. It holds no request state; every
// request reloads configuration.
type Server struct {
	options ServerOptions
	router  *mux.Router
	index   *template.Template
	logger  logging.Logger
}

// NewServer creates the dashboard server and sets up its routes.
func NewServer(options ServerOptions, logger logging.Logger) (*Server, error) {
	if options.ConfigDir == "" {
		options.ConfigDir = "."
	}

	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, errors.NewInternalError("failed to parse dashboard template", err)
	}

	server := &Server{
		options: options,
		router:  mux.NewRouter(),
		index:   index,
		logger:  logger,
	}
	server.routes()

	return server, nil
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.indexHandler).Methods("GET")
	s.router.HandleFunc("/health/{service_id}", s.healthHandler).Methods("GET")
	s.router.Use(s.loggingMiddleware)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run resolves the port from a fresh configuration load, binds the
// listener, records its own PID, and serves until ctx is cancelled or a
// termination signal arrives.
func (s *Server) Run(ctx context.Context) error {
	cfg, err := config.Load(s.options.ConfigDir)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewNetworkError("failed to bind listener", err).WithContext("addr", addr)
	}

	// The PID file is the controller's readiness signal: written only
	// after the listener is bound.
	var pidFile *pidfile.Manager
	if s.options.PIDFilePath != "" {
		pidFile = pidfile.NewManager(s.options.PIDFilePath, s.logger)
		if err := pidFile.Write(os.Getpid()); err != nil {
			listener.Close()
			return err
		}
	}

	httpServer := &http.Server{
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	s.logger.Infof("Dashboard listening, addr: %s, config dir: %s", addr, s.options.ConfigDir)

	select {
	case err := <-serveErr:
		if pidFile != nil {
			pidFile.Remove()
		}
		return errors.NewInternalError("server exited unexpectedly", err)
	case <-ctx.Done():
	}

	s.logger.Infof("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnf("Graceful shutdown failed: %v", err)
		httpServer.Close()
	}

	if pidFile != nil {
		if err := pidFile.Remove(); err != nil {
			s.logger.Warnf("Failed to remove PID file on shutdown: %v", err)
		}
	}

	return nil
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debugf("Request handled, method: %s, path: %s, duration: %v",
			r.Method, r.URL.Path, time.Since(start))
	})
}
