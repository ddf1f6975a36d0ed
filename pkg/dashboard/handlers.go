package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/beardenhq/bearden/pkg/config"
	"github.com/beardenhq/bearden/pkg/probe"
)

// indexData is the template context for the dashboard page.
type indexData struct {
	Services map[string]config.ServiceConfig
}

// indexHandler renders the service listing from a fresh configuration
// load. No probing happens on this route.
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	cfg, err := config.Load(s.options.ConfigDir)
	if err != nil {
		s.logger.Errorf("Config load failed: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "configuration unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, indexData{Services: cfg.Services}); err != nil {
		s.logger.Errorf("Template render failed: %v", err)
	}
}

// healthHandler probes one configured service and reports the result.
// 404 is reserved for unknown service ids; a known service always gets
// a 200 whether it is up or down.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	serviceID := mux.Vars(r)["service_id"]

	cfg, err := config.Load(s.options.ConfigDir)
	if err != nil {
		s.logger.Errorf("Config load failed: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "configuration unavailable")
		return
	}

	service, ok := cfg.Services[serviceID]
	if !ok {
		s.logger.Debugf("Unknown service requested, id: %s", serviceID)
		s.writeJSON(w, http.StatusNotFound, probe.HealthResult{
			Status: probe.StatusUnknown,
			Error:  "Service not found",
		})
		return
	}

	result := probe.Probe(service.URL)
	s.logger.Debugf("Probe finished, id: %s, status: %s", serviceID, result.Status)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Errorf("Response encoding failed: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
