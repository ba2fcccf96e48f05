package web

import (
	"net/http"

	"github.com/JonMunkholm/cyclesheet/internal/core"
	"github.com/JonMunkholm/cyclesheet/internal/web/templates"
)

// handleDashboard renders the upload page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Dashboard(templates.DashboardData{
		MaxFiles:    s.cfg.Upload.MaxFiles,
		MaxFileSize: s.cfg.Upload.MaxFileSize,
		Rules:       core.CountingRules(),
	}).Render(r.Context(), w)
}

// handleRules returns the part counting rules.
func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, core.CountingRules())
}

// healthResponse is the body of /healthz.
type healthResponse struct {
	Status  string                  `json:"status"`
	Batches core.BatchLimiterStatus `json:"batches"`
}

// handleHealth reports liveness and batch slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.service.LimiterStatus()

	resp := healthResponse{Status: "ok", Batches: status}
	if status.Available == 0 {
		resp.Status = "busy"
	}
	writeJSON(w, r, http.StatusOK, resp)
}
