package web

import (
	"net/http"

	"github.com/JonMunkholm/cyclesheet/internal/core"
	"github.com/JonMunkholm/cyclesheet/internal/web/templates"
)

// noDataResponse is the 422 body of /api/summary: the error plus what was
// learned about each file.
type noDataResponse struct {
	ErrorResponse
	BatchID   string                `json:"batch_id"`
	Warnings  []core.Warning        `json:"warnings"`
	Documents []core.DocumentReport `json:"documents"`
}

// handleSummaryPage processes an uploaded batch and renders the result page.
func (s *Server) handleSummaryPage(w http.ResponseWriter, r *http.Request) {
	res, err := s.runBatch(w, r)
	if err != nil && !(core.IsNoValidData(err) && res != nil) {
		s.respondError(w, r, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.SummaryPage(templates.SummaryData{
		Result: res,
		Rules:  core.CountingRules(),
		Empty:  err != nil,
	}).Render(r.Context(), w)
}

// handleSummaryJSON processes an uploaded batch and returns the result as JSON.
func (s *Server) handleSummaryJSON(w http.ResponseWriter, r *http.Request) {
	res, err := s.runBatch(w, r)
	if err != nil {
		if core.IsNoValidData(err) && res != nil {
			msg := core.MapError(err)
			writeJSON(w, r, http.StatusUnprocessableEntity, noDataResponse{
				ErrorResponse: ErrorResponse{
					Error:   msg.Message,
					Message: msg.Message,
					Action:  msg.Action,
					Code:    msg.Code,
				},
				BatchID:   res.ID,
				Warnings:  res.Warnings,
				Documents: res.Documents,
			})
			return
		}
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, res)
}

// handleSummaryXLSX processes an uploaded batch and returns the workbook.
func (s *Server) handleSummaryXLSX(w http.ResponseWriter, r *http.Request) {
	res, err := s.runBatch(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeXLSX(w, r, res)
}

// handleSummaryCSV processes an uploaded batch and returns the summary as CSV.
func (s *Server) handleSummaryCSV(w http.ResponseWriter, r *http.Request) {
	res, err := s.runBatch(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeCSV(w, r, res)
}
