package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/cyclesheet/internal/core"
	"github.com/JonMunkholm/cyclesheet/internal/export"
	"github.com/go-chi/chi/v5"
)

var errBatchNotFound = errors.New("batch not found or expired")

// handleBatchXLSX re-downloads a recent batch as a workbook.
func (s *Server) handleBatchXLSX(w http.ResponseWriter, r *http.Request) {
	res, ok := s.cachedBatch(w, r)
	if !ok {
		return
	}
	s.writeXLSX(w, r, res)
}

// handleBatchCSV re-downloads a recent batch as CSV.
func (s *Server) handleBatchCSV(w http.ResponseWriter, r *http.Request) {
	res, ok := s.cachedBatch(w, r)
	if !ok {
		return
	}
	s.writeCSV(w, r, res)
}

func (s *Server) cachedBatch(w http.ResponseWriter, r *http.Request) (*core.BatchResult, bool) {
	batchID := chi.URLParam(r, "batchID")
	res, ok := s.results.get(batchID)
	if !ok {
		s.respondErrorStatus(w, r, fmt.Errorf("%w: %s", errBatchNotFound, batchID), http.StatusNotFound)
		return nil, false
	}
	return res, true
}

// writeXLSX buffers the workbook so a write failure can still be reported.
func (s *Server) writeXLSX(w http.ResponseWriter, r *http.Request, res *core.BatchResult) {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, s.cfg.Export.SheetName, res.Summaries); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, s.cfg.Export.FileName))
	w.Header().Set("X-Batch-ID", res.ID)
	w.Write(buf.Bytes())
}

func (s *Server) writeCSV(w http.ResponseWriter, r *http.Request, res *core.BatchResult) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, res.Summaries); err != nil {
		s.respondErrorStatus(w, r, err, http.StatusInternalServerError)
		return
	}

	filename := strings.TrimSuffix(s.cfg.Export.FileName, ".xlsx") + ".csv"
	w.Header().Set("Content-Type", export.ContentTypeCSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("X-Batch-ID", res.ID)
	w.Write(buf.Bytes())
}
