// Package templates holds the HTML components of the web UI. The
// components are written in .templ files; run `templ generate` after
// editing them.
package templates

import (
	"fmt"
	"strconv"

	"github.com/JonMunkholm/cyclesheet/internal/core"
	"github.com/a-h/templ"
)

// DashboardData is rendered by Dashboard.
type DashboardData struct {
	MaxFiles    int
	MaxFileSize int64
	Rules       []core.CountingRule
}

// SummaryData is rendered by SummaryPage.
type SummaryData struct {
	Result *core.BatchResult
	Rules  []core.CountingRule
	// Empty is set when the batch produced no valid data.
	Empty bool
}

// summaryCells returns one summary row in column order.
func summaryCells(s core.ProgramSummary) []string {
	return []string{
		s.Status,
		s.Program,
		s.CycleTime,
		strconv.Itoa(s.DifferentParts),
		strconv.Itoa(s.TotalParts),
		strconv.FormatFloat(s.FramesPerKit, 'f', -1, 64),
		strconv.Itoa(s.NumberOfTables),
		s.Date,
	}
}

func documentStats(d core.DocumentReport) string {
	return fmt.Sprintf(": %d pages, %d tables used, %d skipped, %d rows",
		d.Pages, d.TablesUsed, d.TablesSkipped, d.Records)
}

// batchURL links to a cached batch download.
func batchURL(id, ext string) templ.SafeURL {
	return templ.URL("/batches/" + id + "/summary." + ext)
}

func megabytes(n int64) int64 {
	return n / (1024 * 1024)
}
