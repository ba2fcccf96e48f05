// Package core turns CNC router cut-list PDFs into per-program summaries.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"strconv"
	"time"
)

// Cell is one table cell as extracted from a PDF. Valid is false when the
// cell is null (no value at all), which is distinct from an empty string.
type Cell struct {
	Text  string
	Valid bool
}

// TextCell returns a non-null cell holding s.
func TextCell(s string) Cell {
	return Cell{Text: s, Valid: true}
}

// NullCell is the null cell value.
var NullCell = Cell{}

// RawRow is a positional row with no fixed schema.
type RawRow []Cell

// RawTable is a 2D grid as produced by table extraction. The first row is
// the table's own header row.
type RawTable []RawRow

// TextRow builds a RawRow from plain strings. Tests and fakes use it.
func TextRow(values ...string) RawRow {
	row := make(RawRow, len(values))
	for i, v := range values {
		row[i] = TextCell(v)
	}
	return row
}

// Standard part columns, in schema order.
const (
	ColPartID = iota
	ColPartName
	ColCartLoading
	ColQtyReq
	ColQtyNested
	ColPartDescription
	ColProductionInstructions
	ColMaterial
	numPartColumns
)

// StandardColumns are the field names of a normalized part row, indexed by
// the Col* constants.
var StandardColumns = [numPartColumns]string{
	"Part ID",
	"Part Name",
	"Cart Loading",
	"Qty Req",
	"Qty Nested",
	"Part Description",
	"Production Instructions",
	"Material",
}

// PartRow is one normalized table row in standard column order.
type PartRow [numPartColumns]Cell

// Number is a nullable float. Valid is false when the value is unset.
type Number struct {
	Value float64
	Valid bool
}

// Or returns the value, or def when the number is unset.
func (n Number) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Value
}

// PartRecord is a normalized part row annotated with document metadata.
type PartRecord struct {
	PartRow

	Program   string
	Sheet     Number
	Kit       Number
	PageCount int
}

// PartName returns the record's Part Name cell.
func (r PartRecord) PartName() Cell { return r.PartRow[ColPartName] }

// Description returns the record's Part Description cell.
func (r PartRecord) Description() Cell { return r.PartRow[ColPartDescription] }

// SummaryColumns are the export headers of a ProgramSummary, in order.
var SummaryColumns = []string{
	"Status",
	"Program",
	"Cycle Time",
	"Different Parts",
	"Total # of parts",
	"Frames/kit",
	"Number of Tables",
	"Date cycle time was done",
}

// DateLayout is the format of ProgramSummary.Date.
const DateLayout = "01/02/2006"

// ProgramSummary is one output row per distinct program. Status and
// CycleTime are left blank for the user to fill in.
type ProgramSummary struct {
	Status         string  `json:"status"`
	Program        string  `json:"program"`
	CycleTime      string  `json:"cycle_time"`
	DifferentParts int     `json:"different_parts"`
	TotalParts     int     `json:"total_parts"`
	FramesPerKit   float64 `json:"frames_per_kit"`
	NumberOfTables int     `json:"number_of_tables"`
	Date           string  `json:"date"`
}

// Values returns the summary as export cells in SummaryColumns order.
func (s ProgramSummary) Values() []any {
	return []any{
		s.Status,
		s.Program,
		s.CycleTime,
		s.DifferentParts,
		s.TotalParts,
		s.FramesPerKit,
		s.NumberOfTables,
		s.Date,
	}
}

// SourceFile is one uploaded PDF. Size, when set, is the declared upload
// size; callers may leave Data unread for files already known to be too
// large.
type SourceFile struct {
	Name string
	Data []byte
	Size int64
}

// Len returns the file's size in bytes.
func (f SourceFile) Len() int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Data))
}

// Warning is a non-fatal problem scoped to a file, page or table.
// Page and Table are 1-based; zero means not applicable.
type Warning struct {
	File    string `json:"file"`
	Page    int    `json:"page,omitempty"`
	Table   int    `json:"table,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	loc := w.File
	if w.Page > 0 {
		loc += " page " + strconv.Itoa(w.Page)
	}
	if w.Table > 0 {
		loc += " table " + strconv.Itoa(w.Table)
	}
	return loc + ": " + w.Message + " (Code: " + w.Code + ")"
}

// DocumentReport describes what happened to one input document.
type DocumentReport struct {
	File          string   `json:"file"`
	Program       string   `json:"program"`
	Pages         int      `json:"pages"`
	TablesFound   int      `json:"tables_found"`
	TablesUsed    int      `json:"tables_used"`
	TablesSkipped int      `json:"tables_skipped"`
	Records       int      `json:"records"`
	Sheet         *float64 `json:"sheet,omitempty"`
	Kit           *float64 `json:"kit,omitempty"`
	Error         string   `json:"error,omitempty"`
}

// OK reports whether the document produced at least one record.
func (d DocumentReport) OK() bool {
	return d.Error == "" && d.Records > 0
}

// BatchResult is the outcome of processing one batch of PDFs.
type BatchResult struct {
	ID        string           `json:"batch_id"`
	Summaries []ProgramSummary `json:"summaries"`
	Warnings  []Warning        `json:"warnings"`
	Documents []DocumentReport `json:"documents"`
	Records   int              `json:"records"`
	Duration  time.Duration    `json:"-"`
}
