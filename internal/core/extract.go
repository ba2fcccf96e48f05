package core

// extract.go implements per-document extraction.
//
// A document is opened through a DocumentOpener so the PDF library stays
// outside this package. For every page the extractor pulls the tables,
// drops each table's header row and any "Yield:" footer rows, aligns what
// is left with NormalizeTable and annotates the rows with the document's
// program, sheet/kit and page count.
//
// Failures are scoped as tightly as possible:
//   - a table that cannot be aligned is skipped with a TBL001 warning
//   - a page whose tables cannot be read is skipped with a TBL002 warning
//   - a document that cannot be opened or read fails as a *DocumentError

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/cyclesheet/internal/logging"
	"github.com/JonMunkholm/cyclesheet/internal/metrics"
)

// Warning codes produced during extraction.
const (
	CodeUnreadablePDF  = "PDF001"
	CodeNotPDF         = "PDF002"
	CodeNoTables       = "PDF003"
	CodeSchemaMismatch = "TBL001"
	CodePageTables     = "TBL002"
)

// yieldMarker flags summary/footer rows inside a cut-list table.
const yieldMarker = "yield:"

// DocumentOpener opens one PDF from memory.
type DocumentOpener interface {
	Open(ctx context.Context, name string, data []byte) (Document, error)
}

// Document is an opened PDF. Pages are numbered from 1.
type Document interface {
	PageCount() int
	// Text returns the text of all pages joined by newlines.
	Text() (string, error)
	// Tables returns the tables found on one page.
	Tables(page int) ([]RawTable, error)
	Close() error
}

// ErrNotPDF is returned for uploads that do not look like PDF files.
var ErrNotPDF = errors.New("not a pdf file")

// DocumentError is a failure that stopped one whole document.
type DocumentError struct {
	File string
	Err  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("unreadable pdf %s: %v", e.File, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// DocumentResult is the output of extracting one document.
type DocumentResult struct {
	Records  []PartRecord
	Warnings []Warning
	Report   DocumentReport
}

// Extractor turns PDF documents into annotated part records.
type Extractor struct {
	opener DocumentOpener
}

// NewExtractor creates an Extractor reading PDFs through opener.
func NewExtractor(opener DocumentOpener) *Extractor {
	return &Extractor{opener: opener}
}

// Extract processes one document. A returned error is always a
// *DocumentError; the result still carries the document's report.
// A document that yields no usable tables returns an empty result and a
// PDF003 warning, not an error.
func (e *Extractor) Extract(ctx context.Context, file SourceFile) (*DocumentResult, error) {
	timer := metrics.NewTimer()
	logger := logging.WithFields(ctx, "file", file.Name)

	res := &DocumentResult{
		Report: DocumentReport{
			File:    file.Name,
			Program: ProgramName(file.Name),
		},
	}

	fail := func(err error) (*DocumentResult, error) {
		docErr := &DocumentError{File: file.Name, Err: err}
		res.Report.Error = docErr.Error()
		res.Records = nil
		metrics.RecordDocument("failed", 0, timer.Duration())
		logger.Warn("document failed", "error", err)
		return res, docErr
	}

	doc, err := e.opener.Open(ctx, file.Name, file.Data)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			logger.Warn("close document", "error", cerr)
		}
	}()

	pageCount := doc.PageCount()
	res.Report.Pages = pageCount

	text, err := doc.Text()
	if err != nil {
		return fail(fmt.Errorf("read text: %w", err))
	}
	meta := ParseSheetKit(text)
	if meta.Sheet.Valid {
		res.Report.Sheet = &meta.Sheet.Value
	}
	if meta.Kit.Valid {
		res.Report.Kit = &meta.Kit.Value
	}

	for page := 1; page <= pageCount; page++ {
		tables, err := doc.Tables(page)
		if err != nil {
			res.warn(Warning{
				File:    file.Name,
				Page:    page,
				Code:    CodePageTables,
				Message: fmt.Sprintf("could not read tables: %v", err),
			})
			continue
		}

		for i, table := range tables {
			res.Report.TablesFound++

			body := tableBody(table)
			if len(body) == 0 {
				metrics.RecordTable(metrics.TableEmpty)
				continue
			}

			aligned, err := NormalizeTable(body)
			if err != nil {
				res.Report.TablesSkipped++
				metrics.RecordTable(metrics.TableSkipped)
				res.warn(Warning{
					File:    file.Name,
					Page:    page,
					Table:   i + 1,
					Code:    CodeSchemaMismatch,
					Message: err.Error(),
				})
				continue
			}

			res.Report.TablesUsed++
			metrics.RecordTable(metrics.TableUsed)
			for _, row := range aligned.Rows {
				res.Records = append(res.Records, PartRecord{
					PartRow:   row,
					Program:   res.Report.Program,
					Sheet:     meta.Sheet,
					Kit:       meta.Kit,
					PageCount: pageCount,
				})
			}
			logger.Debug("table aligned",
				"page", page,
				"table", i+1,
				"layout", aligned.Kind.String(),
				"rows", len(aligned.Rows),
			)
		}
	}

	res.Report.Records = len(res.Records)
	if len(res.Records) == 0 {
		res.warn(Warning{
			File:    file.Name,
			Code:    CodeNoTables,
			Message: "no usable part tables found",
		})
	}

	for _, w := range res.Warnings {
		logger.Warn(w.Message, "page", w.Page, "table", w.Table, "code", w.Code)
	}
	metrics.RecordDocument("ok", len(res.Records), timer.Duration())
	logger.Info("document extracted",
		"pages", pageCount,
		"tables_used", res.Report.TablesUsed,
		"tables_skipped", res.Report.TablesSkipped,
		"records", len(res.Records),
		"duration", timer.Duration().Round(time.Millisecond),
	)

	return res, nil
}

func (r *DocumentResult) warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// tableBody strips a table's header row and any "Yield:" rows. Returns nil
// when the table has no data rows left.
func tableBody(table RawTable) []RawRow {
	if len(table) < 2 {
		return nil
	}

	body := make([]RawRow, 0, len(table)-1)
	for _, row := range table[1:] {
		if !isYieldRow(row) {
			body = append(body, row)
		}
	}
	if len(body) == 0 {
		return nil
	}
	return body
}

func isYieldRow(row RawRow) bool {
	for _, c := range row {
		if c.Valid && strings.Contains(strings.ToLower(c.Text), yieldMarker) {
			return true
		}
	}
	return false
}
