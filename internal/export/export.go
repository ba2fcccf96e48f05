// Package export writes program summaries as spreadsheet files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/JonMunkholm/cyclesheet/internal/core"
	"github.com/xuri/excelize/v2"
)

// Content types of the exported files.
const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv"
)

// DefaultSheetName is used when WriteXLSX gets an empty sheet name.
const DefaultSheetName = "Summary"

// WriteXLSX writes rows as a single-sheet workbook: a header row with
// core.SummaryColumns followed by one row per summary. Counts are numeric
// cells, the date is text and blank fields stay empty.
func WriteXLSX(w io.Writer, sheet string, rows []core.ProgramSummary) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]any, len(core.SummaryColumns))
	for i, h := range core.SummaryColumns {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, s := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := blankEmpty(s.Values())
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// blankEmpty replaces empty strings with nil so the cells stay empty.
func blankEmpty(values []any) []any {
	for i, v := range values {
		if s, ok := v.(string); ok && s == "" {
			values[i] = nil
		}
	}
	return values
}

// WriteCSV writes rows as CSV with a header line.
func WriteCSV(w io.Writer, rows []core.ProgramSummary) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(core.SummaryColumns); err != nil {
		return err
	}
	for _, s := range rows {
		record := []string{
			s.Status,
			s.Program,
			s.CycleTime,
			strconv.Itoa(s.DifferentParts),
			strconv.Itoa(s.TotalParts),
			strconv.FormatFloat(s.FramesPerKit, 'f', -1, 64),
			strconv.Itoa(s.NumberOfTables),
			s.Date,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
