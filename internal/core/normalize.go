package core

import "fmt"

// SchemaMismatchError is returned when a table, after empty and zero-only
// columns are dropped, has a column count no layout accepts.
type SchemaMismatchError struct {
	Observed int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: table has %d columns, expected 7 or 8", e.Observed)
}

// Alignment is a table successfully aligned to the standard columns.
type Alignment struct {
	Kind AlignmentKind
	Rows []PartRow
}

// NormalizeTable aligns body rows (header already removed) to the standard
// part columns.
//
// Rows with only null cells are dropped, then columns that are entirely
// null or entirely zero. The remaining column count selects a Layout; any
// count without one yields a *SchemaMismatchError.
func NormalizeTable(rows []RawRow) (Alignment, error) {
	rows = dropEmptyRows(rows)
	keep := keptColumns(rows)

	layout, ok := LayoutFor(len(keep))
	if !ok {
		return Alignment{}, &SchemaMismatchError{Observed: len(keep)}
	}

	out := make([]PartRow, len(rows))
	for i, row := range rows {
		for pos, src := range keep {
			out[i][layout.Columns[pos]] = cellAt(row, src)
		}
	}

	return Alignment{Kind: layout.Kind, Rows: out}, nil
}

// cellAt returns row[i], treating positions past a short row as null.
func cellAt(row RawRow, i int) Cell {
	if i < len(row) {
		return row[i]
	}
	return NullCell
}

func dropEmptyRows(rows []RawRow) []RawRow {
	out := make([]RawRow, 0, len(rows))
	for _, row := range rows {
		for _, c := range row {
			if c.Valid {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// keptColumns returns the source column positions that survive the
// null/zero filter, in order.
func keptColumns(rows []RawRow) []int {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	keep := make([]int, 0, width)
	for col := 0; col < width; col++ {
		if !isEmptyOrZeroColumn(rows, col) {
			keep = append(keep, col)
		}
	}
	return keep
}

// isEmptyOrZeroColumn reports whether every cell of a column is null, or
// every cell reads as zero with nulls counted as zero. A single cell that
// does not parse as a number keeps the column.
func isEmptyOrZeroColumn(rows []RawRow, col int) bool {
	for _, row := range rows {
		c := cellAt(row, col)
		if !c.Valid {
			continue
		}
		f, ok := parseFloat(c.Text)
		if !ok || f != 0 {
			return false
		}
	}
	return true
}
