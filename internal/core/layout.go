package core

import (
	"fmt"
	"sort"
	"sync"
)

// AlignmentKind tags which source layout a table was aligned from.
type AlignmentKind int

const (
	// Aligned8Column is a table carrying every standard column.
	Aligned8Column AlignmentKind = iota + 1
	// Aligned7ColumnWithDefault is a table without Cart Loading; the
	// column is filled with nulls.
	Aligned7ColumnWithDefault
)

func (k AlignmentKind) String() string {
	switch k {
	case Aligned8Column:
		return "8-column"
	case Aligned7ColumnWithDefault:
		return "7-column, Cart Loading defaulted"
	default:
		return fmt.Sprintf("AlignmentKind(%d)", int(k))
	}
}

// Layout maps the surviving columns of a source table, by position, onto
// the standard part columns.
type Layout struct {
	Kind AlignmentKind

	// Columns holds, for each source position, the Col* index it fills.
	// Standard columns not listed are null in the output.
	Columns []int
}

// Width is the number of source columns the layout accepts.
func (l Layout) Width() int {
	return len(l.Columns)
}

var (
	layouts   = make(map[int]Layout)
	layoutsMu sync.RWMutex
)

// RegisterLayout adds a layout keyed by its width.
// Panics if a layout with the same width is already registered.
func RegisterLayout(l Layout) {
	layoutsMu.Lock()
	defer layoutsMu.Unlock()

	if _, exists := layouts[l.Width()]; exists {
		panic(fmt.Sprintf("layout already registered for %d columns", l.Width()))
	}
	for _, col := range l.Columns {
		if col < 0 || col >= numPartColumns {
			panic(fmt.Sprintf("layout column index out of range: %d", col))
		}
	}

	layouts[l.Width()] = l
}

// LayoutFor returns the layout accepting n columns.
// Returns false if none is registered.
func LayoutFor(n int) (Layout, bool) {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()

	l, ok := layouts[n]
	return l, ok
}

// Layouts returns all registered layouts, widest first.
func Layouts() []Layout {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()

	result := make([]Layout, 0, len(layouts))
	for _, l := range layouts {
		result = append(result, l)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Width() > result[j].Width()
	})

	return result
}

func init() {
	RegisterLayout(Layout{
		Kind: Aligned8Column,
		Columns: []int{
			ColPartID, ColPartName, ColCartLoading, ColQtyReq,
			ColQtyNested, ColPartDescription, ColProductionInstructions, ColMaterial,
		},
	})
	RegisterLayout(Layout{
		Kind: Aligned7ColumnWithDefault,
		Columns: []int{
			ColPartID, ColPartName, ColQtyReq,
			ColQtyNested, ColPartDescription, ColProductionInstructions, ColMaterial,
		},
	})
}
