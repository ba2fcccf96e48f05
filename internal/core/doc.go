// Package core provides the business logic for CNC router cut-list processing.
//
// This package is the heart of the application, containing all domain logic
// independent of any UI, transport or PDF library. It can be used by web
// handlers, the CLI, or tests without modification.
//
// # Pipeline
//
// A batch of uploaded PDFs flows through four stages:
//
//  1. [Extractor] opens each document through a [DocumentOpener], reads the
//     "<n> Sheet(s) = <m> Kit(s)" line from the page text and pulls every
//     table from every page.
//  2. [NormalizeTable] aligns each table body to the eight standard part
//     columns. Tables without a "Cart Loading" column get a null one.
//  3. [ClassifyPart] weighs each row: relief cuts count 0, mirrored L/R
//     pairs 2 and everything else 1.
//  4. [Aggregate] groups rows by program (file name without extension) into
//     one [ProgramSummary] each.
//
// [Service.ProcessBatch] runs the whole pipeline for one batch, one document
// at a time in upload order.
//
// # Layouts
//
// Source tables are matched to the standard columns by their column count
// after empty and zero-only columns are dropped. Layouts are registered at
// init time using [RegisterLayout]:
//
//	core.RegisterLayout(core.Layout{
//	    Kind:    core.Aligned7ColumnWithDefault,
//	    Columns: []int{core.ColPartID, core.ColPartName, core.ColQtyReq, ...},
//	})
//
// # Error Handling
//
// Problems local to one table, page or document never fail a batch. They are
// returned as [Warning] values carrying a code, and a batch only fails with
// [ErrNoValidData] when nothing usable was extracted at all. Technical errors
// are mapped to user-friendly messages using [MapError]:
//
//   - PDF001-PDF003: Document errors (unreadable, not a PDF, no tables)
//   - TBL001-TBL002: Table errors (schema mismatch, unreadable page)
//   - BATCH001-BATCH002: Batch errors (no valid data, too many files)
//   - FILE001-FILE005, UPL002-UPL005, RATE001: Upload and request errors
package core
