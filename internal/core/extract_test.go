package core

import (
	"context"
	"errors"
	"testing"
)

func TestExtract_ProgramA(t *testing.T) {
	opener := newFakeOpener()
	closed := false
	doc := programADocument()
	doc.closed = &closed
	opener.add("ProgramA.pdf", doc)

	res, err := NewExtractor(opener).Extract(context.Background(), SourceFile{Name: "ProgramA.pdf"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !closed {
		t.Error("document was not closed")
	}
	if len(res.Records) != 1 {
		t.Fatalf("records = %d, want 1 (yield row must be dropped)", len(res.Records))
	}

	rec := res.Records[0]
	if rec.Program != "ProgramA" {
		t.Errorf("Program = %q, want ProgramA", rec.Program)
	}
	if rec.Sheet != (Number{Value: 3, Valid: true}) || rec.Kit != (Number{Value: 1, Valid: true}) {
		t.Errorf("Sheet/Kit = %+v/%+v, want 3/1", rec.Sheet, rec.Kit)
	}
	if rec.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", rec.PageCount)
	}
	if rec.PartName() != TextCell("PartA") {
		t.Errorf("Part Name = %+v, want PartA", rec.PartName())
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %+v, want none", res.Warnings)
	}

	r := res.Report
	if r.TablesFound != 1 || r.TablesUsed != 1 || r.TablesSkipped != 0 || r.Records != 1 {
		t.Errorf("report = %+v", r)
	}
	if r.Kit == nil || *r.Kit != 1 {
		t.Errorf("report Kit = %v, want 1", r.Kit)
	}
}

func TestExtract_NoSheetKitLeavesMetadataUnset(t *testing.T) {
	opener := newFakeOpener()
	doc := programADocument()
	doc.text = "no metadata here"
	opener.add("p.pdf", doc)

	res, err := NewExtractor(opener).Extract(context.Background(), SourceFile{Name: "p.pdf"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Records[0].Sheet.Valid || res.Records[0].Kit.Valid {
		t.Errorf("Sheet/Kit should be unset: %+v", res.Records[0])
	}
	if res.Report.Sheet != nil || res.Report.Kit != nil {
		t.Errorf("report Sheet/Kit should be nil")
	}
}

func TestExtract_SkipsMismatchedTableAndContinues(t *testing.T) {
	good := programADocument().pages[0][0]
	bad := RawTable{
		TextRow("a", "b", "c"),
		TextRow("1", "2", "3"),
	}
	headerOnly := RawTable{TextRow("Part ID", "Part Name")}
	yieldOnly := RawTable{TextRow("h"), TextRow("Total YIELD: 80%")}

	opener := newFakeOpener()
	opener.add("mixed.pdf", &fakeDocument{
		text:  "2 Sheet(s) = 2 Kit(s)",
		pages: [][]RawTable{{bad, headerOnly}, {yieldOnly, good}},
	})

	res, err := NewExtractor(opener).Extract(context.Background(), SourceFile{Name: "mixed.pdf"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(res.Records) != 1 {
		t.Errorf("records = %d, want 1", len(res.Records))
	}
	if res.Records[0].PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", res.Records[0].PageCount)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %+v, want 1", res.Warnings)
	}

	w := res.Warnings[0]
	if w.Code != CodeSchemaMismatch || w.File != "mixed.pdf" || w.Page != 1 || w.Table != 1 {
		t.Errorf("warning = %+v", w)
	}
	if res.Report.TablesFound != 4 || res.Report.TablesUsed != 1 || res.Report.TablesSkipped != 1 {
		t.Errorf("report = %+v", res.Report)
	}
}

func TestExtract_PageErrorIsWarning(t *testing.T) {
	opener := newFakeOpener()
	doc := programADocument()
	doc.pages = append(doc.pages, nil)
	doc.pageErrs = map[int]error{2: errors.New("broken content stream")}
	opener.add("p.pdf", doc)

	res, err := NewExtractor(opener).Extract(context.Background(), SourceFile{Name: "p.pdf"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(res.Records) != 1 {
		t.Errorf("records = %d, want 1", len(res.Records))
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Code != CodePageTables || res.Warnings[0].Page != 2 {
		t.Errorf("warnings = %+v, want one TBL002 on page 2", res.Warnings)
	}
}

func TestExtract_NoUsableTables(t *testing.T) {
	opener := newFakeOpener()
	opener.add("empty.pdf", &fakeDocument{pages: [][]RawTable{nil, nil}})

	res, err := NewExtractor(opener).Extract(context.Background(), SourceFile{Name: "empty.pdf"})
	if err != nil {
		t.Fatalf("Extract() error = %v, want empty result", err)
	}
	if len(res.Records) != 0 {
		t.Errorf("records = %d, want 0", len(res.Records))
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Code != CodeNoTables {
		t.Errorf("warnings = %+v, want one PDF003", res.Warnings)
	}
	if res.Report.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Report.Pages)
	}
}

func TestExtract_DocumentErrors(t *testing.T) {
	opener := newFakeOpener()
	closed := false
	opener.add("notext.pdf", &fakeDocument{textErr: errors.New("bad font"), closed: &closed})

	ex := NewExtractor(opener)

	t.Run("open failure", func(t *testing.T) {
		res, err := ex.Extract(context.Background(), SourceFile{Name: "corrupt.pdf"})
		var docErr *DocumentError
		if !errors.As(err, &docErr) {
			t.Fatalf("error = %v, want *DocumentError", err)
		}
		if docErr.File != "corrupt.pdf" {
			t.Errorf("File = %q, want corrupt.pdf", docErr.File)
		}
		if res.Report.Error == "" {
			t.Error("report should carry the error")
		}
	})

	t.Run("text failure closes document", func(t *testing.T) {
		_, err := ex.Extract(context.Background(), SourceFile{Name: "notext.pdf"})
		var docErr *DocumentError
		if !errors.As(err, &docErr) {
			t.Fatalf("error = %v, want *DocumentError", err)
		}
		if !closed {
			t.Error("document was not closed after failure")
		}
	})
}

func TestTableBody(t *testing.T) {
	tests := []struct {
		name  string
		table RawTable
		want  int
	}{
		{"empty", nil, 0},
		{"header only", RawTable{TextRow("h")}, 0},
		{"one data row", RawTable{TextRow("h"), TextRow("d")}, 1},
		{"yield rows removed", RawTable{TextRow("h"), TextRow("d"), TextRow("x", "yield: 90%")}, 1},
		{"null cells ignored", RawTable{TextRow("h"), {NullCell, TextCell("d")}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tableBody(tt.table); len(got) != tt.want {
				t.Errorf("len(tableBody) = %d, want %d", len(got), tt.want)
			}
		})
	}
}
