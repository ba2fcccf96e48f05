package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// fakeDocument is an in-memory Document.
type fakeDocument struct {
	text      string
	textErr   error
	pages     [][]RawTable
	pageErrs  map[int]error
	closeOnce sync.Once
	closed    *bool
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) Text() (string, error) { return d.text, d.textErr }

func (d *fakeDocument) Tables(page int) ([]RawTable, error) {
	if err := d.pageErrs[page]; err != nil {
		return nil, err
	}
	if page < 1 || page > len(d.pages) {
		return nil, fmt.Errorf("page %d out of range", page)
	}
	return d.pages[page-1], nil
}

func (d *fakeDocument) Close() error {
	d.closeOnce.Do(func() {
		if d.closed != nil {
			*d.closed = true
		}
	})
	return nil
}

// fakeOpener serves fakeDocuments by file name.
type fakeOpener struct {
	mu     sync.Mutex
	docs   map[string]*fakeDocument
	opened []string
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{docs: make(map[string]*fakeDocument)}
}

func (o *fakeOpener) add(name string, doc *fakeDocument) {
	o.docs[name] = doc
}

func (o *fakeOpener) Open(_ context.Context, name string, _ []byte) (Document, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.opened = append(o.opened, name)
	doc, ok := o.docs[name]
	if !ok {
		return nil, errors.New("invalid pdf header")
	}
	return doc, nil
}

// programADocument is the single-page cut list used across tests.
func programADocument() *fakeDocument {
	table := RawTable{
		TextRow("Part ID", "Part Name", "Cart Loading", "Qty Req", "Qty Nested", "Part Description", "Production Instructions", "Material"),
		TextRow("101", "PartA", "", "2", "4", "Leg Rail", "cut", "wood"),
		{TextCell("Yield: 95%"), NullCell, NullCell, NullCell, NullCell, NullCell, NullCell, NullCell},
	}
	return &fakeDocument{
		text:  "Job ProgramA\n3 Sheet(s) = 1 Kit(s)\n",
		pages: [][]RawTable{{table}},
	}
}
