// Package pdf reads cut-list PDFs with tabula and exposes them to the core
// pipeline as core.Document values.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/JonMunkholm/cyclesheet/internal/config"
	"github.com/JonMunkholm/cyclesheet/internal/core"
	"github.com/JonMunkholm/cyclesheet/internal/logging"
	"github.com/tsawler/tabula"
	pdfcore "github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"
)

// pdfMagic starts every PDF file.
var pdfMagic = []byte("%PDF-")

// Opener opens PDFs from memory. Each document is spooled to its own temp
// file because tabula reads from *os.File; the file is removed on Close.
type Opener struct {
	tempDir string
	detect  tables.Config
}

// NewOpener creates an Opener tuned by cfg.
func NewOpener(cfg config.ExtractConfig) *Opener {
	detect := tables.DefaultConfig()
	if cfg.MinConfidence > 0 {
		detect.MinConfidence = cfg.MinConfidence
	}
	if cfg.AlignmentTolerance > 0 {
		detect.AlignmentTolerance = cfg.AlignmentTolerance
	}
	if cfg.MaxCellGap > 0 {
		detect.MaxCellGap = cfg.MaxCellGap
	}

	return &Opener{
		tempDir: cfg.TempDir,
		detect:  detect,
	}
}

// Open implements core.DocumentOpener.
func (o *Opener) Open(ctx context.Context, name string, data []byte) (core.Document, error) {
	if !hasPDFHeader(data) {
		return nil, core.ErrNotPDF
	}

	f, err := os.CreateTemp(o.tempDir, "cyclesheet-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		f.Close()
		os.Remove(f.Name())
	}

	if _, err := f.Write(data); err != nil {
		cleanup()
		return nil, fmt.Errorf("spool %s: %w", name, err)
	}

	r, err := reader.NewReader(f)
	if err != nil {
		cleanup()
		return nil, err
	}

	count, err := r.PageCount()
	if err != nil {
		r.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("count pages: %w", err)
	}

	detector := tables.NewGeometricDetector()
	if err := detector.Configure(o.detect); err != nil {
		r.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("configure table detector: %w", err)
	}

	logging.FromContext(ctx).Debug("pdf opened",
		"file", name,
		"pages", count,
		"version", r.Version().String(),
	)

	return &document{
		path:     f.Name(),
		r:        r,
		pages:    count,
		detector: detector,
		logger:   logging.WithFields(ctx, "file", name),
	}, nil
}

func hasPDFHeader(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// document is one open PDF backed by a temp file.
type document struct {
	path     string
	r        *reader.Reader
	pages    int
	detector *tables.GeometricDetector
	logger   *slog.Logger
	closed   bool
}

func (d *document) PageCount() int {
	return d.pages
}

// Text returns the document's text in reading order.
func (d *document) Text() (string, error) {
	text, warnings, err := tabula.FromReader(d.r).Text()
	if err != nil {
		return "", err
	}
	for _, w := range warnings {
		d.logger.Debug("text extraction warning", "warning", w.Message)
	}
	return text, nil
}

// Tables detects the tables on one page. page is 1-based.
func (d *document) Tables(page int) ([]core.RawTable, error) {
	if page < 1 || page > d.pages {
		return nil, fmt.Errorf("page %d out of range 1-%d", page, d.pages)
	}

	p, err := d.r.GetPage(page - 1)
	if err != nil {
		return nil, err
	}

	width, err := p.Width()
	if err != nil {
		return nil, fmt.Errorf("page width: %w", err)
	}
	height, err := p.Height()
	if err != nil {
		return nil, fmt.Errorf("page height: %w", err)
	}

	fragments, err := d.r.ExtractTextFragments(p)
	if err != nil {
		return nil, err
	}

	mp := model.NewPage(width, height)
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		mp.RawText = append(mp.RawText, model.TextFragment{
			Text:     f.Text,
			BBox:     model.NewBBox(f.X, f.Y, f.Width, f.Height),
			FontSize: f.FontSize,
			FontName: f.FontName,
		})
	}

	lines, err := ruling(p)
	if err != nil {
		d.logger.Debug("page ruling unavailable", "page", page, "error", err)
	}
	mp.RawLines = append(mp.RawLines, lines...)

	found, err := d.detector.Detect(mp)
	if err != nil {
		return nil, err
	}

	out := make([]core.RawTable, 0, len(found))
	for _, t := range found {
		out = append(out, ConvertTable(t))
	}
	d.logger.Debug("page tables detected", "page", page, "fragments", len(mp.RawText), "lines", len(lines), "tables", len(out))
	return out, nil
}

// Close releases the reader and removes the temp file. Safe to call twice.
func (d *document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	err := d.r.Close()
	if rmErr := os.Remove(d.path); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

// ruling returns the drawn lines and rectangles of a page.
func ruling(p *pages.Page) ([]model.Line, error) {
	contents, err := p.Contents()
	if err != nil {
		return nil, err
	}

	var data []byte
	for _, obj := range contents {
		stream, ok := obj.(*pdfcore.Stream)
		if !ok {
			continue
		}
		decoded, err := stream.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode content stream: %w", err)
		}
		data = append(data, decoded...)
	}
	if len(data) == 0 {
		return nil, nil
	}

	ge := graphicsstate.NewGraphicsExtractor()
	if err := ge.ExtractFromBytes(data); err != nil {
		return nil, err
	}
	return append(ge.ToModelLines(), ge.ToModelRectangles()...), nil
}

// ConvertTable turns a detected table into raw rows. Cell text is cleaned
// and cells holding no text become null. Rows with no text at all are
// spacer rows from the detector and are left out, so the first row kept
// is the table's header.
func ConvertTable(t *model.Table) core.RawTable {
	if t == nil {
		return nil
	}

	out := make(core.RawTable, 0, len(t.Rows))
	for _, row := range t.Rows {
		raw := make(core.RawRow, len(row))
		blank := true
		for j, c := range row {
			text := strings.TrimSpace(core.CleanCell(c.Text))
			if text == "" {
				raw[j] = core.NullCell
				continue
			}
			raw[j] = core.TextCell(text)
			blank = false
		}
		if !blank {
			out = append(out, raw)
		}
	}
	return out
}
