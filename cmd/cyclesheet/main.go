// Command cyclesheet summarizes cut-list PDFs from the command line.
//
// Usage:
//
//	cyclesheet Program1.pdf Program2.pdf ...
//
// The summary is printed as a table and written to EXPORT_DIR/EXPORT_FILE_NAME.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/JonMunkholm/cyclesheet/internal/config"
	"github.com/JonMunkholm/cyclesheet/internal/core"
	"github.com/JonMunkholm/cyclesheet/internal/export"
	"github.com/JonMunkholm/cyclesheet/internal/logging"
	"github.com/JonMunkholm/cyclesheet/internal/pdf"
	"github.com/joho/godotenv"
)

// Exit codes.
const (
	exitOK     = 0
	exitNoData = 1
	exitUsage  = 2
)

func main() {
	// .env is optional; existing environment wins for the CLI.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(exitUsage)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: cyclesheet FILE.pdf [FILE.pdf ...]")
		return exitUsage
	}

	files := make([]core.SourceFile, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stderr, "read:", err)
			return exitUsage
		}
		files = append(files, core.SourceFile{Name: filepath.Base(path), Data: data})
	}

	limiter := core.NewBatchLimiter(1, cfg.Upload.MaxWaitTime)
	service := core.NewService(pdf.NewOpener(cfg.Extract), limiter, core.WithMaxFileSize(cfg.Upload.MaxFileSize))

	res, err := service.ProcessBatch(ctx, files)
	if res != nil {
		printWarnings(stderr, res.Warnings)
	}
	if err != nil {
		if core.IsNoValidData(err) {
			fmt.Fprintln(stderr, "No valid data found.")
			return exitNoData
		}
		fmt.Fprintln(stderr, core.FormatUserError(err))
		return exitNoData
	}

	printSummary(stdout, res.Summaries)
	printRules(stdout)

	out := filepath.Join(cfg.Export.Dir, cfg.Export.FileName)
	if err := writeWorkbook(out, cfg.Export.SheetName, res.Summaries); err != nil {
		fmt.Fprintln(stderr, "export:", err)
		return exitNoData
	}
	slog.Info("summary written", "path", out, "programs", len(res.Summaries))
	fmt.Fprintf(stdout, "\nSaved %s\n", out)
	return exitOK
}

func printSummary(w io.Writer, rows []core.ProgramSummary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, h := range core.SummaryColumns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, h)
	}
	fmt.Fprintln(tw)

	for _, s := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%d\t%s\n",
			s.Status,
			s.Program,
			s.CycleTime,
			s.DifferentParts,
			s.TotalParts,
			strconv.FormatFloat(s.FramesPerKit, 'f', -1, 64),
			s.NumberOfTables,
			s.Date,
		)
	}
	tw.Flush()
}

func printRules(w io.Writer) {
	fmt.Fprintln(w, "\nCounting rules:")
	for _, r := range core.CountingRules() {
		fmt.Fprintf(w, "  %s = %d\n", r.Label, r.Weight)
	}
}

func printWarnings(w io.Writer, warnings []core.Warning) {
	for _, warn := range warnings {
		fmt.Fprintln(w, "warning:", warn.String())
	}
}

// writeWorkbook renders the workbook fully before touching the target file.
func writeWorkbook(path, sheet string, rows []core.ProgramSummary) error {
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, sheet, rows); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
