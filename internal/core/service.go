package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/cyclesheet/internal/logging"
	"github.com/JonMunkholm/cyclesheet/internal/metrics"
	"github.com/google/uuid"
)

// Service provides the batch pipeline: extraction of every uploaded PDF,
// followed by aggregation into program summaries.
type Service struct {
	extractor   *Extractor
	limiter     *BatchLimiter
	now         func() time.Time
	maxFileSize int64
}

// Per-file rejection codes.
const (
	CodeFileTooLarge = "FILE001"
	CodeEmptyFile    = "FILE005"
)

// Per-file rejections. Each skips one document, never the batch.
var (
	ErrFileTooLarge = errors.New("file too large")
	ErrEmptyFile    = errors.New("empty file")
)

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the clock used to stamp summary dates.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithMaxFileSize skips documents larger than n bytes. Zero means no limit.
func WithMaxFileSize(n int64) ServiceOption {
	return func(s *Service) {
		s.maxFileSize = n
	}
}

// NewService creates a Service reading PDFs through opener. A nil limiter
// gets the default single-slot limiter.
func NewService(opener DocumentOpener, limiter *BatchLimiter, opts ...ServiceOption) *Service {
	if limiter == nil {
		limiter = NewBatchLimiter(DefaultMaxConcurrentBatches, DefaultMaxWaitTime)
	}

	s := &Service{
		extractor: NewExtractor(opener),
		limiter:   limiter,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessBatch extracts every file in order and aggregates the records.
//
// Per-table and per-document problems never fail the batch; they are
// returned in BatchResult.Warnings. When no usable record remains the
// result is still returned, together with an error wrapping
// ErrNoValidData. ctx bounds only the wait for a processing slot.
func (s *Service) ProcessBatch(ctx context.Context, files []SourceFile) (*BatchResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoValidData, ErrNoFiles)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	timer := metrics.NewTimer()
	result := &BatchResult{
		ID:        uuid.New().String(),
		Summaries: []ProgramSummary{},
		Warnings:  []Warning{},
		Documents: make([]DocumentReport, 0, len(files)),
	}

	ctx = logging.WithBatchID(ctx, result.ID)
	logger := logging.FromContext(ctx)
	logger.Info("batch started", append([]any{"files", len(files)}, clientAttrs(ctx)...)...)

	var records []PartRecord
	for _, file := range files {
		if code, err := s.screen(file); err != nil {
			result.Documents = append(result.Documents, DocumentReport{
				File:    file.Name,
				Program: ProgramName(file.Name),
				Error:   err.Error(),
			})
			result.Warnings = append(result.Warnings, Warning{
				File:    file.Name,
				Code:    code,
				Message: "skipped: " + err.Error(),
			})
			logger.Warn("document skipped", "file", file.Name, "code", code, "error", err)
			continue
		}

		doc, err := s.extractor.Extract(ctx, file)
		result.Documents = append(result.Documents, doc.Report)
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{
				File:    file.Name,
				Code:    CodeUnreadablePDF,
				Message: err.Error(),
			})
			continue
		}

		result.Warnings = append(result.Warnings, doc.Warnings...)
		records = append(records, doc.Records...)
	}

	for _, w := range result.Warnings {
		metrics.RecordWarning(w.Code)
	}

	summaries, err := Aggregate(records, s.now())
	result.Duration = timer.Duration()
	if err != nil {
		metrics.RecordBatch("no_data", result.Duration)
		logger.Warn("batch produced no valid data",
			"files", len(files),
			"warnings", len(result.Warnings),
		)
		return result, err
	}

	result.Summaries = summaries
	for _, r := range records {
		if r.PartName().Valid {
			result.Records++
		}
	}

	metrics.RecordBatch("ok", result.Duration)
	logger.Info("batch completed",
		"files", len(files),
		"programs", len(summaries),
		"records", result.Records,
		"warnings", len(result.Warnings),
		"duration", result.Duration.Round(time.Millisecond),
	)

	return result, nil
}

// LimiterStatus returns the batch limiter's current state.
func (s *Service) LimiterStatus() BatchLimiterStatus {
	return s.limiter.Status()
}

// WaitForBatches blocks until running batches complete or ctx ends.
func (s *Service) WaitForBatches(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// IsNoValidData reports whether err is the empty-batch condition.
func IsNoValidData(err error) bool {
	return errors.Is(err, ErrNoValidData)
}

// screen rejects files that are not worth opening, returning the warning
// code to report.
func (s *Service) screen(file SourceFile) (string, error) {
	switch {
	case !isPDFName(file.Name):
		return CodeNotPDF, fmt.Errorf("%w: only .pdf files are accepted", ErrNotPDF)
	case file.Len() == 0:
		return CodeEmptyFile, ErrEmptyFile
	case s.maxFileSize > 0 && file.Len() > s.maxFileSize:
		return CodeFileTooLarge, fmt.Errorf("%w: %d bytes, max %d", ErrFileTooLarge, file.Len(), s.maxFileSize)
	}
	return "", nil
}

func isPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
