package web

// handlers_common.go holds the batch intake shared by the summary handlers.

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/JonMunkholm/cyclesheet/internal/core"
)

// filesField is the multipart field carrying the PDFs.
const filesField = "files"

// multipartMemory is how much of a form is buffered in memory before
// spilling to disk.
const multipartMemory = 32 << 20

// multipartOverhead allows for boundaries and part headers on top of the
// file payloads.
const multipartOverhead = 1 << 20

// readBatch reads the uploaded PDFs of a multipart request in upload order.
// Only the request as a whole is rejected here: a body over the limit or
// too many files.
func (s *Server) readBatch(w http.ResponseWriter, r *http.Request) ([]core.SourceFile, error) {
	maxFile := s.cfg.Upload.MaxFileSize
	maxFiles := s.cfg.Upload.MaxFiles

	r.Body = http.MaxBytesReader(w, r.Body, maxFile*int64(maxFiles)+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: limit %d bytes", errBodyTooLarge, maxErr.Limit)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrNoFiles, err)
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[filesField]
	if len(headers) == 0 {
		return nil, core.ErrNoFiles
	}
	if len(headers) > maxFiles {
		return nil, fmt.Errorf("%w: %d (max %d)", errTooManyFiles, len(headers), maxFiles)
	}

	files := make([]core.SourceFile, 0, len(headers))
	for _, fh := range headers {
		file := core.SourceFile{Name: fh.Filename, Size: fh.Size}
		// Oversized and empty files are reported per document by the service.
		if fh.Size > 0 && fh.Size <= maxFile {
			data, err := readPart(fh)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
			}
			file.Data = data
		}
		files = append(files, file)
	}
	return files, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// runBatch reads the request's PDFs and processes them. A result is
// returned whenever the service produced one, including alongside
// core.ErrNoValidData, and is cached for later downloads.
func (s *Server) runBatch(w http.ResponseWriter, r *http.Request) (*core.BatchResult, error) {
	files, err := s.readBatch(w, r)
	if err != nil {
		return nil, err
	}

	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.ProcessBatch(ctx, files)
	if res != nil && err == nil {
		s.results.put(res)
	}
	return res, err
}
