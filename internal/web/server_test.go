package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/cyclesheet/internal/config"
	"github.com/JonMunkholm/cyclesheet/internal/core"
	"github.com/JonMunkholm/cyclesheet/internal/export"
)

// stubDocument serves one cut-list table on a single page.
type stubDocument struct{}

func (stubDocument) PageCount() int { return 1 }

func (stubDocument) Text() (string, error) { return "2 Sheet(s) = 1 Kit(s)", nil }

func (stubDocument) Tables(int) ([]core.RawTable, error) {
	return []core.RawTable{{
		core.TextRow("Part ID", "Part Name", "Cart Loading", "Qty Req", "Qty Nested", "Part Description", "Production Instructions", "Material"),
		core.TextRow("1", "Side", "A", "2", "2", "L-Side / R-Side", "", "MDF"),
		core.TextRow("2", "Back", "A", "1", "3", "Back panel", "", "MDF"),
		core.TextRow("Yield: 87%"),
	}}, nil
}

func (stubDocument) Close() error { return nil }

// stubOpener opens any file whose content starts with "%PDF".
type stubOpener struct{}

func (stubOpener) Open(_ context.Context, _ string, data []byte) (core.Document, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, core.ErrNotPDF
	}
	return stubDocument{}, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Rate.Enabled = false
	cfg.Upload.MaxFiles = 3
	cfg.Upload.MaxFileSize = 1024
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	clock := core.WithClock(func() time.Time { return time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC) })
	svc := core.NewService(stubOpener{}, core.NewBatchLimiter(1, 100*time.Millisecond), clock,
		core.WithMaxFileSize(cfg.Upload.MaxFileSize))
	s := NewServer(svc, cfg)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

type upload struct {
	name string
	data string
}

func multipartRequest(t *testing.T, target string, files ...upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(filesField, f.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		part.Write([]byte(f.data))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestSummaryJSON(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, multipartRequest(t, "/api/summary",
		upload{"Job12.pdf", "%PDF-1.7"},
		upload{"notes.txt", "hello"},
	))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res core.BatchResult
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := core.ProgramSummary{
		Program:        "Job12",
		DifferentParts: 3,
		TotalParts:     5,
		FramesPerKit:   1,
		NumberOfTables: 1,
		Date:           "03/07/2025",
	}
	if len(res.Summaries) != 1 || res.Summaries[0] != want {
		t.Errorf("summaries = %+v, want [%+v]", res.Summaries, want)
	}
	if res.ID == "" {
		t.Error("batch_id missing")
	}
	if len(res.Documents) != 2 {
		t.Errorf("documents = %d, want 2", len(res.Documents))
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Code != core.CodeNotPDF {
		t.Errorf("warnings = %+v, want one %s", res.Warnings, core.CodeNotPDF)
	}
}

func TestSummaryJSON_NoValidData(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, multipartRequest(t, "/api/summary", upload{"broken.pdf", "garbage"}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var body noDataResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != "BATCH001" {
		t.Errorf("code = %q, want BATCH001", body.Code)
	}
	if len(body.Documents) != 1 || body.Documents[0].Error == "" {
		t.Errorf("documents = %+v, want one failed document", body.Documents)
	}
}

func TestSummary_RequestErrors(t *testing.T) {
	tests := []struct {
		name       string
		files      []upload
		wantStatus int
		wantCode   string
	}{
		{"no files", nil, http.StatusBadRequest, "FILE004"},
		{"too many files", []upload{{"a.pdf", "%PDF"}, {"b.pdf", "%PDF"}, {"c.pdf", "%PDF"}, {"d.pdf", "%PDF"}}, http.StatusBadRequest, "BATCH002"},
		{"body too large", []upload{{"a.pdf", "%PDF" + strings.Repeat("x", 1<<20+4096)}}, http.StatusRequestEntityTooLarge, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testConfig())
			rec := serve(s, multipartRequest(t, "/api/summary", tt.files...))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var body ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestSummaryJSON_BadFilesAreWarnings(t *testing.T) {
	tests := []struct {
		name     string
		bad      upload
		wantCode string
	}{
		{"empty file", upload{"zero.pdf", ""}, core.CodeEmptyFile},
		{"file too large", upload{"huge.pdf", "%PDF" + strings.Repeat("x", 2048)}, core.CodeFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testConfig())
			rec := serve(s, multipartRequest(t, "/api/summary", upload{"Job12.pdf", "%PDF-1.7"}, tt.bad))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}

			var res core.BatchResult
			if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(res.Summaries) != 1 || res.Summaries[0].Program != "Job12" {
				t.Errorf("summaries = %+v, want Job12", res.Summaries)
			}
			if len(res.Warnings) != 1 || res.Warnings[0].Code != tt.wantCode || res.Warnings[0].File != tt.bad.name {
				t.Errorf("warnings = %+v, want one %s for %s", res.Warnings, tt.wantCode, tt.bad.name)
			}
			if len(res.Documents) != 2 || res.Documents[1].Error == "" {
				t.Errorf("documents = %+v, want %s reported as failed", res.Documents, tt.bad.name)
			}
		})
	}
}

func TestSummaryXLSX(t *testing.T) {
	cfg := testConfig()
	s := newTestServer(t, cfg)

	rec := serve(s, multipartRequest(t, "/api/summary.xlsx", upload{"Job12.pdf", "%PDF-1.7"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != export.ContentTypeXLSX {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "extracted_summary.xlsx") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	// xlsx files are zip archives
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("body is not a zip archive")
	}
}

func TestSummaryPage_DownloadLinks(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, multipartRequest(t, "/summary", upload{"Job12.pdf", "%PDF-1.7"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	page := rec.Body.String()
	for _, want := range []string{"Job12", "03/07/2025", "Counting Rules", "RELIEF parts"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}

	batchID := rec.Header().Get("X-Batch-ID")
	if batchID == "" {
		start := strings.Index(page, "/batches/")
		if start < 0 {
			t.Fatal("page has no download link")
		}
		rest := page[start+len("/batches/"):]
		batchID = rest[:strings.Index(rest, "/")]
	}

	csvRec := serve(s, httptest.NewRequest(http.MethodGet, "/batches/"+batchID+"/summary.csv", nil))
	if csvRec.Code != http.StatusOK {
		t.Fatalf("csv status = %d", csvRec.Code)
	}
	if !strings.Contains(csvRec.Body.String(), "Job12,,3,5,1,1,03/07/2025") {
		t.Errorf("csv = %s", csvRec.Body.String())
	}

	missing := serve(s, httptest.NewRequest(http.MethodGet, "/batches/unknown/summary.xlsx", nil))
	if missing.Code != http.StatusNotFound {
		t.Errorf("unknown batch status = %d, want 404", missing.Code)
	}
}

func TestSummaryPage_NoValidData(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, multipartRequest(t, "/summary", upload{"a.pdf", "not a pdf"}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No valid data found.") {
		t.Error("page should say no valid data was found")
	}
}

func TestDashboardAndHealth(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="files"`) {
		t.Errorf("dashboard status = %d", rec.Code)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var health healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" || health.Batches.MaxConcurrent != 1 {
		t.Errorf("health = %+v", health)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, cfg)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/rules", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/rules", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = serve(s, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate.Enabled = true
	cfg.Rate.RequestsPerMinute = 2
	s := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		if rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil)); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Retry-After missing")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrTooManyBatches, http.StatusServiceUnavailable},
		{core.ErrNoValidData, http.StatusUnprocessableEntity},
		{errTooManyFiles, http.StatusBadRequest},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestResultCache(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newResultCache(time.Minute)
	c.now = func() time.Time { return now }

	c.put(&core.BatchResult{ID: "a"})
	if _, ok := c.get("a"); !ok {
		t.Fatal("fresh entry missing")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.get("a"); ok {
		t.Error("expired entry returned")
	}

	c.put(nil)
	c.put(&core.BatchResult{})
	if len(c.entries) != 0 {
		t.Errorf("entries = %d, want 0", len(c.entries))
	}
}
