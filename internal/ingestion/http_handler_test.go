package ingestion

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newUploadRequest(t *testing.T, target, fileName, content string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func newTestMux(leadRepo *stubLeadRepo, auditRepo *stubAuditRepo) *http.ServeMux {
	mux := http.NewServeMux()
	NewHTTPHandler(NewService(testConfig(), leadRepo, auditRepo, nil)).Register(mux)
	return mux
}

func TestHandlerImport(t *testing.T) {
	leadRepo := newStubLeadRepo()
	mux := newTestMux(leadRepo, &stubAuditRepo{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, newUploadRequest(t, "/api/imports", "leads.csv", leadsCSV))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.Summary.Inserted != 1 || report.Audit.FileName != "leads.csv" {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(leadRepo.byOrg) != 1 {
		t.Fatalf("expected one stored lead, got %d", len(leadRepo.byOrg))
	}
}

func TestHandlerPreview(t *testing.T) {
	leadRepo := newStubLeadRepo()
	mux := newTestMux(leadRepo, &stubAuditRepo{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, newUploadRequest(t, "/api/imports/preview", "leads.csv", leadsCSV))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Batch   BatchResult `json:"batch"`
		Notices []Notice    `json:"notices"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Batch.TotalRows != 3 || len(payload.Notices) == 0 {
		t.Fatalf("unexpected preview: %+v", payload)
	}
	if len(leadRepo.calls) != 0 {
		t.Fatalf("preview must not touch the store")
	}
}

func TestHandlerRequiresFile(t *testing.T) {
	mux := newTestMux(newStubLeadRepo(), &stubAuditRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/imports", bytes.NewBufferString("x"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerHistory(t *testing.T) {
	auditRepo := &stubAuditRepo{}
	mux := newTestMux(newStubLeadRepo(), auditRepo)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, newUploadRequest(t, "/api/imports", "leads.csv", leadsCSV))

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imports?limit=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var history []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(history) != 1 || history[0]["fileName"] != "leads.csv" {
		t.Fatalf("unexpected history: %v", history)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/imports?limit=-1", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative limit, got %d", rec.Code)
	}
}
