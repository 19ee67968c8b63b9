package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koperasi-lestari/bichecking/internal/config"
	"github.com/koperasi-lestari/bichecking/internal/core/analysis"
	"github.com/koperasi-lestari/bichecking/internal/core/domain"
	"github.com/koperasi-lestari/bichecking/internal/core/usecase"
	"github.com/koperasi-lestari/bichecking/internal/infrastructure/extractor"
)

type corpusStub struct {
	exemplars []domain.ReferenceExemplar
}

func (s *corpusStub) Exemplars(_ context.Context) ([]domain.ReferenceExemplar, error) {
	return s.exemplars, nil
}

func newTestHandler(t *testing.T, corpus *corpusStub) http.Handler {
	t.Helper()
	if corpus == nil {
		corpus = &corpusStub{}
	}
	cfg := config.Config{MaxUploadBytes: 10 << 20}
	uc := usecase.NewAnalyzeDocumentUseCase(extractor.New(nil), corpus, analysis.DefaultThresholds(), nil)
	return NewRouter(cfg, uc, corpus, nil).Handler()
}

type uploadSpec struct {
	fields   map[string]string
	filename string
	payload  []byte
	withFile bool
}

func newAnalyzeRequest(t *testing.T, spec uploadSpec) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range spec.fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %q: %v", key, err)
		}
	}
	if spec.withFile {
		part, err := writer.CreateFormFile("file", spec.filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(spec.payload); err != nil {
			t.Fatalf("write payload: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/bi-checking/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) domain.AnalysisResult {
	t.Helper()
	var result domain.AnalysisResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	return result
}

func TestAnalyzeWithoutFileYieldsCaution(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newAnalyzeRequest(t, uploadSpec{}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	result := decodeResult(t, rec)
	if result.Status != domain.VerdictCaution || result.IsEligible {
		t.Fatalf("expected non-eligible PERHATIAN, got %+v", result)
	}
	if !strings.Contains(result.Analysis, "Belum ada data BI Checking") {
		t.Fatalf("expected no-data rationale, got:\n%s", result.Analysis)
	}
}

func TestAnalyzeEmptyFileIsBadRequest(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newAnalyzeRequest(t, uploadSpec{
		withFile: true,
		filename: "kosong.pdf",
		payload:  nil,
	}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "kosong/tidak terbaca") {
		t.Fatalf("expected empty-document message, got: %s", rec.Body.String())
	}
}

func TestAnalyzeCleanPlainTextDocument(t *testing.T) {
	handler := newTestHandler(t, nil)

	text := "Kolektibilitas 1 (LANCAR). Skor BI 1. DSR 20%. DTI 25%. " +
		"Pembayaran selalu tepat waktu, angsuran rutin, tidak ada tunggakan."
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newAnalyzeRequest(t, uploadSpec{
		withFile: true,
		filename: "laporan.txt",
		payload:  []byte(text),
	}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	result := decodeResult(t, rec)
	if result.Status != domain.VerdictEligible || !result.IsEligible {
		t.Fatalf("expected LAYAK, got %+v", result)
	}
	if result.Kolektibilitas == nil || *result.Kolektibilitas != 1 {
		t.Fatalf("expected kolektibilitas 1, got %v", result.Kolektibilitas)
	}
}

func TestAnalyzeSevereKeywordIsIneligible(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newAnalyzeRequest(t, uploadSpec{
		withFile: true,
		filename: "laporan.txt",
		payload:  []byte("Kredit dinyatakan macet sejak 2023."),
	}))

	result := decodeResult(t, rec)
	if result.Status != domain.VerdictIneligible || result.IsEligible {
		t.Fatalf("expected TIDAK_LAYAK, got %+v", result)
	}
}

func TestAnalyzeRedAgingDominanceIsIneligible(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newAnalyzeRequest(t, uploadSpec{
		withFile: true,
		filename: "laporan.txt",
		payload:  []byte("Riwayat angsuran: " + strings.Repeat("180+ ", 10)),
	}))

	result := decodeResult(t, rec)
	if result.Status != domain.VerdictIneligible {
		t.Fatalf("expected red-dominant aging to force TIDAK_LAYAK, got %+v", result)
	}
	if result.Red != 10 {
		t.Fatalf("expected 10 red aging hits, got %d", result.Red)
	}
}

func TestAnalyzeManualOverrideBeatsDocumentValue(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newAnalyzeRequest(t, uploadSpec{
		fields:   map[string]string{"dsr": "55"},
		withFile: true,
		filename: "laporan.txt",
		payload:  []byte("Kolektibilitas 1. DSR 20%."),
	}))

	result := decodeResult(t, rec)
	if result.DSR == nil || *result.DSR != 55 {
		t.Fatalf("expected override DSR 55, got %v", result.DSR)
	}
	if result.Status != domain.VerdictIneligible {
		t.Fatalf("DSR 55 must fail the hard gate, got %s", result.Status)
	}
}

func TestAnalyzeExemplarMatchOverridesBase(t *testing.T) {
	text := "laporan debitur koperasi riwayat pembayaran baik DSR 60%"
	corpus := &corpusStub{exemplars: []domain.ReferenceExemplar{
		{Label: domain.VerdictEligible, SourcePath: "layak.pdf", Text: domain.NormalizeText(text)},
	}}
	handler := newTestHandler(t, corpus)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newAnalyzeRequest(t, uploadSpec{
		withFile: true,
		filename: "laporan.txt",
		payload:  []byte(text),
	}))

	result := decodeResult(t, rec)
	if result.Status != domain.VerdictEligible {
		t.Fatalf("expected exemplar match to yield LAYAK, got %+v", result)
	}
	if !strings.Contains(result.Analysis, "mirip dokumen referensi LAYAK") {
		t.Fatalf("expected similarity mention in rationale, got:\n%s", result.Analysis)
	}
}

func TestAnalyzeRejectsNonPostMethods(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bi-checking/analyze", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestReferenceStatusListsExemplars(t *testing.T) {
	corpus := &corpusStub{exemplars: []domain.ReferenceExemplar{
		{Label: domain.VerdictEligible, SourcePath: "layak.pdf", Text: domain.NormalizeText("riwayat baik")},
		{Label: domain.VerdictCaution, SourcePath: "perhatian.pdf", Text: domain.NormalizeText("perlu dicek")},
	}}
	handler := newTestHandler(t, corpus)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bi-checking/reference", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Exemplars []struct {
			Label      string `json:"label"`
			SourcePath string `json:"sourcePath"`
			TextLength int    `json:"textLength"`
		} `json:"exemplars"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Exemplars) != 2 {
		t.Fatalf("expected 2 exemplars, got %+v", body.Exemplars)
	}
	if body.Exemplars[0].Label != "LAYAK" || body.Exemplars[0].SourcePath != "layak.pdf" {
		t.Fatalf("unexpected first exemplar: %+v", body.Exemplars[0])
	}
}

func TestHealthzAndRequestIDHeader(t *testing.T) {
	handler := newTestHandler(t, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id header")
	}
}
