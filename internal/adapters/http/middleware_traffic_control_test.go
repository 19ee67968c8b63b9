package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/koperasi-lestari/bichecking/internal/config"
	"github.com/koperasi-lestari/bichecking/internal/core/analysis"
	"github.com/koperasi-lestari/bichecking/internal/core/usecase"
	"github.com/koperasi-lestari/bichecking/internal/infrastructure/extractor"
)

func newRateLimitedHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{
		MaxUploadBytes:    10 << 20,
		APIRateLimitRPS:   1,
		APIRateLimitBurst: 1,
	}
	corpus := &corpusStub{}
	uc := usecase.NewAnalyzeDocumentUseCase(extractor.New(nil), corpus, analysis.DefaultThresholds(), nil)
	return NewRouter(cfg, uc, corpus, nil).Handler()
}

func TestRateLimitRejectsBurstOverflow(t *testing.T) {
	handler := newRateLimitedHandler(t)

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/bi-checking/reference", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request must pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/bi-checking/reference", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request must be limited, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After header, got %q", second.Header().Get("Retry-After"))
	}
	if !strings.Contains(second.Body.String(), "terlalu banyak permintaan") {
		t.Fatalf("expected rate-limit message, got: %s", second.Body.String())
	}
}

func TestRateLimitSkipsProbeEndpoints(t *testing.T) {
	handler := newRateLimitedHandler(t)

	// Exhaust the burst on a limited path first.
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/bi-checking/reference", nil))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("probe request %d must bypass the limiter, got %d", i, rec.Code)
		}
	}
}

func TestRateLimitDisabledWhenRPSZero(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := rateLimitMiddleware(inner, 0, 0)

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/bi-checking/reference", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("request %d: disabled limiter must pass everything, got %d", i, rec.Code)
		}
	}
}

func TestBackpressureShedsWhenSaturated(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	})
	handler := backpressureMiddleware(inner, 1, 20*time.Millisecond)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/bi-checking/analyze", nil))
	}()
	<-entered

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/bi-checking/analyze", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("saturated handler must shed with 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "server sedang sibuk") {
		t.Fatalf("expected busy message, got: %s", rec.Body.String())
	}

	close(release)
	<-firstDone
}

func TestBackpressureSkipsProbeEndpoints(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			w.WriteHeader(http.StatusOK)
			return
		}
		<-release
	})
	handler := backpressureMiddleware(inner, 1, time.Minute)

	started := make(chan struct{})
	go func() {
		close(started)
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/bi-checking/analyze", nil))
	}()
	<-started

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("probe must bypass backpressure, got %d", rec.Code)
	}
}
