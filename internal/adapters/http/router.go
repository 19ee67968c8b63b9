package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/koperasi-lestari/bichecking/internal/config"
	"github.com/koperasi-lestari/bichecking/internal/core/analysis"
	"github.com/koperasi-lestari/bichecking/internal/core/domain"
	"github.com/koperasi-lestari/bichecking/internal/core/ports"
	"github.com/koperasi-lestari/bichecking/internal/observability/metrics"
)

type Router struct {
	cfg      config.Config
	analyzer ports.DocumentAnalyzer
	corpus   ports.ReferenceCorpus
	metrics  *metrics.Metrics
}

func NewRouter(
	cfg config.Config,
	analyzer ports.DocumentAnalyzer,
	corpus ports.ReferenceCorpus,
	m *metrics.Metrics,
) *Router {
	return &Router{
		cfg:      cfg,
		analyzer: analyzer,
		corpus:   corpus,
		metrics:  m,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/bi-checking/analyze", rt.analyzeDocument)
	mux.HandleFunc("/v1/bi-checking/reference", rt.referenceStatus)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent,
		time.Duration(rt.cfg.APIBackpressureWaitMS)*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) analyzeDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(rt.cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payload multipart tidak valid atau melebihi batas ukuran"})
		return
	}

	req := domain.AnalysisRequest{
		Overrides: parseOverrides(r),
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// No file attached resolves to the default-safe verdict.
	case err != nil:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "field berkas tidak terbaca"})
		return
	default:
		defer file.Close()
		payload, readErr := io.ReadAll(file)
		if readErr != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file BI Checking kosong/tidak terbaca"})
			return
		}
		req.HasFile = true
		req.Filename = header.Filename
		req.Payload = payload
	}

	result, err := rt.analyzer.Analyze(r.Context(), req)
	if err != nil {
		status := mapErrorToHTTPStatus(err)
		if status >= 500 {
			slog.Error("analysis_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		}
		writeJSON(w, status, map[string]string{"error": clientErrorMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) referenceStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	exemplars, err := rt.corpus.Exemplars(r.Context())
	if err != nil {
		slog.Error("corpus_status_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": clientErrorMessage(err)})
		return
	}

	type exemplarStatus struct {
		Label      domain.VerdictLabel `json:"label"`
		SourcePath string              `json:"sourcePath"`
		TextLength int                 `json:"textLength"`
	}
	out := make([]exemplarStatus, 0, len(exemplars))
	for _, ex := range exemplars {
		out = append(out, exemplarStatus{
			Label:      ex.Label,
			SourcePath: ex.SourcePath,
			TextLength: len(ex.Text.Raw),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"exemplars": out})
}

// parseOverrides reads the optional scalar override fields. Values that do
// not parse are treated as absent, matching the lexical scan's tolerance.
func parseOverrides(r *http.Request) domain.ManualOverrides {
	ov := domain.ManualOverrides{
		DSR: analysis.ParseNumber(r.FormValue("dsr")),
		DTI: analysis.ParseNumber(r.FormValue("dti")),
	}
	if v := analysis.ParseNumber(r.FormValue("bi_score")); v != nil {
		score := int(*v)
		ov.BIScore = &score
	}
	return ov
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
