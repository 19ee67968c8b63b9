package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/koperasi-lestari/bichecking/internal/core/analysis"
	"github.com/koperasi-lestari/bichecking/internal/core/domain"
	"github.com/koperasi-lestari/bichecking/internal/core/ports"
)

// AnalysisObserver receives analysis outcomes for instrumentation.
// Implementations must be safe for concurrent use; a nil observer disables
// recording.
type AnalysisObserver interface {
	RecordVerdict(status domain.VerdictLabel)
	RecordSimilarity(score float64)
	RecordAnalysisDuration(d time.Duration)
}

// AnalyzeDocumentUseCase runs the single-pass analysis pipeline: extract
// text, scan lexical signals, match against the reference corpus, decide.
type AnalyzeDocumentUseCase struct {
	extractor  ports.TextExtractor
	corpus     ports.ReferenceCorpus
	thresholds analysis.Thresholds
	observer   AnalysisObserver
}

func NewAnalyzeDocumentUseCase(
	extractor ports.TextExtractor,
	corpus ports.ReferenceCorpus,
	thresholds analysis.Thresholds,
	observer AnalysisObserver,
) *AnalyzeDocumentUseCase {
	return &AnalyzeDocumentUseCase{
		extractor:  extractor,
		corpus:     corpus,
		thresholds: thresholds,
		observer:   observer,
	}
}

func (uc *AnalyzeDocumentUseCase) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	if !req.HasFile {
		uc.recordVerdict(domain.VerdictCaution)
		return noDataResult(), nil
	}
	if len(req.Payload) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyDocument, "analyze document", errors.New("uploaded file has zero bytes"))
	}

	start := time.Now()

	text := uc.extractText(ctx, req)
	norm := domain.NormalizeText(text)
	signals := analysis.ExtractSignals(norm, req.Overrides)

	exemplars, err := uc.corpus.Exemplars(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference corpus: %w", err)
	}

	var match *domain.SimilarityMatch
	if m, ok := analysis.Classify(norm, exemplars, uc.thresholds.SimilarityAccept); ok {
		match = &m
		if uc.observer != nil {
			uc.observer.RecordSimilarity(m.Score)
		}
	}

	verdict := analysis.Decide(signals, match, uc.thresholds)
	uc.recordVerdict(verdict)
	if uc.observer != nil {
		uc.observer.RecordAnalysisDuration(time.Since(start))
	}

	return &domain.AnalysisResult{
		Analysis:       analysis.BuildRationale(signals, verdict, match, len(req.Payload)),
		IsEligible:     verdict == domain.VerdictEligible,
		Status:         verdict,
		Kolektibilitas: signals.Kolektibilitas,
		BIScore:        signals.BIScore,
		DSR:            signals.DSR,
		DTI:            signals.DTI,
		AgingBuckets:   signals.Aging,
	}, nil
}

// extractText degrades extraction failure to empty text: a malformed upload
// yields an all-absent signal set and the default-path verdict, never an
// error to the caller.
func (uc *AnalyzeDocumentUseCase) extractText(ctx context.Context, req domain.AnalysisRequest) string {
	text, err := uc.extractor.Extract(ctx, req.Filename, req.Payload)
	if err != nil {
		slog.Warn("text_extraction_failed", "filename", req.Filename, "error", err)
		return ""
	}
	return text
}

func (uc *AnalyzeDocumentUseCase) recordVerdict(v domain.VerdictLabel) {
	if uc.observer != nil {
		uc.observer.RecordVerdict(v)
	}
}

func noDataResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Analysis:   analysis.NoDataRationale(),
		IsEligible: false,
		Status:     domain.VerdictCaution,
	}
}
