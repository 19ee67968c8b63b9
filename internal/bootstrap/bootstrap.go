package bootstrap

import (
	"context"
	"log/slog"

	"github.com/koperasi-lestari/bichecking/internal/config"
	"github.com/koperasi-lestari/bichecking/internal/core/analysis"
	"github.com/koperasi-lestari/bichecking/internal/core/ports"
	"github.com/koperasi-lestari/bichecking/internal/core/usecase"
	"github.com/koperasi-lestari/bichecking/internal/infrastructure/corpus"
	"github.com/koperasi-lestari/bichecking/internal/infrastructure/extractor"
	"github.com/koperasi-lestari/bichecking/internal/observability/metrics"
)

type App struct {
	Config  config.Config
	Metrics *metrics.Metrics

	Corpus    ports.ReferenceCorpus
	AnalyzeUC ports.DocumentAnalyzer
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	m := metrics.New("bichecking-api")

	dispatcher := extractor.New(m)
	corpusLoader := corpus.New(cfg.CorpusPath, dispatcher)

	if cfg.CorpusPrewarm {
		// Best effort: a failed pre-warm falls back to lazy loading on the
		// first request.
		if exemplars, err := corpusLoader.Exemplars(ctx); err != nil {
			slog.Warn("corpus_prewarm_failed", "path", cfg.CorpusPath, "error", err)
		} else {
			slog.Info("corpus_prewarmed", "path", cfg.CorpusPath, "exemplars", len(exemplars))
		}
	}

	thresholds := analysis.Thresholds{
		SimilarityAccept: cfg.SimilarityThreshold,
		AgingMinSamples:  cfg.AgingMinSamples,
	}
	analyzeUC := usecase.NewAnalyzeDocumentUseCase(dispatcher, corpusLoader, thresholds, m)

	return &App{
		Config:    cfg,
		Metrics:   m,
		Corpus:    corpusLoader,
		AnalyzeUC: analyzeUC,
	}, nil
}
