package ports

import (
	"context"

	"github.com/koperasi-lestari/bichecking/internal/core/domain"
)

// DocumentAnalyzer is the inbound contract for BI-checking analysis.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
}
