package ports

import (
	"context"

	"github.com/koperasi-lestari/bichecking/internal/core/domain"
)

// TextExtractor converts a raw document payload into plain text. Extraction
// failure degrades to empty text at the dispatch boundary; an error here is
// reserved for genuinely unexpected faults.
type TextExtractor interface {
	Extract(ctx context.Context, filename string, data []byte) (string, error)
}

// ReferenceCorpus yields the pre-classified reference exemplars. Any subset
// of the three categories may be absent; that is not an error.
type ReferenceCorpus interface {
	Exemplars(ctx context.Context) ([]domain.ReferenceExemplar, error)
}
