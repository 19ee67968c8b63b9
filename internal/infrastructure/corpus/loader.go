// Package corpus loads the labeled reference exemplars the similarity
// classifier compares uploads against.
package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/koperasi-lestari/bichecking/internal/core/domain"
	"github.com/koperasi-lestari/bichecking/internal/core/ports"
)

// The three exemplar files are static deployment artifacts with fixed
// well-known names. Any subset may be absent.
var exemplarFiles = []struct {
	name  string
	label domain.VerdictLabel
}{
	{name: "layak.pdf", label: domain.VerdictEligible},
	{name: "tidak_layak.pdf", label: domain.VerdictIneligible},
	{name: "perhatian.pdf", label: domain.VerdictCaution},
}

// Loader reads and extracts the exemplars once, then serves the memoized set
// to all requests. The cache never needs invalidation.
type Loader struct {
	basePath  string
	extractor ports.TextExtractor

	mu        sync.RWMutex
	loaded    bool
	exemplars []domain.ReferenceExemplar
}

func New(basePath string, extractor ports.TextExtractor) *Loader {
	if basePath == "" {
		basePath = "./data/corpus"
	}
	return &Loader{basePath: basePath, extractor: extractor}
}

func (l *Loader) Exemplars(ctx context.Context) ([]domain.ReferenceExemplar, error) {
	l.mu.RLock()
	if l.loaded {
		defer l.mu.RUnlock()
		return l.exemplars, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return l.exemplars, nil
	}

	exemplars, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	l.exemplars = exemplars
	l.loaded = true
	return exemplars, nil
}

func (l *Loader) load(ctx context.Context) ([]domain.ReferenceExemplar, error) {
	out := make([]domain.ReferenceExemplar, 0, len(exemplarFiles))
	for _, ef := range exemplarFiles {
		path := filepath.Join(l.basePath, ef.name)

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			slog.Info("reference_exemplar_missing", "label", ef.label, "path", path)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read exemplar %s: %w", path, err)
		}

		text, err := l.extractor.Extract(ctx, ef.name, data)
		if err != nil || text == "" {
			// An unreadable exemplar just shrinks the candidate set.
			slog.Warn("reference_exemplar_unreadable", "label", ef.label, "path", path, "error", err)
			continue
		}

		out = append(out, domain.ReferenceExemplar{
			Label:      ef.label,
			SourcePath: path,
			Text:       domain.NormalizeText(text),
		})
	}
	return out, nil
}
