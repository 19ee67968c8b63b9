// Package extractor routes a document payload to the matching format
// extractor and absorbs extraction failures: a payload nothing can decode
// degrades to empty text, never an error past this boundary.
package extractor

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/koperasi-lestari/bichecking/internal/core/ports"
	"github.com/koperasi-lestari/bichecking/internal/infrastructure/extractor/pdftext"
	"github.com/koperasi-lestari/bichecking/internal/infrastructure/extractor/plaintext"
	"github.com/koperasi-lestari/bichecking/internal/infrastructure/extractor/spreadsheet"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// FailureRecorder receives a note for every payload whose extraction failed.
type FailureRecorder interface {
	RecordExtractionFailure(format string)
}

type Dispatcher struct {
	pdf      ports.TextExtractor
	sheet    ports.TextExtractor
	plain    ports.TextExtractor
	failures FailureRecorder
}

// New builds the dispatching extractor. recorder may be nil.
func New(recorder FailureRecorder) *Dispatcher {
	return &Dispatcher{
		pdf:      pdftext.New(),
		sheet:    spreadsheet.New(),
		plain:    plaintext.New(),
		failures: recorder,
	}
}

func (d *Dispatcher) Extract(ctx context.Context, filename string, data []byte) (string, error) {
	inner, format := d.route(filename, data)

	text, err := inner.Extract(ctx, filename, data)
	if err != nil {
		slog.Warn("extraction_degraded", "filename", filename, "format", format, "error", err)
		if d.failures != nil {
			d.failures.RecordExtractionFailure(format)
		}
		return "", nil
	}
	return text, nil
}

func (d *Dispatcher) route(filename string, data []byte) (ports.TextExtractor, string) {
	switch {
	case bytes.HasPrefix(data, pdfMagic):
		return d.pdf, "pdf"
	case bytes.HasPrefix(data, zipMagic) && isWorkbookName(filename):
		return d.sheet, "xlsx"
	default:
		return d.plain, "text"
	}
}

func isWorkbookName(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm", ".xltx":
		return true
	default:
		return false
	}
}
