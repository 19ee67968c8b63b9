package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Extractor passes valid UTF-8 payloads through unchanged. Binary content
// that is not recognizable text yields an error so the dispatcher can
// degrade it to empty text.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, filename string, data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("not valid utf-8 text: %s", filename)
	}
	return strings.TrimSpace(string(data)), nil
}
