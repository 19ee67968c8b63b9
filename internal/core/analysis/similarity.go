package analysis

import (
	"math"
	"strings"
	"unicode"

	"github.com/koperasi-lestari/bichecking/internal/core/domain"
)

const (
	minTokenLen = 3
	maxTokenLen = 30
)

// Tokenize lower-cases the input, replaces anything that is not a letter or
// an ASCII digit with a separator, and keeps tokens of length 3-30.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 64)
	var b strings.Builder
	flush := func() {
		if b.Len() >= minTokenLen && b.Len() <= maxTokenLen {
			out = append(out, b.String())
		}
		b.Reset()
	}
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}

// TermVector builds a raw term-frequency vector. No IDF weighting, no
// stemming.
func TermVector(s string) map[string]int {
	tokens := Tokenize(s)
	if len(tokens) == 0 {
		return nil
	}
	vec := make(map[string]int, len(tokens))
	for _, t := range tokens {
		vec[t]++
	}
	return vec
}

// Cosine is the normalized dot product of two term vectors. It is 0 when
// either vector has zero norm.
func Cosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot, normA, normB float64
	for term, countA := range a {
		normA += float64(countA) * float64(countA)
		if countB, ok := b[term]; ok {
			dot += float64(countA) * float64(countB)
		}
	}
	for _, countB := range b {
		normB += float64(countB) * float64(countB)
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Classify proposes a label by nearest-neighbor cosine match against the
// reference exemplars. It abstains (ok=false) when no exemplar reaches the
// acceptance threshold or when the corpus is empty; abstention is a valid
// "insufficient evidence" outcome, not an error.
func Classify(text domain.NormalizedText, exemplars []domain.ReferenceExemplar, threshold float64) (domain.SimilarityMatch, bool) {
	if len(exemplars) == 0 {
		return domain.SimilarityMatch{}, false
	}

	docVec := TermVector(text.Folded)

	var best domain.SimilarityMatch
	found := false
	for _, ex := range exemplars {
		score := Cosine(docVec, TermVector(ex.Text.Folded))
		// Ties keep the first-seen maximum.
		if !found || score > best.Score {
			best = domain.SimilarityMatch{Label: ex.Label, Score: score}
			found = true
		}
	}

	if best.Score < threshold {
		return domain.SimilarityMatch{}, false
	}
	return best, true
}
