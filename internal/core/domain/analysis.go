package domain

import "strings"

type VerdictLabel string

const (
	VerdictEligible   VerdictLabel = "LAYAK"
	VerdictIneligible VerdictLabel = "TIDAK_LAYAK"
	VerdictCaution    VerdictLabel = "PERHATIAN"
)

// NormalizedText carries the extracted document text in two variants. Raw
// keeps the original casing for case-sensitive field patterns (e.g. "DHTI");
// Folded is lower-cased and whitespace-collapsed for keyword matching.
type NormalizedText struct {
	Raw    string
	Folded string
}

func NormalizeText(s string) NormalizedText {
	raw := strings.Join(strings.Fields(s), " ")
	return NormalizedText{
		Raw:    raw,
		Folded: strings.ToLower(raw),
	}
}

func (t NormalizedText) Empty() bool {
	return t.Raw == ""
}

// ManualOverrides are scalar values supplied by the analyst alongside the
// upload. A non-nil value unconditionally replaces whatever the lexical scan
// finds in the document text.
type ManualOverrides struct {
	DSR     *float64
	DTI     *float64
	BIScore *int
}

// AnalysisRequest is one analysis invocation. HasFile distinguishes "no file
// attached" (default-safe verdict) from "file attached but empty" (client
// error).
type AnalysisRequest struct {
	HasFile   bool
	Filename  string
	Payload   []byte
	Overrides ManualOverrides
}

// AgingBuckets counts payment-delinquency markers by days-past-due range.
// The counts are occurrence frequencies, not distinct matches.
type AgingBuckets struct {
	OK     int `json:"agingOk"`
	Yellow int `json:"agingYellow"`
	Orange int `json:"agingOrange"`
	Red    int `json:"agingRed"`
}

func (b AgingBuckets) Total() int {
	return b.OK + b.Yellow + b.Orange + b.Red
}

// ExtractedSignals is the structured result of the lexical scan. Every field
// is independently optional; nil pointers mean "not found in the document".
type ExtractedSignals struct {
	Kolektibilitas *int
	BIScore        *int
	DSR            *float64
	DTI            *float64

	Tags            []string
	ModerateWeight  int
	SevereNegative  bool
	StrongPositive  bool
	PositiveContext int
	HardNegative    bool

	Aging AgingBuckets
}

// SimilarityMatch records the accepted nearest-neighbor exemplar.
type SimilarityMatch struct {
	Label VerdictLabel
	Score float64
}

// ReferenceExemplar is one pre-classified reference document.
type ReferenceExemplar struct {
	Label      VerdictLabel
	SourcePath string
	Text       NormalizedText
}

// AnalysisResult is the verdict handed back to the caller. Absent numeric
// fields are rendered as explicit nulls, never dropped.
type AnalysisResult struct {
	Analysis       string       `json:"analysis"`
	IsEligible     bool         `json:"isEligible"`
	Status         VerdictLabel `json:"status"`
	Kolektibilitas *int         `json:"kolektibilitas"`
	BIScore        *int         `json:"biScore"`
	DSR            *float64     `json:"dsr"`
	DTI            *float64     `json:"dti"`
	AgingBuckets
}
