package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/koperasi-lestari/bichecking/internal/core/domain"
)

// gradeRule is one step of the first-match-wins collectability cascade.
// grade == 0 means the value comes from the first capture group.
type gradeRule struct {
	re    *regexp.Regexp
	grade int
}

var collectabilityRules = []gradeRule{
	{re: regexp.MustCompile(`kolektibilitas\s*[:\-]?\s*([1-5])`)},
	{re: regexp.MustCompile(`\bkol\.?\s*[:\-]?\s*([1-5])\b`)},
	{re: regexp.MustCompile(`\blancar\b`), grade: 1},
	{re: regexp.MustCompile(`dalam perhatian khusus`), grade: 2},
	{re: regexp.MustCompile(`kurang lancar`), grade: 3},
	{re: regexp.MustCompile(`diragukan`), grade: 4},
	{re: regexp.MustCompile(`\bmacet\b`), grade: 5},
}

// "kurang lancar" contains the standalone word "lancar"; mask it so the
// grade-1 keyword rule cannot fire on a grade-3 phrase.
var reKurangLancar = regexp.MustCompile(`kurang\s+lancar`)

var bureauScoreRules = []*regexp.Regexp{
	regexp.MustCompile(`skor\s*bi\s*(?:checking)?\s*[:\-]?\s*([1-5])`),
	regexp.MustCompile(`bi\s*score\s*[:\-]?\s*([1-5])`),
	regexp.MustCompile(`skor\s*kredit\s*[:\-]?\s*([1-5])`),
}

// Ratio patterns run against the case-preserved text first: the bureau
// export renders the field labels in upper case and "DHTI" would collide
// with other tokens after folding.
var dsrRules = []*regexp.Regexp{
	regexp.MustCompile(`\bDSR\b[^0-9]{0,12}([0-9][0-9.,]*)`),
	regexp.MustCompile(`(?i)debt\s*service\s*ratio[^0-9]{0,12}([0-9][0-9.,]*)`),
	regexp.MustCompile(`(?i)rasio\s*angsuran[^0-9]{0,12}([0-9][0-9.,]*)`),
}

var dtiRules = []*regexp.Regexp{
	regexp.MustCompile(`\bDTI\b[^0-9]{0,12}([0-9][0-9.,]*)`),
	regexp.MustCompile(`\bDHTI\b[^0-9]{0,12}([0-9][0-9.,]*)`),
	regexp.MustCompile(`(?i)debt\s*to\s*income[^0-9]{0,12}([0-9][0-9.,]*)`),
	regexp.MustCompile(`(?i)rasio\s*hutang[^0-9]{0,12}([0-9][0-9.,]*)`),
}

type signalRule struct {
	re     *regexp.Regexp
	tag    string
	weight int
}

// Severe negatives: any single match is disqualifying on its own.
var severeNegativeRules = []signalRule{
	{re: regexp.MustCompile(`kredit macet`), tag: "kredit macet"},
	{re: regexp.MustCompile(`\bmacet\b`), tag: "kolektibilitas 5/macet"},
	{re: regexp.MustCompile(`hapus buku|write[- ]?off`), tag: "hapus buku/write-off"},
	{re: regexp.MustCompile(`daftar hitam|blacklist`), tag: "masuk daftar hitam"},
	{re: regexp.MustCompile(`wanprestasi`), tag: "wanprestasi"},
	{re: regexp.MustCompile(`agunan (?:yang )?diambil alih|\bayda\b`), tag: "agunan diambil alih"},
}

var strongPositiveRules = []signalRule{
	{re: regexp.MustCompile(`tidak pernah menunggak`), tag: "tidak pernah menunggak"},
	{re: regexp.MustCompile(`selalu tepat waktu`), tag: "pembayaran selalu tepat waktu"},
	{re: regexp.MustCompile(`tidak ada tunggakan`), tag: "tidak ada tunggakan"},
	{re: regexp.MustCompile(`riwayat kredit (?:sangat )?baik`), tag: "riwayat kredit baik"},
}

// Moderate signals accumulate; they never short-circuit.
var moderateRules = []signalRule{
	{re: regexp.MustCompile(`kurang lancar`), weight: -2, tag: "kolektibilitas 3/kurang lancar"},
	{re: regexp.MustCompile(`diragukan`), weight: -3, tag: "kolektibilitas 4/diragukan"},
	{re: regexp.MustCompile(`dalam perhatian khusus`), weight: -1, tag: "kolektibilitas 2/dalam perhatian khusus"},
	{re: regexp.MustCompile(`tunggakan`), weight: -1, tag: "ada tunggakan"},
	{re: regexp.MustCompile(`restrukturisasi`), weight: -1, tag: "kredit restrukturisasi"},
	{re: regexp.MustCompile(`keterlambatan`), weight: -1, tag: "ada keterlambatan bayar"},
	{re: regexp.MustCompile(`pelunasan dipercepat`), weight: 1, tag: "pelunasan dipercepat"},
	{re: regexp.MustCompile(`\bagunan\b|\bjaminan\b`), weight: 1, tag: "ada agunan/jaminan"},
}

// Counted (not boolean) against the case-preserved text.
var positiveContextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bLANCAR\b`),
	regexp.MustCompile(`(?i)tepat waktu`),
	regexp.MustCompile(`(?i)pembayaran lancar`),
	regexp.MustCompile(`(?i)tidak ada tunggakan`),
	regexp.MustCompile(`(?i)angsuran rutin`),
	regexp.MustCompile(`(?i)kewajiban terpenuhi`),
}

var hardNegativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`DAFTAR HITAM`),
	regexp.MustCompile(`BLACKLIST`),
	regexp.MustCompile(`\bWO\b`),
	regexp.MustCompile(`KREDIT MACET`),
}

// Aging-bucket markers, counted as occurrence frequencies over the
// case-preserved text. The four patterns are disjoint by construction.
var (
	agingOKPattern     = regexp.MustCompile(`\bOK\b`)
	agingYellowPattern = regexp.MustCompile(`\bDPD\s*(?:[1-9]|[1-7][0-9]|8[0-9])\b`)
	agingOrangePattern = regexp.MustCompile(`\bDPD\s*(?:9[0-9]|1[01][0-9])\b`)
	agingRedPattern    = regexp.MustCompile(`\bDPD\s*(?:1[2-9][0-9]|[2-9][0-9][0-9])\b|\b(?:120|180)\+`)
)

// ExtractSignals runs the full lexical scan over a normalized document.
// The scan is deterministic and order-independent across rule groups; within
// the numeric cascades only the first matching rule fires.
func ExtractSignals(text domain.NormalizedText, ov domain.ManualOverrides) domain.ExtractedSignals {
	sig := domain.ExtractedSignals{
		Kolektibilitas: collectabilityGrade(text.Folded),
		BIScore:        bureauScore(text.Folded),
		DSR:            firstRatio(dsrRules, text.Raw),
		DTI:            firstRatio(dtiRules, text.Raw),
	}

	// Caller-supplied values win unconditionally.
	if ov.DSR != nil {
		sig.DSR = ov.DSR
	}
	if ov.DTI != nil {
		sig.DTI = ov.DTI
	}
	if ov.BIScore != nil {
		sig.BIScore = ov.BIScore
	}

	seen := make(map[string]struct{})
	addTag := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		sig.Tags = append(sig.Tags, tag)
	}

	for _, rule := range severeNegativeRules {
		if rule.re.MatchString(text.Folded) {
			sig.SevereNegative = true
			addTag(rule.tag)
		}
	}
	for _, rule := range strongPositiveRules {
		if rule.re.MatchString(text.Folded) {
			sig.StrongPositive = true
			addTag(rule.tag)
		}
	}
	for _, rule := range moderateRules {
		if rule.re.MatchString(text.Folded) {
			sig.ModerateWeight += rule.weight
			addTag(rule.tag)
		}
	}

	for _, re := range positiveContextPatterns {
		sig.PositiveContext += len(re.FindAllStringIndex(text.Raw, -1))
	}
	for _, re := range hardNegativePatterns {
		if re.MatchString(text.Raw) {
			sig.HardNegative = true
			break
		}
	}

	sig.Aging = domain.AgingBuckets{
		OK:     len(agingOKPattern.FindAllStringIndex(text.Raw, -1)),
		Yellow: len(agingYellowPattern.FindAllStringIndex(text.Raw, -1)),
		Orange: len(agingOrangePattern.FindAllStringIndex(text.Raw, -1)),
		Red:    len(agingRedPattern.FindAllStringIndex(text.Raw, -1)),
	}

	return sig
}

func collectabilityGrade(folded string) *int {
	masked := reKurangLancar.ReplaceAllString(folded, "kurang-lncr")
	for _, rule := range collectabilityRules {
		probe := folded
		if rule.grade == 1 {
			probe = masked
		}
		m := rule.re.FindStringSubmatch(probe)
		if m == nil {
			continue
		}
		if rule.grade != 0 {
			g := rule.grade
			return &g
		}
		g, err := strconv.Atoi(m[1])
		if err != nil || g < 1 || g > 5 {
			continue
		}
		return &g
	}
	return nil
}

func bureauScore(folded string) *int {
	for _, re := range bureauScoreRules {
		m := re.FindStringSubmatch(folded)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return &n
	}
	return nil
}

func firstRatio(rules []*regexp.Regexp, raw string) *float64 {
	for _, re := range rules {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if v := ParseNumber(m[1]); v != nil {
			return v
		}
	}
	return nil
}

// ParseNumber parses a percentage-like value, tolerating both comma and dot
// as decimal separators and stray non-numeric characters. A value that does
// not parse to a finite number is absent, not zero.
func ParseNumber(s string) *float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	if cleaned == "" {
		return nil
	}

	if strings.Contains(cleaned, ",") && strings.Contains(cleaned, ".") {
		// "1.234,56" style: dots are thousand separators.
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	v, err := strconv.ParseFloat(strings.Trim(cleaned, "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
