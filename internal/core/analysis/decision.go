package analysis

import "github.com/koperasi-lestari/bichecking/internal/core/domain"

// Thresholds are the tunable decision constants. The defaults reproduce the
// behavior the back office has been operating with.
type Thresholds struct {
	// SimilarityAccept is the minimum cosine score at which the classifier
	// proposes a label instead of abstaining.
	SimilarityAccept float64
	// AgingMinSamples is the minimum number of aging-bucket tokens required
	// before the aging override is trusted.
	AgingMinSamples int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		SimilarityAccept: 0.08,
		AgingMinSamples:  6,
	}
}

// Decide runs the prioritized rule cascade once: base rules, then the
// similarity override, then the aging override. Later stages may replace the
// label chosen by earlier ones; there is no lock-in. The function is total:
// it returns one of the three labels for any input.
func Decide(sig domain.ExtractedSignals, match *domain.SimilarityMatch, th Thresholds) domain.VerdictLabel {
	verdict := baseVerdict(sig)

	// A confident nearest-neighbor match to a real labeled exemplar is
	// stronger evidence than synthetic rule matching.
	if match != nil {
		verdict = match.Label
	}

	return applyAgingOverride(verdict, sig.Aging, th.AgingMinSamples)
}

func baseVerdict(s domain.ExtractedSignals) domain.VerdictLabel {
	switch {
	case s.SevereNegative || s.HardNegative ||
		intAtLeast(s.Kolektibilitas, 3) ||
		intAtLeast(s.BIScore, 4) ||
		floatAbove(s.DSR, 40) ||
		floatAbove(s.DTI, 45):
		return domain.VerdictIneligible

	case intEquals(s.Kolektibilitas, 1) &&
		intAbsentOrBetween(s.BIScore, 1, 2) &&
		floatAbsentOrAtMost(s.DSR, 30) &&
		floatAbsentOrAtMost(s.DTI, 35) &&
		s.PositiveContext >= 3:
		return domain.VerdictEligible

	case (intEquals(s.Kolektibilitas, 1) || intEquals(s.Kolektibilitas, 2)) &&
		intAbsentOrBetween(s.BIScore, 2, 3) &&
		floatAbsentOrAtMost(s.DSR, 40) &&
		floatAbsentOrAtMost(s.DTI, 45):
		return domain.VerdictCaution

	case s.StrongPositive || intEquals(s.Kolektibilitas, 1):
		return domain.VerdictEligible

	default:
		return domain.VerdictIneligible
	}
}

func applyAgingOverride(verdict domain.VerdictLabel, b domain.AgingBuckets, minSamples int) domain.VerdictLabel {
	total := b.Total()
	if total < minSamples {
		return verdict
	}

	redRatio := float64(b.Red) / float64(total)
	riskRatio := float64(b.Orange+b.Red) / float64(total)
	okRatio := float64(b.OK) / float64(total)
	yellowRatio := float64(b.Yellow) / float64(total)

	switch {
	case redRatio >= 0.3 || riskRatio >= 0.5:
		return domain.VerdictIneligible
	case okRatio >= 0.6 && b.Red == 0:
		return domain.VerdictEligible
	case yellowRatio >= 0.3 && redRatio < 0.2:
		// Do not casually downgrade a positive verdict on a yellow-dominant
		// profile.
		if verdict == domain.VerdictEligible {
			return verdict
		}
		return domain.VerdictCaution
	}
	return verdict
}

func intEquals(v *int, n int) bool {
	return v != nil && *v == n
}

func intAtLeast(v *int, n int) bool {
	return v != nil && *v >= n
}

func intAbsentOrBetween(v *int, lo, hi int) bool {
	return v == nil || (*v >= lo && *v <= hi)
}

func floatAbove(v *float64, limit float64) bool {
	return v != nil && *v > limit
}

func floatAbsentOrAtMost(v *float64, limit float64) bool {
	return v == nil || *v <= limit
}
