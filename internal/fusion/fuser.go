package fusion

import "verilens/internal/domain"

// Section weights for page-level fusion. Fixed contract values; renormalized
// over whichever sections are actually present.
var sectionWeights = map[domain.AnalysisSection]float64{
	domain.SectionText:   0.4,
	domain.SectionImages: 0.3,
	domain.SectionVideos: 0.2,
	domain.SectionSource: 0.1,
}

// neutralScore is returned when no section contributed any signal.
const neutralScore = 0.5

// Fuser combines heterogeneous evidence into page-level verdicts. The
// per-unit policy is conservative: one untrustworthy signal is never masked
// by stronger siblings.
type Fuser struct{}

// NewFuser creates a Fuser.
func NewFuser() *Fuser {
	return &Fuser{}
}

// FusePage combines section results into a page truth score and confidence
// using the fixed weight vector, renormalized over present sections. With no
// sections present both values fall back to a neutral 0.5.
func (f *Fuser) FusePage(sections []domain.SectionResult) (truthScore, confidence float64) {
	if len(sections) == 0 {
		return neutralScore, neutralScore
	}

	var weightedScore, weightedConfidence, weightSum float64
	for _, s := range sections {
		w, ok := sectionWeights[s.Section]
		if !ok {
			continue
		}
		weightedScore += w * Clamp01(s.Score)
		weightedConfidence += w * Clamp01(s.Confidence)
		weightSum += w
	}
	if weightSum == 0 {
		return neutralScore, neutralScore
	}
	return Clamp01(weightedScore / weightSum), Clamp01(weightedConfidence / weightSum)
}

// CombineAuthenticity is the AND policy over evidence: a unit is authentic
// only if every pass judged it authentic.
func CombineAuthenticity(items []domain.EvidenceItem) bool {
	for _, it := range items {
		if !it.IsAuthentic {
			return false
		}
	}
	return true
}

// MinConfidence is the conservative confidence policy: the unit's confidence
// is the weakest pass's confidence. Returns 1.0 for an empty list so the
// caller's AND policy still dominates.
func MinConfidence(items []domain.EvidenceItem) float64 {
	min := 1.0
	for _, it := range items {
		if it.Confidence < min {
			min = it.Confidence
		}
	}
	return Clamp01(min)
}

// MeanScore averages per-unit scores, skipping units that contributed
// nothing. Returns (0, false) when no unit contributed.
func MeanScore(scores []float64) (float64, bool) {
	if len(scores) == 0 {
		return 0, false
	}
	var sum float64
	for _, s := range scores {
		sum += Clamp01(s)
	}
	return sum / float64(len(scores)), true
}

// Clamp01 clamps v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
