package forensics

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"verilens/internal/domain"
	"verilens/internal/fusion"
)

// Manipulation-type classification thresholds. Both comparisons are strict.
const (
	contentManipulationThreshold = 10.0
	noiseInconsistencyThreshold  = 20.0
)

// Analyzer runs the statistical manipulation-detection passes on a single
// image and combines them conservatively.
type Analyzer struct{}

// NewAnalyzer creates a forensic image Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze decodes data and runs the error-level and noise-pattern passes.
// The result's evidence always contains both pass items, in that order.
func (a *Analyzer) Analyze(data []byte) (*domain.AnalysisResult, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecodeFailed, err)
	}

	ela, err := ErrorLevelAnalysis(img)
	if err != nil {
		return nil, fmt.Errorf("error-level analysis: %w", err)
	}
	noise, err := NoisePatternAnalysis(img)
	if err != nil {
		return nil, fmt.Errorf("noise-pattern analysis: %w", err)
	}

	evidence := []domain.EvidenceItem{ela, noise}
	result := &domain.AnalysisResult{
		IsAuthentic: fusion.CombineAuthenticity(evidence),
		Confidence:  fusion.MinConfidence(evidence),
		Evidence:    evidence,
		Metadata:    ExtractMetadata(data),
	}

	if !result.IsAuthentic {
		mt := classifyManipulation(ela, noise)
		result.ManipulationType = &mt
	}

	return result, nil
}

// classifyManipulation labels an inauthentic image by which pass tripped
// hardest. Thresholds are strict: a mean difference of exactly 10.0 does not
// classify as content manipulation.
func classifyManipulation(ela, noise domain.EvidenceItem) domain.ManipulationType {
	if meanDiff, ok := ela.Details["mean_difference"].(float64); ok && meanDiff > contentManipulationThreshold {
		return domain.ManipulationContent
	}
	if stdNoise, ok := noise.Details["std_noise"].(float64); ok && stdNoise > noiseInconsistencyThreshold {
		return domain.ManipulationNoise
	}
	return domain.ManipulationUnknown
}
