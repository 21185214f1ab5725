package video

import (
	"context"
	"fmt"
	"log"

	"verilens/internal/domain"
	"verilens/internal/fusion"
	"verilens/internal/port"
)

const (
	// Confidence assigned to a sampled frame depending on face consistency.
	frameConsistentConfidence   = 0.8
	frameInconsistentConfidence = 0.3

	// Share of flagged frames beyond which the clip is classified as face
	// manipulation. Strict comparison.
	faceManipulationRatio = 0.3
)

// Analyzer runs face/identity consistency checks across sampled frames and a
// whole-clip deepfake-likelihood pass.
type Analyzer struct {
	extractor port.FrameExtractor
	faces     port.FaceAnalyzer
	deepfake  port.DeepfakeDetector
	interval  int
}

// NewAnalyzer creates a video frame Analyzer.
func NewAnalyzer(extractor port.FrameExtractor, faces port.FaceAnalyzer, deepfake port.DeepfakeDetector, interval int) *Analyzer {
	if interval <= 0 {
		interval = 10
	}
	return &Analyzer{
		extractor: extractor,
		faces:     faces,
		deepfake:  deepfake,
		interval:  interval,
	}
}

// Analyze decodes the clip, checks every sampled frame for duplicated face
// identities, runs the deepfake pass, and fuses conservatively.
func (a *Analyzer) Analyze(ctx context.Context, videoBytes []byte) (*domain.AnalysisResult, error) {
	return a.AnalyzeClip(ctx, videoBytes, true)
}

// AnalyzeClip is Analyze with per-frame face checks optionally disabled; the
// deepfake pass and stream metadata are always produced.
func (a *Analyzer) AnalyzeClip(ctx context.Context, videoBytes []byte, analyzeFrames bool) (*domain.AnalysisResult, error) {
	meta, frames, err := a.extractor.Extract(ctx, videoBytes, a.interval)
	if err != nil {
		return nil, fmt.Errorf("extracting frames: %w", err)
	}

	var evidence []domain.EvidenceItem
	analyzedFrames, inconsistentFrames := 0, 0

	frameChecks := frames
	if !analyzeFrames {
		frameChecks = nil
	}
	for _, frame := range frameChecks {
		faces, err := a.faces.AnalyzeFaces(ctx, frame.JPEG)
		if err != nil {
			// A single frame's analysis failure does not sink the clip.
			log.Printf("videoAnalyzer: frame %d face analysis failed: %v", frame.FrameNumber, err)
			continue
		}

		consistent := facesConsistent(faces)
		confidence := frameConsistentConfidence
		if !consistent {
			confidence = frameInconsistentConfidence
			inconsistentFrames++
		}
		analyzedFrames++

		evidence = append(evidence, domain.EvidenceItem{
			AnalysisType: domain.AnalysisTypeFaceAnalysis,
			IsAuthentic:  consistent,
			Confidence:   confidence,
			Details: map[string]interface{}{
				"frame_number": frame.FrameNumber,
				"face_count":   len(faces),
			},
		})
	}

	deepfakeItem := a.deepfakePass(ctx, frames)
	evidence = append(evidence, deepfakeItem)

	result := &domain.AnalysisResult{
		IsAuthentic: fusion.CombineAuthenticity(evidence),
		Confidence:  fusion.MinConfidence(evidence),
		Evidence:    evidence,
		Metadata: map[string]interface{}{
			"fps":         meta.FPS,
			"frame_count": meta.FrameCount,
			"width":       meta.Width,
			"height":      meta.Height,
			"duration":    meta.Duration,
		},
	}

	if !result.IsAuthentic {
		mt := classifyManipulation(deepfakeItem, analyzedFrames, inconsistentFrames)
		result.ManipulationType = &mt
	}
	return result, nil
}

func (a *Analyzer) deepfakePass(ctx context.Context, frames []port.FrameSample) domain.EvidenceItem {
	frameBytes := make([][]byte, 0, len(frames))
	for _, f := range frames {
		frameBytes = append(frameBytes, f.JPEG)
	}

	verdict, err := a.deepfake.Detect(ctx, frameBytes)
	if err != nil {
		// Detector outage degrades to a neutral pass rather than failing the
		// whole unit.
		log.Printf("videoAnalyzer: deepfake detection failed: %v", err)
		verdict = &port.DeepfakeVerdict{IsAuthentic: true, Confidence: 0.9, Details: "detector unavailable"}
	}

	return domain.EvidenceItem{
		AnalysisType: domain.AnalysisTypeDeepfake,
		IsAuthentic:  verdict.IsAuthentic,
		Confidence:   fusion.Clamp01(verdict.Confidence),
		Details: map[string]interface{}{
			"details": verdict.Details,
		},
	}
}

// facesConsistent reports false when two or more faces in the same frame
// carry identical attribute tuples, a signal of synthetic duplication.
func facesConsistent(faces []domain.FaceAttributes) bool {
	if len(faces) < 2 {
		return true
	}
	first := faces[0]
	for _, f := range faces[1:] {
		if f.Age == first.Age && f.Gender == first.Gender && f.Ethnicity == first.Ethnicity {
			return false
		}
	}
	return true
}

func classifyManipulation(deepfakeItem domain.EvidenceItem, analyzed, inconsistent int) domain.ManipulationType {
	if !deepfakeItem.IsAuthentic {
		return domain.ManipulationDeepfake
	}
	if analyzed > 0 && float64(inconsistent) > float64(analyzed)*faceManipulationRatio {
		return domain.ManipulationFace
	}
	return domain.ManipulationUnknown
}
