package port

import (
	"context"

	"verilens/internal/domain"
)

// FaceAnalyzer extracts per-face attribute tuples from a single decoded frame.
// An empty slice means no faces were detected, which is not an error.
type FaceAnalyzer interface {
	AnalyzeFaces(ctx context.Context, frameJPEG []byte) ([]domain.FaceAttributes, error)
}

// DeepfakeVerdict is the outcome of a whole-clip deepfake-likelihood pass.
type DeepfakeVerdict struct {
	IsAuthentic bool
	Confidence  float64
	Details     string
}

// DeepfakeDetector runs a black-box deepfake-likelihood check over a clip's
// sampled frames.
type DeepfakeDetector interface {
	Detect(ctx context.Context, frames [][]byte) (*DeepfakeVerdict, error)
}
