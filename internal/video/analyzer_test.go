package video

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"verilens/internal/domain"
	"verilens/internal/port"
)

type stubExtractor struct {
	meta   *domain.VideoMetadata
	frames []port.FrameSample
	err    error
}

func (s *stubExtractor) Extract(ctx context.Context, videoBytes []byte, interval int) (*domain.VideoMetadata, []port.FrameSample, error) {
	return s.meta, s.frames, s.err
}

type stubFaces struct {
	// byFrame maps frame index to the faces detected in it.
	byFrame map[int][]domain.FaceAttributes
	errAt   int
	hasErr  bool
	call    int
}

func (s *stubFaces) AnalyzeFaces(ctx context.Context, frameJPEG []byte) ([]domain.FaceAttributes, error) {
	idx := s.call
	s.call++
	if s.hasErr && idx == s.errAt {
		return nil, errors.New("face service choked")
	}
	return s.byFrame[idx], nil
}

type stubDeepfake struct {
	verdict *port.DeepfakeVerdict
	err     error
}

func (s *stubDeepfake) Detect(ctx context.Context, frames [][]byte) (*port.DeepfakeVerdict, error) {
	return s.verdict, s.err
}

func testMeta() *domain.VideoMetadata {
	return &domain.VideoMetadata{FPS: 30, FrameCount: 300, Width: 640, Height: 480, Duration: 10}
}

func nFrames(n int) []port.FrameSample {
	frames := make([]port.FrameSample, n)
	for i := range frames {
		frames[i] = port.FrameSample{FrameNumber: i * 10, JPEG: []byte{0xff, 0xd8}}
	}
	return frames
}

func distinctFaces() []domain.FaceAttributes {
	return []domain.FaceAttributes{
		{Age: 30, Gender: "Man", Ethnicity: "asian", Emotion: "neutral"},
		{Age: 45, Gender: "Woman", Ethnicity: "white", Emotion: "happy"},
	}
}

func duplicatedFaces() []domain.FaceAttributes {
	f := domain.FaceAttributes{Age: 30, Gender: "Man", Ethnicity: "asian", Emotion: "neutral"}
	return []domain.FaceAttributes{f, f}
}

func TestAnalyze_ConsistentFramesAuthentic(t *testing.T) {
	a := NewAnalyzer(
		&stubExtractor{meta: testMeta(), frames: nFrames(3)},
		&stubFaces{byFrame: map[int][]domain.FaceAttributes{0: distinctFaces(), 1: distinctFaces()}},
		&stubDeepfake{verdict: &port.DeepfakeVerdict{IsAuthentic: true, Confidence: 0.9}},
		10,
	)

	result, err := a.Analyze(context.Background(), []byte("clip"))
	require.NoError(t, err)

	assert.True(t, result.IsAuthentic)
	// 3 frame items + 1 deepfake item.
	assert.Len(t, result.Evidence, 4)
	// Min confidence: frames at 0.8 beat the 0.9 deepfake pass.
	assert.Equal(t, 0.8, result.Confidence)
	assert.Nil(t, result.ManipulationType)
	assert.Equal(t, 300, result.Metadata["frame_count"])
	assert.Equal(t, 10.0, result.Metadata["duration"])
}

func TestAnalyze_DuplicatedFacesFlagInconsistency(t *testing.T) {
	a := NewAnalyzer(
		&stubExtractor{meta: testMeta(), frames: nFrames(2)},
		&stubFaces{byFrame: map[int][]domain.FaceAttributes{0: duplicatedFaces(), 1: duplicatedFaces()}},
		&stubDeepfake{verdict: &port.DeepfakeVerdict{IsAuthentic: true, Confidence: 0.9}},
		10,
	)

	result, err := a.Analyze(context.Background(), []byte("clip"))
	require.NoError(t, err)

	assert.False(t, result.IsAuthentic)
	assert.Equal(t, 0.3, result.Confidence)
	require.NotNil(t, result.ManipulationType)
	// 2 of 2 frames inconsistent: over the 30% ratio.
	assert.Equal(t, domain.ManipulationFace, *result.ManipulationType)
}

func TestAnalyze_DeepfakeVerdictDominatesClassification(t *testing.T) {
	a := NewAnalyzer(
		&stubExtractor{meta: testMeta(), frames: nFrames(2)},
		&stubFaces{byFrame: map[int][]domain.FaceAttributes{0: duplicatedFaces(), 1: duplicatedFaces()}},
		&stubDeepfake{verdict: &port.DeepfakeVerdict{IsAuthentic: false, Confidence: 0.2}},
		10,
	)

	result, err := a.Analyze(context.Background(), []byte("clip"))
	require.NoError(t, err)

	assert.False(t, result.IsAuthentic)
	require.NotNil(t, result.ManipulationType)
	assert.Equal(t, domain.ManipulationDeepfake, *result.ManipulationType)
	assert.Equal(t, 0.2, result.Confidence)
}

func TestAnalyze_FrameFailureSkipsFrameOnly(t *testing.T) {
	faces := &stubFaces{
		byFrame: map[int][]domain.FaceAttributes{1: distinctFaces(), 2: distinctFaces()},
		errAt:   0,
		hasErr:  true,
	}
	a := NewAnalyzer(
		&stubExtractor{meta: testMeta(), frames: nFrames(3)},
		faces,
		&stubDeepfake{verdict: &port.DeepfakeVerdict{IsAuthentic: true, Confidence: 0.9}},
		10,
	)

	result, err := a.Analyze(context.Background(), []byte("clip"))
	require.NoError(t, err)

	// One frame dropped; 2 frame items + deepfake item remain.
	assert.Len(t, result.Evidence, 3)
	assert.True(t, result.IsAuthentic)
}

func TestAnalyze_DetectorOutageDegradesToNeutralPass(t *testing.T) {
	a := NewAnalyzer(
		&stubExtractor{meta: testMeta(), frames: nFrames(1)},
		&stubFaces{},
		&stubDeepfake{err: errors.New("classifier down")},
		10,
	)

	result, err := a.Analyze(context.Background(), []byte("clip"))
	require.NoError(t, err)
	assert.True(t, result.IsAuthentic)

	last := result.Evidence[len(result.Evidence)-1]
	assert.Equal(t, domain.AnalysisTypeDeepfake, last.AnalysisType)
	assert.True(t, last.IsAuthentic)
}

func TestAnalyze_ExtractorFailure(t *testing.T) {
	a := NewAnalyzer(
		&stubExtractor{err: errors.New("broken container")},
		&stubFaces{},
		&stubDeepfake{},
		10,
	)

	_, err := a.Analyze(context.Background(), []byte("clip"))
	require.Error(t, err)
}

func TestAnalyze_NoFramesStillHasDeepfakeEvidence(t *testing.T) {
	a := NewAnalyzer(
		&stubExtractor{meta: testMeta()},
		&stubFaces{},
		&stubDeepfake{verdict: &port.DeepfakeVerdict{IsAuthentic: true, Confidence: 0.9}},
		10,
	)

	result, err := a.Analyze(context.Background(), []byte("clip"))
	require.NoError(t, err)
	// The evidence list is never empty for an analyzed unit.
	require.Len(t, result.Evidence, 1)
	assert.Equal(t, domain.AnalysisTypeDeepfake, result.Evidence[0].AnalysisType)
}

func TestFacesConsistent(t *testing.T) {
	assert.True(t, facesConsistent(nil))
	assert.True(t, facesConsistent(distinctFaces()[:1]))
	assert.True(t, facesConsistent(distinctFaces()))
	assert.False(t, facesConsistent(duplicatedFaces()))
}

func TestClassifyManipulation_RatioIsStrict(t *testing.T) {
	authentic := domain.EvidenceItem{AnalysisType: domain.AnalysisTypeDeepfake, IsAuthentic: true}

	// 3 of 10 is exactly 30%: not face manipulation.
	assert.Equal(t, domain.ManipulationUnknown, classifyManipulation(authentic, 10, 3))
	// 4 of 10 crosses the ratio.
	assert.Equal(t, domain.ManipulationFace, classifyManipulation(authentic, 10, 4))
}
