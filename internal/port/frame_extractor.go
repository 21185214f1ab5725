package port

import (
	"context"

	"verilens/internal/domain"
)

// FrameSample is one sampled frame with its position in the stream.
type FrameSample struct {
	FrameNumber int
	JPEG        []byte
}

// FrameExtractor decodes a video byte stream into global metadata and a
// bounded sample of frames. Extract must release every temporary file and
// handle it acquires on all exit paths.
type FrameExtractor interface {
	Extract(ctx context.Context, videoBytes []byte, interval int) (*domain.VideoMetadata, []FrameSample, error)
}
